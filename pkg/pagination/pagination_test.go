package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC), ID: uuid.New()}
	out, err := ParseCursor(EncodeCursor(in))
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt))
	assert.Equal(t, in.ID, out.ID)
}

func TestParseCursorEmptyAndInvalid(t *testing.T) {
	c, err := ParseCursor("  ")
	require.NoError(t, err)
	assert.Nil(t, c)

	_, err = ParseCursor("!!!")
	assert.Error(t, err)
}

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, MaxLimit, NormalizeLimit(1000))
}

func TestBuildTrimsBufferRow(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []Cursor{
		{CreatedAt: base.Add(3 * time.Minute), ID: uuid.New()},
		{CreatedAt: base.Add(2 * time.Minute), ID: uuid.New()},
		{CreatedAt: base.Add(1 * time.Minute), ID: uuid.New()},
	}
	page := Build(rows, 2, func(c Cursor) Cursor { return c })
	require.Len(t, page.Items, 2)
	require.NotEmpty(t, page.NextCursor)

	next, err := ParseCursor(page.NextCursor)
	require.NoError(t, err)
	assert.Equal(t, rows[1].ID, next.ID)

	last := Build(rows[:1], 2, func(c Cursor) Cursor { return c })
	assert.Empty(t, last.NextCursor)

	empty := Build[Cursor](nil, 2, func(c Cursor) Cursor { return c })
	assert.NotNil(t, empty.Items)
}
