package db

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dealeros/dealeros-backend/pkg/logger"
)

type testModel struct {
	ID   int
	Name string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&testModel{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

func TestWithTx_CommitsAndRollbacks(t *testing.T) {
	db := newTestDB(t)
	client := &Client{conn: db}

	ctx := context.Background()
	if err := client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&testModel{Name: "committed"}).Error
	}); err != nil {
		t.Fatalf("WithTx commit failed: %v", err)
	}

	var count int64
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 record, got %d", count)
	}

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&testModel{Name: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	if err == nil {
		t.Fatal("expected WithTx to return an error")
	}
	if err := db.Model(&testModel{}).Count(&count).Error; err != nil {
		t.Fatalf("count failed after rollback: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected rollback to leave 1 record, got %d", count)
	}
}

func TestPing(t *testing.T) {
	db := newTestDB(t)
	client := &Client{conn: db}
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected ping error: %v", err)
	}
}

func TestFromGormWrapsConnection(t *testing.T) {
	db := newTestDB(t)
	client := FromGorm(db)
	if client.DB() != db {
		t.Fatal("expected FromGorm to expose the wrapped connection")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if IsUniqueViolation(nil, "") {
		t.Fatal("nil error must not be a unique violation")
	}
	if !IsUniqueViolation(&pgconn.PgError{Code: "23505", ConstraintName: "team_members_dealer_user_key"}, "team_members_dealer_user_key") {
		t.Fatal("expected pgx unique violation to match constraint")
	}
	if IsUniqueViolation(&pgconn.PgError{Code: "23505", ConstraintName: "other"}, "team_members_dealer_user_key") {
		t.Fatal("expected constraint mismatch to be false")
	}
	if !IsUniqueViolation(&pq.Error{Code: "23505"}, "") {
		t.Fatal("expected pq unique violation")
	}
	if !IsUniqueViolation(errors.New("UNIQUE constraint failed: users.email"), "") {
		t.Fatal("expected sqlite unique violation message to match")
	}
	if IsUniqueViolation(errors.New("connection reset"), "") {
		t.Fatal("unexpected match for unrelated error")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(fmt.Errorf("load: %w", gorm.ErrRecordNotFound)) {
		t.Fatal("expected wrapped record not found to match")
	}
	if IsNotFound(errors.New("boom")) {
		t.Fatal("unexpected not found match")
	}
}

func TestQueryLoggerReportsSlowAndFailedStatements(t *testing.T) {
	buf := &bytes.Buffer{}
	q := newQueryLogger(logger.New(logger.Options{ServiceName: "test", Output: buf}), 10*time.Millisecond)
	stmt := func() (string, int64) { return "SELECT * FROM leads", 3 }
	ctx := context.Background()

	q.Trace(ctx, time.Now(), stmt, nil)
	if buf.Len() != 0 {
		t.Fatalf("fast statement should not be logged, got %s", buf.String())
	}

	q.Trace(ctx, time.Now(), stmt, gorm.ErrRecordNotFound)
	if buf.Len() != 0 {
		t.Fatalf("record not found should not be logged, got %s", buf.String())
	}

	q.Trace(ctx, time.Now().Add(-time.Second), stmt, nil)
	if !bytes.Contains(buf.Bytes(), []byte(`"db.query.slow"`)) || !bytes.Contains(buf.Bytes(), []byte(`"rows":3`)) {
		t.Fatalf("expected slow query entry, got %s", buf.String())
	}

	buf.Reset()
	q.Trace(ctx, time.Now(), stmt, errors.New("relation does not exist"))
	if !bytes.Contains(buf.Bytes(), []byte(`"db.query.failed"`)) {
		t.Fatalf("expected failed query entry, got %s", buf.String())
	}

	buf.Reset()
	q.LogMode(gormlogger.Silent).Trace(ctx, time.Now(), stmt, errors.New("boom"))
	if buf.Len() != 0 {
		t.Fatalf("silent mode should not log, got %s", buf.String())
	}
}
