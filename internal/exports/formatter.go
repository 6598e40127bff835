// Package exports renders dealer inventory into marketplace import files.
package exports

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dealeros/dealeros-backend/pkg/db/models"
	"github.com/dealeros/dealeros-backend/pkg/enums"
)

const (
	byteOrderMark = "\ufeff"
	separator     = ';'

	// DefaultImageColumns is the AutoScout24 picture column count.
	DefaultImageColumns = 5

	kwToPS = 1.36
)

// Format names a marketplace file layout.
type Format string

const (
	FormatAutoScout24 Format = "autoscout24"
	FormatTutti       Format = "tutti"
	FormatFull        Format = "full"
)

func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case FormatAutoScout24:
		return FormatAutoScout24, nil
	case FormatTutti:
		return FormatTutti, nil
	case FormatFull:
		return FormatFull, nil
	}
	return "", fmt.Errorf("unsupported export format %q", value)
}

// Formatter maps one vehicle onto one row of a file layout.
type Formatter interface {
	Format() Format
	Header() []string
	Row(v models.Vehicle) []string
	// Statuses lists the vehicle statuses the layout includes. Nil means every status.
	Statuses() []enums.VehicleStatus
}

// marketplaceStatuses are the statuses a vehicle can be advertised in.
var marketplaceStatuses = []enums.VehicleStatus{enums.VehicleStatusInStock, enums.VehicleStatusReserved}

// Document is a rendered export.
type Document struct {
	Body []byte
	Rows int
}

// Render writes the BOM, the header and one row per vehicle the formatter includes.
// Rows end in LF. Fields are quoted by encoding/csv, which besides ; " CR and LF also
// quotes fields with leading whitespace.
func Render(f Formatter, vehicles []models.Vehicle) Document {
	var buf bytes.Buffer
	buf.WriteString(byteOrderMark)

	w := csv.NewWriter(&buf)
	w.Comma = separator

	// Writes into a bytes.Buffer only fail on an invalid separator, which is a constant here.
	_ = w.Write(f.Header())
	rows := 0
	for _, v := range vehicles {
		if !Includes(f, v.Status) {
			continue
		}
		_ = w.Write(f.Row(v))
		rows++
	}
	w.Flush()

	return Document{Body: buf.Bytes(), Rows: rows}
}

// Includes reports whether f exports vehicles in status s.
func Includes(f Formatter, s enums.VehicleStatus) bool {
	statuses := f.Statuses()
	return statuses == nil || slices.Contains(statuses, s)
}

// translate looks value up in vocab and passes unknown values through unchanged.
func translate[T ~string](vocab map[T]string, value *T) string {
	if value == nil {
		return ""
	}
	if label, ok := vocab[*value]; ok {
		return label
	}
	return string(*value)
}

func registrationMonth(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("01/2006")
}

func registrationYear(t *time.Time) string {
	if t == nil {
		return ""
	}
	return strconv.Itoa(t.UTC().Year())
}

// price renders whole amounts without decimals and fractional ones with a decimal comma.
func price(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	if d.Equal(d.Truncate(0)) {
		return d.StringFixed(0)
	}
	return strings.Replace(d.StringFixed(2), ".", ",", 1)
}

func optionalString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optionalInt(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}

func horsepower(kw *int) string {
	if kw == nil || *kw <= 0 {
		return ""
	}
	return strconv.Itoa(int(math.Round(float64(*kw) * kwToPS)))
}

// imageURLs returns the vehicle's image urls ordered by position.
func imageURLs(images []models.VehicleImage) []string {
	ordered := make([]models.VehicleImage, len(images))
	copy(ordered, images)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})
	urls := make([]string, 0, len(ordered))
	for _, img := range ordered {
		if img.URL != "" {
			urls = append(urls, img.URL)
		}
	}
	return urls
}
