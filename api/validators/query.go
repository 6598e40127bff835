package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/dealeros/dealeros-backend/pkg/errors"
)

// ParseQueryInt reads an optional integer query parameter bounded by [min, max].
func ParseQueryInt(r *http.Request, key string, fallback, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.Invalid(key, "must be a whole number")
	}
	if n < min || n > max {
		return 0, pkgerrors.Invalid(key, "out of range").
			WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return n, nil
}

// QueryList collects a parameter given repeatedly or comma separated, dropping blanks.
func QueryList(r *http.Request, key string) []string {
	var out []string
	for _, raw := range r.URL.Query()[key] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
