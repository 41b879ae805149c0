package casefacts

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Coercions are lenient on representation and strict on meaning: a value that
// cannot be read as the target type is treated as absent rather than guessed.

func coerceBool(v any) (bool, bool) {
	switch tv := v.(type) {
	case bool:
		return tv, true
	case string:
		switch strings.ToLower(strings.TrimSpace(tv)) {
		case "true", "yes", "y":
			return true, true
		case "false", "no", "n":
			return false, true
		}
	}
	return false, false
}

func coerceString(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(s), true
}

func coerceMoney(v any) (float64, bool) {
	switch tv := v.(type) {
	case float64:
		return tv, true
	case float32:
		return float64(tv), true
	case int:
		return float64(tv), true
	case int64:
		return float64(tv), true
	case json.Number:
		f, err := tv.Float64()
		return f, err == nil
	case string:
		cleaned := strings.TrimSpace(tv)
		cleaned = strings.TrimPrefix(cleaned, "£")
		cleaned = strings.ReplaceAll(cleaned, ",", "")
		if cleaned == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		return f, err == nil
	}
	return 0, false
}

// dateLayouts in trial order: ISO-8601 first, then the UK form the legacy
// wizard emitted.
var dateLayouts = []string{"2006-01-02", time.RFC3339, "02/01/2006"}

func coerceDate(v any) (time.Time, bool) {
	switch tv := v.(type) {
	case time.Time:
		return midnightUTC(tv), true
	case string:
		raw := strings.TrimSpace(tv)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, raw); err == nil {
				return midnightUTC(parsed), true
			}
		}
	}
	return time.Time{}, false
}

func coerceStringList(v any) ([]string, bool) {
	switch tv := v.(type) {
	case []any:
		out := make([]string, 0, len(tv))
		for _, item := range tv {
			s, ok := coerceString(item)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case []string:
		out := make([]string, len(tv))
		copy(out, tv)
		return out, true
	case string:
		// A single selection arrives as a bare string.
		return []string{strings.TrimSpace(tv)}, true
	}
	return nil, false
}

func datesEqual(a, b time.Time) bool { return a.Equal(b) }

func listsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
