package recipe

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// RawRecipe is one record of an import file, decoded with encoding/json.
type RawRecipe map[string]any

// sentinels are the textual placeholders exporters write for missing values.
var sentinels = map[string]bool{
	"":          true,
	"nan":       true,
	"null":      true,
	"undefined": true,
}

func isSentinel(s string) bool {
	return sentinels[strings.ToLower(strings.TrimSpace(s))]
}

// Sanitize normalizes a raw record into typed fields. It never fails: any
// value that cannot be used becomes absent, so a single bad record cannot
// abort an import batch.
func Sanitize(raw RawRecipe) Recipe {
	return Recipe{
		Cuisine:     sanitizeString(raw["cuisine"]),
		Title:       sanitizeString(raw["title"]),
		Rating:      sanitizeNumber(raw["rating"]),
		PrepTime:    sanitizeNumber(raw["prep_time"]),
		CookTime:    sanitizeNumber(raw["cook_time"]),
		TotalTime:   sanitizeNumber(raw["total_time"]),
		Description: sanitizeString(raw["description"]),
		Nutrients:   sanitizeNutrients(raw["nutrients"]),
		Serves:      sanitizeString(raw["serves"]),
	}
}

func sanitizeNumber(v any) *float64 {
	var f float64
	switch t := v.(type) {
	case string:
		if isSentinel(t) {
			return nil
		}
		n, ok := parseLeadingFloat(t)
		if !ok {
			return nil
		}
		f = n
	case float64:
		f = t
	case float32:
		f = float64(t)
	case int:
		f = float64(t)
	case int64:
		f = float64(t)
	case json.Number:
		n, err := t.Float64()
		if err != nil {
			return nil
		}
		f = n
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func sanitizeString(v any) *string {
	s, ok := stringify(v)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if isSentinel(s) {
		return nil
	}
	return &s
}

// stringify renders scalar JSON values as text and containers as compact JSON.
func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case float64:
		if math.IsNaN(t) {
			return "", false
		}
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", false
		}
		return string(b), true
	}
}

func sanitizeNutrients(v any) Nutrients {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	n := make(Nutrients, len(m))
	for k, val := range m {
		s, ok := stringify(val)
		if !ok {
			continue
		}
		n[NutrientKey(k)] = s
	}
	return n
}
