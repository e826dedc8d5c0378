package joint

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ParseGeometryList parses comma-separated widths such as "10, 20.5, 10".
// Blank entries are skipped; any other token that is not a number fails
// the whole list, as does a list with nothing left in it.
func ParseGeometryList(text string) ([]float64, error) {
	var values []float64
	for _, raw := range strings.Split(text, ",") {
		tok := strings.TrimSpace(raw)
		if tok == "" {
			continue
		}
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &ParseError{Index: len(values), Token: tok}
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, errors.New("geometry list is empty")
	}
	return values, nil
}

// FormatGeometryList renders widths in the form ParseGeometryList accepts.
func FormatGeometryList(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return strings.Join(parts, ", ")
}
