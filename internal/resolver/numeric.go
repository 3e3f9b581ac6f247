package resolver

import (
	"regexp"
	"strconv"
	"strings"
)

var numberPattern = regexp.MustCompile(`[0-9]+(?:[.,][0-9]+)?`)

// parseNumeric extracts a single representative numeric value from a
// claim's object string. It accepts `.` or `,` as a
// decimal separator, averages a dash-separated range `a-b`, and takes
// the arithmetic mean of all numbers found in a multi-number string. ok
// is false when the object contains no parseable number.
func parseNumeric(object string) (float64, bool) {
	object = strings.TrimSpace(object)
	if object == "" {
		return 0, false
	}

	matches := numberPattern.FindAllString(object, -1)
	if len(matches) == 0 {
		return 0, false
	}

	var sum float64
	var n int
	for _, m := range matches {
		v, err := strconv.ParseFloat(strings.Replace(m, ",", ".", 1), 64)
		if err != nil {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
