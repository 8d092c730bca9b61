package job

import (
	"regexp"
	"strconv"
	"strings"
)

var salaryAmount = regexp.MustCompile(`\$?\s*(\d[\d,]*(?:\.\d+)?)\s*([kK])?`)

// ParseSalary extracts an annual salary estimate from free-form salary text.
// For ranges the upper bound is returned: a posting advertising "up to $300K"
// can clear a $250K floor, and an extra scoring call is cheaper than a missed
// listing. Returns nil when nothing usable can be parsed.
func ParseSalary(text string) *int {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	matches := salaryAmount.FindAllStringSubmatch(text, -1)
	best := 0
	for _, m := range matches {
		raw := strings.ReplaceAll(m[1], ",", "")
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if m[2] != "" {
			value *= 1000
		}
		if int(value) > best {
			best = int(value)
		}
	}

	// Figures below four digits are hourly rates or noise, not annual pay.
	if best < 1000 {
		return nil
	}

	return &best
}
