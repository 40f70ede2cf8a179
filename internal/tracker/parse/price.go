package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var rePriceValue = regexp.MustCompile(`\d+(?:,\d{3})*(?:\.\d+)?`)

// Price extracts a numeric price from retailer text such as "$1,299.00" or
// "AU$ 599". Callers treat an error as a local ParseFailure: the listing is
// kept with no price and marked unavailable.
func Price(text string) (float64, error) {
	m := rePriceValue.FindString(text)
	if m == "" {
		return 0, fmt.Errorf("no numeric price in %q", text)
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse price %q: %w", m, err)
	}
	return value, nil
}
