package services

import (
	"regexp"
	"strconv"

	"github.com/bitesplus/bites-plus-server/internal/models"
)

var leadingNumber = regexp.MustCompile(models.QuantityPattern)

// ParseQuantity extracts the leading decimal number of a quantity such as
// "3kg" or "2.5 L". ok is false when there is none.
func ParseQuantity(s string) (value float64, ok bool) {
	m := leadingNumber.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func quantityRank(s string) *float64 {
	v, ok := ParseQuantity(s)
	if !ok {
		return nil
	}
	return &v
}
