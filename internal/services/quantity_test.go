package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQuantity(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"3kg", 3, true},
		{"10 kg", 10, true},
		{"  2.5 L", 2.5, true},
		{".5 cups", 0.5, true},
		{"12", 12, true},
		{"-1 box", -1, true},
		{"a dozen", 0, false},
		{"kg 3", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, ok := ParseQuantity(tc.in)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestQuantityRankNilWhenUnparsable(t *testing.T) {
	assert.Nil(t, quantityRank("some"))
	if r := quantityRank("7 trays"); assert.NotNil(t, r) {
		assert.Equal(t, 7.0, *r)
	}
}
