package helpers

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "Zero", input: "0", expected: "$0.00"},
		{name: "Small amount", input: "12.5", expected: "$12.50"},
		{name: "Thousands separator", input: "1234.56", expected: "$1,234.56"},
		{name: "Millions", input: "1234567.89", expected: "$1,234,567.89"},
		{name: "Negative", input: "-0.5", expected: "-$0.50"},
		{name: "Negative thousands", input: "-9876.54", expected: "-$9,876.54"},
		{name: "Rounds to cents", input: "10.999", expected: "$11.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := decimal.NewFromString(tt.input)
			if err != nil {
				t.Fatalf("bad test input: %v", err)
			}
			if got := FormatUSD(d); got != tt.expected {
				t.Errorf("FormatUSD(%s) = %s, want %s", tt.input, got, tt.expected)
			}
		})
	}
}
