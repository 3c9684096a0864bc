package nlq

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  float64
		found bool
	}{
		{"currency with separator", "over $1,000", 1000.0, true},
		{"k suffix", "$5k", 5000.0, true},
		{"uppercase m suffix", "2.5M", 2_500_000.0, true},
		{"b suffix", "1b", 1_000_000_000.0, true},
		{"plain number", "donors over 500", 500.0, true},
		{"decimal", "gifts above $99.95", 99.95, true},
		{"first match wins", "between $100 and $900", 100.0, true},
		{"month word is not a magnitude suffix", "donors who gave over the past 3 months", 3.0, true},
		{"detached k word is not a suffix", "5 kids donated", 5.0, true},
		{"no amount", "no amount here", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.text)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.InDelta(t, tt.want, got, 0.001)
			}
		})
	}
}
