package pinfield

import (
	"math"
	"testing"
	"time"

	"golang.org/x/text/language"
)

func TestFormatPercent(t *testing.T) {
	tests := []struct {
		name string
		v    float64
		want string
	}{
		{"whole", 60, "60%"},
		{"fraction", 66.67, "66.67%"},
		{"extra digits dropped", 12.3456, "12.35%"},
		{"NaN", math.NaN(), "-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatPercent(tt.v, language.BritishEnglish, "-"); got != tt.want {
				t.Errorf("FormatPercent(%v) = %q, want %q", tt.v, got, tt.want)
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	ts := time.Date(2024, 5, 6, 10, 11, 12, 0, time.UTC)
	if got := FormatTimestamp(ts, LocaleFor("de"), "-"); got != "6.5.2024, 10:11:12" {
		t.Errorf("de = %q", got)
	}
	if got := FormatTimestamp(ts, LocaleFor("en"), "-"); got != "06/05/2024, 10:11:12" {
		t.Errorf("en = %q", got)
	}
	if got := FormatTimestamp(time.Time{}, LocaleFor("en"), "-"); got != "-" {
		t.Errorf("zero = %q", got)
	}
}
