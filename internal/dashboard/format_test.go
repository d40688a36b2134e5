package dashboard

import "testing"

func TestFormatAmountBoundaries(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{9999.99, "9999.99"},
		{10000, "1.00万"},
		{-10000, "-1.00万"},
		{0, "0.00"},
		{12345.6, "1.23万"},
		{-9999.99, "-9999.99"},
		{123456789, "12345.68万"},
		{-51234, "-5.12万"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.in); got != tt.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatCurrency(t *testing.T) {
	if got := FormatCurrency(12345.6); got != "¥1.23万" {
		t.Errorf("FormatCurrency(12345.6) = %q, want ¥1.23万", got)
	}
	if got := FormatCurrency(-5); got != "¥-5.00" {
		t.Errorf("FormatCurrency(-5) = %q, want ¥-5.00", got)
	}
}

func TestFormatPct(t *testing.T) {
	if got := FormatPct(50); got != "50%" {
		t.Errorf("FormatPct(50) = %q, want 50%%", got)
	}
	if got := FormatPct(66.67); got != "66.67%" {
		t.Errorf("FormatPct(66.67) = %q, want 66.67%%", got)
	}
}

func TestFormatSignedPct(t *testing.T) {
	if got := FormatSignedPct(3.2); got != "+3.2%" {
		t.Errorf("FormatSignedPct(3.2) = %q, want +3.2%%", got)
	}
	if got := FormatSignedPct(0); got != "+0%" {
		t.Errorf("FormatSignedPct(0) = %q, want +0%%", got)
	}
	if got := FormatSignedPct(-4.72); got != "-4.72%" {
		t.Errorf("FormatSignedPct(-4.72) = %q, want -4.72%%", got)
	}
}

func TestFormatSignedPctFixed(t *testing.T) {
	if got := FormatSignedPctFixed(5.25); got != "+5.25%" {
		t.Errorf("FormatSignedPctFixed(5.25) = %q, want +5.25%%", got)
	}
	if got := FormatSignedPctFixed(-1.2); got != "-1.20%" {
		t.Errorf("FormatSignedPctFixed(-1.2) = %q, want -1.20%%", got)
	}
}

func TestFormatDays(t *testing.T) {
	if got := FormatDays(12); got != "12天" {
		t.Errorf("FormatDays(12) = %q, want 12天", got)
	}
	if got := FormatDays(12.5); got != "12.5天" {
		t.Errorf("FormatDays(12.5) = %q, want 12.5天", got)
	}
}
