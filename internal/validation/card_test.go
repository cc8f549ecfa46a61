package validation

import (
	"testing"
	"time"

	"github.com/mmeshcher/checkout-system/internal/model"
)

func TestIsValidCardNumber(t *testing.T) {
	tests := []struct {
		name   string
		number string
		valid  bool
	}{
		{
			name:   "valid visa",
			number: "4242424242424242",
			valid:  true,
		},
		{
			name:   "valid visa with spaces",
			number: "4242 4242 4242 4242",
			valid:  true,
		},
		{
			name:   "valid mastercard",
			number: "5555555555554444",
			valid:  true,
		},
		{
			name:   "valid 13 digits",
			number: "4222222222222",
			valid:  true,
		},
		{
			name:   "invalid checksum",
			number: "4242424242424241",
			valid:  false,
		},
		{
			name:   "too short",
			number: "424242424242",
			valid:  false,
		},
		{
			name:   "too long",
			number: "42424242424242424242",
			valid:  false,
		},
		{
			name:   "contains letters",
			number: "4242a24242424242",
			valid:  false,
		},
		{
			name:   "empty string",
			number: "",
			valid:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidCardNumber(tt.number)
			if got != tt.valid {
				t.Fatalf("IsValidCardNumber(%q) = %v, want %v", tt.number, got, tt.valid)
			}
		})
	}
}

func TestFormatCardNumber(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "full number",
			raw:  "4242424242424242",
			want: "4242 4242 4242 4242",
		},
		{
			name: "strips non digits",
			raw:  "4242-4242-42",
			want: "4242 4242 42",
		},
		{
			name: "truncates to 19 digits",
			raw:  "12345678901234567890123",
			want: "1234 5678 9012 3456 789",
		},
		{
			name: "partial input",
			raw:  "42",
			want: "42",
		},
		{
			name: "empty",
			raw:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatCardNumber(tt.raw)
			if got != tt.want {
				t.Fatalf("FormatCardNumber(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestDetectCardNetwork(t *testing.T) {
	tests := []struct {
		name   string
		number string
		want   model.CardNetwork
	}{
		{
			name:   "visa 16 digits",
			number: "4242424242424242",
			want:   model.CardNetworkVisa,
		},
		{
			name:   "visa 13 digits",
			number: "4222222222222",
			want:   model.CardNetworkVisa,
		},
		{
			name:   "visa with spaces",
			number: "4242 4242 4242 4242",
			want:   model.CardNetworkVisa,
		},
		{
			name:   "mastercard",
			number: "5555555555554444",
			want:   model.CardNetworkMastercard,
		},
		{
			name:   "mastercard prefix 51",
			number: "5105105105105100",
			want:   model.CardNetworkMastercard,
		},
		{
			name:   "prefix 56 is not mastercard",
			number: "5605105105105100",
			want:   model.CardNetworkUnknown,
		},
		{
			name:   "visa with wrong length",
			number: "42424242424242",
			want:   model.CardNetworkUnknown,
		},
		{
			name:   "unknown prefix",
			number: "1234567890123",
			want:   model.CardNetworkUnknown,
		},
		{
			name:   "empty",
			number: "",
			want:   model.CardNetworkUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectCardNetwork(tt.number)
			if got != tt.want {
				t.Fatalf("DetectCardNetwork(%q) = %q, want %q", tt.number, got, tt.want)
			}
		})
	}
}

func TestIsValidExpiryAt(t *testing.T) {
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		expiry string
		valid  bool
	}{
		{
			name:   "future year",
			expiry: "12/26",
			valid:  true,
		},
		{
			name:   "current month of current year",
			expiry: "06/25",
			valid:  true,
		},
		{
			name:   "past month of current year",
			expiry: "05/25",
			valid:  false,
		},
		{
			name:   "past year",
			expiry: "01/20",
			valid:  false,
		},
		{
			name:   "month out of range",
			expiry: "13/25",
			valid:  false,
		},
		{
			name:   "month zero",
			expiry: "00/26",
			valid:  false,
		},
		{
			name:   "wrong format",
			expiry: "1225",
			valid:  false,
		},
		{
			name:   "letters",
			expiry: "ab/cd",
			valid:  false,
		},
		{
			name:   "empty",
			expiry: "",
			valid:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidExpiryAt(tt.expiry, now)
			if got != tt.valid {
				t.Fatalf("IsValidExpiryAt(%q) = %v, want %v", tt.expiry, got, tt.valid)
			}
		})
	}
}

func TestFormatExpiry(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "four digits",
			raw:  "1225",
			want: "12/25",
		},
		{
			name: "keeps existing separator",
			raw:  "12/25",
			want: "12/25",
		},
		{
			name: "two digits",
			raw:  "12",
			want: "12/",
		},
		{
			name: "single digit",
			raw:  "1",
			want: "1",
		},
		{
			name: "truncates extra digits",
			raw:  "122567",
			want: "12/25",
		},
		{
			name: "empty",
			raw:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatExpiry(tt.raw)
			if got != tt.want {
				t.Fatalf("FormatExpiry(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestIsValidCVV(t *testing.T) {
	tests := []struct {
		name  string
		cvv   string
		valid bool
	}{
		{name: "three digits", cvv: "123", valid: true},
		{name: "four digits", cvv: "1234", valid: true},
		{name: "two digits", cvv: "12", valid: false},
		{name: "five digits", cvv: "12345", valid: false},
		{name: "letters", cvv: "12a", valid: false},
		{name: "empty", cvv: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := IsValidCVV(tt.cvv)
			if got != tt.valid {
				t.Fatalf("IsValidCVV(%q) = %v, want %v", tt.cvv, got, tt.valid)
			}
		})
	}
}

func TestNormalizeCardHolder(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "lowercase to uppercase",
			raw:  "juan perez",
			want: "JUAN PEREZ",
		},
		{
			name: "strips digits and punctuation",
			raw:  "Juan P3rez-Garcia!",
			want: "JUAN PREZGARCIA",
		},
		{
			name: "already normalized",
			raw:  "JUAN PEREZ",
			want: "JUAN PEREZ",
		},
		{
			name: "empty",
			raw:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeCardHolder(tt.raw)
			if got != tt.want {
				t.Fatalf("NormalizeCardHolder(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}
