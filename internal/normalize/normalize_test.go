package normalize

import (
	"strings"
	"testing"
)

func sptr(s string) *string   { return &s }
func fptr(v float64) *float64 { return &v }

func TestDate(t *testing.T) {
	tests := []struct {
		name string
		in   *string
		want string // "" means nil
	}{
		{name: "iso round trip", in: sptr("2024-01-31"), want: "2024-01-31"},
		{name: "month day year", in: sptr("01/31/2024"), want: "2024-01-31"},
		{name: "day month year", in: sptr("31/01/2024"), want: "2024-01-31"},
		{name: "ambiguous resolves month first", in: sptr("03/05/2024"), want: "2024-03-05"},
		{name: "single digit parts", in: sptr("3/5/2024"), want: "2024-03-05"},
		{name: "nil input", in: nil, want: ""},
		{name: "empty input", in: sptr(""), want: ""},
		{name: "garbage", in: sptr("yesterday-ish"), want: ""},
		{name: "impossible date", in: sptr("13/32/2024"), want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Date(tt.in)
			if tt.want == "" {
				if got != nil {
					t.Fatalf("Date() = %q, want nil", *got)
				}
				return
			}
			if got == nil || *got != tt.want {
				t.Fatalf("Date() = %v, want %q", got, tt.want)
			}
		})
	}
}

func TestFixDecimal(t *testing.T) {
	tests := []struct {
		name string
		in   *float64
		want *float64
	}{
		{name: "nil stays nil", in: nil, want: nil},
		{name: "small value rounded only", in: fptr(44.004), want: fptr(44.0)},
		{name: "boundary untouched", in: fptr(100000.0), want: fptr(100000.0)},
		{name: "one spurious digit", in: fptr(440000.0), want: fptr(44000.0)},
		{name: "two spurious digits", in: fptr(4400000.0), want: fptr(44000.0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FixDecimal(tt.in)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("FixDecimal() = %v, want nil", *got)
				}
				return
			}
			if got == nil || *got != *tt.want {
				t.Fatalf("FixDecimal() = %v, want %v", got, *tt.want)
			}
		})
	}
}

func TestFixDecimalIdempotent(t *testing.T) {
	for _, v := range []float64{0, 12.345, 99999.99, 100000, 100001, 440000, 98765432.1} {
		once := FixDecimal(&v)
		twice := FixDecimal(once)
		if *once != *twice {
			t.Fatalf("FixDecimal not idempotent for %v: once=%v twice=%v", v, *once, *twice)
		}
	}
}

func TestCleanText(t *testing.T) {
	in := "ACME  STORE\r\n\r\n\r\n\r\nTotal:\t44.00   \n----------\nThanks"
	got := CleanText(in)
	if strings.Contains(got, "\r") || strings.Contains(got, "\t") {
		t.Fatalf("CleanText left control whitespace: %q", got)
	}
	if strings.Contains(got, "----------") {
		t.Fatalf("CleanText kept ruled line: %q", got)
	}
	if !strings.Contains(got, "Total: 44.00") {
		t.Fatalf("CleanText mangled content: %q", got)
	}
	if CleanText("") != "" {
		t.Fatal("CleanText of empty string should be empty")
	}
}
