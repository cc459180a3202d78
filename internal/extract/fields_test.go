package extract

import "testing"

func fptr(v float64) *float64 { return &v }

func TestDate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string // "" means nil
	}{
		{
			name: "slash date",
			text: "Date: 03/05/2024",
			want: "03/05/2024",
		},
		{
			name: "iso date",
			text: "Issued 2024-03-05 thanks",
			want: "2024-03-05",
		},
		{
			name: "last occurrence wins",
			text: "Opened 01/01/2024\nitems...\nClosed 02/02/2024",
			want: "02/02/2024",
		},
		{
			name: "no date",
			text: "no dates here, just 12.50",
			want: "",
		},
		{
			name: "single digit day and month",
			text: "3/5/2024",
			want: "3/5/2024",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Date(tt.text)
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

func TestTotal(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *float64
	}{
		{
			name: "labelled total",
			text: "Total: 44.00",
			want: fptr(44.00),
		},
		{
			name: "subtotal is not a total",
			text: "Subtotal 40.00",
			want: nil,
		},
		{
			name: "last match wins over earlier total",
			text: "Total 40.00\nTax 4.00\nGrand Total $44.00",
			want: fptr(44.00),
		},
		{
			name: "amount payable label",
			text: "AMOUNT PAYABLE 123.45",
			want: fptr(123.45),
		},
		{
			name: "integer amounts are ignored",
			text: "Total 44",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Total(tt.text)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("Total() = %v, want nil", *got)
				}
				return
			}
			if got == nil || *got != *tt.want {
				t.Fatalf("Total() = %v, want %v", got, *tt.want)
			}
		})
	}
}

func TestTax(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		total *float64
		want  *float64
	}{
		{
			name:  "plain tax line",
			text:  "Tax 4.00",
			total: fptr(44.00),
			want:  fptr(4.00),
		},
		{
			name:  "candidate at or above total is discarded",
			text:  "Tax 999.99",
			total: fptr(50.00),
			want:  nil,
		},
		{
			name:  "max surviving candidate wins",
			text:  "CGST 2.00\nSGST 2.00\nTax 3.50",
			total: fptr(50.00),
			want:  fptr(3.50),
		},
		{
			name:  "qualifier digit after label",
			text:  "TAX1: 1.25",
			total: nil,
			want:  fptr(1.25),
		},
		{
			name:  "no anchor keeps all candidates",
			text:  "VAT 999.99",
			total: nil,
			want:  fptr(999.99),
		},
		{
			name:  "spurious fragment below real tax",
			text:  "Tax 0.40\nTax 4.00",
			total: fptr(44.00),
			want:  fptr(4.00),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tax(tt.text, tt.total)
			if tt.want == nil {
				if got != nil {
					t.Fatalf("Tax() = %v, want nil", *got)
				}
				return
			}
			if got == nil || *got != *tt.want {
				t.Fatalf("Tax() = %v, want %v", got, *tt.want)
			}
		})
	}
}

func TestInvoiceID(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "invoice number with hash",
			text: "Invoice # INV-2024/001",
			want: "INV-2024/001",
		},
		{
			name: "receipt no",
			text: "Receipt No: R12345",
			want: "R12345",
		},
		{
			name: "first match wins",
			text: "Bill 777\nInvoice 888",
			want: "777",
		},
		{
			name: "absent",
			text: "nothing to see",
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InvoiceID(tt.text)
			if tt.want == "" {
				if got != nil {
					t.Fatalf("InvoiceID() = %q, want nil", *got)
				}
				return
			}
			if got == nil || *got != tt.want {
				t.Fatalf("InvoiceID() = %v, want %q", got, tt.want)
			}
		})
	}
}
