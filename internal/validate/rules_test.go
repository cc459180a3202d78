package validate

import (
	"testing"

	"receipt-digitizer/internal/entity"
)

func sptr(s string) *string   { return &s }
func fptr(v float64) *float64 { return &v }

func sampleRecord() *entity.Receipt {
	return &entity.Receipt{
		Vendor: sptr("Acme"),
		Date:   sptr("2024-03-05"),
		Total:  fptr(44.00),
		Tax:    fptr(4.00),
		LineItems: []entity.LineItem{
			{Name: "Widget", Quantity: 2, Price: 20.00},
		},
	}
}

func TestCheckAllPass(t *testing.T) {
	rep := Check(sampleRecord())
	if rep.Subtotal != 40.00 {
		t.Fatalf("subtotal = %v, want 40.00", rep.Subtotal)
	}
	if !rep.TotalConsistent {
		t.Fatal("total should be consistent")
	}
	if rep.DateStatus != StatusValidDate {
		t.Fatalf("date status = %q, want %q", rep.DateStatus, StatusValidDate)
	}
	if !rep.RequiredFields {
		t.Fatal("required fields should pass")
	}
	if !rep.TaxRatePlausible {
		t.Fatal("10% tax rate should be plausible")
	}
}

func TestTotalConsistency(t *testing.T) {
	rec := sampleRecord()
	rec.Total = fptr(44.80) // within 1.0 of 40 + 4
	if !Check(rec).TotalConsistent {
		t.Fatal("0.8 off should still be consistent")
	}

	rec.Total = fptr(46.00)
	if Check(rec).TotalConsistent {
		t.Fatal("2.0 off should be inconsistent")
	}

	rec.Total = nil
	if Check(rec).TotalConsistent {
		t.Fatal("absent total must fail, not pass")
	}

	rec = sampleRecord()
	rec.LineItems = nil
	if Check(rec).TotalConsistent {
		t.Fatal("no line items means no subtotal input; must fail")
	}

	rec = sampleRecord()
	rec.Tax = nil // tax treated as 0: 40 vs 44 is off by 4
	if Check(rec).TotalConsistent {
		t.Fatal("missing tax should not paper over the gap")
	}
}

func TestDateStatus(t *testing.T) {
	tests := []struct {
		name string
		date *string
		want string
	}{
		{name: "valid iso", date: sptr("2024-03-05"), want: StatusValidDate},
		{name: "absent", date: nil, want: StatusNoDate},
		{name: "empty", date: sptr(""), want: StatusNoDate},
		{name: "unknown sentinel", date: sptr("UNKNOWN"), want: StatusNoDate},
		{name: "wrong format", date: sptr("03/05/2024"), want: StatusInvalidDate},
		{name: "garbage", date: sptr("soon"), want: StatusInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := sampleRecord()
			rec.Date = tt.date
			if got := Check(rec).DateStatus; got != tt.want {
				t.Fatalf("DateStatus = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequiredFields(t *testing.T) {
	mutations := []struct {
		name   string
		mutate func(*entity.Receipt)
	}{
		{name: "no vendor", mutate: func(r *entity.Receipt) { r.Vendor = nil }},
		{name: "empty vendor", mutate: func(r *entity.Receipt) { r.Vendor = sptr("") }},
		{name: "no date", mutate: func(r *entity.Receipt) { r.Date = nil }},
		{name: "no total", mutate: func(r *entity.Receipt) { r.Total = nil }},
		{name: "no items", mutate: func(r *entity.Receipt) { r.LineItems = nil }},
	}
	for _, tt := range mutations {
		t.Run(tt.name, func(t *testing.T) {
			rec := sampleRecord()
			tt.mutate(rec)
			if Check(rec).RequiredFields {
				t.Fatal("RequiredFields should fail")
			}
		})
	}
}

func TestTaxRatePlausible(t *testing.T) {
	rec := sampleRecord()

	rec.Tax = fptr(13.00) // 32.5% of 40
	if Check(rec).TaxRatePlausible {
		t.Fatal("rate above 30% should be implausible")
	}

	rec.Tax = fptr(12.00) // exactly 30%
	if !Check(rec).TaxRatePlausible {
		t.Fatal("30% boundary is inclusive")
	}

	rec.Tax = nil
	if Check(rec).TaxRatePlausible {
		t.Fatal("absent tax cannot be plausible")
	}

	rec = sampleRecord()
	rec.LineItems = nil // subtotal 0
	if Check(rec).TaxRatePlausible {
		t.Fatal("zero subtotal cannot support a rate")
	}
}
