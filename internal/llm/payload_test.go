package llm

import (
	"testing"

	"receipt-digitizer/internal/entity"
)

func TestExtractPayloadSafeDefault(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{name: "plain prose", response: "Sorry, I could not read that receipt."},
		{name: "empty string", response: ""},
		{name: "braces but malformed", response: "here you go {vendor: Acme,}"},
		{name: "closing brace before opening", response: "} nothing {"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, _, ok := ExtractPayload(tt.response)
			if ok {
				t.Fatal("expected ok=false for malformed response")
			}
			if p.Vendor != nil || p.Date != nil || p.Total != nil || p.Tax != nil {
				t.Fatalf("safe default payload has fields set: %+v", p)
			}
			if p.LineItems == nil || len(p.LineItems) != 0 {
				t.Fatalf("safe default payload line items = %v, want empty", p.LineItems)
			}
		})
	}
}

func TestExtractPayloadEmbeddedJSON(t *testing.T) {
	response := "Sure! Here is the JSON you asked for:\n" +
		`{"vendor":"Acme","date":"2024-03-05","total":44.0,"tax":4.0,` +
		`"line_items":[{"name":"  Widget ","quantity":2,"price":20.0}]}` +
		"\nLet me know if you need anything else."

	p, raw, ok := ExtractPayload(response)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if raw == nil || raw[0] != '{' || raw[len(raw)-1] != '}' {
		t.Fatalf("raw span not a JSON object: %q", raw)
	}
	if p.Vendor == nil || *p.Vendor != "Acme" {
		t.Fatalf("vendor = %v, want Acme", p.Vendor)
	}
	if p.Date == nil || *p.Date != "2024-03-05" {
		t.Fatalf("date = %v, want 2024-03-05", p.Date)
	}
	if p.Total == nil || *p.Total != 44.0 {
		t.Fatalf("total = %v, want 44.0", p.Total)
	}
	if len(p.LineItems) != 1 {
		t.Fatalf("line items = %v, want one", p.LineItems)
	}
	if got, want := p.LineItems[0], (entity.LineItem{Name: "Widget", Quantity: 2, Price: 20.0}); got != want {
		t.Fatalf("line item = %+v, want %+v", got, want)
	}
}

func TestExtractPayloadCoercion(t *testing.T) {
	response := `{"total":"44.00","tax":null,` +
		`"line_items":[` +
		`{"name":"Pen"},` +
		`{"name":"Stapler","quantity":"2","price":"3.456"},` +
		`{"name":"Refund","quantity":1,"price":-5.0},` +
		`{"name":"Desk","quantity":0,"price":12.0}` +
		`]}`

	p, _, ok := ExtractPayload(response)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if p.Vendor != nil {
		t.Fatalf("missing vendor should be nil, got %v", *p.Vendor)
	}
	if p.Total == nil || *p.Total != 44.0 {
		t.Fatalf("string total not coerced: %v", p.Total)
	}
	if p.Tax != nil {
		t.Fatalf("null tax should be nil, got %v", *p.Tax)
	}

	want := []entity.LineItem{
		{Name: "Pen", Quantity: 1, Price: 0},
		{Name: "Stapler", Quantity: 2, Price: 3.46},
		{Name: "Refund", Quantity: 1, Price: 0},
		{Name: "Desk", Quantity: 1, Price: 12.0},
	}
	if len(p.LineItems) != len(want) {
		t.Fatalf("line items = %d, want %d (never discard, always repair)", len(p.LineItems), len(want))
	}
	for i, w := range want {
		if p.LineItems[i] != w {
			t.Fatalf("item %d = %+v, want %+v", i, p.LineItems[i], w)
		}
	}
}

func TestExtractPayloadQuantityGuard(t *testing.T) {
	tests := []struct {
		name     string
		quantity int
		price    float64
		wantQty  int
	}{
		{name: "expensive multi-quantity forced to one", quantity: 3, price: 45.00, wantQty: 1},
		{name: "cheap multi-quantity kept", quantity: 3, price: 5.00, wantQty: 3},
		{name: "expensive single kept", quantity: 1, price: 45.00, wantQty: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := shapeLineItem(map[string]any{
				"name":     "thing",
				"quantity": float64(tt.quantity),
				"price":    tt.price,
			})
			if it.Quantity != tt.wantQty {
				t.Fatalf("quantity = %d, want %d", it.Quantity, tt.wantQty)
			}
			if it.Price != tt.price {
				t.Fatalf("price = %v, want %v (guard must not touch price)", it.Price, tt.price)
			}
		})
	}
}

func TestSchemaValidation(t *testing.T) {
	schema := BuildReceiptSchema()

	good := []byte(`{"vendor":"Acme","date":null,"total":44.0,"tax":null,"line_items":[]}`)
	if err := ValidateAgainstSchema(schema, good); err != nil {
		t.Fatalf("well-formed payload rejected: %v", err)
	}

	bad := []byte(`{"vendor":"Acme","total":"44.00"}`)
	if err := ValidateAgainstSchema(schema, bad); err == nil {
		t.Fatal("wrong-shape payload accepted")
	}
}
