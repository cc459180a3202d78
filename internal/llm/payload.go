package llm

import (
	"encoding/json"
	"strconv"
	"strings"

	"receipt-digitizer/constants"
	"receipt-digitizer/internal/entity"
	"receipt-digitizer/internal/normalize"
)

// ExtractPayload locates the JSON object embedded in a model response (first
// "{" to last "}") and normalizes its shape. It never fails: any malformed
// input yields the safe empty payload. The returned raw span and ok flag let
// callers run stricter checks (schema validation) without re-parsing.
func ExtractPayload(response string) (Payload, []byte, bool) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start < 0 || end <= start {
		return emptyPayload(), nil, false
	}
	raw := []byte(response[start : end+1])

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return emptyPayload(), raw, false
	}
	return shapePayload(m), raw, true
}

func emptyPayload() Payload {
	return Payload{LineItems: []entity.LineItem{}}
}

// shapePayload coerces a loosely-typed object into the expected shape.
// Missing keys default to absent; malformed line items are repaired in place,
// never discarded.
func shapePayload(m map[string]any) Payload {
	p := Payload{
		Vendor:    asString(m["vendor"]),
		Date:      asString(m["date"]),
		Total:     asNumber(m["total"]),
		Tax:       asNumber(m["tax"]),
		LineItems: []entity.LineItem{},
	}

	items, _ := m["line_items"].([]any)
	for _, raw := range items {
		obj, _ := raw.(map[string]any)
		p.LineItems = append(p.LineItems, shapeLineItem(obj))
	}
	return p
}

func shapeLineItem(obj map[string]any) entity.LineItem {
	var it entity.LineItem
	if name := asString(obj["name"]); name != nil {
		it.Name = *name
	}

	it.Price = 0
	if v := asNumber(obj["price"]); v != nil && *v >= 0 {
		it.Price = normalize.Round2(*v)
	}

	it.Quantity = 1
	if v := asNumber(obj["quantity"]); v != nil && int(*v) >= 1 {
		it.Quantity = int(*v)
	}

	// An OCR line-number digit misread as a multiplier: expensive items do
	// not plausibly repeat on one line.
	if it.Quantity > 1 && it.Price > constants.QuantityGuardPrice {
		it.Quantity = 1
	}
	return it
}

func asString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func asNumber(v any) *float64 {
	switch t := v.(type) {
	case float64:
		return &t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}
