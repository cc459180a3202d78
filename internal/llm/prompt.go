package llm

import "strings"

// BuildExtractionPrompt composes the single-shot extraction prompt. The rules
// mirror what downstream reconciliation expects: no computed totals, literal
// decimals, null for unknowns.
func BuildExtractionPrompt(ocrText string) string {
	var b strings.Builder
	b.WriteString(`You are a strict JSON generator.

Rules:
- Output ONLY valid JSON
- No markdown
- Do NOT calculate totals
- Preserve decimals exactly
- Use null if unknown

Schema:
{
  "vendor": string | null,
  "date": string | null,
  "total": number | null,
  "tax": number | null,
  "line_items": [
    {
      "name": string,
      "quantity": number,
      "price": number
    }
  ]
}

Receipt text:
`)
	b.WriteString(ocrText)
	return b.String()
}
