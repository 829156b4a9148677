package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gumruklab/gtip/internal/model"
)

const classifySystemPrompt = "You are a customs classification expert for chemical products. " +
	"You read product datasheets and propose tariff classifications. " +
	"Answer with a single JSON object and nothing else."

const adviseSystemPrompt = "You are a customs classification expert for chemical products. " +
	"Ground your answer on the tariff lines and prior cases provided; " +
	"say explicitly when the provided context is insufficient."

const extractSystemPrompt = "You extract product and ingredient inventories from order " +
	"and formulation documents. Answer with a single JSON array and nothing else."

// BuildClassifyPrompt renders the classification instruction with the
// pre-filtered tariff lines and precedent cases as grounding context.
func BuildClassifyPrompt(req ClassifyRequest) string {
	var b strings.Builder

	b.WriteString(`Analyze the attached product documents and return a JSON object with exactly these fields:
{
  "product_name": "",
  "brand": "",
  "suggested_code": "",
  "composition_text": "",
  "features": {
    "use": "",
    "form": "",
    "nonvolatile_pct": null,
    "solvent_present": false,
    "polymer_family": null,
    "is_surfactant": false,
    "is_primary_polymer_form": false,
    "is_paint_or_varnish": false,
    "ionicity": ""
  },
  "tags": [],
  "short_reason": ""
}

suggested_code must come from the tariff lines below when any applies.
short_reason must be one or two sentences naming the decisive property.
`)

	if req.TariffContext != "" {
		b.WriteString("\nRelevant tariff lines:\n")
		b.WriteString(req.TariffContext)
		b.WriteString("\n")
	}
	if req.PrecedentContext != "" {
		b.WriteString("\nClosest prior classifications:\n")
		b.WriteString(req.PrecedentContext)
		b.WriteString("\n")
	}

	appendTextDocuments(&b, req.Documents)
	return b.String()
}

// BuildAdvisePrompt renders a free-form question with its grounding
// context.
func BuildAdvisePrompt(req AdviseRequest) string {
	var b strings.Builder
	b.WriteString(req.Question)
	b.WriteString("\n")

	if req.TariffContext != "" {
		b.WriteString("\nRelevant tariff lines:\n")
		b.WriteString(req.TariffContext)
		b.WriteString("\n")
	}
	if req.PrecedentContext != "" {
		b.WriteString("\nClosest prior classifications:\n")
		b.WriteString(req.PrecedentContext)
		b.WriteString("\n")
	}

	appendTextDocuments(&b, req.Documents)
	return b.String()
}

// BuildExtractPrompt renders the product-inventory instruction.
func BuildExtractPrompt(req ExtractRequest) string {
	var b strings.Builder
	b.WriteString(`List every product in the attached documents as a JSON array:
[{"name": "", "ingredients": [{"name": "", "cas": "", "percent": ""}]}]

Use the CAS number exactly as printed. Leave "cas" empty when the
document gives none. Do not invent ingredients.
`)
	appendTextDocuments(&b, req.Documents)
	return b.String()
}

// RenderPrecedents formats ranked cases for prompt context.
func RenderPrecedents(cases []model.Case) string {
	if len(cases) == 0 {
		return ""
	}
	var b strings.Builder
	for _, c := range cases {
		fmt.Fprintf(&b, "- %s => %s (%s)\n", c.ProductName, c.AssignedCode, c.ShortReason)
	}
	return b.String()
}

func appendTextDocuments(b *strings.Builder, docs []Document) {
	for _, d := range docs {
		if !strings.HasPrefix(d.MIME, "text/") {
			continue
		}
		fmt.Fprintf(b, "\nDocument %s:\n%s\n", d.Name, string(d.Data))
	}
}

// CleanJSONReply strips markdown code fences the models habitually
// wrap JSON replies in.
func CleanJSONReply(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}

// ParseClassification decodes a Classify reply, tolerating fenced
// JSON. The raw reply is preserved for the classification log.
func ParseClassification(reply string) (*Classification, error) {
	cleaned := CleanJSONReply(reply)
	var c Classification
	if err := json.Unmarshal([]byte(cleaned), &c); err != nil {
		return nil, fmt.Errorf("parse classification reply: %w", err)
	}
	c.Raw = reply
	return &c, nil
}

// ParseExtractedProducts decodes an ExtractProducts reply.
func ParseExtractedProducts(reply string) ([]ExtractedProduct, error) {
	cleaned := CleanJSONReply(reply)
	var products []ExtractedProduct
	if err := json.Unmarshal([]byte(cleaned), &products); err != nil {
		return nil, fmt.Errorf("parse extraction reply: %w", err)
	}
	return products, nil
}
