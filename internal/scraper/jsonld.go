package scraper

import (
	"encoding/json"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/baxromumarov/jobfeeds/internal/dom"
)

var jsonLDSelector = dom.ByAttr("script", "type", "application/ld+json")

var currencySymbols = map[string]string{
	"GBP": "£",
	"USD": "$",
	"EUR": "€",
}

// WithStructuredData wraps ex so that fields it leaves absent are filled from
// a schema.org JobPosting embedded in the page as JSON-LD. Errors from ex are
// returned unchanged.
func WithStructuredData(ex Extractor) Extractor {
	return ExtractorFunc(func(doc *dom.Document, link string) (Posting, error) {
		p, err := ex.Extract(doc, link)
		if err != nil {
			return p, err
		}
		if jp := findJobPostingLD(doc); jp != nil {
			fillFromJobPosting(&p, jp)
		}
		return p, nil
	})
}

func findJobPostingLD(doc *dom.Document) map[string]any {
	for _, script := range doc.FindAll(jsonLDSelector) {
		raw := strings.TrimSpace(script.RawText())
		if raw == "" {
			continue
		}
		var payload any
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			continue
		}
		if jp := findJobPosting(payload); jp != nil {
			return jp
		}
	}
	return nil
}

func findJobPosting(payload any) map[string]any {
	switch t := payload.(type) {
	case map[string]any:
		if isJobPostingType(t["@type"]) {
			return t
		}
		if graph, ok := t["@graph"].([]any); ok {
			for _, item := range graph {
				if jp := findJobPosting(item); jp != nil {
					return jp
				}
			}
		}
	case []any:
		for _, item := range t {
			if jp := findJobPosting(item); jp != nil {
				return jp
			}
		}
	}
	return nil
}

func isJobPostingType(t any) bool {
	switch v := t.(type) {
	case string:
		return v == "JobPosting"
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s == "JobPosting" {
				return true
			}
		}
	}
	return false
}

func fillFromJobPosting(p *Posting, jp map[string]any) {
	if p.Salary == nil {
		p.Salary = nonEmpty(formatSalary(jp["baseSalary"]))
	}
	if p.Location == nil {
		p.Location = nonEmpty(locality(jp["jobLocation"]))
	}
	if p.Advertiser == nil {
		p.Advertiser = nonEmpty(nameOf(jp["hiringOrganization"]))
	}
	if p.JobType == nil {
		p.JobType = nonEmpty(strings.Join(stringList(jp["employmentType"]), ", "))
	}
	if p.Description == "" {
		if s, ok := jp["description"].(string); ok {
			p.Description = htmlText(s)
		}
	}
}

func formatSalary(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		symbol := currencySymbols[strings.ToUpper(stringValue(t["currency"]))]
		var amount, unit string
		switch val := t["value"].(type) {
		case float64:
			amount = formatAmount(symbol, val)
		case map[string]any:
			unit = stringValue(val["unitText"])
			lo, hasLo := val["minValue"].(float64)
			hi, hasHi := val["maxValue"].(float64)
			single, hasSingle := val["value"].(float64)
			switch {
			case hasLo && hasHi && lo != hi:
				amount = formatAmount(symbol, lo) + " - " + formatAmount(symbol, hi)
			case hasLo:
				amount = formatAmount(symbol, lo)
			case hasHi:
				amount = formatAmount(symbol, hi)
			case hasSingle:
				amount = formatAmount(symbol, single)
			}
		}
		if amount == "" {
			return ""
		}
		if unit != "" {
			amount += " per " + cases.Lower(language.Und).String(unit)
		}
		return amount
	}
	return ""
}

func formatAmount(symbol string, v float64) string {
	return symbol + message.NewPrinter(language.BritishEnglish).Sprintf("%d", int64(v))
}

func locality(v any) string {
	switch t := v.(type) {
	case []any:
		if len(t) > 0 {
			return locality(t[0])
		}
	case map[string]any:
		addr, _ := t["address"].(map[string]any)
		if addr == nil {
			return ""
		}
		var parts []string
		for _, key := range []string{"addressLocality", "addressRegion"} {
			if s := stringValue(addr[key]); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	}
	return ""
}

func nameOf(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		return stringValue(t["name"])
	}
	return ""
}

func stringList(v any) []string {
	switch t := v.(type) {
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []string{s}
		}
	case []any:
		var out []string
		for _, item := range t {
			if s := stringValue(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func stringValue(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// htmlText strips markup from a JSON-LD description.
func htmlText(s string) string {
	doc, err := dom.ParseString(s)
	if err != nil {
		return strings.TrimSpace(s)
	}
	return doc.Find(dom.Tag("body")).Text()
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
