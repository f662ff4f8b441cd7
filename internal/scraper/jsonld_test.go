package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baxromumarov/jobfeeds/internal/dom"
)

const jsonLDPage = `<html><head>
<script type="application/ld+json">{"@context":"https://schema.org","@type":"BreadcrumbList"}</script>
<script type="application/ld+json">{"@graph":[{"@type":["JobPosting"],
 "title":"Python Developer",
 "baseSalary":{"@type":"MonetaryAmount","currency":"GBP","value":{"minValue":50000,"maxValue":60000,"unitText":"YEAR"}},
 "jobLocation":[{"address":{"addressLocality":"Leeds","addressRegion":"West Yorkshire"}}],
 "hiringOrganization":{"@type":"Organization","name":"Acme Ltd"},
 "employmentType":["CONTRACTOR","FULL_TIME"],
 "description":"<p>Build <b>pipelines</b></p>"}]}</script>
</head><body><h1>Python Developer</h1><span class="location">London</span></body></html>`

func titleOnly(doc *dom.Document, link string) (Posting, error) {
	return Posting{
		Title:    doc.Find(dom.Tag("h1")).Text(),
		Link:     link,
		Location: dom.OptionalText(doc.Find(dom.ByClass("span", "location"))),
	}, nil
}

func TestWithStructuredDataFillsAbsentFields(t *testing.T) {
	doc, err := dom.ParseString(jsonLDPage)
	require.NoError(t, err)

	p, err := WithStructuredData(ExtractorFunc(titleOnly)).Extract(doc, "https://example.com/job/1")
	require.NoError(t, err)

	assert.Equal(t, "Python Developer", p.Title)
	assert.Equal(t, "London", Value(p.Location), "selector value wins")
	assert.Equal(t, "£50,000 - £60,000 per year", Value(p.Salary))
	assert.Equal(t, "Acme Ltd", Value(p.Advertiser))
	assert.Equal(t, "CONTRACTOR, FULL_TIME", Value(p.JobType))
	assert.Equal(t, "Build pipelines", p.Description)
}

func TestWithStructuredDataWithoutJSONLD(t *testing.T) {
	doc, err := dom.ParseString(`<html><body><h1>Go Developer</h1></body></html>`)
	require.NoError(t, err)

	p, err := WithStructuredData(ExtractorFunc(titleOnly)).Extract(doc, "https://example.com/job/2")
	require.NoError(t, err)
	assert.Nil(t, p.Salary)
	assert.Nil(t, p.Advertiser)
	assert.Equal(t, "", p.Description)
}

func TestWithStructuredDataKeepsErrors(t *testing.T) {
	doc, err := dom.ParseString(jsonLDPage)
	require.NoError(t, err)

	_, err = WithStructuredData(reedExtractor{}).Extract(doc, "https://www.reed.co.uk/jobs/1")
	require.NoError(t, err)

	missing, err := dom.ParseString(`<html><body><p>gone</p></body></html>`)
	require.NoError(t, err)
	_, err = WithStructuredData(reedExtractor{}).Extract(missing, "https://www.reed.co.uk/jobs/2")
	var mde *MalformedDocumentError
	assert.ErrorAs(t, err, &mde)
}

func TestFormatSalary(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"string", " £400 per day ", "£400 per day"},
		{"flat value", map[string]any{"currency": "USD", "value": 120000.0}, "$120,000"},
		{"single in range", map[string]any{"currency": "GBP", "value": map[string]any{"value": 550.0, "unitText": "DAY"}}, "£550 per day"},
		{"equal bounds", map[string]any{"currency": "EUR", "value": map[string]any{"minValue": 70000.0, "maxValue": 70000.0}}, "€70,000"},
		{"no amount", map[string]any{"currency": "GBP"}, ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatSalary(tt.in))
		})
	}
}
