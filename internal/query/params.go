// Package query holds the immutable per-run search parameters.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Params is built once per run and shared read-only by every component.
type Params struct {
	keyword      string
	urlKeyword   string
	matchString  string
	label        string
	minSalary    int
	contractOnly bool
}

// New lowercases the keyword. Each word is query-escaped and the words are
// joined with '+' for URLs, while the lowercase phrase, spaces kept and
// unescaped, is used for matching.
func New(keyword string, minSalary int, contractOnly bool) Params {
	lower := cases.Lower(language.Und).String(strings.TrimSpace(keyword))
	fields := strings.Fields(lower)
	if minSalary < 0 {
		minSalary = 0
	}
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = url.QueryEscape(f)
	}
	return Params{
		keyword:      keyword,
		urlKeyword:   strings.Join(escaped, "+"),
		matchString:  lower,
		label:        strings.Join(fields, "-"),
		minSalary:    minSalary,
		contractOnly: contractOnly,
	}
}

// Keyword is the value as supplied by the caller.
func (p Params) Keyword() string { return p.keyword }

// URLKeyword is the lowercase keyword, each word query-escaped, joined by '+'.
func (p Params) URLKeyword() string { return p.urlKeyword }

// MatchString is the lowercase phrase tested against titles and descriptions.
func (p Params) MatchString() string { return p.matchString }

// Label is the lowercase keyword with words joined by '-', used in file and run names.
func (p Params) Label() string { return p.label }

func (p Params) MinSalary() int { return p.minSalary }

func (p Params) ContractOnly() bool { return p.contractOnly }

func (p Params) String() string {
	return p.urlKeyword + "/" + strconv.Itoa(p.minSalary) + "/contract=" + strconv.FormatBool(p.contractOnly)
}
