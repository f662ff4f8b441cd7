// Package export writes run snapshots to CSV and XLSX files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/baxromumarov/jobfeeds/internal/core"
	"github.com/baxromumarov/jobfeeds/internal/scraper"
)

const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatNone = "none"

	jobsSheet    = "Jobs"
	summarySheet = "Summary"
	stampLayout  = "02-01-2006-15-04-05"
)

// Columns is the header row of every export.
var Columns = []string{"Title", "Salary", "Location", "Advertiser", "Type", "Url", "Source"}

var summaryColumns = []string{"Source", "Pages", "Links seen", "Relevant", "Fetch failures", "Extraction failures", "Malformed"}

// FileName is "{label}_jobs_{DD-MM-YYYY-HH-MM-SS}.{ext}" with the time in UTC.
func FileName(label, ext string, t time.Time) string {
	if label == "" {
		label = "all"
	}
	return fmt.Sprintf("%s_jobs_%s.%s", label, t.UTC().Format(stampLayout), ext)
}

// Rows renders postings in snapshot order, absent fields as "".
func Rows(postings []scraper.Posting) [][]string {
	rows := make([][]string, 0, len(postings))
	for _, p := range postings {
		rows = append(rows, []string{
			p.Title,
			scraper.Value(p.Salary),
			scraper.Value(p.Location),
			scraper.Value(p.Advertiser),
			scraper.Value(p.JobType),
			p.Link,
			p.Source,
		})
	}
	return rows
}

func WriteCSV(w io.Writer, snap *core.Snapshot) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	if err := cw.WriteAll(Rows(snap.Postings)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// WriteXLSX writes a workbook with the postings on one sheet and the
// per-source counts on another.
func WriteXLSX(w io.Writer, snap *core.Snapshot) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", jobsSheet); err != nil {
		return err
	}
	if err := setRow(f, jobsSheet, 1, Columns); err != nil {
		return err
	}
	for i, row := range Rows(snap.Postings) {
		if err := setRow(f, jobsSheet, i+2, row); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return err
	}
	if err := setRow(f, summarySheet, 1, summaryColumns); err != nil {
		return err
	}
	for i, name := range snap.SourceNames() {
		r := snap.Sources[name]
		row := []any{name, r.Pages, r.LinksSeen, r.Relevant, r.Failures.Fetch, r.Failures.Extraction, r.Failures.Malformed}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// WriteFile exports snap into dir in the given format and returns the path.
func WriteFile(dir, format string, snap *core.Snapshot) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	var write func(io.Writer, *core.Snapshot) error
	switch format {
	case FormatCSV:
		write = WriteCSV
	case FormatXLSX:
		write = WriteXLSX
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName(snap.Label, format, snap.FinishedAt))
	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := write(out, snap); err != nil {
		out.Close()
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return path, nil
}
