package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/baxromumarov/jobfeeds/internal/core"
	"github.com/baxromumarov/jobfeeds/internal/scraper"
)

func strPtr(s string) *string { return &s }

func testSnapshot() *core.Snapshot {
	return &core.Snapshot{
		Label:      "data-engineer",
		FinishedAt: time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC),
		Postings: []scraper.Posting{
			{
				Source:     "reed",
				Title:      "Data Engineer",
				Salary:     strPtr("£60,000"),
				Location:   strPtr("London"),
				Link:       "https://www.reed.co.uk/jobs/1",
				Advertiser: strPtr("Acme"),
				JobType:    strPtr("Permanent"),
			},
			{
				Source: "cvlibrary",
				Title:  "Senior Data Engineer, Remote",
				Link:   "https://www.cv-library.co.uk/job/2",
			},
		},
		Sources: map[string]core.SourceReport{
			"reed":      {Pages: 2, LinksSeen: 30, Relevant: 1},
			"cvlibrary": {Pages: 1, LinksSeen: 5, Relevant: 1, Failures: core.FailureCounts{Malformed: 2}},
		},
	}
}

func TestFileName(t *testing.T) {
	ts := time.Date(2024, 3, 5, 14, 7, 9, 0, time.FixedZone("BST", 3600))
	assert.Equal(t, "data-engineer_jobs_05-03-2024-13-07-09.csv", FileName("data-engineer", "csv", ts))
	assert.Equal(t, "all_jobs_05-03-2024-13-07-09.xlsx", FileName("", "xlsx", ts))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testSnapshot()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Columns, records[0])
	assert.Equal(t, []string{"Data Engineer", "£60,000", "London", "Acme", "Permanent", "https://www.reed.co.uk/jobs/1", "reed"}, records[1])
	assert.Equal(t, []string{"Senior Data Engineer, Remote", "", "", "", "", "https://www.cv-library.co.uk/job/2", "cvlibrary"}, records[2])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, testSnapshot()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(jobsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Columns, rows[0])
	assert.Equal(t, "Data Engineer", rows[1][0])
	assert.Equal(t, "£60,000", rows[1][1])

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	require.Len(t, summary, 3)
	assert.Equal(t, []string{"cvlibrary", "1", "5", "1", "0", "0", "2"}, summary[1])
	assert.Equal(t, []string{"reed", "2", "30", "1", "0", "0", "0"}, summary[2])
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	snap := testSnapshot()

	path, err := WriteFile(filepath.Join(dir, "out"), "CSV", snap)
	require.NoError(t, err)
	assert.Equal(t, "data-engineer_jobs_05-03-2024-14-07-09.csv", filepath.Base(path))
	_, err = os.Stat(path)
	require.NoError(t, err)

	path, err = WriteFile(dir, FormatXLSX, snap)
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", filepath.Ext(path))

	_, err = WriteFile(dir, "pdf", snap)
	assert.Error(t, err)
}
