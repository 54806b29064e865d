package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"issue-triage-pipeline/models"
)

// MinCustomSample is the smallest allowed custom sample size. Custom sizes
// are clamped to [MinCustomSample, rowCount].
const MinCustomSample = 50

// Display limit bounds for the results table.
const (
	MinDisplayLimit     = 5
	MaxDisplayLimit     = 200
	DefaultDisplayLimit = 50
)

// ErrRejected marks input-rejection failures: the upload could not be used
// at all and no partial output is produced.
var ErrRejected = errors.New("input rejected")

func rejectf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrRejected}, args...)...)
}

// Dataset is a parsed upload: a header row plus data rows keyed by column
// name.
type Dataset struct {
	Columns []string
	Rows    []map[string]string
}

// Parse reads a delimited-text upload. A ".zip" filename is treated as an
// archive whose first file entry holds the dataset; every other entry is
// ignored.
func Parse(r io.Reader, filename string) (*Dataset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, rejectf("failed to read upload: %v", err)
	}

	if strings.HasSuffix(strings.ToLower(filename), ".zip") {
		data, err = firstArchiveEntry(data)
		if err != nil {
			return nil, err
		}
	}

	return parseCSV(data)
}

func firstArchiveEntry(data []byte) ([]byte, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, rejectf("failed to open archive: %v", err)
	}

	for _, entry := range archive.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		f, err := entry.Open()
		if err != nil {
			return nil, rejectf("failed to open archive entry %q: %v", entry.Name, err)
		}
		defer f.Close()

		content, err := io.ReadAll(f)
		if err != nil {
			return nil, rejectf("failed to read archive entry %q: %v", entry.Name, err)
		}
		return content, nil
	}

	return nil, rejectf("archive contains no readable entry")
}

func parseCSV(data []byte) (*Dataset, error) {
	reader := csv.NewReader(bytes.NewReader(data))

	header, err := reader.Read()
	if err != nil {
		return nil, rejectf("failed to read header row: %v", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	dataset := &Dataset{Columns: header}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, rejectf("failed to parse row %d: %v", len(dataset.Rows)+2, err)
		}

		m := make(map[string]string, len(header))
		for i, col := range header {
			m[col] = row[i]
		}
		dataset.Rows = append(dataset.Rows, m)
	}

	return dataset, nil
}

// Records extracts issue records using textColumn as the text-bearing
// column. The remaining columns are passed through untouched.
func (d *Dataset) Records(textColumn string) ([]models.IssueRecord, error) {
	if !d.HasColumn(textColumn) {
		return nil, rejectf("column %q not found, have %v", textColumn, d.Columns)
	}

	records := make([]models.IssueRecord, 0, len(d.Rows))
	for i, row := range d.Rows {
		extra := make(map[string]string, len(row)-1)
		for col, val := range row {
			if col != textColumn {
				extra[col] = val
			}
		}
		records = append(records, models.IssueRecord{
			Index:   i,
			RawText: row[textColumn],
			Extra:   extra,
		})
	}
	return records, nil
}

// HasColumn reports whether the dataset header contains the given column.
func (d *Dataset) HasColumn(name string) bool {
	for _, col := range d.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// Sample applies the run's sampling mode to records. Fixed modes take the
// first K rows; custom sizes are clamped to [MinCustomSample, rowCount].
func Sample(records []models.IssueRecord, mode string, customSize int) ([]models.IssueRecord, error) {
	switch mode {
	case models.SampleFull, "":
		return records, nil
	case models.SampleFirst100:
		return head(records, 100), nil
	case models.SampleFirst500:
		return head(records, 500), nil
	case models.SampleFirst1000:
		return head(records, 1000), nil
	case models.SampleCustom:
		size := customSize
		if size < MinCustomSample {
			size = MinCustomSample
		}
		return head(records, size), nil
	default:
		return nil, rejectf("unknown sample mode %q", mode)
	}
}

func head(records []models.IssueRecord, n int) []models.IssueRecord {
	if len(records) <= n {
		return records
	}
	return records[:n]
}

// ClampDisplayLimit bounds the display-row cap to [MinDisplayLimit,
// MaxDisplayLimit]; zero selects the default.
func ClampDisplayLimit(limit int) int {
	if limit == 0 {
		return DefaultDisplayLimit
	}
	if limit < MinDisplayLimit {
		return MinDisplayLimit
	}
	if limit > MaxDisplayLimit {
		return MaxDisplayLimit
	}
	return limit
}
