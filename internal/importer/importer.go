// Package importer parses bulk category uploads. It interprets the
// file and reports what it found; persisting the rows is the caller's
// job.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Header is the fixed column layout of the import template. Rows fill a
// three-level hierarchy; category and subcategory may be left blank to
// stop at a shallower level.
var Header = []string{"Main Category", "Category", "Subcategory"}

// Row is one parsed data row. Line is 1-based and counts the header.
type Row struct {
	Line        int
	Main        string
	Category    string
	Subcategory string
}

// RowIssue explains why a row was not imported.
type RowIssue struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Summary is what the upload endpoint returns to the console. The
// counts tally distinct names per level across accepted rows.
type Summary struct {
	TotalRows      int        `json:"totalRows"`
	MainCategories int        `json:"mainCategories"`
	Categories     int        `json:"categories"`
	Subcategories  int        `json:"subcategories"`
	SkippedRows    []RowIssue `json:"skippedRows"`
	FailedRows     []RowIssue `json:"failedRows"`
}

// TemplateCSV returns the downloadable import template: the header row
// and one example row.
func TemplateCSV() []byte {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Write(Header)
	w.Write([]string{"Clothing", "Outerwear", "Rain Jackets"})
	w.Flush()
	return buf.Bytes()
}

// ParseCatalog reads a .csv or .xlsx upload and returns the accepted
// rows plus a summary. Malformed rows land in the summary rather than
// aborting the whole file; only an unreadable file is an error.
func ParseCatalog(r io.Reader, filename string) ([]Row, *Summary, error) {
	var records [][]string
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		records, err = readCSV(r)
	case ".xlsx":
		records, err = readXLSX(r)
	default:
		return nil, nil, fmt.Errorf("unsupported file type %q", filepath.Ext(filename))
	}
	if err != nil {
		return nil, nil, err
	}

	summary := &Summary{
		SkippedRows: []RowIssue{},
		FailedRows:  []RowIssue{},
	}
	var rows []Row

	mains := map[string]bool{}
	cats := map[string]bool{}
	subs := map[string]bool{}
	seen := map[string]bool{}

	for i, record := range records {
		line := i + 1
		if line == 1 && isHeader(record) {
			continue
		}

		main, cat, sub := field(record, 0), field(record, 1), field(record, 2)
		if main == "" && cat == "" && sub == "" {
			summary.SkippedRows = append(summary.SkippedRows, RowIssue{Line: line, Reason: "empty row"})
			continue
		}
		summary.TotalRows++

		switch {
		case main == "":
			summary.FailedRows = append(summary.FailedRows, RowIssue{Line: line, Reason: "missing main category"})
			continue
		case sub != "" && cat == "":
			summary.FailedRows = append(summary.FailedRows, RowIssue{Line: line, Reason: "subcategory without a category"})
			continue
		}

		path := main + "\x00" + cat + "\x00" + sub
		if seen[path] {
			summary.SkippedRows = append(summary.SkippedRows, RowIssue{Line: line, Reason: "duplicate row"})
			continue
		}
		seen[path] = true

		if !mains[main] {
			mains[main] = true
			summary.MainCategories++
		}
		if cat != "" {
			key := main + "\x00" + cat
			if !cats[key] {
				cats[key] = true
				summary.Categories++
			}
		}
		if sub != "" {
			key := main + "\x00" + cat + "\x00" + sub
			if !subs[key] {
				subs[key] = true
				summary.Subcategories++
			}
		}

		rows = append(rows, Row{Line: line, Main: main, Category: cat, Subcategory: sub})
	}

	return rows, summary, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return records, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("xlsx has no sheets")
	}
	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read xlsx rows: %w", err)
	}
	return records, nil
}

func field(record []string, i int) string {
	if i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func isHeader(record []string) bool {
	return len(record) > 0 && strings.EqualFold(strings.TrimSpace(record[0]), Header[0])
}
