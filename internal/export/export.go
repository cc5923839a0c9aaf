// Package export renders record listings as downloadable CSV or XLSX files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ERPlora/module-training/internal/domain"
	"github.com/ERPlora/module-training/internal/domain/listing"
)

// Format is a download format accepted by the export query parameter.
type Format string

const (
	CSV   Format = "csv"
	Excel Format = "excel"
)

// ParseFormat accepts "csv" and "excel".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case CSV, Excel:
		return Format(s), nil
	default:
		return "", fmt.Errorf("%w: export format %q", domain.ErrValidation, s)
	}
}

// Ext returns the file extension for f.
func (f Format) Ext() string {
	if f == Excel {
		return "xlsx"
	}
	return "csv"
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == Excel {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename returns the download name for kind, e.g. "skills.csv".
func Filename(kind string, f Format) string {
	return kind + "." + f.Ext()
}

// Table is a rendered export: a header row plus formatted cells.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// Build formats items through the descriptor's columns, in order.
func Build[T any](d *listing.Descriptor[T], items []T) Table {
	t := Table{Name: d.Kind, Headers: d.Headers(), Rows: make([][]string, 0, len(items))}
	for i := range items {
		row := make([]string, len(d.Columns))
		for j, c := range d.Columns {
			row[j] = Cell(c.Value(&items[i]))
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Write encodes t to w in format f. The header row is written even when
// there are no rows.
func Write(w io.Writer, f Format, t Table) error {
	switch f {
	case CSV:
		return writeCSV(w, t)
	case Excel:
		return writeXLSX(w, t)
	default:
		return fmt.Errorf("%w: export format %q", domain.ErrValidation, f)
	}
}

func writeCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("write csv rows: %w", err)
	}
	return nil
}

func writeXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := t.Name
	if sheet == "" {
		sheet = "Sheet1"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("open sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	if err := sw.SetRow("A1", cells(t.Headers), excelize.RowOpts{StyleID: bold}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, row := range t.Rows {
		ref, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(ref, cells(row)); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func cells(row []string) []any {
	out := make([]any, len(row))
	for i, v := range row {
		out[i] = v
	}
	return out
}
