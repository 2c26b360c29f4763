package importer

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tealeg/xlsx/v3"

	"floorplan-inventory/pkg/inventory"
)

var (
	ErrFileNotFound       = errors.New("file not found")
	ErrUnsupportedFormat  = errors.New("unsupported file format")
	ErrUnrecognizedHeader = errors.New("header row matches no mapped column")
	ErrEmptyWorkbook      = errors.New("workbook has no sheet")
	ErrTooManyErrors      = errors.New("too many row errors")
)

// Format is a supported source file format.
type Format string

const (
	FormatExcel Format = "xlsx"
	FormatCSV   Format = "csv"
)

// FormatFromName picks the format from a file name's extension.
func FormatFromName(name string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case ".xlsx":
		return FormatExcel, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// Options defines the configuration for reading an inventory source
type Options struct {
	MappingPath string // empty uses the built-in mapping
	Delimiter   rune   // CSV only, default ';'
	Encoding    string // CSV only: "utf-8" (default) or "windows-1252"
	MaxErrors   int    // default 50
}

func (o Options) withDefaults() Options {
	if o.Delimiter == 0 {
		o.Delimiter = ';'
	}
	if o.MaxErrors == 0 {
		o.MaxErrors = 50
	}
	return o
}

// RowError represents a row that could not be turned into an item
type RowError struct {
	Sheet   string `json:"sheet,omitempty"`
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Summary contains the statistics of one read
type Summary struct {
	Source   string     `json:"source"`
	Format   Format     `json:"format"`
	Rows     int        `json:"rows"`
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Errors   int        `json:"errors"`
	Samples  []RowError `json:"error_samples,omitempty"`
}

const maxSamples = 10

func (s *Summary) reject(e RowError) {
	s.Errors++
	if len(s.Samples) < maxSamples {
		s.Samples = append(s.Samples, e)
	}
}

// ReadFile reads an inventory from a .xlsx or .csv file.
func ReadFile(path string, opts Options) ([]inventory.Item, Summary, error) {
	summary := Summary{Source: path}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, summary, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, summary, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return Read(f, path, opts)
}

// Read reads an inventory from r, choosing the format from name.
func Read(r io.Reader, name string, opts Options) ([]inventory.Item, Summary, error) {
	format, err := FormatFromName(name)
	if err != nil {
		return nil, Summary{Source: name}, err
	}

	var (
		items   []inventory.Item
		summary Summary
	)
	switch format {
	case FormatExcel:
		items, summary, err = ReadExcel(r, opts)
	default:
		items, summary, err = ReadCSV(r, opts)
	}
	summary.Source = name
	return items, summary, err
}

// ReadExcel reads the mapped sheet (the first one by default) of an xlsx
// workbook. The first row is the header; blank rows are skipped.
func ReadExcel(r io.Reader, opts Options) ([]inventory.Item, Summary, error) {
	opts = opts.withDefaults()
	summary := Summary{Format: FormatExcel}

	mapping, err := LoadMapping(opts.MappingPath)
	if err != nil {
		return nil, summary, fmt.Errorf("failed to load mapping config: %w", err)
	}

	// xlsx needs random access, so the upload is buffered whole.
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, summary, fmt.Errorf("failed to read Excel file: %w", err)
	}

	wb, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, summary, fmt.Errorf("failed to open Excel file: %w", err)
	}
	if len(wb.Sheets) == 0 {
		return nil, summary, ErrEmptyWorkbook
	}

	sheet := wb.Sheets[0]
	if mapping.Sheet != "" {
		named, ok := wb.Sheet[mapping.Sheet]
		if !ok {
			return nil, summary, fmt.Errorf("sheet %q not found", mapping.Sheet)
		}
		sheet = named
	}

	rows, err := sheetRows(sheet, wb.Date1904)
	if err != nil {
		return nil, summary, err
	}
	if len(rows) == 0 {
		return []inventory.Item{}, summary, nil
	}

	header, err := mapping.index(rows[0])
	if err != nil {
		return nil, summary, fmt.Errorf("sheet %s: %w", sheet.Name, err)
	}

	items := make([]inventory.Item, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		summary.Rows++
		if blank(cells) {
			summary.Skipped++
			continue
		}
		it := header.build(cells)
		it.ID = int64(len(items) + 1)
		items = append(items, it)
	}
	summary.Imported = len(items)
	return items, summary, nil
}

// sheetRows returns the text of every cell, row by row.
func sheetRows(sheet *xlsx.Sheet, date1904 bool) ([][]string, error) {
	rows := make([][]string, 0, sheet.MaxRow)
	for r := 0; r < sheet.MaxRow; r++ {
		row, err := sheet.Row(r)
		if err != nil {
			return nil, fmt.Errorf("sheet %s row %d: %w", sheet.Name, r+1, err)
		}
		cells := make([]string, sheet.MaxCol)
		for c := 0; c < sheet.MaxCol; c++ {
			cells[c] = cellText(row.GetCell(c), date1904)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// DateLayout is how date cells are rendered.
const DateLayout = "02/01/2006"

func cellText(cell *xlsx.Cell, date1904 bool) string {
	if cell == nil {
		return ""
	}
	if cell.IsTime() {
		if t, err := cell.GetTime(date1904); err == nil {
			return t.Format(DateLayout)
		}
	}
	return strings.TrimSpace(cell.String())
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
