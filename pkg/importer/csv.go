package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"floorplan-inventory/pkg/inventory"
)

// decoderFor returns a transformer that strips a leading BOM and decodes the
// named charset to UTF-8.
func decoderFor(name string) (transform.Transformer, error) {
	var enc encoding.Encoding
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		enc = unicode.UTF8
	case "windows-1252", "cp1252":
		enc = charmap.Windows1252
	case "iso-8859-1", "latin1":
		enc = charmap.ISO8859_1
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return unicode.BOMOverride(enc.NewDecoder()), nil
}

// ReadCSV reads a delimited export (';' by default). Quoted fields may contain
// the delimiter and doubled quotes. Rows shorter than the header are rejected.
func ReadCSV(r io.Reader, opts Options) ([]inventory.Item, Summary, error) {
	opts = opts.withDefaults()
	summary := Summary{Format: FormatCSV}

	mapping, err := LoadMapping(opts.MappingPath)
	if err != nil {
		return nil, summary, fmt.Errorf("failed to load mapping config: %w", err)
	}

	dec, err := decoderFor(opts.Encoding)
	if err != nil {
		return nil, summary, err
	}

	cr := csv.NewReader(transform.NewReader(r, dec))
	cr.Comma = opts.Delimiter
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	headerRow, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []inventory.Item{}, summary, nil
	}
	if err != nil {
		return nil, summary, fmt.Errorf("failed to read CSV header: %w", err)
	}

	header, err := mapping.index(headerRow)
	if err != nil {
		return nil, summary, err
	}

	items := make([]inventory.Item, 0)
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		summary.Rows++

		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return items, summary, fmt.Errorf("failed to read CSV: %w", err)
			}
			summary.reject(RowError{Row: perr.Line, Message: perr.Err.Error()})
		} else if blank(record) {
			summary.Skipped++
			continue
		} else if len(record) < len(headerRow) {
			line, _ := cr.FieldPos(0)
			summary.reject(RowError{
				Row:     line,
				Message: fmt.Sprintf("expected %d fields, got %d", len(headerRow), len(record)),
			})
		} else {
			it := header.build(record)
			it.ID = int64(len(items) + 1)
			items = append(items, it)
			continue
		}

		if summary.Errors > opts.MaxErrors {
			summary.Imported = len(items)
			return items, summary, fmt.Errorf("%w (%d), stopping import", ErrTooManyErrors, summary.Errors)
		}
	}

	summary.Imported = len(items)
	return items, summary, nil
}
