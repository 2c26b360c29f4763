package importer

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"floorplan-inventory/pkg/inventory"
)

//go:embed mapping/default.yaml
var defaultMapping []byte

// MappingConfig maps item fields to the spreadsheet headers that carry them.
type MappingConfig struct {
	Version int                     `yaml:"version"`
	Sheet   string                  `yaml:"sheet"`
	Columns map[string]ColumnConfig `yaml:"columns"`
}

type ColumnConfig struct {
	Headers []string `yaml:"headers"`
}

// knownColumns are the mapping keys understood by the reader.
var knownColumns = map[string]func(*inventory.Item, string){
	"reference":    func(it *inventory.Item, v string) { it.Reference = v },
	"designation":  func(it *inventory.Item, v string) { it.Designation = v },
	"family":       func(it *inventory.Item, v string) { it.Family = v },
	"type":         func(it *inventory.Item, v string) { it.Type = v },
	"supplier":     func(it *inventory.Item, v string) { it.Supplier = v },
	"user":         func(it *inventory.Item, v string) { it.User = v },
	"barcode":      func(it *inventory.Item, v string) { it.Barcode = v },
	"serialNumber": func(it *inventory.Item, v string) { it.SerialNumber = v },
	"information":  func(it *inventory.Item, v string) { it.Information = v },
	"deliveryDate": func(it *inventory.Item, v string) { it.DeliveryDate = v },
	"location":     func(it *inventory.Item, v string) { it.Location = inventory.ParseLocation(v) },
}

// LoadMapping reads a mapping file, or the built-in French/English mapping when path is empty.
func LoadMapping(path string) (*MappingConfig, error) {
	data := defaultMapping
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read mapping %s: %w", path, err)
		}
	}
	return parseMapping(data)
}

func parseMapping(data []byte) (*MappingConfig, error) {
	var m MappingConfig
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse mapping: %w", err)
	}
	if len(m.Columns) == 0 {
		return nil, fmt.Errorf("mapping has no columns")
	}
	for field := range m.Columns {
		if _, ok := knownColumns[field]; !ok {
			return nil, fmt.Errorf("mapping: unknown field %q", field)
		}
	}
	return &m, nil
}

// headerIndex resolves, for one header row, which column feeds which field.
type headerIndex struct {
	columns map[string]int
}

func normalizeHeader(h string) string {
	return strings.ToUpper(strings.TrimSpace(h))
}

func (m *MappingConfig) index(header []string) (headerIndex, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if key == "" {
			continue
		}
		if _, dup := pos[key]; !dup {
			pos[key] = i
		}
	}

	idx := headerIndex{columns: make(map[string]int)}
	for field, col := range m.Columns {
		for _, alias := range col.Headers {
			if i, ok := pos[normalizeHeader(alias)]; ok {
				idx.columns[field] = i
				break
			}
		}
	}
	if len(idx.columns) == 0 {
		return idx, ErrUnrecognizedHeader
	}
	return idx, nil
}

// build turns one data row into an item. Missing cells read as empty.
func (h headerIndex) build(cells []string) inventory.Item {
	var it inventory.Item
	for field, col := range h.columns {
		v := ""
		if col < len(cells) {
			v = strings.TrimSpace(cells[col])
		}
		knownColumns[field](&it, v)
	}
	return it
}
