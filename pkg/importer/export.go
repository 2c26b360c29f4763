package importer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"floorplan-inventory/pkg/inventory"
)

// WriteJSON writes the full item dump as an indented JSON array.
func WriteJSON(w io.Writer, items []inventory.Item) error {
	if items == nil {
		items = []inventory.Item{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

// ExportFile writes the item dump to path, creating its directory.
func ExportFile(path string, items []inventory.Item) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(f, items); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// ReadJSON loads an item dump written by WriteJSON.
func ReadJSON(r io.Reader) ([]inventory.Item, error) {
	var items []inventory.Item
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode item dump: %w", err)
	}
	return items, nil
}
