package inventory

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"floorplan-inventory/internal/apiclient"
	"floorplan-inventory/pkg/importer"
	inv "floorplan-inventory/pkg/inventory"
)

// Source produces a complete item collection.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]inv.Item, error)
}

// FileSource reads a spreadsheet (.xlsx, .csv) or a JSON item dump from disk.
type FileSource struct {
	Path    string
	Options importer.Options
}

func (s FileSource) Name() string { return s.Path }

func (s FileSource) Fetch(ctx context.Context) ([]inv.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(s.Path), ".json") {
		f, err := os.Open(s.Path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", importer.ErrFileNotFound, s.Path)
			}
			return nil, err
		}
		defer f.Close()
		return importer.ReadJSON(f)
	}

	items, summary, err := importer.ReadFile(s.Path, s.Options)
	if err != nil {
		return nil, err
	}
	log.Printf("read %s: %d rows, %d imported, %d skipped, %d errors",
		s.Path, summary.Rows, summary.Imported, summary.Skipped, summary.Errors)
	return items, nil
}

// APISource pulls the furniture list from the collaborator REST API.
type APISource struct {
	Client *apiclient.Client
}

func (s APISource) Name() string { return s.Client.BaseURL() }

func (s APISource) Fetch(ctx context.Context) ([]inv.Item, error) {
	furniture, err := s.Client.ListFurniture(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch furniture: %w", err)
	}
	items := make([]inv.Item, 0, len(furniture))
	for _, f := range furniture {
		items = append(items, f.Item())
	}
	return items, nil
}

// StaticSource serves items that were already read, e.g. from an upload.
type StaticSource struct {
	Label string
	Items []inv.Item
}

func (s StaticSource) Name() string { return s.Label }

func (s StaticSource) Fetch(context.Context) ([]inv.Item, error) {
	return inv.Clone(s.Items), nil
}
