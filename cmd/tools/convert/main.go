// Command convert reads the inventory spreadsheet and writes the JSON item
// dump served to browsers.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"floorplan-inventory/pkg/importer"
	inv "floorplan-inventory/pkg/inventory"
)

func main() {
	var (
		filePath    = flag.String("file", "data/inventory.xlsx", "source .xlsx or .csv file")
		outPath     = flag.String("out", "public/data/inventory.json", "output JSON file")
		mappingPath = flag.String("mapping", "", "column mapping YAML (default: built-in)")
		delimiter   = flag.String("delimiter", ";", "CSV delimiter")
		encoding    = flag.String("encoding", "utf-8", "CSV encoding (utf-8, windows-1252, iso-8859-1)")
		maxErrors   = flag.Int("max-errors", 50, "stop after this many bad rows")
	)
	flag.Parse()

	comma, size := utf8.DecodeRuneInString(*delimiter)
	if size == 0 || size != len(*delimiter) {
		log.Fatalf("Invalid delimiter %q: must be a single character", *delimiter)
	}

	items, summary, err := importer.ReadFile(*filePath, importer.Options{
		MappingPath: *mappingPath,
		Delimiter:   comma,
		Encoding:    *encoding,
		MaxErrors:   *maxErrors,
	})
	if err != nil {
		log.Fatalf("Read failed: %v", err)
	}

	if err := importer.ExportFile(*outPath, items); err != nil {
		log.Fatalf("Export failed: %v", err)
	}

	stats := inv.ComputeStatistics(items)

	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Converted %s -> %s\n", *filePath, *outPath)
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("Items:    %d\n", stats.Total)
	fmt.Printf("Floors:   %d\n", stats.Floors)
	fmt.Printf("Rooms:    %d\n", stats.Rooms)
	fmt.Printf("Families: %d\n", stats.Families)

	if summary.Skipped > 0 || summary.Errors > 0 {
		fmt.Printf("\nRows: %d, skipped: %d, errors: %d\n", summary.Rows, summary.Skipped, summary.Errors)
		for _, sample := range summary.Samples {
			fmt.Printf("  Row %d: %s\n", sample.Row, sample.Message)
		}
	}
}
