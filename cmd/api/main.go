package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"floorplan-inventory/internal"
	"floorplan-inventory/internal/apiclient"
	"floorplan-inventory/internal/config"
	"floorplan-inventory/internal/inventory"
	"floorplan-inventory/internal/reservations"
	"floorplan-inventory/internal/store"
	"floorplan-inventory/pkg/importer"
)

func main() {
	cfg, err := config.LoadAndValidate()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Store error: %v", err)
	}

	var api *apiclient.Client
	if cfg.InventoryAPIURL != "" {
		api = apiclient.New(cfg.InventoryAPIURL, cfg.InventoryAPITimeout)
	}
	src := inventorySource(cfg, api)

	metrics := internal.NewMetrics()
	svc := inventory.NewService(st, cfg.FloorPlanURL).WithRecorder(metrics)

	// A failed first load leaves an empty collection; POST /reload retries.
	if _, err := svc.Load(ctx, src); err != nil {
		log.Printf("Initial load from %s failed: %v", src.Name(), err)
	}

	srv, err := internal.NewServer(cfg, internal.Deps{
		Inventory: svc,
		Bookings:  reservations.New(st, svc, cfg.Location()),
		Store:     st,
		Source:    src,
		API:       api,
		Metrics:   metrics,
	})
	if err != nil {
		log.Fatalf("Server error: %v", err)
	}

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting floor plan inventory API (env=%s, source=%s)", cfg.Environment, src.Name())
		log.Printf("Listening on %s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	if err := srv.Close(shutdownCtx); err != nil {
		log.Printf("Store close: %v", err)
	}
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.DBDSN == "" {
		log.Println("DB_DSN not set, placements and reservations are kept in memory")
		return store.NewMemory(), nil
	}
	pg, err := store.NewPostgres(ctx, cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	return pg, nil
}

// inventorySource prefers the REST collaborator over the local file.
func inventorySource(cfg *config.Config, api *apiclient.Client) inventory.Source {
	if api != nil {
		return inventory.APISource{Client: api}
	}
	return inventory.FileSource{
		Path: cfg.InventorySource,
		Options: importer.Options{
			MappingPath: cfg.InventoryMapping,
			Delimiter:   cfg.CSVDelimiter,
			Encoding:    cfg.CSVEncoding,
		},
	}
}
