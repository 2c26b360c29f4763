package internal

import (
	"context"
	"embed"
	"errors"
	"net/http"

	"floorplan-inventory/internal/apiclient"
	"floorplan-inventory/internal/auth"
	"floorplan-inventory/internal/config"
	"floorplan-inventory/internal/handlers"
	"floorplan-inventory/internal/inventory"
	"floorplan-inventory/internal/reservations"
	"floorplan-inventory/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed openapi
var openapiFS embed.FS

// Deps are the collaborators the server routes to. A nil Source disables
// POST /reload; a nil API disables the /locations, /furniture and /rfid proxies.
type Deps struct {
	Inventory *inventory.Service
	Bookings  *reservations.Service
	Store     store.Store
	Source    inventory.Source
	API       *apiclient.Client
	Metrics   *Metrics
}

type Server struct {
	Router     *chi.Mux
	JWTManager *auth.JWTManager
	Metrics    *Metrics

	cfg       *config.Config
	inventory *inventory.Service
	bookings  *reservations.Service
	store     store.Store
	source    inventory.Source
	api       *apiclient.Client
	imports   *handlers.ImportsHandler
}

func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.Inventory == nil || deps.Bookings == nil {
		return nil, errors.New("server: inventory and reservation services are required")
	}

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.JWTExpiry)
	if err := jwtManager.ValidateConfig(); err != nil {
		return nil, err
	}

	metrics := deps.Metrics
	if metrics == nil {
		metrics = NewMetrics()
	}

	s := &Server{
		Router:     chi.NewRouter(),
		JWTManager: jwtManager,
		Metrics:    metrics,
		cfg:        cfg,
		inventory:  deps.Inventory,
		bookings:   deps.Bookings,
		store:      deps.Store,
		source:     deps.Source,
		api:        deps.API,
		imports:    handlers.NewImportsHandler(deps.Inventory, cfg.InventoryMapping),
	}

	s.Router.Use(middleware.RequestID)
	s.Router.Use(middleware.Logger)
	s.Router.Use(middleware.Recoverer)
	if cfg.EnableMetrics {
		s.Router.Use(s.Metrics.Middleware())
		s.Router.Get("/metrics", s.Metrics.Handler().ServeHTTP)
	}

	s.Router.Get("/health", s.health)
	s.mountDocs(s.Router)
	s.mountPublicRoutes(s.Router)

	s.Router.Group(func(r chi.Router) {
		r.Use(auth.AuthMiddleware(s.JWTManager))
		r.Use(auth.MustRole(auth.RoleEditor))
		s.mountEditorRoutes(r)
	})

	return s, nil
}

// Close releases the placement store.
func (s *Server) Close(ctx context.Context) error {
	if s.store != nil {
		s.store.Close()
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"inventory": s.inventory.Status(),
	})
}

// mountDocs serves the OpenAPI document and a Swagger UI page
func (s *Server) mountDocs(mux *chi.Mux) {
	if !s.cfg.EnableSwagger {
		return
	}

	mux.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		data, err := openapiFS.ReadFile("openapi/openapi.yaml")
		if err != nil {
			writeError(w, http.StatusInternalServerError, "DOCS_UNAVAILABLE", "Failed to read OpenAPI document")
			return
		}
		w.Header().Set("Content-Type", "application/x-yaml")
		w.Write(data)
	})

	mux.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`<!doctype html>
<html lang="fr">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>Floor plan inventory - API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui.css">
</head>
<body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5.9.0/swagger-ui-bundle.js"></script>
    <script>
        window.onload = function() {
            window.ui = SwaggerUIBundle({
                url: '/openapi.yaml',
                dom_id: '#swagger-ui',
                deepLinking: true,
                presets: [SwaggerUIBundle.presets.apis],
                tryItOutEnabled: true
            });
        };
    </script>
</body>
</html>`))
	})
}

func (s *Server) mountPublicRoutes(r chi.Router) {
	r.Get("/status", s.getStatus)

	r.Get("/items", s.listItems)
	r.Get("/items/{id}", s.getItem)
	r.Get("/filters", s.getFilters)
	r.Get("/filters/{field}", s.listFieldValues)
	r.Get("/statistics", s.getStatistics)
	r.Get("/map/markers", s.listMarkers)
	r.Get("/coordinates", s.exportCoordinates)

	r.Get("/reservations", s.listReservations)
	r.Post("/reservations", s.createReservation)
	r.Get("/reservations/defaults", s.reservationDefaults)
	r.Get("/reservations/availability", s.checkAvailability)

	r.Get("/locations", s.listLocations)
	r.Get("/locations/{id}", s.getLocation)
	r.Get("/locations/{id}/furniture", s.listFurnitureAtLocation)
	r.Get("/furniture/search", s.searchFurniture)
	r.Get("/rfid/tags", s.listActiveTags)
	r.Get("/rfid/readers", s.listActiveReaders)
}

func (s *Server) mountEditorRoutes(r chi.Router) {
	r.Put("/filters", s.setFilters)
	r.Delete("/filters", s.clearFilters)

	r.Put("/items/{id}/coordinates", s.placeItem)
	r.Post("/coordinates/import", s.importCoordinates)
	r.Post("/imports", s.imports.Upload)
	r.Post("/reload", s.reload)

	r.Post("/locations", s.createLocation)
	r.Put("/locations/{id}", s.updateLocation)
	r.Post("/items/{id}/location/{locationId}", s.assignLocation)
	r.Post("/rfid/reads", s.processTagRead)
}
