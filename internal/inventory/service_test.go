package inventory

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"floorplan-inventory/internal/apiclient"
	"floorplan-inventory/internal/store"
	"floorplan-inventory/pkg/importer"
	inv "floorplan-inventory/pkg/inventory"
	"floorplan-inventory/pkg/placement"
)

func sample() []inv.Item {
	return []inv.Item{
		{ID: 1, Reference: "R1", Designation: "Bureau", Family: "Bureau", Barcode: "B1",
			Location: inv.ParseLocation(`25\BESANCON\Siege\VIOTTE\1\101`)},
		{ID: 2, Reference: "R2", Designation: "Chaise", Family: "Siège", Barcode: "B2",
			Location: inv.ParseLocation(`25\BESANCON\Siege\VIOTTE\1\101`)},
		{ID: 3, Reference: "R3", Designation: "Armoire", Family: "Rangement", Barcode: "B3",
			Location: inv.ParseLocation(`25\BESANCON\Siege\VIOTTE\2\201`)},
	}
}

type countingRecorder struct {
	loaded int
	placed int
}

func (r *countingRecorder) ItemsLoaded(n int) { r.loaded = n }
func (r *countingRecorder) Placed(n int)      { r.placed += n }

func newLoaded(t *testing.T) (*Service, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemory()
	svc := NewService(st, "/images/floor-plan.png")
	_, err := svc.Load(context.Background(), StaticSource{Label: "test", Items: sample()})
	require.NoError(t, err)
	return svc, st
}

func TestLoad(t *testing.T) {
	rec := &countingRecorder{}
	svc := NewService(store.NewMemory(), "/plan.png").WithRecorder(rec)

	res, err := svc.Load(context.Background(), StaticSource{Label: "test", Items: sample()})
	require.NoError(t, err)
	assert.Equal(t, LoadResult{Source: "test", Items: 3}, res)
	assert.Equal(t, 3, rec.loaded)

	st := svc.Status()
	assert.Equal(t, "test", st.Source)
	assert.Equal(t, 3, st.Items)
	assert.Equal(t, 0, st.Placed)
	assert.False(t, st.LoadedAt.IsZero())
}

func TestLoadError(t *testing.T) {
	svc, _ := newLoaded(t)

	_, err := svc.Load(context.Background(), FileSource{Path: filepath.Join(t.TempDir(), "missing.xlsx")})
	assert.ErrorIs(t, err, importer.ErrFileNotFound)
	assert.Len(t, svc.Items(), 3, "failed load keeps the previous collection")
}

type blockingSource struct {
	started chan struct{}
	release chan struct{}
	items   []inv.Item
}

func (b *blockingSource) Name() string { return "slow" }

func (b *blockingSource) Fetch(ctx context.Context) ([]inv.Item, error) {
	close(b.started)
	<-b.release
	return b.items, nil
}

func TestLoadDiscardsStaleResult(t *testing.T) {
	svc := NewService(store.NewMemory(), "/plan.png")
	slow := &blockingSource{
		started: make(chan struct{}),
		release: make(chan struct{}),
		items:   []inv.Item{{ID: 99}},
	}

	done := make(chan error, 1)
	go func() {
		_, err := svc.Load(context.Background(), slow)
		done <- err
	}()
	<-slow.started

	_, err := svc.Load(context.Background(), StaticSource{Label: "fast", Items: sample()})
	require.NoError(t, err)

	close(slow.release)
	select {
	case err := <-done:
		assert.ErrorIs(t, err, ErrStaleLoad)
	case <-time.After(5 * time.Second):
		t.Fatal("slow load did not return")
	}

	assert.Len(t, svc.Items(), 3)
	assert.Equal(t, "fast", svc.Status().Source)
}

func TestFilters(t *testing.T) {
	svc, _ := newLoaded(t)

	assert.Len(t, svc.Filtered(), 3)

	f := svc.SetFilters(inv.Filter{Floor: "1"})
	assert.Equal(t, "1", f.Floor)
	assert.Len(t, svc.Filtered(), 2)

	svc.SetFilters(inv.Filter{Search: "chaise"})
	got := svc.Filtered()
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, inv.Filter{Floor: "1", Search: "chaise"}, svc.Filter())

	q := svc.Query(inv.Filter{Search: "bureau"})
	require.Len(t, q, 1)
	assert.Equal(t, int64(1), q[0].ID)
	assert.Equal(t, "chaise", svc.Filter().Search, "Query leaves the session filter alone")

	svc.ClearFilters()
	assert.True(t, svc.Filter().IsZero())
	assert.Len(t, svc.Filtered(), 3)
}

func TestUniqueValuesAndStatistics(t *testing.T) {
	svc, _ := newLoaded(t)

	assert.Equal(t, []string{"Bureau", "Rangement", "Siège"}, svc.UniqueValues(inv.FieldFamily, nil))
	fr := language.French
	assert.Equal(t, []string{"Bureau", "Rangement", "Siège"}, svc.UniqueValues(inv.FieldFamily, &fr))

	stats := svc.Statistics()
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Floors)
	assert.Equal(t, 2, stats.Rooms)
	assert.Equal(t, 2, stats.ByFloor["1"])
}

func TestPlace(t *testing.T) {
	rec := &countingRecorder{}
	svc, st := newLoaded(t)
	svc.WithRecorder(rec)
	ctx := context.Background()

	it, err := svc.Place(ctx, 2, 0.25, 0.75)
	require.NoError(t, err)
	x, y, ok := it.Coordinates.Values()
	require.True(t, ok)
	assert.Equal(t, 0.25, x)
	assert.Equal(t, 0.75, y)
	assert.Equal(t, 1, rec.placed)

	saved, err := st.Placements(ctx)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "B2", saved[0].Barcode)

	_, err = svc.Place(ctx, 2, 1.5, 0.5)
	assert.ErrorIs(t, err, placement.ErrOutOfBounds)
	got, _ := svc.Item(2)
	gx, _, _ := got.Coordinates.Values()
	assert.Equal(t, 0.25, gx, "rejected placement leaves the item unchanged")

	_, err = svc.Place(ctx, 42, 0.5, 0.5)
	assert.ErrorIs(t, err, placement.ErrItemNotFound)

	assert.Equal(t, 1, svc.Status().Placed)
	assert.Equal(t, 33, svc.Status().Percent)
}

func TestPlacementsSurviveReload(t *testing.T) {
	svc, _ := newLoaded(t)
	ctx := context.Background()
	_, err := svc.Place(ctx, 3, 0.5, 0.5)
	require.NoError(t, err)

	// Reloaded items are renumbered; the barcode still finds the armoire.
	reloaded := sample()
	for i := range reloaded {
		reloaded[i].ID += 10
	}
	res, err := svc.Load(ctx, StaticSource{Label: "again", Items: reloaded})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Restored)

	it, ok := svc.Item(13)
	require.True(t, ok)
	assert.True(t, it.Coordinates.Placed())
}

func TestPlacementsFollowBarcodeWhenRowsShift(t *testing.T) {
	svc := NewService(store.NewMemory(), "/plan.png")
	ctx := context.Background()
	_, err := svc.Load(ctx, StaticSource{Label: "v1", Items: []inv.Item{
		{ID: 1, Barcode: "B1"},
		{ID: 2, Barcode: "B2"},
	}})
	require.NoError(t, err)
	_, err = svc.Place(ctx, 1, 0.25, 0.75)
	require.NoError(t, err)

	// A row was added at the top of the sheet.
	res, err := svc.Load(ctx, StaticSource{Label: "v2", Items: []inv.Item{
		{ID: 1, Barcode: "B0"},
		{ID: 2, Barcode: "B1"},
		{ID: 3, Barcode: "B2"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Restored)

	first, _ := svc.Item(1)
	assert.False(t, first.Coordinates.Placed())
	moved, _ := svc.Item(2)
	x, y, ok := moved.Coordinates.Values()
	require.True(t, ok)
	assert.Equal(t, 0.25, x)
	assert.Equal(t, 0.75, y)
}

type failingStore struct {
	*store.MemoryStore
}

func (failingStore) SavePlacements(context.Context, []store.Placement) error {
	return errors.New("db down")
}

func TestPlaceKeepsCollectionWhenSaveFails(t *testing.T) {
	rec := &countingRecorder{}
	svc := NewService(failingStore{store.NewMemory()}, "/plan.png").WithRecorder(rec)
	ctx := context.Background()
	_, err := svc.Load(ctx, StaticSource{Label: "test", Items: sample()})
	require.NoError(t, err)

	_, err = svc.Place(ctx, 1, 0.5, 0.5)
	assert.ErrorContains(t, err, "db down")

	cfg := placement.Export("/plan.png", sample(), time.Now())
	cfg.Coordinates[1].Coordinates = inv.At(0.3, 0.3)
	_, err = svc.ImportCoordinates(ctx, cfg)
	assert.ErrorContains(t, err, "db down")

	for _, it := range svc.Items() {
		assert.False(t, it.Coordinates.Placed(), "item %d", it.ID)
	}
	assert.Equal(t, 0, svc.Status().Placed)
	assert.Equal(t, 0, rec.placed)
}

// gatedStore holds Placements until released.
type gatedStore struct {
	*store.MemoryStore
	reading chan struct{}
	release chan struct{}
}

func (g *gatedStore) Placements(ctx context.Context) ([]store.Placement, error) {
	close(g.reading)
	<-g.release
	return g.MemoryStore.Placements(ctx)
}

func TestPlaceDuringReloadIsKept(t *testing.T) {
	st := &gatedStore{
		MemoryStore: store.NewMemory(),
		reading:     make(chan struct{}),
		release:     make(chan struct{}),
	}
	svc := NewService(st, "/plan.png")
	ctx := context.Background()

	loaded := make(chan error, 1)
	go func() {
		_, err := svc.Load(ctx, StaticSource{Label: "test", Items: sample()})
		loaded <- err
	}()
	<-st.reading

	placed := make(chan error, 1)
	go func() {
		_, err := svc.Place(ctx, 3, 0.5, 0.5)
		placed <- err
	}()
	close(st.release)

	for _, ch := range []chan error{loaded, placed} {
		select {
		case err := <-ch:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("load or place did not return")
		}
	}

	it, ok := svc.Item(3)
	require.True(t, ok)
	assert.True(t, it.Coordinates.Placed())
	saved, err := st.MemoryStore.Placements(ctx)
	require.NoError(t, err)
	assert.Len(t, saved, 1)
}

func TestExportImportCoordinates(t *testing.T) {
	svc, st := newLoaded(t)
	ctx := context.Background()
	fixed := time.Date(2025, 11, 14, 9, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	_, err := svc.Place(ctx, 1, 0.1, 0.2)
	require.NoError(t, err)

	cfg := svc.ExportCoordinates()
	assert.Equal(t, placement.ConfigVersion, cfg.Version)
	assert.Equal(t, "/images/floor-plan.png", cfg.ImageURL)
	assert.Equal(t, fixed, cfg.Timestamp)
	require.Len(t, cfg.Coordinates, 3)

	other, _ := newLoaded(t)
	res, err := other.ImportCoordinates(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Applied)
	assert.Equal(t, 2, res.Unplaced)
	it, _ := other.Item(1)
	assert.True(t, it.Coordinates.Placed())

	_, err = svc.ImportCoordinates(ctx, placement.Configuration{})
	assert.ErrorIs(t, err, placement.ErrInvalidConfiguration)

	saved, err := st.Placements(ctx)
	require.NoError(t, err)
	assert.Len(t, saved, 1)
}

func TestMarkers(t *testing.T) {
	svc, _ := newLoaded(t)
	ctx := context.Background()
	_, err := svc.Place(ctx, 1, 0.4, 0.4)
	require.NoError(t, err)
	_, err = svc.Place(ctx, 3, 0.8, 0.8)
	require.NoError(t, err)

	all := svc.Markers("")
	require.Len(t, all, 2)
	assert.Equal(t, "101", all[0].Room)
	assert.Equal(t, 2, all[0].Count)

	floor2 := svc.Markers("2")
	require.Len(t, floor2, 1)
	assert.Equal(t, []int64{3}, floor2[0].ItemIDs)
}

func TestItemsAreCopies(t *testing.T) {
	svc, _ := newLoaded(t)
	items := svc.Items()
	items[0].Reference = "changed"
	items[0].Coordinates = inv.At(0.5, 0.5)

	it, _ := svc.Item(1)
	assert.Equal(t, "R1", it.Reference)
	assert.False(t, it.Coordinates.Placed())
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	csvPath := filepath.Join(dir, "inventory.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Référence;Site\nR1;"+`25\B\S\V\2\201`+"\n"), 0o644))
	items, err := FileSource{Path: csvPath}.Fetch(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "201", items[0].Location.RoomName())

	jsonPath := filepath.Join(dir, "inventory.json")
	require.NoError(t, importer.ExportFile(jsonPath, sample()))
	items, err = FileSource{Path: jsonPath}.Fetch(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 3)

	_, err = FileSource{Path: filepath.Join(dir, "nope.json")}.Fetch(ctx)
	assert.ErrorIs(t, err, importer.ErrFileNotFound)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = FileSource{Path: csvPath}.Fetch(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAPISource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/Furniture" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"id":5,"reference":"R5","famille":"Bureau","codeBarre":"B5","location":{"buildingName":"VIOTTE","floor":"3","room":"301"}}]`))
	}))
	defer srv.Close()

	src := APISource{Client: apiclient.New(srv.URL+"/api", time.Second)}
	assert.Equal(t, srv.URL+"/api", src.Name())

	items, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Bureau", items[0].Family)
	assert.Equal(t, "301", items[0].Location.RoomName())

	down := APISource{Client: apiclient.New(srv.URL+"/missing", time.Second)}
	_, err = down.Fetch(context.Background())
	var apiErr *apiclient.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, apiclient.CodeNotFound, apiErr.Code)
}
