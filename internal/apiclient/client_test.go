package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"floorplan-inventory/internal/models"
)

type recorded struct {
	method string
	uri    string
	body   string
	header http.Header
}

// fakeAPI answers every request with status and body and records what it got.
func fakeAPI(t *testing.T, status int, contentType, body string) (*Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		rec.method = r.Method
		rec.uri = r.URL.RequestURI()
		rec.body = string(data)
		rec.header = r.Header.Clone()
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/api/", time.Second), rec
}

func TestListFurniture(t *testing.T) {
	c, rec := fakeAPI(t, http.StatusOK, "application/json",
		`[{"id":1,"reference":"R1","famille":"Bureau","codeBarre":"B1","location":{"buildingName":"VIOTTE","floor":"1","room":"105"}}]`)

	got, err := c.ListFurniture(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Bureau", got[0].Family)
	assert.Equal(t, "105", got[0].Location.Room)

	assert.Equal(t, "GET", rec.method)
	assert.Equal(t, "/api/Furniture", rec.uri)
	assert.Equal(t, AcceptLanguage, rec.header.Get("Accept-Language"))
	assert.Equal(t, "application/json", rec.header.Get("Accept"))
}

func TestEndpoints(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name   string
		call   func(c *Client) error
		method string
		uri    string
		body   string
	}{
		{"get furniture", func(c *Client) error { _, err := c.GetFurniture(ctx, 3); return err }, "GET", "/api/Furniture/3", ""},
		{"by barcode", func(c *Client) error { _, err := c.GetFurnitureByBarcode(ctx, "A B/1"); return err }, "GET", "/api/Furniture/barcode/A%20B%2F1", ""},
		{"search", func(c *Client) error {
			_, err := c.SearchFurniture(ctx, models.FurnitureSearch{Reference: "R1", Family: "Siège"})
			return err
		}, "GET", "/api/Furniture/search?famille=Si%C3%A8ge&reference=R1", ""},
		{"delete furniture", func(c *Client) error { return c.DeleteFurniture(ctx, 9) }, "DELETE", "/api/Furniture/9", ""},
		{"assign location", func(c *Client) error { return c.AssignLocation(ctx, 1, 2) }, "POST", "/api/Furniture/1/location/2", "{}"},
		{"assign rfid", func(c *Client) error { return c.AssignRFIDTag(ctx, 1, 5) }, "POST", "/api/Furniture/1/rfid/5", "{}"},
		{"list locations", func(c *Client) error { _, err := c.ListLocations(ctx); return err }, "GET", "/api/Location", ""},
		{"furniture at", func(c *Client) error { _, err := c.FurnitureAt(ctx, 4); return err }, "GET", "/api/Location/4/furniture", ""},
		{"by building", func(c *Client) error { _, err := c.LocationsByBuilding(ctx, "VIOTTE"); return err }, "GET", "/api/Location/building/VIOTTE", ""},
		{"delete location", func(c *Client) error { return c.DeleteLocation(ctx, 4) }, "DELETE", "/api/Location/4", ""},
		{"tags", func(c *Client) error { _, err := c.ActiveTags(ctx); return err }, "GET", "/api/Rfid/tags", ""},
		{"assign tag", func(c *Client) error { return c.AssignTag(ctx, "E200", 7) }, "POST", "/api/Rfid/tags/E200/assign/7", "{}"},
		{"deactivate", func(c *Client) error { return c.DeactivateTag(ctx, "E200") }, "POST", "/api/Rfid/tags/E200/deactivate", "{}"},
		{"read", func(c *Client) error {
			return c.ProcessRead(ctx, models.TagRead{TagID: "E200", ReaderID: "R-1"})
		}, "POST", "/api/Rfid/read", `{"tagId":"E200","readerId":"R-1"}`},
		{"readers", func(c *Client) error { _, err := c.ActiveReaders(ctx); return err }, "GET", "/api/Rfid/readers", ""},
		{"reader status", func(c *Client) error { return c.UpdateReaderStatus(ctx, "R-1", "offline") }, "POST", "/api/Rfid/readers/R-1/status", `{"status":"offline"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := fakeAPI(t, http.StatusNoContent, "", "")
			require.NoError(t, tt.call(c))
			assert.Equal(t, tt.method, rec.method)
			assert.Equal(t, tt.uri, rec.uri)
			if tt.body != "" {
				assert.JSONEq(t, tt.body, rec.body)
			}
		})
	}
}

func TestCreateLocation(t *testing.T) {
	c, rec := fakeAPI(t, http.StatusCreated, "application/json", `{"id":12,"buildingName":"VIOTTE","floor":"2","room":"201"}`)

	got, err := c.CreateLocation(context.Background(), models.Location{BuildingName: "VIOTTE", Floor: "2", Room: "201"})
	require.NoError(t, err)
	assert.Equal(t, int64(12), got.ID)

	var sent map[string]any
	require.NoError(t, json.Unmarshal([]byte(rec.body), &sent))
	assert.Equal(t, "VIOTTE", sent["buildingName"])
	assert.Equal(t, "application/json", rec.header.Get("Content-Type"))
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		status      int
		contentType string
		body        string
		wantCode    string
		wantMessage string
	}{
		{400, "", "", CodeValidation, "HTTP 400"},
		{401, "", "", CodeUnauthorized, "HTTP 401"},
		{403, "", "", CodeForbidden, "HTTP 403"},
		{404, "text/plain", "no such furniture\n", CodeNotFound, "no such furniture"},
		{500, "", "", CodeServerError, "HTTP 500"},
		{502, "", "", CodeAPIUnavailable, "HTTP 502"},
		{503, "", "", CodeAPIUnavailable, "HTTP 503"},
		{504, "", "", CodeAPIUnavailable, "HTTP 504"},
		{418, "", "", CodeGeneric, "HTTP 418"},
		{409, "application/json; charset=utf-8", `{"error_code":"duplicateBarcode","message":"Code barre déjà utilisé"}`, "duplicateBarcode", "Code barre déjà utilisé"},
		{422, "application/json", `{"message":"invalide"}`, CodeGeneric, "invalide"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			c, _ := fakeAPI(t, tt.status, tt.contentType, tt.body)

			_, err := c.GetFurniture(context.Background(), 1)
			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantCode, apiErr.Code)
			assert.Equal(t, tt.wantMessage, apiErr.Message)
		})
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(url, time.Second).ListLocations(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, CodeNetworkError, apiErr.Code)
	assert.Equal(t, 0, apiErr.StatusCode)
	assert.NotNil(t, apiErr.Unwrap())
}

func TestIsNotFound(t *testing.T) {
	c, _ := fakeAPI(t, http.StatusNotFound, "", "")
	_, err := c.GetLocation(context.Background(), 1)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsNotFound(errors.New("boom")))
}

func TestLocalizedMessage(t *testing.T) {
	assert.Equal(t, "Une erreur est survenue", (&APIError{}).LocalizedMessage())
	assert.Equal(t, "x", (&APIError{Message: "x"}).LocalizedMessage())
}

func TestInvalidBody(t *testing.T) {
	c, _ := fakeAPI(t, http.StatusOK, "application/json", "not json")
	_, err := c.ListFurniture(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, CodeGeneric, apiErr.Code)
}
