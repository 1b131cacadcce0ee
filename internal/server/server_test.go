package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/cschone/bikefit/pkg/frame"
	"github.com/cschone/bikefit/pkg/pipeline"
	"github.com/cschone/bikefit/pkg/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{})
	return New(Config{
		Runner: pipeline.NewRunner(nil, nil, logger),
		Store:  store.NewMemoryStore(),
		Logger: logger,
	})
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := doJSON(t, newTestServer(t), http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestLayoutEndpoint(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/layout", pipeline.Options{
		Specs: []frame.BicycleSpec{frame.DefaultSpec()},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body)
	}

	var resp struct {
		Layouts []*frame.Layout `json:"layouts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Layouts) != 1 {
		t.Fatalf("layout count = %d, want 1", len(resp.Layouts))
	}
	if resp.Layouts[0].BottomBracket.Y != 275 {
		t.Errorf("BottomBracket.Y = %v, want 275", resp.Layouts[0].BottomBracket.Y)
	}
}

func TestLayoutEndpointBadGeometry(t *testing.T) {
	spec := frame.DefaultSpec()
	spec.ChainstayLength = 10

	w := doJSON(t, newTestServer(t), http.MethodPost, "/api/layout", pipeline.Options{
		Specs: []frame.BicycleSpec{spec},
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body)
	}

	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Error.Code != "INVALID_GEOMETRY" {
		t.Errorf("error code = %q, want INVALID_GEOMETRY", resp.Error.Code)
	}
}

func TestLayoutEndpointMalformedBody(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/api/layout", strings.NewReader("{nope"))
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestRenderEndpoint(t *testing.T) {
	w := doJSON(t, newTestServer(t), http.MethodPost, "/api/render", pipeline.Options{
		Specs:   []frame.BicycleSpec{frame.DefaultSpec()},
		Formats: []string{pipeline.FormatSVG},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", ct)
	}
	if !strings.HasPrefix(w.Body.String(), "<svg") {
		t.Error("body should be SVG markup")
	}
}

func TestBikeCRUD(t *testing.T) {
	s := newTestServer(t)

	// Create.
	w := doJSON(t, s, http.MethodPost, "/api/bikes", bikeRequest{Spec: frame.DefaultSpec()})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201: %s", w.Code, w.Body)
	}
	var created store.Bike
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.ID == "" {
		t.Fatal("created bike should have an ID")
	}

	// Get.
	w = doJSON(t, s, http.MethodGet, "/api/bikes/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200", w.Code)
	}

	// List.
	w = doJSON(t, s, http.MethodGet, "/api/bikes/", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d, want 200", w.Code)
	}
	var list struct {
		Bikes []*store.Bike `json:"bikes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatal(err)
	}
	if len(list.Bikes) != 1 {
		t.Errorf("bike count = %d, want 1", len(list.Bikes))
	}

	// Layout of stored bike.
	w = doJSON(t, s, http.MethodGet, fmt.Sprintf("/api/bikes/%s/layout", created.ID), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("layout status = %d, want 200: %s", w.Code, w.Body)
	}
	var layout frame.Layout
	if err := json.Unmarshal(w.Body.Bytes(), &layout); err != nil {
		t.Fatal(err)
	}
	if layout.Wheelbase != 1072.6 {
		t.Errorf("Wheelbase = %v, want 1072.6", layout.Wheelbase)
	}

	// Delete.
	w = doJSON(t, s, http.MethodDelete, "/api/bikes/"+created.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, want 204", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/api/bikes/"+created.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", w.Code)
	}
}

func TestCreateBikeRejectsInvalidSpec(t *testing.T) {
	spec := frame.DefaultSpec()
	spec.Wheelbase = -1

	w := doJSON(t, newTestServer(t), http.MethodPost, "/api/bikes", bikeRequest{Spec: spec})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", w.Code, w.Body)
	}
}

func TestGetBikeNotFound(t *testing.T) {
	w := doJSON(t, newTestServer(t), http.MethodGet, "/api/bikes/does-not-exist", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
