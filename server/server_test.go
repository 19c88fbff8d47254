package server

import (
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/benjamin-es-hall/solbirthday"
	"github.com/benjamin-es-hall/solbirthday/render"
	"gonum.org/v1/gonum/floats/scalar"
)

func testServer(t *testing.T) *Server {
	conf := solbirthday.DefaultConfig()
	conf.Engine = "kepler"
	conf.Samples = 30
	conf.DPI = 40
	conf.Width, conf.Height = 4, 2
	sys, err := solbirthday.LoadSolarSystem(conf, nil)
	if err != nil {
		t.Fatalf("could not load system: %s", err)
	}
	return NewServer(":0", sys, render.NewFigure(sys, conf), nil)
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", target, nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	w := get(t, testServer(t), "/healthz")
	if w.Code != http.StatusOK || w.Body.String() != "ok\n" {
		t.Fatalf("healthz = %d %q", w.Code, w.Body.String())
	}
}

func TestBodies(t *testing.T) {
	w := get(t, testServer(t), "/api/v1/bodies")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var bodies []BodyResponse
	if err := json.NewDecoder(w.Body).Decode(&bodies); err != nil {
		t.Fatal(err)
	}
	if len(bodies) != 10 {
		t.Fatalf("expected 10 bodies, got %d", len(bodies))
	}
	if bodies[0].Label != "SUN" || bodies[0].NAIFID != solbirthday.SunID {
		t.Fatalf("the Sun should come first, got %+v", bodies[0])
	}
	if bodies[len(bodies)-1].Label != "PLUTO" {
		t.Fatalf("Pluto should come last, got %s", bodies[len(bodies)-1].Label)
	}
	for _, b := range bodies {
		if b.Samples != 30 {
			t.Fatalf("%s has %d samples", b.Label, b.Samples)
		}
		if b.Inner != (b.Label == "MERCURY" || b.Label == "VENUS" || b.Label == "EARTH" || b.Label == "MARS") {
			t.Fatalf("%s inner = %t", b.Label, b.Inner)
		}
	}
}

func TestPositions(t *testing.T) {
	s := testServer(t)
	w := get(t, s, "/api/v1/positions?date=2000-01-01")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	var resp PositionsResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Date != "2000-01-01" || resp.Frame != "HCI" || !strings.HasSuffix(resp.Title, "Sat January 01 2000") {
		t.Fatalf("unexpected header %+v", resp)
	}
	if len(resp.Positions) != 9 {
		t.Fatalf("expected 9 positions, got %d", len(resp.Positions))
	}
	for _, p := range resp.Positions {
		if p.Label == "EARTH" && !scalar.EqualWithinAbs(p.SunDistance, 0.983, 0.01) {
			t.Fatalf("Earth is %f AU from the Sun", p.SunDistance)
		}
		if p.Longitude < 0 || p.Longitude >= 360 {
			t.Fatalf("%s at longitude %f", p.Label, p.Longitude)
		}
	}

	tests := []struct {
		name       string
		query      string
		wantStatus int
	}{
		{"default date", "", http.StatusOK},
		{"empty date", "?date=", http.StatusBadRequest},
		{"ecliptic", "?date=2000-01-01&frame=eclipj2000", http.StatusOK},
		{"unknown frame", "?frame=GALACTIC", http.StatusBadRequest},
		{"garbage date", "?date=yesterday", http.StatusBadRequest},
		{"before calendar", "?date=1849-12-31", http.StatusBadRequest},
		{"after calendar", "?date=2100-01-02", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, s, "/api/v1/positions"+tt.query)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusBadRequest {
				var resp map[string]string
				json.NewDecoder(w.Body).Decode(&resp)
				if resp["error"] == "" {
					t.Error("expected an error message")
				}
			}
		})
	}
}

func TestRender(t *testing.T) {
	s := testServer(t)
	w := get(t, s, "/api/v1/render?date=1990-06-15")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content type = %s", ct)
	}
	img, err := png.Decode(w.Body)
	if err != nil {
		t.Fatalf("not a png: %s", err)
	}
	if b := img.Bounds(); b.Dx() != 160 || b.Dy() != 80 {
		t.Fatalf("image is %dx%d", b.Dx(), b.Dy())
	}

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantType   string
	}{
		{"orbits only", "?date=&format=jpg", http.StatusOK, "image/jpeg"},
		{"tiff", "?date=2000-01-01&format=tiff", http.StatusOK, "image/tiff"},
		{"unknown format", "?format=gif", http.StatusBadRequest, "application/json"},
		{"out of range", "?date=2200-01-01", http.StatusBadRequest, "application/json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(t, s, "/api/v1/render"+tt.query)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if ct := w.Header().Get("Content-Type"); ct != tt.wantType {
				t.Errorf("content type = %s, want %s", ct, tt.wantType)
			}
		})
	}
}

func TestMetrics(t *testing.T) {
	s := testServer(t)
	get(t, s, "/healthz")
	w := get(t, s, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `solbirthday_http_requests_total{code="200",method="GET",path="/healthz"}`) {
		t.Fatal("request counter missing from the metrics")
	}
}

func TestUnknownRoute(t *testing.T) {
	s := testServer(t)
	if w := get(t, s, "/api/v1/nothing"); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	req := httptest.NewRequest("POST", "/api/v1/bodies", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST status = %d", w.Code)
	}
}
