package integration

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/eugenenazirov/seating-planner/internal/api"
	"github.com/eugenenazirov/seating-planner/internal/export"
	"github.com/eugenenazirov/seating-planner/internal/roster"
	"github.com/eugenenazirov/seating-planner/internal/seating"
	"github.com/eugenenazirov/seating-planner/internal/storage"
)

const rosterCSV = "First Name,Last Name,Department\n" +
	"Ada,Lovelace,Engineering\n" +
	"Alan,Turing,Engineering\n" +
	"Grace,Hopper,Engineering\n" +
	"Dale,Carnegie,Sales\n" +
	"Zig,Ziglar,Sales\n" +
	"Mary,Kay,Sales\n" +
	"Don,Draper,Marketing\n"

func newRouter(t *testing.T) http.Handler {
	t.Helper()

	store := storage.NewMemoryStorage()
	handler := api.NewHandler(seating.New(), store)
	logger := zaptest.NewLogger(t)
	return api.NewRouter(handler, logger, api.WithLogging(false))
}

func performRequest(t *testing.T, handler http.Handler, method, target string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func multipartRoster(t *testing.T, filename, content string) ([]byte, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := mw.WriteField("seed", "2024"); err != nil {
		t.Fatalf("write seed field: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return buf.Bytes(), mw.FormDataContentType()
}

type arrangementResponse struct {
	ID            string `json:"id"`
	SeatsPerTable int    `json:"seatsPerTable"`
	Diversify     bool   `json:"diversify"`
	TotalPeople   int    `json:"totalPeople"`
	Tables        []struct {
		Number   int `json:"number"`
		Capacity int `json:"capacity"`
		People   []struct {
			Name       string `json:"name"`
			Department string `json:"department"`
		} `json:"people"`
	} `json:"tables"`
}

func TestIntegrationFlow(t *testing.T) {
	handler := newRouter(t)
	jsonHeaders := map[string]string{"Content-Type": "application/json"}

	rec := performRequest(t, handler, http.MethodGet, "/api/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from health, got %d", rec.Code)
	}

	settings, _ := json.Marshal(map[string]any{"seatsPerTable": 3, "diversify": true})
	rec = performRequest(t, handler, http.MethodPut, "/api/settings", settings, jsonHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from settings update, got %d: %s", rec.Code, rec.Body.String())
	}

	body, contentType := multipartRoster(t, "team.csv", rosterCSV)
	rec = performRequest(t, handler, http.MethodPost, "/api/arrangements", body, map[string]string{"Content-Type": contentType})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 from arrangements, got %d: %s", rec.Code, rec.Body.String())
	}

	var created arrangementResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.SeatsPerTable != 3 || !created.Diversify {
		t.Fatalf("expected stored settings to apply, got seats=%d diversify=%v", created.SeatsPerTable, created.Diversify)
	}
	if created.TotalPeople != 7 || len(created.Tables) != 3 {
		t.Fatalf("expected 7 people across 3 tables, got %d across %d", created.TotalPeople, len(created.Tables))
	}
	for _, table := range created.Tables {
		if len(table.People) > table.Capacity || table.Capacity > 3 {
			t.Fatalf("table %d holds %d people with capacity %d", table.Number, len(table.People), table.Capacity)
		}
	}

	rec = performRequest(t, handler, http.MethodGet, "/api/arrangements/"+created.ID, nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from arrangement lookup, got %d", rec.Code)
	}

	rec = performRequest(t, handler, http.MethodGet, "/api/arrangements/"+created.ID+"/export?format=csv", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from csv export, got %d", rec.Code)
	}
	rows, err := export.ReadCSV(rec.Body)
	if err != nil {
		t.Fatalf("read exported csv: %v", err)
	}

	var exported, expected []string
	for _, row := range rows {
		exported = append(exported, row.FullName+"|"+row.Department)
	}
	for _, table := range created.Tables {
		for _, person := range table.People {
			expected = append(expected, person.Name+"|"+person.Department)
		}
	}
	sort.Strings(exported)
	sort.Strings(expected)
	if len(exported) != len(expected) {
		t.Fatalf("expected %d exported rows, got %d", len(expected), len(exported))
	}
	for i := range expected {
		if exported[i] != expected[i] {
			t.Fatalf("exported roster mismatch at %d: %q vs %q", i, exported[i], expected[i])
		}
	}
}

func TestIntegrationXLSXExportCanBeReimported(t *testing.T) {
	handler := newRouter(t)

	body, contentType := multipartRoster(t, "team.csv", rosterCSV)
	rec := performRequest(t, handler, http.MethodPost, "/api/arrangements", body, map[string]string{"Content-Type": contentType})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 from arrangements, got %d: %s", rec.Code, rec.Body.String())
	}
	var created arrangementResponse
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	rec = performRequest(t, handler, http.MethodGet, "/api/arrangements/"+created.ID+"/export?format=xlsx", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from xlsx export, got %d", rec.Code)
	}

	people, err := roster.ParseXLSX(rec.Body)
	if err != nil {
		t.Fatalf("re-import exported xlsx: %v", err)
	}
	if len(people) != 7 {
		t.Fatalf("expected 7 people after re-import, got %d", len(people))
	}
}
