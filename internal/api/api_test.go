package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/altafr/present99/internal/deck"
	"github.com/altafr/present99/internal/export"
	"github.com/altafr/present99/internal/imagejob"
	"github.com/altafr/present99/internal/models"
	"github.com/altafr/present99/internal/openrouter"
	"github.com/altafr/present99/internal/replicate"
	"github.com/altafr/present99/internal/sse"
	"github.com/altafr/present99/internal/store"
	"github.com/altafr/present99/internal/testutil"
	"github.com/altafr/present99/internal/themes"
)

// providerStub fakes the Replicate predictions API. It records how many
// create calls arrived and serves each prediction as immediately succeeded.
type providerStub struct {
	creates atomic.Int64
	srv     *httptest.Server
}

func newProviderStub(t *testing.T) *providerStub {
	t.Helper()
	p := &providerStub{}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /predictions", func(w http.ResponseWriter, r *http.Request) {
		n := p.creates.Add(1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":     fmt.Sprintf("pred-%d", n),
			"status": "starting",
		})
	})
	mux.HandleFunc("GET /predictions/{id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id == "pred-missing" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"detail": "not found"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":     id,
			"status": "succeeded",
			"output": []string{"img://" + id},
		})
	})
	p.srv = httptest.NewServer(mux)
	t.Cleanup(p.srv.Close)
	return p
}

// testEnv wires a full router against a temp SQLite DB. token="" disables
// auth; configured=false leaves the image provider unconfigured.
func testEnv(t *testing.T, token string, configured bool) (store.Repository, http.Handler) {
	t.Helper()

	db := testutil.TestDB(t)

	cfg := replicate.Config{}
	if configured {
		stub := newProviderStub(t)
		cfg = replicate.Config{Token: "r8_test", BaseURL: stub.srv.URL}
	}
	images := replicate.New(cfg)

	catalog, err := themes.NewCatalog("")
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	broker := sse.NewBroker(time.Minute)
	t.Cleanup(broker.Close)

	decks := deck.NewService(openrouter.New(openrouter.Config{}), nil)
	jobs := imagejob.NewOrchestrator(images, db, broker, imagejob.PollerOpts{
		InitialDelay: time.Millisecond,
		Interval:     time.Millisecond,
		MaxAttempts:  5,
	}, nil)
	t.Cleanup(jobs.Wait)

	h := NewHandler(decks, db, images, jobs, catalog, export.New(nil), broker)
	return db, NewRouter(h, token != "", token, broker)
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGenerateCreatesPresentation(t *testing.T) {
	repo, router := testEnv(t, "", false)

	w := doJSON(t, router, http.MethodPost, "/generate", map[string]any{"topic": "Remote Work"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var p models.Presentation
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatal(err)
	}
	if p.ID == "" {
		t.Error("missing presentation id")
	}
	if len(p.Slides) != 5 {
		t.Errorf("slides = %d, want 5 (mock fallback)", len(p.Slides))
	}
	if p.ThemeID != themes.DefaultThemeID {
		t.Errorf("theme = %q, want default", p.ThemeID)
	}

	stored, err := repo.Get(t.Context(), p.ID)
	if err != nil {
		t.Fatalf("generated presentation not persisted: %v", err)
	}
	if stored.Topic != "Remote Work" {
		t.Errorf("stored topic = %q", stored.Topic)
	}
}

func TestGenerateRequiresTopic(t *testing.T) {
	_, router := testEnv(t, "", false)

	w := doJSON(t, router, http.MethodPost, "/generate", map[string]any{"tone": "casual"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGenerateImageUnconfigured(t *testing.T) {
	_, router := testEnv(t, "", false)

	w := doJSON(t, router, http.MethodPost, "/generate-image", map[string]any{"prompt": "a mountain"})
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if !strings.Contains(w.Body.String(), "not configured") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestGenerateImageRequiresPrompt(t *testing.T) {
	_, router := testEnv(t, "", true)

	w := doJSON(t, router, http.MethodPost, "/generate-image", map[string]any{"slideId": "3"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestBatchDispatchShapes(t *testing.T) {
	_, router := testEnv(t, "", true)

	w := doJSON(t, router, http.MethodPost, "/generate-images-batch", map[string]any{
		"slides": []map[string]string{
			{"id": "1", "imagePrompt": "a city skyline"},
			{"id": "2"},
			{"id": "3", "imagePrompt": "a forest"},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp BatchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Predictions) != 3 {
		t.Fatalf("predictions = %d, want 3", len(resp.Predictions))
	}
	if resp.Predictions[0].PredictionID == nil {
		t.Error("slide 1 should carry a prediction id")
	}
	if resp.Predictions[1].Status != "skipped" || resp.Predictions[1].PredictionID != nil {
		t.Errorf("slide 2 = %+v, want skipped with null prediction id", resp.Predictions[1])
	}
	if resp.Predictions[0].Status != "starting" {
		t.Errorf("slide 1 status = %q, want provider status passthrough", resp.Predictions[0].Status)
	}
}

func TestBatchRequiresSlidesArray(t *testing.T) {
	_, router := testEnv(t, "", true)

	w := doJSON(t, router, http.MethodPost, "/generate-images-batch", map[string]any{"presentationId": "p1"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestBatchUnconfiguredShortCircuits(t *testing.T) {
	_, router := testEnv(t, "", false)

	w := doJSON(t, router, http.MethodPost, "/generate-images-batch", map[string]any{
		"slides": []map[string]string{{"id": "1", "imagePrompt": "x"}},
	})
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestImageStatusSucceeded(t *testing.T) {
	_, router := testEnv(t, "", true)

	w := doJSON(t, router, http.MethodGet, "/image-status/pred-7", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ImageStatusResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "succeeded" || resp.ImageURL != "img://pred-7" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestImageStatusUnknownJob(t *testing.T) {
	_, router := testEnv(t, "", true)

	w := doJSON(t, router, http.MethodGet, "/image-status/pred-missing", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if !strings.Contains(w.Body.String(), "details") {
		t.Errorf("body should carry details: %s", w.Body.String())
	}
}

func TestImageStatusUnconfigured(t *testing.T) {
	_, router := testEnv(t, "", false)

	w := doJSON(t, router, http.MethodGet, "/image-status/pred-1", nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestPresentationCRUD(t *testing.T) {
	_, router := testEnv(t, "", false)

	body := map[string]any{
		"topic":   "Quarterly Review",
		"themeId": "midnight",
		"slides": []map[string]any{
			{"id": "1", "layout": "title", "title": "Quarterly Review"},
		},
	}
	w := doJSON(t, router, http.MethodPost, "/presentations", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var created models.Presentation
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	if created.ThemeID != "midnight" {
		t.Errorf("theme = %q", created.ThemeID)
	}

	w = doJSON(t, router, http.MethodGet, "/presentations/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}

	body["topic"] = "Quarterly Review v2"
	w = doJSON(t, router, http.MethodPut, "/presentations/"+created.ID, body)
	if w.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodGet, "/presentations", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list PresentationListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Total != 1 || list.Presentations[0].Topic != "Quarterly Review v2" {
		t.Errorf("list = %+v", list)
	}

	w = doJSON(t, router, http.MethodDelete, "/presentations/"+created.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/presentations/"+created.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", w.Code)
	}
}

func TestUpdateMissingPresentation(t *testing.T) {
	_, router := testEnv(t, "", false)

	w := doJSON(t, router, http.MethodPut, "/presentations/ghost", map[string]any{
		"topic":  "Ghost",
		"slides": []map[string]any{{"id": "1", "layout": "title", "title": "x"}},
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestListThemes(t *testing.T) {
	_, router := testEnv(t, "", false)

	w := doJSON(t, router, http.MethodGet, "/themes", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Themes []themes.Theme `json:"themes"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Themes) != 8 {
		t.Errorf("themes = %d, want 8 builtins", len(resp.Themes))
	}
}

func TestExportHTML(t *testing.T) {
	repo, router := testEnv(t, "", false)

	p := &models.Presentation{
		ID:    "exp-1",
		Topic: "Export Me",
		Slides: []models.Slide{
			{ID: "1", Layout: models.LayoutTitle, Title: "Export Me"},
		},
	}
	if err := repo.Create(t.Context(), p); err != nil {
		t.Fatal(err)
	}

	w := doJSON(t, router, http.MethodGet, "/presentations/exp-1/export?format=html", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "export_me_presentation.html") {
		t.Errorf("disposition = %q", w.Header().Get("Content-Disposition"))
	}
	if !strings.Contains(w.Body.String(), "Reveal.initialize") {
		t.Error("body is not a reveal document")
	}
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	_, router := testEnv(t, "", false)

	w := doJSON(t, router, http.MethodGet, "/presentations/x/export?format=docx", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestAuthEnforced(t *testing.T) {
	_, router := testEnv(t, "secret-token", false)

	req := httptest.NewRequest(http.MethodGet, "/presentations", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/presentations", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/presentations", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("valid token status = %d, want 200", w.Code)
	}
}
