package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/alimasry/deltadoc/delta"
	"github.com/alimasry/deltadoc/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRouter_Healthz(t *testing.T) {
	r := NewRouter(store.NewMemoryStore())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestRouter_CreateAndGetDocument(t *testing.T) {
	r := NewRouter(store.NewMemoryStore())

	body, _ := json.Marshal(createDocumentRequest{ID: "doc1", Content: delta.New().Insert("hello", nil)})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/documents", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want 201: %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/documents/doc1", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var view documentView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatal(err)
	}
	if view.ID != "doc1" {
		t.Errorf("id = %q, want doc1", view.ID)
	}
}

func TestRouter_GetDocument_NotFound(t *testing.T) {
	r := NewRouter(store.NewMemoryStore())
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/documents/nope", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestRouter_ListDocuments(t *testing.T) {
	st := store.NewMemoryStore()
	st.Create(nil, "a", nil)
	st.Create(nil, "b", nil)
	r := NewRouter(st)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var payload struct {
		Documents []documentSummary `json:"documents"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if len(payload.Documents) != 2 {
		t.Errorf("got %d documents, want 2", len(payload.Documents))
	}
}

func TestRouter_CreateDuplicate(t *testing.T) {
	st := store.NewMemoryStore()
	st.Create(nil, "doc1", nil)
	r := NewRouter(st)

	body, _ := json.Marshal(createDocumentRequest{ID: "doc1"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/documents", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}
