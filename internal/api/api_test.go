package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/starford/notepad/internal/journal"
	"github.com/starford/notepad/internal/models"
	"github.com/starford/notepad/internal/notestore"
	"github.com/starford/notepad/internal/testutil"
)

// testEnv sets up a temp notes file, journal, store, and router.
// An empty authToken means auth is disabled.
func testEnv(t *testing.T, authToken string) (*notestore.Store, http.Handler) {
	t.Helper()
	store, _, router := testEnvWithJournal(t, authToken)
	return store, router
}

func testEnvWithJournal(t *testing.T, authToken string) (*notestore.Store, *journal.DB, http.Handler) {
	t.Helper()
	db := testutil.TestJournal(t)
	store, _ := testutil.TestStore(t, notestore.WithJournal(db))
	router := NewRouter(store, db, authToken != "", authToken, nil)
	return store, db, router
}

func do(t *testing.T, router http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		rdr = bytes.NewReader(raw)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, rdr)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAddAndList(t *testing.T) {
	_, router := testEnv(t, "")

	w := do(t, router, http.MethodGet, "/notes", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("empty list status = %d", w.Code)
	}
	var list NoteListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Text != notestore.EmptyListing || list.Count != 0 || list.Notes == nil {
		t.Errorf("empty list = %+v", list)
	}

	for _, c := range []string{"buy milk", "call mom"} {
		w = do(t, router, http.MethodPost, "/notes", AddNoteRequest{Content: c})
		if w.Code != http.StatusCreated {
			t.Fatalf("add status = %d, body = %s", w.Code, w.Body.String())
		}
		var added AddNoteResponse
		_ = json.Unmarshal(w.Body.Bytes(), &added)
		if added.Message != "Added note: "+c {
			t.Errorf("message = %q", added.Message)
		}
	}

	w = do(t, router, http.MethodGet, "/notes", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if list.Text != "1. buy milk\n2. call mom" || list.Count != 2 {
		t.Errorf("list = %+v", list)
	}
}

func TestListETag(t *testing.T) {
	store, router := testEnv(t, "")
	_, _ = store.Add(context.Background(), "a")

	w := do(t, router, http.MethodGet, "/notes", nil)
	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Errorf("conditional GET = %d, want 304", w.Code)
	}

	_, _ = store.Add(context.Background(), "b")
	req = httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("If-None-Match", etag)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("conditional GET after change = %d, want 200", w.Code)
	}
}

func TestAddValidation(t *testing.T) {
	_, router := testEnv(t, "")

	req := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid JSON = %d, want 400", w.Code)
	}

	for _, c := range []string{"", "a\nb"} {
		w = do(t, router, http.MethodPost, "/notes", AddNoteRequest{Content: c})
		if w.Code != http.StatusBadRequest {
			t.Errorf("content %q = %d, want 400", c, w.Code)
		}
		var e ErrorResponse
		_ = json.Unmarshal(w.Body.Bytes(), &e)
		if !strings.HasPrefix(e.Error, "Error adding note: ") {
			t.Errorf("error = %q", e.Error)
		}
	}
}

func TestDeleteRandom(t *testing.T) {
	store, router := testEnv(t, "")

	w := do(t, router, http.MethodDelete, "/notes/random", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("delete on missing store = %d, want 404", w.Code)
	}

	for _, c := range []string{"a", "b", "c"} {
		_, _ = store.Add(context.Background(), c)
	}

	for _, q := range []string{"0", "-1", "abc", "1.5"} {
		w = do(t, router, http.MethodDelete, "/notes/random?count="+q, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("count=%s = %d, want 400", q, w.Code)
		}
	}
	w = do(t, router, http.MethodDelete, "/notes/random?count=abc", nil)
	var bad ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &bad)
	if bad.Error != "Error: Count must be an integer." {
		t.Errorf("count=abc error = %q", bad.Error)
	}
	if l, _ := store.List(context.Background()); len(l.Notes) != 3 {
		t.Errorf("rejected counts changed the store: %v", l.Notes)
	}

	w = do(t, router, http.MethodDelete, "/notes/random", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body = %s", w.Code, w.Body.String())
	}
	var d DeleteResponse
	_ = json.Unmarshal(w.Body.Bytes(), &d)
	if len(d.Deleted) != 1 || d.All || !strings.HasPrefix(d.Message, "Deleted 1 random note: ") {
		t.Errorf("delete = %+v", d)
	}

	w = do(t, router, http.MethodDelete, "/notes/random?count=5", nil)
	_ = json.Unmarshal(w.Body.Bytes(), &d)
	if !d.All || len(d.Deleted) != 2 {
		t.Errorf("delete all = %+v", d)
	}

	w = do(t, router, http.MethodDelete, "/notes/random", nil)
	var e ErrorResponse
	_ = json.Unmarshal(w.Body.Bytes(), &e)
	if w.Code != http.StatusNotFound || e.Error != "Error: Notes file is empty. Nothing to delete." {
		t.Errorf("delete on empty store = %d %q", w.Code, e.Error)
	}
}

func TestHistory(t *testing.T) {
	store, _, router := testEnvWithJournal(t, "")
	_, _ = store.Add(context.Background(), "a")
	_, _ = store.DeleteRandom(context.Background(), 1)

	w := do(t, router, http.MethodGet, "/history?limit=10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("history status = %d", w.Code)
	}
	var h HistoryResponse
	_ = json.Unmarshal(w.Body.Bytes(), &h)
	if len(h.Entries) != 2 || h.Entries[0].Op != models.OpDeleted || h.Entries[1].Op != models.OpAdded {
		t.Errorf("history = %+v", h.Entries)
	}
}

func TestDeleteRandomHugeCountClearsStore(t *testing.T) {
	store, router := testEnv(t, "")
	for _, c := range []string{"a", "b"} {
		_, _ = store.Add(context.Background(), c)
	}
	w := do(t, router, http.MethodDelete, "/notes/random?count=99999999999999999999", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("huge count status = %d, body = %s", w.Code, w.Body.String())
	}
	var d DeleteResponse
	_ = json.Unmarshal(w.Body.Bytes(), &d)
	if !d.All || len(d.Deleted) != 2 {
		t.Errorf("huge count = %+v", d)
	}
}

func TestHistoryRejectsBadLimit(t *testing.T) {
	_, _, router := testEnvWithJournal(t, "")
	w := do(t, router, http.MethodGet, "/history?limit=abc", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("limit=abc = %d, want 400", w.Code)
	}
	w = do(t, router, http.MethodGet, "/history", nil)
	if w.Code != http.StatusOK {
		t.Errorf("no limit = %d, want 200", w.Code)
	}
}

func TestHistoryDisabled(t *testing.T) {
	store, _ := testutil.TestStore(t)
	router := NewRouter(store, nil, false, "", nil)
	w := do(t, router, http.MethodGet, "/history", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("history without journal = %d, want 404", w.Code)
	}
}

func TestAuth(t *testing.T) {
	_, router := testEnv(t, "secret")

	w := do(t, router, http.MethodGet, "/notes", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token = %d, want 401", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid token = %d, want 200", w.Code)
	}
}
