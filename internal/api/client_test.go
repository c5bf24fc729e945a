package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gorilla/mux"

	"github.com/idilsaglam/todoc/internal/model"
)

// fakeBackend implements the REST contract in memory and records every
// request line it sees.
type fakeBackend struct {
	mu       sync.Mutex
	requests []string
	items    []model.Item
	failWith int // non-zero: every handler answers this status
	auth     string
}

func newFakeBackend(items ...model.Item) *fakeBackend {
	return &fakeBackend{items: items}
}

func (f *fakeBackend) record(r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	line := r.Method + " " + r.URL.EscapedPath()
	if r.URL.RawQuery != "" {
		line += "?" + r.URL.RawQuery
	}
	f.requests = append(f.requests, line)
	f.auth = r.Header.Get("Authorization")
}

func (f *fakeBackend) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeBackend) fail(w http.ResponseWriter) bool {
	if f.failWith != 0 {
		w.WriteHeader(f.failWith)
		return true
	}
	return false
}

func (f *fakeBackend) server(t *testing.T) *httptest.Server {
	t.Helper()
	r := mux.NewRouter()
	r.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		f.record(req)
		if f.fail(w) {
			return
		}
		f.mu.Lock()
		out := []model.Item{}
		done := req.URL.Query().Get("done")
		for _, it := range f.items {
			switch done {
			case "":
				out = append(out, it)
			case "true":
				if it.Done {
					out = append(out, it)
				}
			case "false":
				if !it.Done {
					out = append(out, it)
				}
			}
		}
		f.mu.Unlock()
		json.NewEncoder(w).Encode(out)
	}).Methods(http.MethodGet)

	r.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		f.record(req)
		if f.fail(w) {
			return
		}
		var it model.Item
		if err := json.NewDecoder(req.Body).Decode(&it); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.items = append(f.items, it)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(it)
	}).Methods(http.MethodPost)

	r.HandleFunc("/{title}", func(w http.ResponseWriter, req *http.Request) {
		f.record(req)
		if f.fail(w) {
			return
		}
		title := mux.Vars(req)["title"]
		done := req.URL.Query().Get("done") == "true"
		f.mu.Lock()
		for i := range f.items {
			if f.items[i].Title == title {
				f.items[i].Done = done
			}
		}
		f.mu.Unlock()
		json.NewEncoder(w).Encode(model.Item{Title: title, Done: done})
	}).Methods(http.MethodPut)

	r.HandleFunc("/{title}", func(w http.ResponseWriter, req *http.Request) {
		f.record(req)
		if f.fail(w) {
			return
		}
		title := mux.Vars(req)["title"]
		f.mu.Lock()
		kept := f.items[:0]
		for _, it := range f.items {
			if it.Title != title {
				kept = append(kept, it)
			}
		}
		f.items = kept
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodDelete)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()
	c, err := New(srv.URL, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestListFilterParams(t *testing.T) {
	tests := []struct {
		name     string
		filter   model.DoneFilter
		wantLine string
		wantLen  int
	}{
		{name: "all omits done", filter: model.FilterAll, wantLine: "GET /", wantLen: 2},
		{name: "done sends true", filter: model.FilterDone, wantLine: "GET /?done=true", wantLen: 1},
		{name: "pending sends false", filter: model.FilterNotDone, wantLine: "GET /?done=false", wantLen: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := newFakeBackend(
				model.Item{Title: "Buy milk", Done: false},
				model.Item{Title: "Walk dog", Done: true},
			)
			c := newTestClient(t, fb.server(t))

			items, err := c.List(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(items) != tt.wantLen {
				t.Errorf("got %d items, want %d", len(items), tt.wantLen)
			}
			got := fb.recorded()
			if len(got) != 1 || got[0] != tt.wantLine {
				t.Errorf("recorded %v, want [%q]", got, tt.wantLine)
			}
		})
	}
}

func TestListBackendError(t *testing.T) {
	fb := newFakeBackend()
	fb.failWith = http.StatusInternalServerError
	c := newTestClient(t, fb.server(t))

	_, err := c.List(context.Background(), model.FilterAll)
	if err == nil {
		t.Fatal("expected error")
	}
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type %T, want *Error", err)
	}
	if apiErr.Status != http.StatusInternalServerError || apiErr.Op != "list" {
		t.Errorf("got op=%q status=%d", apiErr.Op, apiErr.Status)
	}
}

func TestListRejectsMalformedPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not an array", body: `{"title":"x","done":false}`},
		{name: "missing done", body: `[{"title":"x"}]`},
		{name: "empty title", body: `[{"title":"","done":true}]`},
		{name: "wrong done type", body: `[{"title":"x","done":"yes"}]`},
		{name: "not json", body: `<html>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()
			c := newTestClient(t, srv)

			if _, err := c.List(context.Background(), model.FilterAll); err == nil {
				t.Error("expected error for malformed payload")
			}
		})
	}
}

func TestCreatePostsItem(t *testing.T) {
	fb := newFakeBackend()
	c := newTestClient(t, fb.server(t))

	if err := c.Create(context.Background(), model.Item{Title: "Buy milk"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got := fb.recorded()
	if len(got) != 1 || got[0] != "POST /" {
		t.Errorf("recorded %v, want [\"POST /\"]", got)
	}
	if len(fb.items) != 1 || fb.items[0].Title != "Buy milk" || fb.items[0].Done {
		t.Errorf("backend stored %+v, want {Buy milk false}", fb.items)
	}
}

func TestSetDoneEscapesTitle(t *testing.T) {
	fb := newFakeBackend(model.Item{Title: "Buy milk"})
	c := newTestClient(t, fb.server(t))

	if err := c.SetDone(context.Background(), "Buy milk", true); err != nil {
		t.Fatalf("SetDone: %v", err)
	}
	got := fb.recorded()
	want := "PUT /Buy%20milk?done=true"
	if len(got) != 1 || got[0] != want {
		t.Errorf("recorded %v, want [%q]", got, want)
	}
	if !fb.items[0].Done {
		t.Error("backend item not toggled")
	}
}

func TestDeleteByTitle(t *testing.T) {
	fb := newFakeBackend(model.Item{Title: "Buy milk"})
	c := newTestClient(t, fb.server(t))

	if err := c.Delete(context.Background(), "Buy milk"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got := fb.recorded()
	want := "DELETE /Buy%20milk"
	if len(got) != 1 || got[0] != want {
		t.Errorf("recorded %v, want [%q]", got, want)
	}
	if len(fb.items) != 0 {
		t.Errorf("backend still holds %+v", fb.items)
	}
}

func TestBearerToken(t *testing.T) {
	fb := newFakeBackend()
	c := newTestClient(t, fb.server(t), WithToken("secret"))

	if _, err := c.List(context.Background(), model.FilterAll); err != nil {
		t.Fatalf("List: %v", err)
	}
	if fb.auth != "Bearer secret" {
		t.Errorf("Authorization = %q, want %q", fb.auth, "Bearer secret")
	}
}

func TestNewRejectsBadURLs(t *testing.T) {
	for _, base := range []string{"", "   ", "not-a-url", "/relative"} {
		if _, err := New(base); err == nil {
			t.Errorf("New(%q): expected error", base)
		}
	}
}
