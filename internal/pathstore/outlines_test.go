package pathstore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/docoutline/internal/outline"
)

// fakeKV is an in-memory stand-in for the pathstore /kv API.
type fakeKV struct {
	mu    sync.Mutex
	nodes map[string]json.RawMessage
	auth  []string
}

func newFakeKV() *fakeKV {
	return &fakeKV{nodes: make(map[string]json.RawMessage)}
}

func (f *fakeKV) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auth = append(f.auth, r.Header.Get("Authorization"))

	key := strings.TrimPrefix(r.URL.Path, "/kv/")
	switch r.Method {
	case http.MethodPut:
		var req struct {
			Value json.RawMessage `json:"value"`
		}
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		f.nodes[key] = req.Value
		w.WriteHeader(http.StatusCreated)
	case http.MethodGet:
		if prefix, ok := strings.CutSuffix(key, "/*"); ok {
			type node struct {
				Key   string          `json:"key_path"`
				Value json.RawMessage `json:"value"`
			}
			var nodes []node
			for k, v := range f.nodes {
				if strings.HasPrefix(k, prefix+"/") {
					nodes = append(nodes, node{Key: k, Value: v})
				}
			}
			json.NewEncoder(w).Encode(map[string]any{"nodes": nodes})
			return
		}
		v, ok := f.nodes[key]
		if !ok {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"key_path": key, "value": v})
	case http.MethodDelete:
		if _, ok := f.nodes[key]; !ok {
			http.NotFound(w, r)
			return
		}
		delete(f.nodes, key)
		w.WriteHeader(http.StatusNoContent)
	}
}

func sampleRecord() OutlineRecord {
	return OutlineRecord{
		ContentHash: "abc123",
		Filename:    "vatly10.pdf",
		Title:       "Vật lý 10",
		Pages:       120,
		Chunks:      42,
		CreatedAt:   time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Result: &outline.Result{
			Status:   outline.StatusOK,
			Strategy: "lesson",
			Topics: []outline.Topic{
				{Title: "Chuyển động thẳng", Confidence: outline.ConfidenceHigh},
				{Title: "Rơi tự do", Confidence: outline.ConfidenceMedium},
			},
		},
	}
}

func TestOutlineRoundTrip(t *testing.T) {
	kv := newFakeKV()
	srv := httptest.NewServer(kv)
	defer srv.Close()

	c := NewClient(srv.URL+"/", "secret")
	defer c.Close()
	ctx := context.Background()

	if err := c.PutOutline(ctx, sampleRecord()); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, ok := kv.nodes["outlines/abc123"]; !ok {
		t.Fatalf("expected node at outlines/abc123, got keys %v", kv.nodes)
	}

	rec, err := c.GetOutline(ctx, "abc123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec == nil {
		t.Fatal("expected stored outline")
	}
	if rec.Title != "Vật lý 10" || rec.Chunks != 42 {
		t.Errorf("unexpected record %+v", rec)
	}
	if rec.Result == nil || len(rec.Result.Topics) != 2 || rec.Result.Topics[1].Title != "Rơi tự do" {
		t.Errorf("expected topics to survive storage, got %+v", rec.Result)
	}

	for _, a := range kv.auth {
		if a != "Bearer secret" {
			t.Errorf("expected bearer auth, got %q", a)
		}
	}
}

func TestGetOutline_Missing(t *testing.T) {
	srv := httptest.NewServer(newFakeKV())
	defer srv.Close()

	rec, err := NewClient(srv.URL, "k").GetOutline(context.Background(), "nope")
	if err != nil {
		t.Fatalf("expected no error for missing outline, got %v", err)
	}
	if rec != nil {
		t.Errorf("expected nil record, got %+v", rec)
	}
}

func TestDeleteOutline(t *testing.T) {
	srv := httptest.NewServer(newFakeKV())
	defer srv.Close()
	c := NewClient(srv.URL, "k")
	ctx := context.Background()

	if err := c.PutOutline(ctx, sampleRecord()); err != nil {
		t.Fatalf("put: %v", err)
	}
	deleted, err := c.DeleteOutline(ctx, "abc123")
	if err != nil || !deleted {
		t.Fatalf("expected deletion, got %v %v", deleted, err)
	}
	deleted, err = c.DeleteOutline(ctx, "abc123")
	if err != nil || deleted {
		t.Errorf("expected second delete to report nothing, got %v %v", deleted, err)
	}
}

func TestListOutlines(t *testing.T) {
	kv := newFakeKV()
	srv := httptest.NewServer(kv)
	defer srv.Close()
	c := NewClient(srv.URL, "k")
	ctx := context.Background()

	if err := c.PutOutline(ctx, sampleRecord()); err != nil {
		t.Fatalf("put: %v", err)
	}
	kv.nodes["outlines/broken"] = json.RawMessage(`"not an object"`)
	kv.nodes["other/xyz"] = json.RawMessage(`{}`)

	list, err := c.ListOutlines(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 decodable outline, got %d", len(list))
	}
	if list[0].Topics != 2 || list[0].Status != "OK" {
		t.Errorf("unexpected summary %+v", list[0])
	}
}

func TestPutOutline_EmptyHash(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "k")
	if err := c.PutOutline(context.Background(), OutlineRecord{}); err == nil {
		t.Error("expected error for empty hash")
	}
}

func TestPutNode_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewClient(srv.URL, "k").PutOutline(context.Background(), sampleRecord())
	if err == nil || !strings.Contains(err.Error(), "status 500") {
		t.Errorf("expected status 500 error, got %v", err)
	}
}
