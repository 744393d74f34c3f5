package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/starford/laguz/internal/gateway"
	"github.com/starford/laguz/internal/testutil"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(NewRouter(gateway.New(), false, ""))
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, srv *httptest.Server, route string, body any) (*http.Response, map[string]any) {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(srv.URL+route, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", route, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode %s response: %v", route, err)
	}
	return resp, out
}

func TestWriteThenRead(t *testing.T) {
	srv := testServer(t)
	doc := testutil.MemoryDoc(t)

	resp, out := post(t, srv, "/storage/write", OpRequest{
		Service: "memory", Path: "a.txt", Content: "hello", Config: doc,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("write status = %d, body = %v", resp.StatusCode, out)
	}
	if out["ok"] != true {
		t.Errorf("ok = %v", out["ok"])
	}

	resp, out = post(t, srv, "/storage/read", OpRequest{
		Service: "memory", Path: "a.txt", Config: doc,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("read status = %d", resp.StatusCode)
	}
	if out["content"] != "hello" {
		t.Errorf("content = %v", out["content"])
	}
}

func TestReadMissingIs404(t *testing.T) {
	srv := testServer(t)
	resp, out := post(t, srv, "/storage/read", OpRequest{
		Service: "memory", Path: "ghost.txt", Config: testutil.MemoryDoc(t),
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if out["kind"] != "not_found" {
		t.Errorf("kind = %v", out["kind"])
	}
}

func TestUnknownServiceIs400(t *testing.T) {
	srv := testServer(t)
	resp, out := post(t, srv, "/storage/read", OpRequest{
		Service: "ftp", Path: "x", Config: map[string]any{},
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if out["kind"] != "config" {
		t.Errorf("kind = %v", out["kind"])
	}
}

func TestUnsupportedIs501(t *testing.T) {
	srv := testServer(t)
	resp, out := post(t, srv, "/storage/create_dir", OpRequest{
		Service: "sqlite", Path: "d", Config: testutil.SQLiteDoc(t),
	})
	if resp.StatusCode != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501, body = %v", resp.StatusCode, out)
	}
}

func TestMissingPathIs400(t *testing.T) {
	srv := testServer(t)
	resp, _ := post(t, srv, "/storage/read", OpRequest{Service: "memory"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCopyRequiresSourceAndTarget(t *testing.T) {
	srv := testServer(t)
	resp, _ := post(t, srv, "/storage/copy", OpRequest{
		Service: "memory", Source: "only-source", Config: testutil.MemoryDoc(t),
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestListAndStat(t *testing.T) {
	srv := testServer(t)
	_, doc := testutil.FSDoc(t)

	for _, p := range []string{"dir/a.txt", "dir/b.txt"} {
		resp, _ := post(t, srv, "/storage/write", OpRequest{
			Service: "fs", Path: p, Content: "x", Config: doc,
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("write %s status = %d", p, resp.StatusCode)
		}
	}

	resp, out := post(t, srv, "/storage/list", OpRequest{
		Service: "fs", Path: "dir", Config: doc,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}
	if out["total"] != float64(2) {
		t.Errorf("total = %v", out["total"])
	}

	resp, out = post(t, srv, "/storage/stat", OpRequest{
		Service: "fs", Path: "dir/a.txt", Config: doc,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stat status = %d", resp.StatusCode)
	}
	if out["is_file"] != true || out["content_length"] != float64(1) {
		t.Errorf("stat = %v", out)
	}
}

func TestExistsDeleteRename(t *testing.T) {
	srv := testServer(t)
	doc := testutil.MemoryDoc(t)

	post(t, srv, "/storage/write", OpRequest{Service: "memory", Path: "old", Content: "v", Config: doc})

	resp, out := post(t, srv, "/storage/rename", OpRequest{
		Service: "memory", Source: "old", Target: "new", Config: doc,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rename status = %d, body = %v", resp.StatusCode, out)
	}

	_, out = post(t, srv, "/storage/exists", OpRequest{Service: "memory", Path: "old", Config: doc})
	if out["exists"] != false {
		t.Errorf("old exists = %v", out["exists"])
	}
	_, out = post(t, srv, "/storage/exists", OpRequest{Service: "memory", Path: "new", Config: doc})
	if out["exists"] != true {
		t.Errorf("new exists = %v", out["exists"])
	}

	resp, out = post(t, srv, "/storage/delete", OpRequest{Service: "memory", Path: "new", Config: doc})
	if resp.StatusCode != http.StatusOK || out["ok"] != true {
		t.Errorf("delete status = %d, body = %v", resp.StatusCode, out)
	}
}

func TestCapability(t *testing.T) {
	srv := testServer(t)
	resp, out := post(t, srv, "/storage/capability", OpRequest{
		Service: "sqlite", Config: testutil.SQLiteDoc(t),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if out["create_dir"] != false || out["read"] != true {
		t.Errorf("capability = %v", out)
	}
}

func TestInvalidJSONIs400(t *testing.T) {
	srv := testServer(t)
	resp, err := http.Post(srv.URL+"/storage/read", "application/json", bytes.NewReader([]byte("{not json")))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	srv := httptest.NewServer(NewRouter(gateway.New(), true, "secret"))
	defer srv.Close()

	body, _ := json.Marshal(OpRequest{Service: "memory", Path: "x", Config: map[string]any{}})

	resp, err := http.Post(srv.URL+"/storage/exists", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status without token = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/storage/exists", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer secret")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status with token = %d, want 200", resp.StatusCode)
	}
}
