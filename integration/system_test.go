//go:build integration
// +build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

var baseURL = getenv("E2E_BASE_URL", "http://localhost:8080")

func TestSystem_E2E_ProductLifecycle(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	waitReady(t, ctx, baseURL+"/health")

	name := fmt.Sprintf("e2e-widget-%d", time.Now().UnixNano())

	var created map[string]any
	doJSON(t, http.MethodPost, baseURL+"/api/v1/products", map[string]any{
		"name":  name,
		"price": 12.34,
	}, &created, 201)

	id, ok := created["id"].(float64)
	if !ok || id < 1 {
		t.Fatalf("product id missing in response: %#v", created)
	}
	if created["in_stock"] != true {
		t.Fatalf("in_stock should default to true: %#v", created)
	}

	productURL := fmt.Sprintf("%s/api/v1/products/%d", baseURL, int64(id))

	var updated map[string]any
	doJSON(t, http.MethodPut, productURL, map[string]any{"price": 43.21}, &updated, 200)
	if updated["price"] != 43.21 {
		t.Fatalf("price not updated: %#v", updated)
	}
	if updated["name"] != name {
		t.Fatalf("name changed by partial update: %#v", updated)
	}

	var listing map[string]any
	doJSON(t, http.MethodGet, baseURL+"/api/v1/products?page=1&page_size=100", nil, &listing, 200)
	if _, ok := listing["total_items"].(float64); !ok {
		t.Fatalf("missing envelope metadata: %#v", listing)
	}

	doJSON(t, http.MethodDelete, productURL, nil, nil, 204)
	doJSON(t, http.MethodGet, productURL, nil, nil, 404)
}

func waitReady(t *testing.T, ctx context.Context, url string) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}

	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		resp, err := client.Do(req)
		if err == nil && resp != nil && resp.StatusCode == 200 {
			_ = resp.Body.Close()
			return
		}
		if resp != nil {
			_ = resp.Body.Close()
		}
		time.Sleep(time.Second)
	}
	t.Fatalf("service at %s never became ready", url)
}

func doJSON(t *testing.T, method, url string, body any, out any, wantStatus int) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do %s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s status=%d want=%d body=%s", method, url, resp.StatusCode, wantStatus, string(raw))
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("decode: %v body=%s", err, string(raw))
		}
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
