package recommend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRecommend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != Path {
			t.Errorf("path = %s", r.URL.Path)
		}
		switch r.URL.Query().Get("productId") {
		case "gid://shopify/Product/1":
			_, _ = w.Write([]byte(`{"productIssue":{"title":"Sizing","description":"Runs small"}}`))
		case "gid://shopify/Product/2":
			_, _ = w.Write([]byte(`{"productIssue":null}`))
		default:
			http.Error(w, "boom", http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", 0)
	ctx := context.Background()

	sug, err := c.Recommend(ctx, "gid://shopify/Product/1")
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if sug == nil || sug.Title != "Sizing" || sug.Description != "Runs small" {
		t.Errorf("suggestion = %+v", sug)
	}

	sug, err = c.Recommend(ctx, "gid://shopify/Product/2")
	if err != nil || sug != nil {
		t.Errorf("empty recommendation = %+v, %v", sug, err)
	}

	_, err = c.Recommend(ctx, "gid://shopify/Product/3")
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusInternalServerError {
		t.Errorf("err = %v", err)
	}
}
