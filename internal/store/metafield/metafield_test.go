package metafield

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/idilsaglam/issuetracker/internal/model"
	"github.com/idilsaglam/issuetracker/internal/shopify"
	"github.com/idilsaglam/issuetracker/internal/store"
)

// fakeAdmin is an in-memory admin API holding metafield values per product.
type fakeAdmin struct {
	mu       sync.Mutex
	products map[string]map[string]string // product id -> namespace/key -> value
	requests []shopify.Request
}

func newFakeAdmin(products ...string) *fakeAdmin {
	f := &fakeAdmin{products: map[string]map[string]string{}}
	for _, p := range products {
		f.products[p] = map[string]string{}
	}
	return f
}

func (f *fakeAdmin) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req shopify.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)

	w.Header().Set("Content-Type", "application/json")
	if strings.Contains(req.Query, "metafieldsSet") {
		owner, _ := req.Variables["ownerId"].(string)
		slot := req.Variables["namespace"].(string) + "/" + req.Variables["key"].(string)
		fields, ok := f.products[owner]
		if !ok {
			_, _ = w.Write([]byte(`{"data":{"metafieldsSet":{"userErrors":[{"field":["metafields","0","ownerId"],"message":"Owner does not exist","code":"INVALID"}]}}}`))
			return
		}
		fields[slot] = req.Variables["value"].(string)
		_, _ = w.Write([]byte(`{"data":{"metafieldsSet":{"userErrors":[]}}}`))
		return
	}

	id, _ := req.Variables["id"].(string)
	slot := req.Variables["namespace"].(string) + "/" + req.Variables["key"].(string)
	fields, ok := f.products[id]
	if !ok {
		_, _ = w.Write([]byte(`{"data":{"product":null}}`))
		return
	}
	value, ok := fields[slot]
	if !ok {
		_, _ = w.Write([]byte(`{"data":{"product":{"metafield":null}}}`))
		return
	}
	out, _ := json.Marshal(map[string]any{
		"data": map[string]any{"product": map[string]any{"metafield": map[string]any{"value": value}}},
	})
	_, _ = w.Write(out)
}

func newTestStore(t *testing.T, admin *fakeAdmin, opts ...Option) *Store {
	t.Helper()
	srv := httptest.NewServer(admin)
	t.Cleanup(srv.Close)
	return New(shopify.NewClient(srv.URL, "token"), opts...)
}

const product = "gid://shopify/Product/1"

func TestLoadMissingMetafieldIsEmpty(t *testing.T) {
	s := newTestStore(t, newFakeAdmin(product))
	issues, err := s.Load(context.Background(), product)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if issues == nil || len(issues) != 0 {
		t.Errorf("issues = %#v, want empty", issues)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t, newFakeAdmin(product))
	ctx := context.Background()
	want := []model.Issue{
		{ID: 0, Title: "Leak", Description: "Memory leak on checkout"},
		{ID: 1, Title: "Typo", Description: "Footer", Completed: true},
	}
	if err := s.Save(ctx, product, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx, product)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !model.Equal(got, want) {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestLoadUnknownProduct(t *testing.T) {
	s := newTestStore(t, newFakeAdmin())
	_, err := s.Load(context.Background(), product)
	if !errors.Is(err, store.ErrResourceNotFound) {
		t.Errorf("err = %v, want ErrResourceNotFound", err)
	}
}

func TestLoadMalformedValue(t *testing.T) {
	admin := newFakeAdmin(product)
	admin.products[product]["$app/issues"] = `{"not":"a list"}`
	s := newTestStore(t, admin)
	_, err := s.Load(context.Background(), product)
	if !errors.Is(err, model.ErrMalformed) {
		t.Errorf("err = %v, want ErrMalformed", err)
	}
}

func TestSaveUserErrors(t *testing.T) {
	s := newTestStore(t, newFakeAdmin())
	err := s.Save(context.Background(), product, nil)
	var ue UserErrors
	if !errors.As(err, &ue) {
		t.Fatalf("err = %v, want UserErrors", err)
	}
	if !strings.Contains(ue.Error(), "Owner does not exist") {
		t.Errorf("message = %q", ue.Error())
	}
}

func TestSaveWithDefinitionAndSlot(t *testing.T) {
	admin := newFakeAdmin(product)
	s := newTestStore(t, admin, WithSlot("$app:issues", "issues"), WithDefinition(true))
	if err := s.Save(context.Background(), product, []model.Issue{{ID: 0, Title: "a", Description: "b"}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	last := admin.requests[len(admin.requests)-1]
	if !strings.Contains(last.Query, "metafieldDefinitionCreate") {
		t.Error("definition mutation not sent")
	}
	if last.Variables["name"] != DefinitionName {
		t.Errorf("name = %v", last.Variables["name"])
	}
	if _, ok := admin.products[product]["$app:issues/issues"]; !ok {
		t.Error("value not stored under the configured slot")
	}
}

func TestRemoteFailureSurfaces(t *testing.T) {
	failing := shopify.ExecutorFunc(func(context.Context, shopify.Request) (*shopify.Response, error) {
		return nil, &shopify.StatusError{Code: 502}
	})
	s := New(failing)
	_, err := s.Load(context.Background(), product)
	var se *shopify.StatusError
	if !errors.As(err, &se) {
		t.Errorf("Load err = %v, want StatusError", err)
	}
	if err := s.Save(context.Background(), product, nil); !errors.As(err, &se) {
		t.Errorf("Save err = %v, want StatusError", err)
	}
}
