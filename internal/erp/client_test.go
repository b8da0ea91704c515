package erp_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"inventory-agent/internal/erp"
)

func TestNewClient_RequiresCredentials(t *testing.T) {
	if _, err := erp.NewClient("", "", "token", 0, nil); !errors.Is(err, erp.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration without api key, got %v", err)
	}
	if _, err := erp.NewClient("", "key", "   ", 0, nil); !errors.Is(err, erp.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration without api token, got %v", err)
	}
	if _, err := erp.NewClient("", "key", "token", 0, nil); err != nil {
		t.Errorf("unexpected error with valid credentials: %v", err)
	}
}

func TestFetchAll_PaginatedObject(t *testing.T) {
	var pages []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "test-key" {
			t.Errorf("Authorization header = %q, want test-key", got)
		}
		if got := r.Header.Get("X-Api-Token"); got != "test-token" {
			t.Errorf("X-Api-Token header = %q, want test-token", got)
		}
		page := r.URL.Query().Get("page")
		pages = append(pages, page)
		if page == "1" {
			fmt.Fprint(w, `{"results": [{"id": "P-1"}, {"id": "P-2"}], "next": "http://example/page2"}`)
			return
		}
		fmt.Fprint(w, `{"results": [{"id": "P-3"}], "next": null}`)
	}))
	defer server.Close()

	client, err := erp.NewClient(server.URL, "test-key", "test-token", 2, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	records, err := client.FetchAll(context.Background(), erp.Endpoint{Path: "producto/", LegacyAliases: true}, nil)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(records) != 3 {
		t.Errorf("got %d records, want 3", len(records))
	}
	if len(pages) != 2 {
		t.Errorf("fetched pages %v, want two requests", pages)
	}
}

func TestFetchAll_LegacyListShape(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if r.URL.Query().Get("result_page") == "" {
			t.Error("legacy alias result_page missing from query")
		}
		if requests == 1 {
			// A full page implies another one may follow.
			fmt.Fprint(w, `[{"id": "D-1"}, {"id": "D-2"}]`)
			return
		}
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	client, err := erp.NewClient(server.URL, "key", "token", 2, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	records, err := client.FetchAll(context.Background(), erp.Endpoint{Path: "documento/", LegacyAliases: true}, nil)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("got %d records, want 2", len(records))
	}
	if requests != 2 {
		t.Errorf("made %d requests, want 2 (stop on empty page)", requests)
	}
}

func TestFetchAll_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"mensaje": "Token inválido"}`)
	}))
	defer server.Close()

	client, err := erp.NewClient(server.URL, "key", "token", 2, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = client.FetchAll(context.Background(), erp.Endpoint{Path: "producto/"}, nil)
	var apiErr *erp.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusForbidden || apiErr.Detail != "Token inválido" {
		t.Errorf("APIError = %+v, want status 403 with the mensaje field", apiErr)
	}
}

func TestEndpoints_CoverAllResources(t *testing.T) {
	endpoints := erp.Endpoints()
	for _, resource := range []string{
		"categories", "brands", "variants", "products", "warehouses",
		"remission_guides", "purchases", "sales", "documents",
		"registry_transactions", "persons", "cost_centers",
	} {
		if _, ok := endpoints[resource]; !ok {
			t.Errorf("no endpoint mapped for resource %q", resource)
		}
	}

	if got := endpoints["purchases"].ExtraParams.Get("tipo"); got != "LQC" {
		t.Errorf("purchases tipo = %q, want LQC", got)
	}
	if got := endpoints["sales"].ExtraParams.Get("tipo_registro"); got != "CLI" {
		t.Errorf("sales tipo_registro = %q, want CLI", got)
	}
	if endpoints["documents"].UpdatedSinceField != "fecha_emision__gte" {
		t.Error("documents endpoint must filter by fecha_emision__gte")
	}
}
