package search

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/pazarbot/pazarbot/internal/schema"
)

func TestClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != "muz" {
			t.Errorf("expected query muz, got %q", got)
		}
		if got := r.URL.Query().Get("collection"); got != "SupermarketProducts3" {
			t.Errorf("unexpected collection %q", got)
		}
		json.NewEncoder(w).Encode([]schema.Product{
			{Name: "Muz İthal", Price: 45.9, MarketName: "Migros"},
			{Name: "Muz Yerli", Price: 39.5, MarketName: "A101"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	products := c.Search(context.Background(), "muz", "", 20)
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].Name != "Muz İthal" || products[0].Price != 45.9 {
		t.Errorf("unexpected first product %+v", products[0])
	}
}

func TestClient_SearchBackendErrorGivesEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	if products := c.Search(context.Background(), "muz", "", 20); len(products) != 0 {
		t.Errorf("expected no products on 500, got %d", len(products))
	}
}

func TestClient_SearchMalformedBodyGivesEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	if products := c.Search(context.Background(), "muz", "", 20); len(products) != 0 {
		t.Errorf("expected no products on garbage body, got %d", len(products))
	}
}

func TestClient_SearchUnreachableGivesEmpty(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "", 200*time.Millisecond)
	if products := c.Search(context.Background(), "muz", "", 20); len(products) != 0 {
		t.Errorf("expected no products when unreachable, got %d", len(products))
	}
}

func TestClient_CollectionsFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "MyCollection", time.Second)
	got := c.Collections(context.Background())
	if len(got) != 1 || got[0] != "MyCollection" {
		t.Errorf("expected fallback to default collection, got %v", got)
	}
}

func TestClient_Collections(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chatbot/collections" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string][]string{
			"collections": {"SupermarketProducts3", "Pilot"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	got := c.Collections(context.Background())
	if len(got) != 2 || got[1] != "Pilot" {
		t.Errorf("unexpected collections %v", got)
	}
}

func TestClient_KnowledgeBasePages(t *testing.T) {
	// 250 products served in pages of at most 100.
	total := 250
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chatbot/products" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if limit > 100 {
			t.Errorf("page size %d exceeds batch size", limit)
		}
		var page []schema.Product
		for i := offset; i < offset+limit && i < total; i++ {
			page = append(page, schema.Product{Name: "p" + strconv.Itoa(i)})
		}
		json.NewEncoder(w).Encode(page)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)

	got := c.KnowledgeBase(context.Background(), "", 250)
	if len(got) != 250 {
		t.Fatalf("expected 250 products, got %d", len(got))
	}
	if got[0].Name != "p0" || got[249].Name != "p249" {
		t.Errorf("pages out of order: first %q last %q", got[0].Name, got[249].Name)
	}
}

func TestClient_KnowledgeBaseStopsWhenBackendRunsOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		var page []schema.Product
		if offset == 0 {
			for i := 0; i < 30; i++ {
				page = append(page, schema.Product{Name: "p" + strconv.Itoa(i)})
			}
		}
		json.NewEncoder(w).Encode(page)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", time.Second)
	got := c.KnowledgeBase(context.Background(), "", 500)
	if len(got) != 30 {
		t.Errorf("expected 30 products, got %d", len(got))
	}
}
