package ui

import (
	"context"
	"errors"
	"testing"

	"foodexplorer/internal/cart"
	"foodexplorer/internal/catalog"
	"foodexplorer/internal/query"
)

type stubSearcher struct{}

func (stubSearcher) Search(ctx context.Context, params catalog.SearchParams) (*catalog.SearchResult, error) {
	return &catalog.SearchResult{}, nil
}

type stubStorage struct {
	data map[string][]byte
}

func (s *stubStorage) Put(key string, value []byte) error {
	s.data[key] = value
	return nil
}

func (s *stubStorage) Get(key string) ([]byte, error) {
	v, ok := s.data[key]
	if !ok {
		return nil, errors.New("no such key")
	}
	return v, nil
}

func newTestApp(t *testing.T) (App, *cart.Store) {
	t.Helper()
	machine := query.NewMachine(stubSearcher{}, 24)
	cartStore := cart.NewStore(&stubStorage{data: map[string][]byte{}})
	return NewApp(machine, cartStore, nil), cartStore
}

// A search response can shrink the result list after a keypress is enqueued
// but before the matching state message arrives. Item actions must act on
// the rendered snapshot, never re-index the live list.
func TestAddToCartOnOutdatedResults(t *testing.T) {
	app, cartStore := newTestApp(t)

	// The page rendered two items; the machine itself holds none.
	model, _ := app.Update(QueryStateMsg(query.State{Items: []catalog.Product{
		{Code: "100", Name: "Oat Milk"},
		{Code: "200", Name: "Dark Chocolate"},
	}}))
	model, _ = model.(App).Update(key("j"))
	model, _ = model.(App).Update(key("a"))

	items := cartStore.State().Items
	if len(items) != 1 || items[0].Code != "200" {
		t.Fatalf("expected the rendered selection in the cart, got %+v", items)
	}
	_ = model
}

func TestAddToCartWithNoResults(t *testing.T) {
	app, cartStore := newTestApp(t)

	model, _ := app.Update(QueryStateMsg(query.State{}))
	model, _ = model.(App).Update(key("a"))
	_ = model

	if got := cartStore.TotalItems(); got != 0 {
		t.Fatalf("empty selection added %d items", got)
	}
}
