package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"foodexplorer/internal/cart"
	"foodexplorer/internal/catalog"
	"foodexplorer/internal/query"
)

func key(s string) tea.KeyMsg {
	if s == "enter" {
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	if s == "esc" {
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func browseWithItems(t *testing.T) BrowsePageModel {
	t.Helper()
	model := NewBrowsePageModel()
	model.SetSize(80, 24)
	model.SetQueryState(query.State{
		Items: []catalog.Product{
			{Code: "100", Name: "Oat Milk", Brands: "Oatly", NutritionGrade: "a"},
			{Code: "200", Name: "Dark Chocolate", Brands: "Lindt", NutritionGrade: "d"},
		},
		TotalCount: 2,
		SortKey:    query.SortRelevance,
		Page:       1,
	})
	return model
}

func TestBrowsePageHotkeyEvents(t *testing.T) {
	cases := []struct {
		key  string
		want browseEvent
	}{
		{"s", eventCycleSort},
		{"g", eventCycleGrade},
		{"f", eventCycleCategory},
		{"r", eventResetFilters},
		{"m", eventLoadMore},
		{"x", eventDismissError},
		{"c", eventOpenCart},
		{"a", eventAddToCart},
		{"enter", eventOpenDetail},
	}
	for _, tc := range cases {
		model := browseWithItems(t)
		_, _, event := model.Update(key(tc.key))
		if event != tc.want {
			t.Errorf("key %q: got event %d, want %d", tc.key, event, tc.want)
		}
	}
}

func TestBrowsePageSearchSubmit(t *testing.T) {
	model := browseWithItems(t)

	model, _, _ = model.Update(key("/"))
	if !model.Searching() {
		t.Fatalf("expected input to be focused after /")
	}

	// While focused, hotkeys are text, not commands.
	model, _, event := model.Update(key("milk"))
	if event != eventNone {
		t.Fatalf("typing emitted event %d", event)
	}

	model, _, event = model.Update(key("enter"))
	if event != eventSubmitSearch {
		t.Fatalf("got event %d, want eventSubmitSearch", event)
	}
	if model.Searching() {
		t.Fatalf("expected input to blur on submit")
	}
	if model.SearchTerm() != "milk" {
		t.Fatalf("got search term %q, want %q", model.SearchTerm(), "milk")
	}
}

func TestBrowsePageCursorAndSelection(t *testing.T) {
	model := browseWithItems(t)
	if model.Selected() != 0 {
		t.Fatalf("initial selection = %d, want 0", model.Selected())
	}

	model, _, _ = model.Update(key("j"))
	if model.Selected() != 1 {
		t.Fatalf("selection after j = %d, want 1", model.Selected())
	}
	model, _, _ = model.Update(key("j"))
	if model.Selected() != 1 {
		t.Fatalf("cursor moved past the last item")
	}

	// Shrinking the result set snaps the cursor back.
	model.SetQueryState(query.State{Items: []catalog.Product{{Code: "100", Name: "Oat Milk"}}})
	if model.Selected() != 0 {
		t.Fatalf("selection after shrink = %d, want 0", model.Selected())
	}
}

func TestBrowsePageCycleHelpers(t *testing.T) {
	model := browseWithItems(t)

	if got := model.NextSortKey(); got != query.SortNameAsc {
		t.Errorf("NextSortKey from relevance = %q, want %q", got, query.SortNameAsc)
	}
	if got := model.NextGrade(); got != "a" {
		t.Errorf("NextGrade from unfiltered = %q, want a", got)
	}

	model.SetQueryState(query.State{Categories: []string{"snacks", "beverages"}})
	if got := model.NextCategory(); got != "snacks" {
		t.Errorf("NextCategory from unfiltered = %q, want snacks", got)
	}
	model.SetQueryState(query.State{Categories: []string{"snacks", "beverages"}, CategoryTag: "beverages"})
	if got := model.NextCategory(); got != "" {
		t.Errorf("NextCategory should wrap to no-filter, got %q", got)
	}
}

func TestBrowsePageViewStates(t *testing.T) {
	model := browseWithItems(t)
	view := model.View()
	if !strings.Contains(view, "Oat Milk") {
		t.Fatalf("expected product name in view")
	}

	model.SetQueryState(query.State{Err: "catalog unavailable"})
	view = model.View()
	if !strings.Contains(view, "catalog unavailable") {
		t.Fatalf("expected error banner in view")
	}

	model.SetQueryState(query.State{})
	if !strings.Contains(model.View(), "No products found") {
		t.Fatalf("expected empty-results message")
	}
}

func cartWithItems() CartPageModel {
	model := NewCartPageModel()
	model.SetSize(80, 24)
	model.SetSnapshot(cart.Snapshot{Items: []cart.Item{
		{Code: "100", Name: "Oat Milk", Brand: "Oatly", Quantity: 2},
		{Code: "200", Name: "Dark Chocolate", Brand: "Lindt", Quantity: 1},
	}})
	return model
}

func TestCartPageKeyEvents(t *testing.T) {
	cases := []struct {
		key  string
		want cartEvent
	}{
		{"esc", cartEventClose},
		{"+", cartEventIncrement},
		{"-", cartEventDecrement},
		{"d", cartEventRemove},
		{"C", cartEventClear},
		{"o", cartEventCheckout},
	}
	for _, tc := range cases {
		model := cartWithItems()
		_, event := model.Update(key(tc.key))
		if event != tc.want {
			t.Errorf("key %q: got event %d, want %d", tc.key, event, tc.want)
		}
	}

	// Item-scoped keys are inert on an empty cart.
	empty := NewCartPageModel()
	for _, k := range []string{"+", "-", "d", "o"} {
		if _, event := empty.Update(key(k)); event != cartEventNone {
			t.Errorf("key %q on empty cart emitted event %d", k, event)
		}
	}
}

func TestCartPageSelection(t *testing.T) {
	model := cartWithItems()
	if model.SelectedCode() != "100" || model.SelectedQuantity() != 2 {
		t.Fatalf("initial selection = %s x%d", model.SelectedCode(), model.SelectedQuantity())
	}
	model, _ = model.Update(key("j"))
	if model.SelectedCode() != "200" || model.SelectedQuantity() != 1 {
		t.Fatalf("selection after j = %s x%d", model.SelectedCode(), model.SelectedQuantity())
	}
}

func TestCartPageView(t *testing.T) {
	model := cartWithItems()
	view := model.View()
	if !strings.Contains(view, "Oat Milk") || !strings.Contains(view, "3 items") {
		t.Fatalf("expected items and total in view:\n%s", view)
	}

	model.SetSnapshot(cart.Snapshot{})
	if !strings.Contains(model.View(), "cart is empty") {
		t.Fatalf("expected empty-cart message")
	}

	model.MarkCheckedOut()
	if !strings.Contains(model.View(), "Order placed") {
		t.Fatalf("expected checkout confirmation")
	}
}

func TestDetailPageStates(t *testing.T) {
	model := NewDetailPageModel()
	model.SetSize(80, 24)

	model.SetProduct(&catalog.Product{
		Code:            "100",
		Name:            "Oat Milk",
		Brands:          "Oatly",
		NutritionGrade:  "a",
		IngredientsText: "water, oats",
		Nutriments:      map[string]float64{"energy-kcal_100g": 46},
	})
	view := model.View()
	if !strings.Contains(view, "Oat Milk") || !strings.Contains(view, "water, oats") {
		t.Fatalf("expected product details in view:\n%s", view)
	}

	model.StartLoading()
	model.SetNotFound()
	if !strings.Contains(model.View(), "not found") {
		t.Fatalf("expected not-found message")
	}

	model.StartLoading()
	model.SetError("timeout")
	if !strings.Contains(model.View(), "timeout") {
		t.Fatalf("expected error message")
	}
}
