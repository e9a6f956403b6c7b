package query

import (
	"context"
	"sync"

	"foodexplorer/internal/catalog"
	"foodexplorer/internal/logging"
)

// Searcher is the slice of the catalog client the machine needs.
type Searcher interface {
	Search(ctx context.Context, params catalog.SearchParams) (*catalog.SearchResult, error)
}

// Machine orchestrates query state: it dispatches actions through the pure
// reducer and owns the only code that talks to the catalog service.
//
// Every issued request claims a generation token inside the same critical
// section that applies the triggering transition; a response is applied only
// while its token is still current. A filter change that supersedes an
// in-flight request therefore makes the stale response a no-op regardless of
// arrival order.
type Machine struct {
	mu       sync.Mutex
	state    State
	searcher Searcher
	pageSize int
	gen      uint64
	subs     []func(State)
	wg       sync.WaitGroup
}

// NewMachine creates a query machine. pageSize <= 0 falls back to the
// catalog default.
func NewMachine(searcher Searcher, pageSize int) *Machine {
	if pageSize <= 0 {
		pageSize = catalog.DefaultPageSize
	}
	return &Machine{
		state:    initialState(),
		searcher: searcher,
		pageSize: pageSize,
	}
}

// Subscribe registers a callback invoked with a state snapshot after every
// applied transition.
func (m *Machine) Subscribe(fn func(State)) {
	m.mu.Lock()
	m.subs = append(m.subs, fn)
	m.mu.Unlock()
}

// State returns a snapshot of the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Machine) snapshotLocked() State {
	s := m.state
	s.Items = append([]catalog.Product(nil), m.state.Items...)
	s.Categories = append([]string(nil), m.state.Categories...)
	return s
}

// dispatch applies an action and notifies subscribers. Used for transitions
// that do not issue requests.
func (m *Machine) dispatch(a Action) {
	m.mu.Lock()
	m.state = reduce(m.state, a)
	snap := m.snapshotLocked()
	subs := append(make([]func(State), 0, len(m.subs)), m.subs...)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// SetSearchTerm changes the free-text term and issues a fresh search.
func (m *Machine) SetSearchTerm(term string) {
	m.searchWith(setSearchTermAction{term: term})
}

// SetCategoryTag changes the category filter and issues a fresh search.
func (m *Machine) SetCategoryTag(tag string) {
	m.searchWith(setCategoryTagAction{tag: tag})
}

// SetSortKey changes the sort order and issues a fresh search.
func (m *Machine) SetSortKey(key SortKey) {
	m.searchWith(setSortKeyAction{key: key})
}

// SetNutritionGradeFilter changes the grade filter and issues a fresh search.
func (m *Machine) SetNutritionGradeFilter(grade string) {
	m.searchWith(setGradeFilterAction{grade: grade})
}

// Refresh re-issues a page-1 search with the current filters. Used for the
// initial load and for retry after an error.
func (m *Machine) Refresh() {
	m.searchWith(nil)
}

// ResetFilters returns to the initial filter state, keeps the category list
// and issues a fresh search.
func (m *Machine) ResetFilters() {
	m.searchWith(resetFiltersAction{})
}

// ClearError dismisses the current error without touching other fields.
func (m *Machine) ClearError() {
	m.dispatch(clearErrorAction{})
}

// SetCategories installs the category picker list. Categories are fetched
// once at startup, independent of query state.
func (m *Machine) SetCategories(categories []string) {
	m.dispatch(setCategoriesAction{categories: categories})
}

// searchWith applies the triggering action (nil = plain refresh), claims the
// next generation and issues a page-1 request for the filter combination
// captured at issue time, all in one critical section.
func (m *Machine) searchWith(a Action) {
	m.mu.Lock()
	if a != nil {
		m.state = reduce(m.state, a)
	}
	m.state = resetForFilterChange(m.state)
	m.gen++
	gen := m.gen
	params := catalog.SearchParams{
		SearchTerm:  m.state.SearchTerm,
		CategoryTag: m.state.CategoryTag,
		Page:        1,
		PageSize:    m.pageSize,
	}
	grade := m.state.NutritionGradeFilter
	sortKey := m.state.SortKey
	snap := m.snapshotLocked()
	subs := append(make([]func(State), 0, len(m.subs)), m.subs...)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}

	logging.QueryDebug("search gen=%d term=%q category=%q grade=%q sort=%s",
		gen, params.SearchTerm, params.CategoryTag, grade, sortKey)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		result, err := m.searcher.Search(context.Background(), params)
		if err != nil {
			if !m.applyIfCurrent(gen, setErrorAction{msg: err.Error()}) {
				logging.QueryDebug("discarding stale search failure gen=%d", gen)
			}
			return
		}

		products := sortProducts(filterByGrade(result.Products, grade), sortKey)
		applied := m.applyIfCurrent(gen, setResultsAction{
			products: products,
			count:    result.Count,
			rawCount: len(result.Products),
			pageSize: params.PageSize,
		})
		if !applied {
			logging.QueryDebug("discarding stale search response gen=%d", gen)
		}
	}()
}

// LoadMore fetches the next page with identical filters and appends it.
// No-op while loading or when the last page came back short.
func (m *Machine) LoadMore() {
	m.mu.Lock()
	if m.state.Loading || !m.state.HasMore {
		m.mu.Unlock()
		return
	}
	m.state = reduce(m.state, setLoadingAction{})
	m.gen++
	gen := m.gen
	params := catalog.SearchParams{
		SearchTerm:  m.state.SearchTerm,
		CategoryTag: m.state.CategoryTag,
		Page:        m.state.Page + 1,
		PageSize:    m.pageSize,
	}
	grade := m.state.NutritionGradeFilter
	sortKey := m.state.SortKey
	snap := m.snapshotLocked()
	subs := append(make([]func(State), 0, len(m.subs)), m.subs...)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}

	logging.QueryDebug("load more gen=%d page=%d", gen, params.Page)

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		result, err := m.searcher.Search(context.Background(), params)
		if err != nil {
			if !m.applyIfCurrent(gen, setErrorAction{msg: err.Error()}) {
				logging.QueryDebug("discarding stale load-more failure gen=%d", gen)
			}
			return
		}

		products := sortProducts(filterByGrade(result.Products, grade), sortKey)
		applied := m.applyIfCurrent(gen, appendResultsAction{
			products: products,
			rawCount: len(result.Products),
			pageSize: params.PageSize,
		})
		if !applied {
			logging.QueryDebug("discarding stale load-more response gen=%d", gen)
		}
	}()
}

// applyIfCurrent applies an action only if gen is still the latest issued
// generation. The check and the state write share one critical section so a
// concurrent filter change can never interleave between them.
func (m *Machine) applyIfCurrent(gen uint64, a Action) bool {
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return false
	}
	m.state = reduce(m.state, a)
	snap := m.snapshotLocked()
	subs := append(make([]func(State), 0, len(m.subs)), m.subs...)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
	return true
}

// Wait blocks until all in-flight requests have completed or been
// discarded. Intended for shutdown and tests.
func (m *Machine) Wait() {
	m.wg.Wait()
}
