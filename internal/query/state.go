// Package query owns the search/filter/sort/pagination state machine.
// State transitions go through a pure reducer driven by tagged actions;
// all I/O lives in the Machine orchestration layer.
package query

import "foodexplorer/internal/catalog"

// SortKey selects the result ordering.
type SortKey string

const (
	SortRelevance SortKey = "relevance" // server order retained
	SortNameAsc   SortKey = "name_asc"
	SortNameDesc  SortKey = "name_desc"
	SortGradeAsc  SortKey = "grade_asc"
	SortGradeDesc SortKey = "grade_desc"
)

// State is the full query state. Copies are cheap to hand out; Items is
// shared until mutated, so snapshots clone it.
type State struct {
	SearchTerm           string
	CategoryTag          string // empty = no filter
	SortKey              SortKey
	NutritionGradeFilter string // a..e or empty

	Page       int // current highest loaded page
	Items      []catalog.Product
	TotalCount int // server-reported, unfiltered by grade
	HasMore    bool
	Loading    bool
	Err        string // empty = no error

	Categories []string // fetched once at startup, survives resets
}

func initialState() State {
	return State{
		SortKey: SortRelevance,
		Page:    1,
		HasMore: true,
	}
}

// Action is a tagged state transition request.
type Action interface{ isAction() }

type setSearchTermAction struct{ term string }
type setCategoryTagAction struct{ tag string }
type setSortKeyAction struct{ key SortKey }
type setGradeFilterAction struct{ grade string }
type setLoadingAction struct{}
type setErrorAction struct{ msg string }
type clearErrorAction struct{}
type setCategoriesAction struct{ categories []string }
type resetFiltersAction struct{}

// setResultsAction replaces the item list after a fresh search resolved.
// rawCount is the pre-filter page length and feeds the has-more heuristic.
type setResultsAction struct {
	products []catalog.Product
	count    int
	rawCount int
	pageSize int
}

// appendResultsAction appends a load-more page.
type appendResultsAction struct {
	products []catalog.Product
	rawCount int
	pageSize int
}

func (setSearchTermAction) isAction()  {}
func (setCategoryTagAction) isAction() {}
func (setSortKeyAction) isAction()     {}
func (setGradeFilterAction) isAction() {}
func (setLoadingAction) isAction()     {}
func (setErrorAction) isAction()       {}
func (clearErrorAction) isAction()     {}
func (setCategoriesAction) isAction()  {}
func (resetFiltersAction) isAction()   {}
func (setResultsAction) isAction()     {}
func (appendResultsAction) isAction()  {}

// resetForFilterChange applies the invariant shared by all filter mutations:
// back to page 1, discard items, start loading.
func resetForFilterChange(s State) State {
	s.Page = 1
	s.Items = nil
	s.Loading = true
	s.Err = ""
	return s
}

// reduce is the pure transition function. It performs no I/O.
func reduce(s State, a Action) State {
	switch a := a.(type) {
	case setSearchTermAction:
		s.SearchTerm = a.term
		return resetForFilterChange(s)

	case setCategoryTagAction:
		s.CategoryTag = a.tag
		return resetForFilterChange(s)

	case setSortKeyAction:
		s.SortKey = a.key
		return resetForFilterChange(s)

	case setGradeFilterAction:
		s.NutritionGradeFilter = a.grade
		return resetForFilterChange(s)

	case setLoadingAction:
		s.Loading = true
		return s

	case setErrorAction:
		s.Err = a.msg
		s.Loading = false
		return s

	case clearErrorAction:
		s.Err = ""
		return s

	case setCategoriesAction:
		s.Categories = a.categories
		return s

	case resetFiltersAction:
		categories := s.Categories
		s = initialState()
		s.Categories = categories
		return s

	case setResultsAction:
		s.Items = a.products
		s.TotalCount = a.count
		s.HasMore = a.rawCount == a.pageSize
		s.Loading = false
		s.Err = ""
		return s

	case appendResultsAction:
		s.Items = append(s.Items, a.products...)
		s.Page++
		s.HasMore = a.rawCount == a.pageSize
		s.Loading = false
		s.Err = ""
		return s
	}
	return s
}
