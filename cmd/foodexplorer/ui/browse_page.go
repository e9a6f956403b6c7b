package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"foodexplorer/internal/catalog"
	"foodexplorer/internal/query"
)

// sortKeys is the cycling order for the sort hotkey.
var sortKeys = []query.SortKey{
	query.SortRelevance,
	query.SortNameAsc,
	query.SortNameDesc,
	query.SortGradeAsc,
	query.SortGradeDesc,
}

// grades is the cycling order for the grade-filter hotkey; "" = no filter.
var grades = []string{"", "a", "b", "c", "d", "e"}

// BrowsePageModel is the search/results page.
type BrowsePageModel struct {
	width  int
	height int

	input   textinput.Model
	spinner spinner.Model

	state    query.State
	cursor   int
	cartSize int

	styles Styles
}

// NewBrowsePageModel creates the browse page.
func NewBrowsePageModel() BrowsePageModel {
	ti := textinput.New()
	ti.Placeholder = "Search products..."
	ti.CharLimit = 120
	ti.Width = 40

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return BrowsePageModel{
		input:   ti,
		spinner: sp,
		styles:  DefaultStyles(),
	}
}

// SetSize updates the page dimensions.
func (m *BrowsePageModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetQueryState installs a fresh query snapshot.
func (m *BrowsePageModel) SetQueryState(s query.State) {
	m.state = s
	if m.cursor >= len(s.Items) {
		m.cursor = 0
	}
}

// SetCartSize updates the cart badge.
func (m *BrowsePageModel) SetCartSize(n int) {
	m.cartSize = n
}

// Selected returns the index of the highlighted product, or -1.
func (m BrowsePageModel) Selected() int {
	if len(m.state.Items) == 0 {
		return -1
	}
	return m.cursor
}

// SelectedProduct returns the highlighted product from the rendered
// snapshot. The machine's live list may already differ, so callers must
// act on this copy, not re-index by position.
func (m BrowsePageModel) SelectedProduct() (catalog.Product, bool) {
	if m.cursor < 0 || m.cursor >= len(m.state.Items) {
		return catalog.Product{}, false
	}
	return m.state.Items[m.cursor], true
}

// Searching reports whether the search input has focus.
func (m BrowsePageModel) Searching() bool {
	return m.input.Focused()
}

// browseEvent is emitted by the page for the app to translate into machine
// calls. The page itself never touches the machine.
type browseEvent int

const (
	eventNone browseEvent = iota
	eventSubmitSearch
	eventCycleSort
	eventCycleGrade
	eventCycleCategory
	eventResetFilters
	eventLoadMore
	eventDismissError
	eventAddToCart
	eventOpenDetail
	eventOpenCart
)

// Update handles messages and reports the user intent, if any.
func (m BrowsePageModel) Update(msg tea.Msg) (BrowsePageModel, tea.Cmd, browseEvent) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case spinner.TickMsg:
		if m.state.Loading {
			m.spinner, cmd = m.spinner.Update(msg)
		}
		return m, cmd, eventNone

	case tea.KeyMsg:
		if m.input.Focused() {
			switch msg.String() {
			case "enter":
				m.input.Blur()
				return m, nil, eventSubmitSearch
			case "esc":
				m.input.Blur()
				return m, nil, eventNone
			default:
				m.input, cmd = m.input.Update(msg)
				return m, cmd, eventNone
			}
		}

		switch msg.String() {
		case "/":
			m.input.Focus()
			return m, textinput.Blink, eventNone
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.state.Items)-1 {
				m.cursor++
			}
		case "enter":
			if m.Selected() >= 0 {
				return m, nil, eventOpenDetail
			}
		case "a", " ":
			if m.Selected() >= 0 {
				return m, nil, eventAddToCart
			}
		case "s":
			return m, nil, eventCycleSort
		case "g":
			return m, nil, eventCycleGrade
		case "f":
			return m, nil, eventCycleCategory
		case "r":
			return m, nil, eventResetFilters
		case "m":
			return m, nil, eventLoadMore
		case "x":
			return m, nil, eventDismissError
		case "c":
			return m, nil, eventOpenCart
		}
	}

	return m, nil, eventNone
}

// SearchTerm returns the current input text.
func (m BrowsePageModel) SearchTerm() string {
	return m.input.Value()
}

// SpinnerTick starts the spinner ticking.
func (m BrowsePageModel) SpinnerTick() tea.Cmd {
	return m.spinner.Tick
}

// NextSortKey returns the sort key after the current one.
func (m BrowsePageModel) NextSortKey() query.SortKey {
	for i, k := range sortKeys {
		if k == m.state.SortKey {
			return sortKeys[(i+1)%len(sortKeys)]
		}
	}
	return query.SortRelevance
}

// NextGrade returns the grade filter after the current one.
func (m BrowsePageModel) NextGrade() string {
	for i, g := range grades {
		if g == m.state.NutritionGradeFilter {
			return grades[(i+1)%len(grades)]
		}
	}
	return ""
}

// NextCategory returns the category tag after the current one, cycling
// through the loaded category list with "" (no filter) between wraps.
func (m BrowsePageModel) NextCategory() string {
	if len(m.state.Categories) == 0 {
		return ""
	}
	if m.state.CategoryTag == "" {
		return m.state.Categories[0]
	}
	for i, c := range m.state.Categories {
		if c == m.state.CategoryTag {
			if i+1 < len(m.state.Categories) {
				return m.state.Categories[i+1]
			}
			return ""
		}
	}
	return ""
}

// View renders the page.
func (m BrowsePageModel) View() string {
	var b strings.Builder

	title := m.styles.Title.Render("Food Explorer")
	badge := m.styles.Badge.Render(fmt.Sprintf("cart %d", m.cartSize))
	b.WriteString(title + "  " + badge + "\n\n")

	b.WriteString("Search: " + m.input.View() + "\n")
	b.WriteString(m.styles.Header.Render(m.filterLine()) + "\n\n")

	if m.state.Err != "" {
		b.WriteString(m.styles.Error.Render("Error: "+m.state.Err) + m.styles.Muted.Render("  (x to dismiss)") + "\n\n")
	}

	switch {
	case m.state.Loading && len(m.state.Items) == 0:
		b.WriteString(m.styles.Spinner.Render(m.spinner.View()) + " Loading products...\n")
	case len(m.state.Items) == 0 && m.state.Err == "":
		b.WriteString(m.styles.Muted.Render("No products found.") + "\n")
	default:
		m.renderItems(&b)
	}

	b.WriteString("\n" + m.styles.Footer.Render(m.footerLine()))
	return b.String()
}

func (m BrowsePageModel) renderItems(b *strings.Builder) {
	visible := m.height - 12
	if visible < 5 {
		visible = 5
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}

	for i := start; i < len(m.state.Items) && i < start+visible; i++ {
		p := m.state.Items[i]
		name := p.Name
		if name == "" {
			name = "(unnamed product)"
		}
		line := fmt.Sprintf("%s  %-40.40s  %s", m.styles.GradeBadge(strings.ToLower(p.NutritionGrade)), name, m.styles.Muted.Render(p.PrimaryBrand()))
		if i == m.cursor {
			line = m.styles.Selected.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}

	count := fmt.Sprintf("%d of %d shown", len(m.state.Items), m.state.TotalCount)
	if m.state.Loading {
		count += "  " + m.styles.Spinner.Render(m.spinner.View()) + " loading"
	} else if m.state.HasMore {
		count += "  (m to load more)"
	}
	b.WriteString(m.styles.Muted.Render(count) + "\n")
}

func (m BrowsePageModel) filterLine() string {
	parts := []string{"sort: " + string(m.state.SortKey)}
	if m.state.CategoryTag != "" {
		parts = append(parts, "category: "+m.state.CategoryTag)
	}
	if m.state.NutritionGradeFilter != "" {
		parts = append(parts, "grade: "+m.state.NutritionGradeFilter)
	}
	return strings.Join(parts, "  |  ")
}

func (m BrowsePageModel) footerLine() string {
	return "/ search · ↑↓ move · enter detail · a add · c cart · s sort · f category · g grade · m more · r reset · q quit"
}
