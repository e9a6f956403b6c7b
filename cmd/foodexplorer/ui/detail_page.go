package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"foodexplorer/internal/catalog"
)

// Nutriment keys rendered on the detail page, in display order.
var detailNutriments = []string{
	"energy-kcal_100g",
	"fat_100g",
	"saturated-fat_100g",
	"carbohydrates_100g",
	"sugars_100g",
	"proteins_100g",
	"salt_100g",
}

// DetailPageModel renders a single product lookup.
type DetailPageModel struct {
	width  int
	height int

	loading  bool
	notFound bool
	errMsg   string
	product  *catalog.Product

	spinner spinner.Model
	styles  Styles
}

// NewDetailPageModel creates the detail page.
func NewDetailPageModel() DetailPageModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return DetailPageModel{spinner: sp, styles: DefaultStyles()}
}

// SetSize updates the page dimensions.
func (m *DetailPageModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// StartLoading puts the page into the loading state.
func (m *DetailPageModel) StartLoading() tea.Cmd {
	m.loading = true
	m.notFound = false
	m.errMsg = ""
	m.product = nil
	return m.spinner.Tick
}

// SetProduct installs a resolved product.
func (m *DetailPageModel) SetProduct(p *catalog.Product) {
	m.loading = false
	m.product = p
}

// SetNotFound switches to the distinct not-found rendering.
func (m *DetailPageModel) SetNotFound() {
	m.loading = false
	m.notFound = true
}

// SetError shows a lookup failure.
func (m *DetailPageModel) SetError(msg string) {
	m.loading = false
	m.errMsg = msg
}

// Product returns the loaded product, or nil.
func (m DetailPageModel) Product() *catalog.Product {
	return m.product
}

// Update handles spinner ticks.
func (m DetailPageModel) Update(msg tea.Msg) (DetailPageModel, tea.Cmd) {
	if tick, ok := msg.(spinner.TickMsg); ok && m.loading {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(tick)
		return m, cmd
	}
	return m, nil
}

// View renders the page.
func (m DetailPageModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Product Detail") + "\n\n")

	switch {
	case m.loading:
		b.WriteString(m.styles.Spinner.Render(m.spinner.View()) + " Looking up product...\n")
	case m.notFound:
		b.WriteString(m.styles.Error.Render("Product not found.") + "\n")
		b.WriteString(m.styles.Muted.Render("The barcode has no match in the catalog.") + "\n")
	case m.errMsg != "":
		b.WriteString(m.styles.Error.Render("Lookup failed: "+m.errMsg) + "\n")
	case m.product != nil:
		m.renderProduct(&b)
	}

	b.WriteString("\n" + m.styles.Footer.Render("esc back to search · a add to cart"))
	return b.String()
}

func (m DetailPageModel) renderProduct(b *strings.Builder) {
	p := m.product

	name := p.Name
	if name == "" {
		name = "(unnamed product)"
	}
	b.WriteString(m.styles.Header.Render(name) + "\n")
	if p.Brands != "" {
		b.WriteString(m.styles.Muted.Render(p.Brands) + "\n")
	}
	b.WriteString(fmt.Sprintf("Barcode: %s   Grade: %s\n\n", p.Code, m.styles.GradeBadge(strings.ToLower(p.NutritionGrade))))

	if p.IngredientsText != "" {
		b.WriteString(m.styles.Header.Render("Ingredients") + "\n")
		b.WriteString(wrap(p.IngredientsText, 70) + "\n\n")
	}

	if len(p.Nutriments) > 0 {
		b.WriteString(m.styles.Header.Render("Nutrition per 100g") + "\n")
		shown := map[string]bool{}
		for _, key := range detailNutriments {
			if v, ok := p.Nutriments[key]; ok {
				b.WriteString(fmt.Sprintf("  %-24s %.1f\n", strings.TrimSuffix(key, "_100g"), v))
				shown[key] = true
			}
		}
		// Remaining numeric facts, alphabetically.
		var rest []string
		for key := range p.Nutriments {
			if !shown[key] && strings.HasSuffix(key, "_100g") {
				rest = append(rest, key)
			}
		}
		sort.Strings(rest)
		for _, key := range rest {
			b.WriteString(m.styles.Muted.Render(fmt.Sprintf("  %-24s %.1f", strings.TrimSuffix(key, "_100g"), p.Nutriments[key])) + "\n")
		}
	}
}

func wrap(s string, width int) string {
	words := strings.Fields(s)
	var b strings.Builder
	line := 0
	for _, w := range words {
		if line+len(w)+1 > width {
			b.WriteString("\n")
			line = 0
		} else if line > 0 {
			b.WriteString(" ")
			line++
		}
		b.WriteString(w)
		line += len(w)
	}
	return b.String()
}
