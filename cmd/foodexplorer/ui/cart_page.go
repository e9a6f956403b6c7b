package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"foodexplorer/internal/cart"
)

// cartEvent is the user intent reported by the cart page.
type cartEvent int

const (
	cartEventNone cartEvent = iota
	cartEventClose
	cartEventIncrement
	cartEventDecrement
	cartEventRemove
	cartEventClear
	cartEventCheckout
)

// CartPageModel renders the cart contents.
type CartPageModel struct {
	width  int
	height int

	snapshot   cart.Snapshot
	cursor     int
	checkedOut bool

	styles Styles
}

// NewCartPageModel creates the cart page.
func NewCartPageModel() CartPageModel {
	return CartPageModel{styles: DefaultStyles()}
}

// SetSize updates the page dimensions.
func (m *CartPageModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// SetSnapshot installs a fresh cart snapshot.
func (m *CartPageModel) SetSnapshot(s cart.Snapshot) {
	m.snapshot = s
	if m.cursor >= len(s.Items) {
		m.cursor = 0
	}
	if len(s.Items) > 0 {
		m.checkedOut = false
	}
}

// SelectedCode returns the code of the highlighted item, or "".
func (m CartPageModel) SelectedCode() string {
	if m.cursor >= len(m.snapshot.Items) {
		return ""
	}
	return m.snapshot.Items[m.cursor].Code
}

// SelectedQuantity returns the quantity of the highlighted item.
func (m CartPageModel) SelectedQuantity() int {
	if m.cursor >= len(m.snapshot.Items) {
		return 0
	}
	return m.snapshot.Items[m.cursor].Quantity
}

// MarkCheckedOut records that the checkout placeholder ran.
func (m *CartPageModel) MarkCheckedOut() {
	m.checkedOut = true
}

// Update handles messages and reports the user intent, if any.
func (m CartPageModel) Update(msg tea.Msg) (CartPageModel, cartEvent) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, cartEventNone
	}

	switch key.String() {
	case "esc", "c", "q":
		return m, cartEventClose
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.snapshot.Items)-1 {
			m.cursor++
		}
	case "+", "right":
		if m.SelectedCode() != "" {
			return m, cartEventIncrement
		}
	case "-", "left":
		if m.SelectedCode() != "" {
			return m, cartEventDecrement
		}
	case "d", "backspace":
		if m.SelectedCode() != "" {
			return m, cartEventRemove
		}
	case "C":
		return m, cartEventClear
	case "o":
		if len(m.snapshot.Items) > 0 {
			return m, cartEventCheckout
		}
	}
	return m, cartEventNone
}

// View renders the page.
func (m CartPageModel) View() string {
	var b strings.Builder

	total := 0
	for _, it := range m.snapshot.Items {
		total += it.Quantity
	}
	b.WriteString(m.styles.Title.Render("Shopping Cart") + "  " + m.styles.Badge.Render(fmt.Sprintf("%d items", total)) + "\n\n")

	if m.checkedOut {
		b.WriteString(m.styles.Success.Render("Order placed! (demo only, nothing was charged)") + "\n\n")
	}

	if len(m.snapshot.Items) == 0 {
		b.WriteString(m.styles.Muted.Render("Your cart is empty.") + "\n")
	}

	for i, it := range m.snapshot.Items {
		name := it.Name
		if name == "" {
			name = "(unnamed product)"
		}
		line := fmt.Sprintf("%s  %-36.36s  x%-3d  %s",
			m.styles.GradeBadge(strings.ToLower(it.NutritionGrade)), name, it.Quantity, m.styles.Muted.Render(it.Brand))
		if i == m.cursor {
			line = m.styles.Selected.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}

	b.WriteString("\n" + m.styles.Footer.Render("esc back · +/- quantity · d remove · C clear · o checkout"))
	return b.String()
}
