package ui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"foodexplorer/internal/cart"
	"foodexplorer/internal/catalog"
	"foodexplorer/internal/logging"
	"foodexplorer/internal/query"
)

// page identifies the active view.
type page int

const (
	pageBrowse page = iota
	pageCart
	pageDetail
)

// Messages pushed into the program from store subscriptions.
type (
	// QueryStateMsg carries a query state snapshot.
	QueryStateMsg query.State
	// CartStateMsg carries a cart snapshot.
	CartStateMsg cart.Snapshot

	productLoadedMsg   *catalog.Product
	productNotFoundMsg struct{}
	productErrMsg      string
)

// ProductGetter is the slice of the catalog client the detail view needs.
type ProductGetter interface {
	GetByCode(ctx context.Context, code string) (*catalog.Product, error)
}

// App is the root model. It owns page switching and translates page events
// into store commands; the stores push state back via Send.
type App struct {
	page     page
	browse   BrowsePageModel
	cartPage CartPageModel
	detail   DetailPageModel

	machine   *query.Machine
	cartStore *cart.Store
	getter    ProductGetter
}

// NewApp wires the root model to its stores.
func NewApp(machine *query.Machine, cartStore *cart.Store, getter ProductGetter) App {
	app := App{
		browse:    NewBrowsePageModel(),
		cartPage:  NewCartPageModel(),
		detail:    NewDetailPageModel(),
		machine:   machine,
		cartStore: cartStore,
		getter:    getter,
	}
	app.browse.SetQueryState(machine.State())
	snap := cartStore.State()
	app.cartPage.SetSnapshot(snap)
	app.browse.SetCartSize(cartStore.TotalItems())
	if snap.IsOpen {
		app.page = pageCart
	}
	return app
}

// Init starts the spinner.
func (a App) Init() tea.Cmd {
	return a.browse.SpinnerTick()
}

// Update routes messages.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.browse.SetSize(msg.Width, msg.Height)
		a.cartPage.SetSize(msg.Width, msg.Height)
		a.detail.SetSize(msg.Width, msg.Height)
		return a, nil

	case QueryStateMsg:
		a.browse.SetQueryState(query.State(msg))
		return a, nil

	case CartStateMsg:
		snap := cart.Snapshot(msg)
		a.cartPage.SetSnapshot(snap)
		total := 0
		for _, it := range snap.Items {
			total += it.Quantity
		}
		a.browse.SetCartSize(total)
		// The open/closed flag lives in the cart store; the app follows it.
		if snap.IsOpen && a.page == pageBrowse {
			a.page = pageCart
		}
		if !snap.IsOpen && a.page == pageCart {
			a.page = pageBrowse
		}
		return a, nil

	case productLoadedMsg:
		a.detail.SetProduct(msg)
		return a, nil
	case productNotFoundMsg:
		a.detail.SetNotFound()
		return a, nil
	case productErrMsg:
		a.detail.SetError(string(msg))
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if msg.String() == "q" && a.page == pageBrowse && !a.browse.Searching() {
			return a, tea.Quit
		}
	}

	switch a.page {
	case pageBrowse:
		return a.updateBrowse(msg)
	case pageCart:
		return a.updateCart(msg)
	case pageDetail:
		return a.updateDetail(msg)
	}
	return a, nil
}

func (a App) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var event browseEvent
	a.browse, cmd, event = a.browse.Update(msg)

	switch event {
	case eventSubmitSearch:
		a.machine.SetSearchTerm(a.browse.SearchTerm())
	case eventCycleSort:
		a.machine.SetSortKey(a.browse.NextSortKey())
	case eventCycleGrade:
		a.machine.SetNutritionGradeFilter(a.browse.NextGrade())
	case eventCycleCategory:
		a.machine.SetCategoryTag(a.browse.NextCategory())
	case eventResetFilters:
		a.machine.ResetFilters()
	case eventLoadMore:
		a.machine.LoadMore()
	case eventDismissError:
		a.machine.ClearError()
	case eventAddToCart:
		if p, ok := a.browse.SelectedProduct(); ok {
			a.cartStore.AddItem(p)
		}
	case eventOpenCart:
		a.cartStore.OpenCart()
	case eventOpenDetail:
		if p, ok := a.browse.SelectedProduct(); ok {
			a.page = pageDetail
			tick := a.detail.StartLoading()
			return a, tea.Batch(tick, loadProductCmd(a.getter, p.Code))
		}
	}
	return a, cmd
}

func (a App) updateCart(msg tea.Msg) (tea.Model, tea.Cmd) {
	var event cartEvent
	a.cartPage, event = a.cartPage.Update(msg)

	switch event {
	case cartEventClose:
		a.cartStore.CloseCart()
	case cartEventIncrement:
		a.cartStore.UpdateQuantity(a.cartPage.SelectedCode(), a.cartPage.SelectedQuantity()+1)
	case cartEventDecrement:
		a.cartStore.UpdateQuantity(a.cartPage.SelectedCode(), a.cartPage.SelectedQuantity()-1)
	case cartEventRemove:
		a.cartStore.RemoveItem(a.cartPage.SelectedCode())
	case cartEventClear:
		a.cartStore.ClearCart()
	case cartEventCheckout:
		// Placeholder: no payment flow exists. Acknowledge and empty the cart.
		logging.Cart("checkout placeholder invoked")
		a.cartPage.MarkCheckedOut()
		a.cartStore.ClearCart()
	}
	return a, nil
}

func (a App) updateDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "esc", "q":
			a.page = pageBrowse
			return a, nil
		case "a":
			if p := a.detail.Product(); p != nil {
				a.cartStore.AddItem(*p)
			}
			return a, nil
		}
	}
	var cmd tea.Cmd
	a.detail, cmd = a.detail.Update(msg)
	return a, cmd
}

// View renders the active page.
func (a App) View() string {
	switch a.page {
	case pageCart:
		return a.cartPage.View()
	case pageDetail:
		return a.detail.View()
	default:
		return a.browse.View()
	}
}

func loadProductCmd(getter ProductGetter, code string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		p, err := getter.GetByCode(ctx, code)
		if errors.Is(err, catalog.ErrNotFound) {
			return productNotFoundMsg{}
		}
		if err != nil {
			return productErrMsg(err.Error())
		}
		return productLoadedMsg(p)
	}
}

// Run starts the TUI, wiring store subscriptions into the program.
func Run(machine *query.Machine, cartStore *cart.Store, client *catalog.Client) error {
	app := NewApp(machine, cartStore, client)
	p := tea.NewProgram(app, tea.WithAltScreen())

	machine.Subscribe(func(s query.State) { p.Send(QueryStateMsg(s)) })
	cartStore.Subscribe(func(s cart.Snapshot) { p.Send(CartStateMsg(s)) })

	// Categories load once at startup, independent of query state.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		machine.SetCategories(client.ListCategories(ctx))
	}()

	machine.Refresh()

	_, err := p.Run()
	return err
}
