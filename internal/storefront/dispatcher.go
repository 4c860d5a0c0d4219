// Package storefront turns user actions on the storefront page into state
// changes that a renderer (the HTTP API or the CLI) applies.
package storefront

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/money"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/session"
)

type Action string

const (
	ActionPageLoad           Action = "page_load"
	ActionAddToCart          Action = "add_to_cart"
	ActionOpenCart           Action = "open_cart"
	ActionRemoveFromCart     Action = "remove_from_cart"
	ActionCloseModal         Action = "close_modal"
	ActionDetectLocation     Action = "detect_location"
	ActionSelectDeliveryMode Action = "select_delivery_mode"
	ActionOpenProduct        Action = "open_product"
	ActionAddCustomized      Action = "add_customized"
	ActionSelectCategory     Action = "select_category"
	ActionNavigate           Action = "navigate"
	ActionScroll             Action = "scroll"
	ActionCheckout           Action = "checkout"
)

const DefaultCartID = "default"

var (
	ErrUnknownAction  = errors.New("unknown action")
	ErrEmptyCart      = cart.ErrEmptyCart
	ErrInvalidPayload = errors.New("invalid action payload")
)

// Payload carries the arguments of an action. Each action reads only the
// fields it needs.
type Payload struct {
	Name   string       `json:"name,omitempty"`
	Price  money.Amount `json:"price,omitempty"`
	ItemID string       `json:"itemId,omitempty"`
	Index  *int         `json:"index,omitempty"`
	Mode   string       `json:"mode,omitempty"`
	Label  string       `json:"label,omitempty"`
	Item   string       `json:"item,omitempty"`
	Offset int          `json:"offset,omitempty"`
}

type Dispatcher struct {
	cart      *cart.Store
	visits    *session.Visits
	locations *session.Locations
	menu      *catalog.Menu
	publisher events.CartEventsPublisher
	cartID    string
	logger    *zap.SugaredLogger

	mu sync.Mutex
	ui UIState
}

type Option func(*Dispatcher)

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithCartID sets the partition key used for checkout events.
func WithCartID(id string) Option {
	return func(d *Dispatcher) {
		if id != "" {
			d.cartID = id
		}
	}
}

func NewDispatcher(
	carts *cart.Store,
	visits *session.Visits,
	locations *session.Locations,
	menu *catalog.Menu,
	publisher events.CartEventsPublisher,
	opts ...Option,
) *Dispatcher {
	d := &Dispatcher{
		cart:      carts,
		visits:    visits,
		locations: locations,
		menu:      menu,
		publisher: publisher,
		cartID:    DefaultCartID,
		logger:    zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.publisher == nil {
		d.publisher = events.NopPublisher{Logger: d.logger}
	}
	return d
}

// State returns a snapshot of the UI state.
func (d *Dispatcher) State() UIState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ui
}

func (d *Dispatcher) HandleUserAction(ctx context.Context, action Action, p Payload) (StateChange, error) {
	var (
		change StateChange
		err    error
	)

	switch action {
	case ActionPageLoad:
		change = d.pageLoad(ctx)
	case ActionAddToCart:
		change, err = d.addToCart(ctx, p)
	case ActionOpenCart:
		change = d.openCart()
	case ActionRemoveFromCart:
		change, err = d.removeFromCart(ctx, p)
	case ActionCloseModal:
		change = StateChange{CloseModals: true}
	case ActionDetectLocation:
		change, err = d.detectLocation(ctx)
	case ActionSelectDeliveryMode:
		change, err = d.selectDeliveryMode(p)
	case ActionOpenProduct:
		change, err = d.openProduct(p)
	case ActionAddCustomized:
		change, err = d.addCustomized(p)
	case ActionSelectCategory:
		change, err = d.selectCategory(p)
	case ActionNavigate:
		change, err = d.navigate(p)
	case ActionScroll:
		change = d.scroll(p)
	case ActionCheckout:
		change, err = d.checkout(ctx)
	default:
		return StateChange{}, fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
	if err != nil {
		return StateChange{}, err
	}

	change.Action = action
	change.Badge = d.cart.Badge()
	return change, nil
}

func (d *Dispatcher) pageLoad(ctx context.Context) StateChange {
	visits, err := d.visits.Increment(ctx)
	if err != nil {
		d.logger.Warnf("page load: %v", err)
	}
	d.logger.Debugf("visit count: %d", visits)

	change := StateChange{Visits: visits}
	if loc, ok := d.locations.Saved(ctx); ok {
		change.Location = loc
		d.mu.Lock()
		d.ui.Location = loc
		d.mu.Unlock()
	}
	if visits > 1 {
		change.Notification = &Notification{
			Message: fmt.Sprintf("🍕 Welcome back! This is visit #%d", visits),
			Delay:   Delay(WelcomeBackDelay),
			TTL:     Delay(NotificationTTL),
		}
	}
	return change
}

func (d *Dispatcher) addToCart(ctx context.Context, p Payload) (StateChange, error) {
	price := p.Price
	if price == 0 && d.menu != nil {
		if product, err := d.menu.Lookup(p.Name); err == nil {
			price = product.Price
		}
	}

	item, err := d.cart.Add(ctx, p.Name, price)
	if err != nil {
		return StateChange{}, err
	}
	d.logger.Debugf("added %s (%s) to cart", item.Name, item.Price)

	return StateChange{
		Notification: notify(item.Name + " added to cart!"),
		Button: &ButtonFeedback{
			Target:      item.Name,
			Label:       AddedButtonLabel,
			RevertLabel: AddButtonLabel,
			RevertAfter: Delay(ButtonRevertDelay),
		},
	}, nil
}

func (d *Dispatcher) openCart() StateChange {
	view := d.cartView()
	d.logger.Debugf("cart opened with %d items", len(view.Lines))
	return StateChange{Modal: &Modal{Kind: ModalCart, Cart: &view}}
}

func (d *Dispatcher) cartView() CartView {
	items := d.cart.Items()
	if len(items) == 0 {
		return CartView{
			Empty: true,
			Title: "Your cart is empty",
			Hint:  "Add some delicious pizzas to get started!",
		}
	}

	view := CartView{
		Title:         fmt.Sprintf("Your Cart (%d items)", len(items)),
		Lines:         make([]CartLine, 0, len(items)),
		CheckoutLabel: CheckoutButtonLabel,
	}
	prices := make([]money.Amount, 0, len(items))
	for i, it := range items {
		view.Lines = append(view.Lines, CartLine{ID: it.ID, Index: i, Name: it.Name, Price: it.Price.String()})
		prices = append(prices, it.Price)
	}
	view.Total = money.Sum(prices...).String()
	return view
}

func (d *Dispatcher) removeFromCart(ctx context.Context, p Payload) (StateChange, error) {
	var err error
	switch {
	case p.ItemID != "":
		_, err = d.cart.Remove(ctx, p.ItemID)
	case p.Index != nil:
		_, err = d.cart.RemoveAt(ctx, *p.Index)
	default:
		return StateChange{}, fmt.Errorf("%w: itemId or index is required", ErrInvalidPayload)
	}
	if err != nil {
		return StateChange{}, err
	}

	change := StateChange{
		CloseModals:  true,
		Notification: notify("Item removed from cart"),
	}
	if d.cart.Count() > 0 {
		change.ReopenCartAfter = Delay(CartReopenDelay)
	}
	return change, nil
}

func (d *Dispatcher) detectLocation(ctx context.Context) (StateChange, error) {
	loc, err := d.locations.Detect(ctx)
	if err != nil {
		return StateChange{}, fmt.Errorf("detect location: %w", err)
	}

	d.mu.Lock()
	d.ui.Location = loc
	d.mu.Unlock()

	return StateChange{
		Location: loc,
		Button:   &ButtonFeedback{Target: "detect-location", Label: LocationSetLabel},
		Modal: &Modal{
			Kind:     ModalLocation,
			Location: &LocationView{Location: loc, EstimatedDelivery: session.EstimatedDelivery},
		},
	}, nil
}

func (d *Dispatcher) selectDeliveryMode(p Payload) (StateChange, error) {
	mode := strings.TrimSpace(p.Mode)
	if mode == "" {
		return StateChange{}, fmt.Errorf("%w: mode is required", ErrInvalidPayload)
	}

	d.mu.Lock()
	d.ui.ActiveTab = mode
	d.mu.Unlock()

	return StateChange{
		ActiveTab:    mode,
		Notification: notify(deliveryModeEmoji(mode) + " " + mode + " Mode Selected"),
	}, nil
}

func deliveryModeEmoji(mode string) string {
	switch mode {
	case "Delivery":
		return "🛵"
	case "Takeaway":
		return "🏪"
	default:
		return "🍽️"
	}
}

func (d *Dispatcher) openProduct(p Payload) (StateChange, error) {
	if d.menu == nil {
		return StateChange{}, fmt.Errorf("%w: %s", catalog.ErrProductNotFound, p.Name)
	}
	product, err := d.menu.Lookup(p.Name)
	if err != nil {
		return StateChange{}, err
	}

	view := &ProductView{
		Name:   product.Name,
		Price:  product.Price.String(),
		Image:  product.Image,
		Sizes:  make([]ChoiceView, 0, len(d.menu.Sizes)),
		Crusts: make([]ChoiceView, 0, len(d.menu.Crusts)),
	}
	for i, size := range d.menu.Sizes {
		label := size.Label + " - " + size.Upcharge.Upcharge()
		if size.Upcharge == 0 {
			label = size.Label + " - " + product.Price.String()
		}
		view.Sizes = append(view.Sizes, ChoiceView{ID: size.ID, Label: label, Checked: i == 0})
	}
	for i, crust := range d.menu.Crusts {
		label := crust.Label
		if crust.Upcharge > 0 {
			label += " - " + crust.Upcharge.Upcharge()
		}
		view.Crusts = append(view.Crusts, ChoiceView{ID: crust.ID, Label: label, Checked: i == 0})
	}

	return StateChange{Modal: &Modal{Kind: ModalCustomization, Product: view}}, nil
}

// addCustomized only confirms; the cart is left untouched.
func (d *Dispatcher) addCustomized(p Payload) (StateChange, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return StateChange{}, fmt.Errorf("%w: name is required", ErrInvalidPayload)
	}
	return StateChange{
		CloseModals:  true,
		Notification: notify(name + " (Customized) added to cart!"),
	}, nil
}

func (d *Dispatcher) selectCategory(p Payload) (StateChange, error) {
	label := strings.TrimSpace(p.Label)
	if label == "" {
		return StateChange{}, fmt.Errorf("%w: label is required", ErrInvalidPayload)
	}

	d.mu.Lock()
	d.ui.ActiveCategory = label
	d.mu.Unlock()

	return StateChange{
		ActiveCategory: label,
		Products:       d.categoryProducts(label),
		Notification:   notify("🔍 Showing: " + label),
		ScrollTarget:   BestsellersSection,
	}, nil
}

// categoryProducts lists the menu entries for a category tile. Tiles with no
// matching menu category ("Offers", "Combos") show the bestsellers.
func (d *Dispatcher) categoryProducts(label string) []catalog.Product {
	if d.menu == nil {
		return nil
	}
	if products := d.menu.ByCategory(label); len(products) > 0 {
		return products
	}
	return d.menu.Bestsellers()
}

func (d *Dispatcher) navigate(p Payload) (StateChange, error) {
	item := strings.TrimSpace(p.Item)
	if item == "" {
		return StateChange{}, fmt.Errorf("%w: item is required", ErrInvalidPayload)
	}

	d.mu.Lock()
	d.ui.ActiveNav = item
	d.mu.Unlock()

	change := StateChange{ActiveNav: item}
	if item == "Offers" {
		var offers []catalog.Offer
		if d.menu != nil {
			offers = d.menu.Offers
		}
		change.Modal = &Modal{Kind: ModalOffers, Offers: offers}
	}
	return change, nil
}

func (d *Dispatcher) scroll(p Payload) StateChange {
	show := p.Offset > ScrollTopThreshold

	d.mu.Lock()
	d.ui.ShowScrollTop = show
	d.mu.Unlock()

	return StateChange{ShowScrollTop: &show}
}

// checkout publishes the cart and clears it as one step, so a failed publish
// leaves the cart intact for a retry and a line added meanwhile is kept.
func (d *Dispatcher) checkout(ctx context.Context) (StateChange, error) {
	var (
		count int
		sum   money.Amount
	)
	err := d.cart.Checkout(ctx, func(items []cart.Item, total money.Amount) error {
		count, sum = len(items), total
		snap := events.CheckoutSnapshot{CartID: d.cartID, Items: items, Total: total}
		return d.publisher.PublishCartCheckedOut(ctx, snap, events.MetadataFromContext(ctx))
	})
	if err != nil {
		if errors.Is(err, ErrEmptyCart) {
			return StateChange{}, err
		}
		return StateChange{}, fmt.Errorf("checkout: %w", err)
	}
	d.logger.Infof("checked out cart=%s items=%d total=%s", d.cartID, count, sum)

	return StateChange{
		CloseModals:  true,
		Notification: notify(fmt.Sprintf("🎉 Order placed! Total %s", sum)),
	}, nil
}
