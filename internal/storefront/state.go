package storefront

import (
	"strconv"
	"time"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/catalog"
)

// Cosmetic timers. The renderer applies them; nothing here waits on them.
const (
	NotificationTTL     = 3 * time.Second
	WelcomeBackDelay    = 1 * time.Second
	ButtonRevertDelay   = 1500 * time.Millisecond
	CartReopenDelay     = 300 * time.Millisecond
	ScrollTopThreshold  = 300
	BestsellersSection  = "bestsellers"
	AddButtonLabel      = "Add +"
	AddedButtonLabel    = "Added ✓"
	LocationSetLabel    = "Location Set ✓"
	CheckoutButtonLabel = "Proceed to Checkout"
)

// Delay is a timer duration that renders to JSON as whole milliseconds.
type Delay time.Duration

func (d Delay) Duration() time.Duration { return time.Duration(d) }

func (d Delay) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(time.Duration(d).Milliseconds(), 10)), nil
}

type ModalKind string

const (
	ModalCart          ModalKind = "cart"
	ModalLocation      ModalKind = "location"
	ModalCustomization ModalKind = "customization"
	ModalOffers        ModalKind = "offers"
)

type Notification struct {
	Message string `json:"message"`
	Delay   Delay  `json:"delayMs,omitempty"`
	TTL     Delay  `json:"ttlMs"`
}

type ButtonFeedback struct {
	Target      string `json:"target"`
	Label       string `json:"label"`
	RevertLabel string `json:"revertLabel,omitempty"`
	RevertAfter Delay  `json:"revertAfterMs,omitempty"`
}

type CartLine struct {
	ID    string `json:"id"`
	Index int    `json:"index"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

type CartView struct {
	Empty         bool       `json:"empty"`
	Title         string     `json:"title"`
	Hint          string     `json:"hint,omitempty"`
	Lines         []CartLine `json:"lines,omitempty"`
	Total         string     `json:"total,omitempty"`
	CheckoutLabel string     `json:"checkoutLabel,omitempty"`
}

type LocationView struct {
	Location          string `json:"location"`
	EstimatedDelivery string `json:"estimatedDelivery"`
}

type ChoiceView struct {
	ID      string `json:"id"`
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
}

type ProductView struct {
	Name   string       `json:"name"`
	Price  string       `json:"price"`
	Image  string       `json:"image"`
	Sizes  []ChoiceView `json:"sizes"`
	Crusts []ChoiceView `json:"crusts"`
}

type Modal struct {
	Kind     ModalKind       `json:"kind"`
	Cart     *CartView       `json:"cart,omitempty"`
	Location *LocationView   `json:"location,omitempty"`
	Product  *ProductView    `json:"product,omitempty"`
	Offers   []catalog.Offer `json:"offers,omitempty"`
}

// StateChange is everything a renderer needs to apply after one action.
// Zero-valued fields mean "leave as is".
type StateChange struct {
	Action          Action            `json:"action"`
	Badge           cart.Badge        `json:"badge"`
	Visits          int               `json:"visits,omitempty"`
	Location        string            `json:"location,omitempty"`
	Notification    *Notification     `json:"notification,omitempty"`
	Button          *ButtonFeedback   `json:"button,omitempty"`
	Modal           *Modal            `json:"modal,omitempty"`
	CloseModals     bool              `json:"closeModals,omitempty"`
	ReopenCartAfter Delay             `json:"reopenCartAfterMs,omitempty"`
	ActiveTab       string            `json:"activeTab,omitempty"`
	ActiveCategory  string            `json:"activeCategory,omitempty"`
	Products        []catalog.Product `json:"products,omitempty"`
	ActiveNav       string            `json:"activeNav,omitempty"`
	ScrollTarget    string            `json:"scrollTarget,omitempty"`
	ShowScrollTop   *bool             `json:"showScrollTop,omitempty"`
}

// UIState is the page state that outlives a single action.
type UIState struct {
	ActiveTab      string `json:"activeTab"`
	ActiveCategory string `json:"activeCategory"`
	ActiveNav      string `json:"activeNav"`
	Location       string `json:"location"`
	ShowScrollTop  bool   `json:"showScrollTop"`
}

func notify(message string) *Notification {
	return &Notification{Message: message, TTL: Delay(NotificationTTL)}
}
