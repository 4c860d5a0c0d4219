// Package catalog describes what the storefront sells: products grouped
// into categories, the size and crust options shown when customising a
// pizza, and the current offers.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/money"
)

//go:embed menu.yaml
var defaultMenu []byte

var ErrProductNotFound = errors.New("product not found")

type Product struct {
	Name       string       `yaml:"name" json:"name"`
	Price      money.Amount `yaml:"price" json:"price"`
	Category   string       `yaml:"category" json:"category"`
	Image      string       `yaml:"image" json:"image"`
	Veg        bool         `yaml:"veg" json:"veg"`
	Bestseller bool         `yaml:"bestseller" json:"bestseller"`
}

// Option is a size or crust choice. Upcharges are display only; they are
// never added to the price stored in the cart.
type Option struct {
	ID       string       `yaml:"id" json:"id"`
	Label    string       `yaml:"label" json:"label"`
	Upcharge money.Amount `yaml:"upcharge" json:"upcharge"`
}

type Offer struct {
	Badge       string `yaml:"badge" json:"badge"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Code        string `yaml:"code" json:"code"`
}

type Menu struct {
	Categories []string  `yaml:"categories" json:"categories"`
	Products   []Product `yaml:"products" json:"products"`
	Sizes      []Option  `yaml:"sizes" json:"sizes"`
	Crusts     []Option  `yaml:"crusts" json:"crusts"`
	Offers     []Offer   `yaml:"offers" json:"offers"`
}

// Default returns the menu compiled into the binary.
func Default() (*Menu, error) {
	return Parse(defaultMenu)
}

func Parse(data []byte) (*Menu, error) {
	var m Menu
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse menu: %w", err)
	}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func (m *Menu) validate() error {
	seen := make(map[string]struct{}, len(m.Products))
	for i, p := range m.Products {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("menu: product %d has no name", i)
		}
		if p.Price < 0 {
			return fmt.Errorf("menu: product %s has negative price", p.Name)
		}
		key := strings.ToLower(p.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("menu: duplicate product %s", p.Name)
		}
		seen[key] = struct{}{}
	}
	return nil
}

// Lookup finds a product by name, ignoring case.
func (m *Menu) Lookup(name string) (Product, error) {
	for _, p := range m.Products {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return p, nil
		}
	}
	return Product{}, fmt.Errorf("%w: %s", ErrProductNotFound, name)
}

func (m *Menu) ByCategory(label string) []Product {
	var out []Product
	for _, p := range m.Products {
		if strings.EqualFold(p.Category, label) {
			out = append(out, p)
		}
	}
	return out
}

func (m *Menu) Bestsellers() []Product {
	var out []Product
	for _, p := range m.Products {
		if p.Bestseller {
			out = append(out, p)
		}
	}
	return out
}
