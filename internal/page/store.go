package page

import (
	"fmt"
	"strconv"
	"strings"
)

// Symbolic element names used by StorePage
const (
	UsernameInput   = "username_input"
	PasswordInput   = "password_input"
	LoginButton     = "login_button"
	InventoryItem   = "inventory_item"
	InventoryName   = "inventory_item_name"
	AddToCartButton = "add_to_cart_button"
	CartBadge       = "cart_badge"
)

// storeLocatorNames lists every name StorePage looks up
var storeLocatorNames = []string{
	UsernameInput, PasswordInput, LoginButton,
	InventoryItem, InventoryName, AddToCartButton, CartBadge,
}

// DefaultStoreLocators returns the Sauce Demo locators. A fresh map is returned on
// every call so callers may modify it.
func DefaultStoreLocators() LocatorSet {
	return LocatorSet{
		UsernameInput:   ID("user-name"),
		PasswordInput:   ID("password"),
		LoginButton:     ID("login-button"),
		InventoryItem:   Class("inventory_item"),
		InventoryName:   Class("inventory_item_name"),
		AddToCartButton: CSS(".inventory_item button"),
		CartBadge:       Class("shopping_cart_badge"),
	}
}

// StorePage is the page object of the demo web store
type StorePage struct {
	*Base
	locators LocatorSet
}

// NewStorePage builds a store page for url. Entries in overrides replace the
// matching defaults; every other default is kept.
func NewStorePage(driver Driver, url string, overrides LocatorSet, opts Options) (*StorePage, error) {
	locators := Merge(DefaultStoreLocators(), overrides)
	if err := locators.Validate(storeLocatorNames...); err != nil {
		return nil, err
	}
	return &StorePage{
		Base:     NewBase(driver, url, opts),
		locators: locators,
	}, nil
}

// Locators returns a copy of the merged locator set
func (p *StorePage) Locators() LocatorSet {
	return Merge(p.locators, nil)
}

// Login opens the store and submits the credentials. It does not check the outcome.
func (p *StorePage) Login(identity, secret string) {
	p.log.Info("Logging in...")
	p.Open()
	p.EnterText(p.locators.MustGet(UsernameInput), identity)
	p.EnterText(p.locators.MustGet(PasswordInput), secret)
	p.Click(p.locators.MustGet(LoginButton))
}

// ListItems returns the inventory items currently on the page
func (p *StorePage) ListItems() []Element {
	p.log.Debug("Fetching inventory items...")
	return p.FindAll(p.locators.MustGet(InventoryItem), 0)
}

// InventoryNames returns the item titles in page order
func (p *StorePage) InventoryNames() []string {
	els := p.FindAll(p.locators.MustGet(InventoryName), 0)
	names := make([]string, 0, len(els))
	for _, el := range els {
		text, err := el.Text()
		if err != nil {
			p.log.WithError(err).Debug("Skipping unreadable inventory name")
			continue
		}
		names = append(names, strings.TrimSpace(text))
	}
	return names
}

// AddFirstItem clicks the first add-to-cart button on the page.
// The default locator matches every item's button and the click lands on the
// first match, which is enough for a page with a fixed layout.
func (p *StorePage) AddFirstItem() {
	p.log.Debug("Adding first item to cart...")
	p.Click(p.locators.MustGet(AddToCartButton))
}

// CartCount reads the cart badge. A missing badge means an empty cart and yields 0.
// Badge text that is not a number is returned as an error.
func (p *StorePage) CartCount() (int, error) {
	badge, ok := p.FindOne(p.locators.MustGet(CartBadge), 0)
	if !ok {
		return 0, nil
	}
	text, err := badge.Text()
	if err != nil {
		return 0, fmt.Errorf("reading cart badge: %w", err)
	}
	count, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("cart badge %q is not a number: %w", text, err)
	}
	return count, nil
}
