package scenario

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/v0xg/webqa/internal/executor"
	"github.com/v0xg/webqa/internal/page"
)

// ExpectedInventory is the number of products the demo store lists
const ExpectedInventory = 6

// Store is the part of page.StorePage the store checks use
type Store interface {
	Login(identity, secret string)
	ListItems() []page.Element
	AddFirstItem()
	CartCount() (int, error)
}

// Credentials log a user into the store
type Credentials struct {
	Username string
	Password string
}

// InventoryCount checks that a logged-in store lists want items
func InventoryCount(log logrus.FieldLogger, s Store, want int) error {
	log.Info("Retrieving inventory items")
	items := s.ListItems()
	if len(items) != want {
		return failf("expected %d items, but found %d", want, len(items))
	}
	return nil
}

// AddToCart adds the first product and checks the cart badge reads 1
func AddToCart(log logrus.FieldLogger, s Store) error {
	log.Info("Adding first item to the cart")
	s.AddFirstItem()

	count, err := s.CartCount()
	if err != nil {
		return fmt.Errorf("read cart count: %w", err)
	}
	log.Infof("Cart count after adding item: %d", count)
	if count != 1 {
		return failf("expected cart count to be 1, but got %d", count)
	}
	return nil
}

// StoreSession opens a fresh store page for one check. The returned function
// releases it.
type StoreSession func(ctx context.Context) (Store, func(), error)

// StoreSuite runs the store checks, each on its own logged-in session
type StoreSuite struct {
	Open        StoreSession
	Credentials Credentials
	Logger      logrus.FieldLogger
	// OnFailure sees the session of a failed check before it is released
	OnFailure func(name string, st Store, err error)
}

// Steps returns the store checks for the executor
func (s *StoreSuite) Steps() []executor.Step {
	return []executor.Step{
		{Name: "test_inventory_items_count", Run: s.withStore("test_inventory_items_count", func(st Store) error {
			return InventoryCount(s.log(), st, ExpectedInventory)
		})},
		{Name: "test_add_item_to_cart", Run: s.withStore("test_add_item_to_cart", func(st Store) error {
			return AddToCart(s.log(), st)
		})},
	}
}

func (s *StoreSuite) withStore(name string, check func(Store) error) func(context.Context) error {
	return func(ctx context.Context) error {
		st, release, err := s.Open(ctx)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer release()

		s.log().Info("Logging into the store")
		st.Login(s.Credentials.Username, s.Credentials.Password)
		err = check(st)
		if err != nil && s.OnFailure != nil {
			s.OnFailure(name, st, err)
		}
		return err
	}
}

func (s *StoreSuite) log() logrus.FieldLogger {
	if s.Logger == nil {
		return logrus.StandardLogger()
	}
	return s.Logger
}
