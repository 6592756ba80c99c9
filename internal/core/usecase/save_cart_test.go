package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"saved-cart-service/internal/core/domain"
)

// mockCartRepository - хранилище в памяти, честно реализующее контракт
// порта: Replace атомарен по customer_id.
type mockCartRepository struct {
	mu      sync.Mutex
	records []*domain.SavedCart
}

func newMockCartRepository() *mockCartRepository {
	return &mockCartRepository{}
}

func (m *mockCartRepository) Replace(ctx context.Context, shop, customerID string, productVariantIDs []string) (*domain.SavedCart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.records[:0]
	for _, r := range m.records {
		if r.CustomerID != customerID {
			kept = append(kept, r)
		}
	}
	m.records = kept

	cart := &domain.SavedCart{
		ID:                uuid.New(),
		Shop:              shop,
		CustomerID:        customerID,
		ProductVariantIDs: append([]string(nil), productVariantIDs...),
		CreatedAt:         time.Now(),
	}
	m.records = append(m.records, cart)
	return cart, nil
}

func (m *mockCartRepository) FindByCustomer(ctx context.Context, customerID string) (*domain.SavedCart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].CustomerID == customerID {
			return m.records[i], nil
		}
	}
	return nil, domain.ErrCartNotFound
}

func (m *mockCartRepository) PurgeByShop(ctx context.Context, shop string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var purged int64
	kept := m.records[:0]
	for _, r := range m.records {
		if r.Shop == shop {
			purged++
		} else {
			kept = append(kept, r)
		}
	}
	m.records = kept
	return purged, nil
}

func (m *mockCartRepository) DeleteByCustomer(ctx context.Context, customerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept := m.records[:0]
	for _, r := range m.records {
		if r.CustomerID != customerID {
			kept = append(kept, r)
		}
	}
	m.records = kept
	return nil
}

func (m *mockCartRepository) recordsForCustomer(customerID string) []*domain.SavedCart {
	m.mu.Lock()
	defer m.mu.Unlock()

	var found []*domain.SavedCart
	for _, r := range m.records {
		if r.CustomerID == customerID {
			found = append(found, r)
		}
	}
	return found
}

func TestSaveCartUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("Save creates a new cart", func(t *testing.T) {
		repo := newMockCartRepository()
		uc := NewSaveCartUseCase(repo)

		cart, err := uc.Execute(ctx, "demo-shop", "C1", []string{"v1", "v2"})
		require.NoError(t, err)
		require.Equal(t, "C1", cart.CustomerID)
		require.Equal(t, []string{"v1", "v2"}, cart.ProductVariantIDs)
		require.Len(t, repo.recordsForCustomer("C1"), 1)
	})

	t.Run("Save replaces the previous cart and issues a new id", func(t *testing.T) {
		repo := newMockCartRepository()
		uc := NewSaveCartUseCase(repo)

		first, err := uc.Execute(ctx, "demo-shop", "C1", []string{"v1", "v2"})
		require.NoError(t, err)

		second, err := uc.Execute(ctx, "demo-shop", "C1", []string{"v3"})
		require.NoError(t, err)

		records := repo.recordsForCustomer("C1")
		require.Len(t, records, 1)
		require.Equal(t, []string{"v3"}, records[0].ProductVariantIDs)
		require.NotEqual(t, first.ID, second.ID)
	})

	t.Run("Empty selection is a valid save", func(t *testing.T) {
		repo := newMockCartRepository()
		uc := NewSaveCartUseCase(repo)

		cart, err := uc.Execute(ctx, "demo-shop", "C1", []string{})
		require.NoError(t, err)
		require.Empty(t, cart.ProductVariantIDs)
		require.Len(t, repo.recordsForCustomer("C1"), 1)
	})

	t.Run("Order and duplicates are preserved as submitted", func(t *testing.T) {
		repo := newMockCartRepository()
		uc := NewSaveCartUseCase(repo)

		cart, err := uc.Execute(ctx, "demo-shop", "C1", []string{"v2", "v1", "v2"})
		require.NoError(t, err)
		require.Equal(t, []string{"v2", "v1", "v2"}, cart.ProductVariantIDs)
	})

	t.Run("Missing customer id is rejected", func(t *testing.T) {
		repo := newMockCartRepository()
		uc := NewSaveCartUseCase(repo)

		_, err := uc.Execute(ctx, "demo-shop", "", []string{"v1"})
		require.ErrorIs(t, err, domain.ErrMissingCustomerID)
		require.Empty(t, repo.recordsForCustomer(""))
	})

	t.Run("Missing shop is rejected", func(t *testing.T) {
		repo := newMockCartRepository()
		uc := NewSaveCartUseCase(repo)

		_, err := uc.Execute(ctx, "", "C1", []string{"v1"})
		require.ErrorIs(t, err, domain.ErrMissingShop)
	})

	t.Run("Concurrent saves leave exactly one live cart", func(t *testing.T) {
		repo := newMockCartRepository()
		uc := NewSaveCartUseCase(repo)

		var wg sync.WaitGroup
		for i := 0; i < 32; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				_, err := uc.Execute(ctx, "demo-shop", "C1", []string{"v1"})
				require.NoError(t, err)
			}(i)
		}
		wg.Wait()

		require.Len(t, repo.recordsForCustomer("C1"), 1)
	})
}

func TestPurgeShopCartsUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("Purge removes all carts of the shop and publishes the event", func(t *testing.T) {
		repo := newMockCartRepository()
		saveUC := NewSaveCartUseCase(repo)
		_, err := saveUC.Execute(ctx, "shop-a", "C1", []string{"v1"})
		require.NoError(t, err)
		_, err = saveUC.Execute(ctx, "shop-a", "C2", []string{"v2"})
		require.NoError(t, err)
		_, err = saveUC.Execute(ctx, "shop-b", "C3", []string{"v3"})
		require.NoError(t, err)

		publisher := &mockLifecyclePublisher{}
		purgeUC := NewPurgeShopCartsUseCase(repo, publisher)

		purged, err := purgeUC.Execute(ctx, "shop-a")
		require.NoError(t, err)
		require.Equal(t, int64(2), purged)
		require.Empty(t, repo.recordsForCustomer("C1"))
		require.Empty(t, repo.recordsForCustomer("C2"))
		require.Len(t, repo.recordsForCustomer("C3"), 1)

		require.Len(t, publisher.published, 1)
		require.Equal(t, "shop-a", publisher.published[0].shop)
		require.Equal(t, int64(2), publisher.published[0].purged)
	})

	t.Run("Nil publisher is tolerated", func(t *testing.T) {
		repo := newMockCartRepository()
		purgeUC := NewPurgeShopCartsUseCase(repo, nil)

		purged, err := purgeUC.Execute(ctx, "shop-a")
		require.NoError(t, err)
		require.Zero(t, purged)
	})
}

func TestRedactCustomerUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("Redact removes the customer cart", func(t *testing.T) {
		repo := newMockCartRepository()
		_, err := NewSaveCartUseCase(repo).Execute(ctx, "demo-shop", "C1", []string{"v1"})
		require.NoError(t, err)

		redactUC := NewRedactCustomerUseCase(repo)
		require.NoError(t, redactUC.Execute(ctx, "C1"))
		require.Empty(t, repo.recordsForCustomer("C1"))
	})

	t.Run("Missing customer id is rejected", func(t *testing.T) {
		redactUC := NewRedactCustomerUseCase(newMockCartRepository())
		require.ErrorIs(t, redactUC.Execute(ctx, ""), domain.ErrMissingCustomerID)
	})
}

type publishedEvent struct {
	shop   string
	purged int64
}

type mockLifecyclePublisher struct {
	mu        sync.Mutex
	published []publishedEvent
}

func (m *mockLifecyclePublisher) PublishShopUninstalled(ctx context.Context, shop string, purgedCarts int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, publishedEvent{shop: shop, purged: purgedCarts})
	return nil
}
