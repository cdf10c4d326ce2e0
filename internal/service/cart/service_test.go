package cart

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"storefront/internal/domain"
	"storefront/internal/events"
)

// memoryRepo mimics the Postgres repository, including the version check.
type memoryRepo struct {
	carts     map[string]*domain.Cart
	nextID    int
	deleteErr error
	saveCalls int
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{carts: map[string]*domain.Cart{}}
}

func (m *memoryRepo) GetByUser(_ context.Context, userID string) (*domain.Cart, error) {
	for _, c := range m.carts {
		if c.UserID != nil && *c.UserID == userID {
			return c.Clone(), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memoryRepo) GetByGuest(_ context.Context, guestID string) (*domain.Cart, error) {
	for _, c := range m.carts {
		if c.GuestID != nil && *c.GuestID == guestID {
			return c.Clone(), nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memoryRepo) Save(_ context.Context, cart *domain.Cart) error {
	m.saveCalls++
	if cart.ID == "" {
		m.nextID++
		cart.ID = fmt.Sprintf("cart-%d", m.nextID)
		cart.Version = 1
	} else {
		stored, ok := m.carts[cart.ID]
		if !ok || stored.Version != cart.Version {
			return domain.ErrConflict
		}
		cart.Version++
	}
	m.carts[cart.ID] = cart.Clone()
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.carts[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.carts, id)
	return nil
}

func (m *memoryRepo) put(c *domain.Cart) *domain.Cart {
	m.nextID++
	c.ID = fmt.Sprintf("cart-%d", m.nextID)
	c.Version = 1
	m.carts[c.ID] = c.Clone()
	return c
}

type stubProducts struct {
	products map[string]domain.Product
}

func (s *stubProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

type fixedGuests struct{ id string }

func (g fixedGuests) NewID() string { return g.id }

type recordingPublisher struct {
	events []events.Event
}

func (r *recordingPublisher) Publish(_ context.Context, _, _ string, e events.Event) error {
	r.events = append(r.events, e)
	return nil
}

func (r *recordingPublisher) Close() error { return nil }

func newTestService(repo *memoryRepo) (*Service, *recordingPublisher) {
	products := &stubProducts{products: map[string]domain.Product{
		"P1": {ID: "P1", Name: "Tee", PriceCents: 2000, Images: []domain.ProductImage{{URL: "https://img/p1.jpg"}}},
		"P2": {ID: "P2", Name: "Cap", PriceCents: 500},
	}}
	pub := &recordingPublisher{}
	return New(repo, products, fixedGuests{id: "guest_generated"}, pub, nil), pub
}

func lineItem(productID string, price int64, qty int) domain.LineItem {
	return domain.LineItem{ProductID: productID, Name: productID, PriceCents: price, Size: "M", Color: "Red", Quantity: qty}
}

func cartWith(owner domain.CartOwner, items ...domain.LineItem) *domain.Cart {
	c := domain.NewCart(owner)
	for _, item := range items {
		_ = c.AddItem(item)
	}
	return c
}

var user = domain.CartOwner{UserID: "u1"}
var guest = domain.CartOwner{GuestID: "guest_1"}

func TestAddItemTwiceSumsQuantity(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()

	_, created, err := svc.AddItem(ctx, user, AddItemInput{ProductID: "P1", Quantity: 2, Size: "M", Color: "Red"})
	require.NoError(t, err)
	assert.True(t, created)
	cart, created, err := svc.AddItem(ctx, user, AddItemInput{ProductID: "P1", Quantity: 1, Size: "M", Color: "Red"})
	require.NoError(t, err)
	assert.False(t, created)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 3, cart.Items[0].Quantity)
	assert.Equal(t, int64(6000), cart.TotalPriceCents)
	assert.Equal(t, "https://img/p1.jpg", cart.Items[0].Image)
}

func TestAddItemKeepsSnapshotPrice(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()

	_, _, err := svc.AddItem(ctx, user, AddItemInput{ProductID: "P1", Quantity: 1, Size: "M", Color: "Red"})
	require.NoError(t, err)

	svc.products.(*stubProducts).products["P1"] = domain.Product{ID: "P1", Name: "Tee", PriceCents: 9999}
	cart, _, err := svc.AddItem(ctx, user, AddItemInput{ProductID: "P1", Quantity: 1, Size: "M", Color: "Red"})
	require.NoError(t, err)
	assert.Equal(t, int64(2000), cart.Items[0].PriceCents)
	assert.Equal(t, int64(4000), cart.TotalPriceCents)
}

func TestAddItemWithoutIdentityCreatesGuestCart(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)

	cart, _, err := svc.AddItem(context.Background(), domain.CartOwner{}, AddItemInput{ProductID: "P2", Quantity: 1})
	require.NoError(t, err)
	require.NotNil(t, cart.GuestID)
	assert.Equal(t, "guest_generated", *cart.GuestID)
	assert.Nil(t, cart.UserID)
}

func TestAddItemErrors(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)
	ctx := context.Background()

	_, _, err := svc.AddItem(ctx, user, AddItemInput{ProductID: "missing", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, _, err = svc.AddItem(ctx, domain.CartOwner{UserID: "u1", GuestID: "guest_1"}, AddItemInput{ProductID: "P1", Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, _, err = svc.AddItem(ctx, user, AddItemInput{ProductID: "P1", Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrValidation)

	assert.Zero(t, repo.saveCalls)
}

func TestGetRequiresSingleIdentityAndDoesNotCreate(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)

	_, err := svc.Get(context.Background(), domain.CartOwner{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Get(context.Background(), guest)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, repo.carts)
}

func TestUpdateItemQuantityZeroRemovesLine(t *testing.T) {
	repo := newMemoryRepo()
	repo.put(cartWith(guest, lineItem("P1", 2000, 2), lineItem("P2", 500, 1)))
	svc, _ := newTestService(repo)

	cart, err := svc.UpdateItemQuantity(context.Background(), guest, domain.LineKey{ProductID: "P1", Size: "M", Color: "Red"}, 0)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, int64(500), cart.TotalPriceCents)
}

func TestUpdateItemQuantityNotFound(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)
	key := domain.LineKey{ProductID: "P1", Size: "M", Color: "Red"}

	_, err := svc.UpdateItemQuantity(context.Background(), guest, key, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	repo.put(cartWith(guest, lineItem("P2", 500, 1)))
	_, err = svc.UpdateItemQuantity(context.Background(), guest, key, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemoveItem(t *testing.T) {
	repo := newMemoryRepo()
	repo.put(cartWith(user, lineItem("P1", 2000, 2)))
	svc, _ := newTestService(repo)

	cart, err := svc.RemoveItem(context.Background(), user, domain.LineKey{ProductID: "P1", Size: "M", Color: "Red"})
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.Zero(t, cart.TotalPriceCents)
}

// conflictingRepo behaves as if another writer always saved first.
type conflictingRepo struct{ *memoryRepo }

func (c conflictingRepo) Save(context.Context, *domain.Cart) error {
	c.saveCalls++
	return domain.ErrConflict
}

func TestStaleWriteSurfacesConflictWithoutRetry(t *testing.T) {
	repo := newMemoryRepo()
	repo.put(cartWith(user, lineItem("P1", 2000, 1)))
	products := &stubProducts{products: map[string]domain.Product{}}
	svc := New(conflictingRepo{repo}, products, fixedGuests{}, nil, nil)

	_, err := svc.UpdateItemQuantity(context.Background(), user, domain.LineKey{ProductID: "P1", Size: "M", Color: "Red"}, 3)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 1, repo.saveCalls)
	for _, c := range repo.carts {
		assert.Equal(t, 1, c.Items[0].Quantity)
	}
}

func TestMergeSumsIntoUserCartAndDeletesGuest(t *testing.T) {
	repo := newMemoryRepo()
	guestCart := repo.put(cartWith(guest, lineItem("A", 1000, 2)))
	repo.put(cartWith(domain.CartOwner{UserID: "u1"}, lineItem("A", 900, 1), lineItem("B", 300, 3)))
	svc, pub := newTestService(repo)

	cart, err := svc.Merge(context.Background(), "guest_1", "u1")
	require.NoError(t, err)

	a, _ := cart.Item(domain.LineKey{ProductID: "A", Size: "M", Color: "Red"})
	b, _ := cart.Item(domain.LineKey{ProductID: "B", Size: "M", Color: "Red"})
	assert.Equal(t, 3, a.Quantity)
	assert.Equal(t, int64(900), a.PriceCents)
	assert.Equal(t, 3, b.Quantity)
	assert.Equal(t, int64(3*900+3*300), cart.TotalPriceCents)

	_, ok := repo.carts[guestCart.ID]
	assert.False(t, ok, "guest cart should be deleted")
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TypeCartMerged, pub.events[0].Type)
}

func TestMergeEmptyGuestCartIsInvalidState(t *testing.T) {
	repo := newMemoryRepo()
	repo.put(cartWith(guest))
	userCart := repo.put(cartWith(user, lineItem("A", 1000, 1)))
	svc, _ := newTestService(repo)

	_, err := svc.Merge(context.Background(), "guest_1", "u1")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
	assert.Len(t, repo.carts, 2)
	assert.Equal(t, 1, repo.carts[userCart.ID].Version)
}

func TestMergeWithoutGuestCart(t *testing.T) {
	repo := newMemoryRepo()
	svc, _ := newTestService(repo)

	_, err := svc.Merge(context.Background(), "guest_1", "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	userCart := repo.put(cartWith(user, lineItem("A", 1000, 1)))
	cart, err := svc.Merge(context.Background(), "guest_1", "u1")
	require.NoError(t, err)
	assert.Equal(t, userCart.ID, cart.ID)
	assert.Equal(t, 1, cart.Version)
}

func TestMergeReassignsLoneGuestCart(t *testing.T) {
	repo := newMemoryRepo()
	guestCart := repo.put(cartWith(guest, lineItem("A", 1000, 2)))
	svc, _ := newTestService(repo)

	cart, err := svc.Merge(context.Background(), "guest_1", "u1")
	require.NoError(t, err)
	assert.Equal(t, guestCart.ID, cart.ID)
	assert.Nil(t, cart.GuestID)
	require.NotNil(t, cart.UserID)
	assert.Equal(t, "u1", *cart.UserID)
	assert.Len(t, repo.carts, 1)
}

func TestMergeIgnoresGuestDeleteFailure(t *testing.T) {
	repo := newMemoryRepo()
	repo.put(cartWith(guest, lineItem("A", 1000, 2)))
	repo.put(cartWith(user, lineItem("B", 300, 1)))
	repo.deleteErr = errors.New("store unavailable")
	svc, _ := newTestService(repo)

	cart, err := svc.Merge(context.Background(), "guest_1", "u1")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
}

func TestMergeRequiresBothIdentities(t *testing.T) {
	svc, _ := newTestService(newMemoryRepo())
	_, err := svc.Merge(context.Background(), "", "u1")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestClear(t *testing.T) {
	repo := newMemoryRepo()
	repo.put(cartWith(user, lineItem("A", 1000, 1)))
	svc, _ := newTestService(repo)

	require.NoError(t, svc.Clear(context.Background(), "u1"))
	assert.Empty(t, repo.carts)
	require.NoError(t, svc.Clear(context.Background(), "u1"))
}

func TestCartNotFoundMessage(t *testing.T) {
	svc, _ := newTestService(newMemoryRepo())
	_, err := svc.RemoveItem(context.Background(), guest, domain.LineKey{ProductID: "A"})
	assert.ErrorContains(t, err, "cart not found")
}
