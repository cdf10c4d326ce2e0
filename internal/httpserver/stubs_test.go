package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
	checkoutsvc "storefront/internal/service/checkout"
	productsvc "storefront/internal/service/product"
	usersvc "storefront/internal/service/user"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

var (
	customer = &domain.User{ID: "u1", Name: "Ann", Email: "ann@example.com", Role: domain.RoleCustomer}
	admin    = &domain.User{ID: "a1", Name: "Root", Email: "root@example.com", Role: domain.RoleAdmin}
)

// stubUserService resolves "customer-token" and "admin-token".
type stubUserService struct {
	registerErr error
	loginErr    error
	users       []domain.User
}

func (s *stubUserService) Register(_ context.Context, in usersvc.RegisterInput) (*domain.User, string, error) {
	if s.registerErr != nil {
		return nil, "", s.registerErr
	}
	return &domain.User{ID: "new", Name: in.Name, Email: in.Email, Role: domain.RoleCustomer}, "new-token", nil
}

func (s *stubUserService) Login(context.Context, string, string) (*domain.User, string, error) {
	if s.loginErr != nil {
		return nil, "", s.loginErr
	}
	return customer, "customer-token", nil
}

func (s *stubUserService) LookupByToken(_ context.Context, token string) (*domain.User, error) {
	switch token {
	case "customer-token":
		return customer, nil
	case "admin-token":
		return admin, nil
	}
	return nil, usersvc.ErrInvalidToken
}

func (s *stubUserService) Profile(_ context.Context, id string) (*domain.User, error) {
	if id == customer.ID {
		return customer, nil
	}
	return admin, nil
}

func (s *stubUserService) List(context.Context) ([]domain.User, error) { return s.users, nil }

func (s *stubUserService) Create(_ context.Context, in usersvc.CreateInput) (*domain.User, error) {
	return &domain.User{ID: "created", Name: in.Name, Email: in.Email, Role: domain.Role(in.Role)}, nil
}

func (s *stubUserService) Update(_ context.Context, id string, _ usersvc.UpdateInput) (*domain.User, error) {
	return &domain.User{ID: id}, nil
}

func (s *stubUserService) Delete(context.Context, string) error { return nil }

type stubProductService struct {
	products   []domain.Product
	lastFilter domain.ProductFilter
	createdBy  string
	err        error
}

func (s *stubProductService) List(_ context.Context, f domain.ProductFilter) ([]domain.Product, error) {
	s.lastFilter = f
	return s.products, s.err
}

func (s *stubProductService) Get(_ context.Context, id string) (*domain.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubProductService) BestSeller(context.Context) (*domain.Product, error) {
	if len(s.products) == 0 {
		return nil, domain.ErrNotFound
	}
	return &s.products[0], nil
}

func (s *stubProductService) NewArrivals(context.Context) ([]domain.Product, error) {
	return s.products, nil
}

func (s *stubProductService) Similar(context.Context, string) ([]domain.Product, error) {
	return nil, nil
}

func (s *stubProductService) Create(_ context.Context, createdBy string, in productsvc.CreateInput) (*domain.Product, error) {
	s.createdBy = createdBy
	return &domain.Product{ID: "p-new", Name: in.Name, PriceCents: in.PriceCents}, s.err
}

func (s *stubProductService) Update(_ context.Context, id string, _ productsvc.UpdateInput) (*domain.Product, error) {
	return &domain.Product{ID: id}, s.err
}

func (s *stubProductService) Delete(context.Context, string) error { return s.err }

// stubCartService records the owner each call resolved to.
type stubCartService struct {
	lastOwner domain.CartOwner
	lastAdd   cartsvc.AddItemInput
	lastKey   domain.LineKey
	lastQty   int
	merged    [2]string
	created   bool
	err       error
}

func (s *stubCartService) cart(owner domain.CartOwner) *domain.Cart {
	if owner.UserID == "" && owner.GuestID == "" {
		owner.GuestID = "guest_issued"
	}
	c := domain.NewCart(owner)
	c.ID = "cart-1"
	return c
}

func (s *stubCartService) Get(_ context.Context, owner domain.CartOwner) (*domain.Cart, error) {
	s.lastOwner = owner
	if s.err != nil {
		return nil, s.err
	}
	return s.cart(owner), nil
}

func (s *stubCartService) AddItem(_ context.Context, owner domain.CartOwner, in cartsvc.AddItemInput) (*domain.Cart, bool, error) {
	s.lastOwner, s.lastAdd = owner, in
	if s.err != nil {
		return nil, false, s.err
	}
	return s.cart(owner), s.created, nil
}

func (s *stubCartService) UpdateItemQuantity(_ context.Context, owner domain.CartOwner, key domain.LineKey, qty int) (*domain.Cart, error) {
	s.lastOwner, s.lastKey, s.lastQty = owner, key, qty
	if s.err != nil {
		return nil, s.err
	}
	return s.cart(owner), nil
}

func (s *stubCartService) RemoveItem(_ context.Context, owner domain.CartOwner, key domain.LineKey) (*domain.Cart, error) {
	s.lastOwner, s.lastKey = owner, key
	if s.err != nil {
		return nil, s.err
	}
	return s.cart(owner), nil
}

func (s *stubCartService) Merge(_ context.Context, guestID, userID string) (*domain.Cart, error) {
	s.merged = [2]string{guestID, userID}
	if s.err != nil {
		return nil, s.err
	}
	return s.cart(domain.CartOwner{UserID: userID}), nil
}

type stubCheckoutService struct {
	created   bool
	err       error
	lastBegin checkoutsvc.BeginInput
}

func (s *stubCheckoutService) Begin(_ context.Context, userID string, in checkoutsvc.BeginInput) (*domain.Checkout, error) {
	s.lastBegin = in
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Checkout{ID: "co-1", UserID: userID, TotalPriceCents: 6000}, nil
}

func (s *stubCheckoutService) Get(_ context.Context, id, userID string) (*domain.Checkout, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Checkout{ID: id, UserID: userID}, nil
}

func (s *stubCheckoutService) MarkPaid(_ context.Context, id, userID, _ string, _ map[string]interface{}) (*domain.Checkout, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Checkout{ID: id, UserID: userID, IsPaid: true}, nil
}

func (s *stubCheckoutService) Finalize(_ context.Context, id, userID string) (*domain.Order, bool, error) {
	if s.err != nil {
		return nil, false, s.err
	}
	return &domain.Order{ID: "order-" + id, UserID: userID, Status: domain.OrderProcessing}, s.created, nil
}

type stubOrderService struct {
	lastStatus string
	err        error
}

func (s *stubOrderService) ListMine(_ context.Context, userID string) ([]domain.Order, error) {
	return nil, s.err
}

func (s *stubOrderService) Get(_ context.Context, id string, viewer domain.User) (*domain.Order, error) {
	if viewer.ID != customer.ID && !viewer.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return &domain.Order{ID: id, UserID: customer.ID}, nil
}

func (s *stubOrderService) ListAll(context.Context) ([]domain.Order, error) {
	return []domain.Order{{ID: "o1"}}, nil
}

func (s *stubOrderService) UpdateStatus(_ context.Context, id, status string) (*domain.Order, error) {
	s.lastStatus = status
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Order{ID: id, Status: domain.OrderStatus(status)}, nil
}

func (s *stubOrderService) Delete(context.Context, string) error { return s.err }

type stubSubscriberService struct{ err error }

func (s *stubSubscriberService) Subscribe(_ context.Context, email string) (*domain.Subscriber, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Subscriber{ID: "s1", Email: email}, nil
}

type stubGuests struct{}

func (stubGuests) NewID() string { return "guest_issued" }

func (stubGuests) Valid(id string) bool { return strings.HasPrefix(id, "guest_") }

type stubImages struct {
	name string
	body string
}

func (s *stubImages) Save(_ context.Context, name string, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	s.name, s.body = name, string(data)
	return "http://cdn.local/uploads/" + name, nil
}

func stubDeps() Deps {
	return Deps{
		UserSvc:       &stubUserService{},
		ProductSvc:    &stubProductService{},
		CartSvc:       &stubCartService{},
		CheckoutSvc:   &stubCheckoutService{},
		OrderSvc:      &stubOrderService{},
		SubscriberSvc: &stubSubscriberService{},
		Guests:        stubGuests{},
		Images:        &stubImages{},
	}
}

func newTestRouter(t *testing.T, deps Deps) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router, err := buildRouter(logDiscard(), nil, deps, Settings{CORSAllowedOrigins: []string{"http://localhost:5173"}})
	if err != nil {
		t.Fatalf("build router: %v", err)
	}
	return router
}

func doJSON(router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
}
