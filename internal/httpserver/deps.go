package httpserver

import (
	"context"
	"io"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
	checkoutsvc "storefront/internal/service/checkout"
	productsvc "storefront/internal/service/product"
	usersvc "storefront/internal/service/user"
)

// Deps holds the services the handlers call.
type Deps struct {
	UserSvc       UserService
	ProductSvc    ProductService
	CartSvc       CartService
	CheckoutSvc   CheckoutService
	OrderSvc      OrderService
	SubscriberSvc SubscriberService
	Guests        GuestIssuer
	Images        ImageStore
}

// Settings carries router options that come from configuration.
type Settings struct {
	CORSAllowedOrigins []string
	UploadDir          string

	// MaxUploadBytes caps an upload request body; zero means defaultMaxUploadBytes.
	MaxUploadBytes int64
}

type UserService interface {
	Register(ctx context.Context, in usersvc.RegisterInput) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	LookupByToken(ctx context.Context, token string) (*domain.User, error)
	Profile(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Create(ctx context.Context, in usersvc.CreateInput) (*domain.User, error)
	Update(ctx context.Context, id string, in usersvc.UpdateInput) (*domain.User, error)
	Delete(ctx context.Context, id string) error
}

type ProductService interface {
	List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	BestSeller(ctx context.Context) (*domain.Product, error)
	NewArrivals(ctx context.Context) ([]domain.Product, error)
	Similar(ctx context.Context, id string) ([]domain.Product, error)
	Create(ctx context.Context, createdBy string, in productsvc.CreateInput) (*domain.Product, error)
	Update(ctx context.Context, id string, in productsvc.UpdateInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
}

type CartService interface {
	Get(ctx context.Context, owner domain.CartOwner) (*domain.Cart, error)
	AddItem(ctx context.Context, owner domain.CartOwner, in cartsvc.AddItemInput) (*domain.Cart, bool, error)
	UpdateItemQuantity(ctx context.Context, owner domain.CartOwner, key domain.LineKey, quantity int) (*domain.Cart, error)
	RemoveItem(ctx context.Context, owner domain.CartOwner, key domain.LineKey) (*domain.Cart, error)
	Merge(ctx context.Context, guestID, userID string) (*domain.Cart, error)
}

type CheckoutService interface {
	Begin(ctx context.Context, userID string, in checkoutsvc.BeginInput) (*domain.Checkout, error)
	Get(ctx context.Context, id, userID string) (*domain.Checkout, error)
	MarkPaid(ctx context.Context, id, userID, status string, details map[string]interface{}) (*domain.Checkout, error)
	Finalize(ctx context.Context, id, userID string) (*domain.Order, bool, error)
}

type OrderService interface {
	ListMine(ctx context.Context, userID string) ([]domain.Order, error)
	Get(ctx context.Context, id string, viewer domain.User) (*domain.Order, error)
	ListAll(ctx context.Context) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
}

type SubscriberService interface {
	Subscribe(ctx context.Context, email string) (*domain.Subscriber, error)
}

type GuestIssuer interface {
	NewID() string
	Valid(id string) bool
}

type ImageStore interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
}
