package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a requested order does not exist. Callers
	// must be able to tell it apart from transport and storage failures, so
	// repository implementations never wrap storage errors into it.
	ErrNotFound = errors.New("order not found")

	// ErrVersionConflict is returned when a persist loses an optimistic
	// concurrency race: the stored version no longer matches the one the
	// caller read.
	ErrVersionConflict = errors.New("order version conflict")

	// ErrUnknownStatus is returned when a status label does not name any
	// member of the status enum.
	ErrUnknownStatus = errors.New("unknown order status")
)

// InvalidTransitionError indicates a status change that does not follow the
// forward-only lifecycle.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return "invalid status transition: " + string(e.From) + " -> " + string(e.To)
}

// Order is the persisted, authoritative representation of a customer order.
// Items are transient: they are carried for the lifetime of a request (the
// full-replace update path supplies them) but never stored with the order.
type Order struct {
	ID          int64
	Description string
	OrderDate   time.Time
	Amount      int64 // pre-discount line amount, minor currency units
	TotalAmount int64 // post-discount, customer-facing
	Discount    int64
	Address     string
	Payment     string
	Status      Status
	CustomerID  int64
	CouponCode  string // optional foreign reference into the coupon domain
	TrackingID  uuid.UUID
	Version     int64

	Items []Item
}

// Item is a single order line. Product name and category belong to the
// product domain and are resolved at enrichment time, not here.
type Item struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
	Price     int64 `json:"price"`
}

// Repository defines the persistence operations the order core consumes.
// Every call goes to the backing store; there is no caching layer.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Order, error)
	GetByTracking(ctx context.Context, trackingID uuid.UUID) (*Order, error)
	// GetByCustomerAndStatus returns the most recent match when several
	// orders share the same (customer, status) pair.
	GetByCustomerAndStatus(ctx context.Context, customerID int64, status Status) (*Order, error)
	ListByCustomerAndStatusIn(ctx context.Context, customerID int64, statuses []Status) ([]Order, error)
	ListByStatusIn(ctx context.Context, statuses []Status) ([]Order, error)
	CountByStatus(ctx context.Context, status Status) (int64, error)
	// ListByDateRangeAndStatus is inclusive of both bounds.
	ListByDateRangeAndStatus(ctx context.Context, start, end time.Time, status Status) ([]Order, error)
	Create(ctx context.Context, o *Order) error
	// Update replaces every mutable field of the stored order. It returns
	// ErrVersionConflict when o.Version is stale and ErrNotFound when the
	// order no longer exists.
	Update(ctx context.Context, o *Order) error
}

// CustomerRef is the request-scoped copy of identity data used for view
// construction. The order never owns it.
type CustomerRef struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// CouponRef carries coupon reference data from the coupon domain.
type CouponRef struct {
	Name           string    `json:"name"`
	Code           string    `json:"code"`
	Discount       int64     `json:"discount"`
	ExpirationDate time.Time `json:"expirationDate"`
}

// ProductRef carries product reference data from the product domain.
type ProductRef struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Category string `json:"categoryName"`
}

// CustomerLookup resolves a customer by id from the identity service.
type CustomerLookup interface {
	GetCustomer(ctx context.Context, customerID int64) (*CustomerRef, error)
}

// CouponLookup resolves a coupon by code from the coupon service.
type CouponLookup interface {
	GetCoupon(ctx context.Context, code string) (*CouponRef, error)
}

// ProductLookup resolves a product by id from the product service.
type ProductLookup interface {
	GetProduct(ctx context.Context, productID int64) (*ProductRef, error)
}
