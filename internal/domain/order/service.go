package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNegativeAmount is returned when a create or update carries a negative
// monetary field.
var ErrNegativeAmount = errors.New("monetary fields must be non-negative")

// CreateRequest carries the inbound payload for placing an order.
type CreateRequest struct {
	CustomerID  int64
	Amount      int64
	TotalAmount int64
	Discount    int64
	// Status is the optional initial status label; empty means Pending.
	Status string
}

// UpdateRequest is the full-replace update payload. ID selects the order;
// the tracking identifier is immutable and taken from the stored record.
type UpdateRequest struct {
	ID          int64
	Description string
	// OrderDate, when nil, preserves the stored order date.
	OrderDate   *time.Time
	Amount      int64
	TotalAmount int64
	Discount    int64
	Address     string
	Payment     string
	Status      string
	CustomerID  int64
	CouponCode  string
	Items       []Item
}

// Service owns order creation, reads, the full-replace update path, and the
// status transition engine. All reads return enriched views.
type Service struct {
	orders   Repository
	enricher *Enricher
	now      func() time.Time
}

// NewService constructs the order service.
func NewService(orders Repository, enricher *Enricher) *Service {
	return &Service{
		orders:   orders,
		enricher: enricher,
		now:      time.Now,
	}
}

// Create persists a new order. The tracking identifier and order date are
// assigned here, exactly once. Returns the stored record, unenriched: the
// caller only needs an acknowledgement.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Order, error) {
	if req.Amount < 0 || req.TotalAmount < 0 || req.Discount < 0 {
		return nil, ErrNegativeAmount
	}

	status := StatusPending
	if req.Status != "" {
		parsed, err := ParseStatus(req.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	if req.TotalAmount != req.Amount-req.Discount {
		// Consistency is the caller's responsibility; surface the mismatch
		// without rejecting the order.
		zctx.From(ctx).Warn("order amounts inconsistent",
			zap.Int64("customer_id", req.CustomerID),
			zap.Int64("amount", req.Amount),
			zap.Int64("total_amount", req.TotalAmount),
			zap.Int64("discount", req.Discount))
	}

	o := &Order{
		OrderDate:   s.now(),
		Amount:      req.Amount,
		TotalAmount: req.TotalAmount,
		Discount:    req.Discount,
		Status:      status,
		CustomerID:  req.CustomerID,
		TrackingID:  uuid.New(),
	}
	if err := s.orders.Create(ctx, o); err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// GetOrder returns the enriched view of the order with the given id.
func (s *Service) GetOrder(ctx context.Context, id int64) (View, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return View{}, err
	}
	return s.enricher.EnrichOrder(ctx, o), nil
}

// GetByTracking returns the enriched view of the order with the given
// tracking identifier.
func (s *Service) GetByTracking(ctx context.Context, trackingID uuid.UUID) (View, error) {
	o, err := s.orders.GetByTracking(ctx, trackingID)
	if err != nil {
		return View{}, err
	}
	return s.enricher.EnrichOrder(ctx, o), nil
}

// GetCart returns the customer's Pending order. When several exist the most
// recent one wins (the repository guarantees determinism).
func (s *Service) GetCart(ctx context.Context, customerID int64) (View, error) {
	o, err := s.orders.GetByCustomerAndStatus(ctx, customerID, StatusPending)
	if err != nil {
		return View{}, err
	}
	return s.enricher.EnrichOrder(ctx, o), nil
}

// ListCustomerOrders returns the customer's orders in the active statuses,
// batch enriched.
func (s *Service) ListCustomerOrders(ctx context.Context, customerID int64) ([]View, error) {
	orders, err := s.orders.ListByCustomerAndStatusIn(ctx, customerID, ActiveStatuses())
	if err != nil {
		return nil, errors.Wrap(err, "list customer orders")
	}
	return s.enricher.EnrichOrders(ctx, orders), nil
}

// ListActiveOrders returns every order in the active statuses, batch
// enriched. Used by the administrative listing.
func (s *Service) ListActiveOrders(ctx context.Context) ([]View, error) {
	orders, err := s.orders.ListByStatusIn(ctx, ActiveStatuses())
	if err != nil {
		return nil, errors.Wrap(err, "list active orders")
	}
	return s.enricher.EnrichOrders(ctx, orders), nil
}

// Update replaces every mutable field of an order. The identifier and
// tracking identifier are immutable, and the status may only stay or move
// forward; a regression is rejected.
func (s *Service) Update(ctx context.Context, req UpdateRequest) (View, error) {
	if req.Amount < 0 || req.TotalAmount < 0 || req.Discount < 0 {
		return View{}, ErrNegativeAmount
	}
	status, err := ParseStatus(req.Status)
	if err != nil {
		return View{}, err
	}

	o, err := s.orders.GetByID(ctx, req.ID)
	if err != nil {
		return View{}, err
	}
	if status.Before(o.Status) {
		return View{}, &InvalidTransitionError{From: o.Status, To: status}
	}

	o.Description = req.Description
	if req.OrderDate != nil {
		o.OrderDate = *req.OrderDate
	}
	o.Amount = req.Amount
	o.TotalAmount = req.TotalAmount
	o.Discount = req.Discount
	o.Address = req.Address
	o.Payment = req.Payment
	o.Status = status
	o.CustomerID = req.CustomerID
	o.CouponCode = req.CouponCode
	o.Items = req.Items

	if err := s.orders.Update(ctx, o); err != nil {
		return View{}, err
	}
	return s.enricher.EnrichOrder(ctx, o), nil
}

// ChangeStatus applies a lifecycle transition. The label must name a member
// of the status enum and the move must be the single next forward step;
// anything else is rejected with a typed error instead of the historical
// silent no-op. The persist is guarded by the order's version, so a
// concurrent transition on the same order surfaces as ErrVersionConflict.
func (s *Service) ChangeStatus(ctx context.Context, orderID int64, label string) (View, error) {
	target, err := ParseStatus(label)
	if err != nil {
		return View{}, err
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return View{}, err
	}
	if !o.Status.CanTransitionTo(target) {
		return View{}, &InvalidTransitionError{From: o.Status, To: target}
	}

	o.Status = target
	if err := s.orders.Update(ctx, o); err != nil {
		return View{}, err
	}

	zctx.From(ctx).Info("order status changed",
		zap.Int64("order_id", o.ID),
		zap.String("status", string(target)))

	return s.enricher.EnrichOrder(ctx, o), nil
}
