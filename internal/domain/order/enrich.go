package order

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// batchLookupLimit bounds concurrent customer lookups during batch
// enrichment so a large admin listing cannot flood the identity service.
const batchLookupLimit = 8

// Enricher resolves foreign identifiers on orders into displayable reference
// data. Peer failures and absences degrade the affected field to empty; they
// never fail the enrichment itself.
type Enricher struct {
	customers CustomerLookup
	coupons   CouponLookup
	products  ProductLookup
	timeout   time.Duration
}

// NewEnricher constructs an Enricher. timeout bounds every individual peer
// lookup; zero or negative falls back to 5s.
func NewEnricher(customers CustomerLookup, coupons CouponLookup, products ProductLookup, timeout time.Duration) *Enricher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Enricher{
		customers: customers,
		coupons:   coupons,
		products:  products,
		timeout:   timeout,
	}
}

// EnrichOrder builds the fully enriched view of a single order. The customer,
// coupon, and per-item product lookups are independent, so they fan out
// concurrently; assembly waits for all of them. The coupon lookup is skipped
// entirely when the order carries no coupon code.
func (e *Enricher) EnrichOrder(ctx context.Context, o *Order) View {
	var (
		customer *CustomerRef
		coupon   *CouponRef
	)
	productRefs := make([]*ProductRef, len(o.Items))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		customer = e.lookupCustomer(gctx, o.CustomerID)
		return nil
	})

	if o.CouponCode != "" {
		g.Go(func() error {
			coupon = e.lookupCoupon(gctx, o.CouponCode)
			return nil
		})
	}

	for i, item := range o.Items {
		g.Go(func() error {
			productRefs[i] = e.lookupProduct(gctx, item.ProductID)
			return nil
		})
	}

	_ = g.Wait() // branches only degrade, they never error

	var products map[int64]*ProductRef
	if len(o.Items) > 0 {
		products = make(map[int64]*ProductRef, len(o.Items))
		for _, ref := range productRefs {
			if ref != nil {
				products[ref.ID] = ref
			}
		}
	}

	return BuildView(o, customer, coupon, products)
}

// EnrichOrders resolves the customer for a batch of orders and returns views
// in the same order as the input, regardless of lookup completion order.
// Lookups are de-duplicated per distinct customer and run concurrently with
// a bounded limit. Coupons and products are not resolved on the batch path.
func (e *Enricher) EnrichOrders(ctx context.Context, orders []Order) []View {
	if len(orders) == 0 {
		return []View{}
	}

	ids := make([]int64, 0, len(orders))
	seen := make(map[int64]struct{}, len(orders))
	for _, o := range orders {
		if _, ok := seen[o.CustomerID]; ok {
			continue
		}
		seen[o.CustomerID] = struct{}{}
		ids = append(ids, o.CustomerID)
	}

	var mu sync.Mutex
	customers := make(map[int64]*CustomerRef, len(ids))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(batchLookupLimit)
	for _, id := range ids {
		g.Go(func() error {
			ref := e.lookupCustomer(gctx, id)
			mu.Lock()
			customers[id] = ref
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	views := make([]View, len(orders))
	for i := range orders {
		views[i] = BuildView(&orders[i], customers[orders[i].CustomerID], nil, nil)
	}
	return views
}

func (e *Enricher) lookupCustomer(ctx context.Context, customerID int64) *CustomerRef {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	ref, err := e.customers.GetCustomer(ctx, customerID)
	if err != nil {
		zctx.From(ctx).Debug("customer lookup degraded",
			zap.Int64("customer_id", customerID), zap.Error(err))
		return nil
	}
	return ref
}

func (e *Enricher) lookupCoupon(ctx context.Context, code string) *CouponRef {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	ref, err := e.coupons.GetCoupon(ctx, code)
	if err != nil {
		zctx.From(ctx).Debug("coupon lookup degraded",
			zap.String("coupon_code", code), zap.Error(err))
		return nil
	}
	return ref
}

func (e *Enricher) lookupProduct(ctx context.Context, productID int64) *ProductRef {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	ref, err := e.products.GetProduct(ctx, productID)
	if err != nil {
		zctx.From(ctx).Debug("product lookup degraded",
			zap.Int64("product_id", productID), zap.Error(err))
		return nil
	}
	return ref
}
