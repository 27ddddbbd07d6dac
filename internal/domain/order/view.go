package order

import (
	"time"

	"github.com/google/uuid"
)

// View is the externally visible projection of an order: every stored
// attribute plus denormalized reference data resolved from the peer services.
// Views are built fresh per request and never persisted.
type View struct {
	ID           int64      `json:"id"`
	Description  string     `json:"description,omitempty"`
	OrderDate    time.Time  `json:"date"`
	Amount       int64      `json:"amount"`
	TotalAmount  int64      `json:"totalAmount"`
	Discount     int64      `json:"discount"`
	Address      string     `json:"address,omitempty"`
	Payment      string     `json:"payment,omitempty"`
	Status       Status     `json:"status"`
	TrackingID   uuid.UUID  `json:"trackingId"`
	CustomerID   int64      `json:"customerId"`
	CustomerName string     `json:"customerName,omitempty"`
	CouponCode   string     `json:"couponCode,omitempty"`
	CouponName   string     `json:"couponName,omitempty"`
	Items        []ItemView `json:"items,omitempty"`
}

// ItemView is an order line joined with its resolved product reference.
// Name and Category stay empty when the product lookup degraded.
type ItemView struct {
	ProductID int64  `json:"productId"`
	Quantity  int64  `json:"quantity"`
	Price     int64  `json:"price"`
	Name      string `json:"name,omitempty"`
	Category  string `json:"category,omitempty"`
}

// BuildView assembles a View from an order and already-resolved optional
// references. A nil customer or coupon leaves the corresponding fields
// empty; products maps product id to its reference for item decoration.
// The assembly is deterministic: no lookups happen here.
func BuildView(o *Order, customer *CustomerRef, coupon *CouponRef, products map[int64]*ProductRef) View {
	v := View{
		ID:          o.ID,
		Description: o.Description,
		OrderDate:   o.OrderDate,
		Amount:      o.Amount,
		TotalAmount: o.TotalAmount,
		Discount:    o.Discount,
		Address:     o.Address,
		Payment:     o.Payment,
		Status:      o.Status,
		TrackingID:  o.TrackingID,
		CustomerID:  o.CustomerID,
		CouponCode:  o.CouponCode,
	}
	if customer != nil {
		v.CustomerName = customer.Name
	}
	if coupon != nil {
		v.CouponName = coupon.Name
		v.CouponCode = coupon.Code
	}
	if len(o.Items) > 0 {
		v.Items = make([]ItemView, len(o.Items))
		for i, item := range o.Items {
			iv := ItemView{
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Price,
			}
			if p := products[item.ProductID]; p != nil {
				iv.Name = p.Name
				iv.Category = p.Category
			}
			v.Items[i] = iv
		}
	}
	return v
}
