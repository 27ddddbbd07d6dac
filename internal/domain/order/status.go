package order

// Status is the lifecycle state of an order. A Pending order behaves as the
// customer's active cart.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusPlaced    Status = "Placed"
	StatusShipped   Status = "Shipped"
	StatusDelivered Status = "Delivered"
)

// statusRank orders the lifecycle for forward-only checks. Delivered is
// terminal.
var statusRank = map[Status]int{
	StatusPending:   0,
	StatusPlaced:    1,
	StatusShipped:   2,
	StatusDelivered: 3,
}

// ParseStatus maps a label to a Status, returning ErrUnknownStatus for
// anything outside the enum. Labels are matched exactly; there is no
// case folding.
func ParseStatus(label string) (Status, error) {
	s := Status(label)
	if _, ok := statusRank[s]; !ok {
		return "", ErrUnknownStatus
	}
	return s, nil
}

// CanTransitionTo reports whether moving from s to next is a single forward
// step of the lifecycle. Skipping states and regressing are both rejected.
func (s Status) CanTransitionTo(next Status) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to == from+1
}

// Before reports whether s precedes other in the lifecycle. Used by the
// full-replace update path, which may keep or advance a status but never
// regress it.
func (s Status) Before(other Status) bool {
	return statusRank[s] < statusRank[other]
}

// ActiveStatuses are the states an order can be in after leaving the cart.
// Listings for customers and administrators cover exactly this set.
func ActiveStatuses() []Status {
	return []Status{StatusPlaced, StatusShipped, StatusDelivered}
}
