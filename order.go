package lob

// Order is a resting or in-flight order record. prev/next are intrusive
// link fields used by the Level it currently belongs to; they are
// meaningless while the order is not resting on a level (mid-match, or
// freshly allocated).
type Order struct {
	ID           OrderID
	Timestamp    Timestamp
	Side         Side
	Price        Price
	OriginalQty  Quantity
	RemainingQty Quantity
	prev, next   Handle
}

// IsFilled reports whether the order has no remaining quantity.
func (o *Order) IsFilled() bool {
	return o.RemainingQty == 0
}
