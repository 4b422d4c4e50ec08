package lob

import "github.com/igrmk/treemap/v2"

// DepthView is a read-only projection of resting quantity per side and
// price, reconstructed from an Engine's event log. It never touches the
// arena or the side books directly; it exists so that CLI and reporting
// code can ask "how much quantity sits at each price" without walking
// live engine state, and so the same question can be answered against a
// replayed or persisted log.
type DepthView struct {
	bids *treemap.TreeMap[Price, Quantity]
	asks *treemap.TreeMap[Price, Quantity]
}

func ascendingPriceKey(a, b Price) bool { return a < b }

// NewDepthView walks log once and returns the resulting snapshot.
//
// A bare Event does not carry enough information on its own to say
// whether it changed resting depth: a Trade event has no Side field, and
// neither Trade nor CancelAck repeats the order's price. DepthView
// instead tracks, per still-open order, the (side, price, remaining)
// triple implied by the orders it has seen, and commits an order's
// contribution to the depth snapshot only once it knows the order is
// done receiving passive fills: at the next NewOrderAck or CancelAck, or
// at the end of the log.
func NewDepthView(log []Event) *DepthView {
	dv := &DepthView{
		bids: treemap.NewWithKeyCompare[Price, Quantity](ascendingPriceKey),
		asks: treemap.NewWithKeyCompare[Price, Quantity](ascendingPriceKey),
	}

	type openOrder struct {
		side      Side
		price     Price
		remaining Quantity
	}
	pending := make(map[OrderID]*openOrder)
	var openID OrderID
	hasOpen := false

	finalize := func() {
		if !hasOpen {
			return
		}
		hasOpen = false
		o, ok := pending[openID]
		if !ok {
			return
		}
		if o.remaining == 0 {
			delete(pending, openID)
			return
		}
		dv.add(o.side, o.price, o.remaining)
	}

	for _, ev := range log {
		switch ev.Kind {
		case EventNewOrderAck:
			finalize()
			pending[ev.ID] = &openOrder{side: ev.Side, price: ev.Price, remaining: ev.Qty}
			openID = ev.ID
			hasOpen = true

		case EventCancelAck:
			finalize()
			if o, ok := pending[ev.ID]; ok {
				dv.subtract(o.side, o.price, o.remaining)
				delete(pending, ev.ID)
			}

		case EventTrade:
			if passive, ok := pending[ev.PassiveID]; ok {
				dv.subtract(passive.side, passive.price, ev.Qty)
				passive.remaining -= ev.Qty
				if passive.remaining == 0 {
					delete(pending, ev.PassiveID)
				}
			}
			if aggressive, ok := pending[ev.AggressiveID]; ok {
				aggressive.remaining -= ev.Qty
			}
		}
	}
	finalize()

	return dv
}

func (dv *DepthView) bookFor(side Side) *treemap.TreeMap[Price, Quantity] {
	if side == Buy {
		return dv.bids
	}
	return dv.asks
}

func (dv *DepthView) add(side Side, price Price, qty Quantity) {
	book := dv.bookFor(side)
	cur, _ := book.Get(price)
	book.Set(price, cur+qty)
}

func (dv *DepthView) subtract(side Side, price Price, qty Quantity) {
	book := dv.bookFor(side)
	cur, ok := book.Get(price)
	if !ok {
		return
	}
	if qty >= cur {
		book.Del(price)
		return
	}
	book.Set(price, cur-qty)
}

// Quantity returns the resting quantity at price on side, if any.
func (dv *DepthView) Quantity(side Side, price Price) (Quantity, bool) {
	return dv.bookFor(side).Get(price)
}

// Levels returns (price, quantity) pairs for side in best-first order:
// descending for bids, ascending for asks.
func (dv *DepthView) Levels(side Side) []PriceLevel {
	book := dv.bookFor(side)
	out := make([]PriceLevel, 0, book.Len())
	for it := book.Iterator(); it.Valid(); it.Next() {
		out = append(out, PriceLevel{Price: it.Key(), Quantity: it.Value()})
	}
	if side == Buy {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// PriceLevel is a single (price, resting quantity) pair, as returned by
// DepthView.Levels.
type PriceLevel struct {
	Price    Price
	Quantity Quantity
}
