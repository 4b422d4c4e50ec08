package lob

import "github.com/ordermatic/lobengine/structure"

// level is a view over a single price point: an intrusive FIFO list of
// resting orders (threaded through each Order's prev/next fields, owned by
// the shared arena) plus aggregate stats. The aggregate stats are not
// stored in this struct directly; they live inline in the Side Book's
// price-tree node (structure.NodePayload) so that locating a price and
// mutating its Level never requires a second map lookup. level is simply a
// (price, *payload) handle onto that storage, rebuilt on every access.
type level struct {
	price   Price
	payload *structure.NodePayload
}

func (lv level) isEmpty() bool {
	return lv.payload.OrderCount == 0
}

func (lv level) totalVolume() Quantity {
	return Quantity(lv.payload.TotalVolume)
}

func (lv level) orderCount() uint32 {
	return lv.payload.OrderCount
}

// pushBack links handle at the tail of the list and updates aggregates.
func (lv level) pushBack(a *arena, handle Handle) {
	o := a.get(handle)
	tail := Handle(lv.payload.TailOrder)
	o.prev = tail
	o.next = NullHandle
	if tail != NullHandle {
		a.get(tail).next = handle
	} else {
		lv.payload.HeadOrder = int32(handle)
	}
	lv.payload.TailOrder = int32(handle)
	lv.payload.TotalVolume += uint64(o.RemainingQty)
	lv.payload.OrderCount++
}

// front returns the head of the list, or NullHandle if empty.
func (lv level) front() Handle {
	return Handle(lv.payload.HeadOrder)
}

// popFront unlinks the head of the list. Per the matching-loop convention,
// it updates neither totalVolume nor orderCount: the match loop has
// already decremented totalVolume by the trade quantity as it went, and
// decrements orderCount itself at the point of full fill.
func (lv level) popFront(a *arena) {
	head := Handle(lv.payload.HeadOrder)
	if head == NullHandle {
		return
	}
	next := a.get(head).next
	lv.payload.HeadOrder = int32(next)
	if next == NullHandle {
		lv.payload.TailOrder = int32(NullHandle)
	} else {
		a.get(next).prev = NullHandle
	}
}

// unlink removes handle from its position in the list (used by cancel) and
// updates totalVolume (by the order's remaining quantity) and orderCount.
func (lv level) unlink(a *arena, handle Handle) {
	o := a.get(handle)
	if o.prev != NullHandle {
		a.get(o.prev).next = o.next
	} else {
		lv.payload.HeadOrder = int32(o.next)
	}
	if o.next != NullHandle {
		a.get(o.next).prev = o.prev
	} else {
		lv.payload.TailOrder = int32(o.prev)
	}
	lv.payload.TotalVolume -= uint64(o.RemainingQty)
	lv.payload.OrderCount--
}
