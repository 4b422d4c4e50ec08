package lob

import "fmt"

// CheckInvariants walks the engine's live state and returns an error
// describing the first violation found, or nil if all six invariants
// hold. It is O(n) in the number of resting orders and is meant for
// tests and debugging, not the hot path; the engine never calls it
// itself.
func (e *Engine) CheckInvariants() error {
	if err := e.checkNonCrossing(); err != nil {
		return err
	}
	if err := e.checkSide(e.bids, Buy); err != nil {
		return err
	}
	if err := e.checkSide(e.asks, Sell); err != nil {
		return err
	}
	if err := e.checkIndexCompleteness(); err != nil {
		return err
	}
	var last Timestamp
	for _, ev := range e.log {
		if ev.Ts < last {
			return fmt.Errorf("lob: monotone-clock invariant violated: timestamp %d follows %d", ev.Ts, last)
		}
		last = ev.Ts
	}
	return nil
}

func (e *Engine) checkNonCrossing() error {
	bid, hasBid := e.BestBid()
	ask, hasAsk := e.BestAsk()
	if hasBid && hasAsk && bid >= ask {
		return fmt.Errorf("lob: non-crossing invariant violated: best bid %d >= best ask %d", bid, ask)
	}
	return nil
}

// checkSide verifies, for one side book, that every level's stored
// aggregates (OrderCount, TotalVolume) match what its FIFO list actually
// contains, that every order in the list satisfies remaining <= original
// and belongs to side, and that every such order is present in the index
// pointing back at the same handle.
func (e *Engine) checkSide(sb *sideBook, side Side) error {
	for _, price := range sb.tree.InOrderPrices() {
		lv, err := sb.findOrCreate(Price(price))
		if err != nil {
			return err
		}

		var count uint32
		var volume uint64
		tail := NullHandle
		for h := lv.front(); h != NullHandle; h = e.arena.get(h).next {
			tail = h
			o := e.arena.get(h)
			if o.Side != side {
				return fmt.Errorf("lob: order %d resting on wrong side at price %d", o.ID, price)
			}
			if o.Price != Price(price) {
				return fmt.Errorf("lob: order %d resting at wrong price level", o.ID)
			}
			if o.RemainingQty > o.OriginalQty {
				return fmt.Errorf("lob: fill-bound invariant violated for order %d", o.ID)
			}
			if o.RemainingQty == 0 {
				return fmt.Errorf("lob: fully filled order %d still resting", o.ID)
			}
			handle, live := e.index.lookup(o.ID)
			if !live || handle != h {
				return fmt.Errorf("lob: index-completeness invariant violated for order %d", o.ID)
			}
			count++
			volume += uint64(o.RemainingQty)
		}
		if Handle(lv.payload.TailOrder) != tail {
			return fmt.Errorf("lob: count-consistency invariant violated at price %d: tail handle does not match the list", price)
		}
		if count != lv.orderCount() {
			return fmt.Errorf("lob: count-consistency invariant violated at price %d: list has %d, level says %d", price, count, lv.orderCount())
		}
		if volume != uint64(lv.totalVolume()) {
			return fmt.Errorf("lob: volume-conservation invariant violated at price %d: list sums to %d, level says %d", price, volume, lv.totalVolume())
		}
	}
	return nil
}

// checkIndexCompleteness verifies the converse direction: every handle
// the index names resolves to a live order on the side its own Side
// field claims.
func (e *Engine) checkIndexCompleteness() error {
	// checkSide has already matched every resting order to its own index
	// entry, so equal counts leave no index entry without a resting order.
	var resting int
	for _, sb := range []*sideBook{e.bids, e.asks} {
		for _, price := range sb.tree.InOrderPrices() {
			lv, err := sb.findOrCreate(Price(price))
			if err != nil {
				return err
			}
			resting += int(lv.orderCount())
		}
	}
	if resting != len(e.index.byID) {
		return fmt.Errorf("lob: index-completeness invariant violated: index has %d entries, book has %d resting orders", len(e.index.byID), resting)
	}
	for id, handle := range e.index.byID {
		o := e.arena.get(handle)
		if o.ID != id {
			return fmt.Errorf("lob: index entry for order %d points at order %d", id, o.ID)
		}
	}
	return nil
}
