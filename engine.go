package lob

// Engine is the top-level, single-threaded coordinator: it ingests one
// command at a time, drives matching, emits events, and maintains the six
// book invariants that CheckInvariants verifies. It owns the arena, both side
// books, the index, and the event log exclusively for the duration of
// each command; there is no aliasing and no concurrency anywhere in this
// type.
type Engine struct {
	arena *arena
	index *index
	bids  *sideBook
	asks  *sideBook
	log   []Event
	clock Timestamp
}

// NewEngine constructs an engine with arena size cfg.Capacity; the event
// log is pre-reserved to the same capacity.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Engine{
		arena: newArena(cfg.Capacity),
		index: newIndex(cfg.Capacity),
		bids:  newSideBook(Buy, cfg.Capacity),
		asks:  newSideBook(Sell, cfg.Capacity),
		log:   make([]Event, 0, cfg.Capacity),
	}, nil
}

func (e *Engine) tick() Timestamp {
	e.clock++
	return e.clock
}

func (e *Engine) sideBooks(side Side) (own, opposite *sideBook) {
	if side == Buy {
		return e.bids, e.asks
	}
	return e.asks, e.bids
}

// ProcessNewOrder is the hot path: logs an ack, allocates the order,
// indexes it, matches it against the opposite side, and either rests the
// residual quantity or frees the order once fully filled. Duplicate live
// ids are rejected with ErrDuplicateOrderID before any state mutation.
func (e *Engine) ProcessNewOrder(id OrderID, side Side, price Price, qty Quantity) error {
	if _, live := e.index.lookup(id); live {
		return ErrDuplicateOrderID
	}

	ts := e.tick()
	e.log = append(e.log, NewOrderAckEvent(ts, id, side, price, qty))

	handle, err := e.arena.allocate()
	if err != nil {
		logger.Error("arena exhausted", "order_id", id)
		return ErrArenaExhausted
	}
	*e.arena.get(handle) = Order{
		ID:           id,
		Timestamp:    ts,
		Side:         side,
		Price:        price,
		OriginalQty:  qty,
		RemainingQty: qty,
		prev:         NullHandle,
		next:         NullHandle,
	}

	e.index.insert(id, handle)

	_, opposite := e.sideBooks(side)
	e.match(handle, side, opposite)

	aggressive := e.arena.get(handle)
	if !aggressive.IsFilled() {
		own, _ := e.sideBooks(side)
		lv, err := own.findOrCreate(price)
		if err != nil {
			logger.Error("price tree exhausted", "order_id", id)
			e.index.remove(id)
			e.arena.deallocate(handle)
			return ErrArenaExhausted
		}
		lv.pushBack(e.arena, handle)
	} else {
		e.index.remove(id)
		e.arena.deallocate(handle)
	}
	return nil
}

// match drains the opposite side into the aggressive order until it is
// filled or the opposite side's best level no longer crosses.
func (e *Engine) match(aggressiveHandle Handle, side Side, opposite *sideBook) {
	for {
		aggressive := e.arena.get(aggressiveHandle)
		if aggressive.IsFilled() {
			return
		}
		lv, crosses := opposite.crosses(side, aggressive.Price)
		if !crosses {
			return
		}
		e.matchLevel(aggressiveHandle, lv)
		if lv.isEmpty() {
			opposite.erase(lv.price)
		}
	}
}

// matchLevel executes trades between the aggressive order and the resting
// orders of lv, front to back, until either is exhausted.
func (e *Engine) matchLevel(aggressiveHandle Handle, lv level) {
	for !lv.isEmpty() {
		aggressive := e.arena.get(aggressiveHandle)
		if aggressive.IsFilled() {
			return
		}
		passiveHandle := lv.front()
		passive := e.arena.get(passiveHandle)

		tradeQty := aggressive.RemainingQty
		if passive.RemainingQty < tradeQty {
			tradeQty = passive.RemainingQty
		}

		ts := e.tick()
		e.log = append(e.log, TradeEvent(ts, passive.ID, aggressive.ID, lv.price, tradeQty))

		aggressive.RemainingQty -= tradeQty
		passive.RemainingQty -= tradeQty
		lv.payload.TotalVolume -= uint64(tradeQty)

		if passive.IsFilled() {
			lv.popFront(e.arena)
			lv.payload.OrderCount--
			e.index.remove(passive.ID)
			e.arena.deallocate(passiveHandle)
		}
	}
}

// ProcessCancel removes a resting order. The cancel is logged regardless
// of whether id is live, per the audit-trail guarantee the replayer
// depends on. The returned error is always nil in practice: the price
// level a live order rests on was already created when the order was
// rested, so findOrCreate below can only ever hit its find branch for a
// cancel. The error is still propagated rather than discarded, so a
// change to that invariant elsewhere fails loudly instead of silently.
func (e *Engine) ProcessCancel(id OrderID) error {
	ts := e.tick()
	e.log = append(e.log, CancelAckEvent(ts, id))

	handle, live := e.index.remove(id)
	if !live {
		return nil
	}

	order := e.arena.get(handle)
	own, _ := e.sideBooks(order.Side)
	lv, err := own.findOrCreate(order.Price)
	if err != nil {
		return err
	}
	lv.unlink(e.arena, handle)
	e.arena.deallocate(handle)

	if lv.isEmpty() {
		own.erase(order.Price)
	}
	return nil
}

// BestBid returns the best (highest) resting buy price, if any.
func (e *Engine) BestBid() (Price, bool) {
	lv, ok := e.bids.best()
	if !ok {
		return 0, false
	}
	return lv.price, true
}

// BestAsk returns the best (lowest) resting sell price, if any.
func (e *Engine) BestAsk() (Price, bool) {
	lv, ok := e.asks.best()
	if !ok {
		return 0, false
	}
	return lv.price, true
}

// EventLog returns a read-only view into the log accumulated so far. The
// returned slice aliases the Engine's internal storage; callers must not
// mutate it.
func (e *Engine) EventLog() []Event {
	return e.log
}
