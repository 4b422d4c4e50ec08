package lob

import "github.com/ordermatic/lobengine/structure"

// sideBook is an ordered map price -> Level for one side of the book,
// backed by an arena-allocated balanced tree (structure.PriceTree) so that
// best-price lookup is O(1) amortized and insert/erase are O(log n)
// without per-operation heap traffic. Bids order by descending price,
// asks by ascending price; the difference is entirely the comparator
// passed to newSideBook.
type sideBook struct {
	tree *structure.PriceTree
}

func ascendingPrice(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func descendingPrice(a, b int64) int {
	return ascendingPrice(b, a)
}

func newSideBook(side Side, capacity uint32) *sideBook {
	cmp := ascendingPrice
	if side == Buy {
		cmp = descendingPrice
	}
	return &sideBook{tree: structure.NewPriceTree(int32(capacity), cmp)}
}

// best returns the best-ordered level and its price, or ok=false if the
// side is empty.
func (sb *sideBook) best() (level, bool) {
	price, idx, ok := sb.tree.Best()
	if !ok {
		return level{}, false
	}
	return level{price: Price(price), payload: sb.tree.Payload(idx)}, true
}

// findOrCreate returns the Level at price, creating an empty one if it
// does not already exist. It fails only if a new level is needed and the
// side's price-tree capacity (sized to the engine's order capacity) is
// full, which cannot happen while the order arena still has room: a side
// can never hold more distinct prices than it holds resting orders.
func (sb *sideBook) findOrCreate(price Price) (level, error) {
	idx, _, err := sb.tree.FindOrCreate(int64(price))
	if err != nil {
		return level{}, err
	}
	return level{price: price, payload: sb.tree.Payload(idx)}, nil
}

// erase removes the (necessarily empty) Level at price from the book.
func (sb *sideBook) erase(price Price) {
	sb.tree.Erase(int64(price))
}

func (sb *sideBook) levelCount() int32 {
	return sb.tree.Count()
}

// crosses reports whether an aggressive order on the given side at price
// would cross against this (opposite) side's best level.
func (sb *sideBook) crosses(aggressiveSide Side, price Price) (level, bool) {
	lv, ok := sb.best()
	if !ok {
		return level{}, false
	}
	if aggressiveSide == Buy {
		return lv, price >= lv.price
	}
	return lv, price <= lv.price
}
