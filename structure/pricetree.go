// Package structure holds arena-backed ordered data structures used by the
// matching engine's Side Book. Keys and node slots are pre-allocated once;
// insert/erase never touch the heap.
package structure

import "errors"

// ErrExhausted is returned by FindOrCreate when the tree's pre-allocated
// node capacity has no free slot left for a new price.
var ErrExhausted = errors.New("structure: price tree exhausted")

// NullIndex marks the absence of a node (or, for order handles carried in
// a node's payload, the absence of an order).
const NullIndex int32 = -1

const (
	colorRed   = true
	colorBlack = false
)

// NodePayload is the data a Side Book Level carries at a given price,
// stored inline in the tree node that owns that price so that locating a
// price and mutating its Level never requires a second lookup.
type NodePayload struct {
	HeadOrder   int32
	TailOrder   int32
	TotalVolume uint64
	OrderCount  uint32
}

// priceNode is a node of the arena-backed Left-Leaning Red-Black tree.
// Reference: Robert Sedgewick's LLRB implementation,
// https://sedgewick.io/wp-content/themes/flavor/uploads/2016/02/LLRB.pdf
type priceNode struct {
	left, right, parent int32
	color               bool
	price               int64
	NodePayload
}

// PriceTree is an arena-backed LLRB tree keyed by a scaled integer price,
// ordered by a caller-supplied comparator. A Side Book uses one instance
// per side: the bid side orders by descending price, the ask side by
// ascending price, simply by passing a different cmp.
type PriceTree struct {
	nodes    []priceNode
	root     int32
	freeHead int32
	count    int32
	minCache int32
	cmp      func(a, b int64) int
}

// NewPriceTree creates a tree with pre-allocated node capacity and the
// given total-order comparator (negative if a is "better" than b, i.e.
// sorts first under best-first iteration).
func NewPriceTree(capacity int32, cmp func(a, b int64) int) *PriceTree {
	t := &PriceTree{
		nodes:    make([]priceNode, capacity),
		root:     NullIndex,
		freeHead: 0,
		minCache: NullIndex,
		cmp:      cmp,
	}
	for i := int32(0); i < capacity-1; i++ {
		t.nodes[i].left = i + 1
	}
	if capacity > 0 {
		t.nodes[capacity-1].left = NullIndex
	} else {
		t.freeHead = NullIndex
	}
	return t
}

func (t *PriceTree) alloc() (int32, error) {
	if t.freeHead == NullIndex {
		return NullIndex, ErrExhausted
	}
	idx := t.freeHead
	t.freeHead = t.nodes[idx].left
	t.nodes[idx] = priceNode{
		left: NullIndex, right: NullIndex, parent: NullIndex, color: colorRed,
		NodePayload: NodePayload{HeadOrder: NullIndex, TailOrder: NullIndex},
	}
	return idx, nil
}

func (t *PriceTree) free(idx int32) {
	t.nodes[idx].left = t.freeHead
	t.freeHead = idx
}

func (t *PriceTree) isRed(idx int32) bool {
	if idx == NullIndex {
		return false
	}
	return t.nodes[idx].color == colorRed
}

func (t *PriceTree) rotateLeft(h int32) int32 {
	x := t.nodes[h].right
	t.nodes[h].right = t.nodes[x].left
	if t.nodes[x].left != NullIndex {
		t.nodes[t.nodes[x].left].parent = h
	}
	t.nodes[x].left = h
	t.nodes[x].color = t.nodes[h].color
	t.nodes[h].color = colorRed
	t.nodes[x].parent = t.nodes[h].parent
	t.nodes[h].parent = x
	return x
}

func (t *PriceTree) rotateRight(h int32) int32 {
	x := t.nodes[h].left
	t.nodes[h].left = t.nodes[x].right
	if t.nodes[x].right != NullIndex {
		t.nodes[t.nodes[x].right].parent = h
	}
	t.nodes[x].right = h
	t.nodes[x].color = t.nodes[h].color
	t.nodes[h].color = colorRed
	t.nodes[x].parent = t.nodes[h].parent
	t.nodes[h].parent = x
	return x
}

func (t *PriceTree) flipColors(h int32) {
	t.nodes[h].color = !t.nodes[h].color
	t.nodes[t.nodes[h].left].color = !t.nodes[t.nodes[h].left].color
	t.nodes[t.nodes[h].right].color = !t.nodes[t.nodes[h].right].color
}

// FindOrCreate returns the node index for price, creating an empty-payload
// node if one did not already exist. The second return value reports
// whether a new node was created; the third is ErrExhausted if creation
// was needed but the tree's node capacity is full.
func (t *PriceTree) FindOrCreate(price int64) (int32, bool, error) {
	idx := t.search(t.root, price)
	if idx != NullIndex {
		return idx, false, nil
	}
	root, _, err := t.insert(t.root, NullIndex, price)
	if err != nil {
		return NullIndex, false, err
	}
	t.root = root
	t.nodes[t.root].color = colorBlack
	t.count++
	if t.minCache == NullIndex || t.cmp(price, t.nodes[t.minCache].price) < 0 {
		t.minCache = t.findMin(t.root)
	}
	return t.search(t.root, price), true, nil
}

func (t *PriceTree) insert(h int32, parent int32, price int64) (int32, int32, error) {
	if h == NullIndex {
		idx, err := t.alloc()
		if err != nil {
			return NullIndex, NullIndex, err
		}
		t.nodes[idx].price = price
		t.nodes[idx].parent = parent
		return idx, idx, nil
	}

	var newIdx int32
	var err error
	c := t.cmp(price, t.nodes[h].price)
	if c < 0 {
		t.nodes[h].left, newIdx, err = t.insert(t.nodes[h].left, h, price)
	} else if c > 0 {
		t.nodes[h].right, newIdx, err = t.insert(t.nodes[h].right, h, price)
	} else {
		return h, h, nil
	}
	if err != nil {
		// h is returned unchanged so the caller re-links the same subtree.
		return h, NullIndex, err
	}

	if t.isRed(t.nodes[h].right) && !t.isRed(t.nodes[h].left) {
		h = t.rotateLeft(h)
	}
	if t.isRed(t.nodes[h].left) && t.isRed(t.nodes[t.nodes[h].left].left) {
		h = t.rotateRight(h)
	}
	if t.isRed(t.nodes[h].left) && t.isRed(t.nodes[h].right) {
		t.flipColors(h)
	}
	return h, newIdx, nil
}

func (t *PriceTree) search(h int32, price int64) int32 {
	for h != NullIndex {
		c := t.cmp(price, t.nodes[h].price)
		if c < 0 {
			h = t.nodes[h].left
		} else if c > 0 {
			h = t.nodes[h].right
		} else {
			return h
		}
	}
	return NullIndex
}

// Best returns the best-ordered price and its node index.
func (t *PriceTree) Best() (price int64, idx int32, ok bool) {
	if t.minCache == NullIndex {
		return 0, NullIndex, false
	}
	return t.nodes[t.minCache].price, t.minCache, true
}

func (t *PriceTree) findMin(h int32) int32 {
	if h == NullIndex {
		return NullIndex
	}
	for t.nodes[h].left != NullIndex {
		h = t.nodes[h].left
	}
	return h
}

// Payload returns a mutable pointer to the Level data stored at idx.
func (t *PriceTree) Payload(idx int32) *NodePayload {
	return &t.nodes[idx].NodePayload
}

// Contains reports whether price has a node (for tests/diagnostics).
func (t *PriceTree) Contains(price int64) bool {
	return t.search(t.root, price) != NullIndex
}

// Count returns the number of nodes in the tree.
func (t *PriceTree) Count() int32 {
	return t.count
}

// Erase removes price from the tree. Returns true if it was present.
func (t *PriceTree) Erase(price int64) bool {
	if t.root == NullIndex {
		return false
	}

	needUpdateMin := t.minCache != NullIndex && t.nodes[t.minCache].price == price

	var found bool
	if !t.isRed(t.nodes[t.root].left) && !t.isRed(t.nodes[t.root].right) {
		t.nodes[t.root].color = colorRed
	}
	t.root, found = t.deleteWithFlag(t.root, price)
	if !found {
		if t.root != NullIndex {
			t.nodes[t.root].color = colorBlack
		}
		return false
	}

	if t.root != NullIndex {
		t.nodes[t.root].color = colorBlack
		t.nodes[t.root].parent = NullIndex
	}
	t.count--

	if needUpdateMin {
		t.minCache = t.findMin(t.root)
	}
	return true
}

func (t *PriceTree) deleteWithFlag(h int32, price int64) (int32, bool) {
	if h == NullIndex {
		return NullIndex, false
	}

	var found bool
	if t.cmp(price, t.nodes[h].price) < 0 {
		if t.nodes[h].left == NullIndex {
			return h, false
		}
		if !t.isRed(t.nodes[h].left) && !t.isRed(t.nodes[t.nodes[h].left].left) {
			h = t.moveRedLeft(h)
		}
		t.nodes[h].left, found = t.deleteWithFlag(t.nodes[h].left, price)
	} else {
		if t.isRed(t.nodes[h].left) {
			h = t.rotateRight(h)
		}
		if t.cmp(price, t.nodes[h].price) == 0 && t.nodes[h].right == NullIndex {
			t.free(h)
			return NullIndex, true
		}
		if t.nodes[h].right == NullIndex {
			return h, false
		}
		if !t.isRed(t.nodes[h].right) && !t.isRed(t.nodes[t.nodes[h].right].left) {
			h = t.moveRedRight(h)
		}
		if t.cmp(price, t.nodes[h].price) == 0 {
			minIdx := t.findMin(t.nodes[h].right)
			t.nodes[h].price = t.nodes[minIdx].price
			t.nodes[h].NodePayload = t.nodes[minIdx].NodePayload
			t.nodes[h].right = t.deleteMin(t.nodes[h].right)
			found = true
		} else {
			t.nodes[h].right, found = t.deleteWithFlag(t.nodes[h].right, price)
		}
	}
	return t.balance(h), found
}

func (t *PriceTree) moveRedLeft(h int32) int32 {
	t.flipColors(h)
	if t.isRed(t.nodes[t.nodes[h].right].left) {
		t.nodes[h].right = t.rotateRight(t.nodes[h].right)
		h = t.rotateLeft(h)
		t.flipColors(h)
	}
	return h
}

func (t *PriceTree) moveRedRight(h int32) int32 {
	t.flipColors(h)
	if t.isRed(t.nodes[t.nodes[h].left].left) {
		h = t.rotateRight(h)
		t.flipColors(h)
	}
	return h
}

func (t *PriceTree) deleteMin(h int32) int32 {
	if t.nodes[h].left == NullIndex {
		t.free(h)
		return NullIndex
	}
	if !t.isRed(t.nodes[h].left) && !t.isRed(t.nodes[t.nodes[h].left].left) {
		h = t.moveRedLeft(h)
	}
	t.nodes[h].left = t.deleteMin(t.nodes[h].left)
	return t.balance(h)
}

func (t *PriceTree) balance(h int32) int32 {
	if t.isRed(t.nodes[h].right) && !t.isRed(t.nodes[h].left) {
		h = t.rotateLeft(h)
	}
	if t.isRed(t.nodes[h].left) && t.isRed(t.nodes[t.nodes[h].left].left) {
		h = t.rotateRight(h)
	}
	if t.isRed(t.nodes[h].left) && t.isRed(t.nodes[h].right) {
		t.flipColors(h)
	}
	return h
}

// InOrderPrices returns all prices in the tree's comparator order
// (best-first), for tests and diagnostics.
func (t *PriceTree) InOrderPrices() []int64 {
	result := make([]int64, 0, t.count)
	t.inOrder(t.root, &result)
	return result
}

func (t *PriceTree) inOrder(h int32, result *[]int64) {
	if h == NullIndex {
		return
	}
	t.inOrder(t.nodes[h].left, result)
	*result = append(*result, t.nodes[h].price)
	t.inOrder(t.nodes[h].right, result)
}
