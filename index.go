package lob

// index maps order-id to a handle for currently-resting orders. Between
// commands it holds nothing else: Engine.ProcessNewOrder inserts the
// aggressive order before matching and removes it again if it fills
// completely.
type index struct {
	byID map[OrderID]Handle
}

func newIndex(capacityHint uint32) *index {
	return &index{byID: make(map[OrderID]Handle, capacityHint)}
}

func (ix *index) insert(id OrderID, h Handle) {
	ix.byID[id] = h
}

func (ix *index) lookup(id OrderID) (Handle, bool) {
	h, ok := ix.byID[id]
	return h, ok
}

func (ix *index) remove(id OrderID) (Handle, bool) {
	h, ok := ix.byID[id]
	if ok {
		delete(ix.byID, id)
	}
	return h, ok
}
