package lob

import "errors"

var (
	// ErrArenaExhausted is returned by process_new_order when the order
	// arena's free-list is empty. Fatal per the error policy: the engine
	// should not be expected to process further new-order commands
	// meaningfully once this occurs.
	ErrArenaExhausted = errors.New("lob: order arena exhausted")

	// ErrDuplicateOrderID is returned when a new order arrives with an id
	// already live in the Index. Rejected before any state mutation.
	ErrDuplicateOrderID = errors.New("lob: order id already live")

	// ErrInvalidCapacity is returned by NewEngine when capacity is zero.
	ErrInvalidCapacity = errors.New("lob: capacity must be positive")

	// ErrFileIO wraps filesystem errors encountered by the replay subsystem.
	ErrFileIO = errors.New("lob: log file i/o error")
)
