package lob

const (
	// EngineVersion is the current version of the matching engine.
	EngineVersion = "v1.0.0"

	// PriceScale is the fixed factor relating a human decimal price to the
	// internal scaled integer Price. A human price of 100.25 is stored as
	// 1002500.
	PriceScale int64 = 10000
)
