package lob

import (
	"bytes"
	"testing"

	"github.com/rs/xid"
)

// syntheticOrderIDs mints n collision-free order ids for benchmark load,
// folding each xid.ID's last eight bytes (machine, pid and the per-process
// counter) into the engine's uint64 id space. The engine never generates
// ids itself; benchmarks stand in for the client that would.
func syntheticOrderIDs(n int) []OrderID {
	ids := make([]OrderID, n)
	for i := range ids {
		guid := xid.New()
		var v uint64
		for _, b := range guid.Bytes()[4:] {
			v = v<<8 | uint64(b)
		}
		ids[i] = OrderID(v)
	}
	return ids
}

// BenchmarkProcessNewOrder_Throughput alternates sides across a narrow
// band of price ticks, so a steady fraction of orders match immediately
// and the rest rest briefly before being swept by a later order on the
// opposite side - the same shape as the original throughput benchmark.
func BenchmarkProcessNewOrder_Throughput(b *testing.B) {
	e, err := NewEngine(Config{Capacity: uint32(b.N) + 1})
	if err != nil {
		b.Fatal(err)
	}
	ids := syntheticOrderIDs(b.N)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		side := Buy
		if i%2 == 1 {
			side = Sell
		}
		price := Price(1000000 + int64(i%10)*1000)
		if err := e.ProcessNewOrder(ids[i], side, price, 10); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkProcessNewOrder_Crossing measures the cost of buy orders at
// 105.00 against a pre-populated ask ladder (100.00 to 199.90, one order
// per 0.10), mirroring the original latency benchmark's
// pre-populate-then-measure shape. Only the first 51 buys cross, each
// filling one resting sell; later buys find no crossing ask and rest.
func BenchmarkProcessNewOrder_Crossing(b *testing.B) {
	e, err := NewEngine(Config{Capacity: uint32(b.N) + 1000})
	if err != nil {
		b.Fatal(err)
	}
	for i, id := range syntheticOrderIDs(1000) {
		price := Price(1000000 + int64(i)*1000)
		if err := e.ProcessNewOrder(id, Sell, price, 10); err != nil {
			b.Fatal(err)
		}
	}
	ids := syntheticOrderIDs(b.N)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := e.ProcessNewOrder(ids[i], Buy, 1050000, 10); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkProcessCancel measures cancellation cost against a
// pre-populated book, mirroring the original cancel benchmark.
func BenchmarkProcessCancel(b *testing.B) {
	e, err := NewEngine(Config{Capacity: uint32(b.N) + 1})
	if err != nil {
		b.Fatal(err)
	}
	ids := syntheticOrderIDs(b.N)
	for i, id := range ids {
		side := Buy
		if i%2 == 1 {
			side = Sell
		}
		price := Price(1000000 + int64(i%100)*1000)
		if err := e.ProcessNewOrder(id, side, price, 10); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if err := e.ProcessCancel(ids[i]); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkReplay measures the cost of reconstructing a book from a
// saved event log, the operation the determinism guarantee exists to
// make cheap.
func BenchmarkReplay(b *testing.B) {
	const bookSize = 10000

	e, err := NewEngine(Config{Capacity: bookSize})
	if err != nil {
		b.Fatal(err)
	}
	for i, id := range syntheticOrderIDs(bookSize) {
		side := Buy
		if i%2 == 1 {
			side = Sell
		}
		price := Price(1000000 + int64(i%50)*1000)
		if err := e.ProcessNewOrder(id, side, price, 10); err != nil {
			b.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := SaveLog(&buf, e.EventLog()); err != nil {
		b.Fatal(err)
	}
	data := buf.Bytes()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Replay(bytes.NewReader(data), Config{Capacity: bookSize}); err != nil {
			b.Fatal(err)
		}
	}
}
