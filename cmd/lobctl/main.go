// Command lobctl is a scripted demonstration and operator harness for the
// matching engine: it runs the same build-sweep-cancel-market scenario the
// original project's interactive demo ran, then optionally saves the event
// log. With -replay it runs no scenario: it rebuilds an engine from a saved
// log, prints the book, and checks the engine's invariants.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/huandu/skiplist"
	"github.com/shopspring/decimal"

	"github.com/ordermatic/lobengine"
)

func main() {
	var (
		capacity     = flag.Uint("capacity", 4096, "order arena capacity")
		savePath     = flag.String("save", "", "path to save the event log to (CSV wire format)")
		replayPath   = flag.String("replay", "", "path to a saved event log to replay instead of running the built-in scenario")
		cancelOldest = flag.Bool("cancel-oldest", false, "cancel the earliest-submitted accepted order after the scenario runs (a no-op if it has since filled)")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if *replayPath != "" {
		runReplay(logger, *replayPath, uint32(*capacity))
		return
	}

	engine, err := lob.NewEngine(lob.Config{Capacity: uint32(*capacity)})
	if err != nil {
		logger.Error("construct engine", "err", err)
		os.Exit(1)
	}

	oldest := newOldestOrderIndex()

	runScenario(logger, engine, oldest)

	if *cancelOldest {
		if id, ok := oldest.popOldest(); ok {
			logger.Info("cancelling oldest resting order", "order_id", id)
			if err := engine.ProcessCancel(id); err != nil {
				logger.Error("cancel oldest order", "err", err)
				os.Exit(1)
			}
		}
	}

	printBook(engine)

	if *savePath != "" {
		f, err := os.Create(*savePath)
		if err != nil {
			logger.Error("create save file", "err", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := lob.SaveLog(f, engine.EventLog()); err != nil {
			logger.Error("save event log", "err", err)
			os.Exit(1)
		}
		logger.Info("saved event log", "path", *savePath, "events", len(engine.EventLog()))
	}

	if err := engine.CheckInvariants(); err != nil {
		logger.Error("invariant check failed", "err", err)
		os.Exit(1)
	}
	logger.Info("all invariants satisfied")
}

// oldestOrderIndex is a CLI-side convenience structure, not part of the
// engine: it records every accepted order by submission timestamp so an
// operator can cancel the earliest-submitted one without scanning the
// book. Entries are not removed when an order later fills or is
// cancelled, so popOldest can return an id that no longer rests, and
// cancelling it then only logs a CancelAck. The core engine has no notion
// of "oldest" beyond the timestamp already on each order.
type oldestOrderIndex struct {
	bySubmission *skiplist.SkipList
}

func newOldestOrderIndex() *oldestOrderIndex {
	return &oldestOrderIndex{bySubmission: skiplist.New(skiplist.Uint64)}
}

func (idx *oldestOrderIndex) record(ts uint64, id lob.OrderID) {
	idx.bySubmission.Set(ts, id)
}

func (idx *oldestOrderIndex) popOldest() (lob.OrderID, bool) {
	front := idx.bySubmission.Front()
	if front == nil {
		return 0, false
	}
	id := front.Value.(lob.OrderID)
	idx.bySubmission.RemoveFront()
	return id, true
}

// price parses a human decimal string (e.g. "100.25") into the engine's
// scaled integer Price. It and formatPrice are the only places in the
// program that touch decimal.Decimal; the engine itself never does.
func price(s string) lob.Price {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(fmt.Sprintf("lobctl: invalid price %q: %v", s, err))
	}
	scaled := d.Mul(decimal.NewFromInt(lob.PriceScale))
	return lob.Price(scaled.IntPart())
}

func formatPrice(p lob.Price) string {
	d := decimal.NewFromInt(int64(p)).Div(decimal.NewFromInt(lob.PriceScale))
	return d.StringFixed(2)
}

func runScenario(logger *slog.Logger, engine *lob.Engine, oldest *oldestOrderIndex) {
	submit := func(id lob.OrderID, side lob.Side, priceStr string, qty lob.Quantity) {
		if err := engine.ProcessNewOrder(id, side, price(priceStr), qty); err != nil {
			logger.Warn("order rejected", "order_id", id, "err", err)
			return
		}
		if ts, ok := submissionTimestamp(engine, id); ok {
			oldest.record(ts, id)
		}
	}

	logger.Info("scenario 1: building order book")
	submit(1, lob.Sell, "101.00", 50)
	submit(2, lob.Sell, "100.50", 30)
	submit(3, lob.Sell, "100.00", 20)
	submit(4, lob.Buy, "99.00", 40)
	submit(5, lob.Buy, "99.50", 35)
	printBook(engine)

	logger.Info("scenario 2: aggressive order sweeps multiple levels")
	submit(6, lob.Buy, "101.50", 80)
	printBook(engine)

	logger.Info("scenario 3: order cancellation")
	if err := engine.ProcessCancel(4); err != nil {
		logger.Warn("cancel rejected", "order_id", 4, "err", err)
	}
	printBook(engine)

	logger.Info("scenario 4: marketable buy order")
	submit(7, lob.Buy, "999999.00", 25)
	printBook(engine)
}

// submissionTimestamp looks up the timestamp that ProcessNewOrder assigned
// to id, purely for the CLI's own bookkeeping: it returns the timestamp of
// the latest NewOrderAck for id in the event log, whether or not the order
// is still resting.
func submissionTimestamp(engine *lob.Engine, id lob.OrderID) (uint64, bool) {
	for i := len(engine.EventLog()) - 1; i >= 0; i-- {
		ev := engine.EventLog()[i]
		if ev.Kind == lob.EventNewOrderAck && ev.ID == id {
			return uint64(ev.Ts), true
		}
	}
	return 0, false
}

func printBook(engine *lob.Engine) {
	dv := lob.NewDepthView(engine.EventLog())
	fmt.Println("  asks:")
	for _, lvl := range reverseLevels(dv.Levels(lob.Sell)) {
		fmt.Printf("    %s x %d\n", formatPrice(lvl.Price), lvl.Quantity)
	}
	fmt.Println("  bids:")
	for _, lvl := range dv.Levels(lob.Buy) {
		fmt.Printf("    %s x %d\n", formatPrice(lvl.Price), lvl.Quantity)
	}
}

// reverseLevels prints asks worst-first, matching the conventional
// book-depth display (asks descending toward the spread, bids descending
// away from it) without changing DepthView's own best-first contract.
func reverseLevels(levels []lob.PriceLevel) []lob.PriceLevel {
	out := make([]lob.PriceLevel, len(levels))
	for i, lvl := range levels {
		out[len(levels)-1-i] = lvl
	}
	return out
}

func runReplay(logger *slog.Logger, path string, capacity uint32) {
	f, err := os.Open(path)
	if err != nil {
		logger.Error("open replay file", "err", err)
		os.Exit(1)
	}
	defer f.Close()

	engine, err := lob.Replay(f, lob.Config{Capacity: capacity})
	if err != nil {
		logger.Error("replay failed", "err", err)
		os.Exit(1)
	}
	logger.Info("replay complete", "events", len(engine.EventLog()))
	printBook(engine)

	if err := engine.CheckInvariants(); err != nil {
		logger.Error("invariant check failed after replay", "err", err)
		os.Exit(1)
	}
	logger.Info("all invariants satisfied")
}
