package lob

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// formatEvent renders ev in the persisted log's wire format:
//
//	NEW_ORDER,<ts>,<id>,<side>,<price>,<qty>
//	CANCEL_ORDER,<ts>,<id>
//	TRADE,<ts>,<passive_id>,<aggressive_id>,<price>,<qty>
func formatEvent(ev Event) string {
	switch ev.Kind {
	case EventNewOrderAck:
		return fmt.Sprintf("NEW_ORDER,%d,%d,%s,%d,%d", ev.Ts, ev.ID, ev.Side, ev.Price, ev.Qty)
	case EventCancelAck:
		return fmt.Sprintf("CANCEL_ORDER,%d,%d", ev.Ts, ev.ID)
	case EventTrade:
		return fmt.Sprintf("TRADE,%d,%d,%d,%d,%d", ev.Ts, ev.PassiveID, ev.AggressiveID, ev.Price, ev.Qty)
	default:
		return ""
	}
}

// SaveLog writes log to w, one event per line, in the persisted wire
// format. Trade events are included for audit purposes even though
// Replay regenerates them rather than reading them back.
func SaveLog(w io.Writer, log []Event) error {
	bw := bufio.NewWriter(w)
	for _, ev := range log {
		if _, err := bw.WriteString(formatEvent(ev)); err != nil {
			return ErrFileIO
		}
		if err := bw.WriteByte('\n'); err != nil {
			return ErrFileIO
		}
	}
	if err := bw.Flush(); err != nil {
		return ErrFileIO
	}
	return nil
}

// command is a parsed line of a persisted log: either a new order or a
// cancel. Trade lines are skipped by parseLine and never replayed, since
// the Engine regenerates them from the orders it is fed.
type command struct {
	isNewOrder bool
	id         OrderID
	side       Side
	price      Price
	qty        Quantity
}

func parseSide(s string) (Side, bool) {
	switch s {
	case "BUY":
		return Buy, true
	case "SELL":
		return Sell, true
	default:
		return 0, false
	}
}

// parseLine parses a single wire-format line into a replayable command.
// Malformed lines, and lines for event kinds that carry no command (TRADE,
// and any unrecognized tag), are reported via ok=false so that callers can
// skip them rather than fail the whole load.
func parseLine(line string) (cmd command, ok bool) {
	fields := strings.Split(line, ",")
	if len(fields) == 0 {
		return command{}, false
	}
	switch fields[0] {
	case "NEW_ORDER":
		if len(fields) != 6 {
			return command{}, false
		}
		id, err1 := strconv.ParseUint(fields[2], 10, 64)
		side, okSide := parseSide(fields[3])
		price, err2 := strconv.ParseInt(fields[4], 10, 64)
		qty, err3 := strconv.ParseUint(fields[5], 10, 64)
		if err1 != nil || !okSide || err2 != nil || err3 != nil {
			return command{}, false
		}
		return command{isNewOrder: true, id: OrderID(id), side: side, price: Price(price), qty: Quantity(qty)}, true

	case "CANCEL_ORDER":
		if len(fields) != 3 {
			return command{}, false
		}
		id, err := strconv.ParseUint(fields[2], 10, 64)
		if err != nil {
			return command{}, false
		}
		return command{isNewOrder: false, id: OrderID(id)}, true

	default:
		return command{}, false
	}
}

// LoadCommands reads a persisted log from r and returns the commands it
// contains, in order. Lines that fail to parse, and TRADE lines, are
// silently skipped: the persisted format is an audit trail, not a strict
// schema, and the original C++ replay tool treats trades the same way
// (generated, never replayed).
func LoadCommands(r io.Reader) ([]command, error) {
	scanner := bufio.NewScanner(r)
	var cmds []command
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if cmd, ok := parseLine(line); ok {
			cmds = append(cmds, cmd)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, ErrFileIO
	}
	return cmds, nil
}

// Replay builds a fresh Engine of the given capacity and feeds it the new
// order and cancel commands loaded from r, in order. Because matching is
// a pure function of engine state and incoming commands, the resulting
// engine is bit-for-bit identical to the one that originally produced the
// log that commands were extracted from, regardless of how much time
// passed in between.
func Replay(r io.Reader, cfg Config) (*Engine, error) {
	cmds, err := LoadCommands(r)
	if err != nil {
		return nil, err
	}
	engine, err := NewEngine(cfg)
	if err != nil {
		return nil, err
	}
	for _, cmd := range cmds {
		if cmd.isNewOrder {
			if err := engine.ProcessNewOrder(cmd.id, cmd.side, cmd.price, cmd.qty); err != nil {
				return nil, err
			}
		} else if err := engine.ProcessCancel(cmd.id); err != nil {
			return nil, err
		}
	}
	return engine, nil
}
