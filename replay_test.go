package lob

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatEvent_MatchesWireFormat(t *testing.T) {
	assert.Equal(t, "NEW_ORDER,1,42,BUY,1000000,10",
		formatEvent(NewOrderAckEvent(1, 42, Buy, 1000000, 10)))
	assert.Equal(t, "CANCEL_ORDER,2,42",
		formatEvent(CancelAckEvent(2, 42)))
	assert.Equal(t, "TRADE,3,42,43,1000000,10",
		formatEvent(TradeEvent(3, 42, 43, 1000000, 10)))
}

func TestSaveLoad_RoundTripsCommands(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.ProcessNewOrder(1, Sell, 1000000, 10))
	require.NoError(t, e.ProcessNewOrder(2, Buy, 1000000, 4))
	require.NoError(t, e.ProcessCancel(999))

	var buf bytes.Buffer
	require.NoError(t, SaveLog(&buf, e.EventLog()))

	cmds, err := LoadCommands(&buf)
	require.NoError(t, err)

	// Two NEW_ORDER lines and one CANCEL_ORDER line; the TRADE line is
	// skipped by parseLine and so excluded from the replayable command
	// set.
	require.Len(t, cmds, 3)
	assert.True(t, cmds[0].isNewOrder)
	assert.Equal(t, OrderID(1), cmds[0].id)
	assert.True(t, cmds[1].isNewOrder)
	assert.Equal(t, OrderID(2), cmds[1].id)
	assert.False(t, cmds[2].isNewOrder)
	assert.Equal(t, OrderID(999), cmds[2].id)
}

func TestLoadCommands_SkipsMalformedLines(t *testing.T) {
	r := strings.NewReader(strings.Join([]string{
		"NEW_ORDER,1,1,BUY,1000000,10",
		"garbage line",
		"NEW_ORDER,2,2,SIDEWAYS,1000000,10",
		"CANCEL_ORDER,3,1",
		"",
	}, "\n"))

	cmds, err := LoadCommands(r)
	require.NoError(t, err)
	require.Len(t, cmds, 2)
	assert.Equal(t, OrderID(1), cmds[0].id)
	assert.Equal(t, OrderID(1), cmds[1].id)
}

func TestReplay_ReproducesEngineState(t *testing.T) {
	e := newTestEngine(t)
	require.NoError(t, e.ProcessNewOrder(1, Sell, 1000000, 10))
	require.NoError(t, e.ProcessNewOrder(2, Buy, 1000000, 4))
	require.NoError(t, e.ProcessNewOrder(3, Sell, 1010000, 10))
	require.NoError(t, e.ProcessCancel(3))

	var buf bytes.Buffer
	require.NoError(t, SaveLog(&buf, e.EventLog()))

	replayed, err := Replay(&buf, Config{Capacity: 1024})
	require.NoError(t, err)

	assertReplayEqual(t, e, replayed)
	assert.NoError(t, replayed.CheckInvariants())
}
