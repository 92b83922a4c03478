package journal

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standlog/standlog/internal/kv"
	"github.com/standlog/standlog/internal/report"
)

func TestAppend_AssignsMonotonicSeq(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()

	for want := int64(0); want < 3; want++ {
		var stamped Entry
		err := mem.Update(ctx, func(tx kv.Tx) error {
			var err error
			stamped, err = Append(tx, Entry{
				CallToken: "tok",
				Op:        report.OpSetGreeting,
				Caller:    "alice.near",
			})
			return err
		})
		require.NoError(t, err)
		assert.Equal(t, want, stamped.Seq)
	}
}

func TestList_SeqOrder(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()

	err := mem.Update(ctx, func(tx kv.Tx) error {
		for i := 0; i < 12; i++ {
			if _, err := Append(tx, Entry{
				CallToken: "tok",
				Op:        report.OpAddReport,
				Caller:    "alice.near",
			}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	entries, err := List(ctx, mem)
	require.NoError(t, err)
	require.Len(t, entries, 12)
	for i, e := range entries {
		// Zero-padded keys keep double-digit seqs in numeric order.
		assert.Equal(t, int64(i), e.Seq)
	}
}

func TestList_EmptyJournal(t *testing.T) {
	entries, err := List(context.Background(), kv.NewMemory())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestAppend_RolledBackWithTransaction(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	boom := assert.AnError

	err := mem.Update(ctx, func(tx kv.Tx) error {
		if _, err := Append(tx, Entry{CallToken: "tok", Op: report.OpSetGreeting, Caller: "a"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	entries, err := List(ctx, mem)
	require.NoError(t, err)
	assert.Empty(t, entries, "rolled-back append must leave no entry")

	// The seq counter rolled back too: the next entry gets seq 0.
	var stamped Entry
	err = mem.Update(ctx, func(tx kv.Tx) error {
		var err error
		stamped, err = Append(tx, Entry{CallToken: "tok", Op: report.OpSetGreeting, Caller: "a"})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), stamped.Seq)
}

func TestEntry_EncodeOmitsAbsentFields(t *testing.T) {
	e := Entry{
		Seq:       0,
		CallToken: "call-0001",
		Op:        report.OpOpen,
		Caller:    "olive.near",
	}

	data, err := e.Encode()
	require.NoError(t, err)
	assert.Equal(t,
		`{"call_token":"call-0001","caller":"olive.near","op":"open","seq":0}`,
		string(data))
}

func TestEntry_EncodeDecodeRoundTrip(t *testing.T) {
	id := int64(3)
	fields := report.Fields{
		DoneToday:        "x",
		GoalTomorrow:     "y",
		Blocker:          "z",
		WordAppreciation: "w",
	}
	e := Entry{
		Seq:       5,
		CallToken: "call-0005",
		Op:        report.OpUpdateReport,
		Caller:    "bob.near",
		ReportID:  &id,
		Fields:    &fields,
	}

	data, err := e.Encode()
	require.NoError(t, err)

	decoded, err := DecodeEntry(data)
	require.NoError(t, err)
	assert.Equal(t, e.Seq, decoded.Seq)
	assert.Equal(t, e.Op, decoded.Op)
	assert.Equal(t, e.Caller, decoded.Caller)
	require.NotNil(t, decoded.ReportID)
	assert.Equal(t, id, *decoded.ReportID)
	require.NotNil(t, decoded.Fields)
	assert.Equal(t, fields, *decoded.Fields)
}

func TestUUIDv7Source_TokenShape(t *testing.T) {
	src := UUIDv7Source{}
	a, b := src.Next(), src.Next()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestFixedSource_ReturnsInOrderThenPanics(t *testing.T) {
	src := NewFixedSource("one", "two")
	assert.Equal(t, "one", src.Next())
	assert.Equal(t, "two", src.Next())
	assert.Panics(t, func() { src.Next() })
}
