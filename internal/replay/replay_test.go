package replay

import (
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srg/neuroband/internal/packet"
)

func TestDelay(t *testing.T) {
	rec := func(ts int64) Record { return Record{TimestampMs: ts} }

	tests := []struct {
		name string
		cur  Record
		next Record
		want time.Duration
	}{
		{name: "recorded spacing", cur: rec(0), next: rec(4), want: 4 * time.Millisecond},
		{name: "zero spacing", cur: rec(10), next: rec(10), want: 0},
		{name: "wraparound never negative", cur: rec(10), next: rec(0), want: DefaultTick},
		{name: "missing current timestamp", cur: rec(-1), next: rec(4), want: DefaultTick},
		{name: "missing next timestamp", cur: rec(4), next: rec(-1), want: DefaultTick},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Delay(tt.cur, tt.next))
		})
	}
}

func TestLoadRecords(t *testing.T) {
	t.Run("parses header and rows", func(t *testing.T) {
		data := "timestampMs,ch0,ch1,ch2,ch3\n0,100,200,300,400\n4,101,201,301,401\n10,102,202,302,402\n"
		records, err := LoadRecords(strings.NewReader(data))
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, int64(0), records[0].TimestampMs)
		assert.Equal(t, int64(10), records[2].TimestampMs)
		assert.Equal(t, [Channels]uint16{100, 200, 300, 400}, records[0].Samples)
	})

	t.Run("empty timestamp marks row as untimed", func(t *testing.T) {
		data := "timestampMs,ch0,ch1,ch2,ch3\n,1,2,3,4\n"
		records, err := LoadRecords(strings.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, int64(-1), records[0].TimestampMs)
	})

	t.Run("fractional samples rounded", func(t *testing.T) {
		data := "timestampMs,ch0,ch1,ch2,ch3\n0,1.4,1.5,4095,9999\n"
		records, err := LoadRecords(strings.NewReader(data))
		require.NoError(t, err)
		assert.Equal(t, [Channels]uint16{1, 2, 4095, 4095}, records[0].Samples)
	})

	t.Run("header only", func(t *testing.T) {
		_, err := LoadRecords(strings.NewReader("timestampMs,ch0,ch1,ch2,ch3\n"))
		assert.Error(t, err)
	})

	t.Run("wrong field count", func(t *testing.T) {
		_, err := LoadRecords(strings.NewReader("h1,h2\n1,2\n"))
		assert.Error(t, err)
	})

	t.Run("non-numeric sample", func(t *testing.T) {
		_, err := LoadRecords(strings.NewReader("timestampMs,ch0,ch1,ch2,ch3\n0,a,2,3,4\n"))
		assert.Error(t, err)
	})
}

func TestEngine_FeedsDecodableFrames(t *testing.T) {
	records := []Record{
		{TimestampMs: 0, Samples: [Channels]uint16{0xABC, 1, 2, 3}},
		{TimestampMs: 2, Samples: [Channels]uint16{4, 5, 6, 7}},
	}

	var mu sync.Mutex
	type fed struct {
		channel int
		payload []byte
	}
	var got []fed

	eng := NewEngine(records, func(ch int, payload []byte) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, fed{channel: ch, payload: payload})
	}, func() bool { return true }, nil)

	eng.Start()
	defer eng.Stop()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) >= Channels
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	first := got[:Channels]
	for ch, f := range first {
		assert.Equal(t, ch, f.channel)
		samples := packet.EEG12(f.payload)
		require.Len(t, samples, 2)
		assert.Equal(t, records[0].Samples[ch], samples[0])
	}
}

func TestEngine_StopsWhenInactive(t *testing.T) {
	records := []Record{{TimestampMs: 0}, {TimestampMs: 1}}

	var feeds atomic.Int64
	active := atomic.Bool{}
	active.Store(true)

	eng := NewEngine(records, func(int, []byte) {
		feeds.Add(1)
	}, active.Load, nil)

	eng.Start()
	require.Eventually(t, func() bool { return feeds.Load() >= Channels }, time.Second, time.Millisecond)

	active.Store(false)
	time.Sleep(20 * time.Millisecond)
	after := feeds.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, feeds.Load(), "no feeds after the session goes inactive")
}

func TestEngine_StopCancelsSynchronously(t *testing.T) {
	records := []Record{{TimestampMs: 0}}
	var feeds atomic.Int64
	eng := NewEngine(records, func(int, []byte) { feeds.Add(1) }, func() bool { return true }, nil)

	eng.Start()
	require.Eventually(t, func() bool { return feeds.Load() > 0 }, time.Second, time.Millisecond)

	eng.Stop()
	settled := feeds.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, settled, feeds.Load())

	// Restart after stop is a no-op.
	eng.Start()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, settled, feeds.Load())
}

func TestEngine_LoopsWithDefaultDelayAtWrap(t *testing.T) {
	// A single-row dataset wraps every tick, so sustained feeding proves
	// the wrap delay is the positive default rather than a negative value
	// (which would panic time.AfterFunc into firing immediately forever).
	records := []Record{{TimestampMs: 10, Samples: [Channels]uint16{9, 9, 9, 9}}}
	var feeds atomic.Int64
	eng := NewEngine(records, func(int, []byte) { feeds.Add(1) }, func() bool { return true }, nil)

	start := time.Now()
	eng.Start()
	defer eng.Stop()

	require.Eventually(t, func() bool { return feeds.Load() >= 3*Channels }, time.Second, time.Millisecond)
	assert.GreaterOrEqual(t, time.Since(start), 2*DefaultTick)
}
