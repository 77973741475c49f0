// internal/panel/panel_test.go
package panel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamzrod/gpu-panel/internal/sensor"
)

// ---- fakes ----

type fakeSource struct {
	mu    sync.Mutex
	snaps []sensor.Snapshot // served in order, last repeats
	fail  bool
	reads int

	entered chan struct{} // signalled when a read starts
	hold    chan struct{} // when non-nil, reads wait on it
}

func (f *fakeSource) ReadSnapshot(ctx context.Context) (sensor.Snapshot, bool) {
	if f.entered != nil {
		select {
		case f.entered <- struct{}{}:
		default:
		}
	}
	if f.hold != nil {
		<-f.hold
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.fail || len(f.snaps) == 0 {
		return sensor.Snapshot{}, false
	}
	i := f.reads - 1
	if i >= len(f.snaps) {
		i = len(f.snaps) - 1
	}
	return f.snaps[i], true
}

func (f *fakeSource) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

type recordingSink struct {
	mu        sync.Mutex
	calls     []string
	commits   int
	commitErr error
}

func (r *recordingSink) add(s string) {
	r.mu.Lock()
	r.calls = append(r.calls, s)
	r.mu.Unlock()
}

func (r *recordingSink) SetGaugeValues(fuel, oil, rpm int) {
	r.add(fmt.Sprintf("gauges %d %d %d", fuel, oil, rpm))
}

func (r *recordingSink) SetChannelStatus(ch int, v, i Reading) {
	r.add(fmt.Sprintf("S%d %s %s", ch, v.Format("V", "OFF"), i.Format("A", "-")))
}

func (r *recordingSink) SetBatteryIndicator(full bool) {
	r.add(fmt.Sprintf("battery %t", full))
}

func (r *recordingSink) SetConnectionState(l Link, active bool) {
	r.add(fmt.Sprintf("%s %t", l, active))
}

func (r *recordingSink) Commit() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commits++
	return r.commitErr
}

func (r *recordingSink) reset() {
	r.mu.Lock()
	r.calls = nil
	r.mu.Unlock()
}

func snap(v [3]int, i [3]int, fuel, oil int, rpm uint16) sensor.Snapshot {
	return sensor.Snapshot{Voltages: v, Currents: i, Fuel: fuel, Oil: oil, RPM: rpm}
}

func newTestCycle(t *testing.T, src SnapshotSource, sink Sink, interval time.Duration) *Cycle {
	t.Helper()
	log, _ := logtest.NewNullLogger()
	c, err := New(Config{Interval: interval}, src, sink, log)
	require.NoError(t, err)
	return c
}

// ---- derivation ----

func TestDeriveFrame_LinkGroupA(t *testing.T) {
	absent := DeriveFrame(sensor.Snapshot{}, false)
	assert.False(t, absent.LinkActive(Line1))
	assert.False(t, absent.LinkActive(Line2))

	zero := DeriveFrame(snap([3]int{24, 24, 24}, [3]int{0, 0, 0}, 0, 0, 0), true)
	assert.False(t, zero.LinkActive(Line1))
	assert.False(t, zero.LinkActive(Line2))

	five := DeriveFrame(snap([3]int{24, 24, 24}, [3]int{5, 0, 0}, 0, 0, 0), true)
	assert.True(t, five.LinkActive(Line1))
	assert.True(t, five.LinkActive(Line2))
	assert.False(t, five.LinkActive(Line3))
	assert.False(t, five.LinkActive(Line4))
	assert.False(t, five.LinkActive(Line5))
}

func TestDeriveFrame_LinkGroupsBAndC(t *testing.T) {
	f := DeriveFrame(snap([3]int{}, [3]int{0, 3, 9}, 0, 0, 0), true)

	assert.Equal(t, [NumLinks]bool{false, false, true, true, true}, f.Links)
	assert.Equal(t, 0, Link(0).Channel())
	assert.Equal(t, 3, Line5.Channel())
	assert.False(t, f.LinkActive(Link(6)))
}

func TestDeriveFrame_SnapshotFields(t *testing.T) {
	f := DeriveFrame(snap([3]int{24, 0, 12}, [3]int{5, 0, 1}, 100, 70, 3000), true)

	assert.True(t, f.On)
	assert.True(t, f.Valid)
	assert.Equal(t, sensor.Gauges{Fuel: 100, Oil: 70, RPM: 3000}, f.Gauges)
	assert.True(t, f.BatteryFull)
	assert.Equal(t, Present(0), f.Channel(2).Voltage)
	assert.Equal(t, Present(1), f.Channel(3).Current)
	assert.Equal(t, ChannelStatus{}, f.Channel(4))
}

func TestDeriveFrame_NoSnapshotWhileOn(t *testing.T) {
	f := DeriveFrame(sensor.Snapshot{Fuel: 100}, false)

	assert.True(t, f.On)
	assert.False(t, f.Valid)
	assert.Equal(t, sensor.Gauges{}, f.Gauges)
	assert.False(t, f.BatteryFull)
	for ch := 1; ch <= sensor.NumChannels; ch++ {
		assert.Equal(t, ChannelStatus{Voltage: Absent, Current: Absent}, f.Channel(ch))
	}
}

func TestReading_Format(t *testing.T) {
	assert.Equal(t, "OFF", Absent.Format("V", "OFF"))
	assert.Equal(t, "0A", Present(0).Format("A", "-"))
	assert.False(t, Present(0).Active())
	assert.True(t, Present(5).Active())
}

// ---- tick ----

func TestTick_OneReadPerTickIsConsistent(t *testing.T) {
	src := &fakeSource{snaps: []sensor.Snapshot{
		snap([3]int{24, 25, 26}, [3]int{5, 6, 7}, 80, 60, 300),
		snap([3]int{0, 0, 0}, [3]int{0, 0, 0}, 0, 0, 0),
	}}
	c := newTestCycle(t, src, &recordingSink{}, time.Second)

	rearm, ran := c.Tick(context.Background())
	require.True(t, rearm)
	require.True(t, ran)
	require.Equal(t, 1, src.reads)

	f, n := c.Last()
	require.Equal(t, uint64(1), n)
	// every field comes from the first snapshot, none from the second
	assert.Equal(t, [3]ChannelStatus{
		{Voltage: Present(24), Current: Present(5)},
		{Voltage: Present(25), Current: Present(6)},
		{Voltage: Present(26), Current: Present(7)},
	}, f.Channels)
	assert.Equal(t, sensor.Gauges{Fuel: 80, Oil: 60, RPM: 300}, f.Gauges)
}

func TestTick_OffFrameHasNoStaleState(t *testing.T) {
	src := &fakeSource{snaps: []sensor.Snapshot{
		snap([3]int{24, 24, 24}, [3]int{5, 5, 5}, 100, 60, 3000),
	}}
	sink := &recordingSink{}
	c := newTestCycle(t, src, sink, time.Second)

	c.Tick(context.Background())
	sink.reset()

	c.Power().Set(false)
	rearm, ran := c.Tick(context.Background())
	require.False(t, rearm)
	require.True(t, ran)
	require.Equal(t, 1, src.reads, "no bus read while off")

	f, _ := c.Last()
	require.Equal(t, OffFrame(), f)

	require.Equal(t, []string{
		"gauges 0 0 0",
		"S1 OFF -",
		"S2 OFF -",
		"S3 OFF -",
		"battery false",
		"line1 false",
		"line2 false",
		"line3 false",
		"line4 false",
		"line5 false",
	}, sink.calls)
}

func TestTick_PushOrderAndCommit(t *testing.T) {
	src := &fakeSource{snaps: []sensor.Snapshot{
		snap([3]int{24, 0, 12}, [3]int{5, 0, 0}, 100, 60, 300),
	}}
	sink := &recordingSink{}
	c := newTestCycle(t, src, sink, time.Second)

	c.Tick(context.Background())

	require.Equal(t, []string{
		"gauges 100 60 300",
		"S1 24V 5A",
		"S2 0V 0A",
		"S3 12V 0A",
		"battery true",
		"line1 true",
		"line2 true",
		"line3 false",
		"line4 false",
		"line5 false",
	}, sink.calls)
	require.Equal(t, 1, sink.commits)
}

func TestTick_CommitErrorIsNotFatal(t *testing.T) {
	src := &fakeSource{snaps: []sensor.Snapshot{{}}}
	sink := &recordingSink{commitErr: errors.New("mirror down")}
	log, hook := logtest.NewNullLogger()
	c, err := New(Config{Interval: time.Second}, src, sink, log)
	require.NoError(t, err)

	rearm, ran := c.Tick(context.Background())
	require.True(t, rearm)
	require.True(t, ran)
	require.NotNil(t, hook.LastEntry())
}

func TestTick_SkipIfBusy(t *testing.T) {
	src := &fakeSource{
		snaps:   []sensor.Snapshot{{}},
		entered: make(chan struct{}, 1),
		hold:    make(chan struct{}),
	}
	c := newTestCycle(t, src, &recordingSink{}, time.Second)

	done := make(chan struct{})
	go func() {
		c.Tick(context.Background())
		close(done)
	}()
	<-src.entered

	rearm, ran := c.Tick(context.Background())
	require.False(t, ran)
	require.True(t, rearm)

	close(src.hold)
	<-done

	_, n := c.Last()
	require.Equal(t, uint64(1), n)
}

func TestTick_SkipWhilePowerOffStillRearms(t *testing.T) {
	src := &fakeSource{
		snaps:   []sensor.Snapshot{{}},
		entered: make(chan struct{}, 1),
		hold:    make(chan struct{}),
	}
	sink := &recordingSink{}
	c := newTestCycle(t, src, sink, time.Second)

	done := make(chan struct{})
	go func() {
		c.Tick(context.Background())
		close(done)
	}()
	<-src.entered
	c.Power().Set(false)

	rearm, ran := c.Tick(context.Background())
	require.False(t, ran)
	require.True(t, rearm, "a skipped tick must leave the off frame to the next one")

	close(src.hold)
	<-done

	rearm, ran = c.Tick(context.Background())
	require.True(t, ran)
	require.False(t, rearm)
	f, _ := c.Last()
	require.Equal(t, OffFrame(), f)
}

func TestTick_CancelDuringReadPushesNothing(t *testing.T) {
	src := &fakeSource{
		snaps:   []sensor.Snapshot{snap([3]int{24, 24, 24}, [3]int{}, 10, 10, 10)},
		entered: make(chan struct{}, 1),
		hold:    make(chan struct{}),
	}
	sink := &recordingSink{}
	c := newTestCycle(t, src, sink, time.Second)
	ctx, cancel := context.WithCancel(context.Background())

	type result struct{ rearm, ran bool }
	out := make(chan result, 1)
	go func() {
		rearm, ran := c.Tick(ctx)
		out <- result{rearm, ran}
	}()
	<-src.entered
	cancel()
	close(src.hold)

	r := <-out
	require.False(t, r.ran)
	require.False(t, r.rearm)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Empty(t, sink.calls)
	require.Zero(t, sink.commits)
	_, n := c.Last()
	require.Zero(t, n)
}

// ---- schedule ----

func TestCycle_RunsUntilPowerOff(t *testing.T) {
	src := &fakeSource{snaps: []sensor.Snapshot{
		snap([3]int{24, 24, 24}, [3]int{5, 5, 5}, 50, 50, 1000),
	}}
	c := newTestCycle(t, src, &recordingSink{}, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.True(t, c.Start(ctx))
	require.False(t, c.Start(ctx), "second start is a no-op")

	require.Eventually(t, func() bool {
		_, n := c.Last()
		return n >= 3
	}, time.Second, time.Millisecond)

	c.Power().Set(false)
	require.Eventually(t, func() bool { return !c.Running() }, time.Second, time.Millisecond)

	f, n := c.Last()
	require.Equal(t, OffFrame(), f)

	// stays stopped: no self-resume
	time.Sleep(20 * time.Millisecond)
	_, n2 := c.Last()
	require.Equal(t, n, n2)

	// external restart
	c.Power().Set(true)
	require.True(t, c.Start(ctx))
	require.Eventually(t, func() bool {
		f, _ := c.Last()
		return f.On && f.Valid
	}, time.Second, time.Millisecond)
}

func TestCycle_PowerOffMidTickTakesEffectNextTick(t *testing.T) {
	src := &fakeSource{
		snaps:   []sensor.Snapshot{snap([3]int{24, 24, 24}, [3]int{5, 0, 0}, 100, 40, 900)},
		entered: make(chan struct{}, 1),
		hold:    make(chan struct{}),
	}
	sink := &recordingSink{}
	c := newTestCycle(t, src, sink, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.True(t, c.Start(ctx))
	<-src.entered
	c.Power().Set(false)
	close(src.hold)

	require.Eventually(t, func() bool { return !c.Running() }, time.Second, time.Millisecond)

	f, n := c.Last()
	require.Equal(t, OffFrame(), f)
	require.Equal(t, uint64(2), n)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	// one push is 10 calls: gauges, 3 channels, battery, 5 links
	require.Len(t, sink.calls, 20)
	assert.Equal(t, "gauges 100 40 900", sink.calls[0], "the in-flight tick completes with its reading")
	assert.Equal(t, "battery true", sink.calls[4])
	assert.Equal(t, "line1 true", sink.calls[5])
	assert.Equal(t, "gauges 0 0 0", sink.calls[10])
	assert.Equal(t, "S1 OFF -", sink.calls[11])
	assert.Equal(t, "battery false", sink.calls[14])
	assert.Equal(t, "line1 false", sink.calls[15])
	assert.Equal(t, 2, sink.commits)
}

func TestCycle_ReadFailureKeepsRunning(t *testing.T) {
	src := &fakeSource{}
	src.setFail(true)
	c := newTestCycle(t, src, &recordingSink{}, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c.Start(ctx)
	require.Eventually(t, func() bool {
		_, n := c.Last()
		return n >= 2
	}, time.Second, time.Millisecond)

	f, _ := c.Last()
	require.True(t, f.On)
	require.False(t, f.Valid)
	require.True(t, c.Running())
}

func TestCycle_ContextCancelStops(t *testing.T) {
	src := &fakeSource{snaps: []sensor.Snapshot{{}}}
	c := newTestCycle(t, src, &recordingSink{}, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	c.Start(ctx)
	cancel()
	require.Eventually(t, func() bool { return !c.Running() }, time.Second, time.Millisecond)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{}, nil, &recordingSink{}, nil)
	require.Error(t, err)
	_, err = New(Config{}, &fakeSource{}, nil, nil)
	require.Error(t, err)
	_, err = New(Config{Interval: -time.Second}, &fakeSource{}, &recordingSink{}, nil)
	require.Error(t, err)

	c, err := New(Config{}, &fakeSource{}, &recordingSink{}, nil)
	require.NoError(t, err)
	require.Equal(t, DefaultInterval, c.cfg.Interval)
}

func TestPowerState(t *testing.T) {
	var p PowerState
	require.True(t, p.On())
	require.False(t, p.Toggle())
	require.False(t, p.On())
	require.True(t, p.Toggle())
	p.Set(false)
	require.False(t, p.On())
}

func TestCycle_TogglePowerRestarts(t *testing.T) {
	src := &fakeSource{snaps: []sensor.Snapshot{{Fuel: 100}}}
	c := newTestCycle(t, src, &recordingSink{}, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c.Start(ctx)
	require.False(t, c.TogglePower(ctx))
	require.Eventually(t, func() bool { return !c.Running() }, time.Second, time.Millisecond)

	require.True(t, c.TogglePower(ctx))
	require.Eventually(t, func() bool {
		f, _ := c.Last()
		return f.BatteryFull
	}, time.Second, time.Millisecond)
	require.True(t, c.Running())
}
