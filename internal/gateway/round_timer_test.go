package gateway

import (
	"runtime"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler() (*roundScheduler, *clockwork.FakeClock, chan string) {
	clock := clockwork.NewFakeClock()
	fired := make(chan string, 16)
	s := newRoundScheduler(clock, func(roomID string) {
		fired <- roomID
	})
	return s, clock, fired
}

func expectFire(t *testing.T, fired chan string, roomID string) {
	t.Helper()
	select {
	case got := <-fired:
		assert.Equal(t, roomID, got)
	case <-time.After(2 * time.Second):
		t.Fatal("round timer did not fire")
	}
}

func expectNoFire(t *testing.T, fired chan string) {
	t.Helper()
	select {
	case got := <-fired:
		t.Fatalf("unexpected round timer fire for %q", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRoundTimerFiresAfterDuration(t *testing.T) {
	s, clock, fired := newTestScheduler()

	s.schedule("room-A", time.Minute)

	clock.Advance(30 * time.Second)
	expectNoFire(t, fired)

	clock.Advance(30 * time.Second)
	expectFire(t, fired, "room-A")

	// One-shot: nothing more fires for this room.
	clock.Advance(time.Hour)
	expectNoFire(t, fired)
}

func TestScheduleReplacesExistingTimer(t *testing.T) {
	s, clock, fired := newTestScheduler()

	s.schedule("room-A", time.Minute)
	s.schedule("room-A", 2*time.Minute)

	// The first round's deadline passes without a fire: only the
	// replacement timer is armed.
	clock.Advance(time.Minute)
	expectNoFire(t, fired)

	clock.Advance(time.Minute)
	expectFire(t, fired, "room-A")
	expectNoFire(t, fired)
}

func TestCancelStopsTimer(t *testing.T) {
	s, clock, fired := newTestScheduler()

	s.schedule("room-A", time.Minute)
	s.cancel("room-A")

	clock.Advance(time.Hour)
	expectNoFire(t, fired)
}

func TestCancelUnknownRoomIsNoop(t *testing.T) {
	s, _, _ := newTestScheduler()
	s.cancel("nope")
}

func TestTimersAreIndependentPerRoom(t *testing.T) {
	s, clock, fired := newTestScheduler()

	s.schedule("room-A", time.Minute)
	s.schedule("room-B", 2*time.Minute)
	s.cancel("room-A")

	clock.Advance(2 * time.Minute)
	expectFire(t, fired, "room-B")
	expectNoFire(t, fired)
}

func TestReplacedAndCancelledTimersReleaseWatchers(t *testing.T) {
	s, _, _ := newTestScheduler()

	before := runtime.NumGoroutine()

	for i := 0; i < 100; i++ {
		s.schedule("room-A", time.Hour)
	}
	s.cancel("room-A")

	// Every replaced watcher and the final cancelled one must exit; only
	// scheduling leftovers from the runtime itself may remain.
	require.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before+2
	}, 2*time.Second, 10*time.Millisecond,
		"replaced round timers must not leave watcher goroutines behind")
}
