package gateway

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// activeTimer pairs a round timer with the stop signal for its watcher
// goroutine, so replacing or cancelling a timer also releases the watcher.
type activeTimer struct {
	timer clockwork.Timer
	stop  chan struct{}
}

// roundScheduler runs one one-shot timer per room for the active round. A new
// round atomically replaces any timer already running for the room, and
// closing a room cancels its timer.
type roundScheduler struct {
	clock clockwork.Clock

	activeTimersMu sync.Mutex
	activeTimers   map[string]*activeTimer

	// Invoked when a round timer fires.
	onExpire func(roomID string)
}

func newRoundScheduler(clock clockwork.Clock, onExpire func(roomID string)) *roundScheduler {
	return &roundScheduler{
		clock:        clock,
		activeTimers: make(map[string]*activeTimer),
		onExpire:     onExpire,
	}
}

// schedule arms the round timer for a room, replacing any existing one.
func (s *roundScheduler) schedule(roomID string, duration time.Duration) {
	at := &activeTimer{
		timer: s.clock.NewTimer(duration),
		stop:  make(chan struct{}),
	}
	s.replaceTimer(roomID, at)

	go func() {
		select {
		case <-at.timer.Chan():
			s.removeTimer(roomID, at)
			s.onExpire(roomID)
			log.Debug().
				Str("room_id", roomID).
				Msg("round timer fired")
		case <-at.stop:
			// Replaced or cancelled; whoever closed stop already stopped the
			// timer.
		}
	}()

	log.Debug().
		Str("room_id", roomID).
		Dur("duration", duration).
		Msg("scheduled round timer")
}

// cancel stops and removes the timer for a room, if any, releasing its
// watcher.
func (s *roundScheduler) cancel(roomID string) {
	s.activeTimersMu.Lock()
	defer s.activeTimersMu.Unlock()

	if at, exists := s.activeTimers[roomID]; exists {
		stopAndDrainTimer(at.timer)
		close(at.stop)
		delete(s.activeTimers, roomID)
		log.Debug().Str("room_id", roomID).Msg("cancelled round timer")
	}
}

// replaceTimer atomically replaces a room's timer, cancelling any existing
// one so a stale timer can never fire for a newer round and its watcher does
// not linger.
func (s *roundScheduler) replaceTimer(roomID string, newTimer *activeTimer) {
	s.activeTimersMu.Lock()
	defer s.activeTimersMu.Unlock()

	if existing, exists := s.activeTimers[roomID]; exists {
		stopAndDrainTimer(existing.timer)
		close(existing.stop)
		log.Debug().Str("room_id", roomID).Msg("replaced existing round timer")
	}
	s.activeTimers[roomID] = newTimer
}

// removeTimer clears a fired timer, but only if it is still the room's
// current one; a newer round's timer stays armed.
func (s *roundScheduler) removeTimer(roomID string, fired *activeTimer) {
	s.activeTimersMu.Lock()
	defer s.activeTimersMu.Unlock()
	if s.activeTimers[roomID] == fired {
		delete(s.activeTimers, roomID)
	}
}

// stopAndDrainTimer safely stops a timer and drains its channel to prevent
// goroutine leaks, per the time.Timer.Stop() documentation pattern.
func stopAndDrainTimer(timer clockwork.Timer) {
	if !timer.Stop() {
		select {
		case <-timer.Chan():
		default:
		}
	}
}
