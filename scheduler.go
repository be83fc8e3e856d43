package flicker

import (
	"sync"
	"sync/atomic"
	"time"
)

// MinFPS and MaxFPS bound Scheduler's configured rate, per spec.md §4.6.
const (
	MinFPS     = 1
	MaxFPS     = 240
	DefaultFPS = 60
)

// SchedulerStats snapshots the scheduler's running counters.
type SchedulerStats struct {
	RenderedFrames uint64
	SkippedFrames  uint64
	SlowFrames     uint64
	AvgRenderUS    int64
	LastFrameTimes []time.Duration // most recent frames, oldest first
}

const frameTimeWindow = 32

// Scheduler triggers at most one render per tick interval, skips ticks
// while the buffer is clean, and compensates for drift so the achieved
// FPS stays near target over time. Grounded on bubbletea's
// standardRenderer (other_examples/ 58fe5d33_charmbracelet-bubbletea
// standard_renderer.go): a time.Ticker-driven loop with a dirty flag and
// a separate render callback, generalized with drift compensation and
// stats the teacher's renderChan never tracked.
type Scheduler struct {
	fps      int
	interval time.Duration
	render   func()

	dirty  atomic.Bool
	paused atomic.Bool

	mu             sync.Mutex
	nextDeadline   time.Time
	rendered       uint64
	skipped        uint64
	slow           uint64
	frameTimes     []time.Duration
	frameTimeTotal time.Duration

	stopCh chan struct{}
	timer  *time.Timer
}

// NewScheduler returns a scheduler ticking at fps (clamped to
// MinFPS..MaxFPS) that calls render on each non-skipped tick.
func NewScheduler(fps int, render func()) *Scheduler {
	if fps < MinFPS {
		fps = MinFPS
	}
	if fps > MaxFPS {
		fps = MaxFPS
	}
	return &Scheduler{
		fps:      fps,
		interval: time.Second / time.Duration(fps),
		render:   render,
	}
}

// MarkDirty signals that a render is needed on the next tick. Safe to
// call from any goroutine.
func (s *Scheduler) MarkDirty() { s.dirty.Store(true) }

// Start begins ticking. Start must be called once.
func (s *Scheduler) Start() {
	s.mu.Lock()
	s.nextDeadline = time.Now().Add(s.interval)
	s.stopCh = make(chan struct{})
	s.timer = time.NewTimer(s.interval)
	s.mu.Unlock()
	go s.loop()
}

// Stop halts ticking permanently.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.stopCh != nil {
		close(s.stopCh)
		s.stopCh = nil
	}
	s.mu.Unlock()
}

// Pause suspends rendering. Ticks keep firing on schedule while paused,
// but they neither render nor count as skipped frames; the dirty flag is
// kept for the first tick after Resume.
func (s *Scheduler) Pause() { s.paused.Store(true) }

// Resume reschedules ticking from now + interval.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	s.nextDeadline = time.Now().Add(s.interval)
	if s.timer != nil {
		s.timer.Reset(s.interval)
	}
	s.mu.Unlock()
	s.paused.Store(false)
}

// RenderImmediate clears the dirty flag and runs the render callback
// synchronously, bypassing the tick schedule. Used for forced redraws
// (e.g. after a resize).
func (s *Scheduler) RenderImmediate() {
	s.dirty.Store(false)
	s.runRender()
}

// Stats returns a snapshot of the scheduler's counters.
func (s *Scheduler) Stats() SchedulerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	var avg int64
	if n := len(s.frameTimes); n > 0 {
		avg = s.frameTimeTotal.Microseconds() / int64(n)
	}
	times := make([]time.Duration, len(s.frameTimes))
	copy(times, s.frameTimes)
	return SchedulerStats{
		RenderedFrames: s.rendered,
		SkippedFrames:  s.skipped,
		SlowFrames:     s.slow,
		AvgRenderUS:    avg,
		LastFrameTimes: times,
	}
}

func (s *Scheduler) loop() {
	for {
		s.mu.Lock()
		timer := s.timer
		s.mu.Unlock()
		if timer == nil {
			return
		}
		select {
		case <-s.stopCh:
			timer.Stop()
			return
		case <-timer.C:
			s.tick()
		}
	}
}

// tick implements spec.md §4.6's procedure: pause check, dirty check,
// render, slow-frame accounting, and drift-compensated rescheduling.
func (s *Scheduler) tick() {
	if s.paused.Load() {
		s.reschedule(s.interval)
		return
	}
	if !s.dirty.Swap(false) {
		s.mu.Lock()
		s.skipped++
		s.mu.Unlock()
		s.reschedule(s.interval)
		return
	}

	elapsed := s.runRender()

	s.mu.Lock()
	s.rendered++
	if elapsed > s.interval {
		s.slow++
	}
	s.frameTimes = append(s.frameTimes, elapsed)
	s.frameTimeTotal += elapsed
	if len(s.frameTimes) > frameTimeWindow {
		s.frameTimeTotal -= s.frameTimes[0]
		s.frameTimes = s.frameTimes[1:]
	}

	now := time.Now()
	next := s.nextDeadline.Add(s.interval)
	for now.After(next) {
		// Catch up by skipping missed intervals rather than firing
		// multiple renders back-to-back.
		next = next.Add(s.interval)
	}
	s.nextDeadline = next
	wait := next.Sub(now)
	if wait < time.Millisecond {
		wait = time.Millisecond
	}
	s.mu.Unlock()

	s.rescheduleAt(wait)
}

func (s *Scheduler) reschedule(d time.Duration) {
	s.mu.Lock()
	s.nextDeadline = s.nextDeadline.Add(s.interval)
	s.mu.Unlock()
	s.rescheduleAt(d)
}

func (s *Scheduler) rescheduleAt(d time.Duration) {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Reset(d)
	}
	s.mu.Unlock()
}

func (s *Scheduler) runRender() time.Duration {
	start := time.Now()
	if s.render != nil {
		s.render()
	}
	return time.Since(start)
}
