package emulator

// Scheduler event callback. `param` is whatever the caller passed to
// AddEvent, `overshoot` is how many cycles late the event fired (always
// <= 0; exactly 0 when the countdown hit zero precisely)
type SchedulerFunc func(param int32, overshoot int64)

// A single scheduled event. `Remaining` reaching zero means it's due to
// fire on the next ProcessEvents call
type schedulerEvent struct {
	id        uint64
	param     int32
	remaining int64
}

// Deterministic, event-driven scheduler over CPU cycles. Peripherals
// register a callback once at startup and get back a stable handle, then
// schedule and cancel events against that handle for as long as the
// emulator runs. There is no real-time wait anywhere in here: every
// peripheral's forward progress is purely a function of how many CPU
// cycles have elapsed, which is what gives the core bit-identical replays
type Scheduler struct {
	funcs  []SchedulerFunc
	live   []schedulerEvent
	staged []schedulerEvent
}

func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Registers a callback and returns a stable id for AddEvent/RemoveEvent
func (s *Scheduler) RegisterEvent(fn SchedulerFunc) uint64 {
	s.funcs = append(s.funcs, fn)
	return uint64(len(s.funcs) - 1)
}

// Enqueues an event. Safe to call from within a callback: it lands in the
// staging queue and is merged into the live queue only after the current
// drain finishes, so it can never fire within the same ProcessEvents call
func (s *Scheduler) AddEvent(id uint64, param int32, cyclesUntil int64) {
	if cyclesUntil < 0 {
		panicFmt("scheduler: AddEvent with negative cyclesUntil (%d)", cyclesUntil)
	}
	s.staged = append(s.staged, schedulerEvent{id: id, param: param, remaining: cyclesUntil})
}

// Drops every live event registered under `id`. Events still in the
// staging queue (added this drain) are not affected, matching the "only
// affects future events" guarantee CDROM pause relies on
func (s *Scheduler) RemoveEvent(id uint64) {
	kept := s.live[:0]
	for _, ev := range s.live {
		if ev.id != id {
			kept = append(kept, ev)
		}
	}
	s.live = kept
}

// Returns true if any live event with `id` is pending
func (s *Scheduler) HasEvent(id uint64) bool {
	for _, ev := range s.live {
		if ev.id == id {
			return true
		}
	}
	return false
}

// Decrements every live event by `elapsed`, fires everything that reached
// zero (in queue order), then merges the staging queue into the live
// queue. Fired events are removed before their callback runs, so a
// callback that re-adds itself schedules a brand-new event rather than
// reviving the one that just fired
func (s *Scheduler) ProcessEvents(elapsed int64) {
	if elapsed < 0 {
		panicFmt("scheduler: ProcessEvents with negative elapsed (%d)", elapsed)
	}

	due := s.live[:0:0]
	remaining := s.live[:0:0]

	for _, ev := range s.live {
		ev.remaining -= elapsed
		if ev.remaining <= 0 {
			due = append(due, ev)
		} else {
			remaining = append(remaining, ev)
		}
	}
	s.live = remaining

	for _, ev := range due {
		s.funcs[ev.id](ev.param, ev.remaining)
	}

	if len(s.staged) > 0 {
		s.live = append(s.live, s.staged...)
		s.staged = s.staged[:0]
	}
}

// Returns the number of cycles until the closest live deadline, or -1 if
// the queue is empty. Nothing in the tree calls it: the run loop ticks the
// interconnect once per instruction
func (s *Scheduler) CyclesUntilNextEvent() int64 {
	next := int64(-1)
	for _, ev := range s.live {
		if next == -1 || ev.remaining < next {
			next = ev.remaining
		}
	}
	return next
}
