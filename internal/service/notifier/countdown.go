package notifier

import "fmt"

// State is the lifecycle state of a countdown.
type State int

// Countdown states. Dismissed and Expired are terminal; whichever is
// reached first ends the state machine, and neither is an error.
const (
	StateRunning State = iota
	StateDismissed
	StateExpired
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDismissed:
		return "dismissed"
	case StateExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Urgency is the visual escalation level of the remaining time.
type Urgency int

// Urgency levels and their thresholds in seconds of remaining time.
const (
	UrgencyNormal Urgency = iota
	UrgencyElevated
	UrgencyCritical

	elevatedThresholdSeconds = 10 * 60
	criticalThresholdSeconds = 5 * 60
)

// Countdown is a single-threaded cooperative state machine. It owns its
// state exclusively: ticks and dismissal are delivered by the caller on one
// goroutine, so they never race each other.
type Countdown struct {
	// total is the configured duration in seconds.
	total int
	// remaining is monotonically non-increasing and never negative.
	remaining int
	// state is the current lifecycle state.
	state State
}

// NewCountdown creates a running countdown with the provided total seconds.
func NewCountdown(totalSeconds int) *Countdown {
	if totalSeconds < 0 {
		totalSeconds = 0
	}

	countdown := &Countdown{
		total:     totalSeconds,
		remaining: totalSeconds,
		state:     StateRunning,
	}

	// A zero-length countdown has nothing to present.
	if totalSeconds == 0 {
		countdown.state = StateExpired
	}

	return countdown
}

// Tick consumes one second. Once the remaining time reaches zero the
// countdown expires. Ticks after a terminal state are ignored.
func (c *Countdown) Tick() State {
	if c.state != StateRunning {
		return c.state
	}

	if c.remaining > 0 {
		c.remaining--
	}

	if c.remaining <= 0 {
		c.state = StateExpired
	}

	return c.state
}

// Dismiss ends the countdown early on user request. Dismissal after a
// terminal state is ignored.
func (c *Countdown) Dismiss() State {
	if c.state == StateRunning {
		c.state = StateDismissed
	}

	return c.state
}

// State returns the current lifecycle state.
func (c *Countdown) State() State {
	return c.state
}

// Remaining returns the remaining whole seconds.
func (c *Countdown) Remaining() int {
	return c.remaining
}

// Total returns the configured duration in seconds.
func (c *Countdown) Total() int {
	return c.total
}

// Clock renders the remaining time as minutes:seconds.
func (c *Countdown) Clock() string {
	return fmt.Sprintf("%02d:%02d", c.remaining/60, c.remaining%60)
}

// Urgency classifies the remaining time against the fixed thresholds.
func (c *Countdown) Urgency() Urgency {
	switch {
	case c.remaining <= criticalThresholdSeconds:
		return UrgencyCritical
	case c.remaining <= elevatedThresholdSeconds:
		return UrgencyElevated
	default:
		return UrgencyNormal
	}
}
