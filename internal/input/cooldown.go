package input

import "time"

// Cooldown is the single guard shared by every repeat-sensitive navigation
// action. An action gated by it fires at most once per window.
type Cooldown struct {
	duration time.Duration
	last     time.Time
}

// NewCooldown creates a guard that is ready immediately.
func NewCooldown(d time.Duration) *Cooldown {
	return &Cooldown{duration: d}
}

// Ready reports whether a gated action may fire at now.
func (c *Cooldown) Ready(now time.Time) bool {
	if c.last.IsZero() {
		return true
	}
	return now.Sub(c.last) >= c.duration
}

// TryFire fires the guard if ready and reports whether it did.
func (c *Cooldown) TryFire(now time.Time) bool {
	if !c.Ready(now) {
		return false
	}
	c.last = now
	return true
}

// Reset makes the guard ready again.
func (c *Cooldown) Reset() {
	c.last = time.Time{}
}

// SetDuration changes the window length; used on config reload.
func (c *Cooldown) SetDuration(d time.Duration) {
	c.duration = d
}

// Duration returns the window length.
func (c *Cooldown) Duration() time.Duration {
	return c.duration
}
