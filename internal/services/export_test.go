package services

import "time"

// SetClock replaces the board's clock.
func (b *Board) SetClock(now func() time.Time) {
	b.now = now
}
