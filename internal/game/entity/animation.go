package entity

// Animation cycles through a sprite sheet's frames on a fixed interval,
// independent of the command queue.
type Animation struct {
	Sheet    string
	Frames   int
	Interval float64

	frame int
	timer float64
}

// Advance adds elapsed seconds to the frame timer and steps at most one frame,
// carrying the remainder forward.
func (a *Animation) Advance(elapsed float64) {
	if a.Frames <= 1 || a.Interval <= 0 {
		return
	}
	a.timer += elapsed
	if a.timer < a.Interval {
		return
	}
	a.timer -= a.Interval
	a.frame++
	if a.frame >= a.Frames {
		a.frame = 0
	}
}

// Frame returns the current frame index.
func (a *Animation) Frame() int { return a.frame }
