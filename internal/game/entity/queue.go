package entity

import "github.com/gammazero/deque"

// Queue is an entity's pending command deque. Commands are consumed from the
// front; higher-level commands expand by pushing primitives onto the front.
type Queue struct {
	d deque.Deque[Command]
}

// Len returns the number of pending commands.
func (q *Queue) Len() int { return q.d.Len() }

// PushBack appends cmd to the end of the queue.
func (q *Queue) PushBack(cmd Command) { q.d.PushBack(cmd) }

// PushFront inserts cmd ahead of every pending command.
func (q *Queue) PushFront(cmd Command) { q.d.PushFront(cmd) }

// PopFront removes and returns the front command.
//
// Precondition: Len() > 0.
func (q *Queue) PopFront() Command { return q.d.PopFront() }

// Front returns the front command without removing it.
//
// Postcondition: Returns (nil, false) when the queue is empty.
func (q *Queue) Front() (Command, bool) {
	if q.d.Len() == 0 {
		return nil, false
	}
	return q.d.Front(), true
}

// Clear discards every pending command.
func (q *Queue) Clear() { q.d.Clear() }

// Commands returns a snapshot of the queue, front first.
func (q *Queue) Commands() []Command {
	out := make([]Command, q.d.Len())
	for i := range out {
		out[i] = q.d.At(i)
	}
	return out
}
