// Package review drives one review pass over a user's due queue.
//
// The Engine is an explicit state machine:
//
//	Idle -> Loading -> Empty | Failed | Presenting(0)
//	Presenting(i) -> Revealing(i)            (Reveal)
//	Revealing(i)  -> Submitting(i, g)        (Submit)
//	Submitting(i, g) -> Presenting(i+1)      (grade recorded, more cards)
//	Submitting(i, g) -> Completed            (grade recorded, last card)
//	Submitting(i, g) -> Revealing(i)         (grade not recorded)
//
// The cursor only moves when the server has accepted a grade. Grades pass
// through to the server untouched; the engine never reorders, skips or
// batches them. At most one request is in flight: any transition attempted
// meanwhile fails with ErrBusy.
package review
