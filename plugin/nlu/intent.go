// Package nlu converts free-form Russian utterances into structured
// calendar intents.
package nlu

import "time"

// Kind is the operation class of a recognized intent.
type Kind int

const (
	// KindUnknown is for unrecognized utterances.
	KindUnknown Kind = iota
	// KindCreate creates a new event or reminder.
	KindCreate
	// KindList asks for the schedule in a time window.
	KindList
	// KindMove reschedules an existing event.
	KindMove
	// KindDelete removes an existing event.
	KindDelete
)

// String returns the string representation of Kind.
func (k Kind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindList:
		return "list"
	case KindMove:
		return "move"
	case KindDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Intent is the single output of intent resolution. Only the fields
// relevant to Kind are populated; absence is expressed with nil, never
// with an error. An Intent is never mutated after Classify returns it.
type Intent struct {
	Kind Kind

	// Create
	Title  string
	Start  *time.Time
	End    *time.Time
	AllDay bool

	// List
	RangeStart *time.Time
	RangeEnd   *time.Time

	// Move / Delete. Selector is the lowercased full utterance used as a
	// substring matcher against event titles.
	Selector string
	NewStart *time.Time
	NewEnd   *time.Time
}
