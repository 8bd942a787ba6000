package resource

// State is the tracked status of one mutable GPU resource: whether it
// has ever been written, currently holds data an operation can reuse, or
// has been invalidated by a later write to a resource it was derived
// from (spec.md §4.5's resource-state machine, implemented — per
// spec.md §9's design note — as a tagged enum with total transitions
// rather than encoded in the type system).
type State int

const (
	// Unwritten means the resource has never received data.
	Unwritten State = iota
	// Written means the resource holds data an operation may reuse.
	Written
	// Stale means the resource's data no longer reflects the current
	// computation and must be refreshed before reuse.
	Stale
)

func (s State) String() string {
	switch s {
	case Unwritten:
		return "Unwritten"
	case Written:
		return "Written"
	case Stale:
		return "Stale"
	default:
		return "unknown"
	}
}

// Tracker holds the State of every named resource a Dispatcher owns.
// Resources not yet registered read as Unwritten.
type Tracker struct {
	states map[string]State
}

// NewTracker returns a tracker with every resource in names initialized
// to Unwritten.
func NewTracker(names ...string) *Tracker {
	t := &Tracker{states: make(map[string]State, len(names))}
	for _, n := range names {
		t.states[n] = Unwritten
	}
	return t
}

// State returns a resource's current tracked state.
func (t *Tracker) State(name string) State {
	return t.states[name]
}

// MarkWritten transitions a resource to Written after an operation has
// just populated it, and marks every resource it lists as derived-from
// Stale, since their contents were computed from data the write just
// replaced.
func (t *Tracker) MarkWritten(name string, invalidates ...string) {
	t.states[name] = Written
	for _, dep := range invalidates {
		if dep == name {
			continue
		}
		t.states[dep] = Stale
	}
}

// RequireFreshOrProvided enforces spec.md §4.6's "at least one of X / Y
// must be provided or Written" rule: reuse is permitted only when the
// resource is Written (not Stale, not Unwritten) and no fresh input was
// supplied by the caller; a caller-supplied input always satisfies the
// requirement regardless of tracked state.
func (t *Tracker) RequireFreshOrProvided(name string, provided bool) error {
	if provided {
		return nil
	}
	if t.State(name) == Written {
		return nil
	}
	return &MissingInputForReuseError{Resource: name}
}

// MissingInputForReuseError reports that an operation needed to reuse a
// cached GPU resource, but that resource's tracked state is Stale or
// Unwritten and no fresh input was supplied.
type MissingInputForReuseError struct {
	Resource string
}

// Error returns spec.md §4.5's exact tie-break message; Resource is kept
// on the struct for callers that want to log which resource triggered
// it, not embedded in the message itself.
func (e *MissingInputForReuseError) Error() string {
	return "an input must be provided as there is none to reuse"
}
