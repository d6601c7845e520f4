package auth

import "encoding/json"

type state uint8

const (
	stateUnknown state = iota
	stateKnown
	stateAbsent
)

// Owner is the resolved identity scoping every persisted record. The zero
// value is Unknown: nothing has been read yet.
type Owner struct {
	state state
	id    string
}

func Unknown() Owner { return Owner{} }

// Absent means the user is logged out.
func Absent() Owner { return Owner{state: stateAbsent} }

// Known returns a concrete owner; an empty id is treated as Absent.
func Known(id string) Owner {
	if id == "" {
		return Absent()
	}
	return Owner{state: stateKnown, id: id}
}

func (o Owner) ID() string       { return o.id }
func (o Owner) IsKnown() bool    { return o.state == stateKnown }
func (o Owner) IsAbsent() bool   { return o.state == stateAbsent }
func (o Owner) IsUnknown() bool  { return o.state == stateUnknown }
func (o Owner) IsResolved() bool { return o.state != stateUnknown }

func (o Owner) String() string {
	switch o.state {
	case stateKnown:
		return o.id
	case stateAbsent:
		return "<absent>"
	default:
		return "<unknown>"
	}
}

func (o Owner) MarshalJSON() ([]byte, error) {
	out := struct {
		State string `json:"state"`
		ID    string `json:"id,omitempty"`
	}{ID: o.id}
	switch o.state {
	case stateKnown:
		out.State = "known"
	case stateAbsent:
		out.State = "absent"
	default:
		out.State = "unknown"
	}
	return json.Marshal(out)
}
