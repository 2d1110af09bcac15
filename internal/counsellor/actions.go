package counsellor

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Action type names on the wire.
const (
	TypeShortlistUniversity = "shortlist_university"
	TypeLockUniversity      = "lock_university"
	TypeCreateTask          = "create_task"
	TypeNone                = "none"
	TypeUnknown             = "unknown"
)

// Action is one decoded instruction from the reasoning provider. The set of
// implementations is closed; the executor switches over all of them.
type Action interface {
	Type() string
	isAction()
}

// ShortlistUniversity adds a university to the shortlist. A zero id means
// the provider omitted it.
type ShortlistUniversity struct{ UniversityID int64 }

// LockUniversity commits to a university and generates its task batch.
type LockUniversity struct{ UniversityID int64 }

// CreateTask adds a free-form task.
type CreateTask struct {
	Title       string
	Description string
}

// NoAction is an explicit "none".
type NoAction struct{}

// UnknownAction carries a type the engine does not recognise.
type UnknownAction struct{ Kind string }

func (ShortlistUniversity) Type() string { return TypeShortlistUniversity }
func (LockUniversity) Type() string      { return TypeLockUniversity }
func (CreateTask) Type() string          { return TypeCreateTask }
func (NoAction) Type() string            { return TypeNone }
func (u UnknownAction) Type() string     { return u.Kind }

func (ShortlistUniversity) isAction() {}
func (LockUniversity) isAction()      {}
func (CreateTask) isAction()          {}
func (NoAction) isAction()            {}
func (UnknownAction) isAction()       {}

// WireAction is an action as it appears in provider JSON and in the caller's
// response.
type WireAction struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

// noneAction is the single action carried by an unparseable reply.
func noneAction() WireAction {
	return WireAction{Type: TypeNone, Payload: map[string]any{}}
}

// Decode turns the loose wire form into a typed Action.
func (w WireAction) Decode() Action {
	switch strings.ToLower(strings.TrimSpace(w.Type)) {
	case TypeShortlistUniversity:
		return ShortlistUniversity{UniversityID: payloadID(w.Payload)}
	case TypeLockUniversity:
		return LockUniversity{UniversityID: payloadID(w.Payload)}
	case TypeCreateTask:
		return CreateTask{
			Title:       payloadString(w.Payload, "title"),
			Description: payloadString(w.Payload, "description"),
		}
	case TypeNone, "":
		return NoAction{}
	default:
		return UnknownAction{Kind: w.Type}
	}
}

// DecodeAll decodes a list of wire actions in order.
func DecodeAll(wire []WireAction) []Action {
	out := make([]Action, len(wire))
	for i, w := range wire {
		out[i] = w.Decode()
	}
	return out
}

// payloadID reads university_id, falling back to candidate_id. Numbers and
// numeric strings are accepted; anything else yields 0.
func payloadID(payload map[string]any) int64 {
	for _, key := range []string{"university_id", "candidate_id"} {
		if id := toID(payload[key]); id > 0 {
			return id
		}
	}
	return 0
}

func toID(v any) int64 {
	switch n := v.(type) {
	case float64:
		if n > 0 && n == math.Trunc(n) && n < math.MaxInt64 {
			return int64(n)
		}
	case json.Number:
		if id, err := n.Int64(); err == nil && id > 0 {
			return id
		}
	case string:
		if id, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64); err == nil && id > 0 {
			return id
		}
	case int64:
		return n
	case int:
		return int64(n)
	}
	return 0
}

func payloadString(payload map[string]any, key string) string {
	s, _ := payload[key].(string)
	return s
}
