package channel

import (
	"encoding/json"
	"fmt"

	"github.com/jaeholee/decotree/internal/types"
)

// Event type discriminators used on the wire.
const (
	EventTypeJoin       = "join"
	EventTypePushObject = "push-object"
	EventTypeLeave      = "leave"
	EventTypeError      = "error"
)

// Error codes carried by ErrorEvent.
const (
	CodeTimeout  = "timeout"
	CodeFull     = "full"
	CodeInvalid  = "invalid"
	CodeCooldown = "cooldown"
	CodeUnknown  = "unknown"
)

// Event is the closed set of messages a channel delivers to
// connections. Adding a variant requires updating every type switch
// over Event, which is the point.
type Event interface {
	// EventType returns the wire discriminator for the variant.
	EventType() string
	// String renders the event for transcript display.
	String() string
}

// JoinEvent announces a new roster member to the rest of the channel.
type JoinEvent struct {
	User types.UserInfo `json:"user"`
}

func (JoinEvent) EventType() string { return EventTypeJoin }

func (e JoinEvent) String() string {
	return fmt.Sprintf("%s joined", e.User.Nickname)
}

func (e JoinEvent) MarshalJSON() ([]byte, error) {
	type alias JoinEvent
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: EventTypeJoin, alias: alias(e)})
}

// PushObjectEvent announces a newly placed object. Evicted names the
// object dropped to make room, if any.
type PushObjectEvent struct {
	Object   types.Object   `json:"object"`
	Appender types.UserInfo `json:"appender"`
	Evicted  string         `json:"evicted,omitempty"`
}

func (PushObjectEvent) EventType() string { return EventTypePushObject }

func (e PushObjectEvent) String() string {
	if e.Object.Comment != "" {
		return fmt.Sprintf("%s placed a decoration: %s", e.Appender.Nickname, e.Object.Comment)
	}
	return fmt.Sprintf("%s placed a decoration", e.Appender.Nickname)
}

func (e PushObjectEvent) MarshalJSON() ([]byte, error) {
	type alias PushObjectEvent
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: EventTypePushObject, alias: alias(e)})
}

// LeaveEvent announces a member leaving the channel.
type LeaveEvent struct {
	User types.UserInfo `json:"user"`
}

func (LeaveEvent) EventType() string { return EventTypeLeave }

func (e LeaveEvent) String() string {
	return fmt.Sprintf("%s left", e.User.Nickname)
}

func (e LeaveEvent) MarshalJSON() ([]byte, error) {
	type alias LeaveEvent
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: EventTypeLeave, alias: alias(e)})
}

// ErrorEvent is delivered to a single connection, never broadcast.
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (ErrorEvent) EventType() string { return EventTypeError }

func (e ErrorEvent) String() string {
	return fmt.Sprintf("error (%s): %s", e.Code, e.Message)
}

func (e ErrorEvent) MarshalJSON() ([]byte, error) {
	type alias ErrorEvent
	return json.Marshal(struct {
		Type string `json:"type"`
		alias
	}{Type: EventTypeError, alias: alias(e)})
}

func errTimeout() ErrorEvent {
	return ErrorEvent{Code: CodeTimeout, Message: "Timeout"}
}

func errFull() ErrorEvent {
	return ErrorEvent{Code: CodeFull, Message: "Full users"}
}

func errInvalid() ErrorEvent {
	return ErrorEvent{Code: CodeInvalid, Message: "invalid"}
}

func errCooldown() ErrorEvent {
	return ErrorEvent{Code: CodeCooldown, Message: "Too many pushes"}
}

func errUnknown() ErrorEvent {
	return ErrorEvent{Code: CodeUnknown, Message: "Failed with unknown reason"}
}
