// Package events decodes journal lines into typed events and delivers them
// to subscribers.
package events

import (
	"encoding/json"
	"time"

	"github.com/papapumpkin/cartographer/internal/galaxy"
)

// Kind identifies the variant of an Event.
type Kind int

const (
	KindGeneric Kind = iota
	KindScan
)

func (k Kind) String() string {
	if k == KindScan {
		return "scan"
	}
	return "generic"
}

// Event is a decoded journal line. The set of implementations is closed:
// *Generic and *Scan.
type Event interface {
	Kind() Kind
	// Name is the lowercase event name.
	Name() string
	Time() time.Time
	// Payload is the untouched JSON line.
	Payload() json.RawMessage

	isEvent()
}

// Header carries the fields every event has.
type Header struct {
	Timestamp time.Time
	EventName string // lowercase
	Raw       json.RawMessage
}

func (h *Header) Name() string             { return h.EventName }
func (h *Header) Time() time.Time          { return h.Timestamp }
func (h *Header) Payload() json.RawMessage { return h.Raw }

// Generic is any event without a dedicated variant.
type Generic struct {
	Header
}

func (*Generic) Kind() Kind { return KindGeneric }
func (*Generic) isEvent()   {}

// Scan is a Scan event after it has been applied to the world model.
type Scan struct {
	Header
	System *galaxy.System
	Body   *galaxy.Body
}

func (*Scan) Kind() Kind { return KindScan }
func (*Scan) isEvent()   {}

// Fields decodes the payload into dst, for callers that need fields the
// event types do not model.
func Fields(e Event, dst any) error {
	return json.Unmarshal(e.Payload(), dst)
}
