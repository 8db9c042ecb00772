package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/papapumpkin/cartographer/internal/galaxy"
)

// TimeLayout is the journal's timestamp format. Timestamps are always UTC.
const TimeLayout = "2006-01-02T15:04:05Z"

// Sentinel errors for lines the decoder rejects.
var (
	// ErrInvalidJSON indicates the line is not a JSON object.
	ErrInvalidJSON = errors.New("invalid json")
	// ErrMissingField indicates the event or timestamp field is absent or empty.
	ErrMissingField = errors.New("required field missing")
	// ErrBadTimestamp indicates the timestamp does not match TimeLayout.
	ErrBadTimestamp = errors.New("bad timestamp")
)

// LineError describes a rejected line. Event is the raw event name when it
// could be read.
type LineError struct {
	Event string
	Err   error
}

func (e *LineError) Error() string {
	if e.Event != "" {
		return e.Event + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for use with errors.Is/As.
func (e *LineError) Unwrap() error {
	return e.Err
}

// Decoder turns journal lines into events. Scan lines are applied to the
// model as they are decoded.
type Decoder struct {
	model *galaxy.Model
}

// NewDecoder returns a Decoder that applies Scan events to model.
func NewDecoder(model *galaxy.Model) *Decoder {
	return &Decoder{model: model}
}

type header struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
}

// Decode decodes one line. Every error is a *LineError; the line should be
// skipped and decoding can continue with the next one.
func (d *Decoder) Decode(line []byte) (Event, error) {
	var h header
	if err := json.Unmarshal(line, &h); err != nil {
		return nil, &LineError{Err: fmt.Errorf("%w: %v", ErrInvalidJSON, err)}
	}
	if h.Event == "" {
		return nil, &LineError{Err: fmt.Errorf("%w: event", ErrMissingField)}
	}
	if h.Timestamp == "" {
		return nil, &LineError{Event: h.Event, Err: fmt.Errorf("%w: timestamp", ErrMissingField)}
	}
	// time.Parse tolerates fractional seconds the journal never writes.
	ts, err := time.ParseInLocation(TimeLayout, h.Timestamp, time.UTC)
	if err != nil || len(h.Timestamp) != len(TimeLayout) {
		return nil, &LineError{Event: h.Event, Err: fmt.Errorf("%w: %q", ErrBadTimestamp, h.Timestamp)}
	}

	hdr := Header{
		Timestamp: ts,
		EventName: strings.ToLower(h.Event),
		Raw:       append(json.RawMessage(nil), line...),
	}
	if h.Event != "Scan" {
		return &Generic{Header: hdr}, nil
	}

	sys, body, err := d.model.ApplyScan(hdr.Raw)
	if err != nil {
		return nil, &LineError{Event: h.Event, Err: err}
	}
	return &Scan{Header: hdr, System: sys, Body: body}, nil
}
