package events

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// Handler receives published events. Implementations must be comparable,
// typically pointers, so that a handler can be identified for unsubscription.
type Handler interface {
	HandleEvent(Event) error
}

// HandlerFunc adapts a function to Handler. Funcs are not comparable, so
// wrap them with Func and keep the returned pointer for Unsubscribe.
type HandlerFunc func(Event) error

// FuncHandler is a comparable Handler around a HandlerFunc.
type FuncHandler struct {
	fn HandlerFunc
}

// Func wraps fn in a new Handler. Each call returns a distinct handler.
func Func(fn HandlerFunc) *FuncHandler {
	return &FuncHandler{fn: fn}
}

// HandleEvent calls the wrapped function.
func (h *FuncHandler) HandleEvent(e Event) error {
	return h.fn(e)
}

// handlerSet is a set of handlers keyed by identity.
type handlerSet map[Handler]struct{}

// Dispatcher routes events to handlers subscribed by event name or by event
// kind. The two registries are independent: a handler subscribed under both
// the name and the kind of an event receives it twice.
//
// A Dispatcher is not safe for concurrent use.
type Dispatcher struct {
	byName map[string]handlerSet
	byKind map[Kind]handlerSet
}

// NewDispatcher returns an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		byName: make(map[string]handlerSet),
		byKind: make(map[Kind]handlerSet),
	}
}

// Subscribe registers h for events named name (case-insensitive).
// Subscribing the same handler twice is a no-op. Subscribe panics if h is
// nil or not comparable.
func (d *Dispatcher) Subscribe(name string, h Handler) {
	mustComparable(h)
	name = strings.ToLower(name)
	set := d.byName[name]
	if set == nil {
		set = make(handlerSet)
		d.byName[name] = set
	}
	set[h] = struct{}{}
}

// Unsubscribe removes h from events named name.
func (d *Dispatcher) Unsubscribe(name string, h Handler) {
	mustComparable(h)
	name = strings.ToLower(name)
	if set, ok := d.byName[name]; ok {
		delete(set, h)
		if len(set) == 0 {
			delete(d.byName, name)
		}
	}
}

// SubscribeKind registers h for every event of kind k.
func (d *Dispatcher) SubscribeKind(k Kind, h Handler) {
	mustComparable(h)
	set := d.byKind[k]
	if set == nil {
		set = make(handlerSet)
		d.byKind[k] = set
	}
	set[h] = struct{}{}
}

// UnsubscribeKind removes h from events of kind k.
func (d *Dispatcher) UnsubscribeKind(k Kind, h Handler) {
	mustComparable(h)
	if set, ok := d.byKind[k]; ok {
		delete(set, h)
		if len(set) == 0 {
			delete(d.byKind, k)
		}
	}
}

// Publish delivers e synchronously to every matching handler, in no
// particular order. A failing or panicking handler does not stop delivery to
// the others; all failures are returned joined.
func (d *Dispatcher) Publish(e Event) error {
	var errs []error
	for h := range d.byName[e.Name()] {
		if err := deliver(h, e); err != nil {
			errs = append(errs, err)
		}
	}
	for h := range d.byKind[e.Kind()] {
		if err := deliver(h, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// HandlerError reports a handler that failed to process an event.
type HandlerError struct {
	Event   string
	Handler Handler
	Err     error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %T for %s: %v", e.Handler, e.Event, e.Err)
}

// Unwrap returns the underlying error for use with errors.Is/As.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// ErrHandlerPanic indicates a handler panicked while handling an event.
var ErrHandlerPanic = errors.New("handler panicked")

func deliver(h Handler, e Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &HandlerError{Event: e.Name(), Handler: h, Err: fmt.Errorf("%w: %v", ErrHandlerPanic, r)}
		}
	}()
	if herr := h.HandleEvent(e); herr != nil {
		return &HandlerError{Event: e.Name(), Handler: h, Err: herr}
	}
	return nil
}

func mustComparable(h Handler) {
	if h == nil {
		panic("events: nil handler")
	}
	if !reflect.TypeOf(h).Comparable() {
		panic(fmt.Sprintf("events: handler type %T is not comparable", h))
	}
}
