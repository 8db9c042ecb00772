// Package galaxy reconstructs the systems and bodies a session has scanned.
//
// A Model is built once per session and accumulates state for its whole
// lifetime: systems and bodies are created on first reference and never
// removed. Bodies refer to their parents by id only, so a parent can be
// referenced before it has been scanned.
//
// A Model has a single writer. It performs no locking; callers that read it
// from other goroutines must serialise access with the writer.
package galaxy

import "sort"

// Model is the registry of every system seen during a session, keyed by
// system address.
type Model struct {
	systems map[int64]*System
}

// NewModel returns an empty Model.
func NewModel() *Model {
	return &Model{systems: make(map[int64]*System)}
}

// System returns the system with the given address.
func (m *Model) System(address int64) (*System, bool) {
	s, ok := m.systems[address]
	return s, ok
}

// Systems returns all known systems ordered by address.
func (m *Model) Systems() []*System {
	out := make([]*System, 0, len(m.systems))
	for _, s := range m.systems {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out
}

// Len returns the number of known systems.
func (m *Model) Len() int {
	return len(m.systems)
}

// resolveSystem returns the system at address, creating it if needed. The
// first non-empty display name wins.
func (m *Model) resolveSystem(address int64, name string) *System {
	s, ok := m.systems[address]
	if !ok {
		s = &System{
			Address: address,
			Name:    name,
			bodies:  make(map[int]*Body),
		}
		m.systems[address] = s
		return s
	}
	if s.Name == "" {
		s.Name = name
	}
	return s
}

// System is a star system and the bodies discovered in it.
type System struct {
	Address int64
	Name    string

	bodies map[int]*Body
	main   []int // ids of bodies scanned without parents, in scan order
}

// Body returns the body with the given id.
func (s *System) Body(id int) (*Body, bool) {
	b, ok := s.bodies[id]
	return b, ok
}

// Bodies returns every body in the system, placeholders included, ordered
// by id.
func (s *System) Bodies() []*Body {
	out := make([]*Body, 0, len(s.bodies))
	for _, b := range s.bodies {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// MainBodies returns the scanned bodies that orbit nothing.
func (s *System) MainBodies() []*Body {
	out := make([]*Body, 0, len(s.main))
	for _, id := range s.main {
		out = append(out, s.bodies[id])
	}
	return out
}

// Parents resolves b's parent references, nearest first.
func (s *System) Parents(b *Body) []*Body {
	out := make([]*Body, 0, len(b.Parents))
	for _, ref := range b.Parents {
		if p, ok := s.bodies[ref.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Children returns the bodies whose nearest parent is id, ordered by id.
func (s *System) Children(id int) []*Body {
	var out []*Body
	for _, b := range s.Bodies() {
		if len(b.Parents) > 0 && b.Parents[0].ID == id {
			out = append(out, b)
		}
	}
	return out
}

// resolveBody returns the body with the given id, creating an empty
// placeholder of kind k if it does not exist yet.
func (s *System) resolveBody(id int, k Kind) *Body {
	if b, ok := s.bodies[id]; ok {
		return b
	}
	b := &Body{ID: id, SystemAddress: s.Address, Kind: k}
	s.bodies[id] = b
	return b
}

// setMain records or clears id in the main body list.
func (s *System) setMain(id int, main bool) {
	for i, m := range s.main {
		if m == id {
			if !main {
				s.main = append(s.main[:i], s.main[i+1:]...)
			}
			return
		}
	}
	if main {
		s.main = append(s.main, id)
	}
}
