// Package ui prints session events as styled terminal lines. The Printer is
// an ordinary dispatcher subscriber.
package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/papapumpkin/cartographer/internal/events"
	"github.com/papapumpkin/cartographer/internal/galaxy"
	"github.com/papapumpkin/cartographer/internal/value"
)

// Options controls what the Printer shows and how scans are valued.
type Options struct {
	Events          []string // names of non-scan events to print
	Odyssey         bool
	EfficiencyBonus bool
}

// Printer writes one line per event to w.
type Printer struct {
	w    io.Writer
	opts Options
}

// New returns a Printer writing to w.
func New(w io.Writer, opts Options) *Printer {
	return &Printer{w: w, opts: opts}
}

// Subscribe registers the printer for scans and for each configured event
// name.
func (p *Printer) Subscribe(d *events.Dispatcher) {
	d.SubscribeKind(events.KindScan, p)
	for _, name := range p.opts.Events {
		if strings.EqualFold(name, "scan") {
			continue
		}
		d.Subscribe(name, p)
	}
}

// HandleEvent prints e.
func (p *Printer) HandleEvent(e events.Event) error {
	var line string
	switch e := e.(type) {
	case *events.Scan:
		line = p.scanLine(e)
	default:
		line = p.eventLine(e)
	}
	_, err := fmt.Fprintln(p.w, line)
	return err
}

func stamp(t time.Time) string {
	return styleTime.Render("[" + t.Format(time.TimeOnly) + "]")
}

// locationFields are the fields most location-bearing events carry.
type locationFields struct {
	StarSystem string `json:"StarSystem"`
	Body       string `json:"Body"`
	BodyName   string `json:"BodyName"`
}

func (p *Printer) eventLine(e events.Event) string {
	parts := []string{stamp(e.Time()), styleEvent.Render(iconEvent + " " + e.Name())}

	var loc locationFields
	if err := events.Fields(e, &loc); err == nil {
		if loc.StarSystem != "" {
			parts = append(parts, styleSystem.Render(loc.StarSystem))
		}
		switch {
		case loc.BodyName != "":
			parts = append(parts, styleBody.Render(loc.BodyName))
		case loc.Body != "":
			parts = append(parts, styleBody.Render(loc.Body))
		}
	}
	return strings.Join(parts, " ")
}

func (p *Printer) scanLine(e *events.Scan) string {
	b := e.Body
	parts := []string{
		stamp(e.Time()),
		styleEvent.Render(iconScan + " " + e.Name()),
		styleSystem.Render(e.System.Name),
		styleBody.Render(b.Name),
		styleDetail.Render(describe(b)),
	}

	base := galaxy.Valuation{Odyssey: p.opts.Odyssey}
	if v, ok := b.Value(base); ok {
		parts = append(parts, styleCredits.Render(Credits(v)))
	}
	if b.Planet != nil {
		mapped := base
		mapped.Mapped = true
		mapped.Efficient = p.opts.EfficiencyBonus
		v, _ := b.Value(mapped)
		parts = append(parts, styleDetail.Render("mapped"), styleCredits.Render(Credits(v)))
	}
	if !b.WasDiscovered {
		parts = append(parts, styleFirst.Render("first discovery"))
	}
	return strings.Join(parts, " ")
}

// describe summarises a body's kind and class, e.g. "star K3 Va" or
// "planet High metal content body, terraformable".
func describe(b *galaxy.Body) string {
	switch {
	case b.Star != nil:
		return fmt.Sprintf("star %s%d %s", b.Star.Type, b.Star.Subclass, b.Star.Luminosity)
	case b.Planet != nil:
		s := "planet " + b.Planet.ClassName
		if b.Planet.TerraformState != value.NotTerraformable {
			s += ", " + strings.ToLower(b.Planet.TerraformState.String())
		}
		if b.Planet.Landable {
			s += ", landable"
		}
		return s
	}
	return b.Kind.String()
}

// Summary prints the systems in m with the total value of their scanned
// bodies, unmapped and mapped.
func (p *Printer) Summary(m *galaxy.Model) error {
	systems := m.Systems()
	if _, err := fmt.Fprintln(p.w, styleEvent.Render(fmt.Sprintf("%s %d system(s) visited", iconSummary, len(systems)))); err != nil {
		return err
	}
	for _, sys := range systems {
		var scanned, total, mapped int
		for _, b := range sys.Bodies() {
			if !b.Scanned {
				continue
			}
			scanned++
			if v, ok := b.Value(galaxy.Valuation{Odyssey: p.opts.Odyssey}); ok {
				total += v
			}
			if v, ok := b.Value(galaxy.Valuation{Mapped: true, Efficient: p.opts.EfficiencyBonus, Odyssey: p.opts.Odyssey}); ok {
				mapped += v
			}
		}
		name := sys.Name
		if name == "" {
			name = strconv.FormatInt(sys.Address, 10)
		}
		_, err := fmt.Fprintf(p.w, "  %s %s %s %s %s\n",
			styleSystem.Render(name),
			styleDetail.Render(fmt.Sprintf("%d scanned", scanned)),
			styleCredits.Render(Credits(total)),
			styleDetail.Render("mapped"),
			styleCredits.Render(Credits(mapped)),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// Credits formats v with thousands separators, e.g. "1,586,850 cr".
func Credits(v int) string {
	s := strconv.Itoa(v)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteString(" cr")
	return b.String()
}
