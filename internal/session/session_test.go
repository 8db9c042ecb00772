package session

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/papapumpkin/cartographer/internal/events"
	"github.com/papapumpkin/cartographer/internal/galaxy"
	"github.com/papapumpkin/cartographer/internal/journal"
	"github.com/papapumpkin/cartographer/internal/logging"
	"github.com/papapumpkin/cartographer/internal/telemetry"
)

const journalName = "Journal.2022-03-01T190000.01.log"

const starScan = `{ "timestamp":"2022-03-01T19:02:11Z", "event":"Scan", "ScanType":"AutoScan", "BodyName":"Blaa Eohn AA-A h1 A", "BodyID":1, "Parents":[ {"Null":0} ], "StarSystem":"Blaa Eohn AA-A h1", "SystemAddress":5068464199905, "DistanceFromArrivalLS":0.0, "StarType":"K", "Subclass":3, "StellarMass":0.628906, "Radius":496453632.0, "AbsoluteMagnitude":6.857391, "Age_MY":11024, "SurfaceTemperature":4508.0, "Luminosity":"Va", "RotationPeriod":196453.071581, "AxialTilt":0.0, "WasDiscovered":false, "WasMapped":false }`

const fsdJump = `{ "timestamp":"2022-03-01T19:01:00Z", "event":"FSDJump", "StarSystem":"Blaa Eohn AA-A h1", "SystemAddress":5068464199905 }`

// newSession opens a session on a fresh journal directory, recording
// telemetry to a temp file.
func newSession(t *testing.T, start journal.StartMode, content string) (*Session, string, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, journalName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write journal: %v", err)
	}
	telPath := filepath.Join(t.TempDir(), "telemetry.jsonl")
	em, err := telemetry.NewEmitter(telPath)
	if err != nil {
		t.Fatalf("NewEmitter: %v", err)
	}
	t.Cleanup(func() { em.Close() })

	s, err := New(Config{
		Dir:       dir,
		Journal:   journal.Options{Start: start},
		Logger:    logging.Discard(),
		Telemetry: em,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path, telPath
}

func readTelemetry(t *testing.T, path string) []telemetry.Event {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open telemetry: %v", err)
	}
	defer f.Close()

	var out []telemetry.Event
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var evt telemetry.Event
		if err := json.Unmarshal(sc.Bytes(), &evt); err != nil {
			t.Fatalf("bad telemetry line %q: %v", sc.Text(), err)
		}
		out = append(out, evt)
	}
	return out
}

func kinds(evts []telemetry.Event) map[string]int {
	m := make(map[string]int)
	for _, e := range evts {
		m[e.Kind]++
	}
	return m
}

func TestNew_MissingDirectory(t *testing.T) {
	t.Parallel()
	_, err := New(Config{Dir: filepath.Join(t.TempDir(), "nope"), Logger: logging.Discard()})
	if !errors.Is(err, journal.ErrNoJournalDir) {
		t.Fatalf("expected ErrNoJournalDir, got %v", err)
	}
}

func TestHandle_BadLineDoesNotStopStream(t *testing.T) {
	t.Parallel()
	s, _, telPath := newSession(t, journal.StartAtEnd, "")

	var got []string
	s.Dispatcher().SubscribeKind(events.KindGeneric, events.Func(func(e events.Event) error {
		got = append(got, e.Name())
		return nil
	}))

	s.Handle([]byte(`{"timestamp":"2022-03-01T19:00:00Z","event":`))
	s.Handle([]byte(`{"event":"Music"}`))
	s.Handle([]byte(fsdJump))
	s.Handle([]byte(starScan))

	if len(got) != 1 || got[0] != "fsdjump" {
		t.Errorf("generic handler got %v, want [fsdjump]", got)
	}
	if _, ok := s.Model().System(5068464199905); !ok {
		t.Error("scan after rejected lines was not applied")
	}
	want := Stats{Lines: 4, Events: 2, Rejected: 2}
	if s.Stats() != want {
		t.Errorf("Stats() = %+v, want %+v", s.Stats(), want)
	}

	evts := readTelemetry(t, telPath)
	if n := kinds(evts)[telemetry.KindLineRejected]; n != 2 {
		t.Errorf("expected 2 line_rejected records, got %d", n)
	}
	named := false
	for _, e := range evts {
		if e.Kind == telemetry.KindLineRejected && e.Event == "Music" {
			named = true
		}
	}
	if !named {
		t.Errorf("rejected record should name the event, got %+v", evts)
	}
}

func TestHandle_MalformedScanIsRejected(t *testing.T) {
	t.Parallel()
	s, _, _ := newSession(t, journal.StartAtEnd, "")

	s.Handle([]byte(`{ "timestamp":"2022-03-01T19:02:11Z", "event":"Scan", "BodyName":"x", "BodyID":1 }`))

	if s.Stats().Rejected != 1 {
		t.Errorf("expected malformed scan to be rejected, stats %+v", s.Stats())
	}
	if s.Model().Len() != 0 {
		t.Errorf("malformed scan must not create a system")
	}
}

func TestHandle_HandlerFailureIsReported(t *testing.T) {
	t.Parallel()
	s, _, telPath := newSession(t, journal.StartAtEnd, "")

	calls := 0
	s.Dispatcher().Subscribe("FSDJump", events.Func(func(events.Event) error {
		calls++
		return errors.New("printer broke")
	}))
	s.Dispatcher().Subscribe("fsdjump", events.Func(func(events.Event) error {
		panic("boom")
	}))

	s.Handle([]byte(fsdJump))
	s.Handle([]byte(fsdJump))

	if calls != 2 {
		t.Errorf("failing handler called %d times, want 2", calls)
	}
	if s.Stats().DispatchFailures != 2 {
		t.Errorf("expected 2 dispatch failures, stats %+v", s.Stats())
	}
	if n := kinds(readTelemetry(t, telPath))[telemetry.KindDispatchFailed]; n != 2 {
		t.Errorf("expected 2 dispatch_failed records, got %d", n)
	}
}

func TestRun_EndToEnd(t *testing.T) {
	t.Parallel()
	s, path, telPath := newSession(t, journal.StartAtBeginning, fsdJump+"\n")

	names := make(chan string, 16)
	scans := make(chan *galaxy.Body, 16)
	s.Dispatcher().Subscribe("fsdjump", events.Func(func(e events.Event) error {
		names <- e.Name()
		return nil
	}))
	s.Dispatcher().SubscribeKind(events.KindScan, events.Func(func(e events.Event) error {
		scans <- e.(*events.Scan).Body
		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case <-names:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for replayed FSDJump")
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	f.WriteString("not json\n" + starScan + "\n")
	f.Close()

	select {
	case body := <-scans:
		if body.Kind != galaxy.KindStar || body.ID != 1 {
			t.Errorf("unexpected body %+v", body)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for scan")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Run returned %v, want context.Canceled", err)
	}

	want := Stats{Lines: 3, Events: 2, Rejected: 1}
	if s.Stats() != want {
		t.Errorf("Stats() = %+v, want %+v", s.Stats(), want)
	}
	k := kinds(readTelemetry(t, telPath))
	for _, kind := range []string{telemetry.KindSessionStart, telemetry.KindJournalOpened, telemetry.KindLineRejected, telemetry.KindSessionStop} {
		if k[kind] != 1 {
			t.Errorf("expected one %s record, got %d", kind, k[kind])
		}
	}
}
