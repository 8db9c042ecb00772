// Package journal follows the newest journal file in a directory and
// delivers each complete line exactly once, across file rotation.
//
// The game has used more than one journal naming scheme, and a directory may
// hold both, so names alone do not give chronological order. The initial
// journal is the most recently modified one, with names breaking ties. After
// that the tailer switches to every newly created journal.
package journal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/papapumpkin/cartographer/internal/telemetry"
)

// DefaultPattern matches the journal files the game writes.
const DefaultPattern = "Journal*.log"

const readChunk = 64 << 10

var (
	// ErrNoJournalDir indicates the journal directory does not exist.
	ErrNoJournalDir = errors.New("journal directory not found")
	// ErrWatcherClosed indicates the file system watcher stopped unexpectedly.
	ErrWatcherClosed = errors.New("journal watcher closed")
)

// StartMode selects where the tailer starts reading the initial journal.
type StartMode int

const (
	// StartAtEnd skips existing content and delivers only new lines.
	StartAtEnd StartMode = iota
	// StartAtBeginning replays the whole journal before following it.
	StartAtBeginning
	// StartAtCheckpoint resumes from a saved Checkpoint when it refers to the
	// newest journal, and replays the newest journal otherwise.
	StartAtCheckpoint
)

// ParseStartMode parses "end", "beginning" or "checkpoint".
func ParseStartMode(s string) (StartMode, error) {
	switch strings.ToLower(s) {
	case "", "end":
		return StartAtEnd, nil
	case "beginning", "start", "replay":
		return StartAtBeginning, nil
	case "checkpoint", "resume":
		return StartAtCheckpoint, nil
	}
	return StartAtEnd, fmt.Errorf("unknown start mode %q", s)
}

func (m StartMode) String() string {
	switch m {
	case StartAtBeginning:
		return "beginning"
	case StartAtCheckpoint:
		return "checkpoint"
	}
	return "end"
}

// Options configures a Tailer.
type Options struct {
	Pattern        string // glob for journal base names; DefaultPattern if empty
	Start          StartMode
	CheckpointPath string // where to save read positions; none if empty
	Logger         *slog.Logger
	Telemetry      *telemetry.Emitter
}

// Line is one complete journal line. Text is only valid for the duration of
// the LineFunc call.
type Line struct {
	File   string // path of the journal the line came from
	Offset int64  // byte offset just past the line's terminator
	Text   []byte // without the line terminator
}

// LineFunc receives each line. Returning an error stops the tailer.
type LineFunc func(Line) error

// Tailer follows the newest journal in a directory.
type Tailer struct {
	dir     string
	opts    Options
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	file    *os.File
	path    string
	offset  int64  // end of the last complete line read from file
	partial []byte // bytes read past offset with no terminator yet
	buf     []byte
}

// Open starts watching dir and opens its newest journal. A missing directory
// is reported as ErrNoJournalDir. An empty directory is not an error: the
// tailer picks up the first journal created in it.
func Open(dir string, opts Options) (*Tailer, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoJournalDir, dir)
		}
		return nil, fmt.Errorf("journal: stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNoJournalDir, dir)
	}
	if opts.Pattern == "" {
		opts.Pattern = DefaultPattern
	}
	if _, err := filepath.Match(opts.Pattern, ""); err != nil {
		return nil, fmt.Errorf("journal: pattern %q: %w", opts.Pattern, err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("journal: create watcher: %w", err)
	}
	// Watch before listing so a journal created in between is not missed.
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("journal: watch %s: %w", dir, err)
	}

	t := &Tailer{
		dir:     dir,
		opts:    opts,
		logger:  logger.With("component", "journal"),
		watcher: fw,
		buf:     make([]byte, readChunk),
	}
	if err := t.openNewest(); err != nil {
		t.Close()
		return nil, err
	}
	return t, nil
}

// Current returns the path of the journal being followed, or "" while
// waiting for the first one.
func (t *Tailer) Current() string {
	return t.path
}

// Run delivers lines to fn until ctx is cancelled, fn returns an error or
// the watcher fails. Lines already present at the start position are
// delivered first. Run closes the tailer before returning and returns
// ctx.Err() on cancellation.
func (t *Tailer) Run(ctx context.Context, fn LineFunc) error {
	defer t.Close()

	if t.file != nil {
		if err := t.drain(fn); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-t.watcher.Events:
			if !ok {
				return ErrWatcherClosed
			}
			if err := t.handle(event, fn); err != nil {
				return err
			}

		case err, ok := <-t.watcher.Errors:
			if !ok {
				return ErrWatcherClosed
			}
			// Overflows and similar are not fatal; the next write
			// notification reads from the saved offset anyway.
			t.logger.Warn("watch error", "error", err)
		}
	}
}

// Close stops watching and releases the journal file. It is safe to call
// more than once.
func (t *Tailer) Close() error {
	var errs []error
	if t.watcher != nil {
		errs = append(errs, t.watcher.Close())
		t.watcher = nil
	}
	if t.file != nil {
		errs = append(errs, t.file.Close())
		t.file = nil
	}
	return errors.Join(errs...)
}

func (t *Tailer) handle(event fsnotify.Event, fn LineFunc) error {
	base := filepath.Base(event.Name)
	if !t.matches(base) {
		return nil
	}

	if t.file != nil && base == filepath.Base(t.path) {
		switch {
		case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
			return t.drain(fn)
		case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
			t.logger.Debug("current journal removed", "file", base)
		}
		return nil
	}

	switch {
	case event.Has(fsnotify.Create):
		return t.rotate(event.Name, fn)
	case event.Has(fsnotify.Write) && t.isNewer(event.Name):
		// Its Create was lost.
		return t.rotate(event.Name, fn)
	}
	return nil
}

func (t *Tailer) matches(base string) bool {
	ok, _ := filepath.Match(t.opts.Pattern, base)
	return ok
}

// isNewer reports whether the journal at path was modified after the current
// one.
func (t *Tailer) isNewer(path string) bool {
	if t.file == nil {
		return true
	}
	cand, err := os.Stat(path)
	if err != nil {
		return false
	}
	cur, err := t.file.Stat()
	if err != nil {
		return true
	}
	return cand.ModTime().After(cur.ModTime())
}

// journals lists matching journals, oldest first: by modification time, then
// by name.
func (t *Tailer) journals() ([]string, error) {
	entries, err := os.ReadDir(t.dir)
	if err != nil {
		return nil, fmt.Errorf("journal: read %s: %w", t.dir, err)
	}
	type candidate struct {
		name    string
		modTime time.Time
	}
	var found []candidate
	for _, e := range entries {
		if e.IsDir() || !t.matches(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed since the listing.
			continue
		}
		found = append(found, candidate{name: e.Name(), modTime: info.ModTime()})
	}
	sort.Slice(found, func(i, j int) bool {
		if !found[i].modTime.Equal(found[j].modTime) {
			return found[i].modTime.Before(found[j].modTime)
		}
		return found[i].name < found[j].name
	})
	names := make([]string, len(found))
	for i, c := range found {
		names[i] = c.name
	}
	return names, nil
}

// openNewest opens the newest journal at the configured start position. A
// journal that disappears before it can be opened is skipped in favour of
// the next newest.
func (t *Tailer) openNewest() error {
	names, err := t.journals()
	if err != nil {
		return err
	}
	for i := len(names) - 1; i >= 0; i-- {
		path := filepath.Join(t.dir, names[i])
		f, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			t.logger.Warn("journal vanished before open", "file", names[i])
			continue
		}
		if err != nil {
			return fmt.Errorf("journal: open %s: %w", path, err)
		}
		off, err := t.startOffset(f, names[i])
		if err != nil {
			f.Close()
			return err
		}
		t.setCurrent(f, path, off)
		t.logger.Info("following journal", "file", names[i], "offset", off, "start", t.opts.Start.String())
		t.emit(telemetry.KindJournalOpened, map[string]any{"offset": off})
		return nil
	}
	t.logger.Info("no journal yet, waiting for one", "dir", t.dir, "pattern", t.opts.Pattern)
	return nil
}

func (t *Tailer) startOffset(f *os.File, base string) (int64, error) {
	info, err := f.Stat()
	if err != nil {
		return 0, fmt.Errorf("journal: stat %s: %w", base, err)
	}
	switch t.opts.Start {
	case StartAtBeginning:
		return 0, nil
	case StartAtCheckpoint:
		if t.opts.CheckpointPath == "" {
			return 0, nil
		}
		cp, err := LoadCheckpoint(t.opts.CheckpointPath)
		if err != nil {
			return 0, fmt.Errorf("journal: %w", err)
		}
		if cp.File == base && cp.Offset <= info.Size() {
			return cp.Offset, nil
		}
		return 0, nil
	}
	return lastLineEnd(f, info.Size())
}

// lastLineEnd returns the offset just past the last line terminator in the
// first size bytes of f, so that a line still being written is read whole
// once it is finished.
func lastLineEnd(f *os.File, size int64) (int64, error) {
	buf := make([]byte, 4096)
	end := size
	for end > 0 {
		start := max(end-int64(len(buf)), 0)
		n, err := f.ReadAt(buf[:end-start], start)
		if err != nil && !errors.Is(err, io.EOF) {
			return 0, fmt.Errorf("journal: read %s: %w", f.Name(), err)
		}
		if i := bytes.LastIndexByte(buf[:n], '\n'); i >= 0 {
			return start + int64(i) + 1, nil
		}
		end = start
	}
	return 0, nil
}

func (t *Tailer) setCurrent(f *os.File, path string, off int64) {
	t.file = f
	t.path = path
	t.offset = off
	t.partial = t.partial[:0]
}

// rotate switches to the journal at path. The old journal is drained first
// so lines written just before the switch are not lost.
func (t *Tailer) rotate(path string, fn LineFunc) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			t.logger.Warn("new journal vanished before open", "file", filepath.Base(path))
			return nil
		}
		return fmt.Errorf("journal: open %s: %w", path, err)
	}

	from := ""
	if t.file != nil {
		from = filepath.Base(t.path)
		if err := t.drain(fn); err != nil {
			f.Close()
			return err
		}
		if len(t.partial) > 0 {
			t.logger.Warn("dropping unterminated line at end of journal", "file", from, "bytes", len(t.partial))
		}
		t.file.Close()
	}

	t.setCurrent(f, path, 0)
	t.logger.Info("journal rotated", "from", from, "to", filepath.Base(path))
	t.emit(telemetry.KindJournalRotated, map[string]any{"from": from})
	return t.drain(fn)
}

// drain reads everything appended to the current journal since the last
// read and delivers the complete lines. A duplicate notification reads
// nothing and delivers nothing.
func (t *Tailer) drain(fn LineFunc) error {
	if _, err := t.file.Seek(t.offset+int64(len(t.partial)), io.SeekStart); err != nil {
		return fmt.Errorf("journal: seek %s: %w", t.path, err)
	}
	start := t.offset
	for {
		n, err := t.file.Read(t.buf)
		if n > 0 {
			t.partial = append(t.partial, t.buf[:n]...)
			if lerr := t.deliver(fn); lerr != nil {
				return lerr
			}
		}
		if errors.Is(err, io.EOF) || n == 0 {
			break
		}
		if err != nil {
			return fmt.Errorf("journal: read %s: %w", t.path, err)
		}
	}
	if t.offset != start {
		t.saveCheckpoint()
	}
	return nil
}

// deliver hands every complete line in t.partial to fn and keeps the
// unterminated remainder.
func (t *Tailer) deliver(fn LineFunc) error {
	rest := t.partial
	for {
		i := bytes.IndexByte(rest, '\n')
		if i < 0 {
			break
		}
		text := bytes.TrimSpace(rest[:i])
		rest = rest[i+1:]
		t.offset += int64(i + 1)
		if len(text) == 0 {
			continue
		}
		if err := fn(Line{File: t.path, Offset: t.offset, Text: text}); err != nil {
			t.partial = t.partial[:copy(t.partial, rest)]
			return err
		}
	}
	t.partial = t.partial[:copy(t.partial, rest)]
	return nil
}

func (t *Tailer) saveCheckpoint() {
	if t.opts.CheckpointPath == "" {
		return
	}
	cp := Checkpoint{
		File:      filepath.Base(t.path),
		Offset:    t.offset,
		UpdatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := SaveCheckpoint(t.opts.CheckpointPath, cp); err != nil {
		t.logger.Warn("saving checkpoint", "error", err)
	}
}

func (t *Tailer) emit(kind string, data map[string]any) {
	err := t.opts.Telemetry.Emit(telemetry.Event{
		Kind: kind,
		File: filepath.Base(t.path),
		Data: data,
	})
	if err != nil {
		t.logger.Warn("telemetry", "error", err)
	}
}
