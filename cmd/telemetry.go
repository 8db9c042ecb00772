package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/papapumpkin/cartographer/internal/telemetry"
)

var telemetryCmd = &cobra.Command{
	Use:   "telemetry",
	Short: "View the JSONL telemetry a watch session recorded",
	Long: `Reads and formats the JSONL telemetry file written by "cartographer watch".

Without --file, reads the configured telemetry_path.
With --follow (-f), watches the file for new events (like tail -f) until
interrupted.`,
	RunE: runTelemetry,
}

func init() {
	telemetryCmd.Flags().String("file", "", "telemetry file to view (default: telemetry_path)")
	telemetryCmd.Flags().BoolP("follow", "f", false, "follow the file for new events")
	rootCmd.AddCommand(telemetryCmd)
}

func runTelemetry(cmd *cobra.Command, _ []string) error {
	file, _ := cmd.Flags().GetString("file")
	follow, _ := cmd.Flags().GetBool("follow")

	path, err := resolveTelemetryPath(file)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("telemetry: open %s: %w", path, err)
	}
	defer f.Close()

	w := cmd.OutOrStdout()
	lr := newLineReader(f)
	if err := lr.printAvailable(w); err != nil {
		return fmt.Errorf("telemetry: read %s: %w", path, err)
	}

	if !follow {
		lr.flush(w)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return tailFollow(ctx, w, lr, path)
}

// lineReader prints complete JSONL lines and holds back a line the emitter
// has not finished writing.
type lineReader struct {
	r       *bufio.Reader
	partial string
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

// printAvailable prints every complete line readable now. An unterminated
// tail is kept and completed by a later call.
func (lr *lineReader) printAvailable(w io.Writer) error {
	for {
		chunk, err := lr.r.ReadString('\n')
		lr.partial += chunk
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if line := strings.TrimSpace(lr.partial); line != "" {
			printEvent(w, line)
		}
		lr.partial = ""
	}
}

// flush prints a held back final line, for files that will not grow.
func (lr *lineReader) flush(w io.Writer) {
	if line := strings.TrimSpace(lr.partial); line != "" {
		printEvent(w, line)
	}
	lr.partial = ""
}

// tailFollow prints events appended to path until ctx is cancelled.
func tailFollow(ctx context.Context, w io.Writer, lr *lineReader, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("telemetry: create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fmt.Errorf("telemetry: watch %s: %w", path, err)
	}
	// Catch up on anything written before the watch was in place.
	if err := lr.printAvailable(w); err != nil {
		return fmt.Errorf("telemetry: read %s: %w", path, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) {
				continue
			}
			if err := lr.printAvailable(w); err != nil {
				return fmt.Errorf("telemetry: read %s: %w", path, err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("telemetry: watch %s: %w", path, err)
		}
	}
}

// printEvent decodes a JSONL line and prints a human-readable representation.
func printEvent(w io.Writer, line string) {
	var evt telemetry.Event
	if err := json.Unmarshal([]byte(line), &evt); err != nil {
		fmt.Fprintf(w, "??? %s\n", line)
		return
	}

	ts := evt.Timestamp.Format(time.TimeOnly)
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s]", ts))
	parts = append(parts, evt.Kind)

	if evt.File != "" {
		parts = append(parts, fmt.Sprintf("file=%s", evt.File))
	}
	if evt.Event != "" {
		parts = append(parts, fmt.Sprintf("event=%s", evt.Event))
	}
	if evt.Data != nil {
		if m, ok := evt.Data.(map[string]any); ok {
			parts = append(parts, formatDataMap(m))
		} else {
			data, _ := json.Marshal(evt.Data)
			parts = append(parts, string(data))
		}
	}

	fmt.Fprintln(w, strings.Join(parts, " "))
}

// formatDataMap formats a data map as key=value pairs sorted by key.
func formatDataMap(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%s=%v", k, m[k])
	}
	return b.String()
}

// resolveTelemetryPath returns file when set, falling back to the configured
// telemetry_path.
func resolveTelemetryPath(file string) (string, error) {
	if file == "" {
		file = viper.GetString("telemetry_path")
	}
	if file == "" {
		return "", fmt.Errorf("telemetry: no file given; pass --file or set telemetry_path")
	}
	if _, err := os.Stat(file); err != nil {
		return "", fmt.Errorf("telemetry: %w", err)
	}
	return file, nil
}
