package journal

import (
	"fmt"
	"os"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Checkpoint records how far into a journal file a tailer has read. It holds
// a position only, never decoded state.
type Checkpoint struct {
	Version   int       `toml:"version"`
	File      string    `toml:"file"`   // base name of the journal
	Offset    int64     `toml:"offset"` // byte offset just past the last delivered line
	UpdatedAt time.Time `toml:"updated_at"`
}

// LoadCheckpoint reads the checkpoint at path. A missing file yields a zero
// Checkpoint and no error.
func LoadCheckpoint(path string) (Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Checkpoint{}, nil
		}
		return Checkpoint{}, fmt.Errorf("reading checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := toml.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, fmt.Errorf("parsing checkpoint: %w", err)
	}
	return cp, nil
}

// SaveCheckpoint writes the checkpoint atomically (write temp + rename).
func SaveCheckpoint(path string, cp Checkpoint) error {
	cp.Version = 1
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	}
	data, err := toml.Marshal(cp)
	if err != nil {
		return fmt.Errorf("marshaling checkpoint: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp checkpoint: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming checkpoint: %w", err)
	}
	return nil
}
