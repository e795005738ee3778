// Package replay records the input of a run and plays it back. A recording
// holds the course id, the seed and every tick's (dt, intents); because the
// engine is deterministic for a given seed, replaying the ticks reproduces
// the run exactly.
package replay

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/vovakirdan/tri-runner/internal/runner"
)

// FormatVersion is written into every recording.
const FormatVersion = 1

// ErrVersion is returned for recordings written by an unknown format.
var ErrVersion = errors.New("replay: unsupported format version")

// Tick is one engine step.
type Tick struct {
	DT      float64         `msgpack:"dt"`
	Intents []runner.Intent `msgpack:"in,omitempty"`
}

// Recording is a full run's input.
type Recording struct {
	Version int    `msgpack:"v"`
	ID      string `msgpack:"id"`
	Course  string `msgpack:"course"`
	Seed    int64  `msgpack:"seed"`
	Ticks   []Tick `msgpack:"ticks"`
}

// Duration returns the simulated time covered by the recording.
func (r *Recording) Duration() float64 {
	var total float64
	for _, t := range r.Ticks {
		total += t.DT
	}
	return total
}

// Recorder collects ticks into a Recording.
type Recorder struct {
	rec Recording
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Begin starts a new recording, discarding the previous one.
func (r *Recorder) Begin(course string, seed int64) {
	r.rec = Recording{
		Version: FormatVersion,
		ID:      uuid.NewString(),
		Course:  course,
		Seed:    seed,
	}
}

// Tick appends one step.
func (r *Recorder) Tick(dt float64, intents []runner.Intent) {
	t := Tick{DT: dt}
	if len(intents) > 0 {
		t.Intents = append([]runner.Intent(nil), intents...)
	}
	r.rec.Ticks = append(r.rec.Ticks, t)
}

// Recording returns the current recording.
func (r *Recorder) Recording() *Recording {
	return &r.rec
}

// Encode serializes a recording with msgpack.
func Encode(rec *Recording) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.UseCompactInts(true)
	if err := enc.Encode(rec); err != nil {
		return nil, fmt.Errorf("replay: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a recording.
func Decode(data []byte) (*Recording, error) {
	var rec Recording
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("replay: decode: %w", err)
	}
	if rec.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %d", ErrVersion, rec.Version)
	}
	return &rec, nil
}

// Save writes a recording to path.
func Save(path string, rec *Recording) error {
	data, err := Encode(rec)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("replay: write %s: %w", path, err)
	}
	return nil
}

// Load reads a recording from path.
func Load(path string) (*Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("replay: read %s: %w", path, err)
	}
	return Decode(data)
}

// Play re-runs a recording against cfg and returns the final snapshot.
// Ticks after the run ended are ignored.
func Play(cfg runner.Config, rec *Recording, opts ...runner.Option) (runner.Snapshot, error) {
	opts = append(opts, runner.WithSeed(rec.Seed))
	e, err := runner.New(cfg, opts...)
	if err != nil {
		return runner.Snapshot{}, fmt.Errorf("replay: %w", err)
	}
	e.Start()

	snap := e.Snapshot()
	for _, t := range rec.Ticks {
		if snap.Status.Finished() {
			break
		}
		for _, in := range t.Intents {
			e.Apply(in)
		}
		snap = e.Step(t.DT)
	}
	return snap, nil
}
