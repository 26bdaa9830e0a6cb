package report

import (
	"os"
	"sync"

	"github.com/google/uuid"
)

// Sink is the minimal interface the decompiler depends on.
//
// Record must be inert:
//   - must not panic (implementations should guard themselves)
//   - must not return errors
type Sink interface {
	Record(step Step)
}

// NopSink discards all steps.
type NopSink struct{}

func (NopSink) Record(Step) {}

// SafeRecord records a step and guarantees inertness even if the sink
// is buggy. It intentionally swallows panics.
func SafeRecord(s Sink, step Step) {
	if s == nil {
		return
	}
	defer func() {
		_ = recover()
	}()
	s.Record(step)
}

// Recorder collects steps for one operation and assigns it a fresh
// invocation id.
type Recorder struct {
	mu    sync.Mutex
	id    string
	steps []Step
}

func NewRecorder() *Recorder {
	return &Recorder{id: uuid.NewString()}
}

func (r *Recorder) Record(step Step) {
	if r == nil {
		return
	}
	defer func() {
		_ = recover()
	}()

	r.mu.Lock()
	r.steps = append(r.steps, step)
	r.mu.Unlock()
}

// InvocationID returns the id assigned at construction.
func (r *Recorder) InvocationID() string {
	if r == nil {
		return ""
	}
	return r.id
}

// Report builds a Report from the recorded steps. The returned report
// is independent from the recorder.
func (r *Recorder) Report(operation, archive, destination string, entries, compiled int) Report {
	rep := Report{
		InvocationID: r.InvocationID(),
		Operation:    operation,
		Archive:      archive,
		Destination:  destination,
		Entries:      entries,
		Compiled:     compiled,
	}
	r.mu.Lock()
	rep.Steps = make([]Step, len(r.steps))
	copy(rep.Steps, r.steps)
	r.mu.Unlock()
	return rep
}

// Write marshals the report canonically and writes it to path.
func Write(path string, rep Report) error {
	b, err := rep.CanonicalJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}
