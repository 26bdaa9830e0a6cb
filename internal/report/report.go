// Package report produces the optional run report: a canonical JSON
// record of what a single decompile operation did. The report is
// observational only and must never affect execution behavior.
package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// StepKind is the stable discriminator for a report step. The string
// values are part of the report's canonical bytes; do not rename.
type StepKind string

const (
	StepValidated   StepKind = "Validated"
	StepStaged      StepKind = "Staged"
	StepToolInvoked StepKind = "ToolInvoked"
	StepArranged    StepKind = "Arranged"
	StepCommitted   StepKind = "Committed"
	StepRolledBack  StepKind = "RolledBack"
)

// Step is a single recorded phase transition.
//
// Steps keep their recorded order: unlike a concurrent trace there is
// only one linear operation, so insertion order is the canonical order.
type Step struct {
	Kind   StepKind
	Detail string
}

// Report is the canonical record of one operation.
type Report struct {
	InvocationID string
	Operation    string
	Archive      string
	Destination  string
	Entries      int
	Compiled     int
	Steps        []Step
}

// Validate checks basic invariants and returns a descriptive error.
func (r *Report) Validate() error {
	if r == nil {
		return errors.New("report is nil")
	}
	if r.InvocationID == "" {
		return errors.New("invocationId is required")
	}
	if r.Operation == "" {
		return errors.New("operation is required")
	}
	for i, s := range r.Steps {
		if s.Kind == "" {
			return fmt.Errorf("steps[%d].kind is required", i)
		}
	}
	return nil
}

// CanonicalJSON returns the canonical JSON encoding of the report.
func (r Report) CanonicalJSON() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal(&r)
}

// MarshalJSON fixes field order and omits absent optional fields.
func (r Report) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	writeField := func(name string, v any) {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		nb, _ := json.Marshal(name)
		buf.Write(nb)
		buf.WriteByte(':')
		vb, _ := json.Marshal(v)
		buf.Write(vb)
	}

	writeField("invocationId", r.InvocationID)
	writeField("operation", r.Operation)
	if r.Archive != "" {
		writeField("archive", r.Archive)
	}
	if r.Destination != "" {
		writeField("destination", r.Destination)
	}
	writeField("entries", r.Entries)
	writeField("compiled", r.Compiled)

	if buf.Len() > 1 {
		buf.WriteByte(',')
	}
	buf.WriteString("\"steps\":[")
	for i := range r.Steps {
		if i > 0 {
			buf.WriteByte(',')
		}
		sb, err := json.Marshal(r.Steps[i])
		if err != nil {
			return nil, err
		}
		buf.Write(sb)
	}
	buf.WriteByte(']')

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON fixes field order and omits an empty detail.
func (s Step) MarshalJSON() ([]byte, error) {
	if s.Kind == "" {
		return nil, errors.New("kind is required")
	}
	var buf bytes.Buffer
	buf.WriteString("{\"kind\":")
	kb, _ := json.Marshal(string(s.Kind))
	buf.Write(kb)
	if s.Detail != "" {
		buf.WriteString(",\"detail\":")
		db, _ := json.Marshal(s.Detail)
		buf.Write(db)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
