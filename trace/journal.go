// Package trace records simulation runs: a compressed JSONL event journal and GeoJSON flight paths
package trace

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"

	"github.com/lixenwraith/drone-harvest/engine"
	"github.com/lixenwraith/drone-harvest/event"
)

const journalVersion = 1

// ErrClosed is returned by writes after Close
var ErrClosed = errors.New("journal closed")

// Header is the first line of every journal
type Header struct {
	Version int       `json:"version"`
	Session string    `json:"session"`
	Started time.Time `json:"started"`
}

// Record is one journaled event
type Record struct {
	Tick    int64           `json:"tick"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type record struct {
	Tick    int64  `json:"tick"`
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Journal writes every routed event as one zstd-compressed JSON line
// It implements event.Handler[*engine.World]; write failures are sticky and reported by Err and Close
type Journal struct {
	mu     sync.Mutex
	closer io.Closer
	enc    *zstd.Encoder
	w      *bufio.Writer
	err    error
	closed bool
	count  int64
}

// Create opens path for writing, creating parent directories
func Create(path string, session uuid.UUID) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("journal dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	j, err := newJournal(f, f, session)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return j, nil
}

// NewJournal writes to w; the caller keeps ownership of w
func NewJournal(w io.Writer, session uuid.UUID) (*Journal, error) {
	return newJournal(w, nil, session)
}

func newJournal(w io.Writer, closer io.Closer, session uuid.UUID) (*Journal, error) {
	enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("zstd writer: %w", err)
	}
	j := &Journal{
		closer: closer,
		enc:    enc,
		w:      bufio.NewWriterSize(enc, 64*1024),
	}
	if err := j.writeLine(Header{Version: journalVersion, Session: session.String(), Started: time.Now().UTC()}); err != nil {
		_ = enc.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) writeLine(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := j.w.Write(b); err != nil {
		return err
	}
	return j.w.WriteByte('\n')
}

// Write appends one event
func (j *Journal) Write(ev event.Event) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return ErrClosed
	}
	if j.err != nil {
		return j.err
	}
	if err := j.writeLine(record{Tick: ev.Tick, Type: ev.Type.String(), Payload: ev.Payload}); err != nil {
		j.err = fmt.Errorf("journal write: %w", err)
		return j.err
	}
	j.count++
	return nil
}

// Count returns the number of events written
func (j *Journal) Count() int64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.count
}

// Err returns the first write failure
func (j *Journal) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Close flushes and finishes the zstd frame, closing the file when the journal owns it
// Safe to call more than once
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closed {
		return nil
	}
	j.closed = true

	err := j.err
	if ferr := j.w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	if cerr := j.enc.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if j.closer != nil {
		if cerr := j.closer.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func (j *Journal) EventTypes() []event.EventType {
	return event.AllTypes()
}

func (j *Journal) HandleEvent(_ *engine.World, ev event.Event) {
	_ = j.Write(ev)
}

// Read decodes a journal produced by Journal
func Read(r io.Reader) (Header, []Record, error) {
	var hdr Header
	dec, err := zstd.NewReader(r)
	if err != nil {
		return hdr, nil, fmt.Errorf("zstd reader: %w", err)
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return hdr, nil, fmt.Errorf("read header: %w", err)
		}
		return hdr, nil, errors.New("read header: empty journal")
	}
	if err := json.Unmarshal(sc.Bytes(), &hdr); err != nil {
		return hdr, nil, fmt.Errorf("decode header: %w", err)
	}

	var out []Record
	for sc.Scan() {
		var rec Record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			return hdr, out, fmt.Errorf("decode record %d: %w", len(out), err)
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return hdr, out, fmt.Errorf("read records: %w", err)
	}
	return hdr, out, nil
}
