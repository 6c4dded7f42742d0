package recorder

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// Event is one decoded asciicast v2 event line: elapsed time in seconds
// since recording start, its kind, and its payload.
type Event struct {
	Time float64
	Kind EventKind
	Data string
}

// Reader parses an asciicast v2 JSONL stream.
type Reader struct {
	sc     *bufio.Scanner
	Header Header
}

// NewReader reads and decodes the header line immediately, leaving the
// scanner positioned at the first event line.
func NewReader(r io.Reader) (*Reader, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var header Header
	if sc.Scan() {
		if err := json.Unmarshal(sc.Bytes(), &header); err != nil {
			return nil, fmt.Errorf("recorder: decoding header: %w", err)
		}
	} else if err := sc.Err(); err != nil {
		return nil, err
	}

	return &Reader{sc: sc, Header: header}, nil
}

// Next decodes the next event line, returning io.EOF once the stream is
// exhausted.
func (r *Reader) Next() (Event, error) {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return Event{}, err
		}
		return Event{}, io.EOF
	}

	var raw [3]json.RawMessage
	if err := json.Unmarshal(r.sc.Bytes(), &raw); err != nil {
		return Event{}, fmt.Errorf("recorder: decoding event: %w", err)
	}

	var e Event
	if err := json.Unmarshal(raw[0], &e.Time); err != nil {
		return Event{}, err
	}
	var kind string
	if err := json.Unmarshal(raw[1], &kind); err != nil {
		return Event{}, err
	}
	e.Kind = EventKind(kind)
	if err := json.Unmarshal(raw[2], &e.Data); err != nil {
		return Event{}, err
	}
	return e, nil
}

// All decodes every remaining event.
func (r *Reader) All() ([]Event, error) {
	var out []Event
	for {
		e, err := r.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, e)
	}
}
