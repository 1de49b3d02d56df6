// Package trace reads simulator trace logs as a lazy, single-pass
// sequence of parsed events. Two physical encodings are accepted: one
// JSON array of records, or newline-delimited JSON records. The
// encoding is sniffed once at the start of the stream.
package trace

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/crimson-sun/faultline/internal/model"
)

// maxLineSize bounds a single NDJSON record. Simulator records are a
// few KB; 4MB leaves room for pathological Locality strings.
const maxLineSize = 4 * 1024 * 1024

// ParseIssue describes one record that failed to parse. It is data,
// not an error: the stream continues past it.
type ParseIssue struct {
	Record int    // 1-based line (NDJSON) or element index (array)
	Raw    string // offending text, truncated for diagnostics
	Reason string
}

// Result is one step of the stream: either a parsed Event or a ParseIssue.
type Result struct {
	Event model.Event
	Issue *ParseIssue
}

// Reader decodes a trace source. Not restartable: reopen the source to
// read again.
type Reader struct {
	closer io.Closer

	// exactly one of these is active after the encoding sniff
	lines *bufio.Scanner
	array *json.Decoder

	record int
	done   bool
}

// Open opens a trace file. Failure to open is fatal to the run.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trace: open %s: %w", path, err)
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// NewReader wraps an already-open source.
func NewReader(src io.Reader) (*Reader, error) {
	br := bufio.NewReaderSize(src, 64*1024)

	first, err := firstByte(br)
	if err == io.EOF {
		return &Reader{done: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("trace: read source: %w", err)
	}

	r := &Reader{}
	if first == '[' {
		dec := json.NewDecoder(br)
		if _, err := dec.Token(); err != nil { // consume '['
			return nil, fmt.Errorf("trace: read array opening: %w", err)
		}
		r.array = dec
		return r, nil
	}

	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 64*1024), maxLineSize)
	r.lines = sc
	return r, nil
}

// Next returns the next record, or io.EOF at end of stream. Non-EOF
// errors are source-level (I/O) and fatal.
func (r *Reader) Next() (Result, error) {
	if r.done {
		return Result{}, io.EOF
	}
	if r.array != nil {
		return r.nextArrayElement()
	}
	return r.nextLine()
}

func (r *Reader) nextLine() (Result, error) {
	for r.lines.Scan() {
		r.record++
		line := bytes.TrimSpace(r.lines.Bytes())
		if len(line) == 0 {
			continue
		}
		return r.decode(line), nil
	}
	if err := r.lines.Err(); err != nil {
		return Result{}, fmt.Errorf("trace: read line %d: %w", r.record+1, err)
	}
	r.done = true
	return Result{}, io.EOF
}

func (r *Reader) nextArrayElement() (Result, error) {
	if !r.array.More() {
		r.done = true
		return Result{}, io.EOF
	}
	r.record++
	var raw json.RawMessage
	if err := r.array.Decode(&raw); err != nil {
		// A syntax error inside a single JSON document cannot be
		// skipped; surface it as one issue and end the stream.
		r.done = true
		return Result{Issue: &ParseIssue{
			Record: r.record,
			Reason: fmt.Sprintf("malformed array element: %v", err),
		}}, nil
	}
	return r.decode(raw), nil
}

func (r *Reader) decode(data []byte) Result {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Result{Issue: &ParseIssue{
			Record: r.record,
			Raw:    truncate(string(data), 200),
			Reason: fmt.Sprintf("invalid JSON: %v", err),
		}}
	}
	ev, err := model.FromRaw(raw)
	if err != nil {
		return Result{Issue: &ParseIssue{
			Record: r.record,
			Raw:    truncate(string(data), 200),
			Reason: err.Error(),
		}}
	}
	return Result{Event: ev}
}

// Close releases the underlying source, if this Reader opened it.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// firstByte peeks past leading whitespace without consuming records.
func firstByte(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			if _, err := br.ReadByte(); err != nil {
				return 0, err
			}
		default:
			return b[0], nil
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
