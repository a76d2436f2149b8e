package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/syllabus-engine/backend/internal/course"
)

// ErrInputMissing is returned when the upstream record source does not exist.
var ErrInputMissing = errors.New("input artifact missing")

// RecordSet is the ordered result of reading an upstream source.
type RecordSet struct {
	Records []course.Record
	// Skipped lists ids whose value was not an object.
	Skipped []string
}

// LoadRecords reads a {course_id: {field: value}} document, keeping the
// source order of the ids.
func LoadRecords(path string) (*RecordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputMissing, path)
		}
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()

	set, err := ReadRecords(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return set, nil
}

// ReadRecords decodes records from r. Duplicate ids keep the last value at
// the position of the first occurrence.
func ReadRecords(r io.Reader) (*RecordSet, error) {
	dec := json.NewDecoder(r)

	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	set := &RecordSet{}
	position := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		id, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key token %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("record %s: %w", id, err)
		}

		fields, ok := decodeFields(raw)
		if !ok {
			set.Skipped = append(set.Skipped, id)
			continue
		}
		rec := course.Record{ID: id, Fields: fields}
		if i, dup := position[id]; dup {
			set.Records[i] = rec
			continue
		}
		position[id] = len(set.Records)
		set.Records = append(set.Records, rec)
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return set, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// decodeFields reports false when raw is not a JSON object.
func decodeFields(raw json.RawMessage) (map[string]string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, false
	}
	var values map[string]json.RawMessage
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, false
	}
	fields := make(map[string]string, len(values))
	for k, v := range values {
		fields[k] = stringify(v)
	}
	return fields, true
}

// stringify flattens a field value: strings as-is, null as "", scalars by
// their literal text and nested values as compact JSON.
func stringify(v json.RawMessage) string {
	v = bytes.TrimSpace(v)
	switch {
	case len(v) == 0 || bytes.Equal(v, []byte("null")):
		return ""
	case v[0] == '"':
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			return s
		}
	case v[0] == '{' || v[0] == '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err == nil {
			return buf.String()
		}
	}
	return string(v)
}
