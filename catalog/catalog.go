// Package catalog reads JSON localization catalogs.
//
// A catalog is a single flat JSON object mapping UI keys to localized text:
//
//	// Channel list
//	{
//	    "Channel": "チャンネル",
//	    "Bitrate": "ビットレート"
//	}
//
// Lines whose first non-blank characters are "//" are comments and are blanked
// before the JSON is decoded. The pass is line-oriented: a "//" that follows
// other content on the same line is left alone (and will usually make the
// JSON invalid).
package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Entry is one key/value pair of a catalog, in file order.
type Entry struct {
	Key   string
	Value Value
}

// Catalog is an ordered key/value mapping decoded from a JSON object.
type Catalog struct {
	Entries []Entry
	// index maps key to position in Entries.
	index map[string]int
}

// Len returns the number of distinct keys.
func (c *Catalog) Len() int { return len(c.Entries) }

// Keys returns the keys in file order.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.Entries))
	for _, e := range c.Entries {
		keys = append(keys, e.Key)
	}
	return keys
}

// Get returns the value stored under key.
func (c *Catalog) Get(key string) (Value, bool) {
	idx, ok := c.index[key]
	if !ok {
		return Value{}, false
	}
	return c.Entries[idx].Value, true
}

// set stores a value. A repeated key keeps its first position and takes the
// new value.
func (c *Catalog) set(key string, v Value) {
	if idx, ok := c.index[key]; ok {
		c.Entries[idx].Value = v
		return
	}
	c.index[key] = len(c.Entries)
	c.Entries = append(c.Entries, Entry{Key: key, Value: v})
}

// ---------------------------------------------------------------------------
// Errors
// ---------------------------------------------------------------------------

// SyntaxError describes malformed catalog content. Line and Column are
// 1-based and refer to the input file (decommenting keeps line numbers).
type SyntaxError struct {
	Line   int
	Column int
	Msg    string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Msg)
	}
	return e.Msg
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses a catalog file.
func ParseFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data)
}

// Decomment blanks every line whose first non-whitespace characters are
// "//". Line terminators are kept, so the result has the same number of
// lines as the input.
func Decomment(data []byte) []byte {
	lines := bytes.SplitAfter(data, []byte("\n"))
	var b bytes.Buffer
	b.Grow(len(data))
	for _, line := range lines {
		body := bytes.TrimRight(line, "\n")
		if bytes.HasPrefix(bytes.TrimLeftFunc(body, unicode.IsSpace), []byte("//")) {
			b.Write(line[len(body):])
			continue
		}
		b.Write(line)
	}
	return b.Bytes()
}

// Parse decomments data and decodes it as a JSON object, preserving key
// order. Errors are returned as *SyntaxError. The input must be UTF-8.
func Parse(data []byte) (*Catalog, error) {
	if off := invalidUTF8(data); off >= 0 {
		line, col := position(data, int64(off))
		return nil, &SyntaxError{Line: line, Column: col, Msg: fmt.Sprintf("invalid UTF-8 at byte offset %d", off)}
	}
	clean := Decomment(data)

	dec := json.NewDecoder(bytes.NewReader(clean))
	dec.UseNumber()

	t, err := dec.Token()
	if err != nil {
		return nil, syntaxError(clean, dec, err)
	}
	if delim, ok := t.(json.Delim); !ok || delim != '{' {
		return nil, &SyntaxError{Msg: fmt.Sprintf("top-level value must be an object, got %s", describeToken(t))}
	}

	c := &Catalog{index: make(map[string]int)}

	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return nil, syntaxError(clean, dec, err)
		}
		key, ok := kt.(string)
		if !ok {
			return nil, syntaxError(clean, dec, fmt.Errorf("expected string key, got %s", describeToken(kt)))
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, syntaxError(clean, dec, err)
		}
		v, err := newValue(raw)
		if err != nil {
			return nil, syntaxError(clean, dec, fmt.Errorf("key %q: %w", key, err))
		}
		c.set(key, v)
	}

	// Closing brace, then nothing but whitespace.
	if _, err := dec.Token(); err != nil {
		return nil, syntaxError(clean, dec, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after top-level object")
		}
		return nil, syntaxError(clean, dec, err)
	}

	return c, nil
}

// invalidUTF8 returns the offset of the first byte that is not valid UTF-8,
// or -1.
func invalidUTF8(data []byte) int {
	if utf8.Valid(data) {
		return -1
	}
	for off := 0; off < len(data); {
		r, size := utf8.DecodeRune(data[off:])
		if r == utf8.RuneError && size == 1 {
			return off
		}
		off += size
	}
	return -1
}

// syntaxError converts a decoder error into a *SyntaxError with a position.
func syntaxError(data []byte, dec *json.Decoder, err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	line, col := position(data, dec.InputOffset())
	return &SyntaxError{Line: line, Column: col, Msg: err.Error()}
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	prefix := data[:offset]
	line = bytes.Count(prefix, []byte("\n")) + 1
	col = int(offset) - (bytes.LastIndexByte(prefix, '\n') + 1) + 1
	return line, col
}

func describeToken(t any) string {
	switch v := t.(type) {
	case json.Delim:
		return strconv.Quote(v.String())
	case string:
		return "string " + strconv.Quote(v)
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ---------------------------------------------------------------------------
// Values
// ---------------------------------------------------------------------------

// ValueKind is the JSON type of a catalog value.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindString
	KindNumber
	KindBool
	KindArray
	KindObject
)

// Value is a decoded catalog value. Only strings, numbers, booleans and null
// can be rendered; empty arrays and objects are accepted so that they can be
// skipped like any other empty value, non-empty ones are rejected by Parse.
type Value struct {
	Kind ValueKind
	// Text is the string content, the literal number text, or "true"/"false".
	Text string
}

// String returns v.Text.
func (v Value) String() string { return v.Text }

// Truthy reports whether the value counts as present: empty strings, null,
// false, zero and empty containers do not.
func (v Value) Truthy() bool {
	switch v.Kind {
	case KindString:
		return v.Text != ""
	case KindBool:
		return v.Text == "true"
	case KindNumber:
		f, err := strconv.ParseFloat(v.Text, 64)
		return err != nil || f != 0
	}
	return false
}

func newValue(raw json.RawMessage) (Value, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return Value{}, errors.New("missing value")
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, err
		}
		return Value{Kind: KindString, Text: s}, nil
	case 't', 'f':
		return Value{Kind: KindBool, Text: trimmed}, nil
	case 'n':
		return Value{Kind: KindNull}, nil
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return Value{}, err
		}
		if len(items) > 0 {
			return Value{}, errors.New("arrays are not supported as values")
		}
		return Value{Kind: KindArray}, nil
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return Value{}, err
		}
		if len(fields) > 0 {
			return Value{}, errors.New("nested objects are not supported as values")
		}
		return Value{Kind: KindObject}, nil
	}
	return Value{Kind: KindNumber, Text: trimmed}, nil
}
