// Package android implements reading and writing of Android string resource
// files (res/values*/yt.xml) produced from JSON catalogs.
//
// Only plain <string> resources and XML comments are modelled. Values are
// escaped with the standard XML text escaper (&, <, >) on Marshal; Android
// apostrophe escaping is deliberately not applied so that output stays
// byte-compatible with the files generated before this tool existed.
package android

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ---------------------------------------------------------------------------
// Data model
// ---------------------------------------------------------------------------

// EntryKind identifies the type of a resource entry.
type EntryKind int

const (
	// KindString is a plain <string> resource.
	KindString EntryKind = iota
	// KindComment is an XML comment (not a resource).
	KindComment
)

// Entry represents a single item in a resource file.
type Entry struct {
	Kind EntryKind

	// Name is the resource name (attribute name="…"). Empty for comments.
	Name string
	// Value is the unescaped text of the resource.
	Value string

	// Comment is the raw comment text (without <!-- -->).
	Comment string
}

// IsComment reports whether this entry is an XML comment.
func (e *Entry) IsComment() bool { return e.Kind == KindComment }

// File represents a resource file in document order.
type File struct {
	Entries []*Entry
	// byName maps resource name to the index of its first occurrence.
	byName map[string]int
}

// NewFile returns an empty resource file.
func NewFile() *File {
	return &File{byName: make(map[string]int)}
}

// Add appends a <string> resource. Names are not deduplicated: adding the
// same name twice yields two elements in the output.
func (f *File) Add(name, value string) {
	f.addEntry(&Entry{Kind: KindString, Name: name, Value: value})
}

// AddComment appends an XML comment.
func (f *File) AddComment(text string) {
	f.addEntry(&Entry{Kind: KindComment, Comment: text})
}

func (f *File) addEntry(e *Entry) {
	if f.byName == nil {
		f.byName = make(map[string]int)
	}
	idx := len(f.Entries)
	f.Entries = append(f.Entries, e)
	if e.Name == "" {
		return
	}
	if _, exists := f.byName[e.Name]; !exists {
		f.byName[e.Name] = idx
	}
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// Names returns all resource names in document order, duplicates included.
func (f *File) Names() []string {
	var names []string
	for _, e := range f.Entries {
		if e.Kind == KindString {
			names = append(names, e.Name)
		}
	}
	return names
}

// Len returns the number of <string> resources.
func (f *File) Len() int {
	n := 0
	for _, e := range f.Entries {
		if e.Kind == KindString {
			n++
		}
	}
	return n
}

// Get returns the value of the first resource with the given name.
func (f *File) Get(name string) (string, bool) {
	idx, ok := f.byName[name]
	if !ok {
		return "", false
	}
	return f.Entries[idx].Value, true
}

// DuplicateNames returns names that occur more than once, sorted.
func (f *File) DuplicateNames() []string {
	counts := make(map[string]int)
	for _, e := range f.Entries {
		if e.Kind == KindString {
			counts[e.Name]++
		}
	}
	var dups []string
	for name, n := range counts {
		if n > 1 {
			dups = append(dups, name)
		}
	}
	sort.Strings(dups)
	return dups
}

// ---------------------------------------------------------------------------
// Parsing
// ---------------------------------------------------------------------------

// ParseFile reads and parses a resource file.
func ParseFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses resource XML. Unlike a lenient scan, malformed XML is an
// error, so Parse doubles as a well-formedness check for generated output.
func Parse(data []byte) (*File, error) {
	f := NewFile()

	dec := xml.NewDecoder(strings.NewReader(string(data)))
	inResources := false
	sawRoot := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "resources" && !sawRoot {
				inResources = true
				sawRoot = true
				continue
			}
			if !inResources {
				if err := dec.Skip(); err != nil {
					return nil, fmt.Errorf("parsing XML: %w", err)
				}
				continue
			}
			if t.Name.Local != "string" {
				if err := dec.Skip(); err != nil {
					return nil, fmt.Errorf("parsing XML: %w", err)
				}
				continue
			}
			var name string
			for _, attr := range t.Attr {
				if attr.Name.Local == "name" {
					name = attr.Value
				}
			}
			var value string
			if err := dec.DecodeElement(&value, &t); err != nil {
				return nil, fmt.Errorf("reading <string name=%q>: %w", name, err)
			}
			f.Add(name, value)

		case xml.Comment:
			if inResources {
				if c := strings.TrimSpace(string(t)); c != "" {
					f.AddComment(c)
				}
			}

		case xml.EndElement:
			if t.Name.Local == "resources" {
				inResources = false
			}
		}
	}

	if !sawRoot {
		return nil, fmt.Errorf("parsing XML: missing <resources> root element")
	}
	return f, nil
}

// ---------------------------------------------------------------------------
// Writing
// ---------------------------------------------------------------------------

// WriteFile writes the resource file to disk, creating parent directories.
func (f *File) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	return os.WriteFile(path, f.Marshal(), 0644)
}

// Marshal produces the XML document. The layout (blank line after the root
// start tag, a single-space line before the end tag, trailing blank line) is
// part of the output contract.
func (f *File) Marshal() []byte {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	b.WriteString("<resources>\n")
	b.WriteString("\n")

	for _, e := range f.Entries {
		switch e.Kind {
		case KindComment:
			b.WriteString(fmt.Sprintf("<!-- %s -->\n", e.Comment))
		case KindString:
			b.WriteString(fmt.Sprintf("<string name=\"%s\">%s</string>\n", e.Name, Escape(e.Value)))
		}
	}

	b.WriteString(" \n")
	b.WriteString("</resources>\n")
	b.WriteString("\n")
	return []byte(b.String())
}

// ---------------------------------------------------------------------------
// Escaping
// ---------------------------------------------------------------------------

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

// Escape escapes &, < and > for use in XML text content. Quotes are left
// untouched.
func Escape(s string) string {
	return escaper.Replace(s)
}

// ---------------------------------------------------------------------------
// Resource directories
// ---------------------------------------------------------------------------

// DetectLanguages scans an Android res/ directory for values-XX/ directories
// that contain fileName and returns the language codes.
func DetectLanguages(resDir, fileName string) []string {
	entries, err := os.ReadDir(resDir)
	if err != nil {
		return nil
	}

	var langs []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, "values-") {
			continue
		}
		lang := strings.TrimPrefix(name, "values-")
		if lang == "" {
			continue
		}
		if _, err := os.Stat(filepath.Join(resDir, name, fileName)); err == nil {
			langs = append(langs, androidLocaleToStandard(lang))
		}
	}
	sort.Strings(langs)
	return langs
}

// LocaleDirName converts a language code to an Android values directory
// name (e.g., "pt-BR" -> "values-pt-rBR", "de" -> "values-de").
// An empty code yields the default "values" directory.
func LocaleDirName(lang string) string {
	if lang == "" {
		return "values"
	}
	return "values-" + standardToAndroidLocale(lang)
}

// ResourcePath returns the path of fileName for a given language. An empty
// language selects the default values/ directory.
func ResourcePath(resDir, lang, fileName string) string {
	return filepath.Join(resDir, LocaleDirName(lang), fileName)
}

// androidLocaleToStandard converts Android locale format to BCP-47.
// e.g., "pt-rBR" -> "pt-BR", "b+zh+Hant" -> "zh-Hant", "ru" -> "ru"
func androidLocaleToStandard(androidLocale string) string {
	if tag, ok := strings.CutPrefix(androidLocale, "b+"); ok {
		return strings.ReplaceAll(tag, "+", "-")
	}
	if idx := strings.Index(androidLocale, "-r"); idx >= 0 {
		return androidLocale[:idx] + "-" + androidLocale[idx+2:]
	}
	return androidLocale
}

// standardToAndroidLocale converts BCP-47 (or pt_BR) to Android locale format.
// A language with only a region uses the legacy qualifier ("pt-BR" ->
// "pt-rBR"); anything else, such as a script subtag, needs the BCP-47 form
// ("zh-Hant" -> "b+zh+Hant").
func standardToAndroidLocale(lang string) string {
	parts := strings.Split(strings.ReplaceAll(lang, "_", "-"), "-")
	switch {
	case len(parts) == 1:
		return parts[0]
	case len(parts) == 2 && isRegion(parts[1]):
		return parts[0] + "-r" + parts[1]
	}
	return "b+" + strings.Join(parts, "+")
}

// isRegion reports whether s is an ISO 3166 alpha-2 or UN M.49 region code.
func isRegion(s string) bool {
	switch len(s) {
	case 2:
		return isASCIILetters(s)
	case 3:
		return strings.Trim(s, "0123456789") == ""
	}
	return false
}

func isASCIILetters(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
