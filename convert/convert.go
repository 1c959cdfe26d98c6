// Package convert turns JSON catalogs into Android string resource files.
//
// A conversion is a straight pipeline: read, decomment, parse, name, escape,
// write. Nothing is written when the catalog fails to parse.
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/peercast/catconv/android"
	"github.com/peercast/catconv/catalog"
)

// CollisionPolicy decides what happens when two keys produce the same
// resource name.
type CollisionPolicy string

const (
	// CollisionWarn keeps every entry and reports the duplicates in Result.
	CollisionWarn CollisionPolicy = "warn"
	// CollisionKeep keeps every entry silently.
	CollisionKeep CollisionPolicy = "keep"
	// CollisionFail aborts the conversion before anything is written.
	CollisionFail CollisionPolicy = "error"
)

// ParseCollisionPolicy validates a policy name. The empty string selects warn.
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch p := CollisionPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return CollisionWarn, nil
	case CollisionWarn, CollisionKeep, CollisionFail:
		return p, nil
	}
	return "", fmt.Errorf("unknown collision policy %q (valid: warn, keep, error)", s)
}

// Options control key naming, collision handling and tracing.
type Options struct {
	// Prefix is prepended to every resource name (default "yt_").
	Prefix    string
	NameStyle android.NameStyle
	// OnCollision defaults to CollisionWarn.
	OnCollision CollisionPolicy
	// Trace receives one "name value" line per converted entry. Nil disables it.
	Trace io.Writer
}

func (o Options) withDefaults() Options {
	if o.Prefix == "" {
		o.Prefix = android.DefaultPrefix
	}
	if o.NameStyle == "" {
		o.NameStyle = android.NameStyleCompact
	}
	if o.OnCollision == "" {
		o.OnCollision = CollisionWarn
	}
	return o
}

// SkipReason explains why a catalog entry produced no resource.
type SkipReason int

const (
	SkipEmptyKey SkipReason = iota
	SkipEmptyValue
	// SkipEmptyName means the key has no character usable in a resource name.
	SkipEmptyName
)

func (r SkipReason) String() string {
	switch r {
	case SkipEmptyKey:
		return "empty key"
	case SkipEmptyValue:
		return "empty value"
	case SkipEmptyName:
		return "no usable characters in key"
	}
	return "unknown"
}

// Skipped is a catalog entry left out of the output.
type Skipped struct {
	Key    string
	Reason SkipReason
}

// Result summarizes one conversion.
type Result struct {
	Source  string
	Dest    string
	Written int
	Skipped []Skipped
	// Collisions lists resource names emitted more than once.
	Collisions []string
}

// Build maps a parsed catalog to a resource file. It performs no I/O other
// than writing the trace.
func Build(c *catalog.Catalog, opts Options) (*android.File, *Result) {
	opts = opts.withDefaults()
	f := android.NewFile()
	res := &Result{}

	for _, e := range c.Entries {
		if e.Key == "" {
			res.Skipped = append(res.Skipped, Skipped{Key: e.Key, Reason: SkipEmptyKey})
			continue
		}
		if !e.Value.Truthy() {
			res.Skipped = append(res.Skipped, Skipped{Key: e.Key, Reason: SkipEmptyValue})
			continue
		}
		name, ok := android.ResourceName(opts.Prefix, e.Key, opts.NameStyle)
		if !ok {
			res.Skipped = append(res.Skipped, Skipped{Key: e.Key, Reason: SkipEmptyName})
			continue
		}
		if opts.Trace != nil {
			fmt.Fprintln(opts.Trace, name, e.Value.String())
		}
		f.Add(name, e.Value.String())
		res.Written++
	}

	res.Collisions = f.DuplicateNames()
	return f, res
}

// Convert reads the catalog at src and writes the resource file at dst,
// creating missing parent directories of dst.
func Convert(src, dst string, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	f, res, err := load(src, opts)
	if err != nil {
		return nil, err
	}
	res.Dest = dst

	if len(res.Collisions) > 0 && opts.OnCollision == CollisionFail {
		return res, &CollisionError{Path: src, Names: res.Collisions}
	}

	if err := f.WriteFile(dst); err != nil {
		return res, &IOError{Op: "write", Path: dst, Err: err}
	}
	return res, nil
}

// Inspect runs a conversion of src without writing anything and returns the
// resource file it would produce.
func Inspect(src string, opts Options) (*android.File, *Result, error) {
	return load(src, opts.withDefaults())
}

func load(src string, opts Options) (*android.File, *Result, error) {
	c, err := catalog.ParseFile(src)
	if err != nil {
		var se *catalog.SyntaxError
		if errors.As(err, &se) {
			return nil, nil, &ParseError{Path: src, Line: se.Line, Column: se.Column, Err: errors.New(se.Msg)}
		}
		var pe *fs.PathError
		if errors.As(err, &pe) {
			err = pe
		}
		return nil, nil, &IOError{Op: "read", Path: src, Err: err}
	}

	f, res := Build(c, opts)
	res.Source = src
	return f, res, nil
}

// Job is one source/destination pair.
type Job struct {
	// Name labels the job in errors and reports.
	Name   string
	Source string
	Dest   string
}

// Run converts jobs one after another in order and stops at the first
// error. Results of the completed jobs are returned along with the error.
// The context is checked between jobs.
func Run(ctx context.Context, jobs []Job, opts Options) ([]*Result, error) {
	results := make([]*Result, 0, len(jobs))
	for _, job := range jobs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := Convert(job.Source, job.Dest, opts)
		if err != nil {
			return results, fmt.Errorf("%s: %w", job.label(), err)
		}
		results = append(results, res)
	}
	return results, nil
}

func (j Job) label() string {
	if j.Name != "" {
		return j.Name
	}
	return j.Source
}
