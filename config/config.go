// Package config implements .catconv.yaml configuration file support.
//
// The conversion table is a list of targets, one per locale. Without a
// .catconv.yaml file the built-in table is used:
//
//	ja  <base>/ja.json  ->  values/yt.xml
//	en  <base>/en.json  ->  values-en/yt.xml
//	de  <base>/de.json  ->  values-de/yt.xml
//	fr  <base>/fr.json  ->  values-fr/yt.xml
//
// Settings can also come from the environment or a .env file in the project
// root (CATCONV_BASE, CATCONV_RES_DIR, CATCONV_PREFIX, CATCONV_NAME_STYLE,
// CATCONV_ON_COLLISION). The environment overrides the YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/peercast/catconv/android"
	"github.com/peercast/catconv/convert"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// File is the top-level .catconv.yaml structure.
type File struct {
	// Base is the directory holding the JSON catalogs.
	Base string `yaml:"base,omitempty"`
	// ResDir is the Android res/ directory that receives values*/ folders.
	ResDir string `yaml:"res_dir,omitempty"`
	// FileName is the resource file written in each values*/ folder.
	FileName string `yaml:"file_name,omitempty"`
	// Prefix is prepended to every resource name.
	Prefix string `yaml:"prefix,omitempty"`
	// NameStyle: "compact" or "legacy".
	NameStyle string `yaml:"name_style,omitempty"`
	// OnCollision: "warn", "keep" or "error".
	OnCollision string `yaml:"on_collision,omitempty"`
	// Targets is the conversion table, run in order.
	Targets []Target `yaml:"targets,omitempty"`

	// path is where the file was loaded from; empty for the built-in table.
	path string
}

// Target is one catalog -> resource file conversion.
type Target struct {
	// Name is a label shown in logs (defaults to Lang or Source).
	Name string `yaml:"name,omitempty"`
	// Lang is the language code; it derives Source (<lang>.json) and the
	// values-<lang>/ directory.
	Lang string `yaml:"lang,omitempty"`
	// Default writes into values/ instead of values-<lang>/.
	Default bool `yaml:"default,omitempty"`
	// Source overrides the catalog path, relative to Base.
	Source string `yaml:"source,omitempty"`
	// Dest overrides the resource path, relative to ResDir.
	Dest string `yaml:"dest,omitempty"`
}

// FileName is the default config file name.
const FileName = ".catconv.yaml"

// EnvFileName is the optional dotenv file read from the project root.
const EnvFileName = ".env"

const (
	// DefaultBase is where the web UI keeps its catalogs.
	DefaultBase = "peercast-yt/ui/catalogs"
	// DefaultResFile is the resource file name written per locale.
	DefaultResFile = "yt.xml"
)

// DefaultTargets is the built-in conversion table. Japanese is the source
// language and therefore the default resources.
func DefaultTargets() []Target {
	return []Target{
		{Lang: "ja", Default: true},
		{Lang: "en"},
		{Lang: "de"},
		{Lang: "fr"},
	}
}

// Default returns the built-in configuration.
func Default() *File {
	f := &File{}
	_ = f.normalize() // defaults always validate
	return f
}

// Path returns the file the configuration was loaded from, or "" when the
// built-in configuration is in use.
func (f *File) Path() string { return f.path }

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads .catconv.yaml from rootDir, falling back to the built-in table
// when it does not exist, then applies environment overrides.
func Load(rootDir string) (*File, error) {
	path := filepath.Join(rootDir, FileName)
	f, err := readFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		f, err = &File{}, nil
	}
	if err != nil {
		return nil, err
	}
	return finish(f, rootDir)
}

// LoadFile reads an explicit configuration file. Unlike Load, a missing file
// is an error.
func LoadFile(path, rootDir string) (*File, error) {
	f, err := readFile(path)
	if err != nil {
		return nil, err
	}
	return finish(f, rootDir)
}

func readFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	f.path = path
	return &f, nil
}

func finish(f *File, rootDir string) (*File, error) {
	env, err := loadEnv(rootDir)
	if err != nil {
		return nil, err
	}
	f.applyEnv(env)
	if err := f.normalize(); err != nil {
		return nil, err
	}
	return f, nil
}

// ---------------------------------------------------------------------------
// Environment
// ---------------------------------------------------------------------------

// envLookup resolves a variable from the process environment first, then
// from the project's .env file.
type envLookup func(key string) (string, bool)

func loadEnv(rootDir string) (envLookup, error) {
	path := filepath.Join(rootDir, EnvFileName)
	dotenv, err := godotenv.Read(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		dotenv = map[string]string{}
	}
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok && v != ""
	}, nil
}

func (f *File) applyEnv(lookup envLookup) {
	for key, dst := range map[string]*string{
		"CATCONV_BASE":         &f.Base,
		"CATCONV_RES_DIR":      &f.ResDir,
		"CATCONV_PREFIX":       &f.Prefix,
		"CATCONV_NAME_STYLE":   &f.NameStyle,
		"CATCONV_ON_COLLISION": &f.OnCollision,
	} {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

// normalize fills defaults and validates every field.
func (f *File) normalize() error {
	where := f.path
	if where == "" {
		where = "configuration"
	}

	if f.Base == "" {
		f.Base = DefaultBase
	}
	if f.ResDir == "" {
		f.ResDir = "."
	}
	if f.FileName == "" {
		f.FileName = DefaultResFile
	}
	if f.Prefix == "" {
		f.Prefix = android.DefaultPrefix
	}
	if !android.ValidPrefix(f.Prefix) {
		return fmt.Errorf("%s: invalid prefix %q (lowercase letters, digits and underscores, starting with a letter)", where, f.Prefix)
	}

	style, err := android.ParseNameStyle(f.NameStyle)
	if err != nil {
		return fmt.Errorf("%s: %w", where, err)
	}
	f.NameStyle = string(style)

	policy, err := convert.ParseCollisionPolicy(f.OnCollision)
	if err != nil {
		return fmt.Errorf("%s: %w", where, err)
	}
	f.OnCollision = string(policy)

	if len(f.Targets) == 0 {
		f.Targets = DefaultTargets()
	}

	defaults := 0
	for i := range f.Targets {
		t := &f.Targets[i]

		if t.Lang != "" {
			if _, err := language.Parse(t.Lang); err != nil {
				return fmt.Errorf("%s: target #%d has invalid lang %q: %w", where, i+1, t.Lang, err)
			}
		}
		if t.Source == "" && t.Lang == "" {
			return fmt.Errorf("%s: target #%d has no lang or source", where, i+1)
		}
		if t.Dest == "" && t.Lang == "" && !t.Default {
			return fmt.Errorf("%s: target #%d has no lang or dest", where, i+1)
		}
		if t.Default {
			defaults++
		}
		if t.Name == "" {
			t.Name = t.Lang
		}
		if t.Name == "" {
			t.Name = t.Source
		}
	}
	if defaults > 1 {
		return fmt.Errorf("%s: %d targets are marked default, at most one is allowed", where, defaults)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Resolving
// ---------------------------------------------------------------------------

// SourcePath returns the catalog path of a target, relative to the project root.
func (f *File) SourcePath(t Target) string {
	src := t.Source
	if src == "" {
		src = t.Lang + ".json"
	}
	if filepath.IsAbs(src) {
		return src
	}
	return filepath.Join(f.Base, src)
}

// DestPath returns the resource path of a target, relative to the project root.
func (f *File) DestPath(t Target) string {
	if t.Dest != "" {
		if filepath.IsAbs(t.Dest) {
			return t.Dest
		}
		return filepath.Join(f.ResDir, t.Dest)
	}
	lang := t.Lang
	if t.Default {
		lang = ""
	}
	return android.ResourcePath(f.ResDir, lang, f.FileName)
}

// Jobs resolves the targets into conversion jobs rooted at rootDir.
func (f *File) Jobs(rootDir string) []convert.Job {
	jobs := make([]convert.Job, 0, len(f.Targets))
	for _, t := range f.Targets {
		jobs = append(jobs, convert.Job{
			Name:   t.Name,
			Source: underRoot(rootDir, f.SourcePath(t)),
			Dest:   underRoot(rootDir, f.DestPath(t)),
		})
	}
	return jobs
}

// Options returns the conversion options described by the configuration.
func (f *File) Options() convert.Options {
	return convert.Options{
		Prefix:      f.Prefix,
		NameStyle:   android.NameStyle(f.NameStyle),
		OnCollision: convert.CollisionPolicy(f.OnCollision),
	}
}

func underRoot(rootDir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(rootDir, p)
}
