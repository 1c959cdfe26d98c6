// catconv converts JSON UI catalogs into Android string resources.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/peercast/catconv/android"
	"github.com/peercast/catconv/config"
	"github.com/peercast/catconv/convert"
	"github.com/peercast/catconv/i18n"
	"github.com/peercast/catconv/langmeta"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

type globalFlags struct {
	root        string
	config      string
	quiet       bool
	nameStyle   string
	onCollision string
	prefix      string
}

var flags globalFlags

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "catconv",
		Short: i18n.T("Convert JSON UI catalogs into Android string resources"),
		Long: `catconv converts the web UI's JSON catalogs into Android string resources.

Each catalog is a flat JSON object; lines starting with // are comments.
Keys become resource names (yt_ prefix, lowercase, [a-z0-9_]) and values are
XML-escaped into <string> elements of res/values*/yt.xml.

Without arguments catconv runs the conversion table: the built-in one
(ja -> values/, en, de, fr -> values-XX/) or the one in .catconv.yaml.

Commands:
  run         Convert every catalog of the table (default)
  convert     Convert a single catalog
  status      Show what a run would produce without writing anything
  version     Show version information`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAll(cmd.Context(), cmd.OutOrStdout())
		},
	}

	// Global persistent flags, inherited by all subcommands
	pf := root.PersistentFlags()
	pf.StringVar(&flags.root, "root", ".", "Project root directory")
	pf.StringVar(&flags.config, "config", "", "Configuration file (default <root>/"+config.FileName+")")
	pf.BoolVarP(&flags.quiet, "quiet", "q", false, "Do not print converted entries")
	pf.StringVar(&flags.nameStyle, "names", "", "Resource name style: compact or legacy")
	pf.StringVar(&flags.onCollision, "on-collision", "", "Duplicate resource names: warn, keep or error")
	pf.StringVar(&flags.prefix, "prefix", "", "Resource name prefix (default yt_)")

	root.AddCommand(
		newRunCmd(),
		newConvertCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logError("%s", describeError(err))
		stop()
		os.Exit(1)
	}
}

// describeError prefixes the two conversion error kinds with a short,
// translated explanation.
func describeError(err error) string {
	var pe *convert.ParseError
	var ioe *convert.IOError
	var ce *convert.CollisionError
	switch {
	case errors.As(err, &pe):
		return fmt.Sprintf("%s: %v", i18n.T("Invalid catalog"), err)
	case errors.As(err, &ioe):
		return fmt.Sprintf("%s: %v", i18n.T("File error"), err)
	case errors.As(err, &ce):
		return fmt.Sprintf("%s: %v", i18n.T("Duplicate resource names"), err)
	case errors.Is(err, context.Canceled):
		return i18n.T("Interrupted")
	}
	return err.Error()
}

// ---------------------------------------------------------------------------
// Configuration helpers
// ---------------------------------------------------------------------------

func loadConfig() (*config.File, error) {
	if flags.config != "" {
		return config.LoadFile(flags.config, flags.root)
	}
	return config.Load(flags.root)
}

// conversionOptions merges command-line flags over the configuration.
func conversionOptions(cfg *config.File, trace io.Writer) (convert.Options, error) {
	opts := cfg.Options()
	if flags.nameStyle != "" {
		style, err := android.ParseNameStyle(flags.nameStyle)
		if err != nil {
			return opts, err
		}
		opts.NameStyle = style
	}
	if flags.onCollision != "" {
		policy, err := convert.ParseCollisionPolicy(flags.onCollision)
		if err != nil {
			return opts, err
		}
		opts.OnCollision = policy
	}
	if flags.prefix != "" {
		if !android.ValidPrefix(flags.prefix) {
			return opts, fmt.Errorf("invalid prefix %q", flags.prefix)
		}
		opts.Prefix = flags.prefix
	}
	if !flags.quiet {
		opts.Trace = trace
	}
	return opts, nil
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: i18n.T("Show version information"),
		Long:  `Display version, commit hash, and build date.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "catconv version %s\n", version)
			fmt.Fprintf(out, "  commit:    %s\n", commit)
			fmt.Fprintf(out, "  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// run (convert the whole table)
// ---------------------------------------------------------------------------

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: i18n.T("Convert every catalog of the conversion table"),
		Long: `Convert every catalog listed in the conversion table, in order.

The run stops at the first catalog that cannot be read, parsed or written;
resource files already written by earlier targets are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAll(cmd.Context(), cmd.OutOrStdout())
		},
	}
}

func runAll(ctx context.Context, trace io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts, err := conversionOptions(cfg, trace)
	if err != nil {
		return err
	}

	if cfg.Path() != "" {
		logInfo(i18n.T("Using %s"), cfg.Path())
	}
	jobs := cfg.Jobs(flags.root)
	logInfo(i18n.N("Converting %d catalog", "Converting %d catalogs", len(jobs)), len(jobs))

	results, err := convert.Run(ctx, jobs, opts)
	for _, res := range results {
		reportResult(res, opts.OnCollision)
	}
	if err != nil {
		return err
	}

	logSuccess(i18n.T("All catalogs converted"))
	return nil
}

func reportResult(res *convert.Result, policy convert.CollisionPolicy) {
	logSuccess("%s -> %s (%s)", res.Source, res.Dest,
		fmt.Sprintf(i18n.N("%d string", "%d strings", res.Written), res.Written))
	if n := len(res.Skipped); n > 0 {
		logInfo(i18n.N("%d entry skipped (empty key or value)", "%d entries skipped (empty key or value)", n), n)
		for _, s := range res.Skipped {
			if s.Reason == convert.SkipEmptyName {
				logWarning(i18n.T("Key %q has no characters usable in a resource name"), s.Key)
			}
		}
	}
	if len(res.Collisions) > 0 && policy == convert.CollisionWarn {
		logWarning(i18n.T("Duplicate resource names in %s: %s"), res.Dest, strings.Join(res.Collisions, ", "))
	}
}

// ---------------------------------------------------------------------------
// convert (single catalog)
// ---------------------------------------------------------------------------

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <catalog.json> <resource.xml>",
		Short: i18n.T("Convert a single catalog"),
		Long: `Convert one JSON catalog into one Android resource file.

Missing parent directories of the destination are created. Naming and
collision settings come from the configuration and global flags.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			opts, err := conversionOptions(cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			res, err := convert.Convert(args[0], args[1], opts)
			if err != nil {
				return err
			}
			reportResult(res, opts.OnCollision)
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// status (read-only)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: i18n.T("Show what a run would produce"),
		Long: `Parse every catalog of the conversion table and show per-language
statistics: strings written, entries skipped, duplicate names and whether the
resource file on disk is up to date. Does not modify any files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.ErrOrStderr())
		},
	}
}

func runStatus(w io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	opts, err := conversionOptions(cfg, nil)
	if err != nil {
		return err
	}
	opts.Trace = nil

	absRoot, _ := filepath.Abs(flags.root)
	configDesc := i18n.T("built-in")
	if cfg.Path() != "" {
		configDesc = cfg.Path()
	}

	fmt.Fprintf(w, "\n%s%s%s\n", colorBlue, i18n.T("Project"), colorReset)
	fmt.Fprintln(w, strings.Repeat("─", 60))
	fmt.Fprintf(w, "  %-12s %s\n", i18n.T("Root:"), absRoot)
	fmt.Fprintf(w, "  %-12s %s\n", i18n.T("Config:"), configDesc)
	fmt.Fprintf(w, "  %-12s %s\n", i18n.T("Catalogs:"), cfg.Base)
	fmt.Fprintf(w, "  %-12s %s\n", i18n.T("Resources:"), cfg.ResDir)
	fmt.Fprintf(w, "  %-12s %s (%s)\n", i18n.T("Names:"), opts.Prefix+"…", opts.NameStyle)
	fmt.Fprintln(w)

	var langs []string
	for _, t := range cfg.Targets {
		langs = append(langs, t.Name)
	}
	width := langColumnWidth(langs)

	fmt.Fprintf(w, "%s%s%s\n", colorBlue, i18n.T("Catalogs"), colorReset)
	fmt.Fprintln(w, strings.Repeat("─", 60))

	failed := 0
	for i, job := range cfg.Jobs(flags.root) {
		t := cfg.Targets[i]
		cell := langCell(t.Name, width)
		if t.Lang == "" {
			cell = fmt.Sprintf("   %-*s", width, t.Name)
		}

		f, res, err := convert.Inspect(job.Source, opts)
		if err != nil {
			failed++
			fmt.Fprintf(w, "%s  %s%s%s\n", cell, colorRed, describeError(err), colorReset)
			continue
		}

		total := res.Written + len(res.Skipped)
		percent := 100
		if total > 0 {
			percent = res.Written * 100 / total
		}
		fmt.Fprintf(w, "%s  %s  %4d/%-4d %s%s\n", cell, progressBar(percent, 20), res.Written, total, destState(job.Dest, f), langName(t.Lang))
		if len(res.Collisions) > 0 {
			fmt.Fprintf(w, "%*s  %s%s: %s%s\n", width+3, "", colorYellow, i18n.T("duplicates"), strings.Join(res.Collisions, ", "), colorReset)
		}
	}
	fmt.Fprintln(w)

	for _, lang := range untrackedLanguages(cfg) {
		logWarning(i18n.T("%s exists but no target writes it"), filepath.Join(cfg.ResDir, android.LocaleDirName(lang), cfg.FileName))
	}

	if failed > 0 {
		return fmt.Errorf(i18n.N("%d catalog cannot be converted", "%d catalogs cannot be converted", failed), failed)
	}
	return nil
}

// destState compares the resource file on disk with what a run would write.
func destState(path string, f *android.File) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return colorYellow + i18n.T("missing") + colorReset
	}
	if bytes.Equal(data, f.Marshal()) {
		return colorGreen + i18n.T("up to date") + colorReset
	}
	existing, err := android.Parse(data)
	if err != nil {
		return colorRed + i18n.T("not a resource file") + colorReset
	}
	n := changedStrings(existing, f)
	if n == 0 {
		return colorYellow + i18n.T("outdated") + colorReset
	}
	return colorYellow + fmt.Sprintf(i18n.N("outdated (%d string changed)", "outdated (%d strings changed)", n), n) + colorReset
}

// changedStrings counts names that were added, removed or given a new value.
func changedStrings(existing, next *android.File) int {
	n := 0
	for _, e := range next.Entries {
		if e.Kind != android.KindString {
			continue
		}
		if old, ok := existing.Get(e.Name); !ok || old != e.Value {
			n++
		}
	}
	for _, name := range existing.Names() {
		if _, ok := next.Get(name); !ok {
			n++
		}
	}
	return n
}

// untrackedLanguages lists values-XX/ directories holding the resource file
// that no configured target produces.
func untrackedLanguages(cfg *config.File) []string {
	known := make(map[string]bool, len(cfg.Targets))
	for _, t := range cfg.Targets {
		if t.Lang != "" && !t.Default {
			known[t.Lang] = true
		}
	}
	var out []string
	for _, lang := range android.DetectLanguages(filepath.Join(flags.root, cfg.ResDir), cfg.FileName) {
		if !known[lang] {
			out = append(out, lang)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Table helpers
// ---------------------------------------------------------------------------

// progressBar renders a colored bar of the given width followed by the percentage.
func progressBar(percent, width int) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * width / 100

	color := colorRed
	switch {
	case percent >= 100:
		color = colorGreen
	case percent >= 50:
		color = colorYellow
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("%s%s%s %3d%%", color, bar, colorReset, percent)
}

func langFlag(lang string) string {
	return langmeta.Resolve(lang).Flag
}

// langName returns "  (<native name>)" for a language, or "" when the name
// adds nothing to the code itself.
func langName(lang string) string {
	if lang == "" {
		return ""
	}
	name := langmeta.Resolve(lang).Name
	if name == "" || name == lang {
		return ""
	}
	return "  (" + name + ")"
}

// langColumnWidth returns the width of the longest language code.
func langColumnWidth(langs []string) int {
	width := 0
	for _, l := range langs {
		if len(l) > width {
			width = len(l)
		}
	}
	return width
}

// langCell renders "<flag> <code padded to width>", using two spaces in place
// of a missing flag so columns stay aligned.
func langCell(lang string, width int) string {
	flag := langFlag(lang)
	if flag == "" {
		flag = "  "
	}
	return fmt.Sprintf("%s %-*s", flag, width, lang)
}
