package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/peercast/catconv/android"
	"github.com/peercast/catconv/convert"
)

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name    string
		percent int
		width   int
		want    string
	}{
		{
			name:    "clamps below zero",
			percent: -10,
			width:   4,
			want:    colorRed + "░░░░" + colorReset + "   0%",
		},
		{
			name:    "mid range uses yellow",
			percent: 50,
			width:   4,
			want:    colorYellow + "██░░" + colorReset + "  50%",
		},
		{
			name:    "clamps above hundred",
			percent: 120,
			width:   4,
			want:    colorGreen + "████" + colorReset + " 100%",
		},
	}

	for _, tc := range tests {
		if got := progressBar(tc.percent, tc.width); got != tc.want {
			t.Fatalf("%s: progressBar() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestLangHelpers(t *testing.T) {
	if got := langColumnWidth([]string{"ja", "pt-BR", "en"}); got != 5 {
		t.Fatalf("langColumnWidth() = %d, want 5", got)
	}
	if got := langColumnWidth(nil); got != 0 {
		t.Fatalf("langColumnWidth(nil) = %d, want 0", got)
	}
	if got := langCell("pt-BR", 6); got != "🇧🇷 pt-BR " {
		t.Fatalf("langCell(pt-BR) = %q", got)
	}
	if got := langCell("x y", 3); got != "   x y" {
		t.Fatalf("langCell without flag = %q", got)
	}
	if got := langName("ja"); got != "  (日本語)" {
		t.Fatalf("langName(ja) = %q", got)
	}
	if got := langName("x y"); got != "" {
		t.Fatalf("langName(x y) = %q, want empty", got)
	}
	if got := langName(""); got != "" {
		t.Fatalf("langName(\"\") = %q, want empty", got)
	}
}

func TestDescribeError(t *testing.T) {
	parseErr := fmt.Errorf("ja: %w", &convert.ParseError{Path: "ja.json", Line: 3, Column: 1, Err: errors.New("unexpected '}'")})
	ioErr := &convert.IOError{Op: "read", Path: "en.json", Err: os.ErrNotExist}
	collErr := &convert.CollisionError{Path: "values/yt.xml", Names: []string{"yt_a"}}

	cases := []struct {
		err    error
		prefix string
	}{
		{parseErr, "Invalid catalog: "},
		{ioErr, "File error: "},
		{collErr, "Duplicate resource names: "},
		{fmt.Errorf("run: %w", context.Canceled), "Interrupted"},
		{errors.New("plain"), "plain"},
	}
	for _, tc := range cases {
		if got := describeError(tc.err); !strings.HasPrefix(got, tc.prefix) {
			t.Fatalf("describeError(%v) = %q, want prefix %q", tc.err, got, tc.prefix)
		}
	}
}

// ---------------------------------------------------------------------------
// Command runs
// ---------------------------------------------------------------------------

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{"CATCONV_BASE", "CATCONV_RES_DIR", "CATCONV_PREFIX", "CATCONV_NAME_STYLE", "CATCONV_ON_COLLISION"} {
		t.Setenv(env, "")
	}
}

func writeCatalogs(t *testing.T, root string, catalogs map[string]string) {
	t.Helper()
	dir := filepath.Join(root, "peercast-yt", "ui", "catalogs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	for lang, body := range catalogs {
		if err := os.WriteFile(filepath.Join(dir, lang+".json"), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestRootCommandConvertsDefaultTable(t *testing.T) {
	clearConfigEnv(t)
	root := t.TempDir()
	writeCatalogs(t, root, map[string]string{
		"ja": "// Japanese\n{\"Hello\": \"こんにちは\", \"Empty\": \"\"}\n",
		"en": `{"Hello": "Hello & welcome"}`,
		"de": `{"Hello": "Hallo"}`,
		"fr": `{"Hello": "Bonjour"}`,
	})

	out, _, err := execute(t, "--root", root)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	want := "<?xml version=\"1.0\" encoding=\"utf-8\"?>\n" +
		"<resources>\n" +
		"\n" +
		"<string name=\"yt_hello\">こんにちは</string>\n" +
		" \n" +
		"</resources>\n" +
		"\n"
	if got := readFile(t, filepath.Join(root, "values", "yt.xml")); got != want {
		t.Fatalf("values/yt.xml = %q, want %q", got, want)
	}
	if got := readFile(t, filepath.Join(root, "values-en", "yt.xml")); !strings.Contains(got, `<string name="yt_hello">Hello &amp; welcome</string>`) {
		t.Fatalf("values-en/yt.xml not escaped: %q", got)
	}
	for _, dir := range []string{"values-de", "values-fr"} {
		if _, err := os.Stat(filepath.Join(root, dir, "yt.xml")); err != nil {
			t.Fatalf("%s not written: %v", dir, err)
		}
	}
	if !strings.Contains(out, "yt_hello こんにちは\n") {
		t.Fatalf("trace missing converted entry: %q", out)
	}
}

func TestQuietSuppressesTrace(t *testing.T) {
	clearConfigEnv(t)
	root := t.TempDir()
	writeCatalogs(t, root, map[string]string{
		"ja": `{"a": "1"}`, "en": `{"a": "1"}`, "de": `{"a": "1"}`, "fr": `{"a": "1"}`,
	})

	out, _, err := execute(t, "run", "--root", root, "-q")
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if out != "" {
		t.Fatalf("quiet run printed %q", out)
	}
}

func TestRunStopsAtBrokenCatalog(t *testing.T) {
	clearConfigEnv(t)
	root := t.TempDir()
	writeCatalogs(t, root, map[string]string{
		"ja": `{"a": "1"}`,
		"en": `{"a": "1",}`,
		"de": `{"a": "1"}`,
		"fr": `{"a": "1"}`,
	})

	_, _, err := execute(t, "--root", root, "-q")
	var pe *convert.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "values", "yt.xml")); err != nil {
		t.Fatalf("earlier target should be kept: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "values-de", "yt.xml")); !os.IsNotExist(err) {
		t.Fatalf("later target should not be written, stat err = %v", err)
	}
}

func TestConvertCommand(t *testing.T) {
	clearConfigEnv(t)
	root := t.TempDir()
	src := filepath.Join(root, "in.json")
	dst := filepath.Join(root, "out", "res", "strings.xml")
	if err := os.WriteFile(src, []byte(`{"Play Now!": "Go"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "convert", "--root", root, "--prefix", "app_", src, dst)
	if err != nil {
		t.Fatalf("convert failed: %v", err)
	}
	if got := readFile(t, dst); !strings.Contains(got, `<string name="app_play_now">Go</string>`) {
		t.Fatalf("unexpected output: %q", got)
	}
	if out != "app_play_now Go\n" {
		t.Fatalf("trace = %q", out)
	}

	if _, _, err := execute(t, "convert", "--root", root, "--prefix", "App-", src, dst); err == nil {
		t.Fatal("expected invalid prefix error")
	}
	if _, _, err := execute(t, "convert", "--root", root, "--names", "fancy", src, dst); err == nil {
		t.Fatal("expected invalid name style error")
	}
}

func TestStatusCommand(t *testing.T) {
	clearConfigEnv(t)
	root := t.TempDir()
	writeCatalogs(t, root, map[string]string{
		"ja": `{"a": "1", "b": ""}`, "en": `{"a": "1"}`, "de": `{"a": "1"}`, "fr": `{"a": "1"}`,
	})

	_, status, err := execute(t, "status", "--root", root)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(status, "missing") {
		t.Fatalf("status before run should report missing files:\n%s", status)
	}
	if !strings.Contains(status, "(日本語)") || !strings.Contains(status, "(Deutsch)") {
		t.Fatalf("status should show native language names:\n%s", status)
	}
	if !strings.Contains(status, "   1/2") {
		t.Fatalf("status should count skipped entries:\n%s", status)
	}
	if _, err := os.Stat(filepath.Join(root, "values")); !os.IsNotExist(err) {
		t.Fatalf("status must not write files, stat err = %v", err)
	}

	if _, _, err := execute(t, "--root", root, "-q"); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	_, status, err = execute(t, "status", "--root", root)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if strings.Contains(status, "missing") || !strings.Contains(status, "up to date") {
		t.Fatalf("status after run should be up to date:\n%s", status)
	}
}

func TestDestState(t *testing.T) {
	next := android.NewFile()
	next.Add("yt_a", "1")
	next.Add("yt_b", "2")

	dir := t.TempDir()
	path := filepath.Join(dir, "yt.xml")
	if got := destState(path, next); !strings.Contains(got, "missing") {
		t.Fatalf("destState(no file) = %q", got)
	}

	old := android.NewFile()
	old.Add("yt_a", "1")
	old.Add("yt_b", "two")
	old.Add("yt_gone", "x")
	if err := old.WriteFile(path); err != nil {
		t.Fatal(err)
	}
	if got := destState(path, next); !strings.Contains(got, "outdated (2 strings changed)") {
		t.Fatalf("destState(changed) = %q", got)
	}

	if err := next.WriteFile(path); err != nil {
		t.Fatal(err)
	}
	if got := destState(path, next); !strings.Contains(got, "up to date") {
		t.Fatalf("destState(same) = %q", got)
	}

	if err := os.WriteFile(path, []byte("not xml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got := destState(path, next); !strings.Contains(got, "not a resource file") {
		t.Fatalf("destState(garbage) = %q", got)
	}
}

func TestStatusReportsBrokenCatalog(t *testing.T) {
	clearConfigEnv(t)
	root := t.TempDir()
	writeCatalogs(t, root, map[string]string{
		"ja": `{"a": "1"}`, "en": `{"a": "1"}`, "de": `{"a": `, "fr": `{"a": "1"}`,
	})

	_, status, err := execute(t, "status", "--root", root)
	if err == nil || !strings.Contains(err.Error(), "1 catalog cannot be converted") {
		t.Fatalf("expected one failing catalog, got %v", err)
	}
	if !strings.Contains(status, "Invalid catalog") {
		t.Fatalf("status should describe the failure:\n%s", status)
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "catconv version "+version) {
		t.Fatalf("version output = %q", out)
	}
}
