package langmeta

import "testing"

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "pt_br", want: "pt-BR"},
		{in: " EN-us ", want: "en-US"},
		{in: "zh-Hant", want: "zh-Hant"},
		{in: "ru", want: "ru"},
		{in: "", want: ""},
	}

	for _, tc := range cases {
		got := canonicalize(tc.in)
		if got != tc.want {
			t.Fatalf("canonicalize(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestResolve(t *testing.T) {
	t.Run("native name and likely region", func(t *testing.T) {
		got := Resolve("ja")
		if got.Name != "日本語" || got.Flag != "🇯🇵" {
			t.Fatalf("unexpected result: %#v", got)
		}
	})

	t.Run("explicit region", func(t *testing.T) {
		got := Resolve("de_AT")
		if got.Flag != "🇦🇹" {
			t.Fatalf("unexpected flag: %#v", got)
		}
	})

	t.Run("unparsable passthrough", func(t *testing.T) {
		got := Resolve("not a language")
		if got.Name != "not a language" || got.Flag != "" {
			t.Fatalf("unexpected unknown result: %#v", got)
		}
	})
}

func TestFlagFromRegion(t *testing.T) {
	if got := FlagFromRegion("us"); got != "🇺🇸" {
		t.Fatalf("FlagFromRegion(us) = %q, want %q", got, "🇺🇸")
	}
	if got := FlagFromRegion("USA"); got != "" {
		t.Fatalf("FlagFromRegion(USA) = %q, want empty", got)
	}
	if got := FlagFromRegion("1A"); got != "" {
		t.Fatalf("FlagFromRegion(1A) = %q, want empty", got)
	}
}
