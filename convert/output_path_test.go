package convert

import (
	"net/url"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"h2docx/config"
	"h2docx/state"
)

func setupTestEnvForOutputPath(t *testing.T, noDirs bool, transliterate bool) *state.LocalEnv {
	t.Helper()
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Document.FileNameTransliterate = transliterate
	return &state.LocalEnv{Log: logger, Cfg: cfg, NoDirs: noDirs}
}

func TestBuildOutputPath(t *testing.T) {
	tests := []struct {
		name          string
		noDirs        bool
		transliterate bool
		src           string
		want          string
	}{
		{"no dirs", true, false, "pages/news/today.html", filepath.Join("/output", "today.docx")},
		{"with dirs", false, false, "pages/news/today.html", filepath.Join("/output", "pages", "news", "today.docx")},
		{"base name", false, false, "index.htm", filepath.Join("/output", "index.docx")},
		{"transliterate", true, true, "Café Menu.html", filepath.Join("/output", "cafe-menu.docx")},
		{"no transliteration", true, false, "Café Menu.html", filepath.Join("/output", "Café Menu.docx")},
		{"hidden", true, false, ".html", filepath.Join("/output", "_bad_file_name_.docx")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnvForOutputPath(t, tt.noDirs, tt.transliterate)
			if got := buildOutputPath(tt.src, "/output", env); got != tt.want {
				t.Errorf("buildOutputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildURLOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		noDirs bool
		url    string
		want   string
	}{
		{"page", false, "https://example.com/docs/page.html?x=1", filepath.Join("/output", "example.com", "docs", "page.docx")},
		{"directory", false, "https://example.com/docs/", filepath.Join("/output", "example.com", "docs", "index.docx")},
		{"root", false, "https://example.com", filepath.Join("/output", "example.com", "index.docx")},
		{"port", false, "http://localhost:8080/a.htm", filepath.Join("/output", "localhost", "a.docx")},
		{"no dirs", true, "https://example.com/docs/page.html", filepath.Join("/output", "page.docx")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.url)
			if err != nil {
				t.Fatal(err)
			}
			env := setupTestEnvForOutputPath(t, tt.noDirs, false)
			if got := buildURLOutputPath(u, "/output", env); got != tt.want {
				t.Errorf("buildURLOutputPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSplitAndCleanPath(t *testing.T) {
	got := splitAndCleanPath(filepath.Join("a", "b", "c") + string(filepath.Separator))
	if len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("splitAndCleanPath() = %q", got)
	}
	if got := splitAndCleanPath(""); len(got) != 0 {
		t.Errorf("empty path segments = %q", got)
	}
}
