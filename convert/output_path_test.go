package convert

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"mdocx/config"
	"mdocx/content"
	"mdocx/state"
)

func setupTestEnvForOutputPath(t *testing.T, transliterate bool, template string) *state.LocalEnv {
	t.Helper()
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.Document.FileNameTransliterate = transliterate
	cfg.Document.OutputNameTemplate = template
	return state.EnvFromContext(state.ContextWithConfig(context.Background(), cfg, logger))
}

func setupTestContent(t *testing.T, env *state.LocalEnv, src, md string) *content.Content {
	t.Helper()
	ctx := state.ContextWithConfig(context.Background(), env.Cfg, env.Log)
	c, err := content.Prepare(ctx, strings.NewReader(md), src, env.Log)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	return c
}

func TestBuildOutputPath(t *testing.T) {
	dst := filepath.FromSlash("/out")

	tests := []struct {
		name          string
		src           string
		transliterate bool
		template      string
		want          string
	}{
		{"default", "guide.md", false, "", "/out/guide.docx"},
		{"keeps source dirs", "docs/api/guide.md", false, "", "/out/docs/api/guide.docx"},
		{"transliterate", "Новая Книга.md", true, "", "/out/novaia-kniga.docx"},
		{"template title", "guide.md", false, "{{ .Title }}", "/out/User Guide.docx"},
		{"template with dirs", "docs/guide.md", false, "{{ .Creator }}/{{ .SourceDir }}/{{ .SourceFile }}", "/out/mdocx/docs/guide.docx"},
		{"template transliterate", "guide.md", true, "Книги/{{ .Title }}", "/out/knigi/user-guide.docx"},
		{"template with extension", "guide.md", false, "{{ .SourceFile }}.docx", "/out/guide.docx"},
		{"template cannot escape", "guide.md", false, "../../{{ .SourceFile }}", "/out/guide.docx"},
		{"template error falls back", "guide.md", false, "{{ .Missing }}", "/out/guide.docx"},
		{"template empty result falls back", "guide.md", false, "{{ if false }}x{{ end }}", "/out/guide.docx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupTestEnvForOutputPath(t, tt.transliterate, tt.template)
			c := setupTestContent(t, env, tt.src, "# User Guide\n\ntext\n")

			got := buildOutputPath(c, filepath.FromSlash(tt.src), dst, env)
			if want := filepath.FromSlash(tt.want); got != want {
				t.Errorf("buildOutputPath() = %q, want %q", got, want)
			}
		})
	}
}

func TestSplitAndCleanPath(t *testing.T) {
	sep := string(filepath.Separator)
	tests := []struct {
		in   string
		want []string
	}{
		{"a" + sep + "b" + sep + "c", []string{"a", "b", "c"}},
		{sep + "a" + sep + sep + "b" + sep, []string{"a", "b"}},
		{"." + sep + ".." + sep + "x", []string{"x"}},
		{"", nil},
	}
	for _, tt := range tests {
		got := splitAndCleanPath(tt.in)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("splitAndCleanPath(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestAssemblePathWithSubdirs_Empty(t *testing.T) {
	env := setupTestEnvForOutputPath(t, false, "")
	got := assemblePathWithSubdirs("out", string(filepath.Separator), env)
	if want := filepath.Join("out", badName+outputExt); got != want {
		t.Errorf("assemblePathWithSubdirs() = %q, want %q", got, want)
	}
}
