package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func TestLoadEmbeddedHasBaseLocale(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	if !bundle.HasLocale(BaseLocale) {
		t.Fatalf("expected %s locale", BaseLocale)
	}
	for _, key := range []string{"stress.fumble", "stress.critical", "stress.fail", "stress.pass", "stress.affliction"} {
		if _, ok := bundle.Message(BaseLocale, key); !ok {
			t.Fatalf("missing message %q", key)
		}
	}
}

func TestDefaultRegistersMessages(t *testing.T) {
	Default()
	got := message.NewPrinter(language.AmericanEnglish).Sprintf("stress.fail", "Elsa", 3)
	want := "Elsa failed the stress test and gains 3 stress."
	if got != want {
		t.Fatalf("printed = %q, want %q", got, want)
	}
}

func TestLoadFromFSRejectsKeyOutsideNamespace(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "locales", "en-US", "stress.yaml"), `locale: "en-US"
namespace: "stress"
messages:
  "other.key": "bad"
`)

	_, err := LoadFromFS(os.DirFS(dir))
	if err == nil || !strings.Contains(err.Error(), `must start with "stress."`) {
		t.Fatalf("expected namespace error, got %v", err)
	}
}

func TestLoadFromFSRejectsLocaleMismatch(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "locales", "en-US", "stress.yaml"), `locale: "pt-BR"
namespace: "stress"
messages:
  "stress.pass": "ok"
`)

	_, err := LoadFromFS(os.DirFS(dir))
	if err == nil || !strings.Contains(err.Error(), "must match path locale") {
		t.Fatalf("expected locale mismatch error, got %v", err)
	}
}

func TestLoadFromFSRequiresBaseLocale(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "locales", "pt-BR", "stress.yaml"), `locale: "pt-BR"
namespace: "stress"
messages:
  "stress.pass": "ok"
`)

	_, err := LoadFromFS(os.DirFS(dir))
	if err == nil || !strings.Contains(err.Error(), "base locale") {
		t.Fatalf("expected base locale error, got %v", err)
	}
}

func TestLoadFromFSRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "locales", "en-US", "stress.yaml"), "locale: [unclosed\n")

	if _, err := LoadFromFS(os.DirFS(dir)); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestMessageFallsBackToBaseLocale(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "locales", "en-US", "stress.yaml"), `locale: "en-US"
namespace: "stress"
messages:
  "stress.pass": "passed"
  "stress.fail": "failed"
`)
	mustWriteFile(t, filepath.Join(dir, "locales", "pt-BR", "stress.yaml"), `locale: "pt-BR"
namespace: "stress"
messages:
  "stress.pass": "passou"
`)

	bundle, err := LoadFromFS(os.DirFS(dir))
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	if got := bundle.Locales(); len(got) != 2 || got[0] != "en-US" || got[1] != "pt-BR" {
		t.Fatalf("locales = %v, want [en-US pt-BR]", got)
	}
	if got, _ := bundle.Message("pt-BR", "stress.pass"); got != "passou" {
		t.Fatalf("pt-BR pass = %q, want %q", got, "passou")
	}
	if got, ok := bundle.Message("pt-BR", "stress.fail"); !ok || got != "failed" {
		t.Fatalf("pt-BR fail = %q, %v, want fallback %q", got, ok, "failed")
	}
	if _, ok := bundle.Message("pt-BR", "stress.missing"); ok {
		t.Fatal("expected missing key")
	}
	messages := bundle.LocaleMessages("pt-BR")
	messages["stress.pass"] = "changed"
	if got, _ := bundle.Message("pt-BR", "stress.pass"); got != "passou" {
		t.Fatalf("LocaleMessages leaked internal map, got %q", got)
	}
}

func mustWriteFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
