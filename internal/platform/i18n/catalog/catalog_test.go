package catalog

import (
	"testing"
	"testing/fstest"
)

func TestLoadEmbeddedHasBaseLocale(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	if !bundle.HasLocale(BaseLocale) {
		t.Fatalf("expected base locale %s", BaseLocale)
	}

	value, ok := bundle.Message(BaseLocale, "powerroll.tier.3")
	if !ok || value != "Tier 3" {
		t.Fatalf("expected tier 3 label, got %q (ok=%v)", value, ok)
	}
}

func TestMessageFallsBackToBaseLocale(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}

	value, ok := bundle.Message("fr-FR", "powerroll.modifier.edge")
	if !ok || value != "Edge" {
		t.Fatalf("expected base-locale fallback, got %q (ok=%v)", value, ok)
	}
}

func TestLocalizeFallsBackToKey(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}

	if got := bundle.Localize(BaseLocale, "powerroll.not.a.key"); got != "powerroll.not.a.key" {
		t.Fatalf("expected key passthrough, got %q", got)
	}
	if got := bundle.Localize("pt-BR", "powerroll.modifier.bane"); got != "Desvantagem" {
		t.Fatalf("expected localized bane label, got %q", got)
	}
}

func TestLoadFromFSRejectsLocaleMismatch(t *testing.T) {
	catalogFS := fstest.MapFS{
		"locales/en-US/powerroll.yaml": &fstest.MapFile{Data: []byte(`locale: "pt-BR"
namespace: "powerroll"
messages:
  "powerroll.tier.1": "Tier 1"
`)},
	}

	if _, err := LoadFromFS(catalogFS); err == nil {
		t.Fatal("expected locale mismatch error")
	}
}

func TestLoadFromFSRejectsForeignNamespaceKey(t *testing.T) {
	catalogFS := fstest.MapFS{
		"locales/en-US/powerroll.yaml": &fstest.MapFile{Data: []byte(`locale: "en-US"
namespace: "powerroll"
messages:
  "skills.climb": "Climb"
`)},
	}

	if _, err := LoadFromFS(catalogFS); err == nil {
		t.Fatal("expected namespace prefix error")
	}
}
