package prefs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveFallsBackToAmbient(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	for _, dark := range []bool{true, false} {
		got, err := Resolve(path, func() bool { return dark })
		if err != nil {
			t.Fatalf("Resolve: %v", err)
		}
		if got.Dark() != dark {
			t.Fatalf("ambient dark=%v gave %s", dark, got)
		}
	}
}

func TestSaveThenResolve(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.toml")
	if err := Save(path, ThemeDark); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Resolve(path, func() bool { return false })
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != ThemeDark {
		t.Fatalf("saved theme ignored: %s", got)
	}
	if ThemeDark.Toggle() != ThemeLight || ThemeLight.Toggle() != ThemeDark {
		t.Fatal("Toggle broken")
	}
}

func TestLoadIgnoresUnknownTheme(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(path, []byte(`theme = "sepia"`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, ok, err := Load(path); ok || err != nil {
		t.Fatalf("Load = ok %v, err %v", ok, err)
	}
}
