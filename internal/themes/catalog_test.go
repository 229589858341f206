package themes

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/altafr/present99/internal/apperr"
)

func TestBuiltinCatalog(t *testing.T) {
	c, err := NewCatalog("")
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	themes := c.List()
	if len(themes) != 8 {
		t.Fatalf("len = %d, want 8 built-ins", len(themes))
	}

	th, err := c.Get("blue-ocean")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if th.Name != "Blue Ocean" || th.PrimaryColor != "#2193b0" {
		t.Errorf("theme = %+v", th)
	}

	if _, err := c.Get("no-such-theme"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get unknown: %v, want ErrNotFound", err)
	}
}

func TestOverrideDirectory(t *testing.T) {
	dir := t.TempDir()
	override := `id: midnight
name: Midnight Custom
gradient: "linear-gradient(135deg, #000000 0%, #111111 100%)"
primary_color: "#000000"
secondary_color: "#111111"
text_color: "#eeeeee"
`
	custom := `id: corporate
name: Corporate
gradient: "linear-gradient(135deg, #123456 0%, #654321 100%)"
primary_color: "#123456"
secondary_color: "#654321"
text_color: "#ffffff"
`
	if err := os.WriteFile(filepath.Join(dir, "midnight.yaml"), []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "corporate.yml"), []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := NewCatalog(dir)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	if len(c.List()) != 9 {
		t.Errorf("len = %d, want 8 built-ins + 1 new", len(c.List()))
	}

	midnight, _ := c.Get("midnight")
	if midnight.Name != "Midnight Custom" {
		t.Errorf("override not applied: %+v", midnight)
	}
	if midnight.Font != defaultFont {
		t.Errorf("font not defaulted: %q", midnight.Font)
	}

	corp, err := c.Get("corporate")
	if err != nil {
		t.Fatalf("Get corporate: %v", err)
	}
	if corp.PrimaryColor != "#123456" {
		t.Errorf("theme = %+v", corp)
	}
}

func TestGetOrDefault(t *testing.T) {
	c, err := NewCatalog("")
	if err != nil {
		t.Fatal(err)
	}
	if got := c.GetOrDefault(""); got.ID != DefaultThemeID {
		t.Errorf("empty id = %q, want default", got.ID)
	}
	if got := c.GetOrDefault("fire"); got.ID != "fire" {
		t.Errorf("got = %q", got.ID)
	}
}

func TestWatchReloads(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCatalog(dir)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan struct{}, 1)
	go func() {
		_ = c.Watch(ctx, slog.Default(), func() {
			select {
			case reloaded <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher a moment to register.
	time.Sleep(100 * time.Millisecond)

	theme := `id: neon
name: Neon
gradient: "linear-gradient(135deg, #ff00ff 0%, #00ffff 100%)"
primary_color: "#ff00ff"
secondary_color: "#00ffff"
text_color: "#ffffff"
`
	if err := os.WriteFile(filepath.Join(dir, "neon.yaml"), []byte(theme), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-reloaded:
	case <-time.After(3 * time.Second):
		t.Fatal("timeout waiting for reload")
	}

	if _, err := c.Get("neon"); err != nil {
		t.Errorf("new theme not loaded: %v", err)
	}
}
