// Package themes provides the presentation theme catalog: a built-in set of
// themes plus optional YAML overrides loaded from a directory.
package themes

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/altafr/present99/internal/apperr"
)

// Theme describes colors and typography applied to a rendered presentation.
type Theme struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	Gradient       string `json:"gradient" yaml:"gradient"`
	PrimaryColor   string `json:"primaryColor" yaml:"primary_color"`
	SecondaryColor string `json:"secondaryColor" yaml:"secondary_color"`
	TextColor      string `json:"textColor" yaml:"text_color"`
	Font           string `json:"font" yaml:"font"`
}

const defaultFont = "Inter, sans-serif"

func builtin() []Theme {
	return []Theme{
		{ID: "purple-gradient", Name: "Purple Gradient", Gradient: "linear-gradient(135deg, #667eea 0%, #764ba2 100%)", PrimaryColor: "#667eea", SecondaryColor: "#764ba2", TextColor: "#ffffff", Font: defaultFont},
		{ID: "blue-ocean", Name: "Blue Ocean", Gradient: "linear-gradient(135deg, #2193b0 0%, #6dd5ed 100%)", PrimaryColor: "#2193b0", SecondaryColor: "#6dd5ed", TextColor: "#ffffff", Font: defaultFont},
		{ID: "sunset", Name: "Sunset", Gradient: "linear-gradient(135deg, #f093fb 0%, #f5576c 100%)", PrimaryColor: "#f093fb", SecondaryColor: "#f5576c", TextColor: "#ffffff", Font: defaultFont},
		{ID: "forest", Name: "Forest", Gradient: "linear-gradient(135deg, #11998e 0%, #38ef7d 100%)", PrimaryColor: "#11998e", SecondaryColor: "#38ef7d", TextColor: "#ffffff", Font: defaultFont},
		{ID: "fire", Name: "Fire", Gradient: "linear-gradient(135deg, #f12711 0%, #f5af19 100%)", PrimaryColor: "#f12711", SecondaryColor: "#f5af19", TextColor: "#ffffff", Font: defaultFont},
		{ID: "midnight", Name: "Midnight", Gradient: "linear-gradient(135deg, #0f2027 0%, #203a43 50%, #2c5364 100%)", PrimaryColor: "#0f2027", SecondaryColor: "#2c5364", TextColor: "#ffffff", Font: defaultFont},
		{ID: "professional", Name: "Professional", Gradient: "linear-gradient(135deg, #1e3c72 0%, #2a5298 100%)", PrimaryColor: "#1e3c72", SecondaryColor: "#2a5298", TextColor: "#ffffff", Font: defaultFont},
		{ID: "modern", Name: "Modern", Gradient: "linear-gradient(135deg, #232526 0%, #414345 100%)", PrimaryColor: "#232526", SecondaryColor: "#414345", TextColor: "#ffffff", Font: defaultFont},
	}
}

// DefaultThemeID is applied to presentations created without an explicit
// theme.
const DefaultThemeID = "purple-gradient"

// Catalog serves themes. Built-ins are always present; YAML files in the
// override directory add new themes or replace built-ins with the same id.
type Catalog struct {
	dir string

	mu     sync.RWMutex
	themes map[string]Theme
}

// NewCatalog creates a catalog with the given override directory. An empty
// dir means built-ins only. The directory is read immediately; call Reload
// (or run Watch) to pick up later changes.
func NewCatalog(dir string) (*Catalog, error) {
	c := &Catalog{dir: dir}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Reload re-reads the override directory and swaps in the merged catalog.
func (c *Catalog) Reload() error {
	themes := make(map[string]Theme)
	for _, t := range builtin() {
		themes[t.ID] = t
	}

	if c.dir != "" {
		overrides, err := loadDir(c.dir)
		if err != nil {
			return err
		}
		for _, t := range overrides {
			themes[t.ID] = t
		}
	}

	c.mu.Lock()
	c.themes = themes
	c.mu.Unlock()
	return nil
}

func loadDir(dir string) ([]Theme, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("themes: read dir: %w", err)
	}

	var out []Theme
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || (!strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml")) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("themes: read %s: %w", name, err)
		}
		var t Theme
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("themes: parse %s: %w", name, err)
		}
		if t.ID == "" {
			return nil, fmt.Errorf("themes: %s is missing an id", name)
		}
		if t.Font == "" {
			t.Font = defaultFont
		}
		out = append(out, t)
	}
	return out, nil
}

// List returns every theme sorted by id.
func (c *Catalog) List() []Theme {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Theme, 0, len(c.themes))
	for _, t := range c.themes {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Get returns the theme with the given id.
func (c *Catalog) Get(id string) (Theme, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.themes[id]
	if !ok {
		return Theme{}, fmt.Errorf("themes: %s: %w", id, apperr.ErrNotFound)
	}
	return t, nil
}

// GetOrDefault returns the theme with the given id, falling back to the
// default theme for unknown or empty ids.
func (c *Catalog) GetOrDefault(id string) Theme {
	if t, err := c.Get(id); err == nil {
		return t
	}
	t, _ := c.Get(DefaultThemeID)
	return t
}
