// Package catalog holds the immutable form modules served to sessions.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"formassist/internal/model"

	"gopkg.in/yaml.v3"
)

//go:embed modules/*.yaml
var moduleFS embed.FS

// Catalog is an ordered, read-only set of modules
type Catalog struct {
	modules map[string]*model.Module
	order   []string
}

// New builds a catalog from already decoded modules, keeping their order
func New(modules ...*model.Module) (*Catalog, error) {
	c := &Catalog{modules: make(map[string]*model.Module, len(modules))}
	for _, m := range modules {
		if m == nil || m.ID == "" {
			return nil, fmt.Errorf("catalog: module without id")
		}
		if _, dup := c.modules[m.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate module %q", m.ID)
		}
		c.modules[m.ID] = m
		c.order = append(c.order, m.ID)
	}
	return c, nil
}

// Embedded loads the modules compiled into the binary
func Embedded() (*Catalog, error) {
	sub, err := fs.Sub(moduleFS, "modules")
	if err != nil {
		return nil, err
	}
	return Load(sub)
}

// Load decodes every *.yaml file at the root of fsys, in file name order
func Load(fsys fs.FS) (*Catalog, error) {
	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	modules := make([]*model.Module, 0, len(names))
	for _, name := range names {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("catalog: read %s: %w", name, err)
		}
		var m model.Module
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("catalog: decode %s: %w", name, err)
		}
		if m.ID == "" {
			m.ID = name[:len(name)-len(path.Ext(name))]
		}
		modules = append(modules, &m)
	}
	return New(modules...)
}

// Get returns a module by id
func (c *Catalog) Get(id string) (*model.Module, bool) {
	m, ok := c.modules[id]
	return m, ok
}

// List returns modules in catalog order
func (c *Catalog) List() []*model.Module {
	out := make([]*model.Module, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.modules[id])
	}
	return out
}

// Summaries returns localized listing entries
func (c *Catalog) Summaries(locale model.Locale) []model.ModuleSummary {
	out := make([]model.ModuleSummary, 0, len(c.order))
	for _, m := range c.List() {
		out = append(out, model.ModuleSummary{
			ID:            m.ID,
			Title:         m.Title.Get(locale),
			Intro:         m.Intro.Get(locale),
			QuestionCount: len(m.Questions),
		})
	}
	return out
}

// Len returns the number of modules
func (c *Catalog) Len() int {
	return len(c.order)
}
