package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Site is the page manifest the server routes from.
type Site struct {
	Name  string `yaml:"name"`
	Pages []Page `yaml:"pages"`
}

// Page is one static page shell. Live pages get market regions injected.
type Page struct {
	Slug  string `yaml:"slug"`
	Path  string `yaml:"path"`
	Title string `yaml:"title"`
	File  string `yaml:"file"`
	Live  bool   `yaml:"live"`
}

// LoadSite reads and validates the manifest at path. Relative page files are
// resolved against the manifest's directory.
func LoadSite(path string) (*Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read site manifest: %w", err)
	}

	site := &Site{}
	if err := yaml.Unmarshal(data, site); err != nil {
		return nil, fmt.Errorf("parse site manifest: %w", err)
	}

	baseDir := filepath.Dir(path)
	for i := range site.Pages {
		page := &site.Pages[i]
		if page.File != "" && !filepath.IsAbs(page.File) {
			page.File = filepath.Join(baseDir, page.File)
		}
	}

	setSiteDefaults(site)

	if err := site.Validate(); err != nil {
		return nil, fmt.Errorf("validate site manifest: %w", err)
	}

	return site, nil
}

func setSiteDefaults(site *Site) {
	if site.Name == "" {
		site.Name = "Investment Partners"
	}
	for i := range site.Pages {
		if site.Pages[i].Title == "" {
			site.Pages[i].Title = site.Pages[i].Slug
		}
	}
}

func (s *Site) Validate() error {
	if len(s.Pages) == 0 {
		return fmt.Errorf("at least one page is required")
	}

	slugs := make(map[string]bool, len(s.Pages))
	paths := make(map[string]bool, len(s.Pages))
	for _, page := range s.Pages {
		if page.Slug == "" {
			return fmt.Errorf("page slug is required")
		}
		if slugs[page.Slug] {
			return fmt.Errorf("duplicate page slug %q", page.Slug)
		}
		slugs[page.Slug] = true

		if !strings.HasPrefix(page.Path, "/") {
			return fmt.Errorf("page %q: path %q must start with /", page.Slug, page.Path)
		}
		if paths[page.Path] {
			return fmt.Errorf("duplicate page path %q", page.Path)
		}
		paths[page.Path] = true

		if page.File == "" {
			return fmt.Errorf("page %q: file is required", page.Slug)
		}
		if _, err := os.Stat(page.File); err != nil {
			return fmt.Errorf("page %q: %w", page.Slug, err)
		}
	}
	return nil
}

// LivePages returns the pages that carry market regions
func (s *Site) LivePages() []Page {
	var live []Page
	for _, page := range s.Pages {
		if page.Live {
			live = append(live, page)
		}
	}
	return live
}

// PageBySlug looks a page up by slug
func (s *Site) PageBySlug(slug string) (Page, bool) {
	for _, page := range s.Pages {
		if page.Slug == slug {
			return page, true
		}
	}
	return Page{}, false
}
