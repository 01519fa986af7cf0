package services

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/fenilmodi00/cse-site/config"
)

// ErrPageNotFound is returned by Render for an unknown slug.
var ErrPageNotFound = errors.New("page not found")

// PageRenderer serves the static page shells, injecting the current region
// fragments into live pages.
type PageRenderer struct {
	mutex   sync.RWMutex
	pages   map[string]config.Page
	shells  map[string][]byte
	regions *RegionStore
}

// NewPageRenderer reads every shell once
func NewPageRenderer(pages []config.Page, regions *RegionStore) (*PageRenderer, error) {
	renderer := &PageRenderer{
		pages:   make(map[string]config.Page, len(pages)),
		shells:  make(map[string][]byte, len(pages)),
		regions: regions,
	}

	for _, page := range pages {
		shell, err := os.ReadFile(page.File)
		if err != nil {
			return nil, fmt.Errorf("load page %q: %w", page.Slug, err)
		}
		if _, err := goquery.NewDocumentFromReader(bytes.NewReader(shell)); err != nil {
			return nil, fmt.Errorf("parse page %q: %w", page.Slug, err)
		}
		renderer.pages[page.Slug] = page
		renderer.shells[page.Slug] = shell
	}

	logrus.WithField("pages", len(pages)).Info("Page shells loaded")
	return renderer, nil
}

// Render returns the page's HTML. Live pages have the inner HTML of each
// populated region element replaced with the region's fragment; regions that
// were never written keep the shell's placeholder text.
func (r *PageRenderer) Render(slug string) (string, error) {
	r.mutex.RLock()
	page, exists := r.pages[slug]
	shell := r.shells[slug]
	r.mutex.RUnlock()

	if !exists {
		return "", ErrPageNotFound
	}
	if !page.Live {
		return string(shell), nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(shell))
	if err != nil {
		return "", fmt.Errorf("parse page %q: %w", slug, err)
	}

	for _, fragment := range r.regions.Snapshot() {
		doc.Find("#" + string(fragment.ID)).SetHtml(fragment.HTML)
	}

	html, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("render page %q: %w", slug, err)
	}
	return html, nil
}
