package services

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"

	"github.com/fenilmodi00/cse-site/config"
	"github.com/fenilmodi00/cse-site/models"
)

// PageCheck is the crawl result for one manifest page
type PageCheck struct {
	Slug           string            `json:"slug"`
	Path           string            `json:"path"`
	Reached        bool              `json:"reached"`
	StatusCode     int               `json:"status_code"`
	MissingRegions []models.RegionID `json:"missing_regions,omitempty"`
	FailedRegions  []models.RegionID `json:"failed_regions,omitempty"`
}

// SiteReport is the outcome of crawling a running site
type SiteReport struct {
	Root  string      `json:"root"`
	Pages []PageCheck `json:"pages"`
	// Unlisted holds internal paths that were reached but are not in the manifest.
	Unlisted []string `json:"unlisted,omitempty"`
}

// Healthy is false when a manifest page was unreachable or lost a placeholder.
// Regions showing a failure notice do not count.
func (r SiteReport) Healthy() bool {
	for _, page := range r.Pages {
		if !page.Reached || len(page.MissingRegions) > 0 {
			return false
		}
	}
	return true
}

type crawledPage struct {
	statusCode int
	regions    map[models.RegionID]bool
	failed     []models.RegionID
}

// SiteChecker crawls a running site from its root, following internal links,
// and compares what it finds against the site manifest.
type SiteChecker struct {
	site      *config.Site
	userAgent string
}

func NewSiteChecker(site *config.Site) *SiteChecker {
	return &SiteChecker{
		site:      site,
		userAgent: "sitecheck/1.0",
	}
}

// Check crawls root and reports on every manifest page
func (sc *SiteChecker) Check(root string) (SiteReport, error) {
	rootURL, err := url.Parse(root)
	if err != nil || rootURL.Host == "" {
		return SiteReport{}, fmt.Errorf("invalid root url %q", root)
	}

	expected, err := sc.expectedRegions()
	if err != nil {
		return SiteReport{}, err
	}

	var (
		mutex   sync.Mutex
		crawled = make(map[string]*crawledPage)
	)

	c := colly.NewCollector(colly.UserAgent(sc.userAgent))

	c.OnHTML("html", func(e *colly.HTMLElement) {
		page := &crawledPage{
			statusCode: e.Response.StatusCode,
			regions:    make(map[models.RegionID]bool),
		}
		for _, id := range models.AllRegions {
			region := e.DOM.Find("#" + string(id))
			if region.Length() == 0 {
				continue
			}
			page.regions[id] = true
			if region.Find(".error-message").Length() > 0 {
				page.failed = append(page.failed, id)
			}
		}

		mutex.Lock()
		crawled[normalizePath(e.Request.URL.Path)] = page
		mutex.Unlock()
	})

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link, err := url.Parse(e.Request.AbsoluteURL(e.Attr("href")))
		if err != nil || link.Host != rootURL.Host {
			return
		}
		link.Fragment = ""
		// Already visited links return an error we don't care about.
		_ = e.Request.Visit(link.String())
	})

	c.OnError(func(r *colly.Response, err error) {
		logrus.WithFields(logrus.Fields{
			"url":    r.Request.URL.String(),
			"status": r.StatusCode,
			"error":  err,
		}).Warn("Crawl request failed")

		mutex.Lock()
		crawled[normalizePath(r.Request.URL.Path)] = &crawledPage{statusCode: r.StatusCode}
		mutex.Unlock()
	})

	if err := c.Visit(rootURL.String()); err != nil {
		return SiteReport{}, fmt.Errorf("visit %s: %w", rootURL, err)
	}
	c.Wait()

	report := SiteReport{Root: rootURL.String()}
	listed := make(map[string]bool, len(sc.site.Pages))

	for _, page := range sc.site.Pages {
		path := normalizePath(page.Path)
		listed[path] = true

		check := PageCheck{Slug: page.Slug, Path: page.Path}
		found, visited := crawled[path]
		if visited {
			check.StatusCode = found.statusCode
			check.Reached = found.statusCode >= 200 && found.statusCode < 300
		}
		if check.Reached {
			for _, id := range expected[page.Slug] {
				if !found.regions[id] {
					check.MissingRegions = append(check.MissingRegions, id)
				}
			}
			check.FailedRegions = found.failed
		}
		report.Pages = append(report.Pages, check)
	}

	for path := range crawled {
		if !listed[path] {
			report.Unlisted = append(report.Unlisted, path)
		}
	}

	return report, nil
}

// expectedRegions lists, per page, the region placeholders its shell declares
func (sc *SiteChecker) expectedRegions() (map[string][]models.RegionID, error) {
	expected := make(map[string][]models.RegionID, len(sc.site.Pages))

	for _, page := range sc.site.Pages {
		shell, err := os.ReadFile(page.File)
		if err != nil {
			return nil, fmt.Errorf("read page %q: %w", page.Slug, err)
		}
		doc, err := goquery.NewDocumentFromReader(bytes.NewReader(shell))
		if err != nil {
			return nil, fmt.Errorf("parse page %q: %w", page.Slug, err)
		}
		for _, id := range models.AllRegions {
			if doc.Find("#"+string(id)).Length() > 0 {
				expected[page.Slug] = append(expected[page.Slug], id)
			}
		}
	}
	return expected, nil
}

func normalizePath(path string) string {
	if path == "" || path == "/" {
		return "/"
	}
	return strings.TrimRight(path, "/")
}
