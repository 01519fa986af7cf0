package services

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenilmodi00/cse-site/config"
	"github.com/fenilmodi00/cse-site/models"
)

const (
	checkNav = `<nav><a href="/">Home</a><a href="/market">Market</a><a href="/about">About</a>` +
		`<a href="https://example.org/elsewhere">External</a><a href="mailto:info@example.org">Mail</a></nav>`
	checkHomeShell   = `<html><body>` + checkNav + `<div id="ticker-content">Loading</div><span id="aspi-value">--</span></body></html>`
	checkMarketShell = `<html><body>` + checkNav + `<div id="top-gainers">Loading</div><div id="top-losers">Loading</div></body></html>`
	checkAboutShell  = `<html><body>` + checkNav + `<p>About us</p><a href="/careers">Careers</a></body></html>`
)

func checkSite(t *testing.T) *config.Site {
	dir := t.TempDir()
	return &config.Site{
		Name: "Test",
		Pages: []config.Page{
			{Slug: "home", Path: "/", File: writeShell(t, dir, "index.html", checkHomeShell), Live: true},
			{Slug: "market", Path: "/market", File: writeShell(t, dir, "market.html", checkMarketShell), Live: true},
			{Slug: "about", Path: "/about", File: writeShell(t, dir, "about.html", checkAboutShell)},
		},
	}
}

func serveSite(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, exists := pages[r.URL.Path]
		if !exists {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSiteCheckerHealthySite(t *testing.T) {
	site := checkSite(t)
	failedLosers := `<html><body>` + checkNav + `<div id="top-gainers"><table></table></div>` +
		`<div id="top-losers"><p class="error-message">Unable to fetch top losers</p></div></body></html>`
	server := serveSite(t, map[string]string{
		"/":       checkHomeShell,
		"/market": failedLosers,
		"/about":  checkAboutShell,
	})

	report, err := NewSiteChecker(site).Check(server.URL + "/")
	require.NoError(t, err)

	require.Len(t, report.Pages, 3)
	for _, page := range report.Pages {
		assert.True(t, page.Reached, "page %s", page.Slug)
		assert.Equal(t, http.StatusOK, page.StatusCode)
		assert.Empty(t, page.MissingRegions, "page %s", page.Slug)
	}
	assert.Equal(t, []models.RegionID{models.RegionTopLosers}, report.Pages[1].FailedRegions)
	assert.True(t, report.Healthy(), "failure notices alone keep the site healthy")

	// /careers is linked but returns 404 and is not in the manifest.
	assert.Equal(t, []string{"/careers"}, report.Unlisted)
}

func TestSiteCheckerMissingPlaceholder(t *testing.T) {
	site := checkSite(t)
	server := serveSite(t, map[string]string{
		"/":       `<html><body>` + checkNav + `<span id="aspi-value">1</span></body></html>`,
		"/market": checkMarketShell,
		"/about":  checkAboutShell,
	})

	report, err := NewSiteChecker(site).Check(server.URL)
	require.NoError(t, err)

	assert.Equal(t, []models.RegionID{models.RegionTicker}, report.Pages[0].MissingRegions)
	assert.False(t, report.Healthy())
}

func TestSiteCheckerUnreachablePage(t *testing.T) {
	site := checkSite(t)
	server := serveSite(t, map[string]string{
		"/":      checkHomeShell,
		"/about": checkAboutShell,
	})

	report, err := NewSiteChecker(site).Check(server.URL)
	require.NoError(t, err)

	market := report.Pages[1]
	assert.False(t, market.Reached)
	assert.Equal(t, http.StatusNotFound, market.StatusCode)
	assert.False(t, report.Healthy())
}

func TestSiteCheckerRejectsBadRoot(t *testing.T) {
	_, err := NewSiteChecker(checkSite(t)).Check("not a url")
	assert.Error(t, err)
}

func TestSiteCheckerMissingShell(t *testing.T) {
	site := &config.Site{Pages: []config.Page{{Slug: "home", Path: "/", File: filepath.Join(t.TempDir(), "none.html")}}}

	_, err := NewSiteChecker(site).Check("http://127.0.0.1:1/")
	assert.Error(t, err)
}
