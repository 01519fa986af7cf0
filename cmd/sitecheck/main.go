package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fenilmodi00/cse-site/config"
	"github.com/fenilmodi00/cse-site/services"
)

func main() {
	cfg := config.LoadConfig()
	cfg.ConfigureLogging()

	root := flag.String("url", "http://localhost:"+cfg.ServerPort+"/", "root URL of the running site")
	manifest := flag.String("manifest", cfg.SiteManifest, "site manifest to check against")
	flag.Parse()

	site, err := config.LoadSite(*manifest)
	if err != nil {
		logrus.Fatalf("Failed to load site manifest: %v", err)
	}

	fmt.Printf("🏥 Site Check - %s - %s\n", *root, time.Now().Format("2006-01-02 15:04:05"))
	fmt.Println(strings.Repeat("=", 50))

	report, err := services.NewSiteChecker(site).Check(*root)
	if err != nil {
		fmt.Printf("❌ FAILED (%v)\n", err)
		os.Exit(1)
	}

	if !printReport(os.Stdout, report) {
		os.Exit(1)
	}
}

// printReport writes one line per page and reports whether the site is healthy.
// Regions showing failure notices only warn; unreached pages and missing
// placeholders fail the check.
func printReport(w io.Writer, report services.SiteReport) bool {
	passed := 0
	for _, page := range report.Pages {
		fmt.Fprintf(w, "📄 %-10s %-10s ", page.Slug, page.Path)
		switch {
		case !page.Reached:
			fmt.Fprintf(w, "❌ NOT REACHED (status %d)\n", page.StatusCode)
		case len(page.MissingRegions) > 0:
			fmt.Fprintf(w, "❌ MISSING PLACEHOLDERS %v\n", page.MissingRegions)
		case len(page.FailedRegions) > 0:
			fmt.Fprintf(w, "⚠️  OK, regions showing failures: %v\n", page.FailedRegions)
			passed++
		default:
			fmt.Fprintln(w, "✅ OK")
			passed++
		}
	}

	for _, path := range report.Unlisted {
		fmt.Fprintf(w, "🔗 Reached page not in manifest: %s\n", path)
	}

	fmt.Fprintln(w, strings.Repeat("-", 50))
	if report.Healthy() {
		fmt.Fprintf(w, "🎉 SITE HEALTHY: %d/%d pages passed\n", passed, len(report.Pages))
		return true
	}
	fmt.Fprintf(w, "❌ SITE UNHEALTHY: %d/%d pages passed\n", passed, len(report.Pages))
	return false
}
