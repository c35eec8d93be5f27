// Package extract pulls licensee facts out of registry profile HTML.
package extract

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"presale/internal/licensing/providers"
)

// UnknownStatus is reported when the profile has no licence status entry.
const UnknownStatus = "Unknown"

// genericHeading is the page heading shown when no licensee name is rendered.
const genericHeading = "Real Estate Professional Information"

// Record holds the facts read from one profile page.
type Record struct {
	Name          string
	LicenseStatus string
	Brokerage     string
	KnownAs       string
}

// Extractor parses a fetched profile document.
type Extractor interface {
	Extract(doc []byte) (Record, error)
}

// HTMLExtractor reads the registry's licensee profile layout.
type HTMLExtractor struct{}

func NewHTMLExtractor() *HTMLExtractor {
	return &HTMLExtractor{}
}

// Extract returns ErrorBadData when the document cannot be parsed or names no licensee.
func (HTMLExtractor) Extract(doc []byte) (Record, error) {
	d, err := goquery.NewDocumentFromReader(bytes.NewReader(doc))
	if err != nil {
		return Record{}, providers.NewProviderError(providers.ErrorBadData, "extract", "unparseable profile document", err)
	}

	rec := Record{
		Name:          officialName(d),
		LicenseStatus: UnknownStatus,
	}

	d.Find("dt").Each(func(_ int, s *goquery.Selection) {
		label := strings.Replace(strings.TrimSpace(s.Text()), ":", "", 1)
		value := strings.TrimSpace(s.NextFiltered("dd").Text())
		switch label {
		case "Licence Status":
			rec.LicenseStatus = value
		case "Business Name":
			rec.Brokerage = value
		case "Known As":
			rec.KnownAs = value
		}
	})

	if rec.Name == "" {
		return rec, providers.NewProviderError(providers.ErrorBadData, "extract", "profile has no licensee name", nil)
	}
	return rec, nil
}

func officialName(d *goquery.Document) string {
	if name := firstText(d, "h2.text-h2-alt"); name != "" {
		return name
	}
	if name := firstText(d, ".g-teaser__title"); name != "" {
		return name
	}
	if name := firstText(d, "h1"); name != genericHeading {
		return name
	}
	return ""
}

func firstText(d *goquery.Document, selector string) string {
	return strings.TrimSpace(d.Find(selector).First().Text())
}

// IsLicensed reports whether a registry status string denotes an active licence.
func IsLicensed(status string) bool {
	return strings.Contains(strings.ToLower(status), "licensed")
}
