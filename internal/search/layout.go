package search

import (
	"strings"

	"github.com/playwright-community/playwright-go"
)

// Layout tags which of the two result-page structures is active. Guest and
// authenticated pages differ in container markup and link resolution, so the
// layout must be decided before any selector is chosen.
type Layout string

const (
	LayoutGuest         Layout = "guest"
	LayoutAuthenticated Layout = "authenticated"
)

// selectorSet groups the extraction selectors for one layout.
type selectorSet struct {
	Container string
	Title     string
	Company   string
	Location  string
	Link      string
}

var guestSelectors = selectorSet{
	Container: "ul.jobs-search__results-list li",
	Title:     "h3.base-search-card__title",
	Company:   "h4.base-search-card__subtitle",
	Location:  "span.job-search-card__location",
	Link:      "a.base-card__full-link",
}

var authSelectors = selectorSet{
	Container: "li.jobs-search-results-list__item, .scaffold-layout__list-container li, div.job-card-container",
	Title:     "a.job-card-list__title, span.job-card-list__title, .artdeco-entity-lockup__title a, h3",
	Company:   ".job-card-container__primary-description, .artdeco-entity-lockup__subtitle, .job-card-container__company-name",
	Location:  ".job-card-container__metadata-item--list, .job-card-container__metadata-item, .artdeco-entity-lockup__caption",
	Link:      "a.job-card-list__title, a.job-card-container__link",
}

// containerStrategy is one (selector, layout) fallback tried in sequence
// when the primary container never appears.
type containerStrategy struct {
	Selector  string
	Layout    Layout
	TimeoutMS float64
}

// detectLayout picks the selector set by probing for an authenticated-only
// navigation element.
func detectLayout(page playwright.Page) (selectorSet, Layout) {
	nav := page.Locator(".global-nav, .jobs-search-results-list").First()
	if visible, _ := nav.IsVisible(); visible {
		return authSelectors, LayoutAuthenticated
	}
	return guestSelectors, LayoutGuest
}

// resolveLink turns a card href into an absolute canonical URL. The
// authenticated layout emits relative hrefs; the guest layout absolute ones.
func resolveLink(href string, layout Layout) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if layout == LayoutAuthenticated && strings.HasPrefix(href, "/") {
		href = "https://www.linkedin.com" + href
	}
	if !strings.HasPrefix(href, "http") {
		return ""
	}
	return href
}
