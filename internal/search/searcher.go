package search

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"net/url"
	"strings"

	"github.com/playwright-community/playwright-go"

	"jobpilot/internal/challenge"
	"jobpilot/internal/config"
	"jobpilot/internal/humanize"
	"jobpilot/internal/jobs"
)

const (
	// maxCards bounds work per cycle; a deliberate throughput/safety limit,
	// not a completeness guarantee.
	maxCards = 15

	scrollSteps        = 3
	containerTimeoutMS = 15000
)

type Searcher struct {
	cfg      *config.Config
	detector *challenge.Detector
}

func New(cfg *config.Config, detector *challenge.Detector) *Searcher {
	return &Searcher{cfg: cfg, detector: detector}
}

// BuildURL assembles the search URL. f_TPR=r604800 restricts to the last
// week, f_AL=true to quick-apply postings, f_E=1,2 to entry-level roles.
func BuildURL(keywords []string, location string) string {
	return fmt.Sprintf(
		"https://www.linkedin.com/jobs/search?keywords=%s&location=%s&f_TPR=r604800&f_AL=true&f_E=1%%2C2",
		url.QueryEscape(strings.Join(keywords, " ")),
		url.QueryEscape(location),
	)
}

// Search navigates one results page and returns a deduplicated, filtered
// list of opportunities. Absence of results is a valid outcome, not a fault:
// every failure path degrades to an empty list.
func (s *Searcher) Search(ctx context.Context, page playwright.Page, keywords []string) ([]jobs.Opportunity, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if len(keywords) == 0 {
		keywords = sampleKeywords(s.cfg.Profile.IncludeKeywords, 3)
	}

	location := "Brazil"
	if len(s.cfg.Profile.Locations) > 0 {
		location = s.cfg.Profile.Locations[0]
	}

	searchURL := BuildURL(keywords, location)
	log.Printf("🔍 Navigating to job search: %s", searchURL)
	if _, err := page.Goto(searchURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(30000),
	}); err != nil {
		// A failed navigation is local to this cycle, same as an empty
		// results page. Only a browser that cannot launch ends the run.
		log.Printf("⚠️ Could not open the search page: %v. Returning empty list.", err)
		if s.detector != nil && s.detector.Detect(page, jobs.PlatformLinkedIn) {
			log.Println("🚫 Search page appears to be blocked by a challenge.")
		}
		return nil, nil
	}

	humanize.Delay(3000, 6000)
	humanize.MouseJiggle(page)

	// Force lazy-loaded rows into the DOM before reading.
	if err := humanize.ScrollSteps(page, scrollSteps); err != nil {
		log.Printf("⚠️ Scroll pagination failed: %v", err)
	}

	sel, layout := detectLayout(page)
	log.Printf("📐 Using %s layout selectors.", layout)

	containerSel, found := s.waitForResults(page, sel, layout)
	if !found {
		if s.detector != nil && s.detector.Detect(page, jobs.PlatformLinkedIn) {
			log.Println("🚫 Search page appears to be blocked by a challenge.")
		}
		log.Println("ℹ️ No result container found. Returning empty list.")
		return nil, nil
	}

	cards := page.Locator(containerSel)
	count, err := cards.Count()
	if err != nil {
		return nil, nil
	}
	log.Printf("📦 Found %d job cards.", count)

	var results []jobs.Opportunity
	seen := make(map[string]bool)
	limit := count
	if limit > maxCards {
		limit = maxCards
	}

	for i := 0; i < limit; i++ {
		card := cards.Nth(i)
		card.ScrollIntoViewIfNeeded()

		opp, ok := extractCard(card, sel, layout)
		if !ok {
			// A partial or still-loading row is expected, not exceptional.
			continue
		}
		if Excluded(opp.Title, s.cfg.Profile.ExcludeKeywords) {
			log.Printf("🚫 Skipping %q (exclude keyword match)", opp.Title)
			continue
		}
		if seen[opp.Link] {
			continue
		}
		seen[opp.Link] = true
		log.Printf("  ✅ %s - %s (%s)", opp.Title, opp.Company, opp.Location)
		results = append(results, opp)
	}

	return results, nil
}

// waitForResults tries the layout's primary container, then an ordered list
// of fallback strategies. A timeout feeds the next strategy rather than
// raising: the two outcomes "nothing posted" and "selector timed out" are
// deliberately equivalent here.
func (s *Searcher) waitForResults(page playwright.Page, sel selectorSet, layout Layout) (string, bool) {
	if _, err := page.WaitForSelector(sel.Container, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(containerTimeoutMS),
	}); err == nil {
		return sel.Container, true
	}
	log.Printf("⚠️ Timeout waiting for container %q. Trying fallbacks.", sel.Container)

	fallbacks := []containerStrategy{
		{Selector: "div.job-card-container", Layout: LayoutAuthenticated, TimeoutMS: 5000},
		{Selector: "li[data-occludable-job-id], div[data-job-id]", Layout: LayoutAuthenticated, TimeoutMS: 3000},
	}
	for _, fb := range fallbacks {
		if fb.Layout != layout {
			continue
		}
		if _, err := page.WaitForSelector(fb.Selector, playwright.PageWaitForSelectorOptions{
			Timeout: playwright.Float(fb.TimeoutMS),
		}); err == nil {
			return fb.Selector, true
		}
	}
	return "", false
}

func extractCard(card playwright.Locator, sel selectorSet, layout Layout) (jobs.Opportunity, bool) {
	title := innerTextIfVisible(card.Locator(sel.Title).First())
	company := innerTextIfVisible(card.Locator(sel.Company).First())
	location := innerTextIfVisible(card.Locator(sel.Location).First())

	link := ""
	if href, err := card.Locator(sel.Link).First().GetAttribute("href"); err == nil {
		link = resolveLink(href, layout)
	}
	link = jobs.CanonicalLink(link)

	if title == "" || link == "" {
		return jobs.Opportunity{}, false
	}

	return jobs.Opportunity{
		Platform: jobs.PlatformLinkedIn,
		Title:    title,
		Company:  company,
		Location: location,
		Link:     link,
	}, true
}

func innerTextIfVisible(loc playwright.Locator) string {
	if visible, _ := loc.IsVisible(); !visible {
		return ""
	}
	text, err := loc.InnerText()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

// Excluded reports whether the title matches any exclude keyword,
// case- and diacritic-insensitively.
func Excluded(title string, excludes []string) bool {
	folded := jobs.Fold(title)
	for _, ex := range excludes {
		if ex == "" {
			continue
		}
		if strings.Contains(folded, jobs.Fold(ex)) {
			return true
		}
	}
	return false
}

// sampleKeywords picks up to n random include keywords to vary result pages
// between runs.
func sampleKeywords(available []string, n int) []string {
	if len(available) <= n {
		return available
	}
	picked := make([]string, len(available))
	copy(picked, available)
	rand.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})
	return picked[:n]
}
