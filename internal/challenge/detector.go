// Detects anti-automation interstitials (verification widgets, Cloudflare
// challenges). Detection is advisory: callers decide whether to halt the run
// or just the current opportunity, but blindly stepping through a blocked UI
// is never an option.

package challenge

import (
	"log"
	"strings"

	"github.com/playwright-community/playwright-go"

	"jobpilot/internal/jobs"
)

// indicatorSelectors cover iframe-embedded widgets, generic challenge
// containers and localized "verify you are human" text.
var indicatorSelectors = []string{
	"iframe[src*='hcaptcha']",
	"iframe[src*='recaptcha']",
	"iframe[src*='turnstile']",
	"div.g-recaptcha",
	"#captcha-internal",
	"#challenge-running",
	"#challenge-stage",
	"text=verify you're a human",
	"text=verifique que você é um humano",
	"text=security check",
}

// blockedTitles flag interstitials that replace the whole page.
var blockedTitles = []string{"Just a moment", "Attention Required", "Cloudflare"}

// Notifier is the outbound alert channel consulted on detection.
type Notifier interface {
	NotifyChallenge(screenshotPath string, platform jobs.Platform)
}

type Detector struct {
	shots    *Screenshotter
	notifier Notifier
}

// New builds a detector that saves evidence screenshots under dir and alerts
// through notifier. notifier may be nil.
func New(dir string, notifier Notifier) *Detector {
	return &Detector{shots: NewScreenshotter(dir), notifier: notifier}
}

// Detect scans the page for challenge indicators. When one is found it
// captures a screenshot, alerts the operator, and returns true so the caller
// can abort instead of retrying blindly.
func (d *Detector) Detect(page playwright.Page, platform jobs.Platform) bool {
	matched := ""

	if title, err := page.Title(); err == nil {
		for _, t := range blockedTitles {
			if strings.Contains(title, t) {
				matched = "title:" + t
				break
			}
		}
	}

	if matched == "" {
		for _, selector := range indicatorSelectors {
			visible, err := page.Locator(selector).First().IsVisible()
			if err != nil {
				continue
			}
			if visible {
				matched = selector
				break
			}
		}
	}

	if matched == "" {
		return false
	}

	log.Printf("🧩 Challenge detected on %s (%s)!", platform, matched)
	path, err := d.shots.Capture(page, "challenge-"+strings.ToLower(string(platform)))
	if err != nil {
		log.Printf("⚠️ Failed to capture challenge screenshot: %v", err)
	}
	if d.notifier != nil && path != "" {
		d.notifier.NotifyChallenge(path, platform)
	}
	return true
}
