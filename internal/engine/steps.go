// Modal wizard navigation: finding the quick-apply control, stepping through
// the bounded wizard loop and closing confirmation dialogs.

package engine

import (
	"context"
	"log"
	"strings"

	"github.com/playwright-community/playwright-go"

	"jobpilot/internal/humanize"
	"jobpilot/internal/jobs"
)

// applySelectors are tried in order. Class-based selectors first (cheap and
// stable), localized text selectors after.
var applySelectors = []string{
	"button.jobs-apply-button",
	".jobs-apply-button",
	"button.jobs-apply-button--top-card",
	"[data-job-id] button:has-text('Easy Apply')",
	"button:has-text('Inscrição simplificada')",
	"button:has-text('Candidatura simplificada')",
	"button:has-text('Easy Apply')",
}

// applyTexts drive the brute-force scan when no selector matched, catching
// layout experiments that rename classes but keep the button label.
var applyTexts = []string{"simplificada", "easy apply"}

const (
	// Submit is checked before next on every step: a merged review+submit
	// screen must finalize, not advance.
	submitSelector = "button:has-text('Enviar candidatura'), button:has-text('Submit application'), button:has-text('Finalizar')"
	nextSelector   = "button:has-text('Próximo'), button:has-text('Avançar'), button:has-text('Next'), button:has-text('Review')"
	dialogSelector = "div[role='dialog']"
	closeSelector  = "button[aria-label='Fechar'], button[aria-label='Dismiss'], button:has-text('Done'), button:has-text('Concluído')"
)

var consentSelectors = []string{
	"label:has-text('Aceito'), label:has-text('I agree'), label:has-text('Concordo')",
	"label:has-text('Accept'), label:has-text('Consent')",
	"input[type='checkbox']",
}

// locateApplyControl finds the quick-apply button, or reports that the
// posting only supports external applications.
func (e *Engine) locateApplyControl() (playwright.Locator, bool) {
	for _, sel := range applySelectors {
		btn := e.page.Locator(sel).First()
		if visible, _ := btn.IsVisible(); visible {
			return btn, true
		}
	}

	// Brute force: scan every button label for an apply phrase.
	buttons, err := e.page.Locator("button").All()
	if err != nil {
		return nil, false
	}
	for _, btn := range buttons {
		text, err := btn.InnerText()
		if err != nil {
			continue
		}
		lower := strings.ToLower(text)
		for _, phrase := range applyTexts {
			if strings.Contains(lower, phrase) {
				log.Printf("🔎 Apply control found by label scan: %q", strings.TrimSpace(text))
				return btn, true
			}
		}
	}
	return nil, false
}

// runModal drives the multi-step wizard. Each iteration accepts consents and
// answers questions before looking for controls, so a merged question+submit
// screen is completed before finalizing.
func (e *Engine) runModal(ctx context.Context) string {
	for step := 1; step <= maxSteps; step++ {
		Discard(e.acceptConsents())
		Discard(e.answerQuestions(ctx))

		submit := e.page.Locator(submitSelector).First()
		if visible, _ := submit.IsVisible(); visible {
			log.Println("🏁 Submit control found. Finalizing the application...")
			if err := submit.Click(); err != nil {
				log.Printf("❌ Submit click failed: %v", err)
				return jobs.StatusFlowError
			}
			humanize.Delay(5000, 8000)
			e.dismissPostSubmit()
			return jobs.StatusAppliedAuto
		}

		next := e.page.Locator(nextSelector).First()
		if visible, _ := next.IsVisible(); visible {
			log.Printf("➡️ Advancing to step %d...", step+1)
			if err := next.Click(); err != nil {
				log.Printf("❌ Next click failed: %v", err)
				return jobs.StatusFlowError
			}
			humanize.Delay(2000, 4000)
			continue
		}

		// No actionable control but the modal is still open: close it so
		// the page is usable for the next opportunity.
		if visible, _ := e.page.Locator(dialogSelector).First().IsVisible(); visible {
			log.Println("⚠️ Modal is stalled with no actionable control. Closing it.")
			e.dismissPostSubmit()
		}
		return jobs.StatusAppliedPartial
	}

	log.Printf("⚠️ Wizard exceeded %d steps without a submit control. Bailing out.", maxSteps)
	e.dismissPostSubmit()
	return jobs.StatusAppliedPartial
}

// acceptConsents ticks visible unchecked consent boxes. Best effort.
func (e *Engine) acceptConsents() *InteractionError {
	for _, sel := range consentSelectors {
		boxes, err := e.page.Locator(sel).All()
		if err != nil {
			return &InteractionError{Op: "scanning consent boxes", Err: err}
		}
		for _, box := range boxes {
			if visible, _ := box.IsVisible(); !visible {
				continue
			}
			if checked, err := box.IsChecked(); err == nil && checked {
				continue
			}
			if err := box.Click(); err != nil {
				return &InteractionError{Op: "accepting consent", Err: err}
			}
			humanize.Delay(500, 1200)
		}
	}
	return nil
}

// dismissPostSubmit closes the confirmation dialog left after submission.
func (e *Engine) dismissPostSubmit() {
	humanize.Delay(2000, 4000)
	btn := e.page.Locator(closeSelector).First()
	if visible, _ := btn.IsVisible(); visible {
		if err := btn.Click(); err != nil {
			log.Printf("ℹ️ Could not close the confirmation dialog: %v", err)
			return
		}
		humanize.Delay(1000, 2000)
	}
}
