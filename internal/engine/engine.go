// The apply-flow state machine. One Apply call takes a discovered
// opportunity from ledger lookup to a terminal status, recording exactly one
// outcome row for everything except duplicates.

package engine

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	"jobpilot/internal/ai"
	"jobpilot/internal/challenge"
	"jobpilot/internal/config"
	"jobpilot/internal/humanize"
	"jobpilot/internal/jobs"
	"jobpilot/internal/knowledge"
	"jobpilot/internal/ledger"
	"jobpilot/internal/scorer"
)

const (
	// scoreThreshold is the minimum compatibility score to attempt an
	// application. Low enough that the nonzero keyword baseline alone
	// does not qualify.
	scoreThreshold = 20

	// maxSteps bounds the modal loop so a cyclic wizard cannot hang a run.
	maxSteps = 15
)

// alreadyAppliedPhrases mark postings the site itself reports as handled.
var alreadyAppliedPhrases = []string{
	"Candidatura enviada",
	"Vaga salva",
	"Applied",
	"Saved",
}

// Notifier is the outbound reporting channel. May be nil.
type Notifier interface {
	NotifyApplication(opp jobs.Opportunity, status string)
	NotifyManualReview(opp jobs.Opportunity)
}

// ConfirmFunc asks the operator whether to proceed with one application.
// Only consulted in semi-automatic mode.
type ConfirmFunc func(opp jobs.Opportunity) bool

type Engine struct {
	cfg        *config.Config
	page       playwright.Page
	ledger     *ledger.Ledger
	scorer     *scorer.Scorer
	kb         *knowledge.Base
	ai         ai.Client
	detector   *challenge.Detector
	notifier   Notifier
	resumeText string
	runID      string

	// Confirm gates each application in semi-automatic mode. Nil means
	// proceed without asking.
	Confirm ConfirmFunc
}

func New(cfg *config.Config, page playwright.Page, led *ledger.Ledger, sc *scorer.Scorer, kb *knowledge.Base, aiClient ai.Client, detector *challenge.Detector, notifier Notifier, resumeText string) *Engine {
	return &Engine{
		cfg:        cfg,
		page:       page,
		ledger:     led,
		scorer:     sc,
		kb:         kb,
		ai:         aiClient,
		detector:   detector,
		notifier:   notifier,
		resumeText: resumeText,
		runID:      uuid.NewString()[:8],
	}
}

// Apply processes one opportunity end to end and returns its terminal status.
// The ledger is consulted before any navigation; a duplicate produces no
// browser activity and no new row.
func (e *Engine) Apply(ctx context.Context, opp jobs.Opportunity) string {
	opp.Link = jobs.CanonicalLink(opp.Link)
	if opp.Link == "" {
		log.Printf("❌ Opportunity %q has no usable link. Skipping.", opp.Title)
		return jobs.StatusFailed
	}

	dup, err := e.ledger.HasRecord(opp.Link)
	if err != nil {
		log.Printf("⚠️ Ledger lookup failed for %s: %v. Treating as new.", opp.Link, err)
	}
	if dup {
		log.Printf("⏭️ Skipping %q at %s: already handled.", opp.Title, opp.Company)
		return jobs.StatusSkippedDuplicate
	}

	status := e.run(ctx, &opp)
	e.record(opp, status)

	if status == jobs.StatusAlreadyOnSite {
		return jobs.StatusSkippedAlreadyOnSite
	}
	return status
}

// run drives the browser through one apply attempt. A panic anywhere in the
// flow is converted to FAILED so one broken posting cannot end the run.
func (e *Engine) run(ctx context.Context, opp *jobs.Opportunity) (status string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Apply flow panicked for %s: %v", opp.Link, r)
			status = jobs.StatusFailed
		}
	}()

	log.Printf("▶️ [%s] Processing: %s at %s", e.runID, opp.Title, opp.Company)

	_, err := e.page.Goto(opp.Link, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(30000),
	})
	if err != nil {
		log.Printf("❌ Failed to open %s: %v", opp.Link, err)
		return jobs.StatusFailed
	}

	humanize.Delay(2000, 5000)
	humanize.MouseJiggle(e.page)
	humanize.SmoothScroll(e.page)

	score := e.scorer.Score(ctx, *opp, e.scrapeDescription(), e.resumeText)
	opp.CompatibilityScore = score
	log.Printf("📊 Compatibility score for %q: %d/100", opp.Title, score)
	if score < scoreThreshold {
		log.Printf("⏭️ Score below %d. Not applying.", scoreThreshold)
		return jobs.StatusSkippedLowMatch
	}

	if e.alreadyOnSite() {
		log.Printf("✔️ Site reports %q as already applied or saved.", opp.Title)
		return jobs.StatusAlreadyOnSite
	}

	control, found := e.locateApplyControl()
	if !found {
		if e.detector != nil && e.detector.Detect(e.page, opp.Platform) {
			log.Println("🚫 Page is blocked by a verification challenge.")
		}
		log.Println("📝 No quick-apply control found. Manual application required.")
		return jobs.StatusRequiresExternal
	}

	if e.cfg.Mode == "semi-automatic" && e.Confirm != nil && !e.Confirm(*opp) {
		log.Printf("🙅 Operator declined %q.", opp.Title)
		return jobs.StatusSkippedUser
	}

	log.Println("🚀 Quick apply available! Opening the modal...")
	if err := control.Click(); err != nil {
		log.Printf("❌ Could not open the apply modal: %v", err)
		return jobs.StatusFlowError
	}
	humanize.Delay(3000, 5000)

	return e.runModal(ctx)
}

// scrapeDescription grabs the posting body for AI context. Best effort: a
// missing description degrades scoring to the title, never fails the flow.
func (e *Engine) scrapeDescription() string {
	desc := e.page.Locator(
		".jobs-description__content, #jobDescriptionText, .jobsearch-JobComponent-description",
	).First()
	text, err := desc.InnerText(playwright.LocatorInnerTextOptions{Timeout: playwright.Float(3000)})
	if err != nil {
		return ""
	}
	return strings.TrimSpace(text)
}

func (e *Engine) alreadyOnSite() bool {
	content, err := e.page.Content()
	if err != nil {
		return false
	}
	for _, phrase := range alreadyAppliedPhrases {
		if strings.Contains(content, phrase) {
			return true
		}
	}
	return false
}

// record appends the outcome row and fans out notifications. Called exactly
// once per non-duplicate attempt.
func (e *Engine) record(opp jobs.Opportunity, status string) {
	rec := ledger.Record{
		Timestamp: time.Now(),
		Platform:  opp.Platform,
		Title:     opp.Title,
		Company:   opp.Company,
		Location:  opp.Location,
		Link:      opp.Link,
		Status:    status,
	}
	if err := e.ledger.Append(rec); err != nil {
		log.Printf("⚠️ Failed to record outcome for %s: %v", opp.Link, err)
	}
	log.Printf("🧾 [%s] %s -> %s", e.runID, opp.Link, status)

	if e.notifier == nil {
		return
	}
	if status == jobs.StatusRequiresExternal {
		e.notifier.NotifyManualReview(opp)
		return
	}
	e.notifier.NotifyApplication(opp, status)
}
