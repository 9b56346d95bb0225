package engine

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpilot/internal/config"
	"jobpilot/internal/jobs"
	"jobpilot/internal/knowledge"
	"jobpilot/internal/ledger"
	"jobpilot/internal/scorer"
)

func newTestEngine(t *testing.T, page playwright.Page) (*Engine, *ledger.Ledger, string) {
	t.Helper()
	return newTestEngineWithScorer(t, page, scorer.New(nil, []string{"golang"}))
}

func newTestEngineWithScorer(t *testing.T, page playwright.Page, sc *scorer.Scorer) (*Engine, *ledger.Ledger, string) {
	t.Helper()
	dir := t.TempDir()
	ledgerPath := filepath.Join(dir, "ledger.csv")
	led, err := ledger.Open(ledgerPath)
	require.NoError(t, err)

	kb, err := knowledge.Load(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)

	cfg := &config.Config{Mode: "automatic"}
	cfg.Behavior.TypingDelayMS = config.DelayRange{Min: 1, Max: 2}
	cfg.Behavior.ActionDelayMS = config.DelayRange{Min: 1, Max: 2}

	return New(cfg, page, led, sc, kb, nil, nil, nil, ""), led, ledgerPath
}

// fixedScoreAI always rates a posting with the same score.
type fixedScoreAI struct {
	score int
}

func (f fixedScoreAI) ScoreCompatibility(ctx context.Context, jobText, resumeText string) (int, error) {
	return f.score, nil
}

func (f fixedScoreAI) AnswerQuestion(ctx context.Context, question, resumeText string) (string, error) {
	return "", errors.New("not configured")
}

func newMockedPage(t *testing.T, html string) playwright.Page {
	t.Helper()
	pw, err := playwright.Run()
	require.NoError(t, err)
	t.Cleanup(func() { pw.Stop() })
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	require.NoError(t, err)
	t.Cleanup(func() { browser.Close() })
	page, err := browser.NewPage()
	require.NoError(t, err)

	err = page.Route("**/*", func(route playwright.Route) {
		route.Fulfill(playwright.RouteFulfillOptions{
			Status:      playwright.Int(200),
			ContentType: playwright.String("text/html"),
			Body:        html,
		})
	})
	require.NoError(t, err)
	return page
}

func countRows(t *testing.T, path string) int {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return len(strings.Split(strings.TrimSpace(string(data)), "\n"))
}

func TestApply_DuplicateShortCircuits(t *testing.T) {
	// page is nil: a duplicate must be decided from the ledger alone,
	// before any navigation happens.
	e, led, path := newTestEngine(t, nil)

	link := "https://www.linkedin.com/jobs/view/42"
	require.NoError(t, led.Append(ledger.Record{
		Timestamp: time.Now(),
		Platform:  jobs.PlatformLinkedIn,
		Title:     "Golang Developer",
		Link:      link,
		Status:    jobs.StatusRequiresExternal,
	}))
	before := countRows(t, path)

	status := e.Apply(context.Background(), jobs.Opportunity{
		Platform: jobs.PlatformLinkedIn,
		Title:    "Golang Developer",
		Link:     link + "?refId=tracking",
	})

	assert.Equal(t, jobs.StatusSkippedDuplicate, status)
	assert.Equal(t, before, countRows(t, path), "duplicates must not append a row")
}

func TestApply_EmptyLinkFails(t *testing.T) {
	e, _, path := newTestEngine(t, nil)
	before := countRows(t, path)

	status := e.Apply(context.Background(), jobs.Opportunity{Title: "No Link Role"})

	assert.Equal(t, jobs.StatusFailed, status)
	assert.Equal(t, before, countRows(t, path), "no identity, nothing to record")
}

func TestFallbackAnswer(t *testing.T) {
	assert.Equal(t, "2", FallbackAnswer("How many years of experience do you have?"))
	assert.Equal(t, "2", FallbackAnswer("Quantos anos de experiência com Go?"))
	assert.Equal(t, "1", FallbackAnswer("Expected salary"))
	assert.Equal(t, "1", FallbackAnswer(""))
}

func TestIsSponsorshipQuestion(t *testing.T) {
	assert.True(t, IsSponsorshipQuestion("Will you require visa sponsorship?"))
	assert.True(t, IsSponsorshipQuestion("Você precisa de patrocínio de visto?"))
	assert.False(t, IsSponsorshipQuestion("Are you authorized to work remotely?"))
}

func TestChooseOption(t *testing.T) {
	options := []string{"Selecione...", "Sim", "Não"}

	assert.Equal(t, 1, ChooseOption(options, "sim"), "answer contained in option")
	assert.Equal(t, 2, ChooseOption(options, "Não, nunca"), "option contained in answer")
	assert.Equal(t, 1, ChooseOption(options, "maybe"), "no match falls back to index 1")
	assert.Equal(t, -1, ChooseOption([]string{"only"}, "maybe"), "single option has no sane pick")
	assert.Equal(t, -1, ChooseOption(nil, "anything"))
}

// externalPostingHTML is a posting with no quick-apply control at all.
const externalPostingHTML = `<html><head><title>Golang Developer</title></head><body>
<h1>Golang Developer</h1>
<div class="jobs-description__content">We build backend services in Go.</div>
<a href="https://careers.example.com/apply">Apply on company site</a>
</body></html>`

// End-to-end external-application flow against a mocked posting page.
// Requires playwright browsers installed.
func TestApply_ExternalFlowRecordsOnce(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}
	page := newMockedPage(t, externalPostingHTML)

	e, _, path := newTestEngine(t, page)
	opp := jobs.Opportunity{
		Platform: jobs.PlatformLinkedIn,
		Title:    "Golang Developer",
		Company:  "Acme",
		Link:     "https://www.linkedin.com/jobs/view/99?refId=abc",
	}

	status := e.Apply(context.Background(), opp)
	assert.Equal(t, jobs.StatusRequiresExternal, status)
	assert.Equal(t, 2, countRows(t, path), "header plus one outcome row")

	// Same posting again, different tracking params: decided without the page.
	status = e.Apply(context.Background(), opp)
	assert.Equal(t, jobs.StatusSkippedDuplicate, status)
	assert.Equal(t, 2, countRows(t, path))
}

// The threshold is exclusive at 19 and inclusive at 20.
func TestApply_ScoreBoundary(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}
	page := newMockedPage(t, externalPostingHTML)

	opp := jobs.Opportunity{
		Platform: jobs.PlatformLinkedIn,
		Title:    "Golang Developer",
		Company:  "Acme",
		Link:     "https://www.linkedin.com/jobs/view/100",
	}

	e19, _, path19 := newTestEngineWithScorer(t, page, scorer.New(fixedScoreAI{score: 19}, nil))
	status := e19.Apply(context.Background(), opp)
	assert.Equal(t, jobs.StatusSkippedLowMatch, status)
	assert.Equal(t, 2, countRows(t, path19))

	e20, _, path20 := newTestEngineWithScorer(t, page, scorer.New(fixedScoreAI{score: 20}, nil))
	status = e20.Apply(context.Background(), opp)
	assert.Equal(t, jobs.StatusRequiresExternal, status, "score 20 must reach the control lookup")
	assert.Equal(t, 2, countRows(t, path20))
}

// A wizard that always offers next and never submit must terminate at the
// step cap, not loop forever.
func TestApply_StepLoopBound(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping browser test in short mode")
	}

	wizardHTML := `<html><head><title>Golang Developer</title></head><body>
	<h1>Golang Developer</h1>
	<button class="jobs-apply-button">Easy Apply</button>
	<div role="dialog">
	  <button>Next</button>
	</div>
	</body></html>`
	page := newMockedPage(t, wizardHTML)

	e, _, path := newTestEngine(t, page)
	status := e.Apply(context.Background(), jobs.Opportunity{
		Platform: jobs.PlatformLinkedIn,
		Title:    "Golang Developer",
		Company:  "Acme",
		Link:     "https://www.linkedin.com/jobs/view/101",
	})

	assert.Equal(t, jobs.StatusAppliedPartial, status)
	assert.Equal(t, 2, countRows(t, path))
}
