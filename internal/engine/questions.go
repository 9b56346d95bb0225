// Form question answering inside the apply wizard. Resolution order for
// every question: configured knowledge base, then AI, then a deterministic
// filler that keeps the wizard moving.

package engine

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/playwright-community/playwright-go"

	"jobpilot/internal/humanize"
	"jobpilot/internal/jobs"
)

const (
	defaultYears  = "2"
	defaultFiller = "1"
)

// sponsorshipKeywords flip the default yes answer: sponsorship questions are
// answered No because a Yes routinely disqualifies the application.
var sponsorshipKeywords = []string{"visa", "sponsor", "patrocinio"}

func (e *Engine) answerQuestions(ctx context.Context) *InteractionError {
	if err := e.fillTextInputs(ctx); err != nil {
		return err
	}
	if err := e.answerRadioGroups(); err != nil {
		return err
	}
	return e.answerSelects(ctx)
}

// fillTextInputs types an answer into every visible empty text field.
// Pre-filled fields (profile data the site remembered) are left alone.
func (e *Engine) fillTextInputs(ctx context.Context) *InteractionError {
	inputs, err := e.page.Locator("input[type='text'], input:not([type]), textarea").All()
	if err != nil {
		return &InteractionError{Op: "scanning text inputs", Err: err}
	}
	for _, input := range inputs {
		if visible, _ := input.IsVisible(); !visible {
			continue
		}
		if value, err := input.InputValue(); err != nil || value != "" {
			continue
		}

		label := e.questionLabel(input)
		answer := e.resolveAnswer(ctx, label)
		log.Printf("✍️ Answering %q with %q", truncate(label, 40), answer)

		if err := humanize.Type(input, answer, e.cfg.Behavior.TypingDelayMS); err != nil {
			return &InteractionError{Op: "typing answer", Err: err}
		}
		humanize.DelayRange(e.cfg.Behavior.ActionDelayMS)
	}
	return nil
}

// questionLabel resolves the visible label of an input: the label element
// bound by for=id first, the name attribute otherwise.
func (e *Engine) questionLabel(input playwright.Locator) string {
	if id, err := input.GetAttribute("id"); err == nil && id != "" {
		label := e.page.Locator(fmt.Sprintf("label[for='%s']", id)).First()
		if visible, _ := label.IsVisible(); visible {
			if text, err := label.InnerText(); err == nil {
				return strings.TrimSpace(text)
			}
		}
	}
	if name, err := input.GetAttribute("name"); err == nil {
		return name
	}
	return ""
}

// answerRadioGroups clicks the affirmative option of each yes/no group,
// inverted for sponsorship questions.
func (e *Engine) answerRadioGroups() *InteractionError {
	yesLabels, err := e.page.Locator("label:has-text('Yes'), label:has-text('Sim')").All()
	if err != nil {
		return &InteractionError{Op: "scanning radio groups", Err: err}
	}
	for _, yes := range yesLabels {
		if visible, _ := yes.IsVisible(); !visible {
			continue
		}

		questionText := ""
		if raw, err := yes.Evaluate("el => el.parentElement.innerText", nil); err == nil {
			questionText, _ = raw.(string)
		}

		if IsSponsorshipQuestion(questionText) {
			log.Printf("🛂 Sponsorship question detected. Answering No.")
			no := e.page.Locator("label:has-text('No'), label:has-text('Não')").First()
			if visible, _ := no.IsVisible(); visible {
				if err := no.Click(); err != nil {
					return &InteractionError{Op: "clicking sponsorship radio", Err: err}
				}
			}
		} else if err := yes.Click(); err != nil {
			return &InteractionError{Op: "clicking radio", Err: err}
		}
		humanize.DelayRange(e.cfg.Behavior.ActionDelayMS)
	}
	return nil
}

// answerSelects resolves each dropdown against the answer chain and picks the
// closest option.
func (e *Engine) answerSelects(ctx context.Context) *InteractionError {
	selects, err := e.page.Locator("select").All()
	if err != nil {
		return &InteractionError{Op: "scanning selects", Err: err}
	}
	for _, sel := range selects {
		if visible, _ := sel.IsVisible(); !visible {
			continue
		}
		options, err := sel.Locator("option").AllInnerTexts()
		if err != nil {
			continue
		}

		question := ""
		if raw, err := sel.Evaluate("el => el.parentElement.innerText", nil); err == nil {
			question, _ = raw.(string)
		}
		answer := e.resolveAnswer(ctx, question)

		index := ChooseOption(options, answer)
		if index < 0 {
			continue
		}
		log.Printf("🔽 Selecting option %d (%q) for %q", index, options[index], truncate(question, 40))
		_, err = sel.SelectOption(playwright.SelectOptionValues{Indexes: &[]int{index}})
		if err != nil {
			return &InteractionError{Op: "selecting option", Err: err}
		}
		humanize.DelayRange(e.cfg.Behavior.ActionDelayMS)
	}
	return nil
}

// resolveAnswer runs the answer chain for one question label.
func (e *Engine) resolveAnswer(ctx context.Context, label string) string {
	if answer, found := e.kb.Lookup(label); found {
		return answer
	}
	if e.ai != nil {
		answer, err := e.ai.AnswerQuestion(ctx, label, e.resumeText)
		if err != nil {
			log.Printf("⚠️ AI answer unavailable for %q: %v", truncate(label, 40), err)
		} else if strings.TrimSpace(answer) != "" {
			return strings.TrimSpace(answer)
		}
	}
	return FallbackAnswer(label)
}

// FallbackAnswer is the deterministic last resort: a conservative years
// figure for experience questions, a generic numeric filler otherwise.
func FallbackAnswer(label string) string {
	folded := jobs.Fold(label)
	for _, kw := range []string{"experience", "anos", "years"} {
		if strings.Contains(folded, kw) {
			return defaultYears
		}
	}
	return defaultFiller
}

// IsSponsorshipQuestion reports whether the question is about visa or work
// sponsorship, matched diacritic-insensitively.
func IsSponsorshipQuestion(text string) bool {
	folded := jobs.Fold(text)
	for _, kw := range sponsorshipKeywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}

// ChooseOption picks the dropdown index for answer: first option matching by
// case-insensitive substring in either direction, else index 1, skipping the
// index 0 placeholder. Returns -1 when no sane choice exists.
func ChooseOption(options []string, answer string) int {
	want := strings.ToLower(strings.TrimSpace(answer))
	if want != "" {
		for i, opt := range options {
			have := strings.ToLower(strings.TrimSpace(opt))
			if have == "" {
				continue
			}
			if strings.Contains(have, want) || strings.Contains(want, have) {
				return i
			}
		}
	}
	if len(options) > 1 {
		return 1
	}
	return -1
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
