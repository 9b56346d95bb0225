// Compatibility scoring: AI judgment when a backend is configured, falling
// back to deterministic keyword overlap. Pure with respect to the ledger.

package scorer

import (
	"context"
	"log"
	"strings"

	"jobpilot/internal/ai"
	"jobpilot/internal/jobs"
)

const (
	// neutralScore is returned when the AI backend fails or its reply
	// cannot be parsed: the posting is neither endorsed nor rejected.
	neutralScore = 50

	// baselineScore marks "not excluded, just unscored" when no include
	// keyword matches. It stays nonzero so a bare title is not treated
	// as definitely incompatible.
	baselineScore = 10

	pointsPerKeyword = 30
)

type Scorer struct {
	ai      ai.Client
	include []string
}

// New builds a scorer. aiClient may be nil, in which case only the keyword
// fallback is used.
func New(aiClient ai.Client, includeKeywords []string) *Scorer {
	return &Scorer{ai: aiClient, include: includeKeywords}
}

// Score rates opp against the candidate, 0-100. description is the scraped
// posting text when available; the title is used otherwise.
func (s *Scorer) Score(ctx context.Context, opp jobs.Opportunity, description, resumeText string) int {
	if s.ai != nil {
		jobText := description
		if strings.TrimSpace(jobText) == "" {
			jobText = opp.Title
		}
		score, err := s.ai.ScoreCompatibility(ctx, jobText, resumeText)
		if err != nil {
			log.Printf("⚠️ AI scoring unavailable (%v). Using neutral default.", err)
			return neutralScore
		}
		log.Printf("🧠 AI compatibility score: %d/100", score)
		return clamp(score)
	}
	return KeywordScore(opp.Title, s.include)
}

// KeywordScore is the deterministic fallback: +30 per include keyword found
// as a diacritic-insensitive substring of the title, capped at 100.
func KeywordScore(title string, include []string) int {
	folded := jobs.Fold(title)

	score := 0
	var matches []string
	for _, kw := range include {
		if kw == "" {
			continue
		}
		if strings.Contains(folded, jobs.Fold(kw)) {
			matches = append(matches, kw)
			score += pointsPerKeyword
		}
	}

	if len(matches) == 0 {
		return baselineScore
	}
	log.Printf("🔑 Keyword matches: %s", strings.Join(matches, ", "))
	return clamp(score)
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
