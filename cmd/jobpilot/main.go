package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"jobpilot/internal/ai"
	"jobpilot/internal/browser"
	"jobpilot/internal/challenge"
	"jobpilot/internal/config"
	"jobpilot/internal/engine"
	"jobpilot/internal/humanize"
	"jobpilot/internal/jobs"
	"jobpilot/internal/knowledge"
	"jobpilot/internal/ledger"
	"jobpilot/internal/notify"
	"jobpilot/internal/resume"
	"jobpilot/internal/scorer"
	"jobpilot/internal/search"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:  "jobpilot",
		Usage: "Automated job search and application engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "configs/config.yaml",
				Usage:   "path to the YAML config file",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "search for jobs and apply to matches",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "run even if a cycle already completed today",
					},
				},
				Action: runCycle,
			},
			{
				Name:   "search",
				Usage:  "search and list opportunities without applying",
				Action: searchOnly,
			},
			{
				Name:   "status",
				Usage:  "show today's application counters",
				Action: showStatus,
			},
		},
	}

	if err := cmd.Run(ctx, os.Args); err != nil {
		log.Fatalf("❌ %v", err)
	}
}

func runCycle(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	led, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		return err
	}
	slots, err := ledger.OpenSlots(cfg.SlotsPath)
	if err != nil {
		return err
	}

	today := time.Now().Format("2006-01-02")
	if done, err := slots.IsDone(today, "apply-cycle"); err == nil && done && !cmd.Bool("force") {
		log.Println("😴 Apply cycle already completed today. Use --force to run again.")
		return nil
	}

	kb, err := knowledge.Load(cfg.AnswersPath)
	if err != nil {
		return err
	}
	resumeText, err := resume.LoadText(cfg.ResumePath)
	if err != nil {
		log.Printf("⚠️ Could not load resume text: %v. AI answers will lack context.", err)
	}

	var tg *notify.Telegram
	if cfg.TelegramToken != "" {
		tg, err = notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Printf("⚠️ Telegram unavailable: %v. Running with log-only notifications.", err)
			tg = nil
		}
	}
	var notifier engine.Notifier
	var challengeNotifier challenge.Notifier
	if tg != nil {
		notifier = tg
		challengeNotifier = tg
	}

	aiClient := ai.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel)
	sc := scorer.New(aiClient, cfg.Profile.IncludeKeywords)
	detector := challenge.New(cfg.ScreenshotDir, challengeNotifier)

	applied, err := led.CountToday("APPLIED")
	if err != nil {
		return err
	}
	if applied >= cfg.DailyApplicationLimit {
		log.Printf("🛑 Daily application limit reached (%d/%d). Nothing to do.", applied, cfg.DailyApplicationLimit)
		return nil
	}

	session, err := browser.Launch(cfg.ProfileDir, cfg.Headless)
	if err != nil {
		// Without a browser no opportunity can be processed.
		return fmt.Errorf("browser launch: %w", err)
	}
	defer session.Close()
	if err := session.SeedCookies(cfg.CookiesPath); err != nil {
		log.Printf("⚠️ Cookie seeding failed: %v", err)
	}

	searcher := search.New(cfg, detector)
	opportunities, err := searcher.Search(ctx, session.Page(), nil)
	if err != nil {
		return err
	}
	log.Printf("🎯 %d opportunities to process. %d/%d applications used today.",
		len(opportunities), applied, cfg.DailyApplicationLimit)

	eng := engine.New(cfg, session.Page(), led, sc, kb, aiClient, detector, notifier, resumeText)
	if cfg.Mode == "semi-automatic" {
		eng.Confirm = promptConfirm
	}

	summary := make(map[string]int)
	for _, opp := range opportunities {
		// Interrupts only take effect between opportunities: an apply
		// attempt in flight always runs to a terminal status.
		if ctx.Err() != nil {
			log.Println("🛑 Interrupted. Stopping before the next opportunity.")
			break
		}
		if applied >= cfg.DailyApplicationLimit {
			log.Printf("🛑 Daily application limit reached (%d). Stopping.", cfg.DailyApplicationLimit)
			break
		}

		status := eng.Apply(ctx, opp)
		summary[status]++
		if jobs.IsApplied(status) {
			applied++
		}

		humanize.Delay(5000, 12000)
	}

	markCycleDone(ctx, slots, today)

	report := formatSummary(summary, applied, cfg.DailyApplicationLimit)
	log.Printf("📋 %s", report)
	if tg != nil {
		tg.SendStatus(report)
	}
	return nil
}

func searchOnly(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	session, err := browser.Launch(cfg.ProfileDir, cfg.Headless)
	if err != nil {
		return fmt.Errorf("browser launch: %w", err)
	}
	defer session.Close()

	searcher := search.New(cfg, challenge.New(cfg.ScreenshotDir, nil))
	opportunities, err := searcher.Search(ctx, session.Page(), nil)
	if err != nil {
		return err
	}

	if len(opportunities) == 0 {
		log.Println("ℹ️ No opportunities found.")
		return nil
	}
	for i, opp := range opportunities {
		fmt.Printf("%2d. %s - %s (%s)\n    %s\n", i+1, opp.Title, opp.Company, opp.Location, opp.Link)
	}
	return nil
}

func showStatus(ctx context.Context, cmd *cli.Command) error {
	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}
	led, err := ledger.Open(cfg.LedgerPath)
	if err != nil {
		return err
	}

	applied, err := led.CountToday("APPLIED")
	if err != nil {
		return err
	}
	skipped, err := led.CountToday("SKIPPED")
	if err != nil {
		return err
	}
	external, err := led.CountToday(jobs.StatusRequiresExternal)
	if err != nil {
		return err
	}

	fmt.Printf("Today: %d/%d applied, %d skipped, %d need manual application\n",
		applied, cfg.DailyApplicationLimit, skipped, external)
	return nil
}

// markCycleDone claims today's slot only when the cycle ran to completion.
// An interrupted run leaves the slot unclaimed so it can be resumed the same
// day without --force.
func markCycleDone(ctx context.Context, slots *ledger.Slots, today string) {
	if ctx.Err() != nil {
		log.Println("ℹ️ Cycle was interrupted. Leaving today's slot unclaimed.")
		return
	}
	if err := slots.MarkDone(today, "apply-cycle"); err != nil {
		log.Printf("⚠️ Could not mark today's cycle as done: %v", err)
	}
}

// promptConfirm asks the operator on stdin before each application.
func promptConfirm(opp jobs.Opportunity) bool {
	fmt.Printf("❓ Apply to %q at %s? [y/N]: ", opp.Title, opp.Company)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func formatSummary(summary map[string]int, applied, limit int) string {
	if len(summary) == 0 {
		return "Run finished: no opportunities processed."
	}
	parts := make([]string, 0, len(summary))
	for _, status := range []string{
		jobs.StatusAppliedAuto,
		jobs.StatusAppliedPartial,
		jobs.StatusRequiresExternal,
		jobs.StatusSkippedAlreadyOnSite,
		jobs.StatusSkippedLowMatch,
		jobs.StatusSkippedUser,
		jobs.StatusSkippedDuplicate,
		jobs.StatusFlowError,
		jobs.StatusFailed,
	} {
		if n := summary[status]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", status, n))
		}
	}
	return fmt.Sprintf("Run finished (%d/%d applications today). %s",
		applied, limit, strings.Join(parts, ", "))
}
