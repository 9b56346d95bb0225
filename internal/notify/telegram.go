// Outbound Telegram notifications. Every method is fire-and-forget: delivery
// failures are logged and never propagated into the apply flow.

package notify

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"jobpilot/internal/jobs"
)

type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegram connects the bot. Returns an error only on initial API
// handshake failure; the caller may run without a notifier.
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("initializing telegram bot: %w", err)
	}
	return &Telegram{api: api, chatID: chatID}, nil
}

// NotifyApplication reports the terminal status of one apply attempt.
func (t *Telegram) NotifyApplication(opp jobs.Opportunity, status string) {
	emoji := "⚠️"
	if jobs.IsApplied(status) {
		emoji = "✅"
	}
	text := fmt.Sprintf(
		"%s <b>Application: %s</b>\n\n"+
			"📍 <b>Role:</b> %s\n"+
			"🏢 <b>Company:</b> %s\n"+
			"🗺️ <b>Location:</b> %s\n"+
			"📊 <b>Status:</b> %s\n"+
			"🤖 <b>Score:</b> %d/100\n\n"+
			"🔗 <a href=\"%s\">View posting</a>",
		emoji, opp.Platform, opp.Title, opp.Company, opp.Location, status, opp.CompatibilityScore, opp.Link,
	)
	t.send(text)
}

// NotifyManualReview flags a posting that only accepts external applications.
func (t *Telegram) NotifyManualReview(opp jobs.Opportunity) {
	text := fmt.Sprintf(
		"📝 <b>Manual application needed</b>\n\n"+
			"📍 <b>Role:</b> %s\n"+
			"🏢 <b>Company:</b> %s\n"+
			"🗺️ <b>Location:</b> %s\n\n"+
			"⚠️ This posting has no quick-apply option. Apply via the link below:\n\n"+
			"🔗 <a href=\"%s\">Open external link</a>",
		opp.Title, opp.Company, opp.Location, opp.Link,
	)
	t.send(text)
}

// NotifyChallenge alerts the operator with the challenge screenshot so the
// verification can be solved manually.
func (t *Telegram) NotifyChallenge(screenshotPath string, platform jobs.Platform) {
	photo := tgbotapi.NewPhoto(t.chatID, tgbotapi.FilePath(screenshotPath))
	photo.Caption = fmt.Sprintf(
		"🧩 Challenge detected on %s!\n\nThe bot is blocked by a security verification. Please open the browser and solve it.",
		platform,
	)
	if _, err := t.api.Send(photo); err != nil {
		log.Printf("⚠️ Failed to send challenge photo: %v", err)
	}
}

// SendStatus sends a free-form progress message.
func (t *Telegram) SendStatus(text string) {
	t.send("ℹ️ " + text)
}

func (t *Telegram) send(text string) {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := t.api.Send(msg); err != nil {
		log.Printf("⚠️ Failed to send telegram message: %v", err)
	}
}
