// Package notify delivers best-effort operator notifications over the
// Telegram bot API. Delivery failures are reported to the caller but are
// never allowed to fail a scan.
package notify

import (
	"fmt"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"

	"github.com/secsweep/secsweep/internal/findings"
)

// messageCeiling is the soft per-message length limit. Telegram rejects
// messages over 4096 characters; this keeps a safe buffer below that.
const messageCeiling = 3000

// Telegram posts messages to a single chat through a bot.
type Telegram struct {
	client   *resty.Client
	apiURL   string
	botToken string
	chatID   string
	ceiling  int
	logger   hclog.Logger
}

// NewTelegram creates a notifier. An empty bot token disables delivery and
// turns every call into a logged no-op.
func NewTelegram(client *resty.Client, apiURL, botToken, chatID string, logger hclog.Logger) *Telegram {
	return &Telegram{
		client:   client,
		apiURL:   apiURL,
		botToken: botToken,
		chatID:   chatID,
		ceiling:  messageCeiling,
		logger:   logger,
	}
}

// Enabled reports whether delivery is configured.
func (t *Telegram) Enabled() bool {
	return t.botToken != "" && t.chatID != ""
}

// Post sends a free-form message. Callers treat the returned error as
// advisory: log it, never fail on it.
func (t *Telegram) Post(text string) error {
	if !t.Enabled() {
		t.logger.Debug("telegram notifications disabled, dropping message")
		return nil
	}

	resp, err := t.client.R().
		SetBody(map[string]interface{}{
			"chat_id":                  t.chatID,
			"text":                     text,
			"parse_mode":               "Markdown",
			"disable_web_page_preview": true,
		}).
		Post(fmt.Sprintf("%s/bot%s/sendMessage", t.apiURL, t.botToken))
	if err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("telegram responded with status %d", resp.StatusCode())
	}

	t.logger.Info("telegram message sent")
	return nil
}

// Alert sends the verified findings for a target, batched under the message
// ceiling. A block whose permalink turns out to be empty is skipped even
// though the finding passed the verified filter. When a batch delivery
// fails, the remaining batches are still attempted; the first failure is
// returned for the caller to log and discard.
func (t *Telegram) Alert(target string, verified []findings.Finding) error {
	if len(verified) == 0 {
		t.logger.Info("no verified findings to alert", "target", target)
		return nil
	}

	message := fmt.Sprintf("🚨 *Verified secrets found in %s*:\n", target)
	blocks := 0
	var firstErr error

	flush := func() {
		if err := t.Post(message); err != nil {
			t.logger.Error("failed to deliver alert message", "target", target, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	for i := range verified {
		loc, ok := verified[i].GithubLocation()
		if !ok || loc.Link == "" {
			continue
		}

		detector := verified[i].DetectorName
		if detector == "" {
			detector = "Unknown Secret"
		}
		file := loc.File
		if file == "" {
			file = "Unknown file"
		}

		block := fmt.Sprintf("\n🔍 *%s*\n📄 `%s`\n🔗 [View Commit](%s)\n", detector, file, loc.Link)

		// The block that would overflow the ceiling starts the next message.
		if blocks > 0 && len(message)+len(block) > t.ceiling {
			flush()
			message = fmt.Sprintf("*Continued findings for %s:*\n", target)
			blocks = 0
		}

		message += block
		blocks++
	}

	if blocks > 0 {
		flush()
	} else {
		t.logger.Info("no alertable findings with usable permalinks", "target", target)
	}

	return firstErr
}
