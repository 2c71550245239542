package notify

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/secsweep/secsweep/internal/findings"
)

type sentMessage struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

func newTestNotifier(t *testing.T, status int) (*Telegram, *[]sentMessage) {
	t.Helper()

	var sent []sentMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bottest-bot-token/sendMessage", r.URL.Path)
		var msg sentMessage
		require.NoError(t, json.NewDecoder(r.Body).Decode(&msg))
		sent = append(sent, msg)
		w.WriteHeader(status)
	}))
	t.Cleanup(server.Close)

	notifier := NewTelegram(resty.New(), server.URL, "test-bot-token", "42", hclog.NewNullLogger())
	return notifier, &sent
}

func verifiedFinding(t *testing.T, detector, file, link string) findings.Finding {
	t.Helper()
	line := fmt.Sprintf(
		`{"DetectorName":%q,"Verified":true,"SourceMetadata":{"Data":{"Github":{"file":%q,"link":%q}}}}`,
		detector, file, link)
	var f findings.Finding
	require.NoError(t, json.Unmarshal([]byte(line), &f))
	return f
}

func TestPost(t *testing.T) {
	notifier, sent := newTestNotifier(t, http.StatusOK)

	require.NoError(t, notifier.Post("cycle started"))

	require.Len(t, *sent, 1)
	msg := (*sent)[0]
	assert.Equal(t, "42", msg.ChatID)
	assert.Equal(t, "cycle started", msg.Text)
	assert.Equal(t, "Markdown", msg.ParseMode)
	assert.True(t, msg.DisableWebPagePreview)
}

func TestPostDeliveryFailure(t *testing.T) {
	notifier, _ := newTestNotifier(t, http.StatusBadGateway)

	err := notifier.Post("cycle started")
	assert.Error(t, err)
}

func TestPostDisabled(t *testing.T) {
	notifier := NewTelegram(resty.New(), "http://unused", "", "", hclog.NewNullLogger())

	assert.NoError(t, notifier.Post("dropped silently"))
}

func TestAlertSingleMessage(t *testing.T) {
	notifier, sent := newTestNotifier(t, http.StatusOK)

	verified := []findings.Finding{
		verifiedFinding(t, "AWS", "config.env", "https://github.com/acme/x/blob/abc/config.env"),
		verifiedFinding(t, "Slack", "ci.yml", "https://github.com/acme/y/blob/def/ci.yml"),
	}

	require.NoError(t, notifier.Alert("acme", verified))

	require.Len(t, *sent, 1)
	text := (*sent)[0].Text
	assert.Contains(t, text, "Verified secrets found in acme")
	assert.Contains(t, text, "*AWS*")
	assert.Contains(t, text, "`config.env`")
	assert.Contains(t, text, "*Slack*")
	assert.Equal(t, 2, strings.Count(text, "View Commit"))
}

func TestAlertEmptyIsNoop(t *testing.T) {
	notifier, sent := newTestNotifier(t, http.StatusOK)

	require.NoError(t, notifier.Alert("acme", nil))
	assert.Empty(t, *sent)
}

func TestAlertSkipsEmptyPermalinks(t *testing.T) {
	notifier, sent := newTestNotifier(t, http.StatusOK)

	verified := []findings.Finding{
		verifiedFinding(t, "AWS", "config.env", ""),
	}

	require.NoError(t, notifier.Alert("acme", verified))
	assert.Empty(t, *sent, "nothing sent when no block has a usable permalink")
}

func TestAlertBatching(t *testing.T) {
	notifier, sent := newTestNotifier(t, http.StatusOK)
	notifier.ceiling = 400

	var verified []findings.Finding
	for i := 0; i < 6; i++ {
		link := fmt.Sprintf("https://github.com/acme/repo-%d/blob/0123456789abcdef/deeply/nested/path/file-%d.env", i, i)
		verified = append(verified, verifiedFinding(t, fmt.Sprintf("Detector%d", i), fmt.Sprintf("file-%d.env", i), link))
	}

	require.NoError(t, notifier.Alert("acme", verified))

	require.Greater(t, len(*sent), 1, "combined text over the ceiling must split into multiple messages")

	totalBlocks := 0
	for i, msg := range *sent {
		totalBlocks += strings.Count(msg.Text, "🔍")
		// Each message stays under the ceiling plus one block's overflow margin.
		assert.Less(t, len(msg.Text), 400+200)
		if i == 0 {
			assert.Contains(t, msg.Text, "Verified secrets found in acme")
		} else {
			assert.Contains(t, msg.Text, "Continued findings for acme")
		}
	}
	assert.Equal(t, 6, totalBlocks, "no finding may be dropped by batching")
}

func TestAlertDeliveryFailureStillAttemptsRemaining(t *testing.T) {
	notifier, sent := newTestNotifier(t, http.StatusInternalServerError)
	notifier.ceiling = 400

	var verified []findings.Finding
	for i := 0; i < 6; i++ {
		link := fmt.Sprintf("https://github.com/acme/repo-%d/blob/0123456789abcdef/deeply/nested/path/file-%d.env", i, i)
		verified = append(verified, verifiedFinding(t, fmt.Sprintf("Detector%d", i), fmt.Sprintf("file-%d.env", i), link))
	}

	err := notifier.Alert("acme", verified)
	assert.Error(t, err)
	assert.Greater(t, len(*sent), 1, "later batches are attempted after a failed delivery")
}
