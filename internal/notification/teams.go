package notification

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// TeamsSink posts the summary text to a chat webhook
type TeamsSink struct {
	webhookURL string
	httpClient *http.Client
}

// NewTeamsSink creates the chat sink; an empty URL disables it
func NewTeamsSink(webhookURL string, timeout time.Duration) *TeamsSink {
	return &TeamsSink{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *TeamsSink) Name() string  { return "teams" }
func (s *TeamsSink) Enabled() bool { return s.webhookURL != "" }

// Send posts {"text": summary}
func (s *TeamsSink) Send(ctx context.Context, summary *Summary) error {
	if err := postJSON(ctx, s.httpClient, s.webhookURL, map[string]string{"text": summary.Text}); err != nil {
		return fmt.Errorf("teams webhook: %w", err)
	}
	return nil
}
