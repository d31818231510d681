package notification

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/report"
)

// PowerBISink pushes report rows to a streaming dataset
type PowerBISink struct {
	pushURL    string
	httpClient *http.Client
}

// NewPowerBISink creates the BI push sink; an empty URL disables it
func NewPowerBISink(pushURL string, timeout time.Duration) *PowerBISink {
	return &PowerBISink{
		pushURL:    pushURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (s *PowerBISink) Name() string  { return "powerbi" }
func (s *PowerBISink) Enabled() bool { return s.pushURL != "" }

// Send posts {"rows": [...]}
func (s *PowerBISink) Send(ctx context.Context, summary *Summary) error {
	payload := struct {
		Rows []report.Row `json:"rows"`
	}{Rows: summary.Rows}

	if err := postJSON(ctx, s.httpClient, s.pushURL, payload); err != nil {
		return fmt.Errorf("power bi push: %w", err)
	}
	return nil
}
