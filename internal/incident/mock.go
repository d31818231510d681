package incident

import (
	"context"
	"log/slog"

	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/common/metrics"
)

// Reference returned for every ticket when no instance is configured
const (
	MockSysID  = "MOCKSYSID"
	MockNumber = "INC0009999"
)

// MockFiler stands in for the ticketing system and makes no network calls
type MockFiler struct{}

// NewMockFiler creates a mock filer
func NewMockFiler() *MockFiler {
	slog.Info("Incident filer initialized", "mode", "mock")
	return &MockFiler{}
}

// File returns the fixed mock reference
func (f *MockFiler) File(ctx context.Context, ticket Ticket) Result {
	slog.Info("Ticketing not configured, returning mock incident",
		"shortDescription", ticket.ShortDescription)
	metrics.IncidentsFiled.WithLabelValues("mock", "created").Inc()

	return Result{
		Ref: Ref{SysID: MockSysID, Number: MockNumber},
		Payload: map[string]any{
			"mock":   true,
			"result": map[string]any{"sys_id": MockSysID, "number": MockNumber},
		},
	}
}
