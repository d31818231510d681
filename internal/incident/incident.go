// Package incident files one ticket per affected OU with the ticketing system.
package incident

import (
	"context"
	"fmt"
	"time"

	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/collector"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/config"
)

// Ticket classification used for every incident
const (
	Category = "WMS"
	Impact   = "2"
	Urgency  = "2"
)

// Ticket is the incident body sent to the ticketing system
type Ticket struct {
	ShortDescription string `json:"short_description"`
	Description      string `json:"description"`
	Category         string `json:"category"`
	Impact           string `json:"impact"`
	Urgency          string `json:"urgency"`
}

// NewTicket builds the ticket for one OU's tally; backend is the registry label
func NewTicket(ou, backend, runTime string, tally collector.IssueTally) Ticket {
	return Ticket{
		ShortDescription: fmt.Sprintf("[%s] Hybrid WMS Issues Detected", ou),
		Description: fmt.Sprintf("OU: %s | Backend: %s\nRun: %s\nTotals: %d\nstuck_lpn=%d aging_waves=%d cloud_tasks=%d fusion_ex=%d",
			ou, backend, runTime, tally.Total(),
			tally.StuckLPN, tally.AgingWaves, tally.CloudStuckTasks, tally.FusionExceptions),
		Category: Category,
		Impact:   Impact,
		Urgency:  Urgency,
	}
}

// Ref identifies a created ticket. Both fields are empty when filing
// did not produce a ticket.
type Ref struct {
	SysID  string
	Number string
}

// IsZero reports whether no ticket reference was obtained
func (r Ref) IsZero() bool {
	return r.SysID == "" && r.Number == ""
}

// Result is the outcome of one filing attempt
type Result struct {
	Ref Ref

	// Payload is the decoded response, or {status, text} when it was not JSON
	Payload map[string]any
}

// Filer creates incidents. File never returns an error: every failure
// degrades to a Result with an empty Ref.
type Filer interface {
	File(ctx context.Context, ticket Ticket) Result
}

// NewFiler returns the mock filer when no instance is configured
func NewFiler(cfg config.TicketingConfig, timeout time.Duration) Filer {
	if cfg.Instance == "" {
		return NewMockFiler()
	}
	return NewServiceNowFiler(cfg, timeout)
}
