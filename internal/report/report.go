// Package report assembles the per-run report rows and the plain-text summary.
package report

import (
	"strconv"
	"strings"
	"time"

	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/collector"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/incident"
)

// Title heads the summary text and is the email subject
const Title = "Hybrid WMS Daily Report"

// Header lists the row columns in persisted order
var Header = []string{
	"run_time",
	"ou_name",
	"backend",
	"stuck_lpn",
	"aging_waves",
	"cloud_stuck_tasks",
	"fusion_exceptions",
	"total_issues",
	"snow_incident_id",
	"snow_incident_number",
	"collection_error",
}

// Row is one OU's line in the report
type Row struct {
	RunTime            string `json:"run_time" bson:"run_time"`
	OUName             string `json:"ou_name" bson:"ou_name"`
	Backend            string `json:"backend" bson:"backend"`
	StuckLPN           int    `json:"stuck_lpn" bson:"stuck_lpn"`
	AgingWaves         int    `json:"aging_waves" bson:"aging_waves"`
	CloudStuckTasks    int    `json:"cloud_stuck_tasks" bson:"cloud_stuck_tasks"`
	FusionExceptions   int    `json:"fusion_exceptions" bson:"fusion_exceptions"`
	TotalIssues        int    `json:"total_issues" bson:"total_issues"`
	SnowIncidentID     string `json:"snow_incident_id" bson:"snow_incident_id"`
	SnowIncidentNumber string `json:"snow_incident_number" bson:"snow_incident_number"`
	CollectionError    string `json:"collection_error" bson:"collection_error"`
}

// Record returns the row's values in Header order
func (r Row) Record() []string {
	return []string{
		r.RunTime,
		r.OUName,
		r.Backend,
		strconv.Itoa(r.StuckLPN),
		strconv.Itoa(r.AgingWaves),
		strconv.Itoa(r.CloudStuckTasks),
		strconv.Itoa(r.FusionExceptions),
		strconv.Itoa(r.TotalIssues),
		r.SnowIncidentID,
		r.SnowIncidentNumber,
		r.CollectionError,
	}
}

// Report is the outcome of one run. Every row carries RunTime.
type Report struct {
	RunTime string
	Rows    []Row
}

// OUOutcome pairs an OU's collection result with its incident reference
type OUOutcome struct {
	Result   collector.Result
	Incident incident.Ref
}

// FormatRunTime renders a run time the way rows store it
func FormatRunTime(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(time.RFC3339)
}

// Assemble builds one row per outcome, in order, all stamped with runTime
func Assemble(runTime string, outcomes []OUOutcome) *Report {
	rows := make([]Row, 0, len(outcomes))
	for _, o := range outcomes {
		tally := o.Result.Tally
		row := Row{
			RunTime:            runTime,
			OUName:             o.Result.OU,
			Backend:            o.Result.BackendLabel(),
			StuckLPN:           tally.StuckLPN,
			AgingWaves:         tally.AgingWaves,
			CloudStuckTasks:    tally.CloudStuckTasks,
			FusionExceptions:   tally.FusionExceptions,
			TotalIssues:        tally.Total(),
			SnowIncidentID:     o.Incident.SysID,
			SnowIncidentNumber: o.Incident.Number,
		}
		if o.Result.Err != nil {
			row.CollectionError = o.Result.Err.Error()
		}
		rows = append(rows, row)
	}
	return &Report{RunTime: runTime, Rows: rows}
}

// Summary renders the title followed by one "{ou}: {total} issues" line per row
func (r *Report) Summary() string {
	lines := make([]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		lines = append(lines, row.OUName+": "+strconv.Itoa(row.TotalIssues)+" issues")
	}
	return Title + "\n" + strings.Join(lines, "\n")
}

// TotalIssues sums total_issues over all rows
func (r *Report) TotalIssues() int {
	total := 0
	for _, row := range r.Rows {
		total += row.TotalIssues
	}
	return total
}
