package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/pipeline"
	"github.com/sudhakarnallapati2-lab/Hybrid-WMS-Automation-AI/internal/report"
)

func TestParsePairs(t *testing.T) {
	values, err := parsePairs([]string{"servicenow-password=s3cr=t", "smtp-password="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"servicenow-password": "s3cr=t",
		"smtp-password":       "",
	}, values)

	_, err = parsePairs([]string{"novalue"})
	assert.Error(t, err)
	_, err = parsePairs([]string{"=x"})
	assert.Error(t, err)
}

func TestPrintRows(t *testing.T) {
	var buf bytes.Buffer
	err := printRows(&buf, &pipeline.Result{Report: &report.Report{
		RunTime: "2025-01-01T00:00:00Z",
		Rows:    []report.Row{{RunTime: "2025-01-01T00:00:00Z", OUName: "US_OU", Backend: "EBS", StuckLPN: 2, TotalIssues: 2}},
	}})
	require.NoError(t, err)

	var rows []report.Row
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "US_OU", rows[0].OUName)
	assert.Contains(t, buf.String(), "\n  {")
}

func TestPrintRows_EmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printRows(&buf, &pipeline.Result{Report: &report.Report{Rows: []report.Row{}}}))
	assert.Equal(t, "[]\n", buf.String())
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wms-monitor.toml")

	var out bytes.Buffer
	configInitCmd.SetOut(&out)
	require.NoError(t, configInitCmd.RunE(configInitCmd, []string{path}))
	_, err := os.Stat(path)
	require.NoError(t, err)

	assert.Error(t, configInitCmd.RunE(configInitCmd, []string{path}), "refuses to overwrite")
}
