package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/locsync/pkg/differ"
	"github.com/agentstation/locsync/pkg/errors"
	"github.com/agentstation/locsync/pkg/reconciler"
)

func planResult() *reconciler.Result {
	return &reconciler.Result{
		RunID:        "run-1",
		State:        reconciler.StateDone,
		Attribute:    "Location",
		SourceCount:  3,
		CurrentCount: 2,
		DesiredCount: 2,
		Changeset:    differ.Compare(differ.NewSet("NYC", "PAR"), differ.NewSet("NYC", "LON")),
		Collisions:   []reconciler.Collision{{Sanitized: "LON", First: "LON", Second: " LON"}},
		DryRun:       true,
		Duration:     2 * time.Second,
	}
}

func TestParseFormat(t *testing.T) {
	for _, in := range []string{"table", "JSON", "yaml", "wide", ""} {
		_, err := ParseFormat(in)
		assert.NoError(t, err, in)
	}

	_, err := ParseFormat("xml")
	require.Error(t, err)
	assert.True(t, errors.IsConfig(err))
}

func TestDetectFormat_Explicit(t *testing.T) {
	assert.Equal(t, FormatYAML, DetectFormat("YAML"))
}

func TestChangesData(t *testing.T) {
	data := ChangesData(planResult(), false)
	assert.Equal(t, []string{"Change", "Value"}, data.Headers)
	assert.Equal(t, [][]string{{"-", "PAR"}, {"+", "LON"}}, data.Rows)

	wide := ChangesData(planResult(), true)
	require.Len(t, wide.Rows, 3)
	assert.Equal(t, []string{"!", " LON -> LON (kept LON)"}, wide.Rows[2])

	assert.Empty(t, ChangesData(&reconciler.Result{}, true).Rows)
}

func TestResultData(t *testing.T) {
	data := ResultData(planResult())
	assert.Equal(t, []string{"Property", "Value"}, data.Headers)
	assert.Contains(t, data.Rows, []string{"Run Id", "run-1"})
	assert.Contains(t, data.Rows, []string{"Added", "1"})
	assert.Contains(t, data.Rows, []string{"Dry Run", "true"})
	assert.NotContains(t, data.Rows, []string{"Failed In", ""})

	failed := planResult()
	failed.State = reconciler.StateFailed
	failed.FailedIn = reconciler.StateUpdating
	assert.Contains(t, ResultData(failed).Rows, []string{"Failed In", "updating"})

	refused := planResult()
	refused.Refused = true
	assert.Contains(t, ResultData(refused).Rows, []string{"Refused", "true"})
	assert.NotContains(t, data.Rows, []string{"Refused", "true"})
}

func TestWriteResult_Table(t *testing.T) {
	var buf bytes.Buffer
	r := planResult()
	require.NoError(t, WriteResult(&buf, FormatTable, r, ChangesData(r, false)))

	out := buf.String()
	assert.Contains(t, strings.ToUpper(out), "CHANGE")
	assert.Contains(t, out, "PAR")
	assert.Contains(t, out, "LON")
}

func TestWriteResult_JSON(t *testing.T) {
	var buf bytes.Buffer
	r := planResult()
	require.NoError(t, WriteResult(&buf, FormatJSON, r, Data{}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Location", decoded["attribute"])
	assert.Equal(t, true, decoded["dry_run"])
}

func TestWriteResult_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteResult(&buf, FormatYAML, planResult(), Data{}))
	assert.Contains(t, buf.String(), "attribute: Location")
	assert.Contains(t, buf.String(), "run_id: run-1")
}

func TestTableFormatter_FallsBackToJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&TableFormatter{}).Format(&buf, map[string]int{"a": 1}))
	assert.JSONEq(t, `{"a":1}`, buf.String())
}
