package output

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/locsync/pkg/differ"
	"github.com/agentstation/locsync/pkg/reconciler"
)

// label turns a snake_case key into a column or property label.
func label(key string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}

// ChangesData lists the values a run adds and removes. Wide output appends
// the dropped side of every collision.
func ChangesData(r *reconciler.Result, wide bool) Data {
	data := Data{
		Headers:         []string{label("change"), label("value")},
		ColumnAlignment: []Align{AlignCenter, AlignLeft},
	}
	if r.Changeset != nil {
		for _, c := range r.Changeset.Changes() {
			sign := "+"
			if c.Type == differ.ChangeTypeRemove {
				sign = "-"
			}
			data.Rows = append(data.Rows, []string{sign, c.Value})
		}
	}
	if wide {
		for _, c := range r.Collisions {
			data.Rows = append(data.Rows, []string{"!", c.Second + " -> " + c.Sanitized + " (kept " + c.First + ")"})
		}
	}
	return data
}

// ResultData renders a result as a property/value table.
func ResultData(r *reconciler.Result) Data {
	rows := [][]string{
		{label("run_id"), r.RunID},
		{label("attribute"), r.Attribute},
		{label("state"), string(r.State)},
	}
	if r.FailedIn != "" {
		rows = append(rows, []string{label("failed_in"), string(r.FailedIn)})
	}
	rows = append(rows,
		[]string{label("source_count"), strconv.Itoa(r.SourceCount)},
		[]string{label("current_count"), strconv.Itoa(r.CurrentCount)},
		[]string{label("desired_count"), strconv.Itoa(r.DesiredCount)},
		[]string{label("added"), strconv.Itoa(r.Added())},
		[]string{label("removed"), strconv.Itoa(r.Removed())},
		[]string{label("collisions"), strconv.Itoa(len(r.Collisions))},
		[]string{label("truncated"), strconv.Itoa(r.Truncated)},
		[]string{label("dry_run"), strconv.FormatBool(r.DryRun)},
		[]string{label("written"), strconv.FormatBool(r.Written)},
		[]string{label("verified"), strconv.FormatBool(r.Verified)},
	)
	if r.Refused {
		rows = append(rows, []string{label("refused"), "true"})
	}
	if r.Snapshot != "" {
		rows = append(rows, []string{label("snapshot"), r.Snapshot})
	}
	rows = append(rows, []string{label("duration"), r.Duration.String()})

	return Data{
		Headers: []string{label("property"), label("value")},
		Rows:    rows,
	}
}

// WriteResult prints r in format. Structured formats print the whole result;
// tables print table, which the caller derives from r.
func WriteResult(w io.Writer, format Format, r *reconciler.Result, table Data) error {
	if format.IsStructured() {
		return NewFormatter(format).Format(w, r)
	}
	return NewFormatter(FormatTable).Format(w, table)
}
