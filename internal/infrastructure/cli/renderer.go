package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/doeshing/shlaunch/internal/domain"
)

// Renderer prints launch results, history and diagnostics.
type Renderer struct {
	out io.Writer
	now func() time.Time

	ok    *color.Color
	warn  *color.Color
	fail  *color.Color
	muted *color.Color
	bold  *color.Color
}

// NewRenderer builds a renderer writing to out.
func NewRenderer(out io.Writer) *Renderer {
	return &Renderer{
		out:   out,
		now:   time.Now,
		ok:    color.New(color.FgGreen, color.Bold),
		warn:  color.New(color.FgYellow, color.Bold),
		fail:  color.New(color.FgRed, color.Bold),
		muted: color.New(color.FgHiBlack),
		bold:  color.New(color.Bold),
	}
}

// Outcome prints the result of one run.
func (r *Renderer) Outcome(resp domain.LaunchResponse) {
	o := resp.Outcome
	fmt.Fprintf(r.out, "%s %s\n", r.statusLabel(o.Status), o.Command)
	details := []string{fmt.Sprintf("took %s", o.Duration.Round(time.Millisecond))}
	if o.ExecutionPath != "" {
		details = append(details, "in "+o.ExecutionPath)
	}
	if resp.Record.UseCount > 0 {
		details = append(details, fmt.Sprintf("run %s", humanize.Ordinal(resp.Record.UseCount)))
	}
	r.muted.Fprintln(r.out, strings.Join(details, ", "))

	if out := strings.TrimRight(o.Stdout, "\n"); out != "" {
		fmt.Fprintln(r.out)
		fmt.Fprintln(r.out, out)
	}
	if o.Status == domain.StatusFailed || o.Status == domain.StatusTimedOut {
		fmt.Fprintln(r.out)
		r.fail.Fprint(r.out, "error: ")
		fmt.Fprintln(r.out, o.ErrorMessage)
	} else if errText := strings.TrimRight(o.Stderr, "\n"); errText != "" {
		fmt.Fprintln(r.out)
		r.warn.Fprintln(r.out, "stderr:")
		fmt.Fprintln(r.out, errText)
	}
	if o.Hint != "" {
		r.muted.Fprintf(r.out, "hint: %s\n", o.Hint)
	}
}

func (r *Renderer) statusLabel(status domain.OutcomeStatus) string {
	switch status {
	case domain.StatusSucceeded:
		return r.ok.Sprint("✓")
	case domain.StatusWarning:
		return r.warn.Sprint("!")
	case domain.StatusTimedOut:
		return r.fail.Sprint("⏱")
	default:
		return r.fail.Sprint("✗")
	}
}

// Records prints one line per record, newest first.
func (r *Renderer) Records(records []domain.CommandRecord) {
	if len(records) == 0 {
		fmt.Fprintln(r.out, msgNoHistoryRecorded)
		return
	}
	for _, rec := range records {
		marker := r.ok.Sprint("●")
		if rec.HasError() {
			marker = r.fail.Sprint("●")
		}
		fmt.Fprintf(r.out, "%s %s %s\n",
			marker,
			rec.Command,
			r.muted.Sprintf("(%s, %s)", humanize.RelTime(rec.LastUsedTime(), r.now(), "ago", "from now"), pluralRuns(rec.UseCount)))
	}
}

// Record prints every field of a single record.
func (r *Renderer) Record(rec domain.CommandRecord) {
	r.bold.Fprintln(r.out, rec.Command)
	fmt.Fprintf(r.out, "Last used: %s (%s)\n",
		rec.LastUsedTime().Format(domain.TimestampFormat),
		humanize.RelTime(rec.LastUsedTime(), r.now(), "ago", "from now"))
	fmt.Fprintf(r.out, "Runs: %s\n", humanize.Comma(int64(rec.UseCount)))
	if rec.ExecutionPath != "" {
		fmt.Fprintf(r.out, "Directory: %s\n", rec.ExecutionPath)
	}
	if rec.Output != "" {
		fmt.Fprintf(r.out, "Output (%s):\n%s\n", humanize.Bytes(uint64(len(rec.Output))), strings.TrimRight(rec.Output, "\n"))
	}
	if rec.Error != "" {
		r.fail.Fprintln(r.out, "Error:")
		fmt.Fprintln(r.out, strings.TrimRight(rec.Error, "\n"))
	}
}

// Stats prints the history summary.
func (r *Renderer) Stats(stats domain.HistoryStats, capacity int) {
	if stats.Records == 0 {
		fmt.Fprintln(r.out, msgNoHistoryRecorded)
		return
	}
	fmt.Fprintf(r.out, "Commands: %d of %d\n", stats.Records, capacity)
	fmt.Fprintf(r.out, "Total runs: %s\n", humanize.Comma(int64(stats.TotalRuns)))
	fmt.Fprintf(r.out, "Last run with errors: %d\n", stats.WithErrors)
	fmt.Fprintf(r.out, "Newest: %s\n", humanize.RelTime(time.UnixMilli(stats.Newest), r.now(), "ago", "from now"))
	fmt.Fprintf(r.out, "Oldest: %s\n", humanize.RelTime(time.UnixMilli(stats.Oldest), r.now(), "ago", "from now"))
	if len(stats.TopCommands) > 0 {
		fmt.Fprintln(r.out, "\nMost used:")
		for i, entry := range stats.TopCommands {
			fmt.Fprintf(r.out, "  %d. %s %s\n", i+1, entry.Command, r.muted.Sprintf("(%s)", pluralRuns(entry.Count)))
		}
	}
}

// Health prints the doctor report.
func (r *Renderer) Health(report domain.HealthReport) {
	for _, check := range report.Checks {
		var label string
		switch check.Status {
		case domain.HealthOK:
			label = r.ok.Sprint("[OK]")
		case domain.HealthWarn:
			label = r.warn.Sprint("[WARN]")
		default:
			label = r.fail.Sprint("[ERROR]")
		}
		fmt.Fprintf(r.out, "%s %s - %s\n", label, check.Name, check.Details)
	}
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v interface{}) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func pluralRuns(n int) string {
	if n == 1 {
		return "1 run"
	}
	return humanize.Comma(int64(n)) + " runs"
}

// outcomeView is the --json shape of a launch response.
type outcomeView struct {
	ID            string               `json:"id"`
	Command       string               `json:"command"`
	Status        domain.OutcomeStatus `json:"status"`
	Stdout        string               `json:"stdout"`
	Stderr        string               `json:"stderr"`
	Error         string               `json:"error,omitempty"`
	ExecutionPath string               `json:"executionPath,omitempty"`
	ExitCode      int                  `json:"exitCode"`
	DurationMs    int64                `json:"durationMs"`
	Hint          string               `json:"hint,omitempty"`
	Record        domain.CommandRecord `json:"record"`
}

func newOutcomeView(resp domain.LaunchResponse) outcomeView {
	o := resp.Outcome
	return outcomeView{
		ID:            o.ID,
		Command:       o.Command,
		Status:        o.Status,
		Stdout:        o.Stdout,
		Stderr:        o.Stderr,
		Error:         o.ErrorMessage,
		ExecutionPath: o.ExecutionPath,
		ExitCode:      o.ExitCode,
		DurationMs:    o.Duration.Milliseconds(),
		Hint:          o.Hint,
		Record:        resp.Record,
	}
}
