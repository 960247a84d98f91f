package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/phrazzld/scry-words/internal/domain"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

func validFormat(f string) bool {
	return f == formatText || f == formatJSON || f == formatYAML
}

// renderer writes command results in the selected format.
type renderer struct {
	w      io.Writer
	format string
}

func newRenderer(w io.Writer, format string) *renderer {
	return &renderer{w: w, format: format}
}

// emit writes v as JSON or YAML, or calls text for the text format.
func (r *renderer) emit(v any, text func(w io.Writer)) error {
	switch r.format {
	case formatJSON:
		enc := json.NewEncoder(r.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		// Go through JSON so YAML keys match the wire names.
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(r.w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return err
		}
		return enc.Close()
	default:
		text(r.w)
		return nil
	}
}

// printf writes interactive text regardless of format.
func (r *renderer) printf(format string, args ...any) {
	fmt.Fprintf(r.w, format, args...)
}

func writeDetail(w io.Writer, d domain.WordDetail) {
	d = d.Truncated(domain.MaxDefinitionsShown)
	if d.Phonetic != "" {
		fmt.Fprintf(w, "%s  %s\n", d.Word, d.Phonetic)
	} else {
		fmt.Fprintln(w, d.Word)
	}
	if len(d.Meanings) == 0 {
		fmt.Fprintln(w, "  (no definitions)")
		return
	}
	for _, m := range d.Meanings {
		fmt.Fprintf(w, "  %s\n", m.PartOfSpeech)
		for i, def := range m.Definitions {
			fmt.Fprintf(w, "    %d. %s\n", i+1, def.Definition)
			if def.Example != "" {
				fmt.Fprintf(w, "       e.g. %q\n", def.Example)
			}
		}
	}
}

func writeStats(w io.Writer, s domain.Stats) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Words:\t%d\n", s.TotalWords)
	fmt.Fprintf(tw, "  learning\t%d\n", s.Learning)
	fmt.Fprintf(tw, "  reviewing\t%d\n", s.Reviewing)
	fmt.Fprintf(tw, "  mastered\t%d\n", s.Mastered)
	fmt.Fprintf(tw, "Due today:\t%d\n", s.DueToday)
	fmt.Fprintf(tw, "Reviews:\t%d\n", s.TotalReviews)
	if s.CurrentStreak > 0 {
		fmt.Fprintf(tw, "Streak:\t%d days\n", s.CurrentStreak)
	}
	if !s.LastReviewDate.IsZero() {
		fmt.Fprintf(tw, "Last review:\t%s\n", formatDate(s.LastReviewDate))
	}
	_ = tw.Flush()
}

func writeWords(w io.Writer, words []domain.UserWord) {
	if len(words) == 0 {
		fmt.Fprintln(w, "No words on your list.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "WORD\tSTATUS\tNEXT REVIEW\tINTERVAL")
	for _, uw := range words {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%dd\n", uw.Word, uw.Status, formatDate(uw.NextReviewDate), uw.IntervalDays)
	}
	_ = tw.Flush()
}

func writeHistory(w io.Writer, word string, records []domain.ReviewRecord) {
	if len(records) == 0 {
		fmt.Fprintf(w, "No reviews of %q yet.\n", word)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "REVIEWED\tQUALITY\tINTERVAL\tEASE")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%d %s\t%dd\t%.2f\n",
			formatDate(r.ReviewedAt), int(r.Quality), r.Quality.Label(), r.IntervalDays, r.EaseFactor)
	}
	_ = tw.Flush()
}

func writeGrades(w io.Writer) {
	for _, g := range domain.Grades() {
		fmt.Fprintf(w, "  %d  %-15s %s\n", int(g), g.Label(), g.Description())
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}

// joinWord rebuilds a word given as several arguments ("ice cream").
func joinWord(args []string) string {
	return strings.Join(args, " ")
}
