package report

import (
	"fmt"
	"io"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/Tiliavir/file-time-tracker/internal/timecalc"
)

const rule = "------------------------------------------------------------"

// WriteText prints files by total descending, each followed by its users.
func WriteText(w io.Writer, view View) error {
	if len(view.Files) == 0 {
		_, err := fmt.Fprintln(w, "No entries found.")
		return err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-44s%s\n", "File", "Total")
	b.WriteString(rule + "\n")
	for _, f := range view.Files {
		fmt.Fprintf(&b, "%-44s%s\n", f.File, timecalc.FormatDuration(f.TotalSeconds))
		for _, u := range f.Users {
			last := ""
			if n := len(u.Dates); n > 0 {
				last = "  last " + u.Dates[n-1].Local().Format("2006-01-02")
			}
			fmt.Fprintf(&b, "  %-42s%s%s\n", u.User.Key(), timecalc.FormatDuration(u.TotalSeconds), last)
		}
	}
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "%-44s%s\n", "Total", timecalc.FormatDuration(view.TotalSeconds))
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteJSON writes the view as indented JSON.
func WriteJSON(w io.Writer, view View) error {
	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
