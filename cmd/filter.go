package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/file-time-tracker/internal/report"
	"github.com/Tiliavir/file-time-tracker/internal/timecalc"
)

// filterFlags are shared by list and report.
type filterFlags struct {
	query    string
	from     string
	to       string
	today    bool
	skipZero bool
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "Match file paths and user names, tolerating small typos")
	cmd.Flags().StringVar(&f.from, "from", "", "First day to include, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "Last day to include, YYYY-MM-DD")
	cmd.Flags().BoolVar(&f.today, "today", false, "Only today's entries")
	cmd.Flags().BoolVar(&f.skipZero, "skip-zero", false, "Hide zero-second entries")
}

func (f *filterFlags) filter(now time.Time) (report.Filter, error) {
	flt := report.Filter{Query: f.query, SkipZero: f.skipZero}
	if f.today {
		flt.From, flt.To = now, now
	}
	if f.from != "" {
		d, err := timecalc.ParseDay(f.from, now.Location())
		if err != nil {
			return report.Filter{}, err
		}
		flt.From = d
	}
	if f.to != "" {
		d, err := timecalc.ParseDay(f.to, now.Location())
		if err != nil {
			return report.Filter{}, err
		}
		flt.To = d
	}
	return flt, nil
}
