package report

import (
	"sort"
	"time"

	"github.com/Tiliavir/file-time-tracker/internal/model"
)

// UserTotal is one user's accrued time on a file.
type UserTotal struct {
	User         model.User  `json:"user"`
	TotalSeconds int64       `json:"totalSeconds"`
	Dates        []time.Time `json:"dates"`
}

// FileSummary is a file with its total and per-user breakdown.
type FileSummary struct {
	File         string      `json:"file"`
	TotalSeconds int64       `json:"totalSeconds"`
	Users        []UserTotal `json:"users"`
}

// Row is a single raw entry with its location in the log.
type Row struct {
	Project string          `json:"project"`
	File    string          `json:"file"`
	Entry   model.TimeEntry `json:"entry"`
}

// View is the aggregated form of a log. It is derived on demand and never
// persisted.
type View struct {
	// Files is ordered by total descending.
	Files          []FileSummary          `json:"files"`
	FileTotals     map[string]int64       `json:"fileTotals"`
	FileUserTotals map[string][]UserTotal `json:"fileUserTotals"`
	// Rows keeps every entry so consumers can filter by user or date.
	Rows         []Row `json:"rows"`
	TotalSeconds int64 `json:"totalSeconds"`
}

// Aggregate sums doc per file and per (file, user). Files are keyed by file
// identifier alone, so the same file under two projects is merged. doc is
// not modified. Equal totals keep sorted key order.
func Aggregate(doc model.LogDocument) View {
	return AggregateOrdered(doc, model.KeyOrder{})
}

// AggregateOrdered is Aggregate with equal totals kept in the key order of
// the log they were read from.
func AggregateOrdered(doc model.LogDocument, keys model.KeyOrder) View {
	view := View{
		FileTotals:     map[string]int64{},
		FileUserTotals: map[string][]UserTotal{},
		Rows:           []Row{},
	}

	type userIndex struct {
		pos   int
		dates map[int64]struct{}
	}
	var order []string
	users := map[string]map[string]*userIndex{}

	for _, project := range keys.Projects(doc) {
		for _, file := range keys.Files(doc, project) {
			for _, e := range doc[project][file] {
				view.Rows = append(view.Rows, Row{Project: project, File: file, Entry: e})
				view.TotalSeconds += e.TimeSpent

				if _, seen := view.FileTotals[file]; !seen {
					order = append(order, file)
					users[file] = map[string]*userIndex{}
				}
				view.FileTotals[file] += e.TimeSpent

				key := e.User.Key()
				idx, ok := users[file][key]
				if !ok {
					idx = &userIndex{pos: len(view.FileUserTotals[file]), dates: map[int64]struct{}{}}
					users[file][key] = idx
					view.FileUserTotals[file] = append(view.FileUserTotals[file], UserTotal{User: e.User, Dates: []time.Time{}})
				}
				ut := &view.FileUserTotals[file][idx.pos]
				ut.TotalSeconds += e.TimeSpent
				if _, dup := idx.dates[e.Date.UnixNano()]; !dup {
					idx.dates[e.Date.UnixNano()] = struct{}{}
					ut.Dates = append(ut.Dates, e.Date)
				}
			}
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return view.FileTotals[order[i]] > view.FileTotals[order[j]]
	})
	view.Files = make([]FileSummary, 0, len(order))
	for _, file := range order {
		view.Files = append(view.Files, FileSummary{
			File:         file,
			TotalSeconds: view.FileTotals[file],
			Users:        view.FileUserTotals[file],
		})
	}
	return view
}
