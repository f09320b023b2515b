package report

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/sajari/fuzzy"

	"github.com/Tiliavir/file-time-tracker/internal/model"
	"github.com/Tiliavir/file-time-tracker/internal/timecalc"
)

// Filter narrows a log before aggregation. Zero values disable each criterion.
type Filter struct {
	// Query matches file paths and user names/emails, case-insensitively,
	// by substring or by a small edit distance to a single path segment or
	// name token.
	Query string
	// From and To bound the entry date by calendar day, inclusive.
	From time.Time
	To   time.Time
	// SkipZero drops zero-second entries.
	SkipZero bool
}

// Key identifies the filter in cache keys. From and To only matter by
// calendar day, so any two instants on the same days share a key.
func (f Filter) Key() string {
	return fmt.Sprintf("%q|%d|%d|%t", strings.ToLower(strings.TrimSpace(f.Query)), dayOrZero(f.From, timecalc.StartOfDay), dayOrZero(f.To, timecalc.EndOfDay), f.SkipZero)
}

func dayOrZero(t time.Time, bound func(time.Time) time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return bound(t).UnixNano()
}

// Empty reports whether the filter lets everything through.
func (f Filter) Empty() bool {
	return f.Query == "" && f.From.IsZero() && f.To.IsZero() && !f.SkipZero
}

// Apply returns the entries of doc matching f. Sequences left empty are
// dropped, so no file maps to an empty slice.
func (f Filter) Apply(doc model.LogDocument) model.LogDocument {
	if f.Empty() {
		return doc.Clone()
	}
	out := model.LogDocument{}
	for project, files := range doc {
		for file, entries := range files {
			var kept []model.TimeEntry
			for _, e := range entries {
				if f.Matches(file, e) {
					kept = append(kept, e)
				}
			}
			if len(kept) == 0 {
				continue
			}
			if out[project] == nil {
				out[project] = map[string][]model.TimeEntry{}
			}
			out[project][file] = kept
		}
	}
	return out
}

// Matches reports whether the entry recorded on file passes f.
func (f Filter) Matches(file string, e model.TimeEntry) bool {
	if f.SkipZero && e.TimeSpent == 0 {
		return false
	}
	if !f.From.IsZero() && e.Date.Before(timecalc.StartOfDay(f.From)) {
		return false
	}
	if !f.To.IsZero() && e.Date.After(timecalc.EndOfDay(f.To)) {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(strings.TrimSpace(f.Query))
	for _, field := range []string{file, e.User.Name, e.User.Email} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	maxDist := maxDistance(q)
	if maxDist == 0 {
		return false
	}
	for _, tok := range append(tokens(file), tokens(e.User.Name)...) {
		if levenshtein.ComputeDistance(tok, q) <= maxDist {
			return true
		}
	}
	return false
}

// maxDistance keeps short queries exact; a two letter query within distance 1
// of every two letter token would match nearly anything.
func maxDistance(q string) int {
	switch n := len([]rune(q)); {
	case n < 4:
		return 0
	case n < 8:
		return 1
	default:
		return 2
	}
}

// tokens splits s into lower-case words on anything that is not a letter or digit.
func tokens(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Suggest proposes corrections for a query that matched nothing, drawn from
// the file path segments and user names in doc.
func Suggest(doc model.LogDocument, query string) []string {
	var words []string
	for _, files := range doc {
		for file, entries := range files {
			words = append(words, tokens(file)...)
			for _, e := range entries {
				words = append(words, tokens(e.User.Name)...)
			}
		}
	}
	if len(words) == 0 {
		return nil
	}
	m := fuzzy.NewModel()
	m.SetThreshold(1)
	m.SetDepth(2)
	m.SetUseAutocomplete(false)
	m.Train(words)
	return m.Suggestions(strings.ToLower(strings.TrimSpace(query)), false)
}
