package model

import (
	"sort"
	"time"
)

// UngroupedProject is the project key for files recorded without a workspace
// name. Existing logs use this literal key.
const UngroupedProject = "undefined"

// User identifies who accrued a TimeEntry.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UnknownUser is substituted whenever the identity source fails.
var UnknownUser = User{Name: "Unknown", Email: "unknown@example.com"}

// Key returns the grouping key "{name} <{email}>".
func (u User) Key() string {
	return u.Name + " <" + u.Email + ">"
}

// TimeEntry is one recorded accrual. Entries are never rewritten once appended.
type TimeEntry struct {
	Date      time.Time `json:"date"`
	User      User      `json:"user"`
	TimeSpent int64     `json:"timeSpent"`
}

// LogDocument maps project -> file -> entries in append order.
type LogDocument map[string]map[string][]TimeEntry

// Clone returns a deep copy of d. A nil document clones to an empty one.
func (d LogDocument) Clone() LogDocument {
	out := make(LogDocument, len(d))
	for project, files := range d {
		fm := make(map[string][]TimeEntry, len(files))
		for file, entries := range files {
			fm[file] = append([]TimeEntry(nil), entries...)
		}
		out[project] = fm
	}
	return out
}

// Projects returns the project keys in sorted order.
func (d LogDocument) Projects() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Files returns the file keys of project in sorted order.
func (d LogDocument) Files(project string) []string {
	files := d[project]
	keys := make([]string, 0, len(files))
	for k := range files {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the total number of entries in the document.
func (d LogDocument) Len() int {
	n := 0
	for _, files := range d {
		for _, entries := range files {
			n += len(entries)
		}
	}
	return n
}

// KeyOrder remembers the order in which projects and files appear in a
// persisted log. The zero value knows no keys, so everything sorts.
type KeyOrder struct {
	projects []string
	files    map[string][]string
	seen     map[[2]string]struct{}
}

// Add notes file under project unless it is already known. New keys go last.
// An empty file only notes the project.
func (o *KeyOrder) Add(project, file string) {
	if o.files == nil {
		o.files = map[string][]string{}
		o.seen = map[[2]string]struct{}{}
	}
	if _, ok := o.files[project]; !ok {
		o.projects = append(o.projects, project)
		o.files[project] = nil
	}
	if file == "" {
		return
	}
	if _, ok := o.seen[[2]string{project, file}]; ok {
		return
	}
	o.seen[[2]string{project, file}] = struct{}{}
	o.files[project] = append(o.files[project], file)
}

// Projects returns the project keys of d, known ones first in log order and
// the rest sorted.
func (o KeyOrder) Projects(d LogDocument) []string {
	return arrange(o.projects, d.Projects())
}

// Files returns the file keys of project in d, known ones first in log order
// and the rest sorted.
func (o KeyOrder) Files(d LogDocument, project string) []string {
	return arrange(o.files[project], d.Files(project))
}

func arrange(known, sorted []string) []string {
	if len(known) == 0 {
		return sorted
	}
	present := make(map[string]bool, len(sorted))
	for _, k := range sorted {
		present[k] = true
	}
	out := make([]string, 0, len(sorted))
	for _, k := range known {
		if present[k] {
			out = append(out, k)
			delete(present, k)
		}
	}
	for _, k := range sorted {
		if present[k] {
			out = append(out, k)
		}
	}
	return out
}

// ActiveSession is the file currently being timed.
type ActiveSession struct {
	File      string
	Project   string
	StartedAt time.Time
}
