package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Tiliavir/file-time-tracker/internal/model"
)

func sampleDoc() model.LogDocument {
	return model.LogDocument{
		"Demo": {
			"src/handlers/payment.go": {
				entry("2024-01-01T10:00:00Z", ann, 60),
				entry("2024-01-03T10:00:00Z", bob, 0),
			},
			"README.md": {entry("2024-01-02T10:00:00Z", bob, 30)},
		},
	}
}

func TestFilter_Empty(t *testing.T) {
	doc := sampleDoc()
	out := Filter{}.Apply(doc)
	assert.Equal(t, doc, out)
	assert.True(t, Filter{}.Empty())
}

func TestFilter_Query(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"substring on file", "payment", 2},
		{"case insensitive", "readme", 1},
		{"user name", "bob", 2},
		{"email", "ann@x", 1},
		{"typo in path segment", "paymant", 2},
		{"typo in long segment", "handlrs", 2},
		{"short query stays exact", "xy", 0},
		{"no match", "kubernetes", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Filter{Query: tt.query}.Apply(sampleDoc())
			assert.Equal(t, tt.want, out.Len())
		})
	}
}

func TestFilter_DateRangeInclusive(t *testing.T) {
	f := Filter{
		From: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
	}
	out := f.Apply(sampleDoc())

	assert.Equal(t, 2, out.Len())
	assert.Len(t, out["Demo"]["src/handlers/payment.go"], 1)
	assert.Len(t, out["Demo"]["README.md"], 1)
}

func TestFilter_DropsEmptySequences(t *testing.T) {
	out := Filter{SkipZero: true, Query: "bob"}.Apply(sampleDoc())

	assert.Equal(t, 1, out.Len())
	assert.NotContains(t, out["Demo"], "src/handlers/payment.go")
}

func TestFilter_KeyDistinguishesFilters(t *testing.T) {
	a := Filter{Query: "x"}.Key()
	b := Filter{Query: "x", SkipZero: true}.Key()
	c := Filter{Query: "X"}.Key()
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, c)
}

func TestFilter_KeyIgnoresTimeOfDay(t *testing.T) {
	morning := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	evening := time.Date(2024, 1, 1, 21, 45, 12, 345, time.UTC)
	assert.Equal(t, Filter{From: morning, To: morning}.Key(), Filter{From: evening, To: evening}.Key())

	nextDay := morning.AddDate(0, 0, 1)
	assert.NotEqual(t, Filter{From: morning, To: morning}.Key(), Filter{From: morning, To: nextDay}.Key())
	assert.NotEqual(t, Filter{}.Key(), Filter{From: morning}.Key())
}

func TestSuggest(t *testing.T) {
	got := Suggest(sampleDoc(), "paymant")
	assert.Contains(t, got, "payment")
	assert.Nil(t, Suggest(nil, "anything"))
}
