package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	json "github.com/goccy/go-json"

	"github.com/Tiliavir/file-time-tracker/internal/logger"
	"github.com/Tiliavir/file-time-tracker/internal/storage"
)

// Service aggregates the persisted log on demand. Views are cached by a hash
// of the raw log bytes, so any write to the log invalidates them.
type Service struct {
	store  *storage.Store
	cache  Cache
	logger logger.Logger
}

// NewService wires a report service over store.
func NewService(store *storage.Store, cache Cache, log logger.Logger) *Service {
	return &Service{store: store, cache: cache, logger: log}
}

// Report aggregates the entries matching f. A log that does not exist yet
// yields an empty view.
func (s *Service) Report(f Filter) (View, error) {
	raw, err := s.store.ReadRaw()
	if errors.Is(err, storage.ErrNoLog) {
		return Aggregate(nil), nil
	}
	if err != nil {
		return View{}, err
	}

	key := fmt.Sprintf("%016x|%s", xxhash.Sum64(raw), f.Key())
	if data, ok := s.cache.Get(key); ok {
		var view View
		if err := json.Unmarshal(data, &view); err == nil {
			return view, nil
		}
		s.logger.Warnf(logger.TypeReport, "discarding undecodable cached view")
	}

	doc, keys, err := storage.DecodeOrdered(raw)
	if err != nil {
		return View{}, err
	}
	view := AggregateOrdered(f.Apply(doc), keys)

	if data, err := json.Marshal(view); err == nil {
		s.cache.Set(key, data)
	}
	return view, nil
}

// Suggestions proposes corrections for query from the persisted log.
func (s *Service) Suggestions(query string) ([]string, error) {
	doc, err := s.store.Load()
	if err != nil {
		return nil, err
	}
	return Suggest(doc, query), nil
}

// TodayTotal returns the seconds recorded on now's calendar day.
func (s *Service) TodayTotal(now time.Time) (int64, error) {
	view, err := s.Report(Filter{From: now, To: now})
	if err != nil {
		return 0, err
	}
	return view.TotalSeconds, nil
}
