package services

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/Hassan1910/Community-Collaboration-Platforms/database"
	"github.com/Hassan1910/Community-Collaboration-Platforms/errs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const (
	HighlightsWindow   = 7 * 24 * time.Hour
	HighlightsFetchCap = 100
	HighlightsLimit    = 10

	highlightsCacheKey = "highlights:weekly"
)

// Highlight is one ranked entry of the weekly highlights.
type Highlight struct {
	ProjectSummary
	Score int64 `json:"score"`
}

// Score is the engagement metric highlights are ranked by.
func Score(likes, comments int64) int64 {
	return likes + 2*comments
}

// Rank orders entries by score, newest first on ties and then by id, and keeps the first limit.
func Rank(entries []Highlight, limit int) []Highlight {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// HighlightCache stores the serialized ranking between computations.
type HighlightCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

type HighlightService struct {
	projects *database.ProjectRepo
	cache    HighlightCache
	ttl      time.Duration
	group    singleflight.Group
	logger   zerolog.Logger
	now      func() time.Time

	// generation is bumped by Invalidate; a ranking computed under an older generation is
	// never written to the cache.
	generation atomic.Uint64
}

// NewHighlightService wires the ranking engine. cache may be nil.
func NewHighlightService(projects *database.ProjectRepo, cache HighlightCache, ttl time.Duration) *HighlightService {
	return &HighlightService{
		projects: projects,
		cache:    cache,
		ttl:      ttl,
		logger:   log.With().Str("service", "highlights").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ComputeWeeklyHighlights ranks up to HighlightsFetchCap projects created in the trailing
// week and returns the top HighlightsLimit.
func (s *HighlightService) ComputeWeeklyHighlights(ctx context.Context) ([]Highlight, error) {
	now := s.now()
	projects, err := s.projects.FindCreatedBetween(ctx, now.Add(-HighlightsWindow), now, HighlightsFetchCap)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "projects", err)
	}

	ids := projectIDs(projects)
	engagement, err := s.projects.Engagement(ctx, ids)
	if err != nil {
		return nil, errs.NewDatabaseError("count", "engagement", err)
	}

	entries := make([]Highlight, 0, len(projects))
	for _, p := range projects {
		e := engagement[p.ID]
		entries = append(entries, Highlight{
			ProjectSummary: NewProjectSummary(p, e),
			Score:          Score(e.Likes, e.Comments),
		})
	}
	return Rank(entries, HighlightsLimit), nil
}

// WeeklyHighlights serves the ranking from the cache when one is configured, computing it at
// most once per expiry across concurrent callers.
func (s *HighlightService) WeeklyHighlights(ctx context.Context) ([]Highlight, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, highlightsCacheKey); err != nil {
			s.logger.Warn().Err(err).Msg("highlights cache read failed")
		} else if raw != nil {
			var cached []Highlight
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	gen := s.generation.Load()
	flight := highlightsCacheKey + ":" + strconv.FormatUint(gen, 10)
	v, err, _ := s.group.Do(flight, func() (interface{}, error) {
		shared := context.WithoutCancel(ctx)
		entries, err := s.ComputeWeeklyHighlights(shared)
		if err != nil {
			return nil, err
		}
		s.store(shared, gen, entries)
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Highlight), nil
}

// Invalidate drops the cached ranking and discards any computation still in flight.
// Safe to call on a nil service.
func (s *HighlightService) Invalidate(ctx context.Context) {
	if s == nil {
		return
	}
	s.generation.Add(1)
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, highlightsCacheKey); err != nil {
		s.logger.Warn().Err(err).Msg("highlights cache invalidation failed")
	}
}

// store caches entries computed under generation gen, unless an invalidation happened since.
func (s *HighlightService) store(ctx context.Context, gen uint64, entries []Highlight) {
	if s.cache == nil || s.ttl <= 0 || s.generation.Load() != gen {
		return
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, highlightsCacheKey, raw, s.ttl); err != nil {
		s.logger.Warn().Err(err).Msg("highlights cache write failed")
		return
	}
	// an invalidation that slipped in between the check and the write
	if s.generation.Load() != gen {
		if err := s.cache.Del(ctx, highlightsCacheKey); err != nil {
			s.logger.Warn().Err(err).Msg("highlights cache invalidation failed")
		}
	}
}
