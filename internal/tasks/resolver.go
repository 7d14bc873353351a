package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/services"
	"golang.org/x/time/rate"
)

const searchLimit = 1

// ResolverOpts configures candidate resolution.
type ResolverOpts struct {
	Workers   int     // Concurrent searches (default: 1, sequential)
	RateLimit float64 // Search requests per second (default: 0, unlimited)
}

// ResolveFunc is called once per candidate as soon as its outcome is known.
//
// done counts completed candidates; with more than one worker, calls arrive out of candidate order.
type ResolveFunc func(done, total int, outcome models.TrackSearchOutcome)

// Resolver maps song candidates to catalog tracks using an exact then lenient search.
type Resolver struct {
	catalog services.Searcher
	workers int
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewResolver creates a resolver over catalog.
func NewResolver(catalog services.Searcher, opts ResolverOpts, logger *log.Logger) *Resolver {
	r := &Resolver{catalog: catalog, workers: opts.Workers, logger: orDiscard(logger)}
	if r.workers < 1 {
		r.workers = 1
	}
	if opts.RateLimit > 0 {
		r.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return r
}

// ExactQuery builds the field-qualified query for a candidate.
func ExactQuery(c models.SongCandidate) string {
	return fmt.Sprintf(`track:"%s" artist:"%s"`, quoteSafe(c.Title), quoteSafe(c.Artist))
}

// LenientQuery builds the free-text query for a candidate.
func LenientQuery(c models.SongCandidate) string {
	return fmt.Sprintf(`"%s" "%s"`, quoteSafe(c.Title), quoteSafe(c.Artist))
}

// quoteSafe drops embedded double quotes so a value cannot close its phrase early.
func quoteSafe(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, `"`, ""))
}

// Resolve resolves every candidate, returning one outcome per candidate in input order.
//
// Failures for one candidate never affect the others. The credential is passed through untouched.
func (r *Resolver) Resolve(ctx context.Context, candidates []models.SongCandidate, credential string) []models.TrackSearchOutcome {
	return r.ResolveWithProgress(ctx, candidates, credential, nil)
}

// ResolveWithProgress is [Resolver.Resolve] with a per-candidate callback.
func (r *Resolver) ResolveWithProgress(ctx context.Context, candidates []models.SongCandidate, credential string, fn ResolveFunc) []models.TrackSearchOutcome {
	total := len(candidates)
	outcomes := make([]models.TrackSearchOutcome, total)
	if total == 0 {
		return outcomes
	}

	var mu sync.Mutex
	done := 0
	report := func(i int) {
		if fn == nil {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		done++
		fn(done, total, outcomes[i])
	}

	if r.workers == 1 {
		for i, c := range candidates {
			outcomes[i] = r.ResolveOne(ctx, c, credential)
			report(i)
		}
		return outcomes
	}

	jobs := make(chan int, total)
	for i := range candidates {
		jobs <- i
	}
	close(jobs)

	workers := min(r.workers, total)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = r.ResolveOne(ctx, candidates[i], credential)
				report(i)
			}
		}()
	}
	wg.Wait()

	return outcomes
}

// ResolveOne runs the exact tier and, only if it yields nothing, the lenient tier.
func (r *Resolver) ResolveOne(ctx context.Context, c models.SongCandidate, credential string) models.TrackSearchOutcome {
	var misses []models.TierAttempt

	for _, tier := range []models.SearchTier{models.TierExact, models.TierLenient} {
		track, err := r.search(ctx, tier, c, credential)
		if track != nil {
			r.logger.Debug("resolved candidate", "candidate", c, "tier", tier, "track_id", track.ID)
			return models.FoundOutcome(c, tier, *track, misses)
		}
		if err != nil {
			r.logger.Warn("search failed", "candidate", c, "tier", tier, "error", err)
		}
		misses = append(misses, models.TierAttempt{Tier: tier, Err: err})
	}

	r.logger.Debug("candidate not found", "candidate", c)
	return models.MissingOutcome(c, misses)
}

// search returns the first catalog item for one tier, or nil when there is none.
func (r *Resolver) search(ctx context.Context, tier models.SearchTier, c models.SongCandidate, credential string) (*models.MatchedTrack, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	query := ExactQuery(c)
	if tier == models.TierLenient {
		query = LenientQuery(c)
	}

	items, err := r.catalog.SearchTracks(ctx, credential, query, searchLimit)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 || items[0].ID == "" {
		return nil, nil
	}
	return &items[0], nil
}

// Stats counts found and missing outcomes.
func Stats(outcomes []models.TrackSearchOutcome) models.ResolutionStats {
	s := models.ResolutionStats{Total: len(outcomes)}
	for _, o := range outcomes {
		if o.Found {
			s.Found++
		}
	}
	s.Missing = s.Total - s.Found
	return s
}

// ResolvedTrackIDs returns the track ids of found outcomes in order, keeping duplicates.
func ResolvedTrackIDs(outcomes []models.TrackSearchOutcome) []string {
	ids := make([]string, 0, len(outcomes))
	for _, o := range outcomes {
		if o.Found {
			ids = append(ids, o.TrackID)
		}
	}
	return ids
}
