// Package acquisition reconstructs how the current user holds a template from the saved,
// bought and used collections, and applies the save and use mutations.
package acquisition

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/juantap/web/internal/domain"
	"github.com/juantap/web/internal/platform/requestctx"
)

// Source is the backend surface the reconciler reads and mutates.
type Source interface {
	SavedSlugs(ctx context.Context) ([]string, error)
	Purchases(ctx context.Context) ([]domain.Purchase, error)
	UsedSlugs(ctx context.Context) ([]string, error)
	Save(ctx context.Context, slug string) error
	Unsave(ctx context.Context, slug string) error
	MarkUsed(ctx context.Context, slug string) error
	MarkUnused(ctx context.Context, slug string) error
}

// Collection names one of the three fetched collections.
type Collection string

const (
	CollectionSaved  Collection = "saved"
	CollectionBought Collection = "bought"
	CollectionUsed   Collection = "used"
)

// Resolution selects how matches from the saved and bought collections combine.
type Resolution string

const (
	// ResolveCompletion lets the collection that answers last overwrite the status.
	ResolveCompletion Resolution = "completion"
	// ResolvePriority keeps the strongest status: bought > pending > saved.
	ResolvePriority Resolution = "priority"
)

// ParseResolution maps configuration input onto a Resolution. Empty input selects
// ResolveCompletion.
func ParseResolution(value string) (Resolution, error) {
	switch Resolution(strings.ToLower(strings.TrimSpace(value))) {
	case "", ResolveCompletion:
		return ResolveCompletion, nil
	case ResolvePriority:
		return ResolvePriority, nil
	}
	return "", fmt.Errorf("acquisition: unknown resolution %q", value)
}

var (
	// ErrPremiumTemplate is returned when saving or unsaving a template that must be bought.
	ErrPremiumTemplate = errors.New("acquisition: premium templates cannot be saved")
	// ErrNotAcquired is returned when using a template that is neither saved nor bought.
	ErrNotAcquired = errors.New("acquisition: template must be saved or bought first")
)

// Observer receives the state after each collection is applied.
type Observer func(c Collection, state domain.AcquisitionState)

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithResolution selects the resolution mode.
func WithResolution(mode Resolution) Option {
	return func(r *Reconciler) {
		if mode != "" {
			r.mode = mode
		}
	}
}

// WithObserver installs a hook called, in application order, after every collection
// lands. It runs under the reconciler's lock and must not block.
func WithObserver(fn Observer) Option {
	return func(r *Reconciler) {
		r.observer = fn
	}
}

// Reconciler merges the three collections into one AcquisitionState.
type Reconciler struct {
	src      Source
	mode     Resolution
	observer Observer
}

// New constructs a Reconciler reading from src.
func New(src Source, opts ...Option) *Reconciler {
	r := &Reconciler{src: src, mode: ResolveCompletion}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Mode reports the configured resolution mode.
func (r *Reconciler) Mode() Resolution {
	return r.mode
}

// Load fetches the three collections concurrently and returns once all of them have
// answered. Collections that fail leave the state as the others built it; the first
// failure is returned alongside that state.
func (r *Reconciler) Load(ctx context.Context, slug string) (domain.AcquisitionState, error) {
	slug = strings.TrimSpace(slug)
	logger := requestctx.Logger(ctx)

	var (
		mu    sync.Mutex
		state = domain.AcquisitionState{Slug: slug, Status: domain.StatusFree}
		best  = domain.StatusFree
	)
	apply := func(c Collection, fn func(*domain.AcquisitionState)) {
		mu.Lock()
		defer mu.Unlock()
		before := state.Status
		fn(&state)
		if r.mode == ResolvePriority {
			if rank(state.Status) > rank(best) {
				best = state.Status
			}
			state.Status = best
		}
		logger.Debug("acquisition collection applied",
			zap.String("collection", string(c)),
			zap.String("slug", slug),
			zap.String("before", string(before)),
			zap.String("status", string(state.Status)),
			zap.Bool("used", state.Used),
		)
		if r.observer != nil {
			r.observer(c, state)
		}
	}

	var g errgroup.Group
	g.Go(func() error {
		saved, err := r.src.SavedSlugs(ctx)
		if err != nil {
			return fmt.Errorf("acquisition: saved collection: %w", err)
		}
		apply(CollectionSaved, func(s *domain.AcquisitionState) {
			if slices.Contains(saved, slug) {
				s.Status = domain.StatusSaved
			}
		})
		return nil
	})
	g.Go(func() error {
		purchases, err := r.src.Purchases(ctx)
		if err != nil {
			return fmt.Errorf("acquisition: bought collection: %w", err)
		}
		apply(CollectionBought, func(s *domain.AcquisitionState) {
			for _, p := range purchases {
				if p.Slug == slug {
					s.Status = p.Status
				}
			}
		})
		return nil
	})
	g.Go(func() error {
		used, err := r.src.UsedSlugs(ctx)
		if err != nil {
			return fmt.Errorf("acquisition: used collection: %w", err)
		}
		apply(CollectionUsed, func(s *domain.AcquisitionState) {
			if slices.Contains(used, slug) {
				s.Used = true
			}
		})
		return nil
	})
	err := g.Wait()

	mu.Lock()
	defer mu.Unlock()
	return state, err
}

// Save adds a free template to the saved collection. The state changes only after the
// backend acknowledges.
func (r *Reconciler) Save(ctx context.Context, tpl domain.Template, state domain.AcquisitionState) (domain.AcquisitionState, error) {
	if tpl.IsPremium {
		return state, ErrPremiumTemplate
	}
	if err := r.src.Save(ctx, tpl.Key()); err != nil {
		return state, fmt.Errorf("acquisition: save %s: %w", tpl.Key(), err)
	}
	state.Slug = tpl.Key()
	state.Status = domain.StatusSaved
	return state, nil
}

// Unsave removes a free template from the saved collection. The used flag is left as the
// backend holds it; clearing it is a separate MarkUnused call.
func (r *Reconciler) Unsave(ctx context.Context, tpl domain.Template, state domain.AcquisitionState) (domain.AcquisitionState, error) {
	if tpl.IsPremium {
		return state, ErrPremiumTemplate
	}
	if err := r.src.Unsave(ctx, tpl.Key()); err != nil {
		return state, fmt.Errorf("acquisition: unsave %s: %w", tpl.Key(), err)
	}
	state.Slug = tpl.Key()
	state.Status = domain.StatusFree
	return state, nil
}

// MarkUsed applies the template to the live profile once it is saved or bought.
func (r *Reconciler) MarkUsed(ctx context.Context, tpl domain.Template, state domain.AcquisitionState) (domain.AcquisitionState, error) {
	if !state.CanMarkUsed() {
		return state, ErrNotAcquired
	}
	if err := r.src.MarkUsed(ctx, tpl.Key()); err != nil {
		return state, fmt.Errorf("acquisition: use %s: %w", tpl.Key(), err)
	}
	state.Used = true
	return state, nil
}

// MarkUnused removes the template from the live profile.
func (r *Reconciler) MarkUnused(ctx context.Context, tpl domain.Template, state domain.AcquisitionState) (domain.AcquisitionState, error) {
	if !state.CanMarkUsed() {
		return state, ErrNotAcquired
	}
	if err := r.src.MarkUnused(ctx, tpl.Key()); err != nil {
		return state, fmt.Errorf("acquisition: unuse %s: %w", tpl.Key(), err)
	}
	state.Used = false
	return state, nil
}

func rank(s domain.AcquisitionStatus) int {
	switch s {
	case domain.StatusBought:
		return 3
	case domain.StatusPending:
		return 2
	case domain.StatusSaved:
		return 1
	}
	return 0
}
