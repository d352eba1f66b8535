package avatars

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ignite-gym/ignitegym/internal/models"
)

// DefaultMinAge protects uploads whose user row has not been updated yet
const DefaultMinAge = 10 * time.Minute

// Sweeper deletes stored avatars that no user references
type Sweeper struct {
	store  Store
	db     *gorm.DB
	log    zerolog.Logger
	minAge time.Duration
	now    func() time.Time

	cron *cron.Cron
}

// NewSweeper creates a Sweeper
func NewSweeper(store Store, db *gorm.DB, log zerolog.Logger) *Sweeper {
	return &Sweeper{
		store:  store,
		db:     db,
		log:    log,
		minAge: DefaultMinAge,
		now:    time.Now,
	}
}

// Sweep removes unreferenced objects older than the minimum age and
// returns how many were deleted. A failed delete is logged and skipped.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	var referenced []string
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("avatar <> ''").
		Pluck("avatar", &referenced).Error; err != nil {
		return 0, fmt.Errorf("failed to load referenced avatars: %w", err)
	}

	inUse := make(map[string]struct{}, len(referenced))
	for _, name := range referenced {
		inUse[name] = struct{}{}
	}

	objects, err := s.store.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-s.minAge)
	deleted := 0
	for _, obj := range objects {
		if _, ok := inUse[obj.Name]; ok {
			continue
		}
		if obj.LastModified.After(cutoff) {
			continue
		}
		if err := s.store.Delete(ctx, obj.Name); err != nil {
			s.log.Warn().Err(err).Str("avatar", obj.Name).Msg("Failed to delete orphaned avatar")
			continue
		}
		deleted++
	}

	if deleted > 0 {
		s.log.Info().Int("deleted", deleted).Msg("Orphaned avatars removed")
	}
	return deleted, nil
}

// Start schedules Sweep with a cron spec such as "@every 1h"
func (s *Sweeper) Start(spec string) error {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := s.Sweep(ctx); err != nil {
			s.log.Error().Err(err).Msg("Avatar sweep failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", spec, err)
	}

	c.Start()
	s.cron = c
	s.log.Info().Str("schedule", spec).Msg("Avatar sweep scheduled")
	return nil
}

// Stop waits for a running sweep to finish
func (s *Sweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}
