package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/solarwatch/panel-insights/internal/fleet"
	"github.com/solarwatch/panel-insights/internal/prediction"
	"github.com/solarwatch/panel-insights/internal/store"
)

// Scheduler periodically samples every fleet panel, runs an efficiency
// prediction for it and stores the snapshot.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *prediction.Service
	sampler   *fleet.Sampler
	store     *store.MemoryStore
	panels    []fleet.Panel
	interval  time.Duration
}

// New creates a Scheduler.
func New(panels []fleet.Panel, interval time.Duration, service *prediction.Service, sampler *fleet.Sampler, st *store.MemoryStore) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		service:   service,
		sampler:   sampler,
		store:     st,
		panels:    panels,
		interval:  interval,
	}
}

// Start schedules the periodic refresh job and starts the underlying
// scheduler. An immediate first run seeds the store so the dashboard has
// data right after boot.
func (s *Scheduler) Start() error {
	if len(s.panels) == 0 {
		log.Println("scheduler: no fleet panels configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	job, err := s.scheduler.Every(minutes).Minutes().Do(s.refreshFleet)
	if err != nil {
		return err
	}
	job.SingletonMode()

	s.scheduler.StartAsync()
	go s.refreshFleet()
	return nil
}

func (s *Scheduler) refreshFleet() {
	log.Println("scheduler: running fleet refresh job")
	now := time.Now().UTC()

	var wg sync.WaitGroup
	for _, p := range s.panels {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			sample := s.sampler.SampleAt(p, now)
			result := s.service.PredictEfficiency(ctx, sample, &p.Orientation)

			s.store.SaveSnapshot(store.PanelSnapshot{
				PanelID:   p.ID,
				Timestamp: now,
				Sample:    sample,
				Result:    result,
			})
		}()
	}
	wg.Wait()
	log.Println("scheduler: completed fleet refresh job")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
