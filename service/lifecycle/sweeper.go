package lifecycle

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper periodically lapses expired reservations. Resolution is eventual:
// a read between expiry and the next sweep may still observe the book as
// Preordered, which the coordinator also handles lazily.
type Sweeper struct {
	svc Service
	log *slog.Logger
	c   *cron.Cron
}

func NewSweeper(svc Service, log *slog.Logger) *Sweeper {
	return &Sweeper{svc: svc, log: log, c: cron.New()}
}

// Start schedules the sweep every 15 minutes and runs one immediately to
// catch reservations that expired while the process was down.
func (s *Sweeper) Start() error {
	if _, err := s.c.AddFunc("*/15 * * * *", s.sweep); err != nil {
		return err
	}
	s.c.Start()
	go s.sweep()
	return nil
}

func (s *Sweeper) Stop() {
	ctx := s.c.Stop()
	<-ctx.Done()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	reverted, err := s.svc.ResolveExpired(ctx, time.Now().UTC())
	if err != nil {
		s.log.Error("preorder sweep failed", "err", err)
		return
	}
	if len(reverted) > 0 {
		s.log.Info("preorder sweep", "reverted", len(reverted))
	}
}
