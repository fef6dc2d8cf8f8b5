package services

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/hoadb/memberwall/internal/logger"
)

// SweepFunc evicts expired entries from one in-memory table and returns how
// many it removed.
type SweepFunc func() int

// Sweeper periodically evicts expired rate windows, blocks and sessions so
// that memory stays bounded by the set of recently active clients.
type Sweeper struct {
	cron   *cron.Cron
	tables map[string]SweepFunc
}

// NewSweeper returns a Sweeper over the named tables.
func NewSweeper(tables map[string]SweepFunc) *Sweeper {
	return &Sweeper{cron: cron.New(), tables: tables}
}

// Start schedules RunOnce using a cron spec such as "@every 5m".
func (s *Sweeper) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, func() { s.RunOnce() }); err != nil {
		return fmt.Errorf("schedule sweep %q: %w", spec, err)
	}
	s.cron.Start()
	logger.Log().WithField("schedule", spec).Info("in-memory sweep scheduled")
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
}

// RunOnce sweeps every table and returns the evictions per table.
func (s *Sweeper) RunOnce() map[string]int {
	removed := make(map[string]int, len(s.tables))
	fields := logrus.Fields{}
	for name, sweep := range s.tables {
		n := sweep()
		removed[name] = n
		fields[name] = n
	}
	logger.Log().WithFields(fields).Debug("swept expired entries")
	return removed
}
