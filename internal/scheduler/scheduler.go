package scheduler

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/truptibhosale899-maker/DailyNest/pkg/logx"
)

type Config struct {
	Timezone string // IANA TZ, e.g. "Asia/Kolkata"; empty means local
}

// Service wraps a cron runner for the bot's scheduled jobs. Jobs run in the
// cron goroutine with panic recovery; a job that overruns does not stack,
// because registrations here are daily.
type Service struct {
	mu sync.Mutex

	log logx.Logger
	cfg Config

	parser cron.Parser
	c      *cron.Cron

	// entries maps job name to its cron entry, so a re-registration under
	// the same name replaces the old schedule instead of stacking.
	entries map[string]cron.EntryID

	runCtx context.Context
}

func New(cfg Config, log logx.Logger) *Service {
	return &Service{
		cfg:     cfg,
		log:     log,
		parser:  cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		entries: make(map[string]cron.EntryID),
	}
}

func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return
	}
	loc := s.loadLocationLocked()
	s.runCtx = ctx
	s.entries = make(map[string]cron.EntryID)
	s.c = cron.New(cron.WithParser(s.parser), cron.WithLocation(loc))
	s.c.Start()
	s.log.Info("scheduler started", logx.String("tz", loc.String()))
}

func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c == nil {
		return
	}
	stopped := s.c.Stop()
	s.c = nil
	select {
	case <-stopped.Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stop cancelled before jobs drained")
	}
	s.log.Info("scheduler stopped")
}

// AddDaily registers a job at HH:MM every day in the service timezone.
// Registering an existing name replaces its schedule.
func (s *Service) AddDaily(name, atHHMM string, job func(ctx context.Context) error) error {
	h, m, err := parseHHMM(atHHMM)
	if err != nil {
		return err
	}
	spec := fmt.Sprintf("%d %d * * *", m, h)
	return s.addFunc(name, spec, job)
}

func (s *Service) addFunc(name, spec string, job func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c == nil {
		return errors.New("scheduler not started")
	}
	if old, ok := s.entries[name]; ok {
		s.c.Remove(old)
	}
	ctx := s.runCtx
	id, err := s.c.AddFunc(spec, func() {
		start := time.Now()
		defer func() {
			if r := recover(); r != nil {
				s.log.Error("panic in scheduled job",
					logx.String("job", name), logx.Any("panic", r),
					logx.String("stack", string(debug.Stack())))
			}
		}()
		if err := job(ctx); err != nil {
			s.log.Warn("job failed", logx.String("job", name),
				logx.Duration("took", time.Since(start)), logx.Err(err))
			return
		}
		s.log.Info("job ok", logx.String("job", name), logx.Duration("took", time.Since(start)))
	})
	if err != nil {
		return fmt.Errorf("register %s (%s): %w", name, spec, err)
	}
	s.entries[name] = id
	s.log.Info("job registered", logx.String("job", name), logx.String("spec", spec))
	return nil
}

// Entries reports the number of registered jobs.
func (s *Service) Entries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c == nil {
		return 0
	}
	return len(s.c.Entries())
}

func (s *Service) loadLocationLocked() *time.Location {
	tz := strings.TrimSpace(s.cfg.Timezone)
	if tz == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		s.log.Warn("invalid timezone, falling back to Local", logx.String("tz", tz), logx.Err(err))
		return time.Local
	}
	return loc
}

func parseHHMM(s string) (hour int, minute int, err error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h, m, nil
}
