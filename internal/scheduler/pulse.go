package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"autotrader/internal/trader"
)

// ConfigSource reads runtime trading config. The loop re-reads it every
// cycle so interval/enabled changes take effect without a restart.
type ConfigSource interface {
	Get(ctx context.Context, key, fallback string) (string, error)
}

// Notifier delivers the pulse hook to the external decision-maker.
type Notifier interface {
	Notify(event string, data map[string]any)
}

type Options struct {
	DefaultInterval time.Duration // used when pulse_interval is missing or invalid
	InitialDelay    time.Duration // delay before the first cycle
}

// PulseScheduler is the single per-process periodic loop that asks the
// decision-maker to act. Start is idempotent; Stop is cooperative: a cycle
// in progress finishes before the loop exits.
type PulseScheduler struct {
	config ConfigSource
	notify Notifier
	opts   Options

	mu          sync.Mutex
	running     bool
	stopCh      chan struct{}
	lastPulseAt *time.Time
}

func NewPulseScheduler(config ConfigSource, notify Notifier, opts Options) *PulseScheduler {
	if opts.DefaultInterval <= 0 {
		opts.DefaultInterval = time.Duration(trader.DefaultPulseInterval) * time.Second
	}
	if opts.InitialDelay < 0 {
		opts.InitialDelay = 0
	}
	return &PulseScheduler{
		config: config,
		notify: notify,
		opts:   opts,
	}
}

func (s *PulseScheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		fmt.Println("[PULSE] Already running")
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.mu.Unlock()

	go s.loop(stopCh)
	fmt.Println("[PULSE] Worker started")
}

func (s *PulseScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	close(s.stopCh)
	s.running = false
	fmt.Println("[PULSE] Worker stopped")
}

func (s *PulseScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// LastPulseAt returns the time of the last scheduled pulse, or nil if none
// has fired yet.
func (s *PulseScheduler) LastPulseAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastPulseAt
}

// Trigger fires one pulse immediately. It does not touch the schedule, the
// running flag, or the last-pulse timestamp.
func (s *PulseScheduler) Trigger() {
	fmt.Println("[PULSE] Manual pulse triggered")
	s.notify.Notify(trader.EventPulse, nil)
}

func (s *PulseScheduler) loop(stopCh chan struct{}) {
	select {
	case <-stopCh:
		return
	case <-time.After(s.opts.InitialDelay):
	}

	for {
		select {
		case <-stopCh:
			return
		default:
		}

		interval := s.interval()
		if s.enabled() {
			fmt.Println("[PULSE] Firing pulse hook")
			s.notify.Notify(trader.EventPulse, nil)
			now := time.Now().UTC()
			s.mu.Lock()
			s.lastPulseAt = &now
			s.mu.Unlock()
		}

		select {
		case <-stopCh:
			return
		case <-time.After(interval):
		}
	}
}

func (s *PulseScheduler) interval() time.Duration {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	raw, err := s.config.Get(ctx, "pulse_interval", "")
	if err == nil && raw != "" {
		if n, perr := strconv.Atoi(raw); perr == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return s.opts.DefaultInterval
}

func (s *PulseScheduler) enabled() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	raw, err := s.config.Get(ctx, "enabled", "true")
	if err != nil {
		fmt.Printf("[PULSE] Could not read enabled flag: %v\n", err)
		return false
	}
	return strings.EqualFold(raw, "true")
}
