// Package session gates trading to a configured daily window. Outside the
// window the engine holds; bars are still consumed so the indicator state
// stays warm across the open.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type Controller struct {
	cron     *cron.Cron
	logger   zerolog.Logger
	openMin  int
	closeMin int

	mu     sync.RWMutex
	always bool
	active bool
}

// New builds a controller for a daily open/close window given as "HH:MM".
// Both empty means trading is always active. Windows may wrap midnight
// (close before open), which overnight futures sessions do.
func New(open, close string, logger zerolog.Logger) (*Controller, error) {
	c := &Controller{
		cron:   cron.New(cron.WithSeconds()),
		logger: logger,
	}

	if open == "" && close == "" {
		c.always = true
		c.active = true
		return c, nil
	}
	if open == "" || close == "" {
		return nil, fmt.Errorf("session open and close must both be set")
	}

	openMin, err := parseClock(open)
	if err != nil {
		return nil, fmt.Errorf("session open: %w", err)
	}
	closeMin, err := parseClock(close)
	if err != nil {
		return nil, fmt.Errorf("session close: %w", err)
	}
	if openMin == closeMin {
		return nil, fmt.Errorf("session open and close must differ")
	}
	c.openMin = openMin
	c.closeMin = closeMin
	c.active = inWindow(minuteOfDay(time.Now()), openMin, closeMin)

	if _, err := c.cron.AddFunc(clockSpec(openMin), func() { c.setActive(true) }); err != nil {
		return nil, fmt.Errorf("register session open: %w", err)
	}
	if _, err := c.cron.AddFunc(clockSpec(closeMin), func() { c.setActive(false) }); err != nil {
		return nil, fmt.Errorf("register session close: %w", err)
	}
	return c, nil
}

func (c *Controller) Start() {
	if !c.always {
		c.cron.Start()
	}
}

func (c *Controller) Stop() {
	if !c.always {
		c.cron.Stop()
	}
}

func (c *Controller) Active() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

func (c *Controller) setActive(active bool) {
	c.mu.Lock()
	c.active = active
	c.mu.Unlock()
	if active {
		c.logger.Info().Msg("trading session opened")
	} else {
		c.logger.Info().Msg("trading session closed")
	}
}

func parseClock(value string) (int, error) {
	t, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("invalid clock time %q: want HH:MM", value)
	}
	return t.Hour()*60 + t.Minute(), nil
}

func clockSpec(minOfDay int) string {
	return fmt.Sprintf("0 %d %d * * *", minOfDay%60, minOfDay/60)
}

func minuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func inWindow(now, open, close int) bool {
	if open < close {
		return now >= open && now < close
	}
	// Window wraps midnight.
	return now >= open || now < close
}
