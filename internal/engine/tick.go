// Package engine wires custom troop trees to campaign events and drives a
// campaign session forward in hourly ticks.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"
)

// TickSchedule defines when each layer runs relative to the tick counter.
const (
	TicksPerDay    = 24         // 1 tick = 1 campaign hour
	TicksPerWeek   = 7 * 24     // 168
	DaysPerSeason  = 21
	SeasonsPerYear = 4
)

// Engine drives a campaign forward.
type Engine struct {
	Tick     uint64        // Current tick counter (monotonic, never resets)
	Speed    float64       // Multiplier: 1.0 = real-time, 0 = paused
	Interval time.Duration // Base tick interval

	OnHour func(tick uint64) // Every tick
	OnDay  func(tick uint64) // Every 24 ticks
	OnWeek func(tick uint64) // Every 168 ticks

	running atomic.Bool
}

// NewEngine creates an engine with default settings.
func NewEngine() *Engine {
	return &Engine{Speed: 1.0, Interval: time.Second}
}

// Running reports whether Run is looping.
func (e *Engine) Running() bool { return e.running.Load() }

// Run paces ticks in real time until ctx is done or Stop is called.
func (e *Engine) Run(ctx context.Context) {
	e.running.Store(true)
	slog.Info("campaign engine started", "tick", e.Tick, "speed", e.Speed)

	for e.running.Load() && ctx.Err() == nil {
		if e.Speed <= 0 {
			// Paused: sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()
		e.step()

		elapsed := time.Since(start)
		target := time.Duration(float64(e.Interval) / e.Speed)
		if elapsed < target {
			select {
			case <-ctx.Done():
			case <-time.After(target - elapsed):
			}
		}
	}

	e.running.Store(false)
	slog.Info("campaign engine stopped", "tick", e.Tick)
}

// Advance runs n ticks back to back without pacing.
func (e *Engine) Advance(n uint64) {
	for range n {
		e.step()
	}
}

// Stop halts the loop.
func (e *Engine) Stop() {
	e.running.Store(false)
}

func (e *Engine) step() {
	e.Tick++

	if e.OnHour != nil {
		e.OnHour(e.Tick)
	}
	if e.Tick%TicksPerDay == 0 && e.OnDay != nil {
		e.OnDay(e.Tick)
	}
	if e.Tick%TicksPerWeek == 0 && e.OnWeek != nil {
		e.OnWeek(e.Tick)
	}
}

// SimTime returns a human-readable campaign time from a tick number.
func SimTime(tick uint64) string {
	hours := tick % TicksPerDay
	totalDays := tick / TicksPerDay
	day := totalDays%DaysPerSeason + 1
	seasons := totalDays / DaysPerSeason
	season := seasons % SeasonsPerYear
	year := seasons/SeasonsPerYear + 1

	seasonNames := [SeasonsPerYear]string{"Spring", "Summer", "Autumn", "Winter"}

	return fmt.Sprintf("%s Day %d, %02d:00 Year %d", seasonNames[season], day, hours, year)
}
