// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import "time"

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int

	// EventPollDelay is the interval between window event polls, in milliseconds
	EventPollDelay int
}

// NewTime creates a new time service
func NewTime(cfg TimeConfiguration) *Time {
	return &Time{
		fps:            cfg.FramesPerSecond,
		fpsTicker:      time.NewTicker(tickInterval(time.Second, cfg.FramesPerSecond)),
		eventPollDelay: cfg.EventPollDelay,
		eventTicker:    time.NewTicker(pollInterval(cfg.EventPollDelay)),
	}
}

func tickInterval(period time.Duration, perPeriod int) time.Duration {
	if perPeriod <= 0 {
		return time.Nanosecond
	}
	return period / time.Duration(perPeriod)
}

func pollInterval(delay int) time.Duration {
	if delay <= 0 {
		return time.Millisecond
	}
	return time.Duration(delay) * time.Millisecond
}

// Time contains all the time services and tickers
type Time struct {
	fps       int
	fpsTicker *time.Ticker

	eventPollDelay int
	eventTicker    *time.Ticker
}

// Fps gets the set frames per second
func (t *Time) Fps() int {
	return t.fps
}

// FpsTicker gets the initialized fps ticker
func (t *Time) FpsTicker() *time.Ticker {
	return t.fpsTicker
}

// EventTicker gets the initialized event ticker for the event loop
func (t *Time) EventTicker() *time.Ticker {
	return t.eventTicker
}

// Stop stops both tickers
func (t *Time) Stop() {
	t.fpsTicker.Stop()
	t.eventTicker.Stop()
}
