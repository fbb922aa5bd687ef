package tasks

import (
	"time"

	"github.com/rs/zerolog"
)

// Defaults applied when corresponding DriverConfig fields are unset.
const (
	defaultPollInterval = 250 * time.Millisecond
	defaultSubmitBuffer = 64
)

// DriverConfig encapsulates the tunables of a Driver.
type DriverConfig struct {
	// PollInterval is the sleep between polls of the active job.
	PollInterval time.Duration
	// SubmitBuffer is the capacity of the submit channel.
	SubmitBuffer int
	Logger       zerolog.Logger
	// Metrics may be nil to disable instrumentation.
	Metrics *Metrics
}

func (c DriverConfig) withDefaults() DriverConfig {
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.SubmitBuffer <= 0 {
		c.SubmitBuffer = defaultSubmitBuffer
	}
	return c
}
