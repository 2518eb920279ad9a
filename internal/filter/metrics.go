package filter

import (
	"time"

	"github.com/goliatone/go-mathfilter/pkg/interfaces"
)

// NoOpMetrics returns a metrics recorder that drops every observation.
func NoOpMetrics() interfaces.FilterMetrics {
	return noopMetrics{}
}

type noopMetrics struct{}

func (noopMetrics) ObserveFilterDuration(time.Duration) {}

func (noopMetrics) IncrementWrapped(string) {}

func (noopMetrics) IncrementSkipped(string) {}

func (noopMetrics) IncrementHandlerError(string) {}

func (noopMetrics) IncrementCacheHit() {}
