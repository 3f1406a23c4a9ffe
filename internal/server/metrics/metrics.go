// Package metrics exposes engine operation counters to Prometheus.
package metrics

import (
	"errors"
	"sync"

	"github.com/Lara-Viana/Eros-Discord-Bot/internal/common"
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

// Recorder counts engine operations by name and outcome. A nil *Recorder
// records nothing.
type Recorder struct {
	ops *prometheus.CounterVec
}

var (
	defaultOnce     sync.Once
	defaultRecorder *Recorder
)

// NewRecorder registers the engine counters with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eros",
			Name:      "operations_total",
			Help:      "Engine operations by operation name and outcome.",
		}, []string{"op", "outcome"}),
	}
	if err := reg.Register(r.ops); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				r.ops = existing
				return r, nil
			}
		}
		return nil, err
	}
	return r, nil
}

// Default returns the recorder registered on the global Prometheus registry.
func Default() *Recorder {
	defaultOnce.Do(func() {
		r, err := NewRecorder(prometheus.DefaultRegisterer)
		if err != nil {
			panic(err)
		}
		defaultRecorder = r
	})
	return defaultRecorder
}

// Observe counts one call of op that finished with err.
func (r *Recorder) Observe(op string, err error) {
	if r == nil {
		return
	}
	r.ops.WithLabelValues(op, Classify(err)).Inc()
}

// Classify maps an operation error to an outcome label. Domain failures are
// "rejected"; anything else is "error".
func Classify(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case common.IsDomain(err):
		return OutcomeRejected
	default:
		return OutcomeError
	}
}
