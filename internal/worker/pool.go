// Package worker bounds long-lived background goroutines with an ants pool.
package worker

import (
	"errors"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"
)

// ErrPoolFull is returned when every worker is busy.
var ErrPoolFull = errors.New("worker pool is full")

// Pool wraps ants.Pool with panic logging and non-blocking submission.
type Pool struct {
	pool *ants.Pool
	name string
}

// NewPool creates a pool of at most size workers.
func NewPool(name string, size int) (*Pool, error) {
	p, err := ants.NewPool(size,
		ants.WithPanicHandler(func(r interface{}) {
			logrus.WithFields(logrus.Fields{"pool": name, "panic": r}).Error("Worker panic recovered")
		}),
		ants.WithNonblocking(true),
		ants.WithExpiryDuration(30*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &Pool{pool: p, name: name}, nil
}

// Submit runs task on a pooled goroutine, or returns ErrPoolFull immediately.
func (p *Pool) Submit(task func()) error {
	err := p.pool.Submit(task)
	if errors.Is(err, ants.ErrPoolOverload) {
		return ErrPoolFull
	}
	return err
}

// Running reports the number of busy workers.
func (p *Pool) Running() int { return p.pool.Running() }

// Release waits up to timeout for running tasks, then frees the pool.
func (p *Pool) Release(timeout time.Duration) {
	if err := p.pool.ReleaseTimeout(timeout); err != nil {
		logrus.WithError(err).WithField("pool", p.name).Warn("Worker pool shutdown timeout")
	}
}
