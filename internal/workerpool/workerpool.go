// Package workerpool runs a fixed number of goroutines draining a shared
// task channel, supervised by a tomb.Tomb so the whole pool shuts down
// cleanly when the tomb dies. Adapted from the teacher's ad hoc
// worker-pool (previously duplicated across internal/worker.go and
// internal/server package) into one reusable package the TCP server
// pulls in directly.
package workerpool

import (
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const taskChanSize = 100

// Func is the work a pool executes for each task handed to AddTask.
type Func func(t *tomb.Tomb, task any) error

// Pool is a fixed-size set of workers pulling from a shared task channel.
type Pool struct {
	size  int
	tasks chan any
	work  Func
}

// New constructs a pool with the given number of workers. Call Setup to
// start them under a tomb.
func New(size int) *Pool {
	return &Pool{
		size:  size,
		tasks: make(chan any, taskChanSize),
	}
}

// AddTask enqueues a unit of work for the next free worker.
func (p *Pool) AddTask(task any) {
	p.tasks <- task
}

// Setup starts p.size workers under t, each one running work against
// whatever task it pulls off the channel until t dies. A worker whose
// work returns an error exits and is not restarted; the error kills t.
func (p *Pool) Setup(t *tomb.Tomb, work Func) {
	p.work = work
	log.Info().Int("workers", p.size).Msg("workerpool: starting")

	active := 0
	for active < p.size {
		t.Go(func() error {
			return p.run(t)
		})
		active++
	}
}

func (p *Pool) run(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case task := <-p.tasks:
			if err := p.work(t, task); err != nil {
				log.Error().Err(err).Msg("workerpool: worker exiting on error")
				return err
			}
		}
	}
}
