package server

import (
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const taskChanSize = 100

// workerFunc handles one queued task; a non-nil return kills the pool's
// tomb, the same contract internal/worker.go's WorkerFunction has.
type workerFunc = func(t *tomb.Tomb, task any) error

// workerPool runs a fixed number of goroutines pulling from a shared task
// channel, adapted from the teacher's internal/worker.go.
type workerPool struct {
	n     int
	tasks chan any
}

func newWorkerPool(size int) workerPool {
	return workerPool{n: size, tasks: make(chan any, taskChanSize)}
}

func (p *workerPool) addTask(task any) {
	p.tasks <- task
}

// setup starts n workers under t, each running work against queued tasks
// until t dies.
func (p *workerPool) setup(t *tomb.Tomb, work workerFunc) {
	log.Info().Int("workers", p.n).Msg("server: starting connection worker pool")
	for i := 0; i < p.n; i++ {
		t.Go(func() error {
			return p.worker(t, work)
		})
	}
}

func (p *workerPool) worker(t *tomb.Tomb, work workerFunc) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case task := <-p.tasks:
			if err := work(t, task); err != nil {
				log.Error().Err(err).Msg("server: worker exiting")
				return err
			}
		}
	}
}
