/*
DESCRIPTION
  pool.go implements the N-parallel-worker glue of §4.7: one goroutine per
  encoder.Adapter, round-robin Frame dispatch, and a scoped "latest
  completed frame" holder for the HTTP layer, since §5 says frame ordering
  across workers is not preserved and "the HTTP consumer is expected to take
  the latest completed frame". The shutdown protocol (close a stop channel,
  WaitGroup.Wait for in-flight compresses, then close every adapter) mirrors
  revid.Revid.Stop().

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package workerpool dispatches captured frames to a fixed set of encoder
// workers, each pinned to its own encoder.Adapter (§4.7).
package workerpool

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/hwjpeg/encoder"
	"github.com/ausocean/hwjpeg/pixfmt"
)

// ErrPoolClosed is returned by Submit once Stop has been called.
var ErrPoolClosed = errors.New("workerpool: pool is stopped")

type worker struct {
	adapter encoder.Adapter
	in      chan *pixfmt.Frame
}

// Pool dispatches Frame values round-robin to a fixed set of workers. No
// state is shared between workers except what the caller passes into every
// encoder.Adapter at construction (the overlay/blocking singletons, the TTF
// mutex and the raw-frame cache) — none of which this package touches
// directly.
type Pool struct {
	workers []*worker
	rr      uint64

	latestMu sync.Mutex
	latest   *pixfmt.Frame

	errs chan error

	stop    chan struct{}
	wg      sync.WaitGroup
	log     logging.Logger
	running bool
}

// New constructs a Pool with one worker per element of adapters and starts
// their processing goroutines immediately. len(adapters) is the N of §5
// ("typically N=4 workers").
func New(log logging.Logger, adapters []encoder.Adapter) *Pool {
	p := &Pool{
		errs: make(chan error, 16),
		stop: make(chan struct{}),
		log:  log,
	}
	for _, a := range adapters {
		w := &worker{adapter: a, in: make(chan *pixfmt.Frame, 1)}
		p.workers = append(p.workers, w)
	}
	p.running = true
	for _, w := range p.workers {
		p.wg.Add(1)
		go p.run(w)
	}
	return p
}

// Submit dispatches src to the next worker in round-robin order. It blocks
// only as long as that worker's single in-flight slot is occupied by a
// still-compressing previous frame — compress itself has no suspension
// points (§5), so this is a short, bounded wait in practice.
func (p *Pool) Submit(src *pixfmt.Frame) error {
	select {
	case <-p.stop:
		return ErrPoolClosed
	default:
	}
	i := atomic.AddUint64(&p.rr, 1) % uint64(len(p.workers))
	select {
	case p.workers[i].in <- src:
		return nil
	case <-p.stop:
		return ErrPoolClosed
	}
}

func (p *Pool) run(w *worker) {
	defer p.wg.Done()
	for {
		select {
		case <-p.stop:
			return
		case src := <-w.in:
			dst := &pixfmt.Frame{}
			if err := w.adapter.Compress(src, dst); err != nil {
				if p.log != nil {
					p.log.Warning("workerpool: dropped frame", "error", err.Error())
				}
				p.reportError(err)
				continue
			}
			p.publish(dst)
		}
	}
}

// reportError makes err available on Errors() without blocking: a passive
// observer that isn't reading must never slow the pool down.
func (p *Pool) reportError(err error) {
	select {
	case p.errs <- err:
	default:
	}
}

func (p *Pool) publish(f *pixfmt.Frame) {
	p.latestMu.Lock()
	p.latest = f
	p.latestMu.Unlock()
}

// Latest returns the most recently completed JPEG frame across all workers,
// or nil if none has completed yet.
func (p *Pool) Latest() *pixfmt.Frame {
	p.latestMu.Lock()
	defer p.latestMu.Unlock()
	return p.latest
}

// Errors returns a channel of per-frame encode errors for passive observers
// such as tests or metrics. Unread values are dropped, never blocked on.
func (p *Pool) Errors() <-chan error { return p.errs }

// Workers reports the number of workers in the pool.
func (p *Pool) Workers() int { return len(p.workers) }

// Stop signals every worker to finish its in-flight compress and exit, waits
// for them, then closes every adapter in turn. Stop is idempotent.
func (p *Pool) Stop() error {
	if !p.running {
		return nil
	}
	p.running = false
	close(p.stop)
	p.wg.Wait()

	var first error
	for _, w := range p.workers {
		if err := w.adapter.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
