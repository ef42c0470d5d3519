package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/hbomb79/Siphon/pkg/logger"
)

// supervise is the single writer of the pipeline's lifecycle state. It
// reaps every stage, turns an unsuccessful exit in to a PipelineFailure,
// and tears the remaining stages down on failure or cancellation.
//
// A stage exit is judged by its exit status alone, in the order the
// stages are reaped. Only stages the supervisor stopped itself may exit
// unsuccessfully without failing the pipeline.
func (p *Pipeline) supervise(ctx context.Context) {
	defer close(p.done)

	exits := make(chan *stage, len(p.stages))
	for _, s := range p.stages {
		go func(s *stage) {
			<-s.exited
			exits <- s
		}(s)
	}

	var (
		teardown   sync.WaitGroup
		siblingsCh <-chan time.Time
		ctxDone    = ctx.Done()
		remaining  = len(p.stages)
	)

	stopAll := func() {
		for _, s := range p.stages {
			s.stopped.Store(true)
			teardown.Add(1)
			go func(s *stage) {
				defer teardown.Done()
				s.terminate(p.config.TerminationGrace)
			}(s)
		}
	}

	for remaining > 0 {
		select {
		case s := <-exits:
			remaining--
			switch {
			case s.succeeded():
				log.Emit(logger.SUCCESS, "Stage %s of pipeline %s exited cleanly\n", s.label, p.id)
				if s == p.terminal && remaining > 0 {
					// Sources should already be finished once the mux stage has
					// exited cleanly; give stragglers a grace period.
					siblingsCh = time.After(p.config.TerminationGrace)
				}
			case p.failedOnItsOwn(s):
				stopAll()
				p.awaitDrain(s)
				p.fail(s)
			default:
				log.Emit(logger.DEBUG, "Stage %s of pipeline %s exited (%v) after being stopped, ignoring\n", s.label, p.id, s.exitErr)
			}
		case <-siblingsCh:
			siblingsCh = nil
			log.Emit(logger.WARNING, "Pipeline %s has sources still running after output completed, stopping them\n", p)
			stopAll()
		case cause := <-p.cancelled:
			if p.cancel(cause) {
				stopAll()
			}
		case <-ctxDone:
			ctxDone = nil
			if p.cancel(context.Cause(ctx)) {
				stopAll()
			}
		}
	}

	// Every leader has been reaped; sweep the process groups for helpers
	// they left behind.
	teardown.Wait()
	stopAll()
	teardown.Wait()
	p.settle()
}

// failedOnItsOwn reports whether the unsuccessful exit of the stage must
// fail the pipeline: it is still running and the supervisor did not ask
// the stage to stop.
func (p *Pipeline) failedOnItsOwn(s *stage) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state == RUNNING && !s.stopped.Load()
}

// fail transitions the pipeline to FAILED on behalf of the stage provided.
func (p *Pipeline) fail(s *stage) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != RUNNING {
		return
	}

	p.state = FAILED
	p.failure = &PipelineFailure{
		Stage:       s.label,
		ExitCode:    s.exitCode(),
		Diagnostics: s.diag.String(),
		Err:         s.exitErr,
	}
	log.Emit(logger.ERROR, "Stage %s of pipeline %s failed: %v\n%s\n", s.label, p.id, s.exitErr, p.failure.Diagnostics)
}

// cancel transitions a running pipeline to CANCELLED, returning true if
// the transition happened.
func (p *Pipeline) cancel(cause error) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != RUNNING {
		return false
	}

	if cause == nil {
		cause = ErrPipelineClosed
	}
	p.state = CANCELLED
	p.cancelCause = cause
	log.Emit(logger.STOP, "Pipeline %s cancelled: %v\n", p.id, cause)

	return true
}

// settle marks a pipeline that is still RUNNING once every stage has
// been reaped as COMPLETE.
func (p *Pipeline) settle() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == RUNNING {
		p.state = COMPLETE
	}
	log.Emit(logger.REMOVE, "Pipeline %s finished as %s\n", p, p.state)
}

// awaitDrain waits for the stage's diagnostic channel to be fully read so
// failure reports carry complete output. A helper process holding the
// channel open past the stage's exit must not stall the supervisor.
func (p *Pipeline) awaitDrain(s *stage) {
	timer := time.NewTimer(p.config.TerminationGrace)
	defer timer.Stop()

	select {
	case <-s.drained:
	case <-timer.C:
		log.Emit(logger.WARNING, "Diagnostic channel of %s still open after exit\n", s)
	}
}
