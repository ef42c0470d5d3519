package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hbomb79/Siphon/pkg/logger"
)

var log = logger.Get("Pipeline")

type State int

const (
	RUNNING State = iota
	COMPLETE
	FAILED
	CANCELLED
)

func (s State) String() string {
	switch s {
	case RUNNING:
		return fmt.Sprintf("RUNNING[%d]", s)
	case COMPLETE:
		return fmt.Sprintf("COMPLETE[%d]", s)
	case FAILED:
		return fmt.Sprintf("FAILED[%d]", s)
	case CANCELLED:
		return fmt.Sprintf("CANCELLED[%d]", s)
	}

	return fmt.Sprintf("UNKNOWN[%d]", s)
}

// Pipeline owns the processes spawned for one download, the pipes
// between them, and the read end of the terminal stage's output.
//
// Reading from the pipeline drives the process graph. Once the output
// reaches end-of-data, Read waits for every stage to be reaped and only
// reports io.EOF if all of them succeeded; a stage failure is reported
// as a *PipelineFailure instead, so a truncated stream is never mistaken
// for a complete one.
type Pipeline struct {
	mu        sync.Mutex
	id        uuid.UUID
	topology  Topology
	config    Config
	createdAt time.Time

	stages   []*stage
	terminal *stage
	output   *os.File

	// Guarded by mu. Only the first transition away from RUNNING sticks.
	state       State
	failure     *PipelineFailure
	cancelCause error

	bytesRead atomic.Int64
	closeOnce sync.Once
	cancelled chan error
	done      chan struct{}
}

func newPipeline(ctx context.Context, topology Topology, config Config, stages []*stage, terminal *stage, output *os.File) *Pipeline {
	p := &Pipeline{
		id:        uuid.New(),
		topology:  topology,
		config:    config,
		createdAt: time.Now(),
		stages:    stages,
		terminal:  terminal,
		output:    output,
		state:     RUNNING,
		cancelled: make(chan error, 1),
		done:      make(chan struct{}),
	}

	log.Emit(logger.NEW, "Pipeline %s started\n", p)
	go p.supervise(ctx)
	return p
}

// Read reads from the output of the terminal stage. See Pipeline.
func (p *Pipeline) Read(b []byte) (int, error) {
	if err := p.interruption(); err != nil {
		return 0, err
	}

	n, err := p.output.Read(b)
	if ierr := p.interruption(); ierr != nil {
		return 0, ierr
	}
	p.bytesRead.Add(int64(n))

	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, io.EOF):
		<-p.done
		if ierr := p.interruption(); ierr != nil {
			return n, ierr
		}
		return n, io.EOF
	case errors.Is(err, os.ErrClosed):
		return n, ErrPipelineClosed
	}

	return n, err
}

// Close tears down the pipeline if it is still running, and releases the
// output stream. It blocks until every stage has been reaped.
func (p *Pipeline) Close() error {
	p.closeOnce.Do(func() {
		select {
		case p.cancelled <- ErrPipelineClosed:
		default:
		}

		<-p.done
		p.output.Close()
	})

	return nil
}

// Wait blocks until every stage has been reaped, and returns the reason
// the pipeline stopped, if it did not complete cleanly.
func (p *Pipeline) Wait() error {
	<-p.done
	return p.Err()
}

// Done returns a channel which is closed once every stage has been reaped.
func (p *Pipeline) Done() <-chan struct{} { return p.done }

// Err returns the failure or cancellation cause of the pipeline, if any.
func (p *Pipeline) Err() error { return p.interruption() }

func (p *Pipeline) ID() uuid.UUID        { return p.id }
func (p *Pipeline) Topology() Topology   { return p.topology }
func (p *Pipeline) BytesRead() int64     { return p.bytesRead.Load() }
func (p *Pipeline) CreatedAt() time.Time { return p.createdAt }

func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.state
}

// Stages returns a snapshot of every stage owned by the pipeline.
func (p *Pipeline) Stages() []StageInfo {
	out := make([]StageInfo, 0, len(p.stages))
	for _, s := range p.stages {
		out = append(out, s.info())
	}

	return out
}

func (p *Pipeline) String() string {
	return fmt.Sprintf("{id=%s topology=%s stages=%d}", p.id, p.topology, len(p.stages))
}

// interruption returns the error a consumer should observe given the
// current state, or nil while the pipeline is running or completed.
func (p *Pipeline) interruption() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch p.state {
	case FAILED:
		return p.failure
	case CANCELLED:
		if errors.Is(p.cancelCause, ErrPipelineClosed) {
			return p.cancelCause
		}
		return fmt.Errorf("%w: %w", ErrPipelineClosed, p.cancelCause)
	}

	return nil
}

// Output returns the pipeline as the readable end of the terminal stage.
// Closing it closes the pipeline.
func (p *Pipeline) Output() io.ReadCloser { return p }
