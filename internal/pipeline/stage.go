package pipeline

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/hbomb79/Siphon/pkg/logger"
)

type StageLabel string

const (
	ExtractStage      StageLabel = "extract"
	VideoExtractStage StageLabel = "extract-video"
	AudioExtractStage StageLabel = "extract-audio"
	MuxStage          StageLabel = "mux"
)

const (
	maxDiagnosticLineBytes = 64 * 1024
	groupPollInterval      = 20 * time.Millisecond
)

// StageInfo is a point-in-time snapshot of a single stage.
type StageInfo struct {
	Label    StageLabel `json:"label"`
	PID      int        `json:"pid"`
	Exited   bool       `json:"exited"`
	ExitCode int        `json:"exit_code"`
}

// stage owns one spawned process. Once started, the stage reaps its own
// process and drains its diagnostic channel on dedicated goroutines;
// exited and drained are closed when each completes.
type stage struct {
	label StageLabel
	cmd   *exec.Cmd
	diag  *diagnosticTail
	log   logger.Logger

	stderr  *os.File
	exited  chan struct{}
	drained chan struct{}
	exitErr error

	// stopped is set once the stage has been asked to terminate, so
	// its exit status is no longer its own.
	stopped atomic.Bool
}

func newStage(label StageLabel, executable string, args []string, tailLines int) *stage {
	cmd := exec.Command(executable, args...)
	configureProcess(cmd)

	return &stage{
		label:   label,
		cmd:     cmd,
		diag:    newDiagnosticTail(tailLines),
		log:     logger.Get(fmt.Sprintf("Stage:%s", label)),
		exited:  make(chan struct{}),
		drained: make(chan struct{}),
	}
}

// start launches the stage process. The caller is responsible for
// having assigned Stdin/Stdout/ExtraFiles on the command beforehand.
func (s *stage) start() error {
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		return &SpawnError{Stage: s.label, Executable: s.cmd.Path, Err: err}
	}

	s.cmd.Stderr = stderrW
	if err := s.cmd.Start(); err != nil {
		stderrR.Close()
		stderrW.Close()
		return &SpawnError{Stage: s.label, Executable: s.cmd.Path, Err: err}
	}

	// The child holds its own copy of the write end now
	stderrW.Close()
	s.stderr = stderrR

	log.Emit(logger.NEW, "Spawned %s\n", s)
	go s.drain()
	go s.wait()

	return nil
}

func (s *stage) wait() {
	defer close(s.exited)
	s.exitErr = s.cmd.Wait()
}

// drain consumes the diagnostic channel until every writer has closed it.
// Lines beyond maxDiagnosticLineBytes stop line capture, but the channel
// continues to be read so the process never blocks writing to it.
func (s *stage) drain() {
	defer close(s.drained)
	defer s.stderr.Close()

	scanner := bufio.NewScanner(s.stderr)
	scanner.Buffer(make([]byte, 4096), maxDiagnosticLineBytes)
	for scanner.Scan() {
		line := scanner.Text()
		s.diag.push(line)
		s.log.Emit(logger.VERBOSE, "%s\n", line)
	}

	if err := scanner.Err(); err != nil {
		s.log.Emit(logger.DEBUG, "Diagnostic capture stopped (%v), discarding remainder\n", err)
		io.Copy(io.Discard, s.stderr)
	}
}

// terminate asks the stage, and any helper left in its process group,
// to exit, escalating to a forceful kill if they have not exited within
// the grace period. It returns once the stage process has been reaped.
func (s *stage) terminate(grace time.Duration) {
	s.stopped.Store(true)
	if !s.running() {
		return
	}

	log.Emit(logger.STOP, "Interrupting %s\n", s)
	if err := interruptProcess(s.cmd); err != nil {
		s.log.Emit(logger.DEBUG, "Interrupt failed: %v\n", err)
	}

	if s.awaitStop(grace) {
		return
	}

	log.Emit(logger.WARNING, "%s did not exit within %s, killing\n", s, grace)
	if err := killProcess(s.cmd); err != nil {
		s.log.Emit(logger.ERROR, "Kill failed: %v\n", err)
	}
	<-s.exited
}

// running reports whether the stage process, or a helper it left behind
// in its process group, is still alive.
func (s *stage) running() bool {
	if s.cmd.Process == nil {
		return false
	}
	if !s.hasExited() {
		return true
	}

	return processGroupAlive(s.cmd)
}

// awaitStop polls until nothing in the stage's process group is running,
// returning false if the grace period elapses first.
func (s *stage) awaitStop(grace time.Duration) bool {
	deadline := time.NewTimer(grace)
	defer deadline.Stop()
	ticker := time.NewTicker(groupPollInterval)
	defer ticker.Stop()

	for s.running() {
		select {
		case <-deadline.C:
			return !s.running()
		case <-ticker.C:
		}
	}

	return true
}

func (s *stage) hasExited() bool {
	select {
	case <-s.exited:
		return true
	default:
		return false
	}
}

// succeeded must only be called once the stage has exited.
func (s *stage) succeeded() bool { return s.exitErr == nil }

// exitCode returns the exit code of an exited stage, or -1 if the stage
// is still running or was terminated by a signal.
func (s *stage) exitCode() int {
	if !s.hasExited() {
		return -1
	}
	if s.exitErr == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if errors.As(s.exitErr, &exitErr) {
		return exitErr.ExitCode()
	}

	return -1
}

func (s *stage) pid() int {
	if s.cmd.Process == nil {
		return -1
	}

	return s.cmd.Process.Pid
}

func (s *stage) info() StageInfo {
	return StageInfo{Label: s.label, PID: s.pid(), Exited: s.hasExited(), ExitCode: s.exitCode()}
}

func (s *stage) String() string {
	return fmt.Sprintf("{stage=%s pid=%d bin=%s}", s.label, s.pid(), s.cmd.Path)
}
