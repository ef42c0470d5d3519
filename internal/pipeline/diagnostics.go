package pipeline

import (
	"strings"
	"sync"
)

// diagnosticTail retains the most recent lines written to a stage's
// diagnostic channel.
type diagnosticTail struct {
	sync.Mutex
	lines []string
	next  int
	full  bool
}

func newDiagnosticTail(size int) *diagnosticTail {
	return &diagnosticTail{lines: make([]string, size)}
}

func (tail *diagnosticTail) push(line string) {
	tail.Lock()
	defer tail.Unlock()

	tail.lines[tail.next] = line
	tail.next = (tail.next + 1) % len(tail.lines)
	if tail.next == 0 {
		tail.full = true
	}
}

func (tail *diagnosticTail) String() string {
	tail.Lock()
	defer tail.Unlock()

	var ordered []string
	if tail.full {
		ordered = append(ordered, tail.lines[tail.next:]...)
	}
	ordered = append(ordered, tail.lines[:tail.next]...)

	return strings.Join(ordered, "\n")
}
