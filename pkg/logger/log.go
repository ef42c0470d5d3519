package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

type LogStatus int

const (
	VERBOSE LogStatus = iota
	DEBUG
	INFO
	SUCCESS
	NEW
	REMOVE
	STOP
	WARNING
	ERROR
	FATAL
)

var statusNames = []string{"VERBOSE", "DEBUG", "INFO", "SUCCESS", "NEW", "REMOVE", "STOP", "WARNING", "ERROR", "FATAL"}

func (e LogStatus) String() string {
	return []string{
		"V",
		"D",
		"I",
		"✓",
		"+",
		"-",
		"X",
		"!",
		"!!",
		"PANIC",
	}[e]
}

func (e LogStatus) Color() *color.Color {
	return []*color.Color{
		color.New(color.FgWhite, color.Italic),                //Verbose
		color.New(color.FgWhite, color.Italic),                //Debug
		color.New(color.FgWhite),                              //Info
		color.New(color.FgHiGreen),                            //Success
		color.New(color.FgGreen, color.Italic),                //New
		color.New(color.FgYellow, color.Italic),               //Remove
		color.New(color.FgHiYellow),                           //Stop
		color.New(color.FgYellow, color.Underline),            //Warning
		color.New(color.FgHiRed, color.Bold),                  //Error
		color.New(color.FgHiRed, color.Bold, color.Underline), //PANIC
	}[e]
}

// Level returns the numeric severity of the status, suitable
// for use with SetMinLoggingLevel.
func (e LogStatus) Level() int { return int(e) }

// ParseLevel converts a level name (e.g. "debug", "WARNING") in
// to the matching LogStatus. Unknown names yield INFO and an error.
func ParseLevel(name string) (LogStatus, error) {
	for i, n := range statusNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return LogStatus(i), nil
		}
	}

	return INFO, fmt.Errorf("unknown log level %q", name)
}

type Logger interface {
	Emit(LogStatus, string, ...interface{})
}

type loggerImpl struct {
	name string
}

func (l *loggerImpl) Emit(status LogStatus, message string, interpolations ...interface{}) {
	Log.Emit(status, l.name, message, interpolations...)
}

type LoggerManager interface {
	GetLogger(string) Logger
	Emit(LogStatus, string, string, ...interface{})
	SetMinLevel(int)
	SetOutput(io.Writer)
}

var Log LoggerManager = &loggerMgr{
	offset:   0,
	minLevel: INFO.Level(),
	output:   color.Output,
}

type loggerMgr struct {
	sync.Mutex
	offset   int
	minLevel int
	output   io.Writer
}

func (l *loggerMgr) GetLogger(name string) Logger {
	return &loggerImpl{name: name}
}

func (l *loggerMgr) Emit(status LogStatus, name string, message string, interpolations ...interface{}) {
	l.Lock()
	defer l.Unlock()

	if status.Level() < l.minLevel {
		return
	}

	if len(name) > l.offset {
		l.offset = len(name)
	}
	padding := strings.Repeat(" ", l.offset-len(name))
	msg := fmt.Sprintf("[%s] %s(%s) %s", name, padding, status, fmt.Sprintf(message, interpolations...))

	status.Color().Fprint(l.output, msg)
}

func (l *loggerMgr) SetMinLevel(level int) {
	l.Lock()
	defer l.Unlock()

	l.minLevel = level
}

func (l *loggerMgr) SetOutput(w io.Writer) {
	l.Lock()
	defer l.Unlock()

	l.output = w
}

func Get(name string) Logger {
	return Log.GetLogger(name)
}

// SetMinLoggingLevel suppresses all log output below the level provided.
func SetMinLoggingLevel(level int) {
	Log.SetMinLevel(level)
}

// SetOutput redirects all log output to the writer provided.
func SetOutput(w io.Writer) {
	Log.SetOutput(w)
}
