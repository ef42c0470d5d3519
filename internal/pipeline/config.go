package pipeline

import "time"

const (
	defaultTerminationGrace    = 5 * time.Second
	defaultDiagnosticTailLines = 50
	defaultMuxAudioCodec       = "aac"
)

type Config struct {
	// TerminationGrace is how long a stage is given to exit after being
	// interrupted before it is forcefully killed.
	TerminationGrace time.Duration `yaml:"termination_grace" env:"PIPELINE_TERMINATION_GRACE" env-default:"5s"`

	// DiagnosticTailLines bounds how many trailing stderr lines of each
	// stage are retained for failure reports.
	DiagnosticTailLines int `yaml:"diagnostic_tail_lines" env:"PIPELINE_DIAGNOSTIC_TAIL_LINES" env-default:"50"`

	// MuxAudioCodec is the audio codec the mux stage encodes to. Use
	// "copy" to pass AAC sources through untouched.
	MuxAudioCodec string `yaml:"mux_audio_codec" env:"PIPELINE_MUX_AUDIO_CODEC" env-default:"aac"`
}

func (config Config) withDefaults() Config {
	if config.TerminationGrace <= 0 {
		config.TerminationGrace = defaultTerminationGrace
	}
	if config.DiagnosticTailLines <= 0 {
		config.DiagnosticTailLines = defaultDiagnosticTailLines
	}
	if config.MuxAudioCodec == "" {
		config.MuxAudioCodec = defaultMuxAudioCodec
	}

	return config
}
