package driver

import "time"

// Stage is the step a file is in.
type Stage string

const (
	StageLex   Stage = "lex"
	StageRules Stage = "rules"
	StageAudit Stage = "audit"
)

// Status captures progress within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for a file, or for the whole run when File is empty.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use; workers report independently.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

func (l *Linter) report(path string, stage Stage, status Status, err error) {
	if l.progress == nil {
		return
	}
	l.progress.OnEvent(Event{File: path, Stage: stage, Status: status, Err: err})
}
