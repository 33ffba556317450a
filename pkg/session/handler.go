package session

import (
	"time"
)

// JobStatus is the state of a recording job.
type JobStatus int

const (
	// JobRecording means frames are being written.
	JobRecording JobStatus = iota
	// JobFinished means the movie was finalized.
	JobFinished
	// JobFailed means the movie couldn't be written and was removed.
	JobFailed
)

func (s JobStatus) String() string {
	switch s {
	case JobRecording:
		return "recording"
	case JobFinished:
		return "finished"
	case JobFailed:
		return "failed"
	}
	return "unknown"
}

// Job describes one recording.
type Job struct {
	ID        string
	Path      string
	StartedAt time.Time
	Elapsed   time.Duration
	Status    JobStatus
}

// RecordingResult is delivered once per finished job. Path is empty when
// Err is set.
type RecordingResult struct {
	Job      Job
	Path     string
	Duration time.Duration
	Frames   int
	Err      error
}

// Handler receives the events of a Controller. Callbacks run one at a time
// on a goroutine owned by the controller, in the order the events happened.
type Handler interface {
	OnPrepared(err error)
	OnRecordingStarted(job Job)
	OnProgress(current, total time.Duration)
	OnRecordingFinished(result RecordingResult)
	OnPhoto(jpeg []byte, err error)
	OnCameraSwitched(device Device)
	OnError(err error)
}

// HandlerFuncs implements Handler with optional funcs. Nil fields ignore
// their event.
type HandlerFuncs struct {
	Prepared          func(err error)
	RecordingStarted  func(job Job)
	Progress          func(current, total time.Duration)
	RecordingFinished func(result RecordingResult)
	Photo             func(jpeg []byte, err error)
	CameraSwitched    func(device Device)
	Error             func(err error)
}

func (h HandlerFuncs) OnPrepared(err error) {
	if h.Prepared != nil {
		h.Prepared(err)
	}
}

func (h HandlerFuncs) OnRecordingStarted(job Job) {
	if h.RecordingStarted != nil {
		h.RecordingStarted(job)
	}
}

func (h HandlerFuncs) OnProgress(current, total time.Duration) {
	if h.Progress != nil {
		h.Progress(current, total)
	}
}

func (h HandlerFuncs) OnRecordingFinished(result RecordingResult) {
	if h.RecordingFinished != nil {
		h.RecordingFinished(result)
	}
}

func (h HandlerFuncs) OnPhoto(jpeg []byte, err error) {
	if h.Photo != nil {
		h.Photo(jpeg, err)
	}
}

func (h HandlerFuncs) OnCameraSwitched(device Device) {
	if h.CameraSwitched != nil {
		h.CameraSwitched(device)
	}
}

func (h HandlerFuncs) OnError(err error) {
	if h.Error != nil {
		h.Error(err)
	}
}
