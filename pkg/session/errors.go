package session

import "errors"

var (
	// ErrPermissionDenied is reported when camera access isn't granted.
	ErrPermissionDenied = errors.New("camera permission denied")
	// ErrDeviceUnavailable is reported when no suitable camera exists or it
	// can't be started.
	ErrDeviceUnavailable = errors.New("camera unavailable")
	// ErrWriteFailure is reported when the movie file can't be written.
	ErrWriteFailure = errors.New("recording write failed")
	// ErrNotPrepared is reported for operations that need a prepared session.
	ErrNotPrepared = errors.New("session is not prepared")
	// ErrRecordingActive is reported by StartRecording while a job is active.
	ErrRecordingActive = errors.New("a recording is already active")
	// ErrPhotoInFlight is reported while a still capture is running.
	ErrPhotoInFlight = errors.New("a photo capture is in flight")
)
