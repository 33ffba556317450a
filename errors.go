package videorecord

import (
	"errors"

	"github.com/pion/videorecord/pkg/session"
	"github.com/pion/videorecord/pkg/transcode"
)

// Errors reported through Handler callbacks. Test them with errors.Is.
var (
	ErrPermissionDenied   = session.ErrPermissionDenied
	ErrDeviceUnavailable  = session.ErrDeviceUnavailable
	ErrWriteFailure       = session.ErrWriteFailure
	ErrCompressionFailure = transcode.ErrCompressionFailure
	ErrNotPrepared        = session.ErrNotPrepared
	ErrRecordingActive    = session.ErrRecordingActive
	ErrPhotoInFlight      = session.ErrPhotoInFlight

	// ErrNoRecording is returned by Confirm and Discard without a finished
	// recording.
	ErrNoRecording = errors.New("no finished recording")
)
