package videorecord

import (
	"github.com/pion/videorecord/pkg/auth"
	"github.com/pion/videorecord/pkg/session"
	"github.com/pion/videorecord/pkg/transcode"
)

// RecorderOptions stores parameters used by Recorder.
type RecorderOptions struct {
	// CacheDir roots raw and compressed files. Empty selects the user's
	// cache directory.
	CacheDir string
	// OutputExt is the extension of compressed files.
	OutputExt  string
	Authorizer session.Authorizer
	Transcoder transcode.Transcoder
	// AutoCompress compresses every finished recording.
	AutoCompress bool
	// RemoveRaw deletes the raw recording once it has been compressed.
	RemoveRaw      bool
	SessionOptions []session.Option
}

// RecorderOption is a type of Recorder functional option.
type RecorderOption func(*RecorderOptions)

func defaultRecorderOptions() RecorderOptions {
	return RecorderOptions{
		Authorizer:   auth.Default,
		Transcoder:   transcode.JPEG{Quality: transcode.DefaultQuality},
		AutoCompress: true,
	}
}

// WithCacheDir sets where recordings are stored.
func WithCacheDir(dir string) RecorderOption {
	return func(o *RecorderOptions) {
		o.CacheDir = dir
	}
}

// WithAuthorizer replaces the permission check, auth.Default by default.
func WithAuthorizer(a session.Authorizer) RecorderOption {
	return func(o *RecorderOptions) {
		o.Authorizer = a
	}
}

// WithCompressionQuality compresses with the JPEG transcoder at quality.
func WithCompressionQuality(quality int) RecorderOption {
	return func(o *RecorderOptions) {
		o.Transcoder = transcode.JPEG{Quality: quality}
		o.OutputExt = ""
	}
}

// WithTranscoder compresses with t, naming outputs with ext.
func WithTranscoder(t transcode.Transcoder, ext string) RecorderOption {
	return func(o *RecorderOptions) {
		o.Transcoder = t
		o.OutputExt = ext
	}
}

// WithFFmpeg compresses to MP4 with the ffmpeg binary at path, or from PATH
// if empty.
func WithFFmpeg(path string) RecorderOption {
	return WithTranscoder(transcode.FFmpeg{Path: path}, ".mp4")
}

// WithAutoCompress controls whether finished recordings are compressed
// without being asked.
func WithAutoCompress(enabled bool) RecorderOption {
	return func(o *RecorderOptions) {
		o.AutoCompress = enabled
	}
}

// WithRemoveRaw controls whether raw recordings are deleted after a
// successful compression.
func WithRemoveRaw(enabled bool) RecorderOption {
	return func(o *RecorderOptions) {
		o.RemoveRaw = enabled
	}
}

// WithSessionOptions passes opts to the capture session.
func WithSessionOptions(opts ...session.Option) RecorderOption {
	return func(o *RecorderOptions) {
		o.SessionOptions = append(o.SessionOptions, opts...)
	}
}
