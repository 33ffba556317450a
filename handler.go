package videorecord

import (
	"github.com/pion/videorecord/pkg/session"
)

// Handler receives the events of a Recorder, one at a time and in order.
type Handler interface {
	session.Handler
	// OnCompressionComplete fires once per compression. output is empty
	// unless success.
	OnCompressionComplete(success bool, output string)
	// OnAuthorizationResult fires once per authorization check.
	OnAuthorizationResult(granted bool, message string)
}

// HandlerFuncs implements Handler with optional funcs.
type HandlerFuncs struct {
	session.HandlerFuncs
	CompressionComplete func(success bool, output string)
	AuthorizationResult func(granted bool, message string)
}

func (h HandlerFuncs) OnCompressionComplete(success bool, output string) {
	if h.CompressionComplete != nil {
		h.CompressionComplete(success, output)
	}
}

func (h HandlerFuncs) OnAuthorizationResult(granted bool, message string) {
	if h.AuthorizationResult != nil {
		h.AuthorizationResult(granted, message)
	}
}
