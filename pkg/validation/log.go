package validation

import (
	"log/slog"
	"sync/atomic"
	"time"
)

var logger atomic.Pointer[slog.Logger]

// SetLogger sets the logger used by the package. A nil logger restores
// slog.Default().
func SetLogger(l *slog.Logger) {
	if l == nil {
		logger.Store(nil)
		return
	}
	logger.Store(l.With("component", "validation"))
}

func log() *slog.Logger {
	if l := logger.Load(); l != nil {
		return l
	}
	return slog.Default().With("component", "validation")
}

// Observer receives evaluation events. Implementations must be safe for
// concurrent use and must not read validation state from the callbacks.
type Observer interface {
	// RuleEvaluated is called after every validator call.
	RuleEvaluated(rule string, valid bool, elapsed time.Duration)

	// GroupEvaluated is called after a group recomputed its error list.
	GroupEvaluated(mode Mode, members, invalid int)
}

type observerHolder struct{ o Observer }

var observer atomic.Pointer[observerHolder]

// SetObserver installs o as the package observer. Pass nil to remove it.
func SetObserver(o Observer) {
	if o == nil {
		observer.Store(nil)
		return
	}
	observer.Store(&observerHolder{o: o})
}

func currentObserver() Observer {
	if h := observer.Load(); h != nil {
		return h.o
	}
	return nil
}
