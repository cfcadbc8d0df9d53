package logger

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx/fxevent"
)

type fxLogger struct {
	l zerolog.Logger
}

var _ fxevent.Logger = (*fxLogger)(nil)

// Fx routes dependency graph events into zerolog. Wiring chatter is logged at debug,
// lifecycle failures at error.
func Fx() fxevent.Logger {
	return &fxLogger{
		l: log.Logger.
			With().
			Str("evt.name", "fx.init").
			Logger(),
	}
}

func (f *fxLogger) LogEvent(event fxevent.Event) {
	switch e := event.(type) {
	case *fxevent.OnStartExecuted:
		if e.Err != nil {
			f.l.Error().Err(e.Err).Str("callee", e.FunctionName).Str("caller", e.CallerName).Msg("OnStart hook failed")
			return
		}
		f.l.Debug().Str("callee", e.FunctionName).Dur("runtime", e.Runtime).Msg("OnStart hook executed")
	case *fxevent.OnStopExecuted:
		if e.Err != nil {
			f.l.Error().Err(e.Err).Str("callee", e.FunctionName).Str("caller", e.CallerName).Msg("OnStop hook failed")
			return
		}
		f.l.Debug().Str("callee", e.FunctionName).Dur("runtime", e.Runtime).Msg("OnStop hook executed")
	case *fxevent.Supplied:
		f.logErr(e.Err, "supply failed").Str("type", e.TypeName).Msg("supplied")
	case *fxevent.Provided:
		if e.Err != nil {
			f.l.Error().Err(e.Err).Str("constructor", e.ConstructorName).Msg("provide failed")
			return
		}
		f.l.Debug().Str("constructor", e.ConstructorName).Str("types", strings.Join(e.OutputTypeNames, ", ")).Msg("provided")
	case *fxevent.Decorated:
		f.logErr(e.Err, "decorate failed").Str("decorator", e.DecoratorName).Msg("decorated")
	case *fxevent.Invoked:
		if e.Err != nil {
			f.l.Error().Err(e.Err).Str("function", e.FunctionName).Str("trace", e.Trace).Msg("invoke failed")
			return
		}
		f.l.Debug().Str("function", e.FunctionName).Msg("invoked")
	case *fxevent.Stopping:
		f.l.Info().Str("signal", strings.ToUpper(e.Signal.String())).Msg("received signal, stopping")
	case *fxevent.Stopped:
		f.logErr(e.Err, "stop failed").Msg("stopped")
	case *fxevent.RollingBack:
		f.l.Error().Err(e.StartErr).Msg("start failed, rolling back")
	case *fxevent.RolledBack:
		f.logErr(e.Err, "rollback failed").Msg("rolled back")
	case *fxevent.Started:
		if e.Err != nil {
			f.l.Error().Err(e.Err).Msg("start failed")
			return
		}
		f.l.Debug().Msg("started")
	case *fxevent.LoggerInitialized:
		f.logErr(e.Err, "custom logger initialization failed").Str("function", e.ConstructorName).Msg("initialized custom fxevent.Logger")
	}
}

// logErr returns an error event carrying err when it is set, a debug event otherwise.
func (f *fxLogger) logErr(err error, msg string) *zerolog.Event {
	if err != nil {
		return f.l.Error().Err(err).Str("failure", msg)
	}
	return f.l.Debug()
}
