package mylog

import "context"

type Severity string

const (
	SeverityDebug Severity = "DEBUG"
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// New is bound at init to the backend that fits the runtime environment
var New func(componentName string) Logger

// Logger writes one log line. The traceLabel is the uid of the aggregate being worked on
// (checkout session, cart or order) so all lines of one checkout can be grouped.
type Logger interface {
	Log(c context.Context, traceLabel string, severity Severity, format string, a ...any)
}
