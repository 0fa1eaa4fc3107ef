package core

// Logger is any leveled logger that can ship errors to an error tracker.
// args may carry an error to report and a map[string]interface{} of extras.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
