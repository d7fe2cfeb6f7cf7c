package core

// Logger logs to stdout and forwards to an error tracker.
// expected args: error, map[string]interface{}, or any extra context value.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
