package core

// Logger logs leveled messages locally and forwards them to an error
// tracking service. Trailing args may carry an error, a context map or
// the acting user.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
