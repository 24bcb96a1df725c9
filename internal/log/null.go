package log

// nullLogger is a logger that does nothing.
type nullLogger struct{}

func (nullLogger) Infof(string, ...any)  {}
func (nullLogger) Errorf(string, ...any) {}
func (nullLogger) Debugf(string, ...any) {}

// NewNullLogger returns a logger that does nothing.
func NewNullLogger() Logger {
	return nullLogger{}
}
