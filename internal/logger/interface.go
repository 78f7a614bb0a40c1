package logger

// Logger provides structured logging with context
type Logger interface {
	Info(component, message string, fields map[string]interface{})
	Error(component string, err error, fields map[string]interface{})
	Warning(component, message string, fields map[string]interface{})
	Debug(component, message string, fields map[string]interface{})
}

type nop struct{}

// Nop returns a Logger that discards everything.
func Nop() Logger { return nop{} }

func (nop) Info(string, string, map[string]interface{})    {}
func (nop) Error(string, error, map[string]interface{})    {}
func (nop) Warning(string, string, map[string]interface{}) {}
func (nop) Debug(string, string, map[string]interface{})   {}

// OrNop returns l, or Nop() if l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop()
	}
	return l
}
