package logger

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// ComponentLogger tags every entry with a component name and takes
// alternating key/value pairs after the message.
type ComponentLogger struct {
	component string
}

// WithComponent is safe to call from package-level vars; the default logger
// is resolved on every call.
func WithComponent(name string) *ComponentLogger {
	return &ComponentLogger{component: name}
}

func (c *ComponentLogger) Debug(msg string, keyvals ...interface{}) {
	c.emit(LevelDebug, msg, keyvals)
}

func (c *ComponentLogger) Info(msg string, keyvals ...interface{}) {
	c.emit(LevelInfo, msg, keyvals)
}

func (c *ComponentLogger) Warn(msg string, keyvals ...interface{}) {
	c.emit(LevelWarn, msg, keyvals)
}

func (c *ComponentLogger) Error(msg string, keyvals ...interface{}) {
	c.emit(LevelError, msg, keyvals)
}

func (c *ComponentLogger) emit(level LogLevel, msg string, keyvals []interface{}) {
	l := current()
	if l == nil {
		return
	}
	l.log(level, fields(c.component, keyvals), msg)
}

func fields(component string, keyvals []interface{}) logrus.Fields {
	f := logrus.Fields{"component": component}
	for i := 0; i < len(keyvals); i += 2 {
		key := fmt.Sprint(keyvals[i])
		if i+1 >= len(keyvals) {
			f[key] = "MISSING"
			break
		}
		f[key] = keyvals[i+1]
	}
	return f
}
