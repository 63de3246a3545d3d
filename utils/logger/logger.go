// Package logger formats log lines as "|object|message" on top of logrus.
package logger

import (
	"fmt"
	"reflect"

	"github.com/sirupsen/logrus"
)

type stringer interface {
	String() string
}

const objWidth = 20

func objToString(obj any) (objStr string) {
	switch o := obj.(type) {
	case nil:
		objStr = "NIL"
	case string:
		objStr = o
	case stringer:
		objStr = o.String()
	default:
		t := reflect.TypeOf(obj)
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		objStr = t.Name()
	}
	if len(objStr) > objWidth {
		objStr = objStr[:objWidth]
	}
	return
}

func line(object any, message string) string {
	return fmt.Sprintf("|%20s|%s", objToString(object), message)
}

// Init sets the level and the text formatter used by every logger function.
func Init(lvl logrus.Level) {
	logrus.SetLevel(lvl)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		PadLevelText:    true,
		TimestampFormat: "2006/01/02 15:04:05",
	})
}

// ParseLevel accepts logrus level names and falls back to info.
func ParseLevel(name string) logrus.Level {
	lvl, err := logrus.ParseLevel(name)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

func Trace(object any, message string) {
	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		logrus.Trace(line(object, message))
	}
}

func Tracef(object any, message string, args ...any) {
	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		logrus.Trace(line(object, fmt.Sprintf(message, args...)))
	}
}

func Debug(object any, message string) {
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.Debug(line(object, message))
	}
}

func Debugf(object any, message string, args ...any) {
	if logrus.IsLevelEnabled(logrus.DebugLevel) {
		logrus.Debug(line(object, fmt.Sprintf(message, args...)))
	}
}

func Info(object any, message string) {
	if logrus.IsLevelEnabled(logrus.InfoLevel) {
		logrus.Info(line(object, message))
	}
}

func Infof(object any, message string, args ...any) {
	if logrus.IsLevelEnabled(logrus.InfoLevel) {
		logrus.Info(line(object, fmt.Sprintf(message, args...)))
	}
}

func Warning(object any, message string) {
	if logrus.IsLevelEnabled(logrus.WarnLevel) {
		logrus.Warning(line(object, message))
	}
}

func Warningf(object any, message string, args ...any) {
	if logrus.IsLevelEnabled(logrus.WarnLevel) {
		logrus.Warning(line(object, fmt.Sprintf(message, args...)))
	}
}

func Error(object any, message string) {
	if logrus.IsLevelEnabled(logrus.ErrorLevel) {
		logrus.Error(line(object, message))
	}
}

func Errorf(object any, message string, args ...any) {
	if logrus.IsLevelEnabled(logrus.ErrorLevel) {
		logrus.Error(line(object, fmt.Sprintf(message, args...)))
	}
}

func Fatal(object any, message string) {
	logrus.Fatal(line(object, message))
}

func Fatalf(object any, message string, args ...any) {
	logrus.Fatal(line(object, fmt.Sprintf(message, args...)))
}
