// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import "github.com/sirupsen/logrus"

// LogSink writes validation messages to a logger,
// mapping message severity onto log levels.
type LogSink struct {
	Log logrus.FieldLogger
}

// Emit implements interface
func (s LogSink) Emit(severity MessageSeverity, text string) {
	entry := s.Log.WithField("severity", severity.String())
	switch {
	case severity >= SeverityError:
		entry.Error(text)
	case severity >= SeverityWarning:
		entry.Warn(text)
	case severity >= SeverityInfo:
		entry.Info(text)
	default:
		entry.Debug(text)
	}
}
