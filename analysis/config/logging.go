// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"bytes"
	"io"
	"log"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type LogLevel int

const (
	// ErrLevel=1 - the minimum level of logging.
	ErrLevel LogLevel = iota + 1

	// WarnLEvel=2 - the level for logging warnings, and errors
	WarnLevel

	// InfoLevel=3 - the level for logging high-level information, results
	InfoLevel

	// DebugLevel=4 - the level for debugging information. The tool will run properly on large programs with
	// that level of debug information.
	DebugLevel

	// TraceLevel=5 - the level for tracing. The tool will not run properly on large programs with that level
	// of information, but this is useful on smaller testing programs.
	TraceLevel
)

var logrusLevels = map[LogLevel]logrus.Level{
	ErrLevel:   logrus.ErrorLevel,
	WarnLevel:  logrus.WarnLevel,
	InfoLevel:  logrus.InfoLevel,
	DebugLevel: logrus.DebugLevel,
	TraceLevel: logrus.TraceLevel,
}

// LogGroup is a leveled logger shared by all the components of an analysis run.
type LogGroup struct {
	level  LogLevel
	logger *logrus.Logger
	format *prefixFormatter
}

// NewLogGroup returns a log group that is configured to the logging settings stored inside the config
func NewLogGroup(config *Config) *LogGroup {
	level := LogLevel(config.LogLevel)
	if level < ErrLevel {
		level = ErrLevel
	} else if level > TraceLevel {
		level = TraceLevel
	}
	format := &prefixFormatter{flags: log.LstdFlags}
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(format)
	logger.SetLevel(logrusLevels[level])
	return &LogGroup{level: level, logger: logger, format: format}
}

// prefixFormatter prints entries as "[LEVEL] message", in the manner of a log.Logger with a prefix.
type prefixFormatter struct {
	flags int
}

func (f *prefixFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString("[")
	b.WriteString(strings.ToUpper(levelName(entry.Level)))
	b.WriteString("] ")
	if f.flags&(log.Ldate|log.Ltime) != 0 {
		b.WriteString(entry.Time.Format("2006/01/02 15:04:05 "))
	}
	b.WriteString(entry.Message)
	if !strings.HasSuffix(entry.Message, "\n") {
		b.WriteByte('\n')
	}
	return b.Bytes(), nil
}

func levelName(l logrus.Level) string {
	if l == logrus.WarnLevel {
		return "warn"
	}
	return l.String()
}

// Level returns the level of the log group
func (l *LogGroup) Level() LogLevel {
	return l.level
}

// LogsAt returns true if messages at level are printed
func (l *LogGroup) LogsAt(level LogLevel) bool {
	return l.level >= level
}

// SetAllOutput sets all the output writers to the writer provided
func (l *LogGroup) SetAllOutput(w io.Writer) {
	l.logger.SetOutput(w)
}

// SetAllFlags sets the flag of all loggers in the log group to the argument provided. Only the date and time
// flags of the log package are meaningful.
func (l *LogGroup) SetAllFlags(x int) {
	l.format.flags = x
}

// Tracef prints to the trace logger. Arguments are handled in the manner of Printf
func (l *LogGroup) Tracef(format string, v ...any) {
	l.logger.Tracef(format, v...)
}

// Debugf prints to the debug logger. Arguments are handled in the manner of Printf
func (l *LogGroup) Debugf(format string, v ...any) {
	l.logger.Debugf(format, v...)
}

// Infof prints to the info logger. Arguments are handled in the manner of Printf
func (l *LogGroup) Infof(format string, v ...any) {
	l.logger.Infof(format, v...)
}

// Warnf prints to the warning logger. Arguments are handled in the manner of Printf
func (l *LogGroup) Warnf(format string, v ...any) {
	l.logger.Warnf(format, v...)
}

// Errorf prints to the error logger. Arguments are handled in the manner of Printf
func (l *LogGroup) Errorf(format string, v ...any) {
	l.logger.Errorf(format, v...)
}
