// Package logger builds the zerolog logger shared by every component.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

const permission = 0664

// LogBuild collects where and how verbosely to log.
type LogBuild struct {
	writer io.Writer
	path   string
	level  zerolog.Level
}

// LogData is a built logger and the file it writes to, if any.
type LogData struct {
	LogFile *os.File
	Logger  zerolog.Logger
}

// New starts a builder logging to stderr at info level.
func New() *LogBuild {
	return &LogBuild{level: zerolog.InfoLevel}
}

// FromPath appends logs to the file at path.
func (build *LogBuild) FromPath(path string) *LogBuild {
	build.path = path
	return build
}

// FromBuffer writes logs to w.
func (build *LogBuild) FromBuffer(w io.Writer) *LogBuild {
	build.writer = w
	return build
}

// Level sets the minimum level by name; unknown names keep the current level.
func (build *LogBuild) Level(name string) *LogBuild {
	if lvl, err := zerolog.ParseLevel(name); err == nil && name != "" {
		build.level = lvl
	}
	return build
}

// Make builds the logger.
func (build *LogBuild) Make() (logData *LogData, err error) {
	logData = new(LogData)
	writer := build.writer
	if writer == nil {
		writer = zerolog.ConsoleWriter{Out: os.Stderr}
	}
	if build.path != "" {
		logData.LogFile, err = os.OpenFile(build.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		writer = zerolog.SyncWriter(logData.LogFile)
	}
	logData.Logger = zerolog.New(writer).Level(build.level).With().Timestamp().Logger()
	return logData, nil
}

// Close releases the log file, if any.
func (logData *LogData) Close() error {
	if logData.LogFile == nil {
		return nil
	}
	return logData.LogFile.Close()
}
