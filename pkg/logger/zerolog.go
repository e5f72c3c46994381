package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

const (
	permission = 0664
)

type LogBuild struct {
	writer io.Writer
	path   string
	level  zerolog.Level
}

type LogData struct {
	LogFile *os.File
	Logger  zerolog.Logger
}

func NewBuild() *LogBuild {
	return &LogBuild{level: zerolog.InfoLevel}
}

func (build *LogBuild) FromPath(path string) *LogBuild {
	build.path = path
	return build
}

func (build *LogBuild) FromBuffer(w io.Writer) *LogBuild {
	build.writer = w
	return build
}

func (build *LogBuild) WithLevel(level zerolog.Level) *LogBuild {
	build.level = level
	return build
}

func (build *LogBuild) Make() (logData *LogData, err error) {
	logData = new(LogData)
	writer := build.writer
	if writer == nil {
		writer = os.Stdout
	}
	if build.path != "" {
		logData.LogFile, err = os.OpenFile(build.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		writer = zerolog.SyncWriter(logData.LogFile)
	}
	logData.Logger = zerolog.New(writer).Level(build.level).With().Timestamp().Logger()
	return
}

// Close releases the log file, if any.
func (logData *LogData) Close() error {
	if logData.LogFile == nil {
		return nil
	}
	return logData.LogFile.Close()
}

// ZerologHandler adapts a zerolog.Logger to Logger.
// Arguments are read as alternating key/value pairs, like slog.
type ZerologHandler struct {
	logger zerolog.Logger
}

func NewZerolog(l zerolog.Logger) *ZerologHandler {
	return &ZerologHandler{logger: l}
}

// Handler returns a Logger writing through the built zerolog logger.
func (logData *LogData) Handler() *ZerologHandler {
	return NewZerolog(logData.Logger)
}

func (handler *ZerologHandler) Error(msg string, args ...any) {
	withFields(handler.logger.Error(), args).Msg(msg)
}

func (handler *ZerologHandler) Warn(msg string, args ...any) {
	withFields(handler.logger.Warn(), args).Msg(msg)
}

func (handler *ZerologHandler) Info(msg string, args ...any) {
	withFields(handler.logger.Info(), args).Msg(msg)
}

func (handler *ZerologHandler) Debug(msg string, args ...any) {
	withFields(handler.logger.Debug(), args).Msg(msg)
}

func withFields(e *zerolog.Event, args []any) *zerolog.Event {
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		if i+1 == len(args) {
			e = e.Str("!BADKEY", key)
			break
		}
		if err, ok := args[i+1].(error); ok {
			e = e.AnErr(key, err)
			continue
		}
		e = e.Interface(key, args[i+1])
	}
	return e
}
