package main

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

var stdlog, errlog zerolog.Logger

const logTimeFormat = "2006/01/02 15:04:05.000000"

// setupLogging points stdlog and errlog at the given writers
func setupLogging(out, errOut io.Writer, debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	stdlog = zerolog.New(zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: logTimeFormat}).
		Level(level).With().Timestamp().Logger()
	errlog = zerolog.New(zerolog.ConsoleWriter{Out: errOut, NoColor: true, TimeFormat: logTimeFormat}).
		Level(level).With().Timestamp().Logger()
}

// logToFile sends both loggers to a rotated file. Used when running as a system service.
func logToFile(fileName string, debug bool) io.Closer {
	w := &lumberjack.Logger{
		Filename:   fileName,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	setupLogging(w, w, debug)
	return w
}

func init() {
	setupLogging(os.Stdout, os.Stderr, os.Getenv("KAGEBOT_DEBUG") != "")
}
