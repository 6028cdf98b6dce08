// Package bytebuffer implements a growable binary buffer for go
//
// a Buffer holds one contiguous region and two cursors into it. Data is appended
// at the write cursor and consumed from the read cursor, and every multi-byte
// numeric value goes over the wire in big endian (network) byte order.
//
// bytes.Buffer was the obvious starting point, but it has no notion of typed
// values, does not let you patch bytes that are already written, and cannot
// hand its storage off to anything other than the go heap. This package
// does all three, the storage part through the Allocator interface, so a buffer
// can live in an anonymous or file backed memory mapping when that is needed.
//
// Small payloads never touch an allocator at all, every Buffer carries an
// inline array of DefaultPreallocSize bytes that is used until the payload
// outgrows it.
//
// A Buffer is not safe for concurrent use.
package bytebuffer

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version is the last tagged version of the package
const Version = "1.0.0"

var logging bool
var logWriters = []zapcore.WriteSyncer{os.Stdout}
var logger *zap.Logger
var zapEncoderConfig = zapcore.EncoderConfig{
	TimeKey:        "ts",
	LevelKey:       "level",
	NameKey:        "logger",
	CallerKey:      "caller",
	MessageKey:     "msg",
	StacktraceKey:  "stacktrace",
	EncodeLevel:    zapcore.LowercaseLevelEncoder,
	EncodeTime:     zapcore.ISO8601TimeEncoder,
	EncodeDuration: zapcore.SecondsDurationEncoder,
}

func initLogging() {
	logging = false
	initializeLogger()
}

// EnableLogging enables logging if true is passed
// and disables it if false is passed.
func EnableLogging(enable bool) {
	logging = enable
}

// AddLogWriter adds a new io.Writer as a target for writing
// logs.
func AddLogWriter(writer io.Writer) {
	logWriters = append(logWriters, zapcore.AddSync(writer))
	initializeLogger()
}

// SetLogWriters will set the passed io.Writer instances as targets for
// writing logs.
func SetLogWriters(writers ...io.Writer) {
	writesyncers := make([]zapcore.WriteSyncer, 0, len(writers))
	for _, w := range writers {
		writesyncers = append(writesyncers, zapcore.AddSync(w))
	}

	logWriters = writesyncers
	initializeLogger()
}

func initializeLogger() {
	ws := zap.CombineWriteSyncers(logWriters...)
	logger = zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(zapEncoderConfig),
		ws, zapcore.DebugLevel,
	))
}

// init maintains a central location of all things that happen when the package is initialized
// instead of everything being scattered in multiple source files
func init() {
	initLogging()

	err := initConfig()
	if err != nil {
		// a missing config file is the common case, everything has a default
		return
	}

	if v, ok := config["BYTEBUFFER_LOGGING"]; ok {
		EnableLogging(v == "true" || v == "1")
	}

	if logging {
		logger.Debug("loaded config",
			zap.String("module", "config"),
			zap.String("path", confPath),
			zap.Int("keys", len(config)),
		)
	}
}
