package logging

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const SystemName = "optines"

// Logger is the process-wide logger. It writes to stderr until Init runs.
var Logger = logrus.New()

// CustomFormatter renders one line per entry with a fresh event id.
type CustomFormatter struct {
	SystemName string
	Location   *time.Location
}

func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	t := entry.Time.In(loc)

	fmt.Fprintf(b, "Date: %s, Time: %s, ", t.Format("2006-01-02"), t.Format("15:04:05"))
	fmt.Fprintf(b, "Event Source: %s, ", f.SystemName)
	fmt.Fprintf(b, "Event Type: %s, ", strings.ToUpper(entry.Level.String()))
	fmt.Fprintf(b, "Event ID: %s, ", uuid.New().String())
	fmt.Fprintf(b, "Message: %s", entry.Message)

	for _, k := range slices.Sorted(maps.Keys(entry.Data)) {
		fmt.Fprintf(b, ", %s: %v", k, entry.Data[k])
	}

	if entry.HasCaller() {
		fmt.Fprintf(b, ", Location: %s:%d in %s", filepath.Base(entry.Caller.File), entry.Caller.Line, entry.Caller.Function)
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

type Options struct {
	// File enables rotation through lumberjack. Empty means stderr.
	File     string
	Level    string
	Location *time.Location
}

// Init configures Logger. It returns an error for an unknown level or an
// unwritable log directory.
func Init(opts Options) error {
	level := logrus.InfoLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return fmt.Errorf("log level: %w", err)
		}
		level = parsed
	}

	var out io.Writer = os.Stderr
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
		out = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
	}

	Logger.SetOutput(out)
	Logger.SetFormatter(&CustomFormatter{SystemName: SystemName, Location: opts.Location})
	Logger.SetLevel(level)
	Logger.SetReportCaller(true)
	return nil
}
