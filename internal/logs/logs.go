package logs

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

type Options struct {
	Level  string // debug | info | warn | error
	Format string // text | json
	File   string // путь к файлу (опционально), пишем и в stdout, и в файл
}

// Logger — общий логгер процесса. До Init пишет в stderr с уровнем info.
var Logger = logrus.New()

func Init(o Options) {
	l := logrus.New()

	switch strings.ToLower(o.Format) {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	default:
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	SetLevel(l, o.Level)

	var out io.Writer = os.Stdout
	if o.File != "" {
		if err := os.MkdirAll(filepath.Dir(o.File), 0o755); err == nil {
			if f, err := os.OpenFile(o.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
				out = io.MultiWriter(os.Stdout, f)
			} else {
				l.Warnf("log file %s: %v", o.File, err)
			}
		}
	}
	l.SetOutput(out)

	Logger = l
}

// SetLevel — неизвестный уровень трактуем как info.
func SetLevel(l *logrus.Logger, level string) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
}
