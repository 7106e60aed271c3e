package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"byte-battle/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	writerMu sync.RWMutex
	writer   io.Writer = os.Stdout
)

// Init configures the global zerolog logger. The returned closer releases the
// log file when LOG_FILE is set and is a no-op otherwise.
func Init(cfg config.LogConfig) (io.Closer, error) {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var out io.Writer = os.Stdout
	var closer io.Closer = nopCloser{}
	if path := strings.TrimSpace(cfg.File); path != "" {
		f, err := openCappedFile(path, cfg.MaxMB)
		if err != nil {
			return nil, err
		}
		out = io.MultiWriter(os.Stdout, f)
		closer = f
	}
	setWriter(out)

	var logOut io.Writer = out
	if cfg.Pretty {
		logOut = zerolog.ConsoleWriter{Out: out}
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(logOut).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
	return closer, nil
}

// Writer is the raw sink shared by zerolog and the slog request logger.
func Writer() io.Writer {
	writerMu.RLock()
	defer writerMu.RUnlock()
	return writer
}

func setWriter(w io.Writer) {
	writerMu.Lock()
	writer = w
	writerMu.Unlock()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
