package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Setup builds the process logger. Dev mode switches to a console writer at debug
// level with stack traces. level overrides the default level when not empty.
func Setup(dev bool, level string) (zerolog.Logger, error) {
	return setup(os.Stderr, dev, level)
}

func setup(out io.Writer, dev bool, level string) (zerolog.Logger, error) {
	lvl := zerolog.InfoLevel
	if dev {
		lvl = zerolog.DebugLevel
	}

	if level != "" {
		parsed, err := zerolog.ParseLevel(level)
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}

	if dev {
		out = zerolog.ConsoleWriter{Out: out, FormatTimestamp: func(i any) string {
			return time.Now().Format(time.RFC3339)
		}}
	}

	ctx := zerolog.New(out).Level(lvl).With().Timestamp()
	if dev {
		ctx = ctx.Caller().Stack()
	}

	return ctx.Logger(), nil
}
