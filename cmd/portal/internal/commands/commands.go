package commands

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
	"github.com/wolfeidau/clientportal/internal/logger"
)

type Globals struct {
	Debug    bool
	LogLevel string
	Version  string
}

// setupLogger builds the process logger and installs it as the global and context default.
func (g *Globals) setupLogger() (zerolog.Logger, error) {
	log, err := logger.Setup(g.Debug, g.LogLevel)
	if err != nil {
		return zerolog.Nop(), err
	}

	zlog.Logger = log
	zerolog.DefaultContextLogger = &log

	return log, nil
}

func configureHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
		MaxHeaderBytes:    8 * 1024, // 8KiB
	}
}
