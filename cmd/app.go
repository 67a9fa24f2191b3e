// Package cmd implements the CLI application to simulate dollar-cost averaging portfolios.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Commands lists the subcommands of the application.
var Commands = []subcommands.Command{
	&simulateCmd{},
	&fetchCmd{},
	&runsCmd{},
	&topicCmd{},
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var verbose = flag.Bool("v", false, "Log debug events, including every purchase.")

// stdout receives the reports.
var stdout io.Writer = os.Stdout

const (
	envMarketFile = "DCA_MARKET_FILE"
	envStoreFile  = "DCA_STORE_FILE"
	envAPIKey     = "EODHD_API_KEY"
)

// LoadEnv loads the .env file of the working directory, if any, so that it provides flag defaults.
func LoadEnv() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Warning: cannot load .env file: %v\n", err)
	}
}

// env returns the value of the environment variable key, or def.
func env(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

// newLogger returns the console logger of the application and installs it as the global one.
func newLogger() zerolog.Logger {
	level := zerolog.InfoLevel
	if *verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).
		With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// printMarkdown renders md for the terminal, falling back to raw markdown.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			fmt.Fprint(stdout, out)
			return
		}
	}
	fmt.Fprint(stdout, md)
}
