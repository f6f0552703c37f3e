package main

import (
	"os"
	"time"

	"github.com/tabrefresh/tabrefresh/cli"
	"github.com/tabrefresh/tabrefresh/cli/core"
)

var (
	version   = "dev"
	commit    = "none"
	date      = "unknown"
	sentryDSN = ""
)

func main() {
	if core.IsTrackingEnabled() {
		err := core.InitSentry(core.SentryConfig{
			DSN:     sentryDSN,
			Release: version,
		})
		if err != nil && os.Getenv("TABREFRESH_DEBUG") == "true" {
			os.Stderr.WriteString("Warning: Failed to initialize Sentry: " + err.Error() + "\n")
		}
		defer core.FlushSentry(2 * time.Second)
		defer core.RecoverWithSentry()
	}

	err := cli.Execute(version, commit, date)
	if err != nil {
		core.ReportError(err)
		core.ExitWithError(err)
	}
}
