package cli

import (
	"github.com/tabrefresh/tabrefresh/cli/core"
)

// Execute runs the tabrefresh command line.
func Execute(releaseVersion string, releaseCommit string, releaseDate string) error {
	return core.Execute(releaseVersion, releaseCommit, releaseDate)
}
