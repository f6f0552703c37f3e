package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tabrefresh/tabrefresh/cli/core"
	"github.com/tabrefresh/tabrefresh/tableau"
)

func init() {
	core.RegisterCommand("version", func() *cobra.Command {
		return VersionCmd()
	})
}

type versionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
	OsArch  string `json:"osArch" yaml:"osArch"`
}

func currentVersion() versionInfo {
	info := versionInfo{
		Version: core.GetVersion(),
		Commit:  core.GetCommit(),
		Date:    core.GetDate(),
		OsArch:  tableau.GetOsArch(),
	}
	if info.Version == "" || info.Version == "dev" {
		info.Version = tableau.GetVersion()
	}
	if info.Commit == "" || info.Commit == "none" {
		info.Commit = tableau.GetCommitHash()
	}
	if info.Date == "" {
		info.Date = "unknown"
	}
	return info
}

func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := currentVersion()
			if core.IsQuiet() {
				return core.OutputDocument(info)
			}
			core.PrintInfo("tabrefresh")
			core.Print(fmt.Sprintf("Version: %s", info.Version))
			core.Print(fmt.Sprintf("Commit: %s", info.Commit))
			core.Print(fmt.Sprintf("Date: %s", info.Date))
			core.Print(fmt.Sprintf("Platform: %s", info.OsArch))
			return nil
		},
	}
}
