package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Simple command registry
var commandRegistry = make(map[string]func() *cobra.Command)

// defaultCommand runs when the root command is invoked without a subcommand.
var defaultCommand string

// RegisterCommand allows commands to register themselves
func RegisterCommand(name string, cmdFunc func() *cobra.Command) {
	commandRegistry[name] = cmdFunc
}

// SetDefaultCommand makes the registered command name run when no
// subcommand is given. Its flags are exposed on the root command.
func SetDefaultCommand(name string) {
	defaultCommand = name
}

// GetCommand returns a registered command
func GetCommand(name string) *cobra.Command {
	if cmdFunc, exists := commandRegistry[name]; exists {
		return cmdFunc()
	}
	return &cobra.Command{Use: name, Short: fmt.Sprintf("%s (not implemented)", name)}
}

var config Config
var configPath string
var envFiles []string
var outputFormat string
var verbose bool
var version string
var commit string
var date string

// NewRootCommand builds the command tree with every registered command.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tabrefresh",
		Short: "Trigger extract refreshes on Tableau Server",
		Long: `tabrefresh signs in to a Tableau Server site with a personal access token,
finds a workbook or datasource by name and project, and starts an extract
refresh for it. It prints the id of the refresh job and exits without
waiting for the job to finish.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutputFormat(outputFormat); err != nil {
				return err
			}
			initLogger(verbose)
			if err := loadEnvFiles(envFiles); err != nil {
				return err
			}
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			config = cfg
			return nil
		},
	}
	cmd.SetFlagErrorFunc(func(c *cobra.Command, err error) error {
		return NewUsageError(err)
	})

	cmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "pretty", "Output format. One of: pretty,json,yaml")
	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging on stderr")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a TOML config file (default ./tabrefresh.toml or ~/.tabrefresh/config.toml)")
	cmd.PersistentFlags().StringSliceVarP(&envFiles, "env-file", "e", nil, "Dotenv file(s) to load before reading TABLEAU_* variables")
	_ = cmd.RegisterFlagCompletionFunc("output", completeOutputFormat)

	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.AddCommand(completionCmd(), docCmd())
	addRegisteredCommands(cmd)
	return cmd
}

// Execute builds the command tree and runs it. The context is cancelled on
// SIGINT or SIGTERM.
func Execute(releaseVersion string, releaseCommit string, releaseDate string) error {
	if version == "" {
		version = releaseVersion
	}
	if commit == "" {
		commit = releaseCommit
	}
	if date == "" {
		date = releaseDate
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}

func addRegisteredCommands(root *cobra.Command) {
	for name, cmdFunc := range commandRegistry {
		cmd := cmdFunc()
		if cmd == nil {
			continue
		}
		root.AddCommand(cmd)
		if name == defaultCommand {
			cmd.Flags().VisitAll(func(f *pflag.Flag) {
				root.Flags().AddFlag(f)
			})
			root.Args = cmd.Args
			root.RunE = cmd.RunE
		}
	}
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var usageErr *UsageError
	if errors.As(err, &usageErr) {
		return 2
	}
	return 1
}

// GetConfig returns the loaded config file.
func GetConfig() Config {
	return config
}

// GetOutputFormat returns the current output format
func GetOutputFormat() string {
	return outputFormat
}

func GetVersion() string {
	return version
}

func GetCommit() string {
	return commit
}

func GetDate() string {
	return date
}
