package core

import (
	"bytes"
	"io"

	"github.com/spf13/cobra"
	"github.com/tabrefresh/tabrefresh/tableau"
)

// bashCompletionShim defines _get_comp_words_by_ref for shells without the
// bash-completion package, such as bash 3.2 on macOS.
const bashCompletionShim = `# Shim: provide _get_comp_words_by_ref if bash-completion is not installed.
if ! type _get_comp_words_by_ref >/dev/null 2>&1; then
    _get_comp_words_by_ref() {
        local exclude cur_ words_ cword_
        if [ "$1" = "-n" ]; then
            exclude=$2
            shift 2
        fi
        while [ $# -gt 0 ]; do
            case "$1" in
                cur)   cur="${COMP_WORDS[COMP_CWORD]}" ;;
                prev)  prev="${COMP_WORDS[COMP_CWORD-1]}" ;;
                words) eval words='("${COMP_WORDS[@]}")' ;;
                cword) cword=$COMP_CWORD ;;
            esac
            shift
        done
    }
fi

`

func completionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for tabrefresh.

Bash:
  eval "$(tabrefresh completion bash)"

Zsh:
  eval "$(tabrefresh completion zsh)"

Fish:
  tabrefresh completion fish | source

PowerShell:
  tabrefresh completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs)(cmd, args); err != nil {
				return NewUsageError(err)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return genBashCompletionWithShim(cmd.Root(), w)
			case "zsh":
				return cmd.Root().GenZshCompletion(w)
			case "fish":
				return cmd.Root().GenFishCompletion(w, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(w)
			}
		},
	}
}

func genBashCompletionWithShim(root *cobra.Command, w io.Writer) error {
	var buf bytes.Buffer
	if err := root.GenBashCompletionV2(&buf, true); err != nil {
		return err
	}
	if _, err := io.WriteString(w, bashCompletionShim); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// completeContentType completes the --type flag.
func completeContentType(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	names := make([]string, 0, len(tableau.ContentTypes))
	for _, ct := range tableau.ContentTypes {
		names = append(names, string(ct))
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func completeOutputFormat(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	return outputFormats, cobra.ShellCompDirectiveNoFileComp
}
