package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var completionInstall bool

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Set up shell completions for commtrack",
	Long: `Set up shell tab-completions for commtrack commands, flags, company IDs
and scheduled communication IDs.

Supported shells: bash, zsh, fish, powershell

Quick install (writes the script under your home directory):

  commtrack completion bash --install
  commtrack completion zsh --install
  commtrack completion fish --install

Or print the completion script to stdout:

  eval "$(commtrack completion bash)"
  commtrack completion fish | source
  commtrack completion powershell | Out-String | Invoke-Expression`,
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MaximumNArgs(1),
	RunE:      runCompletion,
}

// shellCompletion describes how to generate and where to install the script
// for one shell. An empty installDir means --install is unsupported.
type shellCompletion struct {
	generate   func(w io.Writer) error
	installDir []string
	fileName   string
	postNote   string
}

func shellCompletions() map[string]shellCompletion {
	return map[string]shellCompletion{
		"bash": {
			generate:   func(w io.Writer) error { return rootCmd.GenBashCompletionV2(w, true) },
			installDir: []string{".local", "share", "bash-completion", "completions"},
			fileName:   "commtrack",
			postNote:   "Restart your shell to load them.",
		},
		"zsh": {
			generate:   rootCmd.GenZshCompletion,
			installDir: []string{".local", "share", "zsh", "site-functions"},
			fileName:   "_commtrack",
			postNote:   "Make sure that directory is in your fpath, then run: autoload -Uz compinit && compinit",
		},
		"fish": {
			generate:   func(w io.Writer) error { return rootCmd.GenFishCompletion(w, true) },
			installDir: []string{".config", "fish", "completions"},
			fileName:   "commtrack.fish",
			postNote:   "New fish sessions pick them up automatically.",
		},
		"powershell": {
			generate: rootCmd.GenPowerShellCompletionWithDesc,
		},
	}
}

func init() {
	completionCmd.Flags().BoolVar(&completionInstall, "install", false,
		"Install completions under your home directory")

	// Replace Cobra's default completion command.
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionCmd)
}

func runCompletion(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	sc, ok := shellCompletions()[args[0]]
	if !ok {
		return fmt.Errorf("unsupported shell %q (supported: bash, zsh, fish, powershell)", args[0])
	}
	if !completionInstall {
		return sc.generate(cmd.OutOrStdout())
	}
	if len(sc.installDir) == 0 {
		return fmt.Errorf("automatic install is not supported for %s; add the output of 'commtrack completion %s' to your profile", args[0], args[0])
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("detecting home directory: %w", err)
	}
	target := completionTarget(home, sc)
	if err := os.MkdirAll(filepath.Dir(target), 0o750); err != nil {
		return fmt.Errorf("creating completion directory: %w", err)
	}
	if err := writeCompletionFile(target, sc.generate); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Completions installed to %s\n%s\n", target, sc.postNote)
	return nil
}

func completionTarget(home string, sc shellCompletion) string {
	parts := append([]string{home}, sc.installDir...)
	return filepath.Join(append(parts, sc.fileName)...)
}

// writeCompletionFile creates target and writes the script into it,
// propagating close errors.
func writeCompletionFile(target string, generate func(io.Writer) error) error {
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating completion file %s: %w", target, err)
	}

	writeErr := generate(f)
	closeErr := f.Close()

	if writeErr != nil {
		return writeErr
	}
	if closeErr != nil {
		return fmt.Errorf("closing completion file %s: %w", target, closeErr)
	}
	return nil
}
