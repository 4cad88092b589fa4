package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/doeshing/shlaunch/internal/application/launch"
	"github.com/doeshing/shlaunch/internal/domain"
	"github.com/doeshing/shlaunch/internal/infrastructure/workdir"
	"github.com/doeshing/shlaunch/internal/pkg/filesystem"
)

const (
	msgNoHistoryRecorded = "No history recorded yet."
	msgHistoryCleared    = "History cleared."
	msgClearCancelled    = "Clear cancelled."
)

// runFlags are shared by the root command, run and history rerun.
type runFlags struct {
	dir     string
	noInfer bool
	timeout time.Duration
	shell   string
	profile string
	copyOut bool
	jsonOut bool
}

func (f *runFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.dir, "dir", "d", "", "Run in this directory instead of inferring one")
	cmd.Flags().BoolVar(&f.noInfer, "no-infer", false, "Do not infer a working directory")
	cmd.Flags().DurationVarP(&f.timeout, "timeout", "t", 0, "Override execution timeout (default from config)")
	cmd.Flags().StringVar(&f.shell, "shell", "", "Override preferences.default_shell")
	cmd.Flags().StringVar(&f.profile, "profile", "", "Override preferences.shell_profile")
	cmd.Flags().BoolVarP(&f.copyOut, "copy", "c", false, "Copy the command output to the clipboard")
	cmd.Flags().BoolVar(&f.jsonOut, "json", false, "Print the outcome as JSON")
}

// request builds a launch request from config preferences and flag overrides.
func (f *runFlags) request(ctx context.Context, cfg domain.Config, command string) (domain.LaunchRequest, error) {
	prefs := cfg.Preferences
	if f.shell != "" {
		prefs.DefaultShell = f.shell
	}
	if f.profile != "" {
		prefs.ShellProfile = f.profile
	}
	req := domain.LaunchRequest{
		Command:     command,
		Preferences: prefs,
		Infer:       !f.noInfer,
		Timeout:     f.timeout,
	}
	if f.dir != "" {
		dir, err := workdir.Static(filesystem.ExpandPath(f.dir)).Resolve(ctx)
		if err != nil {
			return domain.LaunchRequest{}, fmt.Errorf("--dir: %w", err)
		}
		req.WorkingDirectory = dir
	}
	return req, nil
}

func newRunCommand(s *session) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run <command...>",
		Short: "Run a shell command and record it in history",
		Example: "  shlaunch run ls -la\n" +
			"  shlaunch run --dir ~/src -- 'git status --short | head'",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd, s, flags, args)
		},
	}
	cmd.Flags().SetInterspersed(false)
	flags.bind(cmd)
	return cmd
}

func runLaunch(cmd *cobra.Command, s *session, flags *runFlags, args []string) error {
	c, err := s.open(cmd.Context())
	if err != nil {
		return err
	}
	req, err := flags.request(cmd.Context(), c.Config, strings.Join(args, " "))
	if err != nil {
		return err
	}

	spin := spinnerFor(flags)
	spin.Start()
	resp, err := c.LaunchService.Run(cmd.Context(), req)
	spin.Stop()
	if err != nil {
		return err
	}
	return reportLaunch(cmd, s, flags, resp)
}

func spinnerFor(flags *runFlags) *Spinner {
	if flags.jsonOut {
		return nil
	}
	return stderrSpinner()
}

// reportLaunch renders the response, handles --copy and maps failed runs to
// exit status 1.
func reportLaunch(cmd *cobra.Command, s *session, flags *runFlags, resp domain.LaunchResponse) error {
	r := NewRenderer(cmd.OutOrStdout())
	if flags.jsonOut {
		if err := r.JSON(newOutcomeView(resp)); err != nil {
			return err
		}
	} else {
		r.Outcome(resp)
	}

	if flags.copyOut {
		text := resp.Outcome.Stdout
		if !resp.Outcome.Succeeded() {
			text = resp.Outcome.ErrorMessage
		}
		if err := s.clipboard.Copy(text); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: copy to clipboard failed: %v\n", err)
		} else if !flags.jsonOut {
			fmt.Fprintln(cmd.ErrOrStderr(), "Copied to clipboard.")
		}
	}

	if !resp.Outcome.Succeeded() {
		return &ExitError{Code: 1}
	}
	return nil
}

// newHistoryCommand creates the history command with all subcommands
func newHistoryCommand(s *session) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect and manage command history",
	}

	historyCmd.AddCommand(
		newHistoryListCommand(s),
		newHistorySearchCommand(s),
		newHistoryShowCommand(s),
		newHistoryRerunCommand(s),
		newHistoryRemoveCommand(s),
		newHistoryClearCommand(s),
		newHistoryExportCommand(s),
		newHistoryStatsCommand(s),
	)
	return historyCmd
}

func newHistoryListCommand(s *session) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List history, most recently used first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			return printRecords(cmd.OutOrStdout(), limitRecords(c.Ledger.Records(), limit), jsonOut)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", domain.DefaultHistoryLimit, "Max entries to show (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print records as JSON")
	return cmd
}

func newHistorySearchCommand(s *session) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search history for commands containing query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			matches := c.Ledger.Search(strings.Join(args, " "))
			return printRecords(cmd.OutOrStdout(), limitRecords(matches, limit), jsonOut)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", domain.DefaultHistoryLimit, "Limit search results (0 for all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print records as JSON")
	return cmd
}

func newHistoryShowCommand(s *session) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <command...>",
		Short: "Show the cached result of a command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			command := strings.Join(args, " ")
			rec, ok := c.Ledger.Get(command)
			if !ok {
				return notInHistory(command, c.Ledger.Records())
			}
			r := NewRenderer(cmd.OutOrStdout())
			if jsonOut {
				return r.JSON(rec)
			}
			r.Record(rec)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the record as JSON")
	return cmd
}

func newHistoryRerunCommand(s *session) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "rerun <command...>",
		Short: "Run a command from history again, in its last directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			command := strings.Join(args, " ")
			req, err := flags.request(cmd.Context(), c.Config, command)
			if err != nil {
				return err
			}

			spin := spinnerFor(flags)
			spin.Start()
			resp, err := c.LaunchService.Rerun(cmd.Context(), command, req)
			spin.Stop()
			if errors.Is(err, launch.ErrUnknownCommand) {
				return notInHistory(command, c.Ledger.Records())
			}
			if err != nil {
				return err
			}
			return reportLaunch(cmd, s, flags, resp)
		},
	}
	flags.bind(cmd)
	return cmd
}

func newHistoryRemoveCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <command...>",
		Aliases: []string{"rm"},
		Short:   "Remove a command from history",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			command := strings.Join(args, " ")
			if !c.Ledger.Remove(cmd.Context(), command) {
				return notInHistory(command, c.Ledger.Records())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %q.\n", command)
			return nil
		},
	}
}

func newHistoryClearCommand(s *session) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			if !yes {
				prompter := NewPrompter(promptInput(cmd), cmd.OutOrStdout())
				question := fmt.Sprintf("Delete %d recorded commands?", c.Ledger.Len())
				confirmed, err := prompter.Confirm(question)
				if err != nil {
					return err
				}
				if !confirmed {
					fmt.Fprintln(cmd.OutOrStdout(), msgClearCancelled)
					return nil
				}
			}
			c.Ledger.Clear(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), msgHistoryCleared)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

// promptInput returns the reader set with cmd.SetIn, or nil for os.Stdin.
func promptInput(cmd *cobra.Command) io.Reader {
	if in := cmd.InOrStdin(); in != os.Stdin {
		return in
	}
	return nil
}

func newHistoryExportCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path|->",
		Short: "Export history as a JSON array",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			if args[0] == "-" {
				return c.Ledger.Export(cmd.OutOrStdout())
			}
			path := filesystem.ExpandPath(args[0])
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, domain.SecureFilePermissions)
			if err != nil {
				return fmt.Errorf("failed to export history to %s: %w", path, err)
			}
			if err := c.Ledger.Export(f); err != nil {
				_ = f.Close()
				return fmt.Errorf("failed to export history to %s: %w", path, err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d commands to %s\n", c.Ledger.Len(), path)
			return nil
		},
	}
}

func newHistoryStatsCommand(s *session) *cobra.Command {
	var top int
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show usage totals and the most used commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			stats := c.Ledger.Stats(top)
			r := NewRenderer(cmd.OutOrStdout())
			if jsonOut {
				return r.JSON(stats)
			}
			r.Stats(stats, c.Ledger.MaxSize())
			return nil
		},
	}
	cmd.Flags().IntVar(&top, "top", domain.DefaultTopCommands, "How many top commands to show")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print stats as JSON")
	return cmd
}

func printRecords(out io.Writer, records []domain.CommandRecord, jsonOut bool) error {
	r := NewRenderer(out)
	if jsonOut {
		if records == nil {
			records = []domain.CommandRecord{}
		}
		return r.JSON(records)
	}
	r.Records(records)
	return nil
}

func limitRecords(records []domain.CommandRecord, limit int) []domain.CommandRecord {
	if limit > 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}

func notInHistory(command string, records []domain.CommandRecord) error {
	if suggestion := closestCommand(command, records); suggestion != "" {
		return fmt.Errorf("%q is not in history; did you mean %q?", command, suggestion)
	}
	return fmt.Errorf("%q is not in history", command)
}
