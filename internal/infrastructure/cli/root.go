package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/doeshing/shlaunch/internal/app"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// ExitError carries a process exit code without an extra error line; the
// command has already rendered what went wrong.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// ExitCode returns the exit status for err.
func ExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}

// Silent reports whether err has already been shown to the user.
func Silent(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr)
}

// BuildFunc constructs the dependency container.
type BuildFunc func(ctx context.Context, opts app.Options) (*app.Container, error)

// session defers container construction until flags are parsed so that
// --config can take effect.
type session struct {
	build     BuildFunc
	opts      app.Options
	container *app.Container
	clipboard clipboardCopier
}

type clipboardCopier interface {
	Copy(text string) error
}

func (s *session) open(ctx context.Context) (*app.Container, error) {
	if s.container != nil {
		return s.container, nil
	}
	c, err := s.build(ctx, s.opts)
	if err != nil {
		return nil, err
	}
	s.container = c
	return c, nil
}

// close releases the container if one was built. It is safe to call more
// than once.
func (s *session) close() error {
	if s.container == nil {
		return nil
	}
	c := s.container
	s.container = nil
	return c.Close()
}

// NewRootCmd wires the cobra root command. The returned cleanup releases
// what the command opened (the history database) and must run after
// Execute whether or not the command failed; cobra skips post-run hooks
// when RunE returns an error.
func NewRootCmd(opts Options) (*cobra.Command, func() error) {
	root, s := newRootCmd(opts, app.BuildContainer)
	return root, s.close
}

func newRootCmd(opts Options, build BuildFunc) (*cobra.Command, *session) {
	s := &session{
		build:     build,
		opts:      app.Options{Verbose: opts.Verbose},
		clipboard: NewClipboard(),
	}
	var noColor bool

	flags := &runFlags{}
	root := &cobra.Command{
		Use:   "shlaunch [command...]",
		Short: "shlaunch - run shell commands and keep a recency-ordered history",
		Long: "shlaunch runs one shell command per request through your login shell profile,\n" +
			"captures its output and remembers it so recently used commands surface first.",
		Args: cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if noColor {
				color.NoColor = true
			}
			if cmd.Annotations[annotationNoContainer] == "true" {
				return nil
			}
			_, err := s.open(cmd.Context())
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runLaunch(cmd, s, flags, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.Flags().SetInterspersed(false)
	flags.bind(root)

	root.PersistentFlags().StringVar(&s.opts.ConfigPath, "config", "", "Config file (default ~/.shlaunch/config.yaml, or $SHLAUNCH_CONFIG)")
	root.PersistentFlags().BoolVarP(&s.opts.Verbose, "verbose", "v", opts.Verbose, "Enable debug logging on stderr")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable coloured output")

	root.AddCommand(newRunCommand(s))
	root.AddCommand(newHistoryCommand(s))
	root.AddCommand(newConfigCommand(s))
	root.AddCommand(newDoctorCommand(s))
	root.AddCommand(newVersionCommand())
	return root, s
}

const annotationNoContainer = "shlaunch/no-container"
