package cli

import (
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	appconfig "github.com/doeshing/shlaunch/internal/application/config"
	"github.com/doeshing/shlaunch/internal/infrastructure/config"
	"github.com/doeshing/shlaunch/internal/version"
)

var noContainer = map[string]string{annotationNoContainer: "true"}

// ============================================================================
// Version Command
// ============================================================================

// newVersionCommand creates the version command to display version information.
func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show shlaunch version information",
		Args:        cobra.NoArgs,
		Annotations: noContainer,
		RunE: func(cmd *cobra.Command, args []string) error {
			return displayVersionInformation(cmd.OutOrStdout())
		},
	}
}

func displayVersionInformation(out io.Writer) error {
	fmt.Fprintf(out, "shlaunch version %s\n", version.Version)

	if version.Commit != "" {
		fmt.Fprintf(out, "Commit: %s\n", version.Commit)
	}

	if version.BuildDate != "" {
		fmt.Fprintf(out, "Built: %s\n", version.BuildDate)
	}

	fmt.Fprintf(out, "Go version: %s\n", runtime.Version())

	return nil
}

// ============================================================================
// Config Command
// ============================================================================

// newConfigCommand creates the config command. Its subcommands read the file
// directly so that a broken config can still be inspected.
func newConfigCommand(s *session) *cobra.Command {
	configCmd := &cobra.Command{
		Use:         "config",
		Short:       "Inspect shlaunch configuration",
		Annotations: noContainer,
	}

	showCmd := &cobra.Command{
		Use:         "show",
		Short:       "Show the effective configuration",
		Args:        cobra.NoArgs,
		Annotations: noContainer,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewFileLoader(s.opts.ConfigPath).Load(cmd.Context())
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	pathCmd := &cobra.Command{
		Use:         "path",
		Short:       "Print the config file location",
		Args:        cobra.NoArgs,
		Annotations: noContainer,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), config.NewFileLoader(s.opts.ConfigPath).Path())
			return nil
		},
	}

	validateCmd := &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Args:        cobra.NoArgs,
		Annotations: noContainer,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewFileLoader(s.opts.ConfigPath).Load(cmd.Context())
			if err != nil {
				return err
			}
			if err := appconfig.Validate(cfg); err != nil {
				return fmt.Errorf("configuration invalid: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), msgConfigurationValid)
			return nil
		},
	}

	configCmd.AddCommand(showCmd, pathCmd, validateCmd)
	return configCmd
}

const msgConfigurationValid = "Configuration valid"

// ============================================================================
// Doctor Command
// ============================================================================

var errDiagnosticsFailed = errors.New("diagnostics found problems")

// newDoctorCommand creates the doctor command to diagnose environment setup.
func newDoctorCommand(s *session) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose environment setup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := s.open(cmd.Context())
			if err != nil {
				return err
			}
			if c.DoctorService == nil {
				return fmt.Errorf("doctor service unavailable")
			}
			report, err := c.DoctorService.Run(cmd.Context())

			// Display report even if there were errors
			NewRenderer(cmd.OutOrStdout()).Health(report)

			if err != nil {
				return fmt.Errorf("diagnostics completed with errors: %w", err)
			}
			if report.HasErrors() {
				return errDiagnosticsFailed
			}
			return nil
		},
	}
}
