package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/productdevbook/port-kill/internal/config"
)

var (
	ignorePortArgs    []uint
	ignoreProcessArgs []string
)

var ignoreCmd = &cobra.Command{
	Use:   "ignore",
	Short: "Manage the saved ignore lists",
	Long: `Show or edit the ports and process names that are ignored by default.
The lists are shared with the desktop app and merged with --ignore-ports
and --ignore-processes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewStore().Load()
		if err != nil {
			return fmt.Errorf("failed to load preferences: %w", err)
		}
		return printIgnored(cmd.OutOrStdout(), cfg)
	},
}

var ignoreAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add ports or process names to the ignore lists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateIgnored(cmd, func(cfg *config.Config) {
			for _, p := range ignorePortArgs {
				cfg.AddIgnoredPort(int(p))
			}
			for _, name := range ignoreProcessArgs {
				cfg.AddIgnoredProcess(name)
			}
		})
	},
}

var ignoreRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove ports or process names from the ignore lists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return updateIgnored(cmd, func(cfg *config.Config) {
			for _, p := range ignorePortArgs {
				cfg.RemoveIgnoredPort(int(p))
			}
			for _, name := range ignoreProcessArgs {
				cfg.RemoveIgnoredProcess(name)
			}
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{ignoreAddCmd, ignoreRemoveCmd} {
		c.Flags().UintSliceVar(&ignorePortArgs, "port", nil, "Ports (e.g. 5353,7000)")
		c.Flags().StringSliceVar(&ignoreProcessArgs, "process", nil, "Process names (e.g. Chrome,ControlCe)")
		c.MarkFlagsOneRequired("port", "process")
		ignoreCmd.AddCommand(c)
	}
}

func updateIgnored(cmd *cobra.Command, edit func(*config.Config)) error {
	for _, p := range ignorePortArgs {
		if p == 0 || p > 65535 {
			return fmt.Errorf("invalid port number: %d", p)
		}
	}
	for _, name := range ignoreProcessArgs {
		if strings.TrimSpace(name) == "" {
			return errors.New("process names cannot be empty")
		}
	}

	store := config.NewStore()
	cfg, err := store.Load()
	if err != nil {
		return fmt.Errorf("failed to load preferences: %w", err)
	}
	edit(cfg)
	if err := store.Save(cfg); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return printIgnored(cmd.OutOrStdout(), cfg)
}

func printIgnored(out io.Writer, cfg *config.Config) error {
	if opts.JSON {
		return printJSON(out, cfg)
	}
	ig := cfg.Ignore()
	if ig.Empty() {
		fmt.Fprintln(out, "Nothing is ignored.")
		return nil
	}
	fmt.Fprintln(out, ig.String())
	return nil
}
