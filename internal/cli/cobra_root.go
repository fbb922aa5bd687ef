package cli

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"launcherd/pkg/types"
)

// buildRootCmdWith constructs the command tree. Flags write into cfg.
func buildRootCmdWith(cfg *Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "launcherd",
		Short:         "Game launcher daemon: install queue, updates and runtime components",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&cfg.ConfigPath, "config", "c", cfg.ConfigPath, "Config file (yaml, json or toml; defaults LAUNCHERD_CONFIG)")
	root.PersistentFlags().StringVar(&cfg.EnvFile, "env-file", cfg.EnvFile, "Optional .env file with LAUNCHERD_* variables")
	root.PersistentFlags().StringVar(&cfg.Server, "server", cfg.Server, "Daemon base URL for client commands (defaults LAUNCHERD_SERVER)")
	root.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug|info|warn|error (overrides the config file)")

	serveCmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the daemon",
		Example: "  launcherd serve -c ~/.config/launcherd/config.yaml",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return fnServe(ctx, cfg)
		},
	}

	var (
		name      string
		path      string
		corefonts bool
	)
	enqueueCmd := &cobra.Command{
		Use:   "enqueue",
		Short: "Queue a job on a running daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return usageError{msg: "enqueue requires a subcommand: game|update|component|prefix"}
		},
	}
	enqueueGame := &cobra.Command{Use: "game <variant>", Short: "Install a game", Example: "  launcherd enqueue game genshin", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		return fnEnqueue(cmd.Context(), cfg, types.EnqueueRequest{Kind: types.EnqueueGame, Variant: args[0]}, cmd.OutOrStdout())
	}}
	enqueueUpdate := &cobra.Command{Use: "update <variant>", Short: "Update an installed game", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		return fnEnqueue(cmd.Context(), cfg, types.EnqueueRequest{Kind: types.EnqueueUpdate, Variant: args[0]}, cmd.OutOrStdout())
	}}
	enqueueComponent := &cobra.Command{Use: "component wine|dxvk", Short: "Download the configured wine or dxvk version", Example: "  launcherd enqueue component wine --name wine-ge-proton8-26", Args: cobra.ExactArgs(1), RunE: func(cmd *cobra.Command, args []string) error {
		kind := strings.ToLower(args[0])
		if kind != "wine" && kind != "dxvk" {
			return usageError{msg: "component must be wine or dxvk"}
		}
		return fnEnqueue(cmd.Context(), cfg, types.EnqueueRequest{Kind: types.EnqueueComponent, Variant: kind, Name: name}, cmd.OutOrStdout())
	}}
	enqueueComponent.Flags().StringVar(&name, "name", "", "Version name; empty selects the configured version")
	enqueuePrefix := &cobra.Command{Use: "prefix", Short: "Create a wine prefix", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		return fnEnqueue(cmd.Context(), cfg, types.EnqueueRequest{Kind: types.EnqueuePrefix, Path: path, InstallCorefonts: corefonts}, cmd.OutOrStdout())
	}}
	enqueuePrefix.Flags().StringVar(&path, "path", "", "Prefix path; empty selects the configured prefix")
	enqueuePrefix.Flags().BoolVar(&corefonts, "corefonts", false, "Install corefonts with winetricks")
	enqueueCmd.AddCommand(enqueueGame, enqueueUpdate, enqueueComponent, enqueuePrefix)

	queueCmd := &cobra.Command{Use: "queue", Short: "Show the active and pending jobs", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		return fnQueue(cmd.Context(), cfg, cmd.OutOrStdout())
	}}
	libraryCmd := &cobra.Command{Use: "library", Short: "Show installed, queued and available games", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		return fnLibrary(cmd.Context(), cfg, cmd.OutOrStdout())
	}}
	watchCmd := &cobra.Command{Use: "watch", Short: "Follow progress, completion and failure events", Args: cobra.NoArgs, RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return fnWatch(ctx, cfg, cmd.OutOrStdout())
	}}

	root.AddCommand(serveCmd, enqueueCmd, queueCmd, libraryCmd, watchCmd)

	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(cmd.OutOrStdout()) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(cmd.OutOrStdout()) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(cmd.OutOrStdout(), true) }})
	root.AddCommand(completionCmd)

	return root
}
