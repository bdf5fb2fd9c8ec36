// Package main is the entrypoint for the interactions gateway (binary name
// "interactions").
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

const logPrefix = "cmd/interactions:main"

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	if err := buildRootCmd().Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

// buildRootCmd creates the root command with all subcommands attached.
func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "interactions",
		Short: "Discord interactions gateway",
		Long: `interactions receives Discord interactions over HTTP, verifies their
signature, routes them to registered commands and returns the response.

Environment: DISCORD_APPLICATION_ID, DISCORD_PUBLIC_KEY (serve), DISCORD_TOKEN
(deploy and follow-ups), HTTP_ADDR, HTTP_PORT, INTERACTIONS_ROUTE, COMMS_URL,
DEPLOY_GUILD_IDS, LOG_LEVEL. A .env file in the working directory is loaded
when present.`,
		SilenceUsage: true,
	}
	root.AddCommand(
		buildServeCmd(),
		buildDeployCmd(),
		buildCommandsCmd(),
		buildKeygenCmd(),
		buildSignCmd(),
		buildTailCmd(),
	)
	return root
}

func buildServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP interactions endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func buildDeployCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Register command definitions with Discord",
		Long: `deploy bulk-overwrites the global command set and the command set of
every guild named by a command definition or by DEPLOY_GUILD_IDS.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDeploy(cmd.Context(), cmd.OutOrStdout(), dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the deploy plan without calling Discord")
	return cmd
}

func buildCommandsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "commands",
		Short: "List registered commands and their preconditions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCommands(cmd.OutOrStdout())
		},
	}
}

func buildKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate an Ed25519 key pair for local testing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runKeygen(cmd.OutOrStdout())
		},
	}
}

func buildSignCmd() *cobra.Command {
	var (
		keyHex    string
		timestamp string
		url       string
	)
	cmd := &cobra.Command{
		Use:   "sign [body]",
		Short: "Sign an interaction body and print a curl command",
		Example: `  interactions keygen
  interactions sign --key <private key> '{"type":1}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSign(cmd.OutOrStdout(), keyHex, timestamp, url, args[0])
		},
	}
	cmd.Flags().StringVar(&keyHex, "key", os.Getenv("DISCORD_PRIVATE_KEY"), "Hex Ed25519 private key or seed")
	cmd.Flags().StringVar(&timestamp, "timestamp", "", "Timestamp to sign (default: now)")
	cmd.Flags().StringVar(&url, "url", "http://localhost:3000/interactions", "Endpoint used in the printed curl command")
	return cmd
}

func buildTailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tail",
		Short: "Print interaction dispatch events published on COMMS_URL",
		Long: `tail subscribes to INTERACTION_EVENT_SUBJECT on the COMMS server named by
COMMS_URL and prints one line per dispatched interaction until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTail(cmd.Context(), cmd.OutOrStdout())
		},
	}
}
