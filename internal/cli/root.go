// Package cli implements foxdenctl, a command line client for the game
// server's websocket protocol.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var cfg *Config

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "foxdenctl",
		Short: "CLI client for the foxden game server",
		Long: `foxdenctl talks to the foxden game server over its websocket protocol.

It supports account management, presence queries, social actions
(visits, gifts, friend requests) and live event watching.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cfg.LoadToken()
		},
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: FOXDEN_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Session token (env: FOXDEN_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: FOXDEN_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	// Add subcommands
	rootCmd.AddCommand(newAccountCmd())
	rootCmd.AddCommand(newOnlineCmd())
	rootCmd.AddCommand(newShareCmd())
	rootCmd.AddCommand(newVisitCmd())
	rootCmd.AddCommand(newGiftCmd())
	rootCmd.AddCommand(newFriendCmd())
	rootCmd.AddCommand(newPingCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// withAuthedClient dials the server, resumes the saved session and hands
// the connection to fn
func withAuthedClient(fn func(c *Client) error) error {
	c, err := Dial(cfg.ServerURL)
	if err != nil {
		return err
	}
	defer c.Close()

	if _, err := c.Authenticate(cfg.Token); err != nil {
		return err
	}

	return fn(c)
}
