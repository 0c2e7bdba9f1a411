package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hikari-games/foxden-server/internal/protocol"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account management commands",
	}

	cmd.AddCommand(newAccountRegisterCmd())
	cmd.AddCommand(newAccountLoginCmd())
	cmd.AddCommand(newAccountGuestCmd())
	cmd.AddCommand(newAccountResumeCmd())

	return cmd
}

func newAccountRegisterCmd() *cobra.Command {
	var user, nick, pass string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new account",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := Dial(cfg.ServerURL)
			if err != nil {
				return err
			}
			defer c.Close()

			req := map[string]string{
				"type":     protocol.TypeRegister,
				"username": user,
				"nickname": nick,
				"password": pass,
			}
			var result protocol.RegisterResult
			if err := c.Call(req, protocol.TypeRegisterResult, &result); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("registration failed: %s", result.Error)
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Registered %s", user))
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&nick, "nick", "", "Nickname (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("nick")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newAccountLoginCmd() *cobra.Command {
	var user, pass string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login with existing account",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := Dial(cfg.ServerURL)
			if err != nil {
				return err
			}
			defer c.Close()

			req := map[string]string{
				"type":     protocol.TypeLogin,
				"username": user,
				"password": pass,
			}
			var result protocol.LoginResult
			if err := c.Call(req, protocol.TypeLoginResult, &result); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("login failed: %s", result.Error)
			}

			// Save token for later commands
			if err := cfg.SaveToken(result.SessionID); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "Username (required)")
	cmd.Flags().StringVar(&pass, "pass", "", "Password (required)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("pass")

	return cmd
}

func newAccountGuestCmd() *cobra.Command {
	var guestID, nick string

	cmd := &cobra.Command{
		Use:   "guest",
		Short: "Connect as a guest",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := Dial(cfg.ServerURL)
			if err != nil {
				return err
			}
			defer c.Close()

			req := map[string]string{
				"type":     protocol.TypeGuestLogin,
				"guestId":  guestID,
				"nickname": nick,
			}
			var result protocol.GuestLoginResult
			if err := c.Call(req, protocol.TypeGuestLoginResult, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&guestID, "id", "", "Guest ID from a previous session")
	cmd.Flags().StringVar(&nick, "nick", "", "Nickname")

	return cmd
}

func newAccountResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := Dial(cfg.ServerURL)
			if err != nil {
				return err
			}
			defer c.Close()

			result, err := c.Authenticate(cfg.Token)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(*result)
			return nil
		},
	}
}
