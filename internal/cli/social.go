package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hikari-games/foxden-server/internal/protocol"
)

func newOnlineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "online",
		Short: "List online users",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAuthedClient(func(c *Client) error {
				req := map[string]string{"type": protocol.TypeGetOnlineUsers}
				var result protocol.OnlineUsers
				if err := c.Call(req, protocol.TypeOnlineUsers, &result); err != nil {
					return err
				}

				out := NewOutput(cfg.Output)
				out.Print(result)
				return nil
			})
		},
	}
}

func newShareCmd() *cobra.Command {
	var location string

	cmd := &cobra.Command{
		Use:   "share",
		Short: "Share a location with everyone online",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAuthedClient(func(c *Client) error {
				req := map[string]string{
					"type":     protocol.TypeShareLocation,
					"location": location,
				}
				if err := c.Send(req); err != nil {
					return err
				}

				// The share comes back to us as a broadcast
				if _, err := c.WaitFor(protocol.TypeShareLocation); err != nil {
					return err
				}

				out := NewOutput(cfg.Output)
				out.PrintMessage(fmt.Sprintf("Shared %s", location))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&location, "location", "", "Location name (required)")
	_ = cmd.MarkFlagRequired("location")

	return cmd
}

func newVisitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "visit <username>",
		Short: "Visit another online user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAuthedClient(func(c *Client) error {
				req := map[string]string{
					"type":           protocol.TypeVisitUser,
					"targetUsername": args[0],
				}
				if err := c.Send(req); err != nil {
					return err
				}

				out := NewOutput(cfg.Output)
				out.PrintMessage(fmt.Sprintf("Visited %s", args[0]))
				return nil
			})
		},
	}
}

func newGiftCmd() *cobra.Command {
	var gift string

	cmd := &cobra.Command{
		Use:   "gift <username>",
		Short: "Send a gift to another online user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !json.Valid([]byte(gift)) {
				return fmt.Errorf("--gift must be valid JSON")
			}

			return withAuthedClient(func(c *Client) error {
				req := map[string]any{
					"type":           protocol.TypeSendGift,
					"targetUsername": args[0],
					"gift":           json.RawMessage(gift),
				}
				if err := c.Send(req); err != nil {
					return err
				}

				out := NewOutput(cfg.Output)
				out.PrintMessage(fmt.Sprintf("Gift sent to %s", args[0]))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&gift, "gift", "", "Gift payload as JSON (required)")
	_ = cmd.MarkFlagRequired("gift")

	return cmd
}

func newFriendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "friend",
		Short: "Friend request commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "request <username>",
		Short: "Send a friend request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendDirected(protocol.TypeFriendRequest, args[0], "Friend request sent to %s")
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "accept <username>",
		Short: "Accept a friend request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendDirected(protocol.TypeFriendAccept, args[0], "Accepted friend request from %s")
		},
	})

	return cmd
}

func sendDirected(msgType, target, doneFormat string) error {
	return withAuthedClient(func(c *Client) error {
		req := map[string]string{
			"type":           msgType,
			"targetUsername": target,
		}
		if err := c.Send(req); err != nil {
			return err
		}

		out := NewOutput(cfg.Output)
		out.PrintMessage(fmt.Sprintf(doneFormat, target))
		return nil
	})
}

func newPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Measure a round trip to the server",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := Dial(cfg.ServerURL)
			if err != nil {
				return err
			}
			defer c.Close()

			req := map[string]string{"type": protocol.TypePing}
			var result protocol.Pong
			if err := c.Call(req, protocol.TypePong, &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(result)
			return nil
		},
	}
}
