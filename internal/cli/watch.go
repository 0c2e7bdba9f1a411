package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream live events from the server",
		Long: `Connect, resume the saved session and print every event the server
pushes: location shares, presence changes, visits, gifts and friend
activity.

Press Ctrl+C to disconnect.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchEvents(jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

func watchEvents(jsonOutput bool) error {
	c, err := Dial(cfg.ServerURL)
	if err != nil {
		return err
	}
	defer c.Close()

	if _, err := c.Authenticate(cfg.Token); err != nil {
		return err
	}

	if !jsonOutput {
		fmt.Println("Connected; watching for events")
	}

	// Close the connection on interrupt; the blocked read returns an
	// error and the loop exits
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-sigCh:
			c.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if !jsonOutput {
				fmt.Println("\nDisconnected")
			}
			return nil
		}
		printEvent(data, jsonOutput)
	}
}

func printEvent(data []byte, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(string(data))
		return
	}

	var envelope struct {
		Type string `json:"type"`
	}
	eventType := "unknown"
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Type != "" {
		eventType = envelope.Type
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")

	// Truncate long payloads for display
	displayData := string(data)
	if len(displayData) > 100 {
		displayData = displayData[:100] + "..."
	}
	displayData = strings.ReplaceAll(displayData, "\n", " ")

	fmt.Printf("[%s] %s: %s\n", timestamp, eventType, displayData)
}
