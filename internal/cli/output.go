package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hikari-games/foxden-server/internal/model"
	"github.com/hikari-games/foxden-server/internal/protocol"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]any{
			"error": map[string]string{"message": err.Error()},
		})
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case protocol.LoginResult:
		o.printLoginResult(v)
	case protocol.GuestLoginResult:
		fmt.Printf("Guest: %s (%s)\n", v.Nickname, v.GuestID)
	case protocol.SessionAuthResult:
		fmt.Printf("Authenticated as %s\n", v.Nickname)
		o.printRewards(v.OfflineRewards)
	case protocol.OnlineUsers:
		o.printOnlineUsers(v)
	case protocol.Pong:
		fmt.Printf("Pong: %d\n", v.Timestamp)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printLoginResult(r protocol.LoginResult) {
	fmt.Printf("Logged in as %s\n", r.Nickname)
	if r.SessionID != "" {
		fmt.Printf("Session: %s\n", r.SessionID)
	}
	o.printRewards(r.OfflineRewards)
}

func (o *Output) printRewards(r *model.OfflineReward) {
	if r == nil {
		return
	}
	fmt.Printf("Offline rewards: %d sunlight, %d starlight (%.1fh away)\n",
		r.Sunlight, r.Starlight, r.OfflineHours)
}

func (o *Output) printOnlineUsers(u protocol.OnlineUsers) {
	fmt.Printf("Online (%d):\n", len(u.Users))
	for _, user := range u.Users {
		guestStr := ""
		if user.IsGuest {
			guestStr = " [guest]"
		}
		fmt.Printf("  - %s (%s)%s\n", user.Nickname, user.Username, guestStr)
	}
}
