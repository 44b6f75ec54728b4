package alert

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// discordSender abstracts the single Discord API call we use, enabling test
// mocks.
type discordSender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Discord delivers alerts to a channel via bot-token REST calls. No gateway
// connection is opened; sending messages only needs the HTTP API.
type Discord struct {
	sender    discordSender
	channelID string
}

// NewDiscord creates a Discord notifier.
func NewDiscord(botToken, channelID string) (*Discord, error) {
	if botToken == "" || channelID == "" {
		return nil, fmt.Errorf("alert: discord: bot token and channel ID are required")
	}
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("alert: discord: %w", err)
	}
	return &Discord{sender: session, channelID: channelID}, nil
}

// Notify implements Notifier.
func (d *Discord) Notify(ctx context.Context, title, body string) error {
	content := fmt.Sprintf("**%s**\n%s", title, body)
	if _, err := d.sender.ChannelMessageSend(d.channelID, content, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("alert: discord: %w", err)
	}
	return nil
}
