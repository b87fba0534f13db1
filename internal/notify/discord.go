package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/postline/postline/internal/logging"
	"github.com/postline/postline/internal/server/models"
)

// DiscordNotifier posts status changes to a single Discord channel.
// Delivery errors are logged and otherwise ignored.
type DiscordNotifier struct {
	session   *discordgo.Session
	channelID string
	log       logging.Logger
}

func NewDiscordNotifier(token, channelID string, log logging.Logger) (*DiscordNotifier, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return &DiscordNotifier{session: session, channelID: channelID, log: log}, nil
}

func (n *DiscordNotifier) PipelineChanged(ctx context.Context, p *models.Post, from, to models.Status, detail string) {
	msg := fmt.Sprintf("post `%s`: %s -> %s", p.ID, from, to)
	if detail != "" {
		msg += " (" + detail + ")"
	}
	if _, err := n.session.ChannelMessageSend(n.channelID, msg); err != nil {
		n.log.Warn(ctx, "failed to send discord notification", "post_id", p.ID, "error", err)
	}
}

func (n *DiscordNotifier) Close() error {
	return n.session.Close()
}
