/* discord.go
 * Discord delivery adapter for reminders. The session sits behind a narrow interface so
 * tests can substitute a fake without a live gateway connection
 */

package notify

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// messageSender is the slice of the Discord session the notifier uses
type messageSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type DiscordNotifier struct {
	session   messageSender
	channelID string
	logger    zerolog.Logger
}

// NewDiscordNotifier builds a notifier posting to one channel. Message delivery is plain
// REST; no gateway connection is opened
func NewDiscordNotifier(token, channelID string, logger zerolog.Logger) (*DiscordNotifier, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("notify: creating discord session: %w", err)
	}
	return &DiscordNotifier{session: session, channelID: channelID, logger: logger}, nil
}

// NewDiscordNotifierWithSession is used by tests
func NewDiscordNotifierWithSession(session messageSender, channelID string, logger zerolog.Logger) *DiscordNotifier {
	return &DiscordNotifier{session: session, channelID: channelID, logger: logger}
}

func (n *DiscordNotifier) Notify(message string) error {
	_, err := n.session.ChannelMessageSend(n.channelID, message)
	if err != nil {
		return fmt.Errorf("notify: sending discord message: %w", err)
	}
	n.logger.Debug().Str("channel", n.channelID).Msg("reminder delivered")
	return nil
}
