package discord

import (
	"bytes"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/zalando/go-keyring"

	"korzeterm/src/config"
)

const (
	serviceName = "korzeterm"
	tokenKey    = "discord-token"
)

// Bot posts terminal snapshots to a Discord channel. The bot token
// lives in the system keyring, never in the config file.
type Bot struct {
	session   *discordgo.Session
	channelID string
}

// StoreToken saves the bot token in the system keyring.
func StoreToken(token string) error {
	return keyring.Set(serviceName, tokenKey, token)
}

// DeleteToken removes the bot token from the system keyring.
func DeleteToken() error {
	return keyring.Delete(serviceName, tokenKey)
}

// NewBot creates a bot for the configured channel, reading the token
// from the keyring.
func NewBot(cfg *config.DiscordConfig) (*Bot, error) {
	if cfg.ChannelID == "" {
		return nil, fmt.Errorf("discord: no channel configured")
	}

	token, err := keyring.Get(serviceName, tokenKey)
	if err != nil {
		return nil, fmt.Errorf("discord token from keyring: %w", err)
	}

	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	return &Bot{
		session:   session,
		channelID: cfg.ChannelID,
	}, nil
}

// Connect opens the gateway connection.
func (b *Bot) Connect() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("discord connect: %w", err)
	}
	return nil
}

// Disconnect closes the gateway connection.
func (b *Bot) Disconnect() error {
	return b.session.Close()
}

// PostSnapshot uploads a PNG snapshot to the configured channel.
func (b *Bot) PostSnapshot(name string, pngData []byte) error {
	_, err := b.session.ChannelFileSend(b.channelID, name+".png", bytes.NewReader(pngData))
	if err != nil {
		return fmt.Errorf("discord upload: %w", err)
	}
	return nil
}
