package utils

import (
	"log"

	"github.com/bwmarrin/discordgo"
)

const (
	ColorSuccess = 0x2ecc71
	ColorError   = 0xe74c3c
	ColorInfo    = 0x3498db
	ColorWarning = 0xf1c40f
	ColorEconomy = 0xe91e63
)

const GenericError = "An error occurred. Please try again."

func NewEmbed(title, description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
	}
}

func ErrorEmbed(description string) *discordgo.MessageEmbed {
	return NewEmbed("❌ Error", description, ColorError)
}

func SuccessEmbed(title, description string) *discordgo.MessageEmbed {
	return NewEmbed(title, description, ColorSuccess)
}

// Respond sends a plain interaction reply.
func Respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Content: content}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		log.Printf("Error responding to interaction: %v", err)
	}
}

// RespondEmbed sends an embed interaction reply.
func RespondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) {
	data := &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
	if err != nil {
		log.Printf("Error responding to interaction: %v", err)
	}
}

// RespondError replies with an ephemeral error embed.
func RespondError(s *discordgo.Session, i *discordgo.InteractionCreate, description string) {
	RespondEmbed(s, i, ErrorEmbed(description), true)
}

// Defer acknowledges a slow interaction; follow up with EditEmbed.
// InteractionResponder is the part of *discordgo.Session that Defer needs.
type InteractionResponder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

func Defer(s InteractionResponder, i *discordgo.InteractionCreate, ephemeral bool) error {
	resp := &discordgo.InteractionResponse{Type: discordgo.InteractionResponseDeferredChannelMessageWithSource}
	if ephemeral {
		resp.Data = &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral}
	}
	return s.InteractionRespond(i.Interaction, resp)
}

// EditEmbed replaces the (possibly deferred) interaction reply.
func EditEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, components ...discordgo.MessageComponent) {
	embeds := []*discordgo.MessageEmbed{embed}
	edit := &discordgo.WebhookEdit{Embeds: &embeds}
	if components != nil {
		edit.Components = &components
	}
	if _, err := s.InteractionResponseEdit(i.Interaction, edit); err != nil {
		log.Printf("Error editing interaction response: %v", err)
	}
}

// EmbedSender is the part of *discordgo.Session that SendError needs.
type EmbedSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// SendError posts an error embed to a channel, for prefix commands.
func SendError(s EmbedSender, channelID, description string) {
	if _, err := s.ChannelMessageSendEmbed(channelID, ErrorEmbed(description)); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}
