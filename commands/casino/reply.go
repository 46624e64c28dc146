package casino

import (
	"StrawberryBot/utils"

	"github.com/bwmarrin/discordgo"
)

// reply abstracts where a game renders: an interaction response or a plain
// channel message for prefix commands.
type reply interface {
	send(embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error
	edit(embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error
}

// interactionAPI is the slice of *discordgo.Session an interaction reply uses.
type interactionAPI interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type interactionReply struct {
	s interactionAPI
	i *discordgo.InteractionCreate
	// update answers a button click by rewriting the message it sits on.
	update bool
	// deferred is set once the interaction has been acknowledged; later
	// sends edit the deferred response.
	deferred bool
}

// acknowledge answers the interaction before any store work runs.
func (r *interactionReply) acknowledge() error {
	var err error
	if r.update {
		err = r.s.InteractionRespond(r.i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredMessageUpdate,
		})
	} else {
		err = utils.Defer(r.s, r.i, false)
	}
	if err == nil {
		r.deferred = true
	}
	return err
}

func (r *interactionReply) send(embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	if r.deferred {
		return r.edit(embed, components)
	}
	typ := discordgo.InteractionResponseChannelMessageWithSource
	if r.update {
		typ = discordgo.InteractionResponseUpdateMessage
	}
	return r.s.InteractionRespond(r.i.Interaction, &discordgo.InteractionResponse{
		Type: typ,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		},
	})
}

func (r *interactionReply) edit(embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	embeds := []*discordgo.MessageEmbed{embed}
	_, err := r.s.InteractionResponseEdit(r.i.Interaction, &discordgo.WebhookEdit{
		Embeds:     &embeds,
		Components: &components,
	})
	return err
}

type channelReply struct {
	s         *discordgo.Session
	channelID string
	messageID string
}

func (r *channelReply) send(embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	msg, err := r.s.ChannelMessageSendComplex(r.channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	})
	if err != nil {
		return err
	}
	r.messageID = msg.ID
	return nil
}

func (r *channelReply) edit(embed *discordgo.MessageEmbed, components []discordgo.MessageComponent) error {
	embeds := []*discordgo.MessageEmbed{embed}
	_, err := r.s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         r.messageID,
		Channel:    r.channelID,
		Embeds:     &embeds,
		Components: &components,
	})
	return err
}
