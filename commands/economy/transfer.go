package economy

import (
	"context"
	"errors"
	"fmt"
	"log"

	"StrawberryBot/bot"
	"StrawberryBot/ledger"
	"StrawberryBot/utils"

	"github.com/bwmarrin/discordgo"
)

// transfer moves strawberries and returns either the success embed or a
// user-facing error message.
func transfer(b *bot.Bot, from *discordgo.User, to *discordgo.User, amount int64) (*discordgo.MessageEmbed, string) {
	switch {
	case amount <= 0:
		return nil, "❌ Amount must be positive!"
	case to.Bot:
		return nil, "❌ You can't transfer strawberries to bots!"
	case to.ID == from.ID:
		return nil, "❌ You can't transfer strawberries to yourself!"
	}

	sender, receiver, err := b.Ledger.Transfer(context.Background(), from.ID, to.ID, amount)
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		utils.LogWarn("Failed transfer attempt from %s - insufficient funds", from.ID)
		return nil, "❌ Insufficient strawberries for transfer!"
	case err != nil:
		log.Printf("Error transferring strawberries: %v", err)
		return nil, "❌ Failed to transfer strawberries!"
	}

	utils.LogComponent("economy", "Transferred %d strawberries from %s to %s", amount, from.ID, to.ID)
	embed := utils.SuccessEmbed("Transfer Successful! 🍓",
		fmt.Sprintf("Transferred 🍓 **%s** strawberries to <@%s>!", utils.FormatNumber(amount), to.ID))
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Your New Balance", Value: utils.Berries(sender.Strawberries), Inline: true},
		{Name: fmt.Sprintf("%s's New Balance", to.Username), Value: utils.Berries(receiver.Strawberries), Inline: true},
	}
	return embed, ""
}

func TransferSlash(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := utils.OptionMap(i.ApplicationCommandData().Options)
	to := utils.OptionUser(s, i, opts["user"])
	if to == nil || opts["amount"] == nil {
		utils.RespondError(s, i, "Usage: /transfer user amount")
		return
	}

	embed, errMsg := transfer(b, utils.InteractionUser(i), to, opts["amount"].IntValue())
	if errMsg != "" {
		utils.Respond(s, i, errMsg, true)
		return
	}
	utils.RespondEmbed(s, i, embed, false)
}

func Transfer(b *bot.Bot, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) < 3 {
		s.ChannelMessageSend(m.ChannelID, "Usage: !transfer <recipient> <amount>")
		return
	}

	// Extract and validate the recipient mention
	recipientID, err := utils.ExtractUserID(args[1])
	if err != nil {
		s.ChannelMessageSend(m.ChannelID, "Invalid mention. Please use a proper mention (e.g., @username).")
		return
	}
	member, err := s.GuildMember(m.GuildID, recipientID)
	if err != nil || member == nil {
		s.ChannelMessageSend(m.ChannelID, "User not found. Please check the mention.")
		return
	}

	amount, err := utils.ParseAmount(args[2])
	if err != nil {
		s.ChannelMessageSend(m.ChannelID, "Amount must be greater than 0.")
		return
	}

	embed, errMsg := transfer(b, m.Author, member.User, amount)
	if errMsg != "" {
		s.ChannelMessageSend(m.ChannelID, errMsg)
		return
	}
	s.ChannelMessageSendEmbed(m.ChannelID, embed)
}
