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

func dailyEmbed(b *bot.Bot, res ledger.DailyResult) *discordgo.MessageEmbed {
	embed := utils.SuccessEmbed("Daily Strawberries Claimed! 🍓",
		fmt.Sprintf("You received 🍓 **%s** strawberries!", utils.FormatNumber(res.Reward)))
	if res.Streak > 1 {
		bonus := res.Reward - b.Ledger.Rules().DailyReward
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "Streak", Value: fmt.Sprintf("🔥 %d days", res.Streak), Inline: true},
			&discordgo.MessageEmbedField{Name: "Bonus", Value: "+" + utils.Berries(bonus), Inline: true},
		)
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "New Balance", Value: utils.Berries(res.Balance), Inline: true,
	})
	return embed
}

// claim runs the daily claim and returns either an embed or a user-facing error.
func claim(b *bot.Bot, userID string) (*discordgo.MessageEmbed, string) {
	res, err := b.Ledger.ClaimDaily(context.Background(), userID)
	var cd *ledger.CooldownError
	switch {
	case errors.As(err, &cd):
		return nil, fmt.Sprintf("❌ You can claim again in %s", utils.FormatDuration(cd.Remaining))
	case err != nil:
		log.Printf("Error claiming daily for %s: %v", userID, err)
		return nil, "❌ Failed to claim daily reward!"
	}
	utils.LogComponent("economy", "User %s claimed %d (streak %d)", userID, res.Reward, res.Streak)
	return dailyEmbed(b, res), ""
}

func DailySlash(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	embed, errMsg := claim(b, utils.InteractionUser(i).ID)
	if errMsg != "" {
		utils.Respond(s, i, errMsg, true)
		return
	}
	utils.RespondEmbed(s, i, embed, false)
}

func Daily(b *bot.Bot, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	embed, errMsg := claim(b, m.Author.ID)
	if errMsg != "" {
		s.ChannelMessageSend(m.ChannelID, errMsg)
		return
	}
	s.ChannelMessageSendEmbed(m.ChannelID, embed)
}
