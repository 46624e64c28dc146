package economy

import (
	"context"
	"fmt"
	"log"

	"StrawberryBot/bot"
	"StrawberryBot/store"
	"StrawberryBot/utils"

	"github.com/bwmarrin/discordgo"
)

// balanceEmbed builds the stats card shown by /strawberries and !strawberries.
func balanceEmbed(b *bot.Bot, name string, rec store.Record, rank int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🍓 %s's Strawberries", name),
		Color: utils.ColorEconomy,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Balance", Value: utils.Berries(rec.Strawberries), Inline: true},
			{Name: "Rank", Value: fmt.Sprintf("#%s", utils.FormatNumber(int64(rank))), Inline: true},
			{Name: "Streak", Value: fmt.Sprintf("🔥 %d days", rec.Streak), Inline: true},
		},
	}
	rules := b.Ledger.Rules()
	if rec.Streak > 1 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Streak Bonus",
			Value:  fmt.Sprintf("+%s per claim", utils.Berries(rules.Reward(rec.Streak)-rules.DailyReward)),
			Inline: true,
		})
	}
	if rec.GamesPlayed > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   "Games",
			Value:  fmt.Sprintf("🎰 %d played, %d won", rec.GamesPlayed, rec.GamesWon),
			Inline: true,
		})
	}
	return embed
}

func lookupBalance(ctx context.Context, b *bot.Bot, userID string) (store.Record, int, error) {
	rec, err := b.Ledger.Account(ctx, userID)
	if err != nil {
		return store.Record{}, 0, err
	}
	rank, err := b.Ledger.Rank(ctx, userID)
	if err != nil {
		return store.Record{}, 0, err
	}
	return rec, rank, nil
}

func StrawberriesSlash(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	target := utils.InteractionUser(i)
	opts := utils.OptionMap(i.ApplicationCommandData().Options)
	if opt, ok := opts["user"]; ok {
		target = utils.OptionUser(s, i, opt)
	}
	if target.Bot {
		utils.RespondError(s, i, "Bots don't collect strawberries!")
		return
	}

	rec, rank, err := lookupBalance(context.Background(), b, target.ID)
	if err != nil {
		log.Printf("Error checking balance for %s: %v", target.ID, err)
		utils.RespondError(s, i, "Failed to retrieve strawberry data!")
		return
	}
	utils.RespondEmbed(s, i, balanceEmbed(b, target.Username, rec, rank), false)
}

func Strawberries(b *bot.Bot, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	target := m.Author
	if len(args) >= 2 {
		userID, err := utils.ParseUserArg(args[1])
		if err != nil {
			s.ChannelMessageSend(m.ChannelID, "Invalid mention / use. Please use a proper mention (e.g., @username).")
			return
		}
		member, err := s.GuildMember(m.GuildID, userID)
		if err != nil || member == nil {
			s.ChannelMessageSend(m.ChannelID, "mentioned user is not in this server.")
			return
		}
		target = member.User
	}

	rec, rank, err := lookupBalance(context.Background(), b, target.ID)
	if err != nil {
		log.Printf("Error querying balance: %v", err)
		utils.SendError(s, m.ChannelID, utils.GenericError)
		return
	}
	s.ChannelMessageSendEmbed(m.ChannelID, balanceEmbed(b, target.Username, rec, rank))
}
