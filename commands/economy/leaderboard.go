package economy

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	"StrawberryBot/bot"
	"StrawberryBot/commands"
	"StrawberryBot/ledger"
	"StrawberryBot/store"
	"StrawberryBot/utils"

	"github.com/bwmarrin/discordgo"
)

const (
	leaderboardPrefix = "leaderboard"
	perPage           = 10
)

func medal(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return "👑"
	}
}

// leaderboardEmbed renders one page of the (already sorted) board. The
// returned page is clamped into range.
func leaderboardEmbed(board []store.Record, page, players int) (*discordgo.MessageEmbed, int, int) {
	total := commands.TotalPages(len(board), perPage)
	page = commands.ClampPage(page, total)
	start, end := commands.PageBounds(page, perPage, len(board))

	var lines []string
	for idx, rec := range board[start:end] {
		rank := start + idx + 1
		lines = append(lines, fmt.Sprintf("%s **#%d** <@%s>: %s", medal(rank), rank, rec.UserID, utils.Berries(rec.Strawberries)))
	}
	desc := strings.Join(lines, "\n")
	if desc == "" {
		desc = "Nobody has any strawberries yet. Try `/daily`!"
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🍓 Strawberry Leaderboard",
		Description: desc,
		Color:       utils.ColorEconomy,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Page %d/%d • Total Players: %s", page, total, utils.FormatNumber(int64(players))),
		},
	}
	return embed, page, total
}

func loadBoard(b *bot.Bot) ([]store.Record, int, error) {
	ctx := context.Background()
	board, err := b.Ledger.Leaderboard(ctx, ledger.LeaderboardSize)
	if err != nil {
		return nil, 0, err
	}
	players, err := b.Ledger.Players(ctx)
	if err != nil {
		return nil, 0, err
	}
	return board, players, nil
}

func LeaderboardSlash(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	page := 1
	if opt, ok := utils.OptionMap(i.ApplicationCommandData().Options)["page"]; ok {
		page = int(opt.IntValue())
	}
	if page < 1 {
		utils.Respond(s, i, "❌ Page number must be positive!", true)
		return
	}

	board, players, err := loadBoard(b)
	if err != nil {
		log.Printf("Error displaying leaderboard: %v", err)
		utils.Respond(s, i, "❌ Failed to retrieve leaderboard!", true)
		return
	}

	embed, page, total := leaderboardEmbed(board, page, players)
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: commands.PageButtons(leaderboardPrefix, utils.InteractionUser(i).ID, page, total),
		},
	})
	if err != nil {
		log.Printf("Error responding to interaction: %v", err)
	}
}

// LeaderboardButton flips pages. Only the user who opened the board may page it.
func LeaderboardButton(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	state, err := commands.ParsePageState(i.MessageComponentData().CustomID)
	if err != nil {
		return
	}
	if user := utils.InteractionUser(i); user == nil || user.ID != state.OwnerID {
		utils.Respond(s, i, "❌ Only the person who opened this leaderboard can change pages.", true)
		return
	}

	board, players, err := loadBoard(b)
	if err != nil {
		log.Printf("Error displaying leaderboard: %v", err)
		utils.Respond(s, i, "❌ Failed to retrieve leaderboard!", true)
		return
	}

	embed, page, total := leaderboardEmbed(board, state.Page, players)
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: commands.PageButtons(leaderboardPrefix, state.OwnerID, page, total),
		},
	})
	if err != nil {
		log.Printf("Error editing leaderboard: %v", err)
	}
}

func Leaderboard(b *bot.Bot, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	page := 1
	if len(args) >= 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			s.ChannelMessageSend(m.ChannelID, "❌ Page number must be positive!")
			return
		}
		page = n
	}

	board, players, err := loadBoard(b)
	if err != nil {
		log.Printf("Error displaying leaderboard: %v", err)
		utils.SendError(s, m.ChannelID, "Failed to retrieve leaderboard!")
		return
	}

	embed, page, total := leaderboardEmbed(board, page, players)
	_, err = s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: commands.PageButtons(leaderboardPrefix, m.Author.ID, page, total),
	})
	if err != nil {
		log.Printf("Error sending leaderboard: %v", err)
	}
}
