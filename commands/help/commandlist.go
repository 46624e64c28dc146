package help

import (
	"fmt"
	"log"

	"StrawberryBot/bot"
	"StrawberryBot/commands"
	"StrawberryBot/utils"

	"github.com/bwmarrin/discordgo"
)

const commandListPrefix = "cmdlist"

// commandPages builds one page per enabled category.
func commandPages(prefix string, f bot.FeatureConfig) []*discordgo.MessageEmbed {
	categories := enabledCategories(f)
	pages := make([]*discordgo.MessageEmbed, 0, len(categories))
	for n, category := range categories {
		embed := categoryEmbed(prefix, category, f)
		embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Page %d/%d", n+1, len(categories))}
		pages = append(pages, embed)
	}
	return pages
}

func CommandList(b *bot.Bot, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	prefix := b.Config.Prefix

	// If a category is specified, show only commands from that category
	if len(args) > 1 {
		category, ok := findCategory(b.Config.Features, args[1])
		if !ok {
			s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("Invalid category. Use `%scommandlist` to see all categories.", prefix))
			return
		}
		s.ChannelMessageSendEmbed(m.ChannelID, categoryEmbed(prefix, category, b.Config.Features))
		return
	}

	pages := commandPages(prefix, b.Config.Features)
	if len(pages) == 0 {
		s.ChannelMessageSend(m.ChannelID, "No commands available.")
		return
	}
	_, err := s.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{pages[0]},
		Components: commands.PageButtons(commandListPrefix, m.Author.ID, 1, len(pages)),
	})
	if err != nil {
		log.Printf("Error sending command list: %v", err)
	}
}

// CommandListButton flips pages for the user who asked for the list.
func CommandListButton(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	state, err := commands.ParsePageState(i.MessageComponentData().CustomID)
	if err != nil {
		return
	}
	if user := utils.InteractionUser(i); user == nil || user.ID != state.OwnerID {
		utils.Respond(s, i, "❌ Only the person who asked for this list can change pages.", true)
		return
	}

	pages := commandPages(b.Config.Prefix, b.Config.Features)
	if len(pages) == 0 {
		return
	}
	page := commands.ClampPage(state.Page, len(pages))
	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{pages[page-1]},
			Components: commands.PageButtons(commandListPrefix, state.OwnerID, page, len(pages)),
		},
	})
	if err != nil {
		log.Printf("Error editing command list: %v", err)
	}
}
