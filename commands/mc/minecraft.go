package mc

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"StrawberryBot/bot"
	"StrawberryBot/minecraft"
	"StrawberryBot/utils"

	"github.com/bwmarrin/discordgo"
)

const (
	fieldLimit  = 1000
	rconTimeout = 15 * time.Second
)

var deniedMessages = map[string]string{
	"command":   "❌ Only administrators and the MC server owner can execute server commands!",
	"inventory": "❌ Only administrators and the MC server owner can view inventories!",
}

// canUse allows bot owners, the Minecraft server owner and guild administrators.
func canUse(b *bot.Bot, i *discordgo.InteractionCreate) bool {
	user := utils.InteractionUser(i)
	if user == nil {
		return false
	}
	if b.IsOwner(user.ID) || (b.Config.Minecraft.OwnerID != "" && user.ID == b.Config.Minecraft.OwnerID) {
		return true
	}
	return i.GuildID != "" && utils.HasPermission(i, discordgo.PermissionAdministrator)
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit - len("...")
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

func statusEmbed(addr, list string, now time.Time) *discordgo.MessageEmbed {
	embed := utils.NewEmbed("🎮 Minecraft Server Status", "", utils.ColorSuccess)
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Server Address", Value: fmt.Sprintf("`%s`", addr), Inline: true},
	}
	if strings.Contains(list, "There are") {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Players Online", Value: truncate(list, fieldLimit),
		})
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Last updated: " + now.Format("2006-01-02 15:04:05")}
	return embed
}

func commandEmbed(command, resp string) *discordgo.MessageEmbed {
	embed := utils.NewEmbed("🎮 Minecraft Command Executed", fmt.Sprintf("Command: `%s`", command), utils.ColorSuccess)
	value := "Command executed successfully (no output)"
	if resp != "" {
		value = "```" + truncate(resp, fieldLimit-6) + "```"
	}
	embed.Fields = []*discordgo.MessageEmbedField{{Name: "Response", Value: value}}
	return embed
}

func playerInfoEmbed(player string, info minecraft.PlayerInfo, found bool) *discordgo.MessageEmbed {
	embed := utils.NewEmbed("📊 Player Info: "+player, "", utils.ColorInfo)
	if !found {
		embed.Description = fmt.Sprintf("❌ Player %s not found or not online", player)
		return embed
	}
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Health", Value: info.Health, Inline: true},
		{Name: "Position", Value: info.Position, Inline: true},
		{Name: "Game Mode", Value: info.GameMode, Inline: true},
		{Name: "XP Level", Value: info.Level, Inline: true},
	}
	return embed
}

func inventoryEmbed(player string, inv minecraft.Inventory) *discordgo.MessageEmbed {
	embed := utils.NewEmbed(fmt.Sprintf("🎒 %s's Inventory", player), "", utils.ColorInfo)
	if inv.Empty() {
		embed.Description = "Empty inventory"
		return embed
	}
	for _, section := range inv.Sections() {
		for n, chunk := range minecraft.SplitField(section.Items, fieldLimit) {
			name := section.Name
			if n > 0 {
				name = "📦 " + section.Name + " (continued)"
			}
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: name, Value: chunk})
		}
	}
	return embed
}

// run executes one subcommand and returns the embed or a user-facing error.
func run(ctx context.Context, b *bot.Bot, sub string, opts map[string]*discordgo.ApplicationCommandInteractionDataOption, caller string) (*discordgo.MessageEmbed, string) {
	client := b.Minecraft
	switch sub {
	case "status":
		list, err := client.Status(ctx)
		if err != nil {
			log.Printf("Error getting server status: %v", err)
			return nil, "❌ Failed to get server status!"
		}
		return statusEmbed(client.Address(), list, time.Now()), ""

	case "command":
		command := opts["command"].StringValue()
		utils.LogComponent("minecraft", "Command requested by %s: %s", caller, command)
		resp, err := client.Command(ctx, command)
		if err != nil {
			log.Printf("Error executing Minecraft command: %v", err)
			return nil, "❌ Failed to execute command!"
		}
		return commandEmbed(command, resp), ""

	case "playerinfo":
		player := opts["player"].StringValue()
		info, err := client.PlayerInfo(ctx, player)
		switch {
		case errors.Is(err, minecraft.ErrInvalidPlayer):
			return nil, fmt.Sprintf("❌ %q is not a valid player name!", player)
		case errors.Is(err, minecraft.ErrPlayerNotFound):
			return playerInfoEmbed(player, info, false), ""
		case err != nil:
			log.Printf("Player info error for %s: %v", player, err)
			return nil, "❌ Failed to get player information!"
		}
		return playerInfoEmbed(player, info, true), ""

	case "inventory":
		player := opts["player"].StringValue()
		inv, err := client.Inventory(ctx, player)
		switch {
		case errors.Is(err, minecraft.ErrInvalidPlayer):
			return nil, fmt.Sprintf("❌ %q is not a valid player name!", player)
		case errors.Is(err, minecraft.ErrPlayerNotFound):
			return nil, fmt.Sprintf("❌ Player %s is not online!", player)
		case err != nil:
			log.Printf("Error viewing inventory: %v", err)
			return nil, "❌ Failed to view inventory! Check logs for details."
		}
		return inventoryEmbed(player, inv), ""
	}
	return nil, "❌ Unknown subcommand!"
}

// MinecraftSlash handles /mc.
func MinecraftSlash(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]

	if !canUse(b, i) {
		msg, ok := deniedMessages[sub.Name]
		if !ok {
			msg = "❌ Only administrators and the MC server owner can use this command!"
		}
		utils.Respond(s, i, msg, true)
		return
	}
	if b.Minecraft == nil {
		utils.Respond(s, i, "❌ Not connected to any Minecraft server!", true)
		return
	}
	if err := utils.Defer(s, i, true); err != nil {
		log.Printf("Error deferring /mc %s: %v", sub.Name, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), rconTimeout)
	defer cancel()
	embed, msg := run(ctx, b, sub.Name, utils.OptionMap(sub.Options), utils.InteractionUser(i).ID)
	if msg != "" {
		if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &msg}); err != nil {
			log.Printf("Error editing interaction response: %v", err)
		}
		return
	}
	utils.EditEmbed(s, i, embed)
}
