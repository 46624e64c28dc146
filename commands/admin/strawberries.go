package admin

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"StrawberryBot/bot"
	"StrawberryBot/ledger"
	"StrawberryBot/utils"

	"github.com/bwmarrin/discordgo"
)

const (
	defaultCleanupDays = 30
	cleanupExamples    = 5
)

func give(ctx context.Context, b *bot.Bot, user *discordgo.User, amount int64) (*discordgo.MessageEmbed, string) {
	if amount <= 0 {
		return nil, "❌ Amount must be positive!"
	}
	rec, err := b.Ledger.Deposit(ctx, user.ID, amount)
	if err != nil {
		log.Printf("Error giving strawberries: %v", err)
		return nil, "❌ Failed to give strawberries!"
	}
	embed := utils.SuccessEmbed("🎁 Strawberries Given",
		fmt.Sprintf("Given 🍓 **%s** to %s", utils.FormatNumber(amount), user.Mention()))
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "New Balance", Value: utils.Berries(rec.Strawberries), Inline: true},
	}
	return embed, ""
}

func take(ctx context.Context, b *bot.Bot, user *discordgo.User, amount int64) (*discordgo.MessageEmbed, string) {
	if amount <= 0 {
		return nil, "❌ Amount must be positive!"
	}
	rec, err := b.Ledger.Withdraw(ctx, user.ID, amount)
	switch {
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return nil, fmt.Sprintf("❌ %s doesn't have that many strawberries!", user.Mention())
	case err != nil:
		log.Printf("Error taking strawberries: %v", err)
		return nil, "❌ Failed to take strawberries!"
	}
	embed := utils.SuccessEmbed("🧺 Strawberries Taken",
		fmt.Sprintf("Took 🍓 **%s** from %s", utils.FormatNumber(amount), user.Mention()))
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "New Balance", Value: utils.Berries(rec.Strawberries), Inline: true},
	}
	return embed, ""
}

func set(ctx context.Context, b *bot.Bot, user *discordgo.User, amount int64) (*discordgo.MessageEmbed, string) {
	if amount < 0 {
		return nil, "❌ Amount cannot be negative!"
	}
	if _, err := b.Ledger.SetBalance(ctx, user.ID, amount); err != nil {
		log.Printf("Error setting strawberries: %v", err)
		return nil, "❌ Failed to set strawberries!"
	}
	return utils.SuccessEmbed("💫 Strawberries Set",
		fmt.Sprintf("Set %s's balance to 🍓 **%s**", user.Mention(), utils.FormatNumber(amount))), ""
}

func cleanupEmbed(removed []string) *discordgo.MessageEmbed {
	embed := utils.SuccessEmbed("🧹 Database Cleanup", fmt.Sprintf("Removed %d inactive users", len(removed)))
	if len(removed) == 0 {
		return embed
	}
	var users []string
	for _, id := range removed[:min(cleanupExamples, len(removed))] {
		users = append(users, fmt.Sprintf("<@%s>", id))
	}
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Examples", Value: strings.Join(users, "\n")},
	}
	if len(removed) > cleanupExamples {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("And %d more...", len(removed)-cleanupExamples)}
	}
	return embed
}

// authorized lets bot owners through even without the Administrator bit.
func authorized(b *bot.Bot, i *discordgo.InteractionCreate) bool {
	user := utils.InteractionUser(i)
	return user != nil && (b.IsOwner(user.ID) || utils.HasPermission(i, discordgo.PermissionAdministrator))
}

// AdminSlash routes the /admin subcommands.
func AdminSlash(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if !authorized(b, i) {
		utils.RespondError(s, i, "You are not authorized to use this command.")
		return
	}
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return
	}
	sub := data.Options[0]
	opts := utils.OptionMap(sub.Options)
	ctx := context.Background()
	caller := utils.InteractionUser(i).ID

	if sub.Name == "cleanup" {
		days := defaultCleanupDays
		if opt, ok := opts["days"]; ok {
			days = int(opt.IntValue())
		}
		if days <= 0 {
			utils.Respond(s, i, "❌ Days must be positive!", true)
			return
		}
		if err := utils.Defer(s, i, true); err != nil {
			log.Printf("Error deferring cleanup: %v", err)
			return
		}
		removed, err := b.Ledger.Cleanup(ctx, days)
		if err != nil {
			log.Printf("Error cleaning up users: %v", err)
			utils.EditEmbed(s, i, utils.ErrorEmbed("Failed to clean up users!"))
			return
		}
		utils.LogComponent("admin", "Admin %s cleaned up %d inactive users", caller, len(removed))
		utils.EditEmbed(s, i, cleanupEmbed(removed))
		return
	}

	user := utils.OptionUser(s, i, opts["user"])
	if user == nil || opts["amount"] == nil {
		utils.RespondError(s, i, "Usage: /admin "+sub.Name+" user amount")
		return
	}
	amount := opts["amount"].IntValue()

	var (
		embed *discordgo.MessageEmbed
		msg   string
	)
	switch sub.Name {
	case "give":
		embed, msg = give(ctx, b, user, amount)
	case "take":
		embed, msg = take(ctx, b, user, amount)
	case "set":
		embed, msg = set(ctx, b, user, amount)
	default:
		return
	}
	if msg != "" {
		utils.Respond(s, i, msg, true)
		return
	}
	utils.LogComponent("admin", "Admin %s: %s %d strawberries for %s", caller, sub.Name, amount, user.ID)
	utils.RespondEmbed(s, i, embed, false)
}
