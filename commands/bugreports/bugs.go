package bugreports

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"StrawberryBot/bot"
	"StrawberryBot/bugs"
	"StrawberryBot/utils"

	"github.com/bwmarrin/discordgo"
)

const listLimit = 25

var gameChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "Roulette", Value: "roulette"},
	{Name: "Economy", Value: "economy"},
	{Name: "Other", Value: "other"},
}

func titleStatus(st bugs.Status) string {
	return utils.Title(string(st))
}

func relative(r bugs.Report) string {
	return fmt.Sprintf("<t:%d:R>", r.Timestamp.Unix())
}

// gameState snapshots what the bot knows about the reporter at report time.
func gameState(ctx context.Context, b *bot.Bot, userID, game string) map[string]string {
	state := make(map[string]string)
	if game == "roulette" {
		state["game_in_progress"] = strconv.FormatBool(b.Roulette.Playing(userID))
	}
	if game == "roulette" || game == "economy" {
		if rec, err := b.Ledger.Store().Get(ctx, userID); err == nil {
			state["balance"] = strconv.FormatInt(rec.Strawberries, 10)
			state["streak"] = strconv.Itoa(rec.Streak)
			state["games_played"] = strconv.Itoa(rec.GamesPlayed)
		}
	}
	if len(state) == 0 {
		return nil
	}
	return state
}

func submittedEmbed(r bugs.Report) *discordgo.MessageEmbed {
	embed := utils.NewEmbed("🐛 Bug Report Submitted",
		fmt.Sprintf("Thank you for reporting this bug! We'll investigate the issue.\nYour report ID is: `%s`", r.ID),
		utils.ColorInfo)
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Game", Value: utils.Title(r.GameType), Inline: true},
		{Name: "Description", Value: r.Description},
	}
	if len(r.GameState) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Game State Captured", Value: "✅ Current game state was recorded",
		})
	}
	return embed
}

func reportEmbed(r bugs.Report) *discordgo.MessageEmbed {
	embed := utils.NewEmbed("🐛 Bug Report "+r.ID, "", utils.ColorInfo)
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Reporter", Value: fmt.Sprintf("<@%s>", r.UserID), Inline: true},
		{Name: "Game", Value: utils.Title(r.GameType), Inline: true},
		{Name: "Status", Value: r.Status.Emoji() + " " + titleStatus(r.Status), Inline: true},
		{Name: "Reported", Value: relative(r), Inline: true},
		{Name: "Description", Value: r.Description},
	}
	if len(r.GameState) > 0 {
		keys := make([]string, 0, len(r.GameState))
		for k := range r.GameState {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var lines []string
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("%s: %s", k, r.GameState[k]))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Game State", Value: "```\n" + strings.Join(lines, "\n") + "\n```",
		})
	}
	if r.AdminNotes != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Admin Notes", Value: r.AdminNotes})
	}
	return embed
}

func listEmbed(reports []bugs.Report, status bugs.Status) *discordgo.MessageEmbed {
	desc := fmt.Sprintf("Found %d reports", len(reports))
	if status != "" {
		desc += " with status: " + string(status)
	}
	embed := utils.NewEmbed("🐛 Bug Reports", desc, utils.ColorInfo)
	for _, r := range reports[:min(listLimit, len(reports))] {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "Report " + r.ID,
			Value: fmt.Sprintf("By: <@%s>\nGame: %s\nStatus: %s %s\nReported: %s",
				r.UserID, utils.Title(r.GameType), r.Status.Emoji(), titleStatus(r.Status), relative(r)),
			Inline: true,
		})
	}
	if len(reports) > listLimit {
		embed.Footer = &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Showing %d/%d reports", listLimit, len(reports))}
	}
	return embed
}

func updatedEmbed(id string, status bugs.Status, notes string) *discordgo.MessageEmbed {
	embed := utils.SuccessEmbed(fmt.Sprintf("✅ Bug Report %s Updated", strings.ToUpper(id)), "")
	if status != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "New Status", Value: titleStatus(status), Inline: true})
	}
	if notes != "" {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Admin Notes", Value: notes})
	}
	return embed
}

func fixedNotice(r bugs.Report, notes string) *discordgo.MessageEmbed {
	embed := utils.SuccessEmbed("🐛 Bug Report Update", fmt.Sprintf("Your bug report `%s` has been marked as fixed!", r.ID))
	if notes != "" {
		embed.Fields = []*discordgo.MessageEmbedField{{Name: "Admin Notes", Value: notes}}
	}
	return embed
}

func stringOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt, ok := opts[name]; ok {
		return strings.TrimSpace(opt.StringValue())
	}
	return ""
}

func ReportSlash(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := utils.OptionMap(i.ApplicationCommandData().Options)
	user := utils.InteractionUser(i)
	game := stringOption(opts, "game")
	desc := stringOption(opts, "description")
	if desc == "" {
		utils.Respond(s, i, "❌ Please describe what happened!", true)
		return
	}

	report, err := b.Bugs.Create(user.ID, game, desc, gameState(context.Background(), b, user.ID, game))
	if err != nil {
		log.Printf("Error creating bug report: %v", err)
		utils.Respond(s, i, "❌ Failed to create bug report! Please try again.", true)
		return
	}
	utils.LogComponent("bugs", "Bug report %s created by user %s", report.ID, user.ID)
	utils.RespondEmbed(s, i, submittedEmbed(report), true)
}

func BugsSlash(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := utils.OptionMap(i.ApplicationCommandData().Options)

	if id := stringOption(opts, "report_id"); id != "" {
		report, err := b.Bugs.Get(id)
		if err != nil {
			utils.Respond(s, i, fmt.Sprintf("❌ Bug report `%s` not found!", id), true)
			return
		}
		utils.RespondEmbed(s, i, reportEmbed(report), false)
		return
	}

	var status bugs.Status
	if raw := stringOption(opts, "status"); raw != "" {
		st, err := bugs.ParseStatus(raw)
		if err != nil {
			utils.Respond(s, i, "❌ Unknown status!", true)
			return
		}
		status = st
	}
	reports := b.Bugs.List(status)
	if len(reports) == 0 {
		msg := "No bug reports found!"
		if status != "" {
			msg += fmt.Sprintf(" (with status: %s)", status)
		}
		utils.Respond(s, i, msg, true)
		return
	}
	utils.RespondEmbed(s, i, listEmbed(reports, status), false)
}

func UpdateBugSlash(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := utils.OptionMap(i.ApplicationCommandData().Options)
	id := stringOption(opts, "report_id")
	notes := stringOption(opts, "notes")

	var status bugs.Status
	if raw := stringOption(opts, "status"); raw != "" {
		st, err := bugs.ParseStatus(raw)
		if err != nil {
			utils.Respond(s, i, "❌ Unknown status!", true)
			return
		}
		status = st
	}
	if status == "" && notes == "" {
		utils.Respond(s, i, "❌ Please provide either a new status or notes to update!", true)
		return
	}

	report, prev, err := b.Bugs.Update(id, status, notes)
	switch {
	case errors.Is(err, bugs.ErrNotFound):
		utils.Respond(s, i, fmt.Sprintf("❌ Bug report `%s` not found!", id), true)
		return
	case err != nil:
		log.Printf("Error updating bug report: %v", err)
		utils.Respond(s, i, "❌ Failed to update bug report!", true)
		return
	}
	utils.RespondEmbed(s, i, updatedEmbed(report.ID, status, notes), false)

	if status == bugs.StatusFixed && prev != bugs.StatusFixed {
		notifyReporter(s, report, notes)
	}
}

// notifyReporter DMs the reporter. Failures are only logged.
func notifyReporter(s *discordgo.Session, r bugs.Report, notes string) {
	ch, err := s.UserChannelCreate(r.UserID)
	if err != nil {
		utils.LogDebug("Could not open DM with %s: %v", r.UserID, err)
		return
	}
	if _, err := s.ChannelMessageSendEmbed(ch.ID, fixedNotice(r, notes)); err != nil {
		utils.LogDebug("Could not notify %s about %s: %v", r.UserID, r.ID, err)
	}
}
