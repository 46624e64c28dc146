package commands

import (
	"fmt"
	"log"
	"runtime/debug"
	"strings"

	"StrawberryBot/bot"
	"StrawberryBot/utils"

	"github.com/bwmarrin/discordgo"
)

// ParseCommand splits a prefixed message into the resolved command name and
// its arguments. args[0] is the command token itself.
func ParseCommand(prefix, content string) (string, []string, bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", nil, false
	}
	args := strings.Fields(strings.TrimPrefix(content, prefix))
	if len(args) == 0 {
		return "", nil, false
	}
	return ResolveCommand(args[0]), args, true
}

func recoverHandler(what string) {
	if r := recover(); r != nil {
		log.Printf("Panic in %s: %v\n%s", what, r, debug.Stack())
	}
}

// HandleMessage dispatches prefix commands
func HandleMessage(b *bot.Bot) func(*discordgo.Session, *discordgo.MessageCreate) {
	return func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.Bot {
			return
		}
		// Prevent commands from being used in DMs
		if m.GuildID == "" {
			return
		}

		name, args, ok := ParseCommand(b.Config.Prefix, m.Content)
		if !ok {
			return
		}
		handler, ok := CommandMap[name]
		if !ok {
			return
		}
		if !ModuleEnabled(b.Config.Features, GetModuleByCommand(name)) {
			return
		}
		if allowed, wait := b.Limiter.Allow(m.Author.ID, name); !allowed {
			s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("⏳ Slow down! Try again in %s.", utils.FormatDuration(wait)))
			return
		}

		defer recoverHandler("command " + name)
		utils.LogDebug("Prefix command %s from %s", name, m.Author.ID)
		handler(b, s, m, args)
	}
}

// HandleInteraction dispatches slash commands and button clicks
func HandleInteraction(b *bot.Bot) func(*discordgo.Session, *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			name := i.ApplicationCommandData().Name
			handler, ok := SlashCommandHandlers[name]
			if !ok {
				return
			}
			if !ModuleEnabled(b.Config.Features, GetModuleBySlash(name)) {
				utils.RespondError(s, i, "This feature is currently disabled.")
				return
			}
			user := utils.InteractionUser(i)
			if user == nil {
				return
			}
			if allowed, wait := b.Limiter.Allow(user.ID, name); !allowed {
				utils.RespondError(s, i, fmt.Sprintf("⏳ Slow down! Try again in %s.", utils.FormatDuration(wait)))
				return
			}

			defer recoverHandler("slash command " + name)
			utils.LogDebug("Slash command /%s from %s", name, user.ID)
			handler(b, s, i)

		case discordgo.InteractionMessageComponent:
			prefix, _, _ := strings.Cut(i.MessageComponentData().CustomID, ":")
			handler, ok := ComponentHandlers[prefix]
			if !ok {
				return
			}
			if !ModuleEnabled(b.Config.Features, GetModuleByComponent(prefix)) {
				return
			}
			defer recoverHandler("component " + prefix)
			handler(b, s, i)
		}
	}
}
