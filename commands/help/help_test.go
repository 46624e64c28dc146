package help

import (
	"fmt"
	"strings"
	"testing"

	"StrawberryBot/bot"
	"StrawberryBot/commands"

	"github.com/bwmarrin/discordgo"
)

func init() {
	commands.RegisterModule(&commands.ModuleInfo{
		Name:     "Spinner",
		Category: "Games",
		Feature:  "games",
		Commands: []commands.CommandInfo{{
			Name: "whirl", Aliases: []string{"wh"}, Description: "Spin it", Usage: "!whirl <bet>",
			Category: "Games", Notes: "Red / Black: 48.6% chance, 2x payout",
		}},
		SlashCommands: []commands.SlashCommandInfo{{
			Name: "whirl", Description: "Spin it",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "bet", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "choice"},
			},
		}},
	})
	commands.RegisterModule(&commands.ModuleInfo{
		Name:     "Tools",
		Category: "Support",
		SlashCommands: []commands.SlashCommandInfo{{
			Name: "tool", Description: "Server tools",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "status"},
				{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "command"},
			},
		}},
	})
	commands.RegisterCommand("whirl", nil, "wh")
}

func allOn() bot.FeatureConfig {
	return bot.FeatureConfig{Economy: true, Games: true, Voice: true, Admin: true, Minecraft: true, BugReports: true}
}

func fieldValue(embed *discordgo.MessageEmbed, name string) string {
	for _, f := range embed.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

func TestCommandEmbed(t *testing.T) {
	embed, ok := commandEmbed("?", "wh", allOn())
	if !ok {
		t.Fatal("alias should resolve")
	}
	if embed.Title != "Help: whirl" || fieldValue(embed, "Usage") != "`?whirl <bet>`" {
		t.Fatalf("unexpected embed %+v", embed)
	}
	if fieldValue(embed, "Aliases") != "wh" || !strings.Contains(fieldValue(embed, "Details"), "2x payout") {
		t.Fatalf("missing aliases or details in %+v", embed.Fields)
	}

	embed, ok = commandEmbed("!", "/tool", allOn())
	if !ok || fieldValue(embed, "Usage") != "`/tool status|command`" {
		t.Fatalf("unexpected slash help %+v", embed)
	}

	if _, ok := commandEmbed("!", "whirl", bot.FeatureConfig{}); ok {
		t.Fatal("disabled modules should be hidden")
	}
	if _, ok := commandEmbed("!", "nope", allOn()); ok {
		t.Fatal("unknown command should not be found")
	}
}

func TestSlashUsage(t *testing.T) {
	got := slashUsage(commands.SlashCommandInfo{
		Name: "whirl",
		Options: []*discordgo.ApplicationCommandOption{
			{Name: "bet", Required: true},
			{Name: "choice"},
		},
	})
	if got != "/whirl <bet> [choice]" {
		t.Fatalf("unexpected usage %q", got)
	}
	if got := slashUsage(commands.SlashCommandInfo{Name: "daily"}); got != "/daily" {
		t.Fatalf("unexpected usage %q", got)
	}
}

func TestLookup(t *testing.T) {
	embed, msg := lookup("!", "", allOn())
	if msg != "" || fieldValue(embed, "Games") == "" || fieldValue(embed, "Support") != "`/tool`" {
		t.Fatalf("unexpected overview %+v", embed)
	}

	embed, msg = lookup("!", "games", allOn())
	if msg != "" || embed.Title != "Commands - Games" {
		t.Fatalf("unexpected category page %q %+v", msg, embed)
	}
	if fieldValue(embed, "!whirl (Aliases: wh)") != "Spin it" {
		t.Fatalf("missing whirl in %+v", embed.Fields)
	}

	if _, msg := lookup("!", "games", bot.FeatureConfig{}); msg != "Command `games` not found." {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestCommandPages(t *testing.T) {
	pages := commandPages("!", allOn())
	if len(pages) != len(enabledCategories(allOn())) || len(pages) < 2 {
		t.Fatalf("expected one page per category, got %d", len(pages))
	}
	if want := fmt.Sprintf("Page 1/%d", len(pages)); pages[0].Footer.Text != want {
		t.Fatalf("unexpected footer %q", pages[0].Footer.Text)
	}

	var off bot.FeatureConfig
	for _, page := range commandPages("!", off) {
		if page.Title == "Commands - Games" {
			t.Fatal("disabled categories should not get a page")
		}
	}
}
