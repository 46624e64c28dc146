package casino

import (
	"strings"

	"StrawberryBot/commands"
	"StrawberryBot/games"

	"github.com/bwmarrin/discordgo"
)

var minBet = 1.0

func oddsNotes() string {
	var lines []string
	for _, o := range games.OddsTable() {
		lines = append(lines, o.String())
	}
	return strings.Join(lines, "\n")
}

func init() {
	module := &commands.ModuleInfo{
		Name:        "Games",
		Description: "Gamble your strawberries",
		Category:    "Games",
		Feature:     "games",
		Commands: []commands.CommandInfo{
			{
				Name:        "roulette",
				Aliases:     []string{"bet", "spin"},
				Description: "Bet strawberries on red, black, green or a number",
				Usage:       "!roulette <bet> [red|black|green|0-36]",
				Category:    "Games",
				Notes:       oddsNotes(),
			},
			{
				Name:        "odds",
				Description: "Show roulette payouts and odds",
				Usage:       "!odds",
				Category:    "Games",
			},
		},
		SlashCommands: []commands.SlashCommandInfo{
			{
				Name:        "roulette",
				Description: "Play roulette with your strawberries",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "bet",
						Description: "Amount of strawberries to bet",
						Required:    true,
						MinValue:    &minBet,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "choice",
						Description: "red, black, green or a number 0-36 (pick with buttons if omitted)",
					},
				},
				Handler: RouletteSlash,
			},
		},
		Components: []commands.ComponentInfo{
			{Prefix: roulettePrefix, Handler: RouletteButton},
		},
	}

	commands.RegisterModule(module)

	commands.RegisterCommand("roulette", Roulette, "bet", "spin")
	commands.RegisterCommand("odds", Odds)
}
