package economy

import (
	"StrawberryBot/commands"

	"github.com/bwmarrin/discordgo"
)

var minAmount = 1.0

func init() {
	module := &commands.ModuleInfo{
		Name:        "Economy",
		Description: "Strawberry balances, daily rewards, transfers and the leaderboard",
		Category:    "Economy",
		Feature:     "economy",
		Commands: []commands.CommandInfo{
			{
				Name:        "strawberries",
				Aliases:     []string{"bal", "balance", "sb"},
				Description: "Check strawberry balance and stats",
				Usage:       "!strawberries [@user]",
				Category:    "Economy",
			},
			{
				Name:        "daily",
				Description: "Claim your daily strawberry reward",
				Usage:       "!daily",
				Category:    "Economy",
			},
			{
				Name:        "transfer",
				Aliases:     []string{"pay"},
				Description: "Transfer strawberries to another user",
				Usage:       "!transfer @user <amount>",
				Category:    "Economy",
			},
			{
				Name:        "leaderboard",
				Aliases:     []string{"lb", "top"},
				Description: "View the strawberry leaderboard",
				Usage:       "!leaderboard [page]",
				Category:    "Economy",
			},
		},
		SlashCommands: []commands.SlashCommandInfo{
			{
				Name:        "strawberries",
				Description: "Check strawberry balance and stats",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "The user to check (optional)"},
				},
				Handler: StrawberriesSlash,
			},
			{
				Name:        "daily",
				Description: "Claim your daily strawberry reward",
				Handler:     DailySlash,
			},
			{
				Name:        "transfer",
				Description: "Transfer strawberries to another user",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "The user to transfer strawberries to", Required: true},
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "amount", Description: "Amount of strawberries to transfer", Required: true, MinValue: &minAmount},
				},
				Handler: TransferSlash,
			},
			{
				Name:        "leaderboard",
				Description: "View the strawberry leaderboard",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "page", Description: "Page number to view (default: 1)"},
				},
				Handler: LeaderboardSlash,
			},
		},
		Components: []commands.ComponentInfo{
			{Prefix: leaderboardPrefix, Handler: LeaderboardButton},
		},
	}

	commands.RegisterModule(module)

	// Register command handlers
	commands.RegisterCommand("strawberries", Strawberries, "bal", "balance", "sb")
	commands.RegisterCommand("daily", Daily)
	commands.RegisterCommand("transfer", Transfer, "pay")
	commands.RegisterCommand("leaderboard", Leaderboard, "lb", "top")
}
