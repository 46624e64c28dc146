package admin

import (
	"StrawberryBot/commands"

	"github.com/bwmarrin/discordgo"
)

var (
	manageMessages int64 = discordgo.PermissionManageMessages
	administrator  int64 = discordgo.PermissionAdministrator

	minPurge  = 1.0
	maxPurge  = float64(maxPurgeAmount)
	minAmount = 1.0
	zero      = 0.0
	minDays   = 1.0
)

func userOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: description,
		Required:    true,
	}
}

func init() {
	module := &commands.ModuleInfo{
		Name:        "Admin",
		Description: "Server administration and strawberry management",
		Category:    "Admin",
		Feature:     "admin",
		Commands: []commands.CommandInfo{
			{
				Name:        "purge",
				Aliases:     []string{"clear"},
				Description: "Delete recent messages, optionally only from one user",
				Usage:       "!purge [amount] [@user]",
				Category:    "Admin",
			},
		},
		SlashCommands: []commands.SlashCommandInfo{
			{
				Name:               "purge",
				Description:        "Clean up messages in this channel",
				DefaultPermissions: &manageMessages,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "amount",
						Description: "Number of messages to delete (default: 100)",
						MinValue:    &minPurge,
						MaxValue:    maxPurge,
					},
					{
						Type:        discordgo.ApplicationCommandOptionUser,
						Name:        "user",
						Description: "Only delete messages from this user (optional)",
					},
				},
				Handler: PurgeSlash,
			},
			{
				Name:               "admin",
				Description:        "Strawberry administration",
				DefaultPermissions: &administrator,
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "give",
						Description: "Give strawberries to a user",
						Options: []*discordgo.ApplicationCommandOption{
							userOption("The user to give strawberries to"),
							{Type: discordgo.ApplicationCommandOptionInteger, Name: "amount", Description: "Amount of strawberries to give", Required: true, MinValue: &minAmount},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "take",
						Description: "Take strawberries from a user",
						Options: []*discordgo.ApplicationCommandOption{
							userOption("The user to take strawberries from"),
							{Type: discordgo.ApplicationCommandOptionInteger, Name: "amount", Description: "Amount of strawberries to take", Required: true, MinValue: &minAmount},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "set",
						Description: "Set a user's strawberry balance",
						Options: []*discordgo.ApplicationCommandOption{
							userOption("The user to set strawberries for"),
							{Type: discordgo.ApplicationCommandOptionInteger, Name: "amount", Description: "Amount to set their strawberries to", Required: true, MinValue: &zero},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "cleanup",
						Description: "Remove inactive users from the database",
						Options: []*discordgo.ApplicationCommandOption{
							{Type: discordgo.ApplicationCommandOptionInteger, Name: "days", Description: "Number of days of inactivity (default: 30)", MinValue: &minDays},
						},
					},
				},
				Handler: AdminSlash,
			},
		},
	}

	commands.RegisterModule(module)

	commands.RegisterCommand("purge", Purge, "clear")
}
