package bugreports

import (
	"StrawberryBot/bugs"
	"StrawberryBot/commands"

	"github.com/bwmarrin/discordgo"
)

var administrator int64 = discordgo.PermissionAdministrator

func statusChoices() []*discordgo.ApplicationCommandOptionChoice {
	var choices []*discordgo.ApplicationCommandOptionChoice
	for _, st := range bugs.Statuses {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: titleStatus(st), Value: string(st)})
	}
	return choices
}

func init() {
	module := &commands.ModuleInfo{
		Name:        "Bug Reports",
		Description: "Report and track game bugs",
		Category:    "Support",
		Feature:     "bugs",
		SlashCommands: []commands.SlashCommandInfo{
			{
				Name:        "report",
				Description: "Report a bug in a game",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "game",
						Description: "The type of game where the bug occurred",
						Required:    true,
						Choices:     gameChoices,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "description",
						Description: "Detailed description of what happened",
						Required:    true,
						MaxLength:   1000,
					},
				},
				Handler: ReportSlash,
			},
			{
				Name:               "bugs",
				Description:        "View bug reports",
				DefaultPermissions: &administrator,
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: "report_id", Description: "Specific report ID to view"},
					{Type: discordgo.ApplicationCommandOptionString, Name: "status", Description: "Filter by status", Choices: statusChoices()},
				},
				Handler: BugsSlash,
			},
			{
				Name:               "updatebug",
				Description:        "Update a bug report",
				DefaultPermissions: &administrator,
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: "report_id", Description: "The ID of the report to update", Required: true},
					{Type: discordgo.ApplicationCommandOptionString, Name: "status", Description: "New status for the report", Choices: statusChoices()},
					{Type: discordgo.ApplicationCommandOptionString, Name: "notes", Description: "Admin notes to add/update", MaxLength: 1000},
				},
				Handler: UpdateBugSlash,
			},
		},
	}

	commands.RegisterModule(module)
}
