package help

import (
	"StrawberryBot/commands"

	"github.com/bwmarrin/discordgo"
)

func init() {
	module := &commands.ModuleInfo{
		Name:        "Help",
		Description: "Help system with command documentation and paginated lists",
		Category:    "General",
		Commands: []commands.CommandInfo{
			{
				Name:        "help",
				Aliases:     []string{"h"},
				Description: "Displays help information for commands",
				Usage:       "!help [command|category]",
				Category:    "General",
			},
			{
				Name:        "commandlist",
				Aliases:     []string{"cl", "commands"},
				Description: "Lists all available commands",
				Usage:       "!commandlist [category]",
				Category:    "General",
			},
		},
		SlashCommands: []commands.SlashCommandInfo{
			{
				Name:        "help",
				Description: "Show what the bot can do",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: "command", Description: "A command or category to explain"},
				},
				Handler: HelpSlash,
			},
		},
		Components: []commands.ComponentInfo{
			{Prefix: commandListPrefix, Handler: CommandListButton},
		},
	}

	commands.RegisterModule(module)

	// Register command handlers
	commands.RegisterCommand("help", Help, "h")
	commands.RegisterCommand("commandlist", CommandList, "cl", "commands")
}
