package mc

import (
	"StrawberryBot/commands"

	"github.com/bwmarrin/discordgo"
)

func playerOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "player",
		Description: "The player's username",
		Required:    true,
		MaxLength:   16,
	}
}

func init() {
	module := &commands.ModuleInfo{
		Name:        "Minecraft",
		Description: "Minecraft server integration over RCON",
		Category:    "Minecraft",
		Feature:     "minecraft",
		SlashCommands: []commands.SlashCommandInfo{
			{
				Name:        "mc",
				Description: "Minecraft server commands",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "status",
						Description: "Check Minecraft server status (Admin only)",
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "command",
						Description: "Execute a Minecraft server command (Admin only)",
						Options: []*discordgo.ApplicationCommandOption{
							{Type: discordgo.ApplicationCommandOptionString, Name: "command", Description: "The command to execute (without /)", Required: true},
						},
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "playerinfo",
						Description: "Get detailed information about a player",
						Options:     []*discordgo.ApplicationCommandOption{playerOption()},
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "inventory",
						Description: "View a player's inventory",
						Options:     []*discordgo.ApplicationCommandOption{playerOption()},
					},
				},
				Handler: MinecraftSlash,
			},
		},
	}

	commands.RegisterModule(module)
}
