package voicechat

import (
	"StrawberryBot/commands"

	"github.com/bwmarrin/discordgo"
)

func init() {
	module := &commands.ModuleInfo{
		Name:        "Voice",
		Description: "Voice channel presence and follow mode",
		Category:    "Voice",
		Feature:     "voice",
		Commands: []commands.CommandInfo{
			{
				Name:        "join",
				Description: "Make the bot join your voice channel",
				Usage:       "!join",
				Category:    "Voice",
			},
			{
				Name:        "leave",
				Aliases:     []string{"disconnect"},
				Description: "Make the bot leave its voice channel",
				Usage:       "!leave",
				Category:    "Voice",
			},
			{
				Name:        "follow",
				Description: "Follow a user between voice channels",
				Usage:       "!follow @user",
				Category:    "Voice",
			},
			{
				Name:        "unfollow",
				Description: "Stop following a user",
				Usage:       "!unfollow",
				Category:    "Voice",
			},
		},
		SlashCommands: []commands.SlashCommandInfo{
			{
				Name:        "join",
				Description: "Join your current voice channel",
				Handler:     JoinSlash,
			},
			{
				Name:        "leave",
				Description: "Leave the current voice channel",
				Handler:     LeaveSlash,
			},
			{
				Name:        "follow",
				Description: "Follow a user between voice channels",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "The user to follow", Required: true},
				},
				Handler: FollowSlash,
			},
			{
				Name:        "unfollow",
				Description: "Stop following the current user",
				Handler:     UnfollowSlash,
			},
		},
	}

	commands.RegisterModule(module)

	commands.RegisterCommand("join", Join)
	commands.RegisterCommand("leave", Leave, "disconnect")
	commands.RegisterCommand("follow", Follow)
	commands.RegisterCommand("unfollow", Unfollow)
}
