package commands

import (
	"log"

	"StrawberryBot/bot"

	"github.com/bwmarrin/discordgo"
)

// optionsDiffer compares option trees, including subcommand options
func optionsDiffer(existing, desired []*discordgo.ApplicationCommandOption) bool {
	if len(existing) != len(desired) {
		return true
	}
	for i, option := range existing {
		desiredOption := desired[i]
		if option.Name != desiredOption.Name ||
			option.Description != desiredOption.Description ||
			option.Type != desiredOption.Type ||
			option.Required != desiredOption.Required ||
			len(option.Choices) != len(desiredOption.Choices) {
			return true
		}
		if optionsDiffer(option.Options, desiredOption.Options) {
			return true
		}
	}
	return false
}

// commandNeedsUpdate checks if an existing command needs to be updated
func commandNeedsUpdate(existing, desired *discordgo.ApplicationCommand) bool {
	if existing.Name != desired.Name {
		return true
	}
	if existing.Description != desired.Description {
		return true
	}
	if (existing.DefaultMemberPermissions == nil) != (desired.DefaultMemberPermissions == nil) {
		return true
	}
	if existing.DefaultMemberPermissions != nil && *existing.DefaultMemberPermissions != *desired.DefaultMemberPermissions {
		return true
	}
	return optionsDiffer(existing.Options, desired.Options)
}

// RegisterAllSlashCommands registers and updates slash commands from all enabled modules.
// An empty guildID registers global commands.
func RegisterAllSlashCommands(s *discordgo.Session, guildID string, features bot.FeatureConfig) {
	existingCommands, err := s.ApplicationCommands(s.State.User.ID, guildID)
	if err != nil {
		log.Printf("Error fetching existing commands: %v", err)
		return
	}

	existingMap := make(map[string]*discordgo.ApplicationCommand)
	for _, cmd := range existingCommands {
		existingMap[cmd.Name] = cmd
	}

	for _, desired := range GetAllSlashCommands(features) {
		if existing, exists := existingMap[desired.Name]; exists {
			if commandNeedsUpdate(existing, desired) {
				log.Printf("Updating slash command: %s", desired.Name)
				_, err := s.ApplicationCommandEdit(s.State.User.ID, guildID, existing.ID, desired)
				if err != nil {
					log.Printf("Error updating command %s: %v", desired.Name, err)
				}
			}
			// Remove from existing map so we know it's still wanted
			delete(existingMap, desired.Name)
		} else {
			log.Printf("Creating slash command: %s", desired.Name)
			_, err := s.ApplicationCommandCreate(s.State.User.ID, guildID, desired)
			if err != nil {
				log.Printf("Error creating command %s: %v", desired.Name, err)
			}
		}
	}

	// Delete any remaining commands that are no longer wanted
	for _, cmd := range existingMap {
		log.Printf("Deleting unused slash command: %s", cmd.Name)
		err := s.ApplicationCommandDelete(s.State.User.ID, guildID, cmd.ID)
		if err != nil {
			log.Printf("Error deleting command %s: %v", cmd.Name, err)
		}
	}
}
