package help

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"StrawberryBot/bot"
	"StrawberryBot/commands"
	"StrawberryBot/utils"

	"github.com/bwmarrin/discordgo"
)

// enabledModules returns the modules of a category that are switched on, by name.
func enabledModules(f bot.FeatureConfig, category string) []*commands.ModuleInfo {
	var modules []*commands.ModuleInfo
	for _, module := range commands.RegisteredModules {
		if strings.EqualFold(module.Category, category) && commands.ModuleEnabled(f, module) {
			modules = append(modules, module)
		}
	}
	sort.Slice(modules, func(i, j int) bool { return modules[i].Name < modules[j].Name })
	return modules
}

func enabledCategories(f bot.FeatureConfig) []string {
	var names []string
	for _, name := range commands.SortedCategories() {
		if len(enabledModules(f, name)) > 0 {
			names = append(names, name)
		}
	}
	return names
}

func findCategory(f bot.FeatureConfig, name string) (string, bool) {
	for _, category := range enabledCategories(f) {
		if strings.EqualFold(category, name) {
			return category, true
		}
	}
	return "", false
}

// commandNames lists prefix and slash commands of a category, e.g. "`!daily`, `/daily`".
func commandNames(prefix string, modules []*commands.ModuleInfo) string {
	var names []string
	for _, module := range modules {
		for _, cmd := range module.Commands {
			names = append(names, fmt.Sprintf("`%s%s`", prefix, cmd.Name))
		}
		for _, slash := range module.SlashCommands {
			names = append(names, fmt.Sprintf("`/%s`", slash.Name))
		}
	}
	return strings.Join(names, ", ")
}

func overviewEmbed(prefix string, f bot.FeatureConfig) *discordgo.MessageEmbed {
	embed := utils.NewEmbed("🍓 Help",
		fmt.Sprintf("Here is a list of command categories. For more information on a specific command, type `%shelp <command>`.", prefix),
		utils.ColorInfo)
	for _, category := range enabledCategories(f) {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  category,
			Value: commandNames(prefix, enabledModules(f, category)),
		})
	}
	return embed
}

func categoryEmbed(prefix, category string, f bot.FeatureConfig) *discordgo.MessageEmbed {
	embed := utils.NewEmbed("Commands - "+category, "", utils.ColorInfo)
	for _, module := range enabledModules(f, category) {
		for _, cmd := range module.Commands {
			name := prefix + cmd.Name
			if len(cmd.Aliases) > 0 {
				name += fmt.Sprintf(" (Aliases: %s)", strings.Join(cmd.Aliases, ", "))
			}
			desc := cmd.Description
			if desc == "" {
				desc = "No description available"
			}
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: name, Value: desc})
		}
		for _, slash := range module.SlashCommands {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "/" + slash.Name, Value: slash.Description})
		}
	}
	return embed
}

func slashUsage(slash commands.SlashCommandInfo) string {
	parts := []string{"/" + slash.Name}
	for _, opt := range slash.Options {
		switch {
		case opt.Type == discordgo.ApplicationCommandOptionSubCommand:
			parts = append(parts, opt.Name)
		case opt.Required:
			parts = append(parts, "<"+opt.Name+">")
		default:
			parts = append(parts, "["+opt.Name+"]")
		}
	}
	if len(parts) > 1 && slash.Options[0].Type == discordgo.ApplicationCommandOptionSubCommand {
		return parts[0] + " " + strings.Join(parts[1:], "|")
	}
	return strings.Join(parts, " ")
}

// commandEmbed describes one command. Disabled or unknown commands are not found.
func commandEmbed(prefix, name string, f bot.FeatureConfig) (*discordgo.MessageEmbed, bool) {
	name = strings.TrimPrefix(strings.TrimPrefix(strings.ToLower(name), prefix), "/")
	resolved := commands.ResolveCommand(name)

	if info, ok := commands.CommandDetails[resolved]; ok && commands.ModuleEnabled(f, commands.GetModuleByCommand(resolved)) {
		embed := utils.NewEmbed("Help: "+info.Name, info.Description, utils.ColorInfo)
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "Usage", Value: fmt.Sprintf("`%s`", strings.Replace(info.Usage, "!", prefix, 1))},
		}
		if len(info.Aliases) > 0 {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Aliases", Value: strings.Join(info.Aliases, ", ")})
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Category", Value: info.Category})
		if info.Notes != "" {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: "Details", Value: info.Notes})
		}
		return embed, true
	}

	module := commands.GetModuleBySlash(name)
	if module == nil || !commands.ModuleEnabled(f, module) {
		return nil, false
	}
	for _, slash := range module.SlashCommands {
		if slash.Name != name {
			continue
		}
		embed := utils.NewEmbed("Help: /"+slash.Name, slash.Description, utils.ColorInfo)
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "Usage", Value: fmt.Sprintf("`%s`", slashUsage(slash))},
			{Name: "Category", Value: module.Category},
		}
		return embed, true
	}
	return nil, false
}

// lookup answers a help query with a command page, a category page or the overview.
func lookup(prefix, query string, f bot.FeatureConfig) (*discordgo.MessageEmbed, string) {
	if query == "" {
		return overviewEmbed(prefix, f), ""
	}
	if embed, ok := commandEmbed(prefix, query, f); ok {
		return embed, ""
	}
	if category, ok := findCategory(f, query); ok {
		return categoryEmbed(prefix, category, f), ""
	}
	return nil, fmt.Sprintf("Command `%s` not found.", query)
}

func Help(b *bot.Bot, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	query := ""
	if len(args) > 1 {
		query = args[1]
	}
	embed, msg := lookup(b.Config.Prefix, query, b.Config.Features)
	if msg != "" {
		s.ChannelMessageSend(m.ChannelID, msg)
		return
	}
	if _, err := s.ChannelMessageSendEmbed(m.ChannelID, embed); err != nil {
		log.Printf("Error sending help: %v", err)
	}
}

func HelpSlash(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	query := ""
	if opt, ok := utils.OptionMap(i.ApplicationCommandData().Options)["command"]; ok {
		query = strings.TrimSpace(opt.StringValue())
	}
	embed, msg := lookup(b.Config.Prefix, query, b.Config.Features)
	if msg != "" {
		utils.Respond(s, i, msg, true)
		return
	}
	utils.RespondEmbed(s, i, embed, true)
}
