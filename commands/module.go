package commands

import (
	"sort"
	"strings"

	"StrawberryBot/bot"

	"github.com/bwmarrin/discordgo"
)

// CommandFunc defines the signature for prefix command handlers
type CommandFunc func(b *bot.Bot, s *discordgo.Session, m *discordgo.MessageCreate, args []string)

// InteractionFunc handles slash commands and message components
type InteractionFunc func(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate)

// CommandInfo holds detailed information about a command
type CommandInfo struct {
	Name        string   `json:"name"`
	Aliases     []string `json:"aliases"`
	Description string   `json:"description"`
	Usage       string   `json:"usage"`
	Category    string   `json:"category"`
	// Notes is appended to the command's help page.
	Notes string `json:"notes,omitempty"`
}

// SlashCommandInfo holds information about slash commands
type SlashCommandInfo struct {
	Name        string                                `json:"name"`
	Description string                                `json:"description"`
	Options     []*discordgo.ApplicationCommandOption `json:"options"`
	// DefaultPermissions hides the command from members lacking them.
	DefaultPermissions *int64          `json:"default_permissions,omitempty"`
	Handler            InteractionFunc `json:"-"`
}

// ComponentInfo routes button clicks whose custom id starts with Prefix + ":".
type ComponentInfo struct {
	Prefix  string          `json:"prefix"`
	Handler InteractionFunc `json:"-"`
}

// ModuleInfo represents a complete module with its commands and metadata
type ModuleInfo struct {
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Category      string             `json:"category"`
	Feature       string             `json:"feature"` // empty means always on
	Commands      []CommandInfo      `json:"commands"`
	SlashCommands []SlashCommandInfo `json:"slash_commands"`
	Components    []ComponentInfo    `json:"components"`
}

// CategoryInfo represents a category that contains multiple modules
type CategoryInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Modules     []string `json:"modules"`
}

// Global registries
var (
	RegisteredModules    = make(map[string]*ModuleInfo)
	RegisteredCategories = make(map[string]*CategoryInfo)
	CommandDetails       = make(map[string]CommandInfo)     // Auto-compiled from modules
	SlashCommandHandlers = make(map[string]InteractionFunc) // Auto-compiled slash handlers
	ComponentHandlers    = make(map[string]InteractionFunc) // custom id prefix -> handler
	CommandMap           = make(map[string]CommandFunc)
	CommandAliases       = make(map[string]string)

	commandModules = make(map[string]*ModuleInfo) // prefix or slash name -> owner
)

// RegisterCommand registers individual prefix commands (used by modules)
func RegisterCommand(name string, handler CommandFunc, aliases ...string) {
	CommandMap[name] = handler
	for _, alias := range aliases {
		CommandAliases[alias] = name
	}
}

// RegisterModule registers a complete module and auto-compiles command info
func RegisterModule(module *ModuleInfo) {
	RegisteredModules[module.Name] = module

	for _, cmd := range module.Commands {
		CommandDetails[cmd.Name] = cmd
		commandModules[cmd.Name] = module
	}

	for _, slashCmd := range module.SlashCommands {
		SlashCommandHandlers[slashCmd.Name] = slashCmd.Handler
		commandModules["/"+slashCmd.Name] = module
	}

	for _, comp := range module.Components {
		ComponentHandlers[comp.Prefix] = comp.Handler
		commandModules["#"+comp.Prefix] = module
	}

	if module.Category != "" {
		if _, exists := RegisteredCategories[module.Category]; !exists {
			RegisteredCategories[module.Category] = &CategoryInfo{
				Name:        module.Category,
				Description: module.Category + " related modules",
				Modules:     []string{},
			}
		}

		category := RegisteredCategories[module.Category]
		found := false
		for _, modName := range category.Modules {
			if modName == module.Name {
				found = true
				break
			}
		}
		if !found {
			category.Modules = append(category.Modules, module.Name)
		}
	}
}

// ResolveCommand maps an alias onto its command name
func ResolveCommand(name string) string {
	name = strings.ToLower(name)
	if actual, ok := CommandAliases[name]; ok {
		return actual
	}
	return name
}

// ModuleEnabled reports whether the module's feature flag is on
func ModuleEnabled(f bot.FeatureConfig, module *ModuleInfo) bool {
	if module == nil {
		return true
	}
	return f.Enabled(module.Feature)
}

// GetModuleByCommand returns the module that contains a prefix command
func GetModuleByCommand(commandName string) *ModuleInfo {
	return commandModules[commandName]
}

// GetModuleBySlash returns the module that owns a slash command
func GetModuleBySlash(name string) *ModuleInfo {
	return commandModules["/"+name]
}

// GetModuleByComponent returns the module that owns a component prefix
func GetModuleByComponent(prefix string) *ModuleInfo {
	return commandModules["#"+prefix]
}

// GetCommandsByCategory returns all commands in a specific category using registered modules
func GetCommandsByCategory(category string) []CommandInfo {
	var commands []CommandInfo
	for _, module := range RegisteredModules {
		if strings.EqualFold(module.Category, category) {
			commands = append(commands, module.Commands...)
		}
	}
	sort.Slice(commands, func(i, j int) bool { return commands[i].Name < commands[j].Name })
	return commands
}

// SortedCategories returns category names in a stable order
func SortedCategories() []string {
	names := make([]string, 0, len(RegisteredCategories))
	for name := range RegisteredCategories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetAllSlashCommands returns the slash commands of every enabled module
func GetAllSlashCommands(f bot.FeatureConfig) []*discordgo.ApplicationCommand {
	var commands []*discordgo.ApplicationCommand
	for _, module := range RegisteredModules {
		if !ModuleEnabled(f, module) {
			continue
		}
		for _, slashCmd := range module.SlashCommands {
			commands = append(commands, &discordgo.ApplicationCommand{
				Name:                     slashCmd.Name,
				Description:              slashCmd.Description,
				Options:                  slashCmd.Options,
				DefaultMemberPermissions: slashCmd.DefaultPermissions,
			})
		}
	}
	sort.Slice(commands, func(i, j int) bool { return commands[i].Name < commands[j].Name })
	return commands
}
