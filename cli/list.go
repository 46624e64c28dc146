package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"StrawberryBot/commands"

	_ "StrawberryBot/commands/admin"
	_ "StrawberryBot/commands/bugreports"
	_ "StrawberryBot/commands/casino"
	_ "StrawberryBot/commands/economy"
	_ "StrawberryBot/commands/help"
	_ "StrawberryBot/commands/mc"
	_ "StrawberryBot/commands/voicechat"
)

func newListCmd() *cobra.Command {
	var (
		listModules  bool
		filterModule string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the bot's modules and commands",
		Long:  `Display every module compiled into the bot with its prefix and slash commands.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			modules := commands.RegisteredModules
			if filterModule != "" {
				module, ok := modules[filterModule]
				if !ok {
					return fmt.Errorf("module %q not found", filterModule)
				}
				modules = map[string]*commands.ModuleInfo{filterModule: module}
			}
			displayModules(cmd.OutOrStdout(), modules, !listModules)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&listModules, "modules", "m", false, "List only modules")
	cmd.Flags().StringVarP(&filterModule, "filter", "f", "", "Filter by module name")
	return cmd
}

func displayModules(out io.Writer, modules map[string]*commands.ModuleInfo, withCommands bool) {
	fmt.Fprintln(out, "📦 Modules:")
	fmt.Fprintln(out)

	var names []string
	for name := range modules {
		names = append(names, name)
	}
	sort.Strings(names)

	total := 0
	for _, name := range names {
		module := modules[name]
		feature := module.Feature
		if feature == "" {
			feature = "always on"
		}
		fmt.Fprintf(out, "📦 %s [%s] - %s\n", name, feature, module.Description)
		total += len(module.Commands) + len(module.SlashCommands)
		if !withCommands {
			continue
		}
		for _, cmd := range module.Commands {
			fmt.Fprintf(out, "     !%s", cmd.Name)
			if len(cmd.Aliases) > 0 {
				fmt.Fprintf(out, " (%s)", strings.Join(cmd.Aliases, ", "))
			}
			fmt.Fprintf(out, " - %s\n", cmd.Description)
		}
		for _, slash := range module.SlashCommands {
			fmt.Fprintf(out, "     /%s - %s\n", slash.Name, slash.Description)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "📊 Summary: %d modules, %d commands\n", len(modules), total)
}
