package commands

import (
	"testing"

	"StrawberryBot/bot"

	"github.com/bwmarrin/discordgo"
)

func registerTestModule() {
	RegisterModule(&ModuleInfo{
		Name:     "TestGames",
		Category: "TestCategory",
		Feature:  "games",
		Commands: []CommandInfo{{Name: "testspin", Aliases: []string{"ts"}, Category: "TestCategory"}},
		SlashCommands: []SlashCommandInfo{
			{Name: "testspin", Description: "spin"},
		},
		Components: []ComponentInfo{{Prefix: "testspin"}},
	})
	RegisterCommand("testspin", func(*bot.Bot, *discordgo.Session, *discordgo.MessageCreate, []string) {}, "ts")
}

func TestRegisterModule(t *testing.T) {
	registerTestModule()

	if GetModuleByCommand("testspin") == nil || GetModuleBySlash("testspin") == nil || GetModuleByComponent("testspin") == nil {
		t.Fatal("module lookups should resolve")
	}
	cat := RegisteredCategories["TestCategory"]
	if cat == nil || len(cat.Modules) != 1 {
		t.Fatalf("unexpected category %+v", cat)
	}
	registerTestModule()
	if len(RegisteredCategories["TestCategory"].Modules) != 1 {
		t.Fatal("re-registering must not duplicate the module")
	}
	if got := GetCommandsByCategory("testcategory"); len(got) != 1 {
		t.Fatalf("expected 1 command, got %d", len(got))
	}
}

func TestParseCommand(t *testing.T) {
	registerTestModule()
	tests := []struct {
		content string
		name    string
		nargs   int
		ok      bool
	}{
		{"!testspin 10 red", "testspin", 3, true},
		{"!TS 10", "testspin", 2, true},
		{"!", "", 0, false},
		{"hello", "", 0, false},
		{"?testspin", "", 0, false},
	}
	for _, tt := range tests {
		name, args, ok := ParseCommand("!", tt.content)
		if ok != tt.ok || name != tt.name || len(args) != tt.nargs {
			t.Fatalf("ParseCommand(%q) = %q %v %v", tt.content, name, args, ok)
		}
	}
}

func TestSlashCommandsRespectFeatures(t *testing.T) {
	registerTestModule()
	has := func(f bot.FeatureConfig) bool {
		for _, cmd := range GetAllSlashCommands(f) {
			if cmd.Name == "testspin" {
				return true
			}
		}
		return false
	}
	if !has(bot.FeatureConfig{Games: true}) {
		t.Fatal("enabled module should be registered")
	}
	if has(bot.FeatureConfig{Games: false}) {
		t.Fatal("disabled module should be skipped")
	}
}

func TestCommandNeedsUpdate(t *testing.T) {
	perm := int64(discordgo.PermissionAdministrator)
	base := func() *discordgo.ApplicationCommand {
		return &discordgo.ApplicationCommand{
			Name:        "admin",
			Description: "Admin tools",
			Options: []*discordgo.ApplicationCommandOption{{
				Type: discordgo.ApplicationCommandOptionSubCommand,
				Name: "give",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Required: true},
				},
			}},
			DefaultMemberPermissions: &perm,
		}
	}
	if commandNeedsUpdate(base(), base()) {
		t.Fatal("identical commands should not need an update")
	}
	changed := base()
	changed.Options[0].Options[0].Required = false
	if !commandNeedsUpdate(base(), changed) {
		t.Fatal("nested option change should be detected")
	}
	noPerm := base()
	noPerm.DefaultMemberPermissions = nil
	if !commandNeedsUpdate(base(), noPerm) {
		t.Fatal("permission change should be detected")
	}
}
