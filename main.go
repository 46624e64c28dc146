package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"

	"StrawberryBot/bot"
	"StrawberryBot/commands"
	"StrawberryBot/ledger"
	"StrawberryBot/utils"

	// Command modules register themselves in init.
	_ "StrawberryBot/commands/admin"
	_ "StrawberryBot/commands/bugreports"
	_ "StrawberryBot/commands/casino"
	_ "StrawberryBot/commands/economy"
	_ "StrawberryBot/commands/help"
	_ "StrawberryBot/commands/mc"
	"StrawberryBot/commands/voicechat"
)

func main() {
	cfg, err := bot.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if err := utils.InitLogger(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := bot.NewBot(ctx, cfg)
	if err != nil {
		utils.LogFatal("Error creating bot: %v", err)
	}
	defer func() {
		if err := b.Close(); err != nil {
			utils.LogError("Error during shutdown: %v", err)
		}
	}()

	b.Client.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		utils.LogInfo("Logged in as %s#%s in %d guilds", r.User.Username, r.User.Discriminator, len(r.Guilds))
		s.UpdateGameStatus(0, cfg.Prefix+"help | 🍓")
	})
	b.Client.AddHandler(commands.HandleMessage(b))
	b.Client.AddHandler(commands.HandleInteraction(b))
	b.Client.AddHandler(voicechat.VoiceStateUpdate(b))

	if err := b.Client.Open(); err != nil {
		b.Close()
		utils.LogFatal("Error opening connection: %v", err)
	}
	commands.RegisterAllSlashCommands(b.Client, cfg.GuildID, cfg.Features)

	if cfg.CleanupDays > 0 {
		go ledger.NewJanitor(b.Ledger, cfg.CleanupDays, cfg.CleanupInterval).Start(ctx)
	}
	go b.Limiter.StartSweeper(10*time.Minute, ctx.Done())

	utils.LogInfo("Bot is running. Press Ctrl+C to exit.")
	<-ctx.Done()
	utils.LogInfo("Shutting down")
}
