package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"StrawberryBot/bugs"
	"StrawberryBot/games"
	"StrawberryBot/ledger"
	"StrawberryBot/minecraft"
	"StrawberryBot/store"
	"StrawberryBot/utils"
	"StrawberryBot/voice"
)

// Bot carries every dependency a command handler needs.
type Bot struct {
	Client    *discordgo.Session
	Config    Config
	Store     store.Store
	Ledger    *ledger.Ledger
	Roulette  *games.Roulette
	Follows   *voice.Follows
	Minecraft *minecraft.Client // nil when RCON is not configured
	Bugs      *bugs.Tracker
	Limiter   *utils.RateLimiter
	StartedAt time.Time

	owners map[string]bool
}

const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsGuildMembers |
	discordgo.IntentsGuildVoiceStates |
	discordgo.IntentsDirectMessages |
	discordgo.IntentsMessageContent

func NewBot(ctx context.Context, cfg Config) (*Bot, error) {
	client, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, err
	}
	client.Identify.Intents = Intents

	st, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	tracker, err := bugs.Open(cfg.BugReportPath())
	if err != nil {
		st.Close()
		return nil, err
	}

	b := New(cfg, st)
	b.Client = client
	b.Bugs = tracker
	if addr := cfg.RCONAddress(); addr != "" {
		b.Minecraft = minecraft.NewClient(addr, cfg.Minecraft.Password, minecraft.RCONDialer(cfg.Minecraft.Timeout))
		utils.LogComponent("minecraft", "RCON bridge configured for %s", addr)
	}
	return b, nil
}

// New wires the domain services around an already opened store. The
// Discord session, bug tracker and RCON client are left for the caller.
func New(cfg Config, st store.Store) *Bot {
	limiter := utils.NewRateLimiter(cfg.RateLimit)
	limiter.SetCooldown("roulette", cfg.Economy.RouletteCooldown)
	limiter.SetCooldown("transfer", cfg.Economy.TransferCooldown)

	owners := make(map[string]bool)
	for _, id := range cfg.Owners() {
		owners[id] = true
	}

	return &Bot{
		Config:    cfg,
		Store:     st,
		Ledger:    ledger.New(st, cfg.Rules()),
		Roulette:  games.NewRoulette(games.NewRand(0)),
		Follows:   voice.NewFollows(),
		Limiter:   limiter,
		StartedAt: time.Now(),
		owners:    owners,
	}
}

// IsOwner reports whether userID is one of the configured bot owners.
func (b *Bot) IsOwner(userID string) bool {
	return b.owners[userID]
}

func (b *Bot) Close() error {
	var err error
	if b.Minecraft != nil {
		_ = b.Minecraft.Close()
	}
	if b.Store != nil {
		err = b.Store.Close()
	}
	if b.Client != nil {
		if cerr := b.Client.Close(); err == nil {
			err = cerr
		}
	}
	return err
}
