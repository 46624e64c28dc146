package casino

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"StrawberryBot/bot"
	"StrawberryBot/games"
	"StrawberryBot/ledger"
	"StrawberryBot/store"
	"StrawberryBot/utils"

	"github.com/bwmarrin/discordgo"
)

const (
	roulettePrefix = "roulette"
	spinFrames     = 3
)

var (
	spinDelay     = time.Second
	choiceTimeout = 30 * time.Second
)

var noComponents = []discordgo.MessageComponent{}

// pendingBets holds the color pickers that are waiting for a click.
type pendingBets struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

var pending = &pendingBets{timers: make(map[string]*time.Timer)}

func (p *pendingBets) add(userID string, d time.Duration, expire func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		p.mu.Lock()
		if p.timers[userID] == t {
			delete(p.timers, userID)
		}
		p.mu.Unlock()
		expire()
	})
	p.timers[userID] = t
}

// claim reports whether userID still had a live picker and disarms it.
func (p *pendingBets) claim(userID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	t, ok := p.timers[userID]
	if !ok {
		return false
	}
	delete(p.timers, userID)
	return t.Stop()
}

// checkStake returns a user-facing message when the stake cannot be played.
func checkStake(ctx context.Context, b *bot.Bot, userID string, stake int64) string {
	if stake <= 0 {
		return "❌ Bet amount must be positive!"
	}
	if err := b.Ledger.CheckBet(stake); err != nil {
		rules := b.Ledger.Rules()
		return fmt.Sprintf("❌ Bets must be between 🍓 %s and 🍓 %s!",
			utils.FormatNumber(rules.MinBet), utils.FormatNumber(rules.MaxBet))
	}
	rec, err := b.Ledger.Account(ctx, userID)
	if err != nil {
		log.Printf("Error loading balance for %s: %v", userID, err)
		return utils.GenericError
	}
	if rec.Strawberries < stake {
		return fmt.Sprintf("❌ You only have %s strawberries!", utils.Berries(rec.Strawberries))
	}
	return ""
}

// spin plays one round and books the outcome.
func spin(ctx context.Context, b *bot.Bot, userID string, stake int64, bet games.Bet) (games.Spin, store.Record, error) {
	result := b.Roulette.Spin(bet, stake)
	rec, err := b.Ledger.Settle(ctx, userID, stake, result.Won, result.Winnings)
	if err != nil {
		return games.Spin{}, store.Record{}, err
	}
	utils.LogComponent("games", "Roulette: %s bet %d on %s, landed %d, won=%t", userID, stake, bet, result.Pocket, result.Won)
	return result, rec, nil
}

func selectionEmbed(name string, stake int64) *discordgo.MessageEmbed {
	var ev []string
	for _, o := range games.OddsTable() {
		ev = append(ev, fmt.Sprintf("%s: %+.2f", o.Bet, o.ExpectedReturn()*float64(stake)))
	}
	return &discordgo.MessageEmbed{
		Title:       "🎰 Strawberry Roulette",
		Description: fmt.Sprintf("**%s** is betting 🍓 **%s** strawberries\nChoose what to bet on:", name, utils.FormatNumber(stake)),
		Color:       utils.ColorEconomy,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Color Bets", Value: fmt.Sprintf("🔴 Red (%dx)\n⚫ Black (%dx)\n🟢 Green (%dx)", games.ColorMultiplier, games.ColorMultiplier, games.GreenMultiplier), Inline: true},
			{Name: "Number Bet", Value: fmt.Sprintf("Use `/roulette %d <0-36>` (%dx)", stake, games.NumberMultiplier), Inline: true},
			{Name: "Expected Value", Value: strings.Join(ev, "\n")},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("You have %d seconds to choose", int(choiceTimeout.Seconds()))},
	}
}

func colorButtons(userID string, stake int64) []discordgo.MessageComponent {
	button := func(label string, c games.Color, style discordgo.ButtonStyle) discordgo.Button {
		return discordgo.Button{
			Label:    label,
			Style:    style,
			Emoji:    &discordgo.ComponentEmoji{Name: c.Emoji()},
			CustomID: fmt.Sprintf("%s:%s:%d:%s", roulettePrefix, userID, stake, c),
		}
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			button("Red", games.Red, discordgo.DangerButton),
			button("Black", games.Black, discordgo.SecondaryButton),
			button("Green", games.Green, discordgo.SuccessButton),
		}},
	}
}

// parseButton splits "roulette:<user>:<stake>:<color>".
func parseButton(customID string) (userID string, stake int64, bet games.Bet, err error) {
	parts := strings.Split(customID, ":")
	if len(parts) != 4 || parts[0] != roulettePrefix {
		return "", 0, games.Bet{}, fmt.Errorf("malformed roulette button %q", customID)
	}
	stake, err = strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return "", 0, games.Bet{}, err
	}
	bet, err = games.ParseBet(parts[3])
	if err != nil {
		return "", 0, games.Bet{}, err
	}
	return parts[1], stake, bet, nil
}

func spinningEmbed(name string, stake int64, bet games.Bet, frame int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "🎰 Strawberry Roulette",
		Description: fmt.Sprintf("**%s** bets 🍓 **%s** on **%s**\nSpinning the wheel%s",
			name, utils.FormatNumber(stake), bet, strings.Repeat(".", frame)),
		Color: utils.ColorEconomy,
	}
}

func resultEmbed(name string, stake int64, bet games.Bet, result games.Spin, rec store.Record, footer string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title: "🎰 Roulette Results",
		Description: fmt.Sprintf("The ball landed on **%d** (%s %s)\n**%s**'s bet: %s",
			result.Pocket, result.Color.Emoji(), result.Color, name, bet),
		Footer: &discordgo.MessageEmbedFooter{Text: footer},
	}
	if result.Won {
		embed.Color = utils.ColorSuccess
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "🎉 YOU WON! 🎉", Value: fmt.Sprintf("+🍓 **%s**", utils.FormatNumber(result.Winnings)), Inline: true,
		})
	} else {
		embed.Color = utils.ColorError
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name: "😢 You Lost", Value: fmt.Sprintf("-🍓 **%s**", utils.FormatNumber(stake)), Inline: true,
		})
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name: "New Balance", Value: utils.Berries(rec.Strawberries), Inline: true,
	})
	return embed
}

// play settles the round and then animates it. Interaction replies are
// deferred before the ledger write. The caller must hold the player's Begin
// slot; play releases it.
func play(b *bot.Bot, r reply, user *discordgo.User, stake int64, bet games.Bet) {
	defer b.Roulette.End(user.ID)

	if a, ok := r.(interface{ acknowledge() error }); ok {
		if err := a.acknowledge(); err != nil {
			log.Printf("Error deferring roulette response: %v", err)
			return
		}
	}

	result, rec, err := spin(context.Background(), b, user.ID, stake, bet)
	if err != nil {
		msg := utils.GenericError
		switch {
		case errors.Is(err, ledger.ErrInsufficientFunds):
			msg = "❌ You don't have enough strawberries for that bet!"
		default:
			log.Printf("Error settling roulette for %s: %v", user.ID, err)
		}
		if err := r.send(utils.ErrorEmbed(msg), noComponents); err != nil {
			log.Printf("Error sending roulette error: %v", err)
		}
		return
	}

	if err := r.send(spinningEmbed(user.Username, stake, bet, 0), noComponents); err != nil {
		log.Printf("Error starting roulette animation: %v", err)
		return
	}
	for frame := 1; frame <= spinFrames; frame++ {
		time.Sleep(spinDelay)
		if err := r.edit(spinningEmbed(user.Username, stake, bet, frame), noComponents); err != nil {
			log.Printf("Error animating roulette: %v", err)
			break
		}
	}
	if err := r.edit(resultEmbed(user.Username, stake, bet, result, rec, b.Roulette.Footer()), noComponents); err != nil {
		log.Printf("Error showing roulette result: %v", err)
	}
}

// offerColors shows the color picker and keeps the Begin slot until a
// button is clicked or the picker expires.
func offerColors(b *bot.Bot, r reply, user *discordgo.User, stake int64) {
	if err := r.send(selectionEmbed(user.Username, stake), colorButtons(user.ID, stake)); err != nil {
		log.Printf("Error sending roulette picker: %v", err)
		b.Roulette.End(user.ID)
		return
	}
	pending.add(user.ID, choiceTimeout, func() {
		b.Roulette.End(user.ID)
		if err := r.edit(utils.ErrorEmbed("❌ Bet cancelled - no choice made in time!"), noComponents); err != nil {
			log.Printf("Error expiring roulette picker: %v", err)
		}
	})
}

func RouletteSlash(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := utils.InteractionUser(i)
	opts := utils.OptionMap(i.ApplicationCommandData().Options)
	var stake int64
	if opt, ok := opts["bet"]; ok {
		stake = opt.IntValue()
	}

	var bet games.Bet
	choice := ""
	if opt, ok := opts["choice"]; ok {
		choice = opt.StringValue()
		var err error
		if bet, err = games.ParseBet(choice); err != nil {
			utils.Respond(s, i, "❌ Invalid choice! Bet on red/black/green or a number 0-36.", true)
			return
		}
	}

	if msg := checkStake(context.Background(), b, user.ID, stake); msg != "" {
		utils.Respond(s, i, msg, true)
		return
	}
	if !b.Roulette.Begin(user.ID) {
		utils.Respond(s, i, "❌ You already have a roulette game in progress!", true)
		return
	}

	r := &interactionReply{s: s, i: i}
	if choice == "" {
		offerColors(b, r, user, stake)
		return
	}
	play(b, r, user, stake, bet)
}

// RouletteButton resolves a color picked from the picker.
func RouletteButton(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	ownerID, stake, bet, err := parseButton(i.MessageComponentData().CustomID)
	if err != nil {
		log.Printf("Error parsing roulette button: %v", err)
		return
	}
	user := utils.InteractionUser(i)
	if user == nil || user.ID != ownerID {
		utils.Respond(s, i, "❌ This isn't your game!", true)
		return
	}
	if !pending.claim(user.ID) {
		utils.Respond(s, i, "❌ This bet has expired.", true)
		return
	}
	play(b, &interactionReply{s: s, i: i, update: true}, user, stake, bet)
}

func Roulette(b *bot.Bot, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) < 2 {
		s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("Usage: %sroulette <bet> [red|black|green|0-36]", b.Config.Prefix))
		return
	}
	stake, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		s.ChannelMessageSend(m.ChannelID, "❌ Bet amount must be a number!")
		return
	}

	var bet games.Bet
	hasChoice := len(args) >= 3
	if hasChoice {
		if bet, err = games.ParseBet(args[2]); err != nil {
			s.ChannelMessageSend(m.ChannelID, "❌ Invalid choice! Bet on red/black/green or a number 0-36.")
			return
		}
	}

	if msg := checkStake(context.Background(), b, m.Author.ID, stake); msg != "" {
		s.ChannelMessageSend(m.ChannelID, msg)
		return
	}
	if !b.Roulette.Begin(m.Author.ID) {
		s.ChannelMessageSend(m.ChannelID, "❌ You already have a roulette game in progress!")
		return
	}

	r := &channelReply{s: s, channelID: m.ChannelID}
	if !hasChoice {
		offerColors(b, r, m.Author, stake)
		return
	}
	play(b, r, m.Author, stake, bet)
}

func oddsEmbed() *discordgo.MessageEmbed {
	var lines []string
	for _, o := range games.OddsTable() {
		lines = append(lines, fmt.Sprintf("**%s**: %.1f%% chance, pays %dx (EV %+.3f per 🍓)",
			o.Bet, o.Chance()*100, o.Multiplier, o.ExpectedReturn()))
	}
	return utils.NewEmbed("🎰 Roulette Odds", strings.Join(lines, "\n"), utils.ColorInfo)
}

func Odds(b *bot.Bot, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	s.ChannelMessageSendEmbed(m.ChannelID, oddsEmbed())
}
