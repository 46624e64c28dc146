package games

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
)

type Color string

const (
	Red   Color = "red"
	Black Color = "black"
	Green Color = "green"
)

func (c Color) Emoji() string {
	switch c {
	case Red:
		return "🔴"
	case Black:
		return "⚫"
	default:
		return "🟢"
	}
}

const (
	ColorMultiplier  = 2
	GreenMultiplier  = 35
	NumberMultiplier = 35
	WheelSize        = 37
)

var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true, 14: true, 16: true, 18: true,
	19: true, 21: true, 23: true, 25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

// PocketColor returns the color of a wheel pocket 0-36.
func PocketColor(n int) Color {
	switch {
	case n == 0:
		return Green
	case redNumbers[n]:
		return Red
	default:
		return Black
	}
}

// wheelWeights gives every pocket the same weight.
var wheelWeights = func() []int {
	w := make([]int, WheelSize)
	for i := range w {
		w[i] = 1
	}
	return w
}()

var ErrInvalidChoice = errors.New("bet on red, black, green or a number 0-36")

// Bet is either a color or a single number.
type Bet struct {
	Color  Color
	Number int
	IsNum  bool
}

func (b Bet) String() string {
	if b.IsNum {
		return strconv.Itoa(b.Number)
	}
	return string(b.Color)
}

// Multiplier is the payout factor applied to the stake on a win.
func (b Bet) Multiplier() int64 {
	switch {
	case b.IsNum:
		return NumberMultiplier
	case b.Color == Green:
		return GreenMultiplier
	default:
		return ColorMultiplier
	}
}

// Wins reports whether the bet covers the pocket.
func (b Bet) Wins(pocket int) bool {
	if b.IsNum {
		return b.Number == pocket
	}
	return PocketColor(pocket) == b.Color
}

// ParseBet accepts a color name (or its emoji / first letter) or a number 0-36.
func ParseBet(choice string) (Bet, error) {
	c := strings.ToLower(strings.TrimSpace(choice))
	switch c {
	case "red", "r", "🔴":
		return Bet{Color: Red}, nil
	case "black", "b", "⚫":
		return Bet{Color: Black}, nil
	case "green", "g", "🟢":
		return Bet{Color: Green}, nil
	}
	n, err := strconv.Atoi(c)
	if err != nil || n < 0 || n >= WheelSize {
		return Bet{}, ErrInvalidChoice
	}
	return Bet{Number: n, IsNum: true}, nil
}

// Spin is the outcome of one wheel spin.
type Spin struct {
	Pocket   int
	Color    Color
	Won      bool
	Winnings int64
}

// Roulette spins the wheel. It also tracks which players have a game in flight.
type Roulette struct {
	rng Rand

	mu      sync.Mutex
	playing map[string]bool
}

func NewRoulette(rng Rand) *Roulette {
	return &Roulette{rng: rng, playing: make(map[string]bool)}
}

// Spin draws a pocket and scores the bet. On a win Winnings is stake*multiplier.
func (r *Roulette) Spin(bet Bet, stake int64) Spin {
	pocket := Draw(r.rng, wheelWeights)
	s := Spin{Pocket: pocket, Color: PocketColor(pocket)}
	if bet.Wins(pocket) {
		s.Won = true
		s.Winnings = stake * bet.Multiplier()
	}
	return s
}

// Begin marks userID as playing. It returns false if a game is already running.
func (r *Roulette) Begin(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.playing[userID] {
		return false
	}
	r.playing[userID] = true
	return true
}

// Playing reports whether userID has a game in flight.
func (r *Roulette) Playing(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playing[userID]
}

func (r *Roulette) End(userID string) {
	r.mu.Lock()
	delete(r.playing, userID)
	r.mu.Unlock()
}

// Odds describes one bet type for the help text.
type Odds struct {
	Bet        string
	Pockets    int
	Multiplier int64
}

// Chance is the probability of winning.
func (o Odds) Chance() float64 {
	return float64(o.Pockets) / WheelSize
}

// ExpectedReturn is the average net result per strawberry staked.
func (o Odds) ExpectedReturn() float64 {
	p := o.Chance()
	return p*float64(o.Multiplier) - (1 - p)
}

func OddsTable() []Odds {
	return []Odds{
		{Bet: "Red / Black", Pockets: len(redNumbers), Multiplier: ColorMultiplier},
		{Bet: "Green (0)", Pockets: 1, Multiplier: GreenMultiplier},
		{Bet: "Single number", Pockets: 1, Multiplier: NumberMultiplier},
	}
}

func (o Odds) String() string {
	return fmt.Sprintf("%s: %.1f%% chance, %dx payout", o.Bet, o.Chance()*100, o.Multiplier)
}

var footers = []string{
	"Better luck next time! 🍀",
	"The house always wins... or does it? 🤔",
	"Time to go double or nothing! 💰",
	"That was a close one! 😅",
	"Keep rolling! 🎲",
	"Fortune favors the bold! ⚔️",
	"May the odds be ever in your favor! 🎯",
}

// Footer picks a random flavour line for the result embed.
func (r *Roulette) Footer() string {
	return footers[r.rng.Intn(len(footers))]
}
