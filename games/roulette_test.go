package games

import (
	"errors"
	"testing"
)

// fixedRand returns queued values in order.
type fixedRand struct {
	vals []int
}

func (f *fixedRand) Intn(n int) int {
	v := f.vals[0]
	f.vals = f.vals[1:]
	return v % n
}

func TestDrawRespectsWeights(t *testing.T) {
	weights := []int{0, 3, -1, 2}
	cases := map[int]int{0: 1, 2: 1, 3: 3, 4: 3}
	for roll, want := range cases {
		if got := Draw(&fixedRand{vals: []int{roll}}, weights); got != want {
			t.Fatalf("roll %d: expected index %d, got %d", roll, want, got)
		}
	}
	if got := Draw(&fixedRand{vals: []int{0}}, []int{0, 0}); got != -1 {
		t.Fatalf("expected -1 for empty weights, got %d", got)
	}
}

func TestDrawDistribution(t *testing.T) {
	rng := NewRand(42)
	counts := make([]int, 3)
	for i := 0; i < 30000; i++ {
		counts[Draw(rng, []int{1, 2, 7})]++
	}
	if counts[0] > counts[1] || counts[1] > counts[2] {
		t.Fatalf("distribution does not follow weights: %v", counts)
	}
}

func TestPocketColor(t *testing.T) {
	reds, blacks := 0, 0
	for n := 1; n < WheelSize; n++ {
		switch PocketColor(n) {
		case Red:
			reds++
		case Black:
			blacks++
		default:
			t.Fatalf("pocket %d should not be green", n)
		}
	}
	if reds != 18 || blacks != 18 {
		t.Fatalf("expected 18/18, got %d red %d black", reds, blacks)
	}
	if PocketColor(0) != Green || PocketColor(32) != Red || PocketColor(26) != Black {
		t.Fatal("unexpected colors for 0/32/26")
	}
}

func TestParseBet(t *testing.T) {
	cases := []struct {
		in   string
		want Bet
	}{
		{"Red", Bet{Color: Red}},
		{"b", Bet{Color: Black}},
		{"🟢", Bet{Color: Green}},
		{"0", Bet{Number: 0, IsNum: true}},
		{" 36 ", Bet{Number: 36, IsNum: true}},
	}
	for _, tc := range cases {
		got, err := ParseBet(tc.in)
		if err != nil {
			t.Fatalf("%q: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%q: expected %+v, got %+v", tc.in, tc.want, got)
		}
	}
	for _, bad := range []string{"37", "-1", "blue", ""} {
		if _, err := ParseBet(bad); !errors.Is(err, ErrInvalidChoice) {
			t.Fatalf("%q: expected ErrInvalidChoice, got %v", bad, err)
		}
	}
}

func TestSpinPayouts(t *testing.T) {
	cases := []struct {
		name   string
		bet    Bet
		pocket int
		won    bool
		payout int64
	}{
		{"red wins", Bet{Color: Red}, 32, true, 20},
		{"red loses on black", Bet{Color: Red}, 26, false, 0},
		{"red loses on zero", Bet{Color: Red}, 0, false, 0},
		{"green wins", Bet{Color: Green}, 0, true, 350},
		{"number wins", Bet{Number: 17, IsNum: true}, 17, true, 350},
		{"number loses", Bet{Number: 17, IsNum: true}, 18, false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := NewRoulette(&fixedRand{vals: []int{tc.pocket}})
			s := r.Spin(tc.bet, 10)
			if s.Pocket != tc.pocket || s.Won != tc.won || s.Winnings != tc.payout {
				t.Fatalf("unexpected spin %+v", s)
			}
		})
	}
}

func TestBeginEnd(t *testing.T) {
	r := NewRoulette(NewRand(1))
	if !r.Begin("a") {
		t.Fatal("first begin should succeed")
	}
	if r.Begin("a") {
		t.Fatal("second begin should be refused")
	}
	if !r.Playing("a") || r.Playing("b") {
		t.Fatal("only a should be playing")
	}
	r.End("a")
	if !r.Begin("a") {
		t.Fatal("begin after end should succeed")
	}
}

func TestOddsTable(t *testing.T) {
	table := OddsTable()
	if len(table) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(table))
	}
	number := table[2]
	want := 35.0/37 - 36.0/37
	if diff := number.ExpectedReturn() - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected %f, got %f", want, number.ExpectedReturn())
	}
	if table[0].Pockets != 18 {
		t.Fatalf("expected 18 red pockets, got %d", table[0].Pockets)
	}
}
