// Package voice tracks "follow" relations between guild members and works
// out which voice moves keep followers next to the people they follow.
package voice

import (
	"errors"
	"sort"
	"sync"

	"StrawberryBot/utils"

	"github.com/bwmarrin/discordgo"
)

var (
	ErrSelfFollow   = errors.New("you cannot follow yourself")
	ErrNotFollowing = errors.New("not following anyone")
)

// Follow is one follower's target.
type Follow struct {
	GuildID  string
	TargetID string
}

// Follows is the in-memory follower -> target map. It is lost on restart.
type Follows struct {
	mu         sync.RWMutex
	byFollower map[string]Follow
}

func NewFollows() *Follows {
	return &Follows{byFollower: make(map[string]Follow)}
}

// Follow records that followerID follows targetID, replacing any previous
// target. It returns the previous relation if there was one.
func (f *Follows) Follow(guildID, followerID, targetID string) (Follow, bool, error) {
	if followerID == targetID {
		return Follow{}, false, ErrSelfFollow
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, had := f.byFollower[followerID]
	f.byFollower[followerID] = Follow{GuildID: guildID, TargetID: targetID}
	return prev, had, nil
}

func (f *Follows) Unfollow(followerID string) (Follow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, ok := f.byFollower[followerID]
	if !ok {
		return Follow{}, ErrNotFollowing
	}
	delete(f.byFollower, followerID)
	return prev, nil
}

func (f *Follows) Target(followerID string) (Follow, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	fl, ok := f.byFollower[followerID]
	return fl, ok
}

// Followers lists everyone following targetID in guildID, sorted by id.
func (f *Follows) Followers(guildID, targetID string) []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []string
	for follower, fl := range f.byFollower {
		if fl.GuildID == guildID && fl.TargetID == targetID {
			out = append(out, follower)
		}
	}
	sort.Strings(out)
	return out
}

func (f *Follows) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.byFollower)
}

// Locator answers which voice channel a member is in ("" when not in voice).
type Locator interface {
	VoiceChannel(guildID, userID string) string
}

// StateLocator reads voice states from the discordgo state cache.
type StateLocator struct {
	State *discordgo.State
}

func (l StateLocator) VoiceChannel(guildID, userID string) string {
	if l.State == nil {
		return ""
	}
	vs, err := l.State.VoiceState(guildID, userID)
	if err != nil || vs == nil {
		return ""
	}
	return vs.ChannelID
}

// Move drags UserID into ChannelID.
type Move struct {
	GuildID   string
	UserID    string
	ChannelID string
}

// Plan reacts to userID arriving in channelID ("" means they left voice).
// Followers of userID who are in another channel are pulled along, and if
// userID is itself a follower it is sent to its target's channel.
func (f *Follows) Plan(guildID, userID, channelID string, loc Locator) []Move {
	if channelID == "" {
		return nil
	}

	var moves []Move
	for _, follower := range f.Followers(guildID, userID) {
		current := loc.VoiceChannel(guildID, follower)
		if current != "" && current != channelID {
			moves = append(moves, Move{GuildID: guildID, UserID: follower, ChannelID: channelID})
		}
	}

	if fl, ok := f.Target(userID); ok && fl.GuildID == guildID {
		target := loc.VoiceChannel(guildID, fl.TargetID)
		if target != "" && target != channelID {
			moves = append(moves, Move{GuildID: guildID, UserID: userID, ChannelID: target})
		}
	}
	return moves
}

// Mover is satisfied by *discordgo.Session.
type Mover interface {
	GuildMemberMove(guildID string, userID string, channelID *string, options ...discordgo.RequestOption) error
}

// Failure is a move that could not be made.
type Failure struct {
	Move    Move
	Err     error
	Dropped bool
}

// Apply performs the moves. A move refused for missing permissions drops
// the follower's relation.
func (f *Follows) Apply(m Mover, moves []Move) []Failure {
	var failures []Failure
	for _, mv := range moves {
		channelID := mv.ChannelID
		err := m.GuildMemberMove(mv.GuildID, mv.UserID, &channelID)
		if err == nil {
			continue
		}
		fail := Failure{Move: mv, Err: err}
		if utils.IsPermissionError(err) {
			_, _ = f.Unfollow(mv.UserID)
			fail.Dropped = true
		}
		failures = append(failures, fail)
	}
	return failures
}
