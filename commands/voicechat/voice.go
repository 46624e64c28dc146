package voicechat

import (
	"fmt"
	"log"

	"StrawberryBot/bot"
	"StrawberryBot/utils"
	"StrawberryBot/voice"

	"github.com/bwmarrin/discordgo"
)

func connection(s *discordgo.Session, guildID string) *discordgo.VoiceConnection {
	s.RLock()
	defer s.RUnlock()
	return s.VoiceConnections[guildID]
}

// join connects to the caller's voice channel. It returns the embed to show
// or a user-facing error.
func join(s *discordgo.Session, guildID, userID string) (*discordgo.MessageEmbed, string) {
	channelID := voice.StateLocator{State: s.State}.VoiceChannel(guildID, userID)
	if channelID == "" {
		return nil, "❌ You need to be in a voice channel first!"
	}
	if connection(s, guildID) != nil {
		return nil, "❌ I'm already in a voice channel!"
	}
	perms, err := s.State.UserChannelPermissions(s.State.User.ID, channelID)
	if err != nil || perms&discordgo.PermissionVoiceConnect == 0 {
		return nil, "❌ I don't have permission to join that channel!"
	}
	if _, err := s.ChannelVoiceJoin(guildID, channelID, false, true); err != nil {
		log.Printf("Error joining voice channel %s: %v", channelID, err)
		return nil, "❌ Failed to join the voice channel!"
	}
	utils.LogComponent("voice", "Joined voice channel %s in guild %s", channelID, guildID)
	return utils.SuccessEmbed("🎵 Joined Voice Channel", fmt.Sprintf("Connected to <#%s>", channelID)), ""
}

func leave(s *discordgo.Session, guildID string) (*discordgo.MessageEmbed, string) {
	vc := connection(s, guildID)
	if vc == nil {
		return nil, "❌ I'm not in a voice channel!"
	}
	channelID := vc.ChannelID
	if err := vc.Disconnect(); err != nil {
		log.Printf("Error leaving voice channel: %v", err)
		return nil, "❌ Failed to leave the voice channel!"
	}
	utils.LogComponent("voice", "Left voice channel %s in guild %s", channelID, guildID)
	return utils.NewEmbed("👋 Left Voice Channel", fmt.Sprintf("Disconnected from <#%s>", channelID), utils.ColorInfo), ""
}

// checkFollow validates a follow request before touching any state.
func checkFollow(follower, target *discordgo.User) string {
	switch {
	case target == nil:
		return "❌ That user is not in this server!"
	case target.Bot:
		return "❌ You can't follow bots!"
	case target.ID == follower.ID:
		return "❌ You can't follow yourself!"
	}
	return ""
}

// follow records the relation and, if both are already in voice, pulls the
// follower over straight away.
func follow(b *bot.Bot, m voice.Mover, loc voice.Locator, guildID string, follower, target *discordgo.User) (*discordgo.MessageEmbed, string) {
	if msg := checkFollow(follower, target); msg != "" {
		return nil, msg
	}
	if _, _, err := b.Follows.Follow(guildID, follower.ID, target.ID); err != nil {
		return nil, "❌ You can't follow yourself!"
	}

	current := loc.VoiceChannel(guildID, follower.ID)
	moves := b.Follows.Plan(guildID, follower.ID, current, loc)
	for _, f := range b.Follows.Apply(m, moves) {
		if f.Dropped {
			return nil, "❌ I don't have permission to move you between channels!"
		}
		log.Printf("Error moving %s to %s: %v", f.Move.UserID, f.Move.ChannelID, f.Err)
	}

	utils.LogComponent("voice", "%s is now following %s", follower.ID, target.ID)
	return utils.NewEmbed("👣 Following User", fmt.Sprintf("Now following %s", target.Mention()), utils.ColorInfo), ""
}

func unfollow(b *bot.Bot, followerID string) (*discordgo.MessageEmbed, string) {
	prev, err := b.Follows.Unfollow(followerID)
	if err != nil {
		return nil, "❌ You're not following anyone!"
	}
	return utils.NewEmbed("🛑 Stopped Following", fmt.Sprintf("No longer following <@%s>", prev.TargetID), utils.ColorInfo), ""
}

// VoiceStateUpdate drags followers along whenever someone changes channel.
func VoiceStateUpdate(b *bot.Bot) func(*discordgo.Session, *discordgo.VoiceStateUpdate) {
	return func(s *discordgo.Session, vs *discordgo.VoiceStateUpdate) {
		if !b.Config.Features.Enabled("voice") || b.Follows.Len() == 0 {
			return
		}
		if vs.BeforeUpdate != nil && vs.BeforeUpdate.ChannelID == vs.ChannelID {
			return
		}
		moves := b.Follows.Plan(vs.GuildID, vs.UserID, vs.ChannelID, voice.StateLocator{State: s.State})
		for _, f := range b.Follows.Apply(s, moves) {
			if !f.Dropped {
				log.Printf("Error moving follower %s: %v", f.Move.UserID, f.Err)
				continue
			}
			utils.LogWarn("Stopped follow for %s: missing move permission", f.Move.UserID)
			notifyDropped(s, f.Move.UserID)
		}
	}
}

func notifyDropped(s *discordgo.Session, userID string) {
	ch, err := s.UserChannelCreate(userID)
	if err != nil {
		log.Printf("Error opening DM with %s: %v", userID, err)
		return
	}
	s.ChannelMessageSend(ch.ID, "❌ I don't have permission to move you between channels, so you are no longer following anyone.")
}

func JoinSlash(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	embed, msg := join(s, i.GuildID, utils.InteractionUser(i).ID)
	if msg != "" {
		utils.Respond(s, i, msg, true)
		return
	}
	utils.RespondEmbed(s, i, embed, false)
}

func LeaveSlash(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	embed, msg := leave(s, i.GuildID)
	if msg != "" {
		utils.Respond(s, i, msg, true)
		return
	}
	utils.RespondEmbed(s, i, embed, false)
}

func FollowSlash(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := utils.OptionMap(i.ApplicationCommandData().Options)
	var target *discordgo.User
	if opt, ok := opts["user"]; ok {
		if u := utils.OptionUser(s, i, opt); u != nil {
			if _, err := s.GuildMember(i.GuildID, u.ID); err == nil {
				target = u
			}
		}
	}
	embed, msg := follow(b, s, voice.StateLocator{State: s.State}, i.GuildID, utils.InteractionUser(i), target)
	if msg != "" {
		utils.Respond(s, i, msg, true)
		return
	}
	utils.RespondEmbed(s, i, embed, false)
}

func UnfollowSlash(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	embed, msg := unfollow(b, utils.InteractionUser(i).ID)
	if msg != "" {
		utils.Respond(s, i, msg, true)
		return
	}
	utils.RespondEmbed(s, i, embed, false)
}

func sendResult(s *discordgo.Session, channelID string, embed *discordgo.MessageEmbed, msg string) {
	if msg != "" {
		s.ChannelMessageSend(channelID, msg)
		return
	}
	s.ChannelMessageSendEmbed(channelID, embed)
}

func Join(b *bot.Bot, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	embed, msg := join(s, m.GuildID, m.Author.ID)
	sendResult(s, m.ChannelID, embed, msg)
}

func Leave(b *bot.Bot, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	embed, msg := leave(s, m.GuildID)
	sendResult(s, m.ChannelID, embed, msg)
}

func Follow(b *bot.Bot, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	if len(args) < 2 {
		s.ChannelMessageSend(m.ChannelID, "Usage: !follow @user")
		return
	}
	userID, err := utils.ParseUserArg(args[1])
	if err != nil {
		s.ChannelMessageSend(m.ChannelID, "Invalid mention. Please use a proper mention (e.g., @username).")
		return
	}
	var target *discordgo.User
	if member, err := s.GuildMember(m.GuildID, userID); err == nil && member != nil {
		target = member.User
	}
	embed, msg := follow(b, s, voice.StateLocator{State: s.State}, m.GuildID, m.Author, target)
	sendResult(s, m.ChannelID, embed, msg)
}

func Unfollow(b *bot.Bot, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	embed, msg := unfollow(b, m.Author.ID)
	sendResult(s, m.ChannelID, embed, msg)
}
