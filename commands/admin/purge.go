package admin

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"StrawberryBot/bot"
	"StrawberryBot/utils"

	"github.com/bwmarrin/discordgo"
)

const (
	maxPurgeAmount     = 1000
	defaultPurgeSlash  = 100
	defaultPurgePrefix = 5

	// Discord refuses bulk deletes for messages older than two weeks.
	bulkDeleteMaxAge = 14*24*time.Hour - time.Minute
	bulkDeleteLimit  = 100
)

var confirmationTTL = 3 * time.Second

// messageAPI is the part of *discordgo.Session purge needs.
type messageAPI interface {
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
	ChannelMessagesBulkDelete(channelID string, messages []string, options ...discordgo.RequestOption) error
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

// purge scans up to amount messages older than beforeID ("" for the newest)
// and deletes those written by authorID, or all of them when authorID is "".
// It returns how many messages were deleted.
func purge(api messageAPI, channelID, beforeID string, amount int, authorID string, now time.Time) (int, error) {
	var recent, old []string
	scanned := 0
	for scanned < amount {
		batch := min(bulkDeleteLimit, amount-scanned)
		msgs, err := api.ChannelMessages(channelID, batch, beforeID, "", "")
		if err != nil {
			return 0, err
		}
		if len(msgs) == 0 {
			break
		}
		for _, msg := range msgs {
			scanned++
			beforeID = msg.ID
			if authorID != "" && (msg.Author == nil || msg.Author.ID != authorID) {
				continue
			}
			if now.Sub(msg.Timestamp) < bulkDeleteMaxAge {
				recent = append(recent, msg.ID)
			} else {
				old = append(old, msg.ID)
			}
		}
		if len(msgs) < batch {
			break
		}
	}

	deleted := 0
	for start := 0; start < len(recent); start += bulkDeleteLimit {
		chunk := recent[start:min(start+bulkDeleteLimit, len(recent))]
		var err error
		if len(chunk) == 1 {
			err = api.ChannelMessageDelete(channelID, chunk[0])
		} else {
			err = api.ChannelMessagesBulkDelete(channelID, chunk)
		}
		if err != nil {
			return deleted, err
		}
		deleted += len(chunk)
	}
	for _, id := range old {
		if err := api.ChannelMessageDelete(channelID, id); err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func purgeResult(deleted int, authorID string) string {
	if authorID != "" {
		return fmt.Sprintf("✨ Deleted %d messages from <@%s>!", deleted, authorID)
	}
	return fmt.Sprintf("✨ Deleted %d messages!", deleted)
}

func PurgeSlash(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := utils.OptionMap(i.ApplicationCommandData().Options)
	amount := defaultPurgeSlash
	if opt, ok := opts["amount"]; ok {
		amount = int(opt.IntValue())
	}
	if amount <= 0 {
		utils.Respond(s, i, "❌ Amount must be positive!", true)
		return
	}
	if amount > maxPurgeAmount {
		utils.Respond(s, i, "❌ Cannot delete more than 1000 messages at once!", true)
		return
	}
	if !utils.HasPermission(i, discordgo.PermissionManageMessages) {
		utils.Respond(s, i, "❌ You need the 'Manage Messages' permission to use this command!", true)
		return
	}
	authorID := ""
	if opt, ok := opts["user"]; ok {
		if u := utils.OptionUser(s, i, opt); u != nil {
			authorID = u.ID
		}
	}

	if err := utils.Defer(s, i, true); err != nil {
		log.Printf("Error deferring purge: %v", err)
		return
	}

	deleted, err := purge(s, i.ChannelID, "", amount, authorID, time.Now())
	msg := purgeResult(deleted, authorID)
	switch {
	case err != nil && utils.IsPermissionError(err):
		msg = "❌ I don't have permission to delete messages!"
	case err != nil:
		log.Printf("Error purging messages: %v", err)
		msg = fmt.Sprintf("❌ Error after deleting %d messages: %v", deleted, err)
	default:
		utils.LogComponent("admin", "Purge: %s deleted %d messages in %s", utils.InteractionUser(i).ID, deleted, i.ChannelID)
	}
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &msg}); err != nil {
		log.Printf("Error editing purge response: %v", err)
	}
}

func Purge(b *bot.Bot, s *discordgo.Session, m *discordgo.MessageCreate, args []string) {
	ok, err := utils.CheckManageMessagesPermission(s, m.Author.ID, m.ChannelID)
	if err != nil {
		log.Printf("Error checking permissions: %v", err)
		utils.SendError(s, m.ChannelID, utils.GenericError)
		return
	}
	if !ok {
		s.ChannelMessageSend(m.ChannelID, "You are not authorized to use this command.")
		return
	}

	amount := defaultPurgePrefix
	if len(args) >= 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			s.ChannelMessageSend(m.ChannelID, "❌ Amount must be positive!")
			return
		}
		amount = n
	}
	if amount > maxPurgeAmount {
		s.ChannelMessageSend(m.ChannelID, "❌ Cannot delete more than 1000 messages at once!")
		return
	}
	authorID := ""
	if len(args) >= 3 {
		id, err := utils.ParseUserArg(args[2])
		if err != nil {
			s.ChannelMessageSend(m.ChannelID, "Invalid mention. Please use a proper mention (e.g., @username).")
			return
		}
		authorID = id
	}

	if err := s.ChannelMessageDelete(m.ChannelID, m.ID); err != nil {
		if utils.IsPermissionError(err) {
			s.ChannelMessageSend(m.ChannelID, "❌ I need the 'Manage Messages' permission!")
			return
		}
		log.Printf("Error deleting purge command message: %v", err)
	}

	deleted, err := purge(s, m.ChannelID, m.ID, amount, authorID, time.Now())
	if err != nil {
		if utils.IsPermissionError(err) {
			s.ChannelMessageSend(m.ChannelID, "❌ I need the 'Manage Messages' permission!")
			return
		}
		log.Printf("Error purging messages: %v", err)
		s.ChannelMessageSend(m.ChannelID, fmt.Sprintf("❌ Error: %v", err))
		return
	}
	utils.LogComponent("admin", "Purge: %s deleted %d messages in %s", m.Author.ID, deleted, m.ChannelID)

	confirm, err := s.ChannelMessageSend(m.ChannelID, purgeResult(deleted, authorID))
	if err != nil {
		return
	}
	time.AfterFunc(confirmationTTL, func() {
		s.ChannelMessageDelete(confirm.ChannelID, confirm.ID)
	})
}
