package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
)

// PageState is carried in a pagination button's custom id:
// "<prefix>:<ownerID>:<page>". Pages are 1-based.
type PageState struct {
	Prefix  string
	OwnerID string
	Page    int
}

func (p PageState) CustomID() string {
	return fmt.Sprintf("%s:%s:%d", p.Prefix, p.OwnerID, p.Page)
}

// ParsePageState decodes a pagination custom id.
func ParsePageState(customID string) (PageState, error) {
	parts := strings.Split(customID, ":")
	if len(parts) != 3 {
		return PageState{}, fmt.Errorf("invalid page id %q", customID)
	}
	page, err := strconv.Atoi(parts[2])
	if err != nil || page < 1 {
		return PageState{}, fmt.Errorf("invalid page in %q", customID)
	}
	return PageState{Prefix: parts[0], OwnerID: parts[1], Page: page}, nil
}

// TotalPages is the page count for n items, at least 1.
func TotalPages(n, perPage int) int {
	if n <= 0 || perPage <= 0 {
		return 1
	}
	return (n + perPage - 1) / perPage
}

// ClampPage keeps page within [1, total].
func ClampPage(page, total int) int {
	if page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

// PageBounds returns the slice bounds of a 1-based page.
func PageBounds(page, perPage, n int) (int, int) {
	start := (page - 1) * perPage
	if start > n {
		start = n
	}
	end := start + perPage
	if end > n {
		end = n
	}
	return start, end
}

// PageButtons builds the previous/next row. Nil when there is a single page.
func PageButtons(prefix, ownerID string, page, total int) []discordgo.MessageComponent {
	if total <= 1 {
		return nil
	}
	prev := PageState{Prefix: prefix, OwnerID: ownerID, Page: page - 1}
	next := PageState{Prefix: prefix, OwnerID: ownerID, Page: page + 1}
	if page <= 1 {
		prev.Page = total
	}
	if page >= total {
		next.Page = 1
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Emoji: &discordgo.ComponentEmoji{Name: "⬅️"}, Style: discordgo.SecondaryButton, CustomID: prev.CustomID()},
			discordgo.Button{Emoji: &discordgo.ComponentEmoji{Name: "➡️"}, Style: discordgo.SecondaryButton, CustomID: next.CustomID()},
		}},
	}
}
