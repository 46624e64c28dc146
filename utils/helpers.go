package utils

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// ExtractUserID extracts the user ID from a mention
func ExtractUserID(mention string) (string, error) {
	// Check if the mention is properly formatted
	if !strings.HasPrefix(mention, "<@") || !strings.HasSuffix(mention, ">") {
		return "", fmt.Errorf("invalid mention format")
	}

	// Extract the user ID
	userID := strings.TrimPrefix(strings.TrimSuffix(mention, ">"), "<@")

	// Remove the nickname exclamation mark if present
	userID = strings.TrimPrefix(userID, "!")

	// Validate that the user ID is a valid Snowflake (Discord ID)
	if _, err := strconv.ParseUint(userID, 10, 64); err != nil {
		return "", fmt.Errorf("invalid user ID")
	}

	return userID, nil
}

// ParseUserArg accepts a mention or a bare snowflake.
func ParseUserArg(arg string) (string, error) {
	if id, err := ExtractUserID(arg); err == nil {
		return id, nil
	}
	if _, err := strconv.ParseUint(arg, 10, 64); err != nil {
		return "", fmt.Errorf("invalid user")
	}
	return arg, nil
}

// ParseAmount parses a positive whole number of strawberries.
func ParseAmount(arg string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid amount %q", arg)
	}
	return n, nil
}

// FormatDuration renders a wait time the way replies show it, e.g. "3h 12m" or "45s".
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		d = time.Second
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm", h, m)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// InteractionUser returns the invoking user for guild and DM interactions.
func InteractionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// OptionMap indexes the options of an interaction (or of a subcommand) by name.
func OptionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, opt := range opts {
		m[opt.Name] = opt
	}
	return m
}

// HasPermission reports whether the interaction member holds perm, either
// directly or through Administrator.
func HasPermission(i *discordgo.InteractionCreate, perm int64) bool {
	if i.Member == nil {
		return false
	}
	p := i.Member.Permissions
	return p&discordgo.PermissionAdministrator != 0 || p&perm != 0
}

// CheckPermission checks if a user has a specific permission in a channel
func CheckPermission(s *discordgo.Session, userID, channelID string, permission int64) (bool, error) {
	perms, err := s.UserChannelPermissions(userID, channelID)
	if err != nil {
		return false, fmt.Errorf("error fetching permissions: %w", err)
	}
	return perms&discordgo.PermissionAdministrator != 0 || perms&permission != 0, nil
}

// CheckManageMessagesPermission checks if a user has manage messages permissions
func CheckManageMessagesPermission(s *discordgo.Session, userID, channelID string) (bool, error) {
	return CheckPermission(s, userID, channelID, discordgo.PermissionManageMessages)
}

// OptionUser resolves a user option, preferring the interaction's resolved data
// so that flags like Bot are populated.
func OptionUser(s *discordgo.Session, i *discordgo.InteractionCreate, opt *discordgo.ApplicationCommandInteractionDataOption) *discordgo.User {
	if opt == nil {
		return nil
	}
	if i.Type == discordgo.InteractionApplicationCommand {
		if resolved := i.ApplicationCommandData().Resolved; resolved != nil {
			id, _ := opt.Value.(string)
			if u, ok := resolved.Users[id]; ok {
				return u
			}
		}
	}
	return opt.UserValue(s)
}

// IsPermissionError reports a Discord "Missing Permissions" / 403 response.
func IsPermissionError(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil && restErr.Message.Code == discordgo.ErrCodeMissingPermissions {
		return true
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusForbidden
}
