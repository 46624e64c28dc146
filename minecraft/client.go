// Package minecraft is a thin RCON bridge to a Minecraft server.
package minecraft

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gorcon/rcon"

	"StrawberryBot/utils"
)

var (
	ErrDisabled       = errors.New("minecraft integration is not configured")
	ErrInvalidPlayer  = errors.New("invalid player name")
	ErrPlayerNotFound = errors.New("player not found or not online")
)

const DefaultTimeout = 5 * time.Second

// Console is an open RCON session.
type Console interface {
	Execute(command string) (string, error)
	Close() error
}

// Dialer opens a Console.
type Dialer func(addr, password string) (Console, error)

// RCONDialer dials with github.com/gorcon/rcon.
func RCONDialer(timeout time.Duration) Dialer {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return func(addr, password string) (Console, error) {
		conn, err := rcon.Dial(addr, password, rcon.SetDialTimeout(timeout), rcon.SetDeadline(timeout))
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

// Client serializes commands over one lazily opened connection and redials
// once when a command fails on a stale connection.
type Client struct {
	addr     string
	password string
	dial     Dialer

	mu   sync.Mutex
	conn Console
}

func NewClient(addr, password string, dial Dialer) *Client {
	if dial == nil {
		dial = RCONDialer(DefaultTimeout)
	}
	return &Client{addr: addr, password: password, dial: dial}
}

func (c *Client) Address() string {
	if c == nil {
		return ""
	}
	return c.addr
}

// Execute runs a raw console command and returns the server's reply.
func (c *Client) Execute(ctx context.Context, command string) (string, error) {
	if c == nil {
		return "", ErrDisabled
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if c.conn == nil {
			conn, err := c.dial(c.addr, c.password)
			if err != nil {
				return "", fmt.Errorf("connect to %s: %w", c.addr, err)
			}
			c.conn = conn
		}
		resp, err := c.conn.Execute(command)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		_ = c.conn.Close()
		c.conn = nil
		utils.LogComponent("minecraft", "RCON command failed, reconnecting: %v", err)
	}
	return "", fmt.Errorf("rcon %q: %w", command, lastErr)
}

func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

var playerNameRe = regexp.MustCompile(`^[A-Za-z0-9_]{1,16}$`)

// ValidPlayer reports whether name is a legal Minecraft username.
func ValidPlayer(name string) bool {
	return playerNameRe.MatchString(name)
}

// Status returns the cleaned output of "list".
func (c *Client) Status(ctx context.Context) (string, error) {
	resp, err := c.Execute(ctx, "list")
	if err != nil {
		return "", err
	}
	return CleanResponse(resp), nil
}

// Command runs a console command, stripping a leading slash.
func (c *Client) Command(ctx context.Context, command string) (string, error) {
	command = strings.TrimPrefix(strings.TrimSpace(command), "/")
	if command == "" {
		return "", fmt.Errorf("empty command")
	}
	resp, err := c.Execute(ctx, command)
	if err != nil {
		return "", err
	}
	return CleanResponse(resp), nil
}

// PlayerInfo queries health, position, game mode and level.
func (c *Client) PlayerInfo(ctx context.Context, player string) (PlayerInfo, error) {
	if !ValidPlayer(player) {
		return PlayerInfo{}, ErrInvalidPlayer
	}
	var raw [4]string
	for i, path := range []string{"Health", "Pos", "playerGameType", "XpLevel"} {
		resp, err := c.Execute(ctx, fmt.Sprintf("data get entity %s %s", player, path))
		if err != nil {
			return PlayerInfo{}, err
		}
		raw[i] = resp
	}
	info, ok := ParsePlayerInfo(raw[0], raw[1], raw[2], raw[3])
	if !ok {
		return PlayerInfo{}, ErrPlayerNotFound
	}
	return info, nil
}

// Inventory reads an online player's inventory.
func (c *Client) Inventory(ctx context.Context, player string) (Inventory, error) {
	if !ValidPlayer(player) {
		return Inventory{}, ErrInvalidPlayer
	}
	list, err := c.Status(ctx)
	if err != nil {
		return Inventory{}, err
	}
	if !IsOnline(list, player) {
		return Inventory{}, ErrPlayerNotFound
	}

	resp, err := c.Execute(ctx, fmt.Sprintf("data get entity %s Inventory", player))
	if err != nil {
		return Inventory{}, err
	}
	if notFound(resp) {
		return Inventory{}, ErrPlayerNotFound
	}
	utils.LogDebug("Raw inventory data for %s: %s", player, resp)
	return ParseInventory(CleanResponse(resp)), nil
}
