package service

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/duong2179/slack-hodor/internal/logger"
)

// MembershipGuard grants privileges to members of the home channel.
// Membership is looked up on every call so that joining or leaving the
// channel takes effect on the next command.
type MembershipGuard struct {
	directory MembershipDirectory
	homeName  string
	homeID    string
	logger    *logger.Logger
}

func NewMembershipGuard(directory MembershipDirectory, homeName string, log *logger.Logger) *MembershipGuard {
	if log == nil {
		log = logger.NewWithWriter(io.Discard)
	}
	return &MembershipGuard{
		directory: directory,
		homeName:  homeName,
		logger:    log,
	}
}

// HomeName returns the configured home channel name.
func (g *MembershipGuard) HomeName() string {
	return g.homeName
}

// Validate resolves the home channel and checks the bot has joined it.
func (g *MembershipGuard) Validate(ctx context.Context, botID string) error {
	id, err := g.directory.ChannelID(ctx, g.homeName)
	if err != nil {
		return fmt.Errorf("failed to resolve home channel %s: %w", g.homeName, err)
	}
	members, err := g.directory.ChannelMembers(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list members of %s: %w", g.homeName, err)
	}
	if !slices.Contains(members, botID) {
		return fmt.Errorf("bot %s is not a member of %s", botID, g.homeName)
	}
	g.homeID = id
	return nil
}

// IsPrivileged reports whether user currently belongs to the home channel.
// Lookup failures are logged and deny the privilege.
func (g *MembershipGuard) IsPrivileged(ctx context.Context, user string) bool {
	if g.homeID == "" {
		g.logger.Warn("Home channel not validated", logger.Channel(g.homeName), logger.User(user))
		return false
	}
	members, err := g.directory.ChannelMembers(ctx, g.homeID)
	if err != nil {
		g.logger.Error("Failed to fetch home channel members",
			logger.Channel(g.homeName),
			logger.User(user),
			logger.Error(err))
		return false
	}
	return slices.Contains(members, user)
}
