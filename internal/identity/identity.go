package identity

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/Tiliavir/file-time-tracker/internal/logger"
	"github.com/Tiliavir/file-time-tracker/internal/model"
)

// Resolver yields the identity attributed to a closed session. It never
// fails; on error it returns model.UnknownUser.
type Resolver interface {
	Resolve(ctx context.Context) model.User
}

// Static always resolves to the configured user.
type Static model.User

func (s Static) Resolve(context.Context) model.User {
	return model.User(s)
}

// GitResolver reads user.name and user.email from git config as seen from Dir.
type GitResolver struct {
	Dir    string
	Logger logger.Logger
	// run is swapped in tests.
	run func(ctx context.Context, dir string, args ...string) (string, error)
}

// NewGitResolver returns a resolver running git in dir.
func NewGitResolver(dir string, log logger.Logger) *GitResolver {
	return &GitResolver{Dir: dir, Logger: log, run: runGit}
}

func (g *GitResolver) Resolve(ctx context.Context) model.User {
	name, err := g.run(ctx, g.Dir, "config", "user.name")
	if err != nil {
		g.Logger.Warnf(logger.TypeIdentity, "error getting git user info: %s", err)
		return model.UnknownUser
	}
	email, err := g.run(ctx, g.Dir, "config", "user.email")
	if err != nil {
		g.Logger.Warnf(logger.TypeIdentity, "error getting git user info: %s", err)
		return model.UnknownUser
	}
	if name == "" || email == "" {
		g.Logger.Warnf(logger.TypeIdentity, "git user.name or user.email not set, recording as %s", model.UnknownUser.Key())
		return model.UnknownUser
	}
	return model.User{Name: name, Email: email}
}

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(string(out)), nil
}

// New picks a Static resolver when both name and email are configured and a
// GitResolver otherwise.
func New(name, email, dir string, log logger.Logger) Resolver {
	if name != "" && email != "" {
		return Static{Name: name, Email: email}
	}
	return NewGitResolver(dir, log)
}
