package services

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/refdata-service/internal/repositories"
)

const (
	adminRole    = "admin"
	wildcardNoun = "all"
)

// PermissionChecker builds the permission callback for the user running an import
type PermissionChecker interface {
	ForUser(ctx context.Context, userID string) (PermissionCheck, error)
}

type rolePermissionChecker struct {
	repo repositories.Repository
}

func NewPermissionChecker(repo repositories.Repository) PermissionChecker {
	return &rolePermissionChecker{repo: repo}
}

// ForUser returns a check backed by the user's role grants
func (c *rolePermissionChecker) ForUser(ctx context.Context, userID string) (PermissionCheck, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}

	user, err := c.repo.Permission().GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	if user.Role == adminRole {
		return AllowAll, nil
	}

	grants, err := c.repo.Permission().ListForRole(ctx, user.Role)
	if err != nil {
		return nil, err
	}

	// object-scoped grants do not cover whole-table writes
	allowed := map[string]map[string]bool{}
	for _, g := range grants {
		if g.ObjectID != nil && *g.ObjectID != "" {
			continue
		}
		if allowed[g.Verb] == nil {
			allowed[g.Verb] = map[string]bool{}
		}
		allowed[g.Verb][g.Noun] = true
	}

	return func(verb, noun string) bool {
		nouns := allowed[verb]
		return nouns[noun] || nouns[wildcardNoun]
	}, nil
}
