package services

import (
	"context"
	"strings"

	"github.com/foodlinkhq/foodlink/internal/models"
	"github.com/foodlinkhq/foodlink/internal/repository"
)

func ensuredContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// requireRole loads the user and checks the account type.
func requireRole(ctx context.Context, repo repository.Repository, userID string, role models.Role) (*models.User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserNotFound
	}
	user, err := repo.GetUser(ctx, userID)
	if err != nil {
		return nil, storageError(err, ErrUserNotFound)
	}
	if user.Role != role {
		return nil, ErrRoleNotPermitted
	}
	return user, nil
}

func normaliseIDs(values []string) []string {
	if len(values) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, exists := seen[value]; exists {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}
