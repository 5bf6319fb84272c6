// Package service holds the business rules that sit between HTTP handlers and
// repositories.
package service

import (
	"context"
	"errors"

	"speaksfer/internal/models"
)

// Ownable is implemented by every resource with a single owning user.
type Ownable interface {
	GetUserID() uint
}

// Publisher delivers realtime notifications. *notifications.Notifier
// implements it.
type Publisher interface {
	Notify(ctx context.Context, recipientID uint, event models.Notification) error
}

const permissionDenied = "You do not have permission to perform this action."

// authorOrReadOnly permits a write only when actorID owns obj. Reads never
// reach this check.
func authorOrReadOnly(obj Ownable, actorID uint) error {
	if actorID == 0 {
		return models.NewUnauthorizedError("Authentication credentials were not provided.")
	}
	if obj.GetUserID() != actorID {
		return models.NewForbiddenError(permissionDenied)
	}
	return nil
}

func isNotFound(err error) bool {
	var appErr *models.AppError
	return errors.As(err, &appErr) && appErr.Code == models.CodeNotFound
}
