package services

import (
	"context"

	"github.com/yigit/gradebook/internal/app/models"
)

// ChangeObserver is notified after an authoritative change has committed.
// Implementations must not fail the caller; they handle and log their own errors.
type ChangeObserver interface {
	StudentsChanged(ctx context.Context)
	UsersChanged(ctx context.Context)
	UserLoggedIn(ctx context.Context, user *models.User)
}

// NopObserver ignores every notification
type NopObserver struct{}

func (NopObserver) StudentsChanged(context.Context)            {}
func (NopObserver) UsersChanged(context.Context)               {}
func (NopObserver) UserLoggedIn(context.Context, *models.User) {}
