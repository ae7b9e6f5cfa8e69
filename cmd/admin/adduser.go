package main

import (
	"context"
	"fmt"

	"github.com/yigit/gradebook/internal/app/models"
	"github.com/yigit/gradebook/internal/pkg/helpers"
)

// addUser creates the account, or resets the password, email and role of an existing one
func (cli *commandLine) addUser(ctx context.Context, username, email, pwd string, isAdmin bool) error {
	role := models.RoleUser
	if isAdmin {
		role = models.RoleAdmin
	}

	user, created, err := cli.deps.AuthService.ProvisionUser(ctx, username, pwd, helpers.StringPtr(helpers.NullIfBlank(email)), role)
	if err != nil {
		return err
	}

	action := "updated"
	if created {
		action = "created"
	}
	fmt.Fprintf(cli.out, "user %q %s (id=%d, role=%s)\n", user.Username, action, user.ID, user.Role)
	return nil
}
