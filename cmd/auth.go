package main

import (
	"context"
	"strings"

	"github.com/buinguyenkhai/pttkht-20251-recipe-recommendation-system/internal/session"
	"github.com/urfave/cli/v3"
)

// AuthLogin signs in and persists the token in the local database.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.ensureSession(ctx)
	if err != nil {
		return err
	}

	username := strings.TrimSpace(cmd.String("username"))
	r.logger.Info("logging in", "username", username)
	if err := sess.Login(ctx, username, cmd.String("password")); err != nil {
		return err
	}

	user := sess.User()
	r.writePlain("✓ Logged in as %s\n", user.Username)
	if user.IsAdmin {
		r.writePlain("  Admin tools are available under 'recipes admin'\n")
	}
	if r.db == nil {
		r.writePlain("  The local database is unavailable; this login will not be remembered\n")
	}
	return nil
}

// AuthSignup creates an account and then signs in with it.
func (r *Runner) AuthSignup(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.ensureSession(ctx)
	if err != nil {
		return err
	}

	form := session.SignupForm{
		Username:        cmd.String("username"),
		Password:        cmd.String("password"),
		ConfirmPassword: cmd.String("confirm"),
	}
	if err := sess.Signup(ctx, form); err != nil {
		return err
	}
	r.logger.Info("account created", "username", form.Username)
	r.writePlain("✓ Account %s created\n", strings.TrimSpace(form.Username))

	if err := sess.Login(ctx, strings.TrimSpace(form.Username), form.Password); err != nil {
		return err
	}
	r.writePlain("✓ Logged in as %s\n", sess.User().Username)
	return nil
}

// AuthLogout forgets the stored session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.ensureSession(ctx)
	if err != nil {
		return err
	}
	wasIn := sess.Authenticated()
	sess.Logout()

	if wasIn {
		r.writePlain("✓ Logged out\n")
	} else {
		r.writePlain("Not logged in\n")
	}
	return nil
}

// AuthWhoami prints the signed-in user.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	sess, err := r.ensureSession(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(sess.Snapshot(), true)
	}

	user := sess.User()
	if user == nil {
		r.writePlain("Not logged in\n")
		return nil
	}

	role := "user"
	if user.IsAdmin {
		role = "admin"
	}
	r.writePlain("%s (id %d, %s)\n", user.Username, user.ID, role)
	r.writePlain("Member since: %s\n", user.CreatedAt.Date())
	r.writePlain("Saved recipes: %d\n", sess.SavedCount())
	return nil
}
