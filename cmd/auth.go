package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/tunebook/internal/auth"
)

// Signup registers a new account with the configured identity provider.
func (r *Runner) Signup(ctx context.Context, cmd *cli.Command) error {
	email, password, err := r.credentials(cmd)
	if err != nil {
		return err
	}
	if err := auth.ValidateCredentials(email, password); err != nil {
		return err
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	user, err := r.auth.Signup(ctx, email, password)
	if err != nil {
		return err
	}

	r.logger.Info("account created", "email", user.Email, "provider", r.provider.Name())
	r.writePlain("✓ Account created for %s\n", user.Email)
	return r.writePlain("Run 'tunebook login %s' to log in.\n", user.Email)
}

// Login authenticates and stores the session for later commands.
func (r *Runner) Login(ctx context.Context, cmd *cli.Command) error {
	email, password, err := r.credentials(cmd)
	if err != nil {
		return err
	}
	if err := r.open(ctx); err != nil {
		return err
	}

	state, err := r.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return r.writePlain("✓ Logged in as %s\n", state.User.Email)
}

// Logout revokes the stored session.
func (r *Runner) Logout(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	state := r.auth.Session().Get()
	if !state.Authenticated() {
		return r.writePlain("Not logged in.\n")
	}

	if err := r.auth.Logout(ctx); err != nil {
		r.logger.Warn("logout was not clean", "error", err)
	}
	return r.writePlain("✓ Logged out %s\n", state.User.Email)
}

// Whoami prints the logged in user.
func (r *Runner) Whoami(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	state := r.auth.Session().Get()
	if !state.Authenticated() {
		return r.writePlain("Not logged in.\n")
	}
	return r.writePlain("%s (%s, via %s)\n", state.User.Email, state.User.ID, r.provider.Name())
}
