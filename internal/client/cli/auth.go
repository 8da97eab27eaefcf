package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/talkscribe/internal/client/config"
	"github.com/dmitrijs2005/talkscribe/internal/client/models"
	"github.com/dmitrijs2005/talkscribe/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

const serverAuthTimeout = 10 * time.Second

func (a *App) promptCredentials() (string, string, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", "", err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return "", "", err
	}
	return email, password, nil
}

// Register prompts for an email and password, creates the local account and
// signs in. The server account is created alongside on a best-effort basis.
func (a *App) Register(ctx context.Context) error {
	email, password, err := a.promptCredentials()
	if err != nil {
		return err
	}

	user, err := a.authService.Register(ctx, email, password)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUser) {
			fmt.Fprintln(a.out, "An account with this email already exists.")
			return nil
		}
		if errors.Is(err, common.ErrMissingCredentials) {
			fmt.Fprintln(a.out, "Email and password are required.")
			return nil
		}
		return err
	}

	a.signedIn(user)
	a.connectServer(ctx, email, password, true)
	return nil
}

// Login prompts for credentials and authenticates against the local
// credential store under the configured policy, then opens a server session
// on a best-effort basis.
func (a *App) Login(ctx context.Context) error {
	email, password, err := a.promptCredentials()
	if err != nil {
		return err
	}

	user, err := a.authService.Authenticate(ctx, email, password)
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		a.log.Info(ctx, "login rejected", "email", email)
		fmt.Fprintln(a.out, "Invalid email or password.")
		return nil
	case errors.Is(err, common.ErrMissingCredentials):
		fmt.Fprintln(a.out, "Email and password are required.")
		return nil
	case err != nil:
		return err
	}

	a.signedIn(user)
	a.connectServer(ctx, email, password, a.config.AuthPolicy == config.PolicyAutoRegister)
	return nil
}

func (a *App) signedIn(u *models.User) {
	a.setUser(u)
	fmt.Fprintf(a.out, "Signed in as %s.\n", displayName(u))
}

// connectServer opens a server session with the same credentials. When
// create is set a missing server account is registered.
func (a *App) connectServer(ctx context.Context, email, password string, create bool) {
	ctx, cancel := context.WithTimeout(ctx, serverAuthTimeout)
	defer cancel()

	_, err := a.api.Login(ctx, email, password)
	if err != nil && create && errors.Is(err, common.ErrInvalidCredentials) {
		_, err = a.api.Register(ctx, email, password)
	}
	if err != nil {
		a.log.Warn(ctx, "server session not opened", "error", err)
		fmt.Fprintln(a.out, "Server session not available; recordings are kept locally.")
		return
	}
	a.setMode(ModeOnline)
	a.log.Info(ctx, "server session opened", "email", email)
}

// Logout ends the server session (if any) and clears the local session
// snapshot. A recording in progress is stopped first.
func (a *App) Logout(ctx context.Context) error {
	if snap, err := a.recorder.Snapshot(ctx); err == nil && snap.Recording {
		if _, err := a.recorder.Stop(ctx); err != nil {
			a.log.Warn(ctx, "stop on logout failed", "error", err)
		}
	}

	if err := a.api.Logout(ctx); err != nil {
		a.log.Warn(ctx, "server logout failed", "error", err)
	}
	if err := a.authService.ClearSession(ctx); err != nil {
		return err
	}
	a.setUser(nil)
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}
