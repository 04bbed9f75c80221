package cli

import (
	"context"
	"errors"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for a username and password and creates an account.
// It does not sign in.
func (a *App) Register(ctx context.Context) error {
	username, password, err := promptCredentials(a.reader, a.out)
	if err != nil {
		return err
	}
	defer clear(password)

	if err := a.state.Register(ctx, username, string(password)); err != nil {
		return errors.New(a.state.Snapshot().Error)
	}

	a.println("Registration successful, you can login now.")
	return nil
}

// Login prompts for credentials, signs in and loads the room list.
func (a *App) Login(ctx context.Context) error {
	username, password, err := promptCredentials(a.reader, a.out)
	if err != nil {
		return err
	}
	defer clear(password)

	if err := a.state.Login(ctx, username, string(password)); err != nil {
		return errors.New(a.state.Snapshot().Error)
	}
	a.log.Info(ctx, "logged in", "username", username)

	rooms, err := a.state.LoadRooms(ctx)
	if err != nil {
		a.printf("Logged in as %s, but rooms could not be loaded: %v\n", username, err)
		return nil
	}
	a.printf("Logged in as %s (%d rooms)\n", username, len(rooms))
	return nil
}

// Logout ends the session locally and on the server.
func (a *App) Logout(ctx context.Context) error {
	if err := a.state.Logout(ctx); err != nil {
		return err
	}
	a.println("Logged out")
	return nil
}
