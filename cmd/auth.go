package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"

	"trackdeck/internal/models"
	"trackdeck/internal/server"
	"trackdeck/internal/services"
	"trackdeck/internal/shared"
)

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Link a Spotify account and inspect credential state",
		Commands: []*cli.Command{
			{
				Name:   "link",
				Usage:  "Authorize with Spotify and store the account locally",
				Action: r.AuthLink,
			},
			{
				Name:   "status",
				Usage:  "Show the linked account and credential expiry",
				Action: r.AuthStatus,
			},
		},
	}
}

// AuthLink runs the OAuth flow, fetches the user's profile, and stores the
// account with its credential.
//
// Linking while an account exists overwrites its profile and credential.
func (r *Runner) AuthLink(ctx context.Context, cmd *cli.Command) error {
	creds := r.config.Credentials.Spotify
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return fmt.Errorf("%w: Spotify client_id and client_secret must be set in config.toml", shared.ErrMissingCredentials)
	}

	oauth, err := services.NewSpotifyOAuth(creds.Map())
	if err != nil {
		return err
	}

	tokens, err := r.doOAuth(ctx, oauth)
	if err != nil {
		return err
	}

	st, err := r.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	client := services.NewSpotifyClient(services.StaticToken(tokens.AccessToken), r.config)
	profile, err := client.UserProfile(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch Spotify profile: %w", err)
	}

	expiresAt := time.Now().Add(time.Duration(tokens.ExpiresIn) * time.Second)

	account, err := st.accounts.GetBySpotifyUID(profile.ID)
	switch {
	case errors.Is(err, shared.ErrAccountNotFound):
		account = models.NewAccount(0, profile.ID, profile.DisplayName, profile.Email)
		account.SetAvatarURL(profile.AvatarURL())
		account.SetTokens(tokens.AccessToken, tokens.RefreshToken, expiresAt)
		if err := st.accounts.Create(account); err != nil {
			return fmt.Errorf("failed to store account: %w", err)
		}
	case err != nil:
		return err
	default:
		account.SetDisplayName(profile.DisplayName)
		account.SetEmail(profile.Email)
		account.SetAvatarURL(profile.AvatarURL())
		account.SetTokens(tokens.AccessToken, tokens.RefreshToken, expiresAt)
		if err := st.accounts.Update(account); err != nil {
			return fmt.Errorf("failed to update account: %w", err)
		}
	}

	r.logger.Info("account linked", "spotify_uid", profile.ID)

	r.writePlainln("✓ Spotify account linked")
	r.writePlain("  Account: %s (%s)\n", profile.DisplayName, profile.ID)
	r.writePlain("  Token expires: %s\n", expiresAt.Format(time.RFC3339))

	return nil
}

// AuthStatus shows the linked account and how long its credential remains valid.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	st, err := r.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	account, err := r.linkedAccount(st)
	if err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) {
			return r.writePlain("✗ No linked account\nRun 'trackdeck auth link' to connect Spotify.\n")
		}
		return err
	}

	r.writePlain("Account: %s (%s)\n", account.DisplayName(), account.SpotifyUID())
	if account.Email() != "" {
		r.writePlain("Email: %s\n", account.Email())
	}

	if !account.Authenticated() {
		return r.writePlain("Credential: ✗ none stored\n")
	}

	if account.TokenExpired() {
		return r.writePlain("Credential: ⚠ expired (refreshed automatically on next sync)\n")
	}

	if expiresAt := account.TokenExpiresAt(); expiresAt != nil {
		r.writePlain("Credential: ✓ valid for %s\n", time.Until(*expiresAt).Round(time.Second))
	} else {
		r.writePlain("Credential: ✓ present\n")
	}

	return nil
}

// doOAuth executes the authorization code flow with a local callback server.
func (r *Runner) doOAuth(ctx context.Context, oauth *services.SpotifyOAuth) (*services.TokenSet, error) {
	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := oauth.AuthURL(state)
	callback := server.NewCallbackHandler(state)
	router := server.NewBasicRouter()
	router.Use(server.LoggingMiddleware(r.logger))
	router.Handler(callback)

	serverAddr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("starting OAuth callback server at %v", serverAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	timeout := time.NewTimer(2 * time.Minute)
	defer timeout.Stop()

	var result server.CallbackResult

	select {
	case result = <-callback.Result():
	case err := <-serverErrors:
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after 2 minutes", shared.ErrTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		r.logger.Warn("error shutting down server", "error", err)
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, result.Error())
	}

	return oauth.Exchange(ctx, result.Code)
}
