package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/crate/internal/server"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// oauthCatalog is the slice of the catalog service driving the browser flow.
type oauthCatalog interface {
	GetAuthURL(state string) string
	OAuthConfig() *oauth2.Config
}

// AuthLogin runs the OAuth2 authorization code flow against Spotify and
// persists the resulting tokens to the config file.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireCatalog(); err != nil {
		return err
	}

	oauthSvc, ok := r.catalog.(oauthCatalog)
	if !ok {
		return fmt.Errorf("%w: catalog service does not support browser authorization", shared.ErrInvalidArgument)
	}

	configPath := cmd.String("config")
	if configPath == "" {
		configPath = "config.toml"
	}

	state, err := shared.GenerateState()
	if err != nil {
		return fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := oauthSvc.GetAuthURL(state)
	handler := server.NewOAuthHandler(oauthSvc.OAuthConfig(), state)
	addr := fmt.Sprintf("%s:%d", r.config.Server.Host, r.config.Server.Port)

	r.writePlain("→ Opening browser for Spotify authorization...\n")
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (2 minute timeout)...\n")

	token, err := server.AwaitCallback(addr, handler, r.logger, 2*time.Minute)
	if err != nil {
		return err
	}

	if err := r.config.Credentials.Spotify.Update(token); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	if err := shared.SaveConfig(configPath, r.config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	if err := r.catalog.Authenticate(ctx, r.config.Credentials.Spotify.Map()); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	r.logger.Info("authentication successful", "config", configPath)

	r.writePlain("✓ Authenticated with Spotify\n")
	r.writePlain("Tokens saved to %s\n", configPath)
	return nil
}

// AuthStatus reports the locally persisted credential state and optionally
// verifies the token with a live API call.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	creds := r.config.Credentials.Spotify

	if creds.ClientID == "" || creds.ClientSecret == "" {
		r.writePlain("✗ No client credentials configured\n")
		r.writePlain("Add credentials.spotify.client_id and client_secret to config.toml\n")
		return nil
	}

	r.writePlain("✓ Client credentials configured\n")

	if creds.AccessToken == "" {
		r.writePlain("✗ Not authenticated. Run 'crate auth login'\n")
		return nil
	}

	r.writePlain("✓ Access token present\n")

	if creds.TokenExpiry != "" {
		expiry, err := time.Parse(time.RFC3339, creds.TokenExpiry)
		if err == nil {
			if time.Now().After(expiry) {
				r.writePlain("⚠ Token expired at %s\n", expiry.Format(time.RFC1123))
			} else {
				r.writePlain("Token expires at %s\n", expiry.Format(time.RFC1123))
			}
		}
	}

	if !cmd.Bool("verify") {
		return nil
	}

	if err := r.ensureAuth(ctx); err != nil {
		return err
	}

	if _, err := r.catalog.ListPlaylists(ctx); err != nil {
		r.writePlain("✗ Token rejected by %s: %v\n", r.catalog.Name(), err)
		return nil
	}

	r.writePlain("✓ Token verified against %s\n", r.catalog.Name())
	return nil
}
