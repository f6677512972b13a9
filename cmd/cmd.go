// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles database setup operations.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize database and run migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles catalog authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Authenticate with Spotify using OAuth2",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "status",
				Usage: "Check current authentication state",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "verify",
						Usage: "Verify the token against the Spotify API",
					},
				},
				Action: r.AuthStatus,
			},
		},
	}
}

// reviewsCommand handles review feed operations
func reviewsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "reviews",
		Aliases: []string{"rev"},
		Usage:   "Pitchfork review feed operations",
		Commands: []*cli.Command{
			{
				Name:  "fetch",
				Usage: "Fetch the latest album reviews without matching",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.ReviewsFetch,
			},
			{
				Name:  "sync",
				Usage: "Fetch reviews, match them against Spotify, and replace the collection",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output match summary as JSON",
					},
				},
				Action: r.ReviewsSync,
			},
		},
	}
}

// albumsCommand handles collection operations
func albumsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "albums",
		Aliases: []string{"al"},
		Usage:   "Browse and manage the matched album collection",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List albums in the collection",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "year",
						Usage: "Filter by release year (e.g. 2026)",
					},
					&cli.StringFlag{
						Name:  "genre",
						Usage: "Filter by genre",
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "Filter by album type (album, single, compilation)",
					},
					&cli.BoolFlag{
						Name:  "favorited",
						Usage: "Only favorited albums",
					},
					&cli.BoolFlag{
						Name:  "listened",
						Usage: "Only listened albums",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.AlbumsList,
			},
			{
				Name:  "favorite",
				Usage: "Toggle an album's favorite state and sync it to Spotify",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.AlbumsFavorite,
			},
			{
				Name:  "listened",
				Usage: "Toggle an album's listened flag (local only)",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Action: r.AlbumsListened,
			},
			{
				Name:  "export",
				Usage: "Export the collection to a file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (json, csv, markdown, text)",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
					&cli.BoolFlag{
						Name:  "favorited",
						Usage: "Only export favorited albums",
					},
				},
				Action: r.AlbumsExport,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive collection browsing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for browsing the collection",
		Action:  r.TUI,
	}
}
