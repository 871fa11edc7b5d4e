// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
			Value: true,
		},
	}
}

func passwordFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "password",
		Aliases: []string{"p"},
		Usage:   "Password (prompted for when omitted)",
		Sources: cli.EnvVars("TUNEBOOK_PASSWORD"),
	}
}

// setupCommand creates the config file and migrates the database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a config file and initialize the database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   defaultConfigPath,
			},
		},
		Action: r.Setup,
	}
}

// serveCommand runs the web front end.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the web interface",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "addr",
				Usage: "Listen address (defaults to server.host:server.port)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the browser once the server is listening",
			},
			&cli.BoolFlag{
				Name:  "secure-cookies",
				Usage: "Mark session cookies Secure (serve behind HTTPS)",
			},
		},
		Action: r.Serve,
	}
}

func signupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "signup",
		Usage:     "Create an account",
		Arguments: []cli.Argument{&cli.StringArg{Name: "email"}},
		Flags:     []cli.Flag{passwordFlag()},
		Action:    r.Signup,
	}
}

func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "Log in and remember the session for later commands",
		Arguments: []cli.Argument{&cli.StringArg{Name: "email"}},
		Flags:     []cli.Flag{passwordFlag()},
		Action:    r.Login,
	}
}

func logoutCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Log out and forget the stored session",
		Action: r.Logout,
	}
}

func whoamiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "whoami",
		Usage:  "Show the logged in user",
		Action: r.Whoami,
	}
}

// tunesCommand groups tune operations.
func tunesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tunes",
		Aliases: []string{"tune"},
		Usage:   "List and manage tunes",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List your tunes sorted by name",
				Flags:  jsonFlags(),
				Action: r.TunesList,
			},
			{
				Name:  "add",
				Usage: "Add a tune",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Tune name", Required: true},
					&cli.StringFlag{Name: "composer", Usage: "Composer"},
					&cli.StringFlag{Name: "year", Usage: "Year composed"},
					&cli.StringFlag{Name: "notes", Usage: "Notes"},
				},
				Action: r.TunesAdd,
			},
			{
				Name:      "show",
				Usage:     "Show a tune and its recordings",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     jsonFlags(),
				Action:    r.TunesShow,
			},
			{
				Name:      "edit",
				Usage:     "Change a tune's fields",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Tune name"},
					&cli.StringFlag{Name: "composer", Usage: "Composer"},
					&cli.StringFlag{Name: "year", Usage: "Year composed (empty to clear)"},
					&cli.StringFlag{Name: "notes", Usage: "Notes"},
				},
				Action: r.TunesEdit,
			},
			{
				Name:      "delete",
				Usage:     "Delete a tune and its recordings",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Confirm the deletion"},
				},
				Action: r.TunesDelete,
			},
		},
	}
}

// recordingsCommand groups recording operations.
func recordingsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "recordings",
		Aliases: []string{"recording", "rec"},
		Usage:   "Manage a tune's recordings",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a recording to a tune",
				Arguments: []cli.Argument{&cli.StringArg{Name: "tune-id"}},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Recording name", Required: true},
					&cli.StringFlag{Name: "url", Usage: "Link to the recording, e.g. a YouTube URL"},
					&cli.StringFlag{Name: "rating", Usage: "Rating from 1 to 5"},
					&cli.StringFlag{Name: "sort-order", Usage: "Position among the tune's recordings"},
					&cli.StringFlag{Name: "notes", Usage: "Notes"},
				},
				Action: r.RecordingsAdd,
			},
			{
				Name:      "show",
				Usage:     "Show a recording and its video details",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags:     jsonFlags(),
				Action:    r.RecordingsShow,
			},
			{
				Name:      "edit",
				Usage:     "Change a recording's name or notes",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Recording name"},
					&cli.StringFlag{Name: "notes", Usage: "Notes"},
				},
				Action: r.RecordingsEdit,
			},
			{
				Name:      "delete",
				Usage:     "Delete a recording",
				Arguments: []cli.Argument{&cli.StringArg{Name: "id"}},
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Confirm the deletion"},
				},
				Action: r.RecordingsDelete,
			},
		},
	}
}

// videoCommand looks up a video the way recordings are enriched.
func videoCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "video",
		Usage:     "Show the video id and metadata found for a URL",
		Arguments: []cli.Argument{&cli.StringArg{Name: "url"}},
		Flags:     jsonFlags(),
		Action:    r.Video,
	}
}

// exportCommand writes the library to a file.
func exportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export your tunes and recordings",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Export format: json, csv or markdown",
				Value:   "json",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output file path",
			},
			&cli.BoolFlag{
				Name:  "no-enrich",
				Usage: "Skip video lookups",
			},
		},
		Action: r.Export,
	}
}

// tuiCommand returns the top-level TUI command for browsing the library.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Browse your tunes in an interactive terminal UI",
		Action:  r.TUI,
	}
}
