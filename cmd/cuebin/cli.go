package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/hpungsan/cuebin/internal/catalog"
	"github.com/hpungsan/cuebin/internal/config"
	"github.com/hpungsan/cuebin/internal/errors"
	"github.com/hpungsan/cuebin/internal/logger"
	"github.com/hpungsan/cuebin/internal/ops"
	"github.com/hpungsan/cuebin/internal/view"
	"github.com/hpungsan/cuebin/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(db *sql.DB, cfg *config.Config, lib *ops.Library, log *logger.Logger) *cli.App {
	app := &cli.App{
		Name:    "cuebin",
		Usage:   "Voice and audio cue organizer",
		Version: Version,
		Commands: []*cli.Command{
			treeCmd(db, cfg, lib),
			viewsCmd(db, lib),
			viewCmd(db, lib),
			actorCmd(db),
			sceneCmd(db),
			binCmd(db),
			mediaCmd(db),
			takeCmd(db),
			deleteCmd(db),
			snapshotCmd(db),
			exportCmd(db, cfg),
			importCmd(db, cfg),
			serveCmd(db, cfg, lib, log),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// formatFlag returns the --format flag shared by read commands.
func formatFlag() cli.Flag {
	return &cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: "json", Usage: "Output format: json|yaml|text"}
}

// treeCmd creates the tree command.
func treeCmd(db *sql.DB, cfg *config.Config, lib *ops.Library) *cli.Command {
	return &cli.Command{
		Name:      "tree",
		Usage:     "Render the catalog grouped by a view",
		ArgsUsage: "[view-id]",
		Flags: []cli.Flag{
			formatFlag(),
			&cli.StringFlag{Name: "leaf-type", Usage: "Noun for unnamed leaves (default from config)"},
		},
		Action: func(c *cli.Context) error {
			tree, err := ops.Tree(c.Context, db, cfg, lib, ops.TreeInput{
				ViewID:   c.Args().First(),
				LeafType: c.String("leaf-type"),
			})
			if err != nil {
				return outputError(err)
			}
			if c.String("format") == "text" {
				for _, d := range tree.Diagnostics {
					fmt.Fprintln(c.App.ErrWriter, d.String())
				}
				return view.WriteOutline(c.App.Writer, tree.Nodes)
			}
			return output(c, tree)
		},
	}
}

// viewsCmd creates the views command.
func viewsCmd(db *sql.DB, lib *ops.Library) *cli.Command {
	return &cli.Command{
		Name:  "views",
		Usage: "List preset, file and saved views",
		Flags: []cli.Flag{formatFlag()},
		Action: func(c *cli.Context) error {
			out, err := ops.ListViews(c.Context, db, lib)
			if err != nil {
				return outputError(err)
			}
			if c.String("format") == "text" {
				tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
				for _, v := range out.Views {
					levels := make([]string, len(v.Levels))
					for i, f := range v.Levels {
						levels[i] = string(f)
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.ID, v.Name, v.Source, strings.Join(levels, " > "))
				}
				return tw.Flush()
			}
			return output(c, out)
		},
	}
}

// viewCmd creates the view command group.
func viewCmd(db *sql.DB, lib *ops.Library) *cli.Command {
	return &cli.Command{
		Name:  "view",
		Usage: "Inspect and manage saved views",
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Show a view definition and its diagnostics",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{formatFlag()},
				Action: func(c *cli.Context) error {
					out, err := ops.GetView(c.Context, db, lib, ops.GetViewInput{ID: c.Args().First()})
					if err != nil {
						return outputError(err)
					}
					return output(c, out)
				},
			},
			{
				Name:  "save",
				Usage: "Save a view (reads the JSON definition from stdin or --file)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Usage: "Read the definition from a file instead of stdin"},
				},
				Action: func(c *cli.Context) error {
					raw, err := readInput(c)
					if err != nil {
						return outputError(err)
					}
					var v view.View
					if err := json.Unmarshal(raw, &v); err != nil {
						return outputError(errors.NewInvalidRequest("invalid view JSON: " + err.Error()))
					}
					out, err := ops.SaveView(c.Context, db, lib, ops.SaveViewInput{View: v})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a saved view",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					out, err := ops.DeleteView(c.Context, db, lib, ops.DeleteViewInput{ID: c.Args().First()})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
		},
	}
}

// actorCmd creates the actor command group.
func actorCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "actor",
		Usage: "Manage actors",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add an actor",
				ArgsUsage: "<display-name>",
				Action: func(c *cli.Context) error {
					out, err := ops.AddActor(c.Context, db, ops.AddActorInput{DisplayName: strings.Join(c.Args().Slice(), " ")})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
		},
	}
}

// sceneCmd creates the scene command group.
func sceneCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "scene",
		Usage: "Manage scenes",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a scene",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "actor", Aliases: []string{"a"}, Usage: "Actor appearing in the scene (repeatable)"},
				},
				Action: func(c *cli.Context) error {
					out, err := ops.AddScene(c.Context, db, ops.AddSceneInput{
						Name:     strings.Join(c.Args().Slice(), " "),
						ActorIDs: c.StringSlice("actor"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
		},
	}
}

// binCmd creates the bin command group.
func binCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "bin",
		Usage: "Manage bins",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a bin holding one media type",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Required: true, Usage: "Media type: " + strings.Join(catalog.MediaTypes, "|")},
					&cli.StringFlag{Name: "owner-type", Value: "global", Usage: "Owner type: global|actor|scene"},
					&cli.StringFlag{Name: "owner", Aliases: []string{"o"}, Usage: "Owner actor or scene id"},
					&cli.StringFlag{Name: "scene", Usage: "Scene the bin belongs to"},
				},
				Action: func(c *cli.Context) error {
					out, err := ops.AddBin(c.Context, db, ops.AddBinInput{
						Name:      strings.Join(c.Args().Slice(), " "),
						MediaType: c.String("type"),
						OwnerType: c.String("owner-type"),
						OwnerID:   c.String("owner"),
						SceneID:   c.String("scene"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
		},
	}
}

// mediaCmd creates the media command group.
func mediaCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "media",
		Usage: "Manage media items",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a media item (the prompt may be piped via stdin)",
				ArgsUsage: "<name>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "bin", Aliases: []string{"b"}, Usage: "Bin id"},
					&cli.StringFlag{Name: "type", Aliases: []string{"t"}, Usage: "Media type (defaults to the bin's)"},
					&cli.StringFlag{Name: "owner-type", Usage: "Owner type (defaults to the bin's)"},
					&cli.StringFlag{Name: "owner", Aliases: []string{"o"}, Usage: "Owner id (defaults to the bin's)"},
					&cli.StringFlag{Name: "prompt", Aliases: []string{"p"}, Usage: "Markdown prompt"},
				},
				Action: func(c *cli.Context) error {
					prompt := c.String("prompt")
					if prompt == "" && stdinHasData() {
						text, err := readStdin()
						if err != nil {
							return outputError(errors.NewInternal(err))
						}
						prompt = text
					}
					out, err := ops.AddMedia(c.Context, db, ops.AddMediaInput{
						Name:      strings.Join(c.Args().Slice(), " "),
						MediaType: c.String("type"),
						BinID:     c.String("bin"),
						OwnerType: c.String("owner-type"),
						OwnerID:   c.String("owner"),
						Prompt:    prompt,
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:      "get",
				Usage:     "Show a media item with its takes",
				ArgsUsage: "<id>",
				Flags:     []cli.Flag{formatFlag()},
				Action: func(c *cli.Context) error {
					out, err := ops.GetMedia(c.Context, db, ops.GetMediaInput{ID: c.Args().First()})
					if err != nil {
						return outputError(err)
					}
					return output(c, out)
				},
			},
			{
				Name:      "complete",
				Usage:     "Mark a media item complete",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "undo", Usage: "Mark it incomplete instead"},
				},
				Action: func(c *cli.Context) error {
					out, err := ops.SetMediaComplete(c.Context, db, ops.SetMediaCompleteInput{
						ID:       c.Args().First(),
						Complete: !c.Bool("undo"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
		},
	}
}

// takeCmd creates the take command group.
func takeCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "take",
		Usage: "Record and review takes",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Record a take for a media item",
				ArgsUsage: "<media-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Usage: "Audio file name"},
					&cli.Float64Flag{Name: "duration", Aliases: []string{"d"}, Usage: "Length in seconds"},
				},
				Action: func(c *cli.Context) error {
					out, err := ops.AddTake(c.Context, db, ops.AddTakeInput{
						MediaID:     c.Args().First(),
						Filename:    c.String("file"),
						DurationSec: c.Float64("duration"),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
			{
				Name:      "status",
				Usage:     "Set a take's review status: " + strings.Join(catalog.TakeStatuses, "|"),
				ArgsUsage: "<take-id> <status>",
				Action: func(c *cli.Context) error {
					out, err := ops.SetTakeStatus(c.Context, db, ops.SetTakeStatusInput{
						ID:     c.Args().Get(0),
						Status: c.Args().Get(1),
					})
					if err != nil {
						return outputError(err)
					}
					return outputJSON(c, out)
				},
			},
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete an actor, scene, bin, media item or take",
		ArgsUsage: "<kind> <id>",
		Action: func(c *cli.Context) error {
			out, err := ops.Delete(c.Context, db, ops.DeleteInput{
				Kind: c.Args().Get(0),
				ID:   c.Args().Get(1),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, out)
		},
	}
}

// snapshotCmd creates the snapshot command.
func snapshotCmd(db *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Print the whole catalog",
		Flags: []cli.Flag{formatFlag()},
		Action: func(c *cli.Context) error {
			out, err := ops.Snapshot(c.Context, db)
			if err != nil {
				return outputError(err)
			}
			return output(c, out)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export the catalog and saved views to JSONL",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Output path (default: ~/.cuebin/exports/cuebin-<timestamp>.jsonl)"},
		},
		Action: func(c *cli.Context) error {
			out, err := ops.Export(c.Context, db, cfg, ops.ExportInput{Path: c.String("path")})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, out)
		},
	}
}

// importCmd creates the import command.
func importCmd(db *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Import a JSONL export",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Input file path"},
			&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: "error", Usage: "Collision mode: error|replace|skip"},
		},
		Action: func(c *cli.Context) error {
			out, err := ops.Import(c.Context, db, cfg, ops.ImportInput{
				Path: c.String("path"),
				Mode: ops.ImportMode(c.String("mode")),
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(c, out)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(db *sql.DB, cfg *config.Config, lib *ops.Library, log *logger.Logger) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Listen address (default from config, 127.0.0.1)"},
			&cli.IntFlag{Name: "port", Usage: "Listen port (default from config, 7474)"},
		},
		Action: func(c *cli.Context) error {
			serveCfg := *cfg
			if c.IsSet("bind") {
				serveCfg.WebBind = c.String("bind")
			}
			if c.IsSet("port") {
				serveCfg.WebPort = c.Int("port")
			}
			srv, err := web.NewServer(db, &serveCfg, lib, log, Version)
			if err != nil {
				return outputError(errors.NewInternal(err))
			}
			if err := web.Run(srv, log); err != nil {
				return outputError(errors.NewInternal(err))
			}
			return nil
		},
	}
}

// Helper functions

// output writes v in the format named by --format. text falls back to JSON
// for results without an outline form.
func output(c *cli.Context, v any) error {
	switch c.String("format") {
	case "", "json", "text":
		return outputJSON(c, v)
	case "yaml":
		enc := yaml.NewEncoder(c.App.Writer)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return outputError(errors.NewInternal(err))
		}
		return enc.Close()
	default:
		return outputError(errors.NewInvalidRequest("format must be one of: json, yaml, text"))
	}
}

// outputJSON marshals result to the app writer (stdout) as JSON.
func outputJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if ce := errors.As(err); ce != nil {
		return cli.Exit(fmt.Sprintf("[%s] %s", ce.Code, ce.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// readInput returns the contents of --file, or stdin when it is piped.
func readInput(c *cli.Context) ([]byte, error) {
	if path := c.String("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.NewFileNotFound(path)
			}
			return nil, errors.NewInternal(err)
		}
		return data, nil
	}
	if !stdinHasData() {
		return nil, errors.NewInvalidRequest("view definition must be piped via stdin or given with --file")
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return data, nil
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
