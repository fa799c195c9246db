package ctl

import (
	"github.com/urfave/cli/v2"

	"github.com/MrSnakeDoc/favorg/internal/formats"
	"github.com/MrSnakeDoc/favorg/internal/version"
)

// NewApp builds the favorgctl command tree over env.
func NewApp(env *Env) *cli.App {
	return &cli.App{
		Name:    "favorgctl",
		Usage:   "FavOrg bookmark maintenance from the command line",
		Version: version.String(),
		Description: `Operates directly on the store configured through FAVORG_* variables
(or a .env file), the same one the favorg server uses.

Examples:
  favorgctl import bookmarks.html chrome.json
  favorgctl export --format html --category Dev
  favorgctl validate
  favorgctl duplicates --delete
  favorgctl remove-dead
  favorgctl stats --json`,
		Commands: []*cli.Command{
			{
				Name:      "import",
				Usage:     "Import bookmark files (html, json, xml, csv)",
				ArgsUsage: "<file>...",
				Action:    ImportCommand(env),
			},
			{
				Name:  "export",
				Usage: "Export the collection",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Value: string(formats.JSON), Usage: "html | json | xml | csv"},
					&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "only this category"},
					&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "only this status"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file, - for stdout (default: suggested name)"},
				},
				Action: ExportCommand(env),
			},
			{
				Name:  "validate",
				Usage: "Check every link and store its status",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "list dead and timed out links"},
				},
				Action: ValidateCommand(env),
			},
			{
				Name:  "duplicates",
				Usage: "Find duplicate bookmarks",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "delete", Usage: "remove the marked duplicates"},
				},
				Action: DuplicatesCommand(env),
			},
			{
				Name:   "remove-dead",
				Usage:  "Remove bookmarks whose last check was dead",
				Action: RemoveDeadCommand(env),
			},
			{
				Name:  "stats",
				Usage: "Show collection statistics",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "print as JSON"},
				},
				Action: StatsCommand(env),
			},
		},
	}
}
