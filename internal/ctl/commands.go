package ctl

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"

	"github.com/MrSnakeDoc/favorg/internal/domain"
	"github.com/MrSnakeDoc/favorg/internal/formats"
	"github.com/MrSnakeDoc/favorg/internal/validator"
)

// ImportCommand imports one or more bookmark files.
func ImportCommand(env *Env) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.NArg() == 0 {
			return cli.Exit("usage: favorgctl import <file>...", 2)
		}

		svc, err := env.Service(c.Context)
		if err != nil {
			return err
		}

		out := c.App.Writer
		bar := progressbar.NewOptions(c.NArg(),
			progressbar.OptionSetDescription("Importing"),
			progressbar.OptionSetWriter(c.App.ErrWriter),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)

		for _, path := range c.Args().Slice() {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}

			res, err := svc.Import(c.Context, filepath.Base(path), data)
			_ = bar.Add(1)
			if err != nil {
				return fmt.Errorf("import %s: %w", path, err)
			}

			s := res.Summary
			fmt.Fprintf(out, "%s: format=%s source=%s imported=%d duplicates=%d skipped=%d\n",
				path, s.Format, s.BrowserSource, s.ImportedCount, s.DuplicatesFoundCount, s.SkippedCount)
			for _, w := range s.Warnings {
				fmt.Fprintf(out, "  warning: %s\n", w)
			}
		}
		return nil
	}
}

// ExportCommand writes the collection to --out (the suggested name by default, "-" for stdout).
func ExportCommand(env *Env) cli.ActionFunc {
	return func(c *cli.Context) error {
		f, err := formats.ParseFormat(c.String("format"))
		if err != nil {
			return err
		}
		opts := formats.ExportOptions{Category: c.String("category")}
		if raw := c.String("status"); raw != "" {
			if opts.Status, err = domain.ParseStatus(raw); err != nil {
				return err
			}
		}

		svc, err := env.Service(c.Context)
		if err != nil {
			return err
		}
		res, err := svc.Export(c.Context, f, opts)
		if err != nil {
			return err
		}

		target := c.String("out")
		if target == "-" {
			_, err := c.App.Writer.Write(res.Data)
			return err
		}
		if target == "" {
			target = res.FileName
		}
		if err := os.WriteFile(target, res.Data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", target, err)
		}
		fmt.Fprintf(c.App.Writer, "exported %d bookmarks to %s\n", res.Count, target)
		return nil
	}
}

// ValidateCommand checks every link and shows a progress bar.
func ValidateCommand(env *Env) cli.ActionFunc {
	return func(c *cli.Context) error {
		store, err := env.Store(c.Context)
		if err != nil {
			return err
		}
		records, err := store.List(c.Context)
		if err != nil {
			return err
		}

		bar := progressbar.NewOptions(len(records),
			progressbar.OptionSetDescription("Validating"),
			progressbar.OptionSetWriter(c.App.ErrWriter),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		env.OnProgress(func(validator.Result) { _ = bar.Add(1) })

		svc, err := env.Service(c.Context)
		if err != nil {
			return err
		}
		rep, err := svc.ValidateLinks(c.Context)
		if err != nil {
			return err
		}
		_ = bar.Finish()

		out := c.App.Writer
		fmt.Fprintf(out, "checked %d links in %s (locked %d)\n", rep.TotalChecked, rep.Duration.Round(time.Millisecond), rep.LockedCount)
		printCounts(out, rep.Counts)
		if c.Bool("verbose") {
			for _, r := range rep.Results {
				if r.Status == domain.StatusDead || r.Status == domain.StatusTimeout {
					fmt.Fprintf(out, "  %-8s %s %s\n", r.Status, r.URL, r.Error)
				}
			}
		}
		return nil
	}
}

// DuplicatesCommand marks duplicates; with --delete it removes them too.
func DuplicatesCommand(env *Env) cli.ActionFunc {
	return func(c *cli.Context) error {
		svc, err := env.Service(c.Context)
		if err != nil {
			return err
		}
		found, err := svc.FindDuplicates(c.Context)
		if err != nil {
			return err
		}

		out := c.App.Writer
		fmt.Fprintf(out, "%d duplicate groups, %d marked, %d locked\n",
			found.DuplicateGroups, found.MarkedCount, found.LockedCount)
		for _, g := range found.Groups {
			fmt.Fprintf(out, "  %s (keep %s, %d copies)\n", g.NormalizedURL, g.KeptID, len(g.MemberIDs))
		}

		if !c.Bool("delete") {
			return nil
		}
		removed, err := svc.DeleteDuplicates(c.Context)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "removed %d, skipped %d locked\n", removed.RemovedCount, removed.SkippedLockedCount)
		return nil
	}
}

// RemoveDeadCommand removes records whose stored status is dead.
func RemoveDeadCommand(env *Env) cli.ActionFunc {
	return func(c *cli.Context) error {
		svc, err := env.Service(c.Context)
		if err != nil {
			return err
		}
		res, err := svc.RemoveDeadLinks(c.Context)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "removed %d dead links, skipped %d locked\n", res.RemovedCount, res.SkippedLockedCount)
		return nil
	}
}

// StatsCommand prints collection statistics, as JSON with --json.
func StatsCommand(env *Env) cli.ActionFunc {
	return func(c *cli.Context) error {
		svc, err := env.Service(c.Context)
		if err != nil {
			return err
		}
		st, err := svc.Stats(c.Context)
		if err != nil {
			return err
		}

		out := c.App.Writer
		if c.Bool("json") {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(st)
		}

		fmt.Fprintf(out, "bookmarks:  %d (locked %d)\n", st.Total, st.Locked)
		fmt.Fprintf(out, "categories: %d\n", st.Categories)
		printCounts(out, st.ByStatus)
		return nil
	}
}

func printCounts(out io.Writer, counts map[domain.Status]int) {
	keys := make([]string, 0, len(counts))
	for s := range counts {
		keys = append(keys, string(s))
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(out, "  %-10s %d\n", k, counts[domain.Status(k)])
	}
}
