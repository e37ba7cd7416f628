package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"docstore/internal/config"
	"docstore/internal/document"
	"docstore/internal/errors"
	"docstore/internal/ops"
	"docstore/internal/storage"
	"docstore/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(database *sql.DB, cfg *config.Config, baseDir string) *cli.App {
	app := &cli.App{
		Name:    "docstore",
		Usage:   "Personal document archive",
		Version: Version,
		Commands: []*cli.Command{
			addCmd(database, cfg, baseDir),
			showCmd(database),
			searchCmd(database),
			archiveCmd(database),
			unarchiveCmd(database),
			tagsCmd(database),
			verifyCmd(database),
			exportCmd(database, cfg),
			serveCmd(database, cfg, baseDir),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// addCmd creates the add command.
func addCmd(database *sql.DB, cfg *config.Config, baseDir string) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a document with one or more files",
		ArgsUsage: "<file>...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Required: true, Usage: "Document title"},
			&cli.StringFlag{Name: "notes", Aliases: []string{"n"}, Usage: "Markdown notes (or pipe via stdin)"},
			&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() == 0 {
				return outputError(errors.NewValidation("at least one file argument is required"))
			}

			notes := c.String("notes")
			if notes == "" && stdinHasData() {
				piped, err := readStdin()
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				notes = piped
			}

			uploads := make([]ops.FileUpload, 0, c.NArg())
			for _, path := range c.Args().Slice() {
				f, err := os.Open(path)
				if err != nil {
					if os.IsNotExist(err) {
						return outputError(errors.NewFileNotFound(path))
					}
					return outputError(errors.NewStorage(path, err))
				}
				defer f.Close()
				uploads = append(uploads, ops.FileUpload{Name: filepath.Base(path), Content: f})
			}

			store := storage.NewWriter(ops.StorageRoot(baseDir, cfg))
			output, err := ops.Add(c.Context, database, cfg, store, ops.AddInput{
				Title: c.String("title"),
				Notes: notes,
				Tags:  document.ParseTagList(c.String("tags")),
				Files: uploads,
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// showCmd creates the show command.
func showCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a document with its files and tags",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Fetch(c.Context, database, ops.FetchInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// searchCmd creates the search command.
func searchCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search documents (tag:x year:2024 mime:pdf -draft invoice OR receipt)",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "archived", Aliases: []string{"a"}, Usage: "Include archived documents"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Search(c.Context, database, ops.SearchInput{
				Query:           strings.Join(c.Args().Slice(), " "),
				IncludeArchived: c.Bool("archived"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// archiveCmd creates the archive command.
func archiveCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "archive",
		Usage:     "Archive a document (hidden from default search results)",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Archive(c.Context, database, ops.ArchiveInput{
				ID:       c.Args().First(),
				Archived: true,
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// unarchiveCmd creates the unarchive command.
func unarchiveCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "unarchive",
		Usage:     "Restore an archived document",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			output, err := ops.Archive(c.Context, database, ops.ArchiveInput{
				ID:       c.Args().First(),
				Archived: false,
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// tagsCmd creates the tags command.
func tagsCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:  "tags",
		Usage: "List every tag with its document count",
		Action: func(c *cli.Context) error {
			output, err := ops.TagCounts(c.Context, database)
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// verifyCmd creates the verify command.
func verifyCmd(database *sql.DB) *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Re-hash stored files and compare against recorded digests",
		ArgsUsage: "[id]",
		Action: func(c *cli.Context) error {
			output, err := ops.Verify(c.Context, database, ops.VerifyInput{ID: c.Args().First()})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// exportCmd creates the export command.
func exportCmd(database *sql.DB, cfg *config.Config) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export document metadata to a JSONL file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.docstore/exports/archive-<timestamp>.jsonl)"},
		},
		Action: func(c *cli.Context) error {
			output, err := ops.Export(c.Context, database, cfg, ops.ExportInput{
				Path: c.String("path"),
			})
			if err != nil {
				return outputError(err)
			}

			return outputJSON(output)
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(database *sql.DB, cfg *config.Config, baseDir string) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web UI",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Value: "127.0.0.1", Usage: "Address to bind"},
			&cli.IntFlag{Name: "port", Value: 8338, Usage: "Port to listen on"},
		},
		Action: func(c *cli.Context) error {
			srv := web.NewServer(database, cfg, Version, baseDir, c.String("bind"), c.Int("port"))
			if err := web.Run(srv); err != nil && err != http.ErrServerClosed {
				return outputError(err)
			}
			return nil
		},
	}
}

// Helper functions

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if storeErr, ok := err.(*errors.StoreError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", storeErr.Code, storeErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
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
