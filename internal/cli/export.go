package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mrlokans/bookworm/internal/config"
	"github.com/mrlokans/bookworm/internal/exporters"
)

// ExportCommand writes the journal as markdown, either one file per book
// into a directory or a single zip archive.
type ExportCommand struct {
	DatabasePath string
	OutputDir    string
	ZipPath      string

	Out io.Writer
}

func NewExportCommand() *ExportCommand {
	return &ExportCommand{}
}

func (cmd *ExportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)

	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the journal database")
	fs.StringVar(&cmd.OutputDir, "output", "", "Directory to write one markdown file per book into")
	fs.StringVar(&cmd.ZipPath, "zip", "", "Write a zip archive to this path instead")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s export (-output <dir> | -zip <file>) [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Export the journal as markdown.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if (cmd.OutputDir == "") == (cmd.ZipPath == "") {
		return fmt.Errorf("exactly one of -output or -zip is required")
	}
	return nil
}

func (cmd *ExportCommand) Run() error {
	out := stdout(cmd.Out)
	ctx := context.Background()

	j, err := openJournal(cmd.DatabasePath)
	if err != nil {
		return err
	}
	defer j.Close()

	var result exporters.ExportResult
	var target string
	if cmd.ZipPath != "" {
		target, result, err = cmd.writeZip(ctx, j)
	} else {
		target, err = filepath.Abs(cmd.OutputDir)
		if err != nil {
			return fmt.Errorf("failed to get absolute path for output: %w", err)
		}
		result, err = exporters.NewJournalExporter(j.store, target).ExportAll(ctx)
	}

	description := fmt.Sprintf("Exported %d books to %s", result.BooksProcessed, target)
	j.auditor.LogExport(description, err)
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}

	fmt.Fprintln(out, description)
	if result.BooksFailed > 0 {
		fmt.Fprintf(out, "%d books failed to export\n", result.BooksFailed)
	}
	return nil
}

func (cmd *ExportCommand) writeZip(ctx context.Context, j *journal) (string, exporters.ExportResult, error) {
	target, err := filepath.Abs(cmd.ZipPath)
	if err != nil {
		return "", exporters.ExportResult{}, fmt.Errorf("failed to get absolute path for zip: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return target, exporters.ExportResult{}, err
	}

	result, err := exporters.NewJournalExporter(j.store, "").WriteZip(ctx, f)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return target, result, err
}
