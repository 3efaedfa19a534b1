package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kedarkumargolla/scholarsync/internal/core/domain"
	"github.com/kedarkumargolla/scholarsync/internal/core/ports/driving"
)

var (
	ingestJSON      bool
	ingestRecursive bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <paths...>",
	Short: "Add files to the knowledge base",
	Long: `Loads, chunks and indexes files into the knowledge base.

Supported formats: PDF, Word (.docx), PowerPoint (.pptx, .ppt), Excel (.xlsx),
CSV and images (.jpg, .jpeg, .png, .gif, .webp). Other files are listed as
ignored. A file that fails to load is reported and the rest of the batch
continues.

Directories expand to the files they contain. Use --recursive to include
subdirectories.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the result as JSON")
	ingestCmd.Flags().BoolVarP(&ingestRecursive, "recursive", "r", false, "descend into subdirectories")
	rootCmd.AddCommand(ingestCmd)
}

// ingestSummary is the JSON form of an ingestion result, without chunk text.
type ingestSummary struct {
	Status  domain.IngestionStatus `json:"status"`
	Message string                 `json:"message"`
	Total   int                    `json:"total"`
	Chunks  int                    `json:"chunks"`
	Indexed int                    `json:"indexed"`
	Failed  []domain.FailedFile    `json:"failed"`
	Ignored []string               `json:"ignored"`
	Error   string                 `json:"error,omitempty"`
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	paths, err := expandPaths(args, ingestRecursive)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("%w: no files found", domain.ErrInvalidInput)
	}

	// JSON goes to stdout alone; progress moves to stderr.
	progressOut := cmd.OutOrStdout()
	if ingestJSON {
		progressOut = cmd.ErrOrStderr()
	}
	progress := newProgressPrinter(progressOut)

	result, ingestErr := ingestService.Ingest(cmd.Context(), paths, progress)
	progress.Done()

	if result == nil {
		return fmt.Errorf("ingest failed: %w", ingestErr)
	}

	if ingestJSON {
		if err := outputIngestJSON(cmd, result, ingestErr); err != nil {
			return err
		}
	} else {
		outputIngestText(cmd, result)
	}

	if ingestErr != nil {
		return fmt.Errorf("ingest failed: %w", ingestErr)
	}
	if !result.OK() {
		return errors.New(result.Message)
	}
	return nil
}

func outputIngestJSON(cmd *cobra.Command, result *domain.IngestionResult, ingestErr error) error {
	summary := ingestSummary{
		Status:  result.Status,
		Message: result.Message,
		Total:   result.Total,
		Chunks:  len(result.Chunks),
		Indexed: result.Indexed,
		Failed:  result.Failed,
		Ignored: result.Ignored,
	}
	if summary.Failed == nil {
		summary.Failed = []domain.FailedFile{}
	}
	if summary.Ignored == nil {
		summary.Ignored = []string{}
	}
	if ingestErr != nil {
		summary.Error = ingestErr.Error()
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputIngestText(cmd *cobra.Command, result *domain.IngestionResult) {
	if result.OK() {
		cmd.Println(result.Message)
		if result.Indexed > 0 {
			cmd.Printf("Indexed %d chunks.\n", result.Indexed)
		}
	}

	if len(result.Failed) > 0 {
		cmd.Println()
		cmd.Println("Failed:")
		for _, f := range result.Failed {
			cmd.Printf("  - %s\n", f)
		}
	}

	if len(result.Ignored) > 0 && !result.OK() {
		cmd.Println()
		cmd.Println("Ignored:")
		for _, name := range result.Ignored {
			cmd.Printf("  - %s\n", name)
		}
	}
}

// expandPaths replaces directories with the files inside them. Every
// returned path is absolute. Explicit file arguments are kept even if they
// do not exist, so the ingest result can report them.
func expandPaths(args []string, recursive bool) ([]string, error) {
	var out []string
	for _, arg := range args {
		arg = domain.AbsPath(arg)
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			out = append(out, arg)
			continue
		}

		files, err := listDir(arg, recursive)
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", arg, err)
		}
		out = append(out, files...)
	}
	return out, nil
}

func listDir(dir string, recursive bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == dir {
				return nil
			}
			if !recursive || isHidden(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if isHidden(d.Name()) || !d.Type().IsRegular() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	sort.Strings(files)
	return files, err
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}

// progressPrinter renders "[i/N] filename" lines. On a terminal each line
// overwrites the previous one.
type progressPrinter struct {
	w       io.Writer
	tty     bool
	printed bool
}

var _ driving.ProgressListener = (*progressPrinter)(nil)

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w, tty: isTerminal(w)}
}

// OnFile implements driving.ProgressListener.
func (p *progressPrinter) OnFile(index, total int, filename string) {
	line := fmt.Sprintf("[%d/%d] %s", index+1, total, filepath.Base(filename))
	if p.tty {
		fmt.Fprintf(p.w, "\r\033[K%s", line)
	} else {
		fmt.Fprintln(p.w, line)
	}
	p.printed = true
}

// Done ends the in-place progress line.
func (p *progressPrinter) Done() {
	if p.tty && p.printed {
		fmt.Fprintln(p.w)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
