package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"media-catalog/internal/catalog"
	"media-catalog/internal/dimensions"
	"media-catalog/internal/filesystem"
	"media-catalog/internal/indexer"
	"media-catalog/internal/logging"
	"media-catalog/internal/media"
	"media-catalog/internal/mediatypes"
	"media-catalog/internal/model"
	"media-catalog/internal/refs"
	"media-catalog/internal/startup"
	"media-catalog/internal/storage"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

// errUsage is returned for bad command lines; usage has been printed.
var errUsage = errors.New("usage")

// app holds what every command needs. Output goes to stdout, diagnostics
// and prompts to stderr.
type app struct {
	cfg    *startup.Config
	vault  filesystem.Vault
	index  *catalog.Index
	store  *storage.Store
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// isTerminal reports whether f is an interactive terminal.
	isTerminal func(f interface{}) bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Keep stdout clean for JSON output.
	logging.SetOutput(os.Stderr)

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		printUsage(stderr)
		return 1
	}

	a, err := newApp(stdin, stdout, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if err := a.dispatch(ctx, args[0], args[1:]); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) (*app, error) {
	cfg, err := startup.ResolveConfig()
	if err != nil {
		return nil, err
	}

	vault, err := filesystem.NewOSVault(cfg.VaultDir, filesystem.DefaultRetryConfig())
	if err != nil {
		return nil, err
	}

	index := catalog.New(catalog.Config{RecentTagCap: cfg.RecentTagCap})
	store := storage.New(vault, cfg.StoragePath)
	if err := store.Load(index); err != nil {
		return nil, fmt.Errorf("load %s: %w", store.Path(), err)
	}

	return &app{
		cfg:        cfg,
		vault:      vault,
		index:      index,
		store:      store,
		stdin:      stdin,
		stdout:     stdout,
		stderr:     stderr,
		isTerminal: isTerminal,
	}, nil
}

func isTerminal(f interface{}) bool {
	file, ok := f.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "scan":
		return a.scan(ctx, args)
	case "list":
		return a.list(args)
	case "search":
		return a.search(args)
	case "tags":
		return a.tags(args)
	case "refs":
		return a.refs(ctx, args)
	case "export":
		return a.export(args)
	case "import":
		return a.importFile(args)
	case "cleanup":
		return a.cleanup()
	case "stats":
		return a.stats()
	default:
		fmt.Fprintf(a.stderr, "Unknown command: %s\n", sanitizeCommand(command))
		printUsage(a.stderr)
		return errUsage
	}
}

// sanitizeCommand keeps only [a-zA-Z0-9_-] so a bad command cannot inject
// terminal escapes into the error message.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "media-catalog command line")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage: mediactl <command> [arguments]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  scan                      Scan the vault and update the catalog")
	fmt.Fprintln(w, "  list [-kind k] [-json]    List cataloged media")
	fmt.Fprintln(w, "  search [-json] <keyword>  Search titles, descriptions and tags")
	fmt.Fprintln(w, "  tags [-popular n|-recent] List tags")
	fmt.Fprintln(w, "  refs <path>               List notes embedding a media file")
	fmt.Fprintln(w, "  export [file]             Write the catalog as JSON (default: stdout)")
	fmt.Fprintln(w, "  import [-yes] <file>      Replace the catalog with a JSON export")
	fmt.Fprintln(w, "  cleanup                   Drop records for missing files")
	fmt.Fprintln(w, "  stats                     Show catalog counts")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  VAULT_DIR, STORAGE_PATH, SCAN_ROOTS and the other server variables")
}

func (a *app) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func (a *app) scan(ctx context.Context, args []string) error {
	fs := a.newFlagSet("scan")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	cache := dimensions.New(media.NewProber(a.vault, false), dimensions.Config{
		TTL:                a.cfg.CacheTTL,
		PreloadConcurrency: a.cfg.PreloadConcurrency,
	})
	ix := indexer.New(a.index, cache, a.vault, a.store, indexer.Config{
		ScanRoots:   a.cfg.ScanRoots,
		Extensions:  a.cfg.Extensions,
		AutoTag:     a.cfg.AutoTag,
		DefaultTags: a.cfg.DefaultTags,
	})

	result, err := ix.Index(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Scanned %d files: %d added, %d removed, %d records total\n",
		result.FilesSeen, result.Added, result.Removed, a.index.Len())
	return nil
}

func (a *app) list(args []string) error {
	fs := a.newFlagSet("list")
	kind := fs.String("kind", "", "only list this kind (image, video, audio)")
	asJSON := fs.Bool("json", false, "print JSON even on a terminal")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	records := a.index.All()
	if *kind != "" {
		k, ok := mediatypes.ParseKind(*kind)
		if !ok {
			return fmt.Errorf("unknown kind %q", *kind)
		}
		records = a.index.ByKind(k)
	}
	return a.printRecords(records, *asJSON)
}

func (a *app) search(args []string) error {
	fs := a.newFlagSet("search")
	asJSON := fs.Bool("json", false, "print JSON even on a terminal")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(a.stderr, "Usage: mediactl search [-json] <keyword>")
		return errUsage
	}
	return a.printRecords(a.index.Search(strings.Join(fs.Args(), " ")), *asJSON)
}

// printRecords writes a table on a terminal and a JSON array otherwise.
func (a *app) printRecords(records []model.MediaRecord, asJSON bool) error {
	if asJSON || !a.isTerminal(a.stdout) {
		return a.printJSON(records)
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TYPE\tPATH\tTITLE\tRESOLUTION\tSIZE\tTAGS")
	for _, rec := range records {
		size := "-"
		if rec.FileSize != nil {
			size = humanize.Bytes(uint64(*rec.FileSize))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.Type, rec.Path, rec.Title, rec.Resolution, size, strings.Join(rec.Tags, ", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(a.stderr, "%d records\n", len(records))
	return nil
}

func (a *app) printJSON(v interface{}) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) tags(args []string) error {
	fs := a.newFlagSet("tags")
	popular := fs.Int("popular", -1, "list the n most used tags with counts (0 for all)")
	recent := fs.Bool("recent", false, "list recently used tags")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	switch {
	case *recent:
		for _, tag := range a.index.RecentTags() {
			fmt.Fprintln(a.stdout, tag)
		}
	case *popular >= 0:
		for _, tc := range a.index.PopularTags(*popular) {
			fmt.Fprintf(a.stdout, "%d\t%s\n", tc.Count, tc.Tag)
		}
	default:
		for _, tag := range a.index.AllTags() {
			fmt.Fprintln(a.stdout, tag)
		}
	}
	return nil
}

func (a *app) refs(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.stderr, "Usage: mediactl refs <path>")
		return errUsage
	}
	found, err := refs.NewFinder(a.vault).Find(ctx, args[0])
	if err != nil {
		return err
	}
	for _, ref := range found {
		fmt.Fprintf(a.stdout, "%s\t%s\n", ref.Note, ref.Syntax)
	}
	return nil
}

func (a *app) export(args []string) error {
	data, err := a.index.ExportJSON()
	if err != nil {
		return err
	}
	if len(args) == 0 || args[0] == "-" {
		_, err = a.stdout.Write(append(data, '\n'))
		return err
	}
	if err := os.WriteFile(args[0], data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	fmt.Fprintf(a.stderr, "Exported %d records to %s\n", a.index.Len(), args[0])
	return nil
}

func (a *app) importFile(args []string) error {
	fs := a.newFlagSet("import")
	yes := fs.Bool("yes", false, "do not ask for confirmation")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(a.stderr, "Usage: mediactl import [-yes] <file>")
		return errUsage
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("read import: %w", err)
	}

	if !*yes && a.index.Len() > 0 {
		if !a.isTerminal(a.stdin) {
			return errors.New("refusing to replace existing records without -yes")
		}
		if !a.confirm(fmt.Sprintf("Replace %d existing records? [y/N] ", a.index.Len())) {
			fmt.Fprintln(a.stderr, "Import cancelled.")
			return nil
		}
	}

	n, err := a.index.ImportJSON(data)
	if err != nil {
		return err
	}
	if err := a.store.Save(a.index); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Imported %d records\n", n)
	return nil
}

func (a *app) confirm(prompt string) bool {
	fmt.Fprint(a.stderr, prompt)
	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

func (a *app) cleanup() error {
	removed := a.index.CleanupInvalid(a.vault.Exists, a.cfg.ScanRoots)
	if removed > 0 {
		if err := a.store.Save(a.index); err != nil {
			return err
		}
	}
	fmt.Fprintf(a.stdout, "Removed %d records, %d remain\n", removed, a.index.Len())
	return nil
}

func (a *app) stats() error {
	stats := a.index.Stats()
	fmt.Fprintln(a.stdout, "Catalog Statistics:")
	fmt.Fprintf(a.stdout, "  Records:      %d\n", stats.TotalRecords)
	for _, k := range mediatypes.Kinds {
		fmt.Fprintf(a.stdout, "  %-13s %d\n", string(k)+":", stats.ByKind[k])
	}
	fmt.Fprintf(a.stdout, "  Tags:         %d\n", stats.TotalTags)
	fmt.Fprintf(a.stdout, "  Recent tags:  %d\n", stats.RecentTags)
	return nil
}
