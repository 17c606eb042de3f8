// Command fsrsched schedules flashcard reviews of markdown notes.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/conorfennell/fsrsched/internal/config"
	"github.com/conorfennell/fsrsched/internal/fsrs"
	"github.com/conorfennell/fsrsched/internal/review"
	"github.com/conorfennell/fsrsched/internal/storage"
	"github.com/conorfennell/fsrsched/internal/sync"
)

const usage = `usage: fsrsched [flags] <command> [args]

commands:
  add-source <path|url>     register a notes directory or git remote
  sources                   list registered sources
  sync                      pull sources and reconcile cards
  due                       list cards due now
  preview <hash>            show the outcome of every rating
  review <hash> <rating>    record a review (again, hard, good, easy or 1-4)

flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "fsrsched:", err)
		}
		os.Exit(1)
	}
}

// app carries what every command needs.
type app struct {
	db     *storage.DB
	cfg    *config.Config
	params fsrs.Parameters
	out    io.Writer
	now    time.Time
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := config.Flags("fsrsched")
	fs.SetOutput(stderr)
	limit := fs.Int("limit", 20, "maximum number of due cards to list")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.NewLoader().Load(fs)
	if err != nil {
		return err
	}
	slog.SetDefault(cfg.Log.NewLogger(stderr))

	params, err := cfg.Parameters()
	if err != nil {
		return err
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return errors.New("no command given")
	}

	db, err := storage.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer db.Close()
	slog.Debug("database opened", "path", cfg.DB)

	a := &app{db: db, cfg: cfg, params: params, out: stdout, now: time.Now()}
	cmd, cmdArgs := rest[0], rest[1:]
	switch cmd {
	case "add-source":
		if len(cmdArgs) != 1 {
			return errors.New("add-source takes exactly one path or URL")
		}
		return a.addSource(ctx, cmdArgs[0])
	case "sources":
		return a.listSources(ctx)
	case "sync":
		return a.sync(ctx)
	case "due":
		return a.due(ctx, *limit)
	case "preview":
		if len(cmdArgs) != 1 {
			return errors.New("preview takes exactly one card hash")
		}
		return a.preview(ctx, cmdArgs[0])
	case "review":
		if len(cmdArgs) != 2 {
			return errors.New("review takes a card hash and a rating")
		}
		r, err := fsrs.ParseRating(cmdArgs[1])
		if err != nil {
			return err
		}
		return a.review(ctx, cmdArgs[0], r)
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) service() (*review.Service, error) {
	f, err := fsrs.NewFSRS(a.params)
	if err != nil {
		return nil, err
	}
	return review.NewService(a.db, f), nil
}

func (a *app) addSource(ctx context.Context, pathOrURL string) error {
	src, err := sync.AddSource(ctx, a.db, pathOrURL)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "added %s source %d: %s\n", src.Kind, src.ID, src.Path)
	return nil
}

func (a *app) listSources(ctx context.Context) error {
	sources, err := a.db.Sources(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tPATH\tLAST SYNC")
	for _, s := range sources {
		last := "never"
		if !s.LastScanned.IsZero() {
			last = s.LastScanned.Local().Format(time.DateTime)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", s.ID, s.Kind, s.Path, last)
	}
	return w.Flush()
}

func (a *app) sync(ctx context.Context) error {
	report, err := sync.New(a.db, a.cfg.ReposDir).Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "parsed %d notes: %d added, %d removed, %d errors\n",
		report.Parsed, report.Added, report.Removed, len(report.Errors))
	for _, e := range report.Errors {
		fmt.Fprintf(a.out, "- %s\n", e)
	}
	return nil
}

func (a *app) due(ctx context.Context, limit int) error {
	svc, err := a.service()
	if err != nil {
		return err
	}
	items, err := svc.Due(ctx, a.now, limit)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "nothing due")
		return nil
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "HASH\tSTATE\tRECALL\tQUESTION")
	for _, it := range items {
		fmt.Fprintf(w, "%s\t%s\t%.0f%%\t%s\n",
			shortHash(it.Note.Hash), it.Card.State, it.Retrievability*100, firstLine(it.Note.Question))
	}
	return w.Flush()
}

func (a *app) preview(ctx context.Context, hash string) error {
	svc, err := a.service()
	if err != nil {
		return err
	}
	log, err := svc.Preview(ctx, hash, a.now)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RATING\tSTATE\tINTERVAL\tDUE\tSTABILITY\tDIFFICULTY")
	for _, r := range fsrs.Ratings() {
		c := log[r].Card
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2f\t%.2f\n",
			r, c.State, interval(a.now, c), c.Due.Local().Format(time.DateTime), c.Stability, c.Difficulty)
	}
	return w.Flush()
}

func (a *app) review(ctx context.Context, hash string, r fsrs.Rating) error {
	svc, err := a.service()
	if err != nil {
		return err
	}
	info, err := svc.Answer(ctx, hash, r, a.now)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s: %s, next review in %s (%s)\n",
		r, info.Card.State, interval(a.now, info.Card), info.Card.Due.Local().Format(time.DateTime))
	return nil
}

// interval renders learning steps in minutes and everything else in days.
func interval(now time.Time, c fsrs.Card) string {
	if c.ScheduledDays > 0 {
		return fmt.Sprintf("%dd", c.ScheduledDays)
	}
	return c.Due.Sub(now).Round(time.Minute).String()
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
