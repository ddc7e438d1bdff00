// Package cli implements gradectl, a one-shot command runner over the grade
// workflow.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/okian/gradebase/internal/adapters/backend"
	"github.com/okian/gradebase/internal/adapters/download"
	service "github.com/okian/gradebase/internal/app"
	"github.com/okian/gradebase/internal/config"
	"github.com/okian/gradebase/internal/domain/model"
	"github.com/okian/gradebase/pkg/logger"
)

// Runner executes one command and writes its table to out.
type Runner struct {
	cfg    *config.Config
	out    io.Writer
	errOut io.Writer
	log    logger.Logger
}

// NewRunner creates a runner over cfg. Tables go to out, warnings and help
// to errOut.
func NewRunner(cfg *config.Config, out, errOut io.Writer) *Runner {
	if cfg == nil {
		cfg = config.New()
	}
	return &Runner{
		cfg:    cfg,
		out:    out,
		errOut: errOut,
		log:    logger.Default().Named("gradectl"),
	}
}

type command func(ctx context.Context, svc *service.Service, args []string) error

// Run parses global flags, builds the workflow and runs the named command.
func (r *Runner) Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("gradectl", flag.ContinueOnError)
	fs.SetOutput(r.errOut)
	fs.Usage = func() { ShowHelp(r.errOut) }
	var (
		baseURL = fs.String("url", r.cfg.BaseURL, "Base URL of the grades backend")
		token   = fs.String("token", r.cfg.Token, "Bearer token for the backend")
		timeout = fs.Duration("timeout", time.Duration(r.cfg.RequestTimeoutMS)*time.Millisecond, "Per-request timeout")
		verbose = fs.Bool("verbose", false, "Log debug output")
	)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if fs.NArg() == 0 {
		ShowHelp(r.errOut)
		return fmt.Errorf("%w: no command given", ErrUsage)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	name := fs.Arg(0)
	cmds := map[string]command{
		"sections":   r.sections,
		"students":   r.students,
		"search":     r.search,
		"export":     r.export,
		"projection": r.projection,
		"risk":       r.risk,
		"login":      r.login,
	}
	cmd, ok := cmds[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}

	client, err := backend.New(*baseURL,
		backend.WithCredentials(backend.NewTokenStore(*token)),
		backend.WithTimeout(*timeout),
		backend.WithPageSize(r.cfg.PageSize),
		backend.WithLogger(r.log.Named("backend")),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	svc := service.New(client,
		service.WithLogger(r.log),
		service.WithMLMinRows(r.cfg.MLMinRows),
	)

	r.log.Debug(ctx, "running command", logger.String("command", name), logger.String("url", *baseURL))
	return cmd(ctx, svc, fs.Args()[1:])
}

// Message renders err for the terminal.
func Message(err error) string {
	if errors.Is(err, ErrUsage) || errors.Is(err, ErrUnknownCommand) {
		return err.Error()
	}
	return service.UserMessage(err)
}

func (r *Runner) sections(ctx context.Context, svc *service.Service, _ []string) error {
	sections, err := svc.Sections(ctx)
	if err != nil {
		return err
	}
	return printSections(r.out, sections)
}

func (r *Runner) students(ctx context.Context, svc *service.Service, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: students takes one section id", ErrUsage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: section id %q is not a number", ErrUsage, args[0])
	}
	students, err := svc.Students(ctx, id)
	if err != nil {
		return err
	}
	return printStudents(r.out, students)
}

func (r *Runner) search(ctx context.Context, svc *service.Service, args []string) error {
	f, _, err := parseFilter("search", args, r.errOut)
	if err != nil {
		return err
	}
	if err := r.fetch(ctx, svc, f); err != nil {
		return err
	}
	return printRows(r.out, svc.View(ctx).Rows, columnsNone)
}

func (r *Runner) projection(ctx context.Context, svc *service.Service, args []string) error {
	f, _, err := parseFilter("projection", args, r.errOut)
	if err != nil {
		return err
	}
	if err := r.fetch(ctx, svc, f); err != nil {
		return err
	}
	if _, err := svc.RunProjection(ctx, f); err != nil {
		return err
	}
	return printRows(r.out, svc.View(ctx).Rows, columnsProjection)
}

func (r *Runner) risk(ctx context.Context, svc *service.Service, args []string) error {
	f, _, err := parseFilter("risk", args, r.errOut)
	if err != nil {
		return err
	}
	if err := r.fetch(ctx, svc, f); err != nil {
		return err
	}
	if _, err := svc.RunRisk(ctx, f); err != nil {
		return err
	}
	return printRows(r.out, svc.View(ctx).Rows, columnsRisk)
}

// fetch publishes the rows for f. A roster failure is reported as a warning
// since the rows were still published.
func (r *Runner) fetch(ctx context.Context, svc *service.Service, f model.Filter) error {
	_, err := svc.Search(ctx, f)
	if errors.Is(err, service.ErrRosterUnavailable) {
		fmt.Fprintln(r.errOut, "warning: "+service.UserMessage(err))
		return nil
	}
	return err
}

func (r *Runner) export(ctx context.Context, svc *service.Service, args []string) error {
	f, rest, err := parseFilter("export", args, r.errOut)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return fmt.Errorf("%w: export takes one format (csv, xlsx or pdf)", ErrUsage)
	}
	blob, err := svc.Export(ctx, rest[0], f)
	if err != nil {
		return err
	}
	path, err := download.NewSaver(r.cfg.ExportDir, download.WithLogger(r.log)).Save(ctx, blob.Name, blob.Data)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(r.out, "saved %s (%d bytes)\n", path, len(blob.Data))
	return err
}

func (r *Runner) login(ctx context.Context, svc *service.Service, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(r.errOut)
	var c model.Credentials
	fs.StringVar(&c.Username, "username", "", "Account name")
	fs.StringVar(&c.Password, "password", "", "Account password")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	tokens, err := svc.Login(ctx, c)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(r.out, tokens.Access)
	return err
}

// parseFilter reads the filter options of a command and returns the
// remaining positional arguments.
func parseFilter(name string, args []string, errOut io.Writer) (model.Filter, []string, error) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(errOut)
	var f model.Filter
	fs.StringVar(&f.CourseCode, "course", "", "Course code")
	fs.Int64Var(&f.SectionID, "section-id", 0, "Section id")
	fs.StringVar(&f.SectionName, "section", "", "Section name")
	fs.StringVar(&f.StudentCode, "student", "", "Student code")
	fs.IntVar(&f.Page, "page", 0, "Single page to fetch")
	if err := fs.Parse(args); err != nil {
		return model.Filter{}, nil, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	return f.Normalized(), fs.Args(), nil
}
