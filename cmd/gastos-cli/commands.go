package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"gastos/internal/app"
	"gastos/internal/core"
	"gastos/internal/report"
	"gastos/internal/view"
)

type env struct {
	ctrl          *app.Controller
	labels        report.Labels
	out           io.Writer
	defaultFormat string
}

var errUsage = errors.New("usage")

const usage = `usage: gastos-cli <command> [flags]

commands:
  summary       [--period YYYY-MM]
  list          [--period YYYY-MM]
  categories
  add-category  NAME
  add           --date YYYY-MM-DD --category C [--description D] --amount N
  edit          ID [--date ...] [--category ...] [--description ...] [--amount ...]
  delete        ID
  goal          CATEGORY VALUE
  goals         [CATEGORY=VALUE ...]
  report        [--period YYYY-MM] [--notes N] [--include-empty] [--format pdf|xlsx|all] [--out DIR]
  import        FILE`

type command func(ctx context.Context, e *env, args []string) error

var commands = map[string]command{
	"summary":      cmdSummary,
	"list":         cmdList,
	"categories":   cmdCategories,
	"add-category": cmdAddCategory,
	"add":          cmdAdd,
	"edit":         cmdEdit,
	"delete":       cmdDelete,
	"goal":         cmdGoal,
	"goals":        cmdGoals,
	"report":       cmdReport,
	"import":       cmdImport,
}

func run(ctx context.Context, e *env, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w\n%s", errUsage, usage)
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("%w: unknown command %q\n%s", errUsage, args[0], usage)
	}
	return cmd(ctx, e, args[1:])
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, errUsage):
		return 2
	case app.IsValidation(err), app.IsNotFound(err):
		return 3
	default:
		return 1
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

// periodFlag parses YYYY-MM into a period. Empty keeps the default.
type periodFlag struct{ p *core.Period }

func (f periodFlag) String() string {
	if f.p == nil {
		return ""
	}
	return f.p.Key()
}

func (f periodFlag) Set(s string) error {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("%w: %q", app.ErrInvalidPeriod, s)
	}
	*f.p = core.PeriodOf(t)
	return nil
}

func parseArgs(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s: %v", errUsage, fs.Name(), err)
	}
	return nil
}

// interleave lets positional arguments precede flags, e.g. "edit ID --amount 3".
func interleave(args []string) (positional, flags []string) {
	for i := 0; i < len(args); i++ {
		if strings.HasPrefix(args[i], "-") {
			return positional, args[i:]
		}
		positional = append(positional, args[i])
	}
	return positional, nil
}

func cmdSummary(_ context.Context, e *env, args []string) error {
	p := e.ctrl.State().Period
	fs := newFlagSet("summary")
	fs.Var(periodFlag{&p}, "period", "month to show")
	if err := parseArgs(fs, args); err != nil {
		return err
	}
	sum := e.ctrl.Summary(p)
	fmt.Fprint(e.out, view.Summary(sum, e.labels))
	fmt.Fprint(e.out, view.ExpenseList(sum.Expenses, e.labels.NoExpenses))
	return nil
}

func cmdList(_ context.Context, e *env, args []string) error {
	p := e.ctrl.State().Period
	fs := newFlagSet("list")
	fs.Var(periodFlag{&p}, "period", "month to list")
	if err := parseArgs(fs, args); err != nil {
		return err
	}
	fmt.Fprint(e.out, view.ExpenseList(e.ctrl.Summary(p).Expenses, e.labels.NoExpenses))
	return nil
}

func cmdCategories(_ context.Context, e *env, _ []string) error {
	s := e.ctrl.State()
	fmt.Fprint(e.out, view.Categories(s.Categories, s.Selected))
	return nil
}

func cmdAddCategory(ctx context.Context, e *env, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: add-category NAME", errUsage)
	}
	s, err := e.ctrl.Dispatch(ctx, app.AddCategory{Name: strings.Join(args, " ")})
	if err != nil {
		return err
	}
	fmt.Fprint(e.out, view.Categories(s.Categories, s.Selected))
	return nil
}

type expenseFlags struct {
	date, category, description, amount string
}

// register binds the flags using the current field values as defaults.
func (f *expenseFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.date, "date", f.date, "date as YYYY-MM-DD")
	fs.StringVar(&f.category, "category", f.category, "category name")
	fs.StringVar(&f.description, "description", f.description, "free text")
	fs.StringVar(&f.amount, "amount", f.amount, "amount, comma or dot decimals")
}

func cmdAdd(ctx context.Context, e *env, args []string) error {
	var f expenseFlags
	fs := newFlagSet("add")
	f.register(fs)
	if err := parseArgs(fs, args); err != nil {
		return err
	}
	s, err := e.ctrl.Dispatch(ctx, app.SaveExpense{
		Date:        f.date,
		Category:    f.category,
		Description: f.description,
		Amount:      f.amount,
	})
	if err != nil {
		return err
	}
	created := s.Expenses[len(s.Expenses)-1]
	fmt.Fprintf(e.out, "added %s: %s %s\n", created.ID, created.Title(), core.FormatMoney(created.Amount))
	return nil
}

// cmdEdit keeps the stored value of every field not given on the command line.
func cmdEdit(ctx context.Context, e *env, args []string) error {
	positional, rest := interleave(args)
	if len(positional) != 1 {
		return fmt.Errorf("%w: edit ID [flags]", errUsage)
	}
	id := positional[0]
	current, ok := e.ctrl.State().Expense(id)
	if !ok {
		return fmt.Errorf("%w: %s", core.ErrExpenseNotFound, id)
	}
	f := expenseFlags{
		date:        current.Date,
		category:    current.Category,
		description: current.Description,
		amount:      current.Amount.String(),
	}
	fs := newFlagSet("edit")
	f.register(fs)
	if err := parseArgs(fs, rest); err != nil {
		return err
	}
	if _, err := e.ctrl.Dispatch(ctx, app.SaveExpense{
		ID:          id,
		Date:        f.date,
		Category:    f.category,
		Description: f.description,
		Amount:      f.amount,
	}); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "updated %s\n", id)
	return nil
}

func cmdDelete(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: delete ID", errUsage)
	}
	if _, err := e.ctrl.Dispatch(ctx, app.DeleteExpense{ID: args[0]}); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "deleted %s\n", args[0])
	return nil
}

func cmdGoal(ctx context.Context, e *env, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("%w: goal CATEGORY VALUE", errUsage)
	}
	s, err := e.ctrl.Dispatch(ctx, app.SetGoal{Category: args[0], Value: args[1]})
	if err != nil {
		return err
	}
	fmt.Fprintf(e.out, "%s: %s\n", args[0], core.FormatMoney(s.Goals.Goal(args[0])))
	return nil
}

// cmdGoals prints every goal, applying CATEGORY=VALUE pairs first as one edit.
func cmdGoals(ctx context.Context, e *env, args []string) error {
	s := e.ctrl.State()
	if len(args) > 0 {
		values := make(map[string]string, len(args))
		for _, a := range args {
			name, value, ok := strings.Cut(a, "=")
			if !ok {
				return fmt.Errorf("%w: goals CATEGORY=VALUE ...", errUsage)
			}
			values[name] = value
		}
		var err error
		if s, err = e.ctrl.Dispatch(ctx, app.SetGoals{Values: values}); err != nil {
			return err
		}
	}
	names := make([]string, 0, len(s.Goals))
	for name := range s.Goals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(e.out, "%s: %s\n", name, core.FormatMoney(s.Goals[name]))
	}
	return nil
}

func cmdReport(ctx context.Context, e *env, args []string) error {
	opts := e.ctrl.DefaultReportOptions()
	fs := newFlagSet("report")
	fs.Var(periodFlag{&opts.Period}, "period", "month to report")
	fs.StringVar(&opts.Notes, "notes", "", "free text printed at the end")
	fs.BoolVar(&opts.IncludeEmpty, "include-empty", false, "list categories without expenses")
	format := fs.String("format", e.defaultFormat, "pdf, xlsx or all")
	outDir := fs.String("out", ".", "output directory")
	if err := parseArgs(fs, args); err != nil {
		return err
	}

	var formats []report.Format
	if strings.EqualFold(*format, "all") {
		formats = []report.Format{report.FormatPDF, report.FormatXLSX}
	} else {
		f, err := report.ParseFormat(*format)
		if err != nil {
			return err
		}
		formats = []report.Format{f}
	}

	paths := make([]string, len(formats))
	g, gctx := errgroup.WithContext(ctx)
	for i, f := range formats {
		g.Go(func() error {
			o := opts
			o.Format = f
			art, err := e.ctrl.GenerateReport(gctx, o)
			if err != nil {
				return err
			}
			path := filepath.Join(*outDir, art.Filename)
			if err := os.WriteFile(path, art.Body, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			paths[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(e.out, p)
	}
	return nil
}

func cmdImport(ctx context.Context, e *env, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: import FILE", errUsage)
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	if err := e.ctrl.Import(ctx, raw); err != nil {
		return err
	}
	s := e.ctrl.State()
	fmt.Fprintf(e.out, "imported %d categories, %d expenses, %d goals\n",
		len(s.Categories), len(s.Expenses), len(s.Goals))
	return nil
}
