package script

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Sumatoshi-tech/roadsplit/internal/render"
	"github.com/Sumatoshi-tech/roadsplit/internal/service"
	"github.com/Sumatoshi-tech/roadsplit/pkg/ledger"
)

// Transcript lines of the command stream.
const (
	Prompt       = "Daily cost:"
	InvalidInput = "Invalid input."
)

// DefaultMaxSections caps the initial cost list when Options leave it unset.
const DefaultMaxSections = 10000

// Backend applies parsed commands.
type Backend interface {
	Update(ctx context.Context, u service.Update) error
	Query(ctx context.Context, start, end int64) (service.QueryResult, error)
}

// OpenFunc creates the backend for the initial section costs.
type OpenFunc func(ctx context.Context, initialCosts []int64) (Backend, error)

// Options configure a Processor.
type Options struct {
	// MaxSections caps the length of the initial cost list.
	MaxSections int
	// Transcript writes the prompt and the invalid-input line to the output.
	Transcript bool
	Logger     *slog.Logger
}

// Processor runs a command stream against a backend.
type Processor struct {
	open     OpenFunc
	renderer render.Renderer
	opts     Options
	logger   *slog.Logger
}

// NewProcessor creates a processor that writes query results with renderer.
func NewProcessor(open OpenFunc, renderer render.Renderer, opts Options) *Processor {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	if opts.MaxSections <= 0 {
		opts.MaxSections = DefaultMaxSections
	}

	return &Processor{open: open, renderer: renderer, opts: opts, logger: logger}
}

// Run reads the stream from in and writes results to out. It stops at the
// first invalid command and returns an error wrapping ErrInvalidInput;
// results written before it stay in out.
func (p *Processor) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	err := p.writeLine(out, Prompt)
	if err != nil {
		return err
	}

	err = p.run(ctx, bufio.NewReader(in), out)

	flushErr := p.renderer.Flush(out)
	if flushErr != nil && err == nil {
		err = flushErr
	}

	if errors.Is(err, ErrInvalidInput) {
		writeErr := p.writeLine(out, InvalidInput)
		if writeErr != nil {
			return errors.Join(err, writeErr)
		}
	}

	return err
}

func (p *Processor) run(ctx context.Context, r *bufio.Reader, out io.Writer) error {
	costs, err := ParseHeader(r, p.opts.MaxSections)
	if err != nil {
		return err
	}

	backend, err := p.open(ctx, costs)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}

	p.logger.DebugContext(ctx, "ledger opened", "sections", len(costs))

	for lineNo := 1; ; lineNo++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		line, readErr := readLine(r)
		if errors.Is(readErr, io.EOF) {
			return nil
		}

		if readErr != nil {
			return fmt.Errorf("read line %d: %w", lineNo, readErr)
		}

		cmd, ok, parseErr := ParseCommand(line)
		if parseErr != nil {
			p.logger.DebugContext(ctx, "rejected command", "line", lineNo, "error", parseErr)

			return parseErr
		}

		if !ok {
			continue
		}

		err = p.apply(ctx, backend, cmd, out)
		if err != nil {
			p.logger.DebugContext(ctx, "command failed", "line", lineNo, "error", err)

			return err
		}
	}
}

func (p *Processor) apply(ctx context.Context, backend Backend, cmd Command, out io.Writer) error {
	switch cmd.Kind {
	case CommandUpdate:
		err := backend.Update(ctx, service.Update{Section: cmd.Section, Day: cmd.Day, Cost: cmd.Cost})
		if err != nil {
			return classify(err)
		}

		return nil
	case CommandQuery:
		res, err := backend.Query(ctx, cmd.Start, cmd.End)
		if err != nil {
			return classify(err)
		}

		return p.renderer.Render(out, res)
	default:
		return fmt.Errorf("%w: unknown command kind %d", ErrInvalidInput, cmd.Kind)
	}
}

// classify marks ledger rejections as invalid input and passes other
// failures through.
func classify(err error) error {
	for _, target := range []error{
		ledger.ErrNonMonotonicDay,
		ledger.ErrInvalidCost,
		ledger.ErrDayOutOfRange,
		ledger.ErrSectionOutOfRange,
		service.ErrInvalidRange,
	} {
		if errors.Is(err, target) {
			return fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}

	return err
}

func (p *Processor) writeLine(out io.Writer, line string) error {
	if !p.opts.Transcript {
		return nil
	}

	_, err := fmt.Fprintln(out, line)
	if err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}

	return nil
}
