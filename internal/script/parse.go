// Package script runs the line-oriented command stream: a brace-delimited
// list of initial section costs followed by cost updates and split queries.
//
//	{5, 1, 7}
//	= 2024-03-01 0: 8
//	? 2024-01-01 2024-06-30
package script

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode"

	"github.com/Sumatoshi-tech/roadsplit/pkg/calendar"
	"github.com/Sumatoshi-tech/roadsplit/pkg/ledger"
	"github.com/Sumatoshi-tech/roadsplit/pkg/safeconv"
)

// ErrInvalidInput indicates a malformed or rejected command.
var ErrInvalidInput = errors.New("invalid input")

// CommandKind distinguishes updates from queries.
type CommandKind int

// Command kinds.
const (
	CommandUpdate CommandKind = iota + 1
	CommandQuery
)

// Command is one parsed stream line.
type Command struct {
	Kind CommandKind

	// Update fields.
	Section int
	Day     int64
	Cost    int64

	// Query fields.
	Start int64
	End   int64
}

// ParseHeader reads the initial cost list from r. The list may span lines;
// r is left positioned right after the closing brace.
func ParseHeader(r *bufio.Reader, maxSections int) ([]int64, error) {
	ch, err := skipSpace(r)
	if err != nil || ch != '{' {
		return nil, fmt.Errorf("%w: cost list must start with '{'", ErrInvalidInput)
	}

	var (
		costs     []int64
		expectNum = true
	)

	for {
		ch, err = r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: unterminated cost list", ErrInvalidInput)
		}

		switch {
		case isSpace(ch):
			continue
		case ch == '}':
			return checkHeader(costs, maxSections)
		case !expectNum:
			if ch != ',' {
				return nil, fmt.Errorf("%w: expected ',' in cost list, got %q", ErrInvalidInput, ch)
			}

			expectNum = true

			continue
		case !isDigit(ch):
			return nil, fmt.Errorf("%w: expected a cost, got %q", ErrInvalidInput, ch)
		}

		cost, next, err := readCost(r, ch)
		if err != nil {
			return nil, err
		}

		costs = append(costs, cost)

		switch {
		case next == ',':
			expectNum = true
		case next == '}':
			return checkHeader(costs, maxSections)
		case isSpace(next):
			expectNum = false
		default:
			return nil, fmt.Errorf("%w: unexpected %q after cost", ErrInvalidInput, next)
		}
	}
}

// readCost reads the digits of a cost starting with first and returns the
// byte that ended it.
func readCost(r *bufio.Reader, first byte) (int64, byte, error) {
	value := int64(first - '0')

	for {
		ch, err := r.ReadByte()
		if err != nil {
			return 0, 0, fmt.Errorf("%w: unterminated cost list", ErrInvalidInput)
		}

		if !isDigit(ch) {
			if value <= 0 {
				return 0, 0, fmt.Errorf("%w: cost must be positive", ErrInvalidInput)
			}

			return value, ch, nil
		}

		value = value*10 + int64(ch-'0')
		if value > ledger.MaxCost {
			return 0, 0, fmt.Errorf("%w: cost exceeds %d", ErrInvalidInput, ledger.MaxCost)
		}
	}
}

func checkHeader(costs []int64, maxSections int) ([]int64, error) {
	if len(costs) < 2 || len(costs) > maxSections {
		return nil, fmt.Errorf("%w: %d sections, want 2 to %d", ErrInvalidInput, len(costs), maxSections)
	}

	return costs, nil
}

func skipSpace(r *bufio.Reader) (byte, error) {
	for {
		ch, err := r.ReadByte()
		if err != nil {
			return 0, err
		}

		if !isSpace(ch) {
			return ch, nil
		}
	}
}

// ParseCommand parses one stream line. A blank line yields ok == false.
func ParseCommand(line string) (Command, bool, error) {
	fields := strings.TrimSpace(line)
	if fields == "" {
		return Command{}, false, nil
	}

	var (
		cmd Command
		err error
	)

	switch fields[0] {
	case '=':
		cmd, err = parseUpdate(fields[1:])
	case '?':
		cmd, err = parseQuery(fields[1:])
	default:
		err = fmt.Errorf("%w: unknown command %q", ErrInvalidInput, fields[0])
	}

	if err != nil {
		return Command{}, false, err
	}

	return cmd, true, nil
}

// parseUpdate parses "YYYY-MM-DD idx: cost".
func parseUpdate(s string) (Command, error) {
	date, rest := nextToken(s)

	day, err := calendar.ParseDay(date)
	if err != nil {
		return Command{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	idxText, rest, found := strings.Cut(rest, ":")
	if !found {
		return Command{}, fmt.Errorf("%w: update needs 'section: cost'", ErrInvalidInput)
	}

	section, err := parseNumber(strings.TrimSpace(idxText), math.MaxInt32)
	if err != nil {
		return Command{}, fmt.Errorf("%w: section: %w", ErrInvalidInput, err)
	}

	cost, err := parseNumber(strings.TrimSpace(rest), ledger.MaxCost)
	if err != nil {
		return Command{}, fmt.Errorf("%w: cost: %w", ErrInvalidInput, err)
	}

	if cost == 0 {
		return Command{}, fmt.Errorf("%w: cost must be positive", ErrInvalidInput)
	}

	return Command{Kind: CommandUpdate, Section: safeconv.MustInt64ToInt(section), Day: day, Cost: cost}, nil
}

// parseQuery parses "YYYY-MM-DD YYYY-MM-DD".
func parseQuery(s string) (Command, error) {
	first, rest := nextToken(s)
	second, rest := nextToken(rest)

	if strings.TrimSpace(rest) != "" {
		return Command{}, fmt.Errorf("%w: trailing text %q", ErrInvalidInput, strings.TrimSpace(rest))
	}

	start, err := calendar.ParseDay(first)
	if err != nil {
		return Command{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	end, err := calendar.ParseDay(second)
	if err != nil {
		return Command{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if start > end {
		return Command{}, fmt.Errorf("%w: %s is after %s", ErrInvalidInput, first, second)
	}

	return Command{Kind: CommandQuery, Start: start, End: end}, nil
}

var (
	errNotNumber = errors.New("not a decimal number")
	errTooLarge  = errors.New("number too large")
)

// parseNumber parses a non-negative decimal of plain digits no larger than limit.
func parseNumber(s string, limit int64) (int64, error) {
	if s == "" {
		return 0, errNotNumber
	}

	var value int64

	for i := range len(s) {
		if !isDigit(s[i]) {
			return 0, fmt.Errorf("%w: %q", errNotNumber, s)
		}

		value = value*10 + int64(s[i]-'0')
		if value > limit {
			return 0, fmt.Errorf("%w: %q", errTooLarge, s)
		}
	}

	return value, nil
}

// nextToken splits off the first whitespace-delimited token of s.
func nextToken(s string) (token, rest string) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	end := strings.IndexFunc(s, unicode.IsSpace)
	if end < 0 {
		return s, ""
	}

	return s[:end], s[end:]
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

// readLine returns the next line without its terminator. It returns io.EOF
// only once no more text remains.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}

	return strings.TrimRight(line, "\r\n"), nil
}
