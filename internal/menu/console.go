// Package menu implements the interaction layer: numbered menu loops that
// collect minimally-validated input and translate choices into store
// operations. Input and output are injected so loops can be driven from
// tests with scripted sessions.
package menu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"wealthbook/internal/core"
	"wealthbook/internal/services"

	"github.com/shopspring/decimal"
)

type console struct {
	in  *bufio.Scanner
	out io.Writer
}

func newConsole(r io.Reader, w io.Writer) *console {
	return &console{
		in:  bufio.NewScanner(r),
		out: w,
	}
}

func (c *console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// prompt prints a label and reads one line. Returns io.EOF when input is
// exhausted, which menu loops treat as Exit.
func (c *console) prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.in.Text()), nil
}

// promptRequired re-asks until a non-empty value is entered.
func (c *console) promptRequired(label string) (string, error) {
	for {
		v, err := c.prompt(label)
		if err != nil {
			return "", err
		}
		if v != "" {
			return v, nil
		}
		c.printf("A value is required.\n")
	}
}

func (c *console) promptID(label string) (int64, error) {
	v, err := c.promptRequired(label)
	if err != nil {
		return 0, err
	}
	return parseID(v)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%q is not a valid id", s)
	}
	return id, nil
}

func (c *console) promptInt(label string) (int, error) {
	v, err := c.promptRequired(label)
	if err != nil {
		return 0, err
	}
	n, convErr := strconv.Atoi(v)
	if convErr != nil {
		return 0, fmt.Errorf("%q is not a number", v)
	}
	return n, nil
}

func (c *console) promptAmount(label string) (decimal.Decimal, error) {
	v, err := c.promptRequired(label)
	if err != nil {
		return decimal.Zero, err
	}
	return core.ParseAmount(v)
}

func (c *console) promptPositiveAmount(label string) (decimal.Decimal, error) {
	v, err := c.promptRequired(label)
	if err != nil {
		return decimal.Zero, err
	}
	return core.ParsePositiveAmount(v)
}

func (c *console) promptQuantity(label string) (decimal.Decimal, error) {
	v, err := c.promptRequired(label)
	if err != nil {
		return decimal.Zero, err
	}
	return core.ParseQuantity(v)
}

func (c *console) promptCategory() (core.Category, error) {
	v, err := c.promptRequired("Category (Stocks/MutualFunds/Insurance): ")
	if err != nil {
		return "", err
	}
	return core.ParseCategory(v)
}

func parsePositiveInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%q is not a positive number", s)
	}
	return n, nil
}

// reportErr prints recoverable errors in user terms; the caller re-prompts.
// Unexpected store failures are printed too, the loop never crashes on them.
func (c *console) reportErr(err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		c.printf("No record with that id.\n")
	case errors.Is(err, core.ErrDuplicate):
		c.printf("A record with those unique fields already exists.\n")
	case errors.Is(err, services.ErrInvalidCredentials):
		c.printf("Invalid username or password.\n")
	case errors.Is(err, services.ErrInsufficientFunds):
		c.printf("Insufficient balance for this purchase.\n")
	case errors.Is(err, core.ErrUnknownCategory):
		c.printf("Unknown category. Use Stocks, MutualFunds or Insurance.\n")
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidQuantity),
		errors.Is(err, core.ErrInvalidTerm),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrEmptyUsername),
		errors.Is(err, core.ErrEmptyPassword),
		errors.Is(err, core.ErrEmptyType):
		c.printf("Invalid input: %v\n", err)
	default:
		c.printf("Operation failed: %v\n", err)
	}
}
