// Package prompt asks the user for export decisions on a console.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/leefowlercu/analytics-exporter/internal/report"
)

// Prompter asks y/n questions. Anything other than "y" (case-insensitive)
// is a no, including end of input.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New creates a prompter reading answers from in and writing questions to out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// ConfirmOverwrite asks whether an existing output file may be replaced.
func (p *Prompter) ConfirmOverwrite(ctx context.Context, path string) (bool, error) {
	return p.ask(ctx, fmt.Sprintf("File %s already exists. Delete and recreate? (y/n)", path))
}

// ContinueAfterExhausted asks whether to keep the partial export of job.
func (p *Prompter) ContinueAfterExhausted(ctx context.Context, job report.Job, cause error) (bool, error) {
	return p.ask(ctx, "Max retry count reached. Do you want to continue? (y/n)")
}

func (p *Prompter) ask(ctx context.Context, question string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintln(p.out, question)

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer; %w", err)
	}
	return strings.EqualFold(strings.TrimSpace(line), "y"), nil
}
