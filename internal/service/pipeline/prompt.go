package pipeline

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Prompter asks single-line questions. An empty answer selects the default.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter reads answers from in and writes questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Ask prints question and returns the trimmed answer or def.
// End of input is treated as an empty answer.
func (p *Prompter) Ask(question, def string) (string, error) {
	if _, err := fmt.Fprint(p.out, question); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read answer: %w", err)
	}

	if errors.Is(err, io.EOF) {
		// Keep the terminal tidy when stdin is not interactive.
		_, _ = fmt.Fprintln(p.out)
	}

	answer := strings.TrimSpace(line)
	if answer == "" {
		return def, nil
	}

	return answer, nil
}
