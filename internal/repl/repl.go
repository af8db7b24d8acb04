// Package repl runs the interactive prompt loop: ask for a location and units,
// fetch, print, and ask whether to go again.
package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/kjstillabower/weathercheck/internal/client"
	"github.com/kjstillabower/weathercheck/internal/models"
	"github.com/kjstillabower/weathercheck/internal/observability"
	"github.com/kjstillabower/weathercheck/internal/presenter"
	"github.com/kjstillabower/weathercheck/internal/validation"
)

const (
	promptLocation = "Enter a zip code or city name: "
	promptUnits    = "Choose the units (imperial/metric): "
	promptRepeat   = "Do you want to check the weather again? (yes/no): "
	invalidUnits   = "Invalid choice. Please enter 'imperial' or 'metric'."
)

// State is the loop state (Prompting, Done).
type State int

const (
	StatePrompting State = iota
	StateDone
)

func (s State) String() string {
	switch s {
	case StatePrompting:
		return "prompting"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Loop drives one interactive session. It is not safe for concurrent use.
type Loop struct {
	client client.WeatherClient
	in     io.Reader
	out    io.Writer
	logger *zap.Logger
	state  State

	lines <-chan inputLine
	stop  chan struct{}
}

type inputLine struct {
	text string
	err  error // io.EOF at end of input
}

// New creates a Loop reading answers from in and writing prompts and results to out.
func New(c client.WeatherClient, in io.Reader, out io.Writer, logger *zap.Logger) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		client: c,
		in:     in,
		out:    out,
		logger: logger,
		state:  StatePrompting,
	}
}

// State returns the current loop state.
func (l *Loop) State() State {
	return l.state
}

// Run prompts until the user declines to continue, input ends, or ctx is cancelled.
// Lookup failures are printed and do not end the loop. Only write errors are returned.
func (l *Loop) Run(ctx context.Context) error {
	l.stop = make(chan struct{})
	defer close(l.stop)
	l.lines = l.readLines()

	for l.state == StatePrompting {
		if err := l.step(ctx); err != nil {
			l.state = StateDone
			return err
		}
	}
	return nil
}

// step runs one PROMPTING iteration and sets the next state.
func (l *Loop) step(ctx context.Context) error {
	location, ok, err := l.ask(ctx, promptLocation)
	if err != nil || !ok {
		return err
	}
	location = strings.TrimSpace(location)

	var units models.Units
	for {
		answer, ok, err := l.ask(ctx, promptUnits)
		if err != nil || !ok {
			return err
		}
		if units, err = models.ParseUnits(answer); err == nil {
			break
		}
		if err := l.println(invalidUnits); err != nil {
			return err
		}
	}

	by := "city name"
	if validation.IsPostalCode(location) {
		by = "zip code"
	}
	if err := l.println("Fetching weather data by " + by + "..."); err != nil {
		return err
	}

	result, err := l.client.Fetch(ctx, location, units)
	if err != nil {
		if ctx.Err() != nil {
			l.state = StateDone
			return nil
		}
		category := client.CategorizeError(err)
		observability.RecordLookup(string(units), string(category))
		l.logger.Debug("lookup failed", zap.String("location", location), zap.String("units", string(units)), zap.String("category", string(category)), zap.Error(err))
		if err := l.println(presenter.Message(err)); err != nil {
			return err
		}
	} else {
		observability.RecordLookup(string(units), "success")
		if err := presenter.Display(l.out, result, units); err != nil {
			return err
		}
	}

	answer, ok, err := l.ask(ctx, promptRepeat)
	if err != nil || !ok {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "yes", "y":
	default:
		l.state = StateDone
	}
	return nil
}

// ask writes prompt and waits for one line. ok is false, and the loop is done, when
// input ends or ctx is cancelled.
func (l *Loop) ask(ctx context.Context, prompt string) (string, bool, error) {
	if _, err := io.WriteString(l.out, prompt); err != nil {
		return "", false, fmt.Errorf("write prompt: %w", err)
	}
	select {
	case <-ctx.Done():
		l.state = StateDone
		return "", false, l.println("")
	case line := <-l.lines:
		if line.err != nil {
			if line.err != io.EOF {
				l.logger.Warn("read input", zap.Error(line.err))
			}
			l.state = StateDone
			return "", false, l.println("")
		}
		return line.text, true, nil
	}
}

func (l *Loop) println(s string) error {
	if _, err := fmt.Fprintln(l.out, s); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// readLines feeds input lines to a channel so a blocked read never holds up cancellation.
func (l *Loop) readLines() <-chan inputLine {
	ch := make(chan inputLine)
	stop := l.stop
	go func() {
		defer close(ch)
		scanner := bufio.NewScanner(l.in)
		for scanner.Scan() {
			select {
			case ch <- inputLine{text: scanner.Text()}:
			case <-stop:
				return
			}
		}
		err := scanner.Err()
		if err == nil {
			err = io.EOF
		}
		select {
		case ch <- inputLine{err: err}:
		case <-stop:
		}
	}()
	return ch
}
