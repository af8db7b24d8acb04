package repl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/kjstillabower/weathercheck/internal/client"
	"github.com/kjstillabower/weathercheck/internal/models"
)

type fetchCall struct {
	location string
	units    models.Units
}

type fakeClient struct {
	calls  []fetchCall
	result models.WeatherResult
	err    error
}

func (f *fakeClient) Fetch(ctx context.Context, location string, units models.Units) (models.WeatherResult, error) {
	f.calls = append(f.calls, fetchCall{location, units})
	return f.result, f.err
}

func sampleResult() models.WeatherResult {
	deg := 90.0
	return models.WeatherResult{
		City:        "London",
		Country:     "GB",
		Temperature: 12.5,
		FeelsLike:   11,
		TempMax:     14,
		Humidity:    80,
		WindSpeed:   4.1,
		WindDeg:     &deg,
	}
}

func run(t *testing.T, c client.WeatherClient, input string) (*Loop, string) {
	t.Helper()
	var out bytes.Buffer
	loop := New(c, strings.NewReader(input), &out, nil)
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return loop, out.String()
}

func TestLoop_SingleLookup(t *testing.T) {
	fc := &fakeClient{result: sampleResult()}
	loop, out := run(t, fc, "  London  \nmetric\nno\n")

	if loop.State() != StateDone {
		t.Errorf("State() = %v, want done", loop.State())
	}
	if len(fc.calls) != 1 {
		t.Fatalf("Fetch called %d times, want 1", len(fc.calls))
	}
	if fc.calls[0] != (fetchCall{"London", models.UnitsMetric}) {
		t.Errorf("Fetch call = %+v, want London/metric", fc.calls[0])
	}

	for _, want := range []string{
		promptLocation,
		promptUnits,
		"Fetching weather data by city name...\n",
		"City: London (GB)\n",
		"Temperature: 12.5°C\n",
		"Wind Speed: 4.1 m/s\n",
		"Wind Direction: E\n",
		promptRepeat,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestLoop_ZipCodeMessage(t *testing.T) {
	fc := &fakeClient{result: sampleResult()}
	_, out := run(t, fc, "10001\nimperial\nn\n")

	if !strings.Contains(out, "Fetching weather data by zip code...") {
		t.Errorf("output should announce zip code lookup:\n%s", out)
	}
	if fc.calls[0].location != "10001" {
		t.Errorf("location = %q, want raw zip (client normalizes)", fc.calls[0].location)
	}
	if !strings.Contains(out, "°F") || !strings.Contains(out, "mph") {
		t.Errorf("imperial output should use °F and mph:\n%s", out)
	}
}

func TestLoop_RepromptsInvalidUnits(t *testing.T) {
	fc := &fakeClient{result: sampleResult()}
	_, out := run(t, fc, "London\nkelvin\n\nIMPERIAL\nno\n")

	if got := strings.Count(out, invalidUnits); got != 2 {
		t.Errorf("invalid-units message printed %d times, want 2:\n%s", got, out)
	}
	if got := strings.Count(out, promptUnits); got != 3 {
		t.Errorf("units prompt printed %d times, want 3", got)
	}
	if len(fc.calls) != 1 || fc.calls[0].units != models.UnitsImperial {
		t.Errorf("Fetch calls = %+v, want one imperial call", fc.calls)
	}
}

func TestLoop_RepeatAnswers(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCalls int
	}{
		{"yes repeats", "a\nmetric\nyes\nb\nmetric\nno\n", 2},
		{"y repeats", "a\nmetric\ny\nb\nmetric\nnope\n", 2},
		{"case-insensitive", "a\nmetric\n YES \nb\nmetric\nY\nc\nmetric\nn\n", 3},
		{"empty answer stops", "a\nmetric\n\nb\nmetric\nno\n", 1},
		{"anything else stops", "a\nmetric\nsure\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeClient{result: sampleResult()}
			loop, _ := run(t, fc, tt.input)
			if len(fc.calls) != tt.wantCalls {
				t.Errorf("Fetch called %d times, want %d", len(fc.calls), tt.wantCalls)
			}
			if loop.State() != StateDone {
				t.Errorf("State() = %v, want done", loop.State())
			}
		})
	}
}

func TestLoop_ErrorsPrintedAndLoopContinues(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"transport", fmt.Errorf("%w: connection refused", client.ErrTransport), "Could not establish a connection to the weather service.\n"},
		{"service", fmt.Errorf("%w: HTTP 401", client.ErrServiceUnavailable), "Could not connect to the weather service.\n"},
		{"api", &client.APIError{Code: "404", Message: "city not found"}, "Error: city not found\n"},
		{"format", fmt.Errorf("%w: missing [main]", client.ErrFormat), "Error: Invalid weather data format.\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeClient{err: tt.err}
			_, out := run(t, fc, "Atlantis\nmetric\nyes\nAtlantis\nmetric\nno\n")

			if got := strings.Count(out, tt.want); got != 2 {
				t.Errorf("error line %q printed %d times, want 2:\n%s", tt.want, got, out)
			}
			if strings.Contains(out, "City:") {
				t.Errorf("no summary expected on error:\n%s", out)
			}
			if len(fc.calls) != 2 {
				t.Errorf("Fetch called %d times, want 2", len(fc.calls))
			}
		})
	}
}

func TestLoop_EndOfInput(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCalls int
	}{
		{"empty input", "", 0},
		{"after location", "London\n", 0},
		{"during units", "London\nkelvin", 0},
		{"before repeat answer", "London\nmetric\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeClient{result: sampleResult()}
			loop, _ := run(t, fc, tt.input)
			if loop.State() != StateDone {
				t.Errorf("State() = %v, want done", loop.State())
			}
			if len(fc.calls) != tt.wantCalls {
				t.Errorf("Fetch called %d times, want %d", len(fc.calls), tt.wantCalls)
			}
		})
	}
}

func TestLoop_ContextCancelledWhileWaitingForInput(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	var out bytes.Buffer
	loop := New(&fakeClient{}, pr, &out, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
	if loop.State() != StateDone {
		t.Errorf("State() = %v, want done", loop.State())
	}
}

type cancellingClient struct {
	cancel context.CancelFunc
}

func (c *cancellingClient) Fetch(ctx context.Context, location string, units models.Units) (models.WeatherResult, error) {
	c.cancel()
	return models.WeatherResult{}, fmt.Errorf("%w: %w", client.ErrTransport, context.Canceled)
}

func TestLoop_ContextCancelledDuringFetch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out bytes.Buffer
	loop := New(&cancellingClient{cancel: cancel}, strings.NewReader("London\nmetric\nyes\n"), &out, nil)
	if err := loop.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if loop.State() != StateDone {
		t.Errorf("State() = %v, want done", loop.State())
	}
	if strings.Contains(out.String(), "Could not establish") {
		t.Errorf("cancellation should not print a lookup error:\n%s", out.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, io.ErrClosedPipe }

func TestLoop_WriteErrorEndsRun(t *testing.T) {
	loop := New(&fakeClient{}, strings.NewReader("London\n"), failingWriter{}, nil)
	if err := loop.Run(context.Background()); err == nil {
		t.Fatal("Run() expected write error, got nil")
	}
	if loop.State() != StateDone {
		t.Errorf("State() = %v, want done", loop.State())
	}
}

func TestState_String(t *testing.T) {
	if StatePrompting.String() != "prompting" || StateDone.String() != "done" || State(9).String() != "unknown" {
		t.Error("unexpected State.String() values")
	}
}
