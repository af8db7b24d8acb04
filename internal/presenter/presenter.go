// Package presenter renders weather results and lookup failures as console text.
package presenter

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/kjstillabower/weathercheck/internal/client"
	"github.com/kjstillabower/weathercheck/internal/compass"
	"github.com/kjstillabower/weathercheck/internal/models"
)

// Display writes the summary for r, one field per line, with unit symbols for units.
func Display(w io.Writer, r models.WeatherResult, units models.Units) error {
	temp := units.TemperatureSymbol()

	city := "City: " + r.City
	if r.Country != "" {
		city += " (" + r.Country + ")"
	}

	lines := []string{
		city,
		"Temperature: " + formatNumber(r.Temperature) + temp,
		"Feels Like: " + formatNumber(r.FeelsLike) + temp,
		"Max Temperature: " + formatNumber(r.TempMax) + temp,
		"Wind Speed: " + formatNumber(r.WindSpeed) + " " + units.SpeedSymbol(),
		"Humidity: " + formatNumber(r.Humidity) + "%",
		"Wind Direction: " + compass.Resolve(r.WindDeg),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return fmt.Errorf("write weather summary: %w", err)
		}
	}
	return nil
}

// Message returns the single line shown to the user when a lookup fails.
func Message(err error) string {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr):
		return "Error: " + apiErr.Message
	case errors.Is(err, client.ErrFormat):
		return "Error: Invalid weather data format."
	case errors.Is(err, client.ErrServiceUnavailable):
		return "Could not connect to the weather service."
	case errors.Is(err, client.ErrTransport):
		return "Could not establish a connection to the weather service."
	}
	return "Error: " + err.Error()
}

// formatNumber prints the shortest decimal that round-trips: 72, 72.5, 70.05.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
