package models

import (
	"fmt"
	"strings"
)

// Units selects both the units query parameter and the symbols used for display.
type Units string

const (
	UnitsImperial Units = "imperial"
	UnitsMetric   Units = "metric"
)

// ParseUnits accepts "imperial" or "metric", case-insensitive, surrounding space ignored.
func ParseUnits(s string) (Units, error) {
	switch u := Units(strings.ToLower(strings.TrimSpace(s))); u {
	case UnitsImperial, UnitsMetric:
		return u, nil
	}
	return "", fmt.Errorf("invalid units %q", s)
}

// TemperatureSymbol returns °F for imperial and °C for metric.
func (u Units) TemperatureSymbol() string {
	if u == UnitsImperial {
		return "°F"
	}
	return "°C"
}

// SpeedSymbol returns mph for imperial and m/s for metric.
func (u Units) SpeedSymbol() string {
	if u == UnitsImperial {
		return "mph"
	}
	return "m/s"
}

// WeatherResult is the current conditions for one location, in the units it was requested with.
type WeatherResult struct {
	City        string   `json:"city"`
	Country     string   `json:"country,omitempty"`
	Temperature float64  `json:"temperature"`
	FeelsLike   float64  `json:"feelsLike"`
	TempMax     float64  `json:"tempMax"`
	Humidity    float64  `json:"humidity"`
	WindSpeed   float64  `json:"windSpeed"`
	WindDeg     *float64 `json:"windDeg,omitempty"` // nil when the provider omits wind.deg
}
