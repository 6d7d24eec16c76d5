// Outfitd - Outfit Recommendation and Resilience Core
// Copyright 2026 Outfitd Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/outfitd/outfitd

// Package weather models weather context for recommendations: the
// condition taxonomy, the provider interface, a per-location reading
// cache, and seasonal defaults for when both fail.
package weather

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Condition is the coarse weather condition taxonomy.
type Condition int

const (
	// ConditionSunny is clear sky.
	ConditionSunny Condition = iota
	// ConditionPartlyCloudy is mixed sun and cloud.
	ConditionPartlyCloudy
	// ConditionCloudy is mostly cloud.
	ConditionCloudy
	// ConditionOvercast is full cloud cover.
	ConditionOvercast
	// ConditionRain covers drizzle through heavy rain.
	ConditionRain
	// ConditionSnow covers snow and sleet.
	ConditionSnow
)

// String returns the lowercase condition name.
func (c Condition) String() string {
	switch c {
	case ConditionSunny:
		return "sunny"
	case ConditionPartlyCloudy:
		return "partly-cloudy"
	case ConditionCloudy:
		return "cloudy"
	case ConditionOvercast:
		return "overcast"
	case ConditionRain:
		return "rain"
	case ConditionSnow:
		return "snow"
	default:
		return "unknown"
	}
}

// ParseCondition converts a condition name to a Condition.
func ParseCondition(s string) (Condition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sunny", "clear":
		return ConditionSunny, nil
	case "partly-cloudy", "partly_cloudy":
		return ConditionPartlyCloudy, nil
	case "cloudy":
		return ConditionCloudy, nil
	case "overcast":
		return ConditionOvercast, nil
	case "rain", "drizzle":
		return ConditionRain, nil
	case "snow", "sleet":
		return ConditionSnow, nil
	default:
		return 0, fmt.Errorf("unknown condition %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (c Condition) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Condition) UnmarshalText(text []byte) error {
	parsed, err := ParseCondition(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// IsPrecipitating reports whether the condition involves rain or snow.
func (c Condition) IsPrecipitating() bool {
	return c == ConditionRain || c == ConditionSnow
}

// Context is a weather reading for one location and date.
type Context struct {
	// TemperatureC is the daytime temperature in Celsius.
	TemperatureC float64 `json:"temperature_c"`

	// Condition is the coarse sky condition.
	Condition Condition `json:"condition"`

	// Humidity is relative humidity in percent, 0 if unknown.
	Humidity float64 `json:"humidity,omitempty"`

	// WindKPH is wind speed in km/h, 0 if unknown.
	WindKPH float64 `json:"wind_kph,omitempty"`

	// Location is the location the reading is for.
	Location string `json:"location"`

	// Date is the day the reading covers.
	Date time.Time `json:"date"`
}

// Provider is the external weather collaborator.
type Provider interface {
	// GetWeather returns the reading for a location and date. May fail
	// or time out; accessed only through the resilience layer.
	GetWeather(ctx context.Context, location string, date time.Time) (Context, error)
}

// SeasonalDefault returns a climatological default reading for a
// location and date, used when both the live provider and the cache
// fail. Northern-hemisphere month table.
func SeasonalDefault(location string, date time.Time) Context {
	var tempC float64
	var cond Condition

	switch date.Month() {
	case time.December, time.January, time.February:
		tempC, cond = 8, ConditionCloudy
	case time.March, time.April, time.May:
		tempC, cond = 15, ConditionPartlyCloudy
	case time.June, time.July, time.August:
		tempC, cond = 28, ConditionSunny
	default:
		tempC, cond = 14, ConditionOvercast
	}

	return Context{
		TemperatureC: tempC,
		Condition:    cond,
		Location:     location,
		Date:         date,
	}
}
