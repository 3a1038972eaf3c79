package tools

import (
	"context"
	"fmt"
	"strings"

	"haru/app/client/openmeteo"
)

type WeatherTool struct {
	client *openmeteo.Client
}

func (t *WeatherTool) Name() string {
	return "WEATHER"
}

func (t *WeatherTool) Description() string {
	return "- Weather: When the user asks about weather, output [WEATHER:city_name] (e.g. [WEATHER:서울], [WEATHER:Tokyo])"
}

func (t *WeatherTool) UsageRules() string {
	return "- For weather, extract the city name from the user's message."
}

func (t *WeatherTool) Handle(ctx context.Context, arg string, _ *Context) (string, error) {
	city := strings.TrimSpace(arg)
	if city == "" {
		return "", fmt.Errorf("no city given")
	}

	w, err := t.client.Current(ctx, city)
	if err != nil {
		return "", fmt.Errorf("failed to get weather for %q: %w", city, err)
	}

	lines := []string{
		fmt.Sprintf("Weather data for %s:", w.City),
		fmt.Sprintf("- Condition: %s", w.Description),
		fmt.Sprintf("- Temperature: %.1f°C (feels like %.1f°C)", w.Temp, w.FeelsLike),
		fmt.Sprintf("- Humidity: %d%%", w.Humidity),
		fmt.Sprintf("- Wind: %.1f m/s", w.WindSpeed),
		fmt.Sprintf("- UV Index: %.1f", w.UVIndex),
		fmt.Sprintf("- Low/High: %.1f°C / %.1f°C", w.TempMin, w.TempMax),
		fmt.Sprintf("- Rain probability: %d%%", w.RainChance),
	}

	return strings.Join(lines, "\n"), nil
}
