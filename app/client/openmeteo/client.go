// Package openmeteo fetches current weather through the Open-Meteo
// geocoding + forecast APIs.
package openmeteo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/samber/do"
)

const (
	defaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"
	defaultForecastURL  = "https://api.open-meteo.com/v1/forecast"
)

// Open-Meteo geocoding does not resolve Korean city names; map the common
// ones to their English spelling before querying.
var cityNames = map[string]string{
	"서울": "Seoul",
	"부산": "Busan",
	"인천": "Incheon",
	"대구": "Daegu",
	"대전": "Daejeon",
	"광주": "Gwangju",
	"울산": "Ulsan",
	"세종": "Sejong",
	"수원": "Suwon",
	"성남": "Seongnam",
	"창원": "Changwon",
	"청주": "Cheongju",
	"전주": "Jeonju",
	"천안": "Cheonan",
	"제주": "Jeju",
	"포항": "Pohang",
	"춘천": "Chuncheon",
	"여수": "Yeosu",
	"경주": "Gyeongju",
	"강릉": "Gangneung",
	"속초": "Sokcho",
}

// WMO weather interpretation codes.
var wmoCodes = map[int]string{
	0:  "맑음 ☀️",
	1:  "대체로 맑음 🌤️",
	2:  "구름 조금 ⛅",
	3:  "흐림 ☁️",
	45: "안개 🌫️",
	48: "안개 🌫️",
	51: "약한 이슬비 🌦️",
	53: "이슬비 🌦️",
	55: "강한 이슬비 🌧️",
	61: "약한 비 🌦️",
	63: "비 🌧️",
	65: "강한 비 🌧️",
	71: "약한 눈 🌨️",
	73: "눈 ❄️",
	75: "강한 눈 ❄️",
	77: "싸라기눈 ❄️",
	80: "약한 소나기 🌦️",
	81: "소나기 🌧️",
	82: "강한 소나기 🌧️",
	85: "약한 눈보라 🌨️",
	86: "강한 눈보라 ❄️",
	95: "천둥번개 ⛈️",
	96: "우박 동반 천둥번개 ⛈️",
	99: "강한 우박 동반 천둥번개 ⛈️",
}

type Weather struct {
	City        string
	Description string
	Temp        float64
	FeelsLike   float64
	Humidity    int
	WindSpeed   float64
	TempMin     float64
	TempMax     float64
	UVIndex     float64
	RainChance  int
}

type Client struct {
	httpClient   *http.Client
	geocodingURL string
	forecastURL  string
}

func NewClient(_ *do.Injector) (*Client, error) {
	return &Client{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		geocodingURL: defaultGeocodingURL,
		forecastURL:  defaultForecastURL,
	}, nil
}

func (c *Client) Current(ctx context.Context, city string) (*Weather, error) {
	lat, lon, name, err := c.geocode(ctx, city)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%f", lat))
	params.Set("longitude", fmt.Sprintf("%f", lon))
	params.Set("current", "temperature_2m,relative_humidity_2m,apparent_temperature,weather_code,wind_speed_10m")
	params.Set("daily", "temperature_2m_max,temperature_2m_min,uv_index_max,precipitation_probability_max")
	params.Set("timezone", "auto")
	params.Set("forecast_days", "1")

	var payload struct {
		Current struct {
			Temperature float64 `json:"temperature_2m"`
			Humidity    int     `json:"relative_humidity_2m"`
			FeelsLike   float64 `json:"apparent_temperature"`
			WeatherCode int     `json:"weather_code"`
			WindSpeed   float64 `json:"wind_speed_10m"`
		} `json:"current"`
		Daily struct {
			TempMax    []float64 `json:"temperature_2m_max"`
			TempMin    []float64 `json:"temperature_2m_min"`
			UVIndexMax []float64 `json:"uv_index_max"`
			RainChance []int     `json:"precipitation_probability_max"`
		} `json:"daily"`
	}

	if err = c.getJSON(ctx, c.forecastURL+"?"+params.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}

	description, ok := wmoCodes[payload.Current.WeatherCode]
	if !ok {
		description = fmt.Sprintf("알 수 없음 (code %d)", payload.Current.WeatherCode)
	}

	w := &Weather{
		City:        name,
		Description: description,
		Temp:        payload.Current.Temperature,
		FeelsLike:   payload.Current.FeelsLike,
		Humidity:    payload.Current.Humidity,
		WindSpeed:   payload.Current.WindSpeed,
	}

	if len(payload.Daily.TempMax) > 0 {
		w.TempMax = payload.Daily.TempMax[0]
	}
	if len(payload.Daily.TempMin) > 0 {
		w.TempMin = payload.Daily.TempMin[0]
	}
	if len(payload.Daily.UVIndexMax) > 0 {
		w.UVIndex = payload.Daily.UVIndexMax[0]
	}
	if len(payload.Daily.RainChance) > 0 {
		w.RainChance = payload.Daily.RainChance[0]
	}

	return w, nil
}

func (c *Client) geocode(ctx context.Context, city string) (float64, float64, string, error) {
	query := city
	if mapped, ok := cityNames[city]; ok {
		query = mapped
	}

	params := url.Values{}
	params.Set("name", query)
	params.Set("count", "1")
	params.Set("language", "ko")

	var payload struct {
		Results []struct {
			Name      string  `json:"name"`
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"results"`
	}

	if err := c.getJSON(ctx, c.geocodingURL+"?"+params.Encode(), &payload); err != nil {
		return 0, 0, "", fmt.Errorf("failed to geocode %q: %w", city, err)
	}

	if len(payload.Results) == 0 {
		return 0, 0, "", fmt.Errorf("city %q not found", city)
	}

	r := payload.Results[0]
	name := r.Name
	if name == "" {
		name = city
	}

	return r.Latitude, r.Longitude, name, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
