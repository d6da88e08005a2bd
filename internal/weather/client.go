// Package weather fetches daily forecasts from weatherapi.com and resolves
// the weather-informed best destination recommendation.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const defaultEndpoint = "https://api.weatherapi.com/v1/forecast.json"

const httpTimeout = 15 * time.Second

// forecastDays is the maximum horizon weatherapi.com serves; every request
// asks for the full window and trims locally.
const forecastDays = 14

// Day is one day of forecast trimmed to the fields the recommender reads.
type Day struct {
	Date       string
	TempMax    float64
	TempMin    float64
	Conditions string
	Humidity   float64
	RainChance float64
}

type forecastResponse struct {
	Forecast struct {
		ForecastDay []struct {
			Date string `json:"date"`
			Day  struct {
				MaxTempC    float64 `json:"maxtemp_c"`
				MinTempC    float64 `json:"mintemp_c"`
				AvgHumidity float64 `json:"avghumidity"`
				RainChance  float64 `json:"daily_chance_of_rain"`
				Condition   struct {
					Text string `json:"text"`
				} `json:"condition"`
			} `json:"day"`
		} `json:"forecastday"`
	} `json:"forecast"`
}

// Client queries the weatherapi.com forecast endpoint.
type Client struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(apiKey string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		apiKey:     apiKey,
		endpoint:   defaultEndpoint,
		httpClient: &http.Client{Timeout: httpTimeout},
		log:        log,
	}
}

// WithEndpoint overrides the API endpoint; used by tests.
func (c *Client) WithEndpoint(endpoint string) *Client {
	c.endpoint = endpoint
	return c
}

// Forecast returns the daily forecast for place restricted to the inclusive
// [startDate, endDate] window. Both dates are YYYY-MM-DD; days beyond the
// provider's horizon are simply absent from the result.
func (c *Client) Forecast(ctx context.Context, place, startDate, endDate string) ([]Day, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)
	params.Set("q", place)
	params.Set("days", fmt.Sprint(forecastDays))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("weatherapi: build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("weatherapi: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("weatherapi: unexpected status %d", resp.StatusCode)
	}

	var decoded forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("weatherapi: decode response: %w", err)
	}
	c.log.Debug("forecast fetched", zap.String("place", place), zap.Int("days", len(decoded.Forecast.ForecastDay)))

	var days []Day
	for _, fd := range decoded.Forecast.ForecastDay {
		// Dates are ISO formatted so string comparison is chronological.
		if fd.Date > endDate {
			break
		}
		if fd.Date < startDate {
			continue
		}
		days = append(days, Day{
			Date:       fd.Date,
			TempMax:    fd.Day.MaxTempC,
			TempMin:    fd.Day.MinTempC,
			Conditions: fd.Day.Condition.Text,
			Humidity:   fd.Day.AvgHumidity,
			RainChance: fd.Day.RainChance,
		})
	}
	return days, nil
}
