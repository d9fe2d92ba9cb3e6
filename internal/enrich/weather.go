package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hyperjump/omoide/internal/models"
	"github.com/hyperjump/omoide/internal/privacy"
	"github.com/hyperjump/omoide/pkg/utils"
)

// Outdoor-comfort blend weights.
const (
	comfortTempWeight      = 0.35
	comfortHumidityWeight  = 0.20
	comfortWindWeight      = 0.15
	comfortConditionWeight = 0.30
)

// WeatherClient fetches current conditions from an OpenWeather-style API.
type WeatherClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewWeatherClient creates a weather client with the given call timeout.
func NewWeatherClient(baseURL, apiKey string, timeout time.Duration) *WeatherClient {
	return &WeatherClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type weatherResponse struct {
	Weather []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Main struct {
		Temp     float64  `json:"temp"`
		Humidity *float64 `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
}

// Fetch retrieves the current weather for a location. Coordinates are
// coarsened to 0.1 degree before the request is built; the upstream never
// sees finer precision.
func (c *WeatherClient) Fetch(ctx context.Context, lat, lon float64) (*models.WeatherSnapshot, error) {
	coarseLat, coarseLon := privacy.Coarsen(lat, lon)

	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(coarseLat, 'f', 1, 64))
	params.Set("lon", strconv.FormatFloat(coarseLon, 'f', 1, 64))
	params.Set("units", "metric")
	if c.apiKey != "" {
		params.Set("appid", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport errors quote the request URL, api key included; the
		// error value must be clean before anyone can log it.
		return nil, fmt.Errorf("request failed: %s", privacy.SanitizeText(err.Error()))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var out weatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	condition := "unknown"
	if len(out.Weather) > 0 && out.Weather[0].Main != "" {
		condition = strings.ToLower(out.Weather[0].Main)
	}
	return &models.WeatherSnapshot{
		Condition:      condition,
		TemperatureC:   out.Main.Temp,
		Humidity:       out.Main.Humidity,
		WindSpeedMS:    out.Wind.Speed,
		OutdoorComfort: ComfortScore(out.Main.Temp, out.Main.Humidity, out.Wind.Speed, condition),
	}, nil
}

// ComfortScore blends temperature, humidity, wind, and condition into a
// single [0,1] outdoor-comfort value, rounded to 2 decimals. Missing
// humidity or wind readings fall back to mild assumptions (45%, 3 m/s).
func ComfortScore(tempC float64, humidity, windMS *float64, condition string) float64 {
	tempScore := utils.TriangularScore(tempC, -2, 18, 24, 40)

	h := 45.0
	if humidity != nil {
		h = *humidity
	}
	humidityScore := utils.TriangularScore(h, 0, 30, 60, 100)

	w := 3.0
	if windMS != nil {
		w = *windMS
	}
	windScore := 1 - w/15
	windScore = utils.Clamp01(windScore)

	score := comfortTempWeight*tempScore +
		comfortHumidityWeight*humidityScore +
		comfortWindWeight*windScore +
		comfortConditionWeight*ConditionScore(condition)
	return utils.Round2(utils.Clamp01(score))
}

// ConditionScore maps a condition label to [0,1] by keyword. Unknown
// conditions get a neutral 0.7.
func ConditionScore(condition string) float64 {
	c := strings.ToLower(condition)
	switch {
	case strings.Contains(c, "clear"), strings.Contains(c, "sunny"):
		return 1.0
	case strings.Contains(c, "cloud"):
		return 0.8
	case strings.Contains(c, "mist"), strings.Contains(c, "fog"), strings.Contains(c, "haze"):
		return 0.6
	case strings.Contains(c, "drizzle"), strings.Contains(c, "rain"):
		return 0.3
	case strings.Contains(c, "snow"):
		return 0.4
	case strings.Contains(c, "storm"), strings.Contains(c, "thunder"):
		return 0.1
	default:
		return 0.7
	}
}
