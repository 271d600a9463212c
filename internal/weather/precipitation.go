// Package weather fetches daily precipitation from the Open-Meteo archive to
// put water extent changes in context.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/forest-guardian/lakewatch/internal/cache"
	"github.com/forest-guardian/lakewatch/internal/utils"
	"github.com/sirupsen/logrus"
)

const DefaultBaseURL = "https://archive-api.open-meteo.com/v1/archive"

// WetDayMm is the daily total from which a day counts as wet.
const WetDayMm = 1.0

type DailyData struct {
	Time          []string   `json:"time"`
	Precipitation []*float64 `json:"precipitation_sum"`
}

type Response struct {
	Daily DailyData `json:"daily"`
}

// Series maps days to precipitation in millimetres.
type Series map[time.Time]float64

type Client struct {
	BaseURL    string
	HTTP       *http.Client
	Retries    int
	RetryDelay time.Duration
	Cache      cache.Service[Series]
	Log        logrus.FieldLogger
}

func NewClient(baseURL string, log logrus.FieldLogger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    baseURL,
		HTTP:       http.DefaultClient,
		Retries:    3,
		RetryDelay: 10 * time.Second,
		Log:        log,
	}
}

// FetchPrecipitation returns daily totals for [start, end). Days the archive
// reports without a value are left out.
func (c *Client) FetchPrecipitation(ctx context.Context, latitude, longitude float64, start, end time.Time) (Series, error) {
	last := end.AddDate(0, 0, -1)
	key := cache.Key(latitude, longitude, start.Format(time.DateOnly), last.Format(time.DateOnly))
	if c.Cache != nil {
		if cached, ok := c.Cache.Get(key); ok {
			return cached, nil
		}
	}

	query := url.Values{}
	query.Set("latitude", fmt.Sprintf("%f", latitude))
	query.Set("longitude", fmt.Sprintf("%f", longitude))
	query.Set("start_date", start.Format(time.DateOnly))
	query.Set("end_date", last.Format(time.DateOnly))
	query.Set("daily", "precipitation_sum")
	query.Set("timezone", "UTC")

	var response Response
	if err := c.get(ctx, c.BaseURL+"?"+query.Encode(), &response); err != nil {
		return nil, err
	}

	series := Series{}
	for i, day := range response.Daily.Time {
		date, err := time.Parse(time.DateOnly, day)
		if err != nil {
			return nil, fmt.Errorf("failed to parse date: %w", err)
		}
		if i < len(response.Daily.Precipitation) && response.Daily.Precipitation[i] != nil {
			series[date] = *response.Daily.Precipitation[i]
		}
	}

	if c.Cache != nil {
		if err := c.Cache.Set(key, series); err != nil {
			c.Log.WithError(err).Warn("failed to cache precipitation")
		}
	}
	return series, nil
}

func (c *Client) get(ctx context.Context, target string, out any) error {
	retries := max(c.Retries, 1)
	for attempt := 1; ; attempt++ {
		err := c.getOnce(ctx, target, out)
		if err == nil {
			return nil
		}
		if attempt >= retries {
			return fmt.Errorf("failed to retrieve precipitation after %d attempts: %w", attempt, err)
		}
		c.Log.WithError(err).WithField("attempt", attempt).Warn("precipitation request failed, retrying")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.RetryDelay):
		}
	}
}

func (c *Client) getOnce(ctx context.Context, target string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Summary totals a series.
type Summary struct {
	TotalMm float64
	WetDays int
	Days    int
}

// Summarize adds the days in date order so equal series give bit-identical totals.
func Summarize(s Series) Summary {
	var sum Summary
	for _, day := range utils.GetSortedKeys(s, true) {
		mm := s[day]
		sum.TotalMm += mm
		sum.Days++
		if mm >= WetDayMm {
			sum.WetDays++
		}
	}
	return sum
}
