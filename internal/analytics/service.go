package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/farewatch/farewatch/internal/amadeus"
	"github.com/farewatch/farewatch/internal/shared"
)

const (
	busiestPeriodPath = "/v1/travel/analytics/air-traffic/busiest-period"
	mostTraveledPath  = "/v1/travel/analytics/air-traffic/traveled"

	defaultMostTraveledMax = 10
)

// Provider is the slice of the amadeus client the service needs.
type Provider interface {
	Get(ctx context.Context, path string, query url.Values, dest any) error
}

// Service coordinates analytics queries against the provider with a Redis
// response cache in front.
type Service struct {
	provider Provider
	cache    *Cache
	logger   *slog.Logger
}

// NewService wires a Provider with the Cache helper.
func NewService(provider Provider, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{provider: provider, cache: cache, logger: logger}
}

// BusiestPeriodQuery asks for per-month traveler scores of a city in a year.
type BusiestPeriodQuery struct {
	CityCode  string    `json:"cityCode"`
	Period    string    `json:"period"`
	Direction Direction `json:"direction"`
}

// MostTraveledQuery asks for the most traveled destinations from an origin
// city in a month.
type MostTraveledQuery struct {
	OriginCityCode string `json:"originCityCode"`
	Period         string `json:"period"`
	Max            int    `json:"max"`
	Sort           string `json:"sort"`
}

// BusiestPeriod ranks a city's travel months by traveler score, least busy
// first. Upstream entries without a period or a numeric score are dropped.
func (s *Service) BusiestPeriod(ctx context.Context, q BusiestPeriodQuery) (*Result, error) {
	if q.CityCode == "" || q.Period == "" || q.Direction == "" {
		return nil, shared.NewValidationError("cityCode, period and direction are required for busiest-period analytics")
	}
	if q.Direction != DirectionArriving && q.Direction != DirectionDeparting {
		return nil, shared.NewValidationError("direction must be ARRIVING or DEPARTING")
	}

	params := url.Values{}
	params.Set("cityCode", q.CityCode)
	params.Set("period", q.Period)
	params.Set("direction", string(q.Direction))

	resp, err := s.fetchTraffic(ctx, busiestPeriodPath, params,
		cacheKey("busiest", q.CityCode, q.Period, string(q.Direction)))
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return &Result{
			Type: ResultNoData,
			Message: fmt.Sprintf("No busiest period data found for city %s in %s (Direction: %s).",
				q.CityCode, q.Period, q.Direction),
			Query: q,
		}, nil
	}

	periods := make([]PeriodScore, 0, len(resp.Data))
	for _, raw := range resp.Data {
		score, ok := s.parseEntry(raw)
		if !ok {
			continue
		}
		periods = append(periods, score)
	}

	// Least busy first; this dataset is deliberately ranked client-side,
	// unlike most-traveled which trusts provider order.
	sort.SliceStable(periods, func(i, j int) bool {
		return periods[i].Score < periods[j].Score
	})

	return &Result{Type: ResultBusiestPeriods, Periods: periods, Query: q}, nil
}

// MostTraveled returns the provider's destination ranking untouched; the
// provider already sorts by the requested score field.
func (s *Service) MostTraveled(ctx context.Context, q MostTraveledQuery) (*Result, error) {
	if q.OriginCityCode == "" || q.Period == "" {
		return nil, shared.NewValidationError("originCityCode and period are required for most-traveled analytics")
	}
	if q.Max <= 0 {
		q.Max = defaultMostTraveledMax
	}
	if q.Sort == "" {
		q.Sort = SortTravelersScore
	}
	if q.Sort != SortTravelersScore && q.Sort != SortFlightsScore {
		return nil, shared.NewValidationError("sort must be %s or %s", SortTravelersScore, SortFlightsScore)
	}

	params := url.Values{}
	params.Set("originCityCode", q.OriginCityCode)
	params.Set("period", q.Period)
	params.Set("max", strconv.Itoa(q.Max))
	params.Set("sort", q.Sort)

	resp, err := s.fetchTraffic(ctx, mostTraveledPath, params,
		cacheKey("traveled", q.OriginCityCode, q.Period, strconv.Itoa(q.Max), q.Sort))
	if err != nil {
		return nil, err
	}

	if len(resp.Data) == 0 {
		return &Result{
			Type: ResultNoData,
			Message: fmt.Sprintf("No most traveled destination data found for origin %s in %s.",
				q.OriginCityCode, q.Period),
			Query: q,
		}, nil
	}

	return &Result{Type: ResultMostTraveled, Destinations: resp.Data, Query: q}, nil
}

func (s *Service) fetchTraffic(ctx context.Context, path string, params url.Values, key string) (amadeus.TrafficResponse, error) {
	var resp amadeus.TrafficResponse
	err := s.cache.FetchJSON(ctx, key, &resp, func(ctx context.Context) (interface{}, error) {
		var fresh amadeus.TrafficResponse
		if err := s.provider.Get(ctx, path, params, &fresh); err != nil {
			return nil, err
		}
		return fresh, nil
	})
	return resp, err
}

// trafficEntry is the slice of a busiest-period record we validate. The
// score stays raw so a non-numeric value can be detected and the entry
// dropped rather than failing the whole call.
type trafficEntry struct {
	Period    string `json:"period"`
	Analytics struct {
		Travelers struct {
			Score json.RawMessage `json:"score"`
		} `json:"travelers"`
	} `json:"analytics"`
}

// parseEntry validates one raw busiest-period record. Records missing a
// period or carrying a non-numeric traveler score are dropped and logged,
// never defaulted.
func (s *Service) parseEntry(raw json.RawMessage) (PeriodScore, bool) {
	var entry trafficEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		s.logger.Warn("skipping malformed busiest-period entry", slog.Any("error", err))
		return PeriodScore{}, false
	}
	if entry.Period == "" {
		s.logger.Warn("skipping busiest-period entry without period")
		return PeriodScore{}, false
	}
	// json.Unmarshal treats a JSON null as a no-op on the target, which
	// would silently default the score to 0; null is non-numeric here.
	var score float64
	rawScore := string(entry.Analytics.Travelers.Score)
	if rawScore == "" || rawScore == "null" ||
		json.Unmarshal(entry.Analytics.Travelers.Score, &score) != nil {
		s.logger.Warn("skipping busiest-period entry with non-numeric score",
			slog.String("period", entry.Period))
		return PeriodScore{}, false
	}

	year, month, ok := splitPeriod(entry.Period)
	if !ok {
		s.logger.Warn("skipping busiest-period entry with malformed period",
			slog.String("period", entry.Period))
		return PeriodScore{}, false
	}
	name, ok := monthName(month)
	if !ok {
		s.logger.Warn("skipping busiest-period entry with out-of-range month",
			slog.String("period", entry.Period))
		return PeriodScore{}, false
	}

	return PeriodScore{
		Period:    entry.Period,
		MonthName: name,
		Year:      year,
		Score:     score,
	}, true
}

// splitPeriod breaks "YYYY-MM" into its year and month parts.
func splitPeriod(period string) (string, int, bool) {
	year, monthPart, found := strings.Cut(period, "-")
	if !found || year == "" {
		return "", 0, false
	}
	month, err := strconv.Atoi(monthPart)
	if err != nil {
		return "", 0, false
	}
	return year, month, true
}
