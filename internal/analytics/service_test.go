package analytics

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farewatch/farewatch/internal/amadeus"
	"github.com/farewatch/farewatch/internal/shared"
)

type mockProvider struct {
	calls   int
	lastURL url.Values
	data    []string
	err     error
}

func (m *mockProvider) Get(ctx context.Context, path string, query url.Values, dest any) error {
	m.calls++
	m.lastURL = query
	if m.err != nil {
		return m.err
	}
	resp := dest.(*amadeus.TrafficResponse)
	resp.Data = nil
	for _, entry := range m.data {
		resp.Data = append(resp.Data, json.RawMessage(entry))
	}
	return nil
}

func newTestService(t *testing.T, provider Provider) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewService(provider, NewCache(client, time.Minute), nil)
}

func TestBusiestPeriodRanksAscendingByScore(t *testing.T) {
	provider := &mockProvider{data: []string{
		`{"type":"air-traffic","period":"2024-07","analytics":{"travelers":{"score":80}}}`,
		`{"type":"air-traffic","period":"2024-01","analytics":{"travelers":{"score":25}}}`,
		`{"type":"air-traffic","period":"2024-12","analytics":{"travelers":{"score":40}}}`,
	}}
	svc := newTestService(t, provider)

	result, err := svc.BusiestPeriod(context.Background(), BusiestPeriodQuery{
		CityCode:  "MAD",
		Period:    "2024",
		Direction: DirectionArriving,
	})
	require.NoError(t, err)
	require.Equal(t, ResultBusiestPeriods, result.Type)
	require.Len(t, result.Periods, 3)

	assert.Equal(t, "2024-01", result.Periods[0].Period)
	assert.Equal(t, "January", result.Periods[0].MonthName)
	assert.Equal(t, "2024", result.Periods[0].Year)
	for i := 1; i < len(result.Periods); i++ {
		assert.LessOrEqual(t, result.Periods[i-1].Score, result.Periods[i].Score)
	}

	assert.Equal(t, "MAD", provider.lastURL.Get("cityCode"))
	assert.Equal(t, "ARRIVING", provider.lastURL.Get("direction"))
}

func TestBusiestPeriodDropsNonNumericScores(t *testing.T) {
	provider := &mockProvider{data: []string{
		`{"period":"2024-01","analytics":{"travelers":{"score":"x"}}}`,
		`{"period":"2024-02","analytics":{"travelers":{"score":40}}}`,
	}}
	svc := newTestService(t, provider)

	result, err := svc.BusiestPeriod(context.Background(), BusiestPeriodQuery{
		CityCode:  "MAD",
		Period:    "2024",
		Direction: DirectionDeparting,
	})
	require.NoError(t, err)
	require.Len(t, result.Periods, 1)
	assert.Equal(t, "2024-02", result.Periods[0].Period)
	assert.Equal(t, float64(40), result.Periods[0].Score)
}

func TestBusiestPeriodDropsEntriesMissingPeriodOrScore(t *testing.T) {
	provider := &mockProvider{data: []string{
		`{"analytics":{"travelers":{"score":12}}}`,
		`{"period":"2024-03"}`,
		`{"period":"2024-04","analytics":{"travelers":{"score":null}}}`,
	}}
	svc := newTestService(t, provider)

	result, err := svc.BusiestPeriod(context.Background(), BusiestPeriodQuery{
		CityCode:  "MAD",
		Period:    "2024",
		Direction: DirectionArriving,
	})
	require.NoError(t, err)

	// All entries invalid: still the ranked tag with empty results, which
	// stays distinguishable from the upstream-empty no-data case.
	assert.Equal(t, ResultBusiestPeriods, result.Type)
	assert.Empty(t, result.Periods)
}

func TestBusiestPeriodEmptyUpstreamYieldsNoData(t *testing.T) {
	svc := newTestService(t, &mockProvider{})

	result, err := svc.BusiestPeriod(context.Background(), BusiestPeriodQuery{
		CityCode:  "MAD",
		Period:    "2024",
		Direction: DirectionArriving,
	})
	require.NoError(t, err)
	assert.Equal(t, ResultNoData, result.Type)
	assert.Contains(t, result.Message, "MAD")
}

func TestBusiestPeriodValidatesDirection(t *testing.T) {
	svc := newTestService(t, &mockProvider{})

	_, err := svc.BusiestPeriod(context.Background(), BusiestPeriodQuery{
		CityCode:  "MAD",
		Period:    "2024",
		Direction: "SIDEWAYS",
	})
	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestBusiestPeriodCachesUpstreamResponse(t *testing.T) {
	provider := &mockProvider{data: []string{
		`{"period":"2024-02","analytics":{"travelers":{"score":40}}}`,
	}}
	svc := newTestService(t, provider)

	query := BusiestPeriodQuery{CityCode: "MAD", Period: "2024", Direction: DirectionArriving}
	_, err := svc.BusiestPeriod(context.Background(), query)
	require.NoError(t, err)
	_, err = svc.BusiestPeriod(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, 1, provider.calls)
}

func TestBusiestPeriodProviderErrorNotCached(t *testing.T) {
	provider := &mockProvider{err: &shared.ProviderError{StatusCode: 500, Detail: "boom"}}
	svc := newTestService(t, provider)

	query := BusiestPeriodQuery{CityCode: "MAD", Period: "2024", Direction: DirectionArriving}
	_, err := svc.BusiestPeriod(context.Background(), query)
	require.Error(t, err)

	provider.err = nil
	provider.data = []string{`{"period":"2024-02","analytics":{"travelers":{"score":40}}}`}
	result, err := svc.BusiestPeriod(context.Background(), query)
	require.NoError(t, err)
	assert.Len(t, result.Periods, 1)
	assert.Equal(t, 2, provider.calls)
}

func TestMostTraveledPassesResultsThrough(t *testing.T) {
	provider := &mockProvider{data: []string{
		`{"destination":"PAR","analytics":{"travelers":{"score":74}}}`,
		`{"destination":"BCN","analytics":{"travelers":{"score":61}}}`,
	}}
	svc := newTestService(t, provider)

	result, err := svc.MostTraveled(context.Background(), MostTraveledQuery{
		OriginCityCode: "MAD",
		Period:         "2024-01",
		Max:            5,
		Sort:           SortTravelersScore,
	})
	require.NoError(t, err)
	require.Equal(t, ResultMostTraveled, result.Type)
	require.Len(t, result.Destinations, 2)

	// Upstream order and payload preserved byte for byte.
	assert.JSONEq(t, `{"destination":"PAR","analytics":{"travelers":{"score":74}}}`, string(result.Destinations[0]))
	assert.Equal(t, "5", provider.lastURL.Get("max"))
	assert.Equal(t, SortTravelersScore, provider.lastURL.Get("sort"))
}

func TestMostTraveledDefaultsMaxAndSort(t *testing.T) {
	provider := &mockProvider{data: []string{`{"destination":"PAR"}`}}
	svc := newTestService(t, provider)

	_, err := svc.MostTraveled(context.Background(), MostTraveledQuery{
		OriginCityCode: "MAD",
		Period:         "2024-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "10", provider.lastURL.Get("max"))
	assert.Equal(t, SortTravelersScore, provider.lastURL.Get("sort"))
}

func TestMostTraveledRejectsUnknownSort(t *testing.T) {
	svc := newTestService(t, &mockProvider{})

	_, err := svc.MostTraveled(context.Background(), MostTraveledQuery{
		OriginCityCode: "MAD",
		Period:         "2024-01",
		Sort:           "analytics.price.score",
	})
	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestMostTraveledEmptyUpstreamYieldsNoData(t *testing.T) {
	svc := newTestService(t, &mockProvider{})

	result, err := svc.MostTraveled(context.Background(), MostTraveledQuery{
		OriginCityCode: "MAD",
		Period:         "2024-01",
	})
	require.NoError(t, err)
	assert.Equal(t, ResultNoData, result.Type)
}

func TestResultJSONShapes(t *testing.T) {
	ranked := Result{
		Type:    ResultBusiestPeriods,
		Periods: []PeriodScore{{Period: "2024-02", MonthName: "February", Year: "2024", Score: 40}},
		Query:   BusiestPeriodQuery{CityCode: "MAD", Period: "2024", Direction: DirectionArriving},
	}
	raw, err := json.Marshal(ranked)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"type":"busiest-periods-ranked",
		"results":[{"period":"2024-02","monthName":"February","year":"2024","score":40}],
		"query":{"cityCode":"MAD","period":"2024","direction":"ARRIVING"}
	}`, string(raw))

	noData := Result{Type: ResultNoData, Message: "nothing", Query: map[string]string{"cityCode": "MAD"}}
	raw, err = json.Marshal(noData)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"no-data","message":"nothing","query":{"cityCode":"MAD"}}`, string(raw))
}
