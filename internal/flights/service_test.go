package flights

import (
	"context"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farewatch/farewatch/internal/amadeus"
	"github.com/farewatch/farewatch/internal/shared"
)

type mockProvider struct {
	calls      []providerCall
	offers     []amadeus.RawOffer
	inspire    []amadeus.RawDestination
	currency   string
	getErr     error
	inspireErr error
}

type providerCall struct {
	path  string
	query url.Values
}

func (m *mockProvider) Get(ctx context.Context, path string, query url.Values, dest any) error {
	m.calls = append(m.calls, providerCall{path: path, query: query})
	switch path {
	case offersPath:
		if m.getErr != nil {
			return m.getErr
		}
		resp := dest.(*amadeus.OffersResponse)
		resp.Data = m.offers
	case inspirationPath:
		if m.inspireErr != nil {
			return m.inspireErr
		}
		resp := dest.(*amadeus.DestinationsResponse)
		resp.Data = m.inspire
		resp.Meta.Currency = m.currency
	}
	return nil
}

func rawOffer(id string, seats int) amadeus.RawOffer {
	return amadeus.RawOffer{
		ID:                    id,
		NumberOfBookableSeats: seats,
		LastTicketingDate:     "2026-09-01",
		Price:                 amadeus.RawPrice{Total: "142.50", Currency: "USD"},
		Itineraries: []amadeus.RawItinerary{{
			Duration: "PT2H45M",
			Segments: []amadeus.RawSegment{{
				Departure:   amadeus.RawEndpoint{IataCode: "BLR", At: "2026-09-02T06:10:00"},
				Arrival:     amadeus.RawEndpoint{IataCode: "GOI", At: "2026-09-02T07:20:00"},
				CarrierCode: "AI",
				Number:      "501",
				Duration:    "PT1H10M",
			}},
		}},
	}
}

func TestSearchOneWayBuildsProviderQuery(t *testing.T) {
	provider := &mockProvider{offers: []amadeus.RawOffer{rawOffer("1", 5)}}
	svc := NewService(provider, nil)

	result, err := svc.SearchOneWay(context.Background(), OneWayQuery{
		Origin:        "BLR",
		Destination:   "GOI",
		DepartureDate: "2026-09-02",
		AirlineCode:   "AI",
	})
	require.NoError(t, err)
	require.Equal(t, SearchTypeOffers, result.SearchType)

	require.Len(t, provider.calls, 1)
	query := provider.calls[0].query
	assert.Equal(t, "BLR", query.Get("originLocationCode"))
	assert.Equal(t, "GOI", query.Get("destinationLocationCode"))
	assert.Equal(t, "2026-09-02", query.Get("departureDate"))
	assert.Equal(t, "1", query.Get("adults"))
	assert.Equal(t, "false", query.Get("nonStop"))
	assert.Equal(t, "50", query.Get("max"))
	assert.Equal(t, "USD", query.Get("currencyCode"))
	assert.Equal(t, "AI", query.Get("includedAirlineCodes"))
	assert.Empty(t, query.Get("returnDate"))

	require.Len(t, result.Offers, 1)
	offer := result.Offers[0]
	assert.Equal(t, "142.50", offer.Price)
	assert.Equal(t, 5, offer.Seats)
	require.Len(t, offer.Outbound, 1)
	assert.Equal(t, "BLR", offer.Outbound[0].From)
	assert.Equal(t, "AI", offer.Outbound[0].Airline)
	assert.Equal(t, "501", offer.Outbound[0].FlightNumber)
	assert.Empty(t, offer.Return)
}

func TestSearchOneWayValidatesRequiredFields(t *testing.T) {
	svc := NewService(&mockProvider{}, nil)

	_, err := svc.SearchOneWay(context.Background(), OneWayQuery{Destination: "GOI"})
	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Msg, "required for one-way search")
}

func TestSearchOneWayWithoutDestinationRoutesToInspirations(t *testing.T) {
	provider := &mockProvider{
		inspire: []amadeus.RawDestination{{
			Type:          "flight-destination",
			Origin:        "BLR",
			Destination:   "DXB",
			DepartureDate: "2026-09-02",
			Price:         amadeus.RawPrice{Total: "230.00"},
		}},
		currency: "EUR",
	}
	svc := NewService(provider, nil)

	result, err := svc.SearchOneWay(context.Background(), OneWayQuery{
		Origin:        "BLR",
		DepartureDate: "2026-09-02",
	})
	require.NoError(t, err)
	assert.Equal(t, SearchTypeInspirations, result.SearchType)
	assert.Empty(t, result.Offers)

	require.Len(t, provider.calls, 1)
	assert.Equal(t, inspirationPath, provider.calls[0].path)
	assert.Equal(t, "true", provider.calls[0].query.Get("oneWay"))

	require.Len(t, result.Inspirations, 1)
	assert.Equal(t, "DXB", result.Inspirations[0].Destination)
	assert.Equal(t, "EUR", result.Inspirations[0].Currency)
}

func TestSearchRoundTripRequiresReturnDate(t *testing.T) {
	svc := NewService(&mockProvider{}, nil)

	_, err := svc.SearchRoundTrip(context.Background(), RoundTripQuery{
		Origin:        "BLR",
		Destination:   "GOI",
		DepartureDate: "2026-09-02",
	})
	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Msg, "required for round-trip search")
}

func TestSearchRoundTripSetsReturnDateAndSplitsItineraries(t *testing.T) {
	offer := rawOffer("9", 3)
	offer.Itineraries = append(offer.Itineraries, amadeus.RawItinerary{
		Segments: []amadeus.RawSegment{{
			Departure:   amadeus.RawEndpoint{IataCode: "GOI", At: "2026-09-05T18:00:00"},
			Arrival:     amadeus.RawEndpoint{IataCode: "BLR", At: "2026-09-05T19:10:00"},
			CarrierCode: "AI",
			Number:      "502",
		}},
	})
	provider := &mockProvider{offers: []amadeus.RawOffer{offer}}
	svc := NewService(provider, nil)

	result, err := svc.SearchRoundTrip(context.Background(), RoundTripQuery{
		Origin:        "BLR",
		Destination:   "GOI",
		DepartureDate: "2026-09-02",
		ReturnDate:    "2026-09-05",
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-09-05", provider.calls[0].query.Get("returnDate"))
	require.Len(t, result.Offers, 1)
	require.Len(t, result.Offers[0].Return, 1)
	assert.Equal(t, "GOI", result.Offers[0].Return[0].From)
}

func TestSearchRoundTripWithoutDestinationRoutesToInspirations(t *testing.T) {
	provider := &mockProvider{}
	svc := NewService(provider, nil)

	result, err := svc.SearchRoundTrip(context.Background(), RoundTripQuery{
		Origin:        "BLR",
		DepartureDate: "2026-09-02",
	})
	require.NoError(t, err)
	assert.Equal(t, SearchTypeInspirations, result.SearchType)
	assert.Equal(t, "false", provider.calls[0].query.Get("oneWay"))
}

func TestSearchInspirationsRequiresOrigin(t *testing.T) {
	svc := NewService(&mockProvider{}, nil)

	_, err := svc.SearchInspirations(context.Background(), InspirationQuery{OneWay: true})
	var ve *shared.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestSearchInspirationsDefaultsDepartureDateToToday(t *testing.T) {
	provider := &mockProvider{}
	svc := NewService(provider, nil)
	svc.clock = func() time.Time {
		return time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	}

	_, err := svc.SearchInspirations(context.Background(), InspirationQuery{Origin: "BLR", OneWay: true})
	require.NoError(t, err)
	assert.Equal(t, "2026-08-28", provider.calls[0].query.Get("departureDate"))
}

func TestSearchInspirationsCurrencyFallsBackToUSD(t *testing.T) {
	provider := &mockProvider{
		inspire: []amadeus.RawDestination{{Origin: "BLR", Destination: "HKT"}},
	}
	svc := NewService(provider, nil)

	result, err := svc.SearchInspirations(context.Background(), InspirationQuery{
		Origin:        "BLR",
		DepartureDate: "2026-09-02",
		OneWay:        true,
	})
	require.NoError(t, err)
	require.Len(t, result.Inspirations, 1)
	assert.Equal(t, "USD", result.Inspirations[0].Currency)
}

func TestSearchOffersPropagatesProviderError(t *testing.T) {
	provider := &mockProvider{getErr: &shared.ProviderError{StatusCode: 400, Detail: "NO FLIGHT FOUND"}}
	svc := NewService(provider, nil)

	_, err := svc.SearchOneWay(context.Background(), OneWayQuery{
		Origin:        "BLR",
		Destination:   "GOI",
		DepartureDate: "2026-09-02",
	})
	var pe *shared.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 400, pe.StatusCode)
}

func TestSearchOffersRanksBySeatsAndTruncates(t *testing.T) {
	var raws []amadeus.RawOffer
	for i := 0; i < 30; i++ {
		raws = append(raws, rawOffer(strconv.Itoa(i), i%11))
	}
	provider := &mockProvider{offers: raws}
	svc := NewService(provider, nil)

	result, err := svc.SearchOneWay(context.Background(), OneWayQuery{
		Origin:        "BLR",
		Destination:   "GOI",
		DepartureDate: "2026-09-02",
	})
	require.NoError(t, err)
	require.Len(t, result.Offers, maxRankedOffers)
	for i := 1; i < len(result.Offers); i++ {
		assert.GreaterOrEqual(t, result.Offers[i-1].Seats, result.Offers[i].Seats)
	}
	// The first element carries the maximum seat count of the whole input.
	assert.Equal(t, 10, result.Offers[0].Seats)
}
