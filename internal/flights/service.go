package flights

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	"github.com/farewatch/farewatch/internal/amadeus"
	"github.com/farewatch/farewatch/internal/shared"
)

const (
	offersPath      = "/v2/shopping/flight-offers"
	inspirationPath = "/v1/shopping/flight-destinations"

	// maxUpstreamOffers asks the provider for more offers than we return so
	// seat-availability ranking has something to choose from.
	maxUpstreamOffers = 50

	searchCurrency = "USD"
)

// Provider is the slice of the amadeus client the service needs.
type Provider interface {
	Get(ctx context.Context, path string, query url.Values, dest any) error
}

// Service coordinates flight searches against the provider.
type Service struct {
	provider Provider
	logger   *slog.Logger
	clock    func() time.Time
}

// NewService wires a Provider into a search service.
func NewService(provider Provider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		provider: provider,
		logger:   logger,
		clock:    time.Now,
	}
}

// OneWayQuery are the caller parameters for a one-way search.
type OneWayQuery struct {
	Origin        string
	Destination   string
	DepartureDate string
	AirlineCode   string
}

// RoundTripQuery are the caller parameters for a round-trip search.
type RoundTripQuery struct {
	Origin        string
	Destination   string
	DepartureDate string
	ReturnDate    string
	AirlineCode   string
}

// InspirationQuery are the caller parameters for an open-destination search.
type InspirationQuery struct {
	Origin        string
	DepartureDate string
	OneWay        bool
}

// SearchOneWay returns ranked one-way offers. Without a destination the
// search routes to the inspiration endpoint instead and the result is tagged
// accordingly.
func (s *Service) SearchOneWay(ctx context.Context, q OneWayQuery) (*SearchResult, error) {
	if q.Destination == "" {
		return s.SearchInspirations(ctx, InspirationQuery{
			Origin:        q.Origin,
			DepartureDate: q.DepartureDate,
			OneWay:        true,
		})
	}
	if q.Origin == "" || q.DepartureDate == "" {
		return nil, shared.NewValidationError("origin, destination and departureDate are required for one-way search")
	}

	params := offerParams(q.Origin, q.Destination, q.DepartureDate, q.AirlineCode)
	return s.searchOffers(ctx, params)
}

// SearchRoundTrip returns ranked round-trip offers. Without a destination the
// search routes to the inspiration endpoint with the one-way flag unset.
func (s *Service) SearchRoundTrip(ctx context.Context, q RoundTripQuery) (*SearchResult, error) {
	if q.Destination == "" {
		return s.SearchInspirations(ctx, InspirationQuery{
			Origin:        q.Origin,
			DepartureDate: q.DepartureDate,
			OneWay:        false,
		})
	}
	if q.Origin == "" || q.DepartureDate == "" || q.ReturnDate == "" {
		return nil, shared.NewValidationError("origin, destination, departureDate and returnDate are required for round-trip search")
	}

	params := offerParams(q.Origin, q.Destination, q.DepartureDate, q.AirlineCode)
	params.Set("returnDate", q.ReturnDate)
	return s.searchOffers(ctx, params)
}

// SearchInspirations suggests destinations for an origin. The departure date
// defaults to today when omitted.
func (s *Service) SearchInspirations(ctx context.Context, q InspirationQuery) (*SearchResult, error) {
	if q.Origin == "" {
		return nil, shared.NewValidationError("origin is required for flight inspiration search")
	}
	departureDate := q.DepartureDate
	if departureDate == "" {
		departureDate = s.clock().Format("2006-01-02")
	}

	params := url.Values{}
	params.Set("origin", q.Origin)
	params.Set("departureDate", departureDate)
	params.Set("oneWay", strconv.FormatBool(q.OneWay))

	var resp amadeus.DestinationsResponse
	if err := s.provider.Get(ctx, inspirationPath, params, &resp); err != nil {
		return nil, err
	}

	currency := resp.Meta.Currency
	if currency == "" {
		currency = searchCurrency
	}
	inspirations := make([]Inspiration, 0, len(resp.Data))
	for _, raw := range resp.Data {
		inspirations = append(inspirations, transformInspiration(raw, currency))
	}

	s.logger.Debug("inspiration search finished",
		slog.String("origin", q.Origin),
		slog.Int("results", len(inspirations)))
	return &SearchResult{SearchType: SearchTypeInspirations, Inspirations: inspirations}, nil
}

func (s *Service) searchOffers(ctx context.Context, params url.Values) (*SearchResult, error) {
	var resp amadeus.OffersResponse
	if err := s.provider.Get(ctx, offersPath, params, &resp); err != nil {
		return nil, err
	}

	offers := make([]Offer, 0, len(resp.Data))
	for _, raw := range resp.Data {
		offers = append(offers, transformOffer(raw))
	}
	offers = rankOffers(offers)

	s.logger.Debug("offer search finished",
		slog.String("origin", params.Get("originLocationCode")),
		slog.String("destination", params.Get("destinationLocationCode")),
		slog.Int("results", len(offers)))
	return &SearchResult{SearchType: SearchTypeOffers, Offers: offers}, nil
}

func offerParams(origin, destination, departureDate, airlineCode string) url.Values {
	params := url.Values{}
	params.Set("originLocationCode", origin)
	params.Set("destinationLocationCode", destination)
	params.Set("departureDate", departureDate)
	params.Set("adults", "1")
	params.Set("nonStop", "false")
	params.Set("max", strconv.Itoa(maxUpstreamOffers))
	params.Set("currencyCode", searchCurrency)
	if airlineCode != "" {
		params.Set("includedAirlineCodes", airlineCode)
	}
	return params
}
