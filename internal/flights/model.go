// Package flights implements flight-offer and inspiration search on top of
// the provider client: parameter construction, response transformation and
// seat-availability ranking.
package flights

import (
	"encoding/json"

	"github.com/farewatch/farewatch/internal/amadeus"
)

// Segment is one flight leg, reflecting provider data with no derived fields.
type Segment struct {
	From          string `json:"from"`
	To            string `json:"to"`
	Airline       string `json:"airline"`
	FlightNumber  string `json:"flightNumber"`
	DepartureTime string `json:"departureTime"`
	ArrivalTime   string `json:"arrivalTime"`
	Duration      string `json:"duration"`
}

// Offer is a priced, bookable itinerary with seat availability. Return is
// empty for one-way offers. Immutable once built from a provider response.
type Offer struct {
	ID                string    `json:"id"`
	Price             string    `json:"price"`
	Currency          string    `json:"currency"`
	Seats             int       `json:"seats"`
	LastTicketingDate string    `json:"lastTicketingDate"`
	Outbound          []Segment `json:"outbound"`
	Return            []Segment `json:"return"`
}

// Inspiration is a destination suggestion, not a bookable offer.
type Inspiration struct {
	Type          string            `json:"type"`
	Origin        string            `json:"origin"`
	Destination   string            `json:"destination"`
	DepartureDate string            `json:"departureDate"`
	ReturnDate    string            `json:"returnDate,omitempty"`
	Price         string            `json:"price"`
	Currency      string            `json:"currency"`
	Links         map[string]string `json:"links,omitempty"`
}

// SearchType tags the two possible outcomes of a flight search.
type SearchType string

const (
	// SearchTypeOffers marks a result carrying ranked bookable offers.
	SearchTypeOffers SearchType = "offers"
	// SearchTypeInspirations marks a result carrying destination suggestions
	// from an open-destination search.
	SearchTypeInspirations SearchType = "inspirations"
)

// SearchResult is the tagged union returned by the search operations.
// Exactly one of Offers or Inspirations is populated, per SearchType.
type SearchResult struct {
	SearchType   SearchType
	Offers       []Offer
	Inspirations []Inspiration
}

// MarshalJSON renders the union as {searchType, results}.
func (r SearchResult) MarshalJSON() ([]byte, error) {
	var results any
	switch r.SearchType {
	case SearchTypeInspirations:
		if r.Inspirations == nil {
			r.Inspirations = []Inspiration{}
		}
		results = r.Inspirations
	default:
		if r.Offers == nil {
			r.Offers = []Offer{}
		}
		results = r.Offers
	}
	return json.Marshal(struct {
		SearchType SearchType `json:"searchType"`
		Results    any        `json:"results"`
	}{SearchType: r.SearchType, Results: results})
}

func transformOffer(raw amadeus.RawOffer) Offer {
	offer := Offer{
		ID:                raw.ID,
		Price:             raw.Price.Total,
		Currency:          raw.Price.Currency,
		Seats:             raw.NumberOfBookableSeats,
		LastTicketingDate: raw.LastTicketingDate,
		Outbound:          []Segment{},
		Return:            []Segment{},
	}
	if len(raw.Itineraries) > 0 {
		offer.Outbound = transformSegments(raw.Itineraries[0])
	}
	if len(raw.Itineraries) > 1 {
		offer.Return = transformSegments(raw.Itineraries[1])
	}
	return offer
}

func transformSegments(itinerary amadeus.RawItinerary) []Segment {
	segments := make([]Segment, 0, len(itinerary.Segments))
	for _, s := range itinerary.Segments {
		segments = append(segments, Segment{
			From:          s.Departure.IataCode,
			To:            s.Arrival.IataCode,
			Airline:       s.CarrierCode,
			FlightNumber:  s.Number,
			DepartureTime: s.Departure.At,
			ArrivalTime:   s.Arrival.At,
			Duration:      s.Duration,
		})
	}
	return segments
}

func transformInspiration(raw amadeus.RawDestination, currency string) Inspiration {
	return Inspiration{
		Type:          raw.Type,
		Origin:        raw.Origin,
		Destination:   raw.Destination,
		DepartureDate: raw.DepartureDate,
		ReturnDate:    raw.ReturnDate,
		Price:         raw.Price.Total,
		Currency:      currency,
		Links:         raw.Links,
	}
}
