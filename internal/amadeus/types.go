package amadeus

import (
	"encoding/json"
	"errors"
)

var errMissingAccessToken = errors.New("token response carried no access_token")

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type errorResponse struct {
	Errors []struct {
		Status int    `json:"status"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// OffersResponse is the raw flight-offers search answer.
type OffersResponse struct {
	Data []RawOffer `json:"data"`
}

// RawOffer mirrors one provider flight offer.
type RawOffer struct {
	ID                    string         `json:"id"`
	NumberOfBookableSeats int            `json:"numberOfBookableSeats"`
	LastTicketingDate     string         `json:"lastTicketingDate"`
	Price                 RawPrice       `json:"price"`
	Itineraries           []RawItinerary `json:"itineraries"`
}

// RawPrice carries the offer total and currency as provider strings.
type RawPrice struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

// RawItinerary is one direction of travel.
type RawItinerary struct {
	Duration string       `json:"duration"`
	Segments []RawSegment `json:"segments"`
}

// RawSegment is a single flight leg.
type RawSegment struct {
	Departure   RawEndpoint `json:"departure"`
	Arrival     RawEndpoint `json:"arrival"`
	CarrierCode string      `json:"carrierCode"`
	Number      string      `json:"number"`
	Duration    string      `json:"duration"`
}

// RawEndpoint is an airport plus local timestamp.
type RawEndpoint struct {
	IataCode string `json:"iataCode"`
	At       string `json:"at"`
}

// DestinationsResponse is the raw flight-inspiration answer.
type DestinationsResponse struct {
	Data []RawDestination `json:"data"`
	Meta struct {
		Currency string `json:"currency"`
	} `json:"meta"`
}

// RawDestination is one suggested destination from an open-origin search.
type RawDestination struct {
	Type          string            `json:"type"`
	Origin        string            `json:"origin"`
	Destination   string            `json:"destination"`
	DepartureDate string            `json:"departureDate"`
	ReturnDate    string            `json:"returnDate"`
	Price         RawPrice          `json:"price"`
	Links         map[string]string `json:"links"`
}

// TrafficResponse is the raw air-traffic analytics answer. Entries stay
// undecoded so the most-traveled endpoint can pass them through untouched
// while the busiest-period endpoint applies per-entry validation.
type TrafficResponse struct {
	Data []json.RawMessage `json:"data"`
}
