// Package analytics exposes the provider's air-traffic analytics: busiest
// travel periods for a city and most-traveled destinations from an origin.
package analytics

import (
	"encoding/json"
	"time"
)

// Direction orients a busiest-period query relative to the city.
type Direction string

const (
	// DirectionArriving scores traffic into the city.
	DirectionArriving Direction = "ARRIVING"
	// DirectionDeparting scores traffic out of the city.
	DirectionDeparting Direction = "DEPARTING"
)

// Sort fields the most-traveled endpoint recognizes.
const (
	SortTravelersScore = "analytics.travelers.score"
	SortFlightsScore   = "analytics.flights.score"
)

// PeriodScore is one ranked entry of busiest-period analytics. Score is
// always numeric; entries lacking a numeric score never become a PeriodScore.
type PeriodScore struct {
	Period    string  `json:"period"`
	MonthName string  `json:"monthName"`
	Year      string  `json:"year"`
	Score     float64 `json:"score"`
}

// ResultType tags the possible analytics outcomes.
type ResultType string

const (
	// ResultNoData marks an upstream answer with an empty data array.
	ResultNoData ResultType = "no-data"
	// ResultBusiestPeriods marks score-ranked busiest periods. The results
	// slice may be empty when every upstream entry was invalid; that stays
	// distinguishable from ResultNoData.
	ResultBusiestPeriods ResultType = "busiest-periods-ranked"
	// ResultMostTraveled marks pass-through most-traveled destinations.
	ResultMostTraveled ResultType = "most-traveled-destinations"
)

// Result is the tagged union returned by the analytics operations.
type Result struct {
	Type         ResultType
	Message      string
	Query        any
	Periods      []PeriodScore
	Destinations []json.RawMessage
}

// MarshalJSON renders the union the way callers consume it: no-data carries
// message+query, the ranked variants carry results+query.
func (r Result) MarshalJSON() ([]byte, error) {
	switch r.Type {
	case ResultNoData:
		return json.Marshal(struct {
			Type    ResultType `json:"type"`
			Message string     `json:"message"`
			Query   any        `json:"query"`
		}{r.Type, r.Message, r.Query})
	case ResultMostTraveled:
		results := r.Destinations
		if results == nil {
			results = []json.RawMessage{}
		}
		return json.Marshal(struct {
			Type    ResultType        `json:"type"`
			Results []json.RawMessage `json:"results"`
			Query   any               `json:"query"`
		}{r.Type, results, r.Query})
	default:
		results := r.Periods
		if results == nil {
			results = []PeriodScore{}
		}
		return json.Marshal(struct {
			Type    ResultType    `json:"type"`
			Results []PeriodScore `json:"results"`
			Query   any           `json:"query"`
		}{r.Type, results, r.Query})
	}
}

// monthName resolves a 1-based month number to its English name.
func monthName(month int) (string, bool) {
	if month < 1 || month > 12 {
		return "", false
	}
	return time.Month(month).String(), true
}
