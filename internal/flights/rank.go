package flights

import "sort"

// maxRankedOffers caps how many offers a search returns after ranking.
const maxRankedOffers = 20

// rankOffers orders offers by bookable seats descending and truncates to the
// first maxRankedOffers. Equal seat counts keep provider order (stable sort).
func rankOffers(offers []Offer) []Offer {
	sort.SliceStable(offers, func(i, j int) bool {
		return offers[i].Seats > offers[j].Seats
	})
	if len(offers) > maxRankedOffers {
		offers = offers[:maxRankedOffers]
	}
	return offers
}
