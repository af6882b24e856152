package flights

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRankOffersOrdersSeatsDescending(t *testing.T) {
	offers := []Offer{
		{ID: "a", Seats: 2},
		{ID: "b", Seats: 9},
		{ID: "c", Seats: 0},
		{ID: "d", Seats: 9},
	}

	ranked := rankOffers(offers)

	assert.Equal(t, []string{"b", "d", "a", "c"}, ids(ranked))
	for i := 1; i < len(ranked); i++ {
		assert.GreaterOrEqual(t, ranked[i-1].Seats, ranked[i].Seats)
	}
}

func TestRankOffersKeepsProviderOrderOnTies(t *testing.T) {
	offers := []Offer{
		{ID: "first", Seats: 4},
		{ID: "second", Seats: 4},
		{ID: "third", Seats: 4},
	}

	ranked := rankOffers(offers)
	assert.Equal(t, []string{"first", "second", "third"}, ids(ranked))
}

func TestRankOffersTruncatesToTwenty(t *testing.T) {
	var offers []Offer
	for i := 0; i < 25; i++ {
		offers = append(offers, Offer{Seats: i})
	}

	ranked := rankOffers(offers)
	assert.Len(t, ranked, maxRankedOffers)
	assert.Equal(t, 24, ranked[0].Seats)
}

func TestRankOffersShortListUnchangedLength(t *testing.T) {
	ranked := rankOffers([]Offer{{Seats: 1}, {Seats: 3}})
	assert.Len(t, ranked, 2)
	assert.Equal(t, 3, ranked[0].Seats)
}

func ids(offers []Offer) []string {
	out := make([]string, 0, len(offers))
	for _, o := range offers {
		out = append(out, o.ID)
	}
	return out
}
