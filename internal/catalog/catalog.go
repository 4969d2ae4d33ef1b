// Package catalog holds the static rank ladder and the boost price table.
// Rank ordinals are dense (1..Size) and strictly increasing in skill, so
// price math is a pure fold over the ladder.
package catalog

import (
	"strconv"

	"github.com/shopspring/decimal"
)

type Rank struct {
	ID        int    `json:"id"`
	Tier      string `json:"tier"`
	Division  int    `json:"division"`
	Name      string `json:"name"`
	BasePrice int64  `json:"-"`
}

type tierInfo struct {
	name      string
	basePrice int64
	divisions int
}

// Ladder order is skill order. The top tier has a single division.
var tiers = []tierInfo{
	{"Demir", 150, 3},
	{"Bronz", 200, 3},
	{"Gümüş", 250, 3},
	{"Altın", 300, 3},
	{"Platin", 400, 3},
	{"Elmas", 550, 3},
	{"Usta", 750, 3},
	{"Büyükusta", 1000, 3},
	{"Şampiyonluk", 1500, 1},
}

// Division multipliers: the first division of a tier is the cheapest.
var divisionMultipliers = map[int]decimal.Decimal{
	1: decimal.NewFromFloat(0.8),
	2: decimal.NewFromFloat(1.0),
	3: decimal.NewFromFloat(1.2),
}

var ranks = buildRanks()

func buildRanks() []Rank {
	var out []Rank
	id := 0
	for _, t := range tiers {
		for d := 1; d <= t.divisions; d++ {
			id++
			name := t.name
			if t.divisions > 1 {
				name = t.name + " " + strconv.Itoa(d)
			}
			out = append(out, Rank{
				ID:        id,
				Tier:      t.name,
				Division:  d,
				Name:      name,
				BasePrice: t.basePrice,
			})
		}
	}
	return out
}

// Ranks returns the full ladder in skill order.
func Ranks() []Rank {
	out := make([]Rank, len(ranks))
	copy(out, ranks)
	return out
}

func Size() int {
	return len(ranks)
}

// Get resolves a rank by its ordinal.
func Get(id int) (Rank, bool) {
	if id < 1 || id > len(ranks) {
		return Rank{}, false
	}
	return ranks[id-1], true
}

// DivisionPrice is the price of a single rank step:
// round(tierBasePrice × divisionMultiplier), half up.
func DivisionPrice(id int) int64 {
	rank, ok := Get(id)
	if !ok {
		return 0
	}
	price := decimal.NewFromInt(rank.BasePrice).Mul(divisionMultipliers[rank.Division])
	return price.Round(0).IntPart()
}

// PriceBetween sums the division prices of every rank strictly above
// currentID up to and including targetID. Returns 0 when currentID >=
// targetID: there is no downgrade pricing, the call is a no-op rather
// than an error.
func PriceBetween(currentID, targetID int) int64 {
	if _, ok := Get(currentID); !ok {
		return 0
	}
	if _, ok := Get(targetID); !ok {
		return 0
	}
	if currentID >= targetID {
		return 0
	}
	var total int64
	for id := currentID + 1; id <= targetID; id++ {
		total += DivisionPrice(id)
	}
	return total
}

const (
	prioritySurcharge  = "0.2"
	streamingSurcharge = "0.1"
)

// Quote applies the optional add-ons on top of the summed base price.
// Surcharges are additive with each other, not compounded:
// final = base × (1 + 0.2·priority + 0.1·streaming), rounded half up.
func Quote(currentID, targetID int, priority, streaming bool) int64 {
	base := PriceBetween(currentID, targetID)
	if base == 0 {
		return 0
	}
	factor := decimal.NewFromInt(1)
	if priority {
		factor = factor.Add(decimal.RequireFromString(prioritySurcharge))
	}
	if streaming {
		factor = factor.Add(decimal.RequireFromString(streamingSurcharge))
	}
	return decimal.NewFromInt(base).Mul(factor).Round(0).IntPart()
}

// CommissionRate is the share of an order's price paid to the booster on
// completion. The remainder is retained by the platform.
var CommissionRate = decimal.RequireFromString("0.6")

// Commission is the booster's payout for a completed order of the given
// price, rounded half up.
func Commission(price int64) int64 {
	return decimal.NewFromInt(price).Mul(CommissionRate).Round(0).IntPart()
}
