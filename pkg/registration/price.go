package registration

import (
	"github.com/pkg/errors"
)

const (
	MinPrice  = 100000
	PriceStep = 1000

	FieldPrice = "price"
)

var (
	ErrBasePriceUnavailable = errors.New("base price is not available for this car")
	ErrBasePriceTooLow      = errors.New("base price is below the minimum rental price")
)

// PriceRange bounds the final rental price a partner may pick.
type PriceRange struct {
	Min  int
	Max  int
	Step int
}

func NewPriceRange(basedPrice int) (PriceRange, error) {
	if basedPrice <= 0 {
		return PriceRange{}, ErrBasePriceUnavailable
	}
	if basedPrice < MinPrice {
		return PriceRange{}, ErrBasePriceTooLow
	}
	return PriceRange{Min: MinPrice, Max: basedPrice, Step: PriceStep}, nil
}

// Contains accepts prices on the Min+k*Step grid, and Max itself even when
// the based price is off the grid.
func (r PriceRange) Contains(price int) bool {
	if price < r.Min || price > r.Max {
		return false
	}
	return price == r.Max || (price-r.Min)%r.Step == 0
}

func (r PriceRange) Clamp(price int) int {
	if price < r.Min {
		return r.Min
	}
	if price > r.Max {
		return r.Max
	}
	return price
}

// Adjust moves price by the given number of steps and snaps the result
// down onto the grid, staying in range.
func (r PriceRange) Adjust(price, steps int) int {
	p := r.Clamp(price + steps*r.Step)
	if p == r.Max {
		return p
	}
	return r.Min + (p-r.Min)/r.Step*r.Step
}
