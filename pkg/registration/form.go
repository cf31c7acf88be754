package registration

import (
	"sort"

	"partnerbot/pkg/models"
)

// ParkingLotFallback is forced into the form when the chosen parking lot
// has no capacity left.
const ParkingLotFallback = "home"

const (
	FieldLicensePlate = "license_plate"
	FieldYear         = "year"
	FieldBrand        = "brand"
	FieldModel        = "model"
	FieldSeats        = "seats"
	FieldMotion       = "motion_code"
	FieldFuel         = "fuel_code"
	FieldParkingLot   = "parking_lot"
	FieldPeriod       = "period_code"
)

// RequiredFields is the order fields are reported missing in.
var RequiredFields = []string{
	FieldLicensePlate,
	FieldYear,
	FieldBrand,
	FieldModel,
	FieldSeats,
	FieldMotion,
	FieldFuel,
	FieldParkingLot,
	FieldPeriod,
}

// CarForm stages the first registration step until it is submitted.
type CarForm struct {
	LicensePlate string
	Year         int
	Brand        string
	Model        string
	Seats        int
	MotionCode   string
	FuelCode     string
	ParkingLot   string
	PeriodCode   int
	Description  string
}

func (f *CarForm) MissingFields() []string {
	present := map[string]bool{
		FieldLicensePlate: f.LicensePlate != "",
		FieldYear:         f.Year != 0,
		FieldBrand:        f.Brand != "",
		FieldModel:        f.Model != "",
		FieldSeats:        f.Seats != 0,
		FieldMotion:       f.MotionCode != "",
		FieldFuel:         f.FuelCode != "",
		FieldParkingLot:   f.ParkingLot != "",
		FieldPeriod:       f.PeriodCode != 0,
	}
	var missing []string
	for _, name := range RequiredFields {
		if !present[name] {
			missing = append(missing, name)
		}
	}
	return missing
}

// CanSubmit mirrors the submit control: every field filled and nothing in flight.
func (f *CarForm) CanSubmit(state RequestState) bool {
	return len(f.MissingFields()) == 0 && state.Status != RequestPending
}

// Selecting a cascade level clears everything below it.

func (f *CarForm) SelectYear(year int) {
	f.Year = year
	f.Brand = ""
	f.Model = ""
	f.SelectSeats(0)
}

func (f *CarForm) SelectBrand(brand string) {
	f.Brand = brand
	f.Model = ""
	f.SelectSeats(0)
}

func (f *CarForm) SelectModel(model string) {
	f.Model = model
	f.SelectSeats(0)
}

// SelectSeats also clears the parking lot, whose options depend on seat count.
func (f *CarForm) SelectSeats(seats int) {
	f.Seats = seats
	f.ParkingLot = ""
}

func (f *CarForm) NewCar(catalog []models.CarModel) (models.NewCar, *models.CarModel, error) {
	if missing := f.MissingFields(); len(missing) > 0 {
		return models.NewCar{}, nil, &ValidationError{Field: missing[0], Reason: "required"}
	}
	if !ValidLicensePlate(f.LicensePlate) {
		return models.NewCar{}, nil, &ValidationError{Field: FieldLicensePlate, Reason: "invalid format"}
	}
	m, ok := ResolveModel(catalog, f.Year, f.Brand, f.Model, f.Seats)
	if !ok {
		return models.NewCar{}, nil, &ValidationError{Field: FieldModel, Reason: "not in catalog"}
	}
	return models.NewCar{
		LicensePlate: NormalizeLicensePlate(f.LicensePlate),
		CarModelID:   m.ID,
		MotionCode:   f.MotionCode,
		FuelCode:     f.FuelCode,
		ParkingLot:   f.ParkingLot,
		PeriodCode:   f.PeriodCode,
		Description:  f.Description,
	}, m, nil
}

// Years lists catalog years, newest first.
func Years(catalog []models.CarModel) []int {
	seen := map[int]bool{}
	var out []int
	for _, m := range catalog {
		if !seen[m.Year] {
			seen[m.Year] = true
			out = append(out, m.Year)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

func Brands(catalog []models.CarModel, year int) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range catalog {
		if m.Year == year && !seen[m.Brand] {
			seen[m.Brand] = true
			out = append(out, m.Brand)
		}
	}
	sort.Strings(out)
	return out
}

func ModelNames(catalog []models.CarModel, year int, brand string) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range catalog {
		if m.Year == year && m.Brand == brand && !seen[m.Model] {
			seen[m.Model] = true
			out = append(out, m.Model)
		}
	}
	sort.Strings(out)
	return out
}

func SeatCounts(catalog []models.CarModel, year int, brand, model string) []int {
	seen := map[int]bool{}
	var out []int
	for _, m := range catalog {
		if m.Year == year && m.Brand == brand && m.Model == model && !seen[m.NumberOfSeats] {
			seen[m.NumberOfSeats] = true
			out = append(out, m.NumberOfSeats)
		}
	}
	sort.Ints(out)
	return out
}

func ResolveModel(catalog []models.CarModel, year int, brand, model string, seats int) (*models.CarModel, bool) {
	for i := range catalog {
		m := &catalog[i]
		if m.Year == year && m.Brand == brand && m.Model == model && m.NumberOfSeats == seats {
			return m, true
		}
	}
	return nil, false
}
