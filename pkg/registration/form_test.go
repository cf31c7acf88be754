package registration

import (
	"testing"

	"github.com/stretchr/testify/require"

	"partnerbot/pkg/models"
)

var testCatalog = []models.CarModel{
	{ID: 1, Brand: "Toyota", Model: "Vios", Year: 2022, NumberOfSeats: 4, BasedPrice: 700000},
	{ID: 2, Brand: "Toyota", Model: "Innova", Year: 2022, NumberOfSeats: 7, BasedPrice: 900000},
	{ID: 3, Brand: "Kia", Model: "Morning", Year: 2021, NumberOfSeats: 4, BasedPrice: 500000},
	{ID: 4, Brand: "Toyota", Model: "Innova", Year: 2022, NumberOfSeats: 8, BasedPrice: 950000},
	{ID: 5, Brand: "Honda", Model: "City", Year: 2023, NumberOfSeats: 4, BasedPrice: 750000},
}

func completeForm() CarForm {
	return CarForm{
		LicensePlate: "51A12345",
		Year:         2022,
		Brand:        "Toyota",
		Model:        "Innova",
		Seats:        7,
		MotionCode:   "automatic_transmission",
		FuelCode:     "gas",
		ParkingLot:   "garage",
		PeriodCode:   3,
		Description:  "clean",
	}
}

func TestCarForm_CanSubmit_EachFieldMissing(t *testing.T) {
	clears := map[string]func(f *CarForm){
		FieldLicensePlate: func(f *CarForm) { f.LicensePlate = "" },
		FieldYear:         func(f *CarForm) { f.Year = 0 },
		FieldBrand:        func(f *CarForm) { f.Brand = "" },
		FieldModel:        func(f *CarForm) { f.Model = "" },
		FieldSeats:        func(f *CarForm) { f.Seats = 0 },
		FieldMotion:       func(f *CarForm) { f.MotionCode = "" },
		FieldFuel:         func(f *CarForm) { f.FuelCode = "" },
		FieldParkingLot:   func(f *CarForm) { f.ParkingLot = "" },
		FieldPeriod:       func(f *CarForm) { f.PeriodCode = 0 },
	}
	require.Len(t, clears, len(RequiredFields))

	for _, field := range RequiredFields {
		t.Run(field, func(t *testing.T) {
			f := completeForm()
			clears[field](&f)
			require.Equal(t, []string{field}, f.MissingFields())
			require.False(t, f.CanSubmit(RequestState{}))
		})
	}
}

func TestCarForm_CanSubmit(t *testing.T) {
	f := completeForm()
	require.Empty(t, f.MissingFields())
	require.True(t, f.CanSubmit(RequestState{Status: RequestIdle}))
	require.True(t, f.CanSubmit(RequestState{Status: RequestFailed}))
	require.False(t, f.CanSubmit(RequestState{Status: RequestPending}))

	f.Description = ""
	require.True(t, f.CanSubmit(RequestState{}))
}

func TestCarForm_CascadeClearsBelow(t *testing.T) {
	f := completeForm()
	f.SelectModel("Innova")
	require.Zero(t, f.Seats)
	require.Empty(t, f.ParkingLot)
	require.Equal(t, "Toyota", f.Brand)

	f = completeForm()
	f.SelectYear(2021)
	require.Empty(t, f.Brand)
	require.Empty(t, f.Model)
	require.Zero(t, f.Seats)
	require.Equal(t, "gas", f.FuelCode)
}

func TestCascadeFilters(t *testing.T) {
	require.Equal(t, []int{2023, 2022, 2021}, Years(testCatalog))
	require.Equal(t, []string{"Toyota"}, Brands(testCatalog, 2022))
	require.Equal(t, []string{"Innova", "Vios"}, ModelNames(testCatalog, 2022, "Toyota"))
	require.Equal(t, []int{7, 8}, SeatCounts(testCatalog, 2022, "Toyota", "Innova"))

	m, ok := ResolveModel(testCatalog, 2022, "Toyota", "Innova", 8)
	require.True(t, ok)
	require.Equal(t, int64(4), m.ID)

	_, ok = ResolveModel(testCatalog, 2021, "Toyota", "Innova", 8)
	require.False(t, ok)
}

func TestCarForm_NewCar(t *testing.T) {
	f := completeForm()
	f.LicensePlate = " 51a12345 "
	car, m, err := f.NewCar(testCatalog)
	require.NoError(t, err)
	require.Equal(t, "51A12345", car.LicensePlate)
	require.Equal(t, int64(2), car.CarModelID)
	require.Equal(t, 900000, m.BasedPrice)

	f.LicensePlate = "51AB123"
	_, _, err = f.NewCar(testCatalog)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, FieldLicensePlate, verr.Field)

	f = completeForm()
	f.Seats = 5
	_, _, err = f.NewCar(testCatalog)
	require.ErrorAs(t, err, &verr)
	require.Equal(t, FieldModel, verr.Field)
}
