package registration

import (
	"partnerbot/pkg/models"
)

// Screen is where the partner should be taken for a given car.
type Screen int

const (
	ScreenCarDetail Screen = iota
	ScreenPhotos
	ScreenDocuments
	ScreenPrice
	ScreenSuccess
)

func (s Screen) String() string {
	switch s {
	case ScreenPhotos:
		return "photos"
	case ScreenDocuments:
		return "documents"
	case ScreenPrice:
		return "price"
	case ScreenSuccess:
		return "success"
	}
	return "car_detail"
}

type Destination struct {
	Screen     Screen
	CarID      int64
	BasedPrice int
	Status     models.CarStatus
	// Unknown is set when Status is not one of models.KnownCarStatuses.
	Unknown bool
}

// Route maps a car's status onto the next screen. The three
// pending_application sub-states resume the wizard; every other status,
// including unrecognised ones, lands on the car detail.
func Route(car *models.Car) Destination {
	d := Destination{
		CarID:      car.ID,
		BasedPrice: car.CarModel.BasedPrice,
		Status:     car.Status,
		Unknown:    !car.Status.Known(),
	}

	switch car.Status {
	case models.CarStatusPendingImages:
		d.Screen = ScreenPhotos
	case models.CarStatusPendingCaveat:
		d.Screen = ScreenDocuments
	case models.CarStatusPendingPrice:
		d.Screen = ScreenPrice
	case models.CarStatusPendingApproval,
		models.CarStatusApproved,
		models.CarStatusRejected,
		models.CarStatusActive,
		models.CarStatusInactive,
		models.CarStatusWaitingCarDelivery:
		d.Screen = ScreenCarDetail
	default:
		d.Screen = ScreenCarDetail
	}
	return d
}

// InWizard reports whether the destination is one of the registration steps.
func (d Destination) InWizard() bool {
	return d.Screen == ScreenPhotos || d.Screen == ScreenDocuments || d.Screen == ScreenPrice
}
