package models

import "time"

type CarStatus string

const (
	CarStatusPendingImages      CarStatus = "pending_application:pending_car_images"
	CarStatusPendingCaveat      CarStatus = "pending_application:pending_car_caveat"
	CarStatusPendingPrice       CarStatus = "pending_application:pending_price"
	CarStatusPendingApproval    CarStatus = "pending_approval"
	CarStatusApproved           CarStatus = "approved"
	CarStatusRejected           CarStatus = "rejected"
	CarStatusActive             CarStatus = "active"
	CarStatusInactive           CarStatus = "inactive"
	CarStatusWaitingCarDelivery CarStatus = "waiting_car_delivery"
)

// KnownCarStatuses lists every status the backend is expected to return.
var KnownCarStatuses = []CarStatus{
	CarStatusPendingImages,
	CarStatusPendingCaveat,
	CarStatusPendingPrice,
	CarStatusPendingApproval,
	CarStatusApproved,
	CarStatusRejected,
	CarStatusActive,
	CarStatusInactive,
	CarStatusWaitingCarDelivery,
}

func (s CarStatus) Known() bool {
	for _, k := range KnownCarStatuses {
		if s == k {
			return true
		}
	}
	return false
}

type DocumentCategory string

const (
	DocumentCategoryCarImages DocumentCategory = "CAR_IMAGES"
	DocumentCategoryCarCaveat DocumentCategory = "CAR_CAVEAT"
)

type Car struct {
	ID           int64     `json:"id"`
	PartnerID    int64     `json:"partner_id"`
	CarModel     CarModel  `json:"car_model"`
	LicensePlate string    `json:"license_plate"`
	ParkingLot   string    `json:"parking_lot"`
	Description  string    `json:"description"`
	Fuel         string    `json:"fuel"`
	Motion       string    `json:"motion"`
	Period       int       `json:"period"`
	Price        int       `json:"price"`
	Status       CarStatus `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewCar is the body of POST /partner/car.
type NewCar struct {
	LicensePlate string `json:"license_plate"`
	CarModelID   int64  `json:"car_model_id"`
	MotionCode   string `json:"motion_code"`
	FuelCode     string `json:"fuel_code"`
	ParkingLot   string `json:"parking_lot"`
	PeriodCode   int    `json:"period_code"`
	Description  string `json:"description"`
}

type PriceUpdate struct {
	CarID    int64 `json:"car_id"`
	NewPrice int   `json:"new_price"`
}

type CarFilter struct {
	Status CarStatus
	Offset int
	Limit  int
}

// UploadFile is one image sent in a multipart document upload.
type UploadFile struct {
	Name string
	Data []byte
}
