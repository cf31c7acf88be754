package registration

import (
	"fmt"

	"github.com/pkg/errors"

	"partnerbot/pkg/partnerapi"
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// AlertKind selects the user-facing message for a failed action.
type AlertKind string

const (
	AlertNone                 AlertKind = ""
	AlertValidation           AlertKind = "validation"
	AlertInvalidPlate         AlertKind = "invalid_plate"
	AlertDuplicatePlate       AlertKind = "duplicate_plate"
	AlertParkingLotFull       AlertKind = "parking_lot_full"
	AlertUploadProcessing     AlertKind = "upload_processing"
	AlertFileTooLarge         AlertKind = "file_too_large"
	AlertPriceRejected        AlertKind = "price_rejected"
	AlertPriceOutOfRange      AlertKind = "price_out_of_range"
	AlertBasePriceUnavailable AlertKind = "base_price_unavailable"
	AlertUnauthorized         AlertKind = "unauthorized"
	AlertInFlight             AlertKind = "in_flight"
	AlertAlreadyDone          AlertKind = "already_done"
	AlertGeneric              AlertKind = "generic"
)

func Classify(err error) AlertKind {
	if err == nil {
		return AlertNone
	}

	var verr *ValidationError
	if errors.As(err, &verr) {
		switch verr.Field {
		case FieldLicensePlate:
			if verr.Reason != "required" {
				return AlertInvalidPlate
			}
		case FieldPrice:
			return AlertPriceOutOfRange
		}
		return AlertValidation
	}

	switch {
	case errors.Is(err, partnerapi.ErrUnauthorized):
		return AlertUnauthorized
	case errors.Is(err, ErrInFlight):
		return AlertInFlight
	case errors.Is(err, ErrAlreadyDone):
		return AlertAlreadyDone
	case errors.Is(err, ErrBasePriceUnavailable), errors.Is(err, ErrBasePriceTooLow):
		return AlertBasePriceUnavailable
	}

	switch partnerapi.ErrorCode(err) {
	case partnerapi.CodeDuplicatePlate:
		return AlertDuplicatePlate
	case partnerapi.CodeParkingLotFull:
		return AlertParkingLotFull
	case partnerapi.CodeUploadProcessing:
		return AlertUploadProcessing
	case partnerapi.CodeFileTooLarge:
		return AlertFileTooLarge
	case partnerapi.CodePriceRejected:
		return AlertPriceRejected
	}
	return AlertGeneric
}
