package partnerapi

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error codes returned by the backend that the client reacts to.
const (
	CodeUploadProcessing = 10023
	CodeFileTooLarge     = 10024
	CodeParkingLotFull   = 10031
	CodePriceRejected    = 10058
	CodeDuplicatePlate   = 10062
)

var ErrUnauthorized = errors.New("partner session is not signed in")

// APIError is a non-successful backend reply.
type APIError struct {
	HTTPStatus int
	Code       int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("partner api http %d: code=%d message=%q", e.HTTPStatus, e.Code, e.Message)
}

// ErrorCode extracts the backend error code from err, or 0 if err does not
// carry one.
func ErrorCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}
