package errorx

import "net/http"

type Code int

var Unknown = Error{Code: 100000, Message: "Request failed"}

const (
	// Common codes
	BadRequest      Code = 100001
	BadResponse     Code = 100002
	Unauthorized    Code = 100003
	NotFound        Code = 100004
	AlreadyExists   Code = 100006
	Internal        Code = 100007
	Unavailable     Code = 100008
	NotImplemented  Code = 100009
	TooManyRequests Code = 100010

	// Party lifecycle codes
	PartyClosed              Code = 200001
	AlreadyLocked            Code = 200002
	PartyNotLocked           Code = 200003
	InsufficientParticipants Code = 200004
	MatchingFailed           Code = 200005
)

// HTTPStatus returns the status code used when the error is written to a
// http response.
func (c Code) HTTPStatus() int {
	switch c {
	case BadRequest:
		return http.StatusBadRequest
	case Unauthorized:
		return http.StatusForbidden
	case NotFound:
		return http.StatusNotFound
	case AlreadyExists, PartyClosed, AlreadyLocked, PartyNotLocked:
		return http.StatusConflict
	case InsufficientParticipants:
		return http.StatusUnprocessableEntity
	case TooManyRequests:
		return http.StatusTooManyRequests
	case Unavailable:
		return http.StatusServiceUnavailable
	case NotImplemented:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
