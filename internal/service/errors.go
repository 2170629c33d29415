package service

import "errors"

var (
	// ErrInvalidDriverID is returned when driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidPassengerID is returned when passenger ID is empty.
	ErrInvalidPassengerID = errors.New("invalid passenger id")

	// ErrInvalidUserID is returned when user ID is empty.
	ErrInvalidUserID = errors.New("invalid user id")

	// ErrInvalidBusNumber is returned when bus number is empty.
	ErrInvalidBusNumber = errors.New("invalid bus number")

	// ErrInvalidCommuteStatus is returned when a daily status is neither
	// coming nor absent.
	ErrInvalidCommuteStatus = errors.New("invalid commute status")

	// ErrInvalidReason is returned when an SOS carries no reason.
	ErrInvalidReason = errors.New("invalid sos reason")

	// ErrAlreadyDeclared is returned when a passenger declares a daily
	// status twice for the same date.
	ErrAlreadyDeclared = errors.New("daily status already declared for today")

	// ErrNoActiveTrip is returned when no started trip covers the passenger.
	ErrNoActiveTrip = errors.New("no active trip found for your route")

	// ErrBusNotFound is returned when a driver has no bus profile.
	ErrBusNotFound = errors.New("bus not found")

	// ErrNoPassengersAssigned is returned when building a route for an
	// empty roster.
	ErrNoPassengersAssigned = errors.New("no passengers assigned to this bus")

	// ErrTripBusy is returned when another start/end for the same driver is
	// in flight.
	ErrTripBusy = errors.New("another trip operation is in progress for this driver")
)
