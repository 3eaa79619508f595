package network

import (
	"errors"
	"fmt"

	"netcover.onebusaway.org/internal/geo"
	"netcover.onebusaway.org/internal/models"
)

var (
	// ErrEmptyInput is returned when a graph is built without stops.
	ErrEmptyInput = geo.ErrEmptyInput

	ErrDuplicateStop     = errors.New("duplicate stop id")
	ErrEmptyStopID       = errors.New("empty stop id")
	ErrInvalidCoordinate = errors.New("invalid stop coordinate")
	ErrSelfLoop          = errors.New("connection is a self-loop")
)

// MalformedReferenceError reports a connection citing a stop that is not
// part of the stop set. Graph construction fails on the first one found.
type MalformedReferenceError struct {
	Connection models.Connection
	StopID     string
}

func (e *MalformedReferenceError) Error() string {
	return fmt.Sprintf("connection %s-%s references unknown stop %q",
		e.Connection.From, e.Connection.To, e.StopID)
}
