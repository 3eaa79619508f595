package models

import "time"

// Stop is a transit network node. Latitude and longitude are in degrees.
type Stop struct {
	ID  string  `json:"id"`
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Connection is an undirected link between two stops.
//
// Length is carried through from the source records (kilometers when the
// connection was derived from a GTFS bundle). The coverage and bridge
// computations never read it; it only feeds the network length statistics.
type Connection struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Length float64 `json:"length"`
}

// NetworkData holds the raw records of one transit network as they come out
// of a loader, before a graph is built from them.
type NetworkData struct {
	Stops       []Stop
	Connections []Connection
	// ServicePeriod is set for networks loaded from a GTFS bundle with a
	// calendar.
	ServicePeriod *ServicePeriod
}

// ServicePeriod spans the end dates of a GTFS bundle's services.
type ServicePeriod struct {
	EarliestEnd time.Time `json:"earliest_end"`
	LatestEnd   time.Time `json:"latest_end"`
}

func NewNetworkData(stops []Stop, connections []Connection) *NetworkData {
	return &NetworkData{
		Stops:       append([]Stop(nil), stops...),
		Connections: append([]Connection(nil), connections...),
	}
}
