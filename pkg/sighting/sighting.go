// Package sighting carries observed host announcements from the capture
// adapter to the persistence writer.
package sighting

import "time"

// Event is a single observed announcement of a host's presence on the
// local segment. The capture adapter owns an Event until it is handed to
// the queue; the persistence writer consumes it exactly once.
type Event struct {
	ObservedAt time.Time
	SourceIP   string
	HostName   string
}
