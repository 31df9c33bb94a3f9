// Package capture wraps gopacket/pcap live capture of NetBIOS browser
// announcement datagrams and decodes them into sighting events.
package capture

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"

	"github.com/owlmon/owl/pkg/sighting"
)

const (
	// DefaultSnapLen is the snapshot length for packet capture.
	DefaultSnapLen = 1600
	// DefaultPromisc enables promiscuous mode by default.
	DefaultPromisc = true
	// DefaultTimeout is the pcap read timeout (100ms for responsiveness).
	DefaultTimeout = 100 * time.Millisecond

	// baseFilter selects the NetBIOS datagram service, which carries the
	// browser protocol host announcements.
	baseFilter = "udp and port 138"
)

// ErrSourceClosed is returned by Run when the packet source terminates.
var ErrSourceClosed = errors.New("capture source closed")

// Config holds the capture adapter configuration.
type Config struct {
	// Interface is the capture device name ("any" captures on all).
	Interface string
	// Filter is an optional user BPF expression combined with the base
	// announcement filter.
	Filter string
}

// Adapter produces an infinite, non-restartable sequence of sightings
// from a live capture handle.
type Adapter struct {
	handle *pcap.Handle
	source *gopacket.PacketSource
}

// buildFilter combines the base announcement filter with an optional
// user expression.
func buildFilter(user string) string {
	if user == "" {
		return baseFilter
	}
	return fmt.Sprintf("(%s) and (%s)", baseFilter, user)
}

// Open creates a live capture handle on the configured interface and
// installs the BPF filter. A failure to open the device or a filter
// rejected by the capture layer are adapter faults.
func Open(config Config) (*Adapter, error) {
	device := config.Interface
	if device == "" {
		device = "any"
	}

	handle, err := pcap.OpenLive(device, DefaultSnapLen, DefaultPromisc, DefaultTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to open capture on %s: %w", device, err)
	}

	if err := handle.SetBPFFilter(buildFilter(config.Filter)); err != nil {
		handle.Close()
		return nil, fmt.Errorf("capture filter rejected: %w", err)
	}

	return &Adapter{
		handle: handle,
		source: gopacket.NewPacketSource(handle, handle.LinkType()),
	}, nil
}

// Run decodes announcement packets and hands each sighting to emit, in
// capture order. Packets that are not valid browser announcements are
// skipped. Run returns only when the underlying source terminates.
func (a *Adapter) Run(emit func(*sighting.Event)) error {
	for packet := range a.source.Packets() {
		if packet == nil {
			continue
		}
		ev, err := decodeAnnouncement(packet)
		if err != nil {
			continue
		}
		emit(ev)
	}
	return ErrSourceClosed
}

// Close releases the capture handle, terminating Run.
func (a *Adapter) Close() {
	a.handle.Close()
}
