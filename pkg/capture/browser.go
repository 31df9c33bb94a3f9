package capture

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/owlmon/owl/pkg/sighting"
)

// Browser protocol commands that announce a machine name.
const (
	cmdHostAnnouncement    = 0x01
	cmdAnnouncementRequest = 0x02
)

var (
	smbMagic       = []byte{0xff, 'S', 'M', 'B'}
	mailslotBrowse = []byte("\\MAILSLOT\\BROWSE\x00")
)

const smbComTransaction = 0x25

// decodeAnnouncement extracts a sighting from a NetBIOS datagram packet.
// The announced machine name travels in a browser frame behind the
// \MAILSLOT\BROWSE mailslot of an SMB Transaction request.
func decodeAnnouncement(packet gopacket.Packet) (*sighting.Event, error) {
	ipLayer := packet.Layer(layers.LayerTypeIPv4)
	if ipLayer == nil {
		return nil, fmt.Errorf("packet does not contain IPv4 layer")
	}
	ip, ok := ipLayer.(*layers.IPv4)
	if !ok {
		return nil, fmt.Errorf("failed to cast to IPv4 layer")
	}

	udpLayer := packet.Layer(layers.LayerTypeUDP)
	if udpLayer == nil {
		return nil, fmt.Errorf("packet does not contain UDP layer")
	}
	udp, ok := udpLayer.(*layers.UDP)
	if !ok {
		return nil, fmt.Errorf("failed to cast to UDP layer")
	}

	name, err := parseBrowserDatagram(udp.Payload)
	if err != nil {
		return nil, err
	}

	return &sighting.Event{
		ObservedAt: packet.Metadata().Timestamp,
		SourceIP:   ip.SrcIP.String(),
		HostName:   name,
	}, nil
}

// parseBrowserDatagram walks a NetBIOS datagram payload to the browser
// frame and returns the announced machine name. Offsets follow the SMB
// Transaction request layout (header 32 bytes, word count, 14 parameter
// words, setup words, byte block).
func parseBrowserDatagram(payload []byte) (string, error) {
	idx := bytes.Index(payload, smbMagic)
	if idx < 0 {
		return "", fmt.Errorf("no SMB header in datagram")
	}
	smb := payload[idx:]
	if len(smb) < 61 {
		return "", fmt.Errorf("SMB transaction too short (%d bytes)", len(smb))
	}
	if smb[4] != smbComTransaction {
		return "", fmt.Errorf("not an SMB transaction (command: 0x%02x)", smb[4])
	}
	if !bytes.Contains(smb, mailslotBrowse) {
		return "", fmt.Errorf("not a browser mailslot write")
	}

	dataCount := int(binary.LittleEndian.Uint16(smb[55:57]))
	dataOffset := int(binary.LittleEndian.Uint16(smb[57:59]))
	if dataCount == 0 || dataOffset+dataCount > len(smb) {
		return "", fmt.Errorf("browser frame out of bounds (offset %d, count %d)", dataOffset, dataCount)
	}

	return parseBrowserFrame(smb[dataOffset : dataOffset+dataCount])
}

// parseBrowserFrame extracts the machine name from a browser frame.
// HostAnnouncement carries a fixed 16-byte server name field;
// AnnouncementRequest carries a null-terminated response computer name.
func parseBrowserFrame(frame []byte) (string, error) {
	if len(frame) == 0 {
		return "", fmt.Errorf("empty browser frame")
	}

	switch frame[0] {
	case cmdHostAnnouncement:
		// Command(1) UpdateCount(1) Periodicity(4) ServerName(16) ...
		if len(frame) < 22 {
			return "", fmt.Errorf("host announcement too short (%d bytes)", len(frame))
		}
		return machineName(frame[6:22])
	case cmdAnnouncementRequest:
		// Command(1) Unused(1) ResponseComputerName(null-terminated)
		if len(frame) < 3 {
			return "", fmt.Errorf("announcement request too short (%d bytes)", len(frame))
		}
		return machineName(frame[2:])
	default:
		return "", fmt.Errorf("not an announcement (command: 0x%02x)", frame[0])
	}
}

// machineName trims the NetBIOS padding from a raw name field.
func machineName(raw []byte) (string, error) {
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	name := strings.TrimRight(string(raw), " ")
	if name == "" {
		return "", fmt.Errorf("announcement carries empty machine name")
	}
	return name, nil
}
