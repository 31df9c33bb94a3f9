package capture

import (
	"encoding/binary"
	"net"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// buildDatagram assembles a NetBIOS datagram payload carrying a browser
// frame behind an SMB Transaction mailslot write, the way announcement
// packets appear on udp/138.
func buildDatagram(frame []byte) []byte {
	// NetBIOS datagram header and encoded source/destination names. The
	// parser locates the SMB header by its magic, so placeholder bytes
	// are enough here.
	nbds := make([]byte, 82)
	nbds[0] = 0x11 // direct group datagram

	mailslot := []byte("\\MAILSLOT\\BROWSE\x00")

	// SMB Transaction request: 32-byte header, word count, 14 parameter
	// words, 3 setup words, byte count, transaction name, then data.
	smb := make([]byte, 69, 69+len(mailslot)+len(frame))
	copy(smb, smbMagic)
	smb[4] = smbComTransaction
	smb[32] = 17 // word count: 14 + 3 setup words
	smb = append(smb, mailslot...)
	dataOffset := len(smb)
	smb = append(smb, frame...)

	binary.LittleEndian.PutUint16(smb[55:57], uint16(len(frame)))
	binary.LittleEndian.PutUint16(smb[57:59], uint16(dataOffset))
	binary.LittleEndian.PutUint16(smb[67:69], uint16(len(mailslot)+len(frame)))

	return append(nbds, smb...)
}

func hostAnnouncementFrame(name string) []byte {
	frame := make([]byte, 22)
	frame[0] = cmdHostAnnouncement
	copy(frame[6:22], name)
	return frame
}

func announcementRequestFrame(name string) []byte {
	frame := []byte{cmdAnnouncementRequest, 0x00}
	frame = append(frame, name...)
	return append(frame, 0x00)
}

func TestParseBrowserDatagram(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
		want    string
		wantErr bool
	}{
		{
			name:    "host announcement",
			payload: buildDatagram(hostAnnouncementFrame("ALICE-PC")),
			want:    "ALICE-PC",
		},
		{
			name:    "announcement request",
			payload: buildDatagram(announcementRequestFrame("BOB-PC")),
			want:    "BOB-PC",
		},
		{
			name:    "name padded to field width",
			payload: buildDatagram(hostAnnouncementFrame("PC1")),
			want:    "PC1",
		},
		{
			name:    "non-announcement browser command",
			payload: buildDatagram([]byte{0x08, 0x00, 'X'}),
			wantErr: true,
		},
		{
			name:    "empty machine name",
			payload: buildDatagram(announcementRequestFrame("")),
			wantErr: true,
		},
		{
			name:    "no SMB header",
			payload: make([]byte, 128),
			wantErr: true,
		},
		{
			name:    "truncated datagram",
			payload: buildDatagram(hostAnnouncementFrame("ALICE-PC"))[:100],
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBrowserDatagram(tt.payload)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseBrowserDatagram() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseBrowserDatagram() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeAnnouncementFullPacket(t *testing.T) {
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		DstMAC:       net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Protocol: layers.IPProtocolUDP,
		SrcIP:    net.IPv4(10, 0, 0, 5),
		DstIP:    net.IPv4(10, 0, 0, 255),
	}
	udp := &layers.UDP{SrcPort: 138, DstPort: 138}
	if err := udp.SetNetworkLayerForChecksum(ip); err != nil {
		t.Fatalf("SetNetworkLayerForChecksum() error = %v", err)
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	payload := buildDatagram(hostAnnouncementFrame("ALICE-PC"))
	if err := gopacket.SerializeLayers(buf, opts, eth, ip, udp, gopacket.Payload(payload)); err != nil {
		t.Fatalf("SerializeLayers() error = %v", err)
	}

	packet := gopacket.NewPacket(buf.Bytes(), layers.LayerTypeEthernet, gopacket.Default)
	ev, err := decodeAnnouncement(packet)
	if err != nil {
		t.Fatalf("decodeAnnouncement() error = %v", err)
	}
	if ev.HostName != "ALICE-PC" {
		t.Errorf("HostName = %q, want %q", ev.HostName, "ALICE-PC")
	}
	if ev.SourceIP != "10.0.0.5" {
		t.Errorf("SourceIP = %q, want %q", ev.SourceIP, "10.0.0.5")
	}
}

func TestBuildFilter(t *testing.T) {
	tests := []struct {
		name string
		user string
		want string
	}{
		{
			name: "no user filter",
			user: "",
			want: "udp and port 138",
		},
		{
			name: "user filter combined",
			user: "src net 10.0.0.0/8",
			want: "(udp and port 138) and (src net 10.0.0.0/8)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildFilter(tt.user); got != tt.want {
				t.Errorf("buildFilter(%q) = %q, want %q", tt.user, got, tt.want)
			}
		})
	}
}
