package domain

// MaxCodes is the largest chunk count a single-byte total field can carry.
const MaxCodes = 255

// Wire-frame layout.
//
//	[0,2)   magic "PT"
//	[2]     sequence number, 1-based
//	[3]     total chunk count
//	[4,20)  chunk checksum
//	[20,36) container checksum
//	[36,..) chunk payload
const (
	ChecksumSize    = 16
	FrameHeaderSize = 2 + 1 + 1 + ChecksumSize + ChecksumSize

	// MaxFrameSize is the byte-mode capacity of version 40 at level L,
	// the largest payload any QR symbol holds.
	MaxFrameSize = 2953

	// MaxBytesPerCode is the largest chunk that still fits one frame.
	MaxBytesPerCode = MaxFrameSize - FrameHeaderSize
)

// FrameMagic marks the start of every wire frame.
var FrameMagic = [2]byte{0x50, 0x54}

// Checksum is a 128-bit digest.
type Checksum [ChecksumSize]byte

// Chunk is one contiguous slice of a Container.
type Chunk struct {
	// Sequence is the 1-based position of this chunk
	Sequence int

	// Total is the number of chunks the container was split into
	Total int

	// Payload is the container slice; shared with the container, read-only
	Payload []byte
}

// WireFrame is the byte sequence carried by one QR code.
type WireFrame struct {
	Sequence          uint8
	Total             uint8
	ChunkChecksum     Checksum
	ContainerChecksum Checksum
	Payload           []byte
}

// Len returns the encoded size of the frame.
func (f WireFrame) Len() int {
	return FrameHeaderSize + len(f.Payload)
}

// Bytes encodes the frame in device order.
func (f WireFrame) Bytes() []byte {
	b := make([]byte, 0, f.Len())
	b = append(b, FrameMagic[:]...)
	b = append(b, f.Sequence, f.Total)
	b = append(b, f.ChunkChecksum[:]...)
	b = append(b, f.ContainerChecksum[:]...)
	b = append(b, f.Payload...)
	return b
}
