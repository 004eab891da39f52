package domain

import "encoding/binary"

// Container header layout. All integers are little-endian.
//
//	[0,8)   name, zero-padded
//	[8,12)  type tag
//	[12,16) compressed length
//	[16,20) raw length
//	[20,..) compressed bytes
const (
	NameSize   = 8
	HeaderSize = NameSize + TypeTagSize + 4 + 4

	offTypeTag    = NameSize
	offCompressed = offTypeTag + TypeTagSize
	offRaw        = offCompressed + 4
)

// Container is the framed, compressed representation of one SourceFile.
// The zero value is an empty container with no header.
type Container struct {
	data []byte
}

// NewContainer assembles a container from its fields. The compressed
// length field is taken from len(compressed).
func NewContainer(name [NameSize]byte, typeTag [TypeTagSize]byte, rawLength uint32, compressed []byte) Container {
	data := make([]byte, HeaderSize+len(compressed))
	copy(data, name[:])
	copy(data[offTypeTag:], typeTag[:])
	binary.LittleEndian.PutUint32(data[offCompressed:], uint32(len(compressed)))
	binary.LittleEndian.PutUint32(data[offRaw:], rawLength)
	copy(data[HeaderSize:], compressed)
	return Container{data: data}
}

// Bytes returns the encoded container. The slice is shared and must not be modified.
func (c Container) Bytes() []byte { return c.data }

// Len returns the encoded container length in bytes.
func (c Container) Len() int { return len(c.data) }

// Name returns the raw 8-byte name field, padding included.
func (c Container) Name() []byte {
	if len(c.data) < HeaderSize {
		return nil
	}
	return c.data[:NameSize]
}

// TypeTag returns the 4-byte type tag field.
func (c Container) TypeTag() []byte {
	if len(c.data) < HeaderSize {
		return nil
	}
	return c.data[offTypeTag:offCompressed]
}

// CompressedLength returns the compressed length header field.
func (c Container) CompressedLength() uint32 {
	if len(c.data) < HeaderSize {
		return 0
	}
	return binary.LittleEndian.Uint32(c.data[offCompressed:])
}

// RawLength returns the uncompressed length header field.
func (c Container) RawLength() uint32 {
	if len(c.data) < HeaderSize {
		return 0
	}
	return binary.LittleEndian.Uint32(c.data[offRaw:])
}

// Compressed returns the compressed payload following the header.
func (c Container) Compressed() []byte {
	if len(c.data) < HeaderSize {
		return nil
	}
	return c.data[HeaderSize:]
}
