package codec

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Format names the on-disk integer encoding. It is a file-format option
// fixed for one build: every chunk and the final index use the same Format.
type Format int

const (
	// Vbyte is the default, space-efficient variable-length encoding.
	Vbyte Format = iota
	// Bin is the fixed-width alternative: a 4-byte little-endian count
	// followed by that many 4-byte little-endian values.
	Bin
)

// Codec encodes and decodes a slice of unsigned 32-bit integers to/from the
// wire format selected by Format. Implementations do not gap-code; callers
// apply ToGaps/FromGaps around docID lists before/after using a Codec.
type Codec interface {
	EncodeInts(vals []uint32) []byte
	DecodeInts(r io.Reader, count int) ([]uint32, error)
}

// ForFormat returns the Codec implementation for the given Format.
func ForFormat(f Format) Codec {
	switch f {
	case Bin:
		return BinaryCodec{}
	default:
		return VarbyteCodec{}
	}
}

// VarbyteCodec implements Codec using the varbyte wire format.
type VarbyteCodec struct{}

func (VarbyteCodec) EncodeInts(vals []uint32) []byte {
	return EncodeVarbyteSlice(vals)
}

func (VarbyteCodec) DecodeInts(r io.Reader, count int) ([]uint32, error) {
	br, ok := r.(ByteReader)
	if !ok {
		br = &byteReaderAdapter{r: r}
	}
	return DecodeVarbyteSlice(br, count)
}

// BinaryCodec implements Codec using the fixed four-little-endian-bytes
// format with a four-byte count prefix.
type BinaryCodec struct{}

func (BinaryCodec) EncodeInts(vals []uint32) []byte {
	dst := make([]byte, 4+4*len(vals))
	binary.LittleEndian.PutUint32(dst[0:4], uint32(len(vals)))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(dst[4+4*i:8+4*i], v)
	}
	return dst
}

func (BinaryCodec) DecodeInts(r io.Reader, count int) ([]uint32, error) {
	var countBuf [4]byte
	if _, err := io.ReadFull(r, countBuf[:]); err != nil {
		return nil, err
	}
	stored := int(binary.LittleEndian.Uint32(countBuf[:]))
	if stored != count {
		return nil, fmt.Errorf("codec: binary count mismatch: stored=%d expected=%d", stored, count)
	}

	buf := make([]byte, 4*count)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	out := make([]uint32, count)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(buf[4*i : 4*i+4])
	}
	return out, nil
}

// byteReaderAdapter exposes ReadByte on an io.Reader that doesn't already
// implement it, so VarbyteCodec.DecodeInts works over any io.Reader.
type byteReaderAdapter struct {
	r   io.Reader
	buf [1]byte
}

func (a *byteReaderAdapter) ReadByte() (byte, error) {
	if _, err := io.ReadFull(a.r, a.buf[:]); err != nil {
		return 0, err
	}
	return a.buf[0], nil
}
