// Package codec implements the posting-list wire format shared by the
// merger (encoder) and the query engine (decoder): varbyte integer coding,
// delta ("gap") coding for ascending docID runs, and a fixed-width binary
// alternative. No dependencies — this is the foundational package for the
// on-disk index format.
package codec

import "io"

// EncodeVarbyte appends the varbyte encoding of v to dst and returns the
// extended slice. Each unsigned integer is emitted as 7-bit groups from
// least-significant to most-significant; continuation bytes have the high
// bit clear, the final byte has the high bit set.
//
//	0     -> 0x80
//	1     -> 0x81
//	127   -> 0xFF
//	128   -> 0x00 0x81
//	16383 -> 0x7F 0xFF
func EncodeVarbyte(dst []byte, v uint64) []byte {
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v == 0 {
			return append(dst, b|0x80)
		}
		dst = append(dst, b)
	}
}

// ByteReader is the minimal surface DecodeVarbyte needs; *bufio.Reader and
// bytes.Reader both satisfy it, so decoding is streaming-safe across
// whatever buffer boundaries the underlying io.Reader imposes.
type ByteReader interface {
	ReadByte() (byte, error)
}

// DecodeVarbyte reads one varbyte-encoded unsigned integer from r.
// Returns io.ErrUnexpectedEOF if the stream ends after at least one byte of
// the integer but before a terminal byte (high bit set) is seen; a stream
// that is already exhausted yields io.EOF.
func DecodeVarbyte(r ByteReader) (uint64, error) {
	var result uint64
	var shift uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF && shift > 0 {
				return 0, io.ErrUnexpectedEOF
			}
			return 0, err
		}
		result |= uint64(b&0x7F) << shift
		if b&0x80 != 0 {
			return result, nil
		}
		shift += 7
	}
}

// EncodeVarbyteSlice encodes every value in vals, concatenated in order.
func EncodeVarbyteSlice(vals []uint32) []byte {
	// Most postings fit in 1-2 bytes; size the buffer for the common case
	// and let append grow it for outliers.
	dst := make([]byte, 0, len(vals)*2)
	for _, v := range vals {
		dst = EncodeVarbyte(dst, uint64(v))
	}
	return dst
}

// DecodeVarbyteSlice reads exactly count varbyte-encoded values from r.
func DecodeVarbyteSlice(r ByteReader, count int) ([]uint32, error) {
	out := make([]uint32, count)
	for i := 0; i < count; i++ {
		v, err := DecodeVarbyte(r)
		if err != nil {
			return nil, err
		}
		out[i] = uint32(v)
	}
	return out, nil
}
