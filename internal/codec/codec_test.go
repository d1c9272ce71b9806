package codec

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVarbyteBoundaryBytes(t *testing.T) {
	// S2: encode [0, 127, 128, 16383, 16384, 2097151, 2097152] and assert the
	// exact byte sequence worked example.
	vals := []uint64{0, 127, 128, 16383, 16384, 2097151, 2097152}
	var got []byte
	for _, v := range vals {
		got = EncodeVarbyte(got, v)
	}

	want := []byte{
		0x80,
		0xFF,
		0x00, 0x81,
		0x7F, 0xFF,
		0x00, 0x00, 0x81,
		0x7F, 0x7F, 0xFF,
		0x00, 0x00, 0x00, 0x81,
	}
	require.Equal(t, want, got)

	r := bufio.NewReader(bytes.NewReader(got))
	for _, v := range vals {
		decoded, err := DecodeVarbyte(r)
		require.NoError(t, err)
		require.Equal(t, v, decoded)
	}
}

func TestVarbyteRoundTripSlice(t *testing.T) {
	vals := []uint32{0, 1, 2, 127, 128, 200, 16383, 16384, 1 << 20, 1<<32 - 1}
	encoded := EncodeVarbyteSlice(vals)

	r := bufio.NewReader(bytes.NewReader(encoded))
	decoded, err := DecodeVarbyteSlice(r, len(vals))
	require.NoError(t, err)
	require.Equal(t, vals, decoded)
}

func TestVarbyteTruncatedStreamIsFatal(t *testing.T) {
	// 128 encodes to two bytes; truncate to one and expect an error.
	encoded := EncodeVarbyteSlice([]uint32{128})
	r := bufio.NewReader(bytes.NewReader(encoded[:1]))
	_, err := DecodeVarbyte(r)
	require.Error(t, err)
}

func TestGapRoundTrip(t *testing.T) {
	ids := []uint32{0, 2, 5, 5000, 5001, 70000}
	gaps := ToGaps(ids)
	require.Equal(t, ids, FromGaps(gaps))
}

func TestGapEncodeDecodeVarbyte(t *testing.T) {
	ids := []uint32{3, 17, 18, 9000}
	encoded := EncodeGapVarbyte(ids)

	r := bufio.NewReader(bytes.NewReader(encoded))
	decoded, err := DecodeGapVarbyte(r, len(ids))
	require.NoError(t, err)
	require.Equal(t, ids, decoded)
}

func TestBinaryCodecRoundTrip(t *testing.T) {
	vals := []uint32{0, 1, 9999, 1 << 30}
	c := BinaryCodec{}
	encoded := c.EncodeInts(vals)

	decoded, err := c.DecodeInts(bytes.NewReader(encoded), len(vals))
	require.NoError(t, err)
	require.Equal(t, vals, decoded)
}

func TestBinaryCodecCountMismatchIsFatal(t *testing.T) {
	c := BinaryCodec{}
	encoded := c.EncodeInts([]uint32{1, 2, 3})
	_, err := c.DecodeInts(bytes.NewReader(encoded), 5)
	require.Error(t, err)
}

func TestForFormatDispatch(t *testing.T) {
	require.IsType(t, VarbyteCodec{}, ForFormat(Vbyte))
	require.IsType(t, BinaryCodec{}, ForFormat(Bin))
}

func TestVarbyteCodecViaGenericReader(t *testing.T) {
	// Exercises byteReaderAdapter: a plain bytes.Reader already implements
	// ReadByte, so wrap it in a reader that only exposes Read to force the
	// adapter path.
	vals := []uint32{5, 300, 70000}
	c := VarbyteCodec{}
	encoded := c.EncodeInts(vals)

	plain := onlyReader{bytes.NewReader(encoded)}
	decoded, err := c.DecodeInts(plain, len(vals))
	require.NoError(t, err)
	require.Equal(t, vals, decoded)
}

type onlyReader struct {
	r *bytes.Reader
}

func (o onlyReader) Read(p []byte) (int, error) { return o.r.Read(p) }
