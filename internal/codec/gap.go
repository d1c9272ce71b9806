package codec

// ToGaps converts a strictly-ascending docID sequence into its gap
// ("delta-from-previous, first element delta-from-zero") representation.
func ToGaps(ids []uint32) []uint32 {
	gaps := make([]uint32, len(ids))
	var prev uint32
	for i, id := range ids {
		gaps[i] = id - prev
		prev = id
	}
	return gaps
}

// FromGaps reconstructs the original ascending docID sequence from its gap
// representation by running a cumulative sum starting at zero.
func FromGaps(gaps []uint32) []uint32 {
	ids := make([]uint32, len(gaps))
	var sum uint32
	for i, g := range gaps {
		sum += g
		ids[i] = sum
	}
	return ids
}

// EncodeGapVarbyte gap-encodes an ascending docID list and then varbyte
// encodes the resulting deltas. This is the format used for the final,
// merged index's docID runs.
func EncodeGapVarbyte(ids []uint32) []byte {
	return EncodeVarbyteSlice(ToGaps(ids))
}

// DecodeGapVarbyte reads count gap-coded varbyte deltas from r and returns
// the reconstructed ascending docID list.
func DecodeGapVarbyte(r ByteReader, count int) ([]uint32, error) {
	gaps, err := DecodeVarbyteSlice(r, count)
	if err != nil {
		return nil, err
	}
	return FromGaps(gaps), nil
}
