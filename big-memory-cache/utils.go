package bigmemcache

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	__SegmentVersion = 1
	// totalLen + version + keyLen + a typical key, used to size bigcache entries
	segmentHeaderSize = 4 + 2 + 2 + 256
)

type segment struct {
	key  string
	data []byte
}

func findNearestPowerOf2Num(n uint) uint {
	if (n & (n - 1)) == 0 {
		return n
	}
	k := uint(1)
	for (k << 1) < n {
		k <<= 1
	}
	return k
}

func encodeSegment(key string, data []byte) ([]byte, error) {
	/*
		| totalLen uint32 | version uint16 | keyLen uint16 | key | data |
	*/
	if len(key) > math.MaxUint16 {
		return nil, fmt.Errorf("segment key too long: %d bytes", len(key))
	}
	totalLen := 4 + 2 + 2 + len(key) + len(data)
	if uint64(totalLen) > math.MaxUint32 {
		return nil, fmt.Errorf("segment too large: %d bytes", totalLen)
	}
	raw := make([]byte, totalLen)

	pos := 0
	binary.LittleEndian.PutUint32(raw[pos:], uint32(totalLen))
	pos += 4

	binary.LittleEndian.PutUint16(raw[pos:], __SegmentVersion)
	pos += 2

	// 先存key的大小, 再存实际的字节, 剩余部分都是分段数据
	binary.LittleEndian.PutUint16(raw[pos:], uint16(len(key)))
	pos += 2
	pos += copy(raw[pos:], key)

	pos += copy(raw[pos:], data)

	if pos != totalLen {
		return nil, fmt.Errorf("failed to encode segment, Pos(%v) != TotalLen(%v)", pos, totalLen)
	}
	return raw, nil
}

func decodeSegment(raw []byte) (*segment, error) {
	totalLen := len(raw)
	if totalLen < 8 {
		return nil, fmt.Errorf("segment too short: %d bytes", totalLen)
	}

	pos := 0
	storedTotalLen := binary.LittleEndian.Uint32(raw[pos:])
	if storedTotalLen != uint32(totalLen) {
		return nil, fmt.Errorf("StoredTotalLen(%v) != TotalLen(%v)", storedTotalLen, totalLen)
	}
	pos += 4

	version := binary.LittleEndian.Uint16(raw[pos:])
	if version != __SegmentVersion {
		return nil, fmt.Errorf("unknown segment version %d", version)
	}
	pos += 2

	keyLen := int(binary.LittleEndian.Uint16(raw[pos:]))
	pos += 2
	if pos+keyLen > totalLen {
		return nil, fmt.Errorf("segment key overflows, KeyLen(%v) TotalLen(%v)", keyLen, totalLen)
	}

	var seg segment
	seg.key = string(raw[pos : pos+keyLen])
	pos += keyLen
	seg.data = raw[pos:]

	return &seg, nil
}
