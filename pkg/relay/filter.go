package relay

// Mouse control frames embedded in the lower stream:
// 0x57 0xAB 0x02 flags x x x, with the middle button in bit 2 of flags.
const (
	FrameLen = 7

	flagsIndex = 3
	middleBit  = 1 << 2
)

var frameHeader = [3]byte{0x57, 0xAB, 0x02}

// MouseFrame builds a mouse control frame with the given button flags.
func MouseFrame(flags, b4, b5, b6 byte) []byte {
	return []byte{frameHeader[0], frameHeader[1], frameHeader[2], flags, b4, b5, b6}
}

// IsMiddleClick reports whether frame is a mouse control frame with the
// middle button pressed.
func IsMiddleClick(frame []byte) bool {
	return len(frame) >= FrameLen &&
		frame[0] == frameHeader[0] && frame[1] == frameHeader[1] && frame[2] == frameHeader[2] &&
		frame[flagsIndex]&middleBit != 0
}

// Filter appends chunk to dst, leaving out every mouse frame with the
// middle button pressed, and returns the extended slice together with the
// number of frames it left out. The chunk is scanned in 7-byte strides from
// its start; a trailing partial stride is always forwarded. Frames split
// across chunks are not reassembled. With enabled false the chunk is copied
// verbatim.
func Filter(dst, chunk []byte, enabled bool) (out []byte, middles int) {
	if !enabled {
		return append(dst, chunk...), 0
	}

	i := 0
	for ; i+FrameLen <= len(chunk); i += FrameLen {
		stride := chunk[i : i+FrameLen]
		if IsMiddleClick(stride) {
			middles++
			continue
		}
		dst = append(dst, stride...)
	}
	return append(dst, chunk[i:]...), middles
}
