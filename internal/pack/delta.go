package pack

// maxPrealloc caps preallocation for sizes read from pack and delta headers.
const maxPrealloc = 1 << 20

// ApplyDelta rebuilds a target object from base and delta instructions.
func ApplyDelta(base, delta []byte) ([]byte, error) {
	srcSize, delta, err := deltaSize(delta)
	if err != nil {
		return nil, err
	}
	if srcSize != uint64(len(base)) {
		return nil, corrupt("delta base size mismatch").
			WithContext("expected", srcSize).
			WithContext("actual", len(base))
	}
	dstSize, delta, err := deltaSize(delta)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, min(dstSize, maxPrealloc))
	for len(delta) > 0 {
		cmd := delta[0]
		delta = delta[1:]
		switch {
		case cmd&0x80 != 0:
			var offset, size uint64
			for i := range 4 {
				if cmd&(1<<i) != 0 {
					if len(delta) == 0 {
						return nil, corrupt("truncated delta copy")
					}
					offset |= uint64(delta[0]) << (8 * i)
					delta = delta[1:]
				}
			}
			for i := range 3 {
				if cmd&(0x10<<i) != 0 {
					if len(delta) == 0 {
						return nil, corrupt("truncated delta copy")
					}
					size |= uint64(delta[0]) << (8 * i)
					delta = delta[1:]
				}
			}
			if size == 0 {
				size = 0x10000
			}
			if offset+size > uint64(len(base)) {
				return nil, corrupt("delta copy out of range")
			}
			out = append(out, base[offset:offset+size]...)
		case cmd != 0:
			n := int(cmd)
			if n > len(delta) {
				return nil, corrupt("truncated delta insert")
			}
			out = append(out, delta[:n]...)
			delta = delta[n:]
		default:
			return nil, corrupt("reserved delta opcode")
		}
	}
	if uint64(len(out)) != dstSize {
		return nil, corrupt("delta result size mismatch").
			WithContext("expected", dstSize).
			WithContext("actual", len(out))
	}
	return out, nil
}

// deltaSize reads a little-endian base-128 size.
func deltaSize(b []byte) (uint64, []byte, error) {
	var size uint64
	var shift uint
	for i, c := range b {
		size |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			return size, b[i+1:], nil
		}
		shift += 7
		if shift > 63 {
			break
		}
	}
	return 0, nil, corrupt("truncated delta header")
}
