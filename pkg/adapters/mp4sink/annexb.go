package mp4sink

const (
	nalTypeSPS = 7
	nalTypePPS = 8
)

// parseAnnexB splits an Annex B byte stream into NAL units.
func parseAnnexB(data []byte) [][]byte {
	var nalus [][]byte
	start := -1
	i := 0

	for i+2 < len(data) {
		if data[i] == 0 && data[i+1] == 0 && data[i+2] == 1 {
			if start >= 0 {
				nalus = append(nalus, trimZeros(data[start:i]))
			}
			i += 3
			start = i
			continue
		}
		i++
	}

	if start >= 0 && start < len(data) {
		nalus = append(nalus, data[start:])
	}
	return nalus
}

// trimZeros drops the leading zero of a four byte start code that follows.
func trimZeros(nalu []byte) []byte {
	for len(nalu) > 0 && nalu[len(nalu)-1] == 0 {
		nalu = nalu[:len(nalu)-1]
	}
	return nalu
}

// parameterSets returns the first SPS and PPS among nalus.
func parameterSets(nalus [][]byte) (sps, pps []byte) {
	for _, nalu := range nalus {
		if len(nalu) == 0 {
			continue
		}
		switch nalu[0] & 0x1F {
		case nalTypeSPS:
			if sps == nil {
				sps = nalu
			}
		case nalTypePPS:
			if pps == nil {
				pps = nalu
			}
		}
	}
	return sps, pps
}

// toAVCC converts NAL units to length-prefixed form. Parameter sets are
// dropped since they live in the avcC box.
func toAVCC(nalus [][]byte) []byte {
	size := 0
	for _, nalu := range nalus {
		size += 4 + len(nalu)
	}

	out := make([]byte, 0, size)
	for _, nalu := range nalus {
		if len(nalu) == 0 {
			continue
		}
		if t := nalu[0] & 0x1F; t == nalTypeSPS || t == nalTypePPS {
			continue
		}
		n := len(nalu)
		out = append(out, byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
		out = append(out, nalu...)
	}
	return out
}
