package instruction

import (
	"encoding/binary"
	"time"
)

// EstimateDrawTime estimates how long the machine will take to execute
// the given instruction bytes. Each instruction is dominated by its
// longer motor movement, executed at the machine's maximum step rate.
// minPulseWidth is accepted for forward compatibility and is unused.
//
// The estimate is a UI convenience: on a grammar error the function
// returns zero rather than failing.
func EstimateDrawTime(insBytes []byte, maxMotorSpeed uint32, minPulseWidth uint32) time.Duration {
	_ = minPulseWidth
	if maxMotorSpeed == 0 {
		return 0
	}
	var secs float64
	c := 0
	for {
		s, e, err := nextInstructionBounds(insBytes, c)
		if err == errEndOfStream {
			return time.Duration(secs * float64(time.Second))
		}
		if err != nil {
			return 0
		}
		left := absSteps(int16(binary.BigEndian.Uint16(insBytes[s:])))
		right := absSteps(int16(binary.BigEndian.Uint16(insBytes[s+2:])))
		secs += float64(max(left, right)) / float64(maxMotorSpeed)
		c = e + 1
	}
}

// absSteps widens before negating so math.MinInt16 does not overflow.
func absSteps(v int16) int {
	w := int(v)
	if w < 0 {
		w = -w
	}
	return w
}
