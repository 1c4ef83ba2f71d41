package hardware

import "math"

// Motor constants shared with the firmware. A belt delta in millimetres
// times StepsPerMM, rounded, is the signed step count for one instruction.
const (
	// stepsPerRev is the number of motor steps per pulley revolution.
	stepsPerRev = 3200
	// wheelDiameter is the pulley wheel diameter in millimetres.
	wheelDiameter = 12.63
)

// StepsPerMM returns the number of motor steps that move a belt one
// millimetre.
func StepsPerMM() float64 {
	return stepsPerRev / (math.Pi * wheelDiameter)
}

// StepsToMM returns the belt travel in millimetres for a signed step count.
func StepsToMM(steps int16) float64 {
	return float64(steps) / StepsPerMM()
}

// MMToSteps returns the unrounded step count for a belt travel in
// millimetres.
func MMToSteps(mm float64) float64 {
	return mm * StepsPerMM()
}

// CartesianToBelt converts a coordinate relative to the left motor shaft
// into left and right belt lengths. All values are in millimetres.
func CartesianToBelt(x, y, motorInterspace float64) (left, right float64) {
	left = math.Sqrt(x*x + y*y)
	right = math.Sqrt((motorInterspace-x)*(motorInterspace-x) + y*y)
	return left, right
}

// BeltToCartesian converts belt lengths into a coordinate relative to the
// left motor shaft, growing rightwards and downwards. A physically
// unreachable belt pair yields NaN for y, which callers must treat as
// out of bounds.
func BeltToCartesian(leftLength, rightLength, motorInterspace float64) (x, y float64) {
	x = (motorInterspace*motorInterspace + leftLength*leftLength - rightLength*rightLength) / (2 * motorInterspace)
	y = math.Sqrt(leftLength*leftLength - x*x)
	return x, y
}
