package nli

import "math"

// expStable is math.Exp with a floor so a very negative input (after
// max-subtraction, any non-maximal logit) returns a clean 0 rather than an
// underflow-denormal that varies across platforms.
func expStable(x float64) float64 {
	if x < -745 { // math.Exp underflows to 0 below this on float64
		return 0
	}
	return math.Exp(x)
}
