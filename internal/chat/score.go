package chat

import "math"

// score is a numeric rating from the model. Models sometimes answer 85.0 or
// 88.5 where an integer was asked for, so scores decode as floats and are
// rounded afterwards.
type score float64

func (s score) int() int {
	return int(math.Round(float64(s)))
}
