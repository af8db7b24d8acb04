// Package compass maps wind direction in degrees to a 16-point compass label.
package compass

// Unknown is returned for a missing or out-of-range direction.
const Unknown = "Unknown"

type band struct {
	label      string
	start, end int // [start, end)
}

// North is handled separately because it wraps around 0.
var bands = []band{
	{"NNE", 11, 34},
	{"NE", 34, 56},
	{"ENE", 56, 79},
	{"E", 79, 101},
	{"ESE", 101, 124},
	{"SE", 124, 146},
	{"SSE", 146, 169},
	{"S", 169, 191},
	{"SSW", 191, 214},
	{"SW", 214, 236},
	{"WSW", 236, 259},
	{"W", 259, 281},
	{"WNW", 281, 304},
	{"NW", 304, 326},
	{"NNW", 326, 349},
}

// Resolve returns the compass label for deg, truncated to whole degrees.
// A nil deg or a value outside [0, 360) yields Unknown.
func Resolve(deg *float64) string {
	if deg == nil {
		return Unknown
	}
	if *deg < 0 || *deg >= 360 {
		return Unknown
	}
	d := int(*deg)
	if d >= 349 || d < 11 {
		return "N"
	}
	for _, b := range bands {
		if d >= b.start && d < b.end {
			return b.label
		}
	}
	return Unknown
}
