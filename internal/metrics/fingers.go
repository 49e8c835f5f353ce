package metrics

import (
	"math"
	"unicode"
)

// Finger bucket names used in TypingResults.FingerUtilization.
const (
	FingerLeftPinky   = "leftPinky"
	FingerLeftRing    = "leftRing"
	FingerLeftMiddle  = "leftMiddle"
	FingerLeftIndex   = "leftIndex"
	FingerRightIndex  = "rightIndex"
	FingerRightMiddle = "rightMiddle"
	FingerRightRing   = "rightRing"
	FingerRightPinky  = "rightPinky"
	FingerThumbs      = "thumbs"
	FingerUnknown     = "unknown"
)

var fingerNames = []string{
	FingerLeftPinky, FingerLeftRing, FingerLeftMiddle, FingerLeftIndex,
	FingerRightIndex, FingerRightMiddle, FingerRightRing, FingerRightPinky,
	FingerThumbs, FingerUnknown,
}

// charFinger maps lowercase characters to the standard touch-typing
// finger on a QWERTY layout. Characters outside the table fall into the
// unknown bucket.
var charFinger = map[rune]string{
	'`': FingerLeftPinky, '~': FingerLeftPinky, '1': FingerLeftPinky, '!': FingerLeftPinky,
	'q': FingerLeftPinky, 'a': FingerLeftPinky, 'z': FingerLeftPinky,
	'2': FingerLeftRing, '@': FingerLeftRing, 'w': FingerLeftRing, 's': FingerLeftRing, 'x': FingerLeftRing,
	'3': FingerLeftMiddle, '#': FingerLeftMiddle, 'e': FingerLeftMiddle, 'd': FingerLeftMiddle, 'c': FingerLeftMiddle,
	'4': FingerLeftIndex, '$': FingerLeftIndex, '5': FingerLeftIndex, '%': FingerLeftIndex,
	'r': FingerLeftIndex, 'f': FingerLeftIndex, 'v': FingerLeftIndex,
	't': FingerLeftIndex, 'g': FingerLeftIndex, 'b': FingerLeftIndex,
	'6': FingerRightIndex, '^': FingerRightIndex, '7': FingerRightIndex, '&': FingerRightIndex,
	'y': FingerRightIndex, 'h': FingerRightIndex, 'n': FingerRightIndex,
	'u': FingerRightIndex, 'j': FingerRightIndex, 'm': FingerRightIndex,
	'8': FingerRightMiddle, '*': FingerRightMiddle, 'i': FingerRightMiddle, 'k': FingerRightMiddle,
	',': FingerRightMiddle, '<': FingerRightMiddle,
	'9': FingerRightRing, '(': FingerRightRing, 'o': FingerRightRing, 'l': FingerRightRing,
	'.': FingerRightRing, '>': FingerRightRing,
	'0': FingerRightPinky, ')': FingerRightPinky, '-': FingerRightPinky, '_': FingerRightPinky,
	'=': FingerRightPinky, '+': FingerRightPinky, 'p': FingerRightPinky,
	';': FingerRightPinky, ':': FingerRightPinky, '\'': FingerRightPinky, '"': FingerRightPinky,
	'[': FingerRightPinky, '{': FingerRightPinky, ']': FingerRightPinky, '}': FingerRightPinky,
	'/': FingerRightPinky, '?': FingerRightPinky, '\\': FingerRightPinky, '|': FingerRightPinky,
	' ': FingerThumbs,
}

// FingerUtilization classifies every typed character into a finger
// bucket and returns the percentage distribution, rounded to two
// decimals. Empty text yields an all-zero map.
func FingerUtilization(typed string) map[string]float64 {
	counts := map[string]int{}
	total := 0
	for _, r := range typed {
		finger, ok := charFinger[unicode.ToLower(r)]
		if !ok {
			finger = FingerUnknown
		}
		counts[finger]++
		total++
	}

	out := make(map[string]float64, len(fingerNames))
	for _, name := range fingerNames {
		out[name] = 0
	}
	if total == 0 {
		return out
	}
	for name, count := range counts {
		out[name] = round2(float64(count) / float64(total) * 100)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
