package normalizer

import (
	"strconv"
	"strings"
)

var numberNoise = strings.NewReplacer(
	"$", "", "€", "", "£", "", "¥", "",
	",", "", "%", "", "+", "", " ", "", "\t", "", "\u00a0", "",
)

// ParseNumber coerces a brokerage-formatted cell into a float.
// "(12.50)" is -12.5; blanks, "--" and "n/a" are 0; anything unparseable is 0.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "-", "--", "n/a", "na", "none", "null":
		return 0
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}

	s = numberNoise.Replace(s)
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = s[1:]
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	if negative {
		return -v
	}
	return v
}

func absNumber(s string) float64 {
	v := ParseNumber(s)
	if v < 0 {
		return -v
	}
	return v
}
