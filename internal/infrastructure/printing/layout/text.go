package layout

// Ellipsize shortens text so that it fits maxWidth, ending it with an ellipsis.
// Text that already fits is returned unchanged. If not even the ellipsis fits,
// an empty string is returned.
func Ellipsize(m TextMeasurer, text string, font Font, size, maxWidth float64) string {
	if m.MeasureText(text, font, size) <= maxWidth {
		return text
	}
	if m.MeasureText(Ellipsis, font, size) > maxWidth {
		return ""
	}

	runes := []rune(text)
	lo, hi := 0, len(runes)
	// largest prefix length n such that prefix+ellipsis fits
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if m.MeasureText(string(runes[:mid])+Ellipsis, font, size) <= maxWidth {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return trimRightSpace(string(runes[:lo])) + Ellipsis
}

func trimRightSpace(s string) string {
	for len(s) > 0 && (s[len(s)-1] == ' ' || s[len(s)-1] == '\t') {
		s = s[:len(s)-1]
	}
	return s
}

func maxFloat(values ...float64) float64 {
	m := 0.0
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	return m
}
