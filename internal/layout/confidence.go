package layout

// Confidence turns a string of per-character OCR digits (0-9, where 9 means
// certain) into a 0-100 score. Every non-zero digit earns one extra point so
// that a run of nines scores 100. Characters that are not digits score nothing
// but still count toward the length. The empty string scores 0.
func Confidence(digits string) int {
	total, n := 0, 0
	for _, r := range digits {
		n++
		if r < '0' || r > '9' {
			continue
		}
		d := int(r - '0')
		total += d
		if d != 0 {
			total++
		}
	}
	if n == 0 {
		return 0
	}
	return total * 10 / n
}
