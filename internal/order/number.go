package order

import (
	"fmt"
	"regexp"
	"time"
)

var orderNumberPattern = regexp.MustCompile(`^ORD\d{4}\d{6,}$`)

// FormatOrderNumber renders ORD + year + the sequence value, zero padded to
// six digits and widened past 999999.
func FormatOrderNumber(t time.Time, seq int64) string {
	return fmt.Sprintf("ORD%04d%06d", t.Year(), seq)
}

func ValidOrderNumber(s string) bool {
	return orderNumberPattern.MatchString(s)
}
