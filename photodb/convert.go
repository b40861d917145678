package photodb

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	oneKBAsBytes = 1000.0
	oneMBAsBytes = 1000000.0
)

var ErrTimestampRange = errors.New("timestamp outside representable calendar range")

// MacEpoch is the reference instant of the device timestamps.
var MacEpoch = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)

// maxEpoch is the last second that still falls inside year 9999.
var maxEpoch = uint64(time.Date(10000, time.January, 1, 0, 0, 0, 0, time.UTC).Unix() - MacEpoch.Unix() - 1)

// DecodeTimestamp converts seconds since MacEpoch into a UTC time. Zero is the "unset"
// sentinel and maps to MacEpoch itself.
func DecodeTimestamp(epoch uint64) (time.Time, error) {
	if epoch > maxEpoch {
		return time.Time{}, fmt.Errorf("epoch %d: %w", epoch, ErrTimestampRange)
	}
	return time.Unix(MacEpoch.Unix()+int64(epoch), 0).UTC(), nil
}

// FormatSize renders a byte count with the largest of KB or MB whose value is at least 1.
// A KB value that would display as 1000.00 is promoted to MB.
func FormatSize(bytes uint64) string {
	sizeInKB := float64(bytes) / oneKBAsBytes
	sizeInMB := float64(bytes) / oneMBAsBytes

	kb := fmt.Sprintf("%.2f", sizeInKB)
	if sizeInMB < 1.0 && kb != "1000.00" {
		return kb + " KB"
	}
	return fmt.Sprintf("%.2f MB", sizeInMB)
}

var pathSeparators = strings.NewReplacer(":", "/", `\`, "/")

// CanonicalPath maps device path separators (':' and '\') onto '/'.
// ":Thumbs:F1019_1.ithmb" becomes "/Thumbs/F1019_1.ithmb".
func CanonicalPath(path string) string {
	return pathSeparators.Replace(path)
}
