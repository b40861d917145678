package collect

import (
	"errors"
	"fmt"
	"io"

	"github.com/jyothri/ipodphotos/photodb"
)

var ErrTooLarge = errors.New("photo database exceeds size limit")

// DecodeUpload reads at most limit bytes from r and decodes them.
func DecodeUpload(r io.Reader, limit int64) (*photodb.Database, error) {
	buf, err := readLimited(r, limit)
	if err != nil {
		return nil, err
	}
	database, err := photodb.Decode(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %d byte photo database: %w", len(buf), err)
	}
	return database, nil
}

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	buf, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read photo database: %w", err)
	}
	if int64(len(buf)) > limit {
		return nil, fmt.Errorf("%w of %d bytes", ErrTooLarge, limit)
	}
	return buf, nil
}
