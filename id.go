package lorebase

import (
	"time"

	"github.com/google/uuid"
)

// NewID returns a UUIDv7 string. Document and chunk IDs are time-sortable
// so records created together cluster in index order.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// NowUnix is the creation timestamp used across document and chunk records,
// in Unix seconds.
func NowUnix() int64 {
	return time.Now().Unix()
}
