package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID returns a collision-resistant identifier: the creation time in
// base36 milliseconds followed by a random suffix. IDs sort roughly by
// creation time.
func NewID(now time.Time) string {
	ts := strconv.FormatInt(now.UnixMilli(), 36)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	return ts + "-" + suffix
}
