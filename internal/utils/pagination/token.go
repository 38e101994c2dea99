package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano

// DefaultLimit and MaxLimit bound page sizes for list endpoints.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// Cursor is the position of the last row of a page of journal entries ordered by
// entry date, creation time and id, all descending.
type Cursor struct {
	EntryDate time.Time
	CreatedAt time.Time
	EntryID   string
}

// EncodeToken creates a base64 encoded token from a cursor.
func EncodeToken(c Cursor) string {
	tokenStr := fmt.Sprintf("%s|%s|%s", c.EntryDate.Format(timeFormat), c.CreatedAt.Format(timeFormat), c.EntryID)
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken parses the base64 encoded token back into a cursor.
func DecodeToken(token string) (Cursor, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 3)
	if len(parts) != 3 || parts[2] == "" {
		return Cursor{}, fmt.Errorf("invalid pagination token format (split)")
	}

	entryDate, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (entry date parse): %w", err)
	}
	createdAt, err := time.Parse(timeFormat, parts[1])
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (created_at parse): %w", err)
	}

	return Cursor{EntryDate: entryDate, CreatedAt: createdAt, EntryID: parts[2]}, nil
}

// After reports whether a row at (entryDate, createdAt, entryID) sorts after the cursor
// in descending order, i.e. belongs on the next page.
func (c Cursor) After(entryDate, createdAt time.Time, entryID string) bool {
	if !entryDate.Equal(c.EntryDate) {
		return entryDate.Before(c.EntryDate)
	}
	if !createdAt.Equal(c.CreatedAt) {
		return createdAt.Before(c.CreatedAt)
	}
	return entryID < c.EntryID
}

// NormalizeLimit clamps a requested page size.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
