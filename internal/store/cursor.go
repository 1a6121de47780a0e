package store

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"

	"circulyte-backend/internal/models"
)

var ErrInvalidCursor = errors.New("store: invalid cursor")

// BatchCursor marks the last batch of a page in (dateReceived desc, id desc) order.
type BatchCursor struct {
	DateReceived time.Time
	ID           string
}

func CursorFor(b models.Batch) *BatchCursor {
	return &BatchCursor{DateReceived: b.DateReceived, ID: b.ID}
}

// Encode renders the cursor as an opaque url-safe token.
func (c BatchCursor) Encode() string {
	raw := strconv.FormatInt(c.DateReceived.UnixNano(), 10) + "|" + c.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func DecodeBatchCursor(token string) (*BatchCursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	nanos, id, ok := strings.Cut(string(raw), "|")
	if !ok || id == "" {
		return nil, ErrInvalidCursor
	}
	n, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	return &BatchCursor{DateReceived: time.Unix(0, n).UTC(), ID: id}, nil
}

// Precedes reports whether b sorts strictly after the cursor in page order,
// i.e. whether b belongs on a later page.
func (c BatchCursor) Precedes(b models.Batch) bool {
	if b.DateReceived.Before(c.DateReceived) {
		return true
	}
	return b.DateReceived.Equal(c.DateReceived) && b.ID < c.ID
}
