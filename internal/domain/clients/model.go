package clients

import (
	"strconv"
	"time"
)

type Client struct {
	ID        int64
	Name      string
	Active    bool
	CreatedAt time.Time
}

// LedgerID is the client id as stored on material lots.
func (c Client) LedgerID() string { return strconv.FormatInt(c.ID, 10) }
