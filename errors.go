package main

import (
	"fmt"
	"time"
)

// BotError Description of BOT error
type BotError struct {
	When time.Time
	What string
}

func (e *BotError) Error() string {
	return fmt.Sprintf("at %v, %s", e.When, e.What)
}

func botErrorf(format string, args ...interface{}) *BotError {
	return &BotError{time.Now(), fmt.Sprintf(format, args...)}
}

// ClaimError is returned when the claim endpoint answers with anything but 200
type ClaimError struct {
	ItemID     string
	StatusCode int
	Body       string
}

func (e *ClaimError) Error() string {
	return fmt.Sprintf("Failed to claim reward ID: %s, Status Code: %d", e.ItemID, e.StatusCode)
}
