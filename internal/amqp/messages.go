package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

// LedgerEvent announces that a user's ledger changed in one month. It carries
// no amounts; consumers recompute whatever they need from the store.
type LedgerEvent struct {
	ID        uuid.UUID `json:"id"`
	UserID    int64     `json:"user_id"`
	Reason    string    `json:"reason"`
	Year      int       `json:"year"`
	Month     int       `json:"month"`
	Timestamp time.Time `json:"timestamp"`
}

func NewLedgerEvent(userID int64, reason string, month core.Date) *LedgerEvent {
	return &LedgerEvent{
		ID:        uuid.New(),
		UserID:    userID,
		Reason:    reason,
		Year:      month.Year(),
		Month:     month.Month(),
		Timestamp: time.Now(),
	}
}

// Window is the calendar month the event refers to.
func (e *LedgerEvent) Window() core.Window {
	return core.MonthWindow(e.Year, e.Month)
}

func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var e LedgerEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	if e.UserID == 0 || e.Month < 1 || e.Month > 12 {
		return nil, fmt.Errorf("invalid ledger event: user %d, month %d/%d", e.UserID, e.Month, e.Year)
	}
	return &e, nil
}
