package ledger

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// LotStatus is derived from the remaining weight of a lot.
type LotStatus string

const (
	LotActive   LotStatus = "active"
	LotDepleted LotStatus = "depleted"
)

// Lot is one purchased batch of raw fish.
type Lot struct {
	ID          string    `json:"id"`
	ReceivedAt  time.Time `json:"received_at"`
	Supplier    string    `json:"supplier"`
	Species     string    `json:"species"`
	InitialKg   float64   `json:"initial_kg"`
	RemainingKg float64   `json:"remaining_kg"`
	PricePerKg  float64   `json:"price_per_kg"`
	Status      LotStatus `json:"status"`
}

func statusFor(remainingKg float64) LotStatus {
	if remainingKg > 0 {
		return LotActive
	}
	return LotDepleted
}

// LotInput carries the fields entered when a lot is received. ID and ReceivedAt are
// generated when empty.
type LotInput struct {
	ID         string    `json:"id"`
	ReceivedAt time.Time `json:"received_at"`
	Supplier   string    `json:"supplier"`
	Species    string    `json:"species"`
	Kg         float64   `json:"kg"`
	PricePerKg float64   `json:"price_per_kg"`
}

func (in LotInput) validate() error {
	if in.Kg <= 0 {
		return invalid("kg", "must be greater than 0")
	}
	if in.PricePerKg < 0 {
		return invalid("price_per_kg", "must be greater than or equal to 0")
	}
	return nil
}

// NewLotID formats LOT-<yyyymmdd>-<4 hex chars>.
func NewLotID(at time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return "LOT-" + at.Format("20060102") + "-" + suffix
}

// NewRunID returns a short random token for a production run.
func NewRunID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
