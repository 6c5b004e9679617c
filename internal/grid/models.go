package grid

import (
	"encoding/json"
	"fmt"
	"strings"

	"tinyplanet-server/internal/resources"
	"tinyplanet-server/internal/tile"
)

// Reason names why a placement was turned down.
type Reason string

const (
	ReasonOccupied              Reason = "occupied"
	ReasonTooClose              Reason = "too_close"
	ReasonInsufficientResources Reason = "insufficient_resources"
	ReasonOutOfRange            Reason = "out_of_range"
)

// Rejection is the structured result of a failed validation. It is an
// expected outcome, reported back to the player, never a fault.
type Rejection struct {
	Reason    Reason             `json:"reason"`
	Blocking  []tile.ID          `json:"blocking,omitempty"`
	Resource  resources.Resource `json:"-"`
	Shortfall int                `json:"shortfall,omitempty"`
	Detail    string             `json:"detail,omitempty"`
}

func (r *Rejection) Error() string {
	var b strings.Builder
	b.WriteString("placement rejected: ")
	b.WriteString(string(r.Reason))
	if len(r.Blocking) > 0 {
		fmt.Fprintf(&b, " by tiles %v", r.Blocking)
	}
	if r.Reason == ReasonInsufficientResources {
		fmt.Fprintf(&b, " (%s short by %d)", r.Resource, r.Shortfall)
	}
	if r.Detail != "" {
		b.WriteString(": ")
		b.WriteString(r.Detail)
	}
	return b.String()
}

// MarshalJSON names the resource only for shortfalls, since the zero
// resource is a real one.
func (r Rejection) MarshalJSON() ([]byte, error) {
	type plain Rejection
	out := struct {
		plain
		Resource string `json:"resource,omitempty"`
	}{plain: plain(r)}
	if r.Reason == ReasonInsufficientResources {
		out.Resource = r.Resource.String()
	}
	return json.Marshal(out)
}

// FromInsufficient turns a ledger shortfall into a rejection.
func FromInsufficient(err *resources.InsufficientError) *Rejection {
	return &Rejection{
		Reason:    ReasonInsufficientResources,
		Resource:  err.Resource,
		Shortfall: err.Shortfall,
	}
}
