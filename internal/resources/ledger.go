package resources

import (
	"errors"
	"fmt"
)

// ErrNegativeCost is returned for cost lines that would credit instead of debit.
var ErrNegativeCost = errors.New("cost amounts must not be negative")

// Ledger holds the balance of every resource. The zero value is empty and ready to use.
type Ledger struct {
	balances map[Resource]int
}

// NewLedger returns a ledger seeded with the given starting balances.
func NewLedger(initial map[Resource]int) *Ledger {
	l := &Ledger{balances: make(map[Resource]int, len(all))}
	for r, amount := range initial {
		l.balances[r] = amount
	}
	return l
}

// Balance returns the current amount of r.
func (l *Ledger) Balance(r Resource) int {
	return l.balances[r]
}

// CanAfford returns nil when every line of costs is covered, and the first
// shortfall otherwise. Repeated resources are summed.
func (l *Ledger) CanAfford(costs []Cost) error {
	needed := make(map[Resource]int, len(costs))
	order := make([]Resource, 0, len(costs))
	for _, c := range costs {
		if c.Amount < 0 {
			return fmt.Errorf("%w: %d %s", ErrNegativeCost, c.Amount, c.Resource)
		}
		if _, seen := needed[c.Resource]; !seen {
			order = append(order, c.Resource)
		}
		needed[c.Resource] += c.Amount
	}

	for _, r := range order {
		if have := l.balances[r]; have < needed[r] {
			return &InsufficientError{Resource: r, Shortfall: needed[r] - have}
		}
	}
	return nil
}

// TrySpend deducts costs only if all of them can be paid. On failure no
// balance changes.
func (l *Ledger) TrySpend(costs []Cost) error {
	if err := l.CanAfford(costs); err != nil {
		return err
	}
	for _, c := range costs {
		l.Remove(c.Resource, c.Amount)
	}
	return nil
}

// Add credits amount of r.
func (l *Ledger) Add(r Resource, amount int) {
	if l.balances == nil {
		l.balances = make(map[Resource]int, len(all))
	}
	l.balances[r] += amount
}

// Remove debits amount of r without checking. Going negative is a caller bug.
func (l *Ledger) Remove(r Resource, amount int) {
	if amount < 0 || l.balances[r] < amount {
		panic(fmt.Sprintf("resources: removing %d %s from balance %d", amount, r, l.balances[r]))
	}
	l.balances[r] -= amount
}

// Snapshot returns a copy of every balance, including zero ones.
func (l *Ledger) Snapshot() map[Resource]int {
	out := make(map[Resource]int, len(all))
	for _, r := range all {
		out[r] = l.balances[r]
	}
	return out
}
