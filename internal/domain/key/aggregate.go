package key

import "strings"

// Bundle holds the notifiable keys destined for one recipient, in manifest
// row order.
type Bundle struct {
	Recipient string
	Keys      []Evaluated
}

// Aggregator groups notifiable keys by recipient address. One key listing
// several recipients is fanned out to every one of them; the entries are
// shared read-only data, not owned by any single bundle.
type Aggregator struct {
	bundles map[string]*Bundle
	order   []string // recipients in first-seen order
}

func NewAggregator() *Aggregator {
	return &Aggregator{bundles: make(map[string]*Bundle)}
}

// Add appends a notifiable key to the bundle of each of its recipients.
// Addresses are trimmed; empty addresses are dropped silently.
// Non-notifiable keys are ignored.
func (a *Aggregator) Add(evaluated Evaluated) {
	if !evaluated.Notifiable {
		return
	}
	for _, recipient := range evaluated.Recipients {
		addr := strings.TrimSpace(recipient)
		if addr == "" {
			continue
		}
		bundle, ok := a.bundles[addr]
		if !ok {
			bundle = &Bundle{Recipient: addr}
			a.bundles[addr] = bundle
			a.order = append(a.order, addr)
		}
		bundle.Keys = append(bundle.Keys, evaluated)
	}
}

// Bundles returns the accumulated bundles in first-seen recipient order.
func (a *Aggregator) Bundles() []*Bundle {
	bundles := make([]*Bundle, 0, len(a.order))
	for _, addr := range a.order {
		bundles = append(bundles, a.bundles[addr])
	}
	return bundles
}

// Len returns the number of distinct recipients seen so far.
func (a *Aggregator) Len() int {
	return len(a.order)
}
