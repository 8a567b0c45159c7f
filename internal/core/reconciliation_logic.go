package core

import (
	"fmt"
	"time"
)

// NewSession starts a fresh reconciliation for an order that has never been
// reconciled. Every item starts with zero received and must be completed
// before the session can be saved.
func NewSession(orderID int, parsed ParsedOrder) *Session {
	items := make([]LineItem, len(parsed.Items))
	copy(items, parsed.Items)
	for i := range items {
		zero := 0
		items[i].QuantityReceived = &zero
	}
	return &Session{
		OrderID:      orderID,
		OrderNumber:  parsed.OrderNumber,
		Items:        items,
		State:        StateEditing,
		SkippedLines: parsed.SkippedLines,
	}
}

// NewRevisitSession re-opens an order that already has a saved reconciliation.
// Items with a stored pendency are seeded from it (received so far + recorded
// reason); absence of a pendency means the product was fully received.
func NewRevisitSession(orderID int, parsed ParsedOrder, pendencies []PendencyRecord) *Session {
	byProduct := make(map[string]PendencyRecord, len(pendencies))
	for _, p := range pendencies {
		byProduct[p.Product] = p
	}

	items := make([]LineItem, len(parsed.Items))
	copy(items, parsed.Items)
	for i := range items {
		if p, ok := byProduct[items[i].Name]; ok {
			received := p.QuantityReceived
			items[i].QuantityReceived = &received
			items[i].ShortfallReason = p.ShortfallReason
		} else {
			full := items[i].QuantityOrdered
			items[i].QuantityReceived = &full
		}
	}
	return &Session{
		OrderID:      orderID,
		OrderNumber:  parsed.OrderNumber,
		Items:        items,
		State:        StateEditing,
		Revisit:      true,
		SkippedLines: parsed.SkippedLines,
	}
}

// itemIndex finds a line item by product name.
func (s *Session) itemIndex(product string) (int, error) {
	for i := range s.Items {
		if s.Items[i].Name == product {
			return i, nil
		}
	}
	return 0, &NotFoundError{Kind: "line item", Ref: product}
}

// SetReceived records a received quantity for a product, clamping out-of-range
// input into [0, quantityOrdered]. Direct numeric entry goes through here, so
// the clamp invariant holds however the value arrives.
func (s *Session) SetReceived(product string, qty int) error {
	i, err := s.itemIndex(product)
	if err != nil {
		return err
	}
	item := &s.Items[i]
	if qty < 0 {
		qty = 0
	}
	if qty > item.QuantityOrdered {
		qty = item.QuantityOrdered
	}
	item.QuantityReceived = &qty
	item.touched = true
	s.State = StateEditing
	return nil
}

// AddReceived applies an additive delta, bounded by the remaining shortfall:
// receivedSoFar + delta never exceeds quantityOrdered and never drops below 0.
// The revisit flow uses this for partial-fulfillment updates.
func (s *Session) AddReceived(product string, delta int) error {
	i, err := s.itemIndex(product)
	if err != nil {
		return err
	}
	current := 0
	if s.Items[i].QuantityReceived != nil {
		current = *s.Items[i].QuantityReceived
	}
	return s.SetReceived(product, current+delta)
}

// ClearReceived removes a previously entered quantity, returning the item to
// the "not entered" state that blocks validation.
func (s *Session) ClearReceived(product string) error {
	i, err := s.itemIndex(product)
	if err != nil {
		return err
	}
	s.Items[i].QuantityReceived = nil
	s.Items[i].touched = true
	s.State = StateEditing
	return nil
}

// SetReason records the shortfall reason for a product.
func (s *Session) SetReason(product, reason string) error {
	i, err := s.itemIndex(product)
	if err != nil {
		return err
	}
	s.Items[i].ShortfallReason = reason
	s.Items[i].touched = true
	s.State = StateEditing
	return nil
}

// Validate checks session completeness: every item has an entered quantity,
// and every short item carries a reason. Revisit sessions tolerate a missing
// reason (it defaults at save time, see buildRecords). On failure the session
// drops back to EDITING with a ValidationError listing every problem.
func (s *Session) Validate() error {
	s.State = StateValidating

	var problems []string
	for i := range s.Items {
		item := &s.Items[i]
		if item.QuantityReceived == nil {
			problems = append(problems, fmt.Sprintf("%s: received quantity not entered", item.Name))
			continue
		}
		if *item.QuantityReceived < 0 || *item.QuantityReceived > item.QuantityOrdered {
			problems = append(problems, fmt.Sprintf("%s: received %d outside [0, %d]",
				item.Name, *item.QuantityReceived, item.QuantityOrdered))
			continue
		}
		if !s.Revisit && item.Short() > 0 && item.ShortfallReason == "" {
			problems = append(problems, fmt.Sprintf("%s: shortfall reason required", item.Name))
		}
	}

	if len(problems) > 0 {
		s.State = StateEditing
		return &ValidationError{Problems: problems}
	}
	s.State = StateAwaiting
	return nil
}

// TotalReceived sums entered quantities across all items.
func (s *Session) TotalReceived() int {
	total := 0
	for i := range s.Items {
		if s.Items[i].QuantityReceived != nil {
			total += *s.Items[i].QuantityReceived
		}
	}
	return total
}

// TotalShort sums outstanding shortfall across all items.
func (s *Session) TotalShort() int {
	total := 0
	for i := range s.Items {
		total += s.Items[i].Short()
	}
	return total
}

// buildRecords derives the summary record and the fresh pendency set from a
// validated session. The pendency set contains exactly the items with positive
// shortfall; on a revisit, a short item without an explicit reason gets
// ReasonNotInformed instead of blocking the save.
func (s *Session) buildRecords(responsibleParty string, date time.Time) (ReconciliationRecord, []PendencyRecord, error) {
	if responsibleParty == "" {
		s.State = StateAwaiting
		return ReconciliationRecord{}, nil, &MissingResponsiblePartyError{}
	}

	rec := ReconciliationRecord{
		OrderID:          s.OrderID,
		OrderNumber:      s.OrderNumber,
		TotalReceived:    s.TotalReceived(),
		ResponsibleParty: responsibleParty,
		Date:             date,
	}

	var pendencies []PendencyRecord
	for i := range s.Items {
		item := &s.Items[i]
		received := 0
		if item.QuantityReceived != nil {
			received = *item.QuantityReceived
		}

		var reason *string
		if item.ShortfallReason != "" {
			r := item.ShortfallReason
			reason = &r
		}
		rec.Items = append(rec.Items, ReconciledItem{
			Product:          item.Name,
			QuantityOrdered:  item.QuantityOrdered,
			QuantityReceived: received,
			ShortfallReason:  reason,
		})

		short := item.QuantityOrdered - received
		if short <= 0 {
			continue
		}
		pendencyReason := item.ShortfallReason
		if pendencyReason == "" {
			pendencyReason = ReasonNotInformed
		}
		pendencies = append(pendencies, PendencyRecord{
			OrderID:          s.OrderID,
			OrderNumber:      s.OrderNumber,
			Product:          item.Name,
			QuantityOrdered:  item.QuantityOrdered,
			QuantityReceived: received,
			QuantityShort:    short,
			ShortfallReason:  pendencyReason,
			ResponsibleParty: responsibleParty,
			Date:             date,
		})
	}

	return rec, pendencies, nil
}
