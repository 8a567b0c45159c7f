package core_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"varejo-backoffice/internal/core"
)

// fakeReconciliationStore records calls so tests can assert exactly when the
// engine touches persistence.
type fakeReconciliationStore struct {
	pendencies   map[int][]core.PendencyRecord
	saved        map[int]core.ReconciliationRecord
	replaceCalls int
	failReplace  error
}

func newFakeStore() *fakeReconciliationStore {
	return &fakeReconciliationStore{
		pendencies: make(map[int][]core.PendencyRecord),
		saved:      make(map[int]core.ReconciliationRecord),
	}
}

func (f *fakeReconciliationStore) PendenciesByOrder(_ context.Context, orderID int) ([]core.PendencyRecord, error) {
	return f.pendencies[orderID], nil
}

func (f *fakeReconciliationStore) PendenciesByStore(context.Context, int) ([]core.PendencyRecord, error) {
	return nil, nil
}

func (f *fakeReconciliationStore) ReplaceReconciliation(_ context.Context, rec core.ReconciliationRecord, pendencies []core.PendencyRecord) error {
	f.replaceCalls++
	if f.failReplace != nil {
		return f.failReplace
	}
	f.pendencies[rec.OrderID] = pendencies
	f.saved[rec.OrderID] = rec
	return nil
}

func newEngine(store core.ReconciliationStore) *core.ReconciliationEngine {
	return core.NewReconciliationEngine(nil, store)
}

func freshSession(t *testing.T) *core.Session {
	t.Helper()
	parsed := core.ParseOrderText("Pedido,12345\nApple,10\nBanana,5\n")
	return core.NewSession(1, parsed)
}

func TestSession_SetReceivedClamps(t *testing.T) {
	tests := []struct {
		name string
		set  int
		want int
	}{
		{"in range", 7, 7},
		{"above ordered", 42, 10},
		{"negative", -3, 0},
		{"zero", 0, 0},
		{"exactly ordered", 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := freshSession(t)
			if err := sess.SetReceived("Apple", tt.set); err != nil {
				t.Fatalf("SetReceived: %v", err)
			}
			got := sess.Items[0].QuantityReceived
			if got == nil || *got != tt.want {
				t.Errorf("received = %v, want %d", got, tt.want)
			}
			if *got < 0 || *got > sess.Items[0].QuantityOrdered {
				t.Errorf("clamp invariant violated: %d not in [0, %d]", *got, sess.Items[0].QuantityOrdered)
			}
		})
	}
}

func TestSession_AddReceivedBoundedByShortfall(t *testing.T) {
	sess := freshSession(t)
	if err := sess.SetReceived("Banana", 3); err != nil {
		t.Fatal(err)
	}
	if err := sess.AddReceived("Banana", 999); err != nil {
		t.Fatal(err)
	}
	if got := *sess.Items[1].QuantityReceived; got != 5 {
		t.Errorf("AddReceived should clamp at ordered quantity 5, got %d", got)
	}
	if err := sess.AddReceived("Banana", -999); err != nil {
		t.Fatal(err)
	}
	if got := *sess.Items[1].QuantityReceived; got != 0 {
		t.Errorf("AddReceived should clamp at 0, got %d", got)
	}
}

func TestSession_UnknownProduct(t *testing.T) {
	sess := freshSession(t)
	err := sess.SetReceived("Mango", 1)
	var nf *core.NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError for unknown product, got %v", err)
	}
}

func TestSave_RejectedWhenIncomplete(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(s *core.Session)
	}{
		{
			"received quantity cleared",
			func(s *core.Session) {
				_ = s.SetReceived("Apple", 10)
				_ = s.ClearReceived("Banana")
			},
		},
		{
			"short item without reason",
			func(s *core.Session) {
				_ = s.SetReceived("Apple", 10)
				_ = s.SetReceived("Banana", 3) // short by 2, no reason
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			engine := newEngine(store)
			sess := freshSession(t)
			tt.prepare(sess)

			_, err := engine.Save(context.Background(), sess, "Maria")
			var verr *core.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if store.replaceCalls != 0 {
				t.Errorf("no persistence call may happen on validation failure, got %d", store.replaceCalls)
			}
			if sess.State != core.StateEditing {
				t.Errorf("failed validation should return session to EDITING, got %s", sess.State)
			}
		})
	}
}

func TestSave_RequiresResponsibleParty(t *testing.T) {
	store := newFakeStore()
	engine := newEngine(store)
	sess := freshSession(t)
	_ = sess.SetReceived("Apple", 10)
	_ = sess.SetReceived("Banana", 5)

	_, err := engine.Save(context.Background(), sess, "")
	var merr *core.MissingResponsiblePartyError
	if !errors.As(err, &merr) {
		t.Fatalf("expected MissingResponsiblePartyError, got %v", err)
	}
	if store.replaceCalls != 0 {
		t.Errorf("no persistence call may happen without a responsible party")
	}
	if sess.State != core.StateAwaiting {
		t.Errorf("session should wait at AWAITING_RESPONSIBLE, got %s", sess.State)
	}
}

func TestSave_EndToEndScenario(t *testing.T) {
	store := newFakeStore()
	engine := newEngine(store)
	sess := freshSession(t)

	if err := sess.SetReceived("Apple", 10); err != nil {
		t.Fatal(err)
	}
	if err := sess.SetReceived("Banana", 3); err != nil {
		t.Fatal(err)
	}
	if err := sess.SetReason("Banana", "Damaged packaging"); err != nil {
		t.Fatal(err)
	}

	summary, err := engine.Save(context.Background(), sess, "Maria")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	rec := store.saved[1]
	if rec.TotalReceived != 13 {
		t.Errorf("expected totalReceived 13, got %d", rec.TotalReceived)
	}
	if rec.ResponsibleParty != "Maria" {
		t.Errorf("expected responsible Maria, got %q", rec.ResponsibleParty)
	}
	if len(rec.Items) != 2 {
		t.Errorf("expected 2 reconciled items, got %d", len(rec.Items))
	}

	pendencies := store.pendencies[1]
	if len(pendencies) != 1 {
		t.Fatalf("expected exactly 1 pendency, got %d", len(pendencies))
	}
	p := pendencies[0]
	if p.Product != "Banana" || p.QuantityOrdered != 5 || p.QuantityReceived != 3 ||
		p.QuantityShort != 2 || p.ShortfallReason != "Damaged packaging" {
		t.Errorf("unexpected pendency: %+v", p)
	}
	if p.OrderNumber != "12345" {
		t.Errorf("pendency should carry order number 12345, got %q", p.OrderNumber)
	}

	if summary.FullyReconciled {
		t.Error("summary should report pending items")
	}
	if summary.PendencyCount != 1 || summary.TotalReceived != 13 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if sess.State != core.StateDone {
		t.Errorf("expected DONE, got %s", sess.State)
	}
}

func TestSave_ShortfallSumMatchesLineItems(t *testing.T) {
	store := newFakeStore()
	engine := newEngine(store)

	raw := "Pedido,77\nA,10\nB,8\nC,6\nD,4\n"
	sess := core.NewSession(7, core.ParseOrderText(raw))
	_ = sess.SetReceived("A", 10) // short 0
	_ = sess.SetReceived("B", 5)  // short 3
	_ = sess.SetReceived("C", 0)  // short 6
	_ = sess.SetReceived("D", 3)  // short 1
	for _, p := range []string{"B", "C", "D"} {
		_ = sess.SetReason(p, "Out of stock")
	}

	if _, err := engine.Save(context.Background(), sess, "João"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	wantShort := 3 + 6 + 1
	gotShort := 0
	for _, p := range store.pendencies[7] {
		if p.QuantityShort <= 0 {
			t.Errorf("pendency with non-positive shortfall persisted: %+v", p)
		}
		gotShort += p.QuantityShort
	}
	if gotShort != wantShort {
		t.Errorf("sum of quantityShort = %d, want %d", gotShort, wantShort)
	}
	if len(store.pendencies[7]) != 3 {
		t.Errorf("expected 3 pendencies (A fully received), got %d", len(store.pendencies[7]))
	}
}

func TestSave_ZeroShortfallYieldsNoPendencies(t *testing.T) {
	store := newFakeStore()
	engine := newEngine(store)
	sess := freshSession(t)
	_ = sess.SetReceived("Apple", 10)
	_ = sess.SetReceived("Banana", 5)

	summary, err := engine.Save(context.Background(), sess, "Maria")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(store.pendencies[1]) != 0 {
		t.Errorf("expected zero pendencies, got %d", len(store.pendencies[1]))
	}
	if !summary.FullyReconciled {
		t.Error("summary should report fully reconciled")
	}
}

func TestSave_Idempotent(t *testing.T) {
	store := newFakeStore()
	engine := newEngine(store)

	build := func() *core.Session {
		sess := freshSession(t)
		_ = sess.SetReceived("Apple", 10)
		_ = sess.SetReceived("Banana", 3)
		_ = sess.SetReason("Banana", "Damaged packaging")
		return sess
	}

	key := func(p core.PendencyRecord) string {
		return fmt.Sprintf("%s|%d|%d|%d|%s", p.Product, p.QuantityOrdered, p.QuantityReceived, p.QuantityShort, p.ShortfallReason)
	}

	if _, err := engine.Save(context.Background(), build(), "Maria"); err != nil {
		t.Fatalf("first save: %v", err)
	}
	if len(store.pendencies[1]) != 1 {
		t.Fatalf("expected 1 pendency after first save, got %d", len(store.pendencies[1]))
	}
	first := key(store.pendencies[1][0])

	if _, err := engine.Save(context.Background(), build(), "Maria"); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if len(store.pendencies[1]) != 1 {
		t.Fatalf("repeated save must not duplicate pendencies, got %d", len(store.pendencies[1]))
	}
	if second := key(store.pendencies[1][0]); second != first {
		t.Errorf("pendency changed across identical saves:\n  first:  %s\n  second: %s", first, second)
	}
	if store.replaceCalls != 2 {
		t.Errorf("expected 2 replace calls, got %d", store.replaceCalls)
	}
}

func TestRevisit_SeedsFromPendencies(t *testing.T) {
	parsed := core.ParseOrderText("Pedido,12345\nApple,10\nBanana,5\n")
	pendencies := []core.PendencyRecord{{
		OrderID: 1, OrderNumber: "12345", Product: "Banana",
		QuantityOrdered: 5, QuantityReceived: 3, QuantityShort: 2,
		ShortfallReason: "Damaged packaging",
	}}

	sess := core.NewRevisitSession(1, parsed, pendencies)
	if !sess.Revisit {
		t.Fatal("expected revisit session")
	}

	// Apple has no pendency: full receipt implied.
	if got := *sess.Items[0].QuantityReceived; got != 10 {
		t.Errorf("Apple should seed to full receipt 10, got %d", got)
	}
	// Banana seeds from its pendency.
	if got := *sess.Items[1].QuantityReceived; got != 3 {
		t.Errorf("Banana should seed to 3, got %d", got)
	}
	if sess.Items[1].ShortfallReason != "Damaged packaging" {
		t.Errorf("Banana should keep its recorded reason, got %q", sess.Items[1].ShortfallReason)
	}
}

func TestRevisit_CompletingShortfallClearsPendency(t *testing.T) {
	store := newFakeStore()
	store.pendencies[1] = []core.PendencyRecord{{
		OrderID: 1, OrderNumber: "12345", Product: "Banana",
		QuantityOrdered: 5, QuantityReceived: 3, QuantityShort: 2,
		ShortfallReason: "Damaged packaging", ResponsibleParty: "Maria",
	}}
	engine := newEngine(store)

	parsed := core.ParseOrderText("Pedido,12345\nApple,10\nBanana,5\n")
	sess := core.NewRevisitSession(1, parsed, store.pendencies[1])

	// Two more bananas arrived.
	if err := sess.AddReceived("Banana", 2); err != nil {
		t.Fatal(err)
	}

	summary, err := engine.Save(context.Background(), sess, "Maria")
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if len(store.pendencies[1]) != 0 {
		t.Errorf("pendency set should be empty after full receipt, got %+v", store.pendencies[1])
	}
	if rec := store.saved[1]; rec.TotalReceived != 15 {
		t.Errorf("expected totalReceived 15, got %d", rec.TotalReceived)
	}
	if !summary.FullyReconciled {
		t.Error("summary should report fully reconciled")
	}
}

func TestRevisit_UntouchedReasonPreserved(t *testing.T) {
	store := newFakeStore()
	store.pendencies[1] = []core.PendencyRecord{{
		OrderID: 1, OrderNumber: "12345", Product: "Banana",
		QuantityOrdered: 5, QuantityReceived: 3, QuantityShort: 2,
		ShortfallReason: "Damaged packaging", ResponsibleParty: "Maria",
	}}
	engine := newEngine(store)

	parsed := core.ParseOrderText("Pedido,12345\nApple,10\nBanana,5\n")
	sess := core.NewRevisitSession(1, parsed, store.pendencies[1])
	// Banana untouched this session; still short by 2.

	if _, err := engine.Save(context.Background(), sess, "Pedro"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if len(store.pendencies[1]) != 1 {
		t.Fatalf("expected Banana pendency to remain, got %d", len(store.pendencies[1]))
	}
	if got := store.pendencies[1][0].ShortfallReason; got != "Damaged packaging" {
		t.Errorf("untouched item must keep its original reason, got %q", got)
	}
}

func TestRevisit_TouchedWithoutReasonDefaultsToNotInformed(t *testing.T) {
	store := newFakeStore()
	store.pendencies[1] = []core.PendencyRecord{{
		OrderID: 1, OrderNumber: "12345", Product: "Banana",
		QuantityOrdered: 5, QuantityReceived: 0, QuantityShort: 5,
		ShortfallReason: "", ResponsibleParty: "Maria",
	}}
	engine := newEngine(store)

	parsed := core.ParseOrderText("Pedido,12345\nApple,10\nBanana,5\n")
	sess := core.NewRevisitSession(1, parsed, store.pendencies[1])
	if err := sess.AddReceived("Banana", 1); err != nil { // still short by 4, no reason given
		t.Fatal(err)
	}

	if _, err := engine.Save(context.Background(), sess, "Pedro"); err != nil {
		t.Fatalf("revisit save must not block on a missing reason: %v", err)
	}
	if got := store.pendencies[1][0].ShortfallReason; got != core.ReasonNotInformed {
		t.Errorf("expected fallback reason %q, got %q", core.ReasonNotInformed, got)
	}
}

// fakeOrderService serves canned orders for LoadSession tests.
type fakeOrderService struct {
	orders map[int]*core.Order
}

func (f *fakeOrderService) CreateOrder(context.Context, int, string, string, string) (*core.Order, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeOrderService) GetOrder(_ context.Context, _, orderID int) (*core.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return nil, &core.NotFoundError{Kind: "order", Ref: fmt.Sprint(orderID)}
	}
	return o, nil
}

func (f *fakeOrderService) ListOrders(context.Context, int, core.OrderStatus) ([]core.Order, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeOrderService) DeleteOrder(context.Context, int, int) error {
	return errors.New("not implemented")
}

func TestLoadSession_FreshAndRevisit(t *testing.T) {
	raw := "Pedido,12345\nApple,10\nBanana,5\n"
	orders := &fakeOrderService{orders: map[int]*core.Order{
		1: {ID: 1, StoreID: 1, OrderNumber: "12345", Status: core.OrderStatusOpen, RawContent: raw},
		2: {ID: 2, StoreID: 1, OrderNumber: "12345", Status: core.OrderStatusReconciled, RawContent: raw},
	}}
	store := newFakeStore()
	store.pendencies[2] = []core.PendencyRecord{{
		OrderID: 2, OrderNumber: "12345", Product: "Banana",
		QuantityOrdered: 5, QuantityReceived: 3, QuantityShort: 2,
		ShortfallReason: "Damaged packaging",
	}}
	engine := core.NewReconciliationEngine(orders, store)

	fresh, err := engine.LoadSession(context.Background(), 1, 1)
	if err != nil {
		t.Fatalf("LoadSession fresh: %v", err)
	}
	if fresh.Revisit {
		t.Error("order 1 should open as a fresh session")
	}
	if got := *fresh.Items[0].QuantityReceived; got != 0 {
		t.Errorf("fresh session seeds received 0, got %d", got)
	}

	revisit, err := engine.LoadSession(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("LoadSession revisit: %v", err)
	}
	if !revisit.Revisit {
		t.Error("reconciled order should open as a revisit session")
	}
	if got := *revisit.Items[1].QuantityReceived; got != 3 {
		t.Errorf("revisit seeds Banana from pendency, got %d", got)
	}

	_, err = engine.LoadSession(context.Background(), 1, 99)
	var nf *core.NotFoundError
	if !errors.As(err, &nf) {
		t.Errorf("expected NotFoundError for unknown order, got %v", err)
	}
}

func TestSave_PersistenceFailureIsRetryable(t *testing.T) {
	store := newFakeStore()
	store.failReplace = errors.New("connection reset")
	engine := newEngine(store)

	sess := freshSession(t)
	_ = sess.SetReceived("Apple", 10)
	_ = sess.SetReceived("Banana", 5)

	_, err := engine.Save(context.Background(), sess, "Maria")
	var perr *core.PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %v", err)
	}
	if !perr.Retryable {
		t.Error("replacement runs in one transaction, failure must be retryable")
	}
	if sess.State != core.StateFailed {
		t.Errorf("expected FAILED, got %s", sess.State)
	}

	// Retry after the fault clears succeeds on the same inputs.
	store.failReplace = nil
	sess2 := freshSession(t)
	_ = sess2.SetReceived("Apple", 10)
	_ = sess2.SetReceived("Banana", 5)
	if _, err := engine.Save(context.Background(), sess2, "Maria"); err != nil {
		t.Fatalf("retry should succeed: %v", err)
	}
}
