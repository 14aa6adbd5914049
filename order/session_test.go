package order

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

type fakeCatalog struct {
	products map[string]ProductInfo
	err      error
}

func (f *fakeCatalog) Lookup(_ context.Context, _, productID string) (ProductInfo, error) {
	if f.err != nil {
		return ProductInfo{}, f.err
	}
	info, ok := f.products[productID]
	if !ok {
		return ProductInfo{}, errors.New("product not found")
	}
	return info, nil
}

type fakeSubmitter struct {
	mu      sync.Mutex
	fail    bool
	block   chan struct{}
	subs    []Submission
	nextTxn string
}

func (f *fakeSubmitter) Submit(_ context.Context, sub Submission) (string, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return "", errors.New("backend unavailable")
	}
	f.subs = append(f.subs, sub)
	if f.nextTxn == "" {
		return "txn-1", nil
	}
	return f.nextTxn, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []Event
}

func (f *fakePublisher) PublishCart(ev Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
}

func (f *fakePublisher) last() Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[len(f.events)-1]
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{products: map[string]ProductInfo{
		"p-salad": {ProductID: "p-salad", Name: "Caesar Salad", UnitPrice: 25000, Stock: 10},
		"p-tea":   {ProductID: "p-tea", Name: "Lychee Tea", UnitPrice: 18000, Stock: 5},
		"p-last":  {ProductID: "p-last", Name: "Last One", UnitPrice: 9000, Stock: 1},
	}}
}

func newTestSession(cat Catalog, sub Submitter, pub Publisher) *Session {
	return NewSession("store-1", "cashier-1", cat, sub, pub)
}

func TestAddLineIncrementsSingleLine(t *testing.T) {
	s := newTestSession(testCatalog(), &fakeSubmitter{}, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := s.AddLine(ctx, "p-salad"); err != nil {
			t.Fatalf("AddLine #%d: %v", i+1, err)
		}
	}

	lines := s.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].Quantity != 3 {
		t.Errorf("quantity = %d, want 3", lines[0].Quantity)
	}
	if lines[0].Name != "Caesar Salad" || lines[0].UnitPrice != 25000 {
		t.Errorf("snapshot mismatch: %+v", lines[0])
	}
}

func TestAddLineStockExceeded(t *testing.T) {
	s := newTestSession(testCatalog(), &fakeSubmitter{}, nil)
	ctx := context.Background()

	if err := s.AddLine(ctx, "p-last"); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := s.AddLine(ctx, "p-last"); !errors.Is(err, ErrStockExceeded) {
		t.Fatalf("second add err = %v, want ErrStockExceeded", err)
	}

	lines := s.Lines()
	if len(lines) != 1 || lines[0].Quantity != 1 {
		t.Errorf("cart changed on failed add: %+v", lines)
	}
}

func TestAddLineOutOfStockProduct(t *testing.T) {
	cat := testCatalog()
	cat.products["p-gone"] = ProductInfo{ProductID: "p-gone", Name: "Gone", UnitPrice: 100, Stock: 0}
	s := newTestSession(cat, &fakeSubmitter{}, nil)

	if err := s.AddLine(context.Background(), "p-gone"); !errors.Is(err, ErrStockExceeded) {
		t.Fatalf("err = %v, want ErrStockExceeded", err)
	}
	if len(s.Lines()) != 0 {
		t.Error("cart not empty after failed add")
	}
}

func TestSetQuantity(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		quantity int
		wantQty  int
		wantGone bool
	}{
		{"normal", 4, 4, false},
		{"clamped to stock", 99, 5, false},
		{"zero removes line", 0, 0, true},
		{"negative removes line", -3, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(testCatalog(), &fakeSubmitter{}, nil)
			if err := s.AddLine(ctx, "p-tea"); err != nil {
				t.Fatal(err)
			}

			if err := s.SetQuantity(ctx, "p-tea", tt.quantity); err != nil {
				t.Fatalf("SetQuantity: %v", err)
			}

			lines := s.Lines()
			if tt.wantGone {
				if len(lines) != 0 {
					t.Fatalf("line not removed: %+v", lines)
				}
				return
			}
			if len(lines) != 1 || lines[0].Quantity != tt.wantQty {
				t.Errorf("lines = %+v, want quantity %d", lines, tt.wantQty)
			}
		})
	}
}

func TestSetQuantityAbsentProductIsNoop(t *testing.T) {
	s := newTestSession(testCatalog(), &fakeSubmitter{}, nil)
	if err := s.SetQuantity(context.Background(), "p-nope", 3); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
	if len(s.Lines()) != 0 {
		t.Error("cart should still be empty")
	}
}

func TestInsertionOrderPreservedAcrossEdits(t *testing.T) {
	s := newTestSession(testCatalog(), &fakeSubmitter{}, nil)
	ctx := context.Background()

	for _, id := range []string{"p-salad", "p-tea", "p-last"} {
		if err := s.AddLine(ctx, id); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.SetQuantity(ctx, "p-salad", 2); err != nil {
		t.Fatal(err)
	}
	if err := s.RemoveLine("p-tea"); err != nil {
		t.Fatal(err)
	}

	var got []string
	for _, l := range s.Lines() {
		got = append(got, l.ProductID)
	}
	want := []string{"p-salad", "p-last"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestTotals(t *testing.T) {
	tests := []struct {
		name         string
		add          map[string]int // productID -> quantity
		wantSubtotal int64
		wantTax      int64
		wantTotal    int64
	}{
		{
			name:         "mixed cart",
			add:          map[string]int{"p-salad": 2, "p-tea": 1},
			wantSubtotal: 68000,
			wantTax:      6800,
			wantTotal:    74800,
		},
		{
			name:         "empty cart",
			add:          nil,
			wantSubtotal: 0,
			wantTax:      0,
			wantTotal:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(testCatalog(), &fakeSubmitter{}, nil)
			ctx := context.Background()
			for id, qty := range tt.add {
				if err := s.AddLine(ctx, id); err != nil {
					t.Fatal(err)
				}
				if err := s.SetQuantity(ctx, id, qty); err != nil {
					t.Fatal(err)
				}
			}

			got := s.Totals()
			if got.Subtotal != tt.wantSubtotal || got.Tax != tt.wantTax || got.Total != tt.wantTotal {
				t.Errorf("totals = %+v, want subtotal %d tax %d total %d",
					got, tt.wantSubtotal, tt.wantTax, tt.wantTotal)
			}
			if got.Total != got.Subtotal+got.Tax {
				t.Error("total != subtotal + tax")
			}
		})
	}
}

func TestTaxRoundsHalfUp(t *testing.T) {
	// 10% of 25 is 2.5, which rounds up to 3.
	cat := &fakeCatalog{products: map[string]ProductInfo{
		"p": {ProductID: "p", Name: "P", UnitPrice: 25, Stock: 1},
	}}
	s := newTestSession(cat, &fakeSubmitter{}, nil)
	if err := s.AddLine(context.Background(), "p"); err != nil {
		t.Fatal(err)
	}

	got := s.Totals()
	if got.Tax != 3 {
		t.Errorf("tax = %d, want 3", got.Tax)
	}
	if got.Total != 28 {
		t.Errorf("total = %d, want 28", got.Total)
	}
}

func TestBeginCheckoutEmptyCart(t *testing.T) {
	s := newTestSession(testCatalog(), &fakeSubmitter{}, nil)

	if err := s.BeginCheckout(); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("err = %v, want ErrEmptyCart", err)
	}
	if s.State() != StateBuilding {
		t.Errorf("state = %s, want building", s.State())
	}
}

func TestBeginCheckoutSnapshotsTotal(t *testing.T) {
	s := newTestSession(testCatalog(), &fakeSubmitter{}, nil)
	ctx := context.Background()
	if err := s.AddLine(ctx, "p-salad"); err != nil {
		t.Fatal(err)
	}

	if err := s.BeginCheckout(); err != nil {
		t.Fatal(err)
	}
	if s.State() != StateAwaitingPayment {
		t.Fatalf("state = %s, want awaiting_payment", s.State())
	}

	intent := s.Intent()
	if intent == nil {
		t.Fatal("nil intent after BeginCheckout")
	}
	want := s.Totals().Total
	if intent.Total != want || intent.TenderedAmount != want {
		t.Errorf("intent = %+v, want total and tendered %d", intent, want)
	}
	if intent.Method != MethodCash {
		t.Errorf("default method = %s, want cash", intent.Method)
	}
}

func TestCartLockedDuringCheckout(t *testing.T) {
	s := newTestSession(testCatalog(), &fakeSubmitter{}, nil)
	ctx := context.Background()
	if err := s.AddLine(ctx, "p-salad"); err != nil {
		t.Fatal(err)
	}
	if err := s.BeginCheckout(); err != nil {
		t.Fatal(err)
	}

	if err := s.AddLine(ctx, "p-tea"); !errors.Is(err, ErrInvalidState) {
		t.Errorf("AddLine err = %v, want ErrInvalidState", err)
	}
	if err := s.Clear(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Clear err = %v, want ErrInvalidState", err)
	}
}

func TestCancelCheckout(t *testing.T) {
	s := newTestSession(testCatalog(), &fakeSubmitter{}, nil)
	ctx := context.Background()
	if err := s.AddLine(ctx, "p-salad"); err != nil {
		t.Fatal(err)
	}
	if err := s.BeginCheckout(); err != nil {
		t.Fatal(err)
	}

	if err := s.CancelCheckout(); err != nil {
		t.Fatal(err)
	}
	if s.State() != StateBuilding {
		t.Errorf("state = %s, want building", s.State())
	}
	if s.Intent() != nil {
		t.Error("intent should be cleared on cancel")
	}
	if len(s.Lines()) != 1 {
		t.Error("cart should survive a cancelled checkout")
	}

	// Cancelling again while Building is a no-op.
	if err := s.CancelCheckout(); err != nil {
		t.Errorf("repeat cancel: %v", err)
	}
}

func TestSelectPaymentMethod(t *testing.T) {
	s := newTestSession(testCatalog(), &fakeSubmitter{}, nil)
	ctx := context.Background()
	if err := s.AddLine(ctx, "p-salad"); err != nil {
		t.Fatal(err)
	}
	if err := s.BeginCheckout(); err != nil {
		t.Fatal(err)
	}

	if err := s.SetTenderedAmount(100000); err != nil {
		t.Fatal(err)
	}
	if err := s.SelectPaymentMethod(MethodQRIS); err != nil {
		t.Fatal(err)
	}

	intent := s.Intent()
	if intent.Method != MethodQRIS {
		t.Errorf("method = %s, want qris", intent.Method)
	}
	if intent.TenderedAmount != intent.Total {
		t.Errorf("tendered = %d, want reset to total %d", intent.TenderedAmount, intent.Total)
	}

	// Tendered amount is only meaningful for cash.
	if err := s.SetTenderedAmount(200000); !errors.Is(err, ErrInvalidState) {
		t.Errorf("SetTenderedAmount on qris err = %v, want ErrInvalidState", err)
	}

	if err := s.SelectPaymentMethod("voucher"); !errors.Is(err, ErrUnknownPaymentMethod) {
		t.Errorf("bogus method err = %v, want ErrUnknownPaymentMethod", err)
	}
}

func TestConfirmPaymentInsufficientCash(t *testing.T) {
	s := newTestSession(testCatalog(), &fakeSubmitter{}, nil)
	ctx := context.Background()
	if err := s.AddLine(ctx, "p-salad"); err != nil { // total 27500
		t.Fatal(err)
	}
	if err := s.BeginCheckout(); err != nil {
		t.Fatal(err)
	}
	if err := s.SetTenderedAmount(20000); err != nil {
		t.Fatal(err)
	}

	if _, err := s.ConfirmPayment(ctx); !errors.Is(err, ErrInsufficientPayment) {
		t.Fatalf("err = %v, want ErrInsufficientPayment", err)
	}
	if s.State() != StateAwaitingPayment {
		t.Errorf("state = %s, want awaiting_payment", s.State())
	}
}

func TestConfirmPaymentCashWithChange(t *testing.T) {
	submitter := &fakeSubmitter{}
	s := newTestSession(testCatalog(), submitter, nil)
	ctx := context.Background()

	// 2x 25000 + 1x 18000 = 68000 subtotal, 6800 tax, 74800 total.
	if err := s.AddLine(ctx, "p-salad"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetQuantity(ctx, "p-salad", 2); err != nil {
		t.Fatal(err)
	}
	if err := s.AddLine(ctx, "p-tea"); err != nil {
		t.Fatal(err)
	}
	if err := s.BeginCheckout(); err != nil {
		t.Fatal(err)
	}
	if err := s.SetTenderedAmount(100000); err != nil {
		t.Fatal(err)
	}

	receipt, err := s.ConfirmPayment(ctx)
	if err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}

	if receipt.Total != 74800 {
		t.Errorf("receipt total = %d, want 74800", receipt.Total)
	}
	if receipt.ChangeAmount != 25200 {
		t.Errorf("change = %d, want 25200", receipt.ChangeAmount)
	}
	if receipt.PaymentMethod != MethodCash {
		t.Errorf("method = %s, want cash", receipt.PaymentMethod)
	}
	if s.State() != StateCompleted {
		t.Errorf("state = %s, want completed", s.State())
	}

	if len(submitter.subs) != 1 {
		t.Fatalf("expected 1 submission, got %d", len(submitter.subs))
	}
	sub := submitter.subs[0]
	if sub.Subtotal != 68000 || sub.Tax != 6800 || sub.Total != 74800 {
		t.Errorf("submission totals = %+v", sub)
	}
	if sub.TenderedAmount != 100000 || sub.ChangeAmount != 25200 {
		t.Errorf("submission payment = tendered %d change %d", sub.TenderedAmount, sub.ChangeAmount)
	}
	if len(sub.Items) != 2 {
		t.Errorf("submission items = %d, want 2", len(sub.Items))
	}
}

func TestConfirmPaymentNonCashNoChange(t *testing.T) {
	for _, method := range []PaymentMethod{MethodQRIS, MethodCard} {
		t.Run(string(method), func(t *testing.T) {
			submitter := &fakeSubmitter{}
			s := newTestSession(testCatalog(), submitter, nil)
			ctx := context.Background()

			if err := s.AddLine(ctx, "p-salad"); err != nil {
				t.Fatal(err)
			}
			if err := s.BeginCheckout(); err != nil {
				t.Fatal(err)
			}
			if err := s.SelectPaymentMethod(method); err != nil {
				t.Fatal(err)
			}

			receipt, err := s.ConfirmPayment(ctx)
			if err != nil {
				t.Fatalf("ConfirmPayment: %v", err)
			}
			if receipt.ChangeAmount != 0 {
				t.Errorf("change = %d, want 0", receipt.ChangeAmount)
			}
			sub := submitter.subs[0]
			if sub.TenderedAmount != sub.Total {
				t.Errorf("tendered = %d, want total %d", sub.TenderedAmount, sub.Total)
			}
		})
	}
}

func TestSubmissionFailureRetry(t *testing.T) {
	submitter := &fakeSubmitter{fail: true}
	s := newTestSession(testCatalog(), submitter, nil)
	ctx := context.Background()

	if err := s.AddLine(ctx, "p-salad"); err != nil {
		t.Fatal(err)
	}
	if err := s.BeginCheckout(); err != nil {
		t.Fatal(err)
	}
	if err := s.SetTenderedAmount(50000); err != nil {
		t.Fatal(err)
	}

	linesBefore := s.Lines()
	intentBefore := s.Intent()

	if _, err := s.ConfirmPayment(ctx); err == nil {
		t.Fatal("expected submission failure")
	}
	if s.State() != StateFailed {
		t.Fatalf("state = %s, want failed", s.State())
	}

	if !reflect.DeepEqual(s.Lines(), linesBefore) {
		t.Error("cart changed across failed submission")
	}
	if !reflect.DeepEqual(s.Intent(), intentBefore) {
		t.Error("payment intent changed across failed submission")
	}

	// Same call again, after the backend recovers, succeeds untouched.
	submitter.mu.Lock()
	submitter.fail = false
	submitter.mu.Unlock()

	receipt, err := s.ConfirmPayment(ctx)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if receipt.ChangeAmount != intentBefore.TenderedAmount-intentBefore.Total {
		t.Errorf("retry change = %d", receipt.ChangeAmount)
	}
	if s.State() != StateCompleted {
		t.Errorf("state = %s, want completed", s.State())
	}
}

func TestMutationRejectedWhileProcessing(t *testing.T) {
	submitter := &fakeSubmitter{block: make(chan struct{})}
	s := newTestSession(testCatalog(), submitter, nil)
	ctx := context.Background()

	if err := s.AddLine(ctx, "p-salad"); err != nil {
		t.Fatal(err)
	}
	if err := s.BeginCheckout(); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := s.ConfirmPayment(ctx)
		done <- err
	}()

	// Wait for the session to enter Processing.
	deadline := time.After(2 * time.Second)
	for s.State() != StateProcessing {
		select {
		case <-deadline:
			t.Fatal("session never reached processing")
		case <-time.After(time.Millisecond):
		}
	}

	if err := s.AddLine(ctx, "p-tea"); !errors.Is(err, ErrCheckoutInProgress) {
		t.Errorf("AddLine err = %v, want ErrCheckoutInProgress", err)
	}
	if err := s.SetQuantity(ctx, "p-salad", 5); !errors.Is(err, ErrCheckoutInProgress) {
		t.Errorf("SetQuantity err = %v, want ErrCheckoutInProgress", err)
	}
	if err := s.CancelCheckout(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("CancelCheckout err = %v, want ErrInvalidState", err)
	}

	close(submitter.block)
	if err := <-done; err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if s.State() != StateCompleted {
		t.Errorf("state = %s, want completed", s.State())
	}
}

func TestAcknowledgeCompletionResets(t *testing.T) {
	submitter := &fakeSubmitter{}
	s := newTestSession(testCatalog(), submitter, nil)
	ctx := context.Background()

	if err := s.AddLine(ctx, "p-salad"); err != nil {
		t.Fatal(err)
	}
	if err := s.BeginCheckout(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ConfirmPayment(ctx); err != nil {
		t.Fatal(err)
	}

	oldID := s.ID()
	if err := s.AcknowledgeCompletion(); err != nil {
		t.Fatal(err)
	}

	if s.State() != StateBuilding {
		t.Errorf("state = %s, want building", s.State())
	}
	if len(s.Lines()) != 0 || s.Intent() != nil || s.Receipt() != nil {
		t.Error("session not fully reset")
	}
	if s.ID() == oldID {
		t.Error("acknowledged session should get a new ID")
	}

	// Only terminal states can be acknowledged.
	if err := s.AcknowledgeCompletion(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second ack err = %v, want ErrInvalidState", err)
	}
}

func TestPublisherSeesEveryMutation(t *testing.T) {
	pub := &fakePublisher{}
	s := newTestSession(testCatalog(), &fakeSubmitter{}, pub)
	ctx := context.Background()

	if err := s.AddLine(ctx, "p-salad"); err != nil {
		t.Fatal(err)
	}
	if err := s.SetQuantity(ctx, "p-salad", 2); err != nil {
		t.Fatal(err)
	}
	if err := s.BeginCheckout(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ConfirmPayment(ctx); err != nil {
		t.Fatal(err)
	}

	// add, setqty, begin, processing, completed
	pub.mu.Lock()
	n := len(pub.events)
	pub.mu.Unlock()
	if n != 5 {
		t.Fatalf("expected 5 events, got %d", n)
	}

	last := pub.last()
	if last.State != StateCompleted {
		t.Errorf("last event state = %s, want completed", last.State)
	}
	if last.Receipt == nil {
		t.Error("completed event should carry the receipt summary")
	}
	if last.Totals.Total != 55000 {
		t.Errorf("last event total = %d, want 55000", last.Totals.Total)
	}
}

func TestRegistryOneSessionPerCashier(t *testing.T) {
	reg := NewRegistry(testCatalog(), &fakeSubmitter{}, nil)

	a := reg.Session("store-1", "cashier-1")
	b := reg.Session("store-1", "cashier-1")
	if a != b {
		t.Error("same cashier should share one session")
	}

	c := reg.Session("store-1", "cashier-2")
	if a == c {
		t.Error("different cashiers must not share a session")
	}

	reg.Drop("cashier-1")
	d := reg.Session("store-1", "cashier-1")
	if d == a {
		t.Error("dropped session should not be reused")
	}
}
