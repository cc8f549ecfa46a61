package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/mmeshcher/checkout-system/internal/model"
	"github.com/mmeshcher/checkout-system/internal/store"
)

type stubStorage struct {
	data map[string][]byte

	loadErr   error
	saveErr   error
	saveCalls int
}

func newStubStorage() *stubStorage {
	return &stubStorage{data: make(map[string][]byte)}
}

func (s *stubStorage) Load(ctx context.Context, key string) ([]byte, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	payload, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return payload, nil
}

func (s *stubStorage) Save(ctx context.Context, key string, payload []byte) error {
	s.saveCalls++
	if s.saveErr != nil {
		return s.saveErr
	}
	s.data[key] = payload
	return nil
}

func (s *stubStorage) Delete(ctx context.Context, key string) error {
	delete(s.data, key)
	return nil
}

func sampleState() model.CheckoutState {
	return model.CheckoutState{
		CardData: model.CardData{
			CardNumber:     "4242 4242 4242 4242",
			CardholderName: "JUAN PEREZ",
			ExpiryDate:     "12/26",
			CVV:            "123",
			CardType:       model.CardNetworkVisa,
		},
		DeliveryData: model.DeliveryData{
			FullName: "Juan Perez",
			Email:    "juan@example.com",
			Phone:    "3001234567",
			City:     "Cali",
		},
		Installments: 3,
		Quantity:     2,
	}
}

func TestBridge_LoadOnce_RestoresSavedState(t *testing.T) {
	storage := newStubStorage()

	saved := sampleState()
	payload, err := json.Marshal(saved)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	storage.data["session-1"] = payload

	st := store.NewCheckoutStore()
	b := NewBridge(storage, st, "session-1", zap.NewNop())

	b.LoadOnce(context.Background())

	if state := st.State(); state != saved {
		t.Fatalf("restored state = %+v, want %+v", state, saved)
	}
}

func TestBridge_LoadOnce_SecondCallDoesNotOverwriteEdits(t *testing.T) {
	storage := newStubStorage()
	payload, _ := json.Marshal(sampleState())
	storage.data["session-1"] = payload

	st := store.NewCheckoutStore()
	b := NewBridge(storage, st, "session-1", zap.NewNop())

	b.LoadOnce(context.Background())
	st.SetQuantity(7)
	b.LoadOnce(context.Background())

	if got := st.State().Quantity; got != 7 {
		t.Fatalf("quantity after second LoadOnce = %d, want 7", got)
	}
}

func TestBridge_LoadOnce_MalformedPayloadKeepsDefaults(t *testing.T) {
	storage := newStubStorage()
	storage.data["session-1"] = []byte("{not json")

	st := store.NewCheckoutStore()
	b := NewBridge(storage, st, "session-1", zap.NewNop())

	b.LoadOnce(context.Background())

	if state := st.State(); state != model.DefaultCheckoutState() {
		t.Fatalf("state after malformed payload = %+v, want defaults", state)
	}
}

func TestBridge_LoadOnce_StorageErrorKeepsDefaults(t *testing.T) {
	storage := newStubStorage()
	storage.loadErr = errors.New("storage down")

	st := store.NewCheckoutStore()
	b := NewBridge(storage, st, "session-1", zap.NewNop())

	b.LoadOnce(context.Background())

	if state := st.State(); state != model.DefaultCheckoutState() {
		t.Fatalf("state after load error = %+v, want defaults", state)
	}
}

func TestBridge_Flush_WritesOnlyOnChange(t *testing.T) {
	storage := newStubStorage()
	st := store.NewCheckoutStore()
	b := NewBridge(storage, st, "session-1", zap.NewNop())

	b.LoadOnce(context.Background())

	b.Flush(context.Background())
	b.Flush(context.Background())
	if storage.saveCalls != 0 {
		t.Fatalf("save calls without changes = %d, want 0", storage.saveCalls)
	}

	st.SetQuantity(4)
	b.Flush(context.Background())
	b.Flush(context.Background())
	if storage.saveCalls != 1 {
		t.Fatalf("save calls after one change = %d, want 1", storage.saveCalls)
	}

	st.SetInstallments(6)
	b.Flush(context.Background())
	if storage.saveCalls != 2 {
		t.Fatalf("save calls after second change = %d, want 2", storage.saveCalls)
	}
}

func TestBridge_Flush_RetriesAfterSaveError(t *testing.T) {
	storage := newStubStorage()
	st := store.NewCheckoutStore()
	b := NewBridge(storage, st, "session-1", zap.NewNop())

	st.SetQuantity(2)
	storage.saveErr = errors.New("storage down")
	b.Flush(context.Background())

	if _, ok := storage.data["session-1"]; ok {
		t.Fatalf("payload must not be stored on save error")
	}

	storage.saveErr = nil
	b.Flush(context.Background())

	if _, ok := storage.data["session-1"]; !ok {
		t.Fatalf("payload must be stored after storage recovers")
	}
}

func TestBridge_RoundTrip(t *testing.T) {
	storage := newStubStorage()

	src := store.NewCheckoutStore()
	src.Initialize(sampleState())
	NewBridge(storage, src, "session-1", zap.NewNop()).Flush(context.Background())

	dst := store.NewCheckoutStore()
	b := NewBridge(storage, dst, "session-1", zap.NewNop())
	b.LoadOnce(context.Background())

	if got, want := dst.State(), src.State(); got != want {
		t.Fatalf("round trip state = %+v, want %+v", got, want)
	}
}

func TestBridge_Clear_RemovesDraft(t *testing.T) {
	storage := newStubStorage()
	st := store.NewCheckoutStore()
	b := NewBridge(storage, st, "session-1", zap.NewNop())

	st.SetQuantity(2)
	b.Flush(context.Background())
	if _, ok := storage.data["session-1"]; !ok {
		t.Fatalf("draft not stored before clear")
	}

	b.Clear(context.Background())
	if _, ok := storage.data["session-1"]; ok {
		t.Fatalf("draft still stored after clear")
	}
}

func TestBridge_NilStorageIsNoOp(t *testing.T) {
	st := store.NewCheckoutStore()
	b := NewBridge(nil, st, "session-1", zap.NewNop())

	b.LoadOnce(context.Background())
	st.SetQuantity(5)
	b.Flush(context.Background())
	b.Clear(context.Background())

	if got := st.State().Quantity; got != 5 {
		t.Fatalf("in-memory state must keep working without storage, quantity = %d", got)
	}
}
