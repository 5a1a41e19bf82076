package reserve

import (
	"campusbites/src/types"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProfileID = "5df7fb30-6f45-4d34-a766-bf2a53df2f05"

type stubItem struct {
	name     string
	quantity *int
	level    types.StockLevel
}

// stubService fakes the inventory API: in-memory quantities, per-item
// programmed failures, and call counters.
type stubService struct {
	mu sync.Mutex

	items    map[uint]*stubItem
	order    []uint
	reserved map[uint]int

	failReserve map[uint]bool
	failFood    bool

	reserveCalls int
	cancelCalls  int
	foodCalls    int

	blockReserve   chan struct{}
	reserveStarted chan struct{}
}

func newStubService() *stubService {
	return &stubService{
		items:       make(map[uint]*stubItem),
		reserved:    make(map[uint]int),
		failReserve: make(map[uint]bool),
	}
}

func (s *stubService) add(id uint, name string, quantity *int, level types.StockLevel) {
	s.items[id] = &stubItem{name: name, quantity: quantity, level: level}
	s.order = append(s.order, id)
}

func (s *stubService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/food"):
		s.mu.Lock()
		defer s.mu.Unlock()
		s.foodCalls++
		if s.failFood {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `{"detail":"boom"}`)
			return
		}
		rows := make([]map[string]any, 0, len(s.order))
		for _, id := range s.order {
			item := s.items[id]
			row := map[string]any{
				"id":   id,
				"name": item.name,
			}
			if item.quantity != nil {
				row["quantity"] = *item.quantity
			} else {
				row["quantity"] = nil
			}
			if item.level != "" {
				row["stockLevel"] = item.level
			}
			rows = append(rows, row)
		}
		json.NewEncoder(w).Encode(map[string]any{"data": rows, "count": len(rows)})

	case r.Method == http.MethodPut && r.URL.Path == "/reserve/":
		if s.reserveStarted != nil {
			s.reserveStarted <- struct{}{}
		}
		if s.blockReserve != nil {
			<-s.blockReserve
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		s.reserveCalls++
		var body types.ReserveRequestBody
		json.NewDecoder(r.Body).Decode(&body)
		item, ok := s.items[body.FoodID]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"detail":"food item not found"}`)
			return
		}
		if s.failReserve[body.FoodID] {
			w.WriteHeader(http.StatusConflict)
			fmt.Fprint(w, `{"detail":"not enough stock remaining"}`)
			return
		}
		if item.quantity != nil {
			if *item.quantity < body.Quantity {
				w.WriteHeader(http.StatusConflict)
				fmt.Fprint(w, `{"detail":"not enough stock remaining"}`)
				return
			}
			*item.quantity -= body.Quantity
		}
		s.reserved[body.FoodID] += body.Quantity
		fmt.Fprint(w, `{"data":{}}`)

	case r.Method == http.MethodPost && r.URL.Path == "/reserve/cancel":
		s.mu.Lock()
		defer s.mu.Unlock()
		s.cancelCalls++
		var body types.ReserveRequestBody
		json.NewDecoder(r.Body).Decode(&body)
		if s.reserved[body.FoodID] < body.Quantity {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"detail":"no active reservation for this item"}`)
			return
		}
		s.reserved[body.FoodID] -= body.Quantity
		if item := s.items[body.FoodID]; item != nil && item.quantity != nil {
			*item.quantity += body.Quantity
		}
		w.WriteHeader(http.StatusNoContent)

	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/reservations"):
		s.mu.Lock()
		defer s.mu.Unlock()
		reserved := make([]map[string]any, 0)
		for id, qty := range s.reserved {
			if qty > 0 {
				reserved = append(reserved, map[string]any{"food_id": id, "quantity": qty})
			}
		}
		json.NewEncoder(w).Encode(map[string]any{
			"reserved_items": reserved,
			"food_rows":      []any{},
		})

	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"detail":"not found"}`)
	}
}

func newTestCoordinator(t *testing.T, stub *stubService, auth AuthContext) *Coordinator {
	t.Helper()
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)
	gw := NewGateway(srv.URL, auth, srv.Client())
	return NewCoordinator(1, gw)
}

func signedIn() AuthContext {
	return AuthContext{ProfileID: testProfileID}
}

func TestConfirmReservesAndReconciles(t *testing.T) {
	stub := newStubService()
	stub.add(1, "Vegetarian Pizza", intp(1), "")
	c := newTestCoordinator(t, stub, signedIn())
	require.NoError(t, c.Load(context.Background()))

	assert.True(t, c.Toggle(1))
	batch, err := c.ConfirmSelected(context.Background())
	require.NoError(t, err)
	require.Len(t, batch.Results, 1)
	assert.NoError(t, batch.Results[0].Err)
	assert.True(t, batch.Reconciled)
	assert.Equal(t, 1, batch.Succeeded())

	assert.True(t, c.Reserved(1))
	assert.Equal(t, 0, c.SelectionSize())
	view, ok := c.Availability(1)
	require.True(t, ok)
	assert.Equal(t, SoldOut, view.State)
}

func TestInsufficientStockSkipsNetwork(t *testing.T) {
	stub := newStubService()
	stub.add(1, "Bagels", intp(0), "")
	c := newTestCoordinator(t, stub, signedIn())
	require.NoError(t, c.Load(context.Background()))

	assert.True(t, c.Toggle(1))
	batch, err := c.ConfirmSelected(context.Background())
	require.NoError(t, err)
	require.Len(t, batch.Results, 1)
	assert.ErrorIs(t, batch.Results[0].Err, ErrInsufficientStock)
	assert.Equal(t, 0, stub.reserveCalls)
	assert.Equal(t, 0, c.SelectionSize())
}

func TestNotSignedInAbortsBatch(t *testing.T) {
	stub := newStubService()
	stub.add(1, "Cookies", intp(5), "")
	stub.add(2, "Coffee", nil, types.STOCK_HIGH)
	c := newTestCoordinator(t, stub, AuthContext{})
	require.NoError(t, c.Load(context.Background()))
	foodCallsAfterLoad := stub.foodCalls

	assert.True(t, c.Toggle(1))
	assert.True(t, c.Toggle(2))
	_, err := c.ConfirmSelected(context.Background())
	assert.ErrorIs(t, err, ErrNotSignedIn)
	assert.Equal(t, 0, stub.reserveCalls)
	assert.Equal(t, foodCallsAfterLoad, stub.foodCalls)
	assert.Equal(t, 0, c.SelectionSize())
}

func TestBestEffortBatchContinuesPastFailures(t *testing.T) {
	stub := newStubService()
	stub.add(1, "Pizza", intp(4), "")
	stub.add(2, "Wraps", intp(4), "")
	stub.add(3, "Fruit", intp(4), "")
	stub.failReserve[2] = true
	c := newTestCoordinator(t, stub, signedIn())
	require.NoError(t, c.Load(context.Background()))

	c.Toggle(1)
	c.Toggle(2)
	c.Toggle(3)
	batch, err := c.ConfirmSelected(context.Background())
	require.NoError(t, err)
	require.Len(t, batch.Results, 3)
	assert.Equal(t, 2, batch.Succeeded())
	assert.Equal(t, 1, batch.Failed())
	assert.ErrorIs(t, batch.Results[1].Err, ErrReservationFailed)

	// items 1 and 3 stay reserved; no rollback
	assert.True(t, c.Reserved(1))
	assert.False(t, c.Reserved(2))
	assert.True(t, c.Reserved(3))
}

func TestToggleBlockedForPersistedItem(t *testing.T) {
	stub := newStubService()
	stub.add(1, "Salad", intp(3), "")
	c := newTestCoordinator(t, stub, signedIn())
	require.NoError(t, c.Load(context.Background()))

	c.Toggle(1)
	_, err := c.ConfirmSelected(context.Background())
	require.NoError(t, err)
	require.True(t, c.Reserved(1))

	assert.False(t, c.Toggle(1))
	assert.Equal(t, 0, c.SelectionSize())
}

func TestCancelRestoresFromAuthoritativeFetch(t *testing.T) {
	stub := newStubService()
	stub.add(1, "Sandwiches", intp(5), "")
	c := newTestCoordinator(t, stub, signedIn())
	require.NoError(t, c.Load(context.Background()))

	c.Toggle(1)
	_, err := c.ConfirmSelected(context.Background())
	require.NoError(t, err)
	view, _ := c.Availability(1)
	assert.Equal(t, 4, view.Count)

	require.NoError(t, c.Cancel(context.Background(), 1))
	assert.False(t, c.Reserved(1))
	view, _ = c.Availability(1)
	assert.Equal(t, CountedAvailable, view.State)
	assert.Equal(t, 5, view.Count)
}

func TestCancelWithoutReservation(t *testing.T) {
	stub := newStubService()
	stub.add(1, "Muffins", intp(2), "")
	c := newTestCoordinator(t, stub, signedIn())
	require.NoError(t, c.Load(context.Background()))

	err := c.Cancel(context.Background(), 1)
	assert.ErrorIs(t, err, ErrCancellationFailed)
	assert.Equal(t, 0, stub.cancelCalls)
}

func TestReconciliationFailureKeepsOptimisticState(t *testing.T) {
	stub := newStubService()
	stub.add(1, "Pasta", intp(3), "")
	c := newTestCoordinator(t, stub, signedIn())
	require.NoError(t, c.Load(context.Background()))

	stub.mu.Lock()
	stub.failFood = true
	stub.mu.Unlock()

	c.Toggle(1)
	batch, err := c.ConfirmSelected(context.Background())
	require.NoError(t, err)
	assert.False(t, batch.Reconciled)
	assert.NoError(t, batch.Results[0].Err)

	// optimistic decrement survives until a later refresh succeeds
	view, _ := c.Availability(1)
	assert.Equal(t, 2, view.Count)
}

func TestAvailabilityReadsDuringConfirm(t *testing.T) {
	stub := newStubService()
	stub.add(1, "Grilled Chicken", intp(9), "")
	stub.blockReserve = make(chan struct{})
	stub.reserveStarted = make(chan struct{}, 1)
	c := newTestCoordinator(t, stub, signedIn())
	require.NoError(t, c.Load(context.Background()))

	c.Toggle(1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.ConfirmSelected(context.Background())
	}()

	<-stub.reserveStarted
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for i := 0; i < 1000; i++ {
			if view, ok := c.Availability(1); ok {
				assert.NotEqual(t, SoldOut, view.State)
			}
			c.Items()
		}
	}()
	<-readerDone

	close(stub.blockReserve)
	<-done
	view, _ := c.Availability(1)
	assert.Equal(t, 8, view.Count)
}

func TestConfirmWhileBatchInFlight(t *testing.T) {
	stub := newStubService()
	stub.add(1, "Rice Bowl", intp(9), "")
	stub.blockReserve = make(chan struct{})
	stub.reserveStarted = make(chan struct{}, 1)
	c := newTestCoordinator(t, stub, signedIn())
	require.NoError(t, c.Load(context.Background()))

	c.Toggle(1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.ConfirmSelected(context.Background())
	}()

	<-stub.reserveStarted
	err := c.Cancel(context.Background(), 1)
	assert.ErrorIs(t, err, ErrBusy)

	close(stub.blockReserve)
	<-done
	assert.True(t, c.Reserved(1))
}
