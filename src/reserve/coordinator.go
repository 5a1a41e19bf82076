package reserve

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// ItemResult is the per-item outcome of a confirm batch. Err is nil for a
// confirmed reservation.
type ItemResult struct {
	ID   uint
	Name string
	Err  error
}

// BatchResult reports a whole confirm batch. Callers decide how to present
// partial failure; there is no blanket success signal.
type BatchResult struct {
	Results    []ItemResult
	Reconciled bool
}

func (b BatchResult) Succeeded() int {
	n := 0
	for _, r := range b.Results {
		if r.Err == nil {
			n++
		}
	}
	return n
}

func (b BatchResult) Failed() int {
	return len(b.Results) - b.Succeeded()
}

// Coordinator tracks the reservation state of one event's food items: the
// working item states, the staged selection, and the server-confirmed
// reservation set. All mutations go through the remote service; local
// quantity changes are optimistic and replaced wholesale by reconciliation.
type Coordinator struct {
	mu   sync.Mutex
	busy bool

	eventID   uint
	gateway   *Gateway
	items     []*ItemState
	index     map[uint]*ItemState
	persisted map[uint]struct{}
	selection *Selection
}

func NewCoordinator(eventID uint, gateway *Gateway) *Coordinator {
	c := &Coordinator{
		eventID:   eventID,
		gateway:   gateway,
		index:     make(map[uint]*ItemState),
		persisted: make(map[uint]struct{}),
	}
	c.selection = NewSelection(c.isPersisted)
	return c
}

func (c *Coordinator) isPersisted(id uint) bool {
	_, ok := c.persisted[id]
	return ok
}

// Load performs the initial authoritative fetch. Unlike the post-batch
// reconciliation, a failure here is fatal: there is no earlier state to fall
// back on.
func (c *Coordinator) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refresh(ctx)
}

// Toggle stages or unstages an item for the next confirm batch and reports
// whether the selection changed. Items already reserved by the user are
// locked; cancellation is a separate explicit action.
func (c *Coordinator) Toggle(id uint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.index[id]; !ok {
		return false
	}
	return c.selection.Toggle(id)
}

// ConfirmSelected submits one reservation per selected item, in selection
// order, best-effort. The selection is cleared afterwards no matter what,
// and a reconciliation fetch replaces all derived state. A second batch
// while one is in flight is rejected with ErrBusy.
func (c *Coordinator) ConfirmSelected(ctx context.Context) (BatchResult, error) {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return BatchResult{}, ErrBusy
	}
	c.busy = true
	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	if !c.gateway.Auth().SignedIn() {
		// Abort before any network call; the selection is still cleared.
		c.selection.Clear()
		c.mu.Unlock()
		return BatchResult{}, ErrNotSignedIn
	}

	staged := c.selection.Items()
	results := make([]ItemResult, 0, len(staged))
	c.mu.Unlock()

	for _, id := range staged {
		// The gateway works on a private snapshot; the optimistic update is
		// copied back under the lock so concurrent readers never observe a
		// half-written item.
		c.mu.Lock()
		item, known := c.index[id]
		var snap ItemState
		if known {
			snap = *item
		}
		c.mu.Unlock()
		if !known {
			results = append(results, ItemResult{ID: id, Err: fmt.Errorf("unknown item %d", id)})
			continue
		}
		err := c.gateway.ConfirmOne(ctx, &snap)
		if err != nil {
			log.Printf("Confirm failed for %q: %s\n", snap.Name, err.Error())
		} else {
			c.mu.Lock()
			if cur, ok := c.index[id]; ok {
				cur.Quantity = snap.Quantity
				cur.Level = snap.Level
			}
			c.mu.Unlock()
		}
		results = append(results, ItemResult{ID: id, Name: snap.Name, Err: err})
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection.Clear()
	reconciled := true
	if err := c.refresh(ctx); err != nil {
		// Stale optimistic state is acceptable until the next refresh.
		log.Printf("%s: %s\n", ErrReconciliationFailed.Error(), err.Error())
		reconciled = false
	}
	return BatchResult{Results: results, Reconciled: reconciled}, nil
}

// Cancel revokes a confirmed reservation. Only items in the persisted set
// can be canceled. The reconciliation afterwards restores the item's
// quantity from the authoritative fetch, not from a local increment.
func (c *Coordinator) Cancel(ctx context.Context, id uint) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}
	c.busy = true
	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	if _, ok := c.persisted[id]; !ok {
		c.mu.Unlock()
		return fmt.Errorf("food %d: %w: no confirmed reservation", id, ErrCancellationFailed)
	}
	c.mu.Unlock()

	cancelErr := c.gateway.CancelOne(ctx, id)
	if cancelErr != nil {
		log.Printf("Cancel failed for food %d: %s\n", id, cancelErr.Error())
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.refresh(ctx); err != nil {
		log.Printf("%s: %s\n", ErrReconciliationFailed.Error(), err.Error())
	}
	return cancelErr
}

// refresh re-fetches the event's food rows and the user's reservation set
// and replaces every piece of derived state wholesale. Caller holds mu.
func (c *Coordinator) refresh(ctx context.Context) error {
	rows, err := c.gateway.EventFood(ctx, c.eventID)
	if err != nil {
		return err
	}
	items := make([]*ItemState, 0, len(rows))
	index := make(map[uint]*ItemState, len(rows))
	for _, row := range rows {
		state := &ItemState{
			ID:          row.ID,
			Name:        row.Name,
			Quantity:    row.Quantity,
			Level:       row.StockLevel,
			DietaryTags: row.DietaryTags,
		}
		items = append(items, state)
		index[row.ID] = state
	}

	persisted := make(map[uint]struct{})
	if c.gateway.Auth().SignedIn() {
		ids, err := c.gateway.ReservedFoodIDs(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if _, ok := index[id]; ok {
				persisted[id] = struct{}{}
			}
		}
	}

	c.items = items
	c.index = index
	c.persisted = persisted
	return nil
}

// Items returns the current working states in server order.
func (c *Coordinator) Items() []*ItemState {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*ItemState, len(c.items))
	copy(out, c.items)
	return out
}

// Availability derives the display state for one item.
func (c *Coordinator) Availability(id uint) (StockView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	item, ok := c.index[id]
	if !ok {
		return StockView{}, false
	}
	return item.Stock(), true
}

// Reserved reports whether the user holds a confirmed reservation for id.
func (c *Coordinator) Reserved(id uint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isPersisted(id)
}

// Selected reports whether id is staged for the next confirm batch.
func (c *Coordinator) Selected(id uint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection.Has(id)
}

// SelectionSize returns the number of staged items.
func (c *Coordinator) SelectionSize() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection.Len()
}
