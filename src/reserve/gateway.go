package reserve

import (
	"bytes"
	"campusbites/src/config"
	"campusbites/src/models"
	"campusbites/src/types"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/tidwall/gjson"
)

// AuthContext carries the caller's identity. It is threaded into the gateway
// explicitly; nothing in this package reads ambient session state.
type AuthContext struct {
	ProfileID string
	Token     string
}

func (a AuthContext) SignedIn() bool {
	return a.ProfileID != ""
}

// ItemState is the coordinator's working copy of one food row. Quantity and
// Level are advisory between reconciliations: the gateway adjusts them
// optimistically after a confirmed reserve, and the next authoritative fetch
// overwrites them wholesale.
type ItemState struct {
	ID          uint
	Name        string
	Quantity    *int
	Level       types.StockLevel
	DietaryTags []string
}

func (s *ItemState) Stock() StockView {
	return Stock(s.Quantity, s.Level)
}

// Gateway submits confirm/cancel operations for one item at a time and
// fetches the authoritative views used by reconciliation.
type Gateway struct {
	base string
	hc   *http.Client
	auth AuthContext

	mediumCeiling int
	lowCeiling    int
}

func NewGateway(baseURL string, auth AuthContext, hc *http.Client) *Gateway {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Gateway{
		base:          baseURL,
		hc:            hc,
		auth:          auth,
		mediumCeiling: config.MediumStockCeiling(),
		lowCeiling:    config.LowStockCeiling(),
	}
}

func (g *Gateway) Auth() AuthContext {
	return g.auth
}

// allowedUnits computes how many units the local state believes are still
// reservable. The second return is true for unlimited (bulk high or unknown)
// items. An optimization to skip obviously-futile calls, not a guarantee:
// the backend stays the arbiter.
func (g *Gateway) allowedUnits(item *ItemState) (int, bool) {
	if item.Quantity != nil {
		return *item.Quantity, false
	}
	switch item.Level {
	case types.STOCK_MEDIUM:
		return g.mediumCeiling, false
	case types.STOCK_LOW:
		return g.lowCeiling, false
	default:
		// high or untracked: never blocked locally
		return 0, true
	}
}

// ConfirmOne reserves a single unit of the item. On success the local
// quantity is decremented and the level re-banded; both are superseded by
// the next reconciliation.
func (g *Gateway) ConfirmOne(ctx context.Context, item *ItemState) error {
	if !g.auth.SignedIn() {
		return ErrNotSignedIn
	}
	allowed, unlimited := g.allowedUnits(item)
	if !unlimited && allowed < 1 {
		return fmt.Errorf("%s: %w", item.Name, ErrInsufficientStock)
	}
	body := types.ReserveRequestBody{
		FoodID:    item.ID,
		Quantity:  1,
		ProfileID: g.auth.ProfileID,
	}
	if err := g.call(ctx, http.MethodPut, "/reserve/", body); err != nil {
		return fmt.Errorf("%s: %w: %s", item.Name, ErrReservationFailed, err.Error())
	}
	if item.Quantity != nil {
		next := *item.Quantity - 1
		if next < 0 {
			next = 0
		}
		item.Quantity = &next
		item.Level = BandFor(next)
	}
	return nil
}

// CancelOne cancels a single-unit reservation. Local state is never touched
// here; a failed cancel leaves everything as-is and a successful one is
// reflected by the reconciliation that follows.
func (g *Gateway) CancelOne(ctx context.Context, foodId uint) error {
	if !g.auth.SignedIn() {
		return ErrNotSignedIn
	}
	body := types.ReserveRequestBody{
		FoodID:    foodId,
		Quantity:  1,
		ProfileID: g.auth.ProfileID,
	}
	if err := g.call(ctx, http.MethodPost, "/reserve/cancel", body); err != nil {
		return fmt.Errorf("food %d: %w: %s", foodId, ErrCancellationFailed, err.Error())
	}
	return nil
}

// EventFood fetches the authoritative food rows for an event.
func (g *Gateway) EventFood(ctx context.Context, eventId uint) ([]models.FoodItem, error) {
	raw, err := g.get(ctx, fmt.Sprintf("/events/%d/food", eventId))
	if err != nil {
		return nil, err
	}
	var payload struct {
		Data []models.FoodItem `json:"data"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}
	return payload.Data, nil
}

// ReservedFoodIDs fetches the ids of food items the profile holds active
// reservations for.
func (g *Gateway) ReservedFoodIDs(ctx context.Context) ([]uint, error) {
	if !g.auth.SignedIn() {
		return nil, ErrNotSignedIn
	}
	raw, err := g.get(ctx, fmt.Sprintf("/profiles/%s/reservations", g.auth.ProfileID))
	if err != nil {
		return nil, err
	}
	var ids []uint
	gjson.GetBytes(raw, "reserved_items.#.food_id").ForEach(func(_, value gjson.Result) bool {
		ids = append(ids, uint(value.Uint()))
		return true
	})
	return ids, nil
}

func (g *Gateway) call(ctx context.Context, method, path string, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, g.base+path, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if g.auth.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.auth.Token)
	}
	res, err := g.hc.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		rbody, _ := io.ReadAll(res.Body)
		detail := gjson.GetBytes(rbody, "detail").String()
		if detail == "" {
			detail = res.Status
		}
		return fmt.Errorf("%s", detail)
	}
	io.Copy(io.Discard, res.Body)
	return nil
}

func (g *Gateway) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.base+path, nil)
	if err != nil {
		return nil, err
	}
	if g.auth.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.auth.Token)
	}
	res, err := g.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	rbody, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		detail := gjson.GetBytes(rbody, "detail").String()
		if detail == "" {
			detail = res.Status
		}
		log.Printf("GET %s: %s\n", path, detail)
		return nil, fmt.Errorf("%s", detail)
	}
	return rbody, nil
}
