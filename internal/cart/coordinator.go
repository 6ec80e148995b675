package cart

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/angelmondragon/packfinderz-client/internal/store"
	pkgerrors "github.com/angelmondragon/packfinderz-client/pkg/errors"
	"github.com/angelmondragon/packfinderz-client/pkg/logger"
)

const snapshotKey = "snapshot"

var (
	// ErrMutationInFlight rejects a second mutation on an item id while
	// one is still outstanding; rows are independent, so other ids are
	// unaffected.
	ErrMutationInFlight = errors.New("mutation already in flight for this item")

	errQuantityRequired = errors.New("quantity must be positive")
	errItemIDRequired   = errors.New("item id is required")
)

// Remote is the server-side mirror of the cart. Implemented over the
// transport client; faked in tests.
type Remote interface {
	Fetch(ctx context.Context) ([]Item, error)
	Create(ctx context.Context, item Item) error
	Update(ctx context.Context, item Item) error
	SetQuantity(ctx context.Context, id string, quantity int) error
	Delete(ctx context.Context, id string) error
}

// Coordinator is the cart's transactional core: every mutation lands in
// the persisted store first, then mirrors to the remote service. Remote
// failure never rolls back the local view; the local cart stays
// authoritative for what the user sees.
type Coordinator struct {
	store  *store.Store
	remote Remote
	logg   *logger.Logger

	mu        sync.Mutex
	inFlight  map[string]bool
	lastMerge string
}

func NewCoordinator(st *store.Store, remote Remote, logg *logger.Logger) (*Coordinator, error) {
	if st == nil {
		return nil, fmt.Errorf("store required")
	}
	if remote == nil {
		return nil, fmt.Errorf("remote cart required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Coordinator{
		store:    st,
		remote:   remote,
		logg:     logg,
		inFlight: map[string]bool{},
	}, nil
}

// Items returns the current local snapshot.
func (c *Coordinator) Items(ctx context.Context) ([]Item, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked(ctx)
}

// InFlight reports whether a mutation for the item id is outstanding,
// so the UI can show a per-row spinner without blocking other rows.
func (c *Coordinator) InFlight(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight[id]
}

// Add puts the item in the cart. An existing id has the incoming
// quantity summed onto it; interactive adds accumulate.
func (c *Coordinator) Add(ctx context.Context, item Item) error {
	if item.ID == "" {
		return errItemIDRequired
	}
	if item.Quantity <= 0 {
		return errQuantityRequired
	}
	if err := c.begin(item.ID); err != nil {
		return err
	}
	defer c.end(item.ID)

	item.Provenance = ProvenanceLocal

	c.mu.Lock()
	items, err := c.loadLocked(ctx)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	existing := indexOf(items, item.ID)
	if existing >= 0 {
		items[existing].Quantity += item.Quantity
		item = items[existing]
	} else {
		items = append(items, item)
	}
	c.saveLocked(ctx, items)
	c.mu.Unlock()

	if existing >= 0 {
		c.mirrorQuantity(ctx, item)
	} else {
		c.mirrorCreate(ctx, item)
	}
	return nil
}

// SetQuantity replaces the stored quantity for the id; this is the
// explicit-edit path, distinct from Add's summing. Zero or below routes
// to Remove.
func (c *Coordinator) SetQuantity(ctx context.Context, id string, quantity int) error {
	if id == "" {
		return errItemIDRequired
	}
	if quantity <= 0 {
		return c.Remove(ctx, id)
	}
	if err := c.begin(id); err != nil {
		return err
	}
	defer c.end(id)

	c.mu.Lock()
	items, err := c.loadLocked(ctx)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	existing := indexOf(items, id)
	if existing < 0 {
		c.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeNotFound, "item is not in the cart")
	}
	items[existing].Quantity = quantity
	updated := items[existing]
	c.saveLocked(ctx, items)
	c.mu.Unlock()

	c.mirrorQuantity(ctx, updated)
	return nil
}

// Remove deletes the item locally, then attempts the remote delete with
// a qty-0 fallback. Both remote paths failing still leaves the local
// deletion standing.
func (c *Coordinator) Remove(ctx context.Context, id string) error {
	if id == "" {
		return errItemIDRequired
	}
	if err := c.begin(id); err != nil {
		return err
	}
	defer c.end(id)

	c.mu.Lock()
	items, err := c.loadLocked(ctx)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	filtered := items[:0]
	for _, item := range items {
		if item.ID != id {
			filtered = append(filtered, item)
		}
	}
	c.saveLocked(ctx, filtered)
	c.mu.Unlock()

	logCtx := c.logg.WithItemID(ctx, id)
	if err := c.remote.Delete(ctx, id); err != nil {
		c.logg.Warn(c.logg.WithField(logCtx, "error", err.Error()), "remote delete failed, falling back to qty-0 update")
		if err := c.remote.SetQuantity(ctx, id, 0); err != nil {
			c.logg.Error(logCtx, "remote removal mirror failed, local deletion stands", err)
		}
	}
	return nil
}

// Merge applies a cart payload arriving from another flow (reorder):
// incoming quantities replace existing ones per id, so replaying the
// same payload is a no-op. The fingerprint guard keeps a re-rendering
// screen from reprocessing an unchanged parameter set.
func (c *Coordinator) Merge(ctx context.Context, incoming []Item) error {
	if len(incoming) == 0 {
		return nil
	}
	fingerprint, err := fingerprintOf(incoming)
	if err != nil {
		return err
	}

	c.mu.Lock()
	if c.lastMerge == fingerprint {
		c.mu.Unlock()
		return nil
	}
	items, err := c.loadLocked(ctx)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	var mirrorUpdates, mirrorCreates []Item
	for _, in := range incoming {
		if in.ID == "" || in.Quantity <= 0 {
			continue
		}
		in.Provenance = ProvenanceLocal
		if existing := indexOf(items, in.ID); existing >= 0 {
			items[existing].Quantity = in.Quantity
			mirrorUpdates = append(mirrorUpdates, items[existing])
		} else {
			items = append(items, in)
			mirrorCreates = append(mirrorCreates, in)
		}
	}
	c.saveLocked(ctx, items)
	c.lastMerge = fingerprint
	c.mu.Unlock()

	for _, item := range mirrorUpdates {
		c.mirrorQuantity(ctx, item)
	}
	for _, item := range mirrorCreates {
		c.mirrorCreate(ctx, item)
	}
	return nil
}

// RefreshFromRemote replaces the local snapshot with the server's view,
// keeping any row that has a mutation outstanding.
func (c *Coordinator) RefreshFromRemote(ctx context.Context) error {
	remoteItems, err := c.remote.Fetch(ctx)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	local, err := c.loadLocked(ctx)
	if err != nil {
		return err
	}

	merged := make([]Item, 0, len(remoteItems))
	for _, item := range remoteItems {
		if c.inFlight[item.ID] {
			if existing := indexOf(local, item.ID); existing >= 0 {
				merged = append(merged, local[existing])
				continue
			}
		}
		item.Provenance = ProvenanceRemote
		merged = append(merged, item)
	}
	for _, item := range local {
		if c.inFlight[item.ID] && indexOf(merged, item.ID) < 0 {
			merged = append(merged, item)
		}
	}
	c.saveLocked(ctx, merged)
	return nil
}

// Clear drops the local snapshot. Used after a completed checkout.
func (c *Coordinator) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Delete(ctx, store.NamespaceCart, snapshotKey)
}

// mirrorQuantity tries the update-by-id call first and falls back to a
// create when the server says the item is not there; local and remote
// cart state are allowed to diverge.
func (c *Coordinator) mirrorQuantity(ctx context.Context, item Item) {
	logCtx := c.logg.WithItemID(ctx, item.ID)
	err := c.remote.Update(ctx, item)
	if err == nil {
		return
	}
	if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
		if err := c.remote.Create(ctx, item); err != nil {
			c.logg.Error(logCtx, "remote create fallback failed, local cart stands", err)
		}
		return
	}
	c.logg.Error(logCtx, "remote quantity mirror failed, local cart stands", err)
}

func (c *Coordinator) mirrorCreate(ctx context.Context, item Item) {
	if err := c.remote.Create(ctx, item); err != nil {
		c.logg.Error(c.logg.WithItemID(ctx, item.ID), "remote add mirror failed, local cart stands", err)
	}
}

func (c *Coordinator) begin(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inFlight[id] {
		return ErrMutationInFlight
	}
	c.inFlight[id] = true
	return nil
}

func (c *Coordinator) end(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inFlight, id)
}

func (c *Coordinator) loadLocked(ctx context.Context) ([]Item, error) {
	var items []Item
	if _, err := c.store.GetJSON(ctx, store.NamespaceCart, snapshotKey, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// saveLocked rewrites the whole snapshot; partial patches would invite
// lost updates from interleaved writers.
func (c *Coordinator) saveLocked(ctx context.Context, items []Item) {
	if items == nil {
		items = []Item{}
	}
	if err := c.store.PutJSON(ctx, store.NamespaceCart, snapshotKey, items); err != nil {
		c.logg.Error(ctx, "persisting cart snapshot failed", err)
	}
}

func indexOf(items []Item, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func fingerprintOf(items []Item) (string, error) {
	payload, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("fingerprinting merge payload: %w", err)
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}
