package address

import (
	"context"
	"fmt"
	"strconv"

	"github.com/angelmondragon/packfinderz-client/internal/store"
	"github.com/angelmondragon/packfinderz-client/pkg/logger"
)

const chosenDefaultKey = "default_address_id"

// Resolver picks "the" default address out of a list whose remote
// default-flag semantics are unreliable. The layered fallback exists to
// produce a stable, explainable choice even when the server's signal is
// ambiguous or stale.
type Resolver struct {
	store *store.Store
	logg  *logger.Logger
}

func NewResolver(st *store.Store, logg *logger.Logger) (*Resolver, error) {
	if st == nil {
		return nil, fmt.Errorf("store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Resolver{store: st, logg: logg}, nil
}

// ChooseDefault persists the user's explicit default choice; it wins
// over every remote flag on subsequent resolutions.
func (r *Resolver) ChooseDefault(ctx context.Context, id string) error {
	if id == "" {
		return r.store.Delete(ctx, store.NamespacePrefs, chosenDefaultKey)
	}
	return r.store.Put(ctx, store.NamespacePrefs, chosenDefaultKey, []byte(id))
}

// Resolve applies the priority chain: stored user choice, recognized
// remote default flags, any other default-like hint, recency, first
// entry. An empty list yields nil and the caller prompts the user.
func (r *Resolver) Resolve(ctx context.Context, addrs []Address) (*Address, error) {
	if len(addrs) == 0 {
		return nil, nil
	}

	chosen, ok, err := r.store.Get(ctx, store.NamespacePrefs, chosenDefaultKey)
	if err != nil {
		return nil, err
	}
	if ok {
		if match := matchByID(string(chosen), addrs); match != nil {
			return match, nil
		}
		logCtx := r.logg.WithField(ctx, "chosen_id", string(chosen))
		r.logg.Debug(logCtx, "stored default address id no longer present")
	}

	if match := pickFlagged(addrs, func(a Address) bool { return a.IsDefault }); match != nil {
		return match, nil
	}
	if match := pickFlagged(addrs, func(a Address) bool { return a.DefaultHint }); match != nil {
		return match, nil
	}

	// The user probably just edited the freshest one.
	return mostRecent(addrs), nil
}

func matchByID(chosen string, addrs []Address) *Address {
	for i := range addrs {
		addr := &addrs[i]
		if addr.ID > 0 && strconv.FormatInt(addr.ID, 10) == chosen {
			return addr
		}
		if addr.UID != "" && addr.UID == chosen {
			return addr
		}
	}
	return nil
}

// pickFlagged returns the single flagged address, or the most recently
// modified one when the backend flags several at once.
func pickFlagged(addrs []Address, flagged func(Address) bool) *Address {
	var candidates []Address
	for _, addr := range addrs {
		if flagged(addr) {
			candidates = append(candidates, addr)
		}
	}
	switch len(candidates) {
	case 0:
		return nil
	case 1:
		return &candidates[0]
	default:
		return mostRecent(candidates)
	}
}

func mostRecent(addrs []Address) *Address {
	best := 0
	for i := 1; i < len(addrs); i++ {
		if addrs[i].ModifiedAt().After(addrs[best].ModifiedAt()) {
			best = i
		}
	}
	return &addrs[best]
}
