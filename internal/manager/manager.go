// Package manager implements the multi-world registry from spec.md
// section 4.7/section 6: SpawnItem, GetItemList, GetItemInfo, DeleteItem,
// and Custom(id, WorldRequest) dispatch to one Supervisor per world id.
// Grounded on the mutex-guarded map in cuemby-warren's
// pkg/manager/token.go (TokenManager) generalized from tokens to worlds,
// and on the per-node goroutine lifecycle in pkg/worker/worker.go.
package manager

import (
	"context"
	"crypto/rand"
	"sync"

	channerics "github.com/niceyeti/channerics/channels"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/kentwait/epidemigo/internal/simparams"
	"github.com/kentwait/epidemigo/internal/supervisor"
	"github.com/kentwait/epidemigo/internal/telemetry"
	"github.com/kentwait/epidemigo/internal/wire"
)

const idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// newItemID draws a 3-character alphanumeric world id. wire.NewCorrelationID
// covers the general unique-token case (see that doc comment); this id's
// length is fixed by spec.md section 6 at exactly 3 characters, so a direct
// crypto/rand draw over a fixed alphabet is the pragmatic stdlib choice here
// instead.
func newItemID() string {
	b := make([]byte, 3)
	if _, err := rand.Read(b); err != nil {
		panic(errors.Wrap(err, "reading randomness for item id"))
	}
	for i, v := range b {
		b[i] = idAlphabet[int(v)%len(idAlphabet)]
	}
	return string(b)
}

type entry struct {
	sup    *supervisor.Supervisor
	cancel context.CancelFunc
}

// Manager is the mutex-guarded id -> Supervisor registry a transport
// adapter sits in front of.
type Manager struct {
	log zerolog.Logger

	mu    sync.RWMutex
	items map[string]*entry
}

// New returns an empty Manager.
func New(log zerolog.Logger) *Manager {
	return &Manager{
		log:   log,
		items: make(map[string]*entry),
	}
}

// Spawn creates a new World behind a fresh Supervisor running on its own
// goroutine, assigns it a unique 3-character id, and returns that id.
func (m *Manager) Spawn(wp simparams.WorldParams, rp simparams.RuntimeParams, seed uint64) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var id string
	for {
		id = newItemID()
		if _, exists := m.items[id]; !exists {
			break
		}
	}

	sup := supervisor.New(id, wp, rp, seed, m.log)
	ctx, cancel := context.WithCancel(context.Background())
	go sup.Run(ctx)

	m.items[id] = &entry{sup: sup, cancel: cancel}
	telemetry.WorldsTotal.Set(float64(len(m.items)))
	m.log.Info().Str("world_id", id).Msg("world spawned")
	return id
}

// List returns every currently registered world id.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.items))
	for id := range m.items {
		ids = append(ids, id)
	}
	return ids
}

// lookup returns the Supervisor for id, or a NoIdFound error.
func (m *Manager) lookup(id string) (*supervisor.Supervisor, *wire.ErrorInfo) {
	m.mu.RLock()
	e, ok := m.items[id]
	m.mu.RUnlock()
	if !ok {
		return nil, &wire.ErrorInfo{Kind: wire.ErrNoIdFound, Message: id}
	}
	return e.sup, nil
}

// Info returns an OkItemInfo response whose Message is the world's Debug
// census text, or NoIdFound. The response's Info status field is not
// filled and the world's status channel is not read.
func (m *Manager) Info(ctx context.Context, id string) (*wire.ResponseOk, *wire.ErrorInfo) {
	sup, errInfo := m.lookup(id)
	if errInfo != nil {
		return nil, errInfo
	}
	ok, errInfo := sup.Send(ctx, wire.WorldRequest{Kind: wire.KindDebug})
	if errInfo != nil {
		return nil, errInfo
	}
	return &wire.ResponseOk{Kind: wire.OkItemInfo, Message: ok.Message}, nil
}

// Delete cooperatively stops id's goroutine and removes it from the
// registry, implementing spec.md section 4.7's delete(id): "send Delete,
// await the response, remove the entry." The context.CancelFunc captured
// at spawn is kept only as a fallback for a supervisor that is not reading
// its mailbox (e.g. wedged on a long KindExecute run); the mailbox send is
// the primary, cooperative path.
func (m *Manager) Delete(ctx context.Context, id string) *wire.ErrorInfo {
	m.mu.RLock()
	e, ok := m.items[id]
	m.mu.RUnlock()
	if !ok {
		return &wire.ErrorInfo{Kind: wire.ErrNoIdFound, Message: id}
	}

	if _, errInfo := e.sup.Send(ctx, wire.WorldRequest{Kind: wire.KindDelete}); errInfo != nil {
		m.log.Warn().Str("world_id", id).Str("error", errInfo.Message).Msg("delete request did not complete, cancelling directly")
		e.cancel()
	}
	e.sup.Wait()

	m.mu.Lock()
	delete(m.items, id)
	telemetry.WorldsTotal.Set(float64(len(m.items)))
	m.mu.Unlock()

	m.log.Info().Str("world_id", id).Msg("world deleted")
	return nil
}

// StatusFeed fans in the status channel of every world currently
// registered into one channel, closing each leg (and eventually the
// merged channel) once ctx is done. It is a snapshot of the registry at
// call time: worlds spawned afterward are not added to the feed.
// Grounded on niceyeti-tabular's fastview.ViewBuilder.Build, which wires
// OrDone/Merge the same way to fan in per-view update channels.
func (m *Manager) StatusFeed(ctx context.Context) <-chan wire.WorldStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()

	legs := make([]<-chan wire.WorldStatus, 0, len(m.items))
	for _, e := range m.items {
		legs = append(legs, channerics.OrDone[wire.WorldStatus](ctx.Done(), e.sup.Status()))
	}
	return channerics.Merge[wire.WorldStatus](legs)
}

// Send dispatches a WorldRequest to id's Supervisor (the Custom(id, req)
// case from spec.md section 6).
func (m *Manager) Send(ctx context.Context, id string, req wire.WorldRequest) (*wire.ResponseOk, *wire.ErrorInfo) {
	sup, errInfo := m.lookup(id)
	if errInfo != nil {
		return nil, errInfo
	}
	return sup.Send(ctx, req)
}

// Dispatch routes one ManagerRequest to its handler, producing the wire
// Response envelope spec.md section 6 describes.
func (m *Manager) Dispatch(ctx context.Context, req wire.ManagerRequest, wp simparams.WorldParams, rp simparams.RuntimeParams, seed uint64) wire.Response {
	correlationID := req.CorrelationID
	if correlationID == "" {
		correlationID = wire.NewCorrelationID()
	}
	resp := wire.Response{CorrelationID: correlationID}
	switch req.Kind {
	case wire.KindSpawnItem:
		id := m.Spawn(wp, rp, seed)
		resp.Ok = &wire.ResponseOk{Kind: wire.OkItem, Item: id}
	case wire.KindGetItemList:
		resp.Ok = &wire.ResponseOk{Kind: wire.OkItemList, Items: m.List()}
	case wire.KindGetItemInfo:
		ok, errInfo := m.Info(ctx, req.ID)
		resp.Ok, resp.Err = ok, errInfo
	case wire.KindDeleteItem:
		if errInfo := m.Delete(ctx, req.ID); errInfo != nil {
			resp.Err = errInfo
		} else {
			resp.Ok = &wire.ResponseOk{Kind: wire.OkSuccess}
		}
	case wire.KindCustom:
		ok, errInfo := m.Send(ctx, req.ID, req.World)
		resp.Ok, resp.Err = ok, errInfo
	default:
		resp.Err = &wire.ErrorInfo{Kind: wire.ErrCustom, Message: "unrecognized manager request kind"}
	}
	return resp
}
