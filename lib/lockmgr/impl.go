package lockmgr

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/sLock/lib/liveness"
	"github.com/ValentinKolb/sLock/lib/word"
	"github.com/ValentinKolb/sLock/lib/wlock"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var log = logger.GetLogger("lockmgr")

type lockMgrImpl struct {
	table word.IWordTable
	conf  wlock.Config
	locks *xsync.MapOf[int, *wlock.Lock]
}

// NewLockManager creates a lock manager on the given table.
// Every lock of the manager uses conf, the table is owned by the caller.
func NewLockManager(table word.IWordTable, conf wlock.Config) ILockManager {
	return &lockMgrImpl{
		table: table,
		conf:  conf,
		locks: xsync.NewMapOf[int, *wlock.Lock](),
	}
}

// lockFor returns the (cached) lock of the slot the key hashes to.
func (m *lockMgrImpl) lockFor(key string) (int, *wlock.Lock, error) {
	slot := SlotOf(key, m.table.Slots())
	if l, ok := m.locks.Load(slot); ok {
		return slot, l, nil
	}

	w, err := m.table.Slot(slot)
	if err != nil {
		return slot, nil, fmt.Errorf("key %q: %w", key, err)
	}
	l, _ := m.locks.LoadOrStore(slot, wlock.New(w, m.conf))
	return slot, l, nil
}

func (m *lockMgrImpl) AcquireLock(ctx context.Context, key string, owner uint32) error {
	slot, l, err := m.lockFor(key)
	if err != nil {
		return err
	}
	if err := l.Lock(ctx, owner); err != nil {
		return fmt.Errorf("acquire %q (slot %d): %w", key, slot, err)
	}
	log.Debugf("owner %d acquired %q (slot %d)", owner, key, slot)
	return nil
}

func (m *lockMgrImpl) TryAcquireLock(key string, owner uint32) (bool, error) {
	slot, l, err := m.lockFor(key)
	if err != nil {
		return false, err
	}
	ok, err := l.TryLock(owner)
	if err != nil {
		return false, fmt.Errorf("try acquire %q (slot %d): %w", key, slot, err)
	}
	return ok, nil
}

func (m *lockMgrImpl) ReleaseLock(key string, owner uint32) error {
	slot, l, err := m.lockFor(key)
	if err != nil {
		return err
	}
	if err := l.Unlock(owner); err != nil {
		return fmt.Errorf("release %q (slot %d): %w", key, slot, err)
	}
	log.Debugf("owner %d released %q (slot %d)", owner, key, slot)
	return nil
}

func (m *lockMgrImpl) Inspect(key string) (State, error) {
	slot, l, err := m.lockFor(key)
	if err != nil {
		return State{}, err
	}

	owner, previous := l.State()
	state := State{
		Key:      key,
		Slot:     slot,
		Owner:    owner,
		Previous: previous,
		Liveness: liveness.Unknown,
	}
	if owner != word.Unlocked && m.conf.Probe != nil {
		state.Liveness = m.conf.Probe.Status(owner)
	}
	return state, nil
}
