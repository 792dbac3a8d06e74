package dword

import (
	"context"
	"errors"
	"fmt"
	"github.com/ValentinKolb/sLock/lib/word"
	"github.com/ValentinKolb/sLock/lib/word/dword/internal"
	"github.com/lni/dragonboat/v4"
	"github.com/lni/dragonboat/v4/client"
	"github.com/lni/dragonboat/v4/logger"
	sm "github.com/lni/dragonboat/v4/statemachine"
	"sync/atomic"
	"time"
)

var (
	retries = 5
	log     = logger.GetLogger("dword")
)

// wordImpl is a handle to one named word of the replicated table.
// It encapsulates a Dragonboat NodeHost which is used to communicate with the state machine.
type wordImpl struct {
	nh      *dragonboat.NodeHost
	shardID uint64
	cs      *client.Session
	key     string
	timeout time.Duration
	last    atomic.Uint64 // last value observed by this handle
}

// NewDistributedWord creates a handle to the word with the given key in the replicated table of the shard.
// The word is linearizable across all nodes of the shard.
//
// Failures of the consensus layer cannot be reported through word.IWord: a failed CompareAndSwap
// reports false and a failed Load returns the last value this handle observed. Both are logged.
func NewDistributedWord(nh *dragonboat.NodeHost, shardID uint64, key string, timeout time.Duration) word.IWord {
	return newWord(nh, shardID, nh.GetNoOPSession(shardID), key, timeout)
}

func newWord(nh *dragonboat.NodeHost, shardID uint64, cs *client.Session, key string, timeout time.Duration) *wordImpl {
	return &wordImpl{
		nh:      nh,
		shardID: shardID,
		cs:      cs,
		key:     key,
		timeout: timeout,
	}
}

// --------------------------------------------------------------------------
// Internal write and read operations (used by interface methods)
// --------------------------------------------------------------------------

// write sends a serialized Command via SyncPropose.
// It returns the result of the entry or an *Error if the proposal failed.
func (w *wordImpl) write(cmd internal.Command) (sm.Result, error) {
	for i := 0; i < retries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)

		res, err := w.nh.SyncPropose(ctx, w.cs, cmd.Serialize())
		cancel()

		// Check for system busy errors
		if errors.Is(err, dragonboat.ErrSystemBusy) {
			log.Infof("SyncPropose: System busy, retrying (%d/%d)...", i+1, retries)
			time.Sleep(w.timeout / 10)
			continue
		}

		if err != nil {
			return sm.Result{}, NewError(RetCInternalError, err.Error())
		}
		return res, nil
	}
	return sm.Result{}, NewError(RetCInternalError, "timeout")
}

// read is a generic helper function that queries the state machine
// and attempts to convert the response into the expected type R.
//
// Is the read operation fails due to a system busy error, the function retries up to 5 times.
func read[R any](w *wordImpl, q internal.Query) (R, error) {
	var zero R
	for i := 0; i < retries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		res, err := w.nh.SyncRead(ctx, w.shardID, q)
		cancel()

		// Check for system busy errors
		if errors.Is(err, dragonboat.ErrSystemBusy) {
			log.Infof("SyncRead: System busy, retrying (%d/%d)...", i+1, retries)
			time.Sleep(w.timeout / 10)
			continue
		}

		if err != nil {
			var we *Error
			if errors.As(err, &we) {
				return zero, we
			}
			return zero, NewError(RetCInternalError, err.Error())
		}

		casted, ok := res.(R)
		if !ok {
			return zero, NewError(RetCInternalError,
				fmt.Sprintf("unexpected type: received %T, expected %T", res, zero))
		}
		return casted, nil
	}
	return zero, NewError(RetCInternalError, "timeout")
}

// --------------------------------------------------------------------------
// Interface Methods (docs see word/interface.go)
// --------------------------------------------------------------------------

func (w *wordImpl) Load() uint64 {
	v, err := read[uint64](w, internal.Query{
		Type: internal.QueryTLoad,
		Key:  w.key,
	})
	if err != nil {
		last := w.last.Load()
		log.Warningf("load of word %s failed, using last observed value (%s): %v", w.key, word.Describe(last), err)
		return last
	}
	w.last.Store(v)
	return v
}

func (w *wordImpl) CompareAndSwap(old, new uint64) bool {
	res, err := w.write(internal.Command{
		Type: internal.CommandTCompareAndSwap,
		Key:  w.key,
		Old:  old,
		New:  new,
	})
	if err != nil {
		return settleSwap(w.key, new, err, func() (uint64, error) {
			v, err := read[uint64](w, internal.Query{Type: internal.QueryTLoad, Key: w.key})
			if err == nil {
				w.last.Store(v)
			}
			return v, err
		})
	}

	if current, ok := decodeWord(res.Data); ok {
		w.last.Store(current)
	}

	switch RetCode(res.Value) {
	case RetCSuccess:
		return true
	case RetCConflict:
		return false
	default:
		log.Warningf("compare-and-swap of word %s rejected (%s): %s", w.key, RetCode(res.Value), string(res.Data))
		return false
	}
}

// settleSwap decides the outcome of a swap whose proposal returned an error.
// The entry may still have been committed (e.g. after a timeout), so the word
// is read back: if it holds the new value the swap happened. Lock word values
// carry the owner id, so only the proposing owner writes that value.
func settleSwap(key string, new uint64, proposeErr error, load func() (uint64, error)) bool {
	current, err := load()
	if err != nil {
		log.Warningf("compare-and-swap of word %s failed (%v) and the outcome cannot be read back: %v", key, proposeErr, err)
		return false
	}
	if current == new {
		log.Warningf("compare-and-swap of word %s reported %v but was committed", key, proposeErr)
		return true
	}
	log.Warningf("compare-and-swap of word %s failed: %v", key, proposeErr)
	return false
}

// --------------------------------------------------------------------------
// Table
// --------------------------------------------------------------------------

type tableImpl struct {
	words []*wordImpl
}

// NewDistributedTable creates a word.IWordTable whose slots are the words "<prefix>/<slot>" of the shard.
func NewDistributedTable(nh *dragonboat.NodeHost, shardID uint64, prefix string, slots int, timeout time.Duration) word.IWordTable {
	if slots < 1 {
		slots = 1
	}
	cs := nh.GetNoOPSession(shardID)
	words := make([]*wordImpl, slots)
	for i := range words {
		words[i] = newWord(nh, shardID, cs, fmt.Sprintf("%s/%d", prefix, i), timeout)
	}
	return &tableImpl{words: words}
}

func (t *tableImpl) Slots() int {
	return len(t.words)
}

func (t *tableImpl) Slot(i int) (word.IWord, error) {
	if i < 0 || i >= len(t.words) {
		return nil, fmt.Errorf("%w: %d (table has %d slots)", word.ErrSlotOutOfRange, i, len(t.words))
	}
	return t.words[i], nil
}
