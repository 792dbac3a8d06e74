package dword

import (
	"context"
	"errors"
	"github.com/ValentinKolb/sLock/lib/wlock"
	"github.com/ValentinKolb/sLock/lib/word"
	"github.com/ValentinKolb/sLock/lib/word/lword"
	"sync/atomic"
	"testing"
	"time"
)

var errProposalTimeout = errors.New("proposal timeout")

// lostAckWord commits every swap but reports the first n proposals as failed,
// the way a SyncPropose timeout looks for an entry that was applied anyway.
type lostAckWord struct {
	word.IWord
	lost atomic.Int32
}

func (w *lostAckWord) CompareAndSwap(old, new uint64) bool {
	ok := w.IWord.CompareAndSwap(old, new)
	if w.lost.Add(-1) < 0 {
		return ok
	}
	return settleSwap("test", new, errProposalTimeout, func() (uint64, error) {
		return w.IWord.Load(), nil
	})
}

func TestSettleSwap(t *testing.T) {
	loadValue := func(v uint64) func() (uint64, error) {
		return func() (uint64, error) { return v, nil }
	}

	if !settleSwap("k", 5, errProposalTimeout, loadValue(5)) {
		t.Errorf("committed swap reported as failed")
	}
	if settleSwap("k", 5, errProposalTimeout, loadValue(4)) {
		t.Errorf("swap that did not happen reported as success")
	}
	failedLoad := func() (uint64, error) { return 5, errors.New("read failed") }
	if settleSwap("k", 5, errProposalTimeout, failedLoad) {
		t.Errorf("unreadable outcome reported as success")
	}
}

func TestLockWithLostAcknowledgement(t *testing.T) {
	w := &lostAckWord{IWord: lword.New()}
	w.lost.Store(1)

	l := wlock.New(w, wlock.Config{Timeout: time.Minute, FastSpinIterations: 10, SlowSpinBatchSize: 5})
	if err := l.Lock(context.Background(), 7); err != nil {
		t.Fatalf("Lock: %v (word %s)", err, word.Describe(w.Load()))
	}
	if owner, _ := l.State(); owner != 7 {
		t.Fatalf("owner = %d, want 7", owner)
	}
	if err := l.Unlock(7); err != nil {
		t.Fatalf("Unlock: %v", err)
	}
}
