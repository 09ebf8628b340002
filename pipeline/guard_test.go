package pipeline

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestGuardRejectsSecondSubmission(t *testing.T) {
	guard := NewSubmissionGuard()

	if !guard.TryAcquire(1) {
		t.Fatal("first acquire failed")
	}
	if guard.TryAcquire(1) {
		t.Fatal("second acquire succeeded while first still held")
	}

	err := guard.Do(1, func() error { return nil })
	if !errors.Is(err, ErrSubmissionInFlight) {
		t.Fatalf("Do while held: err = %v, want ErrSubmissionInFlight", err)
	}

	guard.Release(1)
	if !guard.TryAcquire(1) {
		t.Fatal("acquire after release failed")
	}
	guard.Release(1)
}

func TestGuardIsPerLead(t *testing.T) {
	guard := NewSubmissionGuard()

	if !guard.TryAcquire(1) {
		t.Fatal("acquire lead 1 failed")
	}
	if !guard.TryAcquire(2) {
		t.Fatal("acquire lead 2 blocked by lead 1")
	}
	guard.Release(1)
	guard.Release(2)
}

func TestGuardConcurrentSubmissions(t *testing.T) {
	guard := NewSubmissionGuard()

	const workers = 16
	var (
		accepted int32
		rejected int32
		running  int32
		wg       sync.WaitGroup
		start    = make(chan struct{})
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := guard.Do(99, func() error {
				if atomic.AddInt32(&running, 1) != 1 {
					t.Error("two submissions in flight for the same lead")
				}
				atomic.AddInt32(&running, -1)
				return nil
			})
			if err == nil {
				atomic.AddInt32(&accepted, 1)
			} else if errors.Is(err, ErrSubmissionInFlight) {
				atomic.AddInt32(&rejected, 1)
			} else {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}

	close(start)
	wg.Wait()

	if accepted < 1 {
		t.Error("no submission was accepted")
	}
	if accepted+rejected != workers {
		t.Errorf("accepted %d + rejected %d != %d", accepted, rejected, workers)
	}
}

func TestGuardReleasesOnError(t *testing.T) {
	guard := NewSubmissionGuard()
	boom := errors.New("boom")

	if err := guard.Do(7, func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("Do err = %v, want boom", err)
	}
	if !guard.TryAcquire(7) {
		t.Fatal("slot not released after failed submission")
	}
	guard.Release(7)
}
