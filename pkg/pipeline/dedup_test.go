package pipeline

import (
	"errors"
	"fmt"
	"sync"
	"testing"
)

func TestDedupFilter_FirstSeenWins(t *testing.T) {
	f := NewDedupFilter()

	if err := f.Admit("DoDD 5000.01"); err != nil {
		t.Fatalf("first Admit() error = %v", err)
	}
	if err := f.Admit("DoDD 5000.01"); !errors.Is(err, ErrDuplicateDocName) {
		t.Errorf("second Admit() error = %v, want ErrDuplicateDocName", err)
	}
	if err := f.Admit("DoDD 5000.02"); err != nil {
		t.Errorf("distinct name rejected: %v", err)
	}
}

func TestDedupFilter_EmptyName(t *testing.T) {
	f := NewDedupFilter()

	if err := f.Admit(""); !errors.Is(err, ErrMissingDocName) {
		t.Errorf("Admit(\"\") error = %v, want ErrMissingDocName", err)
	}
}

func TestDedupFilter_Concurrent(t *testing.T) {
	f := NewDedupFilter()
	const workers = 16

	var wg sync.WaitGroup
	admitted := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f.Admit("same name"); err == nil {
				admitted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(admitted)

	if n := len(admitted); n != 1 {
		t.Errorf("admitted %d times, want exactly 1", n)
	}

	// Distinct names from many goroutines all pass.
	var wg2 sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg2.Add(1)
		go func(i int) {
			defer wg2.Done()
			if err := f.Admit(fmt.Sprintf("doc-%d", i)); err != nil {
				errs <- err
			}
		}(i)
	}
	wg2.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("unexpected rejection: %v", err)
	}
}
