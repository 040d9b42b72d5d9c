package service

import (
	"sync"
	"testing"
)

func TestWorkspaceLocks_SerializesSameWorkspace(t *testing.T) {
	locks := NewWorkspaceLocks()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("a")
			v := counter
			counter = v + 1
			unlock()
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Errorf("期望 50，实际 %d", counter)
	}
	if locks.size() != 0 {
		t.Errorf("全部解锁后锁表应为空，实际 %d", locks.size())
	}
}

func TestWorkspaceLocks_IndependentWorkspaces(t *testing.T) {
	locks := NewWorkspaceLocks()
	unlockA := locks.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := locks.Lock("b")
		unlockB()
		close(done)
	}()
	<-done

	if locks.size() != 1 {
		t.Errorf("期望仅剩工作区 a 的锁，实际 %d", locks.size())
	}
}
