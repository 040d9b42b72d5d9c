package service

import "sync"

// WorkspaceLocks 按工作区串行化"读取 → 修改 → 写回"，避免并发请求丢失追加
//
// 仅保护单进程；多实例部署共享存储时需改为分布式锁。
type WorkspaceLocks struct {
	mu    sync.Mutex
	locks map[string]*workspaceLock
}

type workspaceLock struct {
	mu   sync.Mutex
	refs int
}

// NewWorkspaceLocks 创建工作区锁表
func NewWorkspaceLocks() *WorkspaceLocks {
	return &WorkspaceLocks{locks: make(map[string]*workspaceLock)}
}

// Lock 锁定工作区，返回解锁函数；无人持有的锁在解锁时回收
func (w *WorkspaceLocks) Lock(workspaceID string) func() {
	w.mu.Lock()
	l, ok := w.locks[workspaceID]
	if !ok {
		l = &workspaceLock{}
		w.locks[workspaceID] = l
	}
	l.refs++
	w.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		w.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(w.locks, workspaceID)
		}
		w.mu.Unlock()
	}
}

// size 当前登记的锁数量（测试用）
func (w *WorkspaceLocks) size() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.locks)
}
