// Package safe_close 提供多 goroutine 的协同关闭
package safe_close

import (
	"sync"
)

// SafeClose 管理一组长生命周期 goroutine 的启动与关闭
// Attach 启动的函数通过 closeSignal 收到关闭通知，完成清理后调用 done
type SafeClose struct {
	mu sync.Mutex
	wg sync.WaitGroup

	closeSignal chan struct{}
	closed      bool
	err         error
}

// NewSafeClose 创建 SafeClose 实例
func NewSafeClose() *SafeClose {
	return &SafeClose{
		closeSignal: make(chan struct{}),
	}
}

// Attach 启动一个受管 goroutine
// f 必须在退出前调用 done，并监听 closeSignal
func (s *SafeClose) Attach(f func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	var once sync.Once
	done := func() {
		once.Do(s.wg.Done)
	}
	go f(done, s.closeSignal)
}

// SendCloseSignal 发出关闭信号，首个非 nil 错误会被记录
// 可以被多次调用，只有第一次生效
func (s *SafeClose) SendCloseSignal(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.err = err
	close(s.closeSignal)
}

// CloseSignal 返回关闭信号通道
func (s *SafeClose) CloseSignal() <-chan struct{} {
	return s.closeSignal
}

// WaitClosed 阻塞直到所有受管 goroutine 退出
// 返回 SendCloseSignal 记录的错误
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
