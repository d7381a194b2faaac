package worker

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"domainlog/internal/logger"
)

// Task はワーカーが実行するタスク
// ctx には投入時のハンドルとワーカー番号が設定されている
type Task func(ctx context.Context)

type job struct {
	ctx  context.Context
	task Task
}

type workerKey struct{}

// ID は ctx を実行しているワーカーの番号を返す
func ID(ctx context.Context) (int, bool) {
	id, ok := ctx.Value(workerKey{}).(int)
	return id, ok
}

// PoolConfig はワーカープールの設定
type PoolConfig struct {
	NumWorkers  int // ワーカー数（0でCPU数）
	QueueFactor int // キューサイズ = NumWorkers * QueueFactor
}

// DefaultPoolConfig はデフォルト設定を返す
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		NumWorkers:  0,   // CPU数
		QueueFactor: 100, // デフォルト倍率
	}
}

// Pool はゴルーチンのプールを管理する
// Stop の後に再び Start できる
type Pool struct {
	numWorkers int
	queueSize  int
	jobs       chan job
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	started    bool
	stopping   bool
	mu         sync.Mutex

	completed atomic.Uint64
	failed    atomic.Uint64
}

// NewPool は新しいワーカープールを作成する
// numWorkers が 0 の場合は CPU 数を使用
func NewPool(numWorkers int) *Pool {
	config := DefaultPoolConfig()
	config.NumWorkers = numWorkers
	return NewPoolWithConfig(config)
}

// NewPoolWithConfig は設定を指定してワーカープールを作成する
func NewPoolWithConfig(config PoolConfig) *Pool {
	numWorkers := config.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	queueFactor := config.QueueFactor
	if queueFactor <= 0 {
		queueFactor = 100
	}
	return &Pool{
		numWorkers: numWorkers,
		queueSize:  numWorkers * queueFactor,
	}
}

// Start はワーカープールを起動する
// 起動ごとに新しいキューを作る
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return
	}

	p.ctx, p.cancel = context.WithCancel(ctx)
	p.jobs = make(chan job, p.queueSize)
	p.started = true

	for i := range p.numWorkers {
		p.wg.Add(1)
		go p.worker(p.ctx, p.jobs, i)
	}

	logger.Debugf(ctx, "worker pool started with %d workers", p.numWorkers)
}

// worker は個々のワーカーゴルーチン
func (p *Pool) worker(ctx context.Context, jobs <-chan job, id int) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case j := <-jobs:
			p.run(ctx, id, j)
		}
	}
}

// run はタスクを実行する。FatalError はタスクの終了として扱う
// プールの ctx が終わるとタスクの ctx もキャンセルされる
func (p *Pool) run(poolCtx context.Context, id int, j job) {
	ctx, cancel := context.WithCancel(context.WithValue(j.ctx, workerKey{}, id))
	defer cancel()
	stop := context.AfterFunc(poolCtx, cancel)
	defer stop()

	err := logger.Run(ctx, func(ctx context.Context) error {
		j.task(ctx)
		return nil
	})
	if err != nil {
		p.failed.Add(1)
		logger.Tracef(ctx, "task on worker %d terminated: %v", id, err)
		return
	}
	p.completed.Add(1)
}

// current は稼働中のプールの ctx とキューを返す
func (p *Pool) current() (context.Context, chan job, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started || p.stopping {
		return nil, nil, false
	}
	return p.ctx, p.jobs, true
}

// Submit はタスクを ctx と共にプールに送信する
// 起動前と停止中は false を返す
func (p *Pool) Submit(ctx context.Context, task Task) bool {
	poolCtx, jobs, ok := p.current()
	if !ok {
		return false
	}

	// 先にコンテキストをチェック
	select {
	case <-poolCtx.Done():
		return false
	default:
	}

	select {
	case <-poolCtx.Done():
		return false
	case jobs <- job{ctx: ctx, task: task}:
		return true
	}
}

// SubmitWait はタスクを送信し、キューに空きがなければブロックする
// ctx がキャンセルされた場合も false を返す
func (p *Pool) SubmitWait(ctx context.Context, task Task) bool {
	poolCtx, jobs, ok := p.current()
	if !ok {
		return false
	}

	select {
	case <-poolCtx.Done():
		return false
	default:
	}

	select {
	case <-poolCtx.Done():
		return false
	case <-ctx.Done():
		return false
	case jobs <- job{ctx: ctx, task: task}:
		return true
	}
}

// Spawn はサブドメイン name のハンドルでタスクを送信する
// サブドメインの解決は呼び出し側で行われる
func (p *Pool) Spawn(ctx context.Context, name string, task Task) bool {
	return p.Submit(logger.Descend(ctx, name), task)
}

// Stop はワーカープールを停止し、実行中のタスクの終了を待つ
// キューに残ったタスクは破棄される。何度呼んでもよい
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.started || p.stopping {
		p.mu.Unlock()
		return
	}
	p.stopping = true
	ctx, cancel := p.ctx, p.cancel
	p.mu.Unlock()

	cancel()
	p.wg.Wait()

	p.mu.Lock()
	p.jobs = nil
	p.started = false
	p.stopping = false
	p.mu.Unlock()

	logger.Debug(ctx, func() string { return "worker pool stopped" })
}

// NumWorkers はワーカー数を返す
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// QueueSize は現在のキューサイズを返す
func (p *Pool) QueueSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs)
}

// Completed は正常に終了したタスク数を返す
func (p *Pool) Completed() uint64 {
	return p.completed.Load()
}

// Failed は FatalError で終了したタスク数を返す
func (p *Pool) Failed() uint64 {
	return p.failed.Load()
}
