package mail

import (
	"context"
	"errors"
	"sync"
	"time"

	domainMail "aspire-wishlist/internal/domain/mail"
	"aspire-wishlist/internal/logger"

	"go.uber.org/zap"
)

var (
	ErrQueueFull   = errors.New("mail queue is full")
	ErrQueueClosed = errors.New("mail queue is closed")
)

type AsyncConfig struct {
	QueueSize  int
	Workers    int
	MaxRetries int
	// Backoff is multiplied by the attempt number between retries.
	Backoff time.Duration
}

// AsyncSender queues messages and delivers them from a fixed worker pool so
// request handlers never wait on SMTP.
type AsyncSender struct {
	next    domainMail.Sender
	queue   chan domainMail.Message
	cfg     AsyncConfig
	log     *zap.Logger
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	stop    chan struct{}
	stopped sync.Once
}

func NewAsyncSender(next domainMail.Sender, cfg AsyncConfig) *AsyncSender {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = time.Second
	}

	s := &AsyncSender{
		next:  next,
		queue: make(chan domainMail.Message, cfg.QueueSize),
		cfg:   cfg,
		log:   logger.Named("mail"),
		stop:  make(chan struct{}),
	}
	for i := 0; i < cfg.Workers; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}
	return s
}

// Send enqueues msg without blocking.
func (s *AsyncSender) Send(_ context.Context, msg domainMail.Message) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrQueueClosed
	}
	select {
	case s.queue <- msg:
		return nil
	default:
		s.log.Warn("Mail queue full, dropping message",
			zap.String("to", msg.To),
			zap.String("template", string(msg.Template)),
		)
		return ErrQueueFull
	}
}

// Close stops accepting messages and waits for queued ones to be delivered or
// for ctx to end. Pending retry sleeps are cut short once ctx is done.
func (s *AsyncSender) Close(ctx context.Context) error {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.queue)
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.stopped.Do(func() { close(s.stop) })
		<-done
		return ctx.Err()
	}
}

func (s *AsyncSender) worker(id int) {
	defer s.wg.Done()

	for msg := range s.queue {
		s.deliver(id, msg)
	}
}

func (s *AsyncSender) deliver(worker int, msg domainMail.Message) {
	var err error
	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(attempt) * s.cfg.Backoff):
			case <-s.stop:
				s.log.Error("Mail delivery abandoned on shutdown",
					zap.String("to", msg.To),
					zap.String("template", string(msg.Template)),
					zap.Error(err),
				)
				return
			}
		}

		if err = s.next.Send(context.Background(), msg); err == nil {
			s.log.Debug("Mail delivered",
				zap.Int("worker", worker),
				zap.String("to", msg.To),
				zap.String("template", string(msg.Template)),
				zap.Int("attempt", attempt+1),
			)
			return
		}

		s.log.Warn("Mail delivery failed",
			zap.Int("worker", worker),
			zap.String("to", msg.To),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	s.log.Error("Mail delivery gave up",
		zap.String("to", msg.To),
		zap.String("template", string(msg.Template)),
		zap.Int("attempts", s.cfg.MaxRetries+1),
		zap.Error(err),
	)
}
