package client

import (
	"context"
	"errors"
	"net"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RetryPolicy 提交重试策略
//
// 每次失败的尝试都换下一个节点（按名册循环轮转），退避按尝试次数
// 指数增长并截断在 MaxBackoff。
type RetryPolicy struct {
	// MaxAttempts 最大尝试次数（含首次）
	MaxAttempts int
	// MinBackoff 首次重试前的退避
	MinBackoff time.Duration
	// MaxBackoff 退避上限
	MaxBackoff time.Duration
	// BackoffMultiplier 退避倍数
	BackoffMultiplier float64
	// OnRetry 重试前的回调函数
	OnRetry func(attempt int, err error)
}

// DefaultRetryPolicy 返回默认重试策略
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:       10,
		MinBackoff:        250 * time.Millisecond,
		MaxBackoff:        8 * time.Second,
		BackoffMultiplier: 2.0,
		OnRetry:           nil,
	}
}

// BackoffFor 返回第 attempt 次失败后的退避时长（attempt 从 0 起计）
func (p *RetryPolicy) BackoffFor(attempt int) time.Duration {
	backoff := float64(p.MinBackoff)
	for i := 0; i < attempt; i++ {
		backoff *= p.BackoffMultiplier
		if backoff >= float64(p.MaxBackoff) {
			return p.MaxBackoff
		}
	}
	if backoff > float64(p.MaxBackoff) {
		return p.MaxBackoff
	}
	return time.Duration(backoff)
}

// Wait 退避等待，ctx 取消时提前返回
func (p *RetryPolicy) Wait(ctx context.Context, attempt int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.BackoffFor(attempt)):
		return nil
	}
}

// IsRetryableTransport 判断传输层错误是否可换节点重试
//
// 连接失败、超时和节点侧过载都算瞬时故障；调用方主动取消不算。
func IsRetryableTransport(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	if s, ok := status.FromError(err); ok {
		switch s.Code() {
		case codes.Unavailable, codes.ResourceExhausted, codes.DeadlineExceeded, codes.Aborted:
			return true
		case codes.Canceled:
			return false
		}
	}

	// 网络错误（连接失败、超时等）
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}
