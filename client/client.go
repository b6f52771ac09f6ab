package client

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/kantorcodes/hedera-sdk-go/types"
)

// Client 共识网络客户端
//
// 并发安全：内部只有连接池和轮转游标两个共享状态，前者由
// Transport 自己加锁，后者用原子操作推进。多笔交易共享同一个
// Client 并发提交互不干扰。
type Client struct {
	cfg       *Config
	transport Transport
	nodes     []Node
	cursor    atomic.Uint64
}

// New 创建客户端
func New(cfg *Config) (*Client, error) {
	return NewWithTransport(cfg, newGRPCTransport())
}

// NewWithTransport 用自定义传输创建客户端
//
// 测试用进程内假节点替换 gRPC 传输时走这里。
func NewWithTransport(cfg *Config, transport Transport) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if len(cfg.Network) == 0 {
		return nil, fmt.Errorf("client network roster is empty")
	}
	if transport == nil {
		return nil, fmt.Errorf("client transport is nil")
	}

	return &Client{
		cfg:       cfg,
		transport: transport,
		nodes:     sortedNodes(cfg.Network),
	}, nil
}

// Nodes 返回按账户号排序的节点名册
func (c *Client) Nodes() []Node {
	out := make([]Node, len(c.nodes))
	copy(out, c.nodes)
	return out
}

// NodeAccountIDs 返回名册中全部节点账户 ID
func (c *Client) NodeAccountIDs() []types.AccountID {
	out := make([]types.AccountID, len(c.nodes))
	for i, n := range c.nodes {
		out[i] = n.AccountID
	}
	return out
}

// EndpointFor 返回节点账户对应的端点
func (c *Client) EndpointFor(account types.AccountID) (string, bool) {
	for _, n := range c.nodes {
		if n.AccountID.Shard == account.Shard &&
			n.AccountID.Realm == account.Realm &&
			n.AccountID.Num == account.Num {
			return n.Endpoint, true
		}
	}
	return "", false
}

// NextStartIndex 返回下一笔交易的起始节点下标
//
// 轮转游标让共享同一 Client 的多笔交易把首次尝试摊到不同节点。
func (c *Client) NextStartIndex(rosterSize int) int {
	if rosterSize <= 0 {
		return 0
	}
	return int((c.cursor.Add(1) - 1) % uint64(rosterSize))
}

// Invoke 对指定节点调用一次 unary RPC，套用配置的单次超时
func (c *Client) Invoke(ctx context.Context, node types.AccountID, method string, request []byte) ([]byte, error) {
	endpoint, ok := c.EndpointFor(node)
	if !ok {
		return nil, fmt.Errorf("node %s is not in the client roster", node)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.requestTimeout())
	defer cancel()

	c.Logger().Debug("invoke", "node", node.String(), "endpoint", endpoint, "method", method)
	return c.transport.Invoke(callCtx, endpoint, method, request)
}

// Operator 返回配置的操作员，可能为 nil
func (c *Client) Operator() *Operator {
	return c.cfg.Operator
}

// LedgerID 返回目标账本
func (c *Client) LedgerID() types.LedgerID {
	return c.cfg.LedgerID
}

// DefaultMaxTransactionFee 返回默认最大费用
func (c *Client) DefaultMaxTransactionFee() types.Hbar {
	return c.cfg.DefaultMaxTransactionFee
}

// Retry 返回重试策略
func (c *Client) Retry() *RetryPolicy {
	if c.cfg.Retry != nil {
		return c.cfg.Retry
	}
	return DefaultRetryPolicy()
}

// Logger 返回日志器，未配置时返回丢弃日志的实现
func (c *Client) Logger() Logger {
	if c.cfg.Logger != nil {
		return c.cfg.Logger
	}
	return nopLogger{}
}

// MirrorEndpoint 返回镜像节点端点
func (c *Client) MirrorEndpoint() string {
	return c.cfg.MirrorEndpoint
}

// Close 关闭全部连接
func (c *Client) Close() error {
	return c.transport.Close()
}
