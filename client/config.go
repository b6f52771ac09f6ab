// Package client 维护到共识网络的连接与提交配置
//
// 一个 Client 对应一个目标账本：节点名册、操作员身份、重试策略
// 与连接池都挂在它上面。Client 可以被任意多个交易并发共享。
package client

import (
	"sort"
	"time"

	"github.com/kantorcodes/hedera-sdk-go/types"
	"github.com/kantorcodes/hedera-sdk-go/wallet"
)

// Config 客户端配置
type Config struct {
	// Network 节点名册：gRPC 端点地址 -> 节点账户 ID
	Network map[string]types.AccountID

	// LedgerID 目标账本，实体 ID 校验和按它验证
	LedgerID types.LedgerID

	// MirrorEndpoint 镜像节点 WebSocket 端点（可选）
	MirrorEndpoint string

	// Operator 默认付费账户，冻结时补默认交易 ID，提交前自动签名
	Operator *Operator

	// DefaultMaxTransactionFee 未显式设置时的默认最大费用
	DefaultMaxTransactionFee types.Hbar

	// Retry 提交重试策略，nil 使用默认值
	Retry *RetryPolicy

	// Timeout 单次 RPC 超时时间（秒）
	Timeout int

	// 调试模式
	Debug bool

	// 日志器（可选）
	Logger Logger
}

// Operator 操作员身份
type Operator struct {
	// AccountID 付费账户
	AccountID types.AccountID
	// Signer 付费账户密钥的签名器
	Signer wallet.Signer
}

// Logger 日志接口
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// nopLogger 丢弃所有日志
type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// DefaultConfig 返回默认配置（不含节点名册）
func DefaultConfig() *Config {
	return &Config{
		Network:                  map[string]types.AccountID{},
		LedgerID:                 types.LedgerIDMainnet,
		DefaultMaxTransactionFee: types.NewHbar(2),
		Timeout:                  30,
		Debug:                    false,
	}
}

// ForMainnet 返回主网配置
func ForMainnet() *Config {
	cfg := DefaultConfig()
	cfg.LedgerID = types.LedgerIDMainnet
	cfg.Network = map[string]types.AccountID{
		"35.237.200.180:50211": types.NewAccountID(0, 0, 3),
		"35.186.191.247:50211": types.NewAccountID(0, 0, 4),
		"35.192.2.25:50211":    types.NewAccountID(0, 0, 5),
		"35.199.161.108:50211": types.NewAccountID(0, 0, 6),
	}
	cfg.MirrorEndpoint = "mainnet-public.mirrornode.hedera.com:443"
	return cfg
}

// ForTestnet 返回测试网配置
func ForTestnet() *Config {
	cfg := DefaultConfig()
	cfg.LedgerID = types.LedgerIDTestnet
	cfg.Network = map[string]types.AccountID{
		"0.testnet.hedera.com:50211": types.NewAccountID(0, 0, 3),
		"1.testnet.hedera.com:50211": types.NewAccountID(0, 0, 4),
		"2.testnet.hedera.com:50211": types.NewAccountID(0, 0, 5),
		"3.testnet.hedera.com:50211": types.NewAccountID(0, 0, 6),
	}
	cfg.MirrorEndpoint = "testnet.mirrornode.hedera.com:443"
	return cfg
}

// ForPreviewnet 返回预览网配置
func ForPreviewnet() *Config {
	cfg := DefaultConfig()
	cfg.LedgerID = types.LedgerIDPreviewnet
	cfg.Network = map[string]types.AccountID{
		"0.previewnet.hedera.com:50211": types.NewAccountID(0, 0, 3),
		"1.previewnet.hedera.com:50211": types.NewAccountID(0, 0, 4),
		"2.previewnet.hedera.com:50211": types.NewAccountID(0, 0, 5),
	}
	cfg.MirrorEndpoint = "previewnet.mirrornode.hedera.com:443"
	return cfg
}

// ForNetwork 按自定义节点名册构造配置
func ForNetwork(network map[string]types.AccountID, ledger types.LedgerID) *Config {
	cfg := DefaultConfig()
	cfg.Network = network
	cfg.LedgerID = ledger
	return cfg
}

// Node 名册中的一个节点
type Node struct {
	// AccountID 节点账户 ID
	AccountID types.AccountID
	// Endpoint gRPC 端点地址
	Endpoint string
}

// sortedNodes 按节点账户号排序名册，轮转顺序由此确定
func sortedNodes(network map[string]types.AccountID) []Node {
	nodes := make([]Node, 0, len(network))
	for endpoint, account := range network {
		nodes = append(nodes, Node{AccountID: account, Endpoint: endpoint})
	}
	sort.Slice(nodes, func(i, j int) bool {
		a, b := nodes[i].AccountID, nodes[j].AccountID
		if a.Shard != b.Shard {
			return a.Shard < b.Shard
		}
		if a.Realm != b.Realm {
			return a.Realm < b.Realm
		}
		return a.Num < b.Num
	})
	return nodes
}

// requestTimeout 单次 RPC 超时
func (c *Config) requestTimeout() time.Duration {
	if c.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}
