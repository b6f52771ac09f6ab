package transaction

import (
	"github.com/kantorcodes/hedera-sdk-go/types"
	"github.com/kantorcodes/hedera-sdk-go/utils"
)

// 分块默认值
const (
	// DefaultChunkSize 单块负载字节数
	DefaultChunkSize = 1024
	// DefaultMaxChunks 分块数上限
	DefaultMaxChunks = 20
)

// ChunkPolicy 分块策略
type ChunkPolicy struct {
	// ChunkSize 单块负载字节数
	ChunkSize int
	// MaxChunks 分块数上限
	MaxChunks int
}

// DefaultChunkPolicy 返回默认分块策略
func DefaultChunkPolicy() ChunkPolicy {
	return ChunkPolicy{
		ChunkSize: DefaultChunkSize,
		MaxChunks: DefaultMaxChunks,
	}
}

// ChunkInfo 一个分块在整笔意图中的位置
type ChunkInfo struct {
	// InitialTransactionID 首个分块的交易 ID，接收端按它归组
	InitialTransactionID types.TransactionID
	// CurrentTransactionID 本分块的交易 ID
	CurrentTransactionID types.TransactionID
	// NodeAccountID 本次序列化面向的节点
	NodeAccountID types.AccountID
	// Index 分块下标（0 起计）
	Index int
	// Total 分块总数
	Total int
}

// planChunks 按策略切分负载
//
// 所需分块数超过上限时整笔失败，不做任何部分提交；这个检查发生在
// 签名和网络调用之前。
func planChunks(payload []byte, policy ChunkPolicy) ([][]byte, error) {
	if policy.ChunkSize <= 0 {
		policy.ChunkSize = DefaultChunkSize
	}
	if policy.MaxChunks <= 0 {
		policy.MaxChunks = DefaultMaxChunks
	}

	chunks := utils.ChunkBytes(payload, policy.ChunkSize)
	if len(chunks) > policy.MaxChunks {
		return nil, &types.ChunkCountExceededError{
			Required: len(chunks),
			Max:      policy.MaxChunks,
		}
	}
	return chunks, nil
}
