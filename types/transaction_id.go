package types

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// TransactionID 交易标识：付款账户 + 有效起始时间戳 + 可选分块序号
//
// **说明**：
// - 一旦分配不可变，全网唯一标识一笔交易（或一个分块）
// - 冲突由网络侧的去重检查拒绝，客户端不做本地检测
// - 分块子交易的 ID 由基础 ID 加纳秒偏移确定性派生
type TransactionID struct {
	// AccountID 支付交易费用的账户
	AccountID AccountID
	// ValidStart 有效期起点（交易必须在起点后的有效时长内到达共识）
	ValidStart time.Time
	// Nonce 分块序号派生出的随机数扰动，0 表示非分块交易
	Nonce int32
}

// NewTransactionID 以当前时间为有效起点生成交易 ID
//
// 起点回拨一小段随机化的偏移，避免客户端时钟略快于节点时钟时
// 被 INVALID_TRANSACTION_START 拒绝。
func NewTransactionID(payer AccountID) TransactionID {
	jitter := time.Duration(rand.Int64N(int64(5 * time.Second)))
	return TransactionID{AccountID: payer, ValidStart: time.Now().Add(-jitter)}
}

// TransactionIDWithValidStart 以显式有效起点创建交易 ID
func TransactionIDWithValidStart(payer AccountID, validStart time.Time) TransactionID {
	return TransactionID{AccountID: payer, ValidStart: validStart}
}

// Chunked 派生第 index 个分块的交易 ID（index 从 0 开始）
//
// 分块 0 复用基础 ID 本身，后续分块在有效起点上逐块加 1 纳秒。
// 网络按交易 ID 去重并校验顺序，因此分块必须按序提交。
func (id TransactionID) Chunked(index int) TransactionID {
	if index == 0 {
		return id
	}
	return TransactionID{
		AccountID:  id.AccountID,
		ValidStart: id.ValidStart.Add(time.Duration(index) * time.Nanosecond),
		Nonce:      id.Nonce,
	}
}

// IsZero 返回 ID 是否未赋值
func (id TransactionID) IsZero() bool {
	return id.ValidStart.IsZero()
}

// String 返回 "payer@seconds.nanos" 形式
func (id TransactionID) String() string {
	return fmt.Sprintf("%s@%d.%d", id.AccountID.String(), id.ValidStart.Unix(), id.ValidStart.Nanosecond())
}
