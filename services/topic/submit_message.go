// Package topic 共识主题相关交易构建器
package topic

import (
	"github.com/kantorcodes/hedera-sdk-go/transaction"
	"github.com/kantorcodes/hedera-sdk-go/types"
	"github.com/kantorcodes/hedera-sdk-go/wire"
)

// TopicMessageSubmitTransaction 向共识主题提交消息
//
// 消息在冻结时按分块策略切分，每块携带分块元数据（首块交易 ID、
// 总块数、块序号），接收端按首块交易 ID 归组重组整条消息。
type TopicMessageSubmitTransaction struct {
	*transaction.Transaction
	body *topicMessageData
}

type topicMessageData struct {
	topicID types.TopicID
	message []byte
}

// NewTopicMessageSubmitTransaction 创建提交消息交易构建器
func NewTopicMessageSubmitTransaction() *TopicMessageSubmitTransaction {
	data := &topicMessageData{}
	return &TopicMessageSubmitTransaction{
		Transaction: transaction.New(data),
		body:        data,
	}
}

// SetTopicID 设置目标主题
func (t *TopicMessageSubmitTransaction) SetTopicID(id types.TopicID) *TopicMessageSubmitTransaction {
	if t.RequireNotFrozen("SetTopicID") {
		t.body.topicID = id
	}
	return t
}

// SetMessage 设置消息内容
func (t *TopicMessageSubmitTransaction) SetMessage(message []byte) *TopicMessageSubmitTransaction {
	if t.RequireNotFrozen("SetMessage") {
		t.body.message = append([]byte(nil), message...)
	}
	return t
}

// SetChunkSize 设置单块字节数
func (t *TopicMessageSubmitTransaction) SetChunkSize(size int) *TopicMessageSubmitTransaction {
	t.Transaction.SetChunkSize(size)
	return t
}

// SetMaxChunks 设置分块数上限
func (t *TopicMessageSubmitTransaction) SetMaxChunks(max int) *TopicMessageSubmitTransaction {
	t.Transaction.SetMaxChunks(max)
	return t
}

// SetNodeAccountIDs 限定候选提交节点
func (t *TopicMessageSubmitTransaction) SetNodeAccountIDs(ids []types.AccountID) *TopicMessageSubmitTransaction {
	t.Transaction.SetNodeAccountIDs(ids)
	return t
}

// SetTransactionID 显式指定交易 ID
func (t *TopicMessageSubmitTransaction) SetTransactionID(id types.TransactionID) *TopicMessageSubmitTransaction {
	t.Transaction.SetTransactionID(id)
	return t
}

// SetMaxTransactionFee 设置最大费用
func (t *TopicMessageSubmitTransaction) SetMaxTransactionFee(fee types.Hbar) *TopicMessageSubmitTransaction {
	t.Transaction.SetMaxTransactionFee(fee)
	return t
}

func (d *topicMessageData) Method() string {
	return "/proto.ConsensusService/submitMessage"
}

// ToBody 生成整体负载（仅在不分块路径使用）
func (d *topicMessageData) ToBody() wire.BodyData {
	return &wire.ConsensusSubmitMessageBody{
		TopicID: d.topicID,
		Message: d.message,
		ChunkInfo: &wire.MessageChunkInfo{
			Total:  1,
			Number: 1,
		},
	}
}

func (d *topicMessageData) Payload() []byte {
	return d.message
}

// BodyForChunk 线格式块序号从 1 起计，内部下标从 0 起计
func (d *topicMessageData) BodyForChunk(info transaction.ChunkInfo, part []byte) wire.BodyData {
	return &wire.ConsensusSubmitMessageBody{
		TopicID: d.topicID,
		Message: part,
		ChunkInfo: &wire.MessageChunkInfo{
			InitialTransactionID: info.InitialTransactionID,
			Total:                int32(info.Total),
			Number:               int32(info.Index) + 1,
		},
	}
}

func (d *topicMessageData) ValidateChecksums(ledger types.LedgerID) error {
	return d.topicID.Validate(ledger)
}
