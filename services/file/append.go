package file

import (
	"github.com/kantorcodes/hedera-sdk-go/transaction"
	"github.com/kantorcodes/hedera-sdk-go/types"
	"github.com/kantorcodes/hedera-sdk-go/wire"
)

// FileAppendTransaction 向已有文件追加内容
//
// 内容在冻结时按分块策略切分，每块是一笔独立交易，严格按序提交；
// 所需分块数超过上限时在签名和网络调用之前整笔失败。
type FileAppendTransaction struct {
	*transaction.Transaction
	body *fileAppendData
}

type fileAppendData struct {
	fileID   types.FileID
	contents []byte
}

// NewFileAppendTransaction 创建追加文件交易构建器
func NewFileAppendTransaction() *FileAppendTransaction {
	data := &fileAppendData{}
	return &FileAppendTransaction{
		Transaction: transaction.New(data),
		body:        data,
	}
}

// SetFileID 设置目标文件
func (t *FileAppendTransaction) SetFileID(id types.FileID) *FileAppendTransaction {
	if t.RequireNotFrozen("SetFileID") {
		t.body.fileID = id
	}
	return t
}

// SetContents 设置追加内容
func (t *FileAppendTransaction) SetContents(contents []byte) *FileAppendTransaction {
	if t.RequireNotFrozen("SetContents") {
		t.body.contents = append([]byte(nil), contents...)
	}
	return t
}

// SetChunkSize 设置单块字节数
func (t *FileAppendTransaction) SetChunkSize(size int) *FileAppendTransaction {
	t.Transaction.SetChunkSize(size)
	return t
}

// SetMaxChunks 设置分块数上限
func (t *FileAppendTransaction) SetMaxChunks(max int) *FileAppendTransaction {
	t.Transaction.SetMaxChunks(max)
	return t
}

// SetNodeAccountIDs 限定候选提交节点
func (t *FileAppendTransaction) SetNodeAccountIDs(ids []types.AccountID) *FileAppendTransaction {
	t.Transaction.SetNodeAccountIDs(ids)
	return t
}

// SetTransactionID 显式指定交易 ID
func (t *FileAppendTransaction) SetTransactionID(id types.TransactionID) *FileAppendTransaction {
	t.Transaction.SetTransactionID(id)
	return t
}

// SetMaxTransactionFee 设置最大费用
func (t *FileAppendTransaction) SetMaxTransactionFee(fee types.Hbar) *FileAppendTransaction {
	t.Transaction.SetMaxTransactionFee(fee)
	return t
}

func (d *fileAppendData) Method() string {
	return "/proto.FileService/appendContent"
}

// ToBody 生成整体负载（仅在不分块路径使用）
func (d *fileAppendData) ToBody() wire.BodyData {
	return &wire.FileAppendBody{
		FileID:   d.fileID,
		Contents: d.contents,
	}
}

func (d *fileAppendData) Payload() []byte {
	return d.contents
}

// BodyForChunk 文件追加的分块只是内容切片，线格式没有分块元数据
func (d *fileAppendData) BodyForChunk(_ transaction.ChunkInfo, part []byte) wire.BodyData {
	return &wire.FileAppendBody{
		FileID:   d.fileID,
		Contents: part,
	}
}

func (d *fileAppendData) ValidateChecksums(ledger types.LedgerID) error {
	return d.fileID.Validate(ledger)
}
