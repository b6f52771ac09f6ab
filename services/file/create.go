// Package file 文件相关交易构建器
package file

import (
	"time"

	"github.com/kantorcodes/hedera-sdk-go/transaction"
	"github.com/kantorcodes/hedera-sdk-go/types"
	"github.com/kantorcodes/hedera-sdk-go/wallet"
	"github.com/kantorcodes/hedera-sdk-go/wire"
)

// defaultFileExpiration 文件默认保存期
const defaultFileExpiration = 7890000 * time.Second

// FileCreateTransaction 创建文件
//
// 单笔交易携带的内容受交易大小限制，大文件先创建小文件再用
// FileAppendTransaction 分块追加。
type FileCreateTransaction struct {
	*transaction.Transaction
	body *fileCreateData
}

type fileCreateData struct {
	expirationTime time.Time
	keys           []wallet.PublicKey
	contents       []byte
	memo           string
}

// NewFileCreateTransaction 创建文件交易构建器
func NewFileCreateTransaction() *FileCreateTransaction {
	data := &fileCreateData{
		expirationTime: time.Now().Add(defaultFileExpiration).UTC(),
	}
	return &FileCreateTransaction{
		Transaction: transaction.New(data),
		body:        data,
	}
}

// SetExpirationTime 设置文件过期时间
func (t *FileCreateTransaction) SetExpirationTime(expiry time.Time) *FileCreateTransaction {
	if t.RequireNotFrozen("SetExpirationTime") {
		t.body.expirationTime = expiry
	}
	return t
}

// SetKeys 设置修改文件所需的密钥列表
func (t *FileCreateTransaction) SetKeys(keys ...wallet.PublicKey) *FileCreateTransaction {
	if t.RequireNotFrozen("SetKeys") {
		t.body.keys = append([]wallet.PublicKey(nil), keys...)
	}
	return t
}

// SetContents 设置文件内容
func (t *FileCreateTransaction) SetContents(contents []byte) *FileCreateTransaction {
	if t.RequireNotFrozen("SetContents") {
		t.body.contents = append([]byte(nil), contents...)
	}
	return t
}

// SetFileMemo 设置文件备注
func (t *FileCreateTransaction) SetFileMemo(memo string) *FileCreateTransaction {
	if t.RequireNotFrozen("SetFileMemo") {
		t.body.memo = memo
	}
	return t
}

// SetNodeAccountIDs 限定候选提交节点
func (t *FileCreateTransaction) SetNodeAccountIDs(ids []types.AccountID) *FileCreateTransaction {
	t.Transaction.SetNodeAccountIDs(ids)
	return t
}

// SetTransactionID 显式指定交易 ID
func (t *FileCreateTransaction) SetTransactionID(id types.TransactionID) *FileCreateTransaction {
	t.Transaction.SetTransactionID(id)
	return t
}

// SetMaxTransactionFee 设置最大费用
func (t *FileCreateTransaction) SetMaxTransactionFee(fee types.Hbar) *FileCreateTransaction {
	t.Transaction.SetMaxTransactionFee(fee)
	return t
}

func (d *fileCreateData) Method() string {
	return "/proto.FileService/createFile"
}

func (d *fileCreateData) ToBody() wire.BodyData {
	return &wire.FileCreateBody{
		ExpirationTime: d.expirationTime,
		Keys:           d.keys,
		Contents:       d.contents,
		Memo:           d.memo,
	}
}

func (d *fileCreateData) ValidateChecksums(types.LedgerID) error {
	return nil
}
