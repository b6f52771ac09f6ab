package account

import (
	"github.com/kantorcodes/hedera-sdk-go/transaction"
	"github.com/kantorcodes/hedera-sdk-go/types"
	"github.com/kantorcodes/hedera-sdk-go/wire"
)

// AccountDeleteTransaction 删除账户并把余额转入指定账户
//
// 需要被删除账户密钥的签名。
type AccountDeleteTransaction struct {
	*transaction.Transaction
	body *accountDeleteData
}

type accountDeleteData struct {
	deleteAccountID   types.AccountID
	transferAccountID types.AccountID
}

// NewAccountDeleteTransaction 创建删除账户交易构建器
func NewAccountDeleteTransaction() *AccountDeleteTransaction {
	data := &accountDeleteData{}
	return &AccountDeleteTransaction{
		Transaction: transaction.New(data),
		body:        data,
	}
}

// SetAccountID 设置被删除的账户
func (t *AccountDeleteTransaction) SetAccountID(id types.AccountID) *AccountDeleteTransaction {
	if t.RequireNotFrozen("SetAccountID") {
		t.body.deleteAccountID = id
	}
	return t
}

// SetTransferAccountID 设置余额接收账户
func (t *AccountDeleteTransaction) SetTransferAccountID(id types.AccountID) *AccountDeleteTransaction {
	if t.RequireNotFrozen("SetTransferAccountID") {
		t.body.transferAccountID = id
	}
	return t
}

// SetNodeAccountIDs 限定候选提交节点
func (t *AccountDeleteTransaction) SetNodeAccountIDs(ids []types.AccountID) *AccountDeleteTransaction {
	t.Transaction.SetNodeAccountIDs(ids)
	return t
}

// SetTransactionID 显式指定交易 ID
func (t *AccountDeleteTransaction) SetTransactionID(id types.TransactionID) *AccountDeleteTransaction {
	t.Transaction.SetTransactionID(id)
	return t
}

// SetMaxTransactionFee 设置最大费用
func (t *AccountDeleteTransaction) SetMaxTransactionFee(fee types.Hbar) *AccountDeleteTransaction {
	t.Transaction.SetMaxTransactionFee(fee)
	return t
}

func (d *accountDeleteData) Method() string {
	return "/proto.CryptoService/cryptoDelete"
}

func (d *accountDeleteData) ToBody() wire.BodyData {
	return &wire.CryptoDeleteBody{
		TransferAccountID: d.transferAccountID,
		DeleteAccountID:   d.deleteAccountID,
	}
}

func (d *accountDeleteData) ValidateChecksums(ledger types.LedgerID) error {
	if err := d.deleteAccountID.Validate(ledger); err != nil {
		return err
	}
	return d.transferAccountID.Validate(ledger)
}
