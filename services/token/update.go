// Package token 代币相关交易构建器
package token

import (
	"time"

	"github.com/kantorcodes/hedera-sdk-go/transaction"
	"github.com/kantorcodes/hedera-sdk-go/types"
	"github.com/kantorcodes/hedera-sdk-go/wallet"
	"github.com/kantorcodes/hedera-sdk-go/wire"
)

// TokenUpdateTransaction 更新代币元数据
//
// 未设置的字段保持不变；备注区分"不修改"与"清空为空串"。
// 需要代币管理密钥的签名。
type TokenUpdateTransaction struct {
	*transaction.Transaction
	body *tokenUpdateData
}

type tokenUpdateData struct {
	tokenID          types.TokenID
	symbol           string
	name             string
	treasury         *types.AccountID
	adminKey         *wallet.PublicKey
	expiry           time.Time
	autoRenewAccount *types.AccountID
	autoRenewPeriod  time.Duration
	memo             *string
}

// NewTokenUpdateTransaction 创建更新代币交易构建器
func NewTokenUpdateTransaction() *TokenUpdateTransaction {
	data := &tokenUpdateData{}
	return &TokenUpdateTransaction{
		Transaction: transaction.New(data),
		body:        data,
	}
}

// SetTokenID 设置目标代币
func (t *TokenUpdateTransaction) SetTokenID(id types.TokenID) *TokenUpdateTransaction {
	if t.RequireNotFrozen("SetTokenID") {
		t.body.tokenID = id
	}
	return t
}

// SetTokenSymbol 设置新符号
func (t *TokenUpdateTransaction) SetTokenSymbol(symbol string) *TokenUpdateTransaction {
	if t.RequireNotFrozen("SetTokenSymbol") {
		t.body.symbol = symbol
	}
	return t
}

// SetTokenName 设置新名称
func (t *TokenUpdateTransaction) SetTokenName(name string) *TokenUpdateTransaction {
	if t.RequireNotFrozen("SetTokenName") {
		t.body.name = name
	}
	return t
}

// SetTreasuryAccountID 设置新的金库账户
func (t *TokenUpdateTransaction) SetTreasuryAccountID(id types.AccountID) *TokenUpdateTransaction {
	if t.RequireNotFrozen("SetTreasuryAccountID") {
		t.body.treasury = &id
	}
	return t
}

// SetAdminKey 设置新的管理密钥
func (t *TokenUpdateTransaction) SetAdminKey(key wallet.PublicKey) *TokenUpdateTransaction {
	if t.RequireNotFrozen("SetAdminKey") {
		t.body.adminKey = &key
	}
	return t
}

// SetExpirationTime 设置新的过期时间
func (t *TokenUpdateTransaction) SetExpirationTime(expiry time.Time) *TokenUpdateTransaction {
	if t.RequireNotFrozen("SetExpirationTime") {
		t.body.expiry = expiry
	}
	return t
}

// SetAutoRenewAccountID 设置自动续期扣费账户
func (t *TokenUpdateTransaction) SetAutoRenewAccountID(id types.AccountID) *TokenUpdateTransaction {
	if t.RequireNotFrozen("SetAutoRenewAccountID") {
		t.body.autoRenewAccount = &id
	}
	return t
}

// SetAutoRenewPeriod 设置自动续期周期
func (t *TokenUpdateTransaction) SetAutoRenewPeriod(period time.Duration) *TokenUpdateTransaction {
	if t.RequireNotFrozen("SetAutoRenewPeriod") {
		t.body.autoRenewPeriod = period
	}
	return t
}

// SetTokenMemo 设置代币备注（空串表示清空）
func (t *TokenUpdateTransaction) SetTokenMemo(memo string) *TokenUpdateTransaction {
	if t.RequireNotFrozen("SetTokenMemo") {
		t.body.memo = &memo
	}
	return t
}

// SetNodeAccountIDs 限定候选提交节点
func (t *TokenUpdateTransaction) SetNodeAccountIDs(ids []types.AccountID) *TokenUpdateTransaction {
	t.Transaction.SetNodeAccountIDs(ids)
	return t
}

// SetTransactionID 显式指定交易 ID
func (t *TokenUpdateTransaction) SetTransactionID(id types.TransactionID) *TokenUpdateTransaction {
	t.Transaction.SetTransactionID(id)
	return t
}

// SetMaxTransactionFee 设置最大费用
func (t *TokenUpdateTransaction) SetMaxTransactionFee(fee types.Hbar) *TokenUpdateTransaction {
	t.Transaction.SetMaxTransactionFee(fee)
	return t
}

func (d *tokenUpdateData) Method() string {
	return "/proto.TokenService/updateToken"
}

func (d *tokenUpdateData) ToBody() wire.BodyData {
	return &wire.TokenUpdateBody{
		Token:            d.tokenID,
		Symbol:           d.symbol,
		Name:             d.name,
		Treasury:         d.treasury,
		AdminKey:         d.adminKey,
		Expiry:           d.expiry,
		AutoRenewAccount: d.autoRenewAccount,
		AutoRenewPeriod:  d.autoRenewPeriod,
		Memo:             d.memo,
	}
}

func (d *tokenUpdateData) ValidateChecksums(ledger types.LedgerID) error {
	if err := d.tokenID.Validate(ledger); err != nil {
		return err
	}
	if d.treasury != nil {
		if err := d.treasury.Validate(ledger); err != nil {
			return err
		}
	}
	if d.autoRenewAccount != nil {
		return d.autoRenewAccount.Validate(ledger)
	}
	return nil
}
