// Package account 账户相关交易构建器
package account

import (
	"time"

	"github.com/kantorcodes/hedera-sdk-go/transaction"
	"github.com/kantorcodes/hedera-sdk-go/types"
	"github.com/kantorcodes/hedera-sdk-go/wallet"
	"github.com/kantorcodes/hedera-sdk-go/wire"
)

// defaultAutoRenewPeriod 账户自动续期周期默认值（约 92 天）
const defaultAutoRenewPeriod = 7890000 * time.Second

// AccountCreateTransaction 创建账户
//
// 链式设置字段后冻结、签名、提交：
//
//	resp, err := account.NewAccountCreateTransaction().
//	    SetKey(newKey.PublicKey()).
//	    SetInitialBalance(types.NewHbar(10)).
//	    Execute(ctx, c)
type AccountCreateTransaction struct {
	*transaction.Transaction
	body *accountCreateData
}

type accountCreateData struct {
	key                  *wallet.PublicKey
	initialBalance       types.Hbar
	receiverSigRequired  bool
	autoRenewPeriod      time.Duration
	memo                 string
	maxTokenAssociations int32
	stakedAccountID      *types.AccountID
	stakedNodeID         *int64
	declineStakingReward bool
	alias                []byte
}

// NewAccountCreateTransaction 创建账户交易构建器
func NewAccountCreateTransaction() *AccountCreateTransaction {
	data := &accountCreateData{
		autoRenewPeriod: defaultAutoRenewPeriod,
	}
	return &AccountCreateTransaction{
		Transaction: transaction.New(data),
		body:        data,
	}
}

// SetKey 设置新账户的控制密钥
func (t *AccountCreateTransaction) SetKey(key wallet.PublicKey) *AccountCreateTransaction {
	if t.RequireNotFrozen("SetKey") {
		t.body.key = &key
	}
	return t
}

// SetInitialBalance 设置初始余额
func (t *AccountCreateTransaction) SetInitialBalance(balance types.Hbar) *AccountCreateTransaction {
	if t.RequireNotFrozen("SetInitialBalance") {
		t.body.initialBalance = balance
	}
	return t
}

// SetReceiverSignatureRequired 设置转入是否需要账户密钥签名
func (t *AccountCreateTransaction) SetReceiverSignatureRequired(required bool) *AccountCreateTransaction {
	if t.RequireNotFrozen("SetReceiverSignatureRequired") {
		t.body.receiverSigRequired = required
	}
	return t
}

// SetAutoRenewPeriod 设置自动续期周期
func (t *AccountCreateTransaction) SetAutoRenewPeriod(period time.Duration) *AccountCreateTransaction {
	if t.RequireNotFrozen("SetAutoRenewPeriod") {
		t.body.autoRenewPeriod = period
	}
	return t
}

// SetAccountMemo 设置账户备注
func (t *AccountCreateTransaction) SetAccountMemo(memo string) *AccountCreateTransaction {
	if t.RequireNotFrozen("SetAccountMemo") {
		t.body.memo = memo
	}
	return t
}

// SetMaxAutomaticTokenAssociations 设置自动代币关联上限
func (t *AccountCreateTransaction) SetMaxAutomaticTokenAssociations(max int32) *AccountCreateTransaction {
	if t.RequireNotFrozen("SetMaxAutomaticTokenAssociations") {
		t.body.maxTokenAssociations = max
	}
	return t
}

// SetStakedAccountID 设置质押目标账户（与质押节点互斥，后设置者生效）
func (t *AccountCreateTransaction) SetStakedAccountID(id types.AccountID) *AccountCreateTransaction {
	if t.RequireNotFrozen("SetStakedAccountID") {
		t.body.stakedAccountID = &id
		t.body.stakedNodeID = nil
	}
	return t
}

// SetStakedNodeID 设置质押目标节点
func (t *AccountCreateTransaction) SetStakedNodeID(nodeID int64) *AccountCreateTransaction {
	if t.RequireNotFrozen("SetStakedNodeID") {
		t.body.stakedNodeID = &nodeID
		t.body.stakedAccountID = nil
	}
	return t
}

// SetDeclineStakingReward 设置是否拒绝质押奖励
func (t *AccountCreateTransaction) SetDeclineStakingReward(decline bool) *AccountCreateTransaction {
	if t.RequireNotFrozen("SetDeclineStakingReward") {
		t.body.declineStakingReward = decline
	}
	return t
}

// SetAlias 设置 20 字节 EVM 别名地址
func (t *AccountCreateTransaction) SetAlias(alias []byte) *AccountCreateTransaction {
	if t.RequireNotFrozen("SetAlias") {
		t.body.alias = append([]byte(nil), alias...)
	}
	return t
}

// SetNodeAccountIDs 限定候选提交节点
func (t *AccountCreateTransaction) SetNodeAccountIDs(ids []types.AccountID) *AccountCreateTransaction {
	t.Transaction.SetNodeAccountIDs(ids)
	return t
}

// SetTransactionID 显式指定交易 ID
func (t *AccountCreateTransaction) SetTransactionID(id types.TransactionID) *AccountCreateTransaction {
	t.Transaction.SetTransactionID(id)
	return t
}

// SetMaxTransactionFee 设置最大费用
func (t *AccountCreateTransaction) SetMaxTransactionFee(fee types.Hbar) *AccountCreateTransaction {
	t.Transaction.SetMaxTransactionFee(fee)
	return t
}

// SetTransactionMemo 设置交易备注
func (t *AccountCreateTransaction) SetTransactionMemo(memo string) *AccountCreateTransaction {
	t.Transaction.SetTransactionMemo(memo)
	return t
}

func (d *accountCreateData) Method() string {
	return "/proto.CryptoService/createAccount"
}

func (d *accountCreateData) ToBody() wire.BodyData {
	return &wire.CryptoCreateBody{
		Key:                           d.key,
		InitialBalance:                uint64(d.initialBalance.Tinybars()),
		ReceiverSigRequired:           d.receiverSigRequired,
		AutoRenewPeriod:               d.autoRenewPeriod,
		Memo:                          d.memo,
		MaxAutomaticTokenAssociations: d.maxTokenAssociations,
		StakedAccountID:               d.stakedAccountID,
		StakedNodeID:                  d.stakedNodeID,
		DeclineStakingReward:          d.declineStakingReward,
		Alias:                         d.alias,
	}
}

func (d *accountCreateData) ValidateChecksums(ledger types.LedgerID) error {
	if d.stakedAccountID != nil {
		return d.stakedAccountID.Validate(ledger)
	}
	return nil
}
