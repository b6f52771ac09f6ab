package types

import "fmt"

// Status 节点对已提交交易的同步预检响应码
//
// 取值与网络协议的响应码枚举对齐，这里只列出 SDK 分类重试
// 所需的子集；未知取值按协议永久错误处理。
type Status uint32

const (
	StatusOK                            Status = 0
	StatusInvalidTransaction            Status = 1
	StatusPayerAccountNotFound          Status = 2
	StatusInvalidNodeAccount            Status = 3
	StatusTransactionExpired            Status = 4
	StatusInvalidTransactionStart       Status = 5
	StatusInvalidTransactionDuration    Status = 6
	StatusInvalidSignature              Status = 7
	StatusMemoTooLong                   Status = 8
	StatusInsufficientTxFee             Status = 9
	StatusInsufficientPayerBalance      Status = 10
	StatusDuplicateTransaction          Status = 11
	StatusBusy                          Status = 12
	StatusNotSupported                  Status = 13
	StatusPlatformTransactionNotCreated Status = 25
	StatusPlatformNotActive             Status = 26
)

var statusNames = map[Status]string{
	StatusOK:                            "OK",
	StatusInvalidTransaction:            "INVALID_TRANSACTION",
	StatusPayerAccountNotFound:          "PAYER_ACCOUNT_NOT_FOUND",
	StatusInvalidNodeAccount:            "INVALID_NODE_ACCOUNT",
	StatusTransactionExpired:            "TRANSACTION_EXPIRED",
	StatusInvalidTransactionStart:       "INVALID_TRANSACTION_START",
	StatusInvalidTransactionDuration:    "INVALID_TRANSACTION_DURATION",
	StatusInvalidSignature:              "INVALID_SIGNATURE",
	StatusMemoTooLong:                   "MEMO_TOO_LONG",
	StatusInsufficientTxFee:             "INSUFFICIENT_TX_FEE",
	StatusInsufficientPayerBalance:      "INSUFFICIENT_PAYER_BALANCE",
	StatusDuplicateTransaction:          "DUPLICATE_TRANSACTION",
	StatusBusy:                          "BUSY",
	StatusNotSupported:                  "NOT_SUPPORTED",
	StatusPlatformTransactionNotCreated: "PLATFORM_TRANSACTION_NOT_CREATED",
	StatusPlatformNotActive:             "PLATFORM_NOT_ACTIVE",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATUS_%d", uint32(s))
}

// IsRetryable 返回该预检状态是否为节点侧瞬时错误
//
// 瞬时错误可以换节点或退避后重试；其余预检失败重发同一交易 ID
// 必然得到相同结果，不做重试。
func (s Status) IsRetryable() bool {
	switch s {
	case StatusBusy, StatusPlatformTransactionNotCreated, StatusPlatformNotActive:
		return true
	}
	return false
}
