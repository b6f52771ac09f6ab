package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SDKError SDK 统一结构化错误
//
// 所有 SDK 产生的失败都可以转换为这个结构，字段足以定位问题，
// 不需要调用方重新解析错误消息字符串。
type SDKError struct {
	Code        string
	Layer       string
	UserMessage string
	Detail      string
	Details     map[string]interface{}
	TraceID     string
	Timestamp   string
}

func (e *SDKError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.UserMessage, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.UserMessage)
}

// Layer 常量
const (
	LayerSDK = "hedera-sdk-go"
)

// ErrorCode 错误码常量
const (
	ErrorCodeChecksumMismatch     = "SDK_CHECKSUM_MISMATCH"
	ErrorCodeFrozenState          = "SDK_FROZEN_STATE"
	ErrorCodeChunkCountExceeded   = "SDK_CHUNK_COUNT_EXCEEDED"
	ErrorCodePrecheckFailed       = "SDK_PRECHECK_FAILED"
	ErrorCodeSubmissionExhausted  = "SDK_SUBMISSION_EXHAUSTED"
	ErrorCodeUnsupportedKind      = "SDK_UNSUPPORTED_TRANSACTION_KIND"
	ErrorCodeConnectionError      = "SDK_CONNECTION_ERROR"
	ErrorCodeSerializationError   = "SDK_SERIALIZATION_ERROR"
	ErrorCodeDeserializationError = "SDK_DESERIALIZATION_ERROR"
)

// NewSDKError 创建结构化错误（自动生成 TraceID 和时间戳）
func NewSDKError(code, userMessage, detail string, details map[string]interface{}) *SDKError {
	if details == nil {
		details = make(map[string]interface{})
	}
	return &SDKError{
		Code:        code,
		Layer:       LayerSDK,
		UserMessage: userMessage,
		Detail:      detail,
		Details:     details,
		TraceID:     uuid.New().String(),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
}

// BadEntityIDChecksumError 实体 ID 校验和与目标账本不一致
//
// 在任何网络调用之前离线检出，永不重试。
type BadEntityIDChecksumError struct {
	// EntityID 不带校验和的 ID 字符串形式
	EntityID string
	// Expected 按目标账本重新计算出的校验和
	Expected string
	// Actual ID 携带的校验和
	Actual string
	// Ledger 目标账本名称
	Ledger string
}

func (e *BadEntityIDChecksumError) Error() string {
	return fmt.Sprintf("entity id %s has checksum %q but ledger %s expects %q",
		e.EntityID, e.Actual, e.Ledger, e.Expected)
}

// Structured 转换为统一结构化错误
func (e *BadEntityIDChecksumError) Structured() *SDKError {
	return NewSDKError(ErrorCodeChecksumMismatch, "entity id checksum mismatch", e.Error(),
		map[string]interface{}{
			"entityId": e.EntityID,
			"expected": e.Expected,
			"actual":   e.Actual,
			"ledger":   e.Ledger,
		})
}

// FrozenStateError 冻结后修改或在错误状态下调用生命周期操作
type FrozenStateError struct {
	// Op 被拒绝的操作名
	Op string
}

func (e *FrozenStateError) Error() string {
	return fmt.Sprintf("transaction is frozen: %s is not allowed", e.Op)
}

// ChunkCountExceededError 所需分块数超过配置上限
//
// 用户侧致命错误：要么调大分块配置，要么减小输入，不会自动重试。
type ChunkCountExceededError struct {
	// Required 按当前分块大小需要的分块数
	Required int
	// Max 配置的分块数上限
	Max int
}

func (e *ChunkCountExceededError) Error() string {
	return fmt.Sprintf("payload requires %d chunks but the configured maximum is %d", e.Required, e.Max)
}

// PrecheckError 节点预检拒绝（协议永久错误）
//
// 同一交易 ID 重发必然得到相同结果，调用方需要用新的交易 ID
// 构建新信封重试同一意图。
type PrecheckError struct {
	// Status 节点返回的预检状态码
	Status Status
	// TransactionID 被拒绝的交易 ID
	TransactionID string
	// NodeAccountID 返回拒绝的节点
	NodeAccountID string
}

func (e *PrecheckError) Error() string {
	return fmt.Sprintf("transaction %s failed precheck with status %s at node %s",
		e.TransactionID, e.Status, e.NodeAccountID)
}

// AttemptFailure 一次提交尝试的失败记录
type AttemptFailure struct {
	// NodeAccountID 本次尝试的节点
	NodeAccountID string
	// Err 失败原因
	Err error
}

// SubmissionExhaustedError 重试次数耗尽仍未被任何节点接受
//
// Attempts 按尝试顺序保留每个节点的失败原因。
type SubmissionExhaustedError struct {
	TransactionID string
	Attempts      []AttemptFailure
}

// Unwrap 暴露每次尝试的底层错误，errors.Is/As 可以穿透到具体原因
func (e *SubmissionExhaustedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		if a.Err != nil {
			errs = append(errs, a.Err)
		}
	}
	return errs
}

func (e *SubmissionExhaustedError) Error() string {
	reasons := make([]string, 0, len(e.Attempts))
	for i, a := range e.Attempts {
		reasons = append(reasons, fmt.Sprintf("attempt %d @ node %s: %v", i+1, a.NodeAccountID, a.Err))
	}
	return fmt.Sprintf("submission of %s exhausted %d attempts: %s",
		e.TransactionID, len(e.Attempts), strings.Join(reasons, "; "))
}

// UnsupportedTransactionKindError 解码边界遇到本 SDK 不认识的负载标签
//
// 封闭变体集内的分发是全函数，不存在"未知变体"；这个错误只会
// 出现在解码网络字节的边界上。
type UnsupportedTransactionKindError struct {
	// FieldTag 未识别的负载字段标签
	FieldTag uint32
}

func (e *UnsupportedTransactionKindError) Error() string {
	return fmt.Sprintf("unsupported transaction kind: wire body tag %d", e.FieldTag)
}
