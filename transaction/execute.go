package transaction

import (
	"context"
	"fmt"

	"github.com/kantorcodes/hedera-sdk-go/client"
	"github.com/kantorcodes/hedera-sdk-go/types"
	"github.com/kantorcodes/hedera-sdk-go/wire"
)

// ChunkReceipt 单个分块被接受的记录
type ChunkReceipt struct {
	// TransactionID 该分块的交易 ID
	TransactionID types.TransactionID
	// NodeAccountID 接受该分块的节点
	NodeAccountID types.AccountID
	// Cost 节点返回的费用估算（仅部分预检失败场景非零）
	Cost uint64
}

// Response 整笔提交的结果
type Response struct {
	// TransactionID 首个分块的交易 ID，查询回执用它
	TransactionID types.TransactionID
	// NodeAccountID 接受首个分块的节点
	NodeAccountID types.AccountID
	// Chunks 每个分块的接受记录，按分块顺序
	Chunks []ChunkReceipt
}

// Execute 提交交易
//
// 构建中的信封先用客户端冻结；校验和验证在任何网络调用之前完成，
// 失败则整笔快速失败。分块严格按序提交，前一块被接受后才提交
// 下一块。单个分块在候选节点间循环轮转重试，指数退避，重试次数
// 耗尽返回 SubmissionExhaustedError 并保留全部失败原因。
func (t *Transaction) Execute(ctx context.Context, c *client.Client) (*Response, error) {
	switch t.state {
	case StateAccepted, StateRejected:
		return nil, &types.FrozenStateError{Op: fmt.Sprintf("Execute in terminal state %s", t.state)}
	case StateSubmitted:
		return nil, &types.FrozenStateError{Op: "Execute while a submission is in flight"}
	}

	// 1. 冻结（幂等；冻结期间记录的修改违规也在这里暴露）
	if err := t.freeze(c); err != nil {
		return nil, err
	}
	if t.freezeErr != nil {
		return nil, t.freezeErr
	}

	// 2. 离线校验和验证，网络调用前快速失败
	if err := t.validateChecksums(c.LedgerID()); err != nil {
		return nil, err
	}

	// 3. 操作员自动补签
	if op := c.Operator(); op != nil {
		if err := t.ensureOperatorSignature(ctx, c); err != nil {
			return nil, err
		}
	}

	t.state = StateSubmitted
	logger := c.Logger()
	method := t.data.Method()

	resp := &Response{
		TransactionID: t.transactionID,
		Chunks:        make([]ChunkReceipt, 0, len(t.plan)),
	}

	// 4. 按序提交各分块
	for ci := range t.plan {
		// 已有分块被接受后的取消只是建议性的：已接受的分块
		// 已在网络中排队，这里只停止提交后续分块
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("canceled after %d of %d chunks were accepted: %w",
				len(resp.Chunks), len(t.plan), err)
		}

		receipt, err := t.submitChunk(ctx, c, &t.plan[ci], method)
		if err != nil {
			t.state = StateRejected
			return nil, err
		}

		logger.Info("chunk accepted",
			"transactionId", receipt.TransactionID.String(),
			"node", receipt.NodeAccountID.String(),
			"chunk", ci+1, "total", len(t.plan))
		resp.Chunks = append(resp.Chunks, receipt)
	}

	t.state = StateAccepted
	resp.NodeAccountID = resp.Chunks[0].NodeAccountID
	return resp, nil
}

// submitChunk 提交单个分块，候选节点循环轮转直到接受或耗尽
func (t *Transaction) submitChunk(ctx context.Context, c *client.Client, chunk *chunkPlan, method string) (ChunkReceipt, error) {
	policy := c.Retry()
	logger := c.Logger()
	start := c.NextStartIndex(len(chunk.bodies))

	attempts := make([]types.AttemptFailure, 0, policy.MaxAttempts)

	for attempt := 0; attempt < policy.MaxAttempts; attempt++ {
		body := &chunk.bodies[(start+attempt)%len(chunk.bodies)]

		raw, err := c.Invoke(ctx, body.nodeAccountID, method, body.envelopeBytes())
		if err != nil {
			if !client.IsRetryableTransport(err) {
				return ChunkReceipt{}, fmt.Errorf("submit %s to node %s: %w",
					body.transactionID, body.nodeAccountID, err)
			}
			attempts = append(attempts, types.AttemptFailure{
				NodeAccountID: body.nodeAccountID.String(),
				Err:           err,
			})
			logger.Warn("transient transport failure, rotating node",
				"node", body.nodeAccountID.String(), "attempt", attempt+1, "error", err)
			if waitErr := policy.Wait(ctx, attempt); waitErr != nil {
				return ChunkReceipt{}, waitErr
			}
			continue
		}

		precheck, err := wire.UnmarshalTransactionResponse(raw)
		if err != nil {
			// 应答解码失败按节点侧瞬时故障处理
			attempts = append(attempts, types.AttemptFailure{
				NodeAccountID: body.nodeAccountID.String(),
				Err:           fmt.Errorf("decode precheck response: %w", err),
			})
			if waitErr := policy.Wait(ctx, attempt); waitErr != nil {
				return ChunkReceipt{}, waitErr
			}
			continue
		}

		if precheck.PrecheckCode == types.StatusOK {
			return ChunkReceipt{
				TransactionID: body.transactionID,
				NodeAccountID: body.nodeAccountID,
				Cost:          precheck.Cost,
			}, nil
		}

		precheckErr := &types.PrecheckError{
			Status:        precheck.PrecheckCode,
			TransactionID: body.transactionID.String(),
			NodeAccountID: body.nodeAccountID.String(),
		}
		if !precheck.PrecheckCode.IsRetryable() {
			// 协议永久错误：重发同一交易 ID 必然得到相同结果
			return ChunkReceipt{}, precheckErr
		}

		attempts = append(attempts, types.AttemptFailure{
			NodeAccountID: body.nodeAccountID.String(),
			Err:           precheckErr,
		})
		logger.Warn("node busy, rotating",
			"node", body.nodeAccountID.String(), "attempt", attempt+1,
			"status", precheck.PrecheckCode.String())
		if policy.OnRetry != nil {
			policy.OnRetry(attempt+1, precheckErr)
		}
		if waitErr := policy.Wait(ctx, attempt); waitErr != nil {
			return ChunkReceipt{}, waitErr
		}
	}

	return ChunkReceipt{}, &types.SubmissionExhaustedError{
		TransactionID: chunk.info.CurrentTransactionID.String(),
		Attempts:      attempts,
	}
}

// validateChecksums 校验信封和负载内全部实体 ID
func (t *Transaction) validateChecksums(ledger types.LedgerID) error {
	if err := t.transactionID.AccountID.Validate(ledger); err != nil {
		return err
	}
	for _, node := range t.nodeAccountIDs {
		if err := node.Validate(ledger); err != nil {
			return err
		}
	}
	return t.data.ValidateChecksums(ledger)
}

// ensureOperatorSignature 操作员签名缺席时自动补签
func (t *Transaction) ensureOperatorSignature(ctx context.Context, c *client.Client) error {
	op := c.Operator()
	keyID := op.Signer.PublicKey().String()

	if len(t.plan) > 0 && len(t.plan[0].bodies) > 0 {
		if _, ok := t.plan[0].bodies[0].sigs[keyID]; ok {
			return nil
		}
	}
	return t.SignWith(ctx, op.Signer)
}
