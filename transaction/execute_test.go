package transaction_test

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kantorcodes/hedera-sdk-go/client"
	"github.com/kantorcodes/hedera-sdk-go/services/account"
	"github.com/kantorcodes/hedera-sdk-go/services/topic"
	"github.com/kantorcodes/hedera-sdk-go/types"
	"github.com/kantorcodes/hedera-sdk-go/wallet"
	"github.com/kantorcodes/hedera-sdk-go/wire"
)

// recordedCall 假节点收到的一次提交
type recordedCall struct {
	endpoint string
	method   string
	body     *wire.TransactionBody
	sigCount int
}

// fakeTransport 进程内假节点
//
// 按脚本逐次应答，脚本耗尽后恒返回 OK；每次调用都会把请求字节
// 完整解码，顺便验证提交管线产出的线格式是自洽的。
type fakeTransport struct {
	mu     sync.Mutex
	calls  []recordedCall
	script []func() (*wire.TransactionResponse, error)
}

func (f *fakeTransport) Invoke(_ context.Context, endpoint, method string, request []byte) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	envelope, err := wire.UnmarshalTransaction(request)
	if err != nil {
		return nil, err
	}
	signed, err := wire.UnmarshalSignedTransaction(envelope.SignedTransactionBytes)
	if err != nil {
		return nil, err
	}
	body, err := wire.UnmarshalTransactionBody(signed.BodyBytes)
	if err != nil {
		return nil, err
	}

	f.calls = append(f.calls, recordedCall{
		endpoint: endpoint,
		method:   method,
		body:     body,
		sigCount: len(signed.SigMap.Pairs),
	})

	if len(f.script) > 0 {
		next := f.script[0]
		f.script = f.script[1:]
		resp, err := next()
		if err != nil {
			return nil, err
		}
		return resp.Marshal(), nil
	}

	ok := &wire.TransactionResponse{PrecheckCode: types.StatusOK}
	return ok.Marshal(), nil
}

func (f *fakeTransport) Close() error { return nil }

func (f *fakeTransport) recorded() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.calls...)
}

func respondStatus(code types.Status) func() (*wire.TransactionResponse, error) {
	return func() (*wire.TransactionResponse, error) {
		return &wire.TransactionResponse{PrecheckCode: code}, nil
	}
}

func respondError(err error) func() (*wire.TransactionResponse, error) {
	return func() (*wire.TransactionResponse, error) { return nil, err }
}

// newTestClient 两节点名册 + 操作员 + 快速重试策略
func newTestClient(t *testing.T, transport client.Transport) (*client.Client, *client.Operator) {
	t.Helper()

	operatorKey, err := wallet.GeneratePrivateKey()
	require.NoError(t, err)

	operator := &client.Operator{
		AccountID: types.NewAccountID(0, 0, 1001),
		Signer:    operatorKey.Signer(),
	}

	cfg := client.ForNetwork(map[string]types.AccountID{
		"node3.test:50211": types.NewAccountID(0, 0, 3),
		"node5.test:50211": types.NewAccountID(0, 0, 5),
	}, types.LedgerIDTestnet)
	cfg.Operator = operator
	cfg.Retry = &client.RetryPolicy{
		MaxAttempts:       4,
		MinBackoff:        time.Millisecond,
		MaxBackoff:        4 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}

	c, err := client.NewWithTransport(cfg, transport)
	require.NoError(t, err)
	return c, operator
}

func TestExecuteAccountCreate(t *testing.T) {
	transport := &fakeTransport{}
	c, operator := newTestClient(t, transport)
	defer c.Close()

	newKey, err := wallet.GeneratePrivateKey()
	require.NoError(t, err)
	pub := newKey.PublicKey()

	resp, err := account.NewAccountCreateTransaction().
		SetKey(pub).
		SetInitialBalance(types.HbarFromTinybars(1000)).
		SetNodeAccountIDs([]types.AccountID{
			types.NewAccountID(0, 0, 3),
			types.NewAccountID(0, 0, 5),
		}).
		Execute(context.Background(), c)
	require.NoError(t, err)

	// 交易 ID 由操作员账户派生
	assert.Equal(t, operator.AccountID.String(), resp.TransactionID.AccountID.String())
	require.Len(t, resp.Chunks, 1)

	calls := transport.recorded()
	require.Len(t, calls, 1)
	call := calls[0]
	assert.Equal(t, "/proto.CryptoService/createAccount", call.method)
	assert.Contains(t, []string{"node3.test:50211", "node5.test:50211"}, call.endpoint)

	// 节点收到的交易体与构建意图一致
	created, ok := call.body.Data.(*wire.CryptoCreateBody)
	require.True(t, ok, "payload kind = %s", call.body.Data.Kind())
	assert.Equal(t, uint64(1000), created.InitialBalance)
	require.NotNil(t, created.Key)
	assert.Equal(t, pub.Bytes(), created.Key.Bytes())

	// 操作员自动补签恰好一份签名
	assert.Equal(t, 1, call.sigCount)
}

func TestExecuteRotatesNodeOnBusy(t *testing.T) {
	transport := &fakeTransport{script: []func() (*wire.TransactionResponse, error){
		respondStatus(types.StatusBusy),
	}}
	c, _ := newTestClient(t, transport)
	defer c.Close()

	_, err := account.NewAccountCreateTransaction().
		SetInitialBalance(types.NewHbar(1)).
		Execute(context.Background(), c)
	require.NoError(t, err)

	calls := transport.recorded()
	require.Len(t, calls, 2)
	// BUSY 之后换了节点
	assert.NotEqual(t, calls[0].endpoint, calls[1].endpoint)
	// 重试提交的是同一笔交易（同一交易 ID、同一负载），只是面向另一个节点
	assert.Equal(t, calls[0].body.TransactionID.String(), calls[1].body.TransactionID.String())
	assert.NotEqual(t, calls[0].body.NodeAccountID.String(), calls[1].body.NodeAccountID.String())
}

func TestExecuteRetriesTransientTransportError(t *testing.T) {
	transport := &fakeTransport{script: []func() (*wire.TransactionResponse, error){
		respondError(status.Error(codes.Unavailable, "connection refused")),
	}}
	c, _ := newTestClient(t, transport)
	defer c.Close()

	_, err := account.NewAccountCreateTransaction().
		SetInitialBalance(types.NewHbar(1)).
		Execute(context.Background(), c)
	require.NoError(t, err)
	assert.Len(t, transport.recorded(), 2)
}

func TestExecuteExhaustsRetries(t *testing.T) {
	transport := &fakeTransport{script: []func() (*wire.TransactionResponse, error){
		respondStatus(types.StatusBusy),
		respondStatus(types.StatusBusy),
		respondError(status.Error(codes.Unavailable, "connection refused")),
		respondStatus(types.StatusBusy),
	}}
	c, _ := newTestClient(t, transport)
	defer c.Close()

	_, err := account.NewAccountCreateTransaction().
		SetInitialBalance(types.NewHbar(1)).
		Execute(context.Background(), c)

	var exhausted *types.SubmissionExhaustedError
	require.ErrorAs(t, err, &exhausted)
	// 与重试策略的 MaxAttempts 一致，且按尝试顺序保留失败原因
	require.Len(t, exhausted.Attempts, 4)
	assert.Len(t, transport.recorded(), 4)

	calls := transport.recorded()
	for i, attempt := range exhausted.Attempts {
		assert.Equal(t, calls[i].body.NodeAccountID.String(), attempt.NodeAccountID,
			"attempt %d node mismatch", i)
	}
	// 候选节点循环轮转
	assert.NotEqual(t, calls[0].endpoint, calls[1].endpoint)
	assert.Equal(t, calls[0].endpoint, calls[2].endpoint)
}

func TestExecuteStopsOnPermanentPrecheck(t *testing.T) {
	transport := &fakeTransport{script: []func() (*wire.TransactionResponse, error){
		respondStatus(types.StatusInvalidSignature),
	}}
	c, _ := newTestClient(t, transport)
	defer c.Close()

	_, err := account.NewAccountCreateTransaction().
		SetInitialBalance(types.NewHbar(1)).
		Execute(context.Background(), c)

	var precheck *types.PrecheckError
	require.ErrorAs(t, err, &precheck)
	assert.Equal(t, types.StatusInvalidSignature, precheck.Status)
	// 协议永久错误不重试
	assert.Len(t, transport.recorded(), 1)
}

func TestExecuteStopsOnNonRetryableTransportError(t *testing.T) {
	transport := &fakeTransport{script: []func() (*wire.TransactionResponse, error){
		respondError(status.Error(codes.InvalidArgument, "malformed request")),
	}}
	c, _ := newTestClient(t, transport)
	defer c.Close()

	_, err := account.NewAccountCreateTransaction().
		SetInitialBalance(types.NewHbar(1)).
		Execute(context.Background(), c)
	require.Error(t, err)
	assert.Len(t, transport.recorded(), 1)
}

func TestExecuteFailsFastOnChecksumMismatch(t *testing.T) {
	transport := &fakeTransport{}
	c, _ := newTestClient(t, transport)
	defer c.Close()

	// 主网校验和安到测试网账本上
	staked, err := types.ParseAccountID("0.0.123-vfmkw")
	require.NoError(t, err)

	_, err = account.NewAccountCreateTransaction().
		SetInitialBalance(types.NewHbar(1)).
		SetStakedAccountID(staked).
		Execute(context.Background(), c)

	var checksumErr *types.BadEntityIDChecksumError
	require.ErrorAs(t, err, &checksumErr)
	assert.Equal(t, "esxsf", checksumErr.Expected)
	assert.Equal(t, "vfmkw", checksumErr.Actual)
	// 任何网络调用之前快速失败
	assert.Empty(t, transport.recorded())
}

func TestExecuteChunkedTopicMessageInOrder(t *testing.T) {
	transport := &fakeTransport{}
	c, _ := newTestClient(t, transport)
	defer c.Close()

	message := make([]byte, 2500)
	for i := range message {
		message[i] = byte(i)
	}

	resp, err := topic.NewTopicMessageSubmitTransaction().
		SetTopicID(types.NewTopicID(0, 0, 7777)).
		SetMessage(message).
		Execute(context.Background(), c)
	require.NoError(t, err)
	require.Len(t, resp.Chunks, 3)

	calls := transport.recorded()
	require.Len(t, calls, 3)

	var reassembled []byte
	for i, call := range calls {
		body, ok := call.body.Data.(*wire.ConsensusSubmitMessageBody)
		require.True(t, ok, "payload kind = %s", call.body.Data.Kind())
		require.NotNil(t, body.ChunkInfo)

		// 线格式块序号从 1 起计，严格按序提交
		assert.Equal(t, int32(i+1), body.ChunkInfo.Number)
		assert.Equal(t, int32(3), body.ChunkInfo.Total)
		assert.Equal(t, resp.TransactionID.String(),
			body.ChunkInfo.InitialTransactionID.String())

		// 后续分块的交易 ID 在首块基础上逐块加 1 纳秒
		wantStart := resp.TransactionID.ValidStart.Add(time.Duration(i) * time.Nanosecond)
		assert.True(t, call.body.TransactionID.ValidStart.Equal(wantStart),
			"chunk %d ValidStart = %v, want %v", i, call.body.TransactionID.ValidStart, wantStart)

		reassembled = append(reassembled, body.Message...)
	}
	assert.True(t, bytes.Equal(reassembled, message), "chunks do not reassemble the message")
}

func TestExecuteRejectsOversizedMessageBeforeNetwork(t *testing.T) {
	transport := &fakeTransport{}
	c, _ := newTestClient(t, transport)
	defer c.Close()

	_, err := topic.NewTopicMessageSubmitTransaction().
		SetTopicID(types.NewTopicID(0, 0, 7777)).
		SetMessage(make([]byte, 10*1024*1024)).
		SetChunkSize(4*1024).
		Execute(context.Background(), c)

	var chunkErr *types.ChunkCountExceededError
	require.ErrorAs(t, err, &chunkErr)
	assert.Equal(t, 2560, chunkErr.Required)
	assert.Equal(t, 20, chunkErr.Max)
	assert.Empty(t, transport.recorded())
}

func TestExecuteRejectsTerminalEnvelope(t *testing.T) {
	transport := &fakeTransport{}
	c, _ := newTestClient(t, transport)
	defer c.Close()

	tx := account.NewAccountCreateTransaction().
		SetInitialBalance(types.NewHbar(1))

	_, err := tx.Execute(context.Background(), c)
	require.NoError(t, err)

	// 已接受的信封不允许重新提交
	_, err = tx.Execute(context.Background(), c)
	var frozenErr *types.FrozenStateError
	require.ErrorAs(t, err, &frozenErr)
	assert.Len(t, transport.recorded(), 1)
}
