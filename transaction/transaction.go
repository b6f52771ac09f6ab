// Package transaction 实现交易信封的生命周期
//
// 信封状态机：构建中 -> 已冻结 -> 已签名 -> 已提交 -> 已接受/已拒绝。
// 冻结把意图固化为按 (分块, 节点) 网格序列化的交易体字节，之后
// 签名覆盖的就是这些字节，任何修改都会使已有签名失效，所以冻结后
// 的修改一律被拒绝。
package transaction

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kantorcodes/hedera-sdk-go/client"
	"github.com/kantorcodes/hedera-sdk-go/types"
	"github.com/kantorcodes/hedera-sdk-go/utils"
	"github.com/kantorcodes/hedera-sdk-go/wallet"
	"github.com/kantorcodes/hedera-sdk-go/wire"
)

// State 信封生命周期状态
type State int

const (
	// StateBuilding 构建中，字段可修改
	StateBuilding State = iota
	// StateFrozen 已冻结，交易体字节固化
	StateFrozen
	// StateSigned 已冻结且至少有一个签名
	StateSigned
	// StateSubmitted 提交进行中
	StateSubmitted
	// StateAccepted 已被某个节点预检接受（终态）
	StateAccepted
	// StateRejected 提交失败（终态）
	StateRejected
)

func (s State) String() string {
	switch s {
	case StateBuilding:
		return "Building"
	case StateFrozen:
		return "Frozen"
	case StateSigned:
		return "Signed"
	case StateSubmitted:
		return "Submitted"
	case StateAccepted:
		return "Accepted"
	case StateRejected:
		return "Rejected"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Data 交易负载行为
//
// 服务层为每种交易实现，信封自身不关心负载语义。
type Data interface {
	// Method 完整 gRPC 方法名
	Method() string

	// ToBody 生成线格式负载
	ToBody() wire.BodyData

	// ValidateChecksums 校验负载内全部实体 ID 的校验和
	ValidateChecksums(ledger types.LedgerID) error
}

// ChunkableData 可分块的交易负载
//
// 负载按字节切分后逐块提交，每块是一笔独立的交易。
type ChunkableData interface {
	Data

	// Payload 可切分的字节负载
	Payload() []byte

	// BodyForChunk 按分块位置生成该块的线格式负载
	BodyForChunk(info ChunkInfo, part []byte) wire.BodyData
}

// 信封默认值
const (
	// DefaultValidDuration 交易有效期
	DefaultValidDuration = 120 * time.Second
	// signConcurrency 并行签名的并发上限
	signConcurrency = 5
)

// Transaction 交易信封
//
// 非并发安全：构建、冻结、提交应由单个 goroutine 驱动；并行的是
// 签名器内部（SignAll）和多笔交易之间的提交。
type Transaction struct {
	data Data

	transactionID  types.TransactionID
	nodeAccountIDs []types.AccountID
	maxFee         types.Hbar
	validDuration  time.Duration
	memo           string
	policy         ChunkPolicy

	state State
	// freezeErr 记录第一次被拒绝的修改，冻结和提交入口统一暴露
	freezeErr error
	plan      []chunkPlan
}

// chunkPlan 一个分块在冻结后的完整物料
type chunkPlan struct {
	info   ChunkInfo
	bodies []frozenBody
}

// frozenBody 面向单个节点固化的交易体
type frozenBody struct {
	transactionID types.TransactionID
	nodeAccountID types.AccountID
	bodyBytes     []byte
	// sigs 按公钥去重，同一公钥重复签名只保留最后一份
	sigs map[string]wire.SignaturePair
}

// New 创建交易信封
func New(data Data) *Transaction {
	return &Transaction{
		data:          data,
		validDuration: DefaultValidDuration,
		policy:        DefaultChunkPolicy(),
		state:         StateBuilding,
	}
}

// Data 返回负载
func (t *Transaction) Data() Data {
	return t.data
}

// State 返回当前生命周期状态
func (t *Transaction) State() State {
	return t.state
}

// RequireNotFrozen 检查信封是否仍可修改
//
// 冻结后的修改不立即 panic 也不静默忽略：第一次违规被记录下来，
// 在下一次 Freeze/Execute 时作为 FrozenStateError 返回。设置器
// 据此决定是否落笔修改。
func (t *Transaction) RequireNotFrozen(op string) bool {
	if t.state == StateBuilding {
		return true
	}
	if t.freezeErr == nil {
		t.freezeErr = &types.FrozenStateError{Op: op}
	}
	return false
}

// SetTransactionID 显式指定交易 ID
func (t *Transaction) SetTransactionID(id types.TransactionID) *Transaction {
	if t.RequireNotFrozen("SetTransactionID") {
		t.transactionID = id
	}
	return t
}

// TransactionID 返回交易 ID（冻结前可能为零值）
func (t *Transaction) TransactionID() types.TransactionID {
	return t.transactionID
}

// SetNodeAccountIDs 限定候选提交节点
func (t *Transaction) SetNodeAccountIDs(ids []types.AccountID) *Transaction {
	if t.RequireNotFrozen("SetNodeAccountIDs") {
		t.nodeAccountIDs = append([]types.AccountID(nil), ids...)
	}
	return t
}

// NodeAccountIDs 返回候选提交节点
func (t *Transaction) NodeAccountIDs() []types.AccountID {
	return append([]types.AccountID(nil), t.nodeAccountIDs...)
}

// SetMaxTransactionFee 设置最大费用
func (t *Transaction) SetMaxTransactionFee(fee types.Hbar) *Transaction {
	if t.RequireNotFrozen("SetMaxTransactionFee") {
		t.maxFee = fee
	}
	return t
}

// SetTransactionMemo 设置备注
func (t *Transaction) SetTransactionMemo(memo string) *Transaction {
	if t.RequireNotFrozen("SetTransactionMemo") {
		t.memo = memo
	}
	return t
}

// SetValidDuration 设置有效期
func (t *Transaction) SetValidDuration(d time.Duration) *Transaction {
	if t.RequireNotFrozen("SetValidDuration") {
		t.validDuration = d
	}
	return t
}

// SetChunkSize 设置单块负载字节数
func (t *Transaction) SetChunkSize(size int) *Transaction {
	if t.RequireNotFrozen("SetChunkSize") {
		t.policy.ChunkSize = size
	}
	return t
}

// SetMaxChunks 设置分块数上限
func (t *Transaction) SetMaxChunks(max int) *Transaction {
	if t.RequireNotFrozen("SetMaxChunks") {
		t.policy.MaxChunks = max
	}
	return t
}

// Freeze 冻结信封（不借助客户端）
//
// 交易 ID 和候选节点必须已显式设置。重复冻结是幂等空操作。
func (t *Transaction) Freeze() error {
	return t.freeze(nil)
}

// FreezeWith 冻结信封，缺省字段从客户端补齐
//
// 交易 ID 缺省取操作员账户加当前时间，候选节点缺省取整个名册，
// 最大费用缺省取客户端默认值。
func (t *Transaction) FreezeWith(c *client.Client) error {
	return t.freeze(c)
}

func (t *Transaction) freeze(c *client.Client) error {
	if t.freezeErr != nil {
		return t.freezeErr
	}
	if t.state != StateBuilding {
		// 幂等：已冻结的信封原样保留既有字节和签名
		return nil
	}

	// 1. 补齐缺省字段
	if t.transactionID.IsZero() {
		if c == nil || c.Operator() == nil {
			return fmt.Errorf("transaction id is not set and no operator is available")
		}
		t.transactionID = types.NewTransactionID(c.Operator().AccountID)
	}
	if len(t.nodeAccountIDs) == 0 {
		if c == nil {
			return fmt.Errorf("node account ids are not set and no client is available")
		}
		t.nodeAccountIDs = c.NodeAccountIDs()
	}
	if t.maxFee.IsZero() && c != nil {
		t.maxFee = c.DefaultMaxTransactionFee()
	}

	// 2. 切分负载
	chunks, err := t.chunkParts()
	if err != nil {
		return err
	}

	// 3. 按 (分块, 节点) 网格序列化交易体
	plan := make([]chunkPlan, 0, len(chunks))
	for index, part := range chunks {
		info := ChunkInfo{
			InitialTransactionID: t.transactionID,
			CurrentTransactionID: t.transactionID.Chunked(index),
			Index:                index,
			Total:                len(chunks),
		}

		bodies := make([]frozenBody, 0, len(t.nodeAccountIDs))
		for _, node := range t.nodeAccountIDs {
			info.NodeAccountID = node
			bodyBytes, err := t.bodyBytesFor(info, part)
			if err != nil {
				return err
			}
			bodies = append(bodies, frozenBody{
				transactionID: info.CurrentTransactionID,
				nodeAccountID: node,
				bodyBytes:     bodyBytes,
				sigs:          make(map[string]wire.SignaturePair),
			})
		}
		plan = append(plan, chunkPlan{info: info, bodies: bodies})
	}

	t.plan = plan
	t.state = StateFrozen
	return nil
}

// chunkParts 返回负载分块，不可分块的负载恒为单块
func (t *Transaction) chunkParts() ([][]byte, error) {
	chunkable, ok := t.data.(ChunkableData)
	if !ok {
		return [][]byte{nil}, nil
	}
	return planChunks(chunkable.Payload(), t.policy)
}

// bodyBytesFor 面向一个节点序列化一个分块的交易体
func (t *Transaction) bodyBytesFor(info ChunkInfo, part []byte) ([]byte, error) {
	var payload wire.BodyData
	if chunkable, ok := t.data.(ChunkableData); ok {
		payload = chunkable.BodyForChunk(info, part)
	} else {
		payload = t.data.ToBody()
	}

	body := &wire.TransactionBody{
		TransactionID:  info.CurrentTransactionID,
		NodeAccountID:  info.NodeAccountID,
		TransactionFee: uint64(t.maxFee.Tinybars()),
		ValidDuration:  t.validDuration,
		Memo:           t.memo,
		Data:           payload,
	}
	return body.Marshal()
}

// SignWith 用签名器对全部冻结字节签名
//
// 网格里每个 (分块, 节点) 交易体单独签名。同一公钥重复签名
// 覆盖旧签名，签名总数不随调用次数增长。
func (t *Transaction) SignWith(ctx context.Context, signer wallet.Signer) error {
	if t.state != StateFrozen && t.state != StateSigned {
		return &types.FrozenStateError{Op: fmt.Sprintf("SignWith in state %s", t.state)}
	}

	pub := signer.PublicKey()
	keyID := pub.String()

	for ci := range t.plan {
		for bi := range t.plan[ci].bodies {
			body := &t.plan[ci].bodies[bi]
			sig, err := signer.Sign(ctx, body.bodyBytes)
			if err != nil {
				return fmt.Errorf("sign chunk %d for node %s: %w",
					ci, body.nodeAccountID, err)
			}
			body.sigs[keyID] = makeSignaturePair(pub, sig)
		}
	}

	t.state = StateSigned
	return nil
}

// Sign 用私钥签名
func (t *Transaction) Sign(ctx context.Context, key *wallet.PrivateKey) error {
	return t.SignWith(ctx, key.Signer())
}

// SignAll 并行收集多个签名器的签名
//
// 不同公钥的签名之间没有顺序要求，并发收集后一次性合入。
func (t *Transaction) SignAll(ctx context.Context, signers []wallet.Signer) error {
	if t.state != StateFrozen && t.state != StateSigned {
		return &types.FrozenStateError{Op: fmt.Sprintf("SignAll in state %s", t.state)}
	}

	type signedSet struct {
		keyID string
		pub   wallet.PublicKey
		sigs  [][]byte
	}

	// 冻结字节的平铺快照，各签名器只读共享
	var flat [][]byte
	for ci := range t.plan {
		for bi := range t.plan[ci].bodies {
			flat = append(flat, t.plan[ci].bodies[bi].bodyBytes)
		}
	}

	results, err := utils.ParallelExecute(ctx, signers, func(ctx context.Context, s wallet.Signer) (signedSet, error) {
		set := signedSet{keyID: s.PublicKey().String(), pub: s.PublicKey()}
		for _, bodyBytes := range flat {
			sig, err := s.Sign(ctx, bodyBytes)
			if err != nil {
				return signedSet{}, err
			}
			set.sigs = append(set.sigs, sig)
		}
		return set, nil
	}, signConcurrency)
	if err != nil {
		return err
	}

	for _, set := range results {
		i := 0
		for ci := range t.plan {
			for bi := range t.plan[ci].bodies {
				t.plan[ci].bodies[bi].sigs[set.keyID] = makeSignaturePair(set.pub, set.sigs[i])
				i++
			}
		}
	}

	t.state = StateSigned
	return nil
}

// SignerPublicKeys 返回已签名的公钥十六进制集合
func (t *Transaction) SignerPublicKeys() []string {
	if len(t.plan) == 0 || len(t.plan[0].bodies) == 0 {
		return nil
	}
	keys := make([]string, 0, len(t.plan[0].bodies[0].sigs))
	for keyID := range t.plan[0].bodies[0].sigs {
		keys = append(keys, keyID)
	}
	return keys
}

// makeSignaturePair 按密钥算法装配签名对
func makeSignaturePair(pub wallet.PublicKey, sig []byte) wire.SignaturePair {
	pair := wire.SignaturePair{PubKeyPrefix: pub.Bytes()}
	if pub.IsEd25519() {
		pair.Ed25519 = sig
	} else {
		pair.ECDSASecp256k1 = sig
	}
	return pair
}

// envelopeBytes 装配一个冻结交易体的最外层提交字节
func (b *frozenBody) envelopeBytes() []byte {
	keys := make([]string, 0, len(b.sigs))
	for keyID := range b.sigs {
		keys = append(keys, keyID)
	}
	sort.Strings(keys)

	sigMap := wire.SignatureMap{}
	for _, keyID := range keys {
		sigMap.Pairs = append(sigMap.Pairs, b.sigs[keyID])
	}

	signed := &wire.SignedTransaction{
		BodyBytes: b.bodyBytes,
		SigMap:    sigMap,
	}
	envelope := &wire.Transaction{
		SignedTransactionBytes: signed.Marshal(),
	}
	return envelope.Marshal()
}
