package transaction

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kantorcodes/hedera-sdk-go/types"
	"github.com/kantorcodes/hedera-sdk-go/wallet"
	"github.com/kantorcodes/hedera-sdk-go/wire"
)

// fakeData 最小负载实现，信封测试不关心负载语义
type fakeData struct {
	contents []byte
}

func (d *fakeData) Method() string { return "/proto.FileService/appendContent" }

func (d *fakeData) ToBody() wire.BodyData {
	return &wire.FileAppendBody{FileID: types.NewFileID(0, 0, 42), Contents: d.contents}
}

func (d *fakeData) ValidateChecksums(types.LedgerID) error { return nil }

// fakeChunkableData 可分块版本
type fakeChunkableData struct {
	fakeData
}

func (d *fakeChunkableData) Payload() []byte { return d.contents }

func (d *fakeChunkableData) BodyForChunk(_ ChunkInfo, part []byte) wire.BodyData {
	return &wire.FileAppendBody{FileID: types.NewFileID(0, 0, 42), Contents: part}
}

func frozenTestTransaction(t *testing.T, data Data) *Transaction {
	t.Helper()
	tx := New(data).
		SetTransactionID(types.TransactionIDWithValidStart(
			types.NewAccountID(0, 0, 1001), time.Unix(1_700_000_000, 0))).
		SetNodeAccountIDs([]types.AccountID{
			types.NewAccountID(0, 0, 3),
			types.NewAccountID(0, 0, 5),
		})
	if err := tx.Freeze(); err != nil {
		t.Fatalf("Freeze() failed: %v", err)
	}
	return tx
}

func TestFreezeRequiresIdentityWithoutClient(t *testing.T) {
	tx := New(&fakeData{contents: []byte("x")})
	if err := tx.Freeze(); err == nil {
		t.Error("Freeze() without transaction id did not fail")
	}

	tx = New(&fakeData{contents: []byte("x")}).
		SetTransactionID(types.NewTransactionID(types.NewAccountID(0, 0, 2)))
	if err := tx.Freeze(); err == nil {
		t.Error("Freeze() without node account ids did not fail")
	}
}

func TestFreezeIsIdempotent(t *testing.T) {
	tx := frozenTestTransaction(t, &fakeData{contents: []byte("payload")})

	first := append([]byte(nil), tx.plan[0].bodies[0].bodyBytes...)
	if err := tx.Freeze(); err != nil {
		t.Fatalf("second Freeze() failed: %v", err)
	}
	if !bytes.Equal(first, tx.plan[0].bodies[0].bodyBytes) {
		t.Error("second Freeze() changed the frozen body bytes")
	}
	if tx.State() != StateFrozen {
		t.Errorf("State() = %v, want Frozen", tx.State())
	}
}

func TestModifyAfterFreezeIsDeferred(t *testing.T) {
	tx := frozenTestTransaction(t, &fakeData{contents: []byte("payload")})
	before := append([]byte(nil), tx.plan[0].bodies[0].bodyBytes...)

	// 冻结后的修改不落笔，也不立即报错
	tx.SetTransactionMemo("too late")
	if !bytes.Equal(before, tx.plan[0].bodies[0].bodyBytes) {
		t.Error("setter after freeze changed the frozen body bytes")
	}

	// 违规在下一次生命周期操作时暴露
	err := tx.Freeze()
	var frozenErr *types.FrozenStateError
	if !errors.As(err, &frozenErr) {
		t.Fatalf("Freeze() error = %v (%T), want *FrozenStateError", err, err)
	}
	if frozenErr.Op != "SetTransactionMemo" {
		t.Errorf("Op = %q, want SetTransactionMemo", frozenErr.Op)
	}
}

func TestSignBeforeFreezeFails(t *testing.T) {
	key, err := wallet.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}

	tx := New(&fakeData{contents: []byte("x")})
	err = tx.Sign(context.Background(), key)
	var frozenErr *types.FrozenStateError
	if !errors.As(err, &frozenErr) {
		t.Errorf("Sign() before freeze error = %v, want *FrozenStateError", err)
	}
}

func TestSignOverwritesPerPublicKey(t *testing.T) {
	ctx := context.Background()
	keyA, _ := wallet.GeneratePrivateKey()
	keyB, _ := wallet.GeneratePrivateKey()

	tx := frozenTestTransaction(t, &fakeData{contents: []byte("payload")})

	// 同一密钥重复签名不增加签名数
	if err := tx.Sign(ctx, keyA); err != nil {
		t.Fatalf("first Sign() failed: %v", err)
	}
	if err := tx.Sign(ctx, keyA); err != nil {
		t.Fatalf("second Sign() failed: %v", err)
	}
	if got := len(tx.SignerPublicKeys()); got != 1 {
		t.Errorf("signer count after double signing = %d, want 1", got)
	}

	if err := tx.Sign(ctx, keyB); err != nil {
		t.Fatalf("Sign() with second key failed: %v", err)
	}
	if got := len(tx.SignerPublicKeys()); got != 2 {
		t.Errorf("signer count with two keys = %d, want 2", got)
	}
	if tx.State() != StateSigned {
		t.Errorf("State() = %v, want Signed", tx.State())
	}

	// 每个 (分块, 节点) 交易体都带齐全部签名且可验证
	pubA := keyA.PublicKey()
	for _, body := range tx.plan[0].bodies {
		pair, ok := body.sigs[pubA.String()]
		if !ok {
			t.Fatal("body is missing a signature from key A")
		}
		if !pubA.Verify(body.bodyBytes, pair.Ed25519) {
			t.Error("signature from key A does not verify against the body bytes")
		}
	}
}

func TestSignAllCollectsEverySigner(t *testing.T) {
	ctx := context.Background()
	var signers []wallet.Signer
	for i := 0; i < 4; i++ {
		key, err := wallet.GeneratePrivateKey()
		if err != nil {
			t.Fatalf("generate key: %v", err)
		}
		signers = append(signers, key.Signer())
	}

	tx := frozenTestTransaction(t, &fakeChunkableData{fakeData{contents: bytes.Repeat([]byte{0x01}, 2500)}})
	if err := tx.SignAll(ctx, signers); err != nil {
		t.Fatalf("SignAll() failed: %v", err)
	}

	if got := len(tx.SignerPublicKeys()); got != 4 {
		t.Errorf("signer count = %d, want 4", got)
	}
	for ci := range tx.plan {
		for _, body := range tx.plan[ci].bodies {
			if len(body.sigs) != 4 {
				t.Errorf("chunk %d body has %d signatures, want 4", ci, len(body.sigs))
			}
		}
	}
}

func TestChunkPlanGrid(t *testing.T) {
	payload := make([]byte, 2500)
	for i := range payload {
		payload[i] = byte(i)
	}

	tx := New(&fakeChunkableData{fakeData{contents: payload}}).
		SetTransactionID(types.TransactionIDWithValidStart(
			types.NewAccountID(0, 0, 1001), time.Unix(1_700_000_000, 100))).
		SetNodeAccountIDs([]types.AccountID{
			types.NewAccountID(0, 0, 3),
			types.NewAccountID(0, 0, 5),
		})
	if err := tx.Freeze(); err != nil {
		t.Fatalf("Freeze() failed: %v", err)
	}

	if got := len(tx.plan); got != 3 {
		t.Fatalf("chunk count = %d, want 3", got)
	}

	base := tx.TransactionID()
	for i, chunk := range tx.plan {
		if chunk.info.Total != 3 {
			t.Errorf("chunk %d Total = %d, want 3", i, chunk.info.Total)
		}
		if chunk.info.Index != i {
			t.Errorf("chunk %d Index = %d", i, chunk.info.Index)
		}
		wantStart := base.ValidStart.Add(time.Duration(i) * time.Nanosecond)
		if !chunk.info.CurrentTransactionID.ValidStart.Equal(wantStart) {
			t.Errorf("chunk %d ValidStart = %v, want %v",
				i, chunk.info.CurrentTransactionID.ValidStart, wantStart)
		}
		// 网格：每个分块面向每个候选节点各有一份字节
		if got := len(chunk.bodies); got != 2 {
			t.Errorf("chunk %d body count = %d, want 2", i, got)
		}
	}
}

func TestFreezeRejectsOversizedPayload(t *testing.T) {
	tx := New(&fakeChunkableData{fakeData{contents: make([]byte, 10*1024*1024)}}).
		SetTransactionID(types.NewTransactionID(types.NewAccountID(0, 0, 1001))).
		SetNodeAccountIDs([]types.AccountID{types.NewAccountID(0, 0, 3)}).
		SetChunkSize(4 * 1024)

	err := tx.Freeze()
	var chunkErr *types.ChunkCountExceededError
	if !errors.As(err, &chunkErr) {
		t.Fatalf("Freeze() error = %v (%T), want *ChunkCountExceededError", err, err)
	}
	if chunkErr.Required != 2560 {
		t.Errorf("Required = %d, want 2560", chunkErr.Required)
	}
	if chunkErr.Max != DefaultMaxChunks {
		t.Errorf("Max = %d, want %d", chunkErr.Max, DefaultMaxChunks)
	}
	// 失败的冻结不留下半成品
	if tx.State() != StateBuilding {
		t.Errorf("State() = %v, want Building", tx.State())
	}
	if len(tx.plan) != 0 {
		t.Error("failed Freeze() left a partial plan behind")
	}
}
