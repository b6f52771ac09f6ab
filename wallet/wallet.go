package wallet

import (
	"context"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// 密钥算法类型
type keyKind uint8

const (
	kindEd25519 keyKind = iota
	kindECDSASecp256k1
)

// Signer 签名能力接口
//
// **说明**：
//   - 签名可能由外部托管方（硬件签名器、远程 KMS）完成，因此带 ctx，
//     允许在每个签名点挂起或取消
//   - 不同公钥的签名之间没有顺序要求
type Signer interface {
	// PublicKey 返回签名对应的公钥
	PublicKey() PublicKey

	// Sign 对消息签名
	Sign(ctx context.Context, message []byte) ([]byte, error)
}

// PrivateKey 私钥（ed25519 或 secp256k1）
type PrivateKey struct {
	kind  keyKind
	ed    ed25519.PrivateKey
	ecdsa *ecdsa.PrivateKey
}

// PublicKey 公钥（ed25519 或 secp256k1）
type PublicKey struct {
	kind  keyKind
	ed    ed25519.PublicKey
	ecdsa *ecdsa.PublicKey
}

// GeneratePrivateKey 生成新的 ed25519 私钥
func GeneratePrivateKey() (*PrivateKey, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate ed25519 key: %w", err)
	}
	return &PrivateKey{kind: kindEd25519, ed: priv}, nil
}

// GenerateECDSAPrivateKey 生成新的 secp256k1 私钥
func GenerateECDSAPrivateKey() (*PrivateKey, error) {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("generate secp256k1 key: %w", err)
	}
	return &PrivateKey{kind: kindECDSASecp256k1, ecdsa: key}, nil
}

// PrivateKeyFromBytes 从 32 字节种子恢复 ed25519 私钥
func PrivateKeyFromBytes(seed []byte) (*PrivateKey, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("invalid ed25519 seed length: expected %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return &PrivateKey{kind: kindEd25519, ed: ed25519.NewKeyFromSeed(seed)}, nil
}

// ECDSAPrivateKeyFromBytes 从 32 字节标量恢复 secp256k1 私钥
func ECDSAPrivateKeyFromBytes(raw []byte) (*PrivateKey, error) {
	key, err := ethcrypto.ToECDSA(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid secp256k1 key: %w", err)
	}
	return &PrivateKey{kind: kindECDSASecp256k1, ecdsa: key}, nil
}

// PrivateKeyFromHex 从十六进制字符串恢复 ed25519 私钥
func PrivateKeyFromHex(s string) (*PrivateKey, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("decode private key hex: %w", err)
	}
	return PrivateKeyFromBytes(raw)
}

// PublicKey 返回对应公钥
func (k *PrivateKey) PublicKey() PublicKey {
	if k.kind == kindEd25519 {
		return PublicKey{kind: kindEd25519, ed: k.ed.Public().(ed25519.PublicKey)}
	}
	return PublicKey{kind: kindECDSASecp256k1, ecdsa: &k.ecdsa.PublicKey}
}

// Bytes 返回私钥原始字节（谨慎使用）
func (k *PrivateKey) Bytes() []byte {
	if k.kind == kindEd25519 {
		return k.ed.Seed()
	}
	return ethcrypto.FromECDSA(k.ecdsa)
}

// IsEd25519 返回是否为 ed25519 私钥
func (k *PrivateKey) IsEd25519() bool {
	return k.kind == kindEd25519
}

// Sign 对消息签名
//
// ed25519 直接签消息；secp256k1 对消息的 keccak256 摘要签名，
// 返回 64 字节 (r || s)。
func (k *PrivateKey) Sign(message []byte) ([]byte, error) {
	if k.kind == kindEd25519 {
		return ed25519.Sign(k.ed, message), nil
	}
	sig, err := ethcrypto.Sign(ethcrypto.Keccak256(message), k.ecdsa)
	if err != nil {
		return nil, fmt.Errorf("secp256k1 sign: %w", err)
	}
	// 去掉恢复字节 V
	return sig[:64], nil
}

// Signer 把私钥包装为本地 Signer
func (k *PrivateKey) Signer() Signer {
	return &localSigner{key: k}
}

// localSigner 进程内私钥签名器
type localSigner struct {
	key *PrivateKey
}

func (s *localSigner) PublicKey() PublicKey {
	return s.key.PublicKey()
}

func (s *localSigner) Sign(_ context.Context, message []byte) ([]byte, error) {
	return s.key.Sign(message)
}

// PublicKeyFromBytes 从原始字节恢复 ed25519 公钥
func PublicKeyFromBytes(raw []byte) (PublicKey, error) {
	if len(raw) != ed25519.PublicKeySize {
		return PublicKey{}, fmt.Errorf("invalid ed25519 public key length: expected %d bytes, got %d", ed25519.PublicKeySize, len(raw))
	}
	return PublicKey{kind: kindEd25519, ed: ed25519.PublicKey(raw)}, nil
}

// ECDSAPublicKeyFromBytes 从 33 字节压缩形式恢复 secp256k1 公钥
func ECDSAPublicKeyFromBytes(raw []byte) (PublicKey, error) {
	key, err := ethcrypto.DecompressPubkey(raw)
	if err != nil {
		return PublicKey{}, fmt.Errorf("invalid secp256k1 public key: %w", err)
	}
	return PublicKey{kind: kindECDSASecp256k1, ecdsa: key}, nil
}

// IsEd25519 返回是否为 ed25519 公钥
func (p PublicKey) IsEd25519() bool {
	return p.kind == kindEd25519
}

// Bytes 返回公钥原始字节（ed25519 为 32 字节，secp256k1 为 33 字节压缩形式）
func (p PublicKey) Bytes() []byte {
	if p.kind == kindEd25519 {
		return []byte(p.ed)
	}
	return ethcrypto.CompressPubkey(p.ecdsa)
}

// String 返回公钥十六进制形式
func (p PublicKey) String() string {
	return hex.EncodeToString(p.Bytes())
}

// EVMAddress 返回 secp256k1 公钥的 20 字节 EVM 别名地址
//
// keccak256 哈希的末 20 字节，可作为账户别名使用；
// ed25519 公钥没有 EVM 形式。
func (p PublicKey) EVMAddress() ([]byte, error) {
	if p.kind != kindECDSASecp256k1 {
		return nil, fmt.Errorf("EVM address is only defined for secp256k1 keys")
	}
	addr := ethcrypto.PubkeyToAddress(*p.ecdsa)
	return addr.Bytes(), nil
}

// Verify 验证消息签名
func (p PublicKey) Verify(message, signature []byte) bool {
	if p.kind == kindEd25519 {
		return ed25519.Verify(p.ed, message, signature)
	}
	if len(signature) < 64 {
		return false
	}
	return ethcrypto.VerifySignature(p.Bytes(), ethcrypto.Keccak256(message), signature[:64])
}
