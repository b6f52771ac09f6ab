package wallet

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"golang.org/x/crypto/pbkdf2"
)

// Keystore 加密私钥文件结构
type Keystore struct {
	Version int    `json:"version"`
	ID      string `json:"id"`
	// PublicKey 公钥十六进制形式，用作文件名和索引
	PublicKey string `json:"publicKey"`
	// KeyType 密钥算法："ed25519" 或 "secp256k1"
	KeyType string `json:"keyType"`
	Crypto  Crypto `json:"crypto"`
}

// Crypto 加密信息
type Crypto struct {
	Cipher       string                 `json:"cipher"`
	CipherText   string                 `json:"ciphertext"`
	CipherParams CipherParams           `json:"cipherparams"`
	KDF          string                 `json:"kdf"`
	KDFParams    map[string]interface{} `json:"kdfparams"`
	MAC          string                 `json:"mac"`
}

// CipherParams 加密参数
type CipherParams struct {
	IV string `json:"iv"`
}

const (
	keystoreVersion = 1
	pbkdf2Rounds    = 262144
	pbkdf2KeyLen    = 32
)

// KeystoreManager Keystore 管理器
type KeystoreManager struct {
	keystoreDir string
}

// NewKeystoreManager 创建 Keystore 管理器
func NewKeystoreManager(keystoreDir string) (*KeystoreManager, error) {
	if err := os.MkdirAll(keystoreDir, 0700); err != nil {
		return nil, fmt.Errorf("create keystore dir: %w", err)
	}

	return &KeystoreManager{
		keystoreDir: keystoreDir,
	}, nil
}

// Save 加密保存私钥，返回文件路径
func (km *KeystoreManager) Save(key *PrivateKey, password string) (string, error) {
	// 1. 生成随机 salt 和 IV
	salt := make([]byte, 32)
	iv := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}

	// 2. 派生密钥（PBKDF2-HMAC-SHA256）
	derived := deriveKey(password, salt)

	// 3. 用派生密钥前 16 字节做 AES-128-CTR 加密
	ciphertext, err := cryptAES(derived[:16], key.Bytes(), iv)
	if err != nil {
		return "", fmt.Errorf("encrypt private key: %w", err)
	}

	// 4. MAC 绑定派生密钥后半段与密文
	mac := computeMAC(derived, ciphertext)

	keyType := "secp256k1"
	if key.IsEd25519() {
		keyType = "ed25519"
	}

	pub := key.PublicKey().String()
	ks := &Keystore{
		Version:   keystoreVersion,
		ID:        uuid.New().String(),
		PublicKey: pub,
		KeyType:   keyType,
		Crypto: Crypto{
			Cipher:     "aes-128-ctr",
			CipherText: hex.EncodeToString(ciphertext),
			CipherParams: CipherParams{
				IV: hex.EncodeToString(iv),
			},
			KDF: "pbkdf2",
			KDFParams: map[string]interface{}{
				"c":     pbkdf2Rounds,
				"dklen": pbkdf2KeyLen,
				"prf":   "hmac-sha256",
				"salt":  hex.EncodeToString(salt),
			},
			MAC: hex.EncodeToString(mac),
		},
	}

	// 5. 保存到文件
	keystorePath := filepath.Join(km.keystoreDir, fmt.Sprintf("%s.json", pub))
	file, err := os.OpenFile(keystorePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return "", fmt.Errorf("create keystore file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(ks); err != nil {
		return "", fmt.Errorf("encode keystore: %w", err)
	}

	return keystorePath, nil
}

// Load 按公钥解密加载私钥
func (km *KeystoreManager) Load(publicKey string, password string) (*PrivateKey, error) {
	// 1. 读取 Keystore 文件
	keystorePath := filepath.Join(km.keystoreDir, fmt.Sprintf("%s.json", publicKey))
	data, err := os.ReadFile(keystorePath)
	if err != nil {
		return nil, fmt.Errorf("read keystore file: %w", err)
	}

	var ks Keystore
	if err := json.Unmarshal(data, &ks); err != nil {
		return nil, fmt.Errorf("parse keystore: %w", err)
	}

	// 2. 提取参数
	saltHex, ok := ks.Crypto.KDFParams["salt"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid salt")
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return nil, fmt.Errorf("decode salt: %w", err)
	}

	iv, err := hex.DecodeString(ks.Crypto.CipherParams.IV)
	if err != nil {
		return nil, fmt.Errorf("decode iv: %w", err)
	}

	ciphertext, err := hex.DecodeString(ks.Crypto.CipherText)
	if err != nil {
		return nil, fmt.Errorf("decode ciphertext: %w", err)
	}

	// 3. 派生并验证 MAC
	derived := deriveKey(password, salt)
	expectedMAC := computeMAC(derived, ciphertext)
	actualMAC, err := hex.DecodeString(ks.Crypto.MAC)
	if err != nil {
		return nil, fmt.Errorf("decode mac: %w", err)
	}
	if !equalMAC(expectedMAC, actualMAC) {
		return nil, fmt.Errorf("invalid password")
	}

	// 4. 解密私钥
	raw, err := cryptAES(derived[:16], ciphertext, iv)
	if err != nil {
		return nil, fmt.Errorf("decrypt private key: %w", err)
	}

	var key *PrivateKey
	if ks.KeyType == "secp256k1" {
		key, err = ECDSAPrivateKeyFromBytes(raw)
	} else {
		key, err = PrivateKeyFromBytes(raw)
	}
	if err != nil {
		return nil, fmt.Errorf("restore private key: %w", err)
	}
	return key, nil
}

// deriveKey 派生密钥（PBKDF2-HMAC-SHA256）
func deriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, pbkdf2Rounds, pbkdf2KeyLen, sha256.New)
}

// cryptAES AES-CTR 加解密（CTR 模式下同一个操作）
func cryptAES(key, in, iv []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	stream := cipher.NewCTR(block, iv)
	out := make([]byte, len(in))
	stream.XORKeyStream(out, in)

	return out, nil
}

// computeMAC 计算 MAC：keccak256(derivedKey[16:32] || ciphertext)
func computeMAC(derived, ciphertext []byte) []byte {
	return ethcrypto.Keccak256(derived[16:32], ciphertext)
}

// equalMAC 比较 MAC
func equalMAC(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	var diff byte
	for i := range a {
		diff |= a[i] ^ b[i]
	}
	return diff == 0
}
