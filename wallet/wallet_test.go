package wallet

import (
	"bytes"
	"context"
	"testing"
)

func TestEd25519SignAndVerify(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey() failed: %v", err)
	}
	if !key.IsEd25519() {
		t.Fatal("generated key is not ed25519")
	}

	message := []byte("frozen transaction body bytes")
	sig, err := key.Sign(message)
	if err != nil {
		t.Fatalf("Sign() failed: %v", err)
	}
	if len(sig) != 64 {
		t.Errorf("signature length = %d, want 64", len(sig))
	}

	pub := key.PublicKey()
	if !pub.Verify(message, sig) {
		t.Error("Verify() = false for a valid signature")
	}
	if pub.Verify([]byte("tampered"), sig) {
		t.Error("Verify() = true for a tampered message")
	}

	// 从种子恢复得到相同密钥
	restored, err := PrivateKeyFromBytes(key.Bytes())
	if err != nil {
		t.Fatalf("PrivateKeyFromBytes() failed: %v", err)
	}
	if restored.PublicKey().String() != pub.String() {
		t.Error("restored key has a different public key")
	}
}

func TestECDSASignAndVerify(t *testing.T) {
	key, err := GenerateECDSAPrivateKey()
	if err != nil {
		t.Fatalf("GenerateECDSAPrivateKey() failed: %v", err)
	}
	if key.IsEd25519() {
		t.Fatal("generated key is not secp256k1")
	}

	message := []byte("frozen transaction body bytes")
	sig, err := key.Sign(message)
	if err != nil {
		t.Fatalf("Sign() failed: %v", err)
	}
	if len(sig) != 64 {
		t.Errorf("signature length = %d, want 64", len(sig))
	}

	pub := key.PublicKey()
	if got := len(pub.Bytes()); got != 33 {
		t.Errorf("compressed public key length = %d, want 33", got)
	}
	if !pub.Verify(message, sig) {
		t.Error("Verify() = false for a valid signature")
	}

	// 压缩形式往返
	restored, err := ECDSAPublicKeyFromBytes(pub.Bytes())
	if err != nil {
		t.Fatalf("ECDSAPublicKeyFromBytes() failed: %v", err)
	}
	if !bytes.Equal(restored.Bytes(), pub.Bytes()) {
		t.Error("decompressed public key does not round trip")
	}

	addr, err := pub.EVMAddress()
	if err != nil {
		t.Fatalf("EVMAddress() failed: %v", err)
	}
	if len(addr) != 20 {
		t.Errorf("EVM address length = %d, want 20", len(addr))
	}
}

func TestEVMAddressRejectsEd25519(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey() failed: %v", err)
	}
	if _, err := key.PublicKey().EVMAddress(); err == nil {
		t.Error("EVMAddress() on ed25519 key did not fail")
	}
}

func TestLocalSigner(t *testing.T) {
	key, err := GeneratePrivateKey()
	if err != nil {
		t.Fatalf("GeneratePrivateKey() failed: %v", err)
	}

	signer := key.Signer()
	if signer.PublicKey().String() != key.PublicKey().String() {
		t.Error("signer public key mismatch")
	}

	message := []byte("payload")
	sig, err := signer.Sign(context.Background(), message)
	if err != nil {
		t.Fatalf("Sign() failed: %v", err)
	}
	if !key.PublicKey().Verify(message, sig) {
		t.Error("signer signature does not verify")
	}
}

func TestKeystoreSaveAndLoad(t *testing.T) {
	tests := []struct {
		name     string
		generate func() (*PrivateKey, error)
	}{
		{name: "ed25519", generate: GeneratePrivateKey},
		{name: "secp256k1", generate: GenerateECDSAPrivateKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := tt.generate()
			if err != nil {
				t.Fatalf("generate key: %v", err)
			}

			km, err := NewKeystoreManager(t.TempDir())
			if err != nil {
				t.Fatalf("NewKeystoreManager() failed: %v", err)
			}

			path, err := km.Save(key, "correct horse battery staple")
			if err != nil {
				t.Fatalf("Save() failed: %v", err)
			}
			if path == "" {
				t.Fatal("Save() returned empty path")
			}

			loaded, err := km.Load(key.PublicKey().String(), "correct horse battery staple")
			if err != nil {
				t.Fatalf("Load() failed: %v", err)
			}
			if !bytes.Equal(loaded.Bytes(), key.Bytes()) {
				t.Error("loaded key differs from saved key")
			}
			if loaded.IsEd25519() != key.IsEd25519() {
				t.Error("loaded key has a different algorithm")
			}

			// 错误口令必须失败且不泄露密钥
			if _, err := km.Load(key.PublicKey().String(), "wrong password"); err == nil {
				t.Error("Load() with wrong password did not fail")
			}
		})
	}
}
