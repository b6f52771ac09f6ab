package types

import (
	"encoding/hex"
	"fmt"
)

// LedgerID 目标网络的账本身份标识
//
// **说明**：
//   - 校验和计算会把账本身份字节混入摘要，因此同一个实体 ID
//     在不同网络上的校验和不同
//   - 已知网络使用单字节身份（mainnet=0x00, testnet=0x01, previewnet=0x02），
//     其他网络可以使用任意原始字节
type LedgerID []byte

var (
	// LedgerIDMainnet 主网账本身份
	LedgerIDMainnet = LedgerID{0x00}
	// LedgerIDTestnet 测试网账本身份
	LedgerIDTestnet = LedgerID{0x01}
	// LedgerIDPreviewnet 预览网账本身份
	LedgerIDPreviewnet = LedgerID{0x02}
)

// LedgerIDFromString 从名称或十六进制字符串解析账本身份
func LedgerIDFromString(s string) (LedgerID, error) {
	switch s {
	case "mainnet":
		return LedgerIDMainnet, nil
	case "testnet":
		return LedgerIDTestnet, nil
	case "previewnet":
		return LedgerIDPreviewnet, nil
	}

	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid ledger id %q: %w", s, err)
	}
	return LedgerID(raw), nil
}

// String 返回已知网络的名称，未知网络返回十六进制形式
func (l LedgerID) String() string {
	switch {
	case l.Equal(LedgerIDMainnet):
		return "mainnet"
	case l.Equal(LedgerIDTestnet):
		return "testnet"
	case l.Equal(LedgerIDPreviewnet):
		return "previewnet"
	}
	return hex.EncodeToString(l)
}

// Equal 比较两个账本身份是否相同
func (l LedgerID) Equal(other LedgerID) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if l[i] != other[i] {
			return false
		}
	}
	return true
}
