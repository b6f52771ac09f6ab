package types

import "fmt"

// Hbar 网络原生代币金额，内部以最小单位 tinybar 计
//
// 1 hbar = 100,000,000 tinybar。
type Hbar struct {
	tinybars int64
}

const tinybarsPerHbar = 100_000_000

// ZeroHbar 零金额
var ZeroHbar = Hbar{}

// NewHbar 按整数 hbar 创建金额
func NewHbar(hbars int64) Hbar {
	return Hbar{tinybars: hbars * tinybarsPerHbar}
}

// HbarFromTinybars 按 tinybar 创建金额
func HbarFromTinybars(tinybars int64) Hbar {
	return Hbar{tinybars: tinybars}
}

// Tinybars 返回 tinybar 计数
func (h Hbar) Tinybars() int64 {
	return h.tinybars
}

// IsZero 返回金额是否为零
func (h Hbar) IsZero() bool {
	return h.tinybars == 0
}

func (h Hbar) String() string {
	if h.tinybars%tinybarsPerHbar == 0 {
		return fmt.Sprintf("%d ℏ", h.tinybars/tinybarsPerHbar)
	}
	return fmt.Sprintf("%d tℏ", h.tinybars)
}
