package types

// 实体 ID 校验和算法
//
// **算法**：
// 对 "shard.realm.num" 的十进制形式（'.' 映射为数字 10）计算：
// - s0/s1：偶数位/奇数位数字和 mod 11
// - s：数字串的 31 进制滚动哈希 mod 26^3
// - sh：账本身份字节（末尾补 6 个零字节）的 31 进制滚动哈希 mod 26^5
// 组合后乘以 1000003 再 mod 26^5，按 26 进制渲染为 5 个小写字母。
//
// 校验和是纯客户端安全检查，节点不参与验证。

const (
	checksumLen = 5

	p3 = 26 * 26 * 26
	p5 = 26 * 26 * 26 * 26 * 26
	// 与账本字节哈希组合前的最终扰动系数
	checksumMultiplier = 1_000_003
)

// entityChecksum 计算地址字符串在给定账本上的校验和
func entityChecksum(ledger LedgerID, addr string) string {
	digits := make([]int, 0, len(addr))
	for _, ch := range addr {
		if ch == '.' {
			digits = append(digits, 10)
		} else {
			digits = append(digits, int(ch-'0'))
		}
	}

	s := 0
	s0 := 0
	s1 := 0
	for i, d := range digits {
		s = (31*s + d) % p3
		if i%2 == 0 {
			s0 = (s0 + d) % 11
		} else {
			s1 = (s1 + d) % 11
		}
	}

	// 账本身份字节末尾固定补 6 个零字节
	sh := 0
	for _, b := range ledger {
		sh = (31*sh + int(b)) % p5
	}
	for i := 0; i < 6; i++ {
		sh = (31 * sh) % p5
	}

	c := ((((len(digits)%5)*11+s0)*11+s1)*p3 + s + sh) % p5
	c = (c * checksumMultiplier) % p5

	out := make([]byte, checksumLen)
	for i := checksumLen - 1; i >= 0; i-- {
		out[i] = byte('a' + c%26)
		c /= 26
	}
	return string(out)
}

// isChecksumFormat 检查字符串是否为合法的校验和形式（恰好 5 个字母）
func isChecksumFormat(s string) bool {
	if len(s) != checksumLen {
		return false
	}
	for _, ch := range s {
		if (ch < 'a' || ch > 'z') && (ch < 'A' || ch > 'Z') {
			return false
		}
	}
	return true
}

// lowerChecksum 小写化校验和（比较不区分大小写）
func lowerChecksum(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}
