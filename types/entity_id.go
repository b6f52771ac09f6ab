package types

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// EntityID 网络实体标识的通用形式
//
// **格式**：
//   - 数字形式："shard.realm.num"，可选携带 "-ckshm" 校验和后缀
//   - 别名形式："shard.realm.<hex>"，hex 为公钥字节或 20 字节 EVM 地址；
//     别名 ID 不携带校验和
//
// 字段在解析后不可变；校验和只在 Validate 时重新计算比对。
type EntityID struct {
	Shard uint64
	Realm uint64
	Num   uint64

	// Alias 别名字节（公钥或 EVM 地址），与 Num 互斥
	Alias []byte

	checksum string
}

// AccountID 账户标识
type AccountID struct{ EntityID }

// ContractID 合约标识
type ContractID struct{ EntityID }

// TokenID 代币标识
type TokenID struct{ EntityID }

// FileID 文件标识
type FileID struct{ EntityID }

// TopicID 共识主题标识
type TopicID struct{ EntityID }

// NewAccountID 创建数字形式的账户 ID
func NewAccountID(shard, realm, num uint64) AccountID {
	return AccountID{EntityID{Shard: shard, Realm: realm, Num: num}}
}

// NewTokenID 创建数字形式的代币 ID
func NewTokenID(shard, realm, num uint64) TokenID {
	return TokenID{EntityID{Shard: shard, Realm: realm, Num: num}}
}

// NewFileID 创建数字形式的文件 ID
func NewFileID(shard, realm, num uint64) FileID {
	return FileID{EntityID{Shard: shard, Realm: realm, Num: num}}
}

// NewTopicID 创建数字形式的主题 ID
func NewTopicID(shard, realm, num uint64) TopicID {
	return TopicID{EntityID{Shard: shard, Realm: realm, Num: num}}
}

// NewAliasAccountID 创建别名形式的账户 ID
func NewAliasAccountID(shard, realm uint64, alias []byte) AccountID {
	return AccountID{EntityID{Shard: shard, Realm: realm, Alias: alias}}
}

// ParseAccountID 解析账户 ID 字符串
func ParseAccountID(s string) (AccountID, error) {
	id, err := parseEntityID(s)
	if err != nil {
		return AccountID{}, err
	}
	return AccountID{id}, nil
}

// ParseTokenID 解析代币 ID 字符串
func ParseTokenID(s string) (TokenID, error) {
	id, err := parseEntityID(s)
	if err != nil {
		return TokenID{}, err
	}
	return TokenID{id}, nil
}

// ParseFileID 解析文件 ID 字符串
func ParseFileID(s string) (FileID, error) {
	id, err := parseEntityID(s)
	if err != nil {
		return FileID{}, err
	}
	return FileID{id}, nil
}

// ParseTopicID 解析主题 ID 字符串
func ParseTopicID(s string) (TopicID, error) {
	id, err := parseEntityID(s)
	if err != nil {
		return TopicID{}, err
	}
	return TopicID{id}, nil
}

// parseEntityID 解析 "shard.realm.num[-checksum]" 或 "shard.realm.<hex>"
func parseEntityID(s string) (EntityID, error) {
	body := s
	checksum := ""
	if i := strings.IndexByte(s, '-'); i >= 0 {
		body = s[:i]
		checksum = s[i+1:]
		if !isChecksumFormat(checksum) {
			return EntityID{}, fmt.Errorf("invalid entity id %q: checksum must be exactly %d letters", s, checksumLen)
		}
		checksum = lowerChecksum(checksum)
	}

	parts := strings.Split(body, ".")
	if len(parts) != 3 {
		return EntityID{}, fmt.Errorf("invalid entity id %q: expected shard.realm.num", s)
	}

	shard, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return EntityID{}, fmt.Errorf("invalid shard in entity id %q: %w", s, err)
	}
	realm, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return EntityID{}, fmt.Errorf("invalid realm in entity id %q: %w", s, err)
	}

	num, err := strconv.ParseUint(parts[2], 10, 64)
	if err == nil {
		return EntityID{Shard: shard, Realm: realm, Num: num, checksum: checksum}, nil
	}

	// 非十进制的第三段按别名字节处理，别名不允许携带校验和
	if checksum != "" {
		return EntityID{}, fmt.Errorf("invalid entity id %q: alias ids cannot carry a checksum", s)
	}
	alias, aliasErr := hex.DecodeString(strings.TrimPrefix(parts[2], "0x"))
	if aliasErr != nil || len(alias) == 0 {
		return EntityID{}, fmt.Errorf("invalid entity id %q: num is neither decimal nor hex alias", s)
	}
	return EntityID{Shard: shard, Realm: realm, Alias: alias}, nil
}

// IsAlias 返回是否为别名形式
func (id EntityID) IsAlias() bool {
	return len(id.Alias) > 0
}

// Checksum 返回解析时携带的校验和（小写），没有则为空串
func (id EntityID) Checksum() string {
	return id.checksum
}

// String 返回不带校验和的字符串形式
func (id EntityID) String() string {
	if id.IsAlias() {
		return fmt.Sprintf("%d.%d.%s", id.Shard, id.Realm, hex.EncodeToString(id.Alias))
	}
	return fmt.Sprintf("%d.%d.%d", id.Shard, id.Realm, id.Num)
}

// StringWithChecksum 返回携带给定账本校验和的字符串形式
//
// 别名 ID 没有校验和，原样返回。
func (id EntityID) StringWithChecksum(ledger LedgerID) string {
	if id.IsAlias() {
		return id.String()
	}
	addr := id.String()
	return addr + "-" + entityChecksum(ledger, addr)
}

// Validate 离线验证 ID 携带的校验和与目标账本一致
//
// **规则**：
//   - 未携带校验和的 ID 无条件通过（校验和是可选的用户侧安全检查）
//   - 别名 ID 无条件通过
//   - 携带校验和时重新计算并不区分大小写比对，不一致返回
//     BadEntityIDChecksumError
func (id EntityID) Validate(ledger LedgerID) error {
	if id.checksum == "" || id.IsAlias() {
		return nil
	}
	expected := entityChecksum(ledger, id.String())
	if expected != id.checksum {
		return &BadEntityIDChecksumError{
			EntityID: id.String(),
			Expected: expected,
			Actual:   id.checksum,
			Ledger:   ledger.String(),
		}
	}
	return nil
}
