// Package wire 实现节点二进制线格式的编解码边界
//
// SDK 的其他部分把这里当作不透明的 ToWire/FromWire 契约：
// 合法构造的消息编解码往返逐比特一致。字段编号与网络协议对齐，
// 不依赖任何生成代码，直接用 protowire 原语手写。
package wire

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/kantorcodes/hedera-sdk-go/types"
	"github.com/kantorcodes/hedera-sdk-go/wallet"
)

// Key 消息内的算法字段编号
const (
	keyFieldEd25519        protowire.Number = 2
	keyFieldECDSASecp256k1 protowire.Number = 7
)

func appendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

func appendUint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendInt(b []byte, num protowire.Number, v int64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, 1)
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	if s == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, s)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	return appendMessage(b, num, v)
}

// appendTimestamp 编码 {seconds=1, nanos=2}
func appendTimestamp(b []byte, num protowire.Number, t time.Time) []byte {
	var msg []byte
	msg = appendInt(msg, 1, t.Unix())
	msg = appendInt(msg, 2, int64(t.Nanosecond()))
	return appendMessage(b, num, msg)
}

// appendDuration 编码 {seconds=1}
func appendDuration(b []byte, num protowire.Number, d time.Duration) []byte {
	var msg []byte
	msg = appendInt(msg, 1, int64(d/time.Second))
	return appendMessage(b, num, msg)
}

// appendEntityID 编码 {shard=1, realm=2, num=3, alias=4}
//
// 代币/文件/主题 ID 没有别名字段，调用方传空别名即可。
func appendEntityID(b []byte, num protowire.Number, id types.EntityID) []byte {
	var msg []byte
	msg = appendUint(msg, 1, id.Shard)
	msg = appendUint(msg, 2, id.Realm)
	msg = appendUint(msg, 3, id.Num)
	msg = appendBytesField(msg, 4, id.Alias)
	return appendMessage(b, num, msg)
}

// appendTransactionID 编码 {validStart=1, accountID=2, nonce=4}
func appendTransactionID(b []byte, num protowire.Number, id types.TransactionID) []byte {
	var msg []byte
	msg = appendTimestamp(msg, 1, id.ValidStart)
	msg = appendEntityID(msg, 2, id.AccountID.EntityID)
	msg = appendInt(msg, 4, int64(id.Nonce))
	return appendMessage(b, num, msg)
}

// appendKey 编码公钥：ed25519 原始 32 字节或 secp256k1 压缩 33 字节
func appendKey(b []byte, num protowire.Number, k wallet.PublicKey) []byte {
	var msg []byte
	if k.IsEd25519() {
		msg = appendMessage(msg, keyFieldEd25519, k.Bytes())
	} else {
		msg = appendMessage(msg, keyFieldECDSASecp256k1, k.Bytes())
	}
	return appendMessage(b, num, msg)
}

// appendStringValue 编码字符串包装消息 {value=1}
//
// 更新类交易用包装消息区分"未设置"与"清空为空串"。
func appendStringValue(b []byte, num protowire.Number, s string) []byte {
	var msg []byte
	msg = appendString(msg, 1, s)
	return appendMessage(b, num, msg)
}

// --- 解码原语 ---

func parseErr(n int) error {
	if n < 0 {
		return protowire.ParseError(n)
	}
	return nil
}

// consumeTimestamp 解码 {seconds=1, nanos=2}
func consumeTimestamp(msg []byte) (time.Time, error) {
	var seconds, nanos int64
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if err := parseErr(n); err != nil {
			return time.Time{}, err
		}
		msg = msg[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(msg)
			if err := parseErr(n); err != nil {
				return time.Time{}, err
			}
			seconds = int64(v)
			msg = msg[n:]
		case 2:
			v, n := protowire.ConsumeVarint(msg)
			if err := parseErr(n); err != nil {
				return time.Time{}, err
			}
			nanos = int64(v)
			msg = msg[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, msg)
			if err := parseErr(n); err != nil {
				return time.Time{}, err
			}
			msg = msg[n:]
		}
	}
	return time.Unix(seconds, nanos).UTC(), nil
}

// consumeDuration 解码 {seconds=1}
func consumeDuration(msg []byte) (time.Duration, error) {
	var seconds int64
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if err := parseErr(n); err != nil {
			return 0, err
		}
		msg = msg[n:]
		if num == 1 {
			v, n := protowire.ConsumeVarint(msg)
			if err := parseErr(n); err != nil {
				return 0, err
			}
			seconds = int64(v)
			msg = msg[n:]
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, msg)
		if err := parseErr(n); err != nil {
			return 0, err
		}
		msg = msg[n:]
	}
	return time.Duration(seconds) * time.Second, nil
}

// consumeEntityID 解码 {shard=1, realm=2, num=3, alias=4}
func consumeEntityID(msg []byte) (types.EntityID, error) {
	var id types.EntityID
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if err := parseErr(n); err != nil {
			return id, err
		}
		msg = msg[n:]
		switch num {
		case 1, 2, 3:
			v, n := protowire.ConsumeVarint(msg)
			if err := parseErr(n); err != nil {
				return id, err
			}
			switch num {
			case 1:
				id.Shard = v
			case 2:
				id.Realm = v
			case 3:
				id.Num = v
			}
			msg = msg[n:]
		case 4:
			v, n := protowire.ConsumeBytes(msg)
			if err := parseErr(n); err != nil {
				return id, err
			}
			id.Alias = append([]byte(nil), v...)
			msg = msg[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, msg)
			if err := parseErr(n); err != nil {
				return id, err
			}
			msg = msg[n:]
		}
	}
	return id, nil
}

// consumeTransactionID 解码 {validStart=1, accountID=2, nonce=4}
func consumeTransactionID(msg []byte) (types.TransactionID, error) {
	var id types.TransactionID
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if err := parseErr(n); err != nil {
			return id, err
		}
		msg = msg[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeBytes(msg)
			if err := parseErr(n); err != nil {
				return id, err
			}
			ts, err := consumeTimestamp(v)
			if err != nil {
				return id, err
			}
			id.ValidStart = ts
			msg = msg[n:]
		case 2:
			v, n := protowire.ConsumeBytes(msg)
			if err := parseErr(n); err != nil {
				return id, err
			}
			eid, err := consumeEntityID(v)
			if err != nil {
				return id, err
			}
			id.AccountID = types.AccountID{EntityID: eid}
			msg = msg[n:]
		case 4:
			v, n := protowire.ConsumeVarint(msg)
			if err := parseErr(n); err != nil {
				return id, err
			}
			id.Nonce = int32(v)
			msg = msg[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, msg)
			if err := parseErr(n); err != nil {
				return id, err
			}
			msg = msg[n:]
		}
	}
	return id, nil
}

// consumeKey 解码公钥消息
func consumeKey(msg []byte) (wallet.PublicKey, error) {
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if err := parseErr(n); err != nil {
			return wallet.PublicKey{}, err
		}
		msg = msg[n:]
		switch num {
		case keyFieldEd25519:
			v, n := protowire.ConsumeBytes(msg)
			if err := parseErr(n); err != nil {
				return wallet.PublicKey{}, err
			}
			return wallet.PublicKeyFromBytes(append([]byte(nil), v...))
		case keyFieldECDSASecp256k1:
			v, n := protowire.ConsumeBytes(msg)
			if err := parseErr(n); err != nil {
				return wallet.PublicKey{}, err
			}
			return wallet.ECDSAPublicKeyFromBytes(append([]byte(nil), v...))
		default:
			n := protowire.ConsumeFieldValue(num, typ, msg)
			if err := parseErr(n); err != nil {
				return wallet.PublicKey{}, err
			}
			msg = msg[n:]
		}
	}
	return wallet.PublicKey{}, fmt.Errorf("key message carries no supported key algorithm")
}

// consumeStringValue 解码字符串包装消息 {value=1}
func consumeStringValue(msg []byte) (string, error) {
	s := ""
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if err := parseErr(n); err != nil {
			return "", err
		}
		msg = msg[n:]
		if num == 1 {
			v, n := protowire.ConsumeString(msg)
			if err := parseErr(n); err != nil {
				return "", err
			}
			s = v
			msg = msg[n:]
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, msg)
		if err := parseErr(n); err != nil {
			return "", err
		}
		msg = msg[n:]
	}
	return s, nil
}
