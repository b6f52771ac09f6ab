package wire

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/kantorcodes/hedera-sdk-go/types"
)

// TransactionBody 单次提交的完整意图描述
//
// 冻结时按 (分块, 节点) 网格逐一实例化并序列化，签名覆盖的就是
// 这里 Marshal 出来的字节。
type TransactionBody struct {
	TransactionID  types.TransactionID
	NodeAccountID  types.AccountID
	TransactionFee uint64
	ValidDuration  time.Duration
	Memo           string
	Data           BodyData
}

// TransactionBody 字段编号
const (
	bodyFieldTransactionID protowire.Number = 1
	bodyFieldNodeAccountID protowire.Number = 2
	bodyFieldFee           protowire.Number = 3
	bodyFieldValidDuration protowire.Number = 4
	bodyFieldMemo          protowire.Number = 6
)

// 负载 oneof 的字段编号范围，范围内的未知标签视为不支持的交易种类
const (
	bodyDataTagMin protowire.Number = 7
	bodyDataTagMax protowire.Number = 60
)

// Marshal 序列化交易体
func (b *TransactionBody) Marshal() ([]byte, error) {
	if b.Data == nil {
		return nil, fmt.Errorf("transaction body has no payload")
	}

	var out []byte
	out = appendTransactionID(out, bodyFieldTransactionID, b.TransactionID)
	out = appendEntityID(out, bodyFieldNodeAccountID, b.NodeAccountID.EntityID)
	out = appendUint(out, bodyFieldFee, b.TransactionFee)
	out = appendDuration(out, bodyFieldValidDuration, b.ValidDuration)
	out = appendString(out, bodyFieldMemo, b.Memo)

	payload, err := b.Data.marshalBody()
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", b.Data.Kind(), err)
	}
	out = appendMessage(out, b.Data.fieldNumber(), payload)

	return out, nil
}

// UnmarshalTransactionBody 解码交易体
//
// 负载字段范围内出现本 SDK 不认识的标签时返回
// UnsupportedTransactionKindError；范围外的未知字段按协议惯例跳过。
func UnmarshalTransactionBody(data []byte) (*TransactionBody, error) {
	body := &TransactionBody{}
	msg := data
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if err := parseErr(n); err != nil {
			return nil, err
		}
		msg = msg[n:]
		switch num {
		case bodyFieldTransactionID:
			v, n := protowire.ConsumeBytes(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			id, err := consumeTransactionID(v)
			if err != nil {
				return nil, err
			}
			body.TransactionID = id
			msg = msg[n:]
		case bodyFieldNodeAccountID:
			v, n := protowire.ConsumeBytes(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			id, err := consumeEntityID(v)
			if err != nil {
				return nil, err
			}
			body.NodeAccountID = types.AccountID{EntityID: id}
			msg = msg[n:]
		case bodyFieldFee:
			v, n := protowire.ConsumeVarint(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			body.TransactionFee = v
			msg = msg[n:]
		case bodyFieldValidDuration:
			v, n := protowire.ConsumeBytes(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			d, err := consumeDuration(v)
			if err != nil {
				return nil, err
			}
			body.ValidDuration = d
			msg = msg[n:]
		case bodyFieldMemo:
			v, n := protowire.ConsumeString(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			body.Memo = v
			msg = msg[n:]
		default:
			if num >= bodyDataTagMin && num <= bodyDataTagMax {
				v, n := protowire.ConsumeBytes(msg)
				if err := parseErr(n); err != nil {
					return nil, err
				}
				payload, err := unmarshalBodyData(num, v)
				if err != nil {
					return nil, err
				}
				body.Data = payload
				msg = msg[n:]
				continue
			}
			n := protowire.ConsumeFieldValue(num, typ, msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			msg = msg[n:]
		}
	}
	return body, nil
}

// SignaturePair 单个公钥对交易体字节的签名
type SignaturePair struct {
	// PubKeyPrefix 公钥字节前缀，节点用它匹配账户上登记的密钥
	PubKeyPrefix []byte
	// Ed25519 ed25519 签名（与 ECDSASecp256k1 互斥）
	Ed25519 []byte
	// ECDSASecp256k1 secp256k1 紧凑签名
	ECDSASecp256k1 []byte
}

// SignaturePair 字段编号
const (
	sigPairFieldPrefix  protowire.Number = 1
	sigPairFieldEd25519 protowire.Number = 3
	sigPairFieldECDSA   protowire.Number = 6
)

// SignatureMap 同一交易体的全部签名
type SignatureMap struct {
	Pairs []SignaturePair
}

func (m *SignatureMap) marshal() []byte {
	var out []byte
	for _, p := range m.Pairs {
		var pair []byte
		pair = appendBytesField(pair, sigPairFieldPrefix, p.PubKeyPrefix)
		pair = appendBytesField(pair, sigPairFieldEd25519, p.Ed25519)
		pair = appendBytesField(pair, sigPairFieldECDSA, p.ECDSASecp256k1)
		out = appendMessage(out, 1, pair)
	}
	return out
}

func consumeSignatureMap(msg []byte) (SignatureMap, error) {
	var m SignatureMap
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if err := parseErr(n); err != nil {
			return m, err
		}
		msg = msg[n:]
		if num != 1 {
			n := protowire.ConsumeFieldValue(num, typ, msg)
			if err := parseErr(n); err != nil {
				return m, err
			}
			msg = msg[n:]
			continue
		}
		v, n := protowire.ConsumeBytes(msg)
		if err := parseErr(n); err != nil {
			return m, err
		}
		pair, err := consumeSignaturePair(v)
		if err != nil {
			return m, err
		}
		m.Pairs = append(m.Pairs, pair)
		msg = msg[n:]
	}
	return m, nil
}

func consumeSignaturePair(msg []byte) (SignaturePair, error) {
	var p SignaturePair
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if err := parseErr(n); err != nil {
			return p, err
		}
		msg = msg[n:]
		switch num {
		case sigPairFieldPrefix, sigPairFieldEd25519, sigPairFieldECDSA:
			v, n := protowire.ConsumeBytes(msg)
			if err := parseErr(n); err != nil {
				return p, err
			}
			raw := append([]byte(nil), v...)
			switch num {
			case sigPairFieldPrefix:
				p.PubKeyPrefix = raw
			case sigPairFieldEd25519:
				p.Ed25519 = raw
			case sigPairFieldECDSA:
				p.ECDSASecp256k1 = raw
			}
			msg = msg[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, msg)
			if err := parseErr(n); err != nil {
				return p, err
			}
			msg = msg[n:]
		}
	}
	return p, nil
}

// SignedTransaction 交易体字节与签名集合的绑定
type SignedTransaction struct {
	// BodyBytes 冻结时序列化的交易体，签名覆盖的字节
	BodyBytes []byte
	SigMap    SignatureMap
}

// Marshal 序列化 {bodyBytes=1, sigMap=2}
func (t *SignedTransaction) Marshal() []byte {
	var out []byte
	out = appendBytesField(out, 1, t.BodyBytes)
	out = appendMessage(out, 2, t.SigMap.marshal())
	return out
}

// UnmarshalSignedTransaction 解码签名交易
func UnmarshalSignedTransaction(data []byte) (*SignedTransaction, error) {
	tx := &SignedTransaction{}
	msg := data
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if err := parseErr(n); err != nil {
			return nil, err
		}
		msg = msg[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeBytes(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			tx.BodyBytes = append([]byte(nil), v...)
			msg = msg[n:]
		case 2:
			v, n := protowire.ConsumeBytes(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			m, err := consumeSignatureMap(v)
			if err != nil {
				return nil, err
			}
			tx.SigMap = m
			msg = msg[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			msg = msg[n:]
		}
	}
	return tx, nil
}

// Transaction 提交到节点的最外层信封
type Transaction struct {
	// SignedTransactionBytes 序列化后的 SignedTransaction
	SignedTransactionBytes []byte
}

// Marshal 序列化 {signedTransactionBytes=5}
func (t *Transaction) Marshal() []byte {
	var out []byte
	out = appendBytesField(out, 5, t.SignedTransactionBytes)
	return out
}

// UnmarshalTransaction 解码最外层信封
func UnmarshalTransaction(data []byte) (*Transaction, error) {
	tx := &Transaction{}
	msg := data
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if err := parseErr(n); err != nil {
			return nil, err
		}
		msg = msg[n:]
		if num == 5 {
			v, n := protowire.ConsumeBytes(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			tx.SignedTransactionBytes = append([]byte(nil), v...)
			msg = msg[n:]
			continue
		}
		n = protowire.ConsumeFieldValue(num, typ, msg)
		if err := parseErr(n); err != nil {
			return nil, err
		}
		msg = msg[n:]
	}
	return tx, nil
}

// TransactionResponse 节点的同步预检应答
type TransactionResponse struct {
	// PrecheckCode 预检状态码
	PrecheckCode types.Status
	// Cost 预检失败为费用不足时节点估算的费用
	Cost uint64
}

// Marshal 序列化 {precheckCode=1, cost=2}
func (r *TransactionResponse) Marshal() []byte {
	var out []byte
	out = appendUint(out, 1, uint64(r.PrecheckCode))
	out = appendUint(out, 2, r.Cost)
	return out
}

// UnmarshalTransactionResponse 解码预检应答
func UnmarshalTransactionResponse(data []byte) (*TransactionResponse, error) {
	resp := &TransactionResponse{}
	msg := data
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if err := parseErr(n); err != nil {
			return nil, err
		}
		msg = msg[n:]
		switch num {
		case 1:
			v, n := protowire.ConsumeVarint(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			resp.PrecheckCode = types.Status(v)
			msg = msg[n:]
		case 2:
			v, n := protowire.ConsumeVarint(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			resp.Cost = v
			msg = msg[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			msg = msg[n:]
		}
	}
	return resp, nil
}
