package wire

import (
	"time"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/kantorcodes/hedera-sdk-go/types"
	"github.com/kantorcodes/hedera-sdk-go/wallet"
)

// BodyData 交易体负载的封闭变体集
//
// fieldNumber 不导出，负载变体只能在本包内定义；对负载的分发
// 因此是全函数，新增变体时编译器会指出所有需要补齐的分支。
type BodyData interface {
	// Kind 返回负载种类名，用于日志与错误消息
	Kind() string

	fieldNumber() protowire.Number
	marshalBody() ([]byte, error)
}

// 负载 oneof 字段编号
const (
	tagCryptoCreate           protowire.Number = 11
	tagCryptoDelete           protowire.Number = 12
	tagFileAppend             protowire.Number = 16
	tagFileCreate             protowire.Number = 17
	tagConsensusSubmitMessage protowire.Number = 27
	tagTokenUpdate            protowire.Number = 36
)

// unmarshalBodyData 按负载标签分发解码
func unmarshalBodyData(num protowire.Number, msg []byte) (BodyData, error) {
	switch num {
	case tagCryptoCreate:
		return unmarshalCryptoCreate(msg)
	case tagCryptoDelete:
		return unmarshalCryptoDelete(msg)
	case tagFileAppend:
		return unmarshalFileAppend(msg)
	case tagFileCreate:
		return unmarshalFileCreate(msg)
	case tagConsensusSubmitMessage:
		return unmarshalConsensusSubmitMessage(msg)
	case tagTokenUpdate:
		return unmarshalTokenUpdate(msg)
	}
	return nil, &types.UnsupportedTransactionKindError{FieldTag: uint32(num)}
}

// CryptoCreateBody 创建账户
type CryptoCreateBody struct {
	// Key 新账户的控制密钥
	Key *wallet.PublicKey
	// InitialBalance 初始余额（tinybar）
	InitialBalance uint64
	// ReceiverSigRequired 转入也需要账户密钥签名
	ReceiverSigRequired bool
	// AutoRenewPeriod 自动续期周期
	AutoRenewPeriod time.Duration
	// Memo 账户备注
	Memo string
	// MaxAutomaticTokenAssociations 自动代币关联上限
	MaxAutomaticTokenAssociations int32
	// StakedAccountID 质押目标账户（与 StakedNodeID 互斥）
	StakedAccountID *types.AccountID
	// StakedNodeID 质押目标节点
	StakedNodeID *int64
	// DeclineStakingReward 拒绝质押奖励
	DeclineStakingReward bool
	// Alias EVM 别名地址
	Alias []byte
}

func (*CryptoCreateBody) Kind() string                  { return "CryptoCreate" }
func (*CryptoCreateBody) fieldNumber() protowire.Number { return tagCryptoCreate }

func (b *CryptoCreateBody) marshalBody() ([]byte, error) {
	var out []byte
	if b.Key != nil {
		out = appendKey(out, 1, *b.Key)
	}
	out = appendUint(out, 2, b.InitialBalance)
	out = appendBool(out, 8, b.ReceiverSigRequired)
	if b.AutoRenewPeriod != 0 {
		out = appendDuration(out, 9, b.AutoRenewPeriod)
	}
	out = appendString(out, 13, b.Memo)
	out = appendInt(out, 14, int64(b.MaxAutomaticTokenAssociations))
	if b.StakedAccountID != nil {
		out = appendEntityID(out, 15, b.StakedAccountID.EntityID)
	}
	if b.StakedNodeID != nil {
		out = protowire.AppendTag(out, 16, protowire.VarintType)
		out = protowire.AppendVarint(out, uint64(*b.StakedNodeID))
	}
	out = appendBool(out, 17, b.DeclineStakingReward)
	out = appendBytesField(out, 18, b.Alias)
	return out, nil
}

func unmarshalCryptoCreate(msg []byte) (*CryptoCreateBody, error) {
	body := &CryptoCreateBody{}
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
			key, err := consumeKey(v)
			if err != nil {
				return nil, err
			}
			body.Key = &key
			msg = msg[n:]
		case 2:
			v, n := protowire.ConsumeVarint(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			body.InitialBalance = v
			msg = msg[n:]
		case 8:
			v, n := protowire.ConsumeVarint(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			body.ReceiverSigRequired = v != 0
			msg = msg[n:]
		case 9:
			v, n := protowire.ConsumeBytes(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			d, err := consumeDuration(v)
			if err != nil {
				return nil, err
			}
			body.AutoRenewPeriod = d
			msg = msg[n:]
		case 13:
			v, n := protowire.ConsumeString(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			body.Memo = v
			msg = msg[n:]
		case 14:
			v, n := protowire.ConsumeVarint(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			body.MaxAutomaticTokenAssociations = int32(v)
			msg = msg[n:]
		case 15:
			v, n := protowire.ConsumeBytes(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			id, err := consumeEntityID(v)
			if err != nil {
				return nil, err
			}
			body.StakedAccountID = &types.AccountID{EntityID: id}
			msg = msg[n:]
		case 16:
			v, n := protowire.ConsumeVarint(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			node := int64(v)
			body.StakedNodeID = &node
			msg = msg[n:]
		case 17:
			v, n := protowire.ConsumeVarint(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			body.DeclineStakingReward = v != 0
			msg = msg[n:]
		case 18:
			v, n := protowire.ConsumeBytes(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			body.Alias = append([]byte(nil), v...)
			msg = msg[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			msg = msg[n:]
		}
	}
	return body, nil
}

// CryptoDeleteBody 删除账户并把余额转入指定账户
type CryptoDeleteBody struct {
	// TransferAccountID 余额接收账户
	TransferAccountID types.AccountID
	// DeleteAccountID 被删除的账户
	DeleteAccountID types.AccountID
}

func (*CryptoDeleteBody) Kind() string                  { return "CryptoDelete" }
func (*CryptoDeleteBody) fieldNumber() protowire.Number { return tagCryptoDelete }

func (b *CryptoDeleteBody) marshalBody() ([]byte, error) {
	var out []byte
	out = appendEntityID(out, 1, b.TransferAccountID.EntityID)
	out = appendEntityID(out, 2, b.DeleteAccountID.EntityID)
	return out, nil
}

func unmarshalCryptoDelete(msg []byte) (*CryptoDeleteBody, error) {
	body := &CryptoDeleteBody{}
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if err := parseErr(n); err != nil {
			return nil, err
		}
		msg = msg[n:]
		switch num {
		case 1, 2:
			v, n := protowire.ConsumeBytes(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			id, err := consumeEntityID(v)
			if err != nil {
				return nil, err
			}
			if num == 1 {
				body.TransferAccountID = types.AccountID{EntityID: id}
			} else {
				body.DeleteAccountID = types.AccountID{EntityID: id}
			}
			msg = msg[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			msg = msg[n:]
		}
	}
	return body, nil
}

// TokenUpdateBody 更新代币元数据
//
// 指针/包装字段为 nil 表示不修改对应属性。
type TokenUpdateBody struct {
	Token    types.TokenID
	Symbol   string
	Name     string
	Treasury *types.AccountID
	AdminKey *wallet.PublicKey
	// Expiry 新的过期时间，零值表示不修改
	Expiry           time.Time
	AutoRenewAccount *types.AccountID
	AutoRenewPeriod  time.Duration
	// Memo 备注包装字段，nil 表示不修改，空串表示清空
	Memo *string
}

func (*TokenUpdateBody) Kind() string                  { return "TokenUpdate" }
func (*TokenUpdateBody) fieldNumber() protowire.Number { return tagTokenUpdate }

func (b *TokenUpdateBody) marshalBody() ([]byte, error) {
	var out []byte
	out = appendEntityID(out, 1, b.Token.EntityID)
	out = appendString(out, 2, b.Symbol)
	out = appendString(out, 3, b.Name)
	if b.Treasury != nil {
		out = appendEntityID(out, 4, b.Treasury.EntityID)
	}
	if b.AdminKey != nil {
		out = appendKey(out, 5, *b.AdminKey)
	}
	if !b.Expiry.IsZero() {
		out = appendTimestamp(out, 10, b.Expiry)
	}
	if b.AutoRenewAccount != nil {
		out = appendEntityID(out, 11, b.AutoRenewAccount.EntityID)
	}
	if b.AutoRenewPeriod != 0 {
		out = appendDuration(out, 12, b.AutoRenewPeriod)
	}
	if b.Memo != nil {
		out = appendStringValue(out, 13, *b.Memo)
	}
	return out, nil
}

func unmarshalTokenUpdate(msg []byte) (*TokenUpdateBody, error) {
	body := &TokenUpdateBody{}
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if err := parseErr(n); err != nil {
			return nil, err
		}
		msg = msg[n:]
		switch num {
		case 1, 4, 11:
			v, n := protowire.ConsumeBytes(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			id, err := consumeEntityID(v)
			if err != nil {
				return nil, err
			}
			switch num {
			case 1:
				body.Token = types.TokenID{EntityID: id}
			case 4:
				body.Treasury = &types.AccountID{EntityID: id}
			case 11:
				body.AutoRenewAccount = &types.AccountID{EntityID: id}
			}
			msg = msg[n:]
		case 2, 3:
			v, n := protowire.ConsumeString(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			if num == 2 {
				body.Symbol = v
			} else {
				body.Name = v
			}
			msg = msg[n:]
		case 5:
			v, n := protowire.ConsumeBytes(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			key, err := consumeKey(v)
			if err != nil {
				return nil, err
			}
			body.AdminKey = &key
			msg = msg[n:]
		case 10:
			v, n := protowire.ConsumeBytes(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			ts, err := consumeTimestamp(v)
			if err != nil {
				return nil, err
			}
			body.Expiry = ts
			msg = msg[n:]
		case 12:
			v, n := protowire.ConsumeBytes(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			d, err := consumeDuration(v)
			if err != nil {
				return nil, err
			}
			body.AutoRenewPeriod = d
			msg = msg[n:]
		case 13:
			v, n := protowire.ConsumeBytes(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			s, err := consumeStringValue(v)
			if err != nil {
				return nil, err
			}
			body.Memo = &s
			msg = msg[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			msg = msg[n:]
		}
	}
	return body, nil
}

// FileCreateBody 创建文件
type FileCreateBody struct {
	// ExpirationTime 文件过期时间
	ExpirationTime time.Time
	// Keys 修改文件所需的密钥列表
	Keys []wallet.PublicKey
	// Contents 首块内容，超出部分由后续 FileAppend 分块提交
	Contents []byte
	// Memo 文件备注
	Memo string
}

func (*FileCreateBody) Kind() string                  { return "FileCreate" }
func (*FileCreateBody) fieldNumber() protowire.Number { return tagFileCreate }

func (b *FileCreateBody) marshalBody() ([]byte, error) {
	var out []byte
	if !b.ExpirationTime.IsZero() {
		out = appendTimestamp(out, 2, b.ExpirationTime)
	}
	if len(b.Keys) > 0 {
		var list []byte
		for _, k := range b.Keys {
			list = appendKey(list, 1, k)
		}
		out = appendMessage(out, 3, list)
	}
	out = appendBytesField(out, 4, b.Contents)
	out = appendString(out, 8, b.Memo)
	return out, nil
}

func unmarshalFileCreate(msg []byte) (*FileCreateBody, error) {
	body := &FileCreateBody{}
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if err := parseErr(n); err != nil {
			return nil, err
		}
		msg = msg[n:]
		switch num {
		case 2:
			v, n := protowire.ConsumeBytes(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			ts, err := consumeTimestamp(v)
			if err != nil {
				return nil, err
			}
			body.ExpirationTime = ts
			msg = msg[n:]
		case 3:
			v, n := protowire.ConsumeBytes(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			keys, err := consumeKeyList(v)
			if err != nil {
				return nil, err
			}
			body.Keys = append(body.Keys, keys...)
			msg = msg[n:]
		case 4:
			v, n := protowire.ConsumeBytes(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			body.Contents = append([]byte(nil), v...)
			msg = msg[n:]
		case 8:
			v, n := protowire.ConsumeString(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			body.Memo = v
			msg = msg[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			msg = msg[n:]
		}
	}
	return body, nil
}

// consumeKeyList 解码 {keys=1 repeated}
func consumeKeyList(msg []byte) ([]wallet.PublicKey, error) {
	var keys []wallet.PublicKey
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if err := parseErr(n); err != nil {
			return nil, err
		}
		msg = msg[n:]
		if num != 1 {
			n := protowire.ConsumeFieldValue(num, typ, msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			msg = msg[n:]
			continue
		}
		v, n := protowire.ConsumeBytes(msg)
		if err := parseErr(n); err != nil {
			return nil, err
		}
		key, err := consumeKey(v)
		if err != nil {
			return nil, err
		}
		keys = append(keys, key)
		msg = msg[n:]
	}
	return keys, nil
}

// FileAppendBody 向已有文件追加内容，可分块
type FileAppendBody struct {
	FileID   types.FileID
	Contents []byte
}

func (*FileAppendBody) Kind() string                  { return "FileAppend" }
func (*FileAppendBody) fieldNumber() protowire.Number { return tagFileAppend }

func (b *FileAppendBody) marshalBody() ([]byte, error) {
	var out []byte
	out = appendEntityID(out, 2, b.FileID.EntityID)
	out = appendBytesField(out, 4, b.Contents)
	return out, nil
}

func unmarshalFileAppend(msg []byte) (*FileAppendBody, error) {
	body := &FileAppendBody{}
	for len(msg) > 0 {
		num, typ, n := protowire.ConsumeTag(msg)
		if err := parseErr(n); err != nil {
			return nil, err
		}
		msg = msg[n:]
		switch num {
		case 2:
			v, n := protowire.ConsumeBytes(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			id, err := consumeEntityID(v)
			if err != nil {
				return nil, err
			}
			body.FileID = types.FileID{EntityID: id}
			msg = msg[n:]
		case 4:
			v, n := protowire.ConsumeBytes(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			body.Contents = append([]byte(nil), v...)
			msg = msg[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			msg = msg[n:]
		}
	}
	return body, nil
}

// MessageChunkInfo 共识消息的分块元数据
//
// Number 在线格式里从 1 起计，SDK 内部分块索引从 0 起计，
// 转换发生在冻结阶段。
type MessageChunkInfo struct {
	// InitialTransactionID 首个分块的交易 ID，接收端按它归组
	InitialTransactionID types.TransactionID
	// Total 分块总数
	Total int32
	// Number 当前分块序号（1 起计）
	Number int32
}

// ConsensusSubmitMessageBody 向共识主题提交消息，可分块
type ConsensusSubmitMessageBody struct {
	TopicID types.TopicID
	Message []byte
	// ChunkInfo 单块消息也携带，Total=1 Number=1
	ChunkInfo *MessageChunkInfo
}

func (*ConsensusSubmitMessageBody) Kind() string { return "ConsensusSubmitMessage" }
func (*ConsensusSubmitMessageBody) fieldNumber() protowire.Number {
	return tagConsensusSubmitMessage
}

func (b *ConsensusSubmitMessageBody) marshalBody() ([]byte, error) {
	var out []byte
	out = appendEntityID(out, 1, b.TopicID.EntityID)
	out = appendBytesField(out, 2, b.Message)
	if b.ChunkInfo != nil {
		var info []byte
		info = appendTransactionID(info, 1, b.ChunkInfo.InitialTransactionID)
		info = appendInt(info, 2, int64(b.ChunkInfo.Total))
		info = appendInt(info, 3, int64(b.ChunkInfo.Number))
		out = appendMessage(out, 3, info)
	}
	return out, nil
}

func unmarshalConsensusSubmitMessage(msg []byte) (*ConsensusSubmitMessageBody, error) {
	body := &ConsensusSubmitMessageBody{}
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
			id, err := consumeEntityID(v)
			if err != nil {
				return nil, err
			}
			body.TopicID = types.TopicID{EntityID: id}
			msg = msg[n:]
		case 2:
			v, n := protowire.ConsumeBytes(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			body.Message = append([]byte(nil), v...)
			msg = msg[n:]
		case 3:
			v, n := protowire.ConsumeBytes(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			info, err := consumeMessageChunkInfo(v)
			if err != nil {
				return nil, err
			}
			body.ChunkInfo = info
			msg = msg[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			msg = msg[n:]
		}
	}
	return body, nil
}

func consumeMessageChunkInfo(msg []byte) (*MessageChunkInfo, error) {
	info := &MessageChunkInfo{}
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
			id, err := consumeTransactionID(v)
			if err != nil {
				return nil, err
			}
			info.InitialTransactionID = id
			msg = msg[n:]
		case 2, 3:
			v, n := protowire.ConsumeVarint(msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			if num == 2 {
				info.Total = int32(v)
			} else {
				info.Number = int32(v)
			}
			msg = msg[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, msg)
			if err := parseErr(n); err != nil {
				return nil, err
			}
			msg = msg[n:]
		}
	}
	return info, nil
}
