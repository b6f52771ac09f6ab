package client

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kantorcodes/hedera-sdk-go/types"
)

// TopicMessage 镜像节点推送的一条已定序主题消息
type TopicMessage struct {
	// TopicID 消息所属主题
	TopicID types.TopicID
	// ConsensusTimestamp 共识时间戳
	ConsensusTimestamp time.Time
	// SequenceNumber 主题内序号
	SequenceNumber uint64
	// Contents 消息内容（分块消息由镜像节点重组后推送）
	Contents []byte
	// RunningHash 主题运行哈希
	RunningHash []byte
}

// topicSubscribeFrame 订阅请求帧，建连后由客户端首先发送
type topicSubscribeFrame struct {
	TopicID string `json:"topicId"`
	// Limit 推送条数上限，0 表示不限
	Limit uint64 `json:"limit,omitempty"`
}

// topicMessageFrame 镜像节点的 JSON 推送帧
type topicMessageFrame struct {
	TopicID            string `json:"topicId"`
	ConsensusTimestamp string `json:"consensusTimestamp"`
	SequenceNumber     uint64 `json:"sequenceNumber"`
	Message            string `json:"message"`
	RunningHash        string `json:"runningHash"`
}

// TopicSubscription 主题订阅句柄
type TopicSubscription struct {
	conn     *websocket.Conn
	messages chan TopicMessage
	done     chan struct{}
	closed   int32
	err      atomic.Value
}

// Messages 返回消息通道，订阅结束时关闭
func (s *TopicSubscription) Messages() <-chan TopicMessage {
	return s.messages
}

// Err 返回导致订阅结束的错误，正常取消时为 nil
func (s *TopicSubscription) Err() error {
	if err, ok := s.err.Load().(error); ok {
		return err
	}
	return nil
}

// Unsubscribe 结束订阅并关闭连接
func (s *TopicSubscription) Unsubscribe() {
	if atomic.CompareAndSwapInt32(&s.closed, 0, 1) {
		close(s.done)
		_ = s.conn.Close()
	}
}

// SubscribeTopic 通过镜像节点订阅主题消息流
//
// 镜像平面与共识平面是两套端点：提交走节点 gRPC，读回执与消息流
// 走镜像 WebSocket。
func (c *Client) SubscribeTopic(ctx context.Context, topicID types.TopicID, limit uint64) (*TopicSubscription, error) {
	endpoint := c.MirrorEndpoint()
	if endpoint == "" {
		return nil, fmt.Errorf("client has no mirror endpoint configured")
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "wss://" + endpoint
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, endpoint+"/api/v1/topics/messages", nil)
	if err != nil {
		return nil, fmt.Errorf("dial mirror websocket: %w", err)
	}

	// 1. 建连后先发订阅帧声明主题和条数上限
	if err := conn.WriteJSON(&topicSubscribeFrame{TopicID: topicID.String(), Limit: limit}); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("send subscribe frame: %w", err)
	}

	sub := &TopicSubscription{
		conn:     conn,
		messages: make(chan TopicMessage, 100),
		done:     make(chan struct{}),
	}

	// 2. ctx 取消时结束订阅
	go func() {
		<-ctx.Done()
		sub.Unsubscribe()
	}()

	// 3. 启动消息读取循环
	go sub.readLoop(c.Logger())

	return sub, nil
}

// readLoop 消息读取循环
func (s *TopicSubscription) readLoop(logger Logger) {
	defer close(s.messages)

	for {
		var frame topicMessageFrame
		if err := s.conn.ReadJSON(&frame); err != nil {
			// 主动取消后的读错误不算失败
			if atomic.LoadInt32(&s.closed) == 0 {
				s.err.Store(err)
				logger.Warn("mirror subscription read error", "error", err)
			}
			s.Unsubscribe()
			return
		}

		msg, err := frame.toMessage()
		if err != nil {
			logger.Warn("drop malformed mirror frame", "error", err)
			continue
		}
		// 消费者弃读时由退订解除阻塞，避免读循环泄漏
		select {
		case s.messages <- msg:
		case <-s.done:
			return
		}
	}
}

func (f *topicMessageFrame) toMessage() (TopicMessage, error) {
	topicID, err := types.ParseTopicID(f.TopicID)
	if err != nil {
		return TopicMessage{}, fmt.Errorf("parse topic id: %w", err)
	}

	contents, err := base64.StdEncoding.DecodeString(f.Message)
	if err != nil {
		return TopicMessage{}, fmt.Errorf("decode message: %w", err)
	}
	runningHash, err := base64.StdEncoding.DecodeString(f.RunningHash)
	if err != nil {
		return TopicMessage{}, fmt.Errorf("decode running hash: %w", err)
	}

	// 共识时间戳格式 "seconds.nanos"
	ts, err := parseConsensusTimestamp(f.ConsensusTimestamp)
	if err != nil {
		return TopicMessage{}, err
	}

	return TopicMessage{
		TopicID:            topicID,
		ConsensusTimestamp: ts,
		SequenceNumber:     f.SequenceNumber,
		Contents:           contents,
		RunningHash:        runningHash,
	}, nil
}

func parseConsensusTimestamp(s string) (time.Time, error) {
	var seconds, nanos int64
	if _, err := fmt.Sscanf(s, "%d.%d", &seconds, &nanos); err != nil {
		return time.Time{}, fmt.Errorf("parse consensus timestamp %q: %w", s, err)
	}
	return time.Unix(seconds, nanos).UTC(), nil
}
