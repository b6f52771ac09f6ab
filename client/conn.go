package client

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Transport 原始字节 RPC 传输
//
// 提交管线只依赖这个接口，测试用进程内假节点替换 gRPC 实现。
type Transport interface {
	// Invoke 对指定端点调用一次 unary RPC，请求与应答都是已序列化的线格式字节
	Invoke(ctx context.Context, endpoint, method string, request []byte) ([]byte, error)

	// Close 释放全部连接
	Close() error
}

// rawCodec 透传已序列化字节的 gRPC 编解码器
//
// 线格式编解码由 wire 包完成，这里不做第二次序列化。
type rawCodec struct{}

func (rawCodec) Marshal(v interface{}) ([]byte, error) {
	raw, ok := v.(*[]byte)
	if !ok {
		return nil, fmt.Errorf("raw codec expects *[]byte, got %T", v)
	}
	return *raw, nil
}

func (rawCodec) Unmarshal(data []byte, v interface{}) error {
	raw, ok := v.(*[]byte)
	if !ok {
		return fmt.Errorf("raw codec expects *[]byte, got %T", v)
	}
	*raw = append((*raw)[:0], data...)
	return nil
}

func (rawCodec) Name() string { return "raw-bytes" }

// grpcTransport 带连接池的 gRPC 传输
//
// 每个端点一条 *grpc.ClientConn，懒建立并在所有调用方之间共享；
// gRPC 在单条连接上自行多路复用并发请求。
type grpcTransport struct {
	mu    sync.Mutex
	conns map[string]*grpc.ClientConn
}

// newGRPCTransport 创建 gRPC 传输
func newGRPCTransport() *grpcTransport {
	return &grpcTransport{
		conns: make(map[string]*grpc.ClientConn),
	}
}

// connFor 取出或建立到端点的共享连接
func (t *grpcTransport) connFor(endpoint string) (*grpc.ClientConn, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if conn, ok := t.conns[endpoint]; ok {
		return conn, nil
	}

	// 节点平面目前不做 TLS，镜像平面走 wss
	conn, err := grpc.Dial(endpoint, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpoint, err)
	}
	t.conns[endpoint] = conn
	return conn, nil
}

// Invoke 对端点调用一次 unary RPC
func (t *grpcTransport) Invoke(ctx context.Context, endpoint, method string, request []byte) ([]byte, error) {
	conn, err := t.connFor(endpoint)
	if err != nil {
		return nil, err
	}

	var response []byte
	if err := conn.Invoke(ctx, method, &request, &response, grpc.ForceCodec(rawCodec{})); err != nil {
		return nil, err
	}
	return response, nil
}

// Close 关闭全部连接
func (t *grpcTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var firstErr error
	for endpoint, conn := range t.conns {
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %s: %w", endpoint, err)
		}
		delete(t.conns, endpoint)
	}
	return firstErr
}
