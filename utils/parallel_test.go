package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestChunkBytes(t *testing.T) {
	tests := []struct {
		name       string
		payloadLen int
		chunkSize  int
		wantChunks int
		wantLast   int
	}{
		{name: "empty payload yields one empty chunk", payloadLen: 0, chunkSize: 1024, wantChunks: 1, wantLast: 0},
		{name: "exact single chunk", payloadLen: 1024, chunkSize: 1024, wantChunks: 1, wantLast: 1024},
		{name: "one byte over", payloadLen: 1025, chunkSize: 1024, wantChunks: 2, wantLast: 1},
		{name: "exact multiple", payloadLen: 4096, chunkSize: 1024, wantChunks: 4, wantLast: 1024},
		{name: "uneven tail", payloadLen: 2500, chunkSize: 1024, wantChunks: 3, wantLast: 452},
		{name: "chunk larger than payload", payloadLen: 10, chunkSize: 1024, wantChunks: 1, wantLast: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := make([]byte, tt.payloadLen)
			for i := range payload {
				payload[i] = byte(i)
			}

			chunks := ChunkBytes(payload, tt.chunkSize)
			if len(chunks) != tt.wantChunks {
				t.Fatalf("len(chunks) = %d, want %d", len(chunks), tt.wantChunks)
			}

			// 除末块外每块恰好 chunkSize 字节
			for i, chunk := range chunks[:len(chunks)-1] {
				if len(chunk) != tt.chunkSize {
					t.Errorf("chunk %d size = %d, want %d", i, len(chunk), tt.chunkSize)
				}
			}
			if got := len(chunks[len(chunks)-1]); got != tt.wantLast {
				t.Errorf("last chunk size = %d, want %d", got, tt.wantLast)
			}

			// 按序拼接恢复原负载
			var joined []byte
			for _, chunk := range chunks {
				joined = append(joined, chunk...)
			}
			if !bytes.Equal(joined, payload) {
				t.Error("concatenated chunks do not reconstruct the payload")
			}
		})
	}
}

func TestParallelExecutePreservesOrder(t *testing.T) {
	items := make([]int, 50)
	for i := range items {
		items[i] = i
	}

	results, err := ParallelExecute(context.Background(), items, func(_ context.Context, item int) (int, error) {
		return item * 2, nil
	}, 8)
	if err != nil {
		t.Fatalf("ParallelExecute() failed: %v", err)
	}

	for i, got := range results {
		if got != i*2 {
			t.Errorf("results[%d] = %d, want %d", i, got, i*2)
		}
	}
}

func TestParallelExecutePropagatesError(t *testing.T) {
	boom := errors.New("boom")
	items := []int{1, 2, 3, 4}

	_, err := ParallelExecute(context.Background(), items, func(_ context.Context, item int) (int, error) {
		if item == 3 {
			return 0, fmt.Errorf("item %d: %w", item, boom)
		}
		return item, nil
	}, 2)

	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want wrapped %v", err, boom)
	}
}
