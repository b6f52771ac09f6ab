// Package utils 通用工具函数
package utils

import (
	"context"
	"fmt"
	"sync"
)

// ParallelExecute 并行执行多个操作
//
// 对一组输入并发执行操作函数，限制并发数量，结果按输入顺序返回。
// 任何一项失败则整体失败。
//
// 示例：
//
//	sigs, err := ParallelExecute(ctx, signers, func(ctx context.Context, s wallet.Signer) ([]byte, error) {
//	    return s.Sign(ctx, bodyBytes)
//	}, 5) // 并发5个
func ParallelExecute[T any, R any](
	ctx context.Context,
	items []T,
	executeFn func(ctx context.Context, item T) (R, error),
	concurrency int,
) ([]R, error) {
	if concurrency <= 0 {
		concurrency = 5
	}

	results := make([]R, len(items))
	errors := make([]error, len(items))
	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	for i, item := range items {
		wg.Add(1)
		go func(index int, one T) {
			defer wg.Done()

			// 获取信号量
			sem <- struct{}{}
			defer func() { <-sem }()

			// 执行操作
			result, err := executeFn(ctx, one)
			if err != nil {
				errors[index] = err
			} else {
				results[index] = result
			}
		}(i, item)
	}

	wg.Wait()

	// 检查是否有错误
	for _, err := range errors {
		if err != nil {
			return nil, fmt.Errorf("parallel execute failed: %w", err)
		}
	}

	return results, nil
}

// ChunkBytes 把字节负载按固定大小切分
//
// 除末块外每块恰好 chunkSize 字节，末块为剩余字节；各块按序拼接
// 恢复原负载。空负载返回单个空块，保证总有一次提交发生。
func ChunkBytes(payload []byte, chunkSize int) [][]byte {
	if chunkSize <= 0 {
		return [][]byte{payload}
	}
	if len(payload) == 0 {
		return [][]byte{{}}
	}

	chunks := make([][]byte, 0, (len(payload)+chunkSize-1)/chunkSize)
	for i := 0; i < len(payload); i += chunkSize {
		end := i + chunkSize
		if end > len(payload) {
			end = len(payload)
		}
		chunks = append(chunks, payload[i:end])
	}
	return chunks
}
