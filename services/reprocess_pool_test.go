package services

import (
	"fmt"
	"sync"
	"testing"

	"quote-tagging-service/models"

	"github.com/stretchr/testify/assert"
)

func makeQuotes(n int) []*models.Quote {
	quotes := make([]*models.Quote, 0, n)
	for i := 1; i <= n; i++ {
		quotes = append(quotes, &models.Quote{ID: i, Text: fmt.Sprintf("quote %d", i)})
	}
	return quotes
}

// 单条失败只计数, 不中断批次, 其余引语照常处理
func TestReprocessPoolPartialFailure(t *testing.T) {
	pool := NewReprocessPool(2)
	quotes := makeQuotes(5)

	var mu sync.Mutex
	handled := map[int]bool{}

	result := pool.Run(quotes, func(q *models.Quote) error {
		mu.Lock()
		handled[q.ID] = true
		mu.Unlock()

		if q.ID%2 == 0 {
			return fmt.Errorf("模拟写库失败: quote=%d", q.ID)
		}
		return nil
	})

	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 3, result.Succeeded)
	assert.Equal(t, 2, result.Failed)

	// 失败的引语之后的条目也都处理到了
	assert.Len(t, handled, 5)
	for i := 1; i <= 5; i++ {
		assert.True(t, handled[i], "quote %d 未被处理", i)
	}
}

func TestReprocessPoolAllFail(t *testing.T) {
	pool := NewReprocessPool(3)
	quotes := makeQuotes(4)

	result := pool.Run(quotes, func(q *models.Quote) error {
		return fmt.Errorf("boom")
	})

	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 0, result.Succeeded)
	assert.Equal(t, 4, result.Failed)
}

func TestReprocessPoolEmptyBatch(t *testing.T) {
	pool := NewReprocessPool(2)

	result := pool.Run(nil, func(q *models.Quote) error {
		t.Error("空批次不应调用处理函数")
		return nil
	})

	assert.Equal(t, models.ReprocessResult{Total: 0, Succeeded: 0, Failed: 0}, result)
}

func TestReprocessPoolInvalidWorkerCountDefaultsToOne(t *testing.T) {
	pool := NewReprocessPool(0)
	assert.Equal(t, 1, pool.workerCount)

	result := pool.Run(makeQuotes(3), func(q *models.Quote) error { return nil })
	assert.Equal(t, 3, result.Succeeded)
}
