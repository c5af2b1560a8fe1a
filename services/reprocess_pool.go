package services

import (
	"log"
	"sync"
	"sync/atomic"

	"quote-tagging-service/models"
)

// ReprocessPool 批量重新打标工作池
// 一次 Run 处理一批引语后收工, 不常驻
type ReprocessPool struct {
	workerCount int
}

// NewReprocessPool 创建工作池
func NewReprocessPool(workerCount int) *ReprocessPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &ReprocessPool{workerCount: workerCount}
}

// Run 并发处理全部引语, 返回成功/失败计数
// 单条失败只记录日志并计数, 不影响其余引语
func (p *ReprocessPool) Run(quotes []*models.Quote, handler func(*models.Quote) error) models.ReprocessResult {
	taskChan := make(chan *models.Quote)
	var succeeded, failed int64
	var wg sync.WaitGroup

	for i := 0; i < p.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for q := range taskChan {
				if err := handler(q); err != nil {
					log.Printf("⚠️ 重新打标失败: quote=%d, 错误: %v", q.ID, err)
					atomic.AddInt64(&failed, 1)
					continue
				}
				atomic.AddInt64(&succeeded, 1)
			}
		}()
	}

	for _, q := range quotes {
		taskChan <- q
	}
	close(taskChan)
	wg.Wait()

	return models.ReprocessResult{
		Total:     len(quotes),
		Succeeded: int(succeeded),
		Failed:    int(failed),
	}
}
