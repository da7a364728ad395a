package service

import (
	"context"
	"strings"

	"campus-info-go/internal/model"
	"campus-info-go/internal/store"
	"campus-info-go/pkg/es"
	"campus-info-go/pkg/log"
)

// FAQSearcher 是 FAQ 全文检索后端，由 es.FAQIndex 实现。
type FAQSearcher interface {
	SearchFAQs(ctx context.Context, query string, size int) ([]es.FAQDocument, error)
}

// SearchService 定义了 FAQ 检索操作。
type SearchService interface {
	SearchFAQs(ctx context.Context, query string, limit int) ([]store.Record, error)
}

type searchService struct {
	searcher FAQSearcher
	store    store.RecordStore
}

// NewSearchService 创建 FAQ 检索服务。searcher 为 nil 时只使用存储内的子串匹配。
func NewSearchService(searcher FAQSearcher, s store.RecordStore) SearchService {
	return &searchService{searcher: searcher, store: s}
}

// SearchFAQs 优先查询搜索引擎，命中结果按 id 回表以保证只返回有效记录；
// 搜索引擎出错时降级为子串匹配。
func (s *searchService) SearchFAQs(ctx context.Context, query string, limit int) ([]store.Record, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []store.Record{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	if s.searcher != nil {
		docs, err := s.searcher.SearchFAQs(ctx, query, limit)
		if err == nil {
			return s.resolve(ctx, docs)
		}
		log.Warnw("faq search backend failed, falling back to substring match", "query", query, "error", err)
	}
	return s.substring(ctx, query, limit)
}

func (s *searchService) resolve(ctx context.Context, docs []es.FAQDocument) ([]store.Record, error) {
	out := make([]store.Record, 0, len(docs))
	for _, d := range docs {
		rows, err := s.store.Find(ctx, model.TableFAQs, store.Eq{Field: "id", Value: d.ID}, store.Eq{Field: "is_active", Value: true})
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

// substring 要求查询中的每个词都出现在问题或答案中，忽略大小写。
func (s *searchService) substring(ctx context.Context, query string, limit int) ([]store.Record, error) {
	rows, err := s.store.Find(ctx, model.TableFAQs, store.Eq{Field: "is_active", Value: true})
	if err != nil {
		return nil, err
	}
	terms := strings.Fields(strings.ToLower(query))
	out := make([]store.Record, 0)
	for _, r := range rows {
		text := strings.ToLower(r.String("question") + " " + r.String("answer"))
		matched := true
		for _, t := range terms {
			if !strings.Contains(text, t) {
				matched = false
				break
			}
		}
		if matched {
			out = append(out, r)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}
