// Package es 提供了与 Elasticsearch 交互的客户端功能，用于 FAQ 全文检索。
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"campus-info-go/internal/config"
	"campus-info-go/pkg/log"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// FAQDocument 是 FAQ 在索引中的文档结构，文档 ID 即记录 id。
type FAQDocument struct {
	ID       int64  `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

// FAQIndex 封装了一个 FAQ 索引的读写。
type FAQIndex struct {
	client *elasticsearch.Client
	name   string
}

// NewFAQIndex 初始化 Elasticsearch 客户端并确保索引存在。
func NewFAQIndex(esCfg config.ElasticsearchConfig) (*FAQIndex, error) {
	var addrs []string
	for _, a := range strings.Split(esCfg.Addresses, ",") {
		if a = strings.TrimSpace(a); a != "" {
			addrs = append(addrs, a)
		}
	}
	cfg := elasticsearch.Config{
		Addresses: addrs,
		Username:  esCfg.Username,
		Password:  esCfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	}
	client, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	idx := &FAQIndex{client: client, name: esCfg.IndexName}
	if err := idx.createIndexIfNotExists(context.Background()); err != nil {
		return nil, err
	}
	return idx, nil
}

const faqMapping = `{
	"mappings": {
		"properties": {
			"id":       { "type": "long" },
			"question": { "type": "text", "analyzer": "english" },
			"answer":   { "type": "text", "analyzer": "english" },
			"category": { "type": "keyword" }
		}
	}
}`

// createIndexIfNotExists 检查索引是否存在，如果不存在则创建它
func (x *FAQIndex) createIndexIfNotExists(ctx context.Context) error {
	res, err := x.client.Indices.Exists([]string{x.name}, x.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		log.Errorf("检查索引是否存在时出错: %v", err)
		return err
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		log.Infof("索引 '%s' 已存在", x.name)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("检查索引是否存在时收到意外的状态码: %d", res.StatusCode)
	}

	res, err = x.client.Indices.Create(
		x.name,
		x.client.Indices.Create.WithBody(strings.NewReader(faqMapping)),
		x.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		log.Errorf("创建索引 '%s' 失败: %v", x.name, err)
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("创建索引时 Elasticsearch 返回错误: %s", res.String())
	}

	log.Infof("索引 '%s' 创建成功", x.name)
	return nil
}

// IndexFAQ 写入或覆盖一条 FAQ 文档。
func (x *FAQIndex) IndexFAQ(ctx context.Context, doc FAQDocument) error {
	docBytes, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      x.name,
		DocumentID: strconv.FormatInt(doc.ID, 10),
		Body:       bytes.NewReader(docBytes),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, x.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index faq %d: %s", doc.ID, res.Status())
	}
	return nil
}

// DeleteFAQ 从索引中删除一条 FAQ，文档不存在不算错误。
func (x *FAQIndex) DeleteFAQ(ctx context.Context, id int64) error {
	req := esapi.DeleteRequest{
		Index:      x.name,
		DocumentID: strconv.FormatInt(id, 10),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, x.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete faq %d: %s", id, res.Status())
	}
	return nil
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source FAQDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// SearchFAQs 按问题与答案做多字段匹配，问题字段权重更高。
func (x *FAQIndex) SearchFAQs(ctx context.Context, query string, size int) ([]FAQDocument, error) {
	body := map[string]interface{}{
		"size": size,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"question^2", "answer"},
				"fuzziness": "AUTO",
			},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, err
	}
	res, err := x.client.Search(
		x.client.Search.WithContext(ctx),
		x.client.Search.WithIndex(x.name),
		x.client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search faqs: %s", res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	out := make([]FAQDocument, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
