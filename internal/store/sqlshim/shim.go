// Package sqlshim 把一小撮受限的参数化 SQL 语句翻译成 store 的类型化查询。
//
// 支持的语句形状：
//
//	SELECT ... FROM <table> [WHERE reg_no = ? | id = ?]
//	INSERT INTO <table> (<cols>) VALUES (?, ...)
//	UPDATE <table> SET ... WHERE id = ?      （SET 子句不解析）
//	DELETE FROM <table> WHERE id = ?
//
// 它不是 SQL 引擎，不认识的语句返回空结果并记录告警。
package sqlshim

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"campus-info-go/internal/store"
	"campus-info-go/pkg/log"
)

// ErrGrammarMismatch 表示语句不在支持的语法范围内。
var ErrGrammarMismatch = errors.New("statement not supported by shim")

var (
	verbRe        = regexp.MustCompile(`^\s*(?i:(select|insert|update|delete))\b`)
	fromRe        = regexp.MustCompile(`(?i)\bfrom\s+(\w+)`)
	whereRe       = regexp.MustCompile(`(?is)\bwhere\b(.*)`)
	regNoRe       = regexp.MustCompile(`(?i)\breg_no\s*=\s*\?`)
	idRe          = regexp.MustCompile(`(?i)\bid\s*=\s*\?`)
	andRe         = regexp.MustCompile(`(?i)\s+and\s+`)
	insertRe      = regexp.MustCompile(`(?i)^\s*insert\s+into\s+(\w+)\s*\(([^)]*)\)\s*values\b`)
	updateTableRe = regexp.MustCompile(`(?i)^\s*update\s+(\w+)`)
	deleteTableRe = regexp.MustCompile(`(?i)^\s*delete\s+from\s+(\w+)`)
)

// Parse 把语句与绑定参数解析为类型化查询。
func Parse(statement string, params []interface{}) (store.Query, error) {
	m := verbRe.FindStringSubmatch(statement)
	if m == nil {
		return nil, fmt.Errorf("%w: unknown verb", ErrGrammarMismatch)
	}
	if n := strings.Count(statement, "?"); n != len(params) {
		return nil, fmt.Errorf("%w: %d placeholders but %d params", ErrGrammarMismatch, n, len(params))
	}

	switch strings.ToLower(m[1]) {
	case "select":
		return parseSelect(statement, params)
	case "insert":
		return parseInsert(statement, params)
	case "update":
		return parseUpdate(statement, params)
	default:
		return parseDelete(statement, params)
	}
}

func parseSelect(statement string, params []interface{}) (store.Query, error) {
	m := fromRe.FindStringSubmatch(statement)
	if m == nil {
		return nil, fmt.Errorf("%w: select without FROM", ErrGrammarMismatch)
	}
	q := store.Select{Table: m[1]}

	w := whereRe.FindStringSubmatch(statement)
	if w == nil {
		return q, nil
	}
	// 两个过滤条件都取第一个参数，互相独立
	if regNoRe.MatchString(w[1]) && len(params) > 0 {
		q.Where = append(q.Where, store.Eq{Field: "reg_no", Value: params[0]})
	}
	if idRe.MatchString(w[1]) && len(params) > 0 {
		id, ok := store.AsInt64(params[0])
		if !ok {
			return nil, fmt.Errorf("%w: id parameter %v is not an integer", ErrGrammarMismatch, params[0])
		}
		q.Where = append(q.Where, store.Eq{Field: "id", Value: id})
	}
	for _, pred := range andRe.Split(strings.TrimSpace(w[1]), -1) {
		if pred == "" || regNoRe.MatchString(pred) || idRe.MatchString(pred) {
			continue
		}
		log.Warnw("sqlshim: WHERE predicate ignored", "table", q.Table, "predicate", pred)
	}
	return q, nil
}

func parseInsert(statement string, params []interface{}) (store.Query, error) {
	m := insertRe.FindStringSubmatch(statement)
	if m == nil {
		return nil, fmt.Errorf("%w: malformed INSERT", ErrGrammarMismatch)
	}
	cols := strings.Split(m[2], ",")
	if len(cols) != len(params) {
		return nil, fmt.Errorf("%w: %d columns but %d params", ErrGrammarMismatch, len(cols), len(params))
	}
	fields := make(store.Record, len(cols))
	for i, c := range cols {
		name := strings.Trim(strings.TrimSpace(c), "`\"")
		if name == "" {
			return nil, fmt.Errorf("%w: empty column name", ErrGrammarMismatch)
		}
		fields[name] = params[i]
	}
	return store.Insert{Table: m[1], Fields: fields}, nil
}

func parseUpdate(statement string, params []interface{}) (store.Query, error) {
	m := updateTableRe.FindStringSubmatch(statement)
	if m == nil || len(params) == 0 {
		return nil, fmt.Errorf("%w: malformed UPDATE", ErrGrammarMismatch)
	}
	id, ok := store.AsInt64(params[len(params)-1])
	if !ok {
		return nil, fmt.Errorf("%w: id parameter %v is not an integer", ErrGrammarMismatch, params[len(params)-1])
	}
	log.Warnw("sqlshim: UPDATE SET clause is not applied", "table", m[1], "id", id)
	return store.Update{Table: m[1], ID: id, Fields: store.Record{}}, nil
}

func parseDelete(statement string, params []interface{}) (store.Query, error) {
	m := deleteTableRe.FindStringSubmatch(statement)
	if m == nil || len(params) == 0 {
		return nil, fmt.Errorf("%w: malformed DELETE", ErrGrammarMismatch)
	}
	id, ok := store.AsInt64(params[0])
	if !ok {
		return nil, fmt.Errorf("%w: id parameter %v is not an integer", ErrGrammarMismatch, params[0])
	}
	return store.Delete{Table: m[1], ID: id}, nil
}

// Execute 解析并执行一条语句。语法不匹配时返回空结果，存储错误原样返回。
func Execute(ctx context.Context, s store.RecordStore, statement string, params ...interface{}) (*store.Result, error) {
	q, err := Parse(statement, params)
	if err != nil {
		if errors.Is(err, ErrGrammarMismatch) {
			log.Warnw("sqlshim: statement ignored", "statement", statement, "reason", err.Error())
			return &store.Result{}, nil
		}
		return nil, err
	}
	return store.Exec(ctx, s, q)
}
