package product

import (
	"context"

	"github.com/coderopp/smartneed/internal/db"
	"github.com/coderopp/smartneed/internal/domain/search/filter"
)

type storeMock struct {
	hsetFunc        func(ctx context.Context, key string, fields map[string]string) error
	hgetAllFunc     func(ctx context.Context, key string) (map[string]string, error)
	delFunc         func(ctx context.Context, key string) error
	createIndexFunc func(ctx context.Context, def *db.IndexDefinition) error
	indexExistsFunc func(ctx context.Context, name string) (bool, error)
	searchKNNFunc   func(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	searchTextFunc  func(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
	searchListFunc  func(ctx context.Context, index string, filters filter.Set, offset, limit int) (*db.SearchResult, error)
	searchCountFunc func(ctx context.Context, index string, filters filter.Set) (int, error)
	groupCountFunc  func(ctx context.Context, index, field string) (map[string]int, error)
}

func (m *storeMock) HSet(ctx context.Context, key string, fields map[string]string) error {
	return m.hsetFunc(ctx, key, fields)
}

func (m *storeMock) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return m.hgetAllFunc(ctx, key)
}

func (m *storeMock) Del(ctx context.Context, key string) error {
	return m.delFunc(ctx, key)
}

func (m *storeMock) CreateIndex(ctx context.Context, def *db.IndexDefinition) error {
	return m.createIndexFunc(ctx, def)
}

func (m *storeMock) IndexExists(ctx context.Context, name string) (bool, error) {
	return m.indexExistsFunc(ctx, name)
}

func (m *storeMock) SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	return m.searchKNNFunc(ctx, q)
}

func (m *storeMock) SearchText(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	return m.searchTextFunc(ctx, q)
}

func (m *storeMock) SearchList(
	ctx context.Context, index string, filters filter.Set, offset, limit int,
) (*db.SearchResult, error) {
	return m.searchListFunc(ctx, index, filters, offset, limit)
}

func (m *storeMock) SearchCount(ctx context.Context, index string, filters filter.Set) (int, error) {
	return m.searchCountFunc(ctx, index, filters)
}

func (m *storeMock) GroupCount(ctx context.Context, index, field string) (map[string]int, error) {
	return m.groupCountFunc(ctx, index, field)
}
