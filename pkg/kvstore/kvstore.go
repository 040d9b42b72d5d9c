// Package kvstore 提供不透明的键值存储抽象。
//
// 课表数据只使用两个固定键（课程列表、已保存课表），值为 JSON 文本，
// 后端可在内存、Redis、PostgreSQL、SQLite 之间切换而不影响上层。
package kvstore

import "context"

// Store 键值存储
//
// Get 在键不存在时返回 pkg/errors.ErrNotFound；Delete 对不存在的键不报错。
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
