package model

// KVEntry 键值存储表：对应 kv_entries
//
// 课表数据以 JSON 文本整体存放，数据库只承担持久化，不做字段级查询。
type KVEntry struct {
	Key   string `gorm:"type:varchar(255);primaryKey" json:"key"`
	Value string `gorm:"type:text;not null"           json:"value"`
	BaseModel
}

// TableName 指定表名
func (KVEntry) TableName() string { return "kv_entries" }
