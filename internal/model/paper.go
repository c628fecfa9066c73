// Package model 包含了应用的数据模型定义。
package model

import "time"

// SavedPaper 定义了 papers 表的 ORM 模型，存储用户收藏的论文。
// 同一用户对同一篇论文重复保存时执行覆盖（upsert）。
type SavedPaper struct {
	ID            uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID        uint       `gorm:"not null;uniqueIndex:uniq_user_paper" json:"userId"`
	PaperID       string     `gorm:"type:varchar(64);not null;uniqueIndex:uniq_user_paper" json:"paperId"`
	Title         string     `gorm:"type:text;not null" json:"title"`
	Authors       string     `gorm:"type:text" json:"authors"` // JSON 编码的作者列表
	Abstract      string     `gorm:"type:text" json:"abstract"`
	Summary       *string    `gorm:"type:text" json:"summary"`
	URL           string     `gorm:"type:varchar(512)" json:"url"`
	PublishedDate *time.Time `json:"publishedDate"`
	SavedAt       time.Time  `gorm:"autoCreateTime" json:"savedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (SavedPaper) TableName() string {
	return "papers"
}

// QueryRecord 定义了 queries 表的 ORM 模型，记录用户的检索历史。
type QueryRecord struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	QueryText string    `gorm:"type:text;not null" json:"queryText"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (QueryRecord) TableName() string {
	return "queries"
}
