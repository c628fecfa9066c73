// Package repository 定义了与数据库进行数据交换的接口和实现。
package repository

import (
	"quantum-assistant-go/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PaperRepository 接口定义了论文收藏与检索历史的持久化操作。
type PaperRepository interface {
	SavePaper(paper *model.SavedPaper) error
	FindPapersByUser(userID uint) ([]model.SavedPaper, error)
	DeletePaper(userID uint, paperID string) error
	SaveQuery(record *model.QueryRecord) error
	FindQueryHistory(userID uint, limit int) ([]model.QueryRecord, error)
}

// paperRepository 是 PaperRepository 接口的 GORM 实现。
type paperRepository struct {
	db *gorm.DB
}

// NewPaperRepository 创建一个新的 PaperRepository 实例。
func NewPaperRepository(db *gorm.DB) PaperRepository {
	return &paperRepository{db: db}
}

// SavePaper 保存一篇论文收藏。同一用户重复保存同一篇论文时执行覆盖。
func (r *paperRepository) SavePaper(paper *model.SavedPaper) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "paper_id"}},
		UpdateAll: true,
	}).Create(paper).Error
}

// FindPapersByUser 检索用户收藏的全部论文，按保存时间倒序。
func (r *paperRepository) FindPapersByUser(userID uint) ([]model.SavedPaper, error) {
	var papers []model.SavedPaper
	err := r.db.Where("user_id = ?", userID).Order("saved_at DESC").Find(&papers).Error
	return papers, err
}

// DeletePaper 删除用户的一篇论文收藏。
func (r *paperRepository) DeletePaper(userID uint, paperID string) error {
	return r.db.Where("user_id = ? AND paper_id = ?", userID, paperID).Delete(&model.SavedPaper{}).Error
}

// SaveQuery 记录一条检索历史。
func (r *paperRepository) SaveQuery(record *model.QueryRecord) error {
	return r.db.Create(record).Error
}

// FindQueryHistory 检索用户的检索历史，按时间倒序。
func (r *paperRepository) FindQueryHistory(userID uint, limit int) ([]model.QueryRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []model.QueryRecord
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Limit(limit).Find(&records).Error
	return records, err
}
