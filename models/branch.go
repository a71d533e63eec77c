package models

import (
	"context"
	"time"

	"github.com/tjwells85/whs_backend/config"
	"github.com/tjwells85/whs_backend/utils"
)

// Branch is one physical warehouse location. BrId is the Eclipse branch
// identifier the sync loop passes to the ERP API.
type Branch struct {
	ID        int       `gorm:"primary_key" json:"id"`
	BrId      string    `gorm:"uniqueIndex;size:32;not null" json:"br_id" binding:"required"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Number    int       `gorm:"uniqueIndex" json:"number"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewBranch struct {
	BrId   string `json:"br_id" binding:"required"`
	Name   string `json:"name" binding:"required"`
	Number int    `json:"number" binding:"required,min=1"`
}

func GetAllBranches(ctx context.Context) ([]Branch, error) {
	cached, err := utils.RetrieveRedisList[Branch]()
	if err == nil && cached != nil {
		out := make([]Branch, 0, len(cached))
		for _, br := range cached {
			out = append(out, *br)
		}
		return out, nil
	}

	var branches []Branch
	if err := config.GetDB().WithContext(ctx).
		Order("br_id ASC").
		Find(&branches).Error; err != nil {
		return nil, err
	}
	_ = utils.StoreRedisList[Branch](branches)
	return branches, nil
}

func GetBranchById(ctx context.Context, id int) (*Branch, error) {
	var branch Branch
	if err := config.GetDB().WithContext(ctx).Where("id = ?", id).Take(&branch).Error; err != nil {
		return nil, err
	}
	return &branch, nil
}

func GetBranchByBrId(ctx context.Context, brId string) (*Branch, error) {
	var branch Branch
	if err := config.GetDB().WithContext(ctx).Where("br_id = ?", brId).Take(&branch).Error; err != nil {
		return nil, err
	}
	return &branch, nil
}

func CreateBranch(ctx context.Context, input *NewBranch) (*Branch, error) {
	branch := Branch{
		BrId:     input.BrId,
		Name:     input.Name,
		Number:   input.Number,
		IsActive: utils.NewTrue(),
	}
	if err := config.GetDB().WithContext(ctx).Create(&branch).Error; err != nil {
		return nil, err
	}
	_ = utils.ClearRedisCache[Branch]()
	return &branch, nil
}

func UpdateBranch(ctx context.Context, id int, input *NewBranch) (*Branch, error) {
	db := config.GetDB().WithContext(ctx)

	var branch Branch
	if err := db.Where("id = ?", id).Take(&branch).Error; err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"br_id":  input.BrId,
		"name":   input.Name,
		"number": input.Number,
	}
	if err := db.Model(&branch).Updates(updates).Error; err != nil {
		return nil, err
	}
	_ = utils.ClearRedisCache[Branch](id)
	return &branch, nil
}

func DeleteBranch(ctx context.Context, id int) error {
	res := config.GetDB().WithContext(ctx).Where("id = ?", id).Delete(&Branch{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return utils.ErrorRecordNotFound
	}
	_ = utils.ClearRedisCache[Branch](id)
	return nil
}
