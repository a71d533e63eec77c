package models

import (
	"context"
	"errors"
	"time"

	"github.com/tjwells85/whs_backend/config"
	"gorm.io/gorm"
)

// Holiday is an inclusive closed-date range. Expired rows are purged lazily
// whenever holidays are read.
type Holiday struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Start     time.Time `gorm:"index;not null" json:"start"`
	End       time.Time `gorm:"index;not null" json:"end"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewHoliday struct {
	Name  string    `json:"name" binding:"required"`
	Start time.Time `json:"start" binding:"required"`
	End   time.Time `json:"end" binding:"required"`
}

func purgeExpiredHolidays(ctx context.Context) error {
	return config.GetDB().WithContext(ctx).
		Where("`end` < ?", time.Now()).
		Delete(&Holiday{}).Error
}

func GetHolidays(ctx context.Context) ([]Holiday, error) {
	if err := purgeExpiredHolidays(ctx); err != nil {
		return nil, err
	}
	var holidays []Holiday
	err := config.GetDB().WithContext(ctx).Order("`start` ASC").Find(&holidays).Error
	return holidays, err
}

func GetHoliday(ctx context.Context, id int) (*Holiday, error) {
	if err := purgeExpiredHolidays(ctx); err != nil {
		return nil, err
	}
	var holiday Holiday
	if err := config.GetDB().WithContext(ctx).Where("id = ?", id).Take(&holiday).Error; err != nil {
		return nil, err
	}
	return &holiday, nil
}

// FindHolidayCovering returns the first holiday whose range brackets the
// given instant, or nil.
func FindHolidayCovering(ctx context.Context, at time.Time) (*Holiday, error) {
	var holiday Holiday
	err := config.GetDB().WithContext(ctx).
		Where("`start` <= ? AND `end` >= ?", at, at).
		Take(&holiday).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &holiday, nil
}

func CreateHoliday(ctx context.Context, input *NewHoliday) (*Holiday, error) {
	holiday := Holiday{
		Name:  input.Name,
		Start: input.Start,
		End:   input.End,
	}
	if err := config.GetDB().WithContext(ctx).Create(&holiday).Error; err != nil {
		return nil, err
	}
	return &holiday, nil
}

func UpdateHoliday(ctx context.Context, id int, input *NewHoliday) (*Holiday, error) {
	db := config.GetDB().WithContext(ctx)

	var holiday Holiday
	if err := db.Where("id = ?", id).Take(&holiday).Error; err != nil {
		return nil, err
	}
	updates := map[string]interface{}{
		"name":  input.Name,
		"start": input.Start,
		"end":   input.End,
	}
	if err := db.Model(&holiday).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &holiday, nil
}

func DeleteHoliday(ctx context.Context, id int) error {
	res := config.GetDB().WithContext(ctx).Where("id = ?", id).Delete(&Holiday{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
