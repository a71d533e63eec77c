package models

import (
	"context"
	"errors"
	"time"

	"github.com/tjwells85/whs_backend/config"
	"github.com/tjwells85/whs_backend/utils"
	"gorm.io/gorm"
)

var ErrUnknownTaskView = errors.New("unknown task view")

// ShipVia is a named fulfillment method. Rows are mostly auto-created by
// reconciliation when Eclipse reports a name we have not seen before.
type ShipVia struct {
	ID        int         `gorm:"primary_key" json:"id"`
	Name      string      `gorm:"uniqueIndex;size:64;not null" json:"name" binding:"required"`
	Priority  int         `gorm:"not null;default:0" json:"priority"`
	Type      ShipViaType `gorm:"size:16;not null;default:'WillCall'" json:"type"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewShipVia struct {
	Name     string      `json:"name" binding:"required"`
	Priority int         `json:"priority" binding:"min=0"`
	Type     ShipViaType `json:"type" binding:"omitempty,oneof=WillCall Delivery ShipOut"`
}

func GetAllShipVias(ctx context.Context) ([]ShipVia, error) {
	cached, err := utils.RetrieveRedisList[ShipVia]()
	if err == nil && cached != nil {
		out := make([]ShipVia, 0, len(cached))
		for _, sv := range cached {
			out = append(out, *sv)
		}
		return out, nil
	}

	var shipVias []ShipVia
	if err := config.GetDB().WithContext(ctx).
		Order("priority ASC").Order("name ASC").
		Find(&shipVias).Error; err != nil {
		return nil, err
	}
	_ = utils.StoreRedisList[ShipVia](shipVias)
	return shipVias, nil
}

func GetShipViaByName(ctx context.Context, name string) (*ShipVia, error) {
	var shipVia ShipVia
	err := config.GetDB().WithContext(ctx).Where("name = ?", name).Take(&shipVia).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &shipVia, nil
}

// ListShipViaNames returns the full known-name set, used to seed each
// reconciliation batch.
func ListShipViaNames(ctx context.Context) (map[string]struct{}, error) {
	var names []string
	if err := config.GetDB().WithContext(ctx).
		Model(&ShipVia{}).Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set, nil
}

func CreateShipVia(ctx context.Context, input *NewShipVia) (*ShipVia, error) {
	if input.Type == "" {
		input.Type = ShipViaTypeWillCall
	}
	shipVia := ShipVia{
		Name:     input.Name,
		Priority: input.Priority,
		Type:     input.Type,
	}
	if err := config.GetDB().WithContext(ctx).Create(&shipVia).Error; err != nil {
		return nil, err
	}
	_ = utils.ClearRedisCache[ShipVia]()
	return &shipVia, nil
}

func UpdateShipVia(ctx context.Context, id int, input *NewShipVia) (*ShipVia, error) {
	db := config.GetDB().WithContext(ctx)

	var shipVia ShipVia
	if err := db.Where("id = ?", id).Take(&shipVia).Error; err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":     input.Name,
		"priority": input.Priority,
	}
	if input.Type != "" {
		updates["type"] = input.Type
	}
	if err := db.Model(&shipVia).Updates(updates).Error; err != nil {
		return nil, err
	}
	_ = utils.ClearRedisCache[ShipVia](id)
	return &shipVia, nil
}

func shipViaNamesByTypes(ctx context.Context, types ...ShipViaType) ([]string, error) {
	var names []string
	err := config.GetDB().WithContext(ctx).
		Model(&ShipVia{}).
		Where("type IN ?", types).
		Pluck("name", &names).Error
	return names, err
}
