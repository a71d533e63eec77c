package models

import (
	"github.com/tjwells85/whs_backend/config"
	"github.com/tjwells85/whs_backend/utils"
)

func MigrateTable() {
	db := config.GetDB()

	utils.ErrorPanic(db.AutoMigrate(
		&Branch{},
		&EclipseSession{},
		&Holiday{},
		&LogEntry{},
		&ShipVia{},
		&Stat{},
		&Task{},
		&User{},
	))
}
