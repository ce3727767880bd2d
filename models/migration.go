package models

import "bitbucket.org/distextil/telas_backend/config"

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&User{},
	)
	if err != nil {
		panic(err)
	}
}
