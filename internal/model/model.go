// Package model 定义数据模型
package model

import (
	"gorm.io/gorm"
)

func AutoMigrate(db *gorm.DB, key string) error {
	switch key {

	case "BlockedDomain":
		return db.AutoMigrate(BlockedDomain{})

	case "DomainHistory":
		return db.AutoMigrate(DomainHistory{})

	case "DNSClient":
		return db.AutoMigrate(DNSClient{})

	case "SyncHistory":
		return db.AutoMigrate(SyncHistory{})
	}
	return nil
}
