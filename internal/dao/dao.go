// Package dao 实现数据访问层
package dao

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"

	"github.com/br10net/blocklist-sync-service/internal/model"
)

// Database 数据库配置
type Database struct {
	Type         string `yaml:"type" default:"sqlite"`
	Path         string `yaml:"path" default:"storage/database/blocklist.db"`
	UserName     string `yaml:"user-name" default:""`
	Password     string `yaml:"password" default:""`
	Host         string `yaml:"host" default:""`
	Name         string `yaml:"name" default:""`
	TablePrefix  string `yaml:"table-prefix" default:""`
	Charset      string `yaml:"charset" default:"utf8mb4"`
	ParseTime    bool   `yaml:"parse-time" default:"true"`
	MaxIdleConns int    `yaml:"max-idle-conns" default:"10"`
	MaxOpenConns int    `yaml:"max-open-conns" default:"30"`
}

type Dao struct {
	Db *gorm.DB
}

func New(db *gorm.DB) *Dao {
	return &Dao{Db: db}
}

func (d *Dao) DB() *gorm.DB {
	return d.Db
}

// Migrate 建表，幂等
func (d *Dao) Migrate() error {
	for _, key := range []string{"BlockedDomain", "DomainHistory", "DNSClient", "SyncHistory"} {
		if err := model.AutoMigrate(d.Db, key); err != nil {
			return err
		}
	}
	return nil
}

func NewDBEngine(c Database, runMode string) (*gorm.DB, error) {

	dialector, err := openDialector(c)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix,
			SingularTable: true, // 使用单数表名
		},
	})
	if err != nil {
		return nil, err
	}
	if runMode == "debug" {
		db.Config.Logger = logger.Default.LogMode(logger.Info)
	}

	// 获取通用数据库对象 sql.DB，配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if isMemorySqlite(c) {
		// 内存库每个连接各自是一个空库，连接池必须收敛到单连接
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		sqlDB.SetMaxIdleConns(c.MaxIdleConns)
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(time.Minute * 10)
	}

	return db, nil
}

// isMemorySqlite 判断 sqlite 配置是否为内存数据库
func isMemorySqlite(c Database) bool {
	if c.Type != "sqlite" && c.Type != "" {
		return false
	}
	return c.Path == ":memory:" || strings.Contains(c.Path, "mode=memory")
}

func openDialector(c Database) (gorm.Dialector, error) {
	switch c.Type {
	case "mysql":
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=%t&loc=Local",
			c.UserName,
			c.Password,
			c.Host,
			c.Name,
			c.Charset,
			c.ParseTime,
		)), nil
	case "postgres":
		return postgres.Open(fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=disable",
			c.Host,
			c.UserName,
			c.Password,
			c.Name,
		)), nil
	case "sqlite", "":
		if dir := filepath.Dir(c.Path); dir != "." {
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return nil, err
			}
		}
		return sqlite.Open(c.Path), nil
	}
	return nil, fmt.Errorf("unsupported database type: %s", c.Type)
}
