package store

import (
	"fmt"

	"campus-info-go/internal/config"
	"campus-info-go/pkg/database"
	"campus-info-go/pkg/log"
)

// Open 根据配置选择存储后端。后端只在启动时确定一次，运行期间不会降级切换。
func Open(cfg config.DatabaseConfig) (RecordStore, error) {
	switch cfg.Backend {
	case config.BackendJSON:
		s, err := NewJSONStore(cfg.JSON.Path)
		if err != nil {
			return nil, err
		}
		log.Infof("使用 JSON 文件存储: %s", cfg.JSON.Path)
		return s, nil
	case config.BackendMySQL:
		db, err := database.OpenMySQL(cfg.MySQL.DSN)
		if err != nil {
			return nil, err
		}
		return NewGormStore(db)
	case config.BackendSQLite:
		db, err := database.OpenSQLite(cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return NewGormStore(db)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
