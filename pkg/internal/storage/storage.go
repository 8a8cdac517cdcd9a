// Package storage 聚合台账数据库、内容存储、KV 与消息队列等存储资源.
//
// Example:
//
//	ctx := context.Background()
//	mgr, err := storage.Init(ctx, cfg)
//	if err != nil {
//	    // 处理错误
//	}
//
//	dbClient := mgr.GetDBClient()
//	store := mgr.GetContentStore()
package storage

import (
	"context"
	"sync"

	"github.com/sentinelbot/sentinel/pkg/configs"
	"github.com/sentinelbot/sentinel/pkg/internal/storage/content"
	dbc "github.com/sentinelbot/sentinel/pkg/internal/storage/db"
	kvc "github.com/sentinelbot/sentinel/pkg/internal/storage/kv"
	mqc "github.com/sentinelbot/sentinel/pkg/internal/storage/mq"
	nlog "github.com/sentinelbot/sentinel/pkg/log"
)

// Manager 聚合所有存储资源.
type Manager struct {
	DB      *dbc.Client
	Content content.Store
	KV      *kvc.Client
	MQ      *mqc.Client
}

var (
	mgr     *Manager
	mgrOnce sync.Once
)

// Init 初始化默认存储.重复调用只返回已初始化实例.
func Init(ctx context.Context, cfg *configs.AppConfig) (*Manager, error) {
	var err error

	mgrOnce.Do(func() {
		m := &Manager{}

		m.DB, err = dbc.New(ctx, cfg.DB, cfg.Metrics.Enabled)
		if err != nil {
			return
		}

		m.Content, err = content.NewStore(ctx, cfg.Store)
		if err != nil {
			return
		}

		m.KV, err = kvc.NewKVClient(ctx, cfg.KV)
		if err != nil {
			return
		}

		m.MQ, err = mqc.New(ctx, cfg.MQ)
		if err != nil {
			return
		}

		mgr = m

		nlog.Logger().Info().Msg("storage manager initialized")
	})

	return mgr, err
}

// NewManager 按配置构建一个独立的 Manager，不走单例（测试用）.
func NewManager(ctx context.Context, cfg *configs.AppConfig) (*Manager, error) {
	db, err := dbc.New(ctx, cfg.DB, cfg.Metrics.Enabled)
	if err != nil {
		return nil, err
	}

	store, err := content.NewStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	kv, err := kvc.NewKVClient(ctx, cfg.KV)
	if err != nil {
		return nil, err
	}

	mq, err := mqc.New(ctx, cfg.MQ)
	if err != nil {
		return nil, err
	}

	return &Manager{DB: db, Content: store, KV: kv, MQ: mq}, nil
}

// Close 释放所有存储资源.
func (m *Manager) Close() error {
	var err error

	if m.MQ != nil {
		if e := m.MQ.Close(); e != nil {
			err = e
		}
	}

	if m.KV != nil {
		if e := m.KV.Close(); e != nil {
			err = e
		}
	}

	if m.Content != nil {
		if e := m.Content.Close(); e != nil {
			err = e
		}
	}

	if m.DB != nil {
		if sqlDB, e := m.DB.DB.DB(); e == nil {
			if e := sqlDB.Close(); e != nil {
				err = e
			}
		}
	}

	return err
}

// GetDBClient 获取 DB 客户端.
func (m *Manager) GetDBClient() *dbc.Client {
	return m.DB
}

// GetContentStore 获取内容存储.
func (m *Manager) GetContentStore() content.Store {
	return m.Content
}

// GetKVClient 获取 KV 客户端.
func (m *Manager) GetKVClient() *kvc.Client {
	return m.KV
}

// GetMQClient 获取 MQ 客户端.
func (m *Manager) GetMQClient() *mqc.Client {
	return m.MQ
}
