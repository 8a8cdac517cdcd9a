// Package content 提供内容寻址存储：摘要计算与按摘要落盘.
package content

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/sentinelbot/sentinel/pkg/configs"
)

// digestChunkSize 流式摘要的固定读块大小，内存占用与文件大小无关.
const digestChunkSize = 32 * 1024

// Store 定义内容存储接口.
// Persist 幂等：同一摘要重复写入不报错也不产生第二份字节.
type Store interface {
	// Persist 将字节写入摘要推导出的规范位置并返回存储键.
	Persist(ctx context.Context, r io.Reader, digest string, fileName string) (string, error)
	// Exists 检查摘要对应的内容是否已存在.
	Exists(ctx context.Context, digest string, fileName string) (bool, error)
	// Open 按存储键读取内容.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// Remove 删除摘要对应的内容（管理员清除用）.
	Remove(ctx context.Context, key string) error
	// Close 释放底层资源.
	Close() error
}

// NewStore 根据配置创建内容存储实例.
func NewStore(ctx context.Context, cfg configs.StoreConfig) (Store, error) {
	switch cfg.Type {
	case configs.StoreTypeS3:
		return NewS3Store(ctx, cfg)
	case configs.StoreTypeFS:
		return NewFSStore(cfg)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", cfg.Type)
	}
}

// Digest 以固定大小的块流式计算 SHA-256 摘要，返回小写十六进制.
func Digest(r io.Reader) (string, int64, error) {
	h := sha256.New()
	buf := make([]byte, digestChunkSize)

	n, err := io.CopyBuffer(h, r, buf)
	if err != nil {
		return "", 0, fmt.Errorf("digest content: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// CanonicalKey 由摘要与原始文件名的扩展名确定性推导存储键.
// 形如 ab/cd/<digest>.<ext>，两级前缀避免单目录文件过多.
func CanonicalKey(digest string, fileName string) string {
	ext := strings.ToLower(path.Ext(fileName))

	name := digest
	if ext != "" && ext != "." {
		name += ext
	}

	return path.Join(digest[:2], digest[2:4], name)
}
