package content

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sentinelbot/sentinel/pkg/configs"
	nlog "github.com/sentinelbot/sentinel/pkg/log"
)

// FSStore 基于本地文件系统的内容存储.
// 写入经临时文件落盘后原子重命名，规范路径上不会出现半截文件.
type FSStore struct {
	root string
}

// NewFSStore 创建文件系统内容存储，根目录不存在时创建.
func NewFSStore(cfg configs.StoreConfig) (*FSStore, error) {
	root := cfg.Root
	if root == "" {
		root = configs.DefaultStoreRoot
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create store root %s: %w", root, err)
	}

	nlog.Logger().Info().Str("root", root).Msg("content store ready")

	return &FSStore{root: root}, nil
}

// Persist 将字节写入摘要推导的规范路径.
// 已存在同摘要内容时直接返回存储键，不重写字节.
func (s *FSStore) Persist(ctx context.Context, r io.Reader, digest string, fileName string) (string, error) {
	key := CanonicalKey(digest, fileName)
	dst := filepath.Join(s.root, filepath.FromSlash(key))

	if _, err := os.Stat(dst); err == nil {
		return key, nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create content dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".ingest-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	tmpName := tmp.Name()
	defer func() {
		// 成功路径上临时文件已改名，删除失败可以忽略
		_ = os.Remove(tmpName)
	}()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write content: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("sync content: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, dst); err != nil {
		return "", fmt.Errorf("rename into place: %w", err)
	}

	return key, nil
}

// Exists 检查摘要对应的内容是否已落盘.
func (s *FSStore) Exists(ctx context.Context, digest string, fileName string) (bool, error) {
	dst := filepath.Join(s.root, filepath.FromSlash(CanonicalKey(digest, fileName)))

	_, err := os.Stat(dst)
	if err == nil {
		return true, nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, fmt.Errorf("stat content: %w", err)
}

// Open 按存储键读取内容.
func (s *FSStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil {
		return nil, fmt.Errorf("open content %s: %w", key, err)
	}

	return f, nil
}

// Remove 删除摘要对应的内容.
func (s *FSStore) Remove(ctx context.Context, key string) error {
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove content %s: %w", key, err)
	}

	return nil
}

// Close 关闭存储（文件系统实现无需操作）.
func (s *FSStore) Close() error {
	return nil
}
