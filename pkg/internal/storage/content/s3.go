package content

import (
	"context"
	"fmt"
	"io"
	"net/url"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sentinelbot/sentinel/pkg/configs"
	nlog "github.com/sentinelbot/sentinel/pkg/log"
)

// S3Store 基于 S3 兼容对象存储的内容存储.
type S3Store struct {
	client *minio.Client
	bucket string
}

// NewS3Store 初始化 MinIO 客户端，若 bucket 不存在则尝试创建.
func NewS3Store(ctx context.Context, cfg configs.StoreConfig) (*S3Store, error) {
	s3cfg := cfg.S3
	endpoint := s3cfg.Endpoint
	// 允许用户传完整 schema endpoint（http:// 或 https://）
	if u, err := url.Parse(endpoint); err == nil && u.Host != "" {
		endpoint = u.Host
		if u.Scheme == "https" {
			s3cfg.UseSSL = true
		}
	}

	cli, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(s3cfg.AccessKeyID, s3cfg.SecretAccessKey, ""),
		Secure: s3cfg.UseSSL,
		Region: s3cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	cli.SetAppInfo("sentinel", configs.AppVersion)

	exists, err := cli.BucketExists(ctx, s3cfg.BucketName)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", s3cfg.BucketName, err)
	}

	if !exists {
		if err := cli.MakeBucket(ctx, s3cfg.BucketName, minio.MakeBucketOptions{Region: s3cfg.Region}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", s3cfg.BucketName, err)
		}

		nlog.Logger().Info().Str("bucket", s3cfg.BucketName).Msg("bucket created")
	}

	nlog.Logger().Info().Str("endpoint", s3cfg.Endpoint).Str("bucket", s3cfg.BucketName).Msg("s3 content store connected")

	return &S3Store{client: cli, bucket: s3cfg.BucketName}, nil
}

// Persist 将字节写入摘要推导的对象键.
// 对象已存在时直接返回键，S3 的对象覆盖本身也是幂等的.
func (s *S3Store) Persist(ctx context.Context, r io.Reader, digest string, fileName string) (string, error) {
	key := CanonicalKey(digest, fileName)

	if exists, err := s.exists(ctx, key); err == nil && exists {
		return key, nil
	}

	_, err := s.client.PutObject(ctx, s.bucket, key, r, -1, minio.PutObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return key, nil
}

// Exists 检查摘要对应的对象是否已存在.
func (s *S3Store) Exists(ctx context.Context, digest string, fileName string) (bool, error) {
	return s.exists(ctx, CanonicalKey(digest, fileName))
}

func (s *S3Store) exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return false, nil
		}

		return false, fmt.Errorf("stat object %s: %w", key, err)
	}

	return true, nil
}

// Open 按存储键读取对象.
func (s *S3Store) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get object %s: %w", key, err)
	}

	return obj, nil
}

// Remove 删除对象.
func (s *S3Store) Remove(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object %s: %w", key, err)
	}

	return nil
}

// Close 关闭客户端（minio 客户端无显式关闭）.
func (s *S3Store) Close() error {
	return nil
}
