package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"socialhub/internal/config"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	FolderPosts   = "posts"
	FolderAvatars = "avatars"

	sniffLen = 3072
)

var (
	ErrUnsupportedImage = errors.New("поддерживаются только изображения JPEG, PNG, GIF и WebP")
	ErrImageTooLarge    = errors.New("изображение слишком большое")
)

var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

type Storage interface {
	UploadImage(ctx context.Context, folder, ownerID string, file io.Reader, size int64) (objectName string, url string, err error)
	DeleteImage(ctx context.Context, objectName string) error
	ObjectNameFromURL(url string) (string, bool)
}

type MinIOClient struct {
	client    *minio.Client
	bucket    string
	publicURL string
	maxSize   int64
}

const publicReadPolicy = `{
	"Version": "2012-10-17",
	"Statement": [{
		"Effect": "Allow",
		"Principal": {"AWS": ["*"]},
		"Action": ["s3:GetObject"],
		"Resource": ["arn:aws:s3:::%s/*"]
	}]
}`

// NewMinIOClient connects to MinIO and makes sure the image bucket exists and is publicly readable.
func NewMinIOClient(cfg *config.Config) (*MinIOClient, error) {
	client, err := minio.New(cfg.MinIO.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
		Secure: cfg.MinIO.UseSSL,
		Region: cfg.MinIO.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка создания клиента MinIO: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bucket := cfg.MinIO.BucketName
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		return nil, fmt.Errorf("ошибка проверки бакета %s: %w", bucket, err)
	}

	if !exists {
		if err = client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: cfg.MinIO.Region}); err != nil {
			return nil, fmt.Errorf("ошибка создания бакета %s: %w", bucket, err)
		}
		log.Printf("Создан бакет MinIO: %s", bucket)
	}

	if err = client.SetBucketPolicy(ctx, bucket, fmt.Sprintf(publicReadPolicy, bucket)); err != nil {
		return nil, fmt.Errorf("ошибка установки политики бакета %s: %w", bucket, err)
	}

	return &MinIOClient{
		client:    client,
		bucket:    bucket,
		publicURL: cfg.MinIO.PublicURL,
		maxSize:   cfg.MaxUploadSize,
	}, nil
}

// SniffImage checks the leading bytes of file and returns the detected type,
// its extension and a reader that still yields the whole content.
func SniffImage(file io.Reader) (contentType string, ext string, body io.Reader, err error) {
	header := make([]byte, sniffLen)
	n, err := io.ReadFull(file, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", "", nil, fmt.Errorf("ошибка чтения файла: %w", err)
	}
	header = header[:n]

	mtype := mimetype.Detect(header)
	for candidate := mtype; candidate != nil; candidate = candidate.Parent() {
		if ext, ok := imageExtensions[candidate.String()]; ok {
			return candidate.String(), ext, io.MultiReader(bytes.NewReader(header), file), nil
		}
	}

	return "", "", nil, fmt.Errorf("%w: получен %s", ErrUnsupportedImage, mtype.String())
}

// CheckSize rejects uploads above max; max <= 0 disables the check.
func CheckSize(size, max int64) error {
	if max > 0 && size > max {
		return fmt.Errorf("%w: %s при лимите %s", ErrImageTooLarge,
			humanize.IBytes(uint64(size)), humanize.IBytes(uint64(max)))
	}
	return nil
}

// OwnedBy reports whether objectName was uploaded by ownerID into folder.
func OwnedBy(objectName, folder, ownerID string) bool {
	return ownerID != "" && strings.HasPrefix(objectName, folder+"/"+ownerID+"/")
}

// ObjectName builds "<folder>/<owner>/<yyyy>/<mm>/<uuid><ext>".
func ObjectName(folder, ownerID, ext string, now time.Time) string {
	return fmt.Sprintf("%s/%s/%d/%02d/%s%s",
		folder,
		ownerID,
		now.Year(),
		now.Month(),
		uuid.New().String(),
		ext)
}

func (m *MinIOClient) UploadImage(ctx context.Context, folder, ownerID string, file io.Reader, size int64) (string, string, error) {
	if err := CheckSize(size, m.maxSize); err != nil {
		return "", "", err
	}

	contentType, ext, body, err := SniffImage(file)
	if err != nil {
		return "", "", err
	}

	now := time.Now()
	objectName := ObjectName(folder, ownerID, ext, now)

	_, err = m.client.PutObject(ctx, m.bucket, objectName, body, size,
		minio.PutObjectOptions{
			ContentType: contentType,
			UserMetadata: map[string]string{
				"owner-id":    ownerID,
				"uploaded-at": now.Format(time.RFC3339),
			},
		})
	if err != nil {
		return "", "", fmt.Errorf("ошибка загрузки в MinIO: %w", err)
	}

	log.Printf("Загружено изображение %s (%s)", objectName, humanize.IBytes(uint64(size)))

	return objectName, m.objectURL(objectName), nil
}

func (m *MinIOClient) DeleteImage(ctx context.Context, objectName string) error {
	err := m.client.RemoveObject(ctx, m.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil {
		return fmt.Errorf("ошибка удаления из MinIO: %w", err)
	}
	return nil
}

func (m *MinIOClient) objectURL(objectName string) string {
	return publicObjectURL(m.publicURL, m.bucket, objectName)
}

// ObjectNameFromURL reports the object key for URLs that point into this bucket.
func (m *MinIOClient) ObjectNameFromURL(url string) (string, bool) {
	return objectNameFromURL(m.publicURL, m.bucket, url)
}

func publicObjectURL(publicURL, bucket, objectName string) string {
	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(publicURL, "/"), bucket, objectName)
}

func objectNameFromURL(publicURL, bucket, url string) (string, bool) {
	prefix := strings.TrimSuffix(publicURL, "/") + "/" + bucket + "/"
	name, ok := strings.CutPrefix(url, prefix)
	if !ok || name == "" {
		return "", false
	}
	return name, true
}
