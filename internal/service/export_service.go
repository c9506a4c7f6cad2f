package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"todo-calendar/internal/calendar"
	"todo-calendar/internal/domain"
	"todo-calendar/internal/storage"
)

// ErrExportsDisabled is returned when no storage bucket is configured.
var ErrExportsDisabled = errors.New("calendar exports are not configured")

// Export is an uploaded calendar snapshot.
type Export struct {
	Key       string
	URL       string
	Size      int64
	CreatedAt *time.Time
	ExpiresAt time.Time
}

// ExportConfig names the bucket and key prefix exports are written under.
type ExportConfig struct {
	Bucket     string
	KeyPrefix  string
	PresignTTL time.Duration
}

// ExportService renders an owner's todos as iCalendar and keeps snapshots in object storage.
type ExportService interface {
	// Feed writes the owner's whole calendar as iCalendar.
	Feed(ctx context.Context, ownerID int64, calendarName string) ([]byte, error)
	Export(ctx context.Context, ownerID int64, calendarName string) (*Export, error)
	List(ctx context.Context, ownerID int64) ([]Export, error)
	DeleteAll(ctx context.Context, ownerID int64) error
}

type exportService struct {
	todos   TodoService
	storage storage.Service
	cfg     ExportConfig
	now     func() time.Time
}

// NewExportService accepts a nil storage; uploads then fail with ErrExportsDisabled.
func NewExportService(todos TodoService, store storage.Service, cfg ExportConfig) ExportService {
	if cfg.PresignTTL <= 0 {
		cfg.PresignTTL = 15 * time.Minute
	}
	cfg.KeyPrefix = strings.Trim(cfg.KeyPrefix, "/")
	return &exportService{
		todos:   todos,
		storage: store,
		cfg:     cfg,
		now:     time.Now,
	}
}

func (s *exportService) enabled() bool {
	return s.storage != nil && s.cfg.Bucket != ""
}

func (s *exportService) ownerPrefix(ownerID int64) string {
	return path.Join(s.cfg.KeyPrefix, strconv.FormatInt(ownerID, 10)) + "/"
}

func (s *exportService) Feed(ctx context.Context, ownerID int64, calendarName string) ([]byte, error) {
	todos, err := s.todos.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := calendar.WriteICS(&buf, calendarName, calendar.Events(todos, calendar.Range{}), s.now()); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *exportService) Export(ctx context.Context, ownerID int64, calendarName string) (*Export, error) {
	if !s.enabled() {
		return nil, ErrExportsDisabled
	}
	feed, err := s.Feed(ctx, ownerID, calendarName)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	key := s.ownerPrefix(ownerID) + now.Format("20060102T150405Z") + "-" + uuid.NewString() + ".ics"
	if err := s.storage.PutObject(ctx, s.cfg.Bucket, key, calendar.ContentType, bytes.NewReader(feed)); err != nil {
		return nil, fmt.Errorf("store export: %w", err)
	}
	url, err := s.storage.PresignGet(ctx, s.cfg.Bucket, key, s.cfg.PresignTTL)
	if err != nil {
		return nil, fmt.Errorf("sign export url: %w", err)
	}

	return &Export{
		Key:       key,
		URL:       url,
		Size:      int64(len(feed)),
		CreatedAt: &now,
		ExpiresAt: now.Add(s.cfg.PresignTTL),
	}, nil
}

func (s *exportService) List(ctx context.Context, ownerID int64) ([]Export, error) {
	if !s.enabled() {
		return nil, ErrExportsDisabled
	}
	if ownerID <= 0 {
		return nil, domain.ErrUnauthenticated
	}
	objects, err := s.storage.ListObjects(ctx, s.cfg.Bucket, s.ownerPrefix(ownerID))
	if err != nil {
		return nil, fmt.Errorf("list exports: %w", err)
	}

	now := s.now().UTC()
	exports := make([]Export, 0, len(objects))
	for _, obj := range objects {
		url, err := s.storage.PresignGet(ctx, s.cfg.Bucket, obj.Key, s.cfg.PresignTTL)
		if err != nil {
			return nil, fmt.Errorf("sign export url: %w", err)
		}
		exports = append(exports, Export{
			Key:       obj.Key,
			URL:       url,
			Size:      obj.Size,
			CreatedAt: obj.LastModified,
			ExpiresAt: now.Add(s.cfg.PresignTTL),
		})
	}
	return exports, nil
}

func (s *exportService) DeleteAll(ctx context.Context, ownerID int64) error {
	if !s.enabled() {
		return ErrExportsDisabled
	}
	if ownerID <= 0 {
		return domain.ErrUnauthenticated
	}
	if err := s.storage.DeletePrefix(ctx, s.cfg.Bucket, s.ownerPrefix(ownerID)); err != nil {
		return fmt.Errorf("delete exports: %w", err)
	}
	return nil
}
