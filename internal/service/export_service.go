package service

import (
	"alcyxob/workout-tracker/internal/repository"
	"alcyxob/workout-tracker/internal/storage"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const exportFormatVersion = "1"

// ExportDocument is the JSON object written for each user.
type ExportDocument struct {
	Version    string        `json:"version"`
	ExportedAt time.Time     `json:"exportedAt"`
	ExternalID string        `json:"externalId"`
	Name       string        `json:"name"`
	Workouts   []WorkoutView `json:"workouts"`
}

// ExportResult points at one uploaded document.
type ExportResult struct {
	ExternalID  string
	ObjectKey   string
	DownloadURL string
}

// ExportService snapshots user projections into object storage.
type ExportService interface {
	// ExportAll uploads one document per user and returns presigned links.
	ExportAll(ctx context.Context, linkExpiry time.Duration) ([]ExportResult, error)
}

type exportService struct {
	userRepo repository.UserRepository
	archive  storage.Archive
	prefix   string
	log      logrus.FieldLogger
	now      func() time.Time
}

// NewExportService creates a new instance of exportService. Objects are keyed
// under prefix/<externalId>/.
func NewExportService(userRepo repository.UserRepository, archive storage.Archive, prefix string, log logrus.FieldLogger) ExportService {
	return &exportService{
		userRepo: userRepo,
		archive:  archive,
		prefix:   prefix,
		log:      log,
		now:      time.Now,
	}
}

func (s *exportService) ExportAll(ctx context.Context, linkExpiry time.Duration) ([]ExportResult, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	exportedAt := s.now().UTC()
	results := make([]ExportResult, 0, len(users))
	for i := range users {
		user := &users[i]
		body, err := json.Marshal(ExportDocument{
			Version:    exportFormatVersion,
			ExportedAt: exportedAt,
			ExternalID: user.ExternalID,
			Name:       user.Name,
			Workouts:   Project(user),
		})
		if err != nil {
			return results, fmt.Errorf("encode export for %s: %w", user.ExternalID, err)
		}

		key := path.Join(s.prefix, user.ExternalID,
			fmt.Sprintf("%s-%s.json", exportedAt.Format("20060102T150405Z"), uuid.NewString()))
		if err := s.archive.PutObject(ctx, key, "application/json", body); err != nil {
			return results, fmt.Errorf("upload export for %s: %w", user.ExternalID, err)
		}

		url, err := s.archive.GeneratePresignedDownloadURL(ctx, key, linkExpiry)
		if err != nil {
			// no link means nobody can reach the object
			if delErr := s.archive.DeleteObject(ctx, key); delErr != nil {
				s.log.WithError(delErr).WithField("key", key).Warn("failed to remove unlinked export")
			}
			return results, fmt.Errorf("presign export for %s: %w", user.ExternalID, err)
		}

		s.log.WithFields(logrus.Fields{"externalId": user.ExternalID, "key": key}).Info("exported user")
		results = append(results, ExportResult{
			ExternalID:  user.ExternalID,
			ObjectKey:   key,
			DownloadURL: url,
		})
	}
	return results, nil
}
