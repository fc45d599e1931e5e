package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"congregate/internal/caching"
	"congregate/internal/models"
	"congregate/internal/repositories"
)

const (
	songCacheTTL        = 10 * time.Minute
	attachmentBucket    = "song-attachments"
	attachmentURLExpiry = 15 * time.Minute
)

type SongService interface {
	Create(ctx context.Context, req *CreateSongRequest) (*models.Song, error)
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Song, error)
	Update(ctx context.Context, req *UpdateSongRequest) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
	List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*models.Song, error)
	Search(ctx context.Context, orgID uuid.UUID, query string, limit, offset int) ([]*models.Song, error)
	UploadAttachment(ctx context.Context, orgID, id uuid.UUID, filename, contentType string, reader io.Reader, size int64) (string, error)
	AttachmentURL(ctx context.Context, orgID, id uuid.UUID) (string, error)
}

type songService struct {
	songRepo   repositories.SongRepository
	storageSvc StorageService
	cacheSvc   caching.CacheService
}

func NewSongService(songRepo repositories.SongRepository, storageSvc StorageService, cacheSvc caching.CacheService) SongService {
	return &songService{songRepo: songRepo, storageSvc: storageSvc, cacheSvc: cacheSvc}
}

type CreateSongRequest struct {
	OrganizationID uuid.UUID `json:"organization_id"`
	Title          string    `json:"title" validate:"required"`
	Author         *string   `json:"author"`
	CCLINumber     *string   `json:"ccli_number"`
	DefaultKey     *string   `json:"default_key"`
	Tempo          *int      `json:"tempo"`
}

type UpdateSongRequest struct {
	OrganizationID uuid.UUID
	ID             uuid.UUID
	Title          string  `json:"title" validate:"required"`
	Author         *string `json:"author"`
	CCLINumber     *string `json:"ccli_number"`
	DefaultKey     *string `json:"default_key"`
	Tempo          *int    `json:"tempo"`
}

func (s *songService) Create(ctx context.Context, req *CreateSongRequest) (*models.Song, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, errors.New("title is required")
	}
	if req.Tempo != nil && (*req.Tempo < 20 || *req.Tempo > 300) {
		return nil, errors.New("tempo must be between 20 and 300 bpm")
	}

	song := &models.Song{
		ID:             uuid.New(),
		OrganizationID: req.OrganizationID,
		Title:          strings.TrimSpace(req.Title),
		Author:         req.Author,
		CCLINumber:     req.CCLINumber,
		DefaultKey:     req.DefaultKey,
		Tempo:          req.Tempo,
	}

	if err := s.songRepo.Create(ctx, song); err != nil {
		return nil, err
	}
	return song, nil
}

func (s *songService) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Song, error) {
	if cached, err := s.cacheSvc.GetSong(ctx, orgID, id); err == nil && cached != nil {
		return cached, nil
	}

	song, err := s.songRepo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	if err := s.cacheSvc.SetSong(ctx, orgID, song, songCacheTTL); err != nil {
		log.Printf("Failed to cache song %s: %v", song.ID.String(), err)
	}
	return song, nil
}

func (s *songService) Update(ctx context.Context, req *UpdateSongRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return errors.New("title is required")
	}

	existing, err := s.songRepo.GetByID(ctx, req.OrganizationID, req.ID)
	if err != nil {
		return err
	}

	existing.Title = strings.TrimSpace(req.Title)
	existing.Author = req.Author
	existing.CCLINumber = req.CCLINumber
	existing.DefaultKey = req.DefaultKey
	existing.Tempo = req.Tempo

	if err := s.songRepo.Update(ctx, existing); err != nil {
		return err
	}

	if err := s.cacheSvc.DeleteSong(ctx, req.OrganizationID, req.ID); err != nil {
		log.Printf("Failed to invalidate song cache %s: %v", req.ID.String(), err)
	}
	return nil
}

func (s *songService) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	song, err := s.songRepo.GetByID(ctx, orgID, id)
	if err != nil {
		return err
	}

	if err := s.songRepo.Delete(ctx, orgID, id); err != nil {
		return err
	}

	if song.AttachmentKey != nil {
		if err := s.storageSvc.DeleteAttachment(ctx, attachmentBucket, *song.AttachmentKey); err != nil {
			log.Printf("Failed to delete attachment %s: %v", *song.AttachmentKey, err)
		}
	}
	if err := s.cacheSvc.DeleteSong(ctx, orgID, id); err != nil {
		log.Printf("Failed to invalidate song cache %s: %v", id.String(), err)
	}
	return nil
}

func (s *songService) List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*models.Song, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.songRepo.List(ctx, orgID, limit, offset)
}

func (s *songService) Search(ctx context.Context, orgID uuid.UUID, query string, limit, offset int) ([]*models.Song, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx, orgID, limit, offset)
	}
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return s.songRepo.Search(ctx, orgID, query, limit, offset)
}

func (s *songService) UploadAttachment(ctx context.Context, orgID, id uuid.UUID, filename, contentType string, reader io.Reader, size int64) (string, error) {
	if _, err := s.songRepo.GetByID(ctx, orgID, id); err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("%s/%s/%s", orgID.String(), id.String(), filename)
	if err := s.storageSvc.UploadAttachment(ctx, attachmentBucket, objectName, contentType, reader, size); err != nil {
		return "", err
	}

	if err := s.songRepo.SetAttachmentKey(ctx, orgID, id, &objectName); err != nil {
		return "", err
	}

	if err := s.cacheSvc.DeleteSong(ctx, orgID, id); err != nil {
		log.Printf("Failed to invalidate song cache %s: %v", id.String(), err)
	}
	return objectName, nil
}

func (s *songService) AttachmentURL(ctx context.Context, orgID, id uuid.UUID) (string, error) {
	song, err := s.GetByID(ctx, orgID, id)
	if err != nil {
		return "", err
	}
	if song.AttachmentKey == nil {
		return "", errors.New("song has no attachment")
	}
	return s.storageSvc.GetPresignedURL(attachmentBucket, *song.AttachmentKey, attachmentURLExpiry)
}
