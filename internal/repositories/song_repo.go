package repositories

import (
	"context"

	"github.com/google/uuid"

	"congregate/internal/models"
)

type SongRepository interface {
	Create(ctx context.Context, song *models.Song) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Song, error)
	Update(ctx context.Context, song *models.Song) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
	List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*models.Song, error)
	Search(ctx context.Context, orgID uuid.UUID, query string, limit, offset int) ([]*models.Song, error)
	SetAttachmentKey(ctx context.Context, orgID, id uuid.UUID, key *string) error
}

type songRepo struct {
	db Database
}

func NewSongRepo(db Database) SongRepository {
	return &songRepo{db: db}
}

func (r *songRepo) Create(ctx context.Context, song *models.Song) error {
	query := `
		INSERT INTO songs (id, organization_id, title, author, ccli_number, default_key, tempo, attachment_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query,
		song.ID, song.OrganizationID, song.Title, song.Author,
		song.CCLINumber, song.DefaultKey, song.Tempo, song.AttachmentKey)
	return err
}

func (r *songRepo) GetByID(ctx context.Context, orgID, id uuid.UUID) (*models.Song, error) {
	song := &models.Song{}
	query := `
		SELECT id, organization_id, title, author, ccli_number, default_key, tempo, attachment_key, created_at, updated_at
		FROM songs
		WHERE organization_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, orgID, id).Scan(
		&song.ID, &song.OrganizationID, &song.Title, &song.Author,
		&song.CCLINumber, &song.DefaultKey, &song.Tempo, &song.AttachmentKey,
		&song.CreatedAt, &song.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return song, nil
}

func (r *songRepo) Update(ctx context.Context, song *models.Song) error {
	query := `
		UPDATE songs
		SET title = $1, author = $2, ccli_number = $3, default_key = $4, tempo = $5, updated_at = NOW()
		WHERE organization_id = $6 AND id = $7
	`
	_, err := r.db.Exec(ctx, query,
		song.Title, song.Author, song.CCLINumber, song.DefaultKey, song.Tempo,
		song.OrganizationID, song.ID)
	return err
}

func (r *songRepo) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	query := `DELETE FROM songs WHERE organization_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, orgID, id)
	return err
}

func (r *songRepo) List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*models.Song, error) {
	query := `
		SELECT id, organization_id, title, author, ccli_number, default_key, tempo, attachment_key, created_at, updated_at
		FROM songs
		WHERE organization_id = $1
		ORDER BY title ASC
		LIMIT $2 OFFSET $3
	`
	return r.queryMany(ctx, query, orgID, limit, offset)
}

func (r *songRepo) Search(ctx context.Context, orgID uuid.UUID, search string, limit, offset int) ([]*models.Song, error) {
	query := `
		SELECT id, organization_id, title, author, ccli_number, default_key, tempo, attachment_key, created_at, updated_at
		FROM songs
		WHERE organization_id = $1 AND (title ILIKE '%' || $2 || '%' OR author ILIKE '%' || $2 || '%')
		ORDER BY title ASC
		LIMIT $3 OFFSET $4
	`
	return r.queryMany(ctx, query, orgID, search, limit, offset)
}

func (r *songRepo) queryMany(ctx context.Context, query string, args ...any) ([]*models.Song, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var songs []*models.Song
	for rows.Next() {
		song := &models.Song{}
		if err := rows.Scan(
			&song.ID, &song.OrganizationID, &song.Title, &song.Author,
			&song.CCLINumber, &song.DefaultKey, &song.Tempo, &song.AttachmentKey,
			&song.CreatedAt, &song.UpdatedAt); err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}

func (r *songRepo) SetAttachmentKey(ctx context.Context, orgID, id uuid.UUID, key *string) error {
	query := `
		UPDATE songs
		SET attachment_key = $1, updated_at = NOW()
		WHERE organization_id = $2 AND id = $3
	`
	_, err := r.db.Exec(ctx, query, key, orgID, id)
	return err
}
