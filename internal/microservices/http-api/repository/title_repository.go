package repository

import (
	"context"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// TitleFilter narrows a title listing. Zero values are ignored.
type TitleFilter struct {
	Genre    string // genre slug
	Category string // category slug
	Name     string // case-insensitive substring
	Year     int
}

type TitleRepository interface {
	List(ctx context.Context, filter TitleFilter, page, pageSize int) ([]models.Title, int64, error)
	FindByID(ctx context.Context, id int64) (*models.Title, error)
	Create(ctx context.Context, t *models.Title) error
	Update(ctx context.Context, t *models.Title, replaceGenres bool) error
	Delete(ctx context.Context, id int64) error
}

type titleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) TitleRepository {
	return &titleRepository{db: db}
}

func (r *titleRepository) List(ctx context.Context, filter TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	var list []models.Title
	var total int64

	q := r.db.WithContext(ctx).Model(&models.Title{})
	if filter.Genre != "" {
		q = q.Where("titles.id IN (?)", r.db.Table("title_genres tg").
			Select("tg.title_id").
			Joins("JOIN genres g ON g.id = tg.genre_id").
			Where("g.slug = ?", filter.Genre))
	}
	if filter.Category != "" {
		q = q.Joins("JOIN categories c ON c.id = titles.category_id").Where("c.slug = ?", filter.Category)
	}
	if filter.Name != "" {
		q = q.Where("titles.name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.Year != 0 {
		q = q.Where("titles.year = ?", filter.Year)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap("count titles", err)
	}
	if err := q.Preload("Category").
		Preload("Genres").
		Order("titles.id asc").
		Limit(pageSize).
		Offset(offset(page, pageSize)).
		Find(&list).Error; err != nil {
		return nil, 0, wrap("list titles", err)
	}
	return list, total, nil
}

func (r *titleRepository) FindByID(ctx context.Context, id int64) (*models.Title, error) {
	var t models.Title
	if err := r.db.WithContext(ctx).Preload("Category").Preload("Genres").First(&t, id).Error; err != nil {
		return nil, wrap("find title", err)
	}
	return &t, nil
}

// Create inserts the title and its genre links in one transaction.
func (r *titleRepository) Create(ctx context.Context, t *models.Title) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// genres already exist; only the join rows are new
		return tx.Omit("Category", "Genres.*").Create(t).Error
	})
	return wrap("create title", err)
}

// Update saves scalar fields and, when asked, replaces the genre set, atomically.
func (r *titleRepository) Update(ctx context.Context, t *models.Title, replaceGenres bool) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(t).
			Select("name", "year", "description", "category_id").
			Updates(map[string]any{
				"name":        t.Name,
				"year":        t.Year,
				"description": t.Description,
				"category_id": t.CategoryID,
			}).Error; err != nil {
			return err
		}
		if !replaceGenres {
			return nil
		}
		return tx.Model(t).Association("Genres").Replace(t.Genres)
	})
	return wrap("update title", err)
}

func (r *titleRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&models.Title{}, id)
	if res.Error != nil {
		return wrap("delete title", res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("delete title", gorm.ErrRecordNotFound)
	}
	return nil
}
