package repository

import (
	"context"

	"yamdb/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// SlugRepository stores named, slug-addressed catalogue entries.
type SlugRepository[T models.Category | models.Genre] interface {
	List(ctx context.Context, search string, page, pageSize int) ([]T, int64, error)
	Create(ctx context.Context, item *T) error
	FindBySlug(ctx context.Context, slug string) (*T, error)
	FindBySlugs(ctx context.Context, slugs []string) ([]T, error)
	DeleteBySlug(ctx context.Context, slug string) error
}

type (
	CategoryRepository = SlugRepository[models.Category]
	GenreRepository    = SlugRepository[models.Genre]
)

type slugRepo[T models.Category | models.Genre] struct {
	db   *gorm.DB
	kind string
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &slugRepo[models.Category]{db: db, kind: "category"}
}

func NewGenreRepository(db *gorm.DB) GenreRepository {
	return &slugRepo[models.Genre]{db: db, kind: "genre"}
}

func (r *slugRepo[T]) List(ctx context.Context, search string, page, pageSize int) ([]T, int64, error) {
	var list []T
	var total int64

	q := r.db.WithContext(ctx).Model(new(T))
	if search != "" {
		q = q.Where("name ILIKE ?", "%"+search+"%")
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, wrap("count "+r.kind, err)
	}
	if err := q.Order("name asc").Limit(pageSize).Offset(offset(page, pageSize)).Find(&list).Error; err != nil {
		return nil, 0, wrap("list "+r.kind, err)
	}
	return list, total, nil
}

func (r *slugRepo[T]) Create(ctx context.Context, item *T) error {
	return wrap("create "+r.kind, r.db.WithContext(ctx).Create(item).Error)
}

func (r *slugRepo[T]) FindBySlug(ctx context.Context, slug string) (*T, error) {
	var item T
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&item).Error; err != nil {
		return nil, wrap("find "+r.kind, err)
	}
	return &item, nil
}

// FindBySlugs returns the entries matching slugs; missing slugs are simply absent.
func (r *slugRepo[T]) FindBySlugs(ctx context.Context, slugs []string) ([]T, error) {
	var list []T
	if len(slugs) == 0 {
		return list, nil
	}
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Find(&list).Error; err != nil {
		return nil, wrap("find "+r.kind+" by slugs", err)
	}
	return list, nil
}

func (r *slugRepo[T]) DeleteBySlug(ctx context.Context, slug string) error {
	res := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(new(T))
	if res.Error != nil {
		return wrap("delete "+r.kind, res.Error)
	}
	if res.RowsAffected == 0 {
		return wrap("delete "+r.kind, gorm.ErrRecordNotFound)
	}
	return nil
}
