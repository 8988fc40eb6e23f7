package handler_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/repository"

	"gorm.io/gorm"
)

// memStore keeps every table in memory and implements the repository
// interfaces closely enough for the HTTP tests.
type memStore struct {
	mu         sync.Mutex
	nextID     int64
	users      map[string]*models.User
	tokens     map[string]*models.RefreshToken
	categories map[string]*models.Category
	genres     map[string]*models.Genre
	titles     map[int64]*models.Title
	reviews    map[int64]*models.Review
	comments   map[int64]*models.Comment
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[string]*models.User{},
		tokens:     map[string]*models.RefreshToken{},
		categories: map[string]*models.Category{},
		genres:     map[string]*models.Genre{},
		titles:     map[int64]*models.Title{},
		reviews:    map[int64]*models.Review{},
		comments:   map[int64]*models.Comment{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func notFound(op string) error {
	return fmt.Errorf("%s: %w", op, gorm.ErrRecordNotFound)
}

func duplicate(op, constraint string) error {
	return fmt.Errorf("%s: %w (%s)", op, repository.ErrDuplicate, constraint)
}

func window[T any](items []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// users

type memUsers struct{ *memStore }

func (r memUsers) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.users {
		if other.Username == u.Username {
			return duplicate("create user", "idx_users_username")
		}
		if other.Email == u.Email {
			return duplicate("create user", "idx_users_email")
		}
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r memUsers) Update(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r memUsers) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r memUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, notFound("find user by username")
}

func (r memUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, notFound("find user by id")
}

func (r memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, notFound("find user by email")
}

func (r memUsers) List(_ context.Context, search string, page, pageSize int) ([]models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, u := range r.users {
		if search == "" || strings.Contains(strings.ToLower(u.Username), strings.ToLower(search)) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return window(out, page, pageSize), int64(len(out)), nil
}

func (r memUsers) TouchLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.LastLogin = &at
	}
	return nil
}

func (r memUsers) UpdateConfirmation(_ context.Context, id string, hash *string, sentAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.ConfirmationCode = hash
		u.ConfirmationSentAt = sentAt
	}
	return nil
}

func (r memUsers) ConsumeConfirmation(_ context.Context, id, hash string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.ConfirmationCode == nil || *u.ConfirmationCode != hash {
		return false, nil
	}
	u.ConfirmationCode = nil
	u.ConfirmationSentAt = nil
	u.LastLogin = &at
	return true, nil
}

// refresh tokens

type memTokens struct{ *memStore }

func (r memTokens) Create(_ context.Context, t *models.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *t
	r.tokens[t.ID] = &cp
	return nil
}

func (r memTokens) FindByID(_ context.Context, id string) (*models.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, notFound("find refresh token")
}

func (r memTokens) Revoke(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tokens[id]; ok {
		t.Revoked = true
	}
	return nil
}

func (r memTokens) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, t := range r.tokens {
		if t.Revoked || t.ExpiresAt.Before(now) {
			delete(r.tokens, id)
			n++
		}
	}
	return n, nil
}

// categories and genres

type memCategories struct{ *memStore }

func (r memCategories) List(_ context.Context, search string, page, pageSize int) ([]models.Category, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Category
	for _, c := range r.categories {
		if search == "" || strings.Contains(strings.ToLower(c.Name), strings.ToLower(search)) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return window(out, page, pageSize), int64(len(out)), nil
}

func (r memCategories) Create(_ context.Context, c *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[c.Slug]; ok {
		return duplicate("create category", "idx_categories_slug")
	}
	c.ID = r.id()
	cp := *c
	r.categories[c.Slug] = &cp
	return nil
}

func (r memCategories) FindBySlug(_ context.Context, slug string) (*models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.categories[slug]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, notFound("find category")
}

func (r memCategories) FindBySlugs(_ context.Context, slugs []string) ([]models.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Category
	for _, slug := range slugs {
		if c, ok := r.categories[slug]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r memCategories) DeleteBySlug(_ context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[slug]; !ok {
		return notFound("delete category")
	}
	delete(r.categories, slug)
	return nil
}

type memGenres struct{ *memStore }

func (r memGenres) List(_ context.Context, search string, page, pageSize int) ([]models.Genre, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Genre
	for _, g := range r.genres {
		if search == "" || strings.Contains(strings.ToLower(g.Name), strings.ToLower(search)) {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return window(out, page, pageSize), int64(len(out)), nil
}

func (r memGenres) Create(_ context.Context, g *models.Genre) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.genres[g.Slug]; ok {
		return duplicate("create genre", "idx_genres_slug")
	}
	g.ID = r.id()
	cp := *g
	r.genres[g.Slug] = &cp
	return nil
}

func (r memGenres) FindBySlug(_ context.Context, slug string) (*models.Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.genres[slug]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, notFound("find genre")
}

func (r memGenres) FindBySlugs(_ context.Context, slugs []string) ([]models.Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Genre
	for _, slug := range slugs {
		if g, ok := r.genres[slug]; ok {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r memGenres) DeleteBySlug(_ context.Context, slug string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.genres[slug]; !ok {
		return notFound("delete genre")
	}
	delete(r.genres, slug)
	return nil
}

// titles

type memTitles struct{ *memStore }

func (r memTitles) List(_ context.Context, f repository.TitleFilter, page, pageSize int) ([]models.Title, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Title
	for _, t := range r.titles {
		if f.Year != 0 && t.Year != f.Year {
			continue
		}
		if f.Name != "" && !strings.Contains(strings.ToLower(t.Name), strings.ToLower(f.Name)) {
			continue
		}
		if f.Category != "" && (t.Category == nil || t.Category.Slug != f.Category) {
			continue
		}
		if f.Genre != "" && !hasGenre(t, f.Genre) {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return window(out, page, pageSize), int64(len(out)), nil
}

func hasGenre(t *models.Title, slug string) bool {
	for _, g := range t.Genres {
		if g.Slug == slug {
			return true
		}
	}
	return false
}

func (r memTitles) FindByID(_ context.Context, id int64) (*models.Title, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.titles[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, notFound("find title")
}

func (r memTitles) Create(_ context.Context, t *models.Title) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = r.id()
	cp := *t
	r.titles[t.ID] = &cp
	return nil
}

func (r memTitles) Update(_ context.Context, t *models.Title, replaceGenres bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.titles[t.ID]
	if !ok {
		return notFound("update title")
	}
	genres := stored.Genres
	cp := *t
	if !replaceGenres {
		cp.Genres = genres
	}
	r.titles[t.ID] = &cp
	return nil
}

func (r memTitles) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.titles[id]; !ok {
		return notFound("delete title")
	}
	delete(r.titles, id)
	for rid, rv := range r.reviews {
		if rv.TitleID == id {
			delete(r.reviews, rid)
		}
	}
	return nil
}

// reviews

type memReviews struct{ *memStore }

func (r memReviews) withAuthor(rv models.Review) models.Review {
	if u, ok := r.users[rv.AuthorID]; ok {
		rv.Author = *u
	}
	return rv
}

func (r memReviews) Create(_ context.Context, rv *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, other := range r.reviews {
		if other.TitleID == rv.TitleID && other.AuthorID == rv.AuthorID {
			return duplicate("create review", "idx_reviews_author_title")
		}
	}
	rv.ID = r.id()
	rv.PubDate = time.Now()
	cp := *rv
	r.reviews[rv.ID] = &cp
	return nil
}

func (r memReviews) Update(_ context.Context, rv *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.reviews[rv.ID]; ok {
		stored.Text, stored.Score = rv.Text, rv.Score
	}
	return nil
}

func (r memReviews) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.reviews, id)
	return nil
}

func (r memReviews) FindByID(_ context.Context, id int64) (*models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rv, ok := r.reviews[id]; ok {
		cp := r.withAuthor(*rv)
		return &cp, nil
	}
	return nil, notFound("find review")
}

func (r memReviews) ExistsForAuthor(_ context.Context, titleID int64, authorID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rv := range r.reviews {
		if rv.TitleID == titleID && rv.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

func (r memReviews) ListByTitle(_ context.Context, titleID int64, page, pageSize int) ([]models.Review, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Review
	for _, rv := range r.reviews {
		if rv.TitleID == titleID {
			out = append(out, r.withAuthor(*rv))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return window(out, page, pageSize), int64(len(out)), nil
}

func (r memReviews) ScoresByTitle(_ context.Context, titleIDs []int64) (map[int64][]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := map[int64]bool{}
	for _, id := range titleIDs {
		want[id] = true
	}
	scores := map[int64][]int{}
	for _, rv := range r.reviews {
		if want[rv.TitleID] {
			scores[rv.TitleID] = append(scores[rv.TitleID], rv.Score)
		}
	}
	return scores, nil
}

// comments

type memComments struct{ *memStore }

func (r memComments) withAuthor(c models.Comment) models.Comment {
	if u, ok := r.users[c.AuthorID]; ok {
		c.Author = *u
	}
	return c
}

func (r memComments) Create(_ context.Context, c *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.id()
	c.PubDate = time.Now()
	cp := *c
	r.comments[c.ID] = &cp
	return nil
}

func (r memComments) Update(_ context.Context, c *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.comments[c.ID]; ok {
		stored.Text = c.Text
	}
	return nil
}

func (r memComments) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.comments, id)
	return nil
}

func (r memComments) FindByID(_ context.Context, id int64) (*models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.comments[id]; ok {
		cp := r.withAuthor(*c)
		return &cp, nil
	}
	return nil, notFound("find comment")
}

func (r memComments) ListByReview(_ context.Context, reviewID int64, page, pageSize int) ([]models.Comment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Comment
	for _, c := range r.comments {
		if c.ReviewID == reviewID {
			out = append(out, r.withAuthor(*c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return window(out, page, pageSize), int64(len(out)), nil
}
