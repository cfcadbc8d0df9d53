package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gopkg.in/guregu/null.v3"

	"properly.homes/backend/internal/constant"
	"properly.homes/backend/internal/model"
	modelcache "properly.homes/backend/internal/model/cache"
	"properly.homes/backend/internal/model/types"
	"properly.homes/backend/internal/pkg/prerr"
	"properly.homes/backend/internal/repo"
)

const (
	blogCacheTTL  = time.Hour
	maxSlugSuffix = 100
	maxSlugRunes  = 80
	fallbackSlug  = "post"
)

type Blog struct {
	Posts BlogPostStore

	now func() time.Time
}

func NewBlog(posts *repo.BlogPost) *Blog {
	modelcache.Initialize()
	return &Blog{
		Posts: posts,
		now:   time.Now,
	}
}

func (s *Blog) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// ReadingMinutes estimates the reading time of a markdown body.
func ReadingMinutes(body string) int {
	minutes := len(strings.Fields(body)) / constant.BlogWordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

func (s *Blog) ListPublished(ctx context.Context, query *types.BlogListQuery) (*types.Page[*model.BlogPost], error) {
	offset, limit := query.Normalize()
	items, total, err := s.Posts.ListPublished(ctx, query.Lang, query.Category, query.Tag, offset, limit)
	if err != nil {
		return nil, err
	}
	return types.NewPage(items, total, query.Pagination), nil
}

// Cache: blogPost#slug, 1 hr
func (s *Blog) GetPublished(ctx context.Context, postSlug string) (*model.BlogPost, error) {
	var post model.BlogPost
	_, err := modelcache.BlogPostBySlug.MutexGetSet(postSlug, &post, func() (model.BlogPost, error) {
		p, err := s.Posts.GetPublishedBySlug(ctx, postSlug)
		if err != nil {
			return model.BlogPost{}, err
		}
		return *p, nil
	}, blogCacheTTL)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Cache: blogCategories#lang, 1 hr
func (s *Blog) Categories(ctx context.Context, lang string) ([]*model.BlogCategory, error) {
	if lang == "" {
		lang = constant.DefaultLanguage
	}
	var categories []*model.BlogCategory
	_, err := modelcache.BlogCategoriesByLang.MutexGetSet(lang, &categories, func() ([]*model.BlogCategory, error) {
		return s.Posts.Categories(ctx, lang)
	}, blogCacheTTL)
	return categories, err
}

func (s *Blog) ListAll(ctx context.Context, query *types.AdminBlogListQuery) (*types.Page[*model.BlogPost], error) {
	offset, limit := query.Normalize()
	items, total, err := s.Posts.ListAll(ctx, query.Status, offset, limit)
	if err != nil {
		return nil, err
	}
	return types.NewPage(items, total, query.Pagination), nil
}

func (s *Blog) Get(ctx context.Context, postID int64) (*model.BlogPost, error) {
	return s.Posts.GetByID(ctx, postID)
}

// uniqueSlug derives a slug from title, suffixing -2, -3 and so on when it is taken.
func (s *Blog) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := slug.Make(title)
	if r := []rune(base); len(r) > maxSlugRunes {
		base = strings.Trim(string(r[:maxSlugRunes]), "-")
	}
	if base == "" {
		base = fallbackSlug
	}

	candidate := base
	for i := 2; i <= maxSlugSuffix+1; i++ {
		exists, err := s.Posts.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = base + "-" + strconv.Itoa(i)
	}
	return "", prerr.ErrConflict.Msg("too many posts share the slug %q", base)
}

func (s *Blog) Create(ctx context.Context, authorID int64, req *types.BlogPostRequest) (*model.BlogPost, error) {
	postSlug, err := s.uniqueSlug(ctx, req.Title)
	if err != nil {
		return nil, err
	}
	lang := req.Language
	if lang == "" {
		lang = constant.DefaultLanguage
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}

	post := &model.BlogPost{
		Slug:           postSlug,
		Language:       lang,
		Title:          req.Title,
		Excerpt:        req.Excerpt,
		Body:           req.Body,
		CoverImageURL:  null.NewString(req.CoverImageURL, req.CoverImageURL != ""),
		Category:       req.Category,
		Tags:           tags,
		AuthorID:       null.NewInt(authorID, authorID != 0),
		Status:         constant.BlogStatusDraft,
		ReadingMinutes: ReadingMinutes(req.Body),
	}
	if err := s.Posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Update applies a partial edit. The slug follows the title until the post is first published.
func (s *Blog) Update(ctx context.Context, postID int64, req *types.BlogPostUpdateRequest) (*model.BlogPost, error) {
	post, err := s.Posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	oldSlug := post.Slug

	if req.Title.Valid && req.Title.String != post.Title {
		post.Title = req.Title.String
		if !post.PublishedAt.Valid {
			if post.Slug, err = s.uniqueSlug(ctx, post.Title); err != nil {
				return nil, err
			}
		}
	}
	if req.Excerpt.Valid {
		post.Excerpt = req.Excerpt.String
	}
	if req.Body.Valid {
		post.Body = req.Body.String
		post.ReadingMinutes = ReadingMinutes(post.Body)
	}
	if req.CoverImageURL.Valid {
		post.CoverImageURL = null.NewString(req.CoverImageURL.String, req.CoverImageURL.String != "")
	}
	if req.Category.Valid {
		post.Category = req.Category.String
	}
	if req.Tags != nil {
		post.Tags = req.Tags
	}

	if err := s.Posts.Update(ctx, post); err != nil {
		return nil, err
	}
	s.dropCaches(oldSlug, post.Slug)
	return post, nil
}

func (s *Blog) setStatus(ctx context.Context, postID int64, status string) (*model.BlogPost, error) {
	post, err := s.Posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	post.Status = status
	if status == constant.BlogStatusPublished && !post.PublishedAt.Valid {
		post.PublishedAt = null.TimeFrom(s.clock())
	}
	if err := s.Posts.Update(ctx, post); err != nil {
		return nil, err
	}
	s.dropCaches(post.Slug)
	return post, nil
}

func (s *Blog) Publish(ctx context.Context, postID int64) (*model.BlogPost, error) {
	return s.setStatus(ctx, postID, constant.BlogStatusPublished)
}

func (s *Blog) Archive(ctx context.Context, postID int64) (*model.BlogPost, error) {
	return s.setStatus(ctx, postID, constant.BlogStatusArchived)
}

func (s *Blog) Delete(ctx context.Context, postID int64) error {
	post, err := s.Posts.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if err := s.Posts.Delete(ctx, postID); err != nil {
		return err
	}
	s.dropCaches(post.Slug)
	return nil
}

func (s *Blog) dropCaches(slugs ...string) {
	for _, sl := range slugs {
		if err := modelcache.BlogPostBySlug.Delete(sl); err != nil {
			log.Warn().Err(errors.WithStack(err)).Str("evt.name", "blog.cache.drop_failed").Str("slug", sl).Msg("failed to drop cached post")
		}
	}
	if err := modelcache.BlogCategoriesByLang.Flush(); err != nil {
		log.Warn().Err(err).Str("evt.name", "blog.cache.drop_failed").Msg("failed to drop blog categories")
	}
}
