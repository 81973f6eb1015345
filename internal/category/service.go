package category

import (
	"context"
	"sort"
	"sync"
	"time"

	"spalena53-be/internal/logger"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

const (
	treeCacheKey = "tree"
	cacheTTL     = 5 * time.Minute
)

type Service interface {
	// List returns top level categories with their children nested, sorted
	// by name in Czech collation.
	List(ctx context.Context) ([]*Category, error)
	GetBySlug(ctx context.Context, slug string) (*Category, error)
}

type service struct {
	repo  Repository
	cache *expirable.LRU[string, []*Category]

	collMu sync.Mutex
	coll   *collate.Collator
}

func NewService(repo Repository) Service {
	return &service{
		repo:  repo,
		cache: expirable.NewLRU[string, []*Category](1, nil, cacheTTL),
		coll:  collate.New(language.Czech),
	}
}

func (s *service) List(ctx context.Context) ([]*Category, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "List"),
	)

	if cached, ok := s.cache.Get(treeCacheKey); ok {
		return cached, nil
	}

	all, err := s.repo.List(ctx)
	if err != nil {
		log.Error("failed to list categories", zap.Error(err))
		return nil, err
	}

	roots := s.buildTree(all)
	s.cache.Add(treeCacheKey, roots)
	return roots, nil
}

func (s *service) buildTree(all []*Category) []*Category {
	byID := make(map[string]*Category, len(all))
	for _, c := range all {
		byID[c.ID.String()] = c
	}

	roots := make([]*Category, 0, len(all))
	for _, c := range all {
		if c.ParentID != nil {
			if parent, ok := byID[c.ParentID.String()]; ok {
				parent.Children = append(parent.Children, c)
				continue
			}
		}
		roots = append(roots, c)
	}

	s.sortByName(roots)
	for _, c := range all {
		s.sortByName(c.Children)
	}
	return roots
}

// collate.Collator keeps internal buffers and is not safe for concurrent use.
func (s *service) sortByName(list []*Category) {
	if len(list) < 2 {
		return
	}
	s.collMu.Lock()
	defer s.collMu.Unlock()
	sort.SliceStable(list, func(i, j int) bool {
		return s.coll.CompareString(list[i].Name, list[j].Name) < 0
	})
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*Category, error) {
	return s.repo.GetBySlug(ctx, slug)
}
