package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/farmledger/backend/internal/domain/ledger"
	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CategoryService exposes the category registry
type CategoryService struct {
	deps Deps
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(deps Deps) *CategoryService {
	return &CategoryService{deps: deps.withDefaults()}
}

// ListCategories returns the registry, optionally narrowed to one kind
func (s *CategoryService) ListCategories(ctx context.Context, kind string) ([]CategoryResponse, error) {
	var k *ledger.CategoryKind
	if kind != "" {
		parsed := ledger.CategoryKind(strings.ToUpper(kind))
		if !parsed.IsValid() {
			return nil, shared.NewValidationError("kind", "kind must be EXPENSE or INCOME")
		}
		k = &parsed
	}

	categories, err := s.deps.UoW.Read().Categories().FindAll(ctx, k)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		out[i] = CategoryResponse{
			ID:          c.ID,
			Name:        c.Name,
			Kind:        string(c.Kind),
			Description: c.Description,
			IsActive:    c.IsActive,
		}
	}
	return out, nil
}

// SeedDefaults inserts every default category missing from the registry.
// Installs that run the SQL migrations already have them.
func (s *CategoryService) SeedDefaults(ctx context.Context) error {
	seeds := []struct {
		kind  ledger.CategoryKind
		items []ledger.CategorySeed
	}{
		{ledger.CategoryKindExpense, ledger.DefaultExpenseCategories},
		{ledger.CategoryKindIncome, ledger.DefaultIncomeCategories},
	}

	inserted := 0
	err := s.deps.UoW.Execute(ctx, func(repos Repositories) error {
		for _, group := range seeds {
			for _, seed := range group.items {
				_, err := repos.Categories().FindByName(ctx, group.kind, seed.Name)
				if err == nil {
					continue
				}
				if !shared.IsNotFound(err) {
					return err
				}
				category := &ledger.Category{
					ID:          uuid.New(),
					Name:        seed.Name,
					Kind:        group.kind,
					Description: seed.Description,
					IsActive:    true,
					CreatedAt:   s.deps.today(),
				}
				if err := repos.Categories().Save(ctx, category); err != nil {
					return fmt.Errorf("seed category %s: %w", seed.Name, err)
				}
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if inserted > 0 {
		s.deps.Logger.Info("seeded default categories", zap.Int("count", inserted))
	}
	return nil
}
