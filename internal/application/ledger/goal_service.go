package ledger

import (
	"context"
	"sort"
	"time"

	"github.com/farmledger/backend/internal/domain/ledger"
	"github.com/farmledger/backend/internal/domain/shared"
	"github.com/farmledger/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	// deadlineHorizonDays bounds how far ahead upcoming deadlines look
	deadlineHorizonDays = 90
	upcomingLimit       = 5
)

// GoalService tracks savings goals
type GoalService struct {
	deps Deps
}

// NewGoalService creates a new GoalService
func NewGoalService(deps Deps) *GoalService {
	return &GoalService{deps: deps.withDefaults()}
}

func toGoalInput(req GoalRequest) ledger.GoalInput {
	return ledger.GoalInput{
		Name:         req.GoalName,
		Type:         ledger.GoalType(req.GoalType),
		TargetAmount: valueobject.NewMoney(req.TargetAmount),
		TargetDate:   req.TargetDate,
		Description:  req.Description,
	}
}

// CreateGoal creates a goal with nothing saved yet
func (s *GoalService) CreateGoal(ctx context.Context, ownerID uuid.UUID, req GoalRequest) (*GoalResponse, error) {
	goal, err := ledger.NewFinancialGoal(ownerID, toGoalInput(req))
	if err != nil {
		return nil, err
	}
	if err := s.deps.mutate(ctx, func(repos Repositories) ([]shared.DomainEvent, error) {
		return nil, repos.Goals().Save(ctx, goal)
	}); err != nil {
		return nil, err
	}
	resp := toGoalResponse(goal)
	return &resp, nil
}

// UpdateGoal edits a goal and re-evaluates whether it is achieved
func (s *GoalService) UpdateGoal(ctx context.Context, ownerID, id uuid.UUID, req GoalRequest) (*GoalResponse, error) {
	in := toGoalInput(req)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var goal *ledger.FinancialGoal
	err := s.deps.mutate(ctx, func(repos Repositories) ([]shared.DomainEvent, error) {
		var err error
		goal, err = repos.Goals().FindByIDForUpdate(ctx, ownerID, id)
		if err != nil {
			return nil, err
		}
		if err := goal.Update(in); err != nil {
			return nil, err
		}
		return nil, repos.Goals().SaveWithLock(ctx, goal)
	})
	if err != nil {
		return nil, err
	}
	resp := toGoalResponse(goal)
	return &resp, nil
}

// DeleteGoal removes a goal
func (s *GoalService) DeleteGoal(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.deps.mutate(ctx, func(repos Repositories) ([]shared.DomainEvent, error) {
		return nil, repos.Goals().Delete(ctx, ownerID, id)
	})
}

// GetGoal returns one goal of the farmer
func (s *GoalService) GetGoal(ctx context.Context, ownerID, id uuid.UUID) (*GoalResponse, error) {
	goal, err := s.deps.UoW.Read().Goals().FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	resp := toGoalResponse(goal)
	return &resp, nil
}

// ListGoals returns the farmer's goals, nearest target date first
func (s *GoalService) ListGoals(ctx context.Context, ownerID uuid.UUID, filter GoalListFilter) ([]GoalResponse, error) {
	f := ledger.GoalFilter{
		Filter:   shared.Filter{All: true, OrderBy: "target_date", OrderDir: "asc"},
		Achieved: filter.IsAchieved,
	}
	if filter.GoalType != "" {
		t := ledger.GoalType(filter.GoalType)
		if !t.IsValid() {
			return nil, shared.NewValidationError("goal_type", "goal type is not valid")
		}
		f.Type = &t
	}

	goals, err := s.deps.UoW.Read().Goals().FindAllForOwner(ctx, ownerID, f)
	if err != nil {
		return nil, err
	}
	out := make([]GoalResponse, len(goals))
	for i := range goals {
		out[i] = toGoalResponse(&goals[i])
	}
	return out, nil
}

// AddContribution adds a positive amount to a goal while holding its row lock
func (s *GoalService) AddContribution(ctx context.Context, ownerID, id uuid.UUID, req ContributionRequest) (*ContributionResponse, error) {
	var goal *ledger.FinancialGoal
	var justAchieved bool
	err := s.deps.mutate(ctx, func(repos Repositories) ([]shared.DomainEvent, error) {
		var err error
		goal, err = repos.Goals().FindByIDForUpdate(ctx, ownerID, id)
		if err != nil {
			return nil, err
		}
		wasAchieved := goal.IsAchieved
		if err := goal.Contribute(valueobject.NewMoney(req.Amount)); err != nil {
			return nil, err
		}
		justAchieved = !wasAchieved && goal.IsAchieved
		if err := repos.Goals().SaveWithLock(ctx, goal); err != nil {
			return nil, err
		}
		return goal.GetDomainEvents(), nil
	})
	if err != nil {
		return nil, err
	}

	if justAchieved {
		s.deps.Logger.Info("financial goal achieved",
			zap.String("goal_id", goal.ID.String()),
			zap.String("owner_id", ownerID.String()),
		)
	}
	return &ContributionResponse{Goal: toGoalResponse(goal), JustAchieved: justAchieved}, nil
}

// ProgressSummary aggregates progress over every goal of the farmer
func (s *GoalService) ProgressSummary(ctx context.Context, ownerID uuid.UUID) (*GoalProgressResponse, error) {
	goals, err := s.deps.UoW.Read().Goals().FindAllForOwner(ctx, ownerID, ledger.GoalFilter{
		Filter: shared.Filter{All: true, OrderBy: "target_date", OrderDir: "asc"},
	})
	if err != nil {
		return nil, err
	}
	return summarizeGoals(goals, ledger.DateOf(s.deps.today())), nil
}

func summarizeGoals(goals []ledger.FinancialGoal, today time.Time) *GoalProgressResponse {
	resp := &GoalProgressResponse{
		TotalGoals:         len(goals),
		TotalTargetAmount:  decimal.Zero,
		TotalCurrentAmount: decimal.Zero,
		ByType:             []GoalTypeProgress{},
		UpcomingDeadlines:  []GoalResponse{},
	}
	horizon := today.AddDate(0, 0, deadlineHorizonDays)
	byType := make(map[ledger.GoalType]*GoalTypeProgress)
	var types []ledger.GoalType
	var upcoming []*ledger.FinancialGoal

	for i := range goals {
		g := &goals[i]
		if g.IsAchieved {
			resp.AchievedGoals++
		}
		resp.TotalTargetAmount = resp.TotalTargetAmount.Add(g.TargetAmount)
		resp.TotalCurrentAmount = resp.TotalCurrentAmount.Add(g.CurrentAmount)

		p, ok := byType[g.Type]
		if !ok {
			p = &GoalTypeProgress{
				GoalType:      string(g.Type),
				DisplayName:   g.Type.DisplayName(),
				TargetAmount:  decimal.Zero,
				CurrentAmount: decimal.Zero,
			}
			byType[g.Type] = p
			types = append(types, g.Type)
		}
		p.Count++
		if g.IsAchieved {
			p.Achieved++
		}
		p.TargetAmount = p.TargetAmount.Add(g.TargetAmount)
		p.CurrentAmount = p.CurrentAmount.Add(g.CurrentAmount)

		if !g.IsAchieved && !g.TargetDate.Before(today) && !g.TargetDate.After(horizon) {
			upcoming = append(upcoming, g)
		}
	}

	resp.ActiveGoals = resp.TotalGoals - resp.AchievedGoals
	resp.AchievementRate = valueobject.Percentage(decimal.NewFromInt(int64(resp.AchievedGoals)), decimal.NewFromInt(int64(resp.TotalGoals)))
	resp.OverallProgress = valueobject.Percentage(resp.TotalCurrentAmount, resp.TotalTargetAmount)

	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, t := range types {
		resp.ByType = append(resp.ByType, *byType[t])
	}

	sort.SliceStable(upcoming, func(i, j int) bool { return upcoming[i].TargetDate.Before(upcoming[j].TargetDate) })
	for i, g := range upcoming {
		if i == upcomingLimit {
			break
		}
		resp.UpcomingDeadlines = append(resp.UpcomingDeadlines, toGoalResponse(g))
	}
	return resp
}
