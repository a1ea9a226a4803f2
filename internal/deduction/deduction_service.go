package deduction

import (
	"context"
	"errors"
	"fmt"

	deductionerrors "go-payroll/internal/deduction/errors"
	"go-payroll/internal/shared/counter"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=deduction_service.go -destination=mock/deduction_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req DeductionRequest) (DeductionResponse, error)
	GetAll(ctx context.Context) ([]DeductionResponse, error)
	GetByCode(ctx context.Context, code string) (DeductionResponse, error)
	GetByName(ctx context.Context, name string) (DeductionResponse, error)
	Update(ctx context.Context, code string, req DeductionRequest) (DeductionResponse, error)
	Delete(ctx context.Context, code string) error

	// EnsureDefaults inserts each required rule with its bootstrap
	// percentage iff no rule with that name exists. Idempotent; never
	// overwrites a customized percentage.
	EnsureDefaults(ctx context.Context) error

	// Snapshot reads the full rule set once and verifies every required
	// name is present, failing with INVALID_STATE naming the first
	// missing rule. Used as the generation precondition.
	Snapshot(ctx context.Context) (RuleSet, error)
}

type service struct {
	db      *gorm.DB
	repo    Repository
	counter counter.Repository
	logger  *zap.Logger
}

func NewService(db *gorm.DB, repo Repository, counterRepo counter.Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("deduction.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("deduction.service")
	}
	return &service{
		db:      db,
		repo:    repo,
		counter: counterRepo,
		logger:  l,
	}
}

func (s *service) Create(ctx context.Context, req DeductionRequest) (DeductionResponse, error) {
	s.logger.Debug("create deduction requested", zap.String("name", req.Name))

	var created Deduction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		exists, err := qtx.ExistsByName(ctx, req.Name)
		if err != nil {
			s.logger.Error("create deduction lookup failed", zap.Error(err))
			return err
		}
		if exists {
			s.logger.Warn("create deduction name taken", zap.String("name", req.Name))
			return deductionerrors.NameTaken(req.Name)
		}

		code, err := s.nextCode(ctx)
		if err != nil {
			s.logger.Error("create deduction generate code failed", zap.Error(err))
			return err
		}

		created = Deduction{
			ID:         uuid.New(),
			Code:       code,
			Name:       req.Name,
			Percentage: req.Percentage,
		}
		if err := qtx.Create(ctx, &created); err != nil {
			s.logger.Error("create deduction persist failed", zap.Error(err))
			return mapRepositoryError(err, req.Name)
		}
		return nil
	})
	if err != nil {
		return DeductionResponse{}, err
	}

	s.logger.Info("create deduction success",
		zap.String("code", created.Code),
		zap.String("name", created.Name),
	)
	return mapToResponse(created), nil
}

func (s *service) GetAll(ctx context.Context) ([]DeductionResponse, error) {
	deds, err := s.repo.FindAll(ctx)
	if err != nil {
		s.logger.Error("get all deductions failed", zap.Error(err))
		return nil, mapRepositoryError(err, "")
	}

	return mapToListResponse(deds), nil
}

func (s *service) GetByCode(ctx context.Context, code string) (DeductionResponse, error) {
	ded, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		s.logger.Warn("get deduction by code failed", zap.String("code", code), zap.Error(err))
		return DeductionResponse{}, notFoundOr(err, deductionerrors.NotFoundByCode(code))
	}

	return mapToResponse(*ded), nil
}

func (s *service) GetByName(ctx context.Context, name string) (DeductionResponse, error) {
	ded, err := s.repo.FindByName(ctx, name)
	if err != nil {
		s.logger.Warn("get deduction by name failed", zap.String("name", name), zap.Error(err))
		return DeductionResponse{}, notFoundOr(err, deductionerrors.NotFoundByName(name))
	}

	return mapToResponse(*ded), nil
}

func (s *service) Update(ctx context.Context, code string, req DeductionRequest) (DeductionResponse, error) {
	s.logger.Debug("update deduction requested",
		zap.String("code", code),
		zap.String("name", req.Name),
	)

	var updated Deduction
	err := s.db.Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		ded, err := qtx.FindByCode(ctx, code)
		if err != nil {
			return notFoundOr(err, deductionerrors.NotFoundByCode(code))
		}

		// Renaming must not steal a name held by another rule
		if ded.Name != req.Name {
			exists, err := qtx.ExistsByName(ctx, req.Name)
			if err != nil {
				return err
			}
			if exists {
				s.logger.Warn("update deduction name taken", zap.String("name", req.Name))
				return deductionerrors.NameTaken(req.Name)
			}
		}

		ded.Name = req.Name
		ded.Percentage = req.Percentage

		if err := qtx.Update(ctx, ded); err != nil {
			s.logger.Error("update deduction persist failed", zap.Error(err))
			return mapRepositoryError(err, req.Name)
		}

		updated = *ded
		return nil
	})
	if err != nil {
		return DeductionResponse{}, err
	}

	s.logger.Info("update deduction success", zap.String("code", code))
	return mapToResponse(updated), nil
}

func (s *service) Delete(ctx context.Context, code string) error {
	s.logger.Debug("delete deduction requested", zap.String("code", code))

	err := s.db.Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		if _, err := qtx.FindByCode(ctx, code); err != nil {
			return notFoundOr(err, deductionerrors.NotFoundByCode(code))
		}

		return qtx.Delete(ctx, code)
	})
	if err != nil {
		return err
	}

	s.logger.Info("delete deduction success", zap.String("code", code))
	return nil
}

func (s *service) EnsureDefaults(ctx context.Context) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		qtx := s.repo.WithTx(tx)

		for _, name := range RequiredNames {
			exists, err := qtx.ExistsByName(ctx, name)
			if err != nil {
				return err
			}
			if exists {
				continue
			}

			code, err := s.nextCode(ctx)
			if err != nil {
				return err
			}

			ded := Deduction{
				ID:         uuid.New(),
				Code:       code,
				Name:       name,
				Percentage: DefaultPercentages[name],
			}
			if err := qtx.Create(ctx, &ded); err != nil {
				return mapRepositoryError(err, name)
			}
			s.logger.Info("created default deduction",
				zap.String("name", name),
				zap.Float64("percentage", ded.Percentage),
			)
		}

		return nil
	})
}

func (s *service) Snapshot(ctx context.Context) (RuleSet, error) {
	deds, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	rules := make(RuleSet, len(deds))
	for _, d := range deds {
		rules[d.Name] = d
	}

	for _, name := range RequiredNames {
		if _, ok := rules[name]; !ok {
			s.logger.Error("required deduction missing", zap.String("name", name))
			return nil, deductionerrors.MissingRule(name)
		}
	}

	return rules, nil
}

func (s *service) nextCode(ctx context.Context) (string, error) {
	nextVal, err := s.counter.GetNextValue(ctx, "deduction_code")
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("DED-%06d", nextVal), nil
}

func notFoundOr(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}

func mapToResponse(ded Deduction) DeductionResponse {
	return DeductionResponse{
		ID:         ded.ID.String(),
		Code:       ded.Code,
		Name:       ded.Name,
		Percentage: ded.Percentage,
	}
}

func mapToListResponse(deds []Deduction) []DeductionResponse {
	resp := make([]DeductionResponse, len(deds))
	for i, d := range deds {
		resp[i] = mapToResponse(d)
	}
	return resp
}
