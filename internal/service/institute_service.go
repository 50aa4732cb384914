package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"teachload/backend/internal/dto"
	"teachload/backend/internal/model"
	"teachload/backend/internal/repository"
)

var ErrInstituteNotFound = errors.New("研究所不存在")

// InstituteService 研究所管理业务接口
type InstituteService interface {
	Create(ctx context.Context, req *dto.CreateInstituteRequest, callerID string) (*dto.InstituteDetailResponse, error)
	GetByID(ctx context.Context, id string) (*dto.InstituteDetailResponse, error)
	List(ctx context.Context) ([]dto.InstituteDetailResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateInstituteRequest, callerID string) (*dto.InstituteDetailResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type instituteService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewInstituteService 创建 InstituteService 实例
func NewInstituteService(repo *repository.Repository, logger *zap.Logger) InstituteService {
	return &instituteService{repo: repo, logger: logger}
}

func (s *instituteService) Create(ctx context.Context, req *dto.CreateInstituteRequest, callerID string) (*dto.InstituteDetailResponse, error) {
	institute := &model.Institute{
		Name:        req.Name,
		Description: req.Description,
	}
	institute.CreatedBy = &callerID
	institute.UpdatedBy = &callerID

	if err := s.repo.Institute.Create(ctx, institute); err != nil {
		s.logger.Error("创建研究所失败", zap.Error(err))
		return nil, err
	}
	return toInstituteDetail(institute), nil
}

func (s *instituteService) GetByID(ctx context.Context, id string) (*dto.InstituteDetailResponse, error) {
	institute, err := s.loadInstitute(ctx, id)
	if err != nil {
		return nil, err
	}
	return toInstituteDetail(institute), nil
}

func (s *instituteService) List(ctx context.Context) ([]dto.InstituteDetailResponse, error) {
	institutes, err := s.repo.Institute.List(ctx)
	if err != nil {
		s.logger.Error("查询研究所列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.InstituteDetailResponse, 0, len(institutes))
	for i := range institutes {
		result = append(result, *toInstituteDetail(&institutes[i]))
	}
	return result, nil
}

func (s *instituteService) Update(ctx context.Context, id string, req *dto.UpdateInstituteRequest, callerID string) (*dto.InstituteDetailResponse, error) {
	institute, err := s.loadInstitute(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		institute.Name = *req.Name
	}
	if req.Description != nil {
		institute.Description = *req.Description
	}
	institute.UpdatedBy = &callerID

	if err := s.repo.Institute.Update(ctx, institute); err != nil {
		s.logger.Error("更新研究所失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toInstituteDetail(institute), nil
}

func (s *instituteService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.loadInstitute(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Institute.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除研究所失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助方法 ──

func (s *instituteService) loadInstitute(ctx context.Context, id string) (*model.Institute, error) {
	institute, err := s.repo.Institute.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInstituteNotFound
		}
		s.logger.Error("查询研究所失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return institute, nil
}

func toInstituteDetail(institute *model.Institute) *dto.InstituteDetailResponse {
	return &dto.InstituteDetailResponse{
		ID:          institute.InstituteID,
		Name:        institute.Name,
		Description: institute.Description,
		CreatedAt:   institute.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

