package repository

import (
	"context"

	"gorm.io/gorm"

	"teachload/backend/internal/model"
)

// InstituteRepository 研究所数据访问接口
type InstituteRepository interface {
	Create(ctx context.Context, institute *model.Institute) error
	GetByID(ctx context.Context, id string) (*model.Institute, error)
	List(ctx context.Context) ([]model.Institute, error)
	Update(ctx context.Context, institute *model.Institute) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type instituteRepo struct {
	db *gorm.DB
}

// NewInstituteRepo 创建 InstituteRepository 实例
func NewInstituteRepo(db *gorm.DB) InstituteRepository {
	return &instituteRepo{db: db}
}

func (r *instituteRepo) Create(ctx context.Context, institute *model.Institute) error {
	return r.db.WithContext(ctx).Create(institute).Error
}

func (r *instituteRepo) GetByID(ctx context.Context, id string) (*model.Institute, error) {
	var institute model.Institute
	err := r.db.WithContext(ctx).
		Where("institute_id = ?", id).
		First(&institute).Error
	if err != nil {
		return nil, err
	}
	return &institute, nil
}

func (r *instituteRepo) List(ctx context.Context) ([]model.Institute, error) {
	var institutes []model.Institute
	err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&institutes).Error
	return institutes, err
}

func (r *instituteRepo) Update(ctx context.Context, institute *model.Institute) error {
	return r.db.WithContext(ctx).Save(institute).Error
}

func (r *instituteRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Institute{}).
		Where("institute_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
