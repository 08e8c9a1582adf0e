package repository

import (
	"context"

	"gorm.io/gorm"

	"expenseflow/internal/model"
)

// CompanyRepository defines company persistence operations.
type CompanyRepository interface {
	Create(ctx context.Context, company *model.Company) error
	FindByID(ctx context.Context, id uint) (*model.Company, error)
	// CreateWithAdmin creates a company and its founding user in one
	// transaction. Partial creation is never observable.
	CreateWithAdmin(ctx context.Context, company *model.Company, admin *model.User) error
}

type companyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new company repository.
func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) Create(ctx context.Context, company *model.Company) error {
	return r.db.WithContext(ctx).Create(company).Error
}

func (r *companyRepository) FindByID(ctx context.Context, id uint) (*model.Company, error) {
	var company model.Company
	if err := r.db.WithContext(ctx).First(&company, id).Error; err != nil {
		return nil, err
	}
	return &company, nil
}

func (r *companyRepository) CreateWithAdmin(ctx context.Context, company *model.Company, admin *model.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(company).Error; err != nil {
			return err
		}
		admin.CompanyID = company.ID
		return tx.Create(admin).Error
	})
}
