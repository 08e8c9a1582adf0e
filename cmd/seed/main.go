package main

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"expenseflow/internal/authz"
	"expenseflow/internal/config"
	"expenseflow/internal/db"
	"expenseflow/internal/model"
	"expenseflow/internal/repository"
)

const demoPassword = "password123"

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.Company{}, &model.User{}, &model.Expense{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	ctx := context.Background()
	companyRepo := repository.NewCompanyRepository(gormDB)
	userRepo := repository.NewUserRepository(gormDB)
	expenseRepo := repository.NewExpenseRepository(gormDB)

	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), 10)
	if err != nil {
		log.Fatalf("Failed to hash demo password: %v", err)
	}

	company := &model.Company{Name: "Acme Corp", Country: "India", Currency: model.DefaultCurrency}
	admin := &model.User{
		Name:         "Asha Admin",
		Email:        "admin@acme.example",
		PasswordHash: string(hash),
		Role:         authz.RoleAdmin,
	}
	if err := companyRepo.CreateWithAdmin(ctx, company, admin); err != nil {
		log.Fatalf("Failed to create demo company: %v", err)
	}
	log.Printf("Created company %q (id=%d) with admin %s", company.Name, company.ID, admin.Email)

	now := time.Now()
	manager := &model.User{
		Name:           "Meera Manager",
		Email:          "manager@acme.example",
		PasswordHash:   string(hash),
		Role:           authz.RoleManager,
		CompanyID:      company.ID,
		AssignedBy:     &admin.ID,
		RoleAssignedAt: &now,
	}
	if err := userRepo.Create(ctx, manager); err != nil {
		log.Fatalf("Failed to create manager: %v", err)
	}

	employees := []*model.User{
		{Name: "Ravi Rao", Email: "ravi@acme.example"},
		{Name: "Priya Patel", Email: "priya@acme.example"},
	}
	for _, emp := range employees {
		emp.PasswordHash = string(hash)
		emp.Role = authz.RoleEmployee
		emp.CompanyID = company.ID
		emp.ManagerID = &manager.ID
		emp.AssignedBy = &admin.ID
		emp.RoleAssignedAt = &now
		if err := userRepo.Create(ctx, emp); err != nil {
			log.Fatalf("Failed to create employee %s: %v", emp.Email, err)
		}
	}
	log.Printf("Created %d employees reporting to %s", len(employees), manager.Email)

	expenses := []*model.Expense{
		{
			UserID:      employees[0].ID,
			Description: "Taxi to client site",
			Amount:      decimal.NewFromFloat(120.50),
			Category:    "Travel",
			ExpenseDate: now.AddDate(0, 0, -2),
		},
		{
			UserID:      employees[0].ID,
			Description: "Team lunch",
			Amount:      decimal.NewFromFloat(840.00),
			Category:    "Meals",
			ExpenseDate: now.AddDate(0, 0, -5),
		},
		{
			UserID:      employees[1].ID,
			Description: "Conference registration",
			Amount:      decimal.NewFromFloat(4999.99),
			Category:    "Training",
			ExpenseDate: now.AddDate(0, 0, -1),
		},
	}
	for _, exp := range expenses {
		exp.Status = model.ExpenseStatusPending
		if err := expenseRepo.Create(ctx, exp); err != nil {
			log.Fatalf("Failed to create expense %q: %v", exp.Description, err)
		}
	}
	log.Printf("Created %d pending expenses", len(expenses))

	log.Printf("Seed complete. Demo password for all users: %s", demoPassword)
}
