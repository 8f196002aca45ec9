package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"go.uber.org/zap"

	identityapp "github.com/tims/backend/internal/application/identity"
	inventoryapp "github.com/tims/backend/internal/application/inventory"
	partnerapp "github.com/tims/backend/internal/application/partner"
	"github.com/tims/backend/internal/domain/identity"
	"github.com/tims/backend/internal/domain/shared"
)

// equipment maps a category onto the product lines generated for it
var equipment = map[string][]string{
	"router":      {"Edge Router", "Core Router", "Branch Router"},
	"switch":      {"Access Switch", "Aggregation Switch", "PoE Switch"},
	"antenna":     {"Sector Antenna", "Panel Antenna", "Microwave Dish"},
	"radio":       {"Remote Radio Unit", "Baseband Unit", "Small Cell"},
	"optical":     {"SFP+ Transceiver", "OLT Line Card", "Fiber Patch Panel"},
	"power":       {"Rectifier Module", "Battery String", "PDU"},
	"consumables": {"Cat6 Patch Cable", "LC-LC Jumper", "Cable Ties"},
}

var itemStatuses = []string{"available", "available", "available", "in_use", "maintenance", "retired"}

// Options controls how much demo data is generated
type Options struct {
	AdminUsername string
	AdminPassword string
	Suppliers     int
	Items         int
}

// Summary reports what a run created
type Summary struct {
	AdminCreated bool
	Suppliers    int
	Items        int
	Transactions int
	Skipped      int
}

// Seeder fills an empty database with plausible telecom inventory
type Seeder struct {
	faker     *gofakeit.Faker
	users     identity.UserRepository
	auth      *identityapp.AuthService
	inventory *inventoryapp.InventoryService
	suppliers *partnerapp.SupplierService
	logger    *zap.Logger
}

// NewSeeder creates a Seeder. A zero seed picks a random one.
func NewSeeder(
	seed uint64,
	users identity.UserRepository,
	auth *identityapp.AuthService,
	inventory *inventoryapp.InventoryService,
	suppliers *partnerapp.SupplierService,
	logger *zap.Logger,
) *Seeder {
	return &Seeder{
		faker:     gofakeit.New(seed),
		users:     users,
		auth:      auth,
		inventory: inventory,
		suppliers: suppliers,
		logger:    logger,
	}
}

// Run creates the admin account and the requested suppliers and items.
// Items go through the inventory service so initial stock is logged.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	summary := &Summary{}

	adminID, created, err := s.ensureAdmin(ctx, opts)
	if err != nil {
		return nil, err
	}
	summary.AdminCreated = created

	supplierIDs := make([]uuid.UUID, 0, opts.Suppliers)
	for i := 0; i < opts.Suppliers; i++ {
		company := s.faker.Company()
		resp, err := s.suppliers.Create(ctx, partnerapp.SupplierInput{
			Name:          company,
			ContactPerson: s.faker.Name(),
			Email:         strings.ToLower(s.faker.Username()) + "@" + s.faker.DomainName(),
			Phone:         s.faker.Phone(),
			Address:       s.faker.Address().Address,
			Status:        s.faker.RandomString([]string{"active", "active", "active", "pending", "inactive"}),
		})
		if err != nil {
			return nil, fmt.Errorf("create supplier %q: %w", company, err)
		}
		supplierIDs = append(supplierIDs, resp.ID)
		summary.Suppliers++
	}

	categories := make([]string, 0, len(equipment))
	for c := range equipment {
		categories = append(categories, c)
	}

	for i := 0; i < opts.Items; i++ {
		input := s.itemInput(categories, supplierIDs)
		item, err := s.inventory.Create(ctx, adminID, input)
		if err != nil {
			if isAlreadyExists(err) {
				summary.Skipped++
				continue
			}
			return nil, fmt.Errorf("create item %q: %w", input.Name, err)
		}
		summary.Items++
		if input.StockLevel > 0 {
			summary.Transactions++
		}

		// Some movement so the history pages are not empty
		if item.StockLevel > 1 && s.faker.Bool() {
			_, err := s.inventory.RecordTransaction(ctx, adminID, item.ID, inventoryapp.TransactionInput{
				TransactionType: "sale",
				Quantity:        s.faker.Number(1, item.StockLevel),
				Notes:           "Issued to " + s.faker.City() + " site",
			})
			if err != nil {
				return nil, fmt.Errorf("record sale for %q: %w", input.Name, err)
			}
			summary.Transactions++
		}
	}

	s.logger.Info("Seed complete",
		zap.Bool("admin_created", summary.AdminCreated),
		zap.Int("suppliers", summary.Suppliers),
		zap.Int("items", summary.Items),
		zap.Int("transactions", summary.Transactions),
		zap.Int("skipped", summary.Skipped),
	)
	return summary, nil
}

func (s *Seeder) ensureAdmin(ctx context.Context, opts Options) (uuid.UUID, bool, error) {
	existing, err := s.users.FindByUsername(ctx, opts.AdminUsername)
	if err == nil {
		s.logger.Info("Admin user already present", zap.String("username", existing.Username))
		return existing.ID, false, nil
	}
	if derr, ok := shared.AsDomainError(err); !ok || derr.Code != shared.CodeNotFound {
		return uuid.Nil, false, fmt.Errorf("look up admin: %w", err)
	}

	resp, err := s.auth.Register(ctx, identityapp.RegisterInput{
		Username: opts.AdminUsername,
		Password: opts.AdminPassword,
		Email:    opts.AdminUsername + "@tims.local",
		FullName: "System Administrator",
		Role:     identity.RoleAdmin.String(),
	})
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("register admin: %w", err)
	}
	return resp.ID, true, nil
}

func (s *Seeder) itemInput(categories []string, supplierIDs []uuid.UUID) inventoryapp.ItemInput {
	category := s.faker.RandomString(categories)
	line := s.faker.RandomString(equipment[category])

	input := inventoryapp.ItemInput{
		Name:         fmt.Sprintf("%s %s-%d", line, strings.ToUpper(s.faker.LetterN(2)), s.faker.Number(100, 999)),
		Category:     category,
		Description:  s.faker.Sentence(8),
		Location:     s.faker.City() + " DC, Rack " + s.faker.DigitN(2),
		Status:       s.faker.RandomString(itemStatuses),
		StockLevel:   s.faker.Number(0, 120),
		ReorderPoint: s.faker.Number(2, 15),
	}
	// Consumables are tracked in bulk without serials
	if category != "consumables" {
		input.SerialNumber = "SN-" + strings.ToUpper(s.faker.LetterN(3)) + s.faker.DigitN(7)
	}
	if len(supplierIDs) > 0 && s.faker.Number(1, 10) > 2 {
		id := supplierIDs[s.faker.Number(0, len(supplierIDs)-1)]
		input.SupplierID = &id
	}
	return input
}

func isAlreadyExists(err error) bool {
	derr, ok := shared.AsDomainError(err)
	return ok && derr.Code == shared.CodeAlreadyExists
}
