package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shroombros/shroom-api/internal/domains/sales/domain"
	"github.com/shroombros/shroom-api/internal/domains/sales/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists customers and orders in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle and migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CustomerRecord maps the customer entity to a relational table.
type CustomerRecord struct {
	ID           uuid.UUID `gorm:"primaryKey;type:uuid;column:id"`
	Name         string    `gorm:"column:name;not null"`
	Phone        string    `gorm:"column:phone"`
	Email        string    `gorm:"column:email"`
	Address      string    `gorm:"column:address"`
	Neighborhood string    `gorm:"column:neighborhood"`
	City         string    `gorm:"column:city"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (CustomerRecord) TableName() string { return "customers" }

// OrderRecord maps the order aggregate to a relational table.
type OrderRecord struct {
	ID            uuid.UUID       `gorm:"primaryKey;type:uuid;column:id"`
	CustomerID    uuid.UUID       `gorm:"type:uuid;column:customer_id;not null;index"`
	Status        string          `gorm:"column:status;type:varchar(32);index"`
	Total         decimal.Decimal `gorm:"column:total;type:numeric(12,2)"`
	RequestedDate time.Time       `gorm:"column:requested_date;type:date"`
	Notes         string          `gorm:"column:notes"`
	CreatedAt     time.Time       `gorm:"column:created_at;index"`
	UpdatedAt     time.Time       `gorm:"column:updated_at"`
}

func (OrderRecord) TableName() string { return "orders" }

func (r *Repository) SaveOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	record := OrderToRecord(order)
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"status":         record.Status,
				"total":          record.Total,
				"requested_date": record.RequestedDate,
				"notes":          record.Notes,
				"updated_at":     gorm.Expr("NOW()"),
			}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetOrder(ctx, record.ID)
}

func (r *Repository) GetOrder(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record OrderRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.ToDomain(), nil
}

func (r *Repository) ListOrders(ctx context.Context, filter ports.OrderFilter) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Order("created_at ASC, id ASC")
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	var records []OrderRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].ToDomain())
	}
	return orders, nil
}

func (r *Repository) SaveCustomer(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, errors.New("customer is nil")
	}
	record := customerToRecord(customer)
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "phone", "email", "address", "neighborhood", "city"}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return r.GetCustomer(ctx, record.ID)
}

func (r *Repository) GetCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record CustomerRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrCustomerNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) ListCustomers(ctx context.Context) ([]*domain.Customer, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []CustomerRecord
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	customers := make([]*domain.Customer, 0, len(records))
	for i := range records {
		customers = append(customers, records[i].toDomain())
	}
	return customers, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres sales repository not configured")
	}
	return nil
}

// OrderToRecord is shared with the logistics store, which writes order statuses inside its own transactions.
func OrderToRecord(order *domain.Order) OrderRecord {
	return OrderRecord{
		ID:            order.ID,
		CustomerID:    order.CustomerID,
		Status:        string(order.Status),
		Total:         order.Total,
		RequestedDate: order.RequestedDate,
		Notes:         order.Notes,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}

func (r OrderRecord) ToDomain() *domain.Order {
	return &domain.Order{
		ID:            r.ID,
		CustomerID:    r.CustomerID,
		Status:        domain.Status(r.Status),
		Total:         r.Total,
		RequestedDate: r.RequestedDate,
		Notes:         r.Notes,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func customerToRecord(c *domain.Customer) CustomerRecord {
	return CustomerRecord{
		ID:           c.ID,
		Name:         c.Name,
		Phone:        c.Phone,
		Email:        c.Email,
		Address:      c.Address,
		Neighborhood: c.Neighborhood,
		City:         c.City,
		CreatedAt:    c.CreatedAt,
	}
}

func (r CustomerRecord) toDomain() *domain.Customer {
	return &domain.Customer{
		ID:           r.ID,
		Name:         r.Name,
		Phone:        r.Phone,
		Email:        r.Email,
		Address:      r.Address,
		Neighborhood: r.Neighborhood,
		City:         r.City,
		CreatedAt:    r.CreatedAt,
	}
}
