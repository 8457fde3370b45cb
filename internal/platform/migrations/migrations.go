package migrations

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Adapters never automigrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	if err := db.AutoMigrate(
		&userRecord{},
		&sessionRecord{},
		&customerRecord{},
		&orderRecord{},
		&driverRecord{},
		&routeRecord{},
		&stopRecord{},
		&routeIdempotencyRecord{},
		&productRecord{},
		&lotRecord{},
		&sensorReadingRecord{},
	); err != nil {
		return err
	}
	return addForeignKeys(db)
}

type foreignKey struct {
	table, name, column, references string
	onDelete                        string
}

var foreignKeys = []foreignKey{
	{"user_sessions", "fk_user_sessions_user", "user_id", "users", "CASCADE"},
	{"orders", "fk_orders_customer", "customer_id", "customers", "RESTRICT"},
	{"routes", "fk_routes_driver", "driver_id", "drivers", "RESTRICT"},
	{"route_stops", "fk_route_stops_route", "route_id", "routes", "CASCADE"},
	{"route_stops", "fk_route_stops_order", "order_id", "orders", "RESTRICT"},
	{"route_idempotency_keys", "fk_route_idempotency_keys_route", "route_id", "routes", "CASCADE"},
	{"lots", "fk_lots_product", "product_id", "products", "RESTRICT"},
	{"sensor_readings", "fk_sensor_readings_lot", "lot_id", "lots", "CASCADE"},
}

func addForeignKeys(db *gorm.DB) error {
	migrator := db.Migrator()
	for _, fk := range foreignKeys {
		if migrator.HasConstraint(fk.table, fk.name) {
			continue
		}
		stmt := fmt.Sprintf("ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (id) ON DELETE %s",
			fk.table, fk.name, fk.column, fk.references, fk.onDelete)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("add %s: %w", fk.name, err)
		}
	}
	return nil
}

// Auth schema mirrors the auth Postgres adapters.
type userRecord struct {
	ID           uuid.UUID `gorm:"primaryKey;type:uuid;column:id"`
	Email        string    `gorm:"column:email;not null;uniqueIndex"`
	Name         string    `gorm:"column:name;not null"`
	Role         string    `gorm:"column:role;type:varchar(16);not null"`
	PasswordHash []byte    `gorm:"column:password_hash;not null"`
	Active       bool      `gorm:"column:active;not null;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (userRecord) TableName() string { return "users" }

type sessionRecord struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid;column:id"`
	UserID    uuid.UUID `gorm:"type:uuid;column:user_id;not null;index"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (sessionRecord) TableName() string { return "user_sessions" }

// Sales schema mirrors the sales Postgres adapter.
type customerRecord struct {
	ID           uuid.UUID `gorm:"primaryKey;type:uuid;column:id"`
	Name         string    `gorm:"column:name;not null"`
	Phone        string    `gorm:"column:phone"`
	Email        string    `gorm:"column:email"`
	Address      string    `gorm:"column:address"`
	Neighborhood string    `gorm:"column:neighborhood"`
	City         string    `gorm:"column:city"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (customerRecord) TableName() string { return "customers" }

type orderRecord struct {
	ID            uuid.UUID       `gorm:"primaryKey;type:uuid;column:id"`
	CustomerID    uuid.UUID       `gorm:"type:uuid;column:customer_id;not null;index"`
	Status        string          `gorm:"column:status;type:varchar(32);index"`
	Total         decimal.Decimal `gorm:"column:total;type:numeric(12,2)"`
	RequestedDate time.Time       `gorm:"column:requested_date;type:date"`
	Notes         string          `gorm:"column:notes"`
	CreatedAt     time.Time       `gorm:"column:created_at;index"`
	UpdatedAt     time.Time       `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

// Logistics schema mirrors the logistics Postgres store.
type driverRecord struct {
	ID           uuid.UUID      `gorm:"primaryKey;type:uuid;column:id"`
	Name         string         `gorm:"column:name;not null"`
	Phone        string         `gorm:"column:phone"`
	Email        string         `gorm:"column:email"`
	VehiclePlate string         `gorm:"column:vehicle_plate"`
	Regions      pq.StringArray `gorm:"column:regions;type:text[]"`
	Active       bool           `gorm:"column:active;default:true"`
	CreatedAt    time.Time      `gorm:"column:created_at"`
}

func (driverRecord) TableName() string { return "drivers" }

type routeRecord struct {
	ID            uuid.UUID  `gorm:"primaryKey;type:uuid;column:id"`
	Code          string     `gorm:"column:code;size:32;uniqueIndex"`
	Name          string     `gorm:"column:name;not null"`
	DriverID      uuid.UUID  `gorm:"type:uuid;column:driver_id;index"`
	ScheduledDate time.Time  `gorm:"column:scheduled_date;type:date"`
	Status        string     `gorm:"column:status;type:varchar(32);index"`
	Notes         string     `gorm:"column:notes"`
	StartedAt     *time.Time `gorm:"column:started_at"`
	FinishedAt    *time.Time `gorm:"column:finished_at"`
	CreatedAt     time.Time  `gorm:"column:created_at;index"`
	UpdatedAt     time.Time  `gorm:"column:updated_at"`
}

func (routeRecord) TableName() string { return "routes" }

// stopRecord carries the partial unique index that keeps an order on at most one active route.
type stopRecord struct {
	ID          uuid.UUID  `gorm:"primaryKey;type:uuid;column:id"`
	RouteID     uuid.UUID  `gorm:"type:uuid;column:route_id;index;uniqueIndex:idx_route_stops_position,priority:1"`
	OrderID     uuid.UUID  `gorm:"type:uuid;column:order_id;index:idx_route_stops_active_order,unique,where:route_active"`
	Position    int        `gorm:"column:position;uniqueIndex:idx_route_stops_position,priority:2"`
	Status      string     `gorm:"column:status;type:varchar(32)"`
	DeliveredAt *time.Time `gorm:"column:delivered_at"`
	RouteActive bool       `gorm:"column:route_active;default:true"`
}

func (stopRecord) TableName() string { return "route_stops" }

type routeIdempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128;not null"`
	RouteID     uuid.UUID `gorm:"type:uuid;column:route_id;not null"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (routeIdempotencyRecord) TableName() string { return "route_idempotency_keys" }

// Monitoring schema mirrors the monitoring Postgres adapter.
type productRecord struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid;column:id"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	TempMin   *float64  `gorm:"column:temp_min"`
	TempMax   *float64  `gorm:"column:temp_max"`
	HumidMin  *float64  `gorm:"column:humid_min"`
	HumidMax  *float64  `gorm:"column:humid_max"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (productRecord) TableName() string { return "products" }

type lotRecord struct {
	ID        uuid.UUID `gorm:"primaryKey;type:uuid;column:id"`
	Code      string    `gorm:"column:code;not null;uniqueIndex"`
	ProductID uuid.UUID `gorm:"type:uuid;column:product_id;not null;index"`
	StartedOn time.Time `gorm:"column:started_on;type:date"`
	Notes     string    `gorm:"column:notes"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (lotRecord) TableName() string { return "lots" }

type sensorReadingRecord struct {
	ID          uuid.UUID `gorm:"primaryKey;type:uuid;column:id"`
	LotID       uuid.UUID `gorm:"type:uuid;column:lot_id;not null;index:idx_sensor_readings_lot_recorded,priority:1"`
	Temperature float64   `gorm:"column:temperature"`
	Humidity    float64   `gorm:"column:humidity"`
	CO2         float64   `gorm:"column:co2"`
	RecordedAt  time.Time `gorm:"column:recorded_at;index:idx_sensor_readings_lot_recorded,priority:2,sort:desc"`
	ReceivedAt  time.Time `gorm:"column:received_at"`
}

func (sensorReadingRecord) TableName() string { return "sensor_readings" }
