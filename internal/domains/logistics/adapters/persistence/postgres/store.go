package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shroombros/shroom-api/internal/domains/logistics/domain"
	"github.com/shroombros/shroom-api/internal/domains/logistics/ports"
	salespg "github.com/shroombros/shroom-api/internal/domains/sales/adapters/persistence/postgres"
	salesdomain "github.com/shroombros/shroom-api/internal/domains/sales/domain"
)

// routeCodeLockKey namespaces the per-day advisory lock taken while numbering routes.
const routeCodeLockKey = 7301

var _ ports.Store = (*Store)(nil)

// Store persists drivers, routes and stops in PostgreSQL using GORM and reads orders from the
// sales tables.
type Store struct {
	db *gorm.DB
}

// NewStore wires a PostgreSQL-backed store. Caller manages DB lifecycle and migrations.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DriverRecord maps the driver entity to a relational table.
type DriverRecord struct {
	ID           uuid.UUID      `gorm:"primaryKey;type:uuid;column:id"`
	Name         string         `gorm:"column:name;not null"`
	Phone        string         `gorm:"column:phone"`
	Email        string         `gorm:"column:email"`
	VehiclePlate string         `gorm:"column:vehicle_plate"`
	Regions      pq.StringArray `gorm:"column:regions;type:text[]"`
	Active       bool           `gorm:"column:active;default:true"`
	CreatedAt    time.Time      `gorm:"column:created_at"`
}

func (DriverRecord) TableName() string { return "drivers" }

// RouteRecord maps the route header.
type RouteRecord struct {
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

func (RouteRecord) TableName() string { return "routes" }

// StopRecord maps a stop. RouteActive mirrors whether the owning route is pending or in progress
// so a partial unique index can keep an order on at most one active route.
type StopRecord struct {
	ID          uuid.UUID  `gorm:"primaryKey;type:uuid;column:id"`
	RouteID     uuid.UUID  `gorm:"type:uuid;column:route_id;index;uniqueIndex:idx_route_stops_position,priority:1"`
	OrderID     uuid.UUID  `gorm:"type:uuid;column:order_id;index:idx_route_stops_active_order,unique,where:route_active"`
	Position    int        `gorm:"column:position;uniqueIndex:idx_route_stops_position,priority:2"`
	Status      string     `gorm:"column:status;type:varchar(32)"`
	DeliveredAt *time.Time `gorm:"column:delivered_at"`
	RouteActive bool       `gorm:"column:route_active;default:true"`
}

func (StopRecord) TableName() string { return "route_stops" }

// WithinTx runs fn inside a single database transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repo ports.Repository) error) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &Store{db: tx})
	})
}

func (s *Store) ListRoutes(ctx context.Context, filter ports.RouteFilter) ([]*domain.Route, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	query := s.db.WithContext(ctx).Order("created_at DESC, code DESC")
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.DriverID != nil {
		query = query.Where("driver_id = ?", *filter.DriverID)
	}
	var records []RouteRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []*domain.Route{}, nil
	}
	ids := make([]uuid.UUID, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	var stops []StopRecord
	if err := s.db.WithContext(ctx).Where("route_id IN ?", ids).Order("position ASC").Find(&stops).Error; err != nil {
		return nil, err
	}
	byRoute := map[uuid.UUID][]StopRecord{}
	for _, stop := range stops {
		byRoute[stop.RouteID] = append(byRoute[stop.RouteID], stop)
	}
	routes := make([]*domain.Route, 0, len(records))
	for _, rec := range records {
		routes = append(routes, rec.toDomain(byRoute[rec.ID]))
	}
	return routes, nil
}

func (s *Store) GetRoute(ctx context.Context, id uuid.UUID) (*domain.Route, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record RouteRecord
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	var stops []StopRecord
	if err := s.db.WithContext(ctx).Where("route_id = ?", id).Order("position ASC").Find(&stops).Error; err != nil {
		return nil, err
	}
	return record.toDomain(stops), nil
}

// CountRoutesCreatedBetween also takes a transaction scoped advisory lock for the day so that
// concurrent creations are numbered one after the other.
func (s *Store) CountRoutesCreatedBetween(ctx context.Context, from, to time.Time) (int, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	db := s.db.WithContext(ctx)
	if err := db.Exec("SELECT pg_advisory_xact_lock(?, ?)", int32(routeCodeLockKey), int32(from.Unix()/86400)).Error; err != nil {
		return 0, err
	}
	var count int64
	if err := db.Model(&RouteRecord{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

func (s *Store) ActiveOrderIDs(ctx context.Context, orderIDs []uuid.UUID) ([]uuid.UUID, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	if len(orderIDs) == 0 {
		return nil, nil
	}
	var busy []uuid.UUID
	if err := s.db.WithContext(ctx).Model(&StopRecord{}).
		Where("route_active AND order_id IN ?", orderIDs).
		Pluck("order_id", &busy).Error; err != nil {
		return nil, err
	}
	return busy, nil
}

func (s *Store) InsertRoute(ctx context.Context, route *domain.Route) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if route == nil {
		return errors.New("route is nil")
	}
	record := routeToRecord(route)
	db := s.db.WithContext(ctx)
	if err := db.Create(&record).Error; err != nil {
		return err
	}
	stops := make([]StopRecord, 0, len(route.Stops))
	for _, stop := range route.Stops {
		stops = append(stops, stopToRecord(stop, route.Status.Active()))
	}
	if len(stops) == 0 {
		return nil
	}
	if err := db.Create(&stops).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ports.ErrOrderAlreadyRouted
		}
		return err
	}
	return nil
}

func (s *Store) UpdateRoute(ctx context.Context, route *domain.Route) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if route == nil {
		return errors.New("route is nil")
	}
	db := s.db.WithContext(ctx)
	result := db.Model(&RouteRecord{}).Where("id = ?", route.ID).Updates(map[string]any{
		"name":           route.Name,
		"driver_id":      route.DriverID,
		"scheduled_date": route.ScheduledDate,
		"status":         string(route.Status),
		"notes":          route.Notes,
		"started_at":     route.StartedAt,
		"finished_at":    route.FinishedAt,
		"updated_at":     gorm.Expr("NOW()"),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	if err := db.Model(&StopRecord{}).Where("route_id = ?", route.ID).
		Update("route_active", route.Status.Active()).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ports.ErrOrderAlreadyRouted
		}
		return err
	}
	return nil
}

func (s *Store) UpdateStop(ctx context.Context, stop domain.Stop) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	result := s.db.WithContext(ctx).Model(&StopRecord{}).
		Where("id = ? AND route_id = ?", stop.ID, stop.RouteID).
		Updates(map[string]any{
			"status":       string(stop.Status),
			"delivered_at": stop.DeliveredAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrStopNotFound
	}
	return nil
}

// orderRefRow is the projection of orders joined with customers.
type orderRefRow struct {
	ID            uuid.UUID
	CustomerID    uuid.UUID
	CustomerName  *string
	Neighborhood  *string
	City          *string
	Status        string
	Total         decimal.Decimal
	RequestedDate time.Time
}

func (s *Store) orderRefs(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("orders AS o").
		Select("o.id, o.customer_id, c.name AS customer_name, c.neighborhood, c.city, o.status, o.total, o.requested_date").
		Joins("LEFT JOIN customers AS c ON c.id = o.customer_id")
}

func (s *Store) ListOrders(ctx context.Context) ([]domain.OrderRef, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var rows []orderRefRow
	if err := s.orderRefs(ctx).Order("o.created_at ASC, o.id ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return toOrderRefs(rows), nil
}

// GetOrders returns the orders in the order the ids were given.
func (s *Store) GetOrders(ctx context.Context, ids []uuid.UUID) ([]domain.OrderRef, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.OrderRef{}, nil
	}
	var rows []orderRefRow
	if err := s.orderRefs(ctx).Where("o.id IN ?", ids).
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: "o"}}).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]orderRefRow, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}
	ordered := make([]orderRefRow, 0, len(ids))
	for _, id := range ids {
		row, ok := byID[id]
		if !ok {
			return nil, ports.ErrOrderNotFound
		}
		ordered = append(ordered, row)
	}
	return toOrderRefs(ordered), nil
}

func (s *Store) SetOrderStatus(ctx context.Context, ids []uuid.UUID, status salesdomain.Status) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	if !salesdomain.IsValidStatus(status) {
		return salesdomain.ErrInvalidStatus
	}
	result := s.db.WithContext(ctx).Model(&salespg.OrderRecord{}).
		Where("id IN ?", ids).
		Updates(map[string]any{"status": string(status), "updated_at": gorm.Expr("NOW()")})
	if result.Error != nil {
		return result.Error
	}
	if int(result.RowsAffected) != len(ids) {
		return ports.ErrOrderNotFound
	}
	return nil
}

func (s *Store) SaveDriver(ctx context.Context, driver *domain.Driver) (*domain.Driver, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, errors.New("driver is nil")
	}
	record := driverToRecord(driver)
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "phone", "email", "vehicle_plate", "regions", "active"}),
		}).Create(&record).Error; err != nil {
		return nil, err
	}
	return s.GetDriver(ctx, record.ID)
}

func (s *Store) GetDriver(ctx context.Context, id uuid.UUID) (*domain.Driver, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record DriverRecord
	if err := s.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrDriverNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (s *Store) ListDrivers(ctx context.Context) ([]*domain.Driver, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var records []DriverRecord
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	drivers := make([]*domain.Driver, 0, len(records))
	for i := range records {
		drivers = append(drivers, records[i].toDomain())
	}
	return drivers, nil
}

func (s *Store) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres logistics store not configured")
	}
	return nil
}

func routeToRecord(route *domain.Route) RouteRecord {
	return RouteRecord{
		ID:            route.ID,
		Code:          route.Code,
		Name:          route.Name,
		DriverID:      route.DriverID,
		ScheduledDate: route.ScheduledDate,
		Status:        string(route.Status),
		Notes:         route.Notes,
		StartedAt:     route.StartedAt,
		FinishedAt:    route.FinishedAt,
		CreatedAt:     route.CreatedAt,
		UpdatedAt:     route.UpdatedAt,
	}
}

func (r RouteRecord) toDomain(stops []StopRecord) *domain.Route {
	route := &domain.Route{
		ID:            r.ID,
		Code:          r.Code,
		Name:          r.Name,
		DriverID:      r.DriverID,
		ScheduledDate: r.ScheduledDate,
		Status:        domain.RouteStatus(r.Status),
		Notes:         r.Notes,
		StartedAt:     r.StartedAt,
		FinishedAt:    r.FinishedAt,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
		Stops:         make([]domain.Stop, 0, len(stops)),
	}
	for _, stop := range stops {
		route.Stops = append(route.Stops, domain.Stop{
			ID:          stop.ID,
			RouteID:     stop.RouteID,
			OrderID:     stop.OrderID,
			Position:    stop.Position,
			Status:      domain.StopStatus(stop.Status),
			DeliveredAt: stop.DeliveredAt,
		})
	}
	return route
}

func stopToRecord(stop domain.Stop, active bool) StopRecord {
	return StopRecord{
		ID:          stop.ID,
		RouteID:     stop.RouteID,
		OrderID:     stop.OrderID,
		Position:    stop.Position,
		Status:      string(stop.Status),
		DeliveredAt: stop.DeliveredAt,
		RouteActive: active,
	}
}

func driverToRecord(d *domain.Driver) DriverRecord {
	return DriverRecord{
		ID:           d.ID,
		Name:         d.Name,
		Phone:        d.Phone,
		Email:        d.Email,
		VehiclePlate: d.VehiclePlate,
		Regions:      pq.StringArray(d.Regions),
		Active:       d.Active,
		CreatedAt:    d.CreatedAt,
	}
}

func (r DriverRecord) toDomain() *domain.Driver {
	return &domain.Driver{
		ID:           r.ID,
		Name:         r.Name,
		Phone:        r.Phone,
		Email:        r.Email,
		VehiclePlate: r.VehiclePlate,
		Regions:      []string(r.Regions),
		Active:       r.Active,
		CreatedAt:    r.CreatedAt,
	}
}

func toOrderRefs(rows []orderRefRow) []domain.OrderRef {
	refs := make([]domain.OrderRef, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, domain.OrderRef{
			ID:            row.ID,
			CustomerID:    row.CustomerID,
			CustomerName:  deref(row.CustomerName),
			Neighborhood:  deref(row.Neighborhood),
			City:          deref(row.City),
			Status:        salesdomain.Status(row.Status),
			Total:         row.Total,
			RequestedDate: row.RequestedDate,
		})
	}
	return refs
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
