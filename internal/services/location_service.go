package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/isdelr/taskmaster-be/internal/database"
	"github.com/isdelr/taskmaster-be/internal/geo"
	"github.com/isdelr/taskmaster-be/internal/models"
)

// LocationServiceProvider defines the interface for location services.
type LocationServiceProvider interface {
	GetAllLocations(ctx context.Context, ownerID int64) ([]models.Location, error)
	GetLocationByID(ctx context.Context, ownerID, id int64) (models.Location, error)
	CreateLocation(ctx context.Context, ownerID int64, in models.NewLocation) (models.Location, error)
	UpdateLocation(ctx context.Context, ownerID, id int64, upd models.LocationUpdate) (models.Location, error)
	DeleteLocation(ctx context.Context, ownerID, id int64) error
	FindNearby(ctx context.Context, ownerID int64, latitude, longitude float64) (*models.NearbyLocation, error)
}

// LocationService provides business logic for saved locations.
type LocationService struct {
	db *sql.DB
}

// NewLocationService creates a new LocationService.
func NewLocationService(db *sql.DB) *LocationService {
	return &LocationService{db: db}
}

const locationColumns = "id, owner_id, name, latitude, longitude, radius, category_id, created_at"

func scanLocation(row interface{ Scan(...any) error }) (models.Location, error) {
	var l models.Location
	err := row.Scan(&l.ID, &l.OwnerID, &l.Name, &l.Latitude, &l.Longitude, &l.Radius, &l.CategoryID, &l.CreatedAt)
	return l, err
}

func getLocation(ctx context.Context, q database.DBTX, ownerID, id int64) (models.Location, error) {
	l, err := scanLocation(q.QueryRowContext(ctx, "SELECT "+locationColumns+" FROM locations WHERE id = ? AND owner_id = ?", id, ownerID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Location{}, fmt.Errorf("location %d: %w", id, ErrNotFound)
		}
		return models.Location{}, err
	}
	return l, nil
}

// checkLocationRef rejects a location reference the user does not own.
func checkLocationRef(ctx context.Context, q database.DBTX, ownerID int64, id *int64) error {
	if id == nil {
		return nil
	}
	if _, err := getLocation(ctx, q, ownerID, *id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("location %d does not exist: %w", *id, ErrValidation)
		}
		return err
	}
	return nil
}

func validateLocation(l models.Location) error {
	if strings.TrimSpace(l.Name) == "" {
		return fmt.Errorf("location name is required: %w", ErrValidation)
	}
	if err := geo.ValidateCoordinates(l.Latitude, l.Longitude); err != nil {
		return err
	}
	if math.IsNaN(l.Radius) || math.IsInf(l.Radius, 0) || l.Radius <= 0 {
		return fmt.Errorf("radius must be a positive number of meters: %w", ErrValidation)
	}
	return nil
}

// GetAllLocations lists the user's locations ordered by id.
func (s *LocationService) GetAllLocations(ctx context.Context, ownerID int64) ([]models.Location, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+locationColumns+" FROM locations WHERE owner_id = ? ORDER BY id", ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := []models.Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		locations = append(locations, l)
	}
	return locations, rows.Err()
}

// GetLocationByID retrieves one of the user's locations.
func (s *LocationService) GetLocationByID(ctx context.Context, ownerID, id int64) (models.Location, error) {
	return getLocation(ctx, s.db, ownerID, id)
}

// CreateLocation stores a new location. The radius defaults to
// models.DefaultLocationRadius.
func (s *LocationService) CreateLocation(ctx context.Context, ownerID int64, in models.NewLocation) (models.Location, error) {
	if in.Latitude == nil || in.Longitude == nil {
		return models.Location{}, fmt.Errorf("latitude and longitude are required: %w", ErrValidation)
	}
	l := models.Location{
		OwnerID:    ownerID,
		Name:       in.Name,
		Latitude:   *in.Latitude,
		Longitude:  *in.Longitude,
		Radius:     models.DefaultLocationRadius,
		CategoryID: in.CategoryID,
	}
	if in.Radius != nil {
		l.Radius = *in.Radius
	}
	if err := validateLocation(l); err != nil {
		return models.Location{}, err
	}

	var id int64
	err := database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		if err := checkCategoryRef(ctx, tx, ownerID, l.CategoryID); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			"INSERT INTO locations (owner_id, name, latitude, longitude, radius, category_id) VALUES (?, ?, ?, ?, ?, ?)",
			ownerID, l.Name, l.Latitude, l.Longitude, l.Radius, l.CategoryID)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return models.Location{}, err
	}
	return s.GetLocationByID(ctx, ownerID, id)
}

// UpdateLocation applies the fields present in upd. Only category_id may be
// cleared with null.
func (s *LocationService) UpdateLocation(ctx context.Context, ownerID, id int64, upd models.LocationUpdate) (models.Location, error) {
	if upd.Name.Null || upd.Latitude.Null || upd.Longitude.Null || upd.Radius.Null {
		return models.Location{}, fmt.Errorf("only category_id may be null: %w", ErrValidation)
	}

	var l models.Location
	err := database.WithTx(ctx, s.db, func(ctx context.Context, tx database.DBTX) error {
		var err error
		if l, err = getLocation(ctx, tx, ownerID, id); err != nil {
			return err
		}
		if upd.Name.Set {
			l.Name = upd.Name.Value
		}
		if upd.Latitude.Set {
			l.Latitude = upd.Latitude.Value
		}
		if upd.Longitude.Set {
			l.Longitude = upd.Longitude.Value
		}
		if upd.Radius.Set {
			l.Radius = upd.Radius.Value
		}
		if upd.CategoryID.Set {
			l.CategoryID = upd.CategoryID.Ptr()
			if err := checkCategoryRef(ctx, tx, ownerID, l.CategoryID); err != nil {
				return err
			}
		}
		if err := validateLocation(l); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE locations SET name = ?, latitude = ?, longitude = ?, radius = ?, category_id = ? WHERE id = ? AND owner_id = ?",
			l.Name, l.Latitude, l.Longitude, l.Radius, l.CategoryID, id, ownerID)
		return err
	})
	if err != nil {
		return models.Location{}, err
	}
	return l, nil
}

// DeleteLocation removes a location. Tasks referencing it keep existing with
// the reference cleared.
func (s *LocationService) DeleteLocation(ctx context.Context, ownerID, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM locations WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return err
	}
	return expectRow(res, "location", id)
}

// FindNearby returns the nearest of the user's locations whose geofence
// contains the point, or nil when none does. Equidistant locations resolve
// to the lowest id.
func (s *LocationService) FindNearby(ctx context.Context, ownerID int64, latitude, longitude float64) (*models.NearbyLocation, error) {
	if err := geo.ValidateCoordinates(latitude, longitude); err != nil {
		return nil, err
	}
	candidates, err := s.GetAllLocations(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	match, ok := geo.Resolve(latitude, longitude, candidates)
	if !ok {
		return nil, nil
	}
	return &match, nil
}
