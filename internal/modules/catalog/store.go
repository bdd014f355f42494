// README: Vehicle class overrides backed by PostgreSQL.
package catalog

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// LoadVehicles returns the active vehicle classes in display order.
func (s *Store) LoadVehicles(ctx context.Context) ([]Vehicle, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, capacity, base_fare, per_km, description, image_url
		FROM vehicle_classes
		WHERE active
		ORDER BY sort_order, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Vehicle
	for rows.Next() {
		var v Vehicle
		var desc, image sql.NullString
		if err := rows.Scan(&v.ID, &v.Name, &v.Capacity, &v.Base, &v.PerKm, &desc, &image); err != nil {
			return nil, err
		}
		v.Description = desc.String
		v.Image = image.String
		out = append(out, v)
	}
	return out, rows.Err()
}
