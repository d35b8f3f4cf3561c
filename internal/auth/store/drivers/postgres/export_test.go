package postgres

import "context"

// Reset empties every table, for integration tests sharing one database.
func Reset(ctx context.Context, s *Store) error {
	_, err := s.pool.Exec(ctx, `TRUNCATE sessions, codes, clients, accounts`)
	return err
}
