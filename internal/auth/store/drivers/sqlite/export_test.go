package sqlite

import "context"

// InsertRawUser writes a row with CHECK constraints switched off, so tests
// can reproduce a database edited behind the service's back.
func (s *Store) InsertRawUser(ctx context.Context, realID, nickname, role string) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, `PRAGMA ignore_check_constraints = ON`); err != nil {
		return err
	}
	defer conn.ExecContext(ctx, `PRAGMA ignore_check_constraints = OFF`) //nolint:errcheck

	_, err = conn.ExecContext(ctx,
		`INSERT INTO users (real_id, nickname, role) VALUES (?, ?, ?)`,
		realID, nickname, role,
	)
	return err
}
