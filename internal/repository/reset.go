package repository

import (
	"context"
	"fmt"
)

// Clear removes every record. It is an explicit operator action used to
// recover from a partial first-run seeding.
func (r *Repository) Clear(ctx context.Context) error {
	err := r.Transaction(ctx, func(ctx context.Context) error {
		for _, table := range []string{"quest_instances", "quest_templates", "classes", "users"} {
			if _, err := r.exec(ctx, r.sb.Delete(table)); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.evictions.Add(1)
	r.templates.Purge()
	return nil
}
