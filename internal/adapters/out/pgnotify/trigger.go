package pgnotify

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

const functionName = "dispatch_notify_order_change"

// InstallTrigger (re)creates the trigger that notifies channel whenever an order
// is inserted or its status changes. It is idempotent.
func InstallTrigger(ctx context.Context, db *gorm.DB, channel string) error {
	if channel == "" {
		return ErrChannelRequired
	}

	function := fmt.Sprintf(`
		CREATE OR REPLACE FUNCTION %s() RETURNS trigger AS $$
		BEGIN
			IF TG_OP = 'INSERT' OR NEW.status IS DISTINCT FROM OLD.status THEN
				PERFORM pg_notify(%s, json_build_object(
					'event', 'postgres_changes',
					'payload', json_build_object(
						'data', json_build_object(
							'record', json_build_object('id', NEW.id, 'status', NEW.status)
						)
					)
				)::text);
			END IF;
			RETURN NEW;
		END;
		$$ LANGUAGE plpgsql`, functionName, pq.QuoteLiteral(channel))

	drop := fmt.Sprintf(`DROP TRIGGER IF EXISTS %s ON orders`, functionName)
	create := fmt.Sprintf(`
		CREATE TRIGGER %[1]s
			AFTER INSERT OR UPDATE OF status ON orders
			FOR EACH ROW EXECUTE FUNCTION %[1]s()`, functionName)

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(function).Error; err != nil {
			return fmt.Errorf("create notify function: %w", err)
		}
		if err := tx.Exec(drop).Error; err != nil {
			return fmt.Errorf("drop notify trigger: %w", err)
		}
		if err := tx.Exec(create).Error; err != nil {
			return fmt.Errorf("create notify trigger: %w", err)
		}
		return nil
	})
}
