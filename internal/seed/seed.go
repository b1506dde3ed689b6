package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stocktake/pkg/db"
	"gorm.io/gorm"
)

const (
	defaultOrgName = "Main"
	defaultOrgSlug = "main"
)

// EnsureMainOrg seeds the default organization for startup bootstrap and
// returns its ID. When preferredID is non-zero a fresh install uses it.
func EnsureMainOrg(conn *gorm.DB, preferredID int64) (int64, error) {
	if conn == nil {
		return 0, errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return 0, err
	}

	ctx := context.Background()
	var orgID int64
	err = conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing struct{ ID int64 }
		if err := tx.Raw(`SELECT id FROM organizations WHERE slug = ?`, defaultOrgSlug).Scan(&existing).Error; err != nil {
			return err
		}
		if existing.ID != 0 {
			orgID = existing.ID
			return nil
		}

		orgID = preferredID
		if orgID == 0 {
			orgID = node.Generate().Int64()
		}
		now := time.Now().UTC()
		return tx.Exec(
			`INSERT INTO organizations (id, name, slug, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			orgID, defaultOrgName, defaultOrgSlug, now, now,
		).Error
	})
	if db.IsDuplicateKeyErr(err) {
		// Another replica won the bootstrap race; use its row.
		var existing struct{ ID int64 }
		if readErr := conn.Raw(`SELECT id FROM organizations WHERE slug = ?`, defaultOrgSlug).Scan(&existing).Error; readErr != nil {
			return 0, readErr
		}
		return existing.ID, nil
	}
	if err != nil {
		return 0, err
	}
	return orgID, nil
}

// EnsureDemoCatalog seeds a small bar catalog (rooms, categories, items with
// barcodes) so a local install can be counted immediately. Idempotent: it
// does nothing once the org has any room.
func EnsureDemoCatalog(conn *gorm.DB, orgID int64) error {
	if conn == nil {
		return errors.New("seed database handle is required")
	}
	if orgID == 0 {
		return errors.New("seed org id is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing struct{ ID int64 }
		if err := tx.Raw(`SELECT id FROM rooms WHERE org_id = ? LIMIT 1`, orgID).Scan(&existing).Error; err != nil {
			return err
		}
		if existing.ID != 0 {
			return nil
		}

		now := time.Now().UTC()
		rooms := []string{"Main Bar", "Back Bar", "Storage"}
		for i, name := range rooms {
			if err := tx.Exec(
				`INSERT INTO rooms (id, org_id, name, display_order, created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				node.Generate().Int64(), orgID, name, i, now, now,
			).Error; err != nil {
				return err
			}
		}

		spirits := node.Generate().Int64()
		wine := node.Generate().Int64()
		beer := node.Generate().Int64()
		categories := map[int64]string{
			spirits: "Spirits",
			wine:    "Wine",
			beer:    "Beer",
		}
		for id, name := range categories {
			if err := tx.Exec(
				`INSERT INTO item_categories (id, org_id, name) VALUES (?, ?, ?)`,
				id, orgID, name,
			).Error; err != nil {
				return err
			}
		}

		items := []struct {
			category  int64
			brand     string
			size      string
			barcode   string
			price     float64
			threshold float64
			par       float64
		}{
			{spirits, "Tito's Handmade Vodka", "750ml", "619947000015", 24.99, 3, 12},
			{spirits, "Hendrick's Gin", "750ml", "083664868565", 34.99, 2, 6},
			{spirits, "Buffalo Trace Bourbon", "750ml", "080244009953", 29.99, 2, 8},
			{wine, "La Crema Chardonnay", "750ml", "059266003558", 22.50, 4, 12},
			{beer, "Sierra Nevada Pale Ale", "6pk", "083783103530", 10.99, 6, 24},
		}
		for _, item := range items {
			if err := tx.Exec(
				`INSERT INTO items (id, org_id, category_id, brand_name, size_label, barcode,
				                    unit_price, low_stock_threshold, par_level, stock_on_hand,
				                    created_at, updated_at)
				 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)`,
				node.Generate().Int64(), orgID, item.category, item.brand, item.size,
				item.barcode, item.price, item.threshold, item.par, now, now,
			).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
