package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/umutkoseali/gymnotify/internal/domain"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "000001_create_members",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&domain.Member{}); err != nil {
					return err
				}
				indexes := []string{
					`CREATE UNIQUE INDEX IF NOT EXISTS idx_members_branch_code ON members (branch_id, code)`,
					`CREATE INDEX IF NOT EXISTS idx_members_branch_status ON members (branch_id, status)`,
					`CREATE INDEX IF NOT EXISTS idx_members_expiry_status ON members (expiry_date, status)`,
					`CREATE INDEX IF NOT EXISTS idx_members_phone ON members (phone)`,
				}
				for _, sql := range indexes {
					if err := tx.Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&domain.Member{})
			},
		},
		{
			ID: "000002_create_message_drafts",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&domain.MessageDraft{}); err != nil {
					return err
				}
				indexes := []string{
					// The idempotency guard: at most one open draft per (member, type).
					`CREATE UNIQUE INDEX IF NOT EXISTS idx_drafts_open_member_type ON message_drafts (member_id, type) WHERE status = 'draft'`,
					`CREATE INDEX IF NOT EXISTS idx_drafts_branch_status ON message_drafts (branch_id, status)`,
					`CREATE INDEX IF NOT EXISTS idx_drafts_created_at ON message_drafts (created_at DESC)`,
				}
				for _, sql := range indexes {
					if err := tx.Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&domain.MessageDraft{})
			},
		},
		{
			ID: "000003_create_message_logs",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&domain.MessageLog{}); err != nil {
					return err
				}
				indexes := []string{
					`CREATE INDEX IF NOT EXISTS idx_logs_branch_sent_at ON message_logs (branch_id, sent_at DESC)`,
					`CREATE INDEX IF NOT EXISTS idx_logs_member_id ON message_logs (member_id)`,
				}
				for _, sql := range indexes {
					if err := tx.Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&domain.MessageLog{})
			},
		},
		{
			ID: "000004_create_payments",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&domain.Payment{}); err != nil {
					return err
				}
				indexes := []string{
					`CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_branch_code ON payments (branch_id, code)`,
					`CREATE INDEX IF NOT EXISTS idx_payments_member_id ON payments (member_id)`,
				}
				for _, sql := range indexes {
					if err := tx.Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&domain.Payment{})
			},
		},
		{
			ID: "000005_create_attendances",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&domain.Attendance{}); err != nil {
					return err
				}
				indexes := []string{
					`CREATE INDEX IF NOT EXISTS idx_attendances_branch_check_in ON attendances (branch_id, check_in_at DESC)`,
					`CREATE INDEX IF NOT EXISTS idx_attendances_member_check_in ON attendances (member_id, check_in_at DESC)`,
				}
				for _, sql := range indexes {
					if err := tx.Exec(sql).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&domain.Attendance{})
			},
		},
	})

	return m.Migrate()
}
