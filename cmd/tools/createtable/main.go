package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN environment variable is required")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get DB: %v", err)
	}

	sql := `
	CREATE TABLE IF NOT EXISTS users (
	  id CHAR(36) NOT NULL,
	  name VARCHAR(120) NOT NULL,
	  email VARCHAR(255) NOT NULL,
	  password_hash VARBINARY(255) NOT NULL,
	  role VARCHAR(16) NOT NULL DEFAULT 'user',
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS sessions (
	  id CHAR(36) NOT NULL,
	  user_id CHAR(36) NOT NULL,
	  token_hash BINARY(32) NOT NULL,
	  expires_at DATETIME(3) NOT NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  last_seen_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_sessions_token_hash (token_hash),
	  KEY ix_sessions_user_id (user_id),
	  CONSTRAINT fk_sessions_user FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS businesses (
	  id CHAR(36) NOT NULL,
	  owner_id CHAR(36) NOT NULL,
	  name VARCHAR(100) NOT NULL,
	  email VARCHAR(255) NOT NULL,
	  phone VARCHAR(32) NOT NULL,
	  industry VARCHAR(32) NOT NULL,
	  town VARCHAR(32) NOT NULL,
	  address VARCHAR(200) NOT NULL,
	  description VARCHAR(1000) NOT NULL,
	  website VARCHAR(255) NULL,
	  subscription_tier VARCHAR(16) NOT NULL DEFAULT 'Free',
	  subscription_status VARCHAR(16) NOT NULL DEFAULT 'none',
	  subscription_start DATETIME(3) NULL,
	  subscription_end DATETIME(3) NULL,
	  is_boosted TINYINT(1) NOT NULL DEFAULT 0,
	  boost_expiry DATETIME(3) NULL,
	  is_active TINYINT(1) NOT NULL DEFAULT 1,
	  views INT NOT NULL DEFAULT 0,
	  clicks INT NOT NULL DEFAULT 0,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  KEY ix_businesses_owner_id (owner_id),
	  KEY ix_businesses_town_industry (town, industry),
	  KEY ix_businesses_boost (is_boosted),
	  CONSTRAINT fk_businesses_owner FOREIGN KEY (owner_id) REFERENCES users(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS business_images (
	  id CHAR(36) NOT NULL,
	  business_id CHAR(36) NOT NULL,
	  storage_key VARCHAR(255) NOT NULL,
	  url VARCHAR(512) NOT NULL,
	  caption VARCHAR(255) NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  KEY ix_business_images_business_id (business_id),
	  CONSTRAINT fk_business_images_business FOREIGN KEY (business_id) REFERENCES businesses(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS subscriptions (
	  id CHAR(36) NOT NULL,
	  business_id CHAR(36) NOT NULL,
	  user_id CHAR(36) NOT NULL,
	  plan VARCHAR(16) NOT NULL,
	  status VARCHAR(16) NOT NULL,
	  amount_cents INT NOT NULL,
	  currency CHAR(3) NOT NULL DEFAULT 'ZAR',
	  start_date DATETIME(3) NOT NULL,
	  end_date DATETIME(3) NOT NULL,
	  next_billing_date DATETIME(3) NULL,
	  auto_renew TINYINT(1) NOT NULL DEFAULT 1,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_subscriptions_business_id (business_id),
	  KEY ix_subscriptions_user_id (user_id),
	  CONSTRAINT fk_subscriptions_business FOREIGN KEY (business_id) REFERENCES businesses(id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS payments (
	  id CHAR(36) NOT NULL,
	  business_id CHAR(36) NOT NULL,
	  user_id CHAR(36) NOT NULL,
	  amount_cents INT NOT NULL,
	  currency CHAR(3) NOT NULL DEFAULT 'ZAR',
	  payment_type VARCHAR(16) NOT NULL,
	  plan VARCHAR(16) NOT NULL,
	  status VARCHAR(16) NOT NULL,
	  method VARCHAR(16) NOT NULL DEFAULT 'payfast',
	  merchant_ref VARCHAR(64) NOT NULL,
	  gateway_ref VARCHAR(64) NULL,
	  payment_date DATETIME(3) NULL,
	  processed_date DATETIME(3) NULL,
	  dist_owner_cents INT NOT NULL DEFAULT 0,
	  dist_reserve_cents INT NOT NULL DEFAULT 0,
	  dist_owner_account VARCHAR(64) NULL,
	  dist_reserve_account VARCHAR(64) NULL,
	  dist_transferred TINYINT(1) NOT NULL DEFAULT 0,
	  dist_transfer_date DATETIME(3) NULL,
	  tax_taxable TINYINT(1) NOT NULL DEFAULT 1,
	  tax_tax_cents INT NOT NULL DEFAULT 0,
	  tax_rate_bp INT NOT NULL DEFAULT 1500,
	  failure_reason VARCHAR(255) NULL,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  UNIQUE KEY ux_payments_merchant_ref (merchant_ref),
	  KEY ix_payments_gateway_ref (gateway_ref),
	  KEY ix_payments_business_id (business_id),
	  KEY ix_payments_user_id (user_id),
	  KEY ix_payments_status (status),
	  KEY ix_payments_undistributed (status, dist_transferred, processed_date)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS gateway_notifications (
	  id CHAR(36) NOT NULL,
	  gateway VARCHAR(32) NOT NULL,
	  gateway_ref VARCHAR(64) NOT NULL,
	  merchant_ref VARCHAR(64) NOT NULL,
	  payment_status VARCHAR(32) NOT NULL,
	  payload_json JSON NOT NULL,
	  received_at DATETIME(3) NOT NULL,
	  processed_at DATETIME(3) NULL,
	  process_error VARCHAR(255) NULL,
	  PRIMARY KEY (id),
	  KEY ix_gateway_notifications_ref (gateway_ref)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`

	if _, err := sqlDB.Exec(sql); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	log.Println("✓ schema created successfully")
}
