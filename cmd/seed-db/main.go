// Command seed-db loads a starter catalog, reward types, store settings, and
// an admin API key into the database. Intended for development and fresh
// deployments; every insert is idempotent.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quietline/storefront/internal/storage/postgres"
)

type variantSeed struct {
	id, thickness, size, faceColor string
	priceCents                     int64
}

type productSeed struct {
	id, name string
	variants []variantSeed
}

var products = []productSeed{
	{
		id: "wave-baffle", name: "Wave Ceiling Baffle",
		variants: []variantSeed{
			{"wave-25-1200-slate", "25mm", "1200x300mm", "Slate", 7900},
			{"wave-25-1200-sand", "25mm", "1200x300mm", "Sand", 7900},
			{"wave-40-1200-slate", "40mm", "1200x300mm", "Slate", 9500},
		},
	},
	{
		id: "hex-tile", name: "Hex Wall Tile",
		variants: []variantSeed{
			{"hex-12-290-moss", "12mm", "290x250mm", "Moss", 2400},
			{"hex-12-290-charcoal", "12mm", "290x250mm", "Charcoal", 2400},
		},
	},
	{
		id: "studio-panel", name: "Studio Broadband Panel",
		variants: []variantSeed{
			{"studio-50-600-natural", "50mm", "600x600mm", "Natural Oak", 5000},
			{"studio-50-1200-natural", "50mm", "1200x600mm", "Natural Oak", 8900},
			{"studio-75-1200-black", "75mm", "1200x600mm", "Black", 11900},
		},
	},
}

type rewardSeed struct {
	id, name   string
	pointsCost int64
	valueCents int64
}

var rewards = []rewardSeed{
	{"sample-pack", "Color Sample Pack", 5, 0},
	{"credit-25", "$25 Store Credit", 25, 2500},
	{"credit-100", "$100 Store Credit", 90, 10000},
}

func main() {
	var (
		databaseURL  string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&apiKey, "api-key", "", "admin API key to seed (or STORE_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or STORE_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("STORE_SEED_API_KEY")
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("STORE_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, apiKey, apiKeyPepper string) error {
	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedCatalog(ctx, pool); err != nil {
		return errors.Wrap(err, "seed catalog")
	}
	if err := seedRewards(ctx, pool); err != nil {
		return errors.Wrap(err, "seed rewards")
	}
	if err := seedMembers(ctx, pool); err != nil {
		return errors.Wrap(err, "seed members")
	}
	if apiKey != "" {
		if err := seedAPIKey(ctx, pool, apiKey, apiKeyPepper); err != nil {
			return errors.Wrap(err, "seed api key")
		}
	}
	return nil
}

func seedCatalog(ctx context.Context, pool *pgxpool.Pool) error {
	for _, p := range products {
		_, err := pool.Exec(ctx, `
			INSERT INTO products (id, name) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name`,
			p.id, p.name,
		)
		if err != nil {
			return errors.Wrapf(err, "product %s", p.id)
		}

		for _, v := range p.variants {
			_, err := pool.Exec(ctx, `
				INSERT INTO product_variants (id, product_id, thickness, size, face_color, price_cents)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (id) DO UPDATE SET price_cents = EXCLUDED.price_cents, available = TRUE`,
				v.id, p.id, v.thickness, v.size, v.faceColor, v.priceCents,
			)
			if err != nil {
				return errors.Wrapf(err, "variant %s", v.id)
			}
		}
		slog.Info("seeded product", slog.String("id", p.id), slog.Int("variants", len(p.variants)))
	}
	return nil
}

func seedRewards(ctx context.Context, pool *pgxpool.Pool) error {
	for _, r := range rewards {
		_, err := pool.Exec(ctx, `
			INSERT INTO reward_types (id, name, points_cost, value_cents)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET points_cost = EXCLUDED.points_cost, active = TRUE`,
			r.id, r.name, r.pointsCost, r.valueCents,
		)
		if err != nil {
			return errors.Wrapf(err, "reward %s", r.id)
		}
	}
	slog.Info("seeded reward types", slog.Int("count", len(rewards)))
	return nil
}

func seedMembers(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		INSERT INTO members (id, email, discount_percent)
		VALUES ('demo-member', 'demo@example.com', 10)
		ON CONFLICT (id) DO NOTHING`,
	)
	if err != nil {
		return err
	}
	slog.Info("seeded demo member", slog.String("id", "demo-member"))
	return nil
}

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, key, pepper string) error {
	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(key))
	hash := hex.EncodeToString(mac.Sum(nil))

	_, err := pool.Exec(ctx, `
		INSERT INTO api_keys (id, key_hash, name, scopes)
		VALUES ($1, $2, 'admin', '{admin}')
		ON CONFLICT (key_hash) DO NOTHING`,
		uuid.New().String(), hash,
	)
	if err != nil {
		return err
	}
	slog.Info("seeded admin api key")
	return nil
}
