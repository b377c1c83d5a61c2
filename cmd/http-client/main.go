package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"simple-shop/internal/client"
	"simple-shop/internal/logger"
	"simple-shop/internal/model"
	"simple-shop/internal/version"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Smoke client: registers a throwaway customer, signs in, reads the profile
// and the catalog, then repeats every SHOP_CLIENT_DELAY_MS when set.
func main() {
	log := logger.Instance()
	_ = godotenv.Load()

	baseURL := os.Getenv("SHOP_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:4000"
	}
	delayMs, _ := strconv.Atoi(os.Getenv("SHOP_CLIENT_DELAY_MS"))

	log.Info("HTTP client started",
		slog.String("version", version.Version),
		slog.String("target", baseURL),
		slog.Int("delay_ms", delayMs),
	)

	for {
		if err := run(baseURL); err != nil {
			log.Error("Smoke run failed", slog.String("error", err.Error()))
			if delayMs <= 0 {
				os.Exit(1)
			}
		}
		if delayMs <= 0 {
			return
		}
		time.Sleep(time.Duration(delayMs) * time.Millisecond)
	}
}

func run(baseURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c := client.NewShopClient(client.NewHTTPClient(baseURL, 5*time.Second))

	creds := client.Credentials{
		Email:    "smoke-" + uuid.NewString()[:8] + "@example.com",
		Password: "smoke-secret",
	}
	msg, err := c.Register(ctx, model.RoleCustomer, client.Registration{
		Name:     "Smoke Test",
		Email:    creds.Email,
		Password: creds.Password,
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, msg)

	if _, err := c.Login(ctx, model.RoleCustomer, creds); err != nil {
		return err
	}

	me, err := c.Me(ctx)
	if err != nil {
		return err
	}
	logger.Info(ctx, "Signed in", slog.String("account_id", me.ID.Hex()), slog.String("role", string(me.Role)))

	products, err := c.Products(ctx)
	if err != nil {
		return err
	}
	categories, err := c.Categories(ctx)
	if err != nil {
		return err
	}
	logger.Info(ctx, "Received catalog",
		slog.Int("products", len(products)),
		slog.Int("categories", len(categories)),
	)
	return nil
}
