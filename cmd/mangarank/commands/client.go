package commands

import (
	"context"
	"log/slog"
	"os"
	"time"

	"mangarank/lib/configutil"
	"mangarank/lib/scrapers/mangadex"
)

type Config struct {
	BaseUrl string `json:"base_url"`
}

// createClient builds the mangadex client and, when credentials are present
// in the environment, logs in so the account's content filters apply to the
// search. Missing credentials are fine, the crawl runs unauthenticated.
func createClient() *mangadex.Client {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
	defer cancel()

	cfg, err := configutil.ReadConfig[Config]("mangarank.json5")
	if err != nil && !os.IsNotExist(err) {
		fatal("failed to read config", err)
	}

	client, err := mangadex.NewClient(ctx, mangadex.ClientOptions{
		BaseUrl: cfg.BaseUrl,
	})
	if err != nil {
		fatal("failed to initialize mangadex client", err)
	}

	username := os.Getenv("MANGADEX_USERNAME")
	password := os.Getenv("MANGADEX_PASSWORD")
	if username != "" && password != "" {
		slog.Info("logging in", "username", username)
		err = client.Login(ctx, username, password)
		if err != nil {
			fatal("failed to login to mangadex", err)
		}
	}

	return client
}
