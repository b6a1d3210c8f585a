package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"symposium/internal/avatar"
	"symposium/internal/gateway/config"
	"symposium/internal/roster"
)

// loadRoster prefers Postgres, then a roster file, then the built-in roster.
func loadRoster(ctx context.Context, cfg *config.Config) (*roster.Roster, error) {
	var (
		src   roster.Source
		label string
	)
	switch {
	case strings.TrimSpace(cfg.Roster.PostgresDSN) != "":
		pg, err := roster.NewPostgresSource(cfg.Roster.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open roster db: %w", err)
		}
		defer pg.Close()
		src, label = pg, "postgres"
	case strings.TrimSpace(cfg.Roster.Path) != "":
		src, label = roster.NewFileSource(cfg.Roster.Path), "file "+cfg.Roster.Path
	default:
		src, label = roster.Static(roster.Default()), "built-in"
	}
	r, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load roster (%s): %w", label, err)
	}
	log.Printf("roster: %s, %d participants, %d topics", label, len(r.Participants()), len(r.Topics()))
	return r, nil
}

func newAvatarResolver(cfg *config.Config) (avatar.Resolver, error) {
	if !cfg.Avatar.CanUseS3() {
		if cfg.Avatar.Enabled {
			log.Printf("avatars: using static fallback (s3 config incomplete)")
		}
		return avatar.Static{BaseURL: cfg.Avatar.BaseURL}, nil
	}
	s3, err := avatar.NewS3Resolver(avatar.S3Config{
		Endpoint:  cfg.Avatar.Endpoint,
		Region:    cfg.Avatar.Region,
		AccessKey: cfg.Avatar.AccessKey,
		SecretKey: cfg.Avatar.SecretKey,
		Bucket:    cfg.Avatar.Bucket,
		Prefix:    cfg.Avatar.Prefix,
		UseSSL:    cfg.Avatar.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize avatar resolver: %w", err)
	}
	log.Printf("avatars: s3 bucket=%s endpoint=%s", cfg.Avatar.Bucket, cfg.Avatar.Endpoint)
	return avatar.NewCached(s3, cfg.Avatar.CacheSize, s3.Expiry()/2), nil
}
