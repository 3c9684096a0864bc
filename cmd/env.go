package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/fundraising-cli/internal/donor"
	"github.com/sells-group/fundraising-cli/internal/insight"
	"github.com/sells-group/fundraising-cli/internal/store"
	"github.com/sells-group/fundraising-cli/pkg/salesforce"
)

// env holds the initialized clients and service shared by all commands.
type env struct {
	Service *donor.Service
	Audit   store.Log // may be nil
}

// Close releases resources held by the environment.
func (e *env) Close() {
	if e.Audit != nil {
		_ = e.Audit.Close()
	}
}

// initEnv validates config, builds the Salesforce client, the optional
// audit log, and the donor service. Callers should defer env.Close().
func initEnv(ctx context.Context) (*env, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sf := salesforce.NewClient(salesforce.Config{
		ClientID:      cfg.Salesforce.ClientID,
		ClientSecret:  cfg.Salesforce.ClientSecret,
		RefreshToken:  cfg.Salesforce.RefreshToken,
		InstanceURL:   cfg.Salesforce.InstanceURL,
		Domain:        cfg.Salesforce.Domain,
		Username:      cfg.Salesforce.Username,
		Password:      cfg.Salesforce.Password,
		SecurityToken: cfg.Salesforce.SecurityToken,
	}, salesforce.WithRateLimit(cfg.Salesforce.RateRPS))

	audit, err := initAudit(ctx)
	if err != nil {
		return nil, err
	}

	opts := []donor.Option{
		donor.WithCache(time.Duration(cfg.Cache.TTLSecs)*time.Second, cfg.Cache.Capacity),
		donor.WithDefaultLimit(cfg.Query.DefaultLimit),
	}
	if audit != nil {
		opts = append(opts, donor.WithAudit(audit))
	}
	if gen := insight.NewGenerator(cfg.Anthropic.Key, cfg.Anthropic.Model); gen != nil {
		zap.L().Info("insight enrichment enabled", zap.String("model", cfg.Anthropic.Model))
		opts = append(opts, donor.WithInsights(gen))
	}

	return &env{
		Service: donor.New(sf, opts...),
		Audit:   audit,
	}, nil
}

// initAudit opens the query audit log per the configured driver. An empty
// database URL disables auditing.
func initAudit(ctx context.Context) (store.Log, error) {
	if cfg.Store.DatabaseURL == "" {
		zap.L().Debug("audit log disabled, no database url configured")
		return nil, nil
	}

	var (
		audit store.Log
		err   error
	)
	switch cfg.Store.Driver {
	case "postgres":
		audit, err = store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	case "sqlite":
		audit, err = store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := audit.Migrate(ctx); err != nil {
		_ = audit.Close()
		return nil, eris.Wrap(err, "migrate audit log")
	}
	return audit, nil
}
