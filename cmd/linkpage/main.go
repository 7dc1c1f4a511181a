package main

import (
	"hash/fnv"
	"os"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/linkpage/internal/admin"
	"github.com/smallbiznis/linkpage/internal/analytics"
	"github.com/smallbiznis/linkpage/internal/audit"
	"github.com/smallbiznis/linkpage/internal/auth/token"
	"github.com/smallbiznis/linkpage/internal/billing"
	"github.com/smallbiznis/linkpage/internal/clock"
	"github.com/smallbiznis/linkpage/internal/config"
	"github.com/smallbiznis/linkpage/internal/content"
	"github.com/smallbiznis/linkpage/internal/identity"
	"github.com/smallbiznis/linkpage/internal/migration"
	"github.com/smallbiznis/linkpage/internal/server"
	"github.com/smallbiznis/linkpage/pkg/db"
	"github.com/smallbiznis/linkpage/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		fx.Provide(RegisterTokenIssuer),
		db.Module,
		clock.Module,
		migration.Module,

		identity.Module,
		content.Module,
		analytics.Module,
		billing.Module,
		audit.Module,
		admin.Module,

		server.Module,
	)
	app.Run()
}

// RegisterSnowflake derives a stable node id from the hostname so replicas
// generate disjoint ids.
func RegisterSnowflake() (*snowflake.Node, error) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "linkpage"
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(hostname))
	return snowflake.NewNode(int64(h.Sum32() % 1024))
}

func RegisterTokenIssuer(cfg config.Config) *token.Issuer {
	return token.NewIssuer(cfg.AuthJWTSecret, cfg.AppName)
}
