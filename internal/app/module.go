package app

import (
	"time"

	"github.com/Youngger9765/duotopia-sub006/internal/app/api/server"
	"github.com/Youngger9765/duotopia-sub006/internal/app/service/billing"
	"github.com/Youngger9765/duotopia-sub006/internal/app/service/orgpoints"
	"github.com/Youngger9765/duotopia-sub006/internal/app/service/quota"
	"github.com/Youngger9765/duotopia-sub006/internal/app/service/subscription"
	"github.com/Youngger9765/duotopia-sub006/internal/app/service/usage"
	"github.com/Youngger9765/duotopia-sub006/internal/platform/db"
	"github.com/Youngger9765/duotopia-sub006/pkg/config"
	"github.com/Youngger9765/duotopia-sub006/pkg/logger"

	"go.uber.org/fx"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	server.Module,
	subscription.Module,
	quota.Module,
	orgpoints.Module,
	billing.Module,
	usage.Module,
)
