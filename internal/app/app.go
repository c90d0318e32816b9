package app

import (
	"go.uber.org/fx"

	"github.com/Additional-Code/luxe/internal/cache"
	"github.com/Additional-Code/luxe/internal/config"
	"github.com/Additional-Code/luxe/internal/database"
	"github.com/Additional-Code/luxe/internal/logger"
	"github.com/Additional-Code/luxe/internal/media"
	"github.com/Additional-Code/luxe/internal/messaging"
	"github.com/Additional-Code/luxe/internal/notify"
	"github.com/Additional-Code/luxe/internal/observability"
	repositorycategory "github.com/Additional-Code/luxe/internal/repository/category"
	repositoryorder "github.com/Additional-Code/luxe/internal/repository/order"
	repositoryproduct "github.com/Additional-Code/luxe/internal/repository/product"
	grpcserver "github.com/Additional-Code/luxe/internal/server/grpc"
	httpserver "github.com/Additional-Code/luxe/internal/server/http"
	servicecontact "github.com/Additional-Code/luxe/internal/service/contact"
	servicedashboard "github.com/Additional-Code/luxe/internal/service/dashboard"
	serviceorder "github.com/Additional-Code/luxe/internal/service/order"
	serviceproduct "github.com/Additional-Code/luxe/internal/service/product"
	transporthttp "github.com/Additional-Code/luxe/internal/transport/http"
	"github.com/Additional-Code/luxe/internal/worker"
	workerorder "github.com/Additional-Code/luxe/internal/worker/order"
)

// Infra provides configuration, logging, telemetry and the stores.
var Infra = fx.Options(
	config.Module,
	logger.Module,
	observability.Module,
	database.Module,
	cache.Module,
	messaging.Module,
	repositorycategory.Module,
	repositoryorder.Module,
	repositoryproduct.Module,
)

// Core adds the domain services on top of Infra.
var Core = fx.Options(
	Infra,
	media.Module,
	notify.Module,
	serviceorder.Module,
	serviceproduct.Module,
	servicedashboard.Module,
	servicecontact.Module,
)

// HTTP wires the HTTP and gRPC servers on top of the core modules.
var HTTP = fx.Options(
	Core,
	httpserver.Module,
	grpcserver.Module,
	transporthttp.Module,
)

// Workers are the background consumers of order events.
var Workers = fx.Options(
	worker.Module,
	workerorder.Module,
)

// Worker runs only the background consumers.
var Worker = fx.Options(
	Infra,
	Workers,
)

// Module is the default application wiring (HTTP only).
var Module = HTTP
