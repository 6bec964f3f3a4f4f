// cmd/worker-manager/workers.go
package main

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"dms-workers/internal/common/aws"
	"dms-workers/internal/common/camunda"
	"dms-workers/internal/common/config"
	"dms-workers/internal/common/database"
	"dms-workers/internal/common/demarches"
	"dms-workers/internal/common/errors"
	httpclient "dms-workers/internal/common/http"
	"dms-workers/internal/common/logger"
	"dms-workers/internal/common/observability"
	"dms-workers/internal/dms"
	"dms-workers/internal/repository"

	arw "dms-workers/internal/workers/dms/advance-received-watermark"
	ibi "dms-workers/internal/workers/dms/import-bank-information"
	iba "dms-workers/internal/workers/dms/import-beneficiary-application"
	npe "dms-workers/internal/workers/dms/notify-parsing-error"
	sca "dms-workers/internal/workers/dms/sync-closed-applications"
	sra "dms-workers/internal/workers/dms/sync-received-applications"
)

// dependencies are shared by every worker handler.
type dependencies struct {
	demarches  *demarches.Client
	fetcher    *dms.Fetcher
	processed  *repository.ProcessedApplications
	imports    *repository.BeneficiaryImports
	bank       *repository.BankInformation
	watermarks *repository.WatermarkStore
	errorLog   *repository.ErrorLog
	mailer     npe.Mailer
	publisher  ibi.EventPublisher
	errHandler *errors.ErrorHandler
	obs        *observability.Observability
}

func newDependencies(
	ctx context.Context,
	cfg *config.Config,
	pg *database.PostgresClient,
	es *database.ElasticsearchClient,
	redis *database.RedisClient,
	obs *observability.Observability,
	log logger.Logger,
) (*dependencies, error) {
	client, err := demarches.NewClient(demarches.Config{
		LegacyBaseURL: cfg.DMS.LegacyBaseURL,
		GraphQLURL:    cfg.DMS.GraphQLURL,
	}, httpclient.NewClient(config.GetDuration(cfg.DMS.Timeout)))
	if err != nil {
		return nil, err
	}

	fetcher, err := dms.NewFetcher(dms.FetcherConfig{
		Token:              cfg.DMS.Token,
		OffererProcedureID: cfg.DMS.OffererProcedureID,
		VenueProcedureID:   cfg.DMS.VenueProcedureID,
	}, client)
	if err != nil {
		return nil, err
	}

	processed := repository.NewProcessedApplications(pg.DB, redis.Client, cfg.DMS.ProcessedCacheExpiry(), log)
	deps := &dependencies{
		demarches:  client,
		fetcher:    fetcher,
		processed:  processed,
		imports:    repository.NewBeneficiaryImports(pg.DB, processed),
		bank:       repository.NewBankInformation(pg.DB),
		watermarks: repository.NewWatermarkStore(redis.Client, cfg.DMS.WatermarkExpiry()),
		errorLog:   repository.NewErrorLog(es.Client, cfg.DMS.ErrorIndex),
		errHandler: errors.NewErrorHandler(log, config.GetDuration(cfg.Camunda.RetryBackoff)),
		obs:        obs,
	}

	// Interface fields stay nil when a channel is disabled.
	if cfg.Notifications.Email.Enabled {
		mailer, err := aws.NewMailer(ctx, cfg.Notifications.AWS.Region, cfg.Notifications.Email.FromEmail)
		if err != nil {
			return nil, err
		}
		deps.mailer = mailer
	}
	if cfg.Notifications.Events.Enabled {
		publisher, err := aws.NewEventPublisher(ctx, cfg.Notifications.AWS.Region, cfg.Notifications.Events.TopicARN)
		if err != nil {
			return nil, err
		}
		deps.publisher = publisher
	}
	return deps, nil
}

func registerWorkers(
	client zbc.Client,
	cfg *config.Config,
	deps *dependencies,
	inst camunda.Instrumentation,
	log logger.Logger,
) []*camunda.CamundaWorker {
	handlers := []struct {
		taskType string
		handler  camunda.JobHandler
	}{
		{
			taskType: sca.TaskType,
			handler:  sca.NewHandler(sca.LoadConfig(cfg), deps.demarches, deps.processed, deps.errHandler, deps.obs, log),
		},
		{
			taskType: sra.TaskType,
			handler:  sra.NewHandler(sra.LoadConfig(cfg), deps.demarches, deps.watermarks, deps.errHandler, deps.obs, log),
		},
		{
			taskType: arw.TaskType,
			handler:  arw.NewHandler(arw.LoadConfig(cfg), deps.watermarks, deps.errHandler, log),
		},
		{
			taskType: iba.TaskType,
			handler:  iba.NewHandler(iba.LoadConfig(cfg), deps.fetcher, deps.imports, deps.errorLog, deps.errHandler, log),
		},
		{
			taskType: npe.TaskType,
			handler:  npe.NewHandler(npe.LoadConfig(cfg), deps.mailer, deps.errHandler, log),
		},
		{
			taskType: ibi.TaskType,
			handler:  ibi.NewHandler(ibi.LoadConfig(cfg), deps.fetcher, deps.bank, deps.publisher, deps.errHandler, log),
		},
	}

	var workers []*camunda.CamundaWorker
	for _, h := range handlers {
		if !config.IsWorkerEnabled(cfg, h.taskType) {
			log.Info("worker disabled", map[string]interface{}{"taskType": h.taskType})
			continue
		}
		workers = append(workers, camunda.NewWorker(client, h.taskType, config.GetWorkerConfig(cfg, h.taskType), h.handler, inst, log))
	}
	return workers
}

