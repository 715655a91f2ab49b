package command

import (
	gcmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-command/dispatcher"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-impact-export/export"
	exportqry "github.com/goliatone/go-impact-export/query"
)

// RegisterHandlers subscribes the export commands and queries on the
// dispatcher and, when reg is given, registers them for CLI/cron use.
func RegisterHandlers(reg *gcmd.Registry, coordinator *export.Coordinator, resolver export.DatasetResolver, batch *BatchCommand) ([]dispatcher.Subscription, error) {
	if coordinator == nil {
		return nil, errors.New("export coordinator is required", errors.CategoryValidation).
			WithTextCode("COORDINATOR_REQUIRED")
	}

	gen := NewGenerateExportHandler(coordinator)
	caps := exportqry.NewExportCapabilitiesHandler()

	subscriptions := []dispatcher.Subscription{
		dispatcher.SubscribeCommand(gen),
		dispatcher.SubscribeQuery(caps),
	}
	handlers := []any{gen, caps}

	if resolver != nil {
		preview := exportqry.NewDatasetPreviewHandler(resolver)
		subscriptions = append(subscriptions, dispatcher.SubscribeQuery(preview))
		handlers = append(handlers, preview)
	}
	if batch != nil {
		runner := NewRunBatchHandler(batch)
		subscriptions = append(subscriptions, dispatcher.SubscribeCommand(runner))
		handlers = append(handlers, runner, batch)
	}

	if reg != nil {
		for _, handler := range handlers {
			if err := reg.RegisterCommand(handler); err != nil {
				return subscriptions, err
			}
		}
	}

	return subscriptions, nil
}
