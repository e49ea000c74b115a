package api

import (
	"fmt"

	"github.com/JaimeStill/outreach/internal/admin"
	"github.com/JaimeStill/outreach/internal/analysis"
	"github.com/JaimeStill/outreach/internal/batches"
	"github.com/JaimeStill/outreach/internal/contacts"
	"github.com/JaimeStill/outreach/internal/messages"
	"github.com/JaimeStill/outreach/internal/pipeline"
	"github.com/JaimeStill/outreach/internal/prompts"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Admin    admin.System
	Batches  batches.System
	Contacts contacts.System
	Messages messages.System
	Prompts  prompts.System
	Pipeline *pipeline.Worker
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) (*Domain, error) {
	db := runtime.Database.Connection()

	contactsSystem := contacts.New(db, runtime.Logger, runtime.Pagination)
	promptsSystem := prompts.New(db, runtime.Logger, runtime.Pagination)
	batchesSystem := batches.New(db, runtime.Logger)
	adminSystem := admin.New(db, batchesSystem, runtime.Logger)

	messagesSystem := messages.New(
		runtime.Messages,
		runtime.Storage,
		runtime.Logger,
		runtime.MaxUploadSize,
	)

	generator, err := analysis.NewGenerator(runtime.Agent, promptsSystem, runtime.Logger)
	if err != nil {
		return nil, fmt.Errorf("analysis generator: %w", err)
	}

	worker := pipeline.New(
		runtime.Pipeline,
		batchesSystem,
		&analysis.Runtime{
			Generator:    generator,
			Contacts:     contactsSystem,
			Messages:     messagesSystem,
			MessageLimit: runtime.Pipeline.MessageLimit,
			Logger:       runtime.Logger.With("system", "analysis"),
		},
		pipeline.NewMetrics(runtime.Metrics),
		runtime.Logger,
	)

	return &Domain{
		Admin:    adminSystem,
		Batches:  batchesSystem,
		Contacts: contactsSystem,
		Messages: messagesSystem,
		Prompts:  promptsSystem,
		Pipeline: worker,
	}, nil
}

// Start registers the domain systems that own background work with the
// lifecycle coordinator.
func (d *Domain) Start(runtime *Runtime) error {
	if err := d.Messages.Start(runtime.Lifecycle); err != nil {
		return fmt.Errorf("messages start failed: %w", err)
	}
	if err := d.Pipeline.Start(runtime.Lifecycle); err != nil {
		return fmt.Errorf("pipeline start failed: %w", err)
	}
	runtime.Database.CloseAfter(d.Pipeline.Done())
	return nil
}
