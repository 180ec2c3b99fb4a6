package cmd

import (
	"log/slog"

	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/actions/createtask"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/actions/logmsg"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/actions/notify"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/persistence"
	"github.com/skyxxxnyc/lovablecrm-ai-sub000/pkg/registry"
)

// NewRegistry builds an action registry with the native workflow actions
// registered.
func NewRegistry(log *slog.Logger, p persistence.Persistence) *registry.Registry {
	reg := registry.NewRegistry(log)

	reg.RegisterAction(createtask.NewActionFactory(p))
	reg.RegisterAction(notify.NewActionFactory(p))
	reg.RegisterAction(logmsg.NewActionFactory())

	return reg
}
