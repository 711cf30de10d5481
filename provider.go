package swiftkit

import (
	"sync"

	"github.com/joy-dx/lockablemap"

	"github.com/joy-dx/swiftkit/config"
	"github.com/joy-dx/swiftkit/dto"
	"github.com/joy-dx/swiftkit/relays"
)

var (
	service     *StoreSvc
	serviceOnce sync.Once
)

func ProvideStoreSvc(cfg *config.StoreSvcConfig) *StoreSvc {
	serviceOnce.Do(func() {
		service = &StoreSvc{
			cfg:            cfg,
			relay:          cfg.Relay(),
			listenersByURL: make(map[string][]chan dto.TransferNotification),
			transferState:  *lockablemap.NewLockableMap[string, dto.TransferNotification](),
			clients:        make(map[string]dto.ClientInterface),
		}
		cfg.Relay().Debug(relays.RlyStoreLog{Msg: "Store service started"})
	})
	return service
}
