package ports

import (
	"context"

	"github.com/vncsmyrnk/covervote/internal/core/domain"
)

type Broadcaster interface {
	Subscribe(ctx context.Context) (<-chan domain.TallyUpdate, func())
	Publish(update domain.TallyUpdate)
}
