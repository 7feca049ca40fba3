package harvester

import (
	"context"

	"golang-crypto-sentinel/internal/pipeline/dto"
)

// Source produces raw candidate texts. Implementations may be synthetic or
// backed by a remote feed and are allowed to fail.
type Source interface {
	Info() dto.DataSource
	Fetch(ctx context.Context, symbol string) ([]dto.RawItem, error)
}
