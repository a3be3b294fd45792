package session

import (
	"context"

	"github.com/payrecon-dev/payrecon/internal/importer"
)

// TableLoader reads an uploaded file into a table. Reset drops whatever the
// loader cached for the session.
//
//go:generate mockgen -destination=mocks/mock_loader.go -source=interface.go TableLoader
type TableLoader interface {
	LoadTable(ctx context.Context, path string) (*importer.Table, error)
	Reset()
}
