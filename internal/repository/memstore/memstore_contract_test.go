package memstore_test

import (
	"testing"

	"github.com/maxviazov/member-crm/internal/repository"
	"github.com/maxviazov/member-crm/internal/repository/contract"
	"github.com/maxviazov/member-crm/internal/repository/memstore"
)

func TestRepositories_MemoryContract(t *testing.T) {
	contract.Run(t, func(t *testing.T) (*repository.Registry, func()) {
		return memstore.NewRegistry(), func() {}
	}, contract.Capabilities{})
}
