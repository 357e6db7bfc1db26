package memory_test

import (
	"testing"

	"github.com/meridian-tools/meridian/pkg/adapters/memory"
	"github.com/meridian-tools/meridian/pkg/ports"
)

func TestVariableStore_Contract(t *testing.T) {
	ports.RunVariableStoreContract(t, memory.NewVariableStore())
}

func TestTranscriptStore_Contract(t *testing.T) {
	ports.RunTranscriptStoreContract(t, memory.NewTranscriptStore())
}
