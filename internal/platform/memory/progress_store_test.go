package memory

import (
	"testing"

	"github.com/phrazzld/stargazer/internal/store"
	"github.com/phrazzld/stargazer/internal/store/storetest"
)

func TestProgressStore(t *testing.T) {
	t.Parallel()
	storetest.RunProgressStoreTests(t, func(t *testing.T) store.ProgressStore {
		return NewProgressStore(nil)
	})
}
