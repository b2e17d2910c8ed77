package worker

import (
	"os"
	"testing"

	"github.com/kestrel-intel/kestrel/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}
