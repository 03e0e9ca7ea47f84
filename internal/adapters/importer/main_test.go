package importer_test

import (
	"os"
	"testing"

	"github.com/wiaanjvr/fluency-next-sub011/pkg/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}
