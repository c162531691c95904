package product

import (
	"log"
	"os"
	"testing"

	"github.com/example/inventory-service/testsupport"
)

func TestMain(m *testing.M) {
	code := m.Run()
	if err := testsupport.StopEmbedded(); err != nil {
		log.Printf("failed to stop embedded postgres: %v", err)
	}
	os.Exit(code)
}
