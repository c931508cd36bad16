package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestInitTracingDisabled(t *testing.T) {
	stop := InitTracing(context.Background(), zap.NewNop(), Config{Enabled: false})
	assert.NotNil(t, stop)
	assert.NoError(t, stop(context.Background()))
}
