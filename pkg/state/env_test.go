package state

import (
	"context"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestEnvFromContext(t *testing.T) {
	ctx := ContextWithEnv(context.Background())
	env := EnvFromContext(ctx)
	assert.NotNil(t, env.Log)
	assert.Same(t, env, EnvFromContext(ctx))
	assert.GreaterOrEqual(t, env.Uptime(), time.Duration(0))
}

func TestEnvFromContext_Missing(t *testing.T) {
	assert.Panics(t, func() { EnvFromContext(context.Background()) })
}

func TestRedirectStdLog(t *testing.T) {
	env := EnvFromContext(ContextWithEnv(context.Background()))
	env.Log = zaptest.NewLogger(t)
	env.RedirectStdLog()
	log.Print("goes to zap")
	env.RestoreStdLog()
	env.RestoreStdLog()
}
