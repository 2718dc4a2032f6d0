package main

import (
	"errors"
	"net"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nhle/callsheet/internal/auth"
	"github.com/nhle/callsheet/internal/checklist"
	"github.com/nhle/callsheet/internal/web"
	"github.com/nhle/callsheet/tests/testutil"
)

func TestAwaitServerReturnsListenError(t *testing.T) {
	listenErr := make(chan error, 1)
	listenErr <- errors.New("bind: address already in use")

	code, err := awaitServer(listenErr, make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address already in use")
	assert.Equal(t, 1, code)
}

func TestAwaitServerReturnsShutdownCode(t *testing.T) {
	wait := make(chan int, 1)
	wait <- 0

	code, err := awaitServer(make(chan error), wait)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
}

func TestStartListeningOnBusyPort(t *testing.T) {
	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = busy.Close() })

	st := testutil.NewTestStore(t)
	srv, err := web.New(
		web.Config{CookieKey: encryptcookie.GenerateKey()},
		auth.NewService(st, auth.NewPasswordHasher(bcrypt.MinCost), nil),
		checklist.New(st, nil),
		nil,
	)
	require.NoError(t, err)

	select {
	case err := <-startListening(srv, busy.Addr().String()):
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("listening on a busy port did not fail")
	}
}
